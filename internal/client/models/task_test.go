package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition_Table(t *testing.T) {
	tests := []struct {
		name    string
		current TaskStatus
		action  Action
		want    TaskStatus
		ok      bool
	}{
		{"new accept", StatusNew, ActionAccept, StatusInProgress, true},
		{"new reject", StatusNew, ActionReject, StatusRejected, true},
		{"new reset", StatusNew, ActionReset, StatusNew, true},
		{"new complete invalid", StatusNew, ActionComplete, "", false},

		{"in-progress complete", StatusInProgress, ActionComplete, StatusCompleted, true},
		{"in-progress reset", StatusInProgress, ActionReset, StatusNew, true},
		{"in-progress accept invalid", StatusInProgress, ActionAccept, "", false},
		{"in-progress reject invalid", StatusInProgress, ActionReject, "", false},

		{"completed reset", StatusCompleted, ActionReset, StatusNew, true},
		{"completed accept invalid", StatusCompleted, ActionAccept, "", false},
		{"completed complete invalid", StatusCompleted, ActionComplete, "", false},
		{"completed reject invalid", StatusCompleted, ActionReject, "", false},

		{"rejected reset", StatusRejected, ActionReset, StatusNew, true},
		{"rejected accept invalid", StatusRejected, ActionAccept, "", false},
		{"rejected complete invalid", StatusRejected, ActionComplete, "", false},
		{"rejected reject invalid", StatusRejected, ActionReject, "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Transition(tc.current, tc.action)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestTransition_UnknownStatus(t *testing.T) {
	_, ok := Transition(TaskStatus("bogus"), ActionAccept)
	assert.False(t, ok)
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "New", StatusText(StatusNew))
	assert.Equal(t, "In progress", StatusText(StatusInProgress))
	assert.Equal(t, "Completed", StatusText(StatusCompleted))
	assert.Equal(t, "Rejected", StatusText(StatusRejected))
	assert.Equal(t, "Unknown", StatusText(TaskStatus("x")))
}
