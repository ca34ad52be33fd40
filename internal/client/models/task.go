package models

import "time"

// TaskStatus classifies where a work order is in its lifecycle.
type TaskStatus string

const (
	StatusNew        TaskStatus = "new"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
	StatusRejected   TaskStatus = "rejected"
)

// Action is a user-initiated status change request.
type Action string

const (
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionComplete Action = "complete"
	ActionReset    Action = "reset"
)

// Task is a single work order. Tasks are created externally, mutated through
// status updates only and never deleted by this client. Wire field names
// match the remote collection schema.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Address     string     `json:"address,omitempty"`
	LiftModel   string     `json:"lift,omitempty"`
	Deadline    string     `json:"deadline,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Status      TaskStatus `json:"status"`
	OwnerID     string     `json:"userId"`
	CreatedAt   time.Time  `json:"added"`
	UpdatedAt   *time.Time `json:"updated,omitempty"`
}

// transitions maps (current status, action) to the resulting status.
// Reset returns to new from any state.
var transitions = map[TaskStatus]map[Action]TaskStatus{
	StatusNew: {
		ActionAccept: StatusInProgress,
		ActionReject: StatusRejected,
		ActionReset:  StatusNew,
	},
	StatusInProgress: {
		ActionComplete: StatusCompleted,
		ActionReset:    StatusNew,
	},
	StatusCompleted: {
		ActionReset: StatusNew,
	},
	StatusRejected: {
		ActionReset: StatusNew,
	},
}

// Transition returns the status resulting from applying action to current.
// The second result is false when the action is not valid for the state;
// callers must then leave the task unchanged.
func Transition(current TaskStatus, action Action) (TaskStatus, bool) {
	next, ok := transitions[current][action]
	return next, ok
}

// StatusText returns the human-readable label for a status.
func StatusText(s TaskStatus) string {
	switch s {
	case StatusNew:
		return "New"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	case StatusRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}
