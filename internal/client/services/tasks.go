package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/liftfield/internal/client/gateway"
	"github.com/dmitrijs2005/liftfield/internal/client/models"
	"github.com/dmitrijs2005/liftfield/internal/client/orchestrator"
	"github.com/dmitrijs2005/liftfield/internal/client/session"
	"github.com/dmitrijs2005/liftfield/internal/client/store"
	"github.com/dmitrijs2005/liftfield/internal/common"
	"github.com/dmitrijs2005/liftfield/internal/logging"
)

// Source reports where a read was ultimately served from.
type Source int

const (
	SourceRemote Source = iota
	SourceCache
)

func (s Source) String() string {
	if s == SourceRemote {
		return "remote"
	}
	return "cache"
}

// TaskService serves the work-order list and status mutations.
type TaskService struct {
	gw   *gateway.Client // nil when the gateway never came up
	kv   *store.KV
	orch *orchestrator.Orchestrator
	sess *session.Manager
	log  logging.Logger
}

func NewTaskService(gw *gateway.Client, kv *store.KV, orch *orchestrator.Orchestrator, sess *session.Manager, log logging.Logger) *TaskService {
	return &TaskService{gw: gw, kv: kv, orch: orch, sess: sess, log: log}
}

// owner returns the subject ID of the current identity.
func owner(sess *session.Manager) (string, error) {
	id, _ := sess.Current()
	if id == nil {
		return "", common.ErrNotLoggedIn
	}
	return id.SubjectID, nil
}

// List returns the work orders of the current user, newest first. A remote
// failure mid-flight is not fatal: the cached snapshot is served instead,
// and only when that is empty too does the caller see an error.
func (s *TaskService) List(ctx context.Context) ([]models.Task, Source, error) {
	route, err := s.orch.Gate(orchestrator.OpRead)
	if err != nil {
		return nil, SourceCache, err
	}

	ownerID, err := owner(s.sess)
	if err != nil {
		return nil, SourceCache, err
	}

	if route == orchestrator.RouteRemote {
		tasks, err := s.gw.ListTasks(ctx, ownerID)
		if err == nil {
			return tasks, SourceRemote, nil
		}
		s.log.Warn(ctx, "remote task list failed, falling back to cache", "error", err)
	}

	tasks, err := s.kv.LoadTasks(ctx)
	if err != nil {
		return nil, SourceCache, err
	}
	return tasks, SourceCache, nil
}

// UpdateStatus applies a lifecycle action to a task. The transition is
// validated locally against the cached snapshot, pushed to the remote
// collection, and then the list is re-fetched so the local snapshot reflects
// the authoritative state. Returns the refreshed task.
func (s *TaskService) UpdateStatus(ctx context.Context, taskID string, action models.Action) (models.Task, error) {
	route, err := s.orch.Gate(orchestrator.OpWrite)
	if err != nil {
		return models.Task{}, err
	}
	if route != orchestrator.RouteRemote {
		return models.Task{}, common.ErrGatewayUnavailable
	}

	ownerID, err := owner(s.sess)
	if err != nil {
		return models.Task{}, err
	}

	current, err := s.find(ctx, taskID)
	if err != nil {
		return models.Task{}, err
	}

	next, ok := models.Transition(current.Status, action)
	if !ok {
		return models.Task{}, common.ErrInvalidTransition
	}

	updated, err := s.gw.UpdateTaskStatus(ctx, taskID, next)
	if err != nil {
		return models.Task{}, err
	}

	// Refresh writes through to the snapshot; a failed refresh is non-fatal
	// since the remote write already landed.
	if tasks, lerr := s.gw.ListTasks(ctx, ownerID); lerr == nil {
		for _, t := range tasks {
			if t.ID == taskID {
				return t, nil
			}
		}
	} else {
		s.log.Warn(ctx, "post-update refresh failed", "error", lerr)
	}

	current.Status = next
	current.UpdatedAt = &updated
	return current, nil
}

// Reject marks a task rejected. The reason is shown to the operator and
// logged but never persisted.
func (s *TaskService) Reject(ctx context.Context, taskID, reason string) (models.Task, error) {
	task, err := s.UpdateStatus(ctx, taskID, models.ActionReject)
	if err != nil {
		return models.Task{}, err
	}
	s.log.Info(ctx, "task rejected", "task", taskID, "reason", reason)
	return task, nil
}

// find looks a task up in the cached snapshot.
func (s *TaskService) find(ctx context.Context, taskID string) (models.Task, error) {
	tasks, err := s.kv.LoadTasks(ctx)
	if err != nil && !errors.Is(err, common.ErrNoCachedData) {
		return models.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == taskID {
			return t, nil
		}
	}
	return models.Task{}, common.ErrTaskNotFound
}
