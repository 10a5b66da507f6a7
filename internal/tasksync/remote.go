// Package tasksync reconciles one local task list with its remote counterpart.
//
// The Engine computes and applies remote mutations and reports local ones.
// The Orchestrator runs a full cycle for one list: resolve the remote list,
// fetch its tasks, reconcile. Neither touches the local store; callers apply
// the returned Result themselves and must not run two cycles for the same
// list at once (see ListLocker).
package tasksync

import (
	"context"

	"tasksync/internal/service"
)

// Remote is the part of the remote service a sync cycle needs.
type Remote interface {
	DefaultList(ctx context.Context) (service.TaskList, error)
	CreateList(ctx context.Context, title string) (service.TaskList, error)
	ListTasks(ctx context.Context, listID string) ([]service.Task, error)
	CreateTask(ctx context.Context, listID string, payload service.TaskPayload) (service.Task, error)
	UpdateTask(ctx context.Context, listID, taskID string, payload service.TaskPayload) (service.Task, error)
	DeleteTask(ctx context.Context, listID, taskID string) error
}

var _ Remote = service.Service(nil)
