// Package service defines the backend-agnostic interface for the remote task service.
package service

import "context"

// Service defines the interface for remote task backend operations.
// All Google Tasks API calls go through this interface.
// Commands and the sync engine never import the Google SDK directly.
type Service interface {
	// DefaultList returns the user's default task list with its real ID.
	DefaultList(ctx context.Context) (TaskList, error)

	// ListLists returns all task lists in API order.
	ListLists(ctx context.Context) ([]TaskList, error)

	// CreateList creates a new task list and returns it.
	CreateList(ctx context.Context, title string) (TaskList, error)

	// DeleteList deletes a task list by ID.
	DeleteList(ctx context.Context, listID string) error

	// ListTasks returns every task in a list, across all pages.
	// Completed and hidden tasks are included; deleted tasks are not.
	ListTasks(ctx context.Context, listID string) ([]Task, error)

	// CreateTask creates a task and returns it as stored by the service.
	CreateTask(ctx context.Context, listID string, payload TaskPayload) (Task, error)

	// UpdateTask patches a task with the full mapped payload.
	UpdateTask(ctx context.Context, listID, taskID string, payload TaskPayload) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, listID, taskID string) error
}
