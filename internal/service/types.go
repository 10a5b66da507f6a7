// Package service defines the backend-agnostic interface for the remote task service.
package service

// Task status values.
const (
	StatusNeedsAction = "needsAction"
	StatusCompleted   = "completed"
)

// Task represents a single task as returned by the remote service.
type Task struct {
	ID      string
	Title   string
	Notes   string
	Status  string // "needsAction" or "completed"
	Due     string // RFC3339, empty if unset
	Updated string // RFC3339, empty if unknown
	Hidden  bool
}

// TaskList represents a remote task list.
type TaskList struct {
	ID        string
	Title     string
	Updated   string
	IsDefault bool
}

// TaskPayload is the body of a create or patch request.
// Empty Notes and Due are omitted from the request.
type TaskPayload struct {
	Title  string
	Notes  string
	Status string
	Due    string
}
