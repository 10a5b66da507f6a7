// Package convert maps tasks between the local record shape and the remote
// wire shape. Conversions never touch the network or shared state.
package convert

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tasksync/internal/local"
	"tasksync/internal/logging"
	"tasksync/internal/service"
)

// dateOnly is accepted for due dates entered without a time.
const dateOnly = "2006-01-02"

// Converter maps tasks in both directions. The zero value is usable and logs nothing.
type Converter struct {
	Logger *slog.Logger
}

// New returns a Converter that reports dropped fields to logger.
func New(logger *slog.Logger) Converter {
	return Converter{Logger: logger}
}

func (c Converter) logger() *slog.Logger {
	if c.Logger == nil {
		return logging.Discard()
	}
	return c.Logger
}

// RemoteToLocal builds a local task from a remote one. When existingLocalID
// is empty the remote id doubles as the local id.
func (c Converter) RemoteToLocal(remote service.Task, listID, existingLocalID string) local.Task {
	id := existingLocalID
	if id == "" {
		id = remote.ID
	}
	return local.Task{
		ID:           id,
		ListID:       listID,
		Title:        remote.Title,
		Description:  remote.Notes,
		DueDate:      remote.Due,
		IsCompleted:  remote.Status == service.StatusCompleted,
		CreatedAt:    remote.Updated,
		LastModified: remote.Updated,
		RemoteID:     remote.ID,
	}
}

// CreatePayload maps a local task to a remote create request.
// An unparseable due date is dropped with a warning.
func (c Converter) CreatePayload(t local.Task) service.TaskPayload {
	p, err := payload(t)
	if err != nil {
		c.logger().Warn("dropping invalid due date", "task", t.ID, "dueDate", t.DueDate, "error", err)
	}
	return p
}

// PatchPayload maps a local task to a remote patch request. The whole mapped
// task is sent; changed fields are not diffed.
func (c Converter) PatchPayload(t local.Task) service.TaskPayload {
	return c.CreatePayload(t)
}

// SameContent reports whether the local task already matches the remote task
// field for field, comparing due dates as instants.
func SameContent(t local.Task, remote service.Task) bool {
	p, _ := payload(t)
	status := remote.Status
	if status == "" {
		status = service.StatusNeedsAction
	}
	return p.Title == remote.Title &&
		p.Notes == remote.Notes &&
		p.Status == status &&
		sameInstant(p.Due, remote.Due)
}

// NormalizeDue converts an ISO-8601 timestamp or a YYYY-MM-DD date to the
// RFC3339 UTC form the remote service stores.
func NormalizeDue(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return local.FormatTime(t), nil
	}
	if t, err := time.Parse(dateOnly, s); err == nil {
		return local.FormatTime(t), nil
	}
	return "", fmt.Errorf("invalid due date: %q", s)
}

func payload(t local.Task) (service.TaskPayload, error) {
	p := service.TaskPayload{
		Title:  t.Title,
		Status: service.StatusNeedsAction,
	}
	if t.IsCompleted {
		p.Status = service.StatusCompleted
	}
	if strings.TrimSpace(t.Description) != "" {
		p.Notes = t.Description
	}
	due, err := NormalizeDue(t.DueDate)
	p.Due = due
	return p, err
}

func sameInstant(a, b string) bool {
	if a == "" || b == "" {
		return a == b
	}
	return local.Millis(a) == local.Millis(b)
}
