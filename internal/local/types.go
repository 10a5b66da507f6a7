// Package local defines the on-device task and list records.
//
// Timestamps are ISO-8601 strings so records serialize to JSON exactly as they
// are persisted.
package local

import "time"

// Task is a task stored on this device.
type Task struct {
	ID          string `json:"id"`
	ListID      string `json:"listId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	IsCompleted bool   `json:"isCompleted"`
	CreatedAt   string `json:"createdAt"`

	// LastModified is compared against the remote "updated" stamp during sync.
	LastModified string `json:"lastModified"`

	// RemoteID is set once the task has been uploaded at least once.
	RemoteID string `json:"remoteId,omitempty"`

	// IsDeleted marks a tombstone kept until the remote deletion is confirmed.
	IsDeleted bool `json:"isDeleted,omitempty"`
}

// Synced reports whether the task has a remote counterpart.
func (t Task) Synced() bool {
	return t.RemoteID != ""
}

// TaskList is a list stored on this device.
type TaskList struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CreatedAt    string `json:"createdAt"`
	LastModified string `json:"lastModified"`

	// RemoteID never changes once set.
	RemoteID           string `json:"remoteId,omitempty"`
	RemoteLastModified string `json:"remoteLastModified,omitempty"`
}

// Now returns the current time formatted for a record timestamp.
func Now() string {
	return FormatTime(time.Now())
}

// FormatTime formats t as a UTC ISO-8601 timestamp with millisecond precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// Millis parses an ISO-8601 timestamp into epoch milliseconds.
// Empty or unparseable values are treated as 0.
func Millis(ts string) int64 {
	if ts == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}
