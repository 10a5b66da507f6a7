package tasksync

import "tasksync/internal/local"

// Counts tallies the mutations a sync cycle produced on either side.
type Counts struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
}

// Total returns the sum of all counts.
func (c Counts) Total() int {
	return c.Added + c.Updated + c.Deleted
}

// Binding records the remote id issued for a newly uploaded local task.
type Binding struct {
	LocalID  string `json:"localId"`
	RemoteID string `json:"remoteId"`
}

// Result describes one sync cycle. Remote mutations have already been
// applied; the local ones listed here are for the caller to apply.
type Result struct {
	// Success is false only when the cycle could not run at all.
	// Individual remote call failures are counted in PartialFailures.
	Success bool   `json:"success"`
	Counts  Counts `json:"counts"`

	PartialFailures int `json:"partialFailures"`

	LocalTasksToUpsert      []local.Task `json:"localTasksToUpsert"`
	LocalTasksToMarkDeleted []string     `json:"localTasksToMarkDeleted"`
	Bindings                []Binding    `json:"localIdToRemoteIdBindings"`

	// LocalTasksToPurge lists tombstones that can be removed for good.
	LocalTasksToPurge []string `json:"localTasksToPurge"`

	ResolvedRemoteListID string `json:"resolvedRemoteListId"`
	RemoteListUpdated    string `json:"remoteListUpdated,omitempty"`

	Error string `json:"error,omitempty"`
}

// HasLocalChanges reports whether the caller has anything to apply locally.
func (r Result) HasLocalChanges() bool {
	return len(r.LocalTasksToUpsert) > 0 ||
		len(r.LocalTasksToMarkDeleted) > 0 ||
		len(r.Bindings) > 0 ||
		len(r.LocalTasksToPurge) > 0
}

func failed(err error) Result {
	return Result{Success: false, Error: err.Error()}
}
