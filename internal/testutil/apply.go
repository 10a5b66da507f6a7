package testutil

import (
	"tasksync/internal/local"
	"tasksync/internal/tasksync"
)

// ApplyResult applies the local side of res to tasks the way a caller's
// store would, returning the new task set.
func ApplyResult(tasks []local.Task, res tasksync.Result) []local.Task {
	if !res.Success {
		return tasks
	}

	byID := make(map[string]int, len(tasks))
	out := make([]local.Task, len(tasks))
	copy(out, tasks)
	for i, t := range out {
		byID[t.ID] = i
	}

	for _, t := range res.LocalTasksToUpsert {
		if i, ok := byID[t.ID]; ok {
			out[i] = t
			continue
		}
		byID[t.ID] = len(out)
		out = append(out, t)
	}
	for _, b := range res.Bindings {
		if i, ok := byID[b.LocalID]; ok {
			out[i].RemoteID = b.RemoteID
		}
	}
	for _, id := range res.LocalTasksToMarkDeleted {
		if i, ok := byID[id]; ok {
			out[i].IsDeleted = true
		}
	}

	purge := make(map[string]bool, len(res.LocalTasksToPurge))
	for _, id := range res.LocalTasksToPurge {
		purge[id] = true
	}
	kept := out[:0]
	for _, t := range out {
		if !purge[t.ID] {
			kept = append(kept, t)
		}
	}
	return kept
}
