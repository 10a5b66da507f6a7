package tasksync

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"tasksync/internal/convert"
	"tasksync/internal/local"
	"tasksync/internal/logging"
	"tasksync/internal/service"
)

// localIDNamespace derives a local id from a remote id when the remote id is
// already taken by an unrelated local task.
var localIDNamespace = uuid.MustParse("5b0f8f0e-3c2a-4d8e-9a57-6f1c2d9e4b11")

// Input is one list's state on both sides.
type Input struct {
	ListID       string
	RemoteListID string
	LocalTasks   []local.Task
	RemoteTasks  []service.Task
}

// Engine reconciles a local list with its remote list.
// It keeps no state between calls.
type Engine struct {
	remote Remote
	conv   convert.Converter
	logger *slog.Logger
}

// NewEngine creates an engine issuing remote mutations through remote.
func NewEngine(remote Remote, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		remote: remote,
		conv:   convert.New(logger),
		logger: logger,
	}
}

// reconciliation holds the per-cycle indexes and the result being built.
type reconciliation struct {
	in         Input
	byRemoteID map[string]local.Task
	byLocalID  map[string]local.Task
	remoteByID map[string]service.Task
	res        Result
}

// Reconcile runs the five passes and returns what the caller must apply
// locally. Remote call failures are logged and counted, never returned.
func (e *Engine) Reconcile(ctx context.Context, in Input) Result {
	r := &reconciliation{
		in:         in,
		byRemoteID: make(map[string]local.Task),
		byLocalID:  make(map[string]local.Task, len(in.LocalTasks)),
		remoteByID: make(map[string]service.Task, len(in.RemoteTasks)),
		res: Result{
			Success:              true,
			ResolvedRemoteListID: in.RemoteListID,
		},
	}
	for _, t := range in.LocalTasks {
		r.byLocalID[t.ID] = t
		if t.Synced() {
			r.byRemoteID[t.RemoteID] = t
		}
	}
	for _, rt := range in.RemoteTasks {
		r.remoteByID[rt.ID] = rt
	}

	// Passes 1 and 2 read the remote set; 3 to 5 read the local set and
	// touch disjoint tasks.
	e.resolveConflicts(ctx, r)
	e.importRemoteOnly(r)
	e.uploadUnsynced(ctx, r)
	e.propagateLocalDeletes(ctx, r)
	e.detectRemoteDeletes(r)

	e.logger.Debug("reconciled list",
		"list", in.ListID,
		"remoteList", in.RemoteListID,
		"added", r.res.Counts.Added,
		"updated", r.res.Counts.Updated,
		"deleted", r.res.Counts.Deleted,
		"failed", r.res.PartialFailures)
	return r.res
}

// resolveConflicts handles tasks present on both sides. The strictly newer
// side wins wholesale; equal timestamps are a no-op.
//
// A pair whose mapped content is identical is also a no-op, even when the
// remote side is newer: the local task keeps its lastModified instead of
// taking the remote updated stamp. The remote service re-stamps updated on
// every write, so adopting it would turn each cycle's own patches into a
// fresh remote-wins update on the next cycle.
func (e *Engine) resolveConflicts(ctx context.Context, r *reconciliation) {
	for _, rt := range r.in.RemoteTasks {
		lt, ok := r.byRemoteID[rt.ID]
		if !ok || lt.IsDeleted {
			continue
		}
		if convert.SameContent(lt, rt) {
			continue
		}

		remoteMillis := local.Millis(rt.Updated)
		localMillis := local.Millis(lt.LastModified)
		switch {
		case remoteMillis > localMillis:
			r.res.LocalTasksToUpsert = append(r.res.LocalTasksToUpsert, e.conv.RemoteToLocal(rt, r.in.ListID, lt.ID))
			r.res.Counts.Updated++
		case localMillis > remoteMillis:
			if _, err := e.remote.UpdateTask(ctx, r.in.RemoteListID, rt.ID, e.conv.PatchPayload(lt)); err != nil {
				e.logger.Warn("failed to update remote task", "task", lt.ID, "remoteId", rt.ID, "error", err)
				r.res.PartialFailures++
				continue
			}
			r.res.Counts.Updated++
		}
	}
}

// importRemoteOnly queues remote tasks with no local twin as new local tasks.
func (e *Engine) importRemoteOnly(r *reconciliation) {
	for _, rt := range r.in.RemoteTasks {
		if _, ok := r.byRemoteID[rt.ID]; ok {
			continue
		}
		localID := rt.ID
		if _, taken := r.byLocalID[localID]; taken {
			localID = uuid.NewSHA1(localIDNamespace, []byte(rt.ID)).String()
		}
		r.res.LocalTasksToUpsert = append(r.res.LocalTasksToUpsert, e.conv.RemoteToLocal(rt, r.in.ListID, localID))
		r.res.Counts.Added++
	}
}

// uploadUnsynced creates remote tasks for local tasks that were never synced.
// Tombstones that never reached the remote are retired directly.
func (e *Engine) uploadUnsynced(ctx context.Context, r *reconciliation) {
	for _, lt := range r.in.LocalTasks {
		if lt.Synced() {
			continue
		}
		if lt.IsDeleted {
			r.res.LocalTasksToPurge = append(r.res.LocalTasksToPurge, lt.ID)
			continue
		}

		created, err := e.remote.CreateTask(ctx, r.in.RemoteListID, e.conv.CreatePayload(lt))
		if err != nil {
			e.logger.Warn("failed to create remote task", "task", lt.ID, "error", err)
			r.res.PartialFailures++
			continue
		}
		r.res.Bindings = append(r.res.Bindings, Binding{LocalID: lt.ID, RemoteID: created.ID})
		r.res.Counts.Added++
	}
}

// propagateLocalDeletes deletes the remote twin of every bound tombstone.
// A twin already missing from the remote set counts as confirmed deletion.
func (e *Engine) propagateLocalDeletes(ctx context.Context, r *reconciliation) {
	for _, lt := range r.in.LocalTasks {
		if !lt.IsDeleted || !lt.Synced() {
			continue
		}
		if _, ok := r.remoteByID[lt.RemoteID]; !ok {
			r.res.LocalTasksToPurge = append(r.res.LocalTasksToPurge, lt.ID)
			continue
		}

		err := e.remote.DeleteTask(ctx, r.in.RemoteListID, lt.RemoteID)
		if err != nil && !service.IsNotFound(err) {
			e.logger.Warn("failed to delete remote task", "task", lt.ID, "remoteId", lt.RemoteID, "error", err)
			r.res.PartialFailures++
			continue
		}
		r.res.LocalTasksToPurge = append(r.res.LocalTasksToPurge, lt.ID)
		r.res.Counts.Deleted++
	}
}

// detectRemoteDeletes tombstones bound local tasks that vanished remotely.
func (e *Engine) detectRemoteDeletes(r *reconciliation) {
	for _, lt := range r.in.LocalTasks {
		if !lt.Synced() || lt.IsDeleted {
			continue
		}
		if _, ok := r.remoteByID[lt.RemoteID]; ok {
			continue
		}
		r.res.LocalTasksToMarkDeleted = append(r.res.LocalTasksToMarkDeleted, lt.ID)
		r.res.Counts.Deleted++
	}
}
