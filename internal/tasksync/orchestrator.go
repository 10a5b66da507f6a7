package tasksync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"tasksync/internal/local"
	"tasksync/internal/logging"
)

// DefaultNewListTitle names a remote list created for an untitled local list.
const DefaultNewListTitle = "My Tasks"

// ProgressFunc receives short human-readable status lines during a cycle.
type ProgressFunc func(status string)

// Orchestrator runs sync cycles against one remote account.
type Orchestrator struct {
	remote       Remote
	engine       *Engine
	logger       *slog.Logger
	newListTitle string
	bindDefault  func(list local.TaskList) bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used by the orchestrator and its engine.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithNewListTitle sets the title used when creating a remote list for an
// untitled local list.
func WithNewListTitle(title string) Option {
	return func(o *Orchestrator) {
		if strings.TrimSpace(title) != "" {
			o.newListTitle = title
		}
	}
}

// WithBindDefault decides which unbound local lists may bind to the remote
// default list. By default every unbound list tries it first.
func WithBindDefault(fn func(list local.TaskList) bool) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.bindDefault = fn
		}
	}
}

// NewOrchestrator creates an orchestrator. remote carries its own credential;
// build one per invocation rather than sharing it.
func NewOrchestrator(remote Remote, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		remote:       remote,
		logger:       logging.Discard(),
		newListTitle: DefaultNewListTitle,
		bindDefault:  func(local.TaskList) bool { return true },
	}
	for _, opt := range opts {
		opt(o)
	}
	o.engine = NewEngine(remote, o.logger)
	return o
}

// SyncList runs one full cycle for list. tasks may contain tasks of other
// lists; only those belonging to list are considered. Failures to resolve the
// remote list or fetch its tasks yield Success=false with zero counts.
func (o *Orchestrator) SyncList(ctx context.Context, list local.TaskList, tasks []local.Task, onProgress ProgressFunc) Result {
	progress := func(format string, args ...any) {
		if onProgress != nil {
			onProgress(fmt.Sprintf(format, args...))
		}
	}
	logger := o.logger.With("list", list.ID)

	progress("resolving remote list for %s", displayTitle(list.Title))
	remoteListID, remoteUpdated, err := o.resolveRemoteList(ctx, list)
	if err != nil {
		logger.Error("failed to resolve remote list", "error", err)
		return failed(fmt.Errorf("failed to resolve remote list: %w", err))
	}

	progress("fetching remote tasks")
	remoteTasks, err := o.remote.ListTasks(ctx, remoteListID)
	if err != nil {
		logger.Error("failed to fetch remote tasks", "remoteList", remoteListID, "error", err)
		res := failed(fmt.Errorf("failed to fetch remote tasks: %w", err))
		res.ResolvedRemoteListID = remoteListID
		return res
	}

	var own []local.Task
	for _, t := range tasks {
		if t.ListID == list.ID {
			own = append(own, t)
		}
	}

	progress("reconciling %d local and %d remote tasks", len(own), len(remoteTasks))
	res := o.engine.Reconcile(ctx, Input{
		ListID:       list.ID,
		RemoteListID: remoteListID,
		LocalTasks:   own,
		RemoteTasks:  remoteTasks,
	})
	res.ResolvedRemoteListID = remoteListID
	res.RemoteListUpdated = remoteUpdated

	progress("done: %d added, %d updated, %d deleted", res.Counts.Added, res.Counts.Updated, res.Counts.Deleted)
	return res
}

// resolveRemoteList returns the remote list bound to list, binding to the
// remote default list or creating a new one when none is bound yet.
func (o *Orchestrator) resolveRemoteList(ctx context.Context, list local.TaskList) (id, updated string, err error) {
	if list.RemoteID != "" {
		return list.RemoteID, list.RemoteLastModified, nil
	}

	if o.bindDefault(list) {
		def, err := o.remote.DefaultList(ctx)
		if err == nil && def.ID != "" {
			o.logger.Debug("bound to remote default list", "list", list.ID, "remoteList", def.ID)
			return def.ID, def.Updated, nil
		}
		// No usable default list: fall through and create one.
		o.logger.Debug("remote default list unavailable", "list", list.ID, "error", err)
	}

	title := strings.TrimSpace(list.Title)
	if title == "" {
		title = o.newListTitle
	}
	created, err := o.remote.CreateList(ctx, title)
	if err != nil {
		return "", "", err
	}
	if created.ID == "" {
		return "", "", fmt.Errorf("remote service returned a list without an id")
	}
	o.logger.Debug("created remote list", "list", list.ID, "remoteList", created.ID)
	return created.ID, created.Updated, nil
}

func displayTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
