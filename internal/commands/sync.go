package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"tasksync/internal/exitcode"
	"tasksync/internal/local"
	"tasksync/internal/output"
	"tasksync/internal/tasksync"
)

func init() {
	Register(&SyncCmd{})
}

// syncLocks serializes sync cycles per local list within this process.
var syncLocks tasksync.ListLocker

// SyncCmd implements the sync command.
type SyncCmd struct {
	all bool
}

// SetAll sets the --all flag (for testing).
func (c *SyncCmd) SetAll(all bool) {
	c.all = all
}

func (c *SyncCmd) Name() string      { return "sync" }
func (c *SyncCmd) Aliases() []string { return nil }
func (c *SyncCmd) Synopsis() string  { return "Sync lists with Google Tasks" }
func (c *SyncCmd) Usage() string     { return "tasksync sync [--all] [<list-name>]" }
func (c *SyncCmd) NeedsAuth() bool   { return true }
func (c *SyncCmd) NeedsStore() bool  { return true }

func (c *SyncCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *SyncCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if c.all && len(args) > 0 {
		fmt.Fprintln(errOut, "error: cannot use both --all and a list name")
		return exitcode.UserError
	}

	st := env.Store
	def, err := st.DefaultList(ctx)
	if err != nil {
		return reportStoreError(errOut, err)
	}

	var lists []local.TaskList
	switch {
	case c.all:
		if lists, err = st.Lists(ctx); err != nil {
			return reportStoreError(errOut, err)
		}
	case len(args) > 0:
		name := strings.TrimSpace(strings.Join(args, " "))
		list, err := st.ResolveList(ctx, name)
		if err != nil {
			return reportListError(errOut, name, err)
		}
		lists = []local.TaskList{list}
	default:
		lists = []local.TaskList{def}
	}

	svc, err := env.Service(ctx)
	if err != nil {
		return reportRemoteError(errOut, err)
	}

	settings := env.Config.Settings.Sync
	orch := tasksync.NewOrchestrator(svc,
		tasksync.WithLogger(env.logger()),
		tasksync.WithNewListTitle(settings.NewListTitle),
		tasksync.WithBindDefault(func(l local.TaskList) bool { return l.ID == def.ID }),
	)

	var mu sync.Mutex
	labelled := len(lists) > 1
	progress := func(list local.TaskList) tasksync.ProgressFunc {
		if env.Config.Quiet {
			return nil
		}
		return func(msg string) {
			mu.Lock()
			defer mu.Unlock()
			if labelled {
				fmt.Fprintf(errOut, "%s: %s\n", list.Title, msg)
			} else {
				fmt.Fprintln(errOut, msg)
			}
		}
	}

	results := make([]tasksync.Result, len(lists))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(settings.Concurrency, 1))
	for i, list := range lists {
		g.Go(func() error {
			results[i] = syncList(gctx, env, orch, list, progress(list))
			return nil
		})
	}
	_ = g.Wait()

	code := exitcode.Success
	for i, res := range results {
		label := ""
		if labelled {
			label = lists[i].Title
		}
		if !res.Success {
			fmt.Fprintf(errOut, "error: sync failed: %s: %s\n", lists[i].Title, res.Error)
			code = exitcode.BackendError
			continue
		}
		if !env.Config.Quiet || res.PartialFailures > 0 {
			output.FormatSyncSummary(out, label, res)
		}
	}
	return code
}

// syncList runs one cycle for list under its lock and applies the result
// to the store.
func syncList(ctx context.Context, env *Env, orch *tasksync.Orchestrator, list local.TaskList, onProgress tasksync.ProgressFunc) tasksync.Result {
	unlock, ok := syncLocks.TryLock(list.ID)
	if !ok {
		env.logger().Debug("waiting for running sync", "list", list.ID)
		unlock = syncLocks.Lock(list.ID)
	}
	defer unlock()

	// Re-read under the lock; another cycle may have bound the list meanwhile
	list, err := env.Store.List(ctx, list.ID)
	if err != nil {
		return tasksync.Result{Error: err.Error()}
	}
	tasks, err := env.Store.Tasks(ctx, list.ID, true)
	if err != nil {
		return tasksync.Result{Error: err.Error()}
	}

	res := orch.SyncList(ctx, list, tasks, onProgress)
	if !res.Success {
		return res
	}
	if err := env.Store.ApplySyncResult(ctx, list.ID, res); err != nil {
		env.logger().Error("failed to apply sync result", "list", list.ID, "error", err)
		// Tasks created remotely in this cycle stay unbound and will be uploaded again
		for _, b := range res.Bindings {
			env.logger().Error("remote task left unbound", "list", list.ID, "remoteList", res.ResolvedRemoteListID, "task", b.LocalID, "remoteId", b.RemoteID)
		}
		res.Success = false
		res.Error = err.Error()
	}
	return res
}
