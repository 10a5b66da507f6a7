package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/exitcode"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command. Synced tasks stay behind as tombstones
// until the next sync deletes their remote twin.
type RmCmd struct {
	listName string
}

// SetListName sets the list name (for testing).
func (c *RmCmd) SetListName(name string) {
	c.listName = name
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return nil }
func (c *RmCmd) Synopsis() string  { return "Delete tasks" }
func (c *RmCmd) Usage() string     { return "tasksync rm [--list <list-name>] <ref...>" }
func (c *RmCmd) NeedsAuth() bool   { return false }
func (c *RmCmd) NeedsStore() bool  { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	refs, code := parseRefs(args, c.listName, errOut)
	if code != exitcode.Success {
		return code
	}

	tasks, err := newTaskLookup(env.Store, c.listName).findAll(ctx, refs)
	if err != nil {
		return reportLookupError(errOut, c.listName, err)
	}

	for _, task := range tasks {
		if err := env.Store.DeleteTask(ctx, task.ID); err != nil {
			return reportStoreError(errOut, err)
		}
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
