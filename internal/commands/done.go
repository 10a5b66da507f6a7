package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/exitcode"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct {
	listName string
}

// SetListName sets the list name (for testing).
func (c *DoneCmd) SetListName(name string) {
	c.listName = name
}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string  { return "Mark tasks completed" }
func (c *DoneCmd) Usage() string     { return "tasksync done [--list <list-name>] <ref...>" }
func (c *DoneCmd) NeedsAuth() bool   { return false }
func (c *DoneCmd) NeedsStore() bool  { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *DoneCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	refs, code := parseRefs(args, c.listName, errOut)
	if code != exitcode.Success {
		return code
	}

	tasks, err := newTaskLookup(env.Store, c.listName).findAll(ctx, refs)
	if err != nil {
		return reportLookupError(errOut, c.listName, err)
	}

	for _, task := range tasks {
		task.IsCompleted = true
		if _, err := env.Store.UpdateTask(ctx, task); err != nil {
			return reportStoreError(errOut, err)
		}
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
