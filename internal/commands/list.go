package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasksync/internal/exitcode"
	"tasksync/internal/local"
	"tasksync/internal/output"
	"tasksync/internal/store"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `tasksync` (no args) and `tasksync list <list-name>`.
type ListCmd struct {
	all bool
}

// SetAll sets the --all flag (for testing).
func (c *ListCmd) SetAll(all bool) {
	c.all = all
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return nil }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "tasksync list [--all] [<list-name>]" }
func (c *ListCmd) NeedsAuth() bool   { return false }
func (c *ListCmd) NeedsStore() bool  { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return c.listAll(ctx, env, out, errOut)
	}
	return c.listOne(ctx, env, strings.Join(args, " "), out, errOut)
}

// listAll lists tasks from all lists (tasksync with no args).
func (c *ListCmd) listAll(ctx context.Context, env *Env, out, errOut io.Writer) int {
	st := env.Store
	hasAnyTasks := false

	def, err := st.DefaultList(ctx)
	if err != nil {
		return reportStoreError(errOut, err)
	}
	defaultTasks, err := st.Tasks(ctx, def.ID, false)
	if err != nil {
		return reportStoreError(errOut, err)
	}

	// Default list tasks print without a header
	open, done := splitCompleted(defaultTasks)
	for i, task := range open {
		output.FormatTask(out, i+1, task)
		hasAnyTasks = true
	}
	if c.all {
		for _, task := range done {
			output.FormatCompletedTask(out, false, task)
			hasAnyTasks = true
		}
	}

	lists, err := letteredLists(ctx, st)
	if err != nil {
		return reportStoreError(errOut, err)
	}

	letter := 'a'
	for _, list := range lists {
		if letter > 'z' {
			fmt.Fprintln(errOut, "error: too many lists (max 26)")
			return exitcode.UserError
		}

		tasks, err := st.Tasks(ctx, list.ID, false)
		if err != nil {
			return reportStoreError(errOut, err)
		}
		open, done := splitCompleted(tasks)

		output.FormatListHeader(out, list.Title, false)
		for i, task := range open {
			output.FormatTaskWithLetter(out, letter, i+1, task)
		}
		if c.all {
			for _, task := range done {
				output.FormatCompletedTask(out, true, task)
			}
		}
		letter++
		hasAnyTasks = true
	}

	if !hasAnyTasks && !env.Config.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}

// listOne lists tasks from a specific list (tasksync list <name>).
func (c *ListCmd) listOne(ctx context.Context, env *Env, listName string, out, errOut io.Writer) int {
	listName = strings.TrimSpace(listName)
	if listName == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	st := env.Store
	list, err := st.ResolveList(ctx, listName)
	if err != nil {
		return reportListError(errOut, listName, err)
	}
	isDefault, err := isDefaultList(ctx, st, list)
	if err != nil {
		return reportStoreError(errOut, err)
	}

	tasks, err := st.Tasks(ctx, list.ID, false)
	if err != nil {
		return reportStoreError(errOut, err)
	}
	open, done := splitCompleted(tasks)

	// Print list section (even if empty)
	output.FormatListHeader(out, list.Title, isDefault)
	for i, task := range open {
		output.FormatTaskIndented(out, i+1, task)
	}
	if c.all {
		for _, task := range done {
			output.FormatCompletedTask(out, true, task)
		}
	}
	return exitcode.Success
}

// splitCompleted separates open tasks from completed ones, keeping order.
func splitCompleted(tasks []local.Task) (open, done []local.Task) {
	for _, t := range tasks {
		if t.IsCompleted {
			done = append(done, t)
		} else {
			open = append(open, t)
		}
	}
	return open, done
}

func isDefaultList(ctx context.Context, st *store.Store, list local.TaskList) (bool, error) {
	def, err := st.DefaultList(ctx)
	if err != nil {
		return false, err
	}
	return def.ID == list.ID, nil
}
