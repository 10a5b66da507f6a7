package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasksync/internal/convert"
	"tasksync/internal/exitcode"
	"tasksync/internal/local"
)

func init() {
	Register(&AddCmd{})
	Register(&CreateCmd{})
}

// addFlags are shared by add and create.
type addFlags struct {
	listName string
	notes    string
	due      string
}

func (f *addFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.listName, "list", "", "")
	fs.StringVar(&f.listName, "l", "", "")
	fs.StringVar(&f.notes, "notes", "", "")
	fs.StringVar(&f.due, "due", "", "")
}

// AddCmd implements the add command.
type AddCmd struct {
	flags addFlags
}

// SetListName sets the list name (for testing).
func (c *AddCmd) SetListName(name string) {
	c.flags.listName = name
}

// SetNotes sets the notes (for testing).
func (c *AddCmd) SetNotes(notes string) {
	c.flags.notes = notes
}

// SetDue sets the due date (for testing).
func (c *AddCmd) SetDue(due string) {
	c.flags.due = due
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return nil }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "tasksync add [--list <list-name>] [--notes <text>] [--due <date>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool  { return false }
func (c *AddCmd) NeedsStore() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.flags.register(fs)
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, env, c.flags, args, out, errOut)
}

// CreateCmd is an alias for AddCmd.
type CreateCmd struct {
	flags addFlags
}

func (c *CreateCmd) Name() string      { return "create" }
func (c *CreateCmd) Aliases() []string { return nil }
func (c *CreateCmd) Synopsis() string  { return "Create a task (alias for add)" }
func (c *CreateCmd) Usage() string {
	return "tasksync create [--list <list-name>] [--notes <text>] [--due <date>] <title...>"
}
func (c *CreateCmd) NeedsAuth() bool  { return false }
func (c *CreateCmd) NeedsStore() bool { return true }

func (c *CreateCmd) RegisterFlags(fs *flag.FlagSet) {
	c.flags.register(fs)
}

func (c *CreateCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, env, c.flags, args, out, errOut)
}

// runAdd is the shared implementation for add and create commands.
func runAdd(ctx context.Context, env *Env, flags addFlags, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	due, err := convert.NormalizeDue(flags.due)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	st := env.Store
	var list local.TaskList
	if flags.listName != "" {
		list, err = st.ResolveList(ctx, flags.listName)
		if err != nil {
			return reportListError(errOut, flags.listName, err)
		}
	} else {
		list, err = st.DefaultList(ctx)
		if err != nil {
			return reportStoreError(errOut, err)
		}
	}

	task, err := st.CreateTask(ctx, local.Task{
		ListID:      list.ID,
		Title:       title,
		Description: flags.notes,
		DueDate:     due,
	})
	if err != nil {
		return reportStoreError(errOut, err)
	}
	env.logger().Debug("created task", "task", task.ID, "list", list.ID)

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
