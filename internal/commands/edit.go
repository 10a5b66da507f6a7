package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasksync/internal/convert"
	"tasksync/internal/exitcode"
)

func init() {
	Register(&EditCmd{})
}

// optString is a string flag that remembers whether it was given, so that
// --notes "" clears the notes while an absent --notes keeps them.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	listName string
	title    optString
	notes    optString
	due      optString
}

// SetListName sets the list name (for testing).
func (c *EditCmd) SetListName(name string) { c.listName = name }

// SetTitle sets the new title (for testing).
func (c *EditCmd) SetTitle(title string) { _ = c.title.Set(title) }

// SetNotes sets the new notes (for testing).
func (c *EditCmd) SetNotes(notes string) { _ = c.notes.Set(notes) }

// SetDue sets the new due date (for testing).
func (c *EditCmd) SetDue(due string) { _ = c.due.Set(due) }

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "tasksync edit [--list <list-name>] [--title <text>] [--notes <text>] [--due <date>] <ref>"
}
func (c *EditCmd) NeedsAuth() bool  { return false }
func (c *EditCmd) NeedsStore() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.notes, c.due = optString{}, optString{}, optString{}
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.Var(&c.title, "title", "")
	fs.Var(&c.notes, "notes", "")
	fs.Var(&c.due, "due", "")
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintln(errOut, "error: edit takes a single task reference")
		return exitcode.UserError
	}
	refs, code := parseRefs(args, c.listName, errOut)
	if code != exitcode.Success {
		return code
	}
	if !c.title.set && !c.notes.set && !c.due.set {
		fmt.Fprintln(errOut, "error: nothing to change (use --title, --notes or --due)")
		return exitcode.UserError
	}
	if c.title.set && strings.TrimSpace(c.title.value) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	var due string
	if c.due.set {
		var err error
		if due, err = convert.NormalizeDue(c.due.value); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}

	task, err := newTaskLookup(env.Store, c.listName).find(ctx, refs[0])
	if err != nil {
		return reportLookupError(errOut, c.listName, err)
	}

	if c.title.set {
		task.Title = c.title.value
	}
	if c.notes.set {
		task.Description = c.notes.value
	}
	if c.due.set {
		task.DueDate = due
	}

	if _, err := env.Store.UpdateTask(ctx, task); err != nil {
		return reportStoreError(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
