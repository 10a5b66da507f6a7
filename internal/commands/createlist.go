package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasksync/internal/exitcode"
	"tasksync/internal/store"
)

func init() {
	Register(&CreateListCmd{})
	Register(&AddListCmd{})
}

// CreateListCmd implements the createlist command.
type CreateListCmd struct{}

func (c *CreateListCmd) Name() string      { return "createlist" }
func (c *CreateListCmd) Aliases() []string { return nil }
func (c *CreateListCmd) Synopsis() string  { return "Create a new list" }
func (c *CreateListCmd) Usage() string     { return "tasksync createlist [common flags] <list-name>" }
func (c *CreateListCmd) NeedsAuth() bool   { return false }
func (c *CreateListCmd) NeedsStore() bool  { return true }

func (c *CreateListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CreateListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return runCreateList(ctx, env, args, out, errOut)
}

// AddListCmd is an alias for CreateListCmd.
type AddListCmd struct{}

func (c *AddListCmd) Name() string      { return "addlist" }
func (c *AddListCmd) Aliases() []string { return nil }
func (c *AddListCmd) Synopsis() string  { return "Create a new list (alias for createlist)" }
func (c *AddListCmd) Usage() string     { return "tasksync addlist [common flags] <list-name>" }
func (c *AddListCmd) NeedsAuth() bool   { return false }
func (c *AddListCmd) NeedsStore() bool  { return true }

func (c *AddListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return runCreateList(ctx, env, args, out, errOut)
}

// runCreateList is the shared implementation for createlist and addlist commands.
func runCreateList(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	st := env.Store

	// Make sure the default list exists first so the new list never becomes it
	if _, err := st.DefaultList(ctx); err != nil {
		return reportStoreError(errOut, err)
	}

	_, err := st.ResolveList(ctx, name)
	switch {
	case err == nil, errors.Is(err, store.ErrAmbiguous):
		fmt.Fprintf(errOut, "error: list already exists: %s\n", name)
		return exitcode.UserError
	case !errors.Is(err, store.ErrNotFound):
		return reportStoreError(errOut, err)
	}

	if _, err := st.CreateList(ctx, name); err != nil {
		return reportStoreError(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
