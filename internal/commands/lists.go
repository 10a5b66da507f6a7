package commands

import (
	"context"
	"flag"
	"io"

	"tasksync/internal/exitcode"
	"tasksync/internal/output"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command.
type ListsCmd struct{}

func (c *ListsCmd) Name() string      { return "lists" }
func (c *ListsCmd) Aliases() []string { return nil }
func (c *ListsCmd) Synopsis() string  { return "Print all lists" }
func (c *ListsCmd) Usage() string     { return "tasksync lists [common flags]" }
func (c *ListsCmd) NeedsAuth() bool   { return false }
func (c *ListsCmd) NeedsStore() bool  { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	def, err := env.Store.DefaultList(ctx)
	if err != nil {
		return reportStoreError(errOut, err)
	}
	lists, err := env.Store.Lists(ctx)
	if err != nil {
		return reportStoreError(errOut, err)
	}

	for _, list := range lists {
		output.FormatListName(out, list, list.ID == def.ID)
	}
	return exitcode.Success
}
