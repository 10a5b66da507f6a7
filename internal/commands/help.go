package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "tasksync help [<command>]" }
func (c *HelpCmd) NeedsAuth() bool   { return false }
func (c *HelpCmd) NeedsStore() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(out, helpText)
		return exitcode.Success
	}

	cmd, ok := DefaultRegistry.Find(args[0])
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
		return exitcode.UserError
	}
	fmt.Fprintf(out, "%s\n\n  %s\n", cmd.Synopsis(), cmd.Usage())
	return exitcode.Success
}

const helpText = `Usage:
  tasksync                                           List all open tasks
  tasksync list [common flags] [--all] [<list-name>] List tasks (--all includes completed)
  tasksync add [common flags] [--list <list-name>] [--notes <text>] [--due <date>] <title...>
  tasksync create [common flags] [--list <list-name>] [--notes <text>] [--due <date>] <title...>
  tasksync edit [common flags] [--list <list-name>] [--title <text>] [--notes <text>] [--due <date>] <ref>
  tasksync done [common flags] [--list <list-name>] <ref...>
  tasksync rm [common flags] [--list <list-name>] <ref...>
  tasksync lists [common flags]
  tasksync createlist [common flags] <list-name>
  tasksync addlist [common flags] <list-name>
  tasksync rmlist [common flags] [--force] [--remote] <list-name>
  tasksync sync [common flags] [--all] [<list-name>]
  tasksync login [common flags]
  tasksync logout [common flags]
  tasksync help [<command>]
  tasksync version

Task references:
  3      task 3 of the default list
  b2     task 2 of the list shown with letter b

Due dates are YYYY-MM-DD or RFC 3339 timestamps.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
