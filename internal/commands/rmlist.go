package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasksync/internal/exitcode"
	"tasksync/internal/service"
)

func init() {
	Register(&RmListCmd{})
}

// RmListCmd implements the rmlist command.
type RmListCmd struct {
	force  bool
	remote bool
}

// SetForce sets the force flag (for testing).
func (c *RmListCmd) SetForce(force bool) {
	c.force = force
}

// SetRemote sets the remote flag (for testing).
func (c *RmListCmd) SetRemote(remote bool) {
	c.remote = remote
}

func (c *RmListCmd) Name() string      { return "rmlist" }
func (c *RmListCmd) Aliases() []string { return nil }
func (c *RmListCmd) Synopsis() string  { return "Delete a list" }
func (c *RmListCmd) Usage() string     { return "tasksync rmlist [--force] [--remote] <list-name>" }
func (c *RmListCmd) NeedsAuth() bool   { return false }
func (c *RmListCmd) NeedsStore() bool  { return true }

func (c *RmListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
	fs.BoolVar(&c.remote, "remote", false, "")
}

func (c *RmListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	st := env.Store
	list, err := st.ResolveList(ctx, name)
	if err != nil {
		return reportListError(errOut, name, err)
	}

	isDefault, err := isDefaultList(ctx, st, list)
	if err != nil {
		return reportStoreError(errOut, err)
	}
	if isDefault {
		fmt.Fprintln(errOut, "error: cannot delete default list")
		return exitcode.UserError
	}

	if !c.force {
		open, err := st.OpenTasks(ctx, list.ID)
		if err != nil {
			return reportStoreError(errOut, err)
		}
		if len(open) > 0 {
			fmt.Fprintln(errOut, "error: list not empty (use --force)")
			return exitcode.UserError
		}
	}

	// The remote list goes first so a failure leaves the local binding intact
	if c.remote && list.RemoteID != "" {
		svc, err := env.Service(ctx)
		if err != nil {
			return reportRemoteError(errOut, err)
		}
		if err := svc.DeleteList(ctx, list.RemoteID); err != nil && !service.IsNotFound(err) {
			return reportRemoteError(errOut, err)
		}
	}

	if err := st.DeleteList(ctx, list.ID); err != nil {
		return reportStoreError(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
