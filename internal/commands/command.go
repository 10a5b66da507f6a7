// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"
	"log/slog"

	"tasksync/internal/config"
	"tasksync/internal/logging"
	"tasksync/internal/service"
	"tasksync/internal/store"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command always talks to the remote service.
	// Commands like help, version, login, logout return false.
	NeedsAuth() bool

	// NeedsStore returns true if the command reads or writes the local store.
	NeedsStore() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// env.Config is always provided; env.Store is nil unless NeedsStore.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}

// Connector opens the remote service.
type Connector func(ctx context.Context) (service.Service, error)

// Env carries what a command needs to run.
type Env struct {
	Config  *config.Config
	Store   *store.Store
	Logger  *slog.Logger
	Connect Connector

	svc service.Service
}

// Service returns the remote service, connecting on first use.
func (e *Env) Service(ctx context.Context) (service.Service, error) {
	if e.svc != nil {
		return e.svc, nil
	}
	if e.Connect == nil {
		return nil, service.ErrNotLoggedIn
	}
	svc, err := e.Connect(ctx)
	if err != nil {
		return nil, err
	}
	e.svc = svc
	return svc, nil
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return logging.Discard()
	}
	return e.Logger
}
