// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"go.uber.org/zap"

	"todo/internal/config"
	"todo/internal/service"
)

// Env is what a command runs against.
type Env struct {
	// Config is always provided (config dir, paths, settings).
	Config *config.Config

	// Service is nil if NeedsBackend() returns false.
	Service service.Service

	// Logger is the operator log. Never nil when built by the dispatcher.
	Logger *zap.Logger
}

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

	// NeedsBackend returns true if the command talks to the task backend.
	// Commands like help, version, login, logout return false.
	NeedsBackend() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}

// TerminalOwner is implemented by commands that draw on the terminal
// themselves. Their log goes to a file instead of stderr.
type TerminalOwner interface {
	OwnsTerminal() bool
}
