// Package cli parses the command line and dispatches to commands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/logging"
	"todo/internal/service"
)

// DefaultCommand runs when no command is given.
const DefaultCommand = "list"

// ServiceFactory creates the task backend for a loaded config.
type ServiceFactory func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry   *commands.Registry
	factory    ServiceFactory
	defaultCmd string
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry:   registry,
		factory:    factory,
		defaultCmd: DefaultCommand,
	}
}

// SetDefaultCommand changes the command run for an empty argument list.
func (d *Dispatcher) SetDefaultCommand(name string) {
	d.defaultCmd = name
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return d.dispatch(ctx, d.defaultCmd, nil, out, errOut)
	}

	// Flags require a command.
	if strings.HasPrefix(args[0], "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
		return exitcode.UserError
	}
	return d.dispatch(ctx, args[0], args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	quiet     bool
	debug     bool
	userID    string
	apiURL    string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configDir, "config", "", "")
	fs.BoolVar(&c.quiet, "quiet", false, "")
	fs.BoolVar(&c.debug, "debug", false, "")
	fs.StringVar(&c.userID, "user", "", "")
	fs.StringVar(&c.apiURL, "api-url", "", "")
}

// apply layers the flags over the loaded config.
func (c *commonFlags) apply(cfg *config.Config) {
	cfg.Quiet = c.quiet
	cfg.Debug = c.debug
	if c.userID != "" {
		cfg.API.UserID = c.userID
	}
	if c.apiURL != "" {
		cfg.API.BaseURL = c.apiURL
	}
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	var common commonFlags
	common.register(fs)
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.Load(common.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: config error: %s\n", err)
		return exitcode.AuthError
	}
	common.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(errOut, "error: config error: %s\n", oneLine(err))
		return exitcode.AuthError
	}

	logger, closeLog, err := logging.Open(logConfig(cfg, cmd), logFallback(cfg, errOut))
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	defer closeLog()
	logger = logger.With(zap.String("command", cmd.Name()))

	env := &commands.Env{Config: cfg, Logger: logger}
	if cmd.NeedsBackend() {
		if code, ok := d.preflight(cfg, errOut); !ok {
			return code
		}
		if d.factory == nil {
			fmt.Fprintln(errOut, "error: backend error: no backend configured")
			return exitcode.BackendError
		}
		svc, err := d.factory(ctx, cfg, logger)
		if err != nil {
			logger.Error("backend setup failed", zap.String("backend", cfg.Backend), zap.Error(err))
			if service.IsAuth(err) {
				fmt.Fprintf(errOut, "error: auth error: %s\n", err)
				return exitcode.AuthError
			}
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
		env.Service = svc
	}

	logger.Debug("dispatch", zap.Strings("args", positionalArgs), zap.String("backend", cfg.Backend))
	return cmd.Run(ctx, env, positionalArgs, out, errOut)
}

// preflight reports missing Google credentials before any request is made.
func (d *Dispatcher) preflight(cfg *config.Config, errOut io.Writer) (int, bool) {
	if cfg.Backend != config.BackendGoogleTasks {
		return exitcode.Success, true
	}
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: %s not found in %s\n", config.OAuthClientFile, cfg.Dir)
		return exitcode.AuthError, false
	}
	if !cfg.HasToken() {
		fmt.Fprintln(errOut, "error: not logged in (run: todo login)")
		return exitcode.AuthError, false
	}
	return exitcode.Success, true
}

// logConfig sends the log of terminal-owning commands to a file.
func logConfig(cfg *config.Config, cmd commands.Command) logging.Config {
	lc := logging.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
		File:     cfg.Log.File,
	}
	if cfg.Debug {
		lc.Level = "debug"
	}
	if owner, ok := cmd.(commands.TerminalOwner); ok && owner.OwnsTerminal() && lc.File == "" {
		lc.File = cfg.DefaultLogPath()
	}
	return lc
}

// logFallback is where the log goes without a file: stderr with --debug,
// nowhere otherwise.
func logFallback(cfg *config.Config, errOut io.Writer) io.Writer {
	if cfg.Debug {
		return errOut
	}
	return io.Discard
}

// flagError rewrites flag package errors into the CLI's wording.
func flagError(err error) string {
	errStr := err.Error()
	switch {
	case strings.HasPrefix(errStr, "flag needs an argument:"):
		return "flag needs an argument: " + strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
	case strings.HasPrefix(errStr, "flag provided but not defined:"):
		return "unknown flag: " + strings.TrimSpace(strings.TrimPrefix(errStr, "flag provided but not defined:"))
	}
	return errStr
}

func oneLine(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", "; ")
}
