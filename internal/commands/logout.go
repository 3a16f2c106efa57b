package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"go.uber.org/zap"

	"todo/internal/exitcode"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd removes the stored Google token. The OAuth client file is kept
// so a later login needs no setup.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string       { return "logout" }
func (c *LogoutCmd) Aliases() []string  { return nil }
func (c *LogoutCmd) Synopsis() string   { return "Remove stored Google credentials" }
func (c *LogoutCmd) Usage() string      { return "todo logout [common flags]" }
func (c *LogoutCmd) NeedsBackend() bool { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	cfg := env.Config
	if !cfg.HasToken() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	if err := cfg.RemoveToken(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}
	if env.Logger != nil {
		env.Logger.Info("oauth token removed", zap.String("path", cfg.TokenPath()))
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
