package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/exitcode"
	"todo/internal/ui"
	"todo/internal/viewmodel"
)

func init() {
	Register(&TUICmd{})
}

// TUICmd runs the interactive task list.
type TUICmd struct{}

func (c *TUICmd) Name() string       { return "tui" }
func (c *TUICmd) Aliases() []string  { return []string{"ui"} }
func (c *TUICmd) Synopsis() string   { return "Open the interactive task list" }
func (c *TUICmd) Usage() string      { return "todo tui" }
func (c *TUICmd) NeedsBackend() bool { return true }
func (c *TUICmd) OwnsTerminal() bool { return true }

func (c *TUICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TUICmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	vm := newModel(env, viewmodel.Options{})
	if err := ui.RunTUI(ctx, vm, out); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
