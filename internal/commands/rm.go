package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/exitcode"
	"todo/internal/viewmodel"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "todo rm <id>" }
func (c *RmCmd) NeedsBackend() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, ok := taskID(args, errOut)
	if !ok {
		return exitcode.UserError
	}

	vm := newModel(env, viewmodel.Options{})
	if err := vm.DeleteTask(ctx, id); err != nil {
		return backendFailure(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
