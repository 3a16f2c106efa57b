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
	Register(&DoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string   { return "Mark a task completed" }
func (c *DoneCmd) Usage() string      { return "todo done <id>" }
func (c *DoneCmd) NeedsBackend() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, ok := taskID(args, errOut)
	if !ok {
		return exitcode.UserError
	}

	// Fetch the stored task so every other field is sent back unchanged.
	task, err := env.Service.GetTask(ctx, env.Config.API.UserID, id)
	if err != nil {
		return backendFailure(errOut, err)
	}

	vm := newModel(env, viewmodel.Options{})
	if err := vm.CompleteTask(ctx, id, task); err != nil {
		return backendFailure(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// taskID extracts the single task id argument.
func taskID(args []string, errOut io.Writer) (string, bool) {
	switch {
	case len(args) == 0:
		fmt.Fprintln(errOut, "error: task id required")
		return "", false
	case len(args) > 1:
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return "", false
	}
	return args[0], true
}
