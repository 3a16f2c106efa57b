package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/exitcode"
	"todo/internal/viewmodel"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
}

// SetDescription sets the description (for testing).
func (c *AddCmd) SetDescription(description string) {
	c.description = description
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "todo add --description <text> <title...>" }
func (c *AddCmd) NeedsBackend() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	vm := newModel(env, viewmodel.Options{})
	vm.SetTitle(strings.Join(args, " "))
	vm.SetDescription(c.description)

	if err := vm.SubmitNewTask(ctx); err != nil {
		if errors.Is(err, viewmodel.ErrDraftIncomplete) {
			fmt.Fprintf(errOut, "error: %s\n", viewmodel.DraftIncompleteMessage)
			return exitcode.UserError
		}
		return backendFailure(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
