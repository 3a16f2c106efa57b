package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
	"todo/internal/viewmodel"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todo` (no args, not a terminal) and `todo list`.
type ListCmd struct {
	status string
	page   int
	limit  int
}

// SetPage sets the page number (for testing).
func (c *ListCmd) SetPage(page int) {
	c.page = page
}

// SetStatus sets the status filter (for testing).
func (c *ListCmd) SetStatus(status string) {
	c.status = status
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "todo list [--status pending|completed] [--page <n>] [--limit <n>]"
}
func (c *ListCmd) NeedsBackend() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.status, "s", "", "")
	fs.IntVar(&c.page, "page", 1, "")
	fs.IntVar(&c.limit, "limit", 0, "")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	status, err := service.ParseStatus(c.status)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	page := c.page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		fmt.Fprintf(errOut, "error: invalid page number: %d\n", c.page)
		return exitcode.UserError
	}
	if c.limit < 0 {
		fmt.Fprintf(errOut, "error: invalid limit: %d\n", c.limit)
		return exitcode.UserError
	}

	vm := newModel(env, viewmodel.Options{
		Page:   page,
		Limit:  c.limit,
		Status: status,
	})
	if err := vm.Fetch(ctx); err != nil {
		return backendFailure(errOut, err)
	}

	state := vm.State()
	if len(state.Tasks) == 0 {
		if !env.Config.Quiet {
			fmt.Fprintln(out, output.NoTasks)
		}
		return exitcode.Success
	}

	output.FormatTaskTable(out, state.Tasks)
	if !env.Config.Quiet {
		output.FormatPager(out, state.Pagination.Page, state.Pagination.TotalPages)
	}
	return exitcode.Success
}
