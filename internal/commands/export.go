package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"todo/internal/exitcode"
	"todo/internal/export"
	"todo/internal/service"
	"todo/internal/viewmodel"
)

// exportPageLimit is the page size used while walking every page.
const exportPageLimit = 100

func init() {
	Register(&ExportCmd{})
}

// ExportCmd writes every task matching a filter as a report.
type ExportCmd struct {
	format string
	status string
	output string

	// now and create are overridden in tests.
	now    func() time.Time
	create func(name string) (io.WriteCloser, error)
}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Export tasks as JSON, CSV or PDF" }
func (c *ExportCmd) Usage() string {
	return "todo export [--format json|csv|pdf] [--status pending|completed] [--output <file>]"
}
func (c *ExportCmd) NeedsBackend() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", "json", "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.status, "s", "", "")
	fs.StringVar(&c.output, "output", "", "")
	fs.StringVar(&c.output, "o", "", "")
}

// SetOptions sets format, status and output file (for testing).
func (c *ExportCmd) SetOptions(format, status, output string, now func() time.Time) {
	c.format, c.status, c.output, c.now = format, status, output, now
}

// SetCreate replaces how the output file is opened (for testing).
func (c *ExportCmd) SetCreate(create func(name string) (io.WriteCloser, error)) {
	c.create = create
}

func createFile(name string) (io.WriteCloser, error) {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (c *ExportCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	format, err := export.ParseFormat(c.format)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	status, err := service.ParseStatus(c.status)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	tasks, err := collectTasks(ctx, newModel(env, viewmodel.Options{
		Limit:  exportPageLimit,
		Status: status,
	}))
	if err != nil {
		return backendFailure(errOut, err)
	}

	now := time.Now
	if c.now != nil {
		now = c.now
	}
	report := export.Report{
		UserID:    env.Config.API.UserID,
		Filter:    status,
		Generated: now(),
		Tasks:     tasks,
	}

	if c.output == "" || c.output == "-" {
		if err := export.Write(out, format, report); err != nil {
			fmt.Fprintf(errOut, "error: export failed: %v\n", err)
			return exitcode.BackendError
		}
		return exitcode.Success
	}

	create := c.create
	if create == nil {
		create = createFile
	}
	f, err := create(c.output)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	// The report is only on disk once Close succeeds.
	if err := errors.Join(export.Write(f, format, report), f.Close()); err != nil {
		fmt.Fprintf(errOut, "error: export failed: %v\n", err)
		return exitcode.BackendError
	}

	if !env.Config.Quiet {
		fmt.Fprintf(out, "exported %d tasks to %s\n", len(tasks), c.output)
	}
	return exitcode.Success
}

// collectTasks walks every page reachable through vm. With an unknown total
// it keeps going while pages come back full; a page that clamps back to an
// earlier one ends the walk.
func collectTasks(ctx context.Context, vm *viewmodel.Model) ([]service.Task, error) {
	if err := vm.Fetch(ctx); err != nil {
		return nil, err
	}
	state := vm.State()
	tasks := state.Tasks
	for vm.CanNext() {
		before := state.Pagination.Page
		if err := vm.NextPage(ctx); err != nil {
			return nil, err
		}
		state = vm.State()
		if state.Pagination.Page <= before {
			break
		}
		tasks = append(tasks, state.Tasks...)
	}
	return tasks, nil
}
