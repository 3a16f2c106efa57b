package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "todo help" }
func (c *HelpCmd) NeedsBackend() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	fmt.Fprintln(out, "\nCommands:")
	for _, cmd := range DefaultRegistry.All() {
		line := fmt.Sprintf("  %-8s %s", cmd.Name(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			line += " (" + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintln(out, line)
	}
	return exitcode.Success
}

const helpText = `Usage:
  todo                         Interactive list on a terminal, plain list otherwise
  todo tui [common flags]
  todo list [common flags] [--status <s>] [--page <n>] [--limit <n>]
  todo add [common flags] --description <text> <title...>
  todo done [common flags] <id>
  todo rm [common flags] <id>
  todo export [common flags] [--format json|csv|pdf] [--status <s>] [--output <file>]
  todo login [common flags]
  todo logout [common flags]
  todo help
  todo version

Status filters: all, pending, completed

Common flags:
  --config <dir>   Override config directory
  --user <id>      Act as this user id
  --api-url <url>  Override the task API base URL
  --quiet          Suppress informational output
  --debug          Print debug logs
`
