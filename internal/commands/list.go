package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"teamtodo/internal/config"
	"teamtodo/internal/exitcode"
	"teamtodo/internal/service"
	"teamtodo/internal/todolist"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `teamtodo` (no args) and `teamtodo list --filter <f>`.
type ListCmd struct {
	filter string
}

// SetFilter sets the filter name (for testing).
func (c *ListCmd) SetFilter(filter string) {
	c.filter = filter
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "teamtodo list [--filter all|completed|incomplete]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", "", "")
	fs.StringVar(&c.filter, "f", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	filter, err := todolist.ParseFilter(c.filter)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	ctl, code := openList(ctx, cfg, svc, filter, errOut)
	if code != exitcode.Success {
		return code
	}
	defer ctl.Close()

	printTasks(cfg, ctl.Tasks(), out)
	return exitcode.Success
}
