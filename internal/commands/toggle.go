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
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string  { return "Flip a task between complete and incomplete" }
func (c *ToggleCmd) Usage() string     { return "teamtodo toggle <id>" }
func (c *ToggleCmd) NeedsAuth() bool   { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: task id required")
		return exitcode.UserError
	}
	id := args[0]

	ctl, code := openList(ctx, cfg, svc, todolist.FilterAll, errOut)
	if code != exitcode.Success {
		return code
	}
	defer ctl.Close()

	task, code := lookupTask(ctl, id, errOut)
	if code != exitcode.Success {
		return code
	}
	if _, err := ctl.Toggle(ctx, id, task.IsComplete); err != nil {
		return exitFor(err)
	}

	printTasks(cfg, ctl.Tasks(), out)
	return exitcode.Success
}
