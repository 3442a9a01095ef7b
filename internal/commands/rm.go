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
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "teamtodo rm <id>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
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

	// Only the owner's rows are listed, so this keeps rm scoped to them
	if _, code := lookupTask(ctl, id, errOut); code != exitcode.Success {
		return code
	}
	if err := ctl.Delete(ctx, id); err != nil {
		return exitFor(err)
	}

	printTasks(cfg, ctl.Tasks(), out)
	return exitcode.Success
}
