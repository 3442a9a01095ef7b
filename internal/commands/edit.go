package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"teamtodo/internal/config"
	"teamtodo/internal/exitcode"
	"teamtodo/internal/service"
	"teamtodo/internal/todolist"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct{}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Replace the text of a task" }
func (c *EditCmd) Usage() string     { return "teamtodo edit <id> <text...>" }
func (c *EditCmd) NeedsAuth() bool   { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: task id required")
		return exitcode.UserError
	}
	id, text := args[0], strings.Join(args[1:], " ")

	ctl, code := openList(ctx, cfg, svc, todolist.FilterAll, errOut)
	if code != exitcode.Success {
		return code
	}
	defer ctl.Close()

	if _, code := lookupTask(ctl, id, errOut); code != exitcode.Success {
		return code
	}
	if _, err := ctl.Edit(ctx, id, text); err != nil {
		return exitFor(err)
	}

	printTasks(cfg, ctl.Tasks(), out)
	return exitcode.Success
}
