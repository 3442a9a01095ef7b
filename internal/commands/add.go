package commands

import (
	"context"
	"flag"
	"io"
	"strings"

	"teamtodo/internal/config"
	"teamtodo/internal/exitcode"
	"teamtodo/internal/service"
	"teamtodo/internal/todolist"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "teamtodo add <text...>" }
func (c *AddCmd) NeedsAuth() bool   { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ctl, code := openList(ctx, cfg, svc, todolist.FilterAll, errOut)
	if code != exitcode.Success {
		return code
	}
	defer ctl.Close()

	// Blank text is rejected by the controller without a remote call
	ctl.SetInput(strings.Join(args, " "))
	if _, err := ctl.Submit(ctx); err != nil {
		return exitFor(err)
	}

	printTasks(cfg, ctl.Tasks(), out)
	return exitcode.Success
}
