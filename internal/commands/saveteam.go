package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"teamtodo/internal/config"
	"teamtodo/internal/exitcode"
	"teamtodo/internal/notify"
	"teamtodo/internal/service"
	"teamtodo/internal/team"
)

func init() {
	Register(&SaveTeamCmd{})
}

// SaveTeamCmd implements the saveteam command.
type SaveTeamCmd struct {
	name string
}

// SetName sets the team name (for testing).
func (c *SaveTeamCmd) SetName(name string) {
	c.name = name
}

func (c *SaveTeamCmd) Name() string      { return "saveteam" }
func (c *SaveTeamCmd) Aliases() []string { return []string{"addteam"} }
func (c *SaveTeamCmd) Synopsis() string  { return "Save a team and its members" }
func (c *SaveTeamCmd) Usage() string     { return "teamtodo saveteam --name <team-name> <member>..." }
func (c *SaveTeamCmd) NeedsAuth() bool   { return true }

func (c *SaveTeamCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.name, "n", "", "")
}

func (c *SaveTeamCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	sess, code := resolveSession(ctx, svc, errOut)
	if code != exitcode.Success {
		return code
	}

	draft := team.NewDraft(svc, sess, notify.NewToaster(cfg.Log()), cfg.Log())
	draft.SetName(c.name)
	for _, member := range args {
		draft.AddMember(member)
	}
	if err := draft.Save(ctx); err != nil {
		return exitFor(err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
