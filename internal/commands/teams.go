package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"teamtodo/internal/config"
	"teamtodo/internal/exitcode"
	"teamtodo/internal/notify"
	"teamtodo/internal/output"
	"teamtodo/internal/service"
	"teamtodo/internal/team"
)

func init() {
	Register(&TeamsCmd{})
}

// TeamsCmd implements the teams command.
type TeamsCmd struct{}

func (c *TeamsCmd) Name() string      { return "teams" }
func (c *TeamsCmd) Aliases() []string { return nil }
func (c *TeamsCmd) Synopsis() string  { return "List saved teams" }
func (c *TeamsCmd) Usage() string     { return "teamtodo teams" }
func (c *TeamsCmd) NeedsAuth() bool   { return true }

func (c *TeamsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TeamsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	sess, code := resolveSession(ctx, svc, errOut)
	if code != exitcode.Success {
		return code
	}

	draft := team.NewDraft(svc, sess, notify.NewToaster(cfg.Log()), cfg.Log())
	teams, err := draft.Fetch(ctx)
	if err != nil {
		return exitFor(err)
	}

	if len(teams) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no teams found")
		}
		return exitcode.Success
	}
	for _, t := range teams {
		output.FormatTeam(out, t)
	}
	return exitcode.Success
}
