package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"teamtodo/internal/config"
	"teamtodo/internal/exitcode"
	"teamtodo/internal/service"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Print the signed-in user" }
func (c *WhoamiCmd) Usage() string     { return "teamtodo whoami" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	sess, code := resolveSession(ctx, svc, errOut)
	if code != exitcode.Success {
		return code
	}

	if sess.Email == "" {
		fmt.Fprintln(out, sess.UserID)
	} else {
		fmt.Fprintf(out, "%s (%s)\n", sess.Email, sess.UserID)
	}
	if !sess.ExpiresAt.IsZero() {
		cfg.Log().Debug("session", "expires", sess.ExpiresAt)
	}
	return exitcode.Success
}
