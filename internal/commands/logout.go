package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"teamtodo/internal/auth"
	"teamtodo/internal/backend/supabase"
	"teamtodo/internal/config"
	"teamtodo/internal/exitcode"
	"teamtodo/internal/service"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove stored credentials" }
func (c *LogoutCmd) Usage() string     { return "teamtodo logout" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasToken() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	// Revoking is best effort; the local token goes either way
	if cfg.Backend == config.BackendSupabase && cfg.Supabase.URL != "" {
		if tok, err := auth.LoadToken(cfg.TokenPath()); err == nil {
			gotrue := supabase.NewAuthClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, nil)
			if err := gotrue.SignOut(ctx, tok.AccessToken); err != nil {
				cfg.Log().Warn("could not revoke session", "err", err)
			}
		}
	}

	if err := cfg.RemoveToken(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
