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
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "teamtodo help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }
func (c *HelpCmd) Standalone()       {}

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  teamtodo                                         List all tasks")
	fmt.Fprintln(out, strings.Join(DefaultRegistry.Usage(), "\n"))
	fmt.Fprint(out, helpFooter)
	return exitcode.Success
}

const helpFooter = `
Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Configuration (config.toml, .env or environment):
  TEAMTODO_BACKEND             supabase (default) or googletasks
  TEAMTODO_SUPABASE_URL        Supabase project URL
  TEAMTODO_SUPABASE_ANON_KEY   Supabase anon key
  TEAMTODO_GOOGLE_TASKLIST     Google task list id (default @default)
`
