// Package config handles the XDG configuration directory, the config file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// ErrNotConfigured is returned when a backend setting or credential file is missing.
var ErrNotConfigured = errors.New("not configured")

const (
	// AppName is the application directory name.
	AppName = "teamtodo"

	// ConfigFile is the optional TOML settings filename.
	ConfigFile = "config.toml"

	// EnvFile is the optional dotenv filename read from the config directory.
	EnvFile = ".env"

	// OAuthClientFile is the Google OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"
)

// Backend names.
const (
	BackendSupabase    = "supabase"
	BackendGoogleTasks = "googletasks"
)

// Environment variables that override file settings.
const (
	EnvBackend         = "TEAMTODO_BACKEND"
	EnvSupabaseURL     = "TEAMTODO_SUPABASE_URL"
	EnvSupabaseAnonKey = "TEAMTODO_SUPABASE_ANON_KEY"
	EnvGoogleTaskList  = "TEAMTODO_GOOGLE_TASKLIST"
)

// SupabaseConfig holds the hosted database settings.
type SupabaseConfig struct {
	URL        string `toml:"url"`
	AnonKey    string `toml:"anon_key"`
	TasksTable string `toml:"tasks_table"`
	TeamsTable string `toml:"teams_table"`
}

// GoogleTasksConfig holds the Google Tasks backend settings.
type GoogleTasksConfig struct {
	// TaskList is the task list that holds to-do entries.
	TaskList string `toml:"tasklist"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `toml:"-"`

	// Debug enables debug logging.
	Debug bool `toml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `toml:"-"`

	// Logger receives notifications and debug output. Nil means discard.
	Logger *log.Logger `toml:"-"`

	Backend     string            `toml:"backend"`
	Supabase    SupabaseConfig    `toml:"supabase"`
	GoogleTasks GoogleTasksConfig `toml:"googletasks"`
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/teamtodo or $HOME/.config/teamtodo.
// Settings hold defaults until Load is called.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendSupabase
	}
	if c.Supabase.TasksTable == "" {
		c.Supabase.TasksTable = "todos"
	}
	if c.Supabase.TeamsTable == "" {
		c.Supabase.TeamsTable = "teams"
	}
	if c.GoogleTasks.TaskList == "" {
		c.GoogleTasks.TaskList = "@default"
	}
}

// Load reads config.toml and .env from the config directory, then applies
// environment overrides. Precedence: environment, .env, config.toml, defaults.
// Missing files are not an error.
func (c *Config) Load() error {
	if _, err := toml.DecodeFile(c.ConfigPath(), c); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}

	dotenv, err := godotenv.Read(c.EnvPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("invalid %s: %w", EnvFile, err)
	}

	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}

	if v := lookup(EnvBackend); v != "" {
		c.Backend = v
	}
	if v := lookup(EnvSupabaseURL); v != "" {
		c.Supabase.URL = v
	}
	if v := lookup(EnvSupabaseAnonKey); v != "" {
		c.Supabase.AnonKey = v
	}
	if v := lookup(EnvGoogleTaskList); v != "" {
		c.GoogleTasks.TaskList = v
	}

	c.applyDefaults()
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.Supabase.URL = strings.TrimRight(c.Supabase.URL, "/")
	return c.Validate()
}

// Validate checks that the selected backend is known.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSupabase, BackendGoogleTasks:
		return nil
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
}

// Log returns the configured logger, or one that discards everything.
func (c *Config) Log() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return discardLogger
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to config.toml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// EnvPath returns the path to the dotenv file.
func (c *Config) EnvPath() string {
	return filepath.Join(c.Dir, EnvFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

var discardLogger = log.New(io.Discard)
