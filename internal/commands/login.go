package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"teamtodo/internal/auth"
	"teamtodo/internal/backend/googletasks"
	"teamtodo/internal/backend/supabase"
	"teamtodo/internal/config"
	"teamtodo/internal/exitcode"
	"teamtodo/internal/service"
)

const (
	// EnvPassword supplies the Supabase password without a prompt.
	EnvPassword = "TEAMTODO_PASSWORD"

	// OAuth callback timeout
	oauthCallbackTimeout = 5 * time.Minute

	// Token exchange timeout
	tokenExchangeTimeout = 30 * time.Second

	// Starting port for OAuth callback server
	oauthStartPort = 8085

	// Max port attempts
	oauthMaxPortAttempts = 5
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email string

	// Stdin is read for the password when EnvPassword is unset. Defaults to os.Stdin.
	Stdin io.Reader
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in to the configured backend" }
func (c *LoginCmd) Usage() string     { return "teamtodo login [--email <address>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

// SetEmail sets the sign-in email (for testing).
func (c *LoginCmd) SetEmail(email string) {
	c.email = email
}

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	var token *oauth2.Token
	var code int
	switch cfg.Backend {
	case config.BackendGoogleTasks:
		token, code = c.loginGoogle(ctx, cfg, out, errOut)
	default:
		token, code = c.loginSupabase(ctx, cfg, out, errOut)
	}
	if token == nil {
		return code
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := auth.SaveToken(cfg.TokenPath(), token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}
	cfg.Log().Debug("token saved", "path", cfg.TokenPath(), "expires", token.Expiry)

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// loginSupabase signs in with email and password. A nil token with
// exitcode.Success means an existing session is still valid.
func (c *LoginCmd) loginSupabase(ctx context.Context, cfg *config.Config, out, errOut io.Writer) (*oauth2.Token, int) {
	if cfg.Supabase.URL == "" || cfg.Supabase.AnonKey == "" {
		fmt.Fprintf(errOut, "error: supabase is not configured\n\n")
		fmt.Fprintf(errOut, "Set %s and %s in the environment,\n", config.EnvSupabaseURL, config.EnvSupabaseAnonKey)
		fmt.Fprintf(errOut, "in %s, or under [supabase] in %s.\n", cfg.EnvPath(), cfg.ConfigPath())
		return nil, exitcode.AuthError
	}

	if tok, err := auth.LoadToken(cfg.TokenPath()); err == nil && tok.Valid() {
		if _, err := auth.SessionFromAccessToken(tok.AccessToken); err == nil {
			if !cfg.Quiet {
				fmt.Fprintln(out, "already logged in")
			}
			return nil, exitcode.Success
		}
	}

	email := strings.TrimSpace(c.email)
	if email == "" {
		fmt.Fprintln(errOut, "error: email required (--email)")
		return nil, exitcode.UserError
	}

	password, err := c.readPassword(errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, exitcode.UserError
	}

	gotrue := supabase.NewAuthClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, nil)
	token, err := gotrue.SignInWithPassword(ctx, email, password)
	if err != nil {
		fmt.Fprintf(errOut, "error: sign in failed: %v\n", err)
		return nil, exitcode.AuthError
	}
	if _, err := auth.SessionFromAccessToken(token.AccessToken); err != nil {
		fmt.Fprintf(errOut, "error: sign in failed: %v\n", err)
		return nil, exitcode.AuthError
	}
	return token, exitcode.Success
}

// readPassword returns EnvPassword, or the first line of stdin.
func (c *LoginCmd) readPassword(errOut io.Writer) (string, error) {
	if p := os.Getenv(EnvPassword); p != "" {
		return p, nil
	}

	in := c.Stdin
	if in == nil {
		in = os.Stdin
	}
	fmt.Fprint(errOut, "Password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password required")
	}
	return password, nil
}

// loginGoogle runs the loopback OAuth flow with PKCE. A nil token with
// exitcode.Success means an existing session is still valid.
func (c *LoginCmd) loginGoogle(ctx context.Context, cfg *config.Config, out, errOut io.Writer) (*oauth2.Token, int) {
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: oauth_client.json not found in %s\n\n", cfg.Dir)
		fmt.Fprintln(errOut, "To use the Google Tasks backend, you need OAuth credentials:")
		fmt.Fprintln(errOut, "")
		fmt.Fprintln(errOut, "1. Go to https://console.cloud.google.com/apis/credentials")
		fmt.Fprintln(errOut, "2. Enable the Google Tasks API for your project")
		fmt.Fprintln(errOut, "3. Create an OAuth client ID of type 'Desktop app' and download the JSON")
		fmt.Fprintf(errOut, "4. Save it as %s\n", cfg.OAuthClientPath())
		fmt.Fprintln(errOut, "")
		fmt.Fprintln(errOut, "Then run 'teamtodo login' again.")
		return nil, exitcode.AuthError
	}

	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to read oauth_client.json: %v\n", err)
		return nil, exitcode.AuthError
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, googletasks.Scopes...)
	if err != nil {
		fmt.Fprintf(errOut, "error: invalid oauth_client.json: %v\n", err)
		return nil, exitcode.AuthError
	}

	if cfg.HasToken() && isGoogleTokenValid(ctx, cfg, oauthConfig) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return nil, exitcode.Success
	}

	port, listener, err := findAvailablePort()
	if err != nil {
		fmt.Fprintf(errOut, "error: could not bind to local port for OAuth callback\n")
		return nil, exitcode.AuthError
	}
	defer listener.Close()

	oauthConfig.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)
	verifier := oauth2.GenerateVerifier()
	authURL := oauthConfig.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, authURL)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "No code in callback", http.StatusBadRequest)
			errCh <- fmt.Errorf("no code in callback")
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Signed in to teamtodo</h1><p>You may close this window.</p></body></html>")
		codeCh <- code
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, exitcode.AuthError
	case <-time.After(oauthCallbackTimeout):
		fmt.Fprintln(errOut, "error: oauth callback timed out")
		return nil, exitcode.AuthError
	case <-ctx.Done():
		fmt.Fprintln(errOut, "error: cancelled")
		return nil, exitcode.AuthError
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancel()

	token, err := oauthConfig.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to exchange code for token: %v\n", err)
		return nil, exitcode.AuthError
	}
	return token, exitcode.Success
}

// findAvailablePort tries to find an available port starting from oauthStartPort.
func findAvailablePort() (int, net.Listener, error) {
	for i := 0; i < oauthMaxPortAttempts; i++ {
		port := oauthStartPort + i
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return port, listener, nil
		}
	}
	return 0, nil, fmt.Errorf("no available port found")
}

// isGoogleTokenValid reports whether the stored token has a refresh token
// that Google still accepts.
func isGoogleTokenValid(ctx context.Context, cfg *config.Config, oauthConfig *oauth2.Config) bool {
	token, err := auth.LoadToken(cfg.TokenPath())
	if err != nil || token.RefreshToken == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err = oauthConfig.TokenSource(ctx, token).Token()
	return err == nil
}
