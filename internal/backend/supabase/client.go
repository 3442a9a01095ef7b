// Package supabase implements service.Service over a Supabase project's
// PostgREST and GoTrue endpoints.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"teamtodo/internal/auth"
	"teamtodo/internal/config"
	"teamtodo/internal/service"
)

const (
	// APITimeout is the timeout for API calls.
	APITimeout = 10 * time.Second

	restPath = "/rest/v1/"

	// PostgREST returns this code when a single-object request matched no rows.
	codeNoRows = "PGRST116"

	mediaObject = "application/vnd.pgrst.object+json"
)

var _ service.Service = (*Client)(nil)

// Client implements service.Service against PostgREST.
type Client struct {
	http       *http.Client
	baseURL    string
	anonKey    string
	tasksTable string
	teamsTable string
	tokens     oauth2.TokenSource
	logger     *log.Logger
}

// Options configures a Client built without a config file.
type Options struct {
	BaseURL    string
	AnonKey    string
	TasksTable string
	TeamsTable string

	// Tokens supplies the bearer token for every request.
	Tokens oauth2.TokenSource

	// HTTPClient is the base client the bearer transport wraps. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	Logger *log.Logger
}

// New creates a client from config and the stored token.
// Requires a Supabase URL, an anon key and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.Supabase.URL == "" || cfg.Supabase.AnonKey == "" {
		return nil, fmt.Errorf("%w: supabase url and anon key are required (%s, %s)", config.ErrNotConfigured, config.EnvSupabaseURL, config.EnvSupabaseAnonKey)
	}

	token, err := auth.LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %v (run: teamtodo login)", service.ErrUnauthorized, err)
	}

	gotrue := NewAuthClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, nil)
	refresher := &refreshTokenSource{ctx: ctx, auth: gotrue, refreshToken: token.RefreshToken}
	tokens := auth.PersistingTokenSource(cfg.TokenPath(), token, oauth2.ReuseTokenSource(token, refresher))

	return NewWithOptions(ctx, Options{
		BaseURL:    cfg.Supabase.URL,
		AnonKey:    cfg.Supabase.AnonKey,
		TasksTable: cfg.Supabase.TasksTable,
		TeamsTable: cfg.Supabase.TeamsTable,
		Tokens:     tokens,
		Logger:     cfg.Log(),
	}), nil
}

// NewWithOptions creates a client from explicit options (for testing).
func NewWithOptions(ctx context.Context, opts Options) *Client {
	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	httpClient := &http.Client{
		Transport: &oauth2.Transport{Source: opts.Tokens, Base: base.Transport},
		Timeout:   base.Timeout,
	}
	tasksTable, teamsTable := opts.TasksTable, opts.TeamsTable
	if tasksTable == "" {
		tasksTable = "todos"
	}
	if teamsTable == "" {
		teamsTable = "teams"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		http:       httpClient,
		baseURL:    opts.BaseURL,
		anonKey:    opts.AnonKey,
		tasksTable: tasksTable,
		teamsTable: teamsTable,
		tokens:     opts.Tokens,
		logger:     logger,
	}
}

// taskRow is the wire shape of a todos row.
type taskRow struct {
	ID         rowID  `json:"id"`
	Task       string `json:"task"`
	IsComplete *bool  `json:"is_complete"`
	UserID     string `json:"user_id"`
}

// rowID accepts both numeric and text primary keys.
type rowID string

func (id *rowID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = rowID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("row id: %w", err)
		}
		*id = rowID(n.String())
	}
	return nil
}

func (r taskRow) toTask() service.Task {
	return service.Task{
		ID:         string(r.ID),
		Task:       r.Task,
		IsComplete: r.IsComplete != nil && *r.IsComplete,
		UserID:     r.UserID,
	}
}

type teamRow struct {
	TeamName    string   `json:"team_name"`
	TeamMembers []string `json:"team_members"`
	UserID      string   `json:"user_id,omitempty"`
}

// Session implements service.Service by decoding the current access token.
func (c *Client) Session(ctx context.Context) (service.Session, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		return service.Session{}, fmt.Errorf("%w: %v", service.ErrUnauthorized, err)
	}
	session, err := auth.SessionFromAccessToken(tok.AccessToken)
	if err != nil {
		return service.Session{}, fmt.Errorf("%w: %v", service.ErrUnauthorized, err)
	}
	return session, nil
}

// ListTasks implements service.TaskStore.
func (c *Client) ListTasks(ctx context.Context, ownerID string) ([]service.Task, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+ownerID)
	q.Set("order", "id.asc")

	var rows []taskRow
	if err := c.do(ctx, http.MethodGet, c.tasksTable, q, nil, nil, &rows); err != nil {
		return nil, err
	}

	tasks := make([]service.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toTask())
	}
	return tasks, nil
}

// InsertTask implements service.TaskStore.
func (c *Client) InsertTask(ctx context.Context, text, ownerID string) (service.Task, error) {
	q := url.Values{}
	q.Set("select", "*")

	body := map[string]any{"task": text, "user_id": ownerID}
	var row taskRow
	if err := c.do(ctx, http.MethodPost, c.tasksTable, q, singleRowHeaders(), body, &row); err != nil {
		return service.Task{}, err
	}
	return row.toTask(), nil
}

// UpdateTask implements service.TaskStore.
func (c *Client) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	body := map[string]any{}
	if patch.Task != nil {
		body["task"] = *patch.Task
	}
	if patch.IsComplete != nil {
		body["is_complete"] = *patch.IsComplete
	}
	if len(body) == 0 {
		return service.Task{}, errors.New("empty patch")
	}

	q := url.Values{}
	q.Set("id", "eq."+id)
	q.Set("select", "*")

	var row taskRow
	if err := c.do(ctx, http.MethodPatch, c.tasksTable, q, singleRowHeaders(), body, &row); err != nil {
		return service.Task{}, err
	}
	return row.toTask(), nil
}

// DeleteTask implements service.TaskStore.
// PostgREST reports success for a delete that matched nothing, so the
// deleted rows are requested back and an empty result means not found.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)

	headers := http.Header{}
	headers.Set("Prefer", "return=representation")

	var rows []taskRow
	if err := c.do(ctx, http.MethodDelete, c.tasksTable, q, headers, nil, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("task %s: %w", id, service.ErrNotFound)
	}
	return nil
}

// ListTeams implements service.TeamStore.
func (c *Client) ListTeams(ctx context.Context, ownerID string) ([]service.Team, error) {
	q := url.Values{}
	q.Set("select", "team_name,team_members")
	q.Set("user_id", "eq."+ownerID)

	var rows []teamRow
	if err := c.do(ctx, http.MethodGet, c.teamsTable, q, nil, nil, &rows); err != nil {
		return nil, err
	}

	teams := make([]service.Team, 0, len(rows))
	for _, r := range rows {
		teams = append(teams, service.Team{Name: r.TeamName, Members: r.TeamMembers, UserID: ownerID})
	}
	return teams, nil
}

// SaveTeam implements service.TeamStore.
func (c *Client) SaveTeam(ctx context.Context, team service.Team) error {
	headers := http.Header{}
	headers.Set("Prefer", "resolution=merge-duplicates,return=minimal")

	body := []teamRow{{TeamName: team.Name, TeamMembers: team.Members, UserID: team.UserID}}
	return c.do(ctx, http.MethodPost, c.teamsTable, nil, headers, body, nil)
}

func singleRowHeaders() http.Header {
	h := http.Header{}
	h.Set("Prefer", "return=representation")
	h.Set("Accept", mediaObject)
	return h
}

// do sends one PostgREST request and decodes the response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, table string, query url.Values, headers http.Header, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	u := c.baseURL + restPath + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	for k, v := range headers {
		req.Header[k] = v
	}

	c.logger.Debug("postgrest request", "method", method, "table", table, "query", query.Encode())

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapError(err)
	}

	c.logger.Debug("postgrest response", "status", resp.StatusCode, "bytes", len(data))

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
