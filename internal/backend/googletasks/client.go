// Package googletasks implements the service.Service interface using Google Tasks API.
//
// Tasks live in one configured task list. Teams are stored as task lists
// titled "Team: <name>" whose tasks are the member names.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"teamtodo/internal/auth"
	"teamtodo/internal/config"
	"teamtodo/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// TeamListPrefix marks task lists that hold a team.
	TeamListPrefix = "Team: "

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Scopes are the OAuth scopes the client needs.
var Scopes = []string{
	tasks.TasksScope,
	oauth2api.UserinfoEmailScope,
}

var _ service.Service = (*Client)(nil)

// Client implements service.Service using Google Tasks API.
type Client struct {
	svc    *tasks.Service
	users  *oauth2api.Service
	listID string

	mu      sync.Mutex
	session *service.Session
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("%w: oauth_client.json not found in %s", config.ErrNotConfigured, cfg.Dir)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}

	token, err := auth.LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %v (run: teamtodo login)", service.ErrUnauthorized, err)
	}

	// Token source that auto-refreshes and keeps token.json current
	tokenSource := auth.PersistingTokenSource(cfg.TokenPath(), token, oauthConfig.TokenSource(ctx, token))
	httpClient := oauth2.NewClient(ctx, tokenSource)

	return NewWithHTTPClient(ctx, httpClient, cfg.GoogleTasks.TaskList)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, listID string, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)

	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	users, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo service: %w", err)
	}
	if listID == "" {
		listID = DefaultListID
	}
	return &Client{svc: svc, users: users, listID: listID}, nil
}

// Session implements service.Service using the userinfo endpoint.
func (c *Client) Session(ctx context.Context) (service.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return *c.session, nil
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	info, err := c.users.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return service.Session{}, wrapError(err)
	}
	c.session = &service.Session{UserID: info.Id, Email: info.Email}
	return *c.session, nil
}

// ListTasks implements service.TaskStore.
// The list belongs to the signed-in user, so every task is tagged with ownerID.
func (c *Client) ListTasks(ctx context.Context, ownerID string) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var result []service.Task
	err := c.svc.Tasks.List(c.listID).
		MaxResults(100).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				result = append(result, toTask(t, ownerID))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}

	// Google returns position order; the store contract is ascending ID.
	slices.SortFunc(result, func(a, b service.Task) int {
		return service.CompareIDs(a.ID, b.ID)
	})
	return result, nil
}

// InsertTask implements service.TaskStore.
func (c *Client) InsertTask(ctx context.Context, text, ownerID string) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	created, err := c.svc.Tasks.Insert(c.listID, &tasks.Task{
		Title:  text,
		Status: statusNeedsAction,
	}).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return toTask(created, ownerID), nil
}

// UpdateTask implements service.TaskStore.
func (c *Client) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	body := &tasks.Task{}
	if patch.Task != nil {
		body.Title = *patch.Task
		body.ForceSendFields = append(body.ForceSendFields, "Title")
	}
	if patch.IsComplete != nil {
		body.Status = statusNeedsAction
		if *patch.IsComplete {
			body.Status = statusCompleted
		} else {
			body.NullFields = append(body.NullFields, "Completed")
		}
	}

	updated, err := c.svc.Tasks.Patch(c.listID, id, body).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}

	return toTask(updated, c.ownerID()), nil
}

// DeleteTask implements service.TaskStore.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(c.listID, id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// ListTeams implements service.TeamStore.
func (c *Client) ListTeams(ctx context.Context, ownerID string) ([]service.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var lists []*tasks.TaskList
	err := c.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, l := range resp.Items {
			if strings.HasPrefix(l.Title, TeamListPrefix) {
				lists = append(lists, l)
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}

	var teams []service.Team
	for _, l := range lists {
		team := service.Team{Name: strings.TrimPrefix(l.Title, TeamListPrefix), UserID: ownerID}
		err := c.svc.Tasks.List(l.Id).MaxResults(100).Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				team.Members = append(team.Members, t.Title)
			}
			return nil
		})
		if err != nil {
			return nil, wrapError(err)
		}
		teams = append(teams, team)
	}
	return teams, nil
}

// SaveTeam implements service.TeamStore.
// Members are inserted after one another so the list keeps their order.
func (c *Client) SaveTeam(ctx context.Context, team service.Team) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	list, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: TeamListPrefix + team.Name}).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}

	previous := ""
	for _, member := range team.Members {
		call := c.svc.Tasks.Insert(list.Id, &tasks.Task{Title: member}).Context(ctx)
		if previous != "" {
			call = call.Previous(previous)
		}
		created, err := call.Do()
		if err != nil {
			return wrapError(err)
		}
		previous = created.Id
	}
	return nil
}

// ownerID returns the cached session owner, if Session has run.
func (c *Client) ownerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.UserID
}

func toTask(t *tasks.Task, ownerID string) service.Task {
	return service.Task{
		ID:         t.Id,
		Task:       t.Title,
		IsComplete: t.Status == statusCompleted,
		UserID:     ownerID,
	}
}

// wrapError maps API errors onto the service sentinels.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: token expired or revoked (run: teamtodo login)", service.ErrUnauthorized)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", service.ErrNotFound, apiErr.Message)
		}
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: token expired or revoked (run: teamtodo login)", service.ErrUnauthorized)
	}

	return err
}
