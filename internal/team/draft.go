// Package team composes and saves a named team of members.
package team

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"teamtodo/internal/notify"
	"teamtodo/internal/service"
)

// ErrIncomplete is returned by Save when the name or member list is empty.
var ErrIncomplete = errors.New("team name and members are required")

// Notification texts.
const (
	MsgSaved      = "Team information saved successfully!"
	MsgSaveFailed = "An error occurred while saving team information. Please try again later."
	MsgIncomplete = "Team Name and Team Members are required."
)

// Draft is an unsaved team.
type Draft struct {
	store    service.TeamStore
	session  service.Session
	notifier notify.Notifier
	logger   *log.Logger

	name    string
	members []string
}

// NewDraft creates an empty draft for the session owner.
// A nil notifier or logger discards output.
func NewDraft(store service.TeamStore, session service.Session, notifier notify.Notifier, logger *log.Logger) *Draft {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Draft{
		store:    store,
		session:  session,
		notifier: notifier,
		logger:   logger,
	}
}

// SetName sets the team name.
func (d *Draft) SetName(name string) {
	d.name = name
}

// Name returns the team name.
func (d *Draft) Name() string {
	return d.name
}

// Members returns a copy of the pending members.
func (d *Draft) Members() []string {
	return slices.Clone(d.members)
}

// AddMember appends name unless it is blank. Reports whether it was added.
func (d *Draft) AddMember(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	d.members = append(d.members, name)
	return true
}

// Save persists the draft and clears it on success.
func (d *Draft) Save(ctx context.Context) error {
	if strings.TrimSpace(d.name) == "" || len(d.members) == 0 {
		d.notifier.Failure(MsgIncomplete, nil)
		return ErrIncomplete
	}

	t := service.Team{
		Name:    d.name,
		Members: slices.Clone(d.members),
		UserID:  d.session.UserID,
	}
	if err := d.store.SaveTeam(ctx, t); err != nil {
		d.notifier.Failure(MsgSaveFailed, err)
		return fmt.Errorf("save team: %w", err)
	}

	d.debug("team saved", "name", t.Name, "members", len(t.Members))
	d.name = ""
	d.members = nil
	d.notifier.Success(MsgSaved)
	return nil
}

// Fetch returns the owner's saved teams. Failures are logged, not notified.
func (d *Draft) Fetch(ctx context.Context) ([]service.Team, error) {
	teams, err := d.store.ListTeams(ctx, d.session.UserID)
	if err != nil {
		if d.logger != nil {
			d.logger.Error("error fetching team details", "err", err)
		}
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

func (d *Draft) debug(msg string, keyvals ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, keyvals...)
	}
}
