// Package service defines the backend-agnostic interface for task and team operations.
package service

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the target row does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the stored credentials are missing, expired or revoked.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnsupported is returned by backends that cannot serve an operation.
	ErrUnsupported = errors.New("unsupported by backend")
)

// TaskStore is the remote task table.
// Commands and the controller never import a backend SDK directly.
type TaskStore interface {
	// ListTasks returns every task owned by ownerID in ascending ID order.
	ListTasks(ctx context.Context, ownerID string) ([]Task, error)

	// InsertTask creates a task and returns the created row.
	// The store assigns the ID and the default completeness.
	InsertTask(ctx context.Context, text, ownerID string) (Task, error)

	// UpdateTask applies patch to the task and returns the full post-update row.
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error)

	// DeleteTask deletes a task. Returns ErrNotFound if nothing was deleted.
	DeleteTask(ctx context.Context, id string) error
}

// TeamStore is the remote team table.
type TeamStore interface {
	// ListTeams returns the teams saved by ownerID.
	ListTeams(ctx context.Context, ownerID string) ([]Team, error)

	// SaveTeam persists a team.
	SaveTeam(ctx context.Context, team Team) error
}

// Service is a backend with an authenticated session.
type Service interface {
	TaskStore
	TeamStore

	// Session returns the identity the backend is acting as.
	Session(ctx context.Context) (Session, error)
}
