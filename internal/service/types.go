// Package service defines the backend-agnostic interface for task and team operations.
package service

import (
	"strconv"
	"strings"
	"time"
)

// Task represents a single to-do entry.
type Task struct {
	ID         string
	Task       string
	IsComplete bool
	UserID     string
}

// TaskPatch is a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Task       *string
	IsComplete *bool
}

// Team is a named group of member names owned by one user.
type Team struct {
	Name    string
	Members []string
	UserID  string
}

// Session identifies the authenticated caller.
type Session struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// CompareIDs orders task IDs the way the remote store does: numerically when
// both are integers, lexicographically otherwise.
func CompareIDs(a, b string) int {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
