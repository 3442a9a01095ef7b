package todolist

import (
	"fmt"
	"strings"

	"teamtodo/internal/service"
)

// Filter is a view predicate over the task collection.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterCompleted  Filter = "completed"
	FilterIncomplete Filter = "incomplete"
)

// ParseFilter parses a filter name (case-insensitive, trimmed).
// An empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterCompleted, FilterIncomplete:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidFilter, s)
	}
}

// Valid reports whether f is one of the known filters.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterCompleted, FilterIncomplete:
		return true
	}
	return false
}

// Match reports whether task belongs in the view.
func (f Filter) Match(task service.Task) bool {
	switch f {
	case FilterCompleted:
		return task.IsComplete
	case FilterIncomplete:
		return !task.IsComplete
	default:
		return true
	}
}

// Apply narrows tasks to the view, preserving order.
func (f Filter) Apply(tasks []service.Task) []service.Task {
	result := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			result = append(result, t)
		}
	}
	return result
}
