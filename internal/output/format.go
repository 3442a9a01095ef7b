// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"teamtodo/internal/service"
)

const (
	// TeamSeparator is the separator line between team sections.
	TeamSeparator = "------------"

	// EmptyMessage is printed when a collection has no tasks.
	EmptyMessage = "no tasks found"
)

// FormatTask formats a task line.
// Format: "{ID:>4}  [x] {TEXT}\n" (4-wide right-aligned id, two spaces, checkbox, text)
func FormatTask(w io.Writer, task service.Task) {
	box := "[ ]"
	if task.IsComplete {
		box = "[x]"
	}
	fmt.Fprintf(w, "%4s  %s %s\n", task.ID, box, normalizeText(task.Task))
}

// FormatTasks formats every task in order.
func FormatTasks(w io.Writer, tasks []service.Task) {
	for _, t := range tasks {
		FormatTask(w, t)
	}
}

// FormatTeam formats a team section: a header with the team name followed
// by one numbered line per member, in roster order.
func FormatTeam(w io.Writer, team service.Team) {
	fmt.Fprintln(w, TeamSeparator)
	fmt.Fprintln(w, normalizeName(team.Name))
	fmt.Fprintln(w, TeamSeparator)
	for i, m := range team.Members {
		fmt.Fprintf(w, "%4d  %s\n", i+1, normalizeName(m))
	}
}

// normalizeText normalizes task text for display.
// - Empty or whitespace-only text becomes "(untitled)"
// - Newlines are replaced with spaces
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}

// normalizeName normalizes a team or member name for display.
func normalizeName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(unnamed)"
	}
	return name
}
