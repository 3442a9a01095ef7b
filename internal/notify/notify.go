// Package notify delivers user-facing success and failure messages.
//
// Notifications are fire-and-forget: nothing a notifier does flows back into
// the caller's state.
package notify

import (
	"io"

	"github.com/charmbracelet/log"
)

// Notifier receives toast-style messages.
type Notifier interface {
	Success(msg string)
	Failure(msg string, err error)
}

// Toaster renders notifications as log lines.
type Toaster struct {
	logger *log.Logger
}

// NewToaster creates a notifier that writes through logger.
func NewToaster(logger *log.Logger) *Toaster {
	return &Toaster{logger: logger}
}

// Success logs msg at info level.
func (t *Toaster) Success(msg string) {
	t.logger.Info(msg)
}

// Failure logs msg at error level, with the cause when there is one.
func (t *Toaster) Failure(msg string, err error) {
	if err != nil {
		t.logger.Error(msg, "err", err)
		return
	}
	t.logger.Error(msg)
}

// NewLogger creates the process logger.
// Debug enables debug output; quiet drops everything below error.
func NewLogger(w io.Writer, debug, quiet bool) *log.Logger {
	level := log.InfoLevel
	switch {
	case quiet:
		level = log.ErrorLevel
	case debug:
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       log.TextFormatter,
		ReportTimestamp: false,
		Prefix:          "teamtodo",
	})
}

// Discard is a notifier that drops every message.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Success(string)        {}
func (discard) Failure(string, error) {}
