package notify

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestToaster_Success(t *testing.T) {
	var buf bytes.Buffer
	n := NewToaster(NewLogger(&buf, false, false))

	n.Success("Todo added successfully!")

	if !strings.Contains(buf.String(), "Todo added successfully!") {
		t.Errorf("expected message in output, got %q", buf.String())
	}
}

func TestToaster_FailureIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	n := NewToaster(NewLogger(&buf, false, false))

	n.Failure("Todo cannot be added. Please try again later", errors.New("connection refused"))

	out := buf.String()
	if !strings.Contains(out, "Todo cannot be added") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, "connection refused") {
		t.Errorf("expected cause in output, got %q", out)
	}
}

func TestToaster_QuietDropsSuccess(t *testing.T) {
	var buf bytes.Buffer
	n := NewToaster(NewLogger(&buf, false, true))

	n.Success("Todo deleted successfully!")
	if buf.Len() != 0 {
		t.Errorf("expected no output in quiet mode, got %q", buf.String())
	}

	n.Failure("Task cannot be empty!", nil)
	if !strings.Contains(buf.String(), "Task cannot be empty!") {
		t.Errorf("expected failures to survive quiet mode, got %q", buf.String())
	}
}

func TestNewLogger_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true, false)

	logger.Debug("fetching tasks")
	if !strings.Contains(buf.String(), "fetching tasks") {
		t.Errorf("expected debug output, got %q", buf.String())
	}

	buf.Reset()
	NewLogger(&buf, false, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected debug to be hidden by default, got %q", buf.String())
	}
}
