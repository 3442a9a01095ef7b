package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"teamtodo/internal/config"
	"teamtodo/internal/exitcode"
	"teamtodo/internal/notify"
	"teamtodo/internal/output"
	"teamtodo/internal/service"
	"teamtodo/internal/team"
	"teamtodo/internal/todolist"
)

// resolveSession fetches the signed-in owner, reporting failures on errOut.
func resolveSession(ctx context.Context, svc service.Service, errOut io.Writer) (service.Session, int) {
	sess, err := svc.Session(ctx)
	if err != nil {
		code := exitFor(err)
		if code == exitcode.AuthError {
			fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		} else {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		}
		return service.Session{}, code
	}
	return sess, exitcode.Success
}

// openList opens a task list controller for the signed-in owner under filter.
// Load failures are reported through the notifier.
func openList(ctx context.Context, cfg *config.Config, svc service.Service, filter todolist.Filter, errOut io.Writer) (*todolist.Controller, int) {
	sess, code := resolveSession(ctx, svc, errOut)
	if code != exitcode.Success {
		return nil, code
	}

	ctl, err := todolist.New(svc, sess, notify.NewToaster(cfg.Log()))
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return nil, exitcode.AuthError
	}
	if err := ctl.Open(ctx, filter); err != nil {
		return nil, exitFor(err)
	}
	return ctl, exitcode.Success
}

// lookupTask finds id in the open collection.
func lookupTask(ctl *todolist.Controller, id string, errOut io.Writer) (service.Task, int) {
	task, ok := ctl.Find(id)
	if !ok {
		fmt.Fprintf(errOut, "error: task not found: %s\n", id)
		return service.Task{}, exitcode.UserError
	}
	return task, exitcode.Success
}

// printTasks writes the collection, or a placeholder when it is empty.
func printTasks(cfg *config.Config, tasks []service.Task, out io.Writer) {
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, output.EmptyMessage)
		}
		return
	}
	output.FormatTasks(out, tasks)
}

// exitFor maps an operation error to an exit code.
func exitFor(err error) int {
	switch {
	case err == nil:
		return exitcode.Success
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, config.ErrNotConfigured),
		errors.Is(err, todolist.ErrNoSession):
		return exitcode.AuthError
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, todolist.ErrEmptyTask),
		errors.Is(err, todolist.ErrInvalidFilter),
		errors.Is(err, team.ErrIncomplete):
		return exitcode.UserError
	default:
		return exitcode.BackendError
	}
}
