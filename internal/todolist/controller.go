// Package todolist keeps a local, filtered view of the remote task table in
// sync with user actions.
//
// Every mutation waits for the store to confirm, then copies the value the
// store returned into the affected field of the matching entry. Nothing is
// changed locally before the remote call succeeds, so a failed call leaves
// the collection exactly as it was. The controller never sorts: order is
// whatever ascending-ID order the store returned on the last load, with
// added rows appended.
//
// Filtering happens only on Load. A toggle that moves a task out of the
// active filter leaves it visible until the next Load.
package todolist

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"teamtodo/internal/notify"
	"teamtodo/internal/service"
)

var (
	// ErrEmptyTask is returned when task text is blank after trimming.
	ErrEmptyTask = errors.New("task cannot be empty")

	// ErrInvalidFilter is returned for an unknown filter name.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrClosed is returned by operations on a closed controller.
	ErrClosed = errors.New("task list closed")

	// ErrNoSession is returned when the session has no owner.
	ErrNoSession = errors.New("no authenticated session")
)

// Notification texts.
const (
	MsgFetchFailed   = "Error fetching todos"
	MsgEmptyTask     = "Task cannot be empty!"
	MsgAdded         = "Todo added successfully!"
	MsgAddFailed     = "Todo cannot be added. Please try again later"
	MsgDeleted       = "Todo deleted successfully!"
	MsgDeleteFailed  = "Todo cannot be deleted. Please try again later"
	MsgUpdated       = "Todo updated successfully!"
	MsgUpdateFailed  = "Todo cannot be updated. Please try again later"
	MsgEdited        = "Todo edited successfully!"
	MsgEditFailed    = "Todo cannot be edited. Please try again later"
	MsgInvalidFilter = "Unknown filter"
)

// Controller owns the local task collection for one session.
type Controller struct {
	store    service.TaskStore
	session  service.Session
	notifier notify.Notifier

	mu     sync.Mutex
	tasks  []service.Task
	filter Filter
	input  string
	closed bool
}

// New creates a controller for the session owner. Call Open to load it.
func New(store service.TaskStore, session service.Session, notifier notify.Notifier) (*Controller, error) {
	if strings.TrimSpace(session.UserID) == "" {
		return nil, ErrNoSession
	}
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Controller{
		store:    store,
		session:  session,
		notifier: notifier,
		filter:   FilterAll,
	}, nil
}

// Open performs the initial load under filter.
func (c *Controller) Open(ctx context.Context, filter Filter) error {
	return c.Load(ctx, filter)
}

// Close discards local state. Later operations return ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = nil
	c.input = ""
	c.closed = true
}

// Tasks returns a copy of the collection.
func (c *Controller) Tasks() []service.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.tasks)
}

// Filter returns the active filter.
func (c *Controller) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Find returns the local entry with id.
func (c *Controller) Find(id string) (service.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.tasks[i], true
	}
	return service.Task{}, false
}

// SetInput replaces the pending add text.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = text
}

// Input returns the pending add text.
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// Load fetches the owner's tasks, narrows them to filter and replaces the
// collection. On failure the collection and filter are unchanged.
func (c *Controller) Load(ctx context.Context, filter Filter) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if !filter.Valid() {
		c.notifier.Failure(MsgInvalidFilter, nil)
		return fmt.Errorf("%w: %s", ErrInvalidFilter, filter)
	}

	all, err := c.store.ListTasks(ctx, c.session.UserID)
	if err != nil {
		c.notifier.Failure(MsgFetchFailed, err)
		return fmt.Errorf("list tasks: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.tasks = filter.Apply(all)
	c.filter = filter
	return nil
}

// Add inserts a task with the trimmed text and appends the created row.
func (c *Controller) Add(ctx context.Context, text string) (service.Task, error) {
	if err := c.checkOpen(); err != nil {
		return service.Task{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		c.notifier.Failure(MsgEmptyTask, nil)
		return service.Task{}, ErrEmptyTask
	}

	created, err := c.store.InsertTask(ctx, text, c.session.UserID)
	if err != nil {
		c.notifier.Failure(MsgAddFailed, err)
		return service.Task{}, fmt.Errorf("insert task: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return created, ErrClosed
	}
	if i := c.indexLocked(created.ID); i >= 0 {
		c.tasks[i] = created
	} else {
		c.tasks = append(c.tasks, created)
	}
	c.input = ""
	c.mu.Unlock()

	c.notifier.Success(MsgAdded)
	return created, nil
}

// Submit adds the pending input text.
func (c *Controller) Submit(ctx context.Context) (service.Task, error) {
	return c.Add(ctx, c.Input())
}

// Delete removes a task remotely, then drops it from the collection.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}

	if err := c.store.DeleteTask(ctx, id); err != nil {
		c.notifier.Failure(MsgDeleteFailed, err)
		return fmt.Errorf("delete task %s: %w", id, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if i := c.indexLocked(id); i >= 0 {
		c.tasks = slices.Delete(c.tasks, i, i+1)
	}
	c.mu.Unlock()

	c.notifier.Success(MsgDeleted)
	return nil
}

// Toggle sets completeness to !current remotely and copies the echoed value
// into the local entry.
func (c *Controller) Toggle(ctx context.Context, id string, current bool) (service.Task, error) {
	if err := c.checkOpen(); err != nil {
		return service.Task{}, err
	}

	next := !current
	updated, err := c.store.UpdateTask(ctx, id, service.TaskPatch{IsComplete: &next})
	if err != nil {
		c.notifier.Failure(MsgUpdateFailed, err)
		return service.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}

	if err := c.patch(id, func(t *service.Task) { t.IsComplete = updated.IsComplete }); err != nil {
		return updated, err
	}
	c.notifier.Success(MsgUpdated)
	return updated, nil
}

// Edit replaces the task text remotely and copies the echoed text into the
// local entry.
func (c *Controller) Edit(ctx context.Context, id, text string) (service.Task, error) {
	if err := c.checkOpen(); err != nil {
		return service.Task{}, err
	}
	if strings.TrimSpace(text) == "" {
		c.notifier.Failure(MsgEmptyTask, nil)
		return service.Task{}, ErrEmptyTask
	}

	updated, err := c.store.UpdateTask(ctx, id, service.TaskPatch{Task: &text})
	if err != nil {
		c.notifier.Failure(MsgEditFailed, err)
		return service.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}

	if err := c.patch(id, func(t *service.Task) { t.Task = updated.Task }); err != nil {
		return updated, err
	}
	c.notifier.Success(MsgEdited)
	return updated, nil
}

// patch applies fn to the entry with id, if it is still present.
// Results arriving after Close are dropped.
func (c *Controller) patch(id string, fn func(*service.Task)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if i := c.indexLocked(id); i >= 0 {
		fn(&c.tasks[i])
	}
	return nil
}

func (c *Controller) indexLocked(id string) int {
	return slices.IndexFunc(c.tasks, func(t service.Task) bool { return t.ID == id })
}

func (c *Controller) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}
