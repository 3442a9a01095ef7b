// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"teamtodo/internal/service"
)

// DefaultUserID is the owner used by NewFakeService's session.
const DefaultUserID = "5f0c8a3e-7d1b-4c2a-9e6f-1a2b3c4d5e6f"

// FakeService is an in-memory implementation of service.Service for testing.
// IDs are assigned from an increasing counter, so ascending ID order is
// insertion order.
type FakeService struct {
	mu     sync.RWMutex
	nextID int
	tasks  []service.Task
	teams  []service.Team

	// Owner is returned by Session.
	Owner service.Session

	// Error injection for testing
	SessionErr    error
	ListTasksErr  error
	InsertTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error
	ListTeamsErr  error
	SaveTeamErr   error

	// UpdateHook, if set, rewrites a row after a patch is applied and before
	// it is stored, standing in for server-side policies.
	UpdateHook func(service.Task) service.Task

	// OnCall, if set, runs at the start of every store invocation.
	OnCall func(method string)

	// Calls counts store invocations by method name.
	Calls map[string]int
}

// NewFakeService creates an empty FakeService owned by DefaultUserID.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID: 1,
		Owner:  service.Session{UserID: DefaultUserID, Email: "user@example.com"},
		Calls:  make(map[string]int),
	}
}

// AddTask seeds a task and returns its assigned ID.
func (f *FakeService) AddTask(text string, complete bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertLocked(text, f.Owner.UserID, complete).ID
}

// AddTaskFor seeds a task owned by someone else.
func (f *FakeService) AddTaskFor(ownerID, text string, complete bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertLocked(text, ownerID, complete).ID
}

// Tasks returns a snapshot of every stored task.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.tasks)
}

// Teams returns a snapshot of every stored team.
func (f *FakeService) Teams() []service.Team {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.teams)
}

// CallCount returns how many times a method was invoked.
func (f *FakeService) CallCount(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.Calls[method]
}

// TotalCalls returns the number of store invocations across all methods.
func (f *FakeService) TotalCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.Calls {
		n += c
	}
	return n
}

func (f *FakeService) record(method string) {
	f.mu.Lock()
	f.Calls[method]++
	hook := f.OnCall
	f.mu.Unlock()
	if hook != nil {
		hook(method)
	}
}

func (f *FakeService) insertLocked(text, ownerID string, complete bool) service.Task {
	task := service.Task{
		ID:         strconv.Itoa(f.nextID),
		Task:       text,
		IsComplete: complete,
		UserID:     ownerID,
	}
	f.nextID++
	f.tasks = append(f.tasks, task)
	return task
}

// Session implements service.Service.
func (f *FakeService) Session(ctx context.Context) (service.Session, error) {
	f.record("Session")
	if f.SessionErr != nil {
		return service.Session{}, f.SessionErr
	}
	return f.Owner, nil
}

// ListTasks implements service.TaskStore.
func (f *FakeService) ListTasks(ctx context.Context, ownerID string) ([]service.Task, error) {
	f.record("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	var result []service.Task
	for _, t := range f.tasks {
		if t.UserID == ownerID {
			result = append(result, t)
		}
	}
	slices.SortFunc(result, func(a, b service.Task) int {
		return service.CompareIDs(a.ID, b.ID)
	})
	return result, nil
}

// InsertTask implements service.TaskStore.
func (f *FakeService) InsertTask(ctx context.Context, text, ownerID string) (service.Task, error) {
	f.record("InsertTask")
	if f.InsertTaskErr != nil {
		return service.Task{}, f.InsertTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertLocked(text, ownerID, false), nil
}

// UpdateTask implements service.TaskStore.
func (f *FakeService) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	f.record("UpdateTask")
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID != id {
			continue
		}
		if patch.Task != nil {
			t.Task = *patch.Task
		}
		if patch.IsComplete != nil {
			t.IsComplete = *patch.IsComplete
		}
		if f.UpdateHook != nil {
			t = f.UpdateHook(t)
		}
		f.tasks[i] = t
		return t, nil
	}
	return service.Task{}, service.ErrNotFound
}

// DeleteTask implements service.TaskStore.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}

// ListTeams implements service.TeamStore.
func (f *FakeService) ListTeams(ctx context.Context, ownerID string) ([]service.Team, error) {
	f.record("ListTeams")
	if f.ListTeamsErr != nil {
		return nil, f.ListTeamsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	var result []service.Team
	for _, team := range f.teams {
		if team.UserID == ownerID {
			team.Members = slices.Clone(team.Members)
			result = append(result, team)
		}
	}
	return result, nil
}

// SaveTeam implements service.TeamStore.
func (f *FakeService) SaveTeam(ctx context.Context, team service.Team) error {
	f.record("SaveTeam")
	if f.SaveTeamErr != nil {
		return f.SaveTeamErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	team.Members = slices.Clone(team.Members)
	f.teams = append(f.teams, team)
	return nil
}
