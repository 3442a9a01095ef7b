package todolist_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"teamtodo/internal/service"
	"teamtodo/internal/testutil"
	"teamtodo/internal/todolist"
)

var errRemote = errors.New("remote unavailable")

// newController opens a controller over svc with FilterAll.
func newController(t *testing.T, svc *testutil.FakeService) (*todolist.Controller, *testutil.RecordingNotifier) {
	t.Helper()
	notes := &testutil.RecordingNotifier{}
	c, err := todolist.New(svc, svc.Owner, notes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Open(context.Background(), todolist.FilterAll); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	return c, notes
}

// scenarioService seeds the two-task store used across tests.
func scenarioService() *testutil.FakeService {
	svc := testutil.NewFakeService()
	svc.AddTask("buy milk", false)
	svc.AddTask("pay rent", true)
	return svc
}

func ids(tasks []service.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func assertLastNote(t *testing.T, notes *testutil.RecordingNotifier, ok bool, msg string) {
	t.Helper()
	last, found := notes.Last()
	if !found {
		t.Fatalf("expected notification %q, got none", msg)
	}
	if last.OK != ok || last.Msg != msg {
		t.Errorf("expected notification (ok=%v, %q), got (ok=%v, %q)", ok, msg, last.OK, last.Msg)
	}
}

func TestNew_RequiresOwner(t *testing.T) {
	_, err := todolist.New(testutil.NewFakeService(), service.Session{}, nil)
	if !errors.Is(err, todolist.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestScenario(t *testing.T) {
	svc := scenarioService()
	c, _ := newController(t, svc)
	ctx := context.Background()

	if got := ids(c.Tasks()); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("load(all): expected [1 2], got %v", got)
	}

	if err := c.Load(ctx, todolist.FilterCompleted); err != nil {
		t.Fatalf("load(completed): %v", err)
	}
	if got := ids(c.Tasks()); !reflect.DeepEqual(got, []string{"2"}) {
		t.Fatalf("load(completed): expected [2], got %v", got)
	}

	if err := c.Load(ctx, todolist.FilterAll); err != nil {
		t.Fatalf("load(all): %v", err)
	}
	if _, err := c.Toggle(ctx, "1", false); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	tasks := c.Tasks()
	if !tasks[0].IsComplete {
		t.Error("expected task 1 to be complete after toggle")
	}
	if tasks[1] != (service.Task{ID: "2", Task: "pay rent", IsComplete: true, UserID: testutil.DefaultUserID}) {
		t.Errorf("task 2 changed: %+v", tasks[1])
	}

	if err := c.Delete(ctx, "2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := ids(c.Tasks()); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("after delete: expected [1], got %v", got)
	}

	if _, err := c.Edit(ctx, "1", "buy oat milk"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if got := c.Tasks()[0].Task; got != "buy oat milk" {
		t.Errorf("expected edited text, got %q", got)
	}
}

func TestLoad_FiltersPartitionAll(t *testing.T) {
	svc := testutil.NewFakeService()
	for _, done := range []bool{false, true, true, false, true} {
		svc.AddTask("task", done)
	}
	c, _ := newController(t, svc)
	ctx := context.Background()

	all := ids(c.Tasks())

	if err := c.Load(ctx, todolist.FilterCompleted); err != nil {
		t.Fatal(err)
	}
	completed := c.Tasks()
	for _, task := range completed {
		if !task.IsComplete {
			t.Errorf("completed view contains incomplete task %s", task.ID)
		}
	}

	if err := c.Load(ctx, todolist.FilterIncomplete); err != nil {
		t.Fatal(err)
	}
	incomplete := c.Tasks()
	for _, task := range incomplete {
		if task.IsComplete {
			t.Errorf("incomplete view contains completed task %s", task.ID)
		}
	}

	seen := make(map[string]int)
	for _, id := range append(ids(completed), ids(incomplete)...) {
		seen[id]++
	}
	if len(seen) != len(all) {
		t.Fatalf("expected partition of %d tasks, got %d", len(all), len(seen))
	}
	for _, id := range all {
		if seen[id] != 1 {
			t.Errorf("task %s appears %d times across views", id, seen[id])
		}
	}
}

func TestLoad_OnlyOwnersTasks(t *testing.T) {
	svc := scenarioService()
	svc.AddTaskFor("someone-else", "not mine", false)

	c, _ := newController(t, svc)
	if got := ids(c.Tasks()); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Errorf("expected only owner's tasks, got %v", got)
	}
}

func TestLoad_FailureKeepsState(t *testing.T) {
	svc := scenarioService()
	c, notes := newController(t, svc)
	before := c.Tasks()

	svc.ListTasksErr = errRemote
	err := c.Load(context.Background(), todolist.FilterCompleted)
	if !errors.Is(err, errRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if !reflect.DeepEqual(c.Tasks(), before) {
		t.Errorf("collection changed on failed load: %v", c.Tasks())
	}
	if c.Filter() != todolist.FilterAll {
		t.Errorf("filter changed on failed load: %s", c.Filter())
	}
	assertLastNote(t, notes, false, todolist.MsgFetchFailed)
}

func TestLoad_InvalidFilter(t *testing.T) {
	svc := scenarioService()
	c, _ := newController(t, svc)
	calls := svc.CallCount("ListTasks")

	err := c.Load(context.Background(), todolist.Filter("archived"))
	if !errors.Is(err, todolist.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
	if svc.CallCount("ListTasks") != calls {
		t.Error("invalid filter should not reach the store")
	}
}

func TestAdd_AppendsServerRow(t *testing.T) {
	svc := scenarioService()
	c, notes := newController(t, svc)
	before := c.Tasks()

	c.SetInput("  water plants  ")
	created, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := service.Task{ID: "3", Task: "water plants", IsComplete: false, UserID: testutil.DefaultUserID}
	if created != want {
		t.Errorf("expected %+v, got %+v", want, created)
	}

	after := c.Tasks()
	if len(after) != len(before)+1 {
		t.Fatalf("expected %d tasks, got %d", len(before)+1, len(after))
	}
	if !reflect.DeepEqual(after[:len(before)], before) {
		t.Errorf("existing entries changed: %v", after)
	}
	if after[len(after)-1] != want {
		t.Errorf("expected appended %+v, got %+v", want, after[len(after)-1])
	}
	if c.Input() != "" {
		t.Errorf("expected input cleared, got %q", c.Input())
	}
	assertLastNote(t, notes, true, todolist.MsgAdded)
}

func TestAdd_EmptyNeverCallsStore(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		svc := scenarioService()
		c, notes := newController(t, svc)
		before := c.Tasks()
		calls := svc.TotalCalls()

		_, err := c.Add(context.Background(), text)
		if !errors.Is(err, todolist.ErrEmptyTask) {
			t.Errorf("Add(%q): expected ErrEmptyTask, got %v", text, err)
		}
		if svc.TotalCalls() != calls {
			t.Errorf("Add(%q): store was called", text)
		}
		if !reflect.DeepEqual(c.Tasks(), before) {
			t.Errorf("Add(%q): collection changed", text)
		}
		assertLastNote(t, notes, false, todolist.MsgEmptyTask)
	}
}

func TestAdd_FailureKeepsInput(t *testing.T) {
	svc := scenarioService()
	c, notes := newController(t, svc)
	before := c.Tasks()

	svc.InsertTaskErr = errRemote
	c.SetInput("water plants")
	if _, err := c.Submit(context.Background()); !errors.Is(err, errRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if !reflect.DeepEqual(c.Tasks(), before) {
		t.Errorf("collection changed on failed add")
	}
	if c.Input() != "water plants" {
		t.Errorf("expected input kept, got %q", c.Input())
	}
	assertLastNote(t, notes, false, todolist.MsgAddFailed)
}

func TestDelete_RemovesExactlyOne(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", false)
	svc.AddTask("b", false)
	svc.AddTask("c", false)
	c, notes := newController(t, svc)

	if err := c.Delete(context.Background(), "2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(c.Tasks()); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Errorf("expected [1 3], got %v", got)
	}
	assertLastNote(t, notes, true, todolist.MsgDeleted)
}

func TestDelete_NotFoundIsRemoteError(t *testing.T) {
	svc := scenarioService()
	c, notes := newController(t, svc)
	before := c.Tasks()

	err := c.Delete(context.Background(), "42")
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !reflect.DeepEqual(c.Tasks(), before) {
		t.Errorf("collection changed")
	}
	assertLastNote(t, notes, false, todolist.MsgDeleteFailed)
}

func TestToggle_UsesEchoedValue(t *testing.T) {
	svc := scenarioService()
	// The server refuses to reopen tasks.
	svc.UpdateHook = func(t service.Task) service.Task {
		t.IsComplete = true
		return t
	}
	c, notes := newController(t, svc)

	got, err := c.Toggle(context.Background(), "2", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsComplete {
		t.Fatal("expected echoed row to stay complete")
	}
	task, _ := c.Find("2")
	if !task.IsComplete {
		t.Error("local entry should follow the echoed value, not the local negation")
	}
	if task.Task != "pay rent" || task.ID != "2" {
		t.Errorf("toggle changed other fields: %+v", task)
	}
	assertLastNote(t, notes, true, todolist.MsgUpdated)
}

func TestToggle_PatchesOnlyCompleteness(t *testing.T) {
	svc := scenarioService()
	c, _ := newController(t, svc)

	// Remote text drifted since the last load; toggle must not pull it in.
	svc.UpdateHook = func(t service.Task) service.Task {
		t.Task = "changed elsewhere"
		return t
	}
	if _, err := c.Toggle(context.Background(), "1", false); err != nil {
		t.Fatal(err)
	}
	task, _ := c.Find("1")
	if task.Task != "buy milk" {
		t.Errorf("expected task text untouched, got %q", task.Task)
	}
	if !task.IsComplete {
		t.Error("expected task to be complete")
	}
}

func TestToggle_StaleUnderFilterUntilReload(t *testing.T) {
	svc := scenarioService()
	c, _ := newController(t, svc)
	ctx := context.Background()

	if err := c.Load(ctx, todolist.FilterIncomplete); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Toggle(ctx, "1", false); err != nil {
		t.Fatal(err)
	}
	if got := ids(c.Tasks()); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("expected toggled task to remain until reload, got %v", got)
	}

	if err := c.Load(ctx, todolist.FilterIncomplete); err != nil {
		t.Fatal(err)
	}
	if got := c.Tasks(); len(got) != 0 {
		t.Errorf("expected empty incomplete view after reload, got %v", ids(got))
	}
}

func TestEdit_UsesEchoedText(t *testing.T) {
	svc := scenarioService()
	svc.UpdateHook = func(t service.Task) service.Task {
		t.Task = t.Task + " (2L)"
		return t
	}
	c, notes := newController(t, svc)

	if _, err := c.Edit(context.Background(), "1", "buy oat milk"); err != nil {
		t.Fatal(err)
	}
	task, _ := c.Find("1")
	if task.Task != "buy oat milk (2L)" {
		t.Errorf("expected server text, got %q", task.Task)
	}
	if task.IsComplete {
		t.Error("edit changed completeness")
	}
	assertLastNote(t, notes, true, todolist.MsgEdited)
}

func TestEdit_BlankRejected(t *testing.T) {
	svc := scenarioService()
	c, _ := newController(t, svc)
	calls := svc.TotalCalls()

	if _, err := c.Edit(context.Background(), "1", "  "); !errors.Is(err, todolist.ErrEmptyTask) {
		t.Fatalf("expected ErrEmptyTask, got %v", err)
	}
	if svc.TotalCalls() != calls {
		t.Error("blank edit should not reach the store")
	}
}

func TestMutationFailuresLeaveCollectionIdentical(t *testing.T) {
	tests := []struct {
		name   string
		inject func(*testutil.FakeService)
		run    func(*todolist.Controller) error
		msg    string
	}{
		{
			name:   "add",
			inject: func(s *testutil.FakeService) { s.InsertTaskErr = errRemote },
			run: func(c *todolist.Controller) error {
				_, err := c.Add(context.Background(), "new")
				return err
			},
			msg: todolist.MsgAddFailed,
		},
		{
			name:   "delete",
			inject: func(s *testutil.FakeService) { s.DeleteTaskErr = errRemote },
			run:    func(c *todolist.Controller) error { return c.Delete(context.Background(), "1") },
			msg:    todolist.MsgDeleteFailed,
		},
		{
			name:   "toggle",
			inject: func(s *testutil.FakeService) { s.UpdateTaskErr = errRemote },
			run: func(c *todolist.Controller) error {
				_, err := c.Toggle(context.Background(), "1", false)
				return err
			},
			msg: todolist.MsgUpdateFailed,
		},
		{
			name:   "edit",
			inject: func(s *testutil.FakeService) { s.UpdateTaskErr = errRemote },
			run: func(c *todolist.Controller) error {
				_, err := c.Edit(context.Background(), "1", "changed")
				return err
			},
			msg: todolist.MsgEditFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := scenarioService()
			c, notes := newController(t, svc)
			before := c.Tasks()

			tt.inject(svc)
			if err := tt.run(c); !errors.Is(err, errRemote) {
				t.Fatalf("expected remote error, got %v", err)
			}
			if !reflect.DeepEqual(c.Tasks(), before) {
				t.Errorf("collection changed: %v", c.Tasks())
			}
			assertLastNote(t, notes, false, tt.msg)
		})
	}
}

func TestClose(t *testing.T) {
	svc := scenarioService()
	c, _ := newController(t, svc)
	c.SetInput("pending")

	c.Close()

	if len(c.Tasks()) != 0 {
		t.Error("expected empty collection after close")
	}
	if c.Input() != "" {
		t.Error("expected input cleared after close")
	}
	calls := svc.TotalCalls()
	if err := c.Load(context.Background(), todolist.FilterAll); !errors.Is(err, todolist.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if _, err := c.Add(context.Background(), "x"); !errors.Is(err, todolist.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if svc.TotalCalls() != calls {
		t.Error("closed controller should not reach the store")
	}
}

func TestCloseDuringRemoteCall(t *testing.T) {
	tests := []struct {
		name string
		call func(c *todolist.Controller, id string) error
	}{
		{"delete", func(c *todolist.Controller, id string) error {
			return c.Delete(context.Background(), id)
		}},
		{"toggle", func(c *todolist.Controller, id string) error {
			_, err := c.Toggle(context.Background(), id, false)
			return err
		}},
		{"edit", func(c *todolist.Controller, id string) error {
			_, err := c.Edit(context.Background(), id, "buy oat milk")
			return err
		}},
		{"add", func(c *todolist.Controller, id string) error {
			_, err := c.Add(context.Background(), "walk dog")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := scenarioService()
			c, notes := newController(t, svc)
			id := c.Tasks()[0].ID
			before := len(notes.Notes())

			svc.OnCall = func(string) { c.Close() }

			if err := tt.call(c, id); !errors.Is(err, todolist.ErrClosed) {
				t.Errorf("expected ErrClosed, got %v", err)
			}
			if len(c.Tasks()) != 0 {
				t.Errorf("expected empty collection, got %v", c.Tasks())
			}
			if got := len(notes.Notes()); got != before {
				t.Errorf("expected no notification after close, got %v", notes.Notes()[before:])
			}
		})
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    todolist.Filter
		wantErr bool
	}{
		{"", todolist.FilterAll, false},
		{"all", todolist.FilterAll, false},
		{" Completed ", todolist.FilterCompleted, false},
		{"INCOMPLETE", todolist.FilterIncomplete, false},
		{"done", "", true},
	}
	for _, tt := range tests {
		got, err := todolist.ParseFilter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFilter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFilter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
