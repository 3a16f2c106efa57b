package ui_test

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"todo/internal/service"
	"todo/internal/testutil"
	"todo/internal/ui"
	"todo/internal/viewmodel"
)

const user = "user123"

func setup(t *testing.T, fake *testutil.FakeService) *ui.Model {
	t.Helper()
	vm := viewmodel.New(fake, viewmodel.Options{UserID: user, Limit: 5, SurfaceWriteErrors: true})
	m := ui.New(context.Background(), vm)
	runCmd(t, m, m.Init())
	return m
}

// runCmd executes cmd synchronously and feeds its message back.
func runCmd(t *testing.T, m *ui.Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m.Update(cmd())
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *ui.Model, s string) tea.Cmd {
	_, cmd := m.Update(key(s))
	return cmd
}

func TestView_SingleTask(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(user, "A", "d", service.StatusPending)
	m := setup(t, fake)

	view := m.View()
	for _, want := range []string{"A", "d", "pending", "[d]elete [c]omplete", "Page 1 of 1", "Add a todo..."} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q\n%s", want, view)
		}
	}
}

func TestView_Empty(t *testing.T) {
	m := setup(t, testutil.NewFakeService())

	if view := m.View(); !strings.Contains(view, "No tasks found") {
		t.Errorf("expected empty message\n%s", view)
	}
}

func TestCompleteKey(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(user, "A", "d", service.StatusPending)
	task := fake.AddTask(user, "B", "e", service.StatusPending)
	m := setup(t, fake)
	fake.ResetCalls()

	press(m, "down")
	runCmd(t, m, press(m, "c"))

	updates := fake.CallsTo("UpdateTask")
	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}
	want := task
	want.Status = service.StatusCompleted
	if updates[0].Task != want {
		t.Errorf("expected %+v, got %+v", want, updates[0].Task)
	}
	if n := len(fake.CallsTo("ListTasks")); n != 1 {
		t.Errorf("expected a refetch, got %d", n)
	}
	if !strings.Contains(m.View(), "completed") {
		t.Errorf("expected completed status in view\n%s", m.View())
	}
}

func TestDeleteKey(t *testing.T) {
	fake := testutil.NewFakeService()
	task := fake.AddTask(user, "A", "d", service.StatusPending)
	m := setup(t, fake)

	runCmd(t, m, press(m, "d"))

	deletes := fake.CallsTo("DeleteTask")
	if len(deletes) != 1 || deletes[0].ID != task.ID {
		t.Fatalf("expected delete of %q, got %+v", task.ID, deletes)
	}
	if !strings.Contains(m.View(), "No tasks found") {
		t.Errorf("expected empty table after delete\n%s", m.View())
	}
}

func TestSubmitForm(t *testing.T) {
	fake := testutil.NewFakeService()
	m := setup(t, fake)

	press(m, "tab")
	press(m, "Buy milk")
	press(m, "tab")
	press(m, "two litres")
	runCmd(t, m, press(m, "enter"))

	creates := fake.CallsTo("CreateTask")
	if len(creates) != 1 {
		t.Fatalf("expected 1 create, got %d", len(creates))
	}
	if creates[0].Task.Title != "Buy milk" || creates[0].Task.Description != "two litres" {
		t.Errorf("unexpected task: %+v", creates[0].Task)
	}
	view := m.View()
	if strings.Contains(view, "Title:       Buy milk") {
		t.Errorf("expected form cleared\n%s", view)
	}
	if !strings.Contains(view, "Buy milk") {
		t.Errorf("expected new task listed\n%s", view)
	}
}

func TestSubmitForm_Blank(t *testing.T) {
	fake := testutil.NewFakeService()
	m := setup(t, fake)

	press(m, "tab")
	press(m, "only title")
	runCmd(t, m, press(m, "enter"))

	if n := len(fake.CallsTo("CreateTask")); n != 0 {
		t.Errorf("expected no create, got %d", n)
	}
	if view := m.View(); !strings.Contains(view, viewmodel.DraftIncompleteMessage) {
		t.Errorf("expected validation message\n%s", view)
	}

	press(m, "esc")
	if view := m.View(); strings.Contains(view, viewmodel.DraftIncompleteMessage) {
		t.Errorf("expected message dismissed\n%s", view)
	}
}

func TestSubmitForm_InputLockedWhileAdding(t *testing.T) {
	fake := testutil.NewFakeService()
	m := setup(t, fake)

	press(m, "tab")
	press(m, "Buy milk")
	press(m, "tab")
	press(m, "two litres")
	pending := press(m, "enter")
	if pending == nil {
		t.Fatal("expected a submit command")
	}

	press(m, " today")
	if cmd := press(m, "enter"); cmd != nil {
		t.Error("expected a second enter to be ignored while adding")
	}
	if view := m.View(); !strings.Contains(view, "Adding...") {
		t.Errorf("expected adding indicator\n%s", view)
	}

	runCmd(t, m, pending)

	creates := fake.CallsTo("CreateTask")
	if len(creates) != 1 {
		t.Fatalf("expected 1 create, got %d", len(creates))
	}
	if creates[0].Task.Description != "two litres" {
		t.Errorf("expected %q, got %q", "two litres", creates[0].Task.Description)
	}
	if view := m.View(); strings.Contains(view, "today") || strings.Contains(view, "Adding...") {
		t.Errorf("expected cleared, editable form\n%s", view)
	}

	press(m, "next")
	if got := m.View(); !strings.Contains(got, "next") {
		t.Errorf("expected typing accepted after the add\n%s", got)
	}
}

func TestPaging(t *testing.T) {
	fake := testutil.NewFakeService()
	for i := 0; i < 6; i++ {
		fake.AddTask(user, "t", "d", service.StatusPending)
	}
	m := setup(t, fake)

	if cmd := press(m, "left"); cmd != nil {
		t.Error("expected previous page to be disabled")
	}
	runCmd(t, m, press(m, "right"))
	if view := m.View(); !strings.Contains(view, "Page 2 of 2") {
		t.Errorf("expected page 2\n%s", view)
	}
	if cmd := press(m, "right"); cmd != nil {
		t.Error("expected next page to be disabled")
	}
}

func TestFilterKeys(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(user, "open", "d", service.StatusPending)
	fake.AddTask(user, "closed", "d", service.StatusCompleted)
	m := setup(t, fake)

	runCmd(t, m, press(m, "2"))
	calls := fake.CallsTo("ListTasks")
	if got := calls[len(calls)-1].Query.Status; got != service.StatusCompleted {
		t.Errorf("expected filter %q, got %q", service.StatusCompleted, got)
	}
	if view := m.View(); strings.Contains(view, "open") {
		t.Errorf("expected pending task filtered out\n%s", view)
	}

	runCmd(t, m, press(m, "f"))
	calls = fake.CallsTo("ListTasks")
	if got := calls[len(calls)-1].Query.Status; got != service.StatusAny {
		t.Errorf("expected filter to cycle to all, got %q", got)
	}
}

func TestQuit(t *testing.T) {
	m := setup(t, testutil.NewFakeService())

	cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}
}
