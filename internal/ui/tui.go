// Package ui provides the interactive terminal view of the task list.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todo/internal/service"
	"todo/internal/viewmodel"
)

const (
	titlePlaceholder       = "Add a todo..."
	descriptionPlaceholder = "Enter a description.."
	inputCharLimit         = 200
	inputWidth             = 40
)

// RunTUI runs the interactive view until the user quits or ctx is done.
// The first page is fetched on start.
func RunTUI(ctx context.Context, vm *viewmodel.Model, out io.Writer) error {
	if !IsTTY(out) {
		return fmt.Errorf("tui requires a TTY")
	}
	program := tea.NewProgram(New(ctx, vm), tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(out))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

type focus int

const (
	focusTable focus = iota
	focusTitle
	focusDescription
)

// actionDoneMsg reports the end of a view-model call started by the view.
type actionDoneMsg struct {
	err error
}

// submitDoneMsg reports the end of a draft submission.
type submitDoneMsg struct {
	err error
}

// Model is the bubbletea model. All task state lives in the view-model;
// Model only tracks focus, the cursor and the text inputs.
type Model struct {
	ctx         context.Context
	vm          *viewmodel.Model
	title       textinput.Model
	description textinput.Model
	focus       focus
	cursor      int
	showHelp    bool
	state       viewmodel.State

	// submitting is set from enter until the create finishes; the form is
	// read-only meanwhile so the draft reset cannot drop keystrokes.
	submitting bool
}

// New creates the view over vm.
func New(ctx context.Context, vm *viewmodel.Model) *Model {
	title := textinput.New()
	title.Placeholder = titlePlaceholder
	title.CharLimit = inputCharLimit
	title.Width = inputWidth
	title.Prompt = "Title:       "

	description := textinput.New()
	description.Placeholder = descriptionPlaceholder
	description.CharLimit = inputCharLimit
	description.Width = inputWidth
	description.Prompt = "Description: "

	return &Model{
		ctx:         ctx,
		vm:          vm,
		title:       title,
		description: description,
		state:       vm.State(),
	}
}

// Init fetches the first page.
func (m *Model) Init() tea.Cmd {
	return m.run(m.vm.Fetch)
}

// Update handles a message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer m.sync()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.focus != focusTable {
			return m, m.updateForm(msg)
		}
		return m, m.updateTable(msg)
	case submitDoneMsg:
		m.submitting = false
		if msg.err == nil {
			draft := m.vm.State().Draft
			m.title.SetValue(draft.Title)
			m.description.SetValue(draft.Description)
		}
	}
	return m, nil
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		if m.submitting {
			return nil
		}
		m.submitting = true
		return m.runSubmit()
	case "tab":
		return m.cycleFocus()
	case "esc":
		m.vm.DismissError()
		return m.setFocus(focusTable)
	}
	if m.submitting {
		return nil
	}

	var cmd tea.Cmd
	if m.focus == focusTitle {
		m.title, cmd = m.title.Update(msg)
		m.vm.SetTitle(m.title.Value())
	} else {
		m.description, cmd = m.description.Update(msg)
		m.vm.SetDescription(m.description.Value())
	}
	return cmd
}

func (m *Model) updateTable(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case "tab", "a":
		return m.setFocus(focusTitle)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Tasks)-1 {
			m.cursor++
		}
	case "d":
		if task, ok := m.selected(); ok {
			return m.run(func(ctx context.Context) error {
				return m.vm.DeleteTask(ctx, task.ID)
			})
		}
	case "c":
		if task, ok := m.selected(); ok {
			return m.run(func(ctx context.Context) error {
				return m.vm.CompleteTask(ctx, task.ID, task)
			})
		}
	case "f":
		return m.filter(nextFilter(m.state.Filter))
	case "0":
		return m.filter(service.StatusAny)
	case "1":
		return m.filter(service.StatusPending)
	case "2":
		return m.filter(service.StatusCompleted)
	case "left", "p":
		if m.vm.CanPrev() {
			m.cursor = 0
			return m.run(m.vm.PrevPage)
		}
	case "right", "n":
		if m.vm.CanNext() {
			m.cursor = 0
			return m.run(m.vm.NextPage)
		}
	case "r":
		return m.run(m.vm.Fetch)
	case "esc":
		m.vm.DismissError()
	}
	return nil
}

func (m *Model) filter(status service.Status) tea.Cmd {
	m.cursor = 0
	return m.run(func(ctx context.Context) error {
		return m.vm.ChangeFilter(ctx, status)
	})
}

func nextFilter(s service.Status) service.Status {
	switch s {
	case service.StatusAny:
		return service.StatusPending
	case service.StatusPending:
		return service.StatusCompleted
	}
	return service.StatusAny
}

func (m *Model) selected() (service.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Tasks) {
		return service.Task{}, false
	}
	return m.state.Tasks[m.cursor], true
}

func (m *Model) cycleFocus() tea.Cmd {
	switch m.focus {
	case focusTitle:
		return m.setFocus(focusDescription)
	case focusDescription:
		return m.setFocus(focusTable)
	}
	return m.setFocus(focusTitle)
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.title.Blur()
	m.description.Blur()
	switch f {
	case focusTitle:
		return m.title.Focus()
	case focusDescription:
		return m.description.Focus()
	}
	return nil
}

// run executes a view-model call off the event loop.
func (m *Model) run(action func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{err: action(ctx)}
	}
}

func (m *Model) runSubmit() tea.Cmd {
	ctx := m.ctx
	vm := m.vm
	return func() tea.Msg {
		return submitDoneMsg{err: vm.SubmitNewTask(ctx)}
	}
}

// sync refreshes the rendered snapshot and keeps the cursor on a row.
func (m *Model) sync() {
	m.state = m.vm.State()
	if m.cursor >= len(m.state.Tasks) {
		m.cursor = len(m.state.Tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
