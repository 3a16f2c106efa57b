package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"todo/internal/service"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	activeStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
)

const emptyMessage = "No tasks found"

// View renders the current state.
func (m *Model) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		return b.String()
	}

	b.WriteString(m.title.View() + "\n")
	b.WriteString(m.description.View() + "\n")
	if m.submitting {
		b.WriteString(dimStyle.Render("Adding...") + "\n\n")
	} else {
		b.WriteString(dimStyle.Render("enter to add, tab to switch fields") + "\n\n")
	}

	if m.state.Error != "" {
		b.WriteString(errorStyle.Render(m.state.Error) + "\n\n")
	}

	writeFilter(&b, m.state.Filter)
	b.WriteString(m.renderTable() + "\n")
	writePager(&b, m.state.Pagination.Page, m.state.Pagination.TotalPages, m.state.HasMore)

	if m.state.Fetching {
		b.WriteString(dimStyle.Render("Loading...") + "\n")
	}
	b.WriteString(dimStyle.Render("? help  q quit") + "\n")
	return b.String()
}

func (m *Model) renderTable() string {
	if len(m.state.Tasks) == 0 {
		return dimStyle.Render(emptyMessage)
	}

	rows := make([][]string, 0, len(m.state.Tasks))
	for _, t := range m.state.Tasks {
		rows = append(rows, []string{t.Title, t.Description, string(t.Status), "[d]elete [c]omplete"})
	}

	cursor := m.cursor
	tableFocused := m.focus == focusTable
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers("Task", "Description", "Status", "Actions").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case row == cursor && tableFocused:
				return selectedStyle.Padding(0, 1)
			}
			return cellStyle
		})
	return t.Render()
}

func writeTitle(b *strings.Builder) {
	title := "Todo List"
	b.WriteString(headerStyle.Render(title) + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeFilter(b *strings.Builder, current service.Status) {
	labels := make([]string, 0, 3)
	for i, s := range []service.Status{service.StatusAny, service.StatusPending, service.StatusCompleted} {
		label := fmt.Sprintf("%d %s", i, s.Label())
		if s == current {
			label = activeStyle.Render(label)
		} else {
			label = dimStyle.Render(label)
		}
		labels = append(labels, label)
	}
	b.WriteString("Filter: " + strings.Join(labels, "  ") + "\n")
}

func writePager(b *strings.Builder, page, totalPages int, more bool) {
	prev, next := "← Previous", "Next →"
	if page <= 1 {
		prev = dimStyle.Render(prev)
	}
	if page >= totalPages && !more {
		next = dimStyle.Render(next)
	}
	b.WriteString(fmt.Sprintf("%s  Page %d of %d  %s\n", prev, page, totalPages, next))
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keys\n")
	b.WriteString("  tab / a       focus the new task form\n")
	b.WriteString("  enter         add the task (in the form)\n")
	b.WriteString("  esc           dismiss the error, leave the form\n")
	b.WriteString("  up / down     move the cursor\n")
	b.WriteString("  d             delete the selected task\n")
	b.WriteString("  c             complete the selected task\n")
	b.WriteString("  f / 0 1 2     change the status filter\n")
	b.WriteString("  left / right  previous / next page\n")
	b.WriteString("  r             refresh\n")
	b.WriteString("  ?             toggle this help\n")
	b.WriteString("  q             quit\n")
}
