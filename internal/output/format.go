// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"todo/internal/service"
)

const (
	// NoTasks is printed when a listing is empty.
	NoTasks = "No tasks found"

	// maxCellWidth caps the title and description columns.
	maxCellWidth = 40
)

var tableHeader = []string{"ID", "TASK", "DESCRIPTION", "STATUS"}

// FormatTaskTable writes tasks as aligned columns with a header row.
// Columns are separated by two spaces; the last column is not padded.
func FormatTaskTable(w io.Writer, tasks []service.Task) {
	rows := make([][]string, 0, len(tasks)+1)
	rows = append(rows, tableHeader)
	for _, t := range tasks {
		rows = append(rows, []string{
			t.ID,
			truncate(normalizeText(t.Title, "(untitled)"), maxCellWidth),
			truncate(normalizeText(t.Description, "-"), maxCellWidth),
			string(t.Status),
		})
	}

	widths := make([]int, len(tableHeader))
	for _, row := range rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for _, row := range rows {
		var b strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)+2))
		}
		fmt.Fprintln(w, b.String())
	}
}

// FormatPager writes the page indicator, e.g. "Page 2 of 3".
func FormatPager(w io.Writer, page, totalPages int) {
	fmt.Fprintf(w, "Page %d of %d\n", page, totalPages)
}

// normalizeText normalizes a cell for display.
// - Empty or whitespace-only values become empty
// - Newlines are replaced with spaces
func normalizeText(s, empty string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")

	if strings.TrimSpace(s) == "" {
		return empty
	}
	return s
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
