// Package export renders task reports as JSON, CSV or PDF.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"todo/internal/service"
)

// Format is a report encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatPDF:
		return f, nil
	case "":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown format %s", s)
}

// Report is the set of tasks to export.
type Report struct {
	UserID    string
	Filter    service.Status
	Generated time.Time
	Tasks     []service.Task
}

var csvHeader = []string{"id", "title", "description", "status", "user_id", "created", "updated"}

type jsonTask struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	UserID      string     `json:"user_id"`
	Created     *time.Time `json:"created,omitempty"`
	Updated     *time.Time `json:"updated,omitempty"`
}

type jsonReport struct {
	UserID    string     `json:"user_id"`
	Filter    string     `json:"filter"`
	Generated time.Time  `json:"generated"`
	Count     int        `json:"count"`
	Tasks     []jsonTask `json:"tasks"`
}

// Write encodes r to w.
func Write(w io.Writer, format Format, r Report) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, r)
	case FormatCSV:
		return writeCSV(w, r)
	case FormatPDF:
		return writePDF(w, r)
	}
	return fmt.Errorf("unknown format %s", format)
}

func writeJSON(w io.Writer, r Report) error {
	out := jsonReport{
		UserID:    r.UserID,
		Filter:    r.Filter.Label(),
		Generated: r.Generated.UTC(),
		Count:     len(r.Tasks),
		Tasks:     make([]jsonTask, 0, len(r.Tasks)),
	}
	for _, t := range r.Tasks {
		out.Tasks = append(out.Tasks, jsonTask{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Status:      string(t.Status),
			UserID:      t.UserID,
			Created:     optionalTime(t.Created),
			Updated:     optionalTime(t.Updated),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range r.Tasks {
		row := []string{t.ID, t.Title, t.Description, string(t.Status), t.UserID, formatTime(t.Created), formatTime(t.Updated)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writePDF(w io.Writer, r Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Task Report", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task Report")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 5, fmt.Sprintf("User: %s   Filter: %s   Tasks: %d   Generated: %s",
		r.UserID, r.Filter.Label(), len(r.Tasks), r.Generated.UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	if len(r.Tasks) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, "No tasks found")
		return pdf.Output(w)
	}

	// Latin-1 only in core fonts.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, t := range r.Tasks {
		pdf.SetFont("Arial", "B", 10)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("[%s] %s", t.Status, t.Title)), "0", "L", false)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, tr(t.Description), "0", "L", false)
		pdf.SetFont("Arial", "", 7)
		pdf.MultiCell(0, 4, tr("id "+t.ID), "0", "L", false)
		pdf.Ln(2)
	}
	return pdf.Output(w)
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
