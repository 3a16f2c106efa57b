// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a task.
// The zero value means "any status" when used as a filter.
type Status string

const (
	StatusAny       Status = ""
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ParseStatus normalizes a user-supplied status.
// "", "all" and "any" select no filter.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "any":
		return StatusAny, nil
	case "pending":
		return StatusPending, nil
	case "completed", "done":
		return StatusCompleted, nil
	}
	return StatusAny, fmt.Errorf("invalid status: %s", s)
}

// Label returns a display name for the status filter.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusCompleted:
		return "Completed"
	}
	return "All"
}

// Task represents a single task item.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	UserID      string

	// Created and Updated are set by the backend and may be zero.
	Created time.Time
	Updated time.Time
}

// ListQuery selects one page of a user's tasks.
type ListQuery struct {
	UserID string
	Status Status // StatusAny lists everything
	Page   int    // 1-based
	Limit  int
}

// Offset returns the number of tasks before the requested page.
func (q ListQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// TaskPage is one page of a listing.
type TaskPage struct {
	Tasks []Task

	// Total is the number of tasks matching the query across all pages.
	// Only meaningful when TotalKnown is true.
	Total      int
	TotalKnown bool
}
