// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for task backend operations.
// The view-model and commands never import a backend package directly.
type Service interface {
	// ListTasks returns one page of the user's tasks matching the query.
	// Results are in backend order (no client-side sorting).
	ListTasks(ctx context.Context, q ListQuery) (TaskPage, error)

	// GetTask returns a single task owned by userID.
	GetTask(ctx context.Context, userID, id string) (Task, error)

	// CreateTask creates a task and returns it as stored by the backend.
	CreateTask(ctx context.Context, task Task) (Task, error)

	// UpdateTask replaces the mutable fields of task id.
	UpdateTask(ctx context.Context, id string, task Task) (Task, error)

	// DeleteTask deletes task id owned by userID.
	DeleteTask(ctx context.Context, userID, id string) error
}
