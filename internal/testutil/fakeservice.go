// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strconv"
	"sync"

	"todo/internal/logging"
	"todo/internal/service"
)

// Call records one invocation on a FakeService.
type Call struct {
	Method string
	Query  service.ListQuery
	ID     string
	Task   service.Task

	// RequestID is the request id carried by the call's context.
	RequestID string
}

// FakeService is an in-memory implementation of service.Service for testing.
// Listings filter by user and status and report an exact total unless
// OmitTotal is set.
type FakeService struct {
	mu     sync.Mutex
	tasks  []service.Task
	nextID int
	calls  []Call

	// OmitTotal makes ListTasks report the total as unknown.
	OmitTotal bool

	// BeforeList, when set, runs at the start of every ListTasks call
	// without the lock held. Tests use it to hold a fetch in flight.
	BeforeList func(q service.ListQuery)

	// Error injection for testing
	ListTasksErr  error
	GetTaskErr    error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{}
}

// AddTask seeds a task and returns it with its assigned id.
func (f *FakeService) AddTask(userID, title, description string, status service.Status) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{
		ID:          f.newID(),
		Title:       title,
		Description: description,
		Status:      status,
		UserID:      userID,
	}
	f.tasks = append(f.tasks, t)
	return t
}

// Tasks returns a copy of every stored task.
func (f *FakeService) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Calls returns the recorded invocations in order.
func (f *FakeService) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsTo returns the recorded invocations of one method.
func (f *FakeService) CallsTo(method string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log.
func (f *FakeService) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *FakeService) newID() string {
	f.nextID++
	return "t" + strconv.Itoa(f.nextID)
}

func (f *FakeService) record(c Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, q service.ListQuery) (service.TaskPage, error) {
	f.record(Call{Method: "ListTasks", RequestID: logging.RequestID(ctx), Query: q})
	if f.BeforeList != nil {
		f.BeforeList(q)
	}
	if err := ctx.Err(); err != nil {
		return service.TaskPage{}, err
	}
	if f.ListTasksErr != nil {
		return service.TaskPage{}, f.ListTasksErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []service.Task
	for _, t := range f.tasks {
		if t.UserID != q.UserID {
			continue
		}
		if q.Status != service.StatusAny && t.Status != q.Status {
			continue
		}
		matched = append(matched, t)
	}

	page := service.TaskPage{Tasks: []service.Task{}}
	if !f.OmitTotal {
		page.Total, page.TotalKnown = len(matched), true
	}
	start := q.Offset()
	if q.Limit < 1 || start >= len(matched) {
		return page, nil
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	page.Tasks = append(page.Tasks, matched[start:end]...)
	return page, nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, userID, id string) (service.Task, error) {
	f.record(Call{Method: "GetTask", RequestID: logging.RequestID(ctx), ID: id})
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID == id && t.UserID == userID {
			return t, nil
		}
	}
	return service.Task{}, service.NewError(service.ErrCodeNotFound, "task not found")
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, task service.Task) (service.Task, error) {
	f.record(Call{Method: "CreateTask", RequestID: logging.RequestID(ctx), Task: task})
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	task.ID = f.newID()
	f.tasks = append(f.tasks, task)
	return task, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, task service.Task) (service.Task, error) {
	f.record(Call{Method: "UpdateTask", RequestID: logging.RequestID(ctx), ID: id, Task: task})
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			task.ID = id
			f.tasks[i] = task
			return task, nil
		}
	}
	return service.Task{}, service.NewError(service.ErrCodeNotFound, "task not found")
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, userID, id string) error {
	f.record(Call{Method: "DeleteTask", RequestID: logging.RequestID(ctx), ID: id})
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id && t.UserID == userID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.NewError(service.ErrCodeNotFound, "task not found")
}
