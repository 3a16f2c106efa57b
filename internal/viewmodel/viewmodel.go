// Package viewmodel holds the state of a task list session and keeps it in
// sync with a service.Service.
//
// A Model owns the cached page of tasks, the status filter, pagination, the
// new-task draft and a user-visible error message. Every operation that
// changes what should be displayed issues a fetch; mutations are followed by
// a fetch so the cache always reflects the backend.
package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"todo/internal/logging"
	"todo/internal/service"
)

// DraftIncompleteMessage is shown when a draft is submitted without a title or description.
const DraftIncompleteMessage = "Title and description are required."

var (
	// ErrDraftIncomplete is returned when the draft lacks a title or description.
	ErrDraftIncomplete = errors.New("title and description are required")

	// ErrPageOutOfRange is returned by ChangePage for pages outside [1, TotalPages].
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrInvalidStatus is returned by ChangeFilter for an unknown status.
	ErrInvalidStatus = errors.New("invalid status filter")
)

// Draft is the not-yet-submitted new-task form.
type Draft struct {
	Title       string
	Description string
}

// Pagination selects the page being displayed.
type Pagination struct {
	Page       int
	Limit      int
	TotalPages int
}

// State is a snapshot of the model for rendering.
type State struct {
	Tasks      []service.Task
	Total      int
	Draft      Draft
	Filter     service.Status
	Pagination Pagination

	// Error is the user-visible message, empty when there is none.
	Error string

	// Fetching reports whether a fetch is in flight.
	Fetching bool

	// TotalKnown is false when the backend did not report a total; Total
	// is then derived from the pages seen so far.
	TotalKnown bool

	// HasMore reports that a page may exist beyond TotalPages: the total is
	// unknown and the current page came back full.
	HasMore bool
}

// Options configures a Model.
type Options struct {
	UserID string
	Limit  int
	Page   int
	Status service.Status

	// SurfaceWriteErrors shows failed create/update/delete calls as the
	// user-visible error. When false they are only logged.
	SurfaceWriteErrors bool

	Logger *zap.Logger
}

// Model is the task list view-model. It is safe for concurrent use.
type Model struct {
	svc                service.Service
	log                *zap.Logger
	userID             string
	surfaceWriteErrors bool

	mu         sync.Mutex
	tasks      []service.Task
	total      int
	draft      Draft
	filter     service.Status
	page       int
	limit      int
	totalPages int
	totalKnown bool
	errMsg     string

	// more is set while the total is unknown and the current page was full.
	more bool
	// lastPage is the page found to be the last one while the total is
	// unknown, 0 when none is known. Writes and filter changes reset it.
	lastPage int

	// seq is the token of the most recently issued fetch.
	seq      uint64
	inflight int
}

// New creates a Model. No request is issued until Fetch is called.
func New(svc service.Service, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := opts.Limit
	if limit < 1 {
		limit = 1
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	return &Model{
		svc:                svc,
		log:                logger.Named("viewmodel").With(zap.String("user_id", opts.UserID)),
		userID:             opts.UserID,
		surfaceWriteErrors: opts.SurfaceWriteErrors,
		filter:             opts.Status,
		page:               page,
		limit:              limit,
		totalPages:         1,
	}
}

// TotalPages returns ceil(total/limit), and 1 when there is nothing to show.
func TotalPages(total, limit int) int {
	if limit < 1 || total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

// State returns a snapshot of the current state.
func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]service.Task, len(m.tasks))
	copy(tasks, m.tasks)
	return State{
		Tasks:  tasks,
		Total:  m.total,
		Draft:  m.draft,
		Filter: m.filter,
		Pagination: Pagination{
			Page:       m.page,
			Limit:      m.limit,
			TotalPages: m.totalPages,
		},
		Error:      m.errMsg,
		Fetching:   m.inflight > 0,
		TotalKnown: m.totalKnown,
		HasMore:    m.more,
	}
}

// Fetch lists the current page and replaces the cached tasks.
//
// On failure the cached tasks are left unchanged and the error is logged and
// returned; it never becomes the user-visible error. A response is applied
// only if no newer fetch was issued while it was in flight. When the page
// falls beyond the last page (e.g. its last task was deleted) the page is
// clamped and fetched once more.
func (m *Model) Fetch(ctx context.Context) error {
	ctx = logging.EnsureRequestID(ctx)
	for attempt := 0; ; attempt++ {
		again, err := m.fetchOnce(ctx, attempt == 0)
		if err != nil || !again {
			return err
		}
	}
}

func (m *Model) fetchOnce(ctx context.Context, mayRefetch bool) (bool, error) {
	m.mu.Lock()
	m.seq++
	token := m.seq
	q := service.ListQuery{
		UserID: m.userID,
		Status: m.filter,
		Page:   m.page,
		Limit:  m.limit,
	}
	m.inflight++
	m.mu.Unlock()

	log := logging.WithRequestID(ctx, m.log)
	page, err := m.svc.ListTasks(ctx, q)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflight--

	if err != nil {
		log.Error("fetch failed",
			zap.String("status", string(q.Status)),
			zap.Int("page", q.Page),
			zap.Int("limit", q.Limit),
			zap.Error(err),
		)
		return false, fmt.Errorf("fetch tasks: %w", err)
	}
	if token != m.seq {
		log.Debug("discarding stale fetch", zap.Uint64("token", token), zap.Uint64("latest", m.seq))
		return false, nil
	}

	total := page.Total
	if !page.TotalKnown {
		total = q.Offset() + len(page.Tasks)
		log.Debug("total count missing, derived from page", zap.Int("total", total))
	}

	m.tasks = append([]service.Task(nil), page.Tasks...)
	m.total = total
	m.totalPages = TotalPages(total, m.limit)
	m.totalKnown = page.TotalKnown
	m.more = !page.TotalKnown && len(page.Tasks) >= m.limit && q.Page != m.lastPage

	if m.page > m.totalPages {
		if !page.TotalKnown {
			m.lastPage = m.totalPages
		}
		log.Debug("page beyond last page, clamping",
			zap.Int("page", m.page),
			zap.Int("total_pages", m.totalPages),
		)
		m.page = m.totalPages
		return mayRefetch, nil
	}
	return false, nil
}

// SetTitle updates the draft title.
func (m *Model) SetTitle(title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft.Title = title
}

// SetDescription updates the draft description.
func (m *Model) SetDescription(description string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft.Description = description
}

// SubmitNewTask creates a pending task from the draft.
//
// A draft whose title or description is blank sets the user-visible error
// and returns ErrDraftIncomplete without any request. Otherwise the error is
// cleared, the task is created, the draft is reset and the page refetched.
// A failed create leaves the draft in place.
func (m *Model) SubmitNewTask(ctx context.Context) error {
	ctx = logging.EnsureRequestID(ctx)
	log := logging.WithRequestID(ctx, m.log)

	m.mu.Lock()
	title := strings.TrimSpace(m.draft.Title)
	description := strings.TrimSpace(m.draft.Description)
	if title == "" || description == "" {
		m.errMsg = DraftIncompleteMessage
		m.mu.Unlock()
		return ErrDraftIncomplete
	}
	m.errMsg = ""
	m.mu.Unlock()

	task := service.Task{
		Title:       title,
		Description: description,
		Status:      service.StatusPending,
		UserID:      m.userID,
	}
	created, err := m.svc.CreateTask(ctx, task)
	if err != nil {
		m.writeFailed(log, "create", "", err)
		return err
	}
	log.Info("task created", zap.String("task_id", created.ID))

	m.mu.Lock()
	m.draft = Draft{}
	m.mu.Unlock()

	m.refetch(ctx)
	return nil
}

// DeleteTask deletes a task and refetches. The id need not be in the cached
// page; a task that is already gone counts as deleted.
func (m *Model) DeleteTask(ctx context.Context, id string) error {
	ctx = logging.EnsureRequestID(ctx)
	log := logging.WithRequestID(ctx, m.log)

	err := m.svc.DeleteTask(ctx, m.userID, id)
	switch {
	case err == nil:
		log.Info("task deleted", zap.String("task_id", id))
	case service.IsCode(err, service.ErrCodeNotFound):
		log.Info("task already deleted", zap.String("task_id", id))
	default:
		m.writeFailed(log, "delete", id, err)
		return err
	}

	m.clearError()
	m.refetch(ctx)
	return nil
}

// CompleteTask marks task completed, keeping every other field, and refetches.
func (m *Model) CompleteTask(ctx context.Context, id string, task service.Task) error {
	task.Status = service.StatusCompleted
	return m.UpdateTask(ctx, id, task)
}

// UpdateTask replaces the task stored under id with task and refetches.
func (m *Model) UpdateTask(ctx context.Context, id string, task service.Task) error {
	ctx = logging.EnsureRequestID(ctx)
	log := logging.WithRequestID(ctx, m.log)

	if _, err := m.svc.UpdateTask(ctx, id, task); err != nil {
		m.writeFailed(log, "update", id, err)
		return err
	}
	log.Info("task updated", zap.String("task_id", id), zap.String("status", string(task.Status)))

	m.clearError()
	m.refetch(ctx)
	return nil
}

// ChangeFilter sets the status filter, returns to the first page and fetches.
func (m *Model) ChangeFilter(ctx context.Context, status service.Status) error {
	switch status {
	case service.StatusAny, service.StatusPending, service.StatusCompleted:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	m.mu.Lock()
	m.filter = status
	m.page = 1
	m.lastPage = 0
	m.errMsg = ""
	m.mu.Unlock()

	return m.Fetch(ctx)
}

// ChangePage moves to page and fetches. Pages outside [1, TotalPages] are
// rejected with ErrPageOutOfRange and change nothing, except the page after
// the current one while HasMore is set.
func (m *Model) ChangePage(ctx context.Context, page int) error {
	m.mu.Lock()
	last := max(m.totalPages, 1)
	if m.more {
		last = max(last, m.page+1)
	}
	if page < 1 || page > last {
		m.mu.Unlock()
		return ErrPageOutOfRange
	}
	m.page = page
	m.errMsg = ""
	m.mu.Unlock()

	return m.Fetch(ctx)
}

// NextPage moves one page forward.
func (m *Model) NextPage(ctx context.Context) error {
	m.mu.Lock()
	page := m.page + 1
	m.mu.Unlock()
	return m.ChangePage(ctx, page)
}

// PrevPage moves one page back.
func (m *Model) PrevPage(ctx context.Context) error {
	m.mu.Lock()
	page := m.page - 1
	m.mu.Unlock()
	return m.ChangePage(ctx, page)
}

// CanPrev reports whether a previous page exists.
func (m *Model) CanPrev() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.page > 1
}

// CanNext reports whether a next page exists or, with an unknown total,
// may exist.
func (m *Model) CanNext() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.page < m.totalPages || m.more
}

// DismissError clears the user-visible error.
func (m *Model) DismissError() {
	m.clearError()
}

func (m *Model) clearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errMsg = ""
}

// refetch fetches after a successful write. Failures are already logged.
// A write can move the end of the list, so a known last page is forgotten.
func (m *Model) refetch(ctx context.Context) {
	m.mu.Lock()
	m.lastPage = 0
	m.mu.Unlock()
	_ = m.Fetch(ctx)
}

func (m *Model) writeFailed(log *zap.Logger, op, id string, err error) {
	log.Error(op+" failed", zap.String("task_id", id), zap.Error(err))
	if !m.surfaceWriteErrors {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errMsg = fmt.Sprintf("Could not %s task: %s", op, userMessage(err))
}

// userMessage prefers the classified message over the wrapped chain.
func userMessage(err error) string {
	var sErr *service.Error
	if errors.As(err, &sErr) && sErr.Message != "" {
		return sErr.Message
	}
	return err.Error()
}
