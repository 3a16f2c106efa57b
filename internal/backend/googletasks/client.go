// Package googletasks implements the service.Service interface using Google Tasks API.
package googletasks

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"todo/internal/config"
	"todo/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// fetchPageSize is the Google API page size used while collecting a list.
	fetchPageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// Scope is the OAuth scope for Google Tasks.
	Scope = "https://www.googleapis.com/auth/tasks"

	statusNeedsAction = "needsAction"
	statusCompleted   = "completed"
)

// Client implements service.Service using Google Tasks API.
// The signed-in Google account owns the tasks, so user ids are not sent.
type Client struct {
	svc    *tasks.Service
	listID string
}

var _ service.Service = (*Client)(nil)

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	token, err := LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, err
	}

	// The token source refreshes the access token as needed.
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc, listID: listIDOrDefault(cfg.Google.ListID)}, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and endpoint (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint, listID string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc, listID: listIDOrDefault(listID)}, nil
}

func listIDOrDefault(id string) string {
	if strings.TrimSpace(id) == "" {
		return DefaultListID
	}
	return id
}

// ListTasks implements service.Service.
// Google Tasks pages by token, so the whole list is collected, filtered by
// status, and sliced to the requested page. The total is therefore exact.
func (c *Client) ListTasks(ctx context.Context, q service.ListQuery) (service.TaskPage, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	call := c.svc.Tasks.List(c.listID).
		MaxResults(fetchPageSize).
		ShowCompleted(q.Status != service.StatusPending).
		ShowHidden(q.Status != service.StatusPending).
		ShowDeleted(false)

	var matched []service.Task
	err := call.Pages(ctx, func(resp *tasks.Tasks) error {
		for _, item := range resp.Items {
			task := fromAPI(item, q.UserID)
			if q.Status == service.StatusAny || task.Status == q.Status {
				matched = append(matched, task)
			}
		}
		return nil
	})
	if err != nil {
		return service.TaskPage{}, wrapError(err)
	}

	page := service.TaskPage{Total: len(matched), TotalKnown: true, Tasks: []service.Task{}}
	start := q.Offset()
	if q.Limit < 1 || start >= len(matched) {
		return page, nil
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	page.Tasks = matched[start:end]
	return page, nil
}

// GetTask implements service.Service.
func (c *Client) GetTask(ctx context.Context, userID, id string) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	item, err := c.svc.Tasks.Get(c.listID, id).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return fromAPI(item, userID), nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, task service.Task) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	item, err := c.svc.Tasks.Insert(c.listID, toAPI(task)).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return fromAPI(item, task.UserID), nil
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id string, task service.Task) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	patch := toAPI(task)
	// Notes must be sent even when cleared.
	patch.ForceSendFields = []string{"Notes", "Title", "Status"}

	item, err := c.svc.Tasks.Patch(c.listID, id, patch).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return fromAPI(item, task.UserID), nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, userID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(c.listID, id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

func fromAPI(item *tasks.Task, userID string) service.Task {
	t := service.Task{
		ID:          item.Id,
		Title:       item.Title,
		Description: item.Notes,
		Status:      service.StatusPending,
		UserID:      userID,
	}
	if item.Status == statusCompleted {
		t.Status = service.StatusCompleted
	}
	if ts, err := time.Parse(time.RFC3339, item.Updated); err == nil {
		t.Updated = ts
	}
	return t
}

func toAPI(t service.Task) *tasks.Task {
	status := statusNeedsAction
	if t.Status == service.StatusCompleted {
		status = statusCompleted
	}
	return &tasks.Task{
		Title:  t.Title,
		Notes:  t.Description,
		Status: status,
	}
}

// wrapError classifies API errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if gErr, ok := err.(*googleapi.Error); ok {
		msg := gErr.Message
		if msg == "" {
			msg = http.StatusText(gErr.Code)
		}
		switch {
		case gErr.Code == http.StatusUnauthorized:
			return service.WrapError(service.ErrCodeUnauthorized, "token expired or revoked (run: todo login)", err)
		case gErr.Code == http.StatusForbidden:
			return service.WrapError(service.ErrCodeForbidden, msg, err)
		case gErr.Code == http.StatusNotFound:
			return service.WrapError(service.ErrCodeNotFound, "not found", err)
		case gErr.Code == http.StatusBadRequest:
			return service.WrapError(service.ErrCodeInvalid, msg, err)
		case gErr.Code >= 500:
			return service.WrapError(service.ErrCodeUnavailable, msg, err)
		}
	}

	// Check for timeout
	if strings.Contains(err.Error(), "context deadline exceeded") {
		return service.WrapError(service.ErrCodeTimeout, "request timed out", err)
	}

	return service.WrapError(service.ErrCodeUnavailable, "google tasks request failed", err)
}
