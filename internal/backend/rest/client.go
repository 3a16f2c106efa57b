// Package rest implements service.Service against the task REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"todo/internal/logging"
	"todo/internal/service"
)

const (
	// TasksPath is appended to the base URL for every task endpoint.
	TasksPath = "/tasks"

	// HeaderTotalCount carries the number of tasks matching a listing.
	HeaderTotalCount = "X-Total-Count"

	// HeaderRequestID correlates client and server logs.
	HeaderRequestID = "X-Request-ID"

	userAgent = "todo-client"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. "http://localhost:8080".
	BaseURL string

	// Timeout bounds requests whose context has no deadline. Zero disables it.
	Timeout time.Duration

	// TokenSource, when set, supplies the Authorization header.
	TokenSource oauth2.TokenSource

	// HTTPClient overrides the fasthttp client (tests dial an in-memory listener).
	HTTPClient *fasthttp.Client

	Logger *zap.Logger
}

// Client implements service.Service over HTTP.
type Client struct {
	http     *fasthttp.Client
	endpoint string
	timeout  time.Duration
	tokens   oauth2.TokenSource
	schemas  *schemas
	log      *zap.Logger
}

var _ service.Service = (*Client)(nil)

// New creates a REST client.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url: %q", opts.BaseURL)
	}

	sc, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                userAgent,
			MaxIdleConnDuration: 30 * time.Second,
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		http:     httpClient,
		endpoint: base + TasksPath,
		timeout:  opts.Timeout,
		tokens:   opts.TokenSource,
		schemas:  sc,
		log:      logger.Named("rest"),
	}, nil
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context, q service.ListQuery) (service.TaskPage, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(c.endpoint)
	args := req.URI().QueryArgs()
	args.Add("user_id", q.UserID)
	// An empty status means no filter and is sent as "status=".
	args.Add("status", string(q.Status))
	args.Add("page", strconv.Itoa(q.Page))
	args.Add("limit", strconv.Itoa(q.Limit))

	if err := c.do(ctx, req, resp); err != nil {
		return service.TaskPage{}, err
	}

	var payload []taskPayload
	if err := decodeValidated(c.schemas.list, resp.Body(), &payload); err != nil {
		return service.TaskPage{}, err
	}

	page := service.TaskPage{Tasks: make([]service.Task, 0, len(payload))}
	for _, p := range payload {
		page.Tasks = append(page.Tasks, p.toTask())
	}
	page.Total, page.TotalKnown = parseTotal(resp.Header.Peek(HeaderTotalCount))
	return page, nil
}

// GetTask implements service.Service.
func (c *Client) GetTask(ctx context.Context, userID, id string) (service.Task, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(c.taskURL(id))
	req.URI().QueryArgs().Add("user_id", userID)

	if err := c.do(ctx, req, resp); err != nil {
		return service.Task{}, err
	}
	return c.decodeTask(resp.Body(), id)
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, task service.Task) (service.Task, error) {
	task.ID = ""
	return c.send(ctx, fasthttp.MethodPost, c.endpoint, task, "")
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id string, task service.Task) (service.Task, error) {
	task.ID = id
	return c.send(ctx, fasthttp.MethodPut, c.taskURL(id), task, id)
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, userID, id string) error {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(fasthttp.MethodDelete)
	req.SetRequestURI(c.taskURL(id))
	req.URI().QueryArgs().Add("user_id", userID)

	return c.do(ctx, req, resp)
}

func (c *Client) send(ctx context.Context, method, uri string, task service.Task, id string) (service.Task, error) {
	body, err := json.Marshal(toPayload(task))
	if err != nil {
		return service.Task{}, fmt.Errorf("encode task: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := c.do(ctx, req, resp); err != nil {
		return service.Task{}, err
	}

	// Some backends answer writes with an empty body.
	if len(bytes.TrimSpace(resp.Body())) == 0 {
		task.ID = id
		return task, nil
	}
	return c.decodeTask(resp.Body(), id)
}

// decodeTask decodes a single task. A non-empty pathID wins over the body,
// since some backends echo the request payload without its id.
func (c *Client) decodeTask(body []byte, pathID string) (service.Task, error) {
	var p taskPayload
	if err := decodeValidated(c.schemas.task, body, &p); err != nil {
		return service.Task{}, err
	}
	t := p.toTask()
	if pathID != "" {
		t.ID = pathID
	}
	return t, nil
}

// do sends req and classifies the outcome. Response bodies of failed
// requests are turned into *service.Error.
func (c *Client) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if err := ctx.Err(); err != nil {
		return transportError(err)
	}

	ctx = logging.EnsureRequestID(ctx)
	reqID := logging.RequestID(ctx)
	req.Header.Set(HeaderRequestID, reqID)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return service.WrapError(service.ErrCodeUnauthorized, "obtain access token", err)
		}
		req.Header.Set(fasthttp.HeaderAuthorization, tok.Type()+" "+tok.AccessToken)
	}

	log := c.log.With(
		zap.String("request_id", reqID),
		zap.String("method", string(req.Header.Method())),
		zap.String("uri", req.URI().String()),
	)

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else if c.timeout > 0 {
		err = c.http.DoTimeout(req, resp, c.timeout)
	} else {
		err = c.http.Do(req, resp)
	}
	if err != nil {
		log.Debug("request failed", zap.Error(err))
		return transportError(err)
	}

	log.Debug("request done",
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)
	if resp.StatusCode() >= fasthttp.StatusBadRequest {
		return statusError(resp)
	}
	return nil
}

func (c *Client) taskURL(id string) string {
	return c.endpoint + "/" + url.PathEscape(id)
}

// parseTotal reads the total-count header. Missing or invalid values are
// reported as unknown rather than guessed.
func parseTotal(raw []byte) (int, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
