// Package googletasks implements the service.Service interface using Google Tasks API.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"tasksync/internal/config"
	"tasksync/internal/logging"
	"tasksync/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for a single API call.
	APITimeout = 5 * time.Second

	// TasksScope is the OAuth scope for Google Tasks.
	TasksScope = "https://www.googleapis.com/auth/tasks"
)

// Options tune rate limiting and retries.
type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
	InitialBackoff    time.Duration
	Logger            *slog.Logger
}

// OptionsFromSettings builds Options from the loaded sync settings.
func OptionsFromSettings(s config.SyncSettings, logger *slog.Logger) Options {
	return Options{
		Timeout:           APITimeout,
		RequestsPerSecond: s.RequestsPerSecond,
		Burst:             s.Burst,
		MaxRetries:        s.MaxRetries,
		InitialBackoff:    s.InitialBackoff,
		Logger:            logger,
	}
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = APITimeout
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 500 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// Client implements service.Service using Google Tasks API.
type Client struct {
	svc     *tasks.Service
	limiter *rate.Limiter
	opts    Options
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Client, error) {
	if !cfg.HasOAuthClient() {
		return nil, fmt.Errorf("oauth_client.json not found in %s: %w", cfg.Dir, service.ErrNotLoggedIn)
	}
	if !cfg.HasToken() {
		return nil, service.ErrNotLoggedIn
	}

	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	token, err := LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, err
	}

	// Token source refreshes on demand; the credential lives only as long as this client.
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))

	return NewWithHTTPClient(ctx, httpClient, opts)
}

// NewWithHTTPClient creates a client with a custom HTTP client.
// Extra client options (e.g. option.WithEndpoint in tests) are passed through.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts Options, extra ...option.ClientOption) (*Client, error) {
	clientOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, extra...)
	svc, err := tasks.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}

	opts = opts.withDefaults()
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		svc:     svc,
		limiter: rate.NewLimiter(limit, opts.Burst),
		opts:    opts,
	}, nil
}

// DefaultList returns the user's default task list.
func (c *Client) DefaultList(ctx context.Context) (service.TaskList, error) {
	var list *tasks.TaskList
	err := c.do(ctx, "tasklists.get", func(ctx context.Context) error {
		var err error
		list, err = c.svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return service.TaskList{}, err
	}

	return service.TaskList{
		ID:        list.Id,
		Title:     list.Title,
		Updated:   list.Updated,
		IsDefault: true,
	}, nil
}

// ListLists returns all task lists in API order.
func (c *Client) ListLists(ctx context.Context) ([]service.TaskList, error) {
	def, err := c.DefaultList(ctx)
	if err != nil {
		return nil, err
	}

	var result []service.TaskList
	var pageToken string
	for {
		var resp *tasks.TaskLists
		err := c.do(ctx, "tasklists.list", func(ctx context.Context) error {
			var err error
			resp, err = c.svc.Tasklists.List().MaxResults(100).PageToken(pageToken).Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, list := range resp.Items {
			result = append(result, service.TaskList{
				ID:        list.Id,
				Title:     list.Title,
				Updated:   list.Updated,
				IsDefault: list.Id == def.ID,
			})
		}

		if resp.NextPageToken == "" {
			return result, nil
		}
		pageToken = resp.NextPageToken
	}
}

// CreateList creates a new task list.
func (c *Client) CreateList(ctx context.Context, title string) (service.TaskList, error) {
	var list *tasks.TaskList
	err := c.do(ctx, "tasklists.insert", func(ctx context.Context) error {
		var err error
		list, err = c.svc.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return service.TaskList{}, err
	}
	return service.TaskList{ID: list.Id, Title: list.Title, Updated: list.Updated}, nil
}

// DeleteList deletes a task list by ID.
func (c *Client) DeleteList(ctx context.Context, listID string) error {
	return c.do(ctx, "tasklists.delete", func(ctx context.Context) error {
		return c.svc.Tasklists.Delete(listID).Context(ctx).Do()
	})
}

// ListTasks returns every task of a list, including completed and hidden ones.
// Google Tasks API uses page tokens; all pages are fetched.
func (c *Client) ListTasks(ctx context.Context, listID string) ([]service.Task, error) {
	var result []service.Task
	var pageToken string
	for {
		var resp *tasks.Tasks
		err := c.do(ctx, "tasks.list", func(ctx context.Context) error {
			var err error
			resp, err = c.svc.Tasks.List(listID).
				MaxResults(PageSize).
				ShowCompleted(true).
				ShowHidden(true).
				ShowDeleted(false).
				PageToken(pageToken).
				Context(ctx).
				Do()
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, task := range resp.Items {
			if task.Deleted {
				continue
			}
			result = append(result, fromAPITask(task))
		}

		if resp.NextPageToken == "" {
			return result, nil
		}
		pageToken = resp.NextPageToken
	}
}

// CreateTask creates a new task in the specified list.
func (c *Client) CreateTask(ctx context.Context, listID string, payload service.TaskPayload) (service.Task, error) {
	var task *tasks.Task
	err := c.do(ctx, "tasks.insert", func(ctx context.Context) error {
		var err error
		task, err = c.svc.Tasks.Insert(listID, toAPITask(payload, false)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return service.Task{}, err
	}
	return fromAPITask(task), nil
}

// UpdateTask patches a task. Empty notes and due are cleared on the server.
func (c *Client) UpdateTask(ctx context.Context, listID, taskID string, payload service.TaskPayload) (service.Task, error) {
	var task *tasks.Task
	err := c.do(ctx, "tasks.patch", func(ctx context.Context) error {
		var err error
		task, err = c.svc.Tasks.Patch(listID, taskID, toAPITask(payload, true)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return service.Task{}, err
	}
	return fromAPITask(task), nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, listID, taskID string) error {
	return c.do(ctx, "tasks.delete", func(ctx context.Context) error {
		return c.svc.Tasks.Delete(listID, taskID).Context(ctx).Do()
	})
}

// insertOps create a resource on every successful request. A timeout or 5xx
// may come after the server stored it, so they are retried only on 429.
var insertOps = map[string]bool{
	"tasks.insert":     true,
	"tasklists.insert": true,
}

// retryable reports whether op may be sent again after err.
func retryable(op string, err error) bool {
	var apiErr *service.APIError
	isAPIErr := errors.As(err, &apiErr)
	if insertOps[op] {
		return isAPIErr && apiErr.StatusCode == http.StatusTooManyRequests
	}
	return errors.Is(err, service.ErrTimeout) || (isAPIErr && apiErr.Temporary())
}

// do runs one API call under the rate limiter, with a per-attempt timeout,
// retrying temporary failures with exponential backoff.
func (c *Client) do(ctx context.Context, op string, call func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.InitialBackoff
	b.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		callCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()

		err := wrapError(call(callCtx))
		if err == nil {
			return nil
		}

		if !retryable(op, err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}

		c.opts.Logger.Debug("retrying google tasks call", "op", op, "attempt", attempt, "error", err)
		return err
	}

	// #nosec G115 -- MaxRetries is clamped to >= 0 in withDefaults
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.opts.MaxRetries)), ctx)
	return backoff.Retry(operation, policy)
}

func fromAPITask(t *tasks.Task) service.Task {
	return service.Task{
		ID:      t.Id,
		Title:   t.Title,
		Notes:   t.Notes,
		Status:  t.Status,
		Due:     t.Due,
		Updated: t.Updated,
		Hidden:  t.Hidden,
	}
}

func toAPITask(p service.TaskPayload, patch bool) *tasks.Task {
	t := &tasks.Task{
		Title:  p.Title,
		Notes:  p.Notes,
		Status: p.Status,
		Due:    p.Due,
	}
	if patch {
		// A patch carries the whole mapped task, so absent fields must be cleared.
		t.ForceSendFields = []string{"Title"}
		if p.Notes == "" {
			t.NullFields = append(t.NullFields, "Notes")
		}
		if p.Due == "" {
			t.NullFields = append(t.NullFields, "Due")
		}
	}
	return t
}

// wrapError converts API errors into service errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return service.ErrTimeout
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		body := gErr.Message
		if body == "" {
			body = gErr.Body
		}
		return &service.APIError{StatusCode: gErr.Code, Body: body}
	}

	return err
}
