package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"blog_admin/internal/domain"
)

const maxErrorBody = 256

// Config holds REST client configuration.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	UserAgent      string
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Transport performs HTTP round trips against the record store. It is shared
// by the typed collection clients.
type Transport struct {
	httpClient     *http.Client
	baseURL        string
	userAgent      string
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

// NewTransport creates a transport for the store at cfg.BaseURL.
func NewTransport(cfg Config, logger *slog.Logger) *Transport {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Transport{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:      cfg.UserAgent,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("component", "remote"),
	}
}

// Collection is a typed client for one collection of the store.
type Collection[T any] struct {
	t    *Transport
	path string
}

// NewCollection returns a client for the collection at path (e.g. "posts").
func NewCollection[T any](t *Transport, path string) *Collection[T] {
	return &Collection[T]{t: t, path: strings.Trim(path, "/")}
}

// Path returns the collection name.
func (c *Collection[T]) Path() string {
	return c.path
}

// List fetches every record matching q.
func (c *Collection[T]) List(ctx context.Context, q Query) ([]T, error) {
	items, _, err := c.ListPage(ctx, q)
	return items, err
}

// ListPage fetches records and the total count reported by the store. When
// the store does not report a total, the number of returned items is used.
func (c *Collection[T]) ListPage(ctx context.Context, q Query) ([]T, int, error) {
	u := c.t.url(c.path, "")
	if enc := q.Values().Encode(); enc != "" {
		u += "?" + enc
	}

	var items []T
	header, err := c.t.get(ctx, u, &items)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", c.path, err)
	}
	if items == nil {
		items = []T{}
	}

	total := len(items)
	if raw := header.Get("X-Total-Count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			total = n
		}
	}
	return items, total, nil
}

// Get fetches one record by id.
func (c *Collection[T]) Get(ctx context.Context, id domain.ID) (T, error) {
	var rec T
	if _, err := c.t.get(ctx, c.t.url(c.path, id), &rec); err != nil {
		var zero T
		return zero, fmt.Errorf("get %s/%s: %w", c.path, id, err)
	}
	return rec, nil
}

// Create posts a new record and returns the stored version.
func (c *Collection[T]) Create(ctx context.Context, rec T) (T, error) {
	var out T
	if err := c.t.send(ctx, http.MethodPost, c.t.url(c.path, ""), rec, &out); err != nil {
		var zero T
		return zero, fmt.Errorf("create %s: %w", c.path, err)
	}
	return out, nil
}

// Patch applies a partial update and returns the stored version.
func (c *Collection[T]) Patch(ctx context.Context, id domain.ID, patch domain.Patch) (T, error) {
	var out T
	if err := c.t.send(ctx, http.MethodPatch, c.t.url(c.path, id), patch, &out); err != nil {
		var zero T
		return zero, fmt.Errorf("patch %s/%s: %w", c.path, id, err)
	}
	return out, nil
}

// Delete removes a record.
func (c *Collection[T]) Delete(ctx context.Context, id domain.ID) error {
	if err := c.t.send(ctx, http.MethodDelete, c.t.url(c.path, id), nil, nil); err != nil {
		return fmt.Errorf("delete %s/%s: %w", c.path, id, err)
	}
	return nil
}

func (t *Transport) url(path string, id domain.ID) string {
	u := t.baseURL + "/" + path
	if id != "" {
		u += "/" + url.PathEscape(id.String())
	}
	return u
}

// get retries on failure when more than one attempt is configured.
func (t *Transport) get(ctx context.Context, u string, out any) (http.Header, error) {
	var header http.Header
	var err error

	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		header, err = t.do(ctx, http.MethodGet, u, nil, out)
		if err == nil {
			return header, nil
		}

		if attempt == t.maxAttempts || !retryable(err) {
			break
		}

		backoff := t.calculateBackoff(attempt)
		t.logger.Warn("request failed, retrying",
			"url", u,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", domain.ErrNetwork, ctx.Err())
		case <-time.After(backoff):
		}
	}

	if t.maxAttempts > 1 {
		return nil, fmt.Errorf("after %d attempts: %w", t.maxAttempts, err)
	}
	return nil, err
}

func (t *Transport) send(ctx context.Context, method, u string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
	}
	_, err := t.do(ctx, method, u, payload, out)
	return err
}

func (t *Transport) do(ctx context.Context, method, u string, payload []byte, out any) (http.Header, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.RemoteError{
			Method: method,
			URL:    u,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(excerpt)),
		}
	}

	t.logger.Debug("request completed", "method", method, "url", u, "status", resp.StatusCode)

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.Header, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return resp.Header, nil
}

func (t *Transport) calculateBackoff(attempt int) time.Duration {
	backoff := t.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > t.maxBackoff {
		backoff = t.maxBackoff
	}
	return backoff
}

// retryable reports whether a failed read may be repeated: transport errors
// and 5xx answers are, client errors are not.
func retryable(err error) bool {
	var remoteErr *domain.RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Status >= 500
	}
	return errors.Is(err, domain.ErrNetwork)
}
