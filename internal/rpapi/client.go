// Package rpapi is a small REST client for the report server's project API:
// paged shared-widget and filter listings, dashboards, and adding a shared
// widget to a dashboard.
package rpapi

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
	"strings"
	"time"

	"github.com/google/uuid"

	rlog "github.com/runger/rpick/internal/log"
	"github.com/runger/rpick/internal/redact"
)

// DefaultTimeout bounds a single request, connection included.
const DefaultTimeout = 10 * time.Second

// Query keys used by the server's paging API.
const (
	PageKey = "page.page"
	SizeKey = "page.size"
	SortKey = "page.sort"
)

// maxErrorBody is how much of an error response body is kept for messages.
const maxErrorBody = 512

var (
	// ErrUnauthorized is wrapped by StatusError for 401 and 403 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is wrapped by StatusError for 404 responses.
	ErrNotFound = errors.New("not found")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string // Trimmed and redacted
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Code, http.StatusText(e.Code))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Unwrap maps well-known status codes to sentinel errors.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// Options configures a Client.
type Options struct {
	Endpoint   string // Server root, e.g. https://reports.example.com
	Project    string
	Token      string // Bearer token; empty sends no Authorization header
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to one project on one server.
type Client struct {
	base    *url.URL
	project string
	token   string
	http    *http.Client
	logger  *slog.Logger
	redact  *redact.Redactor
}

// NewClient validates opts and returns a Client.
func NewClient(opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("rpapi: endpoint is required")
	}
	if opts.Project == "" {
		return nil, errors.New("rpapi: project is required")
	}

	base, err := url.Parse(strings.TrimRight(opts.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("rpapi: parse endpoint: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("rpapi: endpoint must be http or https (got %q)", opts.Endpoint)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = rlog.Discard()
	}

	return &Client{
		base:    base,
		project: opts.Project,
		token:   opts.Token,
		http:    hc,
		logger:  logger,
		redact:  redact.New(opts.Token),
	}, nil
}

// Project returns the project name the client is bound to.
func (c *Client) Project() string {
	return c.project
}

// projectURL builds {endpoint}/api/v1/{project}/{path}?{query}.
func (c *Client) projectURL(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/api/v1/" + url.PathEscape(c.project) + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends a request and decodes a JSON response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("rpapi: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("rpapi: build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rpapi: %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method: method,
			URL:    target,
			Code:   resp.StatusCode,
			Body:   c.redact.Redact(strings.TrimSpace(string(snippet))),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("rpapi: decode %s response: %w", target, err)
	}
	return nil
}
