// Package api provides a client for the remote budget service's HTTP+JSON API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/theirongolddev/budgie/internal/log"
	"github.com/theirongolddev/budgie/internal/model"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
	userAgent      = "github.com/theirongolddev/budgie/1.0"
)

var (
	// ErrUnauthorized indicates the service rejected the credentials.
	ErrUnauthorized = errors.New("api: unauthorized")
	// ErrNotFound indicates the user (or route) does not exist.
	ErrNotFound = errors.New("api: not found")
	// ErrRejected indicates any other 4xx response.
	ErrRejected = errors.New("api: request rejected")
	// ErrServer indicates a 5xx response.
	ErrServer = errors.New("api: server error")
)

// StatusError carries the HTTP status and the service's message field.
type StatusError struct {
	Status  int
	Message string
	kind    error
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (status %d): %s", e.kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s (status %d)", e.kind, e.Status)
}

// Unwrap lets errors.Is match the sentinel kind.
func (e *StatusError) Unwrap() error { return e.kind }

// Client talks to the budget service.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.log = l.WithComponent(log.ComponentAPI) }
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: invalid base URL %q", baseURL)
	}

	c := &Client{
		baseURL: baseURL,
		timeout: defaultTimeout,
		http:    &http.Client{},
		log:     log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string { return c.baseURL }

// Authenticate posts credentials to the endpoint selected by mode.
// A response without a user id is not an error; the caller decides.
func (c *Client) Authenticate(ctx context.Context, mode model.Mode, creds model.Credentials) (model.AuthResult, error) {
	var res model.AuthResult
	if err := c.do(ctx, http.MethodPost, mode.Endpoint(), creds, &res); err != nil {
		return model.AuthResult{}, err
	}
	return res, nil
}

// GetUser returns the user's profile.
func (c *Client) GetUser(ctx context.Context, id model.UserID) (model.Profile, error) {
	var p model.Profile
	if err := c.do(ctx, http.MethodGet, "/get_user/"+url.PathEscape(id.String()), nil, &p); err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// GetExpenditures returns the user's expenditures in the service's order.
func (c *Client) GetExpenditures(ctx context.Context, id model.UserID) ([]model.Expenditure, error) {
	var entries []model.Expenditure
	if err := c.do(ctx, http.MethodGet, "/get_expenditures/"+url.PathEscape(id.String()), nil, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.Expenditure{}
	}
	return entries, nil
}

// FetchLedger fetches the profile and expenditures concurrently.
// Either failure fails the whole fetch.
func (c *Client) FetchLedger(ctx context.Context, id model.UserID) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		entries, err := c.GetExpenditures(gctx, id)
		if err != nil {
			return fmt.Errorf("fetching expenditures: %w", err)
		}
		snap.Expenditures = entries
		return nil
	})
	g.Go(func() error {
		p, err := c.GetUser(gctx, id)
		if err != nil {
			return fmt.Errorf("fetching user: %w", err)
		}
		snap.Profile = p
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// SetBudget replaces the user's budget. Returns the service message.
func (c *Client) SetBudget(ctx context.Context, id model.UserID, budget float64) (string, error) {
	var res messageResponse
	err := c.do(ctx, http.MethodPost, "/set_budget", setBudgetRequest{UserID: id, Budget: budget}, &res)
	return res.Message, err
}

// AddExpenditure records a new entry. Returns the service message.
func (c *Client) AddExpenditure(ctx context.Context, id model.UserID, e NewExpenditure) (string, error) {
	body := addExpenditureRequest{
		UserID: id,
		Amount: e.Amount.InexactFloat64(),
		Date:   e.Date,
		Note:   e.Note,
	}
	var res messageResponse
	err := c.do(ctx, http.MethodPost, "/add_expenditure", body, &res)
	return res.Message, err
}

// do performs a JSON request and decodes a 2xx body into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("api: creating request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "request failed",
			log.FieldRequestID, reqID, log.FieldMethod, method, log.FieldPath, path, log.FieldError, err)
		return fmt.Errorf("api: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.DebugContext(ctx, "request",
		log.FieldRequestID, reqID,
		log.FieldMethod, method,
		log.FieldPath, path,
		log.FieldStatus, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("api: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: parsing %s response: %w", path, err)
	}
	return nil
}

func statusError(status int, body []byte) error {
	var msg messageResponse
	_ = json.Unmarshal(body, &msg)

	kind := ErrRejected
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = ErrUnauthorized
	case status == http.StatusNotFound:
		kind = ErrNotFound
	case status >= 500:
		kind = ErrServer
	}
	return &StatusError{Status: status, Message: msg.Message, kind: kind}
}

// Message extracts the service's message from err, if any.
func Message(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}
