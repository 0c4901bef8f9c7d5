// Package remote is the typed HTTP client for the tracker API.
//
// It covers a fixed set of REST resources (companies, stages, stage-methods,
// interviews), owns the bearer token, and maps HTTP status codes to the
// error taxonomy in errors.go. No operation retries internally — retry
// policy belongs to the caller.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const httpTimeout = 15 * time.Second

// Client talks to one tracker API base URL.
type Client struct {
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient constructs a client with a shared HTTP client. baseURL must not
// end with a slash.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// SetToken installs (or clears, with "") the bearer token attached to every
// subsequent request. An in-flight request keeps the token it started with.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Authenticated reports whether a bearer token is currently installed.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// ─── Read operations ─────────────────────────────────────────────────────────

// FetchCompanies returns all companies visible to the current token.
func (c *Client) FetchCompanies(ctx context.Context) ([]CompanyDTO, error) {
	var out []CompanyDTO
	if err := c.do(ctx, http.MethodGet, "/companies", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchStages returns all stages.
func (c *Client) FetchStages(ctx context.Context) ([]StageDTO, error) {
	var out []StageDTO
	if err := c.do(ctx, http.MethodGet, "/stages", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchStageMethods returns all stage methods.
func (c *Client) FetchStageMethods(ctx context.Context) ([]StageMethodDTO, error) {
	var out []StageMethodDTO
	if err := c.do(ctx, http.MethodGet, "/stage-methods", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchInterviews returns interviews matching the filters.
func (c *Client) FetchInterviews(ctx context.Context, f InterviewFilters) ([]InterviewDTO, error) {
	path := "/interviews"
	if q := f.query(); len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []InterviewDTO
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ─── Write operations ────────────────────────────────────────────────────────

// CreateInterview pushes a new interview and returns the server's record,
// including its assigned ID.
func (c *Client) CreateInterview(ctx context.Context, p CreateInterviewPayload) (*InterviewDTO, error) {
	var out InterviewDTO
	if err := c.do(ctx, http.MethodPost, "/interview", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateInterview applies a partial update to an existing interview.
func (c *Client) UpdateInterview(ctx context.Context, id int64, p UpdateInterviewPayload) (*InterviewDTO, error) {
	var out InterviewDTO
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/interview/%d", id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ─── Plumbing ────────────────────────────────────────────────────────────────

// do performs one request and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    serverMessage(raw, resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecoding, err)
	}
	return nil
}

// serverMessage extracts a JSON {message} body when present, else falls back
// to the HTTP status text.
func serverMessage(raw []byte, status int) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return http.StatusText(status)
}
