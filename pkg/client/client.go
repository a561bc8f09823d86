// Package client is a Go client for the Taqdeer HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/taqdeer/taqdeer-api/internal/guidance"
	"github.com/taqdeer/taqdeer-api/internal/reference"
	"github.com/taqdeer/taqdeer-api/internal/stats"
)

const DefaultTimeout = 30 * time.Second

// TimeoutMessage is what a UI should show when ErrTimeout is returned.
const TimeoutMessage = "Request took too long to respond. Please try again."

var (
	ErrTimeout = errors.New("client: request timed out")
	ErrNetwork = errors.New("client: network error")
)

// APIError is a non-2xx reply carrying the server's error message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: %d: %s", e.StatusCode, e.Message)
}

// IsTimeout reports whether err came from the client deadline or from the
// server giving up on the model.
func IsTimeout(err error) bool {
	if errors.Is(err, ErrTimeout) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusGatewayTimeout
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type FeedbackRequest struct {
	FeedbackType string      `json:"feedbackType"`
	Comment      string      `json:"comment"`
	DuaData      interface{} `json:"duaData"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

func (c *Client) GenerateDua(ctx context.Context, query string) (*guidance.DuaContent, error) {
	var out guidance.DuaContent
	if err := c.do(ctx, http.MethodPost, "/api/dua/generate", guidance.QueryRequest{Query: query}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchRuling(ctx context.Context, query string) (*guidance.RulingContent, error) {
	var out guidance.RulingContent
	if err := c.do(ctx, http.MethodPost, "/api/ruling/search", guidance.QueryRequest{Query: query}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context) (stats.Snapshot, error) {
	var out stats.Snapshot
	err := c.do(ctx, http.MethodGet, "/api/stats", nil, &out)
	return out, err
}

func (c *Client) TrackVisitor(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/stats/visitor", nil, nil)
}

func (c *Client) TrackShare(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/stats/shared", nil, nil)
}

func (c *Client) SubmitFeedback(ctx context.Context, req FeedbackRequest) error {
	return c.do(ctx, http.MethodPost, "/api/feedback", req, nil)
}

func (c *Client) Contact(ctx context.Context, req ContactRequest) error {
	return c.do(ctx, http.MethodPost, "/api/contact", req, nil)
}

func (c *Client) Reference(ctx context.Context, source string) (*reference.Resolution, error) {
	var out reference.Resolution
	path := "/api/reference?source=" + url.QueryEscape(source)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
