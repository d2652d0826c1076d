// Package syncclient talks to a taskdeck sync server over HTTP.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/runoshun/taskdeck/internal/domain"
)

// Ensure Client implements domain.SyncRemote.
var _ domain.SyncRemote = (*Client)(nil)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 4 << 10

// Client implements the client side of the sync wire protocol.
// Fields are ordered to minimize memory padding.
type Client struct {
	http     *http.Client
	baseURL  string
	password string
}

// Health is the unauthenticated server banner.
type Health struct {
	Status  string `json:"status"`
	Server  string `json:"server"`
	Version string `json:"version"`
}

// putRequest is the body of PUT /api/data.
type putRequest struct {
	Tasks          []*domain.Task  `json:"tasks"`
	Projects       []string        `json:"projects"`
	DeletedTaskIDs []int64         `json:"deletedTaskIds,omitempty"`
	Settings       domain.Settings `json:"settings"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates a client for cfg. A zero timeout means no timeout.
func New(cfg domain.SyncConfig, timeout time.Duration) *Client {
	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = timeout
	return NewWithHTTPClient(cfg, hc)
}

// NewWithHTTPClient creates a client using hc.
func NewWithHTTPClient(cfg domain.SyncConfig, hc *http.Client) *Client {
	return &Client{
		http:     hc,
		baseURL:  strings.TrimRight(cfg.ServerURL, "/"),
		password: cfg.Password,
	}
}

// Health fetches GET /api/health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// AuthCheck verifies the password with GET /api/auth-check.
func (c *Client) AuthCheck(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/auth-check", nil, nil)
}

// UpdatedAt fetches only the server's last write stamp.
func (c *Client) UpdatedAt(ctx context.Context) (string, error) {
	var resp struct {
		UpdatedAt string `json:"updatedAt"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/data/updated-at", nil, &resp); err != nil {
		return "", err
	}
	return resp.UpdatedAt, nil
}

// Fetch downloads the full snapshot.
func (c *Client) Fetch(ctx context.Context) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := c.do(ctx, http.MethodGet, "/api/data", nil, &snap); err != nil {
		return nil, err
	}
	snap.Sanitize()
	return &snap, nil
}

// Put replaces the server's data with snap and returns what was saved.
func (c *Client) Put(ctx context.Context, snap *domain.Snapshot) (*domain.Snapshot, error) {
	body := putRequest{
		Tasks:          snap.Tasks,
		Projects:       snap.Projects,
		Settings:       snap.Settings,
		DeletedTaskIDs: snap.DeletedTaskIDs,
	}
	if body.Tasks == nil {
		body.Tasks = []*domain.Task{}
	}
	if body.Projects == nil {
		body.Projects = []string{}
	}

	var saved domain.Snapshot
	if err := c.do(ctx, http.MethodPut, "/api/data", body, &saved); err != nil {
		return nil, err
	}
	saved.Sanitize()
	return &saved, nil
}

// do performs a request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.baseURL == "" {
		return domain.ErrSyncNotConfigured
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.password != "" {
		req.Header.Set("Authorization", "Bearer "+c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError maps a non-200 response to an error.
func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := strings.TrimSpace(string(data))
	var er errorResponse
	if json.Unmarshal(data, &er) == nil && er.Error != "" {
		msg = er.Error
	}

	var base error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		base = domain.ErrUnauthorized
	case http.StatusForbidden:
		base = domain.ErrForbidden
	case http.StatusBadRequest:
		base = domain.ErrInvalidSnapshot
	default:
		base = errors.New(http.StatusText(resp.StatusCode))
	}
	if msg == "" {
		return fmt.Errorf("server returned %d: %w", resp.StatusCode, base)
	}
	return fmt.Errorf("server returned %d: %w: %s", resp.StatusCode, base, msg)
}
