package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// maxErrorBodySize limits how much of an error response body is retained.
const maxErrorBodySize = 4 * 1024

// ClientConfig configures the Unity Catalog tag-assignments client.
type ClientConfig struct {
	// WorkspaceURL is the workspace host, with or without scheme.
	WorkspaceURL string

	// Token is the bearer token used for every request.
	Token string

	// Timeout for individual requests (default: 30s).
	Timeout time.Duration

	// RateLimit is the sustained requests-per-second budget (default: 10).
	RateLimit float64

	// RateBurst is the maximum request burst size (default: 5).
	RateBurst int

	// Transport allows injecting a custom HTTP transport (for tests/stubs).
	Transport http.RoundTripper
}

// DefaultClientConfig returns a client config with sensible defaults.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Timeout:   30 * time.Second,
		RateLimit: 10.0,
		RateBurst: 5,
	}
}

// Client talks to the Unity Catalog tag-assignments API. Calls are rate
// limited and bounded by a per-request timeout. The client never retries:
// the batch pass is idempotent and re-running it is the recovery path.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a tag-assignments client for the given workspace.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		cfg = DefaultClientConfig()
	}
	if cfg.WorkspaceURL == "" {
		return nil, fmt.Errorf("workspace URL is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("token is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 10.0
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = 5
	}

	base := cfg.WorkspaceURL
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	base = strings.TrimSuffix(base, "/") + "/api/2.0/unity-catalog/tag-assignments"

	return &Client{
		baseURL: base,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	}, nil
}

// securableURL builds the tag-assignments URL for a securable.
//
// Columns are addressed through their owning table: the dotted name splits
// into the table path plus the trailing column segment. That rule belongs to
// this adapter; callers always pass the full dotted name.
func (c *Client) securableURL(sec Securable) (string, error) {
	if sec.Name == "" {
		return "", fmt.Errorf("securable name is required")
	}
	if sec.Type == SecurableColumn {
		idx := strings.LastIndex(sec.Name, ".")
		if idx <= 0 || idx == len(sec.Name)-1 {
			return "", fmt.Errorf("column name %q is not table-qualified", sec.Name)
		}
		table, column := sec.Name[:idx], sec.Name[idx+1:]
		return fmt.Sprintf("%s/TABLE/%s/COLUMN/%s",
			c.baseURL, url.PathEscape(table), url.PathEscape(column)), nil
	}
	return fmt.Sprintf("%s/%s/%s",
		c.baseURL, sec.Type, url.PathEscape(sec.Name)), nil
}

// tagAssignment is the wire representation of a single tag.
type tagAssignment struct {
	TagKey   string `json:"tag_key"`
	TagValue string `json:"tag_value,omitempty"`
}

// listResponse is the wire representation of a tag listing.
type listResponse struct {
	TagAssignments []tagAssignment `json:"tag_assignments"`
}

// ListTags returns the securable's current tag keys and values. Any
// non-success status, including not-found, is returned as an *APIError so
// callers can distinguish a missing securable from one with zero tags.
func (c *Client) ListTags(ctx context.Context, sec Securable) (map[string]string, error) {
	u, err := c.securableURL(sec)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodGet, u, nil, nil)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode tag listing for %s: %w", sec, err)
	}

	tags := make(map[string]string, len(resp.TagAssignments))
	for _, t := range resp.TagAssignments {
		tags[t.TagKey] = t.TagValue
	}
	return tags, nil
}

// CreateTag applies a tag to the securable. A conflict response means the
// tag already exists, which is success.
func (c *Client) CreateTag(ctx context.Context, sec Securable, key, value string) error {
	if key == "" {
		return fmt.Errorf("tag key is required")
	}
	if len(key) > MaxTagKeyLen {
		return fmt.Errorf("tag key %q exceeds %d characters", key[:32]+"...", MaxTagKeyLen)
	}

	u, err := c.securableURL(sec)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(tagAssignment{TagKey: key, TagValue: value})
	if err != nil {
		return fmt.Errorf("encode tag assignment: %w", err)
	}

	_, err = c.do(ctx, http.MethodPost, u, bytes.NewReader(payload), []int{http.StatusConflict})
	return err
}

// DeleteTag removes a tag from the securable. A not-found response means
// the tag is already gone, which is success.
func (c *Client) DeleteTag(ctx context.Context, sec Securable, key string) error {
	if key == "" {
		return fmt.Errorf("tag key is required")
	}

	u, err := c.securableURL(sec)
	if err != nil {
		return err
	}
	u += "/" + url.PathEscape(key)

	_, err = c.do(ctx, http.MethodDelete, u, nil, []int{http.StatusNotFound})
	return err
}

// do executes a single request after waiting for the rate limiter. Statuses
// in tolerated are treated as success with a nil body.
func (c *Client) do(ctx context.Context, method, u string, body io.Reader, tolerated []int) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}
		return data, nil
	}

	for _, status := range tolerated {
		if resp.StatusCode == status {
			return nil, nil
		}
	}

	errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	return nil, &APIError{
		StatusCode: resp.StatusCode,
		Method:     method,
		URL:        u,
		Body:       strings.TrimSpace(string(errBody)),
	}
}
