// Package kv is a client for a REST key-value service speaking the
// Upstash/Vercel KV protocol.
package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 8 << 20

// Client talks to a REST key-value endpoint.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the endpoint at baseURL authenticated with token.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type getResponse struct {
	Result *string `json:"result"`
	Error  string  `json:"error,omitempty"`
}

// Get returns the string stored under key. The boolean is false when the
// key does not exist.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("get", key), nil)
	if err != nil {
		return "", false, fmt.Errorf("build get request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}

	var resp getResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false, fmt.Errorf("decode get %q: %w", key, err)
	}
	if resp.Error != "" {
		return "", false, fmt.Errorf("get %q: %s", key, resp.Error)
	}
	if resp.Result == nil {
		return "", false, nil
	}
	return *resp.Result, true, nil
}

// Set stores value under key.
func (c *Client) Set(ctx context.Context, key, value string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("set", key), strings.NewReader(value))
	if err != nil {
		return fmt.Errorf("build set request: %w", err)
	}

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Ping checks that the endpoint answers an authenticated request.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.Get(ctx, "__ping")
	return err
}

func (c *Client) endpoint(op, key string) string {
	return c.baseURL + "/" + op + "/" + url.PathEscape(key)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
