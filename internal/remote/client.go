// Package remote is the client side of the profile sync endpoint.
package remote

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

	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/domain"
)

const syncPath = "/api/sync"

// ErrNotConfigured is returned when the gateway reports that its backing
// store is not configured.
var ErrNotConfigured = errors.New("remote sync not configured")

// GatewayError is a non-success answer from the gateway.
type GatewayError struct {
	Status int
	Code   string
}

func (e *GatewayError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("sync gateway returned status %d", e.Status)
	}
	return fmt.Sprintf("sync gateway returned status %d: %s", e.Status, e.Code)
}

// Client calls the sync gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the gateway at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchProfiles returns the profiles held by the shared record.
func (c *Client) FetchProfiles(ctx context.Context) ([]domain.StudentProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+syncPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch profiles: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		gwErr := readGatewayError(resp)
		if gwErr.Code == "DATABASE_NOT_CONFIGURED" {
			return nil, fmt.Errorf("%w: %v", ErrNotConfigured, gwErr)
		}
		return nil, gwErr
	}

	var profiles []domain.StudentProfile
	if err := json.NewDecoder(resp.Body).Decode(&profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return profiles, nil
}

// PushProfile upserts one profile into the shared record.
func (c *Client) PushProfile(ctx context.Context, profile domain.StudentProfile) error {
	body, err := json.Marshal(map[string]domain.StudentProfile{"profile": profile})
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+syncPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push profile %q: %w", profile.ID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return readGatewayError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func readGatewayError(resp *http.Response) *GatewayError {
	gwErr := &GatewayError{Status: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		gwErr.Code = body.Error
	}
	return gwErr
}
