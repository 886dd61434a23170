// Package arr provides the shared HTTP plumbing for Radarr-style and
// Sonarr-style automation service clients.
package arr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultTimeout = 30 * time.Second
	//nolint:gosec // header name constant, not a credential
	apiKeyHeader = "X-Api-Key"
)

// Client provides HTTP communication with an automation service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zerolog.Logger
}

// ClientConfig contains configuration for creating a new client.
type ClientConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
	Logger  *zerolog.Logger
}

// NewClient creates a new automation service HTTP client.
func NewClient(name string, cfg ClientConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%s URL is required", name)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}

	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	logger := cfg.Logger.With().
		Str("component", name+"-client").
		Str("url", strings.TrimSuffix(cfg.URL, "/")).
		Logger()

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     &logger,
	}, nil
}

// GetJSON executes a GET request and decodes the JSON response.
func (c *Client) GetJSON(ctx context.Context, op, path string, result interface{}) error {
	return c.doJSON(ctx, op, http.MethodGet, path, nil, result)
}

// PostJSON executes a POST request with a JSON body.
func (c *Client) PostJSON(ctx context.Context, op, path string, body, result interface{}) error {
	return c.doJSON(ctx, op, http.MethodPost, path, body, result)
}

// PutJSON executes a PUT request with a JSON body.
func (c *Client) PutJSON(ctx context.Context, op, path string, body, result interface{}) error {
	return c.doJSON(ctx, op, http.MethodPut, path, body, result)
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode body: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}

	req.Header.Set(apiKeyHeader, c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("executing request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network-level failures (timeout, refused, DNS) are retried
		// next pass rather than surfaced as status changes.
		return &Error{Op: op, Kind: ErrTransient, Err: err}
	}
	defer resp.Body.Close()

	if err := classifyStatus(op, resp); err != nil {
		return err
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%s: failed to decode response: %w", op, err)
		}
	}

	return nil
}

func classifyStatus(op string, resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &Error{Op: op, Kind: ErrAuth, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode == http.StatusNotFound:
		return &Error{Op: op, Kind: ErrNotFound, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &Error{Op: op, Kind: ErrTransient, Err: fmt.Errorf("status %d", resp.StatusCode)}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, string(body))
	}
}
