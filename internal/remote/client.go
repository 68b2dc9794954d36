package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds one call to the conversion endpoint.
const DefaultTimeout = 30 * time.Second

// Client calls a convert-latex endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	headers  http.Header
}

var _ Converter = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithAPIKey sends key as both the apikey header and a bearer token, as
// hosted function gateways expect.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		if key == "" {
			return
		}
		c.headers.Set("apikey", key)
		c.headers.Set("Authorization", "Bearer "+key)
	}
}

// NewClient creates a Client posting to endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: DefaultTimeout},
		headers:  make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert posts latex and returns the converted HTML.
func (c *Client) Convert(ctx context.Context, latex string, opts Options) (string, error) {
	body, err := json.Marshal(Request{Latex: latex, Options: opts})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	req.Header = c.headers.Clone()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxRequestSize*4)).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: status %d: %v", ErrBadResponse, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !out.Success {
		msg := out.Error
		if msg == "" {
			msg = resp.Status
		}
		if out.Details != "" {
			msg += ": " + out.Details
		}
		return "", fmt.Errorf("%w: %s", ErrConversionFailed, msg)
	}
	return out.HTML, nil
}
