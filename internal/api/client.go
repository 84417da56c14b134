// Package api is the HTTP client of the Tarot Luna backend.
package api

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

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/arcanaland/tarotluna/internal/common"
)

const (
	initDataHeader  = "X-Telegram-Init-Data"
	requestIDHeader = "X-Request-ID"
	userAgent       = "TarotLuna-CLI"
	defaultTimeout  = 60 * time.Second
	maxErrorBody    = 1 << 16
)

// BackendError is an error reported by the backend itself
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("server error (HTTP %d): %s", e.Status, e.Message)
}

// Unwrap lets errors.Is match common.ErrBackend
func (e *BackendError) Unwrap() error {
	return common.ErrBackend
}

// Client talks to the backend. Every request carries the Telegram launch
// data as identity token.
type Client struct {
	baseURL  string
	initData string
	http     *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithTimeout sets the request timeout
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.http.Timeout = d
		}
	}
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL, initData string, options ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		initData: initData,
		http:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

type errorBody struct {
	Error string `json:"error"`
}

// do sends a JSON request and decodes the JSON response into out
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: backend URL is not configured", common.ErrNetwork)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(initDataHeader, c.initData)
	req.Header.Set(requestIDHeader, requestID)

	logger := log.WithFields(log.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		logger.WithError(err).Warn("Backend request failed")
		return fmt.Errorf("%w: %s %s: %w", common.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	logger.WithFields(log.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("Backend request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var eb errorBody
		if err := json.Unmarshal(data, &eb); err != nil || eb.Error == "" {
			eb.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return &BackendError{Status: resp.StatusCode, Message: eb.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &BackendError{Status: resp.StatusCode, Message: fmt.Sprintf("invalid response: %v", err)}
	}
	return nil
}
