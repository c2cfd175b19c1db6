// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package fixer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorKind categorizes client errors for handling.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindTransport: network unreachable, DNS failure, refused connection,
	// or (for health checks) a non-2xx status.
	KindTransport
	// KindTimeout: the bounded client timeout or the caller's deadline expired.
	KindTimeout
	// KindService: the service answered a chat request with a non-2xx status.
	KindService
	// KindInvalidResponse: 2xx with a body that could not be decoded.
	KindInvalidResponse
	// KindInvalidRequest: the request was rejected before any network call.
	KindInvalidRequest
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindService:
		return "service"
	case KindInvalidResponse:
		return "invalid_response"
	case KindInvalidRequest:
		return "invalid_request"
	default:
		return "unknown"
	}
}

// ClientError represents an error from the correction service client.
type ClientError struct {
	Kind    ErrorKind
	Message string

	// StatusCode is the HTTP status for non-2xx answers, 0 otherwise.
	StatusCode int

	// Detail is the server-provided human-readable error text, if any.
	Detail string

	Cause error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for easy checking.
var (
	ErrEmptyMessage = &ClientError{Kind: KindInvalidRequest, Message: "message is empty"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the client.
type ClientConfig struct {
	// BaseURL is the service base URL (default: http://127.0.0.1:8000)
	BaseURL string

	// HealthTimeout bounds each health check (default: 5s)
	HealthTimeout time.Duration

	// ChatTimeout bounds each chat request (default: 30s)
	ChatTimeout time.Duration

	// ShowHints asks the service to return Konglish hints with replies
	ShowHints bool
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       "http://127.0.0.1:8000",
		HealthTimeout: 5 * time.Second,
		ChatTimeout:   30 * time.Second,
	}
}

// maxBodySize caps how much of any response body is read.
const maxBodySize = 1 << 20

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the correction service.
//
// The Client is stateless between calls and safe for concurrent use.
type Client struct {
	config       *ClientConfig
	healthClient *http.Client
	chatClient   *http.Client
	logger       *zap.Logger
}

// NewClient creates a client for baseURL with default timeouts.
func NewClient(baseURL string) *Client {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	return NewClientWithConfig(cfg)
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.HealthTimeout <= 0 {
		config.HealthTimeout = defaults.HealthTimeout
	}
	if config.ChatTimeout <= 0 {
		config.ChatTimeout = defaults.ChatTimeout
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config:       config,
		healthClient: &http.Client{Timeout: config.HealthTimeout},
		chatClient:   &http.Client{Timeout: config.ChatTimeout},
		logger:       zap.NewNop(),
	}
}

// WithLogger sets the logger used for request diagnostics.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger != nil {
		c.logger = logger.Named("fixer")
	}
	return c
}

// BaseURL returns the configured service URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Health checks whether the service is reachable and reports readiness.
// Any failure to obtain a 2xx answer is a transport-kind error. A 2xx answer
// never fails: a missing or malformed ai_ready flag reads as not ready.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.do(ctx, c.healthClient, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return nil, &ClientError{
			Kind:       KindTransport,
			Message:    "health check failed: HTTP " + fmt.Sprint(resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, classifyTransport(err)
	}

	health := decodeHealth(body)
	c.logger.Debug("health check",
		zap.Bool("ready", health.Ready),
		zap.String("status", health.Status))
	return health, nil
}

// decodeHealth leniently decodes a health payload.
func decodeHealth(body []byte) *HealthResponse {
	health := &HealthResponse{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return health
	}

	if raw, ok := fields["ai_ready"]; ok {
		var ready bool
		if err := json.Unmarshal(raw, &ready); err == nil {
			health.Ready = ready
		}
	}
	if raw, ok := fields["status"]; ok {
		_ = json.Unmarshal(raw, &health.Status)
	}
	if raw, ok := fields["files"]; ok {
		_ = json.Unmarshal(raw, &health.Files)
	}
	return health
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// SendMessage sends text for correction and returns the decoded reply.
// The text is trimmed and NFC-normalized before sending; empty text fails
// with ErrEmptyMessage without touching the network.
func (c *Client) SendMessage(ctx context.Context, text string) (*ChatResponse, error) {
	message := norm.NFC.String(strings.TrimSpace(text))
	if message == "" {
		return nil, ErrEmptyMessage
	}

	body, err := json.Marshal(ChatRequest{
		Message:   message,
		ShowHints: c.config.ShowHints,
	})
	if err != nil {
		return nil, &ClientError{Kind: KindInvalidRequest, Message: "failed to marshal request", Cause: err}
	}

	start := time.Now()
	resp, err := c.do(ctx, c.chatClient, http.MethodPost, "/api/v1/chat", body)
	if err != nil {
		c.logger.Debug("chat request failed", zap.Error(err))
		return nil, err
	}
	defer drainAndClose(resp.Body)

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))

	if !isSuccess(resp.StatusCode) {
		if readErr != nil {
			// The status alone still identifies the failure.
			c.logger.Debug("reading error body failed", zap.Int("status", resp.StatusCode), zap.Error(readErr))
			data = nil
		}
		return nil, serviceError(resp.StatusCode, data)
	}
	if readErr != nil {
		return nil, classifyTransport(readErr)
	}

	result, err := decodeChat(data)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("chat response",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("hints", len(result.Hints)))
	return result, nil
}

// decodeChat decodes a 2xx chat payload. A body that is not a JSON object
// with a string "response" field is an invalid response. The optional
// fields are best effort: a malformed hint or timing value is dropped and the
// reply is kept.
func decodeChat(data []byte) (*ChatResponse, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &ClientError{Kind: KindInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	var response *string
	if raw, ok := fields["response"]; ok {
		if err := json.Unmarshal(raw, &response); err != nil {
			return nil, &ClientError{Kind: KindInvalidResponse, Message: "failed to decode response", Cause: err}
		}
	}
	if response == nil {
		return nil, &ClientError{Kind: KindInvalidResponse, Message: "failed to decode response: missing response field"}
	}

	result := &ChatResponse{
		Response: *response,
		Hints:    decodeHints(fields["hints"]),
	}
	var elapsed *float64
	if raw, ok := fields["processing_time"]; ok && json.Unmarshal(raw, &elapsed) == nil {
		result.ProcessingTime = elapsed
	}
	decodeField(fields, "model_used", &result.ModelUsed)
	return result, nil
}

// decodeHints decodes each hint on its own. Entries that are not objects are
// skipped; fields of the wrong type are left empty.
func decodeHints(raw json.RawMessage) []Hint {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}

	var hints []Hint
	for _, item := range items {
		var fields map[string]json.RawMessage
		if json.Unmarshal(item, &fields) != nil || fields == nil {
			continue
		}
		var h Hint
		decodeField(fields, "konglish", &h.Konglish)
		decodeField(fields, "natural", &h.Natural)
		decodeField(fields, "why", &h.Why)
		decodeField(fields, "sim", &h.Similarity)
		hints = append(hints, h)
	}
	return hints
}

// decodeField decodes fields[key] into dst, leaving dst untouched when the
// key is absent or holds the wrong type.
func decodeField(fields map[string]json.RawMessage, key string, dst any) {
	if raw, ok := fields[key]; ok {
		_ = json.Unmarshal(raw, dst)
	}
}

// serviceError builds a service error from a non-2xx body, preferring the
// server's detail text over the bare status code.
func serviceError(status int, data []byte) *ClientError {
	e := &ClientError{
		Kind:       KindService,
		Message:    "HTTP " + fmt.Sprint(status),
		StatusCode: status,
	}

	var body ServiceErrorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return e
	}

	switch d := body.Detail.(type) {
	case string:
		if d != "" {
			e.Detail = d
		}
	case []any:
		// Validation errors: [{"loc": [...], "msg": "...", ...}]
		var msgs []string
		for _, item := range d {
			if m, ok := item.(map[string]any); ok {
				if s, ok := m["msg"].(string); ok && s != "" {
					msgs = append(msgs, s)
				}
			}
		}
		e.Detail = strings.Join(msgs, "; ")
	}

	if e.Detail != "" {
		e.Message = e.Detail
	}
	return e
}

// =============================================================================
// SERVICE INFORMATION
// =============================================================================

// Info retrieves the service root banner.
func (c *Client) Info(ctx context.Context) (*InfoResponse, error) {
	var result InfoResponse
	if err := c.getJSON(ctx, "/", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Stats retrieves model and retrieval-database statistics.
func (c *Client) Stats(ctx context.Context) (*StatsResponse, error) {
	var result StatsResponse
	if err := c.getJSON(ctx, "/api/v1/stats", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, c.healthClient, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return classifyTransport(err)
	}
	if !isSuccess(resp.StatusCode) {
		return serviceError(resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ClientError{Kind: KindInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// =============================================================================
// TRANSPORT HELPERS
// =============================================================================

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, &ClientError{Kind: KindTransport, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	return resp, nil
}

// classifyTransport maps a transport failure to a timeout or transport error.
func classifyTransport(err error) *ClientError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ClientError{Kind: KindTimeout, Message: "request timed out", Cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ClientError{Kind: KindTimeout, Message: "request timed out", Cause: err}
	}
	return &ClientError{Kind: KindTransport, Message: "service unreachable", Cause: err}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// Helper to drain response body
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, io.LimitReader(r, maxBodySize))
	r.Close()
}

// =============================================================================
// ERROR PREDICATES
// =============================================================================

// IsTransport checks if an error is a transport failure (timeouts included).
func IsTransport(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Kind == KindTransport || clientErr.Kind == KindTimeout
	}
	return false
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Kind == KindTimeout
	}
	return false
}

// IsService checks if an error came from the service itself: a non-2xx
// answer or an undecodable body.
func IsService(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Kind == KindService || clientErr.Kind == KindInvalidResponse
	}
	return false
}
