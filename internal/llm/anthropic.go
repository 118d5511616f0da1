package llm

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
)

// Compile-time interface check.
var _ Completer = (*AnthropicClient)(nil)

const (
	// DefaultBaseURL is the public Anthropic API origin.
	DefaultBaseURL = "https://api.anthropic.com"

	// DefaultModel is used when a request does not name a model.
	DefaultModel = "claude-sonnet-4-20250514"

	apiVersion = "2023-06-01"
)

// ErrMissingAPIKey is returned when no API key has been configured.
var ErrMissingAPIKey = errors.New("llm: missing API key")

// APIError is a non-2xx reply from the Messages API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("llm: api error %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("llm: api error %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the failure is transient (rate limit or
// server-side overload).
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// AnthropicClient implements Completer against the Anthropic Messages API.
type AnthropicClient struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
}

// ClientOption configures an AnthropicClient.
type ClientOption func(*AnthropicClient)

// WithAPIKey sets the x-api-key credential.
func WithAPIKey(key string) ClientOption {
	return func(c *AnthropicClient) {
		c.apiKey = key
	}
}

// WithBaseURL overrides the API origin (e.g. a proxy or a test server).
func WithBaseURL(u string) ClientOption {
	return func(c *AnthropicClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithModel sets the model used when a request leaves Model empty.
func WithModel(model string) ClientOption {
	return func(c *AnthropicClient) {
		c.model = model
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *AnthropicClient) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *AnthropicClient) {
		c.http = hc
	}
}

// NewAnthropicClient creates a Messages API client.
func NewAnthropicClient(opts ...ClientOption) *AnthropicClient {
	c := &AnthropicClient{
		http:    &http.Client{Timeout: 120 * time.Second},
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the default model name.
func (c *AnthropicClient) Model() string {
	return c.model
}

type apiErrorBody struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a non-streaming request to /v1/messages.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (*Response, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if req.Model == "" {
		req.Model = c.model
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("llm: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llm: send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("llm: read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: httpResp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var eb apiErrorBody
		if json.Unmarshal(respBody, &eb) == nil && eb.Error.Message != "" {
			apiErr.Type = eb.Error.Type
			apiErr.Message = eb.Error.Message
		}
		return nil, apiErr
	}

	var resp Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("llm: unmarshal response: %w", err)
	}
	return &resp, nil
}
