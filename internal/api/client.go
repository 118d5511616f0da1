package api

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

	"github.com/dusk-indust/ideaforge/internal/generate"
	"github.com/dusk-indust/ideaforge/internal/orchestrator"
	"github.com/dusk-indust/ideaforge/internal/plan"
)

// Compile-time interface check.
var _ generate.Generator = (*Client)(nil)

// Client talks to a running Server. It is a generate.Generator, so an
// Orchestrator can drive generation through a remote server the way the
// browser client does.
type Client struct {
	http    *http.Client
	baseURL string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a Client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 2 * time.Minute},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate calls POST /generate/{slug}. Server-side failure kinds come back
// as the matching generate sentinel; anything the client cannot classify is
// a transport error.
func (c *Client) Generate(ctx context.Context, req generate.Request) (*generate.Result, error) {
	def, ok := plan.Lookup(req.Section)
	if !ok {
		return nil, &generate.Error{Kind: generate.ErrValidation, Section: req.Section,
			Err: fmt.Errorf("unknown section %q", req.Section)}
	}

	env, status, err := c.do(ctx, http.MethodPost, "/generate/"+def.Slug, req, "application/json")
	if err != nil {
		return nil, &generate.Error{Kind: generate.ErrTransport, Section: req.Section, Err: err}
	}
	if !env.Success {
		return nil, &generate.Error{Kind: kindFromName(env.Kind, status), Section: req.Section,
			Err: fmt.Errorf("HTTP %d: %s", status, env.Error)}
	}

	value, err := plan.DecodeContent(req.Section, env.Data)
	if err != nil {
		return nil, &generate.Error{Kind: generate.ErrMalformedJSON, Section: req.Section, Err: err}
	}
	return &generate.Result{Section: req.Section, Content: env.Data, Value: value}, nil
}

// GenerateAll runs the whole pipeline for idea id on the server, passing
// each progress event to onProgress (which may be nil) as it streams in.
func (c *Client) GenerateAll(ctx context.Context, id string, onProgress func(orchestrator.ProgressEvent)) (*orchestrator.Report, error) {
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/ideas/"+id+"/generate", nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("api: generate all: %w", err)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		defer resp.Body.Close()
		env, err := decodeEnvelope(resp)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("api: generate all: HTTP %d: %s", resp.StatusCode, env.Error)
	}

	for ev := range ReadEvents(ctx, resp.Body) {
		if ev.Err != nil {
			return nil, ev.Err
		}
		switch ev.Name {
		case EventProgress:
			var p orchestrator.ProgressEvent
			if err := json.Unmarshal(ev.Data, &p); err != nil {
				return nil, fmt.Errorf("api: decode progress: %w", err)
			}
			if onProgress != nil {
				onProgress(p)
			}
		case EventReport:
			var report orchestrator.Report
			if err := json.Unmarshal(ev.Data, &report); err != nil {
				return nil, fmt.Errorf("api: decode report: %w", err)
			}
			return &report, nil
		case EventError:
			var env Envelope
			if err := json.Unmarshal(ev.Data, &env); err != nil {
				return nil, fmt.Errorf("api: decode error event: %w", err)
			}
			return nil, fmt.Errorf("api: generate all: %s", env.Error)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, errors.New("api: generate all: stream ended without a report")
}

// Idea fetches the full workspace of one idea.
func (c *Client) Idea(ctx context.Context, id string) (*plan.Workspace, error) {
	env, status, err := c.do(ctx, http.MethodGet, "/ideas/"+id, nil, "application/json")
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("api: get idea %s: HTTP %d: %s", id, status, env.Error)
	}
	var ws plan.Workspace
	if err := json.Unmarshal(env.Data, &ws); err != nil {
		return nil, fmt.Errorf("api: decode idea: %w", err)
	}
	return &ws, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: marshal request: %w", err)
		}
		r = bytes.NewReader(data)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, accept string) (*Envelope, int, error) {
	httpReq, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, 0, err
	}
	httpReq.Header.Set("Accept", accept)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return env, resp.StatusCode, nil
}

func decodeEnvelope(resp *http.Response) (*Envelope, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: read response: %w", err)
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("api: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return &env, nil
}

// kindFromName maps an envelope kind back to its sentinel. An unnamed 400
// is a validation failure.
func kindFromName(name string, status int) error {
	for _, k := range []error{generate.ErrValidation, generate.ErrNoTextResponse, generate.ErrMalformedJSON, generate.ErrTransport} {
		if k.Error() == name {
			return k
		}
	}
	if status == http.StatusBadRequest {
		return generate.ErrValidation
	}
	return generate.ErrTransport
}
