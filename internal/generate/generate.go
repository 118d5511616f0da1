// Package generate performs one model round trip for one section: build the
// prompt, call the completion endpoint with the section's token budget,
// extract and parse the JSON payload, and classify any failure.
//
// A Generator never retries and never touches workspace state; the caller
// decides what to do with the Result or the classified error.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dusk-indust/ideaforge/internal/llm"
	"github.com/dusk-indust/ideaforge/internal/plan"
	"github.com/dusk-indust/ideaforge/internal/prompts"
)

// MinRawIdeaLength is the shortest trimmed raw idea accepted for clarify.
const MinRawIdeaLength = 10

// Compile-time interface check.
var _ Generator = (*LLMGenerator)(nil)

// Request is one section generation request. It mirrors the body of the
// per-section HTTP endpoint.
type Request struct {
	Section  plan.SectionKey                     `json:"-"`
	RawIdea  string                              `json:"rawIdea"`
	Settings plan.Settings                       `json:"settings"`
	Context  map[plan.SectionKey]json.RawMessage `json:"context,omitempty"`
}

// Result is a successfully generated section.
type Result struct {
	Section plan.SectionKey
	// Content is the canonical JSON encoding of Value.
	Content json.RawMessage
	// Value is a pointer to the typed content, e.g. *plan.Roadmap.
	Value any
}

// Generator produces content for one section.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (*Result, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (*Result, error) {
	return f(ctx, req)
}

// Option configures an LLMGenerator.
type Option func(*LLMGenerator)

// WithModel sets the model named in every request. Empty leaves the choice to
// the Completer.
func WithModel(model string) Option {
	return func(g *LLMGenerator) {
		g.model = model
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *LLMGenerator) {
		g.log = l
	}
}

// LLMGenerator is the Generator backed by a completion endpoint.
type LLMGenerator struct {
	llm   llm.Completer
	model string
	log   *slog.Logger
}

// New creates an LLMGenerator.
func New(c llm.Completer, opts ...Option) *LLMGenerator {
	g := &LLMGenerator{
		llm: c,
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Validate checks a request before any network call: the section must be
// known, clarify needs a raw idea of at least MinRawIdeaLength characters,
// and every other section needs content for each of its dependencies.
func Validate(req Request) error {
	def, ok := plan.Lookup(req.Section)
	if !ok {
		return newError(ErrValidation, req.Section, fmt.Errorf("unknown section %q", req.Section))
	}
	if len(def.Requires) == 0 {
		if n := len([]rune(strings.TrimSpace(req.RawIdea))); n < MinRawIdeaLength {
			return newError(ErrValidation, req.Section,
				fmt.Errorf("raw idea must be at least %d characters, got %d", MinRawIdeaLength, n))
		}
		return nil
	}
	if missing := MissingContext(req.Section, req.Context); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, k := range missing {
			names[i] = string(k)
		}
		return newError(ErrValidation, req.Section,
			fmt.Errorf("missing required context: %s", strings.Join(names, ", ")))
	}
	return nil
}

// MissingContext lists the dependencies of key absent from ctx, in fixed
// order.
func MissingContext(key plan.SectionKey, ctx map[plan.SectionKey]json.RawMessage) []plan.SectionKey {
	def, ok := plan.Lookup(key)
	if !ok {
		return nil
	}
	var missing []plan.SectionKey
	for _, dep := range def.Requires {
		if raw, ok := ctx[dep]; !ok || len(raw) == 0 || string(raw) == "null" {
			missing = append(missing, dep)
		}
	}
	return missing
}

// Generate runs one generation. Expected failures come back as *Error.
func (g *LLMGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	def := plan.MustLookup(req.Section)

	prompt, err := prompts.Build(req.Section, prompts.Input{
		RawIdea:  req.RawIdea,
		Settings: req.Settings,
		Context:  req.Context,
	})
	if err != nil {
		return nil, newError(ErrValidation, req.Section, err)
	}

	resp, err := g.llm.Complete(ctx, llm.Request{
		Model:     g.model,
		MaxTokens: def.MaxTokens,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
	})
	if err != nil {
		return nil, newError(ErrTransport, req.Section, err)
	}

	text, ok := resp.FirstText()
	if !ok {
		return nil, newError(ErrNoTextResponse, req.Section, nil)
	}

	payload := llm.ExtractJSON(text)
	if payload == "null" {
		g.log.Debug("model returned null", "section", req.Section, "output", truncate(text, 500))
		return nil, newError(ErrMalformedJSON, req.Section, errNullContent)
	}
	value, err := plan.DecodeContent(req.Section, json.RawMessage(payload))
	if err != nil {
		g.log.Debug("unparseable model output", "section", req.Section, "output", truncate(text, 500))
		return nil, newError(ErrMalformedJSON, req.Section, err)
	}

	content, err := json.Marshal(value)
	if err != nil {
		return nil, newError(ErrMalformedJSON, req.Section, err)
	}

	g.log.Debug("section generated",
		"section", req.Section,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"stop_reason", resp.StopReason,
	)
	return &Result{Section: req.Section, Content: content, Value: value}, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
