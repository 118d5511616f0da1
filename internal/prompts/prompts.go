// Package prompts renders the instruction sent to the model for each
// section. Templates are embedded and keyed by section slug; every template
// asks for a single JSON value in the shape of the section's content type.
package prompts

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/dusk-indust/ideaforge/internal/plan"
)

// templateFS holds one template per section slug.
//
//go:embed templates/*.tmpl
var templateFS embed.FS

// ErrMissingContext is returned when a required upstream section was not
// supplied.
var ErrMissingContext = errors.New("prompts: missing required context")

var funcs = template.FuncMap{
	"join": func(items []string, sep string) string { return strings.Join(items, sep) },
	"inc":  func(i int) int { return i + 1 },
	"orNone": func(items []string) string {
		if len(items) == 0 {
			return "none"
		}
		return strings.Join(items, ", ")
	},
}

var templates = template.Must(template.New("prompts").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl"))

// Input is everything a prompt may draw on.
type Input struct {
	RawIdea  string
	Settings plan.Settings
	Context  map[plan.SectionKey]json.RawMessage
}

// data is the template view. Only the fields a section requires are set.
type data struct {
	RawIdea       string
	Settings      plan.Settings
	ClarifiedIdea *plan.ClarifiedIdea
	PRD           *plan.PRDContent
	MVPScope      *plan.MVPScope
	Competitors   *plan.CompetitorAnalysis
	Roadmap       *plan.Roadmap
	Features      []plan.Feature
}

// Build renders the prompt for key. Every section listed in the key's
// Requires must be present in in.Context and decode into its content type.
func Build(key plan.SectionKey, in Input) (string, error) {
	def, ok := plan.Lookup(key)
	if !ok {
		return "", fmt.Errorf("prompts: unknown section %q", key)
	}

	d := data{
		RawIdea:  strings.TrimSpace(in.RawIdea),
		Settings: in.Settings.WithDefaults(),
	}
	for _, dep := range def.Requires {
		raw, ok := in.Context[dep]
		if !ok || len(raw) == 0 {
			return "", fmt.Errorf("%w: %s needs %s", ErrMissingContext, key, dep)
		}
		v, err := plan.DecodeContent(dep, raw)
		if err != nil {
			return "", fmt.Errorf("prompts: %s context: %w", dep, err)
		}
		switch c := v.(type) {
		case *plan.ClarifiedIdea:
			d.ClarifiedIdea = c
		case *plan.PRDContent:
			d.PRD = c
		case *plan.MVPScope:
			d.MVPScope = c
			d.Features = c.AllFeatures()
		case *plan.CompetitorAnalysis:
			d.Competitors = c
		case *plan.Roadmap:
			d.Roadmap = c
		}
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, def.Slug+".tmpl", d); err != nil {
		return "", fmt.Errorf("prompts: render %s: %w", key, err)
	}
	return buf.String(), nil
}

// Has reports whether a template exists for key.
func Has(key plan.SectionKey) bool {
	def, ok := plan.Lookup(key)
	return ok && templates.Lookup(def.Slug+".tmpl") != nil
}
