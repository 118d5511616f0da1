// Package templates provides the built-in idea templates a new idea can be
// seeded from.
package templates

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/ideaforge/internal/plan"
)

//go:embed templates.yaml
var templatesYAML []byte

// Template is a ready-made idea.
type Template struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Category    string `yaml:"category" json:"category"`
	Description string `yaml:"description" json:"description"`
	Idea        string `yaml:"idea" json:"idea"`
	TechStack   string `yaml:"techStack" json:"suggestedTechStack"`
}

// Apply seeds ws with the template's name, idea text, and tech stack.
func (t Template) Apply(ws *plan.Workspace) {
	ws.Name = t.Name
	ws.RawIdea = t.Idea
	ws.Settings.TechStack = t.TechStack
}

var (
	loadOnce sync.Once
	loaded   []Template
	loadErr  error
)

func load() ([]Template, error) {
	loadOnce.Do(func() {
		if err := yaml.Unmarshal(templatesYAML, &loaded); err != nil {
			loadErr = fmt.Errorf("templates: parse embedded templates: %w", err)
		}
	})
	return loaded, loadErr
}

// List returns every template in declaration order.
func List() ([]Template, error) {
	ts, err := load()
	if err != nil {
		return nil, err
	}
	return slices.Clone(ts), nil
}

// Get returns the template with the given ID.
func Get(id string) (Template, error) {
	ts, err := load()
	if err != nil {
		return Template{}, err
	}
	for _, t := range ts {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("templates: unknown template %q", id)
}

// Categories returns the distinct categories in first-seen order.
func Categories() ([]string, error) {
	ts, err := load()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, t := range ts {
		if !slices.Contains(out, t.Category) {
			out = append(out, t.Category)
		}
	}
	return out, nil
}
