package plan

import (
	"encoding/json"
	"fmt"
)

// SectionKey identifies one of the eight generated planning sections.
type SectionKey string

const (
	KeyClarifiedIdea         SectionKey = "clarifiedIdea"
	KeyPRD                   SectionKey = "prd"
	KeyMVPScope              SectionKey = "mvpScope"
	KeyCompetitors           SectionKey = "competitors"
	KeyValidation            SectionKey = "validation"
	KeyRoadmap               SectionKey = "roadmap"
	KeyTimeline              SectionKey = "timeline"
	KeyImplementationPrompts SectionKey = "implementationPrompts"
)

// SectionCount is the fixed number of sections every workspace carries.
const SectionCount = 8

// order is the fixed enumeration order. Walking it front to back is always a
// valid topological traversal of the dependency graph.
var order = [SectionCount]SectionKey{
	KeyClarifiedIdea,
	KeyPRD,
	KeyMVPScope,
	KeyCompetitors,
	KeyValidation,
	KeyRoadmap,
	KeyTimeline,
	KeyImplementationPrompts,
}

// Keys returns the section keys in fixed order.
func Keys() []SectionKey {
	out := make([]SectionKey, SectionCount)
	copy(out, order[:])
	return out
}

// Index returns the position of k in the fixed order, or -1 if k is unknown.
func (k SectionKey) Index() int {
	for i, key := range order {
		if key == k {
			return i
		}
	}
	return -1
}

// Valid reports whether k is one of the eight section keys.
func (k SectionKey) Valid() bool {
	return k.Index() >= 0
}

func (k SectionKey) String() string {
	return string(k)
}

// Definition is the single dispatch entry for a section. The orchestrator,
// the generator, and the HTTP surface all consult the same table so the
// dependency graph and endpoint routing cannot drift apart.
type Definition struct {
	Key   SectionKey
	Title string

	// Slug is the path segment of the generation endpoint.
	Slug string

	// Requires lists the upstream sections whose content must be supplied as
	// context when generating this section.
	Requires []SectionKey

	// MaxTokens is the output token budget for one generation request.
	MaxTokens int

	// Expanded is the default UI expand state for a fresh workspace.
	Expanded bool

	// newContent returns a pointer to the zero value of the section's
	// content shape.
	newContent func() any
}

// NewContent returns a pointer to an empty value of the section's content
// shape, ready to be unmarshaled into.
func (d Definition) NewContent() any {
	return d.newContent()
}

var definitions = [SectionCount]Definition{
	{
		Key:        KeyClarifiedIdea,
		Title:      "Clarified Idea",
		Slug:       "clarify",
		MaxTokens:  1024,
		Expanded:   true,
		newContent: func() any { return new(ClarifiedIdea) },
	},
	{
		Key:        KeyPRD,
		Title:      "Product Requirements Document",
		Slug:       "prd",
		Requires:   []SectionKey{KeyClarifiedIdea},
		MaxTokens:  4096,
		newContent: func() any { return new(PRDContent) },
	},
	{
		Key:        KeyMVPScope,
		Title:      "MVP Scope",
		Slug:       "mvp-scope",
		Requires:   []SectionKey{KeyClarifiedIdea, KeyPRD},
		MaxTokens:  4096,
		newContent: func() any { return new(MVPScope) },
	},
	{
		Key:        KeyCompetitors,
		Title:      "Competitor Analysis",
		Slug:       "competitors",
		Requires:   []SectionKey{KeyClarifiedIdea},
		MaxTokens:  4096,
		newContent: func() any { return new(CompetitorAnalysis) },
	},
	{
		Key:        KeyValidation,
		Title:      "Idea Validation",
		Slug:       "validation",
		Requires:   []SectionKey{KeyClarifiedIdea, KeyCompetitors},
		MaxTokens:  4096,
		newContent: func() any { return new(IdeaValidation) },
	},
	{
		Key:        KeyRoadmap,
		Title:      "Implementation Roadmap",
		Slug:       "roadmap",
		Requires:   []SectionKey{KeyClarifiedIdea, KeyMVPScope},
		MaxTokens:  4096,
		newContent: func() any { return new(Roadmap) },
	},
	{
		Key:        KeyTimeline,
		Title:      "Delivery Timeline",
		Slug:       "timeline",
		Requires:   []SectionKey{KeyClarifiedIdea, KeyMVPScope, KeyRoadmap},
		MaxTokens:  4096,
		newContent: func() any { return new(Timeline) },
	},
	{
		Key:        KeyImplementationPrompts,
		Title:      "Implementation Prompts",
		Slug:       "prompts",
		Requires:   []SectionKey{KeyClarifiedIdea, KeyMVPScope},
		MaxTokens:  4096,
		newContent: func() any { return new(ImplementationPrompts) },
	},
}

// Lookup returns the definition for k.
func Lookup(k SectionKey) (Definition, bool) {
	i := k.Index()
	if i < 0 {
		return Definition{}, false
	}
	return definitions[i], true
}

// MustLookup returns the definition for k and panics on an unknown key.
func MustLookup(k SectionKey) Definition {
	d, ok := Lookup(k)
	if !ok {
		panic(fmt.Sprintf("plan: unknown section key %q", k))
	}
	return d
}

// Definitions returns every section definition in fixed order.
func Definitions() []Definition {
	out := make([]Definition, SectionCount)
	copy(out, definitions[:])
	return out
}

// BySlug returns the definition whose endpoint slug is slug.
func BySlug(slug string) (Definition, bool) {
	for _, d := range definitions {
		if d.Slug == slug {
			return d, true
		}
	}
	return Definition{}, false
}

// ParseSectionKey accepts either a section key ("mvpScope") or an endpoint
// slug ("mvp-scope").
func ParseSectionKey(s string) (SectionKey, error) {
	if k := SectionKey(s); k.Valid() {
		return k, nil
	}
	if d, ok := BySlug(s); ok {
		return d.Key, nil
	}
	return "", fmt.Errorf("plan: unknown section %q", s)
}

// Dependents returns the sections that directly require k, in fixed order.
func Dependents(k SectionKey) []SectionKey {
	var out []SectionKey
	for _, d := range definitions {
		for _, dep := range d.Requires {
			if dep == k {
				out = append(out, d.Key)
				break
			}
		}
	}
	return out
}

// DecodeContent unmarshals raw into the typed content shape of section k.
// The returned value is a pointer (e.g. *MVPScope).
func DecodeContent(k SectionKey, raw json.RawMessage) (any, error) {
	d, ok := Lookup(k)
	if !ok {
		return nil, fmt.Errorf("plan: unknown section %q", k)
	}
	v := d.NewContent()
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("plan: decode %s content: %w", k, err)
	}
	return v, nil
}

// ValidateGraph checks that the dependency table is acyclic and consistent
// with the fixed order: every dependency precedes its dependent.
func ValidateGraph() error {
	for i, d := range definitions {
		if d.Key != order[i] {
			return fmt.Errorf("plan: definition %d is %q, want %q", i, d.Key, order[i])
		}
		for _, dep := range d.Requires {
			j := dep.Index()
			if j < 0 {
				return fmt.Errorf("plan: %s requires unknown section %q", d.Key, dep)
			}
			if j >= i {
				return fmt.Errorf("plan: %s requires %s which does not precede it", d.Key, dep)
			}
		}
	}
	return nil
}
