package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the generation state of a section.
type Status string

const (
	StatusEmpty      Status = "empty"
	StatusGenerating Status = "generating"
	StatusGenerated  Status = "generated"
	StatusEdited     Status = "edited"
	StatusError      Status = "error"
)

// HasContent reports whether a section in this status carries content.
func (s Status) HasContent() bool {
	return s == StatusGenerated || s == StatusEdited
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusEmpty, StatusGenerating, StatusGenerated, StatusEdited, StatusError:
		return true
	}
	return false
}

// TeamSize is the size of the team building the product.
type TeamSize string

const (
	TeamSolo   TeamSize = "solo"
	TeamSmall  TeamSize = "small"
	TeamMedium TeamSize = "medium"
	TeamLarge  TeamSize = "large"
)

// Valid reports whether t is a known team size.
func (t TeamSize) Valid() bool {
	switch t {
	case TeamSolo, TeamSmall, TeamMedium, TeamLarge:
		return true
	}
	return false
}

// Complexity is the targeted product complexity.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Valid reports whether c is a known complexity.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex:
		return true
	}
	return false
}

// Settings shape every prompt.
type Settings struct {
	TechStack    string     `json:"techStack" yaml:"techStack"`
	TeamSize     TeamSize   `json:"teamSize" yaml:"teamSize"`
	SprintLength int        `json:"sprintLength" yaml:"sprintLength"`
	Complexity   Complexity `json:"complexity" yaml:"complexity"`
}

// DefaultSettings returns the settings of a fresh workspace.
func DefaultSettings() Settings {
	return Settings{
		TechStack:    "React, Node.js, PostgreSQL",
		TeamSize:     TeamSmall,
		SprintLength: 2,
		Complexity:   ComplexityModerate,
	}
}

// WithDefaults fills zero-valued fields from DefaultSettings.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.TechStack == "" {
		s.TechStack = d.TechStack
	}
	if s.TeamSize == "" {
		s.TeamSize = d.TeamSize
	}
	if s.SprintLength <= 0 {
		s.SprintLength = d.SprintLength
	}
	if s.Complexity == "" {
		s.Complexity = d.Complexity
	}
	return s
}

// Validate rejects unknown enum values and non-positive sprint lengths.
func (s Settings) Validate() error {
	if !s.TeamSize.Valid() {
		return fmt.Errorf("plan: invalid team size %q", s.TeamSize)
	}
	if !s.Complexity.Valid() {
		return fmt.Errorf("plan: invalid complexity %q", s.Complexity)
	}
	if s.SprintLength <= 0 {
		return fmt.Errorf("plan: sprint length must be positive, got %d", s.SprintLength)
	}
	return nil
}

// SettingsPatch is a partial settings update; nil fields are left alone.
type SettingsPatch struct {
	TechStack    *string     `json:"techStack,omitempty"`
	TeamSize     *TeamSize   `json:"teamSize,omitempty"`
	SprintLength *int        `json:"sprintLength,omitempty"`
	Complexity   *Complexity `json:"complexity,omitempty"`
}

// Apply merges the patch into s field by field.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.TechStack != nil {
		s.TechStack = *p.TechStack
	}
	if p.TeamSize != nil {
		s.TeamSize = *p.TeamSize
	}
	if p.SprintLength != nil {
		s.SprintLength = *p.SprintLength
	}
	if p.Complexity != nil {
		s.Complexity = *p.Complexity
	}
	return s
}

// Section is one generated artifact slot.
type Section struct {
	ID     string     `json:"id"`
	Key    SectionKey `json:"key"`
	Title  string     `json:"title"`
	Status Status     `json:"status"`

	// Content is the section's JSON payload. It is non-nil exactly when
	// Status is generated or edited.
	Content json.RawMessage `json:"content,omitempty"`

	LastGenerated time.Time `json:"lastGenerated,omitzero"`
	Expanded      bool      `json:"isExpanded"`
	Locked        bool      `json:"isLocked"`
}

// HasContent reports whether the section currently holds content.
func (s Section) HasContent() bool {
	return len(s.Content) > 0 && s.Status.HasContent()
}

func (s Section) clone() Section {
	if s.Content != nil {
		s.Content = bytes.Clone(s.Content)
	}
	return s
}

// Sections holds exactly one slot per section key, indexed by fixed order.
type Sections [SectionCount]Section

// MarshalJSON encodes the slots as an object keyed by section key.
func (ss Sections) MarshalJSON() ([]byte, error) {
	m := make(map[SectionKey]Section, SectionCount)
	for _, s := range ss {
		m[s.Key] = s
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by section key. Missing keys decode
// to empty slots so the set stays total.
func (ss *Sections) UnmarshalJSON(data []byte) error {
	var m map[SectionKey]Section
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for k := range m {
		if !k.Valid() {
			return fmt.Errorf("plan: unknown section key %q", k)
		}
	}
	for i, k := range order {
		s, ok := m[k]
		if !ok {
			s = newSection(definitions[i])
		}
		s.Key = k
		if s.Title == "" {
			s.Title = definitions[i].Title
		}
		if s.Status == "" {
			s.Status = StatusEmpty
		}
		ss[i] = s
	}
	return nil
}

// Workspace is the full record for one idea.
type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	RawIdea   string    `json:"rawIdea"`
	Settings  Settings  `json:"generationSettings"`
	Sections  Sections  `json:"sections"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultName is the display name of a fresh workspace.
const DefaultName = "New Workspace"

// NewWorkspace returns a fresh workspace with default settings and eight
// empty sections.
func NewWorkspace(now time.Time) Workspace {
	ws := Workspace{
		ID:        uuid.NewString(),
		Name:      DefaultName,
		Settings:  DefaultSettings(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, d := range definitions {
		ws.Sections[i] = newSection(d)
	}
	return ws
}

func newSection(d Definition) Section {
	return Section{
		ID:       uuid.NewString(),
		Key:      d.Key,
		Title:    d.Title,
		Status:   StatusEmpty,
		Expanded: d.Expanded,
	}
}

// Section returns a pointer to the slot for k. It panics on an unknown key.
func (w *Workspace) Section(k SectionKey) *Section {
	i := k.Index()
	if i < 0 {
		panic(fmt.Sprintf("plan: unknown section key %q", k))
	}
	return &w.Sections[i]
}

// Get returns a copy of the slot for k.
func (w Workspace) Get(k SectionKey) Section {
	return w.Section(k).clone()
}

// Clone returns a deep copy of w.
func (w Workspace) Clone() Workspace {
	out := w
	for i := range out.Sections {
		out.Sections[i] = w.Sections[i].clone()
	}
	return out
}
