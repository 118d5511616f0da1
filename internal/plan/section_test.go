package plan

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGraph(t *testing.T) {
	require.NoError(t, ValidateGraph())
}

func TestKeys_FixedOrder(t *testing.T) {
	want := []SectionKey{
		KeyClarifiedIdea, KeyPRD, KeyMVPScope, KeyCompetitors,
		KeyValidation, KeyRoadmap, KeyTimeline, KeyImplementationPrompts,
	}
	assert.Equal(t, want, Keys())

	// Mutating the returned slice must not affect the table.
	keys := Keys()
	keys[0] = "bogus"
	assert.Equal(t, KeyClarifiedIdea, Keys()[0])
}

func TestDefinitions_Dependencies(t *testing.T) {
	tests := []struct {
		key  SectionKey
		want []SectionKey
	}{
		{KeyClarifiedIdea, nil},
		{KeyPRD, []SectionKey{KeyClarifiedIdea}},
		{KeyMVPScope, []SectionKey{KeyClarifiedIdea, KeyPRD}},
		{KeyCompetitors, []SectionKey{KeyClarifiedIdea}},
		{KeyValidation, []SectionKey{KeyClarifiedIdea, KeyCompetitors}},
		{KeyRoadmap, []SectionKey{KeyClarifiedIdea, KeyMVPScope}},
		{KeyTimeline, []SectionKey{KeyClarifiedIdea, KeyMVPScope, KeyRoadmap}},
		{KeyImplementationPrompts, []SectionKey{KeyClarifiedIdea, KeyMVPScope}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			d := MustLookup(tt.key)
			assert.Equal(t, tt.want, d.Requires)
		})
	}
}

func TestDefinitions_SlugsAndTokens(t *testing.T) {
	slugs := map[SectionKey]string{
		KeyClarifiedIdea:         "clarify",
		KeyPRD:                   "prd",
		KeyMVPScope:              "mvp-scope",
		KeyCompetitors:           "competitors",
		KeyValidation:            "validation",
		KeyRoadmap:               "roadmap",
		KeyTimeline:              "timeline",
		KeyImplementationPrompts: "prompts",
	}
	for _, d := range Definitions() {
		assert.Equal(t, slugs[d.Key], d.Slug)
		assert.GreaterOrEqual(t, d.MaxTokens, 1024)
		assert.LessOrEqual(t, d.MaxTokens, 4096)

		got, ok := BySlug(d.Slug)
		require.True(t, ok)
		assert.Equal(t, d.Key, got.Key)
	}
	assert.Equal(t, 1024, MustLookup(KeyClarifiedIdea).MaxTokens)
}

func TestParseSectionKey(t *testing.T) {
	k, err := ParseSectionKey("mvpScope")
	require.NoError(t, err)
	assert.Equal(t, KeyMVPScope, k)

	k, err = ParseSectionKey("mvp-scope")
	require.NoError(t, err)
	assert.Equal(t, KeyMVPScope, k)

	_, err = ParseSectionKey("nope")
	assert.Error(t, err)
}

func TestDependents(t *testing.T) {
	assert.Equal(t,
		[]SectionKey{KeyRoadmap, KeyTimeline, KeyImplementationPrompts},
		Dependents(KeyMVPScope))
	assert.Empty(t, Dependents(KeyImplementationPrompts))
}

func TestDecodeContent(t *testing.T) {
	v, err := DecodeContent(KeyImplementationPrompts, json.RawMessage(`[{"id":"f1","title":"Login"}]`))
	require.NoError(t, err)
	prompts, ok := v.(*ImplementationPrompts)
	require.True(t, ok)
	require.Len(t, *prompts, 1)
	assert.Equal(t, "Login", (*prompts)[0].Title)

	// An object cannot satisfy the array shape.
	_, err = DecodeContent(KeyImplementationPrompts, json.RawMessage(`{"id":"f1"}`))
	assert.Error(t, err)
}

func TestNewWorkspace_AllSectionsEmpty(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ws := NewWorkspace(now)

	assert.NotEmpty(t, ws.ID)
	assert.Equal(t, DefaultName, ws.Name)
	assert.Equal(t, DefaultSettings(), ws.Settings)
	assert.Equal(t, now, ws.CreatedAt)

	for i, k := range Keys() {
		s := ws.Sections[i]
		assert.Equal(t, k, s.Key)
		assert.Equal(t, StatusEmpty, s.Status)
		assert.Nil(t, s.Content)
		assert.False(t, s.Locked)
		assert.Equal(t, k == KeyClarifiedIdea, s.Expanded)
		assert.NotEmpty(t, s.ID)
	}
}

func TestWorkspace_JSONKeepsSectionSetTotal(t *testing.T) {
	ws := NewWorkspace(time.Now().UTC())
	sec := ws.Section(KeyPRD)
	sec.Status = StatusGenerated
	sec.Content = json.RawMessage(`{"overview":"x"}`)

	data, err := json.Marshal(ws)
	require.NoError(t, err)

	var back Workspace
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, StatusGenerated, back.Get(KeyPRD).Status)
	assert.JSONEq(t, `{"overview":"x"}`, string(back.Get(KeyPRD).Content))

	// A document missing some sections still yields all eight.
	var partial Workspace
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","sections":{"prd":{"status":"error"}}}`), &partial))
	for i, k := range Keys() {
		assert.Equal(t, k, partial.Sections[i].Key)
	}
	assert.Equal(t, StatusError, partial.Get(KeyPRD).Status)
	assert.Equal(t, StatusEmpty, partial.Get(KeyRoadmap).Status)

	var bad Workspace
	assert.Error(t, json.Unmarshal([]byte(`{"sections":{"extra":{}}}`), &bad))
}

func TestWorkspace_CloneIsDeep(t *testing.T) {
	ws := NewWorkspace(time.Now())
	ws.Section(KeyPRD).Content = json.RawMessage(`{"a":1}`)

	c := ws.Clone()
	c.Section(KeyPRD).Content[1] = 'X'
	assert.Equal(t, `{"a":1}`, string(ws.Get(KeyPRD).Content))
}

func TestSettings_PatchAndDefaults(t *testing.T) {
	size := TeamLarge
	s := SettingsPatch{TeamSize: &size}.Apply(DefaultSettings())
	assert.Equal(t, TeamLarge, s.TeamSize)
	assert.Equal(t, "React, Node.js, PostgreSQL", s.TechStack)

	filled := Settings{TechStack: "Go"}.WithDefaults()
	assert.Equal(t, "Go", filled.TechStack)
	assert.Equal(t, 2, filled.SprintLength)
	require.NoError(t, filled.Validate())

	assert.Error(t, Settings{TeamSize: "huge", Complexity: ComplexitySimple, SprintLength: 1}.Validate())
	assert.Error(t, Settings{TeamSize: TeamSolo, Complexity: ComplexitySimple}.Validate())
}

func TestMVPScope_AllFeatures(t *testing.T) {
	m := MVPScope{
		P0Features: []Feature{{ID: "a"}},
		P1Features: []Feature{{ID: "b"}},
		P2Features: []Feature{{ID: "c"}},
	}
	var ids []string
	for _, f := range m.AllFeatures() {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}
