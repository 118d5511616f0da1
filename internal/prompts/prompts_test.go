package prompts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/ideaforge/internal/plan"
)

func fullContext() map[plan.SectionKey]json.RawMessage {
	return map[plan.SectionKey]json.RawMessage{
		plan.KeyClarifiedIdea: json.RawMessage(`{"summary":"Habit tracker for teams","problem":"Habits fade","targetUsers":"remote teams","proposedSolution":"shared streaks","assumptions":["teams care"]}`),
		plan.KeyPRD:           json.RawMessage(`{"overview":"An app","functionalRequirements":["sign up","track habit"]}`),
		plan.KeyMVPScope:      json.RawMessage(`{"p0Features":[{"id":"f1","title":"Sign up","priority":"P0","estimatedEffort":"S","acceptanceCriteria":["email works"]}],"p1Features":[{"id":"f2","title":"Streaks","priority":"P1","estimatedEffort":"M","dependencies":["f1"]}]}`),
		plan.KeyCompetitors:   json.RawMessage(`{"competitors":[{"name":"Habitica"},{"name":"Streaks"}]}`),
		plan.KeyRoadmap:       json.RawMessage(`{"phases":[{"number":1,"name":"Foundation","goal":"auth"}]}`),
	}
}

func TestEveryKeyHasTemplate(t *testing.T) {
	for _, k := range plan.Keys() {
		assert.True(t, Has(k), "no template for %s", k)
	}
}

func TestBuild_AllSections(t *testing.T) {
	in := Input{RawIdea: "  a habit tracker for remote teams  ", Context: fullContext()}
	for _, k := range plan.Keys() {
		t.Run(string(k), func(t *testing.T) {
			out, err := Build(k, in)
			require.NoError(t, err)
			assert.Contains(t, out, "JSON")
			assert.Contains(t, out, "React, Node.js, PostgreSQL", "default settings are applied")
		})
	}
}

func TestBuild_InterpolatesContext(t *testing.T) {
	in := Input{RawIdea: "habit tracker", Settings: plan.Settings{TechStack: "Go, HTMX", SprintLength: 3}, Context: fullContext()}

	out, err := Build(plan.KeyValidation, in)
	require.NoError(t, err)
	assert.Contains(t, out, "Habitica, Streaks")
	assert.Contains(t, out, "Habit tracker for teams")

	out, err = Build(plan.KeyImplementationPrompts, in)
	require.NoError(t, err)
	assert.Contains(t, out, "### f1: Sign up")
	assert.Contains(t, out, "### f2: Streaks")
	assert.Contains(t, out, "Dependencies: f1")
	assert.Contains(t, out, "Dependencies: none")
	assert.Contains(t, out, "Go, HTMX")

	out, err = Build(plan.KeyTimeline, in)
	require.NoError(t, err)
	assert.Contains(t, out, "Sprint length: 3 week(s)")
	assert.Contains(t, out, "Phase 1 - Foundation: auth")

	out, err = Build(plan.KeyClarifiedIdea, in)
	require.NoError(t, err)
	assert.Contains(t, out, "habit tracker")
}

func TestBuild_MissingContext(t *testing.T) {
	ctx := fullContext()
	delete(ctx, plan.KeyCompetitors)

	_, err := Build(plan.KeyValidation, Input{RawIdea: "x", Context: ctx})
	assert.ErrorIs(t, err, ErrMissingContext)

	_, err = Build(plan.KeyPRD, Input{RawIdea: "x"})
	assert.ErrorIs(t, err, ErrMissingContext)
}

func TestBuild_MalformedContext(t *testing.T) {
	ctx := fullContext()
	ctx[plan.KeyMVPScope] = json.RawMessage(`[1,2]`)

	_, err := Build(plan.KeyRoadmap, Input{RawIdea: "x", Context: ctx})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingContext)
}

func TestBuild_UnknownKey(t *testing.T) {
	_, err := Build("bogus", Input{})
	assert.Error(t, err)
}
