package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dusk-indust/ideaforge/internal/plan"
)

func generated(ws *plan.Workspace, keys ...plan.SectionKey) {
	for _, k := range keys {
		sec := ws.Section(k)
		sec.Status = plan.StatusGenerated
		sec.Content = json.RawMessage(`{}`)
	}
}

func TestSummarize_FreshWorkspace(t *testing.T) {
	ws := plan.NewWorkspace(time.Now())
	s := Summarize(ws)

	assert.Equal(t, 0, s.Complete)
	assert.Equal(t, plan.SectionCount, s.Counts[plan.StatusEmpty])
	assert.Equal(t, []plan.SectionKey{plan.KeyClarifiedIdea}, s.Runnable)
	assert.Equal(t, plan.KeyClarifiedIdea, s.Next)
	assert.False(t, s.Done())
	assert.Equal(t, []plan.SectionKey{plan.KeyClarifiedIdea, plan.KeyPRD}, s.Sections[plan.KeyMVPScope.Index()].Waiting)
}

func TestSummarize_Runnable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(ws *plan.Workspace)
		want  []plan.SectionKey
	}{
		{
			name:  "after clarify",
			setup: func(ws *plan.Workspace) { generated(ws, plan.KeyClarifiedIdea) },
			want:  []plan.SectionKey{plan.KeyPRD, plan.KeyCompetitors},
		},
		{
			name: "locked section is not runnable",
			setup: func(ws *plan.Workspace) {
				generated(ws, plan.KeyClarifiedIdea)
				ws.Section(plan.KeyPRD).Locked = true
			},
			want: []plan.SectionKey{plan.KeyCompetitors},
		},
		{
			name: "error section is runnable again",
			setup: func(ws *plan.Workspace) {
				generated(ws, plan.KeyClarifiedIdea, plan.KeyPRD)
				ws.Section(plan.KeyMVPScope).Status = plan.StatusError
			},
			want: []plan.SectionKey{plan.KeyMVPScope, plan.KeyCompetitors},
		},
		{
			name: "generating section is not runnable",
			setup: func(ws *plan.Workspace) {
				generated(ws, plan.KeyClarifiedIdea)
				ws.Section(plan.KeyPRD).Status = plan.StatusGenerating
			},
			want: []plan.SectionKey{plan.KeyCompetitors},
		},
		{
			name:  "all done",
			setup: func(ws *plan.Workspace) { generated(ws, plan.Keys()...) },
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := plan.NewWorkspace(time.Now())
			tt.setup(&ws)
			assert.Equal(t, tt.want, Summarize(ws).Runnable)
		})
	}
}

func TestSummarize_Done(t *testing.T) {
	ws := plan.NewWorkspace(time.Now())
	generated(&ws, plan.Keys()...)
	ws.Section(plan.KeyTimeline).Status = plan.StatusEdited

	s := Summarize(ws)
	assert.True(t, s.Done())
	assert.Equal(t, plan.SectionCount, s.Complete)
	assert.Equal(t, 1, s.Counts[plan.StatusEdited])
	assert.Empty(t, s.Next)
	assert.Contains(t, Format(s), "8/8 complete. All sections complete.")
}

func TestFormat_MarksNextAndLocks(t *testing.T) {
	ws := plan.NewWorkspace(time.Now())
	ws.Name = "Camera rental"
	ws.Section(plan.KeyCompetitors).Locked = true

	out := Format(Summarize(ws))
	assert.Contains(t, out, "Idea: Camera rental")
	assert.Contains(t, out, "-> Clarified Idea")
	assert.Contains(t, out, "[next]")
	assert.Contains(t, out, "[empty] locked")
	assert.Contains(t, out, "0/8 complete")
}
