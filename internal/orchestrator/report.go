package orchestrator

import (
	"encoding/json"
	"time"

	"github.com/dusk-indust/ideaforge/internal/generate"
	"github.com/dusk-indust/ideaforge/internal/plan"
)

// Outcome is what a run did with one section.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeReused    Outcome = "reused"
	OutcomeLocked    Outcome = "locked"

	// OutcomeAttempt is a planning decision only; it never appears in a
	// finished report.
	OutcomeAttempt Outcome = "attempt"
)

// SkipReason explains why a section was not attempted.
type SkipReason string

const (
	ReasonDependencyFailed  SkipReason = "dependency failed"
	ReasonDependencyMissing SkipReason = "dependency missing"
	ReasonDependencyLocked  SkipReason = "dependency locked without content"
	ReasonCanceled          SkipReason = "canceled"
)

// SectionReport is the outcome of one section in a run.
type SectionReport struct {
	Section    plan.SectionKey `json:"section"`
	Outcome    Outcome         `json:"outcome"`
	Reason     SkipReason      `json:"reason,omitempty"`
	Dependency plan.SectionKey `json:"dependency,omitempty"`
	Kind       string          `json:"kind,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Report summarizes a GenerateAll run. Sections lists every section in
// fixed order; the key lists group them by outcome.
type Report struct {
	WorkspaceID string            `json:"workspaceId"`
	StartedAt   time.Time         `json:"startedAt"`
	FinishedAt  time.Time         `json:"finishedAt"`
	Sections    []SectionReport   `json:"sections"`
	Succeeded   []plan.SectionKey `json:"succeeded"`
	Failed      []plan.SectionKey `json:"failed"`
	Skipped     []plan.SectionKey `json:"skipped"`
	Reused      []plan.SectionKey `json:"reused"`
	Locked      []plan.SectionKey `json:"locked"`
}

// Section returns the report entry for k.
func (r *Report) Section(k plan.SectionKey) (SectionReport, bool) {
	for _, s := range r.Sections {
		if s.Section == k {
			return s, true
		}
	}
	return SectionReport{}, false
}

// OK reports whether no section failed.
func (r *Report) OK() bool {
	return len(r.Failed) == 0
}

// ---------------------------------------------------------------------------
// Run state
// ---------------------------------------------------------------------------

// run is the per-invocation state of GenerateAll: the success and failure
// sets and the transient content map dependents read their context from.
// Sections that already hold content when the run starts seed both.
type run struct {
	started   time.Time
	succeeded map[plan.SectionKey]bool
	failed    map[plan.SectionKey]bool
	locked    map[plan.SectionKey]bool
	content   map[plan.SectionKey]json.RawMessage
	entries   map[plan.SectionKey]SectionReport
}

func newRun(ws plan.Workspace, started time.Time) *run {
	r := &run{
		started:   started,
		succeeded: make(map[plan.SectionKey]bool),
		failed:    make(map[plan.SectionKey]bool),
		locked:    make(map[plan.SectionKey]bool),
		content:   make(map[plan.SectionKey]json.RawMessage),
		entries:   make(map[plan.SectionKey]SectionReport),
	}
	for _, sec := range ws.Sections {
		if sec.HasContent() {
			r.succeeded[sec.Key] = true
			r.content[sec.Key] = sec.Content
		}
	}
	return r
}

type decision struct {
	outcome    Outcome
	reason     SkipReason
	dependency plan.SectionKey
}

// decide applies the per-section rules in order: locked, already has
// content, dependency not satisfied, attempt.
func (r *run) decide(k plan.SectionKey, locked bool) decision {
	if locked {
		return decision{outcome: OutcomeLocked}
	}
	if r.succeeded[k] {
		return decision{outcome: OutcomeReused}
	}
	for _, dep := range plan.MustLookup(k).Requires {
		switch {
		case r.failed[dep]:
			return decision{outcome: OutcomeSkipped, reason: ReasonDependencyFailed, dependency: dep}
		case r.succeeded[dep]:
		case r.locked[dep]:
			return decision{outcome: OutcomeSkipped, reason: ReasonDependencyLocked, dependency: dep}
		default:
			return decision{outcome: OutcomeSkipped, reason: ReasonDependencyMissing, dependency: dep}
		}
	}
	return decision{outcome: OutcomeAttempt}
}

// contextFor returns the transient content of k's dependencies.
func (r *run) contextFor(k plan.SectionKey) map[plan.SectionKey]json.RawMessage {
	out := make(map[plan.SectionKey]json.RawMessage)
	for _, dep := range plan.MustLookup(k).Requires {
		if c, ok := r.content[dep]; ok {
			out[dep] = c
		}
	}
	return out
}

func (r *run) add(e SectionReport) {
	r.entries[e.Section] = e
}

func (r *run) markLocked(k plan.SectionKey) {
	r.locked[k] = true
	r.add(SectionReport{Section: k, Outcome: OutcomeLocked})
}

func (r *run) succeed(k plan.SectionKey, content json.RawMessage) {
	r.succeeded[k] = true
	r.content[k] = content
	r.add(SectionReport{Section: k, Outcome: OutcomeSucceeded})
}

func (r *run) fail(k plan.SectionKey, err error) {
	r.failed[k] = true
	e := SectionReport{Section: k, Outcome: OutcomeFailed, Error: err.Error()}
	if kind := generate.KindOf(err); kind != nil {
		e.Kind = kind.Error()
	}
	r.add(e)
}

func (r *run) finish(id string, finished time.Time) *Report {
	rep := &Report{
		WorkspaceID: id,
		StartedAt:   r.started,
		FinishedAt:  finished,
		Sections:    make([]SectionReport, 0, plan.SectionCount),
	}
	for _, k := range plan.Keys() {
		e, ok := r.entries[k]
		if !ok {
			continue
		}
		rep.Sections = append(rep.Sections, e)
		switch e.Outcome {
		case OutcomeSucceeded:
			rep.Succeeded = append(rep.Succeeded, k)
		case OutcomeFailed:
			rep.Failed = append(rep.Failed, k)
		case OutcomeSkipped:
			rep.Skipped = append(rep.Skipped, k)
		case OutcomeReused:
			rep.Reused = append(rep.Reused, k)
		case OutcomeLocked:
			rep.Locked = append(rep.Locked, k)
		}
	}
	return rep
}
