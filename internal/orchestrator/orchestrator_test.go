package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/ideaforge/internal/generate"
	"github.com/dusk-indust/ideaforge/internal/ideas"
	"github.com/dusk-indust/ideaforge/internal/plan"
	"github.com/dusk-indust/ideaforge/internal/workspace"
)

var _ Handle = (*workspace.Store)(nil)

// fakeGen records every request and answers with canned content. fn, when
// set, replaces the canned behaviour.
type fakeGen struct {
	mu    sync.Mutex
	calls []generate.Request
	fail  map[plan.SectionKey]error
	fn    func(ctx context.Context, req generate.Request) (*generate.Result, error)
}

func (f *fakeGen) Generate(ctx context.Context, req generate.Request) (*generate.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	fn, err := f.fn, f.fail[req.Section]
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	return cannedResult(req.Section), nil
}

func (f *fakeGen) called() []plan.SectionKey {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]plan.SectionKey, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Section
	}
	return out
}

func (f *fakeGen) request(k plan.SectionKey) (generate.Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.Section == k {
			return c, true
		}
	}
	return generate.Request{}, false
}

func cannedContent(k plan.SectionKey) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"generatedFor":%q}`, k))
}

func cannedResult(k plan.SectionKey) *generate.Result {
	return &generate.Result{Section: k, Content: cannedContent(k)}
}

func transportErr(k plan.SectionKey) error {
	return &generate.Error{Kind: generate.ErrTransport, Section: k, Err: errors.New("connection reset")}
}

func newStore(t *testing.T, setup func(ws *plan.Workspace)) *workspace.Store {
	t.Helper()
	ws := plan.NewWorkspace(time.Now().UTC())
	ws.RawIdea = "A marketplace for renting camera gear between photographers"
	if setup != nil {
		setup(&ws)
	}
	return workspace.NewStore(ws, ideas.NewMemStore(), workspace.WithDebounce(0))
}

func withContent(ws *plan.Workspace, k plan.SectionKey, content string, status plan.Status) {
	sec := ws.Section(k)
	sec.Status = status
	sec.Content = json.RawMessage(content)
}

func requireStatus(t *testing.T, s *workspace.Store, want plan.Status, keys ...plan.SectionKey) {
	t.Helper()
	snap := s.Snapshot()
	for _, k := range keys {
		assert.Equal(t, want, snap.Get(k).Status, "status of %s", k)
	}
}

// ---------------------------------------------------------------------------
// GenerateAll
// ---------------------------------------------------------------------------

func TestGenerateAll_FreshWorkspace(t *testing.T) {
	gen := &fakeGen{}
	store := newStore(t, nil)
	o := New(gen)

	report, err := o.GenerateAll(context.Background(), store)
	require.NoError(t, err)

	assert.Equal(t, plan.Keys(), gen.called())
	assert.Equal(t, plan.Keys(), report.Succeeded)
	assert.True(t, report.OK())
	requireStatus(t, store, plan.StatusGenerated, plan.Keys()...)

	// Each request carries exactly its dependencies' fresh content.
	for _, d := range plan.Definitions() {
		req, ok := gen.request(d.Key)
		require.True(t, ok)
		assert.ElementsMatch(t, d.Requires, slices.Collect(maps.Keys(req.Context)), "context of %s", d.Key)
		for _, dep := range d.Requires {
			assert.JSONEq(t, string(cannedContent(dep)), string(req.Context[dep]))
		}
	}

	snap := store.Snapshot()
	for _, k := range plan.Keys() {
		assert.False(t, snap.Get(k).LastGenerated.IsZero(), "lastGenerated of %s", k)
	}
	_, running := o.Current(store.ID())
	assert.False(t, running)
	assert.False(t, o.Running(store.ID()))
}

func TestGenerateAll_DependencyAttemptedBeforeDependent(t *testing.T) {
	gen := &fakeGen{}
	store := newStore(t, nil)
	_, err := New(gen).GenerateAll(context.Background(), store)
	require.NoError(t, err)

	pos := make(map[plan.SectionKey]int)
	for i, k := range gen.called() {
		pos[k] = i
	}
	for _, d := range plan.Definitions() {
		for _, dep := range d.Requires {
			assert.Less(t, pos[dep], pos[d.Key], "%s before %s", dep, d.Key)
		}
	}
}

func TestGenerateAll_ReusesExistingClarifiedIdea(t *testing.T) {
	existing := `{"summary":"already clarified"}`
	gen := &fakeGen{}
	store := newStore(t, func(ws *plan.Workspace) {
		withContent(ws, plan.KeyClarifiedIdea, existing, plan.StatusGenerated)
	})

	report, err := New(gen).GenerateAll(context.Background(), store)
	require.NoError(t, err)

	assert.NotContains(t, gen.called(), plan.KeyClarifiedIdea)
	assert.Equal(t, []plan.SectionKey{plan.KeyClarifiedIdea}, report.Reused)
	assert.Len(t, report.Succeeded, plan.SectionCount-1)

	req, ok := gen.request(plan.KeyPRD)
	require.True(t, ok)
	assert.JSONEq(t, existing, string(req.Context[plan.KeyClarifiedIdea]))
	assert.JSONEq(t, existing, string(store.Snapshot().Get(plan.KeyClarifiedIdea).Content))
}

func TestGenerateAll_EditedContentSeedsDependents(t *testing.T) {
	edited := `{"summary":"hand tuned"}`
	gen := &fakeGen{}
	store := newStore(t, func(ws *plan.Workspace) {
		withContent(ws, plan.KeyClarifiedIdea, edited, plan.StatusEdited)
	})

	_, err := New(gen).GenerateAll(context.Background(), store)
	require.NoError(t, err)

	req, ok := gen.request(plan.KeyCompetitors)
	require.True(t, ok)
	assert.JSONEq(t, edited, string(req.Context[plan.KeyClarifiedIdea]))
	requireStatus(t, store, plan.StatusEdited, plan.KeyClarifiedIdea)
}

func TestGenerateAll_MVPScopeTransportErrorSkipsDependents(t *testing.T) {
	gen := &fakeGen{fail: map[plan.SectionKey]error{plan.KeyMVPScope: transportErr(plan.KeyMVPScope)}}
	store := newStore(t, nil)

	report, err := New(gen).GenerateAll(context.Background(), store)
	require.NoError(t, err)

	assert.Equal(t, []plan.SectionKey{
		plan.KeyClarifiedIdea, plan.KeyPRD, plan.KeyMVPScope, plan.KeyCompetitors, plan.KeyValidation,
	}, gen.called())

	assert.Equal(t, []plan.SectionKey{plan.KeyClarifiedIdea, plan.KeyPRD, plan.KeyCompetitors, plan.KeyValidation}, report.Succeeded)
	assert.Equal(t, []plan.SectionKey{plan.KeyMVPScope}, report.Failed)
	assert.Equal(t, []plan.SectionKey{plan.KeyRoadmap, plan.KeyTimeline, plan.KeyImplementationPrompts}, report.Skipped)
	assert.False(t, report.OK())

	failed, ok := report.Section(plan.KeyMVPScope)
	require.True(t, ok)
	assert.Equal(t, generate.ErrTransport.Error(), failed.Kind)
	assert.Contains(t, failed.Error, "connection reset")

	for _, k := range report.Skipped {
		e, _ := report.Section(k)
		assert.Equal(t, ReasonDependencyFailed, e.Reason, "reason for %s", k)
		assert.Equal(t, plan.KeyMVPScope, e.Dependency, "dependency for %s", k)
	}

	requireStatus(t, store, plan.StatusError, plan.KeyMVPScope)
	requireStatus(t, store, plan.StatusEmpty, plan.KeyRoadmap, plan.KeyTimeline, plan.KeyImplementationPrompts)
	requireStatus(t, store, plan.StatusGenerated, plan.KeyClarifiedIdea, plan.KeyPRD, plan.KeyCompetitors, plan.KeyValidation)
}

func TestGenerateAll_ErrorSectionIsRetried(t *testing.T) {
	gen := &fakeGen{}
	store := newStore(t, func(ws *plan.Workspace) {
		ws.Section(plan.KeyClarifiedIdea).Status = plan.StatusError
	})

	report, err := New(gen).GenerateAll(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, plan.Keys(), report.Succeeded)
}

func TestGenerateAll_LockedCompetitorsWithoutContent(t *testing.T) {
	gen := &fakeGen{}
	store := newStore(t, func(ws *plan.Workspace) {
		ws.Section(plan.KeyCompetitors).Locked = true
	})

	report, err := New(gen).GenerateAll(context.Background(), store)
	require.NoError(t, err)

	assert.NotContains(t, gen.called(), plan.KeyCompetitors)
	assert.NotContains(t, gen.called(), plan.KeyValidation)
	assert.Equal(t, []plan.SectionKey{plan.KeyCompetitors}, report.Locked)
	assert.Equal(t, []plan.SectionKey{plan.KeyValidation}, report.Skipped)

	e, ok := report.Section(plan.KeyValidation)
	require.True(t, ok)
	assert.Equal(t, ReasonDependencyLocked, e.Reason)
	assert.Equal(t, plan.KeyCompetitors, e.Dependency)

	snap := store.Snapshot()
	assert.Equal(t, plan.StatusEmpty, snap.Get(plan.KeyCompetitors).Status)
	assert.True(t, snap.Get(plan.KeyCompetitors).Locked)
	assert.Equal(t, plan.StatusEmpty, snap.Get(plan.KeyValidation).Status)
	requireStatus(t, store, plan.StatusGenerated, plan.KeyClarifiedIdea, plan.KeyPRD, plan.KeyMVPScope,
		plan.KeyRoadmap, plan.KeyTimeline, plan.KeyImplementationPrompts)
}

func TestGenerateAll_LockedSectionWithContentFeedsDependents(t *testing.T) {
	locked := `{"phases":["hand written"]}`
	gen := &fakeGen{}
	store := newStore(t, func(ws *plan.Workspace) {
		withContent(ws, plan.KeyClarifiedIdea, `{"summary":"x"}`, plan.StatusGenerated)
		withContent(ws, plan.KeyMVPScope, `{"mustHave":[]}`, plan.StatusGenerated)
		withContent(ws, plan.KeyRoadmap, locked, plan.StatusEdited)
		ws.Section(plan.KeyRoadmap).Locked = true
	})

	report, err := New(gen).GenerateAll(context.Background(), store)
	require.NoError(t, err)

	assert.NotContains(t, gen.called(), plan.KeyRoadmap)
	assert.Equal(t, []plan.SectionKey{plan.KeyRoadmap}, report.Locked)
	req, ok := gen.request(plan.KeyTimeline)
	require.True(t, ok)
	assert.JSONEq(t, locked, string(req.Context[plan.KeyRoadmap]))
	assert.JSONEq(t, locked, string(store.Snapshot().Get(plan.KeyRoadmap).Content))
}

func TestGenerateAll_HonorsLockSetDuringRun(t *testing.T) {
	store := newStore(t, nil)
	gen := &fakeGen{}
	gen.fn = func(_ context.Context, req generate.Request) (*generate.Result, error) {
		if req.Section == plan.KeyClarifiedIdea {
			require.NoError(t, store.SetSectionLocked(plan.KeyPRD, true))
		}
		return cannedResult(req.Section), nil
	}

	report, err := New(gen).GenerateAll(context.Background(), store)
	require.NoError(t, err)

	assert.NotContains(t, gen.called(), plan.KeyPRD)
	assert.Equal(t, []plan.SectionKey{plan.KeyPRD}, report.Locked)
	// mvpScope depends on the locked, empty prd.
	e, _ := report.Section(plan.KeyMVPScope)
	assert.Equal(t, OutcomeSkipped, e.Outcome)
	assert.Equal(t, ReasonDependencyLocked, e.Reason)
}

func TestGenerateAll_ValidationFailureIsSectionLocal(t *testing.T) {
	gen := &fakeGen{fail: map[plan.SectionKey]error{
		plan.KeyClarifiedIdea: &generate.Error{Kind: generate.ErrValidation, Section: plan.KeyClarifiedIdea},
	}}
	store := newStore(t, nil)

	report, err := New(gen).GenerateAll(context.Background(), store)
	require.NoError(t, err)

	assert.Equal(t, []plan.SectionKey{plan.KeyClarifiedIdea}, gen.called())
	assert.Equal(t, []plan.SectionKey{plan.KeyClarifiedIdea}, report.Failed)
	assert.Len(t, report.Skipped, plan.SectionCount-1)
	e, _ := report.Section(plan.KeyClarifiedIdea)
	assert.Equal(t, generate.ErrValidation.Error(), e.Kind)
}

func TestGenerateAll_BusyWhileRunning(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	gen := &fakeGen{}
	var once sync.Once
	gen.fn = func(ctx context.Context, req generate.Request) (*generate.Result, error) {
		once.Do(func() { close(entered) })
		<-release
		return cannedResult(req.Section), nil
	}
	store := newStore(t, nil)
	o := New(gen)

	done := make(chan error, 1)
	go func() {
		_, err := o.GenerateAll(context.Background(), store)
		done <- err
	}()

	<-entered
	assert.True(t, o.Running(store.ID()))
	cur, ok := o.Current(store.ID())
	require.True(t, ok)
	assert.Equal(t, plan.KeyClarifiedIdea, cur)
	assert.Equal(t, plan.StatusGenerating, store.Snapshot().Get(plan.KeyClarifiedIdea).Status)

	_, err := o.GenerateAll(context.Background(), store)
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, o.Running(store.ID()))
	_, ok = o.Current(store.ID())
	assert.False(t, ok)
}

func TestGenerateAll_CanceledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen := &fakeGen{}
	gen.fn = func(ctx context.Context, req generate.Request) (*generate.Result, error) {
		if req.Section == plan.KeyPRD {
			cancel()
			return nil, &generate.Error{Kind: generate.ErrTransport, Section: req.Section, Err: ctx.Err()}
		}
		return cannedResult(req.Section), nil
	}
	store := newStore(t, nil)

	report, err := New(gen).GenerateAll(ctx, store)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)

	assert.Equal(t, []plan.SectionKey{plan.KeyClarifiedIdea}, report.Succeeded)
	assert.Equal(t, []plan.SectionKey{plan.KeyPRD}, report.Failed)
	assert.Len(t, report.Skipped, plan.SectionCount-2)
	for _, k := range report.Skipped {
		e, _ := report.Section(k)
		assert.Equal(t, ReasonCanceled, e.Reason)
	}
	requireStatus(t, store, plan.StatusError, plan.KeyPRD)

	// No section is left generating.
	for _, sec := range store.Snapshot().Sections {
		assert.NotEqual(t, plan.StatusGenerating, sec.Status, sec.Key)
	}
}

func TestGenerateAll_PanicClearsGeneratingStatus(t *testing.T) {
	gen := &fakeGen{}
	gen.fn = func(context.Context, generate.Request) (*generate.Result, error) {
		panic("boom")
	}
	store := newStore(t, nil)
	o := New(gen)

	assert.Panics(t, func() {
		_, _ = o.GenerateAll(context.Background(), store)
	})
	requireStatus(t, store, plan.StatusError, plan.KeyClarifiedIdea)
	assert.False(t, o.Running(store.ID()))
	_, ok := o.Current(store.ID())
	assert.False(t, ok)
}

func TestGenerateAll_ProgressEvents(t *testing.T) {
	gen := &fakeGen{fail: map[plan.SectionKey]error{plan.KeyCompetitors: transportErr(plan.KeyCompetitors)}}
	store := newStore(t, nil)

	var mu sync.Mutex
	var events []ProgressEvent
	_, err := New(gen).GenerateAll(context.Background(), store, OnProgress(func(ev ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	}))
	require.NoError(t, err)

	last := make(map[plan.SectionKey]ProgressStatus)
	for _, ev := range events {
		assert.Equal(t, store.ID(), ev.WorkspaceID)
		last[ev.Section] = ev.Status
	}
	assert.Equal(t, ProgressFailed, last[plan.KeyCompetitors])
	assert.Equal(t, ProgressSkipped, last[plan.KeyValidation])
	assert.Equal(t, ProgressComplete, last[plan.KeyTimeline])
	assert.Equal(t, ProgressPending, events[0].Status)
}

// ---------------------------------------------------------------------------
// Level scheduler
// ---------------------------------------------------------------------------

func TestLevels(t *testing.T) {
	assert.Equal(t, [][]plan.SectionKey{
		{plan.KeyClarifiedIdea},
		{plan.KeyPRD, plan.KeyCompetitors},
		{plan.KeyMVPScope, plan.KeyValidation},
		{plan.KeyRoadmap, plan.KeyImplementationPrompts},
		{plan.KeyTimeline},
	}, Levels())
}

func TestGenerateAll_LevelsRunSiblingsConcurrently(t *testing.T) {
	var arrived atomic.Int32
	both := make(chan struct{})
	gen := &fakeGen{}
	gen.fn = func(_ context.Context, req generate.Request) (*generate.Result, error) {
		if req.Section == plan.KeyPRD || req.Section == plan.KeyCompetitors {
			if arrived.Add(1) == 2 {
				close(both)
			}
			select {
			case <-both:
			case <-time.After(2 * time.Second):
				return nil, fmt.Errorf("%s ran alone", req.Section)
			}
		}
		return cannedResult(req.Section), nil
	}
	store := newStore(t, nil)

	report, err := New(gen, WithScheduler(SchedulerLevels, 0)).GenerateAll(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, plan.Keys(), report.Succeeded)
	requireStatus(t, store, plan.StatusGenerated, plan.Keys()...)
}

func TestGenerateAll_LevelsMatchSequentialOutcomes(t *testing.T) {
	fail := map[plan.SectionKey]error{plan.KeyMVPScope: transportErr(plan.KeyMVPScope)}

	seqStore := newStore(t, nil)
	seq, err := New(&fakeGen{fail: fail}).GenerateAll(context.Background(), seqStore)
	require.NoError(t, err)

	lvlStore := newStore(t, nil)
	lvl, err := New(&fakeGen{fail: fail}, WithScheduler(SchedulerLevels, 1)).GenerateAll(context.Background(), lvlStore)
	require.NoError(t, err)

	assert.Equal(t, seq.Sections, lvl.Sections)
}

// ---------------------------------------------------------------------------
// RegenerateOne
// ---------------------------------------------------------------------------

func TestRegenerateOne_UsesAllEarlierContent(t *testing.T) {
	gen := &fakeGen{}
	store := newStore(t, nil)
	o := New(gen)
	_, err := o.GenerateAll(context.Background(), store)
	require.NoError(t, err)
	before := store.Snapshot()

	gen.fn = func(_ context.Context, req generate.Request) (*generate.Result, error) {
		return &generate.Result{Section: req.Section, Content: json.RawMessage(`{"regenerated":true}`)}, nil
	}
	res, err := o.RegenerateOne(context.Background(), store, plan.KeyRoadmap)
	require.NoError(t, err)
	assert.JSONEq(t, `{"regenerated":true}`, string(res.Content))

	gen.mu.Lock()
	req := gen.calls[len(gen.calls)-1]
	gen.mu.Unlock()
	assert.ElementsMatch(t, plan.Keys()[:plan.KeyRoadmap.Index()], slices.Collect(maps.Keys(req.Context)))

	after := store.Snapshot()
	assert.JSONEq(t, `{"regenerated":true}`, string(after.Get(plan.KeyRoadmap).Content))
	// Dependents are left alone.
	assert.Equal(t, before.Get(plan.KeyTimeline).Content, after.Get(plan.KeyTimeline).Content)
}

func TestRegenerateOne_LockedSection(t *testing.T) {
	gen := &fakeGen{}
	store := newStore(t, func(ws *plan.Workspace) {
		withContent(ws, plan.KeyPRD, `{"title":"keep"}`, plan.StatusGenerated)
		ws.Section(plan.KeyPRD).Locked = true
	})

	_, err := New(gen).RegenerateOne(context.Background(), store, plan.KeyPRD)
	assert.ErrorIs(t, err, ErrSectionLocked)
	assert.Empty(t, gen.called())
	assert.JSONEq(t, `{"title":"keep"}`, string(store.Snapshot().Get(plan.KeyPRD).Content))
}

func TestRegenerateOne_FailureSetsError(t *testing.T) {
	gen := &fakeGen{fail: map[plan.SectionKey]error{plan.KeyCompetitors: transportErr(plan.KeyCompetitors)}}
	store := newStore(t, func(ws *plan.Workspace) {
		withContent(ws, plan.KeyClarifiedIdea, `{"summary":"x"}`, plan.StatusGenerated)
		withContent(ws, plan.KeyCompetitors, `{"competitors":[]}`, plan.StatusGenerated)
	})

	_, err := New(gen).RegenerateOne(context.Background(), store, plan.KeyCompetitors)
	assert.ErrorIs(t, err, generate.ErrTransport)
	sec := store.Snapshot().Get(plan.KeyCompetitors)
	assert.Equal(t, plan.StatusError, sec.Status)
	assert.Nil(t, sec.Content)
}

func TestRegenerateOne_BusyDuringGenerateAll(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	gen := &fakeGen{}
	var once sync.Once
	gen.fn = func(ctx context.Context, req generate.Request) (*generate.Result, error) {
		once.Do(func() { close(entered) })
		<-release
		return cannedResult(req.Section), nil
	}
	store := newStore(t, func(ws *plan.Workspace) {
		withContent(ws, plan.KeyRoadmap, `{"phases":[]}`, plan.StatusGenerated)
	})
	o := New(gen)

	done := make(chan error, 1)
	go func() {
		_, err := o.GenerateAll(context.Background(), store)
		done <- err
	}()
	<-entered

	_, err := o.RegenerateOne(context.Background(), store, plan.KeyRoadmap)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, plan.StatusGenerated, store.Snapshot().Get(plan.KeyRoadmap).Status)
	assert.Equal(t, []plan.SectionKey{plan.KeyClarifiedIdea}, gen.called())

	close(release)
	require.NoError(t, <-done)
}

func TestRegenerateOne_BusyWhileSameSectionGenerating(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan plan.SectionKey, plan.SectionCount)
	gen := &fakeGen{}
	gen.fn = func(ctx context.Context, req generate.Request) (*generate.Result, error) {
		entered <- req.Section
		<-release
		return cannedResult(req.Section), nil
	}
	store := newStore(t, nil)
	o := New(gen)

	done := make(chan error, 1)
	go func() {
		_, err := o.RegenerateOne(context.Background(), store, plan.KeyClarifiedIdea)
		done <- err
	}()
	require.Equal(t, plan.KeyClarifiedIdea, <-entered)

	_, err := o.RegenerateOne(context.Background(), store, plan.KeyClarifiedIdea)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = o.GenerateAll(context.Background(), store)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Len(t, gen.called(), 1)

	close(release)
	require.NoError(t, <-done)
	assert.Empty(t, o.InFlight(store.ID()))

	_, err = o.RegenerateOne(context.Background(), store, plan.KeyClarifiedIdea)
	require.NoError(t, err)
}

func TestRegenerateOne_UnknownSection(t *testing.T) {
	_, err := New(&fakeGen{}).RegenerateOne(context.Background(), newStore(t, nil), "nope")
	assert.Error(t, err)
}

func TestFormatReport(t *testing.T) {
	r := &Report{
		Succeeded: []plan.SectionKey{plan.KeyPRD, plan.KeyTimeline},
		Failed:    []plan.SectionKey{plan.KeyMVPScope},
		Locked:    []plan.SectionKey{plan.KeyRoadmap},
	}
	assert.Equal(t, "2 generated, 1 failed, 0 skipped, 0 already present, 1 locked", FormatReport(r))
}
