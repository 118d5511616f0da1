// Package orchestrator schedules section generation over the fixed section
// dependency graph. GenerateAll walks the sections in fixed order (or level
// by level when parallel scheduling is enabled), skipping locked sections,
// reusing sections that already have content, and never attempting a section
// whose dependencies did not succeed in the same run. RegenerateOne
// regenerates a single section from whatever earlier content the workspace
// holds.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dusk-indust/ideaforge/internal/generate"
	"github.com/dusk-indust/ideaforge/internal/plan"
)

var (
	// ErrBusy is returned when a run or regeneration already in flight for
	// the same workspace would overlap the requested one.
	ErrBusy = errors.New("orchestrator: generation already running for this workspace")

	// ErrSectionLocked is returned by RegenerateOne for a locked section.
	ErrSectionLocked = errors.New("orchestrator: section is locked")
)

// Handle is the workspace surface the orchestrator reads and writes.
// *workspace.Store implements it.
type Handle interface {
	ID() string
	Snapshot() plan.Workspace
	SetSectionStatus(k plan.SectionKey, status plan.Status) error
	SetSectionContent(k plan.SectionKey, content json.RawMessage) error
}

// Scheduler selects how GenerateAll orders attempts.
type Scheduler int

const (
	// SchedulerSequential attempts one section at a time in fixed order.
	SchedulerSequential Scheduler = iota

	// SchedulerLevels attempts every section of a dependency level
	// concurrently, one level after another.
	SchedulerLevels
)

func (s Scheduler) String() string {
	switch s {
	case SchedulerSequential:
		return "sequential"
	case SchedulerLevels:
		return "levels"
	default:
		return "unknown"
	}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

// WithScheduler selects the scheduler. parallelism bounds concurrent
// attempts for SchedulerLevels; values below 1 mean no bound.
func WithScheduler(s Scheduler, parallelism int) Option {
	return func(o *Orchestrator) {
		o.scheduler = s
		o.parallelism = parallelism
	}
}

// WithClock overrides the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// RunOption configures a single GenerateAll call.
type RunOption func(*runConfig)

type runConfig struct {
	onProgress func(ProgressEvent)
}

// OnProgress registers a callback for progress events. It is called from
// the generating goroutine and must not block.
func OnProgress(fn func(ProgressEvent)) RunOption {
	return func(c *runConfig) {
		c.onProgress = fn
	}
}

// Orchestrator runs generation for any number of workspaces. It is safe for
// concurrent use; at most one GenerateAll runs per workspace at a time.
type Orchestrator struct {
	gen         generate.Generator
	log         *slog.Logger
	now         func() time.Time
	scheduler   Scheduler
	parallelism int

	mu       sync.Mutex
	running  map[string]bool
	inFlight map[string]map[plan.SectionKey]int
}

// New creates an Orchestrator that generates through gen.
func New(gen generate.Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gen:      gen,
		log:      slog.Default(),
		now:      time.Now,
		running:  make(map[string]bool),
		inFlight: make(map[string]map[plan.SectionKey]int),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ---------------------------------------------------------------------------
// GenerateAll
// ---------------------------------------------------------------------------

// GenerateAll generates every section that is unlocked, lacks content, and
// whose dependencies succeed in this run. Failures are recorded per section
// and never abort the run. The returned report lists each section's outcome
// in fixed order. The error is non-nil only for ErrBusy or when ctx ends
// mid-run; in the latter case the partial report is returned as well.
func (o *Orchestrator) GenerateAll(ctx context.Context, ws Handle, opts ...RunOption) (*Report, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	id := ws.ID()
	if !o.begin(id) {
		return nil, ErrBusy
	}
	defer o.end(id)

	snap := ws.Snapshot()
	r := newRun(snap, o.now())
	ex := &executor{o: o, ws: ws, cfg: cfg, run: r, snap: snap}

	for _, k := range plan.Keys() {
		ex.emit(ProgressEvent{Section: k, Status: ProgressPending})
	}

	var err error
	switch o.scheduler {
	case SchedulerLevels:
		err = ex.runLevels(ctx)
	default:
		err = ex.runSequential(ctx)
	}

	report := r.finish(id, o.now())
	o.log.Info("generation run finished",
		"workspace", id,
		"succeeded", len(report.Succeeded),
		"failed", len(report.Failed),
		"skipped", len(report.Skipped),
		"reused", len(report.Reused),
		"locked", len(report.Locked),
	)
	return report, err
}

// executor carries the state of one GenerateAll call.
type executor struct {
	o    *Orchestrator
	ws   Handle
	cfg  runConfig
	run  *run
	snap plan.Workspace
}

func (e *executor) runSequential(ctx context.Context) error {
	for i, k := range plan.Keys() {
		if err := ctx.Err(); err != nil {
			e.cancelRemaining(plan.Keys()[i:])
			return err
		}
		if !e.plan(k) {
			continue
		}
		res, err := e.attempt(ctx, k)
		e.record(k, res, err)
	}
	return nil
}

// plan decides whether k is attempted. Non-attempts are recorded here.
// The lock flag is read live so a lock set during the run is honored.
func (e *executor) plan(k plan.SectionKey) bool {
	live := e.ws.Snapshot().Get(k)
	d := e.run.decide(k, live.Locked)
	switch d.outcome {
	case OutcomeAttempt:
		return true
	case OutcomeLocked:
		e.run.markLocked(k)
		e.emit(ProgressEvent{Section: k, Status: ProgressSkipped, Message: "locked"})
	case OutcomeReused:
		e.run.add(SectionReport{Section: k, Outcome: OutcomeReused})
		e.emit(ProgressEvent{Section: k, Status: ProgressComplete, Message: "already generated"})
	case OutcomeSkipped:
		e.run.add(SectionReport{Section: k, Outcome: OutcomeSkipped, Reason: d.reason, Dependency: d.dependency})
		msg := fmt.Sprintf("%s (%s)", d.reason, d.dependency)
		e.o.log.Info("section skipped", "workspace", e.snap.ID, "section", k, "reason", d.reason, "dependency", d.dependency)
		e.emit(ProgressEvent{Section: k, Status: ProgressSkipped, Message: msg})
	}
	return false
}

// attempt generates k from the run's transient content. It writes the
// generating status before the call and the final status after it.
func (e *executor) attempt(ctx context.Context, k plan.SectionKey) (*generate.Result, error) {
	req := generate.Request{
		Section:  k,
		RawIdea:  e.snap.RawIdea,
		Settings: e.snap.Settings,
		Context:  e.run.contextFor(k),
	}
	return e.o.generate(ctx, e.ws, req, e.emit)
}

// record folds the outcome of an attempt into the run.
func (e *executor) record(k plan.SectionKey, res *generate.Result, err error) {
	if err != nil {
		e.run.fail(k, err)
		return
	}
	e.run.succeed(k, res.Content)
}

func (e *executor) cancelRemaining(keys []plan.SectionKey) {
	for _, k := range keys {
		e.run.add(SectionReport{Section: k, Outcome: OutcomeSkipped, Reason: ReasonCanceled})
		e.emit(ProgressEvent{Section: k, Status: ProgressSkipped, Message: string(ReasonCanceled)})
	}
}

func (e *executor) emit(ev ProgressEvent) {
	if e.cfg.onProgress == nil {
		return
	}
	ev.WorkspaceID = e.snap.ID
	e.cfg.onProgress(ev)
}

// ---------------------------------------------------------------------------
// RegenerateOne
// ---------------------------------------------------------------------------

// RegenerateOne regenerates k alone. Its context is every earlier section
// (in fixed order) that currently holds content, whether or not k depends on
// it. Dependents are not regenerated. A locked section yields
// ErrSectionLocked and a section already generating, or a GenerateAll in
// flight for the workspace, yields ErrBusy; neither changes any state.
func (o *Orchestrator) RegenerateOne(ctx context.Context, ws Handle, k plan.SectionKey) (*generate.Result, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("orchestrator: unknown section %q", k)
	}
	snap := ws.Snapshot()
	if snap.Get(k).Locked {
		return nil, fmt.Errorf("%w: %s", ErrSectionLocked, k)
	}
	id := ws.ID()
	if !o.claim(id, k) {
		return nil, fmt.Errorf("%w: %s", ErrBusy, k)
	}
	defer o.clearInFlight(id, k)

	ctxMap := make(map[plan.SectionKey]json.RawMessage)
	for _, prev := range plan.Keys()[:k.Index()] {
		if sec := snap.Get(prev); sec.HasContent() {
			ctxMap[prev] = sec.Content
		}
	}
	return o.generate(ctx, ws, generate.Request{
		Section:  k,
		RawIdea:  snap.RawIdea,
		Settings: snap.Settings,
		Context:  ctxMap,
	}, nil)
}

// generate performs one attempt against the workspace: generating status,
// generator call, then generated content or error status.
func (o *Orchestrator) generate(ctx context.Context, ws Handle, req generate.Request, emit func(ProgressEvent)) (*generate.Result, error) {
	id := ws.ID()
	k := req.Section
	if emit == nil {
		emit = func(ProgressEvent) {}
	}

	if err := ws.SetSectionStatus(k, plan.StatusGenerating); err != nil {
		o.log.Error("set generating status", "workspace", id, "section", k, "error", err)
	}
	o.markInFlight(id, k)
	emit(ProgressEvent{Section: k, Status: ProgressWorking})

	settled := false
	defer func() {
		o.clearInFlight(id, k)
		if !settled {
			_ = ws.SetSectionStatus(k, plan.StatusError)
		}
	}()

	res, err := o.gen.Generate(ctx, req)
	if err == nil {
		err = ws.SetSectionContent(k, res.Content)
	}
	if err != nil {
		settled = true
		if serr := ws.SetSectionStatus(k, plan.StatusError); serr != nil {
			o.log.Error("set error status", "workspace", id, "section", k, "error", serr)
		}
		o.log.Warn("section generation failed", "workspace", id, "section", k, "error", err)
		emit(ProgressEvent{Section: k, Status: ProgressFailed, Message: err.Error()})
		return nil, err
	}
	settled = true
	emit(ProgressEvent{Section: k, Status: ProgressComplete})
	return res, nil
}

// ---------------------------------------------------------------------------
// In-flight tracking
// ---------------------------------------------------------------------------

// Running reports whether a GenerateAll is in flight for the workspace.
func (o *Orchestrator) Running(workspaceID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running[workspaceID]
}

// Current returns the section currently generating for the workspace. With
// several in flight it returns the earliest in fixed order.
func (o *Orchestrator) Current(workspaceID string) (plan.SectionKey, bool) {
	keys := o.InFlight(workspaceID)
	if len(keys) == 0 {
		return "", false
	}
	return keys[0], true
}

// InFlight returns every section currently generating for the workspace, in
// fixed order.
func (o *Orchestrator) InFlight(workspaceID string) []plan.SectionKey {
	o.mu.Lock()
	defer o.mu.Unlock()
	set := o.inFlight[workspaceID]
	var out []plan.SectionKey
	for _, k := range plan.Keys() {
		if set[k] > 0 {
			out = append(out, k)
		}
	}
	return out
}

func (o *Orchestrator) begin(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running[id] || len(o.inFlight[id]) > 0 {
		return false
	}
	o.running[id] = true
	return true
}

func (o *Orchestrator) end(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.running, id)
}

// claim marks k in flight unless a GenerateAll is running for the
// workspace or k is already generating.
func (o *Orchestrator) claim(id string, k plan.SectionKey) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running[id] || o.inFlight[id][k] > 0 {
		return false
	}
	o.markInFlightLocked(id, k)
	return true
}

func (o *Orchestrator) markInFlight(id string, k plan.SectionKey) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.markInFlightLocked(id, k)
}

func (o *Orchestrator) markInFlightLocked(id string, k plan.SectionKey) {
	set := o.inFlight[id]
	if set == nil {
		set = make(map[plan.SectionKey]int)
		o.inFlight[id] = set
	}
	set[k]++
}

func (o *Orchestrator) clearInFlight(id string, k plan.SectionKey) {
	o.mu.Lock()
	defer o.mu.Unlock()
	set := o.inFlight[id]
	if set == nil {
		return
	}
	if set[k]--; set[k] <= 0 {
		delete(set, k)
	}
	if len(set) == 0 {
		delete(o.inFlight, id)
	}
}
