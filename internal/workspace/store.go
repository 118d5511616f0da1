// Package workspace holds the mutable state of one idea and persists it to
// an ideas.Repository on a debounced schedule.
package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dusk-indust/ideaforge/internal/ideas"
	"github.com/dusk-indust/ideaforge/internal/plan"
)

// DefaultDebounce is the delay between the last mutation and the save.
const DefaultDebounce = time.Second

// ErrPersistence wraps repository failures during a save.
var ErrPersistence = errors.New("workspace: persistence failed")

// Option configures a Store.
type Option func(*Store)

// WithDebounce sets the save delay. Zero or negative saves only on Flush.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) {
		s.debounce = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store is a handle on one workspace. All methods are safe for concurrent
// use. Mutations bump a revision and (re)arm the save timer; a save writes
// the latest snapshot unless its fingerprint matches the last successful
// write.
type Store struct {
	repo     ideas.Repository
	log      *slog.Logger
	now      func() time.Time
	debounce time.Duration

	mu       sync.Mutex
	ws       plan.Workspace
	rev      uint64
	savedRev uint64
	timer    *time.Timer
	closed   bool

	// saveMu serializes writes; lastSaved is only touched while holding it.
	saveMu    sync.Mutex
	lastSaved Fingerprint
	hasSaved  bool

	// persistedID is the workspace ID last known to exist in the
	// repository. A record with that ID is never recreated by a save.
	persistedID string
}

// NewStore wraps ws. Nothing is written until the first mutation or Flush.
func NewStore(ws plan.Workspace, repo ideas.Repository, opts ...Option) *Store {
	s := &Store{
		repo:     repo,
		log:      slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
		debounce: DefaultDebounce,
		ws:       ws.Clone(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the record id from repo and returns a clean Store for it.
func Open(ctx context.Context, repo ideas.Repository, id string, opts ...Option) (*Store, error) {
	rec, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ws, err := DecodeRecord(rec)
	if err != nil {
		return nil, err
	}
	s := NewStore(ws, repo, opts...)
	s.persistedID = ws.ID
	if enc, err := EncodeRecord(ws); err == nil {
		s.lastSaved, s.hasSaved = enc.Fingerprint(), true
	}
	return s, nil
}

// Create inserts ws into repo and returns a clean Store for it.
func Create(ctx context.Context, repo ideas.Repository, ws plan.Workspace, opts ...Option) (*Store, error) {
	s := NewStore(ws, repo, opts...)
	enc, err := EncodeRecord(s.ws)
	if err != nil {
		return nil, err
	}
	if err := s.write(ctx, enc, s.ws.UpdatedAt); err != nil {
		return nil, err
	}
	s.lastSaved, s.hasSaved = enc.Fingerprint(), true
	return s, nil
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// ID returns the workspace ID.
func (s *Store) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.ID
}

// Snapshot returns a deep copy of the current workspace.
func (s *Store) Snapshot() plan.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.Clone()
}

// Section returns a copy of one section.
func (s *Store) Section(k plan.SectionKey) (plan.Section, error) {
	if !k.Valid() {
		return plan.Section{}, fmt.Errorf("workspace: unknown section %q", k)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.Get(k), nil
}

// Dirty reports whether there are mutations not yet written.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev != s.savedRev
}

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

// SetRawIdea replaces the raw idea text.
func (s *Store) SetRawIdea(text string) {
	s.mutate(func(ws *plan.Workspace) { ws.RawIdea = text })
}

// SetName replaces the display name.
func (s *Store) SetName(name string) {
	s.mutate(func(ws *plan.Workspace) { ws.Name = name })
}

// SetSettings merges p into the settings field by field. The result must
// validate.
func (s *Store) SetSettings(p plan.SettingsPatch) error {
	s.mu.Lock()
	next := p.Apply(s.ws.Settings)
	s.mu.Unlock()
	if err := next.Validate(); err != nil {
		return err
	}
	s.mutate(func(ws *plan.Workspace) { ws.Settings = p.Apply(ws.Settings) })
	return nil
}

// SetSectionStatus sets a section's status. Statuses that carry no content
// clear the content. Generated and edited need content, so they are only
// reachable through SetSectionContent and EditSectionContent.
func (s *Store) SetSectionStatus(k plan.SectionKey, status plan.Status) error {
	if !k.Valid() {
		return fmt.Errorf("workspace: unknown section %q", k)
	}
	if !status.Valid() {
		return fmt.Errorf("workspace: unknown status %q", status)
	}
	if status.HasContent() {
		return fmt.Errorf("workspace: status %s requires content", status)
	}
	s.mutate(func(ws *plan.Workspace) {
		sec := ws.Section(k)
		sec.Status = status
		sec.Content = nil
	})
	return nil
}

// SetSectionContent stores generated content: status becomes generated and
// lastGenerated is stamped.
func (s *Store) SetSectionContent(k plan.SectionKey, content json.RawMessage) error {
	return s.setContent(k, content, plan.StatusGenerated)
}

// EditSectionContent stores user-edited content with status edited.
// lastGenerated is left alone.
func (s *Store) EditSectionContent(k plan.SectionKey, content json.RawMessage) error {
	return s.setContent(k, content, plan.StatusEdited)
}

func (s *Store) setContent(k plan.SectionKey, content json.RawMessage, status plan.Status) error {
	if !k.Valid() {
		return fmt.Errorf("workspace: unknown section %q", k)
	}
	if len(content) == 0 || !json.Valid(content) {
		return fmt.Errorf("workspace: %s content must be valid JSON", k)
	}
	if bytes.Equal(bytes.TrimSpace(content), []byte("null")) {
		return fmt.Errorf("workspace: %s content must not be null", k)
	}
	c := append(json.RawMessage(nil), content...)
	s.mutate(func(ws *plan.Workspace) {
		sec := ws.Section(k)
		sec.Status = status
		sec.Content = c
		if status == plan.StatusGenerated {
			sec.LastGenerated = s.now()
		}
	})
	return nil
}

// ToggleSectionExpanded flips the UI expand flag. It does not touch
// updatedAt and schedules no save.
func (s *Store) ToggleSectionExpanded(k plan.SectionKey) (bool, error) {
	if !k.Valid() {
		return false, fmt.Errorf("workspace: unknown section %q", k)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sec := s.ws.Section(k)
	sec.Expanded = !sec.Expanded
	return sec.Expanded, nil
}

// ToggleSectionLocked flips the lock flag and returns the new value.
func (s *Store) ToggleSectionLocked(k plan.SectionKey) (bool, error) {
	if !k.Valid() {
		return false, fmt.Errorf("workspace: unknown section %q", k)
	}
	var locked bool
	s.mutate(func(ws *plan.Workspace) {
		sec := ws.Section(k)
		sec.Locked = !sec.Locked
		locked = sec.Locked
	})
	return locked, nil
}

// SetSectionLocked sets the lock flag.
func (s *Store) SetSectionLocked(k plan.SectionKey, locked bool) error {
	if !k.Valid() {
		return fmt.Errorf("workspace: unknown section %q", k)
	}
	s.mutate(func(ws *plan.Workspace) { ws.Section(k).Locked = locked })
	return nil
}

// Replace swaps in a whole workspace. Pending changes of the previous
// workspace are not written; use Session.Switch to move between ideas.
func (s *Store) Replace(ws plan.Workspace) {
	next := ws.Clone()
	s.mu.Lock()
	s.ws = next
	s.rev++
	s.schedule()
	s.mu.Unlock()
}

// Reset replaces the workspace with a fresh default one.
func (s *Store) Reset() {
	s.Replace(plan.NewWorkspace(s.now()))
}

// mutate applies fn, stamps updatedAt and arms the save timer.
func (s *Store) mutate(fn func(ws *plan.Workspace)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.ws)
	s.ws.UpdatedAt = s.now()
	s.rev++
	s.schedule()
}

// schedule (re)arms the debounce timer. Callers hold s.mu.
func (s *Store) schedule() {
	if s.closed || s.debounce <= 0 {
		return
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.onTimer)
		return
	}
	s.timer.Reset(s.debounce)
}

func (s *Store) onTimer() {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	if err := s.Flush(context.Background()); err != nil {
		s.log.Error("workspace save failed", "workspace", s.ID(), "error", err)
	}
}

// ---------------------------------------------------------------------------
// Persistence
// ---------------------------------------------------------------------------

// Flush writes pending changes now. A write is skipped when the encoded
// record matches the last successful write. On failure the changes stay
// pending and the next mutation schedules another attempt. Flush on a
// closed or discarded Store writes nothing.
func (s *Store) Flush(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	rev := s.rev
	if rev == s.savedRev {
		s.mu.Unlock()
		return nil
	}
	snap := s.ws.Clone()
	s.mu.Unlock()

	enc, err := EncodeRecord(snap)
	if err != nil {
		return err
	}
	fp := enc.Fingerprint()
	if !s.hasSaved || fp != s.lastSaved {
		if err := s.write(ctx, enc, snap.UpdatedAt); err != nil {
			return err
		}
		s.lastSaved, s.hasSaved = fp, true
	}

	s.mu.Lock()
	if rev > s.savedRev {
		s.savedRev = rev
	}
	s.mu.Unlock()
	return nil
}

// write updates the record, creating it first if the repository has never
// held this workspace. A record that existed and is gone was deleted; it
// is not recreated.
func (s *Store) write(ctx context.Context, enc EncodedRecord, updatedAt time.Time) error {
	err := s.repo.Update(ctx, enc.Patch(updatedAt))
	if errors.Is(err, ideas.ErrNotFound) && enc.ID != s.persistedID {
		if _, err = s.repo.Create(ctx, enc.NewIdea()); err == nil {
			err = s.repo.Update(ctx, enc.Patch(updatedAt))
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersistence, enc.ID, err)
	}
	s.persistedID = enc.ID
	s.log.Debug("workspace saved", "workspace", enc.ID)
	return nil
}

// Close flushes pending changes and stops the timer. Later mutations still
// apply in memory but are never written.
func (s *Store) Close(ctx context.Context) error {
	err := s.Flush(ctx)
	s.Discard()
	return err
}

// Discard stops the timer without writing. Later Flush calls are no-ops.
func (s *Store) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
}
