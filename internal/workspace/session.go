package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/dusk-indust/ideaforge/internal/plan"
)

// Session tracks the single active idea of an interactive client on top of a
// Manager. Moving to another idea writes any pending change of the current
// one before the next is loaded, so the last writer wins per idea.
type Session struct {
	m *Manager

	mu      sync.Mutex
	current *Store
}

// NewSession creates a Session with no active idea.
func NewSession(m *Manager) *Session {
	return &Session{m: m}
}

// Current returns the active Store, or nil.
func (s *Session) Current() *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Switch makes id the active idea. If the pending save of the previous idea
// fails, the switch is abandoned and the previous idea stays active.
func (s *Session) Switch(ctx context.Context, id string) (*Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.ID() == id {
		return s.current, nil
	}
	if err := s.flushCurrent(ctx); err != nil {
		return nil, err
	}
	next, err := s.m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.current = next
	return next, nil
}

// Start creates ws in the repository and makes it the active idea.
func (s *Session) Start(ctx context.Context, ws plan.Workspace) (*Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flushCurrent(ctx); err != nil {
		return nil, err
	}
	next, err := s.m.Create(ctx, ws)
	if err != nil {
		return nil, err
	}
	s.current = next
	return next, nil
}

// Forget clears the active idea if it is id. Used when the idea is removed.
func (s *Session) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID() == id {
		s.current = nil
	}
}

// Close flushes the active idea and clears it. The handle stays open in the
// Manager.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flushCurrent(ctx); err != nil {
		return err
	}
	s.current = nil
	return nil
}

// flushCurrent writes the active idea. Callers hold s.mu.
func (s *Session) flushCurrent(ctx context.Context) error {
	if s.current == nil {
		return nil
	}
	if err := s.current.Flush(ctx); err != nil {
		return fmt.Errorf("workspace: flush %s before switching: %w", s.current.ID(), err)
	}
	return nil
}
