package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dusk-indust/ideaforge/internal/ideas"
	"github.com/dusk-indust/ideaforge/internal/plan"
)

// Manager keeps one Store per open idea so several workspaces can be live
// at once, each with its own debounce timer.
type Manager struct {
	repo ideas.Repository
	opts []Option

	mu     sync.Mutex
	stores map[string]*Store
}

// NewManager creates a Manager. opts apply to every Store it opens.
func NewManager(repo ideas.Repository, opts ...Option) *Manager {
	return &Manager{
		repo:   repo,
		opts:   opts,
		stores: make(map[string]*Store),
	}
}

// Get returns the open Store for id, loading it from the repository on first
// use.
func (m *Manager) Get(ctx context.Context, id string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[id]; ok {
		return s, nil
	}
	s, err := Open(ctx, m.repo, id, m.opts...)
	if err != nil {
		return nil, err
	}
	m.stores[id] = s
	return s, nil
}

// Create persists ws and opens a Store for it.
func (m *Manager) Create(ctx context.Context, ws plan.Workspace) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.stores[ws.ID]; ok {
		return nil, fmt.Errorf("workspace: %s already open", ws.ID)
	}
	s, err := Create(ctx, m.repo, ws, m.opts...)
	if err != nil {
		return nil, err
	}
	m.stores[ws.ID] = s
	return s, nil
}

// List flushes pending saves so the listing reflects them, then lists the
// repository.
func (m *Manager) List(ctx context.Context) ([]ideas.Summary, error) {
	if err := m.FlushAll(ctx); err != nil {
		return nil, err
	}
	return m.repo.List(ctx)
}

// Remove drops the open handle without saving and deletes the record.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	if s, ok := m.stores[id]; ok {
		s.Discard()
		delete(m.stores, id)
	}
	m.mu.Unlock()
	return m.repo.Remove(ctx, id)
}

// Release flushes and closes the handle for id, if open.
func (m *Manager) Release(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.stores[id]
	delete(m.stores, id)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return s.Close(ctx)
}

// FlushAll writes every dirty handle.
func (m *Manager) FlushAll(ctx context.Context) error {
	var errs []error
	for _, s := range m.open() {
		if err := s.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes and closes every handle. The repository is left open.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	stores := m.stores
	m.stores = make(map[string]*Store)
	m.mu.Unlock()

	var errs []error
	for _, s := range stores {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) open() []*Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Store, 0, len(m.stores))
	for _, s := range m.stores {
		out = append(out, s)
	}
	return out
}
