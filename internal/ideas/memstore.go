package ideas

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/dusk-indust/ideaforge/internal/plan"
)

// Compile-time assertion: *MemStore satisfies Repository.
var _ Repository = (*MemStore)(nil)

// MemStore implements Repository with a map. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	opts    options
}

// NewMemStore returns an empty MemStore.
func NewMemStore(opts ...Option) *MemStore {
	return &MemStore{
		records: make(map[string]*Record),
		opts:    buildOptions(opts),
	}
}

// Close is a no-op.
func (m *MemStore) Close() error {
	return nil
}

// List returns summaries ordered by UpdatedAt descending.
func (m *MemStore) List(_ context.Context) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Summary, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r.Summary())
	}
	sortSummaries(out)
	return out, nil
}

// Get returns a copy of the record.
func (m *MemStore) Get(_ context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return copyRecord(r), nil
}

// Create stores a new record stamped with the current time.
func (m *MemStore) Create(_ context.Context, idea NewIdea) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := newID(idea.ID)
	if _, exists := m.records[id]; exists {
		return "", fmt.Errorf("ideas: record %s already exists", id)
	}
	now := m.opts.now()
	m.records[id] = &Record{
		ID:        id,
		Name:      idea.Name,
		RawIdea:   idea.RawIdea,
		Settings:  idea.Settings,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return id, nil
}

// Update applies p to the stored record.
func (m *MemStore) Update(_ context.Context, p Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[p.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.RawIdea != nil {
		r.RawIdea = *p.RawIdea
	}
	if p.Settings != nil {
		r.Settings = *p.Settings
	}
	if p.SectionMeta != nil {
		r.SectionMeta = *p.SectionMeta
	}
	for k, v := range p.Sections {
		if v == "" {
			delete(r.Sections, k)
			continue
		}
		if r.Sections == nil {
			r.Sections = make(map[plan.SectionKey]string)
		}
		r.Sections[k] = v
	}
	r.UpdatedAt = p.UpdatedAt
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = m.opts.now()
	}
	return nil
}

// Remove deletes the record.
func (m *MemStore) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.records, id)
	return nil
}

func copyRecord(r *Record) *Record {
	c := *r
	c.Sections = maps.Clone(r.Sections)
	return &c
}

// sortSummaries orders by UpdatedAt descending, then ID for stability.
func sortSummaries(s []Summary) {
	sort.Slice(s, func(i, j int) bool {
		if !s[i].UpdatedAt.Equal(s[j].UpdatedAt) {
			return s[i].UpdatedAt.After(s[j].UpdatedAt)
		}
		return s[i].ID < s[j].ID
	})
}
