// Package ideas is the persistence surface for idea records. A record holds
// the raw idea, the serialized generation settings, and each of the eight
// section contents as an opaque string. Decoding those strings is the
// workspace package's job.
package ideas

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/dusk-indust/ideaforge/internal/plan"
)

// ErrNotFound is returned when no record has the requested ID.
var ErrNotFound = errors.New("ideas: not found")

// Summary is the listing view of a record.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	RawIdea   string    `json:"rawIdea"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Record is a full stored idea. A section absent from Sections has no
// stored content. SectionMeta is an opaque string the workspace layer uses
// for per-section flags.
type Record struct {
	ID          string
	Name        string
	RawIdea     string
	Settings    string
	Sections    map[plan.SectionKey]string
	SectionMeta string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Summary returns the listing view of r.
func (r *Record) Summary() Summary {
	return Summary{ID: r.ID, Name: r.Name, RawIdea: r.RawIdea, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

// NewIdea is the input to Create. An empty ID asks the repository to assign
// one.
type NewIdea struct {
	ID       string
	Name     string
	RawIdea  string
	Settings string
}

// Patch is a partial update. Nil fields are left alone. A section present in
// Sections with an empty string is cleared; sections absent from the map are
// left alone. A zero UpdatedAt is stamped with the repository clock.
type Patch struct {
	ID          string
	Name        *string
	RawIdea     *string
	Settings    *string
	Sections    map[plan.SectionKey]string
	SectionMeta *string
	UpdatedAt   time.Time
}

// Repository stores idea records.
type Repository interface {
	io.Closer

	// List returns every record, most recently updated first.
	List(ctx context.Context) ([]Summary, error)

	// Get returns the record with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// Create inserts a record and returns its ID.
	Create(ctx context.Context, idea NewIdea) (string, error)

	// Update applies a partial update; ErrNotFound if the record is gone.
	Update(ctx context.Context, p Patch) error

	// Remove deletes a record; ErrNotFound if it does not exist.
	Remove(ctx context.Context, id string) error
}

// Option configures a repository.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
