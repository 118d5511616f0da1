//go:build !cgo

package ideas

import "errors"

// ErrKuzuUnavailable is returned by Open when a database path is configured
// in a binary built without cgo.
var ErrKuzuUnavailable = errors.New("ideas: KuzuDB storage requires a cgo build")

// Open returns an in-memory store when dbPath is empty. File storage needs
// the cgo KuzuDB driver.
func Open(dbPath string, opts ...Option) (Repository, error) {
	if dbPath == "" {
		return NewMemStore(opts...), nil
	}
	return nil, ErrKuzuUnavailable
}
