//go:build cgo

package ideas

// Open returns the repository for dbPath: an in-memory store when dbPath is
// empty, a file-backed KuzuDB otherwise.
func Open(dbPath string, opts ...Option) (Repository, error) {
	if dbPath == "" {
		return NewMemStore(opts...), nil
	}
	return NewKuzuFileStore(dbPath, opts...)
}
