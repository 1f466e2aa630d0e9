package store

// DataStore is the interface the frontend and the watch loop use. Both Store
// (SQLite) and MemoryStore (process lifetime only) implement it.
type DataStore interface {
	// InternAll returns the number of every key, assigning the next free
	// number of the key's kind to keys seen for the first time. Numbers are
	// returned in the order of keys.
	InternAll(keys []EntityKey) ([]uint32, error)

	// File state for change detection.
	FileByPath(path string) (*File, error)
	UpsertFile(f *File) error
	PruneFiles(keep []string) (int, error)
}

// Compile-time checks.
var (
	_ DataStore = (*Store)(nil)
	_ DataStore = (*MemoryStore)(nil)
)
