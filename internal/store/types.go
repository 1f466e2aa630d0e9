package store

import "time"

// EntityKey names a semantic entity independently of any run. Key is the
// entity's path within its crate, for example "demo::shapes::Point".
type EntityKey struct {
	Kind string
	Key  string
}

// File is the last indexed state of a watched source file.
type File struct {
	ID          int64
	Path        string
	Hash        string
	LastIndexed time.Time
}
