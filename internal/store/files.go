package store

import (
	"database/sql"
	"fmt"
)

// --- File operations ---

func (s *Store) FileByPath(path string) (*File, error) {
	f := &File{}
	var hash sql.NullString
	var indexed sql.NullTime
	err := s.db.QueryRow(
		"SELECT id, path, hash, last_indexed FROM files WHERE path = ?", path,
	).Scan(&f.ID, &f.Path, &hash, &indexed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	f.Hash = hash.String
	f.LastIndexed = indexed.Time
	return f, nil
}

// UpsertFile records the hash of f.Path, inserting the row if needed. f.ID
// is set to the row id.
func (s *Store) UpsertFile(f *File) error {
	_, err := s.db.Exec(
		`INSERT INTO files (path, hash, last_indexed) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, last_indexed = excluded.last_indexed`,
		f.Path, f.Hash, f.LastIndexed,
	)
	if err != nil {
		return fmt.Errorf("upsert file: %w", err)
	}
	if err := s.db.QueryRow("SELECT id FROM files WHERE path = ?", f.Path).Scan(&f.ID); err != nil {
		return fmt.Errorf("upsert file: id: %w", err)
	}
	return nil
}

// PruneFiles deletes every file row whose path is not in keep and returns
// how many were removed.
func (s *Store) PruneFiles(keep []string) (int, error) {
	query := "DELETE FROM files"
	if len(keep) > 0 {
		query += " WHERE path NOT IN (" + placeholderList(len(keep)) + ")"
	}
	res, err := s.db.Exec(query, stringsToArgs(keep)...)
	if err != nil {
		return 0, fmt.Errorf("prune files: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune files: rows affected: %w", err)
	}
	return int(n), nil
}
