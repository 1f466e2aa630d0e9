package store

import (
	"database/sql"
	"fmt"
)

// InternAll resolves every key to its persisted number within a single
// transaction. New keys take the next number of their kind, in the order
// they appear in keys, so a deterministic key order gives deterministic
// numbers on a fresh database.
func (s *Store) InternAll(keys []EntityKey) ([]uint32, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("intern: begin: %w", err)
	}
	defer tx.Rollback()

	next := make(map[string]uint32)
	nums := make([]uint32, len(keys))
	for i, k := range keys {
		var num uint32
		err := tx.QueryRow("SELECT num FROM entities WHERE kind = ? AND key = ?", k.Kind, k.Key).Scan(&num)
		switch {
		case err == nil:
			nums[i] = num
			continue
		case err != sql.ErrNoRows:
			return nil, fmt.Errorf("intern: lookup %s %q: %w", k.Kind, k.Key, err)
		}

		n, ok := next[k.Kind]
		if !ok {
			if n, err = nextNum(tx, k.Kind); err != nil {
				return nil, err
			}
		}
		if _, err := tx.Exec("INSERT INTO entities (kind, key, num) VALUES (?, ?, ?)", k.Kind, k.Key, n); err != nil {
			return nil, fmt.Errorf("intern: insert %s %q: %w", k.Kind, k.Key, err)
		}
		nums[i] = n
		next[k.Kind] = n + 1
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("intern: commit: %w", err)
	}
	return nums, nil
}

func nextNum(tx *sql.Tx, kind string) (uint32, error) {
	var top sql.NullInt64
	if err := tx.QueryRow("SELECT MAX(num) FROM entities WHERE kind = ?", kind).Scan(&top); err != nil {
		return 0, fmt.Errorf("intern: next number for %s: %w", kind, err)
	}
	if !top.Valid {
		return 0, nil
	}
	return uint32(top.Int64) + 1, nil
}

// EntityCount returns how many entities of kind have been interned.
func (s *Store) EntityCount(kind string) (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM entities WHERE kind = ?", kind).Scan(&n); err != nil {
		return 0, fmt.Errorf("entity count: %w", err)
	}
	return n, nil
}
