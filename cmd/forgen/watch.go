package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/jward/forgen"
	"github.com/jward/forgen/internal/discover"
	"github.com/jward/forgen/internal/store"
)

// watcher detects changes to a project's sources and manifests by polling
// their content hashes against the file table of a DataStore.
type watcher struct {
	root  string
	files store.DataStore
}

// changed reports whether any source or manifest under root was added,
// edited or removed since the hashes last recorded in the store. A store
// reopened from an earlier session reports no change for untouched files.
func (w *watcher) changed() (bool, error) {
	entries, err := discover.Files(w.root)
	if err != nil {
		return false, fmt.Errorf("watch: %w", err)
	}

	dirty := false
	keep := make([]string, 0, len(entries))
	for _, e := range entries {
		keep = append(keep, e.Path)
		hash, err := store.HashFile(filepath.Join(w.root, filepath.FromSlash(e.Path)))
		if err != nil {
			// Removed between discovery and hashing; the next poll prunes it.
			continue
		}
		prev, err := w.files.FileByPath(e.Path)
		if err != nil {
			return false, fmt.Errorf("watch: %w", err)
		}
		if prev != nil && prev.Hash == hash {
			continue
		}
		dirty = true
		if err := w.files.UpsertFile(&store.File{Path: e.Path, Hash: hash, LastIndexed: time.Now()}); err != nil {
			return false, fmt.Errorf("watch: %w", err)
		}
	}

	pruned, err := w.files.PruneFiles(keep)
	if err != nil {
		return false, fmt.Errorf("watch: %w", err)
	}
	return dirty || pruned > 0, nil
}

// runWatch extracts once, then again each time the project changes, until
// ctx is cancelled. Failed runs are reported and the loop keeps going.
func runWatch(ctx context.Context, engine *forgen.Engine, manifest string, files store.DataStore, interval time.Duration, stderr io.Writer) error {
	w := &watcher{root: filepath.Dir(manifest), files: files}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fmt.Fprintf(stderr, "Watching %s\n", w.root)
	for first := true; ; first = false {
		changed, err := w.changed()
		switch {
		case err != nil:
			fmt.Fprintf(stderr, "Error: %s\n", err)
		case changed || first:
			if err := extractOnce(ctx, engine, manifest, stderr); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				fmt.Fprintf(stderr, "Error: %s\n", err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
