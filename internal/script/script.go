// Package script runs user-supplied Risor item filters.
//
// A filter script is evaluated once per item with two globals:
//
//	item  map with kind, name, id, path, crate, local and depth
//	log   log.Info / log.Warn / log.Error, written to the diagnostics writer
//
// The value of the script's last expression decides: truthy keeps the item,
// falsy (including nil) drops it together with its nested items.
package script

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"

	"github.com/jward/forgen/internal/walk"
)

// Filter is a loaded filter script.
type Filter struct {
	source string
	label  string
	dir    string // base directory for import statements
	fsys   fs.FS
	log    io.Writer
}

// Option configures a Filter.
type Option func(*Filter)

// WithFS loads the script, and resolves its imports, from fsys instead of
// from disk.
func WithFS(fsys fs.FS) Option {
	return func(f *Filter) {
		f.fsys = fsys
	}
}

// WithLog sets where the script's log calls are written. The default
// discards them.
func WithLog(w io.Writer) Option {
	return func(f *Filter) {
		f.log = w
	}
}

// Load reads the filter script at path. Imports resolve relative to the
// script's directory.
func Load(path string, opts ...Option) (*Filter, error) {
	f := &Filter{label: path, log: io.Discard}
	for _, opt := range opts {
		opt(f)
	}

	if f.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(f.fsys, fsPath)
		if err != nil {
			return nil, fmt.Errorf("script: loading %s from fs: %w", fsPath, err)
		}
		f.source = string(data)
		f.dir = filepath.ToSlash(filepath.Dir(fsPath))
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: loading %s: %w", path, err)
	}
	f.source = string(data)
	f.dir = filepath.Dir(path)
	return f, nil
}

// New returns a Filter for inline source. Import statements are not
// resolved unless WithFS is given.
func New(source string, opts ...Option) *Filter {
	f := &Filter{source: source, label: "<inline>", log: io.Discard}
	for _, opt := range opts {
		opt(f)
	}
	if f.fsys != nil {
		f.dir = "."
	}
	return f
}

// Allow evaluates the script for one item.
func (f *Filter) Allow(ctx context.Context, info walk.ItemInfo) (bool, error) {
	globals := map[string]any{
		"item": itemObject(info),
		"log":  mustProxy(&logObject{w: f.log, prefix: "filter"}),
	}

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	if imp := f.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	result, err := risor.Eval(ctx, f.source, opts...)
	if err != nil {
		return false, fmt.Errorf("script: %s: %w", f.label, err)
	}
	if result == nil {
		return false, nil
	}
	if result.Type() == "error" {
		return false, fmt.Errorf("script: %s: %s", f.label, result.Inspect())
	}
	return result.IsTruthy(), nil
}

// Func adapts the filter to the walker's filter signature. ctx bounds every
// evaluation.
func (f *Filter) Func(ctx context.Context) walk.Filter {
	return func(info walk.ItemInfo) (bool, error) {
		return f.Allow(ctx, info)
	}
}

func itemObject(info walk.ItemInfo) *object.Map {
	local := object.False
	if info.Local {
		local = object.True
	}
	return object.NewMap(map[string]object.Object{
		"kind":  object.NewString(string(info.Kind)),
		"name":  object.NewString(info.Name),
		"id":    object.NewString(string(info.ID)),
		"path":  object.NewString(info.Path),
		"crate": object.NewString(info.Crate),
		"local": local,
		"depth": object.NewInt(int64(info.Depth)),
	})
}

// buildImporter returns an importer for the script's directory, or nil for
// inline scripts without a filesystem.
func (f *Filter) buildImporter(globals map[string]any) importer.Importer {
	if f.dir == "" {
		return nil
	}
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if f.fsys != nil {
		sub, err := fs.Sub(f.fsys, f.dir)
		if err != nil {
			return nil
		}
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    sub,
			Extensions:  []string{".risor"},
		})
	}
	return importer.NewLocalImporter(importer.LocalImporterOptions{
		GlobalNames: globalNames,
		SourceDir:   f.dir,
		Extensions:  []string{".risor"},
	})
}

// logObject provides log.Info/Warn/Error methods for Risor scripts.
type logObject struct {
	w      io.Writer
	prefix string
}

func (l *logObject) Info(msg string) {
	fmt.Fprintf(l.w, "[%s] INFO: %s\n", l.prefix, msg)
}

func (l *logObject) Warn(msg string) {
	fmt.Fprintf(l.w, "[%s] WARN: %s\n", l.prefix, msg)
}

func (l *logObject) Error(msg string) {
	fmt.Fprintf(l.w, "[%s] ERROR: %s\n", l.prefix, msg)
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("script: proxy error: %v", err))
	}
	return p
}
