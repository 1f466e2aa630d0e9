package forgen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/jward/forgen/internal/cargo"
	"github.com/jward/forgen/internal/document"
	"github.com/jward/forgen/internal/identity"
	"github.com/jward/forgen/internal/rustsema"
	"github.com/jward/forgen/internal/sema"
	"github.com/jward/forgen/internal/walk"
)

// OutputName is the document's file name under the project's target
// directory.
const OutputName = ".forgen.json"

// Engine runs extractions. An Engine holds configuration only; every run
// gets a fresh model, id registry and body counters, so runs are
// independent and an Engine may be reused.
type Engine struct {
	diag     io.Writer
	filter   Filter
	ids      IDStore
	parallel int
	outPath  string
}

// Option configures an Engine.
type Option func(*Engine)

// WithDiagnostics writes a line per non-fatal problem to w.
func WithDiagnostics(w io.Writer) Option {
	return func(e *Engine) {
		e.diag = w
	}
}

// WithFilter drops items (and their nested items) that f rejects.
func WithFilter(f Filter) Option {
	return func(e *Engine) {
		e.filter = f
	}
}

// WithIDStore interns entity numbers in s so ids survive across runs even
// when unrelated items are added or removed. Without it each run numbers
// entities afresh in source order.
func WithIDStore(s IDStore) Option {
	return func(e *Engine) {
		e.ids = s
	}
}

// WithParallel sets the number of parse workers used while loading. n < 1
// means one per CPU, the default.
func WithParallel(n int) Option {
	return func(e *Engine) {
		e.parallel = n
	}
}

// WithOutputPath overrides where Run writes the document. The default is
// target/.forgen.json under the project root.
func WithOutputPath(path string) Option {
	return func(e *Engine) {
		e.outPath = path
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of a run.
type Result struct {
	Document    *Document
	Diagnostics []Diagnostic
	Root        string // absolute project directory; empty for Extract
	OutputPath  string // set by Run once the document is written
}

// Run loads the project at manifest (a Cargo.toml or its directory),
// extracts it, and writes the document.
func (e *Engine) Run(ctx context.Context, manifest string) (*Result, error) {
	res, err := e.Build(ctx, manifest)
	if err != nil {
		return nil, err
	}
	out := e.outPath
	if out == "" {
		out = filepath.Join(res.Root, "target", OutputName)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("forgen: run: %w", err)
	}
	if err := document.WriteFile(out, res.Document); err != nil {
		return nil, fmt.Errorf("forgen: %w: %w", ErrSerialization, err)
	}
	res.OutputPath = out
	return res, nil
}

// Build loads and extracts the project at manifest without writing
// anything.
func (e *Engine) Build(ctx context.Context, manifest string) (*Result, error) {
	ws, err := cargo.Load(manifest)
	if err != nil {
		return nil, fmt.Errorf("forgen: %w: %w", ErrProviderUnavailable, err)
	}

	opts := []rustsema.Option{rustsema.WithParallel(e.parallel)}
	if e.ids != nil {
		opts = append(opts, rustsema.WithStore(e.ids))
	}
	m, err := rustsema.Load(ctx, ws, opts...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("forgen: load: %w", err)
		}
		return nil, fmt.Errorf("forgen: %w: %w", ErrProviderUnavailable, err)
	}

	var loadDiags []Diagnostic
	for _, d := range m.Diagnostics() {
		loadDiags = append(loadDiags, e.report(d.Path, d.Err))
	}

	res, err := e.Extract(ctx, m)
	if err != nil {
		return nil, err
	}
	res.Diagnostics = append(loadDiags, res.Diagnostics...)
	res.Root = m.Root()
	return res, nil
}

// crateLocator is implemented by models that know which crate owns a file.
type crateLocator interface {
	FileCrate(path string) (sema.Crate, bool)
}

// Extract assembles the document of m. Files that fail to resolve, or whose
// filter fails, are left out and reported; an identity invariant violation
// or a cancelled context aborts the run.
func (e *Engine) Extract(ctx context.Context, m Model) (*Result, error) {
	res := &Result{Document: &document.Document{}}
	doc := res.Document

	for _, c := range m.Crates() {
		doc.Crates = append(doc.Crates, document.Crate{
			Name:     c.Name,
			RootFile: c.RootFile,
			Edition:  c.Edition,
			IsLocal:  document.Flag(c.Local),
		})
	}

	w := walk.New(m, identity.NewRegistry(), walk.WithFilter(e.filter))
	locator, _ := m.(crateLocator)
	for _, path := range m.Files() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("forgen: extract: %w", err)
		}
		if locator != nil {
			c, _ := locator.FileCrate(path)
			w.SetCrate(c)
		}
		f, err := w.File(path)
		if err != nil {
			if errors.Is(err, identity.ErrInvariant) {
				return nil, fmt.Errorf("forgen: %s: %w", path, err)
			}
			res.Diagnostics = append(res.Diagnostics, e.report(path, err))
			continue
		}
		doc.Files = append(doc.Files, f)
	}
	return res, nil
}

func (e *Engine) report(path string, err error) Diagnostic {
	d := Diagnostic{Path: path, Err: err}
	if e.diag != nil {
		fmt.Fprintf(e.diag, "forgen: %s\n", d)
	}
	return d
}
