package rustsema

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/jward/forgen/internal/cargo"
	"github.com/jward/forgen/internal/discover"
	"github.com/jward/forgen/internal/sema"
	"github.com/jward/forgen/internal/store"
)

// ErrModuleNotFound reports a `mod name;` declaration with no file behind it.
var ErrModuleNotFound = errors.New("module file not found")

// Option configures Load.
type Option func(*loadConfig)

type loadConfig struct {
	ids      store.DataStore
	parallel int
	sources  []string
	explicit bool
}

// WithStore sets where entity numbers are interned. The default is a fresh
// MemoryStore, which numbers entities in load order.
func WithStore(ds store.DataStore) Option {
	return func(c *loadConfig) { c.ids = ds }
}

// WithParallel sets the number of parse workers. n < 1 means one per CPU.
func WithParallel(n int) Option {
	return func(c *loadConfig) { c.parallel = n }
}

// WithSources replaces file discovery with the given project-relative,
// slash-separated source paths.
func WithSources(paths []string) Option {
	return func(c *loadConfig) {
		c.sources = append([]string(nil), paths...)
		c.explicit = true
	}
}

// parseJob is one file handed to a parse worker.
type parseJob struct {
	path string
	src  []byte
}

// Load builds a Model for ws using a three-phase pipeline:
//
//	Phase A (serial):   discover and read every source file.
//	Phase B (parallel): parse and convert via a worker pool.
//	Phase C (serial):   resolve each crate's module tree and intern ids.
//
// Unreadable files and missing module files are diagnostics; only a broken
// discovery, a cancelled context or a failing id store abort the load.
func Load(ctx context.Context, ws *cargo.Workspace, opts ...Option) (*Model, error) {
	cfg := loadConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.ids == nil {
		cfg.ids = store.NewMemoryStore()
	}

	m := &Model{root: ws.Root, state: make(map[string]*fileState)}

	// ---- Phase A: Serial discovery and reads ----
	sources := cfg.sources
	if !cfg.explicit {
		entries, err := discover.Files(ws.Root)
		if err != nil {
			return nil, fmt.Errorf("rustsema: discover: %w", err)
		}
		sources = discover.Sources(entries)
	}
	var jobs []parseJob
	for _, p := range sources {
		if _, dup := m.state[p]; dup {
			continue
		}
		st := &fileState{crate: -1}
		m.state[p] = st
		m.files = append(m.files, p)
		src, err := os.ReadFile(m.abs(p))
		if err != nil {
			st.err = fmt.Errorf("read: %w", err)
			m.diag(p, st.err)
			continue
		}
		jobs = append(jobs, parseJob{path: p, src: src})
	}
	sort.Strings(m.files)

	// ---- Phase B: Parallel parse ----
	if err := m.parseAll(ctx, jobs, cfg.parallel); err != nil {
		return nil, err
	}

	// ---- Phase C: Serial module resolution and interning ----
	for _, t := range ws.Targets() {
		pkg, _ := ws.PackageOf(t)
		m.crates = append(m.crates, sema.Crate{
			Name:     t.Name,
			RootFile: t.RootFile,
			Edition:  pkg.Edition,
			Local:    true,
		})
		if err := m.resolveCrate(ctx, len(m.crates)-1, t.RootFile); err != nil {
			return nil, err
		}
	}
	for _, name := range ws.External {
		m.crates = append(m.crates, sema.Crate{Name: name})
	}
	sort.Strings(m.files)

	if err := m.intern(cfg.ids); err != nil {
		return nil, err
	}
	return m, nil
}

// parseAll parses jobs on n workers. Each worker owns its parser, and trees
// are released as soon as they are converted.
func (m *Model) parseAll(ctx context.Context, jobs []parseJob, n int) error {
	if len(jobs) == 0 {
		return nil
	}
	if n < 1 {
		n = runtime.NumCPU()
	}
	numWorkers := max(min(n, len(jobs)), 1)

	workCh := make(chan parseJob, len(jobs))
	for _, j := range jobs {
		workCh <- j
	}
	close(workCh)

	type result struct {
		path   string
		syntax fileSyntax
		err    error
	}
	resultCh := make(chan result, len(jobs))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range workCh {
				if ctx.Err() != nil {
					resultCh <- result{path: j.path, err: ctx.Err()}
					continue
				}
				syn, err := parseFile(ctx, j.src)
				resultCh <- result{path: j.path, syntax: syn, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for res := range resultCh {
		st := m.state[res.path]
		if res.err != nil {
			st.err = res.err
			continue
		}
		st.syntax = res.syntax
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("rustsema: load: %w", err)
	}
	// Report in path order regardless of completion order.
	for _, p := range m.files {
		st := m.state[p]
		switch {
		case st.err != nil && !isReadErr(st.err):
			m.diag(p, st.err)
		case st.syntax.hasErrors:
			m.diag(p, errors.New("syntax errors; affected items may be incomplete"))
		}
	}
	return nil
}

func parseFile(ctx context.Context, src []byte) (fileSyntax, error) {
	tree, err := parseSource(ctx, src)
	if err != nil {
		return fileSyntax{}, err
	}
	defer tree.Close()
	return convertFile(src, tree.RootNode()), nil
}

// resolveCrate walks the module tree of one crate from its root file. The
// first crate to reach a file owns it; later crates stop there.
func (m *Model) resolveCrate(ctx context.Context, crate int, rootFile string) error {
	type visit struct {
		file   string
		dir    string // directory child modules are looked up in
		module string // key prefix of the file's items
	}
	stack := []visit{{file: rootFile, dir: path.Dir(rootFile), module: rootFile}}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		st, err := m.load(ctx, v.file)
		if err != nil {
			return err
		}
		if st == nil || st.err != nil || st.crate >= 0 {
			continue
		}
		st.crate = crate
		st.module = v.module
		m.order = append(m.order, v.file)

		// Pushed in reverse so files are visited in declaration order.
		decls := st.syntax.mods
		for i := len(decls) - 1; i >= 0; i-- {
			d := decls[i]
			file, dir, ok := m.modFile(v.file, v.dir, d)
			if !ok {
				m.diag(v.file, fmt.Errorf("mod %s: %w", d.item.name, ErrModuleNotFound))
				continue
			}
			module := v.module
			for _, name := range d.inline {
				module += "::" + name
			}
			stack = append(stack, visit{file: file, dir: dir, module: module + "::" + d.item.name})
		}
	}
	return nil
}

// load returns the state of file, reading and parsing it now if it was not
// among the discovered sources. It returns nil when the file does not exist.
func (m *Model) load(ctx context.Context, file string) (*fileState, error) {
	if st, ok := m.state[file]; ok {
		return st, nil
	}
	src, err := os.ReadFile(m.abs(file))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		st := &fileState{crate: -1, err: fmt.Errorf("read: %w", err)}
		m.state[file] = st
		m.files = append(m.files, file)
		m.diag(file, st.err)
		return st, nil
	}
	syn, err := parseFile(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("rustsema: load: %w", ctx.Err())
		}
		st := &fileState{crate: -1, err: err}
		m.state[file] = st
		m.files = append(m.files, file)
		m.diag(file, err)
		return st, nil
	}
	st := &fileState{crate: -1, syntax: syn}
	m.state[file] = st
	m.files = append(m.files, file)
	return st, nil
}

// modFile finds the file of an out-of-line module declared in from, whose
// child modules live in dir. It returns the file and the directory the
// module's own children live in. A #[path] outside inline modules is
// relative to the declaring file's directory.
func (m *Model) modFile(from, dir string, d modDecl) (file, childDir string, ok bool) {
	base := dir
	for _, name := range d.inline {
		base = path.Join(base, name)
	}
	if d.item.pathAttr != "" {
		if len(d.inline) == 0 {
			base = path.Dir(from)
		}
		file = path.Clean(path.Join(base, d.item.pathAttr))
		return file, path.Dir(file), m.exists(file)
	}
	name := d.item.name
	if f := path.Join(base, name+".rs"); m.exists(f) {
		return f, path.Join(base, name), true
	}
	if f := path.Join(base, name, "mod.rs"); m.exists(f) {
		return f, path.Join(base, name), true
	}
	return "", "", false
}

func (m *Model) exists(file string) bool {
	if _, ok := m.state[file]; ok {
		return true
	}
	_, err := os.Stat(m.abs(file))
	return err == nil
}

func (m *Model) abs(file string) string {
	return filepath.Join(m.root, filepath.FromSlash(file))
}

func (m *Model) diag(file string, err error) {
	m.diags = append(m.diags, Diagnostic{Path: file, Err: err})
}

func isReadErr(err error) bool {
	var pe *os.PathError
	return errors.As(err, &pe)
}
