package cargo

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// TargetKind distinguishes library and binary crate roots.
type TargetKind string

const (
	TargetLib     TargetKind = "lib"
	TargetBin     TargetKind = "bin"
	TargetTest    TargetKind = "test"
	TargetExample TargetKind = "example"
	TargetBench   TargetKind = "bench"
	TargetBuild   TargetKind = "custom-build"
)

// autoDirs are the directories whose files become targets without being
// declared.
var autoDirs = []struct {
	dir  string
	kind TargetKind
}{
	{"tests", TargetTest},
	{"examples", TargetExample},
	{"benches", TargetBench},
}

// Target is one crate root of a package. Every target is its own crate.
type Target struct {
	Name     string // crate name as used in code
	Kind     TargetKind
	RootFile string // relative to the workspace root, slash separated
}

// Package is a local package of the workspace.
type Package struct {
	Name     string // as written in the manifest
	Edition  string
	Dir      string // relative to the workspace root, slash separated; "." for the root
	Manifest string
	Targets  []Target
}

// Workspace is the loaded layout of a Cargo project.
type Workspace struct {
	Root     string    // absolute directory of the root manifest
	Packages []Package // root package first, then members in manifest order
	External []string  // sorted names of dependencies that are not local packages
}

// Load reads the manifest at manifestPath (a Cargo.toml or the directory
// holding one) together with its workspace members.
func Load(manifestPath string) (*Workspace, error) {
	if info, err := os.Stat(manifestPath); err == nil && info.IsDir() {
		manifestPath = filepath.Join(manifestPath, "Cargo.toml")
	}
	abs, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("cargo: %w", err)
	}
	rootManifest, err := readManifest(abs)
	if err != nil {
		return nil, err
	}

	ws := &Workspace{Root: filepath.Dir(abs)}
	var deps []string

	if rootManifest.Package != nil {
		pkg, err := ws.loadPackage(".", rootManifest, rootManifest.Workspace)
		if err != nil {
			return nil, err
		}
		ws.Packages = append(ws.Packages, pkg)
		deps = append(deps, rootManifest.dependencyNames()...)
	}

	if rootManifest.Workspace != nil {
		dirs, err := ws.memberDirs(rootManifest.Workspace)
		if err != nil {
			return nil, err
		}
		for _, dir := range dirs {
			if dir == "." {
				continue
			}
			m, err := readManifest(filepath.Join(ws.Root, filepath.FromSlash(dir), "Cargo.toml"))
			if err != nil {
				return nil, err
			}
			if m.Package == nil {
				continue
			}
			pkg, err := ws.loadPackage(dir, m, rootManifest.Workspace)
			if err != nil {
				return nil, err
			}
			ws.Packages = append(ws.Packages, pkg)
			deps = append(deps, m.dependencyNames()...)
		}
	}

	if len(ws.Targets()) == 0 {
		return nil, fmt.Errorf("cargo: %s: %w", manifestPath, ErrNoTargets)
	}

	local := make(map[string]bool)
	for _, p := range ws.Packages {
		local[CrateName(p.Name)] = true
		for _, t := range p.Targets {
			local[t.Name] = true
		}
	}
	seen := make(map[string]bool)
	for _, d := range deps {
		if local[d] || seen[d] {
			continue
		}
		seen[d] = true
		ws.External = append(ws.External, d)
	}
	sort.Strings(ws.External)
	return ws, nil
}

// Targets returns every crate root of the workspace in load order.
func (ws *Workspace) Targets() []Target {
	var out []Target
	for _, p := range ws.Packages {
		out = append(out, p.Targets...)
	}
	return out
}

// PackageOf returns the package owning target t.
func (ws *Workspace) PackageOf(t Target) (Package, bool) {
	for _, p := range ws.Packages {
		for _, pt := range p.Targets {
			if pt == t {
				return p, true
			}
		}
	}
	return Package{}, false
}

// CrateName converts a package or dependency name to its in-code form.
func CrateName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

func (ws *Workspace) loadPackage(dir string, m *manifest, wsSection *workspaceSection) (Package, error) {
	if m.Package.Name == "" {
		return Package{}, fmt.Errorf("cargo: package in %s has no name", dir)
	}
	pkg := Package{
		Name:     m.Package.Name,
		Edition:  m.edition(wsSection),
		Dir:      dir,
		Manifest: path.Join(dir, "Cargo.toml"),
	}

	// Library target: explicit [lib] or src/lib.rs.
	libPath := "src/lib.rs"
	if m.Lib != nil && m.Lib.Path != "" {
		libPath = m.Lib.Path
	}
	if m.Lib != nil || ws.exists(dir, libPath) {
		name := CrateName(pkg.Name)
		if m.Lib != nil && m.Lib.Name != "" {
			name = CrateName(m.Lib.Name)
		}
		pkg.Targets = append(pkg.Targets, Target{Name: name, Kind: TargetLib, RootFile: path.Join(dir, libPath)})
	}

	// Binary targets: [[bin]] entries, then src/main.rs and src/bin/*.rs
	// unless autobins is off.
	declared := make(map[string]bool)
	for _, b := range m.Bin {
		name := b.Name
		if name == "" {
			name = pkg.Name
		}
		p := b.Path
		if p == "" {
			if name == pkg.Name {
				p = "src/main.rs"
			} else {
				p = "src/bin/" + name + ".rs"
			}
		}
		declared[p] = true
		pkg.Targets = append(pkg.Targets, Target{Name: CrateName(name), Kind: TargetBin, RootFile: path.Join(dir, p)})
	}
	if m.Package.Autobins == nil || *m.Package.Autobins {
		if !declared["src/main.rs"] && ws.exists(dir, "src/main.rs") {
			pkg.Targets = append(pkg.Targets, Target{Name: CrateName(pkg.Name), Kind: TargetBin, RootFile: path.Join(dir, "src/main.rs")})
		}
		for _, b := range ws.autoTargets(dir, "src/bin") {
			if declared[b.Path] {
				continue
			}
			pkg.Targets = append(pkg.Targets, Target{Name: CrateName(b.Name), Kind: TargetBin, RootFile: path.Join(dir, b.Path)})
		}
	}

	for _, auto := range autoDirs {
		for _, t := range ws.autoTargets(dir, auto.dir) {
			pkg.Targets = append(pkg.Targets, Target{Name: CrateName(t.Name), Kind: auto.kind, RootFile: path.Join(dir, t.Path)})
		}
	}
	if ws.exists(dir, "build.rs") {
		pkg.Targets = append(pkg.Targets, Target{Name: "build_script_build", Kind: TargetBuild, RootFile: path.Join(dir, "build.rs")})
	}
	return pkg, nil
}

// memberDirs expands workspace member globs, dropping excluded paths.
func (ws *Workspace) memberDirs(w *workspaceSection) ([]string, error) {
	excluded := make(map[string]bool)
	for _, e := range w.Exclude {
		excluded[path.Clean(e)] = true
	}
	var dirs []string
	seen := make(map[string]bool)
	for _, pattern := range w.Members {
		matches, err := filepath.Glob(filepath.Join(ws.Root, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, fmt.Errorf("cargo: member pattern %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, match := range matches {
			if _, err := os.Stat(filepath.Join(match, "Cargo.toml")); err != nil {
				continue
			}
			rel, err := filepath.Rel(ws.Root, match)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if excluded[rel] || seen[rel] {
				continue
			}
			seen[rel] = true
			dirs = append(dirs, rel)
		}
	}
	return dirs, nil
}

func (ws *Workspace) exists(dir, rel string) bool {
	_, err := os.Stat(filepath.Join(ws.Root, filepath.FromSlash(dir), filepath.FromSlash(rel)))
	return err == nil
}

// autoTargets lists sub/*.rs and sub/*/main.rs of a package, sorted by path.
func (ws *Workspace) autoTargets(dir, sub string) []targetSection {
	entries, err := os.ReadDir(filepath.Join(ws.Root, filepath.FromSlash(dir), filepath.FromSlash(sub)))
	if err != nil {
		return nil
	}
	var out []targetSection
	for _, e := range entries {
		switch {
		case !e.IsDir() && strings.HasSuffix(e.Name(), ".rs"):
			out = append(out, targetSection{Name: strings.TrimSuffix(e.Name(), ".rs"), Path: sub + "/" + e.Name()})
		case e.IsDir() && ws.exists(dir, sub+"/"+e.Name()+"/main.rs"):
			out = append(out, targetSection{Name: e.Name(), Path: sub + "/" + e.Name() + "/main.rs"})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
