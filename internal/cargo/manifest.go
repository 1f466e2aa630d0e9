// Package cargo reads Cargo manifests into the crate layout of a workspace.
package cargo

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ErrNoTargets reports a manifest that defines neither a package with a
// target nor workspace members.
var ErrNoTargets = errors.New("no crate targets")

// DefaultEdition applies when a package does not declare one.
const DefaultEdition = "2015"

// manifest mirrors the parts of Cargo.toml this package reads.
type manifest struct {
	Package           *packageSection       `toml:"package"`
	Lib               *targetSection        `toml:"lib"`
	Bin               []targetSection       `toml:"bin"`
	Workspace         *workspaceSection     `toml:"workspace"`
	Dependencies      map[string]any        `toml:"dependencies"`
	DevDependencies   map[string]any        `toml:"dev-dependencies"`
	BuildDependencies map[string]any        `toml:"build-dependencies"`
	Target            map[string]targetDeps `toml:"target"`
}

type packageSection struct {
	Name     string `toml:"name"`
	Edition  any    `toml:"edition"` // "2021" or { workspace = true }
	Autobins *bool  `toml:"autobins"`
}

type targetSection struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

type workspaceSection struct {
	Members []string `toml:"members"`
	Exclude []string `toml:"exclude"`
	Package struct {
		Edition string `toml:"edition"`
	} `toml:"package"`
}

// targetDeps is a [target.'cfg(..)'.dependencies] table.
type targetDeps struct {
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
}

func readManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cargo: read manifest: %w", err)
	}
	var m manifest
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, fmt.Errorf("cargo: parse %s: %w", path, err)
	}
	return &m, nil
}

// edition resolves the package edition, following workspace inheritance.
func (m *manifest) edition(ws *workspaceSection) string {
	switch e := m.Package.Edition.(type) {
	case string:
		if e != "" {
			return e
		}
	case map[string]any:
		if inherit, _ := e["workspace"].(bool); inherit && ws != nil && ws.Package.Edition != "" {
			return ws.Package.Edition
		}
	}
	return DefaultEdition
}

// dependencyNames returns the crate names a package depends on, as written
// in code: the table key with dashes replaced.
func (m *manifest) dependencyNames() []string {
	var names []string
	add := func(deps map[string]any) {
		for k := range deps {
			names = append(names, CrateName(k))
		}
	}
	add(m.Dependencies)
	add(m.DevDependencies)
	add(m.BuildDependencies)
	for _, t := range m.Target {
		add(t.Dependencies)
		add(t.DevDependencies)
		add(t.BuildDependencies)
	}
	return names
}
