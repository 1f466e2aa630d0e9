package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/forgen"
	"github.com/jward/forgen/internal/store"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "Cargo.toml", "[package]\nname = \"demo\"\nedition = \"2021\"\n")
	writeFile(t, dir, "src/lib.rs", "pub struct Point { pub x: f64, pub y: f64 }\n")
	writeFile(t, dir, "src/orphan.rs", "pub fn lost() {}\n")
	return dir
}

// =============================================================================
// resolveManifest
// =============================================================================

func TestResolveManifest_Directory(t *testing.T) {
	t.Parallel()
	dir := newProject(t)

	got, err := resolveManifest([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Cargo.toml"), got)
}

func TestResolveManifest_ManifestFile(t *testing.T) {
	t.Parallel()
	dir := newProject(t)
	manifest := filepath.Join(dir, "Cargo.toml")

	got, err := resolveManifest([]string{manifest})
	require.NoError(t, err)
	assert.Equal(t, manifest, got)
}

func TestResolveManifest_DirectoryWithoutManifest(t *testing.T) {
	t.Parallel()
	_, err := resolveManifest([]string{t.TempDir()})
	assert.ErrorContains(t, err, "no Cargo.toml")
}

func TestResolveManifest_Missing(t *testing.T) {
	t.Parallel()
	_, err := resolveManifest([]string{filepath.Join(t.TempDir(), "nope")})
	assert.ErrorContains(t, err, "manifest not found")
}

// =============================================================================
// Watch
// =============================================================================

func TestWatcher_DetectsEditsAndRemovals(t *testing.T) {
	t.Parallel()
	dir := newProject(t)
	w := &watcher{root: dir, files: store.NewMemoryStore()}

	changed, err := w.changed()
	require.NoError(t, err)
	assert.True(t, changed, "first poll")

	changed, err = w.changed()
	require.NoError(t, err)
	assert.False(t, changed, "nothing touched")

	writeFile(t, dir, "src/lib.rs", "pub struct Point { pub x: f64 }\n")
	changed, err = w.changed()
	require.NoError(t, err)
	assert.True(t, changed, "edited source")

	require.NoError(t, os.Remove(filepath.Join(dir, "src", "orphan.rs")))
	changed, err = w.changed()
	require.NoError(t, err)
	assert.True(t, changed, "removed source")

	writeFile(t, dir, "README.md", "not watched\n")
	changed, err = w.changed()
	require.NoError(t, err)
	assert.False(t, changed, "non-source file")
}

func TestWatcher_ManifestEditIsAChange(t *testing.T) {
	t.Parallel()
	dir := newProject(t)
	w := &watcher{root: dir, files: store.NewMemoryStore()}
	_, err := w.changed()
	require.NoError(t, err)

	writeFile(t, dir, "Cargo.toml", "[package]\nname = \"demo\"\nedition = \"2018\"\n")
	changed, err := w.changed()
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestRunWatch_ExtractsThenStopsOnCancel(t *testing.T) {
	t.Parallel()
	dir := newProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var out bytes.Buffer
	engine := forgen.New(forgen.WithDiagnostics(&out))
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, engine, filepath.Join(dir, "Cargo.toml"), store.NewMemoryStore(), 10*time.Millisecond, io.Discard)
	}()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "target", forgen.OutputName))
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runWatch did not stop")
	}
}

func TestRunWatch_ReopenedStoreStillExtracts(t *testing.T) {
	t.Parallel()
	dir := newProject(t)
	manifest := filepath.Join(dir, "Cargo.toml")
	output := filepath.Join(dir, "target", forgen.OutputName)
	dbPath := filepath.Join(t.TempDir(), "ids.db")

	session := func() {
		t.Helper()
		s, err := store.NewStore(dbPath)
		require.NoError(t, err)
		defer s.Close()
		require.NoError(t, s.Migrate())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		engine := forgen.New(forgen.WithDiagnostics(io.Discard), forgen.WithIDStore(s))
		done := make(chan error, 1)
		go func() {
			done <- runWatch(ctx, engine, manifest, s, 10*time.Millisecond, io.Discard)
		}()

		require.Eventually(t, func() bool {
			_, err := os.Stat(output)
			return err == nil
		}, 5*time.Second, 10*time.Millisecond)
		cancel()
		require.NoError(t, <-done)
	}

	session()
	require.NoError(t, os.Remove(output))

	// Same sources, same recorded hashes: the new session must still write.
	session()
	_, err := os.Stat(output)
	assert.NoError(t, err)
}

// =============================================================================
// MCP tools
// =============================================================================

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text, res.IsError
}

func TestMCP_ExtractTypes(t *testing.T) {
	t.Parallel()
	dir := newProject(t)
	engine := forgen.New(forgen.WithDiagnostics(io.Discard))

	text, isErr := callTool(t, makeExtractHandler(engine, dir), nil)
	assert.False(t, isErr)
	assert.Contains(t, text, `{"crates":[{"name":"demo"`)
	assert.Contains(t, text, `"name":"Point","id":"Struct{id:StructId(0)}"`)
	assert.Contains(t, text, "## Diagnostics (1)")
	assert.Contains(t, text, "src/orphan.rs")

	_, err := os.Stat(filepath.Join(dir, "target"))
	assert.True(t, os.IsNotExist(err), "tools never write the document")
}

func TestMCP_ExtractTypesManifestArgument(t *testing.T) {
	t.Parallel()
	dir := newProject(t)
	engine := forgen.New(forgen.WithDiagnostics(io.Discard))

	text, isErr := callTool(t, makeExtractHandler(engine, t.TempDir()), map[string]any{"manifest": dir})
	assert.False(t, isErr)
	assert.Contains(t, text, `"name":"Point"`)
}

func TestMCP_ExtractTypesBadProject(t *testing.T) {
	t.Parallel()
	engine := forgen.New(forgen.WithDiagnostics(io.Discard))

	text, isErr := callTool(t, makeExtractHandler(engine, t.TempDir()), nil)
	assert.True(t, isErr)
	assert.Contains(t, text, "no Cargo.toml")
}

func TestMCP_FileItems(t *testing.T) {
	t.Parallel()
	dir := newProject(t)
	engine := forgen.New(forgen.WithDiagnostics(io.Discard))
	handler := makeFileItemsHandler(engine, dir)

	text, isErr := callTool(t, handler, map[string]any{"path": "src/lib.rs"})
	assert.False(t, isErr)
	assert.Equal(t,
		`{"path":"src/lib.rs","items":[{"kind":"struct","name":"Point","id":"Struct{id:StructId(0)}","fields":[{"name":"x","ty":"f64"},{"name":"y","ty":"f64"}]}]}`,
		text)

	text, isErr = callTool(t, handler, map[string]any{"path": "src/orphan.rs"})
	assert.True(t, isErr)
	assert.Contains(t, text, "src/orphan.rs:")

	text, isErr = callTool(t, handler, map[string]any{"path": "src/none.rs"})
	assert.True(t, isErr)
	assert.Contains(t, text, "not part of the project")

	text, isErr = callTool(t, handler, nil)
	assert.True(t, isErr)
	assert.Equal(t, "path is required", text)
}
