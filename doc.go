// Package forgen extracts the type-level shape of a Rust project into a
// compact JSON document that code generators can read without running a
// compiler frontend.
//
// # Pipeline
//
// A run has two phases:
//
//  1. Load: read Cargo.toml and its workspace members, discover the source
//     files, parse them with tree-sitter in parallel, and resolve each
//     crate's module tree into a semantic model (internal/rustsema).
//
//  2. Extract: walk every file of the model in order, minting a stable id
//     for each item and numbering the locals and closures of each function
//     body, then serialize the assembled document once.
//
// # Usage
//
//	e := forgen.New(forgen.WithDiagnostics(os.Stderr))
//	res, err := e.Run(ctx, "path/to/Cargo.toml")
//	if err != nil { ... }
//	fmt.Println(res.OutputPath) // path/to/target/.forgen.json
//
// [Engine.Extract] runs the second phase alone over any [Model], which is
// how the engine is tested against hand-built models.
//
// The forgen command in cmd/forgen wraps the engine: it extracts once, or
// with --watch re-runs whenever a source file or manifest changes, and
// `forgen mcp` serves the same extraction as MCP tools over stdio.
//
// # Output
//
// The document is minimized JSON. Empty lists and unresolved types are
// omitted rather than written as null or placeholders; booleans are 0 or 1.
// Item ids have the form Kind{id:KindId(N)} and are stable across runs for
// the same source, and across edits when an id store is configured with
// [WithIDStore].
//
// # Errors
//
// A file that cannot be resolved is left out and reported as a
// [Diagnostic]. A project that cannot be loaded fails with
// [ErrProviderUnavailable]; a document that cannot be written fails with
// [ErrSerialization].
package forgen
