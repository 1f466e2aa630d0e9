package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/jward/forgen"
	"github.com/jward/forgen/internal/document"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [manifest]",
	Short: "Start an MCP server exposing extraction tools over stdio",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	manifest, err := resolveManifest(args)
	if err != nil {
		return err
	}
	ids, closeIDs, err := openIDStore()
	if err != nil {
		return err
	}
	defer closeIDs()

	// stdout carries the protocol; diagnostics are returned in tool results.
	opts, err := engineOptions(cmd.Context(), ids, io.Discard)
	if err != nil {
		return err
	}
	engine := forgen.New(opts...)

	s := mcpserver.NewMCPServer("forgen", "1.0.0", mcpserver.WithToolCapabilities(false))
	s.AddTool(extractTool(), makeExtractHandler(engine, manifest))
	s.AddTool(fileItemsTool(), makeFileItemsHandler(engine, manifest))

	return mcpserver.ServeStdio(s)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func extractTool() mcp.Tool {
	return mcp.NewTool("extract_types",
		mcp.WithDescription("Extract the whole project: crates, items with stable ids, fields, variants, signatures and function-body locals. Returns the JSON document followed by any diagnostics."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("manifest",
			mcp.Description("Cargo.toml or project directory (default: the server's project)"),
		),
	)
}

func fileItemsTool() mcp.Tool {
	return mcp.NewTool("file_items",
		mcp.WithDescription("Extract the project and return the record of a single source file."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Source file path relative to the project root, e.g. src/lib.rs"),
		),
		mcp.WithString("manifest",
			mcp.Description("Cargo.toml or project directory (default: the server's project)"),
		),
	)
}

// --- Handler factories ---

func makeExtractHandler(engine *forgen.Engine, defaultManifest string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, errResult := build(ctx, engine, req.GetString("manifest", defaultManifest))
		if errResult != nil {
			return errResult, nil
		}
		data, err := document.Marshal(res.Document)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data) + formatDiagnostics(res.Diagnostics)), nil
	}
}

func makeFileItemsHandler(engine *forgen.Engine, defaultManifest string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		if path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		res, errResult := build(ctx, engine, req.GetString("manifest", defaultManifest))
		if errResult != nil {
			return errResult, nil
		}

		for _, f := range res.Document.Files {
			if f.Path != path {
				continue
			}
			data, err := document.Marshal(f)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
			}
			return mcp.NewToolResultText(string(data)), nil
		}
		for _, d := range res.Diagnostics {
			if d.Path == path {
				return mcp.NewToolResultError(d.String()), nil
			}
		}
		return mcp.NewToolResultError(fmt.Sprintf("file %q is not part of the project", path)), nil
	}
}

func build(ctx context.Context, engine *forgen.Engine, manifest string) (*forgen.Result, *mcp.CallToolResult) {
	manifest, err := resolveManifest([]string{manifest})
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	res, err := engine.Build(ctx, manifest)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("extraction failed: %v", err))
	}
	return res, nil
}

func formatDiagnostics(diags []forgen.Diagnostic) string {
	if len(diags) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n\n## Diagnostics (%d)\n\n", len(diags))
	for _, d := range diags {
		fmt.Fprintf(&sb, "- %s\n", d.String())
	}
	return sb.String()
}
