package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/forgen"
	"github.com/jward/forgen/internal/script"
	"github.com/jward/forgen/internal/store"
)

var (
	flagOut      string
	flagDB       string
	flagFilter   string
	flagWatch    bool
	flagInterval time.Duration
	flagQuiet    bool
	flagParallel int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "forgen [manifest]",
	Short:         "Extract the type-level shape of a Rust project",
	Long:          "Forgen loads a Cargo project, walks its items and function bodies, and writes a compact JSON document (target/.forgen.json) for code generators.",
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runExtract,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "id store path; keeps item ids stable across edits (default: in memory)")
	rootCmd.PersistentFlags().StringVar(&flagFilter, "filter", "", "Risor script deciding which items are emitted")
	rootCmd.PersistentFlags().IntVar(&flagParallel, "parallel", 0, "parse workers (default: one per CPU)")

	rootCmd.Flags().StringVarP(&flagOut, "out", "o", "", "output path (default: <project>/target/.forgen.json)")
	rootCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "re-run whenever a source file or manifest changes")
	rootCmd.Flags().DurationVar(&flagInterval, "interval", 500*time.Millisecond, "polling interval for --watch")
	rootCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress diagnostics and the summary line")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manifest, err := resolveManifest(args)
	if err != nil {
		return err
	}

	stderr := io.Writer(os.Stderr)
	if flagQuiet {
		stderr = io.Discard
	}

	ids, closeIDs, err := openIDStore()
	if err != nil {
		return err
	}
	defer closeIDs()
	if flagWatch && ids == nil {
		// Watch mode tracks file hashes and keeps ids stable for the session.
		ids = store.NewMemoryStore()
	}

	opts, err := engineOptions(ctx, ids, stderr)
	if err != nil {
		return err
	}
	if flagOut != "" {
		opts = append(opts, forgen.WithOutputPath(flagOut))
	}
	engine := forgen.New(opts...)

	if flagWatch {
		return runWatch(ctx, engine, manifest, ids, flagInterval, stderr)
	}
	return extractOnce(ctx, engine, manifest, stderr)
}

// extractOnce runs one extraction and prints a summary line.
func extractOnce(ctx context.Context, engine *forgen.Engine, manifest string, stderr io.Writer) error {
	start := time.Now()
	res, err := engine.Run(ctx, manifest)
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "Extracted %d files in %s (%d diagnostics)\n",
		len(res.Document.Files),
		time.Since(start).Round(time.Millisecond),
		len(res.Diagnostics),
	)
	fmt.Fprintf(stderr, "Output: %s\n", res.OutputPath)
	return nil
}

// engineOptions builds the options shared by extraction, watch and the MCP
// server.
func engineOptions(ctx context.Context, ids store.DataStore, stderr io.Writer) ([]forgen.Option, error) {
	opts := []forgen.Option{
		forgen.WithDiagnostics(stderr),
		forgen.WithParallel(flagParallel),
	}
	if ids != nil {
		opts = append(opts, forgen.WithIDStore(ids))
	}
	if flagFilter != "" {
		f, err := script.Load(flagFilter, script.WithLog(stderr))
		if err != nil {
			return nil, fmt.Errorf("loading filter: %w", err)
		}
		opts = append(opts, forgen.WithFilter(f.Func(ctx)))
	}
	return opts, nil
}

// openIDStore opens the --db store, or returns a nil store when the flag is
// unset.
func openIDStore() (store.DataStore, func(), error) {
	if flagDB == "" {
		return nil, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(flagDB), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", filepath.Dir(flagDB), err)
	}
	s, err := store.NewStore(flagDB)
	if err != nil {
		return nil, nil, fmt.Errorf("opening id store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("migrating id store: %w", err)
	}
	return s, func() { s.Close() }, nil
}

// resolveManifest returns the absolute path of the manifest argument, which
// may name a Cargo.toml or the directory holding one.
func resolveManifest(args []string) (string, error) {
	p := "."
	if len(args) > 0 {
		p = args[0]
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", p, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("manifest not found: %s", abs)
	}
	if info.IsDir() {
		abs = filepath.Join(abs, "Cargo.toml")
		if _, err := os.Stat(abs); err != nil {
			return "", fmt.Errorf("no Cargo.toml in %s", filepath.Dir(abs))
		}
	}
	return abs, nil
}
