package forgen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jward/forgen/internal/document"
	"github.com/jward/forgen/internal/store"
)

// benchRustSource is a realistic ~100-line Rust file with structs, enums,
// traits and impls, and function bodies with locals and closures.
const benchRustSource = `use std::collections::HashMap;
use std::fmt;

pub mod config;

/// Severity of a log line.
#[derive(Debug, Clone, Copy, PartialEq)]
pub enum Level {
    Debug,
    Info,
    Warn(u8),
    Error { code: u32, fatal: bool },
}

pub trait Logger {
    type Output;
    const PREFIX: &'static str;
    fn log(&self, level: Level, msg: &str) -> Self::Output;
    fn flush(&mut self) {}
}

pub struct StdoutLogger {
    pub prefix: String,
    lines: Vec<String>,
}

impl Logger for StdoutLogger {
    type Output = usize;
    const PREFIX: &'static str = "out";
    fn log(&self, level: Level, msg: &str) -> usize {
        let line = format!("{}{:?}: {}", self.prefix, level, msg);
        let n = line.len();
        println!("{}", line);
        n
    }
}

pub struct App<L: Logger> {
    logger: L,
    counters: HashMap<String, u64>,
    retries: Option<u32>,
}

impl<L: Logger> App<L> {
    pub fn new(logger: L) -> Self {
        App { logger, counters: HashMap::new(), retries: None }
    }

    pub fn run(&mut self, inputs: &[&str]) -> Result<u64, String> {
        let mut total: u64 = 0;
        let bump = |v: u64| -> u64 { v + 1 };
        for input in inputs {
            let (key, value) = split(input);
            let count = self.counters.entry(key.to_string()).or_insert(0);
            *count = bump(*count);
            if let Some(v) = value {
                let v = v.trim();
                total += v.len() as u64;
            }
        }
        let retries = self.retries.unwrap_or(3);
        let _ = retries;
        Ok(total)
    }
}

fn split(input: &str) -> (&str, Option<&str>) {
    let mut parts = input.splitn(2, '=');
    let key = parts.next().unwrap_or("");
    let value = parts.next();
    (key, value)
}

pub const MAX_INPUTS: usize = 1024;
pub static VERSION: &str = "1.0.0";
pub type Counters = HashMap<String, u64>;

impl fmt::Display for Level {
    fn fmt(&self, f: &mut fmt::Formatter<'_>) -> fmt::Result {
        let name = match self {
            Level::Debug => "debug",
            Level::Info => "info",
            Level::Warn(_) => "warn",
            Level::Error { .. } => "error",
        };
        write!(f, "{}", name)
    }
}

pub fn summarize(levels: &[Level]) -> String {
    let counts: Vec<usize> = levels.iter().map(|l| *l as usize).collect();
    let joined = counts.iter().map(|c| c.to_string()).collect::<Vec<_>>().join(",");
    joined
}
`

const benchConfigSource = `pub struct Config {
    pub name: String,
    pub debug: bool,
    pub tags: Vec<String>,
}

pub fn defaults() -> Config {
    let name = String::from("app");
    Config { name, debug: false, tags: Vec::new() }
}
`

// setupBenchProject writes a one-crate project holding the benchmark
// sources and returns its directory.
func setupBenchProject(b *testing.B) string {
	b.Helper()
	dir := b.TempDir()
	files := map[string]string{
		"Cargo.toml":    "[package]\nname = \"bench\"\nedition = \"2021\"\n",
		"src/lib.rs":    benchRustSource,
		"src/config.rs": benchConfigSource,
	}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			b.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			b.Fatal(err)
		}
	}
	return dir
}

// BenchmarkBuild_Rust measures load, walk and assembly of a small crate
// with the default in-memory id store.
func BenchmarkBuild_Rust(b *testing.B) {
	ctx := context.Background()
	dir := setupBenchProject(b)
	e := New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Build(ctx, dir); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkBuild_SQLiteIDStore measures a rebuild against a persistent id
// store where every entity is already interned.
func BenchmarkBuild_SQLiteIDStore(b *testing.B) {
	ctx := context.Background()
	dir := setupBenchProject(b)
	s, err := store.NewStore(filepath.Join(b.TempDir(), "ids.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer s.Close()
	if err := s.Migrate(); err != nil {
		b.Fatal(err)
	}
	e := New(WithIDStore(s))

	// Intern once as setup.
	if _, err := e.Build(ctx, dir); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Build(ctx, dir); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMarshal measures encoding of an extracted document.
func BenchmarkMarshal(b *testing.B) {
	res, err := New().Build(context.Background(), setupBenchProject(b))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := document.Marshal(res.Document); err != nil {
			b.Fatal(err)
		}
	}
}
