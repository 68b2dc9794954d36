package config

// Notes:
// - LoadConfig tests that resolve names change the working directory with
//   t.Chdir and cannot run in parallel.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/noirdeleroi/math-problem-craft/internal/mathjax"
	"github.com/noirdeleroi/math-problem-craft/internal/problem"
)

// ---------------------------------------------------------------------------
// TestDefaultConfig
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.Table != problem.DefaultTableName {
		t.Errorf("Table = %q", cfg.Table)
	}
	if cfg.Render.Mode != ModeStructural || cfg.Render.AssetPath != "images" {
		t.Errorf("Render = %+v", cfg.Render)
	}
	if cfg.MathJax.IsZero() {
		t.Error("MathJax should default to mathjax.Default()")
	}
	if d, _ := cfg.Remote.TimeoutDuration(); d != 30*time.Second {
		t.Errorf("remote timeout = %v", d)
	}
}

// ---------------------------------------------------------------------------
// TestConfig_Validate
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		wantMsg string
	}{
		{
			name:    "unknown table",
			mutate:  func(c *Config) { c.Table = "problems" },
			wantErr: problem.ErrUnknownTable,
		},
		{
			name:    "unknown encoding",
			mutate:  func(c *Config) { c.Input.Encoding = "latin1" },
			wantErr: problem.ErrUnknownEncoding,
		},
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Render.Mode = "katex" },
			wantErr: ErrInvalidValue,
			wantMsg: "render.mode",
		},
		{
			name:   "mode is case insensitive",
			mutate: func(c *Config) { c.Render.Mode = "Document" },
		},
		{
			name:    "endpoint not a URL",
			mutate:  func(c *Config) { c.Remote.Endpoint = "localhost:8080" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.Remote.Timeout = "soon" },
			wantErr: ErrInvalidValue,
			wantMsg: "remote.timeout",
		},
		{
			name:    "bad mathjax",
			mutate:  func(c *Config) { c.MathJax.Tags = "numbered" },
			wantErr: mathjax.ErrInvalidTags,
		},
		{
			name:   "zero mathjax is allowed",
			mutate: func(c *Config) { c.MathJax = mathjax.Config{} },
		},
		{
			name:    "negative margin",
			mutate:  func(c *Config) { c.Sheet.Page.Margin = -1 },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "too many workers",
			mutate:  func(c *Config) { c.Workers = MaxWorkers + 1 },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "title too long",
			mutate:  func(c *Config) { c.Sheet.Title = strings.Repeat("x", MaxTitleLength+1) },
			wantErr: ErrFieldTooLong,
			wantMsg: "sheet.title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention %q", err, tt.wantMsg)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLoadConfig
// ---------------------------------------------------------------------------

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Path(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, "review.yaml", `
table: egemathbase
input:
  encoding: windows-1251
render:
  mode: remote
remote:
  endpoint: https://fn.example/functions/v1/convert-latex
  timeout: 5s
sheet:
  title: Базовая математика
  hideSolutions: true
  page:
    size: a4
workers: 4
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Table != "egemathbase" || cfg.Input.Encoding != "windows-1251" {
		t.Errorf("table/encoding = %q/%q", cfg.Table, cfg.Input.Encoding)
	}
	if cfg.Render.Mode != ModeRemote || cfg.Render.AssetPath != "images" {
		t.Errorf("Render = %+v, want remote with default asset path", cfg.Render)
	}
	if d, _ := cfg.Remote.TimeoutDuration(); d != 5*time.Second {
		t.Errorf("timeout = %v", d)
	}
	if !cfg.Sheet.HideSolutions || cfg.Sheet.Page.Size != "a4" || cfg.Workers != 4 {
		t.Errorf("Sheet = %+v, Workers = %d", cfg.Sheet, cfg.Workers)
	}
	if cfg.MathJax.IsZero() {
		t.Error("MathJax should fall back to defaults")
	}
}

func TestLoadConfig_MathJaxReplacedWhole(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "mj.yaml", `
mathjax:
  inlineMath:
    - open: '\('
      close: '\)'
  scriptURL: https://cdn.example/mathjax.js
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.MathJax.InlineMath) != 1 || len(cfg.MathJax.DisplayMath) != 0 {
		t.Errorf("MathJax delimiters = %+v / %+v", cfg.MathJax.InlineMath, cfg.MathJax.DisplayMath)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	unknown := writeConfig(t, dir, "unknown.yaml", "tabel: x\n")
	invalid := writeConfig(t, dir, "invalid.yaml", "render:\n  mode: katex\n")

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty name", input: "", wantErr: ErrEmptyConfigName},
		{name: "missing path", input: filepath.Join(dir, "nope.yaml"), wantErr: ErrConfigNotFound},
		{name: "unknown key", input: unknown, wantErr: ErrConfigParse},
		{name: "invalid value", input: invalid, wantErr: ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := LoadConfig(tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfig(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_ByName(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, "oge.yml", "table: OGE_SHFIPI_problems_1_25\n")

	cfg, err := LoadConfig("oge")
	if err != nil {
		t.Fatalf("LoadConfig(name) error = %v", err)
	}
	if cfg.Table != "OGE_SHFIPI_problems_1_25" {
		t.Errorf("Table = %q", cfg.Table)
	}

	_, err = LoadConfig("absent")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("LoadConfig(absent) = %v, want ErrConfigNotFound", err)
	}
	if !strings.Contains(err.Error(), "absent.yaml") || !strings.Contains(err.Error(), "absent.yml") {
		t.Errorf("error %q should list searched paths", err)
	}
}

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := SearchPaths("review")
	if paths[0] != "review.yaml" || paths[1] != "review.yml" {
		t.Errorf("local paths = %v", paths[:2])
	}
	for _, p := range paths[2:] {
		if !strings.Contains(p, "math-problem-craft") {
			t.Errorf("user path %q should be under the app directory", p)
		}
	}
}
