// Package config loads the YAML configuration shared by the mathcraft
// commands: which table is reviewed, how CSV input is decoded, how LaTeX
// is rendered and how problem sheets are printed.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/noirdeleroi/math-problem-craft/internal/fileutil"
	"github.com/noirdeleroi/math-problem-craft/internal/hints"
	"github.com/noirdeleroi/math-problem-craft/internal/mathjax"
	"github.com/noirdeleroi/math-problem-craft/internal/problem"
	"github.com/noirdeleroi/math-problem-craft/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength        = 4096
	MaxURLLength         = 2048
	MaxTitleLength       = 200
	MaxKeyLength         = 512
	MaxPageSizeLength    = 10
	MaxOrientationLength = 10
	MaxWorkers           = 32
)

// Render modes.
const (
	ModeStructural = "structural"
	ModeDocument   = "document"
	ModeRemote     = "remote"
)

// Config holds every setting of the review tool.
type Config struct {
	Table   string         `yaml:"table"`
	Input   InputConfig    `yaml:"input"`
	Output  OutputConfig   `yaml:"output"`
	Render  RenderConfig   `yaml:"render"`
	MathJax mathjax.Config `yaml:"mathjax"`
	Remote  RemoteConfig   `yaml:"remote"`
	Sheet   SheetConfig    `yaml:"sheet"`
	Assets  AssetsConfig   `yaml:"assets"`
	Workers int            `yaml:"workers"` // 0 = auto
}

// InputConfig defines how problem CSV files are read.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"`
	Encoding   string `yaml:"encoding"` // utf-8, windows-1251, koi8-r
	Images     string `yaml:"images"`   // YAML map from image name to uploaded URL
}

// OutputConfig defines where exports are written.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = next to the input
}

// RenderConfig selects the LaTeX converter.
type RenderConfig struct {
	Mode      string `yaml:"mode"`      // structural, document or remote
	AssetPath string `yaml:"assetPath"` // folder for \includegraphics targets
}

// RemoteConfig configures the pandoc-backed conversion.
type RemoteConfig struct {
	Endpoint string `yaml:"endpoint"` // convert-latex URL; empty = run pandoc locally
	APIKey   string `yaml:"apiKey"`
	Pandoc   string `yaml:"pandoc"`  // pandoc binary for local runs and `serve`
	Timeout  string `yaml:"timeout"` // Go duration, e.g. "30s"
}

// SheetConfig configures exported problem sheets.
type SheetConfig struct {
	Title         string     `yaml:"title"`
	Style         string     `yaml:"style"` // embedded style name or CSS file path
	HideSolutions bool       `yaml:"hideSolutions"`
	HTMLOnly      bool       `yaml:"htmlOnly"`
	Page          PageConfig `yaml:"page"`
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // letter, a4, legal
	Orientation string  `yaml:"orientation"` // portrait, landscape
	Margin      float64 `yaml:"margin"`      // inches
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets
}

// TimeoutDuration parses Remote.Timeout. Empty means zero.
func (r RemoteConfig) TimeoutDuration() (time.Duration, error) {
	if r.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: remote.timeout %q", ErrInvalidValue, r.Timeout)
	}
	return d, nil
}

// Validate checks field lengths and enumerated values. LoadConfig calls it;
// callers building a Config by hand should too.
func (c *Config) Validate() error {
	lengths := []struct {
		name  string
		value string
		max   int
	}{
		{"input.defaultDir", c.Input.DefaultDir, MaxPathLength},
		{"input.images", c.Input.Images, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"render.assetPath", c.Render.AssetPath, MaxPathLength},
		{"remote.endpoint", c.Remote.Endpoint, MaxURLLength},
		{"remote.apiKey", c.Remote.APIKey, MaxKeyLength},
		{"remote.pandoc", c.Remote.Pandoc, MaxPathLength},
		{"sheet.title", c.Sheet.Title, MaxTitleLength},
		{"sheet.style", c.Sheet.Style, MaxPathLength},
		{"sheet.page.size", c.Sheet.Page.Size, MaxPageSizeLength},
		{"sheet.page.orientation", c.Sheet.Page.Orientation, MaxOrientationLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
	}
	for _, f := range lengths {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Table != "" {
		if _, err := problem.LookupTable(c.Table); err != nil {
			return fmt.Errorf("table: %w", err)
		}
	}
	if _, err := problem.ParseEncoding(c.Input.Encoding); err != nil {
		return fmt.Errorf("input.encoding: %w", err)
	}

	switch strings.ToLower(c.Render.Mode) {
	case "", ModeStructural, ModeDocument, ModeRemote:
	default:
		return fmt.Errorf("%w: render.mode %q (must be structural, document, or remote)", ErrInvalidValue, c.Render.Mode)
	}

	if c.Remote.Endpoint != "" && !fileutil.IsURL(c.Remote.Endpoint) {
		return fmt.Errorf("%w: remote.endpoint %q must be an http(s) URL", ErrInvalidValue, c.Remote.Endpoint)
	}
	if _, err := c.Remote.TimeoutDuration(); err != nil {
		return err
	}

	if !c.MathJax.IsZero() {
		if err := c.MathJax.Validate(); err != nil {
			return fmt.Errorf("mathjax: %w", err)
		}
	}

	if c.Sheet.Page.Margin < 0 {
		return fmt.Errorf("%w: sheet.page.margin must not be negative", ErrInvalidValue)
	}
	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Workers)
	}
	return nil
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the settings used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Table:   problem.DefaultTableName,
		Input:   InputConfig{Encoding: string(problem.EncodingUTF8)},
		Render:  RenderConfig{Mode: ModeStructural, AssetPath: "images"},
		MathJax: mathjax.Default(),
		Remote:  RemoteConfig{Timeout: "30s"},
		Sheet:   SheetConfig{Title: "Math problems"},
	}
}

// LoadConfig loads a config by file path or by name. Names are searched in
// the current directory then in the user config directory, with .yaml or
// .yml. Unset fields take DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills unset fields from DefaultConfig. The MathJax section
// is replaced as a whole, never merged.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	setDefault(&c.Table, d.Table)
	setDefault(&c.Input.Encoding, d.Input.Encoding)
	setDefault(&c.Render.Mode, d.Render.Mode)
	setDefault(&c.Render.AssetPath, d.Render.AssetPath)
	setDefault(&c.Remote.Timeout, d.Remote.Timeout)
	setDefault(&c.Sheet.Title, d.Sheet.Title)
	if c.MathJax.IsZero() {
		c.MathJax = d.MathJax
	}
}

func setDefault(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

// SearchPaths returns the files LoadConfig tries for name, in order.
func SearchPaths(name string) []string {
	exts := []string{".yaml", ".yml"}
	paths := make([]string, 0, 2*len(exts))
	for _, ext := range exts {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range exts {
			paths = append(paths, filepath.Join(dir, hints.AppName, name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
