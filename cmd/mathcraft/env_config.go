package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noirdeleroi/math-problem-craft/internal/config"
)

const envPrefix = "MATHCRAFT_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string        // MATHCRAFT_CONFIG: config file path
	Mode       string        // MATHCRAFT_MODE: structural, document, remote
	Timeout    time.Duration // MATHCRAFT_TIMEOUT: conversion and PDF timeout

	// Tier 2 - Records and I/O
	Table     string // MATHCRAFT_TABLE: record table profile
	Encoding  string // MATHCRAFT_ENCODING: CSV encoding
	OutputDir string // MATHCRAFT_OUTPUT_DIR: default output directory

	// Tier 3 - Extended
	Endpoint string // MATHCRAFT_ENDPOINT: convert-latex URL
	APIKey   string // MATHCRAFT_API_KEY: bearer key for the endpoint
	Style    string // MATHCRAFT_STYLE: CSS style name or path
	Workers  int    // MATHCRAFT_WORKERS: parallel workers
}

// knownEnvVars lists valid MATHCRAFT_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"MATHCRAFT_CONFIG":  true,
	"MATHCRAFT_MODE":    true,
	"MATHCRAFT_TIMEOUT": true,
	// Tier 2 - Records and I/O
	"MATHCRAFT_TABLE":      true,
	"MATHCRAFT_ENCODING":   true,
	"MATHCRAFT_OUTPUT_DIR": true,
	// Tier 3 - Extended
	"MATHCRAFT_ENDPOINT": true,
	"MATHCRAFT_API_KEY":  true,
	"MATHCRAFT_STYLE":    true,
	"MATHCRAFT_WORKERS":  true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed durations and counts are ignored.
func loadEnvConfig(env *Environment) *envConfig {
	cfg := &envConfig{
		ConfigPath: env.getenv("MATHCRAFT_CONFIG"),
		Mode:       env.getenv("MATHCRAFT_MODE"),
		Table:      env.getenv("MATHCRAFT_TABLE"),
		Encoding:   env.getenv("MATHCRAFT_ENCODING"),
		OutputDir:  env.getenv("MATHCRAFT_OUTPUT_DIR"),
		Endpoint:   env.getenv("MATHCRAFT_ENDPOINT"),
		APIKey:     env.getenv("MATHCRAFT_API_KEY"),
		Style:      env.getenv("MATHCRAFT_STYLE"),
	}

	if timeout := env.getenv("MATHCRAFT_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := env.getenv("MATHCRAFT_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars writes warnings for unrecognized MATHCRAFT_* variables.
// Helps catch typos like MATHCRAFT_WORKER instead of MATHCRAFT_WORKERS.
func warnUnknownEnvVars(env *Environment) {
	if env.Environ == nil {
		return
	}
	for _, kv := range env.Environ() {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name := strings.SplitN(kv, "=", 2)[0]
		if !knownEnvVars[name] {
			fmt.Fprintf(env.Stderr, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies set environment variables over the loaded config.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Mode != "" {
		cfg.Render.Mode = env.Mode
	}
	if env.Timeout > 0 {
		cfg.Remote.Timeout = env.Timeout.String()
	}
	if env.Table != "" {
		cfg.Table = env.Table
	}
	if env.Encoding != "" {
		cfg.Input.Encoding = env.Encoding
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Endpoint != "" {
		cfg.Remote.Endpoint = env.Endpoint
	}
	if env.APIKey != "" {
		cfg.Remote.APIKey = env.APIKey
	}
	if env.Style != "" {
		cfg.Sheet.Style = env.Style
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
}

// loadConfig resolves the effective config: --config, then MATHCRAFT_CONFIG,
// then defaults. Environment overrides and then each merge func (CLI flags)
// are applied before the result is validated.
func loadConfig(env *Environment, flagPath string, merges ...func(*config.Config)) (*config.Config, error) {
	ec := loadEnvConfig(env)

	path := flagPath
	if path == "" {
		path = ec.ConfigPath
	}

	cfg := config.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadConfig(path); err != nil {
			return nil, err
		}
	}

	applyEnvConfig(ec, cfg)
	for _, merge := range merges {
		merge(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
