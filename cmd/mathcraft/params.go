package main

import (
	"log/slog"

	mathcraft "github.com/noirdeleroi/math-problem-craft"
	"github.com/noirdeleroi/math-problem-craft/internal/config"
	"github.com/noirdeleroi/math-problem-craft/internal/problem"
	"github.com/noirdeleroi/math-problem-craft/internal/remote"
	"github.com/noirdeleroi/math-problem-craft/internal/yamlutil"
)

// newRemoteBackend picks the remote converter: the HTTP endpoint when one is
// configured, the local pandoc binary otherwise.
func newRemoteBackend(cfg *config.Config) (remote.Converter, error) {
	timeout, err := cfg.Remote.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if cfg.Remote.Endpoint != "" {
		return remote.NewClient(cfg.Remote.Endpoint,
			remote.WithTimeout(timeout),
			remote.WithAPIKey(cfg.Remote.APIKey),
		), nil
	}
	return remote.NewPandocConverter(cfg.Remote.Pandoc), nil
}

// buildRendererOptions converts the effective config into renderer options.
// The remote cache is only built for remote mode.
func buildRendererOptions(cfg *config.Config, logger *slog.Logger) ([]mathcraft.Option, error) {
	mode, err := mathcraft.ParseMode(cfg.Render.Mode)
	if err != nil {
		return nil, err
	}

	opts := []mathcraft.Option{
		mathcraft.WithMode(mode),
		mathcraft.WithLatexAssetPath(cfg.Render.AssetPath),
		mathcraft.WithMathJax(cfg.MathJax),
		mathcraft.WithLogger(logger),
	}

	timeout, err := cfg.Remote.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		opts = append(opts, mathcraft.WithTimeout(timeout))
	}
	if cfg.Sheet.Style != "" {
		opts = append(opts, mathcraft.WithStyle(cfg.Sheet.Style))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, mathcraft.WithAssetPath(cfg.Assets.BasePath))
	}

	if mode == mathcraft.ModeRemote {
		backend, err := newRemoteBackend(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, mathcraft.WithRemote(remote.NewCache(backend, logger), remote.Options{}))
	}
	return opts, nil
}

// buildPageSettings returns page settings from config, filling unset fields
// with the defaults.
func buildPageSettings(cfg *config.Config) (*mathcraft.PageSettings, error) {
	page := mathcraft.DefaultPageSettings()
	if cfg.Sheet.Page.Size != "" {
		page.Size = cfg.Sheet.Page.Size
	}
	if cfg.Sheet.Page.Orientation != "" {
		page.Orientation = cfg.Sheet.Page.Orientation
	}
	if cfg.Sheet.Page.Margin > 0 {
		page.Margin = cfg.Sheet.Page.Margin
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return page, nil
}

// loadImageMap reads the optional image name to URL map.
func loadImageMap(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	images := make(map[string]string)
	if err := yamlutil.ReadFile(path, &images, true); err != nil {
		return nil, err
	}
	return images, nil
}

// lookupTable resolves the configured table profile.
func lookupTable(cfg *config.Config) (problem.Table, error) {
	return problem.LookupTable(cfg.Table)
}
