package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	mathcraft "github.com/noirdeleroi/math-problem-craft"
	"github.com/noirdeleroi/math-problem-craft/internal/config"
	"github.com/noirdeleroi/math-problem-craft/internal/problem"
)

// ErrRendererInit is reported for sheets no renderer could be created for.
var ErrRendererInit = errors.New("failed to initialize sheet renderer")

// SheetRenderer is the interface for the sheet rendering service.
type SheetRenderer interface {
	RenderSheet(ctx context.Context, input mathcraft.SheetInput) (*mathcraft.SheetResult, error)
}

// Compile-time interface implementation check.
var _ SheetRenderer = (*mathcraft.Renderer)(nil)

// Pool abstracts renderer pool operations for testability.
type Pool interface {
	Acquire() (SheetRenderer, error)
	Release(SheetRenderer)
	Size() int
}

// rendererPool adapts mathcraft.RendererPool to Pool.
type rendererPool struct {
	pool *mathcraft.RendererPool
}

func (p rendererPool) Acquire() (SheetRenderer, error) {
	r, err := p.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Release returns r to the pool. Only renderers from Acquire are accepted.
func (p rendererPool) Release(r SheetRenderer) {
	mr, ok := r.(*mathcraft.Renderer)
	if !ok {
		panic(fmt.Sprintf("rendererPool.Release: unexpected type %T", r))
	}
	p.pool.Release(mr)
}

func (p rendererPool) Size() int { return p.pool.Size() }

// ExportResult holds the outcome of a single sheet export.
type ExportResult struct {
	InputPath  string
	OutputPath string
	Problems   int
	Bytes      int
	Err        error
	Duration   time.Duration
}

// exportParams groups parameters shared across the batch.
type exportParams struct {
	encoding      problem.Encoding
	images        map[string]string
	page          *mathcraft.PageSettings
	title         string
	subtitle      string
	hideSolutions bool
	htmlOnly      bool
}

// runExport renders one problem sheet per CSV file.
func runExport(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseExportFlags(args, env)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, err := loadConfig(env, flags.common.config, func(c *config.Config) {
		mergeRenderFlags(&flags.render, c)
		mergeRecordFlags(&flags.records, c)
		mergeSheetFlags(&flags.sheet, &flags.page, c)
		if flags.workers > 0 {
			c.Workers = flags.workers
		}
	})
	if err != nil {
		return err
	}

	params, err := buildExportParams(cfg, &flags.sheet)
	if err != nil {
		return err
	}

	inputs := positional
	if len(inputs) == 0 {
		if cfg.Input.DefaultDir == "" {
			return ErrNoInput
		}
		inputs = []string{cfg.Input.DefaultDir}
	}
	outputDir := flags.output
	if outputDir == "" {
		outputDir = cfg.Output.DefaultDir
	}
	ext := ".pdf"
	if params.htmlOnly {
		ext = ".html"
	}
	sheets, err := discoverSheets(inputs, outputDir, ext)
	if err != nil {
		return err
	}
	if len(sheets) == 0 {
		return fmt.Errorf("%w: no .csv files found in %v", ErrNoInput, inputs)
	}

	logger := env.newLogger(&flags.common)
	opts, err := buildRendererOptions(cfg, logger)
	if err != nil {
		return err
	}

	size := mathcraft.ResolvePoolSize(cfg.Workers)
	logger.Debug("starting export", "sheets", len(sheets), "workers", size)
	pool := mathcraft.NewRendererPool(size, opts...)
	defer pool.Close()

	results := exportBatch(ctx, rendererPool{pool: pool}, sheets, params)
	if failed := printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env); failed > 0 {
		return firstError(results, failed)
	}
	return nil
}

// buildExportParams resolves the batch-wide settings from config.
func buildExportParams(cfg *config.Config, sheet *sheetFlags) (*exportParams, error) {
	enc, err := problem.ParseEncoding(cfg.Input.Encoding)
	if err != nil {
		return nil, err
	}
	table, err := lookupTable(cfg)
	if err != nil {
		return nil, err
	}
	images, err := loadImageMap(cfg.Input.Images)
	if err != nil {
		return nil, fmt.Errorf("%w: image map: %w", ErrReadInput, err)
	}
	page, err := buildPageSettings(cfg)
	if err != nil {
		return nil, err
	}

	subtitle := sheet.subtitle
	if subtitle == "" {
		subtitle = table.Name
	}
	return &exportParams{
		encoding:      enc,
		images:        images,
		page:          page,
		title:         cfg.Sheet.Title,
		subtitle:      subtitle,
		hideSolutions: cfg.Sheet.HideSolutions,
		htmlOnly:      cfg.Sheet.HTMLOnly,
	}, nil
}

// exportBatch processes sheets concurrently using the renderer pool.
func exportBatch(ctx context.Context, pool Pool, sheets []SheetToExport, params *exportParams) []ExportResult {
	if len(sheets) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(sheets))

	results := make([]ExportResult, len(sheets))
	var wg sync.WaitGroup
	jobs := make(chan int, len(sheets))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			svc, err := pool.Acquire()
			if err != nil {
				// Renderer creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = ExportResult{
						InputPath: sheets[idx].InputPath,
						Err:       fmt.Errorf("%w: %w", ErrRendererInit, err),
					}
				}
				return
			}
			defer pool.Release(svc)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ExportResult{
						InputPath: sheets[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = exportSheet(ctx, svc, sheets[idx], params)
			}
		}()
	}

	for i := range sheets {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// exportSheet renders a single CSV file and writes the result.
func exportSheet(ctx context.Context, svc SheetRenderer, s SheetToExport, params *exportParams) ExportResult {
	start := time.Now()
	result := ExportResult{
		InputPath:  s.InputPath,
		OutputPath: s.OutputPath,
	}
	fail := func(err error) ExportResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	problems, err := readProblems(s.InputPath, params.encoding)
	if err != nil {
		return fail(err)
	}
	for i := range problems {
		problems[i] = problem.ApplyImageMap(problems[i], params.images)
	}
	result.Problems = len(problems)

	out, err := svc.RenderSheet(ctx, mathcraft.SheetInput{
		Problems:      problems,
		Title:         params.title,
		Subtitle:      params.subtitle,
		BaseDir:       filepath.Dir(s.InputPath),
		Page:          params.page,
		HideSolutions: params.hideSolutions,
		HTMLOnly:      params.htmlOnly,
	})
	if err != nil {
		return fail(err)
	}

	data := out.PDF
	if params.htmlOnly {
		data = out.HTML
	}
	if err := writeOutputFile(s.OutputPath, data); err != nil {
		return fail(err)
	}
	result.Bytes = len(data)
	result.Duration = time.Since(start)
	return result
}

// readProblems loads the records of one CSV file.
func readProblems(path string, enc problem.Encoding) ([]problem.Problem, error) {
	f, err := os.Open(path) // #nosec G304 -- discovered or user-provided path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	defer f.Close()

	problems, err := problem.ReadCSV(f, enc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return problems, nil
}

// ResultSummary holds the count of succeeded and failed exports.
type ResultSummary struct {
	Succeeded int
	Failed    int
	Problems  int
	Bytes     uint64
}

// countResults tallies succeeded and failed exports.
func countResults(results []ExportResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		summary.Problems += r.Problems
		summary.Bytes += uint64(r.Bytes) // #nosec G115 -- lengths are non-negative
	}
	return summary
}

// printResultsWithWriter outputs export results and returns the failure count.
func printResultsWithWriter(results []ExportResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if quiet {
			continue
		}

		size := humanize.Bytes(uint64(r.Bytes)) // #nosec G115 -- lengths are non-negative
		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%s, %s, %v)\n", r.InputPath, r.OutputPath,
				problemCount(r.Problems), size, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s (%s, %s)\n", r.OutputPath, problemCount(r.Problems), size)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed, %s, %s written\n",
			summary.Succeeded, summary.Failed, problemCount(summary.Problems), humanize.Bytes(summary.Bytes))
	}

	return summary.Failed
}

// firstError returns the first failure, annotated with the failure count.
func firstError(results []ExportResult, failed int) error {
	for _, r := range results {
		if r.Err != nil {
			if failed == 1 {
				return r.Err
			}
			return fmt.Errorf("%d sheets failed, first: %w", failed, r.Err)
		}
	}
	return nil
}

func problemCount(n int) string {
	if n == 1 {
		return "1 problem"
	}
	return humanize.Comma(int64(n)) + " problems"
}
