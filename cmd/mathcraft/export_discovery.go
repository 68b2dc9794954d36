package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/noirdeleroi/math-problem-craft/internal/config"
	"github.com/noirdeleroi/math-problem-craft/internal/fileutil"
)

// ErrInvalidExtension is returned for explicit inputs that are not CSV files.
var ErrInvalidExtension = errors.New("file must have .csv extension")

// SheetToExport represents a single CSV file to render.
type SheetToExport struct {
	InputPath  string
	OutputPath string
}

// discoverSheets finds the CSV files under every input. Directories are
// walked recursively and keep their layout below outputDir.
func discoverSheets(inputs []string, outputDir, ext string) ([]SheetToExport, error) {
	var sheets []SheetToExport
	for _, input := range inputs {
		found, err := discoverInput(input, outputDir, ext)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, found...)
	}
	return sheets, nil
}

func discoverInput(inputPath, outputDir, ext string) ([]SheetToExport, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateCSVExtension(inputPath); err != nil {
			return nil, err
		}
		outPath := resolveOutputPath(inputPath, outputDir, "", ext)
		return []SheetToExport{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	var sheets []SheetToExport
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}
		outPath := resolveOutputPath(path, outputDir, inputPath, ext)
		sheets = append(sheets, SheetToExport{InputPath: path, OutputPath: outPath})
		return nil
	})
	return sheets, err
}

// resolveOutputPath determines the sheet output path for a CSV file.
func resolveOutputPath(inputPath, outputDir, baseInputDir, ext string) string {
	if outputDir != "" && baseInputDir != "" {
		if relPath, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return fileutil.OutputPath(relPath, filepath.Join(outputDir, filepath.Dir(relPath)), ext)
		}
	}
	return fileutil.OutputPath(inputPath, outputDir, ext)
}

// validateCSVExtension checks that the file has a .csv extension.
func validateCSVExtension(path string) error {
	ext := filepath.Ext(path)
	if !strings.EqualFold(ext, ".csv") {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > config.MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, config.MaxWorkers)
	}
	return nil
}
