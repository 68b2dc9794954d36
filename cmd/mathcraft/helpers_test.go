package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testEnv is an Environment with captured output and a fixed process
// environment.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv(vars map[string]string) *testEnv {
	var stdout, stderr bytes.Buffer
	return &testEnv{
		Environment: &Environment{
			Now:    func() time.Time { return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC) },
			Stdin:  strings.NewReader(""),
			Stdout: &stdout,
			Stderr: &stderr,
			Getenv: func(key string) string { return vars[key] },
			Environ: func() []string {
				out := make([]string, 0, len(vars))
				for k, v := range vars {
					out = append(out, k+"="+v)
				}
				return out
			},
		},
		stdout: &stdout,
		stderr: &stderr,
	}
}

// writeFile creates name under dir with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// sampleCSV holds two records of the default table.
const sampleCSV = "question_id,problem_text,answer,solution_text,checked\n" +
	"101,Найдите $x$: $2x = 4$,2,Делим на 2,false\n" +
	"102,\"\\begin{itemize}\\item $a$\\item $b$\\end{itemize}\",ab,,true\n"
