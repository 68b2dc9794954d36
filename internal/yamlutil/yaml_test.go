package yamlutil_test

// Notes:
// - MaxInputSize is a package variable; tests that change it would race with
//   the parallel ones, so the size limit is exercised with real 1 MiB inputs.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/noirdeleroi/math-problem-craft/internal/yamlutil"
)

type sample struct {
	Table   string            `yaml:"table"`
	Workers int               `yaml:"workers"`
	Images  map[string]string `yaml:"images"`
}

// ---------------------------------------------------------------------------
// TestUnmarshal / TestUnmarshalStrict
// ---------------------------------------------------------------------------

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	data := []byte("table: egemathbase\nworkers: 3\nextra: ignored\nimages:\n  a.png: https://cdn.example/a.png\n")
	var got sample
	if err := yamlutil.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := sample{Table: "egemathbase", Workers: 3, Images: map[string]string{"a.png": "https://cdn.example/a.png"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Unmarshal() mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalStrict_UnknownField(t *testing.T) {
	t.Parallel()

	var got sample
	err := yamlutil.UnmarshalStrict([]byte("table: x\ntabel: y\n"), &got)
	if err == nil || !strings.HasPrefix(err.Error(), "yamlutil:") {
		t.Errorf("UnmarshalStrict() error = %v, want yamlutil-prefixed error", err)
	}
}

func TestUnmarshal_InputErrors(t *testing.T) {
	t.Parallel()

	big := []byte("table: " + strings.Repeat("x", yamlutil.MaxInputSize))
	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
	}{
		{name: "nil data", dest: &sample{}, wantErr: yamlutil.ErrNilData},
		{name: "empty data", data: []byte{}, dest: &sample{}, wantErr: yamlutil.ErrNilData},
		{name: "nil destination", data: []byte("table: x"), wantErr: yamlutil.ErrNilDestination},
		{name: "too large", data: big, dest: &sample{}, wantErr: yamlutil.ErrInputTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := yamlutil.Unmarshal(tt.data, tt.dest); !errors.Is(err, tt.wantErr) {
				t.Errorf("Unmarshal() = %v, want %v", err, tt.wantErr)
			}
			if err := yamlutil.UnmarshalStrict(tt.data, tt.dest); !errors.Is(err, tt.wantErr) {
				t.Errorf("UnmarshalStrict() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestReadFile
// ---------------------------------------------------------------------------

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "images.yaml")
	if err := os.WriteFile(path, []byte("images:\n  b.png: /srv/b.png\nnote: x\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var got sample
	if err := yamlutil.ReadFile(path, &got, false); err != nil {
		t.Fatalf("ReadFile(lenient) error = %v", err)
	}
	if got.Images["b.png"] != "/srv/b.png" {
		t.Errorf("Images = %v", got.Images)
	}

	if err := yamlutil.ReadFile(path, &sample{}, true); err == nil {
		t.Error("ReadFile(strict) should reject unknown key note")
	}

	if err := yamlutil.ReadFile(filepath.Join(dir, "missing.yaml"), &got, false); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile(missing) = %v, want ErrNotExist", err)
	}
}
