package hints

// Notes:
// - ForBrowserConnect tests use t.Setenv and swap IsInContainer, so they
//   cannot run in parallel.

import (
	"strings"
	"testing"
)

func clearCIEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "ROD_NO_SANDBOX", "ROD_BROWSER_BIN"} {
		t.Setenv(key, "")
	}
}

func withContainer(t *testing.T, in bool) {
	t.Helper()
	orig := IsInContainer
	t.Cleanup(func() { IsInContainer = orig })
	IsInContainer = func() bool { return in }
}

// ---------------------------------------------------------------------------
// TestForBrowserConnect
// ---------------------------------------------------------------------------

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		container   bool
		wantSandbox bool
		wantBin     bool
	}{
		{name: "ci", env: map[string]string{"CI": "true"}, wantSandbox: true, wantBin: true},
		{name: "docker", container: true, wantSandbox: true, wantBin: true},
		{name: "sandbox already disabled", container: true, env: map[string]string{"ROD_NO_SANDBOX": "1"}, wantBin: true},
		{name: "custom browser set", env: map[string]string{"ROD_BROWSER_BIN": "/usr/bin/chromium"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearCIEnv(t)
			withContainer(t, tt.container)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			hint := ForBrowserConnect()
			if !strings.HasPrefix(hint, "\n  hint: ") {
				t.Errorf("hint %q lacks prefix", hint)
			}
			if got := strings.Contains(hint, "ROD_NO_SANDBOX"); got != tt.wantSandbox {
				t.Errorf("ROD_NO_SANDBOX suggested = %v, want %v", got, tt.wantSandbox)
			}
			if got := strings.Contains(hint, "ROD_BROWSER_BIN"); got != tt.wantBin {
				t.Errorf("ROD_BROWSER_BIN suggested = %v, want %v", got, tt.wantBin)
			}
			if !strings.Contains(hint, "--html-only") {
				t.Error("expected --html-only fallback")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Static hints
// ---------------------------------------------------------------------------

func TestStaticHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "pandoc", got: ForPandocNotFound(), want: "install pandoc"},
		{name: "remote unset", got: ForRemoteUnavailable(""), want: "remote.endpoint"},
		{name: "remote set", got: ForRemoteUnavailable("http://localhost:8080"), want: "http://localhost:8080"},
		{name: "timeout", got: ForTimeout(), want: "--timeout"},
		{name: "output dir", got: ForOutputDirectory(), want: "writable"},
		{name: "encoding", got: ForEncoding(), want: "windows-1251"},
		{name: "tables", got: ForUnknownTable([]string{"a", "b"}), want: "available tables: a, b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if !strings.HasPrefix(tt.got, "\n  hint: ") {
				t.Errorf("%q lacks hint prefix", tt.got)
			}
			if !strings.Contains(tt.got, tt.want) {
				t.Errorf("%q does not contain %q", tt.got, tt.want)
			}
		})
	}

	if got := ForUnknownTable(nil); got != "" {
		t.Errorf("ForUnknownTable(nil) = %q, want empty", got)
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	got := ForConfigNotFound([]string{"./review.yaml", "/home/u/.config/math-problem-craft/review.yaml"})
	if !strings.Contains(got, "--config") {
		t.Errorf("%q should suggest --config", got)
	}
	if !strings.Contains(got, "create /home/u/.config/math-problem-craft/review.yaml") {
		t.Errorf("%q should suggest the user config path", got)
	}

	got = ForConfigNotFound([]string{"./review.yaml"})
	if strings.Contains(got, "create") {
		t.Errorf("%q should not suggest creating a cwd file", got)
	}
}
