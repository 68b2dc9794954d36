package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/noirdeleroi/math-problem-craft/internal/fileutil"
	"github.com/noirdeleroi/math-problem-craft/internal/remote"
)

// versionProbeTimeout bounds each `--version` call.
const versionProbeTimeout = 5 * time.Second

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult is the report printed by `mathcraft doctor`.
type doctorResult struct {
	Status   string     `json:"status"`
	Chrome   toolInfo   `json:"chrome"`
	Pandoc   toolInfo   `json:"pandoc"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// toolInfo describes one external binary.
type toolInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox *bool  `json:"sandbox,omitempty"` // Chrome only
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

func (r *doctorResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *doctorResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// runDoctorCmd runs the checks and returns 0 when ready (warnings
// included), 1 when a check failed and 2 on bad flags.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	jsonOutput := fs.Bool("json", false, "machine-readable output")
	pandoc := fs.String("pandoc", remote.DefaultBinary, "pandoc binary to check")
	fs.Usage = func() { printDoctorUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	result := runDoctor(env, *pandoc)
	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor checks the browser used for PDF export, pandoc used by remote
// mode and serve, the environment and the temp directory.
func runDoctor(env *Environment, pandoc string) *doctorResult {
	r := &doctorResult{
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  env.getenv("ROD_NO_SANDBOX"),
			BrowserBin: env.getenv("ROD_BROWSER_BIN"),
		},
	}

	r.Chrome = checkChrome(r)
	r.Pandoc = checkPandoc(r, pandoc)
	checkEnvironment(r, env)
	r.System.TempWritable = checkTempDir(r)

	switch {
	case len(r.Errors) > 0:
		r.Status = statusErrors
	case len(r.Warnings) > 0:
		r.Status = statusWarnings
	default:
		r.Status = statusReady
	}
	return r
}

// checkChrome locates Chrome, honoring ROD_BROWSER_BIN. A missing browser is
// an error: no sheet can be printed without it.
func checkChrome(r *doctorResult) toolInfo {
	path := r.Env.BrowserBin
	if path == "" {
		var found bool
		if path, found = launcher.LookPath(); !found {
			r.fail("Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN (or use --html-only)")
			return toolInfo{}
		}
	}
	if !fileutil.FileExists(path) {
		r.fail("Chrome not found at %s", path)
		return toolInfo{}
	}

	info := toolInfo{Found: true, Path: path}
	if v, err := probeVersion(path); err != nil {
		r.warn("Could not get Chrome version: %v", err)
	} else {
		info.Version = v
	}
	sandbox := r.Env.NoSandbox != "1"
	info.Sandbox = &sandbox
	return info
}

// checkPandoc locates the pandoc binary. Only remote mode without an
// endpoint and serve need it, so a missing binary is a warning.
func checkPandoc(r *doctorResult, binary string) toolInfo {
	path, err := exec.LookPath(binary)
	if err != nil {
		r.warn("pandoc not found (%s): remote mode needs an endpoint, serve will fail", binary)
		return toolInfo{}
	}

	info := toolInfo{Found: true, Path: path}
	if v, err := probeVersion(path); err != nil {
		r.warn("Could not get pandoc version: %v", err)
	} else {
		// The first line is "pandoc X.Y"; the rest is the banner.
		info.Version, _, _ = strings.Cut(v, "\n")
	}
	return info
}

func probeVersion(binary string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), versionProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, binary, "--version").Output() // #nosec G204 -- detected binary
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// checkEnvironment records container and CI detection. Both usually need
// the Chrome sandbox disabled.
func checkEnvironment(r *doctorResult, env *Environment) {
	r.Env.Container, r.Env.ContainerHint = isContainer(env)
	for _, v := range ciVars {
		if env.getenv(v) != "" {
			r.Env.CI = true
			break
		}
	}
	if (r.Env.Container || r.Env.CI) && r.Env.NoSandbox != "1" {
		r.warn("Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer returns whether a container was detected and which signal
// gave it away. MATHCRAFT_CONTAINER=1 forces detection.
func isContainer(env *Environment) (bool, string) {
	switch {
	case env.getenv("MATHCRAFT_CONTAINER") == "1":
		return true, "MATHCRAFT_CONTAINER=1"
	case fileutil.FileExists("/.dockerenv"):
		return true, "/.dockerenv"
	case env.getenv("container") != "": // podman, systemd-nspawn
		return true, "container=" + env.getenv("container")
	case env.getenv("KUBERNETES_SERVICE_HOST") != "":
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkTempDir verifies the directory used for sheet pages and pandoc input
// accepts writes.
func checkTempDir(r *doctorResult) bool {
	dir := os.TempDir()
	probe := filepath.Join(dir, fileutil.TempPrefix+"doctor-test")
	if err := os.WriteFile(probe, []byte("test"), 0o600); err != nil {
		r.fail("Temp directory not writable: %s", dir)
		return false
	}
	_ = os.Remove(probe)
	return true
}

// doctorLine writes one indented report line tagged OK, WARN or ERROR.
func doctorLine(w io.Writer, tag, format string, args ...any) {
	fmt.Fprintf(w, "  [%s] %s\n", tag, fmt.Sprintf(format, args...))
}

func printTool(w io.Writer, title string, t toolInfo, missingTag string) {
	fmt.Fprintln(w, title)
	if !t.Found {
		doctorLine(w, missingTag, "Not found")
	} else {
		doctorLine(w, "OK", "Found at %s", t.Path)
		if t.Version != "" {
			doctorLine(w, "OK", "Version: %s", t.Version)
		}
		if t.Sandbox != nil {
			if *t.Sandbox {
				doctorLine(w, "OK", "Sandbox: enabled")
			} else {
				doctorLine(w, "OK", "Sandbox: disabled (ROD_NO_SANDBOX=1)")
			}
		}
	}
	fmt.Fprintln(w)
}

// printDoctorResult writes the human-readable report.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mathcraft doctor")
	fmt.Fprintln(w)

	printTool(w, "Chrome/Chromium (PDF export)", r.Chrome, "ERROR")
	printTool(w, "Pandoc (remote mode, serve)", r.Pandoc, "WARN")

	fmt.Fprintln(w, "Environment")
	doctorLine(w, "OK", "Platform: %s/%s", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		doctorLine(w, "OK", "Container: detected (%s)", r.Env.ContainerHint)
	}
	if r.Env.CI {
		doctorLine(w, "OK", "CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		doctorLine(w, "OK", "Temp directory: writable")
	} else {
		doctorLine(w, "ERROR", "Temp directory: not writable")
	}
	fmt.Fprintln(w)

	for _, group := range []struct {
		title, tag string
		items      []string
	}{
		{"Warnings:", "WARN", r.Warnings},
		{"Errors:", "ERROR", r.Errors},
	} {
		if len(group.items) == 0 {
			continue
		}
		fmt.Fprintln(w, group.title)
		for _, item := range group.items {
			doctorLine(w, group.tag, "%s", item)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to export")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	default:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
