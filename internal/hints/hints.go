// Package hints builds the actionable suffixes appended to CLI errors.
// Every hint reads "\n  hint: <text>".
package hints

import (
	"os"
	"strings"

	"github.com/noirdeleroi/math-problem-craft/internal/fileutil"
)

// AppName is the directory name used under the user config directory.
const AppName = "math-problem-craft"

// IsInContainer reports whether the process runs in a Docker container.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// inCI reports whether a common CI provider is detected.
func inCI() bool {
	for _, key := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect returns hints for headless Chrome launch failures.
func ForBrowserConnect() string {
	var hints []string
	if (inCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	hints = append(hints, "or use --html-only to skip PDF printing")
	return formatHints(hints)
}

// ForPandocNotFound returns the hint for a missing pandoc binary.
func ForPandocNotFound() string {
	return format("install pandoc (https://pandoc.org/installing.html) or set remote.pandoc in the config")
}

// ForRemoteUnavailable returns the hint for an unreachable conversion
// endpoint.
func ForRemoteUnavailable(endpoint string) string {
	if endpoint == "" {
		return format("set remote.endpoint in the config or use --mode structural")
	}
	return format("check " + endpoint + " is reachable, or use --mode structural")
}

// ForTimeout returns a hint about raising the timeout.
func ForTimeout() string {
	return format("for large problem sets, use --timeout flag")
}

// ForConfigNotFound suggests --config and, when searched, the user config
// location.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(filepathSlash(p), AppName+"/") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForUnknownTable lists the table names accepted by --table.
func ForUnknownTable(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available tables: " + strings.Join(available, ", "))
}

// ForEncoding returns the hint for garbled or unknown CSV encodings.
func ForEncoding() string {
	return format("use --encoding utf-8, windows-1251, or koi8-r")
}

func filepathSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
