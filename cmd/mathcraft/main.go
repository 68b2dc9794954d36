package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	mathcraft "github.com/noirdeleroi/math-problem-craft"
	"github.com/noirdeleroi/math-problem-craft/internal/config"
	"github.com/noirdeleroi/math-problem-craft/internal/hints"
	"github.com/noirdeleroi/math-problem-craft/internal/problem"
	"github.com/noirdeleroi/math-problem-craft/internal/remote"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches the command in args and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}
	cmd, rest := args[1], args[2:]

	// Configure GOMAXPROCS with conditional logging
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if hasVerboseFlag(rest) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(env.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	warnUnknownEnvVars(env)

	ctx, stop := notifyContext(context.Background())
	defer stop()

	var err error
	switch cmd {
	case "convert":
		err = runConvert(ctx, rest, env)
	case "export":
		err = runExport(ctx, rest, env)
	case "review":
		err = runReview(rest, env)
	case "serve":
		err = runServe(ctx, rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "mathcraft %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		err = runHelp(rest, env)
	default:
		printUsage(env.Stderr)
		err = fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, env))
	}
	return exitCodeFor(err)
}

// notifyContext returns a context canceled on the first shutdown signal.
// Call stop to release the signal handler.
func notifyContext(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}

// hasVerboseFlag reports whether -v or --verbose appears before "--".
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		switch a {
		case "--":
			return false
		case "-v", "--verbose":
			return true
		}
	}
	return false
}

// hintFor returns the actionable hint for err, or "".
func hintFor(err error, env *Environment) string {
	switch {
	case errors.Is(err, mathcraft.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, mathcraft.ErrTypesetTimeout), errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, remote.ErrPandocNotFound):
		return hints.ForPandocNotFound()
	case errors.Is(err, remote.ErrConversionFailed), errors.Is(err, remote.ErrBadResponse):
		return hints.ForRemoteUnavailable(env.getenv("MATHCRAFT_ENDPOINT"))
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, problem.ErrUnknownTable):
		return hints.ForUnknownTable(problem.TableNames())
	case errors.Is(err, problem.ErrUnknownEncoding):
		return hints.ForEncoding()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
