package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/noirdeleroi/math-problem-craft/internal/config"
	"github.com/noirdeleroi/math-problem-craft/internal/remote"
)

const (
	defaultServeAddr  = ":8080"
	convertLatexPath  = "/convert-latex"
	healthPath        = "/healthz"
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// runServe exposes the convert-latex endpoint backed by local pandoc until
// ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args, env)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if len(positional) != 0 {
		return fmt.Errorf("%w: serve takes no arguments", ErrUsage)
	}

	cfg, err := loadConfig(env, flags.common.config, func(c *config.Config) {
		if flags.pandoc != "" {
			c.Remote.Pandoc = flags.pandoc
		}
	})
	if err != nil {
		return err
	}

	logger := env.newLogger(&flags.common)
	if !flags.common.quiet && !flags.common.verbose {
		// Servers log requests at info level unless --quiet or --verbose.
		logger = slog.New(slog.NewTextHandler(env.Stderr, nil))
	}

	ln, err := net.Listen("tcp", flags.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", flags.addr, err)
	}

	srv := &http.Server{
		Handler:           newServeMux(remote.NewPandocConverter(cfg.Remote.Pandoc), logger),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	logger.Info("serving", "addr", ln.Addr().String(), "path", convertLatexPath)
	return serve(ctx, srv, ln, logger)
}

// newServeMux routes the conversion endpoint and a health check.
func newServeMux(conv remote.Converter, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(convertLatexPath, remote.NewHandler(conv, logger))
	mux.HandleFunc(healthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return logRequests(mux, logger)
}

// serve runs srv on ln and shuts it down gracefully when ctx is done.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start),
		)
	})
}
