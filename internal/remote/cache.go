package remote

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Result is the outcome of a cached conversion. When Success is false,
// HTML holds the original LaTeX so callers can still display something.
type Result struct {
	HTML    string `json:"html"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// flightTimeout bounds a shared backend call. The call outlives the caller
// that started it, so it cannot use that caller's deadline.
const flightTimeout = 2 * time.Minute

// Cache memoizes successful conversions of a Converter. Concurrent calls
// with the same input share one backend request. Failures are not cached.
type Cache struct {
	backend Converter
	logger  *slog.Logger

	mu      sync.RWMutex
	entries map[string]string
	group   singleflight.Group
}

// NewCache wraps backend. A nil logger discards log output.
func NewCache(backend Converter, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{backend: backend, logger: logger, entries: make(map[string]string)}
}

// Convert returns the HTML for latex. Blank input converts to "" without
// calling the backend.
func (c *Cache) Convert(ctx context.Context, latex string, opts Options) Result {
	if strings.TrimSpace(latex) == "" {
		return Result{Success: true}
	}

	key := cacheKey(latex, opts)
	c.mu.RLock()
	html, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return Result{HTML: html, Success: true}
	}

	flight := c.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
		defer cancel()
		html, err := c.backend.Convert(fctx, latex, opts)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.entries[key] = html
		c.mu.Unlock()
		return html, nil
	})

	// A caller leaving early does not cancel the request other callers
	// are waiting on.
	select {
	case <-ctx.Done():
		return c.fallback(latex, ctx.Err())
	case res := <-flight:
		if res.Err != nil {
			return c.fallback(latex, res.Err)
		}
		return Result{HTML: res.Val.(string), Success: true}
	}
}

func (c *Cache) fallback(latex string, err error) Result {
	c.logger.Warn("latex conversion failed, showing source", "error", err)
	return Result{HTML: latex, Success: false, Error: err.Error()}
}

// Len returns the number of cached conversions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every cached conversion.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]string)
	c.mu.Unlock()
}

// cacheKey joins latex and the JSON form of opts.
func cacheKey(latex string, opts Options) string {
	b, _ := json.Marshal(opts)
	return latex + "-" + string(b)
}
