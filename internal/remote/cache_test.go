package remote

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCache_Convert(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := NewCache(converterFunc(func(_ context.Context, latex string, _ Options) (string, error) {
		calls.Add(1)
		if latex == "fail" {
			return "", errors.New("service down")
		}
		return "<b>" + latex + "</b>", nil
	}), nil)
	ctx := context.Background()

	if got := c.Convert(ctx, " \n\t", Options{}); got != (Result{Success: true}) {
		t.Errorf("blank input = %+v, want empty success", got)
	}
	if calls.Load() != 0 {
		t.Fatal("blank input must not reach the backend")
	}

	first := c.Convert(ctx, "x", Options{})
	second := c.Convert(ctx, "x", Options{})
	if first != second || first.HTML != "<b>x</b>" || !first.Success {
		t.Errorf("cached results = %+v, %+v", first, second)
	}
	if calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1", calls.Load())
	}

	c.Convert(ctx, "x", Options{MathJax: Bool(false)})
	if calls.Load() != 2 {
		t.Error("different options must use a different cache entry")
	}

	failed := c.Convert(ctx, "fail", Options{})
	if failed.Success || failed.HTML != "fail" || failed.Error != "service down" {
		t.Errorf("failure result = %+v, want raw latex fallback", failed)
	}
	c.Convert(ctx, "fail", Options{})
	if calls.Load() != 4 {
		t.Error("failures must not be cached")
	}

	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	c.Convert(ctx, "x", Options{})
	if calls.Load() != 5 {
		t.Error("Clear should force a new backend call")
	}
}

func TestCache_ConcurrentSameKey(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	c := NewCache(converterFunc(func(context.Context, string, Options) (string, error) {
		calls.Add(1)
		<-release
		return "ok", nil
	}), nil)

	const n = 8
	var wg sync.WaitGroup
	results := make([]Result, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.Convert(context.Background(), "same", Options{})
		}()
	}

	// Give the goroutines time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, r := range results {
		if !r.Success || r.HTML != "ok" {
			t.Errorf("result %d = %+v", i, r)
		}
	}
	if got := calls.Load(); got > 2 {
		t.Errorf("backend calls = %d, want in-flight requests shared", got)
	}
}

func TestCache_CallerCancelDoesNotAbortSharedCall(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	c := NewCache(converterFunc(func(ctx context.Context, _ string, _ Options) (string, error) {
		calls.Add(1)
		close(started)
		select {
		case <-release:
			return "ok", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan Result, 1)
	go func() { first <- c.Convert(ctx, "same", Options{}) }()
	<-started

	cancel()
	if got := <-first; got.Success || !strings.Contains(got.Error, context.Canceled.Error()) {
		t.Errorf("canceled caller = %+v, want fallback with cancellation", got)
	}

	// The backend call is still running; a second caller joins it.
	second := make(chan Result, 1)
	go func() { second <- c.Convert(context.Background(), "same", Options{}) }()
	time.Sleep(20 * time.Millisecond)
	close(release)

	if got := <-second; !got.Success || got.HTML != "ok" {
		t.Errorf("waiting caller = %+v, want shared success", got)
	}
	if calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1", calls.Load())
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want the shared result cached", c.Len())
	}
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	if got := cacheKey("x", Options{}); got != "x-{}" {
		t.Errorf("cacheKey = %q", got)
	}
	if got := cacheKey("x", Options{To: "html5"}); got != `x-{"to":"html5"}` {
		t.Errorf("cacheKey = %q", got)
	}
}
