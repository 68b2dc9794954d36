package mathcraft

import (
	"runtime"
	"sync"
)

// Pool size bounds.
const (
	MinPoolSize = 1
	MaxPoolSize = 8
	cpuDivisor  = 2 // each renderer may run a browser, use half the CPUs
)

// RendererPool manages Renderer instances for parallel sheet export.
// Each renderer has its own browser, enabling true parallelism.
// Renderers are created lazily on first acquire to avoid startup delay.
type RendererPool struct {
	size      int
	opts      []Option
	newFn     func(...Option) (*Renderer, error)
	renderers []*Renderer
	sem       chan *Renderer
	mu        sync.Mutex
	created   int
	closed    bool
}

// NewRendererPool creates a pool with capacity for n renderers built with
// opts. Renderers are created when acquired, not at pool creation.
func NewRendererPool(n int, opts ...Option) *RendererPool {
	if n < MinPoolSize {
		n = MinPoolSize
	}
	return &RendererPool{
		size:      n,
		opts:      opts,
		newFn:     NewRenderer,
		renderers: make([]*Renderer, 0, n),
		sem:       make(chan *Renderer, n),
	}
}

// Acquire gets a renderer from the pool, creating one if needed.
// Blocks if all renderers are in use.
func (p *RendererPool) Acquire() (*Renderer, error) {
	select {
	case r, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return r, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create outside the lock
		r, err := p.newFn(p.opts...)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		p.renderers = append(p.renderers, r)
		p.mu.Unlock()
		return r, nil
	}
	p.mu.Unlock()

	// All renderers created, wait for one to be released
	r, ok := <-p.sem
	if !ok {
		return nil, ErrPoolClosed
	}
	return r, nil
}

// Release returns a renderer to the pool.
func (p *RendererPool) Release(r *Renderer) {
	if r == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.sem <- r
	}
}

// Close releases all browser resources.
func (p *RendererPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	renderers := p.renderers
	p.mu.Unlock()

	var lastErr error
	for _, r := range renderers {
		if err := r.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Size returns the pool capacity.
func (p *RendererPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
