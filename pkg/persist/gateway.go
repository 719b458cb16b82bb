package persist

import (
	"fmt"
	"sync"
	"time"

	"github.com/tabgrove/tabgrove/internal/store"
	"github.com/tabgrove/tabgrove/pkg/debug"
	"github.com/tabgrove/tabgrove/pkg/model"
)

// DefaultDebounce is how long the gateway waits after the last enqueue
// before flushing, so bursts of mutations produce one write, not one per
// call.
const DefaultDebounce = 200 * time.Millisecond

// DefaultMaxRetries bounds the internal retry loop of a single flush.
const DefaultMaxRetries = 3

// DefaultBackoff is the initial retry delay; it doubles per attempt.
const DefaultBackoff = 50 * time.Millisecond

// Option configures a Gateway.
type Option func(*Gateway)

// WithDebounce sets the write coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(g *Gateway) {
		g.debounce = d
	}
}

// WithRetry sets the per-flush retry budget and initial backoff.
func WithRetry(maxRetries int, backoff time.Duration) Option {
	return func(g *Gateway) {
		g.maxRetries = maxRetries
		g.backoff = backoff
	}
}

// WithOnWarning sets the callback invoked when a flush exhausts its
// retries. Persistence failure is a warning, never a crash; the in-memory
// model stays authoritative until a later write succeeds.
func WithOnWarning(fn func(error)) Option {
	return func(g *Gateway) {
		g.onWarning = fn
	}
}

// Gateway is the write-behind persistence layer for one window. Every
// mutation applies to the in-memory model synchronously first; the owner
// then calls Enqueue, which clones the state and schedules a debounced
// durable write. The caller is never blocked on the store.
type Gateway struct {
	st         store.Store
	key        string
	debounce   time.Duration
	maxRetries int
	backoff    time.Duration
	onWarning  func(error)

	mu      sync.Mutex
	pending *model.WindowState
	timer   *time.Timer
	closed  bool
	wg      sync.WaitGroup
}

// New creates a gateway writing documents for key into st.
func New(st store.Store, key string, opts ...Option) *Gateway {
	if key == "" {
		key = DefaultKey
	}
	g := &Gateway{
		st:         st,
		key:        key,
		debounce:   DefaultDebounce,
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
		onWarning:  func(error) {},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Load reads and decodes the persisted window state, or returns nil (no
// error) when nothing has been persisted yet.
func (g *Gateway) Load() (*model.WindowState, error) {
	data, err := g.st.Get(g.key)
	if err == store.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", g.key, err)
	}
	return DecodeDocument(data)
}

// Enqueue snapshots the state synchronously and schedules a debounced
// flush. Later enqueues within the window replace the snapshot, so only
// the newest state is ever written.
func (g *Gateway) Enqueue(w *model.WindowState) {
	clone := w.Clone()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.pending = clone
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(g.debounce, g.flushAsync)
}

// Flush writes any pending snapshot immediately, bypassing the debounce.
// Used on shutdown and by tests; returns an error wrapping
// model.ErrPersistence when the write could not complete.
func (g *Gateway) Flush() error {
	g.mu.Lock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	pending := g.pending
	g.pending = nil
	g.mu.Unlock()

	if pending == nil {
		return nil
	}
	return g.write(pending)
}

// Close flushes pending state and stops the gateway. Enqueues after Close
// are dropped.
func (g *Gateway) Close() error {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.wg.Wait()
	return g.Flush()
}

// flushAsync runs on the debounce timer goroutine.
func (g *Gateway) flushAsync() {
	g.mu.Lock()
	pending := g.pending
	g.pending = nil
	g.timer = nil
	g.mu.Unlock()

	if pending == nil {
		return
	}
	g.wg.Add(1)
	defer g.wg.Done()

	if err := g.write(pending); err != nil {
		g.onWarning(err)
		// Keep the snapshot so the next enqueue or flush retries it,
		// unless newer state has already been queued.
		g.mu.Lock()
		if g.pending == nil && !g.closed {
			g.pending = pending
		}
		g.mu.Unlock()
	}
}

// write encodes and stores a snapshot, retrying with doubling backoff.
func (g *Gateway) write(w *model.WindowState) error {
	data, err := EncodeDocument(w)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}

	delay := g.backoff
	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(delay)
			delay *= 2
		}
		if lastErr = g.st.Set(g.key, data); lastErr == nil {
			debug.Log("flushed %d bytes to %q (attempt %d)", len(data), g.key, attempt+1)
			return nil
		}
	}
	return fmt.Errorf("%w: %v", model.ErrPersistence, lastErr)
}
