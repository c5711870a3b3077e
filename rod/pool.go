// Package rod implements browser pooling and page capture using Chrome
// automation via go-rod.
package rod

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/pagesense"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxBrowsers is the default pool size.
const DefaultMaxBrowsers = 5

// DefaultMaxPages is the number of pages an instance serves before it is
// recycled. Chrome accumulates memory over time and the baseline never
// returns to initial levels even with proper page cleanup.
const DefaultMaxPages = 75

// Instance is one pooled browser connection: a launched Chrome process and
// its rod handle.
type Instance struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	pages    atomic.Int64
	broken   atomic.Bool
}

// Browser returns the rod handle for this instance.
func (i *Instance) Browser() *rod.Browser {
	return i.browser
}

func (i *Instance) close() {
	if i.browser != nil {
		_ = i.browser.Close()
	}
	if i.launcher != nil {
		i.launcher.Kill()
	}
}

// Pool hands out and reclaims a bounded set of browser connections.
// The number of live instances never exceeds the configured maximum, and
// every acquired instance is either returned or closed exactly once.
//
// Pool is safe for concurrent use.
type Pool struct {
	mu          sync.Mutex
	created     int
	max         int
	maxPages    int64
	idle        chan *Instance
	closing     bool
	initialized bool
	launch      func(ctx context.Context) (*Instance, error)
	ping        func(inst *Instance) error
	logger      *slog.Logger
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithMaxBrowsers sets the maximum number of live browser instances.
// Defaults to DefaultMaxBrowsers.
func WithMaxBrowsers(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.max = n
		}
	}
}

// WithMaxPages sets the per-instance page budget before recycling.
// Defaults to DefaultMaxPages.
func WithMaxPages(n int64) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.maxPages = n
		}
	}
}

// WithLogger sets the pool's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = logger
	}
}

// WithLaunchFunc overrides instance creation. Used by tests to run the pool
// without a real Chrome.
func WithLaunchFunc(fn func(ctx context.Context) (*Instance, error)) PoolOption {
	return func(p *Pool) {
		p.launch = fn
	}
}

// WithPingFunc overrides the liveness check. Used by tests.
func WithPingFunc(fn func(inst *Instance) error) PoolOption {
	return func(p *Pool) {
		p.ping = fn
	}
}

// NewPool creates a browser pool. Call Initialize before first use and
// Close when done.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		max:      DefaultMaxBrowsers,
		maxPages: DefaultMaxPages,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.idle = make(chan *Instance, p.max)
	if p.launch == nil {
		p.launch = launchInstance
	}
	if p.ping == nil {
		p.ping = pingInstance
	}
	return p
}

// Initialize starts the pool, pre-launching a single instance to verify the
// automation runtime works. It is idempotent: repeated calls after a
// successful initialization are no-ops.
func (p *Pool) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	inst, err := p.launch(ctx)
	if err != nil {
		return pagesense.Errorf(pagesense.EUNAVAILABLE, "browser runtime failed to start: %v", err)
	}
	p.created = 1
	p.closing = false
	p.initialized = true
	p.idle <- inst
	p.logger.Debug("browser pool initialized", "max", p.max)
	return nil
}

// Acquire returns a scoped lease on a browser instance. It prefers an idle
// instance, discards idle instances that fail their liveness check, creates
// a new instance while under the maximum, and otherwise blocks until one is
// released or the context is done. Creation failures propagate to the
// caller.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	p.mu.Lock()
	if p.closing {
		p.mu.Unlock()
		return nil, pagesense.Errorf(pagesense.EUNAVAILABLE, "browser pool is closed")
	}
	initialized := p.initialized
	p.mu.Unlock()

	if !initialized {
		if err := p.Initialize(ctx); err != nil {
			return nil, err
		}
	}

	for {
		select {
		case inst := <-p.idle:
			if err := p.checkAlive(inst); err != nil {
				p.discard(inst, err)
				continue
			}
			return &Lease{pool: p, inst: inst}, nil
		default:
		}

		p.mu.Lock()
		if p.closing {
			p.mu.Unlock()
			return nil, pagesense.Errorf(pagesense.EUNAVAILABLE, "browser pool is closed")
		}
		if p.created < p.max {
			p.created++
			p.mu.Unlock()
			inst, err := p.launch(ctx)
			if err != nil {
				p.mu.Lock()
				p.created--
				p.mu.Unlock()
				return nil, pagesense.Errorf(pagesense.EUNAVAILABLE, "browser launch failed: %v", err)
			}
			return &Lease{pool: p, inst: inst}, nil
		}
		p.mu.Unlock()

		// Pool exhausted: block until an instance is released.
		select {
		case inst := <-p.idle:
			if err := p.checkAlive(inst); err != nil {
				p.discard(inst, err)
				continue
			}
			return &Lease{pool: p, inst: inst}, nil
		case <-ctx.Done():
			return nil, pagesense.Errorf(pagesense.ETIMEOUT, "browser acquisition: %v", ctx.Err())
		}
	}
}

// Close marks the pool as closing, drains and closes every idle instance,
// and resets all counters. The pool must be re-initialized before reuse.
// The flag set and the drain happen under one lock: a concurrent release
// either deposits before the drain or observes closing afterwards, so no
// instance can land in the queue once the drain is done.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closing = true
	p.initialized = false
	for {
		select {
		case inst := <-p.idle:
			inst.close()
			p.created--
		default:
			// Outstanding leases decrement the counter as they release.
			return nil
		}
	}
}

// Stats returns the current created and idle instance counts.
func (p *Pool) Stats() (created, idle int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created, len(p.idle)
}

// HealthCheck reports the pool's condition.
func (p *Pool) HealthCheck(ctx context.Context) pagesense.Health {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.closing || !p.initialized:
		return pagesense.Health{Status: pagesense.HealthUnavailable, Reason: "pool not initialized"}
	case p.created >= p.max && len(p.idle) == 0:
		return pagesense.Health{Status: pagesense.HealthDegraded, Reason: "all browser instances busy"}
	default:
		return pagesense.Health{Status: pagesense.HealthHealthy}
	}
}

// checkAlive runs the liveness check plus the page-budget check.
func (p *Pool) checkAlive(inst *Instance) error {
	if inst.broken.Load() {
		return pagesense.Errorf(pagesense.EUNAVAILABLE, "instance marked broken")
	}
	if inst.pages.Load() >= p.maxPages {
		return pagesense.Errorf(pagesense.EUNAVAILABLE, "instance exceeded page budget")
	}
	return p.ping(inst)
}

// discard closes a dead instance and releases its slot.
func (p *Pool) discard(inst *Instance, reason error) {
	inst.close()
	p.mu.Lock()
	p.created--
	p.mu.Unlock()
	p.logger.Warn("discarded browser instance", "reason", reason)
}

// release returns an instance to the idle queue, or closes it if the pool
// is shutting down, the instance died mid-use, or the queue is full.
func (p *Pool) release(inst *Instance) {
	p.mu.Lock()
	closing := p.closing
	p.mu.Unlock()

	if closing {
		p.retire(inst)
		return
	}
	if err := p.checkAlive(inst); err != nil {
		p.discard(inst, err)
		return
	}

	// Recheck closing under the same lock Close drains under, so the
	// instance cannot slip into the queue after the drain.
	p.mu.Lock()
	if p.closing {
		p.mu.Unlock()
		p.retire(inst)
		return
	}
	select {
	case p.idle <- inst:
		p.mu.Unlock()
	default:
		p.mu.Unlock()
		p.discard(inst, pagesense.Errorf(pagesense.EINTERNAL, "idle queue full"))
	}
}

// retire closes an instance during shutdown and frees its slot.
func (p *Pool) retire(inst *Instance) {
	inst.close()
	p.mu.Lock()
	p.created--
	p.mu.Unlock()
}

// Lease is a scoped acquisition of a pooled browser instance. Release must
// be called exactly once; further calls are no-ops.
type Lease struct {
	pool     *Pool
	inst     *Instance
	released atomic.Bool
}

// Browser returns the leased browser handle.
func (l *Lease) Browser() *rod.Browser {
	return l.inst.Browser()
}

// MarkBroken flags the instance as dead so it is closed instead of being
// returned to the pool.
func (l *Lease) MarkBroken() {
	l.inst.broken.Store(true)
}

// IncrementPages records one served page against the instance's recycling
// budget.
func (l *Lease) IncrementPages() {
	l.inst.pages.Add(1)
}

// Release returns the instance to the pool. Safe to call multiple times;
// only the first call has an effect.
func (l *Lease) Release() {
	if !l.released.CompareAndSwap(false, true) {
		return
	}
	l.pool.release(l.inst)
}

// launchInstance starts a new headless Chrome with stability flags.
func launchInstance(_ context.Context) (*Instance, error) {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return nil, err
	}

	return &Instance{browser: browser, launcher: lnchr}, nil
}

// pingInstance performs a cheap CDP round-trip to verify the connection.
func pingInstance(inst *Instance) error {
	if inst.browser == nil {
		return pagesense.Errorf(pagesense.EUNAVAILABLE, "no browser connection")
	}
	if _, err := inst.browser.Version(); err != nil {
		return pagesense.Errorf(pagesense.EUNAVAILABLE, "browser liveness check failed: %v", err)
	}
	return nil
}
