package rod_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/pagesense"
	"github.com/fwojciec/pagesense/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPool builds a pool whose instances are plain structs with no real
// Chrome behind them.
func newTestPool(t *testing.T, max int, opts ...rod.PoolOption) *rod.Pool {
	t.Helper()
	base := []rod.PoolOption{
		rod.WithMaxBrowsers(max),
		rod.WithLaunchFunc(func(_ context.Context) (*rod.Instance, error) {
			return &rod.Instance{}, nil
		}),
		rod.WithPingFunc(func(_ *rod.Instance) error {
			return nil
		}),
	}
	return rod.NewPool(append(base, opts...)...)
}

func TestPool_BoundNeverExceeded(t *testing.T) {
	t.Parallel()

	const max = 3
	var live atomic.Int64
	var peak atomic.Int64

	p := rod.NewPool(
		rod.WithMaxBrowsers(max),
		rod.WithLaunchFunc(func(_ context.Context) (*rod.Instance, error) {
			n := live.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			return &rod.Instance{}, nil
		}),
		rod.WithPingFunc(func(_ *rod.Instance) error { return nil }),
	)
	defer p.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lease, err := p.Acquire(context.Background())
			if err != nil {
				return
			}
			time.Sleep(5 * time.Millisecond)
			lease.Release()
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(max))
	created, _ := p.Stats()
	assert.LessOrEqual(t, created, max)
}

func TestPool_NoDoubleIssue(t *testing.T) {
	t.Parallel()

	p := newTestPool(t, 1)
	defer p.Close()

	ctx := context.Background()

	a, err := p.Acquire(ctx)
	require.NoError(t, err)

	// Second acquire must block until the first lease is released.
	acquired := make(chan *rod.Lease, 1)
	go func() {
		b, err := p.Acquire(ctx)
		if err == nil {
			acquired <- b
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire returned while first lease was held")
	case <-time.After(50 * time.Millisecond):
	}

	a.Release()

	select {
	case b := <-acquired:
		b.Release()
	case <-time.After(time.Second):
		t.Fatal("second acquire never completed after release")
	}
}

func TestPool_DiscardsDeadIdleInstances(t *testing.T) {
	t.Parallel()

	var launches atomic.Int64
	var failNext atomic.Bool

	p := rod.NewPool(
		rod.WithMaxBrowsers(2),
		rod.WithLaunchFunc(func(_ context.Context) (*rod.Instance, error) {
			launches.Add(1)
			return &rod.Instance{}, nil
		}),
		rod.WithPingFunc(func(_ *rod.Instance) error {
			if failNext.CompareAndSwap(true, false) {
				return errors.New("connection lost")
			}
			return nil
		}),
	)
	defer p.Close()

	lease, err := p.Acquire(context.Background())
	require.NoError(t, err)
	lease.Release()

	// The idle instance fails its next liveness check: Acquire must discard
	// it and create a fresh one rather than handing it out.
	failNext.Store(true)

	lease2, err := p.Acquire(context.Background())
	require.NoError(t, err)
	defer lease2.Release()

	assert.Equal(t, int64(2), launches.Load())
	created, _ := p.Stats()
	assert.Equal(t, 1, created)
}

func TestPool_MarkBrokenClosesInsteadOfReturning(t *testing.T) {
	t.Parallel()

	p := newTestPool(t, 2)
	defer p.Close()

	lease, err := p.Acquire(context.Background())
	require.NoError(t, err)

	lease.MarkBroken()
	lease.Release()

	created, idle := p.Stats()
	assert.Equal(t, 0, created)
	assert.Equal(t, 0, idle)
}

func TestPool_ReleaseAfterCloseClosesInstance(t *testing.T) {
	t.Parallel()

	p := newTestPool(t, 2)

	lease, err := p.Acquire(context.Background())
	require.NoError(t, err)

	require.NoError(t, p.Close())
	lease.Release()

	created, idle := p.Stats()
	assert.Equal(t, 0, idle)
	assert.Equal(t, 0, created)
}

func TestPool_CloseConcurrentWithRelease(t *testing.T) {
	t.Parallel()

	// Whatever order release and Close interleave in, the instance must be
	// closed exactly once: nothing idle survives and the slot count drops
	// to zero.
	for i := 0; i < 100; i++ {
		p := newTestPool(t, 2)

		lease, err := p.Acquire(context.Background())
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			lease.Release()
		}()
		go func() {
			defer wg.Done()
			_ = p.Close()
		}()
		wg.Wait()

		created, idle := p.Stats()
		assert.Equal(t, 0, idle)
		assert.Equal(t, 0, created)
	}
}

func TestPool_DoubleReleaseIsNoOp(t *testing.T) {
	t.Parallel()

	p := newTestPool(t, 1)
	defer p.Close()

	lease, err := p.Acquire(context.Background())
	require.NoError(t, err)

	lease.Release()
	lease.Release()

	created, idle := p.Stats()
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, idle)
}

func TestPool_AcquirePropagatesLaunchFailure(t *testing.T) {
	t.Parallel()

	p := rod.NewPool(
		rod.WithMaxBrowsers(1),
		rod.WithLaunchFunc(func(_ context.Context) (*rod.Instance, error) {
			return nil, errors.New("chrome not found")
		}),
	)

	_, err := p.Acquire(context.Background())

	require.Error(t, err)
	assert.Equal(t, pagesense.EUNAVAILABLE, pagesense.ErrorCode(err))
}

func TestPool_InitializeIdempotent(t *testing.T) {
	t.Parallel()

	var launches atomic.Int64
	p := rod.NewPool(
		rod.WithMaxBrowsers(2),
		rod.WithLaunchFunc(func(_ context.Context) (*rod.Instance, error) {
			launches.Add(1)
			return &rod.Instance{}, nil
		}),
		rod.WithPingFunc(func(_ *rod.Instance) error { return nil }),
	)
	defer p.Close()

	ctx := context.Background()
	require.NoError(t, p.Initialize(ctx))
	require.NoError(t, p.Initialize(ctx))

	assert.Equal(t, int64(1), launches.Load())
}

func TestPool_AcquireBlockedByClose(t *testing.T) {
	t.Parallel()

	p := newTestPool(t, 1)
	require.NoError(t, p.Initialize(context.Background()))
	require.NoError(t, p.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Acquire(ctx)
	require.Error(t, err)
}

func TestPool_HealthCheck(t *testing.T) {
	t.Parallel()

	p := newTestPool(t, 1)

	h := p.HealthCheck(context.Background())
	assert.Equal(t, pagesense.HealthUnavailable, h.Status)

	require.NoError(t, p.Initialize(context.Background()))
	h = p.HealthCheck(context.Background())
	assert.Equal(t, pagesense.HealthHealthy, h.Status)

	lease, err := p.Acquire(context.Background())
	require.NoError(t, err)
	h = p.HealthCheck(context.Background())
	assert.Equal(t, pagesense.HealthDegraded, h.Status)
	lease.Release()

	require.NoError(t, p.Close())
	h = p.HealthCheck(context.Background())
	assert.Equal(t, pagesense.HealthUnavailable, h.Status)
}