package pipeline

import (
	"context"
	"net"
	"strings"
	"sync"

	"github.com/fwojciec/pagesense"
	"golang.org/x/time/rate"
)

var _ pagesense.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter throttles page captures per target site. Every host gets
// its own token bucket with a burst of 1, so captures of distinct sites
// proceed independently while repeat captures of one site are spaced at
// the configured rate.
type DomainLimiter struct {
	rps      float64
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewDomainLimiter returns a limiter allowing rps captures per second per
// host. A non-positive rps disables throttling.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		rps:      rps,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the host's bucket permits a capture or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	if d.rps <= 0 {
		return ctx.Err()
	}
	return d.limiterFor(hostKey(domain)).Wait(ctx)
}

func (d *DomainLimiter) limiterFor(key string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[key] = l
	}
	return l
}

// hostKey normalizes a domain for bucket lookup. Ports are dropped so
// http and https captures of one site share a bucket.
func hostKey(domain string) string {
	if host, _, err := net.SplitHostPort(domain); err == nil {
		return strings.ToLower(host)
	}
	return strings.ToLower(domain)
}
