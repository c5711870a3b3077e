package pagesense

import "context"

// DomainLimiter throttles page captures per target domain so concurrent
// requests to one site do not hammer it.
type DomainLimiter interface {
	// Wait blocks until the limit allows a request to the domain, or the
	// context is canceled.
	Wait(ctx context.Context, domain string) error
}
