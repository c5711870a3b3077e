// Package bloom provides URL deduplication for batch extraction runs using
// Bloom filters.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter wraps a Bloom filter for URL deduplication. Not safe for
// concurrent use; batch mode dedupes its input before fanning out.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected URLs with the
// given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Seen records the URL and reports whether it may have been recorded
// before. False positives are possible; false negatives are not, so a
// false result guarantees a first sighting.
func (f *Filter) Seen(url string) bool {
	return f.f.TestAndAddString(url)
}

// Test returns true if the URL might be in the filter without recording it.
func (f *Filter) Test(url string) bool {
	return f.f.TestString(url)
}

// EstimatedCount returns the approximate number of URLs recorded.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
