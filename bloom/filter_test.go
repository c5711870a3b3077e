package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/pagesense/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_Seen(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	// First sighting records and reports false.
	assert.False(t, f.Seen("https://example.com/products/1"))

	// Second sighting of the same URL reports true.
	assert.True(t, f.Seen("https://example.com/products/1"))

	// A different URL is still a first sighting.
	assert.False(t, f.Seen("https://example.com/products/2"))
}

func TestFilter_Test(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	assert.False(t, f.Test("https://example.com/products/1"))
	f.Seen("https://example.com/products/1")
	assert.True(t, f.Test("https://example.com/products/1"))
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)
	assert.Equal(t, uint(0), f.EstimatedCount())

	for i := 0; i < 3; i++ {
		f.Seen(fmt.Sprintf("https://example.com/products/%d", i))
	}

	count := f.EstimatedCount()
	assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
}

func TestFilter_NoFalseNegatives(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(10000, 0.01)

	urls := make([]string, 500)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/listings/%d", i)
		f.Seen(urls[i])
	}
	for _, url := range urls {
		assert.True(t, f.Test(url))
	}
}
