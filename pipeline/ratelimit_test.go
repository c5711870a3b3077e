package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/pagesense/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter_Wait(t *testing.T) {
	t.Parallel()

	t.Run("non-positive rps disables throttling", func(t *testing.T) {
		t.Parallel()

		l := pipeline.NewDomainLimiter(0)
		for i := 0; i < 50; i++ {
			require.NoError(t, l.Wait(context.Background(), "example.com"))
		}
	})

	t.Run("distinct hosts do not contend", func(t *testing.T) {
		t.Parallel()

		l := pipeline.NewDomainLimiter(0.001)
		require.NoError(t, l.Wait(context.Background(), "a.example.com"))
		require.NoError(t, l.Wait(context.Background(), "b.example.com"))
	})

	t.Run("ports share one bucket", func(t *testing.T) {
		t.Parallel()

		l := pipeline.NewDomainLimiter(0.001)
		require.NoError(t, l.Wait(context.Background(), "example.com:443"))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.Error(t, l.Wait(ctx, "example.com:80"))
	})

	t.Run("canceled context returns error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		l := pipeline.NewDomainLimiter(1)
		assert.Error(t, l.Wait(ctx, "example.com"))
	})
}
