package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/pagesense"
	"github.com/fwojciec/pagesense/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleter_Complete_Validation(t *testing.T) {
	t.Parallel()

	c := gemini.NewCompleter(nil)

	_, err := c.Complete(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, pagesense.EINVALID, pagesense.ErrorCode(err))

	_, err = c.Complete(context.Background(), "classify this page")
	require.Error(t, err)
	assert.Equal(t, pagesense.EUNAVAILABLE, pagesense.ErrorCode(err))
}

func TestCompleter_HealthCheck(t *testing.T) {
	t.Parallel()

	c := gemini.NewCompleter(nil)
	health := c.HealthCheck(context.Background())
	assert.Equal(t, pagesense.HealthDegraded, health.Status)
	assert.NotEmpty(t, health.Reason)
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig()
	require.NotNil(t, config)
	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "JSON")
	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.2, float64(*config.Temperature), 1e-6)
}
