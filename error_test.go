package pagesense_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/pagesense"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := pagesense.Errorf(pagesense.EBLOCKED, "URL %q targets a private address", "http://127.0.0.1/")

	assert.Equal(t, pagesense.EBLOCKED, pagesense.ErrorCode(err))
	assert.Equal(t, "URL \"http://127.0.0.1/\" targets a private address", pagesense.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, pagesense.ErrorCode(nil))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, pagesense.EINTERNAL, pagesense.ErrorCode(errors.New("boom")))
}

func TestErrorMessage_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Internal error.", pagesense.ErrorMessage(errors.New("boom")))
}
