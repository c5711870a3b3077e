package pagesense_test

import (
	"testing"

	"github.com/fwojciec/pagesense"
	"github.com/stretchr/testify/assert"
)

func TestValidateExternalURL(t *testing.T) {
	t.Parallel()

	blocked := []string{
		"http://127.0.0.1/admin",
		"http://localhost:8080/",
		"http://169.254.169.254/latest/meta-data/",
		"http://10.0.0.5/",
		"http://192.168.1.1/router",
		"http://172.16.0.1/",
		"http://0.0.0.0/",
		"ftp://example.com/file",
		"file:///etc/passwd",
	}
	for _, u := range blocked {
		t.Run("blocks "+u, func(t *testing.T) {
			t.Parallel()
			err := pagesense.ValidateExternalURL(u)
			assert.Error(t, err)
			assert.Equal(t, pagesense.EBLOCKED, pagesense.ErrorCode(err))
		})
	}

	t.Run("allows public literal IP", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, pagesense.ValidateExternalURL("http://93.184.216.34/"))
	})

	t.Run("rejects URL without host", func(t *testing.T) {
		t.Parallel()
		err := pagesense.ValidateExternalURL("https:///path-only")
		assert.Equal(t, pagesense.EINVALID, pagesense.ErrorCode(err))
	})
}
