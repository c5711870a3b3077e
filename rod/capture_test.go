package rod

import (
	"context"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
)

func TestAwaitDocumentResponse(t *testing.T) {
	t.Parallel()

	t.Run("returns a response published while waiting", func(t *testing.T) {
		t.Parallel()

		respCh := make(chan *proto.NetworkResponseReceived, 1)
		want := &proto.NetworkResponseReceived{Response: &proto.NetworkResponse{Status: 200}}
		go func() {
			time.Sleep(5 * time.Millisecond)
			respCh <- want
		}()

		got := awaitDocumentResponse(context.Background(), respCh, time.Second)
		assert.Same(t, want, got)
	})

	t.Run("nil after the grace period", func(t *testing.T) {
		t.Parallel()

		respCh := make(chan *proto.NetworkResponseReceived, 1)
		got := awaitDocumentResponse(context.Background(), respCh, time.Millisecond)
		assert.Nil(t, got)
	})

	t.Run("nil when the navigation context expires first", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		respCh := make(chan *proto.NetworkResponseReceived, 1)
		got := awaitDocumentResponse(ctx, respCh, time.Second)
		assert.Nil(t, got)
	})

	t.Run("a publish after the grace period does not block or race", func(t *testing.T) {
		t.Parallel()

		respCh := make(chan *proto.NetworkResponseReceived, 1)
		published := make(chan struct{})
		go func() {
			defer close(published)
			time.Sleep(100 * time.Millisecond)
			// The buffered channel absorbs the late publish.
			respCh <- &proto.NetworkResponseReceived{Response: &proto.NetworkResponse{Status: 200}}
		}()

		got := awaitDocumentResponse(context.Background(), respCh, time.Millisecond)
		assert.Nil(t, got)
		<-published
	})
}
