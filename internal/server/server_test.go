package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wesleyorama2/ratestub/internal/delay"
	"github.com/wesleyorama2/ratestub/internal/metrics"
	"github.com/wesleyorama2/ratestub/internal/output"
)

func TestServer_GracefulShutdownWaitsForInFlight(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	core, logs := observer.New(zap.InfoLevel)
	emitter := metrics.NewEmitter(8)
	h := NewHandler(delay.Fixed(200*time.Millisecond), emitter, &output.JSONFormatter{}, nil)
	srv := New(NewRouter(h), 2*time.Second, zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ctx, ln) }()

	type result struct {
		status int
		err    error
	}
	resCh := make(chan result, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/inflight")
		if err != nil {
			resCh <- result{err: err}
			return
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		resCh <- result{status: resp.StatusCode}
	}()

	// Let the request reach the handler before shutting down.
	time.Sleep(50 * time.Millisecond)
	cancel()

	res := <-resCh
	require.NoError(t, res.err)
	assert.Equal(t, http.StatusOK, res.status)

	select {
	case err := <-serveErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	emitter.Close()
	count := 0
	for range emitter.Events() {
		count++
	}
	assert.Equal(t, 1, count)

	assert.Equal(t, 1, logs.FilterMessage("Shutting down HTTP server").Len())

	_, err = net.DialTimeout("tcp", ln.Addr().String(), 200*time.Millisecond)
	assert.Error(t, err, "listener should be closed after shutdown")
}

func TestServer_ServeClosedListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ln.Close()

	srv := New(http.NotFoundHandler(), 0, nil)
	err = srv.Serve(context.Background(), ln)
	assert.Error(t, err)
}
