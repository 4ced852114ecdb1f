package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"sobgamecoin/internal/config"
)

func TestServer_RunStopsOnCancel(t *testing.T) {
	srv := New(config.ServerConfig{Port: 0, ShutdownTimeout: time.Second}, http.NotFoundHandler(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNew_DefaultShutdownTimeout(t *testing.T) {
	srv := New(config.ServerConfig{Port: 8080}, http.NotFoundHandler(), zap.NewNop())

	assert.Equal(t, 10*time.Second, srv.shutdownTimeout)
	assert.Equal(t, ":8080", srv.httpServer.Addr)
}
