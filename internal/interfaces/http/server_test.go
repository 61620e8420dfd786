package http

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemGraph/internal/config"
)

func TestNewServer(t *testing.T) {
	s := NewServer(config.ServerConfig{Port: 8181, ReadTimeout: time.Second, WriteTimeout: 2 * time.Second}, NewRouter(RouterConfig{}), nil)
	assert.Equal(t, ":8181", s.Addr())
	assert.Equal(t, time.Second, s.srv.ReadTimeout)
	assert.Equal(t, 2*time.Second, s.srv.WriteTimeout)
}

func TestServer_StartStop(t *testing.T) {
	s := NewServer(config.ServerConfig{Port: 0, ShutdownTimeout: time.Second}, NewRouter(RouterConfig{}), nil)
	s.srv.Addr = "127.0.0.1:0"

	done := make(chan error, 1)
	go func() { done <- s.Start() }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

//Personal.AI order the ending
