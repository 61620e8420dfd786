package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemGraph/internal/config"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/ChemGraph/pkg/errors"
)

func TestNewClient_Success(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr(), KeyPrefix: "chemgraph:"}, logging.NewNopLogger())
	require.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.Ping(context.Background()))
	assert.NotNil(t, c.Underlying())
}

func TestNewClient_ConnectionFailed(t *testing.T) {
	_, err := NewClient(context.Background(), config.RedisConfig{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
	}, nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}

func TestClient_Key(t *testing.T) {
	c := NewClientFromUniversal(nil, "chemgraph:", nil)
	assert.Equal(t, "chemgraph:conv:abc", c.Key("conv", "abc"))
	assert.Equal(t, "chemgraph:lock", c.Key("lock"))
	assert.Equal(t, "chemgraph:", c.Key())
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()}, nil)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	assert.Equal(t, ErrClientClosed, c.Ping(context.Background()))
}

//Personal.AI order the ending
