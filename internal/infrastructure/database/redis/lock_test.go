package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/turtacn/ChemGraph/pkg/errors"
)

func newLockClient(t *testing.T) (*miniredis.Miniredis, *Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, NewClientFromUniversal(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), "chemgraph:", nil)
}

func TestMutex_LockUnlock(t *testing.T) {
	mr, client := newLockClient(t)
	ctx := context.Background()
	m := NewMutex(client, "migrate", WithLockTTL(time.Second))
	assert.Equal(t, "chemgraph:lock:migrate", m.Key())

	require.NoError(t, m.Lock(ctx))
	assert.True(t, mr.Exists("chemgraph:lock:migrate"))

	require.NoError(t, m.Unlock(ctx))
	assert.False(t, mr.Exists("chemgraph:lock:migrate"))

	assert.True(t, pkgerrors.IsCode(m.Unlock(ctx), pkgerrors.CodeConflict))
}

func TestMutex_Contention(t *testing.T) {
	_, client := newLockClient(t)
	ctx := context.Background()
	first := NewMutex(client, "migrate")
	second := NewMutex(client, "migrate", WithRetry(2, 5*time.Millisecond))

	require.NoError(t, first.Lock(ctx))
	ok, err := second.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	err = second.Lock(ctx)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	// only the owner may release
	assert.Error(t, second.Unlock(ctx))
	require.NoError(t, first.Unlock(ctx))

	ok, err = second.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMutex_Extend(t *testing.T) {
	mr, client := newLockClient(t)
	ctx := context.Background()
	m := NewMutex(client, "ext", WithLockTTL(time.Second))
	require.NoError(t, m.Lock(ctx))

	ok, err := m.Extend(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("chemgraph:lock:ext"))

	other := NewMutex(client, "ext")
	ok, err = other.Extend(ctx, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMutex_ExpiredLockCanBeTaken(t *testing.T) {
	mr, client := newLockClient(t)
	ctx := context.Background()
	require.NoError(t, NewMutex(client, "x", WithLockTTL(time.Second)).Lock(ctx))

	mr.FastForward(2 * time.Second)

	ok, err := NewMutex(client, "x").TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMutex_WithLock(t *testing.T) {
	mr, client := newLockClient(t)
	ctx := context.Background()
	m := NewMutex(client, "job")

	boom := errors.New("boom")
	err := m.WithLock(ctx, func(context.Context) error {
		assert.True(t, mr.Exists("chemgraph:lock:job"))
		return boom
	})
	assert.Equal(t, boom, err)
	assert.False(t, mr.Exists("chemgraph:lock:job"))
}

func TestMutex_LockHonoursContext(t *testing.T) {
	_, client := newLockClient(t)
	require.NoError(t, NewMutex(client, "busy").Lock(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewMutex(client, "busy", WithRetry(100, time.Second)).Lock(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

//Personal.AI order the ending
