package redis

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.CodeConflict, "lock is held by another owner")
	ErrLockNotHeld     = errors.New(errors.CodeConflict, "lock not held by this owner")
)

var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

var extendScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

type LockOption func(*Mutex)

func WithLockTTL(ttl time.Duration) LockOption {
	return func(m *Mutex) { m.ttl = ttl }
}

// WithRetry bounds Lock to count attempts spaced by delay.
func WithRetry(count int, delay time.Duration) LockOption {
	return func(m *Mutex) {
		m.retryCount = count
		m.retryDelay = delay
	}
}

// Mutex is a single-owner lock stored at <prefix>lock:<name>. The value is a
// random token so only the owner can release or extend it.
type Mutex struct {
	client     *Client
	key        string
	token      string
	ttl        time.Duration
	retryCount int
	retryDelay time.Duration
	logger     logging.Logger
}

// NewMutex prepares a lock; nothing is written until Lock or TryLock.
func NewMutex(client *Client, name string, opts ...LockOption) *Mutex {
	m := &Mutex{
		client:     client,
		key:        client.Key("lock", name),
		token:      uuid.NewString(),
		ttl:        30 * time.Second,
		retryCount: 30,
		retryDelay: 100 * time.Millisecond,
		logger:     client.logger.Named("lock"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mutex) Key() string { return m.key }

// TryLock makes one attempt.
func (m *Mutex) TryLock(ctx context.Context) (bool, error) {
	if m.client.isClosed() {
		return false, ErrClientClosed
	}
	ok, err := m.client.rdb.SetNX(ctx, m.key, m.token, m.ttl).Result()
	if err != nil && !stderrors.Is(err, redis.Nil) {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "acquire lock").WithDetail(m.key)
	}
	return ok, nil
}

// Lock retries TryLock until it succeeds, the attempts run out or ctx ends.
func (m *Mutex) Lock(ctx context.Context) error {
	for i := 0; i < m.retryCount; i++ {
		ok, err := m.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			m.logger.Debug("lock acquired", logging.String("key", m.key), logging.Int("attempt", i+1))
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.retryDelay):
		}
	}
	return ErrLockNotAcquired.WithDetail(m.key)
}

func (m *Mutex) Unlock(ctx context.Context) error {
	res, err := unlockScript.Run(ctx, m.client.rdb, []string{m.key}, m.token).Int64()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "release lock").WithDetail(m.key)
	}
	if res == 0 {
		return ErrLockNotHeld.WithDetail(m.key)
	}
	return nil
}

// Extend resets the expiry to ttl if the lock is still ours.
func (m *Mutex) Extend(ctx context.Context, ttl time.Duration) (bool, error) {
	res, err := extendScript.Run(ctx, m.client.rdb, []string{m.key}, m.token, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "extend lock").WithDetail(m.key)
	}
	return res == 1, nil
}

// WithLock runs fn while holding the lock.
func (m *Mutex) WithLock(ctx context.Context, fn func(context.Context) error) error {
	if err := m.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		if err := m.Unlock(context.WithoutCancel(ctx)); err != nil {
			m.logger.Warn("lock release failed", logging.String("key", m.key), logging.Err(err))
		}
	}()
	return fn(ctx)
}

//Personal.AI order the ending
