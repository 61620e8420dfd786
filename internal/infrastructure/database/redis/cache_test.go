package redis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/ChemGraph/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache *ConversionCache
	ctx   context.Context
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	client := NewClientFromUniversal(db, "test:", logging.NewNopLogger())
	s.cache = NewConversionCache(client, nil, WithTTL(time.Minute))
	s.ctx = context.Background()
}

func (s *CacheTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *CacheTestSuite) TestGet_Hit() {
	s.mock.ExpectGet("test:conv:abc").SetVal("<cml/>")

	data, hit, err := s.cache.Get(s.ctx, "abc")
	s.Require().NoError(err)
	s.True(hit)
	s.Equal([]byte("<cml/>"), data)
}

func (s *CacheTestSuite) TestGet_Miss() {
	s.mock.ExpectGet("test:conv:abc").RedisNil()

	data, hit, err := s.cache.Get(s.ctx, "abc")
	s.NoError(err)
	s.False(hit)
	s.Nil(data)
}

func (s *CacheTestSuite) TestGet_Error() {
	s.mock.ExpectGet("test:conv:abc").SetErr(errors.New("connection reset"))

	_, hit, err := s.cache.Get(s.ctx, "abc")
	s.False(hit)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestSet_UsesTTL() {
	s.mock.ExpectSet("test:conv:abc", []byte("<cml/>"), time.Minute).SetVal("OK")

	s.NoError(s.cache.Set(s.ctx, "abc", []byte("<cml/>")))
}

func (s *CacheTestSuite) TestSet_Error() {
	s.mock.ExpectSet("test:conv:abc", []byte("x"), time.Minute).SetErr(errors.New("OOM"))

	err := s.cache.Set(s.ctx, "abc", []byte("x"))
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:conv:a", "test:conv:b").SetVal(1)

	s.NoError(s.cache.Delete(s.ctx, "a", "b"))
	s.NoError(s.cache.Delete(s.ctx))
}

func (s *CacheTestSuite) TestGetOrLoad_MissLoadsAndStores() {
	s.mock.ExpectGet("test:conv:k").RedisNil()
	s.mock.ExpectSet("test:conv:k", []byte("loaded"), time.Minute).SetVal("OK")

	data, hit, err := s.cache.GetOrLoad(s.ctx, "k", func(context.Context) ([]byte, error) {
		return []byte("loaded"), nil
	})
	s.Require().NoError(err)
	s.False(hit)
	s.Equal([]byte("loaded"), data)
}

func (s *CacheTestSuite) TestGetOrLoad_LoaderErrorIsNotCached() {
	s.mock.ExpectGet("test:conv:k").RedisNil()

	_, _, err := s.cache.GetOrLoad(s.ctx, "k", func(context.Context) ([]byte, error) {
		return nil, pkgerrors.Format("bad payload")
	})
	s.True(pkgerrors.IsFormat(err))
}

func (s *CacheTestSuite) TestGetOrLoad_BrokenCacheStillLoads() {
	s.mock.ExpectGet("test:conv:k").SetErr(errors.New("down"))
	s.mock.ExpectSet("test:conv:k", []byte("v"), time.Minute).SetErr(errors.New("down"))

	data, hit, err := s.cache.GetOrLoad(s.ctx, "k", func(context.Context) ([]byte, error) {
		return []byte("v"), nil
	})
	s.Require().NoError(err)
	s.False(hit)
	s.Equal([]byte("v"), data)
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func TestConversionCache_GetOrLoadCollapsesConcurrentLoads(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewClientFromUniversal(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), "t:", nil)
	cache := NewConversionCache(client, nil)

	var calls int32
	release := make(chan struct{})
	load := func(context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []byte("out"), nil
	}

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, _, err := cache.GetOrLoad(context.Background(), "same", load)
			assert.NoError(t, err)
			results[i] = data
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(2))
	for _, r := range results {
		assert.Equal(t, []byte("out"), r)
	}

	stored, err := mr.Get("t:conv:same")
	require.NoError(t, err)
	assert.Equal(t, "out", stored)
	assert.Equal(t, time.Hour, mr.TTL("t:conv:same"))

	data, hit, err := cache.GetOrLoad(context.Background(), "same", load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("out"), data)
}

func TestConversionCache_ClosedClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewClientFromUniversal(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), "t:", nil)
	cache := NewConversionCache(client, nil)
	require.NoError(t, client.Close())

	_, _, err := cache.Get(context.Background(), "x")
	assert.Equal(t, ErrClientClosed, err)
	assert.Equal(t, ErrClientClosed, cache.Set(context.Background(), "x", nil))
}

//Personal.AI order the ending
