package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/turtacn/ChemGraph/pkg/errors"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithRetryWait(time.Millisecond, 2*time.Millisecond)}, opts...)
	c, err := NewClient(srv.URL+"/", opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidParam))
	_, err = NewClient("ftp://example.org")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidParam))
	_, err = NewClient("://bad")
	assert.Error(t, err)

	c, err := NewClient("https://chem.example.org/")
	require.NoError(t, err)
	assert.Equal(t, "https://chem.example.org", c.baseURL)
	assert.Equal(t, 3, c.retryMax)
	assert.Equal(t, "chemgraph-go-client/"+Version, c.userAgent)
}

func TestDo_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"ok","version":"1.2.3"}`)
	})

	h, err := c.Live(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "1.2.3", h.Version)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_GivesUpAfterRetryMax(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"code":"COMMON_008","message":"structure storage is not configured"}`)
	}, WithRetryMax(1))

	_, err := c.List(context.Background(), 0, 0)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsUnavailable())
	assert.Equal(t, "COMMON_008", apiErr.Code)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDo_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"code":"LIB_001","message":"structure not found","detail":"abc"}`)
	})

	_, err := c.Get(context.Background(), "abc")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsNotFound())
	assert.True(t, apiErr.IsClientError())
	assert.Equal(t, "abc", apiErr.Detail)
	assert.NotEmpty(t, apiErr.RequestID)
	assert.Contains(t, apiErr.Error(), "structure not found: abc")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_PlainTextErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "404 page not found", http.StatusNotFound)
	})
	_, err := c.Inspect(context.Background(), "", []byte("x"))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "404 page not found", apiErr.Message)
	assert.Empty(t, apiErr.Code)
}

func TestDo_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.Delete(context.Background(), "id-1"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, WithRetryWait(time.Hour, time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Live(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_SetsHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "custom/1", r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.WriteHeader(http.StatusOK)
	}, WithUserAgent("custom/1"))
	_, err := c.Ready(context.Background())
	require.NoError(t, err)
}

func TestCalculateBackoff(t *testing.T) {
	c := &Client{retryWaitMin: 100 * time.Millisecond, retryWaitMax: 300 * time.Millisecond}
	b1 := c.calculateBackoff(1)
	assert.GreaterOrEqual(t, b1, 100*time.Millisecond)
	assert.Less(t, b1, 125*time.Millisecond)
	b5 := c.calculateBackoff(5)
	assert.GreaterOrEqual(t, b5, 300*time.Millisecond)
	assert.Less(t, b5, 375*time.Millisecond)
}

type testLogger struct{ lines int }

func (l *testLogger) Debugf(string, ...interface{}) { l.lines++ }
func (l *testLogger) Infof(string, ...interface{})  { l.lines++ }
func (l *testLogger) Errorf(string, ...interface{}) { l.lines++ }

func TestOptions(t *testing.T) {
	hc := &http.Client{Timeout: time.Minute}
	lg := &testLogger{}
	c, err := NewClient("http://localhost:8080",
		WithHTTPClient(hc), WithLogger(lg), WithRetryMax(0), WithRetryMax(-1),
		WithRetryWait(time.Second, time.Millisecond), WithUserAgent(""))
	require.NoError(t, err)
	assert.Same(t, hc, c.httpClient)
	assert.Same(t, lg, c.logger)
	assert.Equal(t, 0, c.retryMax)
	assert.Equal(t, time.Second, c.retryWaitMin)
	assert.Equal(t, 5*time.Second, c.retryWaitMax)
	assert.Contains(t, c.userAgent, "chemgraph-go-client")
}

func TestWithTimeout_CopiesClient(t *testing.T) {
	hc := &http.Client{Timeout: time.Minute}
	c, err := NewClient("http://localhost:8080", WithHTTPClient(hc), WithTimeout(time.Second), WithHTTPClient(nil))
	require.NoError(t, err)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
	assert.Equal(t, time.Minute, hc.Timeout)
}

//Personal.AI order the ending
