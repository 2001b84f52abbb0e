package middlewarectx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRateLimitMiddleware(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allows requests within burst", func(t *testing.T) {
		mw := RateLimitMiddleware(newNoopLogger(), NewIPLimiter(0.001, 5))(testHandler)

		for range 5 {
			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			w := httptest.NewRecorder()
			mw.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("blocks requests exceeding burst", func(t *testing.T) {
		mw := RateLimitMiddleware(newNoopLogger(), NewIPLimiter(0.001, 1))(testHandler)

		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"

		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		mw.ServeHTTP(w, req)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "too many requests")
	})

	t.Run("limits are per client ip", func(t *testing.T) {
		mw := RateLimitMiddleware(newNoopLogger(), NewIPLimiter(0.001, 1))(testHandler)

		for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1"} {
			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			req.RemoteAddr = addr
			w := httptest.NewRecorder()
			mw.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code, addr)
		}
	})
}

func TestClientIP(t *testing.T) {
	assert.Equal(t, "10.0.0.1", clientIP("10.0.0.1:5555"))
	assert.Equal(t, "10.0.0.1", clientIP("10.0.0.1"))
	assert.Equal(t, "::1", clientIP("[::1]:80"))
}

func TestIPLimiter_EvictsIdleClients(t *testing.T) {
	l := NewIPLimiter(10, 1)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	for i := range 100_000 {
		require.True(t, l.Allow("10.0."+strconv.Itoa(i/256)+"."+strconv.Itoa(i%256)))
		now = now.Add(time.Millisecond)
	}

	// Каждый клиент отправил один запрос, за 100 мс его bucket снова полон.
	assert.Less(t, len(l.limiters), 2*minSweepSize)
}

func TestIPLimiter_KeepsThrottledClients(t *testing.T) {
	l := NewIPLimiter(0.001, 1)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	require.True(t, l.Allow("10.0.0.1"))
	for i := range minSweepSize {
		l.Allow("10.1." + strconv.Itoa(i/256) + "." + strconv.Itoa(i%256))
	}

	// Проход очистки не должен сбросить лимит клиента, который его исчерпал.
	assert.False(t, l.Allow("10.0.0.1"))
}
