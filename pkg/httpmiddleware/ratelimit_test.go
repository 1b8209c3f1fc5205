package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// fakeClock starts on a minute boundary.
type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(cfg RateLimitConfig, clock *fakeClock) (*rateLimiter, http.Handler) {
	rl := newRateLimiter(cfg)
	rl.now = clock.Now
	return rl, rl.middleware(okHandler())
}

func hit(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/quote", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_UnderLimit(t *testing.T) {
	_, h := newTestLimiter(RateLimitConfig{Max: 5, Window: time.Minute}, newFakeClock())

	for i := range 5 {
		rec := hit(h, "192.168.1.1:12345")
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, []string{"4", "3", "2", "1", "0"}[i], rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimit_OverLimit(t *testing.T) {
	clock := newFakeClock()
	clock.Advance(20 * time.Second)
	_, h := newTestLimiter(RateLimitConfig{Max: 2, Window: time.Minute}, clock)

	for range 2 {
		require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:9999").Code)
	}

	rec := hit(h, "10.0.0.1:9999")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "40", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"code":429,"message":"rate limit exceeded"}`, rec.Body.String())
}

func TestRateLimit_SlidingWindow(t *testing.T) {
	clock := newFakeClock()
	_, h := newTestLimiter(RateLimitConfig{Max: 2, Window: time.Minute}, clock)

	require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1").Code)
	require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1").Code)
	require.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:1").Code)

	// Halfway into the next window the previous two requests weigh one.
	clock.Advance(90 * time.Second)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:1").Code)

	// Two idle windows reset the client.
	clock.Advance(3 * time.Minute)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1").Code)
}

func TestRateLimit_DifferentClients(t *testing.T) {
	_, h := newTestLimiter(RateLimitConfig{Max: 1, Window: time.Minute}, newFakeClock())

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.2:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:5678").Code)
}

func TestRateLimit_CustomKeyFunc(t *testing.T) {
	_, h := newTestLimiter(RateLimitConfig{
		Max:    1,
		Window: time.Minute,
		KeyFunc: func(r *http.Request) string {
			return r.Header.Get("X-Customer")
		},
	}, newFakeClock())

	send := func(customer string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/quote", nil)
		req.Header.Set("X-Customer", customer)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, send("ann"))
	assert.Equal(t, http.StatusTooManyRequests, send("ann"))
	assert.Equal(t, http.StatusOK, send("joe"))
}

func TestRateLimit_Disabled(t *testing.T) {
	h := RateLimit(RateLimitConfig{Max: 0, Window: time.Minute})(okHandler())

	for range 50 {
		rec := hit(h, "10.0.0.1:1")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimit_LogsRejection(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rl, _ := newTestLimiter(RateLimitConfig{Max: 1, Window: time.Minute}, newFakeClock())
	h := Wrap(okHandler(), InjectLogger(zap.New(core)), rl.middleware)

	hit(h, "10.0.0.7:1")
	hit(h, "10.0.0.7:1")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Rate limit exceeded", entry.Message)
	assert.Equal(t, "10.0.0.7", entry.ContextMap()["client"])
}

func TestRateLimit_Evict(t *testing.T) {
	clock := newFakeClock()
	rl, h := newTestLimiter(RateLimitConfig{Max: 1, Window: time.Minute}, clock)

	hit(h, "10.0.0.1:1")
	clock.Advance(time.Minute)
	hit(h, "10.0.0.2:1")
	require.Equal(t, 2, rl.clientCount())

	clock.Advance(time.Minute)
	rl.evict(clock.Now())
	assert.Equal(t, 1, rl.clientCount())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		header map[string]string
		want   string
	}{
		{name: "remote addr", remote: "192.168.1.1:4444", want: "192.168.1.1"},
		{name: "remote without port", remote: "192.168.1.1", want: "192.168.1.1"},
		{
			name:   "forwarded for",
			remote: "192.168.1.1:4444",
			header: map[string]string{"X-Forwarded-For": "203.0.113.50, 70.41.3.18"},
			want:   "203.0.113.50",
		},
		{
			name:   "real ip",
			remote: "192.168.1.1:4444",
			header: map[string]string{"X-Real-IP": "198.51.100.7"},
			want:   "198.51.100.7",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
