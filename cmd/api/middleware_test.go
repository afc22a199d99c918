package main

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/aoideee/library-catalog/internal/ratelimit"
)

func TestRateLimit_InformationalPolicy(t *testing.T) {
	app := newTestApp(t, ratelimit.DefaultConfig())

	var rec *httptest.ResponseRecorder
	for i := 1; i <= 100; i++ {
		rec = app.do(t, http.MethodGet, "/v1/books", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, strconv.Itoa(100-i), rec.Header().Get(ratelimit.HeaderRemaining))
		app.clock.Advance(100 * time.Millisecond)
	}
	assert.Equal(t, "0", rec.Header().Get(ratelimit.HeaderRemaining))

	rec = app.do(t, http.MethodGet, "/v1/books", "")
	assert.Equal(t, http.StatusOK, rec.Code, "the 101st request is annotated, not rejected")
	assert.Equal(t, "0", rec.Header().Get(ratelimit.HeaderRemaining))
	assert.Equal(t, strconv.FormatInt(testNow.Add(time.Minute).Unix(), 10), rec.Header().Get(ratelimit.HeaderReset))
	assert.Equal(t, int64(0), gjson.GetBytes(rec.Body.Bytes(), "headers.X-RateLimit-Remaining").Int())
}

func TestRateLimit_EnforcedPolicy(t *testing.T) {
	cfg := ratelimit.DefaultConfig()
	cfg.Enforce = true
	app := newTestApp(t, cfg)

	for range 100 {
		require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/v1/books", "").Code)
	}
	app.clock.Advance(15 * time.Second)

	rec := app.do(t, http.MethodGet, "/v1/books", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "45", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get(ratelimit.HeaderRemaining))
	assert.Equal(t, "rate limit exceeded", gjson.GetBytes(rec.Body.Bytes(), "message").String())

	app.clock.Advance(45 * time.Second)
	rec = app.do(t, http.MethodGet, "/v1/books", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "99", rec.Header().Get(ratelimit.HeaderRemaining))
}

func TestRateLimit_ClientsCountedSeparately(t *testing.T) {
	app := newTestApp(t, ratelimit.DefaultConfig())
	h := app.routes()

	send := func(remoteAddr, forwarded string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/books", nil)
		req.RemoteAddr = remoteAddr
		if forwarded != "" {
			req.Header.Set("X-Forwarded-For", forwarded)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	send("10.0.0.1:5000", "")
	send("10.0.0.1:5001", "")
	rec := send("10.0.0.2:5000", "")
	assert.Equal(t, "99", rec.Header().Get(ratelimit.HeaderRemaining))

	// Forwarded headers are ignored unless trusted.
	rec = send("10.0.0.1:5002", "203.0.113.9")
	assert.Equal(t, "97", rec.Header().Get(ratelimit.HeaderRemaining))

	app.config.limiter.trustForwarded = true
	h = app.routes()
	rec = send("10.0.0.1:5003", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "99", rec.Header().Get(ratelimit.HeaderRemaining))
}

func TestRequestID(t *testing.T) {
	app := newTestApp(t, ratelimit.DefaultConfig())

	rec := app.do(t, http.MethodGet, "/v1/healthcheck", "")
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/v1/healthcheck", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	app.routes().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestRecoverPanic(t *testing.T) {
	app := newTestApp(t, ratelimit.DefaultConfig())
	h := app.recoverPanic(app.rateLimit(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("store exploded")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/books", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
	body := gjson.ParseBytes(rec.Body.Bytes())
	assert.Equal(t, "failed", body.Get("status").String())
	assert.NotContains(t, rec.Body.String(), "store exploded")
	assert.Equal(t, int64(99), body.Get("headers.X-RateLimit-Remaining").Int())
}
