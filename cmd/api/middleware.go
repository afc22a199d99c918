// cmd/api/middleware.go
// This file contains HTTP middleware used to wrap the router.
// Middleware functions intercept every request before it reaches a handler.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

type contextKey string

const requestIDKey contextKey = "requestID"

// recoverPanic catches any runtime panic in a downstream handler and sends a
// 500 envelope instead of dropping the client's connection.
func (app *applicationDependencies) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// defer runs when the goroutine unwinds, even after a panic.
		defer func() {
			if err := recover(); err != nil {
				// Close the connection once this response has been sent.
				w.Header().Set("Connection", "close")
				// Any X-RateLimit-* headers already set end up in the envelope.
				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestID echoes the caller's X-Request-Id or assigns a new one.
func (app *applicationDependencies) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		// Keep the caller's id so a proxy's trace lines up with our logs.
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		// Handlers and error helpers read the id back through requestIDFrom.
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	// Only the first call reaches the client, so only the first is kept.
	if rec.status == 0 {
		rec.status = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	// A Write without WriteHeader implies 200.
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	return rec.ResponseWriter.Write(b)
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter { return rec.ResponseWriter }

// logRequest writes one INFO line per completed request.
func (app *applicationDependencies) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		app.logger.Info("request completed",
			slog.String("request_method", r.Method),
			slog.String("request_url", r.URL.String()),
			slog.Int("status", loggedStatus(rec.status)),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.String("request_id", requestIDFrom(r)),
			slog.String("client", app.clientKey(r)),
		)
	})
}

// loggedStatus reports 200 for handlers that never wrote anything.
func loggedStatus(status int) int {
	if status == 0 {
		return http.StatusOK
	}
	return status
}

// rateLimit records the request against the caller's window and attaches
// the resulting X-RateLimit-* headers before any handler runs, so every
// response carries them. Requests are only refused when the limiter is
// configured to enforce its limit or its burst guard.
func (app *applicationDependencies) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Take records this request before the counts are reported,
		// so the first request in a window already shows 99 remaining.
		status := app.limiter.Take(app.clientKey(r))

		// Set the headers now; writeJSON copies them into the body envelope.
		h := w.Header()
		for name, value := range status.Headers() {
			h.Set(name, strconv.FormatInt(value, 10))
		}

		// Only possible with -limiter-enforce or the burst guard enabled.
		if !status.Allowed {
			h.Set("Retry-After", status.RetryAfterSeconds())
			app.rateLimitExceededResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientKey identifies the anonymous caller: the remote IP, or the first
// X-Forwarded-For hop when the server sits behind a trusted proxy.
func (app *applicationDependencies) clientKey(r *http.Request) string {
	if app.config.limiter.trustForwarded {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			// The left-most entry is the original client.
			first, _, _ := strings.Cut(fwd, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}

	// RemoteAddr is "ip:port"; the port changes per connection.
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
