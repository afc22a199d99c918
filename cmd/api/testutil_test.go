package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aoideee/library-catalog/internal/clock"
	"github.com/aoideee/library-catalog/internal/data"
	"github.com/aoideee/library-catalog/internal/events"
	"github.com/aoideee/library-catalog/internal/ratelimit"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type testApp struct {
	*applicationDependencies
	clock  *clock.Manual
	events *events.MemoryPublisher
	books  *data.MemoryBookModel
}

func newTestApp(t *testing.T, limiter ratelimit.Config) *testApp {
	t.Helper()

	clk := clock.NewManual(testNow)
	pub := &events.MemoryPublisher{}
	books := data.NewMemoryBookModel()

	var cfg serverConfig
	cfg.environment = "testing"
	cfg.storage = "memory"
	cfg.limiter.Config = limiter

	app := &applicationDependencies{
		config:  cfg,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		models:  data.Models{Books: books},
		limiter: ratelimit.New(limiter, clk),
		events:  pub,
		clock:   clk,
	}
	return &testApp{applicationDependencies: app, clock: clk, events: pub, books: books}
}

func (a *testApp) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.routes().ServeHTTP(rec, req)
	return rec
}

func (a *testApp) seed(t *testing.T, book data.Book) *data.Book {
	t.Helper()
	require.NoError(t, a.books.Insert(context.Background(), &book))
	return &book
}

func mustDate(t *testing.T, s string) data.Date {
	t.Helper()
	d, err := data.ParseDate(s)
	require.NoError(t, err)
	return d
}

const duneJSON = `{
	"title": "Dune",
	"author": "Frank Herbert",
	"genre": "Science Fiction",
	"publication_date": "1965-08-01",
	"availability": "Available",
	"edition": "1",
	"summary": "A desert planet and its spice."
}`

func withField(t *testing.T, key, rawValue string) string {
	t.Helper()
	// Replace one line of duneJSON by key.
	lines := strings.Split(duneJSON, "\n")
	for i, line := range lines {
		if strings.Contains(line, `"`+key+`":`) {
			suffix := ","
			if !strings.HasSuffix(strings.TrimSpace(line), ",") {
				suffix = ""
			}
			lines[i] = "\t\"" + key + "\": " + rawValue + suffix
			return strings.Join(lines, "\n")
		}
	}
	t.Fatalf("no field %q in fixture", key)
	return ""
}

func assertRateLimitHeaders(t *testing.T, h http.Header, remaining string) {
	t.Helper()
	require.Equal(t, "100", h.Get(ratelimit.HeaderLimit))
	require.Equal(t, remaining, h.Get(ratelimit.HeaderRemaining))
	require.NotEmpty(t, h.Get(ratelimit.HeaderReset))
}
