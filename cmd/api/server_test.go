package main

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/aoideee/library-catalog/internal/ratelimit"
)

// TestServer_BookLifecycle drives the full router over a real listener.
func TestServer_BookLifecycle(t *testing.T) {
	app := newTestApp(t, ratelimit.DefaultConfig())
	srv := httptest.NewServer(app.routes())
	t.Cleanup(srv.Close)

	client := resty.New().
		SetBaseURL(srv.URL).
		SetTimeout(5*time.Second).
		SetHeader("Content-Type", "application/json")

	resp, err := client.R().SetBody(map[string]any{
		"title":            "The Left Hand of Darkness",
		"author":           "Ursula K. Le Guin",
		"genre":            "Science Fiction",
		"publication_date": "1969-03-01",
		"availability":     "Available",
		"edition":          1,
		"summary":          "An envoy on a world of ambisexual people.",
	}).Post("/v1/books")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())

	id := gjson.GetBytes(resp.Body(), "book.id").Int()
	location := resp.Header().Get("Location")
	assert.Equal(t, "/v1/books/"+strconv.FormatInt(id, 10), location)

	resp, err = client.R().SetBody(`{"availability": "Checked Out"}`).Patch(location)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "Checked Out", gjson.GetBytes(resp.Body(), "book.availability").String())
	assert.Equal(t, "Ursula K. Le Guin", gjson.GetBytes(resp.Body(), "book.author").String())

	resp, err = client.R().SetQueryParam("availability", "Checked Out").Get("/v1/books")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, int64(1), gjson.GetBytes(resp.Body(), "pagination.count").Int())

	resp, err = client.R().Delete(location)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())

	resp, err = client.R().Get(location)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	assert.Equal(t, "95", resp.Header().Get(ratelimit.HeaderRemaining))
}

func TestServer_RateLimitHeadersOnEveryResponse(t *testing.T) {
	app := newTestApp(t, ratelimit.DefaultConfig())
	srv := httptest.NewServer(app.routes())
	t.Cleanup(srv.Close)

	client := resty.New().SetBaseURL(srv.URL)

	for i := 1; i <= 101; i++ {
		path := "/v1/books"
		if i%2 == 0 {
			path = "/v1/books/12345"
		}
		resp, err := client.R().Get(path)
		require.NoError(t, err)
		require.NotEqual(t, http.StatusTooManyRequests, resp.StatusCode())

		want := strconv.Itoa(max(0, 100-i))
		require.Equal(t, want, resp.Header().Get(ratelimit.HeaderRemaining), "request %d", i)
		require.Equal(t, "100", resp.Header().Get(ratelimit.HeaderLimit))
		require.Equal(t, want, gjson.GetBytes(resp.Body(), "headers.X-RateLimit-Remaining").String())
	}
}
