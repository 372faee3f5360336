package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varoOP/malmirror/internal/anime"
	"github.com/varoOP/malmirror/internal/cache"
	"github.com/varoOP/malmirror/internal/database"
	"github.com/varoOP/malmirror/internal/domain"
	"github.com/varoOP/malmirror/internal/metrics"
)

func newTestServer(t *testing.T) (*Server, *anime.Service) {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "malmirror.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := metrics.New()
	svc := anime.NewService(zerolog.Nop(), database.NewAnimeRepo(zerolog.Nop(), db), cache.NewMemoryStore(zerolog.Nop()), time.Minute, m)

	ctx := context.Background()
	for _, a := range []domain.Anime{
		{MalID: 1, Title: "Cowboy Bebop", Type: "TV", Year: 1998},
		{MalID: 5, Title: "Cowboy Bebop: Tengoku no Tobira", Type: "Movie", Year: 2001},
		{MalID: 6, Title: "Trigun", Type: "TV", Year: 1998},
	} {
		a := a
		_, err := svc.Create(ctx, &a)
		require.NoError(t, err)
	}

	return NewServer(zerolog.Nop(), svc, m), svc
}

func get(t *testing.T, s *Server, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]any
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestServer_GetAnime(t *testing.T) {
	s, _ := newTestServer(t)

	rec, body := get(t, s, "/anime/1")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Cowboy Bebop", data["title"])

	rec, _ = get(t, s, "/anime/999")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = get(t, s, "/anime/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ListAnime(t *testing.T) {
	s, _ := newTestServer(t)

	rec, body := get(t, s, "/anime?filter[type]=TV&filter[year]=1998&order_by=mal_id&order=desc")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["total"])

	data := body["data"].([]any)
	require.Len(t, data, 2)
	assert.Equal(t, float64(6), data[0].(map[string]any)["mal_id"])

	rec, body = get(t, s, "/anime?q=bebop&limit=1&page=2&order_by=mal_id")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["total"])
	data = body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, float64(5), data[0].(map[string]any)["mal_id"])
}

func TestServer_ListIgnoresUnknownColumns(t *testing.T) {
	s, _ := newTestServer(t)

	rec, body := get(t, s, "/anime?filter[nope]=1&order_by=nope")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), body["total"])
}

func TestServer_BadPagination(t *testing.T) {
	s, _ := newTestServer(t)

	for _, target := range []string{"/anime?limit=-1", "/anime?page=x", "/anime/count?limit=ten"} {
		rec, _ := get(t, s, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestServer_Count(t *testing.T) {
	s, _ := newTestServer(t)

	rec, body := get(t, s, "/anime/count?filter[type]=Movie")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["total"])
}

func TestServer_MetricsAndHealth(t *testing.T) {
	s, _ := newTestServer(t)

	get(t, s, "/anime/1")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `malmirror_cache_lookups_total{result="hit"} 1`)

	rec, body := get(t, s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
}

func TestServer_ListenAndServeStopsOnCancel(t *testing.T) {
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
