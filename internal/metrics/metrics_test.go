package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varoOP/malmirror/internal/domain"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.CacheHit()
	m.CacheHit()
	m.CacheMiss()
	m.SyncItem("anime", domain.OutcomeCreated)
	m.SyncItem("anime", domain.OutcomeFailed)
	m.SyncRun(domain.SyncReport{Kind: "anime", Duration: 3 * time.Second}, nil)
	m.SyncRun(domain.SyncReport{Kind: "anime"}, errors.New("boom"))
	m.UpstreamRequest(200)
	m.UpstreamRequest(429)
	m.UpstreamRequest(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.syncItems.WithLabelValues("anime", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.syncRuns.WithLabelValues("anime", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstream.WithLabelValues("4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstream.WithLabelValues("error")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CacheHit()
		m.CacheMiss()
		m.CacheError()
		m.SyncItem("anime", domain.OutcomeSkipped)
		m.SyncRun(domain.SyncReport{}, nil)
		m.UpstreamRequest(500)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.CacheMiss()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `malmirror_cache_lookups_total{result="miss"} 1`)
}
