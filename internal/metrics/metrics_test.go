package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCalculation(t *testing.T) {
	m := New()
	m.ObserveCalculation("ok", 3*time.Millisecond, []int{1, 2, 2}, 4)
	m.ObserveCalculation("invalid", time.Millisecond, nil, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.calculations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calculations.WithLabelValues("invalid")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.pathsFound))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.skippedEdges))
}

func TestCountersByLabel(t *testing.T) {
	m := New()
	m.CacheResult("hit")
	m.CacheResult("hit")
	m.SnapshotLoaded("neo4j", "ok")
	m.Ingested("contact", nil)
	m.Ingested("contact", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshotLoads.WithLabelValues("neo4j", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ingestedItems.WithLabelValues("contact", "error")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodPost, "/network/paths", http.StatusOK, 12*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `cultivate_http_requests_total{method="POST",route="/network/paths",status="200"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveCalculation("ok", time.Second, []int{1}, 0)
	m.CacheResult("miss")
	m.Ingested("connection", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
