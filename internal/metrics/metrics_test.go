package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/storefront/pkg/catalog"
)

func TestObserveFetch(t *testing.T) {
	m := NewMetrics(Detailed, "")
	m.ObserveFetch(catalog.OutcomeRendered, 10*time.Millisecond)
	m.ObserveFetch(catalog.OutcomeRendered, 30*time.Millisecond)
	m.ObserveFetch(catalog.OutcomeStale, 5*time.Millisecond)
	m.ObserveFetch(catalog.OutcomeFailed, 5*time.Millisecond)

	s := m.GetSnapshot()
	assert.Equal(t, uint64(4), s.Issued)
	assert.Equal(t, uint64(2), s.Rendered)
	assert.Equal(t, uint64(1), s.Stale)
	assert.Equal(t, uint64(1), s.Failed)
	assert.Equal(t, 12500*time.Microsecond, s.AverageLatency)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.fetches.WithLabelValues("rendered")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.fetchLatency))

	data, err := s.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stale":1`)
}

func TestDisabled(t *testing.T) {
	m := NewMetrics(Disabled, "")
	m.ObserveFetch(catalog.OutcomeEmpty, time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/x", http.StatusOK, time.Millisecond)
	assert.Zero(t, m.GetSnapshot().Issued)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.fetches.WithLabelValues("empty")))
}

func TestGinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(Basic, "shop")

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/api/products", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/api/products", "/api/products", "/nope"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)

	out := string(body)
	assert.True(t, strings.Contains(out, `shop_http_requests_total{method="GET",route="/api/products",status="200"} 2`), out)
	assert.Contains(t, out, `route="unmatched",status="404"`)
	assert.NotContains(t, out, "shop_http_request_duration_seconds")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Disabled, ParseLevel("disabled"))
	assert.Equal(t, Detailed, ParseLevel("detailed"))
	assert.Equal(t, Basic, ParseLevel("basic"))
	assert.Equal(t, Basic, ParseLevel(""))
}
