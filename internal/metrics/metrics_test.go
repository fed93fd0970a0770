package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveGeneration(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveGeneration("blog", "success", 2*time.Second)
	m.ObserveGeneration("blog", "success", time.Second)
	m.ObserveGeneration("seo", "provider_error", 0)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("blog", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("seo", "provider_error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GenerationDuration))
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveGeneration("blog", "success", time.Second)
		m.ObserveQuotaRejection("quota_exhausted")
		m.ObserveWebhook("invoice.payment_failed", "processed")
		m.SetSubscriptions("active", 3)
	})
}

func TestGinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/content/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", m.Handler())

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/content/"+id, nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/content/:id", "204")))

	m.SetSubscriptions("active", 7)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `contentgen_subscriptions{status="active"} 7`))
}
