package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Значения метки outcome
const (
	OutcomeSuccess      = "success"
	OutcomeFailed       = "provider_error"
	OutcomeStorageError = "storage_error"

	OutcomeProcessed        = "processed"
	OutcomeDuplicate        = "duplicate"
	OutcomeIgnored          = "ignored"
	OutcomeUnhandled        = "unhandled"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeWebhookFailed    = "failed"
)

// Metrics - все Prometheus-метрики сервиса.
// Методы безопасны для nil-получателя, сервисы в тестах работают без метрик.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	GenerationsTotal     *prometheus.CounterVec
	GenerationDuration   *prometheus.HistogramVec
	QuotaRejectionsTotal *prometheus.CounterVec

	WebhookEventsTotal    *prometheus.CounterVec
	SubscriptionsByStatus *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewMetrics создает и регистрирует метрики в переданном реестре
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contentgen_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "contentgen_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contentgen_generations_total",
				Help: "Content generation attempts by type and outcome",
			},
			[]string{"content_type", "outcome"},
		),
		GenerationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "contentgen_generation_duration_seconds",
				Help:    "Latency of the text generation provider",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
			},
			[]string{"content_type"},
		),
		QuotaRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contentgen_quota_rejections_total",
				Help: "Generation requests rejected by the quota gate",
			},
			[]string{"reason"},
		),
		WebhookEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contentgen_webhook_events_total",
				Help: "Billing webhook events by type and outcome",
			},
			[]string{"event_type", "outcome"},
		),
		SubscriptionsByStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "contentgen_subscriptions",
				Help: "Number of users per subscription status",
			},
			[]string{"status"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GenerationsTotal,
		m.GenerationDuration,
		m.QuotaRejectionsTotal,
		m.WebhookEventsTotal,
		m.SubscriptionsByStatus,
	)

	return m
}

// ObserveGeneration - outcome: success, provider_error, storage_error
func (m *Metrics) ObserveGeneration(contentType, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(contentType, outcome).Inc()
	if d > 0 {
		m.GenerationDuration.WithLabelValues(contentType).Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveQuotaRejection(reason string) {
	if m == nil {
		return
	}
	m.QuotaRejectionsTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveWebhook(eventType, outcome string) {
	if m == nil {
		return
	}
	m.WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) SetSubscriptions(status string, count int64) {
	if m == nil {
		return
	}
	m.SubscriptionsByStatus.WithLabelValues(status).Set(float64(count))
}

// GinMiddleware считает запросы по шаблону маршрута, а не по сырому пути
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler отдает /metrics из реестра
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
