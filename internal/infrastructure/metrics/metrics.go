package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "popcorn"

// InteractionMetrics counts what the interaction controller did with each toggle.
type InteractionMetrics struct {
	applied    *prometheus.CounterVec
	ignored    *prometheus.CounterVec
	reconciled *prometheus.CounterVec
	rolledBack *prometheus.CounterVec
}

var _ contract.IInteractionMetrics = (*InteractionMetrics)(nil)

// NewInteractionMetrics registers the controller counters on reg.
func NewInteractionMetrics(reg prometheus.Registerer) *InteractionMetrics {
	factory := promauto.With(reg)
	return &InteractionMetrics{
		applied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "interaction",
			Name:      "toggles_applied_total",
			Help:      "Optimistic toggles applied locally",
		}, []string{"interaction"}),
		ignored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "interaction",
			Name:      "toggles_ignored_total",
			Help:      "Toggles dropped because a mutation was already in flight",
		}, []string{"interaction"}),
		reconciled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "interaction",
			Name:      "toggles_reconciled_total",
			Help:      "Toggles confirmed by the backend",
		}, []string{"interaction"}),
		rolledBack: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "interaction",
			Name:      "toggles_rolled_back_total",
			Help:      "Toggles reverted after a failed mutation",
		}, []string{"interaction", "error_kind"}),
	}
}

func (m *InteractionMetrics) ToggleApplied(interaction string) {
	m.applied.WithLabelValues(interaction).Inc()
}

func (m *InteractionMetrics) ToggleIgnored(interaction string) {
	m.ignored.WithLabelValues(interaction).Inc()
}

func (m *InteractionMetrics) ToggleReconciled(interaction string) {
	m.reconciled.WithLabelValues(interaction).Inc()
}

func (m *InteractionMetrics) ToggleRolledBack(interaction, errorKind string) {
	m.rolledBack.WithLabelValues(interaction, errorKind).Inc()
}

// HTTPMetrics instruments the mock REST backend.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the request counters on reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	factory := promauto.With(reg)
	return &HTTPMetrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mockapi",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "mockapi",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Middleware records one observation per request, labelled by the matched route.
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
