package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PaymentMetrics records payment attempt activity for the /metrics endpoint.
type PaymentMetrics struct {
	AttemptsStarted   *prometheus.CounterVec
	AttemptsCompleted *prometheus.CounterVec
	AttemptsFailed    *prometheus.CounterVec
	QuoteLatency      prometheus.Histogram
	RequestsExpired   prometheus.Counter
}

var (
	paymentMetricsOnce sync.Once
	paymentRegistry    *PaymentMetrics
)

// Payments returns the lazily-initialised payment metrics registry.
func Payments() *PaymentMetrics {
	paymentMetricsOnce.Do(func() {
		paymentRegistry = &PaymentMetrics{
			AttemptsStarted: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "paylink",
				Subsystem: "payments",
				Name:      "attempts_started_total",
				Help:      "Payment attempts started, segmented by source network.",
			}, []string{"network"}),
			AttemptsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "paylink",
				Subsystem: "payments",
				Name:      "attempts_completed_total",
				Help:      "Payment attempts that reached completion, segmented by route kind.",
			}, []string{"route"}),
			AttemptsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "paylink",
				Subsystem: "payments",
				Name:      "attempts_failed_total",
				Help:      "Payment attempts that failed, segmented by reason class.",
			}, []string{"reason"}),
			QuoteLatency: promauto.NewHistogram(prometheus.HistogramOpts{
				Namespace: "paylink",
				Subsystem: "payments",
				Name:      "quote_duration_seconds",
				Help:      "Latency distribution for settlement provider quote calls.",
				Buckets:   prometheus.DefBuckets,
			}),
			RequestsExpired: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "paylink",
				Subsystem: "requests",
				Name:      "expired_total",
				Help:      "Payment requests transitioned to expired by the background job.",
			}),
		}
	})
	return paymentRegistry
}
