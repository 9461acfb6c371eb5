package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records outcomes of checkout transitions.
type CheckoutMetrics struct {
	duration *prometheus.HistogramVec
	success  prometheus.Counter
	failure  *prometheus.CounterVec
	rejected prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout transitions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	success := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_success_total",
		Help: "Completed checkouts.",
	})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failure_total",
		Help: "Failed checkout transitions by step.",
	}, []string{"step"})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_rejected_total",
		Help: "Checkout calls rejected by the in-flight guard.",
	})
	reg.MustRegister(duration, success, failure, rejected)
	return &CheckoutMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		rejected: rejected,
	}
}

// ObserveDuration records the duration for the given outcome.
func (c *CheckoutMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncSuccess increments the completed-checkout counter.
func (c *CheckoutMetrics) IncSuccess() {
	if c == nil || c.success == nil {
		return
	}
	c.success.Inc()
}

// IncFailure increments the failure counter for the named step.
func (c *CheckoutMetrics) IncFailure(step string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(step)).Inc()
}

// IncRejected increments the guard-rejection counter.
func (c *CheckoutMetrics) IncRejected() {
	if c == nil || c.rejected == nil {
		return
	}
	c.rejected.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
