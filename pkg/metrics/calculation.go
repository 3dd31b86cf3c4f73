package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CalculationMetrics records pricing engine activity.
type CalculationMetrics struct {
	duration *prometheus.HistogramVec
	applied  *prometheus.CounterVec
	skipped  *prometheus.CounterVec
}

// NewCalculationMetrics registers the pricing metrics on the provided registerer.
func NewCalculationMetrics(reg prometheus.Registerer) *CalculationMetrics {
	if reg == nil {
		return &CalculationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "discount_calculation_duration_seconds",
		Help:    "Duration of discount calculations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
	applied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discount_rules_applied",
		Help: "Discount rules that produced a non-zero discount.",
	}, []string{"discount_type"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discount_rules_skipped",
		Help: "Discount rules skipped during evaluation.",
	}, []string{"reason"})
	reg.MustRegister(duration, applied, skipped)
	return &CalculationMetrics{
		duration: duration,
		applied:  applied,
		skipped:  skipped,
	}
}

// ObserveDuration records the duration of a calculation path ("cart" or "product").
func (c *CalculationMetrics) ObserveDuration(path string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(path)).Observe(duration.Seconds())
}

// IncApplied increments the applied counter for the discount type.
func (c *CalculationMetrics) IncApplied(discountType string) {
	if c == nil || c.applied == nil {
		return
	}
	c.applied.WithLabelValues(normalizeLabel(discountType)).Inc()
}

// IncSkipped increments the skipped counter for the given reason.
func (c *CalculationMetrics) IncSkipped(reason string) {
	if c == nil || c.skipped == nil {
		return
	}
	c.skipped.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
