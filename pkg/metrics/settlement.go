package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// SettlementMetrics tracks service fee outcomes per party.
type SettlementMetrics struct {
	outcomes *prometheus.CounterVec
	amount   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewSettlementMetrics registers the settlement collectors on reg. A nil
// registerer yields a no-op recorder.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "settlement",
		Name:      "fee_outcomes_total",
		Help:      "Service fee outcomes by party and result.",
	}, []string{"party", "outcome"})
	amount := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "settlement",
		Name:      "fee_amount_total",
		Help:      "Service fee amount moved by party and entry type.",
	}, []string{"party", "entry_type"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "settlement",
		Name:      "operation_duration_seconds",
		Help:      "Duration of settlement operations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(outcomes, amount, duration)
	return &SettlementMetrics{
		outcomes: outcomes,
		amount:   amount,
		duration: duration,
	}
}

// IncOutcome counts one per-party result, e.g. DEDUCTED or insufficient_funds.
func (m *SettlementMetrics) IncOutcome(party, outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(party), normalizeLabel(outcome)).Inc()
}

// AddAmount accumulates money moved. Non-positive amounts are ignored.
func (m *SettlementMetrics) AddAmount(party, entryType string, value decimal.Decimal) {
	if m == nil || m.amount == nil || !value.IsPositive() {
		return
	}
	m.amount.WithLabelValues(normalizeLabel(party), normalizeLabel(entryType)).Add(value.InexactFloat64())
}

// ObserveDuration records how long a settlement operation took.
func (m *SettlementMetrics) ObserveDuration(operation string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(d.Seconds())
}
