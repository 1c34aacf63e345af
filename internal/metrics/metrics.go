// Package metrics exposes payout cycle metrics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Cycle results used as the result label.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// Metrics holds the payout collectors.
type Metrics struct {
	Cycles        *prometheus.CounterVec
	Payouts       prometheus.Counter
	PlansExpired  prometheus.Counter
	Factor        prometheus.Gauge
	CycleDuration prometheus.Histogram
}

// New registers the payout collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Cycles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labourtime",
			Name:      "payout_cycles_total",
			Help:      "Payout cycles by result.",
		}, []string{"result"}),
		Payouts: f.NewCounter(prometheus.CounterOpts{
			Namespace: "labourtime",
			Name:      "payouts_total",
			Help:      "Wage payouts booked.",
		}),
		PlansExpired: f.NewCounter(prometheus.CounterOpts{
			Namespace: "labourtime",
			Name:      "plans_expired_total",
			Help:      "Plans expired by payout cycles.",
		}),
		Factor: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "labourtime",
			Name:      "payout_factor",
			Help:      "Payout factor of the last completed cycle.",
		}),
		CycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "labourtime",
			Name:      "payout_cycle_duration_seconds",
			Help:      "Wall time of payout cycles.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// ObserveCycle records one payout cycle.
func (m *Metrics) ObserveCycle(result string, d time.Duration, factor decimal.Decimal, payouts, expired int) {
	m.Cycles.WithLabelValues(result).Inc()
	if result == ResultSkipped {
		return
	}
	m.CycleDuration.Observe(d.Seconds())
	m.Payouts.Add(float64(payouts))
	m.PlansExpired.Add(float64(expired))
	if result == ResultOK {
		m.Factor.Set(factor.InexactFloat64())
	}
}
