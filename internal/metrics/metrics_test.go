package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCycle(ResultOK, 20*time.Millisecond, decimal.RequireFromString("-0.5"), 3, 1)
	m.ObserveCycle(ResultOK, 10*time.Millisecond, decimal.RequireFromString("0.75"), 2, 0)
	m.ObserveCycle(ResultSkipped, 0, decimal.Zero, 0, 0)
	m.ObserveCycle(ResultError, time.Millisecond, decimal.Zero, 1, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Cycles.WithLabelValues(ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cycles.WithLabelValues(ResultSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cycles.WithLabelValues(ResultError)))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.Payouts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PlansExpired))
	assert.Equal(t, 0.75, testutil.ToFloat64(m.Factor), "errors do not move the factor")

	n, err := testutil.GatherAndCount(reg, "labourtime_payout_cycle_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

func TestObserveCycle_FactorWithoutExactFloat(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCycle(ResultOK, time.Millisecond, decimal.NewFromInt(-7).Div(decimal.NewFromInt(11)), 0, 0)

	assert.InDelta(t, -0.6363636, testutil.ToFloat64(m.Factor), 1e-6)
}
