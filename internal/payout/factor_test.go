package payout

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labourtime/labourtime/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func payable(labour, resources, means string, timeframe int, public bool) model.Plan {
	return model.Plan{
		ID:              uuid.New(),
		Costs:           model.ProductionCosts{Labour: dec(labour), Resources: dec(resources), Means: dec(means)},
		Timeframe:       timeframe,
		IsPublicService: public,
		Approved:        true,
		IsActive:        true,
	}
}

func TestFactor_Example(t *testing.T) {
	productive := payable("1", "0", "0", 2, false)
	public := payable("3", "3", "3", 5, true)

	in := SumFactorInputs([]model.Plan{productive, public})
	assert.True(t, dec("0.5").Equal(in.ProductiveLabour))
	assert.True(t, dec("0.6").Equal(in.PublicLabour))
	assert.True(t, dec("0.6").Equal(in.PublicMeans))
	assert.True(t, dec("0.6").Equal(in.PublicResources))

	factor := in.Factor()
	assert.Equal(t, "-0.6363636363636364", factor.String())
	assert.Equal(t, "-0.32", DailyWage(factor, productive).String())
}

func TestFactor(t *testing.T) {
	tests := []struct {
		name  string
		plans []model.Plan
		want  string
	}{
		{"no plans", nil, "0"},
		{"productive only", []model.Plan{payable("10", "5", "5", 5, false)}, "1"},
		{"public only divides by one", []model.Plan{payable("0", "2", "3", 1, true)}, "-5"},
		{"public labour only", []model.Plan{payable("4", "0", "0", 2, true)}, "0"},
		{"zero-cost public plan", []model.Plan{payable("2", "0", "0", 1, false), payable("0", "0", "0", 1, true)}, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Factor(tt.plans)
			assert.True(t, dec(tt.want).Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestFactor_IgnoresUnpayablePlans(t *testing.T) {
	productive := payable("1", "0", "0", 1, false)
	expiredPublic := payable("0", "10", "10", 1, true)
	expiredPublic.Expired = true
	inactivePublic := payable("0", "10", "10", 1, true)
	inactivePublic.IsActive = false

	assert.True(t, dec("1").Equal(Factor([]model.Plan{productive, expiredPublic, inactivePublic})))
}

func TestDailyWage_RoundsHalfToEven(t *testing.T) {
	p := payable("0.25", "0", "0", 2, false) // 0.125 per day
	assert.Equal(t, "0.12", DailyWage(decimal.NewFromInt(1), p).String())
	p = payable("0.75", "0", "0", 2, false) // 0.375 per day
	assert.Equal(t, "0.38", DailyWage(decimal.NewFromInt(1), p).String())
}

func TestSchedule(t *testing.T) {
	activation := time.Date(2021, 10, 2, 2, 0, 0, 0, time.UTC)
	p := model.Plan{ID: uuid.New(), IsActive: true, ActivationDate: &activation, Timeframe: 1}

	tests := []struct {
		name         string
		timeframe    int
		now          time.Time
		activeDays   int
		relative     int
		expiresAfter time.Duration
	}{
		{"expires in under a day", 1, activation.Add(3 * time.Hour), 0, 0, 24 * time.Hour},
		{"exactly one day left", 2, activation.Add(24 * time.Hour), 1, 1, 48 * time.Hour},
		{"capped at timeframe", 3, activation.Add(10 * 24 * time.Hour), 3, -7, 72 * time.Hour},
		{"just past expiry", 1, activation.Add(24*time.Hour + time.Minute), 1, -1, 24 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p.Timeframe = tt.timeframe
			s, err := Schedule(p, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.activeDays, s.ActiveDays)
			assert.Equal(t, tt.relative, s.ExpirationRelative)
			assert.True(t, activation.Add(tt.expiresAfter).Equal(s.ExpirationDate))
		})
	}
}

func TestSchedule_Preconditions(t *testing.T) {
	now := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		plan model.Plan
	}{
		{"inactive", model.Plan{ActivationDate: &now, Timeframe: 1}},
		{"no activation date", model.Plan{IsActive: true, Timeframe: 1}},
		{"zero timeframe", model.Plan{IsActive: true, ActivationDate: &now}},
	}
	for _, tt := range tests {
		_, err := Schedule(tt.plan, now)
		assert.ErrorIs(t, err, ErrPrecondition, tt.name)
	}
}
