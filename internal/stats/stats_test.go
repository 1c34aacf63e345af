package stats_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labourtime/labourtime/internal/accounts"
	"github.com/labourtime/labourtime/internal/clock"
	"github.com/labourtime/labourtime/internal/ledger"
	"github.com/labourtime/labourtime/internal/model"
	"github.com/labourtime/labourtime/internal/plan"
	"github.com/labourtime/labourtime/internal/stats"
	"github.com/labourtime/labourtime/internal/store/memory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGet_EmptyEconomy(t *testing.T) {
	st := memory.New()
	got, err := stats.NewService(st, ledger.NewService(st, nil), nil).Get(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got.RegisteredCompanies)
	assert.Zero(t, got.ActivePlans)
	assert.True(t, got.AverageTimeframe.IsZero())
	assert.True(t, got.CertificatesInCirculation.IsZero())
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	clk := clock.NewFake(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	dir := accounts.NewService(st, nil)
	led := ledger.NewService(st, nil)
	plans := plan.NewService(st, dir, clk, nil)

	farm, err := dir.CreateCompany(ctx, "Farm", "")
	require.NoError(t, err)
	school, err := dir.CreateCompany(ctx, "School", "")
	require.NoError(t, err)
	worker, err := dir.CreateMember(ctx, "Worker", "")
	require.NoError(t, err)

	approveAndActivate := func(d plan.Draft) {
		p, err := plans.Approve(ctx, d)
		require.NoError(t, err)
		_, err = plans.Activate(ctx, p.ID)
		require.NoError(t, err)
	}
	approveAndActivate(plan.Draft{Planner: farm.ID, Labour: dec("10"), Resources: dec("4"), Means: dec("2"),
		ProductName: "grain", ProductAmount: 100, Timeframe: 5})
	approveAndActivate(plan.Draft{Planner: school.ID, Labour: dec("6"), Resources: dec("0"), Means: dec("0"),
		ProductName: "lessons", ProductAmount: 10, Timeframe: 3, IsPublicService: true})
	// approved but never activated
	_, err = plans.Approve(ctx, plan.Draft{Planner: farm.ID, Labour: dec("50"), Resources: dec("0"), Means: dec("0"),
		ProductName: "bread", ProductAmount: 1, Timeframe: 1})
	require.NoError(t, err)

	_, err = led.CreateTransaction(ctx, clk.Now(), farm.LabourAccount, worker.Account, dec("3"), "wages")
	require.NoError(t, err)
	require.NoError(t, st.AddCooperation(ctx, model.Cooperation{ID: uuid.New(), Name: "Grain", Coordinator: farm.ID}))

	got, err := stats.NewService(st, led, nil).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.RegisteredCompanies)
	assert.Equal(t, 1, got.RegisteredMembers)
	assert.Equal(t, 1, got.Cooperations)
	assert.Equal(t, 2, got.ActivePlans)
	assert.Equal(t, 1, got.ActivePublicPlans)
	// labour credit 10 + 50 + 6, of which 3 moved to the member
	assert.True(t, dec("66").Equal(got.CertificatesInCirculation), "got %s", got.CertificatesInCirculation)
	assert.True(t, dec("72").Equal(got.AvailableProduct), "got %s", got.AvailableProduct)
	assert.True(t, dec("4").Equal(got.AverageTimeframe))
	assert.True(t, dec("16").Equal(got.PlannedWork))
	assert.True(t, dec("4").Equal(got.PlannedResources))
	assert.True(t, dec("2").Equal(got.PlannedMeans))
}

type failingBalances struct{}

func (failingBalances) Balance(context.Context, uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("ledger offline")
}

func TestGet_WrapsBalanceErrors(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	_, err := accounts.NewService(st, nil).CreateCompany(ctx, "Farm", "")
	require.NoError(t, err)

	_, err = stats.NewService(st, failingBalances{}, nil).Get(ctx)
	assert.ErrorContains(t, err, "ledger offline")
}
