package payout_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labourtime/labourtime/internal/accounts"
	"github.com/labourtime/labourtime/internal/clock"
	"github.com/labourtime/labourtime/internal/ledger"
	"github.com/labourtime/labourtime/internal/lock"
	"github.com/labourtime/labourtime/internal/model"
	"github.com/labourtime/labourtime/internal/payout"
	"github.com/labourtime/labourtime/internal/plan"
	"github.com/labourtime/labourtime/internal/store/memory"
	"github.com/labourtime/labourtime/internal/store/sqlstore"
)

type testStore interface {
	payout.Store
	accounts.Store
	ledger.Store
	plan.Store
	AddCooperation(ctx context.Context, c model.Cooperation) error
	SetRequestedCooperation(ctx context.Context, planID, coop uuid.UUID) (model.Plan, error)
	AcceptCooperationRequest(ctx context.Context, planID, coop uuid.UUID) (model.Plan, error)
}

var storeFactories = map[string]func(t *testing.T) testStore{
	"memory": func(*testing.T) testStore { return memory.New() },
	"sqlite": func(t *testing.T) testStore {
		s, err := sqlstore.Open(context.Background(), "sqlite", ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	},
}

var start = time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type recorder struct {
	results []string
	payouts int
}

func (r *recorder) ObserveCycle(result string, _ time.Duration, _ decimal.Decimal, payouts, _ int) {
	r.results = append(r.results, result)
	r.payouts += payouts
}

type fixture struct {
	ctx      context.Context
	store    testStore
	clock    *clock.Fake
	accounts *accounts.Service
	plans    *plan.Service
	ledger   *ledger.Service
	recorder *recorder
	engine   *payout.Engine
}

func newFixture(t *testing.T, s testStore, opts ...payout.Option) *fixture {
	t.Helper()
	clk := clock.NewFake(start)
	dir := accounts.NewService(s, nil)
	rec := &recorder{}
	_, err := dir.SocialAccounting(context.Background())
	require.NoError(t, err)
	return &fixture{
		ctx:      context.Background(),
		store:    s,
		clock:    clk,
		accounts: dir,
		plans:    plan.NewService(s, dir, clk, nil),
		ledger:   ledger.NewService(s, nil),
		recorder: rec,
		engine:   payout.NewEngine(s, dir, clk, append([]payout.Option{payout.WithRecorder(rec)}, opts...)...),
	}
}

func forEachStore(t *testing.T, fn func(t *testing.T, f *fixture)) {
	for name, open := range storeFactories {
		t.Run(name, func(t *testing.T) {
			fn(t, newFixture(t, open(t)))
		})
	}
}

// activePlan approves and activates a plan of a fresh company at the
// current fake time.
func (f *fixture) activePlan(t *testing.T, labour, resources, means string, timeframe int, public bool) (model.Plan, model.Company) {
	t.Helper()
	planner, err := f.accounts.CreateCompany(f.ctx, "Company", "")
	require.NoError(t, err)
	p, err := f.plans.Approve(f.ctx, plan.Draft{
		Planner:         planner.ID,
		Labour:          dec(labour),
		Resources:       dec(resources),
		Means:           dec(means),
		ProductName:     "product",
		ProductAmount:   10,
		Timeframe:       timeframe,
		IsPublicService: public,
	})
	require.NoError(t, err)
	p, err = f.plans.Activate(f.ctx, p.ID)
	require.NoError(t, err)
	return p, planner
}

func (f *fixture) run(t *testing.T) payout.CycleReport {
	t.Helper()
	report, err := f.engine.RunCycle(f.ctx)
	require.NoError(t, err)
	return report
}

func (f *fixture) plan(t *testing.T, id uuid.UUID) model.Plan {
	t.Helper()
	p, err := f.store.GetPlan(f.ctx, id)
	require.NoError(t, err)
	return p
}

func (f *fixture) balance(t *testing.T, account uuid.UUID) decimal.Decimal {
	t.Helper()
	b, err := f.ledger.Balance(f.ctx, account)
	require.NoError(t, err)
	return b
}

func TestRunCycle_PaysFirstDayUpfront(t *testing.T) {
	forEachStore(t, func(t *testing.T, f *fixture) {
		p, planner := f.activePlan(t, "9", "0", "0", 3, false)

		report := f.run(t)
		assert.Equal(t, 1, report.Payouts)
		assert.Equal(t, 1, report.PlansUpdated)
		assert.True(t, dec("1").Equal(report.Factor))
		assert.True(t, dec("3").Equal(report.TotalPaid))

		got := f.plan(t, p.ID)
		assert.Equal(t, 1, got.PayoutCount)
		assert.Equal(t, 0, got.ActiveDays)
		require.NotNil(t, got.ExpirationRelative)
		assert.Equal(t, 3, *got.ExpirationRelative)
		require.NotNil(t, got.ExpirationDate)
		assert.True(t, start.Add(72*time.Hour).Equal(*got.ExpirationDate))

		// labour credit of 9 plus one daily wage
		assert.True(t, dec("12").Equal(f.balance(t, planner.LabourAccount)))
	})
}

func TestRunCycle_IsIdempotentWithinADay(t *testing.T) {
	forEachStore(t, func(t *testing.T, f *fixture) {
		p, _ := f.activePlan(t, "9", "0", "0", 3, false)
		f.run(t)
		f.clock.Advance(23 * time.Hour)

		report := f.run(t)
		assert.Equal(t, 0, report.Payouts)
		assert.Equal(t, 1, f.plan(t, p.ID).PayoutCount)
	})
}

func TestRunCycle_PaysEachElapsedDay(t *testing.T) {
	forEachStore(t, func(t *testing.T, f *fixture) {
		p, _ := f.activePlan(t, "9", "0", "0", 3, false)
		f.clock.Advance(25 * time.Hour)

		report := f.run(t)
		assert.Equal(t, 2, report.Payouts)
		got := f.plan(t, p.ID)
		assert.Equal(t, 1, got.ActiveDays)
		assert.Equal(t, 2, got.PayoutCount)
		assert.Equal(t, 1, *got.ExpirationRelative)
	})
}

func TestRunCycle_ExpiresAndPaysOutstandingDays(t *testing.T) {
	forEachStore(t, func(t *testing.T, f *fixture) {
		p, _ := f.activePlan(t, "9", "0", "0", 3, false)
		f.clock.Advance(clock.Days(10))

		report := f.run(t)
		assert.Equal(t, 3, report.Payouts)
		assert.Equal(t, 1, report.PlansExpired)

		got := f.plan(t, p.ID)
		assert.True(t, got.Expired)
		assert.False(t, got.IsActive)
		assert.Equal(t, 3, got.ActiveDays)
		assert.Equal(t, 3, got.PayoutCount)
		assert.Equal(t, -7, *got.ExpirationRelative)

		report = f.run(t)
		assert.Equal(t, 0, report.Payouts)
		assert.Equal(t, 0, report.PlansUpdated)
	})
}

func TestRunCycle_ExpiryEndsCooperation(t *testing.T) {
	forEachStore(t, func(t *testing.T, f *fixture) {
		member, coordinator := f.activePlan(t, "4", "0", "0", 2, false)
		requesting, _ := f.activePlan(t, "4", "0", "0", 2, false)
		coop := model.Cooperation{ID: uuid.New(), CreationDate: start, Name: "Co", Coordinator: coordinator.ID}
		require.NoError(t, f.store.AddCooperation(f.ctx, coop))
		_, err := f.store.SetRequestedCooperation(f.ctx, member.ID, coop.ID)
		require.NoError(t, err)
		_, err = f.store.AcceptCooperationRequest(f.ctx, member.ID, coop.ID)
		require.NoError(t, err)
		_, err = f.store.SetRequestedCooperation(f.ctx, requesting.ID, coop.ID)
		require.NoError(t, err)

		f.clock.Advance(clock.Days(3))
		report := f.run(t)
		assert.Equal(t, 2, report.PlansExpired)

		assert.Nil(t, f.plan(t, member.ID).Cooperation)
		assert.Nil(t, f.plan(t, requesting.ID).RequestedCooperation)
	})
}

func TestRunCycle_CycleAtExpirationInstantPaysOneExtraDay(t *testing.T) {
	forEachStore(t, func(t *testing.T, f *fixture) {
		p, _ := f.activePlan(t, "9", "0", "0", 3, false)
		f.run(t)

		// exactly at the expiration date the plan is still payable
		f.clock.Advance(clock.Days(3))
		report := f.run(t)
		assert.Equal(t, 3, report.Payouts)
		assert.Equal(t, 0, report.PlansExpired)

		f.clock.Advance(time.Second)
		report = f.run(t)
		assert.Equal(t, 0, report.Payouts)
		assert.Equal(t, 1, report.PlansExpired)

		got := f.plan(t, p.ID)
		assert.True(t, got.Expired)
		assert.Equal(t, 3, got.ActiveDays)
		assert.Equal(t, 4, got.PayoutCount)
	})
}

// interleavingStore runs before ahead of the first payout it records, so
// another cycle can slip in between reading a plan and paying it.
type interleavingStore struct {
	payout.Store
	before func()
	done   bool
}

func (s *interleavingStore) RecordPayout(ctx context.Context, id uuid.UUID, paidBefore int, t model.Transaction) (model.Plan, error) {
	if !s.done {
		s.done = true
		s.before()
	}
	return s.Store.RecordPayout(ctx, id, paidBefore, t)
}

func TestRunCycle_ConcurrentEnginesPayOnce(t *testing.T) {
	forEachStore(t, func(t *testing.T, f *fixture) {
		p, planner := f.activePlan(t, "10", "0", "0", 5, false)

		// each engine has its own in-process lock, as two processes would
		other := payout.NewEngine(&interleavingStore{Store: f.store, before: func() { f.run(t) }}, f.accounts, f.clock)
		report, err := other.RunCycle(f.ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Payouts)

		got := f.plan(t, p.ID)
		assert.Equal(t, 0, got.ActiveDays)
		assert.Equal(t, 1, got.PayoutCount)
		assert.True(t, dec("12").Equal(f.balance(t, planner.LabourAccount)))
		assert.Equal(t, 1, f.recorder.payouts)
	})
}

func TestRunCycle_CountsWholeDaysNotCalendarDays(t *testing.T) {
	forEachStore(t, func(t *testing.T, f *fixture) {
		f.clock.Set(time.Date(2024, 5, 6, 23, 45, 0, 0, time.UTC))
		p, _ := f.activePlan(t, "5", "0", "0", 1, false)
		f.run(t)
		f.clock.Set(time.Date(2024, 5, 7, 0, 1, 0, 0, time.UTC))

		report := f.run(t)
		assert.Equal(t, 0, report.Payouts)
		assert.Equal(t, 1, f.plan(t, p.ID).PayoutCount)
	})
}

func TestRunCycle_LateFirstCyclePaysOnce(t *testing.T) {
	forEachStore(t, func(t *testing.T, f *fixture) {
		p, _ := f.activePlan(t, "5", "0", "0", 1, false)
		f.clock.Advance(clock.Days(10))
		f.run(t)
		f.run(t)

		got := f.plan(t, p.ID)
		assert.Equal(t, 1, got.PayoutCount)
		assert.True(t, got.Expired)
	})
}

func TestRunCycle_WagesSumToLabourCost(t *testing.T) {
	forEachStore(t, func(t *testing.T, f *fixture) {
		_, planner := f.activePlan(t, "10", "3", "2", 5, false)
		f.run(t)
		for i := 0; i < 4; i++ {
			f.clock.Advance(clock.Days(1))
			f.run(t)
		}
		f.clock.Advance(clock.Days(10))
		f.run(t)

		// credit 10 plus five wages of 2
		assert.True(t, dec("20").Equal(f.balance(t, planner.LabourAccount)))
	})
}

func TestRunCycle_PublicServicesLowerTheFactor(t *testing.T) {
	forEachStore(t, func(t *testing.T, f *fixture) {
		_, productive := f.activePlan(t, "1", "0", "0", 2, false)
		_, public := f.activePlan(t, "3", "3", "3", 5, true)

		report := f.run(t)
		assert.Equal(t, "-0.6363636363636364", report.Factor.String())
		assert.Equal(t, 2, report.Payouts)
		assert.True(t, dec("0.68").Equal(f.balance(t, productive.LabourAccount)))
		assert.True(t, dec("2.62").Equal(f.balance(t, public.LabourAccount)))

		inputs, err := f.engine.CurrentFactor(f.ctx)
		require.NoError(t, err)
		assert.True(t, dec("0.5").Equal(inputs.ProductiveLabour))
		assert.True(t, dec("0.6").Equal(inputs.PublicLabour))
	})
}

func TestRunCycle_RejectsInconsistentPlans(t *testing.T) {
	forEachStore(t, func(t *testing.T, f *fixture) {
		planner, err := f.accounts.CreateCompany(f.ctx, "Broken", "")
		require.NoError(t, err)
		broken := model.Plan{
			ID:           uuid.New(),
			CreationDate: start,
			Planner:      planner.ID,
			Costs:        model.ProductionCosts{Labour: dec("1"), Resources: dec("0"), Means: dec("0")},
			Timeframe:    2,
			Approved:     true,
			IsActive:     true,
		}
		require.NoError(t, f.store.CreatePlan(f.ctx, broken, nil))

		_, err = f.engine.RunCycle(f.ctx)
		assert.ErrorIs(t, err, payout.ErrPrecondition)
		assert.Equal(t, []string{"error"}, f.recorder.results)
	})
}

func TestRunCycle_SkipsWhenLockHeld(t *testing.T) {
	locker := lock.NewLocal()
	f := newFixture(t, memory.New(), payout.WithLocker(locker))
	f.activePlan(t, "2", "0", "0", 2, false)

	unlock, err := locker.TryLock(f.ctx)
	require.NoError(t, err)
	_, err = f.engine.RunCycle(f.ctx)
	assert.ErrorIs(t, err, lock.ErrHeld)
	require.NoError(t, unlock(f.ctx))

	report := f.run(t)
	assert.Equal(t, 1, report.Payouts)
	assert.Equal(t, []string{"skipped", "ok"}, f.recorder.results)
	assert.Equal(t, 1, f.recorder.payouts)
}

func TestRunCycle_PayoutCountTracksActiveDays(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 50
	properties := gopter.NewProperties(params)

	properties.Property("payout count stays within one of active days", prop.ForAll(
		func(timeframe int, steps []int) bool {
			f := newFixture(t, memory.New())
			p, _ := f.activePlan(t, "6", "0", "0", timeframe, false)
			for _, hours := range steps {
				f.clock.Advance(time.Duration(hours) * time.Hour)
				if _, err := f.engine.RunCycle(f.ctx); err != nil {
					return false
				}
				got := f.plan(t, p.ID)
				if got.PayoutCount > got.ActiveDays+1 {
					return false
				}
				if got.Expired && got.PayoutCount < timeframe {
					return false
				}
				if !got.Expired && got.PayoutCount != got.ActiveDays+1 {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 5),
		gen.SliceOf(gen.IntRange(0, 60)),
	))

	properties.TestingRun(t)
}
