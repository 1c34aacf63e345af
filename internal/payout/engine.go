// Package payout computes the payout factor and runs payout cycles: it
// advances the schedule of every active plan, expires plans whose
// timeframe has passed and pays the daily wages owed to each plan.
package payout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/labourtime/labourtime/internal/clock"
	"github.com/labourtime/labourtime/internal/id"
	"github.com/labourtime/labourtime/internal/ledger"
	"github.com/labourtime/labourtime/internal/lock"
	"github.com/labourtime/labourtime/internal/metrics"
	"github.com/labourtime/labourtime/internal/model"
	"github.com/labourtime/labourtime/internal/store"
)

// Store is the plan persistence the engine drives. Every method is atomic.
type Store interface {
	ActivePlans(ctx context.Context) ([]model.Plan, error)
	// PayablePlans returns plans that are approved, active and not expired.
	PayablePlans(ctx context.Context) ([]model.Plan, error)
	UpdateSchedule(ctx context.Context, id uuid.UUID, s model.PlanSchedule) (model.Plan, error)
	// RecordPayout appends the wage transaction and increments the plan's
	// payout count together, provided the count is still paidBefore. It
	// returns store.ErrConflict when another cycle paid first.
	RecordPayout(ctx context.Context, id uuid.UUID, paidBefore int, t model.Transaction) (model.Plan, error)
	GetPlan(ctx context.Context, id uuid.UUID) (model.Plan, error)
	// ExpirePlan marks the plan expired and inactive and clears its
	// cooperation and cooperation request.
	ExpirePlan(ctx context.Context, id uuid.UUID) (model.Plan, error)
	GetCompany(ctx context.Context, id uuid.UUID) (model.Company, error)
}

// SocialAccounting provides the account wages are paid from.
type SocialAccounting interface {
	SocialAccounting(ctx context.Context) (model.SocialAccounting, error)
}

// Recorder observes finished cycles.
type Recorder interface {
	ObserveCycle(result string, d time.Duration, factor decimal.Decimal, payouts, expired int)
}

// CycleReport summarises one payout cycle.
type CycleReport struct {
	Started      time.Time
	Finished     time.Time
	Factor       decimal.Decimal
	PlansUpdated int
	Payouts      int
	PlansExpired int
	TotalPaid    decimal.Decimal
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocker serialises cycles across processes.
func WithLocker(l lock.Locker) Option {
	return func(e *Engine) { e.locker = l }
}

// WithRecorder reports finished cycles, for example to metrics.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine runs payout cycles. Cycles never overlap: within a process they
// queue on a mutex and across processes the Locker refuses a second
// holder.
type Engine struct {
	store    Store
	social   SocialAccounting
	clock    clock.Clock
	locker   lock.Locker
	recorder Recorder
	logger   *slog.Logger

	mu sync.Mutex
}

// NewEngine creates an Engine that uses an in-process lock unless
// WithLocker is given.
func NewEngine(st Store, social SocialAccounting, clk clock.Clock, opts ...Option) *Engine {
	e := &Engine{
		store:  st,
		social: social,
		clock:  clk,
		locker: lock.NewLocal(),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	e.logger = e.logger.With("component", "payout")
	return e
}

// CurrentFactor returns the payout factor over the plans payable now.
func (e *Engine) CurrentFactor(ctx context.Context) (FactorInputs, error) {
	plans, err := e.store.PayablePlans(ctx)
	if err != nil {
		return FactorInputs{}, fmt.Errorf("reading payable plans: %w", err)
	}
	return SumFactorInputs(plans), nil
}

// RunCycle updates every active plan and pays the wages owed at the
// current time. Running it again before another day has elapsed pays
// nothing. When another process holds the cycle lock it returns
// lock.ErrHeld without doing any work.
func (e *Engine) RunCycle(ctx context.Context) (CycleReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	unlock, err := e.locker.TryLock(ctx)
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			e.observe(metrics.ResultSkipped, CycleReport{})
			e.logger.Info("payout cycle skipped, lock held elsewhere")
		}
		return CycleReport{}, err
	}
	defer func() {
		if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
			e.logger.Warn("releasing payout lock", "err", uerr)
		}
	}()

	report, err := e.runCycle(ctx)
	report.Finished = e.clock.Now()
	if err != nil {
		e.observe(metrics.ResultError, report)
		e.logger.Error("payout cycle failed", "err", err,
			"payouts", report.Payouts, "plans_expired", report.PlansExpired)
		return report, err
	}
	e.observe(metrics.ResultOK, report)
	e.logger.Info("payout cycle finished",
		"factor", report.Factor.String(),
		"plans_updated", report.PlansUpdated,
		"payouts", report.Payouts,
		"plans_expired", report.PlansExpired,
		"total_paid", report.TotalPaid.String())
	return report, nil
}

func (e *Engine) runCycle(ctx context.Context) (CycleReport, error) {
	now := e.clock.Now()
	report := CycleReport{Started: now, Factor: decimal.Zero, TotalPaid: decimal.Zero}

	social, err := e.social.SocialAccounting(ctx)
	if err != nil {
		return report, fmt.Errorf("social accounting: %w", err)
	}
	inputs, err := e.CurrentFactor(ctx)
	if err != nil {
		return report, err
	}
	factor := inputs.Factor()
	report.Factor = factor

	pay := func(p model.Plan) (model.Plan, error) {
		planner, err := e.store.GetCompany(ctx, p.Planner)
		if err != nil {
			return p, fmt.Errorf("planner of plan %s: %w", p.ID, err)
		}
		amount := DailyWage(factor, p)
		tx := ledger.NewTransaction(ledger.TransferParams{
			Date:           now,
			Sender:         social.Account,
			Receiver:       planner.LabourAccount,
			AmountSent:     amount,
			AmountReceived: amount,
			Purpose:        id.FormatPlanPurpose(p.ID),
		})
		paid, err := e.store.RecordPayout(ctx, p.ID, p.PayoutCount, tx)
		if errors.Is(err, store.ErrConflict) {
			e.logger.Debug("payout recorded by another cycle", "plan", p.ID, "payout_count", p.PayoutCount)
			fresh, err := e.store.GetPlan(ctx, p.ID)
			if err != nil {
				return p, fmt.Errorf("rereading plan %s: %w", p.ID, err)
			}
			return fresh, nil
		}
		if err != nil {
			return p, fmt.Errorf("recording payout for plan %s: %w", p.ID, err)
		}
		report.Payouts++
		report.TotalPaid = report.TotalPaid.Add(amount)
		e.logger.Debug("wage paid", "plan", p.ID, "amount", amount.String(), "payout_count", paid.PayoutCount)
		return paid, nil
	}

	active, err := e.store.ActivePlans(ctx)
	if err != nil {
		return report, fmt.Errorf("reading active plans: %w", err)
	}
	for _, p := range active {
		sched, err := Schedule(p, now)
		if err != nil {
			return report, err
		}
		updated, err := e.store.UpdateSchedule(ctx, p.ID, sched)
		if err != nil {
			return report, fmt.Errorf("updating schedule of plan %s: %w", p.ID, err)
		}
		p = updated
		report.PlansUpdated++

		if !now.After(sched.ExpirationDate) {
			continue
		}
		for p.PayoutCount < p.ActiveDays {
			if p, err = pay(p); err != nil {
				return report, err
			}
		}
		if _, err := e.store.ExpirePlan(ctx, p.ID); err != nil {
			return report, fmt.Errorf("expiring plan %s: %w", p.ID, err)
		}
		report.PlansExpired++
		e.logger.Info("plan expired", "plan", p.ID, "payout_count", p.PayoutCount)
	}

	payable, err := e.store.PayablePlans(ctx)
	if err != nil {
		return report, fmt.Errorf("reading payable plans: %w", err)
	}
	for _, p := range payable {
		for p.IsPayable() && p.PayoutCount <= p.ActiveDays {
			if p, err = pay(p); err != nil {
				return report, err
			}
		}
	}
	return report, nil
}

func (e *Engine) observe(result string, r CycleReport) {
	if e.recorder == nil {
		return
	}
	var d time.Duration
	if !r.Started.IsZero() {
		d = r.Finished.Sub(r.Started)
	}
	e.recorder.ObserveCycle(result, d, r.Factor, r.Payouts, r.PlansExpired)
}
