package payout

import (
	"errors"
	"fmt"
	"time"

	"github.com/labourtime/labourtime/internal/clock"
	"github.com/labourtime/labourtime/internal/model"
)

// ErrPrecondition marks a plan the engine cannot process because its state
// is inconsistent. It signals a bug elsewhere, not a business refusal.
var ErrPrecondition = errors.New("payout precondition violated")

// Schedule computes a plan's active days and expiration at now.
func Schedule(p model.Plan, now time.Time) (model.PlanSchedule, error) {
	if !p.IsActive {
		return model.PlanSchedule{}, fmt.Errorf("plan %s is not active: %w", p.ID, ErrPrecondition)
	}
	if p.ActivationDate == nil {
		return model.PlanSchedule{}, fmt.Errorf("plan %s has no activation date: %w", p.ID, ErrPrecondition)
	}
	if p.Timeframe <= 0 {
		return model.PlanSchedule{}, fmt.Errorf("plan %s has timeframe %d: %w", p.ID, p.Timeframe, ErrPrecondition)
	}

	expiration := p.ActivationDate.Add(clock.Days(p.Timeframe))
	return model.PlanSchedule{
		ActiveDays:         min(p.Timeframe, clock.FloorDays(now.Sub(*p.ActivationDate))),
		ExpirationRelative: clock.FloorDays(expiration.Sub(now)),
		ExpirationDate:     expiration,
	}, nil
}
