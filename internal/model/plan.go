package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductionCosts holds the planned costs of a plan in labour hours.
type ProductionCosts struct {
	Labour    decimal.Decimal
	Resources decimal.Decimal
	Means     decimal.Decimal
}

// Total returns labour + resources + means.
func (c ProductionCosts) Total() decimal.Decimal {
	return c.Labour.Add(c.Resources).Add(c.Means)
}

// Add returns the component-wise sum of c and o.
func (c ProductionCosts) Add(o ProductionCosts) ProductionCosts {
	return ProductionCosts{
		Labour:    c.Labour.Add(o.Labour),
		Resources: c.Resources.Add(o.Resources),
		Means:     c.Means.Add(o.Means),
	}
}

// PerDay divides every component by a timeframe in days.
func (c ProductionCosts) PerDay(days int) ProductionCosts {
	d := decimal.NewFromInt(int64(days))
	return ProductionCosts{
		Labour:    c.Labour.Div(d),
		Resources: c.Resources.Div(d),
		Means:     c.Means.Div(d),
	}
}

// Plan is a company's approved production commitment.
//
// Cost and product fields never change after approval. The lifecycle
// fields below them are owned by the plan service until activation and by
// the payout engine afterwards.
type Plan struct {
	ID              uuid.UUID
	CreationDate    time.Time
	Planner         uuid.UUID // company
	Costs           ProductionCosts
	ProductName     string
	ProductUnit     string
	ProductAmount   int
	Description     string
	Timeframe       int // days
	IsPublicService bool

	Approved       bool
	ApprovalDate   *time.Time
	ApprovalReason string

	IsActive       bool
	ActivationDate *time.Time

	Expired            bool
	ExpirationRelative *int
	ExpirationDate     *time.Time
	ActiveDays         int
	PayoutCount        int

	IsAvailable          bool
	Cooperation          *uuid.UUID
	RequestedCooperation *uuid.UUID
	Hidden               bool
}

// IsPayable reports whether the plan takes part in payouts and the payout
// factor: approved, active and not expired.
func (p Plan) IsPayable() bool {
	return p.Approved && p.IsActive && !p.Expired
}

// Cooperation groups plans that sell at one blended price.
type Cooperation struct {
	ID           uuid.UUID
	CreationDate time.Time
	Name         string
	Definition   string
	Coordinator  uuid.UUID // company
}

// PlanSchedule is what the payout engine recomputes for an active plan on
// every cycle.
type PlanSchedule struct {
	ActiveDays         int
	ExpirationRelative int
	ExpirationDate     time.Time
}
