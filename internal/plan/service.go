// Package plan approves plan drafts, grants their credit and drives a plan
// through activation. Once a plan is active its schedule belongs to the
// payout engine.
package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/labourtime/labourtime/internal/clock"
	"github.com/labourtime/labourtime/internal/id"
	"github.com/labourtime/labourtime/internal/ledger"
	"github.com/labourtime/labourtime/internal/model"
	"github.com/labourtime/labourtime/internal/store"
)

var (
	ErrNotApproved   = errors.New("plan is not approved")
	ErrAlreadyActive = errors.New("plan is already active")
	ErrExpired       = errors.New("plan has expired")
)

// Store is the plan persistence the lifecycle needs.
type Store interface {
	GetCompany(ctx context.Context, id uuid.UUID) (model.Company, error)
	// CreatePlan stores a plan together with its credit transactions.
	CreatePlan(ctx context.Context, p model.Plan, credit []model.Transaction) error
	GetPlan(ctx context.Context, id uuid.UUID) (model.Plan, error)
	Plans(ctx context.Context) ([]model.Plan, error)
	PlansOfCompany(ctx context.Context, company uuid.UUID) ([]model.Plan, error)
	ActivatePlan(ctx context.Context, id uuid.UUID, date time.Time) (model.Plan, error)
	SetHidden(ctx context.Context, id uuid.UUID) (model.Plan, error)
	ToggleAvailability(ctx context.Context, id uuid.UUID) (model.Plan, error)
}

// SocialAccounting provides the issuer of plan credit.
type SocialAccounting interface {
	SocialAccounting(ctx context.Context) (model.SocialAccounting, error)
}

// Service runs the plan lifecycle.
type Service struct {
	store    Store
	social   SocialAccounting
	clock    clock.Clock
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService creates a plan Service. A nil logger uses slog.Default.
func NewService(store Store, social SocialAccounting, clk clock.Clock, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		social:   social,
		clock:    clk,
		validate: newValidator(),
		logger:   logger.With("component", "plan"),
	}
}

// Approve validates a draft, stores it as an approved plan and grants the
// planner credit for it: means, resources and labour accounts are credited
// their planned costs and the product account is debited the total.
func (s *Service) Approve(ctx context.Context, d Draft) (model.Plan, error) {
	if verrs := validateDraft(s.validate, d); len(verrs) > 0 {
		return model.Plan{}, verrs
	}
	planner, err := s.store.GetCompany(ctx, d.Planner)
	if err != nil {
		return model.Plan{}, fmt.Errorf("planner %s: %w", d.Planner, err)
	}
	social, err := s.social.SocialAccounting(ctx)
	if err != nil {
		return model.Plan{}, fmt.Errorf("social accounting: %w", err)
	}

	now := s.clock.Now()
	p := model.Plan{
		ID:              uuid.New(),
		CreationDate:    now,
		Planner:         planner.ID,
		Costs:           d.Costs(),
		ProductName:     d.ProductName,
		ProductUnit:     d.ProductUnit,
		ProductAmount:   d.ProductAmount,
		Description:     d.Description,
		Timeframe:       d.Timeframe,
		IsPublicService: d.IsPublicService,
		Approved:        true,
		ApprovalDate:    &now,
		ApprovalReason:  "approved",
		IsAvailable:     true,
	}

	credit := CreditTransactions(p, planner, social.Account, now)
	if err := s.store.CreatePlan(ctx, p, credit); err != nil {
		return model.Plan{}, fmt.Errorf("storing plan: %w", err)
	}
	s.logger.Info("plan approved",
		"plan", p.ID, "planner", planner.ID, "timeframe", p.Timeframe,
		"total_cost", p.Costs.Total().String(), "public", p.IsPublicService)
	return p, nil
}

// CreditTransactions returns the transactions granting a plan its credit
// from the social accounting.
func CreditTransactions(p model.Plan, planner model.Company, socialAccount uuid.UUID, date time.Time) []model.Transaction {
	purpose := id.FormatPlanPurpose(p.ID)
	grants := []struct {
		account uuid.UUID
		amount  decimal.Decimal
	}{
		{planner.MeansAccount, p.Costs.Means},
		{planner.ResourcesAccount, p.Costs.Resources},
		{planner.LabourAccount, p.Costs.Labour},
		{planner.ProductAccount, p.Costs.Total().Neg()},
	}
	txs := make([]model.Transaction, 0, len(grants))
	for _, g := range grants {
		txs = append(txs, ledger.NewTransaction(ledger.TransferParams{
			Date:           date,
			Sender:         socialAccount,
			Receiver:       g.account,
			AmountSent:     g.amount,
			AmountReceived: g.amount,
			Purpose:        purpose,
		}))
	}
	return txs
}

// Activate starts an approved plan. Payouts are counted from the
// activation date.
func (s *Service) Activate(ctx context.Context, planID uuid.UUID) (model.Plan, error) {
	p, err := s.Get(ctx, planID)
	if err != nil {
		return model.Plan{}, err
	}
	if err := activatable(p); err != nil {
		return model.Plan{}, err
	}

	activated, err := s.store.ActivatePlan(ctx, planID, s.clock.Now())
	if errors.Is(err, store.ErrConflict) {
		// changed since it was read; report the current reason
		if current, gerr := s.Get(ctx, planID); gerr == nil {
			if reason := activatable(current); reason != nil {
				return model.Plan{}, reason
			}
		}
	}
	if err != nil {
		return model.Plan{}, fmt.Errorf("activating plan %s: %w", planID, err)
	}
	s.logger.Info("plan activated", "plan", planID, "activation_date", activated.ActivationDate)
	return activated, nil
}

func activatable(p model.Plan) error {
	switch {
	case !p.Approved:
		return ErrNotApproved
	case p.Expired:
		return ErrExpired
	case p.IsActive:
		return ErrAlreadyActive
	}
	return nil
}

// Get returns a plan by id.
func (s *Service) Get(ctx context.Context, planID uuid.UUID) (model.Plan, error) {
	p, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return model.Plan{}, fmt.Errorf("plan %s: %w", planID, err)
	}
	return p, nil
}

// Hide removes a plan from listings.
func (s *Service) Hide(ctx context.Context, planID uuid.UUID) (model.Plan, error) {
	p, err := s.store.SetHidden(ctx, planID)
	if err != nil {
		return model.Plan{}, fmt.Errorf("hiding plan %s: %w", planID, err)
	}
	return p, nil
}

// ToggleAvailability flips whether a plan's product can be bought.
func (s *Service) ToggleAvailability(ctx context.Context, planID uuid.UUID) (model.Plan, error) {
	p, err := s.store.ToggleAvailability(ctx, planID)
	if err != nil {
		return model.Plan{}, fmt.Errorf("toggling availability of %s: %w", planID, err)
	}
	return p, nil
}

// PlansOfCompany returns the visible plans of a planner.
func (s *Service) PlansOfCompany(ctx context.Context, company uuid.UUID) ([]model.Plan, error) {
	plans, err := s.store.PlansOfCompany(ctx, company)
	if err != nil {
		return nil, fmt.Errorf("plans of %s: %w", company, err)
	}
	visible := plans[:0]
	for _, p := range plans {
		if !p.Hidden {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

// All returns every plan.
func (s *Service) All(ctx context.Context) ([]model.Plan, error) {
	return s.store.Plans(ctx)
}
