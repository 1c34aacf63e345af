package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/labourtime/labourtime/internal/clock"
	"github.com/labourtime/labourtime/internal/id"
	"github.com/labourtime/labourtime/internal/ledger"
	"github.com/labourtime/labourtime/internal/model"
)

// Store reads the plans and parties involved in pricing and purchases.
type Store interface {
	GetPlan(ctx context.Context, id uuid.UUID) (model.Plan, error)
	// CooperatingPlans returns every plan in the plan's cooperation, just
	// the plan itself when it does not cooperate, or nothing when the plan
	// is unknown.
	CooperatingPlans(ctx context.Context, planID uuid.UUID) ([]model.Plan, error)
	GetMember(ctx context.Context, id uuid.UUID) (model.Member, error)
	GetCompany(ctx context.Context, id uuid.UUID) (model.Company, error)
	ledger.AccountChecker
	// AddPurchase appends the payment and the purchase record together.
	AddPurchase(ctx context.Context, p model.Purchase, t model.Transaction) error
	PurchasesOf(ctx context.Context, buyer uuid.UUID) ([]model.Purchase, error)
}

// ErrInvalidAmount is returned for purchases of less than one unit.
var ErrInvalidAmount = errors.New("purchase amount must be at least 1")

// Service prices cooperating plans.
type Service struct {
	store  Store
	clock  clock.Clock
	logger *slog.Logger
}

// NewService creates a pricing Service. A nil logger uses slog.Default.
func NewService(store Store, clk clock.Clock, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, clock: clk, logger: logger.With("component", "pricing")}
}

// CooperatingPlans returns the plans that share a price with planID.
func (s *Service) CooperatingPlans(ctx context.Context, planID uuid.UUID) ([]model.Plan, error) {
	plans, err := s.store.CooperatingPlans(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("reading cooperating plans of %s: %w", planID, err)
	}
	return plans, nil
}

// Price returns the per-unit price buyers pay for a plan's product: zero
// for public services, otherwise the blended price of its cooperation.
func (s *Service) Price(ctx context.Context, planID uuid.UUID) (decimal.Decimal, error) {
	p, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("plan %s: %w", planID, err)
	}
	if p.IsPublicService {
		return decimal.Zero, nil
	}
	plans, err := s.CooperatingPlans(ctx, planID)
	if err != nil {
		return decimal.Zero, err
	}
	return CalculatePrice(plans), nil
}

// Purchase is the outcome of a consumer purchase.
type Purchase struct {
	ID              uuid.UUID
	Transaction     model.Transaction
	PricePerUnit    decimal.Decimal
	IndividualPrice decimal.Decimal
	Amount          int
}

// PayConsumerProduct books a member's purchase of amount units of a plan's
// product and records the purchase. The member pays the cooperation price
// and the planner's product account receives the plan's own price.
func (s *Service) PayConsumerProduct(ctx context.Context, buyer, planID uuid.UUID, amount int) (Purchase, error) {
	if amount < 1 {
		return Purchase{}, ErrInvalidAmount
	}
	member, err := s.store.GetMember(ctx, buyer)
	if err != nil {
		return Purchase{}, fmt.Errorf("member %s: %w", buyer, err)
	}
	p, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return Purchase{}, fmt.Errorf("plan %s: %w", planID, err)
	}
	planner, err := s.store.GetCompany(ctx, p.Planner)
	if err != nil {
		return Purchase{}, fmt.Errorf("planner of %s: %w", planID, err)
	}

	coopPrice, err := s.Price(ctx, planID)
	if err != nil {
		return Purchase{}, err
	}
	individual := PricePerUnit(p)
	units := decimal.NewFromInt(int64(amount))

	params := ledger.TransferParams{
		Date:           s.clock.Now(),
		Sender:         member.Account,
		Receiver:       planner.ProductAccount,
		AmountSent:     units.Mul(coopPrice),
		AmountReceived: units.Mul(individual),
		Purpose:        id.FormatPlanPurpose(p.ID),
	}
	verrs, err := ledger.ValidateTransfer(ctx, params, s.store)
	if err != nil {
		return Purchase{}, fmt.Errorf("booking purchase: %w", err)
	}
	if len(verrs) > 0 {
		return Purchase{}, fmt.Errorf("booking purchase: %w", verrs)
	}
	tx := ledger.NewTransaction(params)
	record := model.Purchase{
		ID:           uuid.New(),
		Date:         tx.Date,
		Plan:         p.ID,
		Buyer:        member.ID,
		PricePerUnit: coopPrice,
		Amount:       amount,
		Purpose:      model.PurposeConsumption,
		Transaction:  tx.ID,
	}
	if err := s.store.AddPurchase(ctx, record, tx); err != nil {
		return Purchase{}, fmt.Errorf("recording purchase: %w", err)
	}
	s.logger.Info("consumer product paid",
		"member", member.ID, "plan", p.ID, "amount", amount,
		"sent", tx.AmountSent.String(), "received", tx.AmountReceived.String())
	return Purchase{ID: record.ID, Transaction: tx, PricePerUnit: coopPrice, IndividualPrice: individual, Amount: amount}, nil
}

// PurchaseInfo is one line of a member's purchase history.
type PurchaseInfo struct {
	Date               time.Time       `json:"date"`
	PlanID             uuid.UUID       `json:"plan_id"`
	ProductName        string          `json:"product_name"`
	ProductDescription string          `json:"product_description"`
	Purpose            string          `json:"purpose"`
	PricePerUnit       decimal.Decimal `json:"price_per_unit"`
	Amount             int             `json:"amount"`
	PriceTotal         decimal.Decimal `json:"price_total"`
}

var purposeLabels = map[model.PurchasePurpose]string{
	model.PurposeMeansOfProduction: "Fixed means of production",
	model.PurposeRawMaterials:      "Liquid means of production",
	model.PurposeConsumption:       "Consumption",
}

// Purchases returns a buyer's purchases, newest first.
func (s *Service) Purchases(ctx context.Context, buyer uuid.UUID) ([]PurchaseInfo, error) {
	records, err := s.store.PurchasesOf(ctx, buyer)
	if err != nil {
		return nil, fmt.Errorf("reading purchases of %s: %w", buyer, err)
	}
	out := make([]PurchaseInfo, 0, len(records))
	for _, r := range records {
		p, err := s.store.GetPlan(ctx, r.Plan)
		if err != nil {
			return nil, fmt.Errorf("plan %s of purchase %s: %w", r.Plan, r.ID, err)
		}
		label, ok := purposeLabels[r.Purpose]
		if !ok {
			label = string(r.Purpose)
		}
		out = append(out, PurchaseInfo{
			Date:               r.Date,
			PlanID:             r.Plan,
			ProductName:        p.ProductName,
			ProductDescription: p.Description,
			Purpose:            label,
			PricePerUnit:       r.PricePerUnit,
			Amount:             r.Amount,
			PriceTotal:         r.Total(),
		})
	}
	return out, nil
}
