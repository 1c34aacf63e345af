// Package stats reports figures about the whole economy.
package stats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/labourtime/labourtime/internal/model"
)

// Store is what the statistics read.
type Store interface {
	Companies(ctx context.Context) ([]model.Company, error)
	Members(ctx context.Context) ([]model.Member, error)
	Cooperations(ctx context.Context) ([]model.Cooperation, error)
	ActivePlans(ctx context.Context) ([]model.Plan, error)
}

// Balancer derives account balances.
type Balancer interface {
	Balance(ctx context.Context, account uuid.UUID) (decimal.Decimal, error)
}

// Statistics is a snapshot of the economy.
type Statistics struct {
	RegisteredCompanies       int             `json:"registered_companies"`
	RegisteredMembers         int             `json:"registered_members"`
	Cooperations              int             `json:"cooperations"`
	CertificatesInCirculation decimal.Decimal `json:"certificates_in_circulation"`
	AvailableProduct          decimal.Decimal `json:"available_product"`
	ActivePlans               int             `json:"active_plans"`
	ActivePublicPlans         int             `json:"active_public_plans"`
	AverageTimeframe          decimal.Decimal `json:"average_timeframe_days"`
	PlannedWork               decimal.Decimal `json:"planned_work"`
	PlannedResources          decimal.Decimal `json:"planned_resources"`
	PlannedMeans              decimal.Decimal `json:"planned_means"`
}

// Service computes Statistics.
type Service struct {
	store    Store
	balances Balancer
	logger   *slog.Logger
}

// NewService creates a Service. A nil logger uses slog.Default.
func NewService(store Store, balances Balancer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, balances: balances, logger: logger.With("component", "stats")}
}

// Get computes the current statistics. Certificates in circulation are the
// labour balances of companies plus the balances of members; available
// product is the negated sum of product account balances.
func (s *Service) Get(ctx context.Context) (Statistics, error) {
	st := Statistics{
		CertificatesInCirculation: decimal.Zero,
		AvailableProduct:          decimal.Zero,
		AverageTimeframe:          decimal.Zero,
		PlannedWork:               decimal.Zero,
		PlannedResources:          decimal.Zero,
		PlannedMeans:              decimal.Zero,
	}

	companies, err := s.store.Companies(ctx)
	if err != nil {
		return Statistics{}, fmt.Errorf("listing companies: %w", err)
	}
	st.RegisteredCompanies = len(companies)
	for _, c := range companies {
		labour, err := s.balances.Balance(ctx, c.LabourAccount)
		if err != nil {
			return Statistics{}, fmt.Errorf("labour balance of company %s: %w", c.ID, err)
		}
		product, err := s.balances.Balance(ctx, c.ProductAccount)
		if err != nil {
			return Statistics{}, fmt.Errorf("product balance of company %s: %w", c.ID, err)
		}
		st.CertificatesInCirculation = st.CertificatesInCirculation.Add(labour)
		st.AvailableProduct = st.AvailableProduct.Sub(product)
	}

	members, err := s.store.Members(ctx)
	if err != nil {
		return Statistics{}, fmt.Errorf("listing members: %w", err)
	}
	st.RegisteredMembers = len(members)
	for _, m := range members {
		b, err := s.balances.Balance(ctx, m.Account)
		if err != nil {
			return Statistics{}, fmt.Errorf("balance of member %s: %w", m.ID, err)
		}
		st.CertificatesInCirculation = st.CertificatesInCirculation.Add(b)
	}

	coops, err := s.store.Cooperations(ctx)
	if err != nil {
		return Statistics{}, fmt.Errorf("listing cooperations: %w", err)
	}
	st.Cooperations = len(coops)

	active, err := s.store.ActivePlans(ctx)
	if err != nil {
		return Statistics{}, fmt.Errorf("listing active plans: %w", err)
	}
	st.ActivePlans = len(active)
	var timeframes int64
	for _, p := range active {
		if p.IsPublicService {
			st.ActivePublicPlans++
		}
		timeframes += int64(p.Timeframe)
		st.PlannedWork = st.PlannedWork.Add(p.Costs.Labour)
		st.PlannedResources = st.PlannedResources.Add(p.Costs.Resources)
		st.PlannedMeans = st.PlannedMeans.Add(p.Costs.Means)
	}
	if len(active) > 0 {
		st.AverageTimeframe = decimal.NewFromInt(timeframes).Div(decimal.NewFromInt(int64(len(active))))
	}
	s.logger.Debug("statistics computed", "companies", st.RegisteredCompanies, "active_plans", st.ActivePlans)
	return st, nil
}
