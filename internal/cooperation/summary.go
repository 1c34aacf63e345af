package cooperation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/labourtime/labourtime/internal/model"
	"github.com/labourtime/labourtime/internal/pricing"
	"github.com/labourtime/labourtime/internal/store"
)

// Summary describes a cooperation and its member plans.
type Summary struct {
	ID                     uuid.UUID
	Name                   string
	Definition             string
	Coordinator            uuid.UUID
	CoordinatorName        string
	RequesterIsCoordinator bool
	CooperationPrice       decimal.Decimal
	Plans                  []PlanSummary
}

// PlanSummary is one member plan of a cooperation.
type PlanSummary struct {
	ID              uuid.UUID
	Planner         uuid.UUID
	ProductName     string
	IndividualPrice decimal.Decimal
}

// Summary returns a cooperation's details as seen by requester.
func (s *Service) Summary(ctx context.Context, coopID, requester uuid.UUID) (Summary, error) {
	coop, found, err := s.cooperation(ctx, coopID)
	if err != nil {
		return Summary{}, err
	}
	if !found {
		return Summary{}, fmt.Errorf("cooperation %s: %w", coopID, store.ErrNotFound)
	}
	plans, err := s.store.PlansInCooperation(ctx, coopID)
	if err != nil {
		return Summary{}, fmt.Errorf("member plans of %s: %w", coopID, err)
	}

	sum := Summary{
		ID:                     coop.ID,
		Name:                   coop.Name,
		Definition:             coop.Definition,
		Coordinator:            coop.Coordinator,
		RequesterIsCoordinator: coop.Coordinator == requester,
		CooperationPrice:       pricing.CalculatePrice(plans),
	}
	if c, err := s.store.GetCompany(ctx, coop.Coordinator); err == nil {
		sum.CoordinatorName = c.Name
	}
	for _, p := range plans {
		sum.Plans = append(sum.Plans, PlanSummary{
			ID:              p.ID,
			Planner:         p.Planner,
			ProductName:     p.ProductName,
			IndividualPrice: pricing.PricePerUnit(p),
		})
	}
	return sum, nil
}

// InboundRequest is a pending request to join a cooperation.
type InboundRequest struct {
	Cooperation model.Cooperation
	Plan        model.Plan
}

// InboundRequests returns the pending requests to join any cooperation
// the company coordinates.
func (s *Service) InboundRequests(ctx context.Context, coordinator uuid.UUID) ([]InboundRequest, error) {
	coops, err := s.store.CooperationsCoordinatedBy(ctx, coordinator)
	if err != nil {
		return nil, fmt.Errorf("cooperations of %s: %w", coordinator, err)
	}
	var out []InboundRequest
	for _, c := range coops {
		plans, err := s.store.PlansRequestingCooperation(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("requests to %s: %w", c.ID, err)
		}
		for _, p := range plans {
			out = append(out, InboundRequest{Cooperation: c, Plan: p})
		}
	}
	return out, nil
}

// CoordinatedCooperation is a cooperation with its member count.
type CoordinatedCooperation struct {
	Cooperation model.Cooperation
	PlanCount   int
}

// CoordinatedBy returns the cooperations a company coordinates.
func (s *Service) CoordinatedBy(ctx context.Context, company uuid.UUID) ([]CoordinatedCooperation, error) {
	coops, err := s.store.CooperationsCoordinatedBy(ctx, company)
	if err != nil {
		return nil, fmt.Errorf("cooperations of %s: %w", company, err)
	}
	out := make([]CoordinatedCooperation, 0, len(coops))
	for _, c := range coops {
		plans, err := s.store.PlansInCooperation(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("member plans of %s: %w", c.ID, err)
		}
		out = append(out, CoordinatedCooperation{Cooperation: c, PlanCount: len(plans)})
	}
	return out, nil
}

// All returns every cooperation.
func (s *Service) All(ctx context.Context) ([]model.Cooperation, error) {
	return s.store.Cooperations(ctx)
}
