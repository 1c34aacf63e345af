// Package cooperation manages cooperations: groups of plans that sell at
// one blended price under a coordinating company.
//
// Refusals caused by the state of plans or cooperations are reported as
// rejection values on the response; errors are reserved for storage
// failures.
package cooperation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/labourtime/labourtime/internal/clock"
	"github.com/labourtime/labourtime/internal/model"
	"github.com/labourtime/labourtime/internal/store"
)

var (
	ErrEmptyName = errors.New("cooperation name must not be empty")
	ErrNameTaken = errors.New("cooperation name is taken")
)

// Store is the persistence cooperations need. The conditional updates
// fail with store.ErrConflict when the plan changed underneath.
type Store interface {
	GetCompany(ctx context.Context, id uuid.UUID) (model.Company, error)
	GetPlan(ctx context.Context, id uuid.UUID) (model.Plan, error)
	AddCooperation(ctx context.Context, c model.Cooperation) error
	GetCooperation(ctx context.Context, id uuid.UUID) (model.Cooperation, error)
	Cooperations(ctx context.Context) ([]model.Cooperation, error)
	CooperationsCoordinatedBy(ctx context.Context, company uuid.UUID) ([]model.Cooperation, error)
	PlansInCooperation(ctx context.Context, coop uuid.UUID) ([]model.Plan, error)
	PlansRequestingCooperation(ctx context.Context, coop uuid.UUID) ([]model.Plan, error)
	SetRequestedCooperation(ctx context.Context, planID, coop uuid.UUID) (model.Plan, error)
	ClearRequestedCooperation(ctx context.Context, planID uuid.UUID) (model.Plan, error)
	AcceptCooperationRequest(ctx context.Context, planID, coop uuid.UUID) (model.Plan, error)
	RemoveFromCooperation(ctx context.Context, planID uuid.UUID) (model.Plan, error)
}

// Service runs the cooperation workflow.
type Service struct {
	store  Store
	clock  clock.Clock
	logger *slog.Logger
}

// NewService creates a cooperation Service. A nil logger uses slog.Default.
func NewService(store Store, clk clock.Clock, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, clock: clk, logger: logger.With("component", "cooperation")}
}

// CreateRequest names a new cooperation and its coordinator.
type CreateRequest struct {
	Coordinator uuid.UUID
	Name        string
	Definition  string
}

// Create registers a cooperation. Names are unique regardless of case.
func (s *Service) Create(ctx context.Context, req CreateRequest) (model.Cooperation, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Cooperation{}, ErrEmptyName
	}
	if _, err := s.store.GetCompany(ctx, req.Coordinator); err != nil {
		return model.Cooperation{}, fmt.Errorf("coordinator %s: %w", req.Coordinator, err)
	}
	existing, err := s.store.Cooperations(ctx)
	if err != nil {
		return model.Cooperation{}, fmt.Errorf("listing cooperations: %w", err)
	}
	for _, c := range existing {
		if strings.EqualFold(c.Name, name) {
			return model.Cooperation{}, ErrNameTaken
		}
	}

	c := model.Cooperation{
		ID:           uuid.New(),
		CreationDate: s.clock.Now(),
		Name:         name,
		Definition:   req.Definition,
		Coordinator:  req.Coordinator,
	}
	if err := s.store.AddCooperation(ctx, c); err != nil {
		return model.Cooperation{}, fmt.Errorf("storing cooperation: %w", err)
	}
	s.logger.Info("cooperation created", "cooperation", c.ID, "name", c.Name, "coordinator", c.Coordinator)
	return c, nil
}

// RequestCooperationRequest asks for a plan to join a cooperation.
type RequestCooperationRequest struct {
	Requester   uuid.UUID
	Plan        uuid.UUID
	Cooperation uuid.UUID
}

// RequestCooperationResponse reports the outcome of Request. On success it
// names the coordinator to be notified.
type RequestCooperationResponse struct {
	Rejection        RequestRejection
	CoordinatorName  string
	CoordinatorEmail string
}

// IsRejected reports whether the request was refused.
func (r RequestCooperationResponse) IsRejected() bool {
	return r.Rejection != RequestOK
}

// Request records a pending request of a plan to join a cooperation.
func (s *Service) Request(ctx context.Context, req RequestCooperationRequest) (RequestCooperationResponse, error) {
	p, coop, rejection, err := s.loadForRequest(ctx, req)
	if err != nil || rejection != RequestOK {
		return RequestCooperationResponse{Rejection: rejection}, err
	}

	_, err = s.store.SetRequestedCooperation(ctx, p.ID, coop.ID)
	if errors.Is(err, store.ErrConflict) {
		// the plan changed since it was read; report its current state
		_, _, rejection, err = s.loadForRequest(ctx, req)
		if err == nil && rejection == RequestOK {
			rejection = RequestPlanInactive
		}
		return RequestCooperationResponse{Rejection: rejection}, err
	}
	if err != nil {
		return RequestCooperationResponse{}, fmt.Errorf("requesting cooperation: %w", err)
	}

	resp := RequestCooperationResponse{}
	if coordinator, err := s.store.GetCompany(ctx, coop.Coordinator); err == nil {
		resp.CoordinatorName = coordinator.Name
		resp.CoordinatorEmail = coordinator.Email
	}
	s.logger.Info("cooperation requested", "plan", p.ID, "cooperation", coop.ID)
	return resp, nil
}

func (s *Service) loadForRequest(ctx context.Context, req RequestCooperationRequest) (model.Plan, model.Cooperation, RequestRejection, error) {
	p, found, err := s.plan(ctx, req.Plan)
	if err != nil || !found {
		return p, model.Cooperation{}, RequestPlanNotFound, err
	}
	coop, found, err := s.cooperation(ctx, req.Cooperation)
	if err != nil || !found {
		return p, coop, RequestCooperationNotFound, err
	}
	switch {
	case !p.IsPayable():
		return p, coop, RequestPlanInactive, nil
	case p.Cooperation != nil:
		return p, coop, RequestPlanHasCooperation, nil
	case p.RequestedCooperation != nil:
		return p, coop, RequestPlanAlreadyRequesting, nil
	case p.IsPublicService:
		return p, coop, RequestPlanIsPublicService, nil
	case p.Planner != req.Requester:
		return p, coop, RequestRequesterIsNotPlanner, nil
	}
	return p, coop, RequestOK, nil
}

// AcceptCooperationRequest is a coordinator's acceptance of a pending request.
type AcceptCooperationRequest struct {
	Requester   uuid.UUID
	Plan        uuid.UUID
	Cooperation uuid.UUID
}

// AcceptCooperationResponse reports the outcome of Accept.
type AcceptCooperationResponse struct {
	Rejection AcceptRejection
}

// IsRejected reports whether the acceptance was refused.
func (r AcceptCooperationResponse) IsRejected() bool {
	return r.Rejection != AcceptOK
}

// Accept turns a pending request into membership.
func (s *Service) Accept(ctx context.Context, req AcceptCooperationRequest) (AcceptCooperationResponse, error) {
	rejection, err := s.checkAccept(ctx, req)
	if err != nil || rejection != AcceptOK {
		return AcceptCooperationResponse{Rejection: rejection}, err
	}

	_, err = s.store.AcceptCooperationRequest(ctx, req.Plan, req.Cooperation)
	if errors.Is(err, store.ErrConflict) {
		rejection, err = s.checkAccept(ctx, req)
		if err == nil && rejection == AcceptOK {
			rejection = AcceptPlanInactive
		}
		return AcceptCooperationResponse{Rejection: rejection}, err
	}
	if err != nil {
		return AcceptCooperationResponse{}, fmt.Errorf("accepting cooperation request: %w", err)
	}
	s.logger.Info("cooperation request accepted", "plan", req.Plan, "cooperation", req.Cooperation)
	return AcceptCooperationResponse{}, nil
}

func (s *Service) checkAccept(ctx context.Context, req AcceptCooperationRequest) (AcceptRejection, error) {
	p, found, err := s.plan(ctx, req.Plan)
	if err != nil || !found {
		return AcceptPlanNotFound, err
	}
	coop, found, err := s.cooperation(ctx, req.Cooperation)
	if err != nil || !found {
		return AcceptCooperationNotFound, err
	}
	switch {
	case !p.IsPayable():
		return AcceptPlanInactive, nil
	case p.Cooperation != nil:
		return AcceptPlanHasCooperation, nil
	case p.IsPublicService:
		return AcceptPlanIsPublicService, nil
	case p.RequestedCooperation == nil || *p.RequestedCooperation != coop.ID:
		return AcceptNotRequested, nil
	case coop.Coordinator != req.Requester:
		return AcceptRequesterIsNotCoordinator, nil
	}
	return AcceptOK, nil
}

// DenyCooperationRequest is a coordinator's refusal of a pending request.
type DenyCooperationRequest struct {
	Requester   uuid.UUID
	Plan        uuid.UUID
	Cooperation uuid.UUID
}

// DenyCooperationResponse reports the outcome of Deny.
type DenyCooperationResponse struct {
	Rejection DenyRejection
}

// IsRejected reports whether the denial was refused.
func (r DenyCooperationResponse) IsRejected() bool {
	return r.Rejection != DenyOK
}

// Deny drops a pending request to join the coordinator's cooperation.
func (s *Service) Deny(ctx context.Context, req DenyCooperationRequest) (DenyCooperationResponse, error) {
	p, found, err := s.plan(ctx, req.Plan)
	if err != nil || !found {
		return DenyCooperationResponse{Rejection: DenyPlanNotFound}, err
	}
	coop, found, err := s.cooperation(ctx, req.Cooperation)
	if err != nil || !found {
		return DenyCooperationResponse{Rejection: DenyCooperationNotFound}, err
	}
	if p.RequestedCooperation == nil || *p.RequestedCooperation != coop.ID {
		return DenyCooperationResponse{Rejection: DenyNotRequested}, nil
	}
	if coop.Coordinator != req.Requester {
		return DenyCooperationResponse{Rejection: DenyRequesterIsNotCoordinator}, nil
	}
	if _, err := s.store.ClearRequestedCooperation(ctx, p.ID); err != nil {
		return DenyCooperationResponse{}, fmt.Errorf("denying cooperation request: %w", err)
	}
	s.logger.Info("cooperation request denied", "plan", p.ID, "cooperation", coop.ID)
	return DenyCooperationResponse{}, nil
}

// CancelRequest withdraws the planner's pending request. It reports
// whether there was a request to withdraw.
func (s *Service) CancelRequest(ctx context.Context, requester, planID uuid.UUID) (bool, error) {
	p, found, err := s.plan(ctx, planID)
	if err != nil || !found {
		return false, err
	}
	if p.Planner != requester || p.RequestedCooperation == nil {
		return false, nil
	}
	if _, err := s.store.ClearRequestedCooperation(ctx, planID); err != nil {
		return false, fmt.Errorf("cancelling cooperation request: %w", err)
	}
	s.logger.Info("cooperation request cancelled", "plan", planID)
	return true, nil
}

// EndCooperationRequest removes a plan from its cooperation.
type EndCooperationRequest struct {
	Requester   uuid.UUID
	Plan        uuid.UUID
	Cooperation uuid.UUID
}

// EndCooperationResponse reports the outcome of End.
type EndCooperationResponse struct {
	Rejection EndRejection
}

// IsRejected reports whether ending the membership was refused.
func (r EndCooperationResponse) IsRejected() bool {
	return r.Rejection != EndOK
}

// End removes a plan from a cooperation. The plan's planner and the
// cooperation's coordinator may both end it.
func (s *Service) End(ctx context.Context, req EndCooperationRequest) (EndCooperationResponse, error) {
	p, found, err := s.plan(ctx, req.Plan)
	if err != nil || !found {
		return EndCooperationResponse{Rejection: EndPlanNotFound}, err
	}
	coop, found, err := s.cooperation(ctx, req.Cooperation)
	if err != nil || !found {
		return EndCooperationResponse{Rejection: EndCooperationNotFound}, err
	}
	if p.Cooperation == nil || *p.Cooperation != coop.ID {
		return EndCooperationResponse{Rejection: EndPlanNotInCooperation}, nil
	}
	if req.Requester != p.Planner && req.Requester != coop.Coordinator {
		return EndCooperationResponse{Rejection: EndRequesterUnauthorized}, nil
	}
	if _, err := s.store.RemoveFromCooperation(ctx, p.ID); err != nil {
		return EndCooperationResponse{}, fmt.Errorf("ending cooperation: %w", err)
	}
	s.logger.Info("cooperation ended", "plan", p.ID, "cooperation", coop.ID)
	return EndCooperationResponse{}, nil
}

func (s *Service) plan(ctx context.Context, planID uuid.UUID) (model.Plan, bool, error) {
	p, err := s.store.GetPlan(ctx, planID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Plan{}, false, nil
	}
	if err != nil {
		return model.Plan{}, false, fmt.Errorf("plan %s: %w", planID, err)
	}
	return p, true, nil
}

func (s *Service) cooperation(ctx context.Context, coopID uuid.UUID) (model.Cooperation, bool, error) {
	c, err := s.store.GetCooperation(ctx, coopID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Cooperation{}, false, nil
	}
	if err != nil {
		return model.Cooperation{}, false, fmt.Errorf("cooperation %s: %w", coopID, err)
	}
	return c, true, nil
}
