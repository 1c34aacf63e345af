// Package api is the read-mostly HTTP interface of labourtime.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/labourtime/labourtime/internal/cooperation"
	"github.com/labourtime/labourtime/internal/lock"
	"github.com/labourtime/labourtime/internal/model"
	"github.com/labourtime/labourtime/internal/payout"
	"github.com/labourtime/labourtime/internal/pricing"
	"github.com/labourtime/labourtime/internal/statement"
	"github.com/labourtime/labourtime/internal/stats"
	"github.com/labourtime/labourtime/internal/store"
)

// Plans reads plans.
type Plans interface {
	Get(ctx context.Context, id uuid.UUID) (model.Plan, error)
}

// Prices prices plans.
type Prices interface {
	Price(ctx context.Context, planID uuid.UUID) (decimal.Decimal, error)
	CooperatingPlans(ctx context.Context, planID uuid.UUID) ([]model.Plan, error)
	Purchases(ctx context.Context, buyer uuid.UUID) ([]pricing.PurchaseInfo, error)
}

// Cooperations describes cooperations.
type Cooperations interface {
	Summary(ctx context.Context, coopID, requester uuid.UUID) (cooperation.Summary, error)
}

// Statements builds account statements.
type Statements interface {
	ForCompany(ctx context.Context, companyID uuid.UUID) ([]statement.Info, error)
	ForMember(ctx context.Context, memberID uuid.UUID) ([]statement.Info, error)
}

// Workers lists the members working at a company.
type Workers interface {
	Workers(ctx context.Context, company uuid.UUID) ([]model.Member, error)
}

// Accounts resolves accounts.
type Accounts interface {
	Account(ctx context.Context, id uuid.UUID) (model.Account, error)
}

// Balances derives account balances.
type Balances interface {
	Balance(ctx context.Context, account uuid.UUID) (decimal.Decimal, error)
}

// Statistics computes economy-wide figures.
type Statistics interface {
	Get(ctx context.Context) (stats.Statistics, error)
}

// CycleRunner runs one payout cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) (payout.CycleReport, error)
}

// Pinger checks the backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the Server exposes. Pinger and Gatherer are
// optional.
type Deps struct {
	Plans        Plans
	Prices       Prices
	Accounts     Accounts
	Balances     Balances
	Statistics   Statistics
	Cooperations Cooperations
	Statements   Statements
	Workers      Workers
	Cycles       CycleRunner
	Pinger       Pinger
	Gatherer     prometheus.Gatherer
	Logger       *slog.Logger
}

// Server is the labourtime HTTP API server.
type Server struct {
	deps   Deps
	logger *slog.Logger
}

// NewServer creates a Server.
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{deps: deps, logger: logger.With("component", "api")}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))

	r.Get("/healthz", s.handleHealth)
	if s.deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/plans/{id}", func(r chi.Router) {
		r.Get("/", s.handlePlan)
		r.Get("/price", s.handlePrice)
	})
	r.Get("/accounts/{id}/balance", s.handleBalance)
	r.Get("/cooperations/{id}", s.handleCooperation)
	r.Get("/companies/{id}/statement", s.handleCompanyStatement)
	r.Get("/companies/{id}/workers", s.handleWorkers)
	r.Get("/members/{id}/statement", s.handleMemberStatement)
	r.Get("/members/{id}/purchases", s.handlePurchases)
	r.Get("/statistics", s.handleStatistics)
	r.Post("/payout-cycles", s.handleRunCycle)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Pinger != nil {
		if err := s.deps.Pinger.Ping(r.Context()); err != nil {
			s.logger.Warn("health check failed", "err", err)
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PlanView is the JSON form of a plan.
type PlanView struct {
	ID                   uuid.UUID       `json:"id"`
	Planner              uuid.UUID       `json:"planner"`
	ProductName          string          `json:"product_name"`
	ProductUnit          string          `json:"product_unit"`
	ProductAmount        int             `json:"product_amount"`
	Description          string          `json:"description"`
	Timeframe            int             `json:"timeframe"`
	IsPublicService      bool            `json:"is_public_service"`
	CostsLabour          decimal.Decimal `json:"costs_labour"`
	CostsResources       decimal.Decimal `json:"costs_resources"`
	CostsMeans           decimal.Decimal `json:"costs_means"`
	Approved             bool            `json:"approved"`
	IsActive             bool            `json:"is_active"`
	ActivationDate       *time.Time      `json:"activation_date,omitempty"`
	Expired              bool            `json:"expired"`
	ExpirationRelative   *int            `json:"expiration_relative,omitempty"`
	ExpirationDate       *time.Time      `json:"expiration_date,omitempty"`
	ActiveDays           int             `json:"active_days"`
	PayoutCount          int             `json:"payout_count"`
	IsAvailable          bool            `json:"is_available"`
	Cooperation          *uuid.UUID      `json:"cooperation,omitempty"`
	RequestedCooperation *uuid.UUID      `json:"requested_cooperation,omitempty"`
}

// NewPlanView converts a plan for output.
func NewPlanView(p model.Plan) PlanView {
	return PlanView{
		ID:                   p.ID,
		Planner:              p.Planner,
		ProductName:          p.ProductName,
		ProductUnit:          p.ProductUnit,
		ProductAmount:        p.ProductAmount,
		Description:          p.Description,
		Timeframe:            p.Timeframe,
		IsPublicService:      p.IsPublicService,
		CostsLabour:          p.Costs.Labour,
		CostsResources:       p.Costs.Resources,
		CostsMeans:           p.Costs.Means,
		Approved:             p.Approved,
		IsActive:             p.IsActive,
		ActivationDate:       p.ActivationDate,
		Expired:              p.Expired,
		ExpirationRelative:   p.ExpirationRelative,
		ExpirationDate:       p.ExpirationDate,
		ActiveDays:           p.ActiveDays,
		PayoutCount:          p.PayoutCount,
		IsAvailable:          p.IsAvailable,
		Cooperation:          p.Cooperation,
		RequestedCooperation: p.RequestedCooperation,
	}
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.deps.Plans.Get(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewPlanView(p))
}

// PriceView is the JSON answer of /plans/{id}/price.
type PriceView struct {
	Plan             uuid.UUID       `json:"plan"`
	Price            decimal.Decimal `json:"price"`
	IndividualPrice  decimal.Decimal `json:"individual_price"`
	CooperatingPlans []uuid.UUID     `json:"cooperating_plans"`
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.deps.Plans.Get(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	price, err := s.deps.Prices.Price(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	plans, err := s.deps.Prices.CooperatingPlans(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	view := PriceView{Plan: id, Price: price, IndividualPrice: pricing.PricePerUnit(p), CooperatingPlans: []uuid.UUID{}}
	for _, cp := range plans {
		view.CooperatingPlans = append(view.CooperatingPlans, cp.ID)
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	acct, err := s.deps.Accounts.Account(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	b, err := s.deps.Balances.Balance(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account": acct.ID,
		"kind":    acct.Kind,
		"balance": b,
	})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Statistics.Get(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// CycleView is the JSON answer of POST /payout-cycles.
type CycleView struct {
	Started      time.Time       `json:"started"`
	Finished     time.Time       `json:"finished"`
	Factor       decimal.Decimal `json:"factor"`
	PlansUpdated int             `json:"plans_updated"`
	Payouts      int             `json:"payouts"`
	PlansExpired int             `json:"plans_expired"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
}

func (s *Server) handleRunCycle(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.Cycles.RunCycle(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CycleView(report))
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// fail maps service errors to status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, lock.ErrHeld):
		writeError(w, http.StatusConflict, "a payout cycle is already running")
	default:
		s.logger.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"status":  status,
		},
	})
}
