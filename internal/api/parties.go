package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CooperationView is the JSON answer of /cooperations/{id}.
type CooperationView struct {
	ID                     uuid.UUID         `json:"id"`
	Name                   string            `json:"name"`
	Definition             string            `json:"definition"`
	Coordinator            uuid.UUID         `json:"coordinator"`
	CoordinatorName        string            `json:"coordinator_name"`
	RequesterIsCoordinator bool              `json:"requester_is_coordinator"`
	CooperationPrice       decimal.Decimal   `json:"cooperation_price"`
	Plans                  []CooperationPlan `json:"plans"`
}

// CooperationPlan is one member plan in a CooperationView.
type CooperationPlan struct {
	ID              uuid.UUID       `json:"id"`
	Planner         uuid.UUID       `json:"planner"`
	ProductName     string          `json:"product_name"`
	IndividualPrice decimal.Decimal `json:"individual_price"`
}

// handleCooperation answers for the optional ?requester= company, which
// decides requester_is_coordinator.
func (s *Server) handleCooperation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var requester uuid.UUID
	if q := r.URL.Query().Get("requester"); q != "" {
		var err error
		if requester, err = uuid.Parse(q); err != nil {
			writeError(w, http.StatusBadRequest, "invalid requester")
			return
		}
	}
	sum, err := s.deps.Cooperations.Summary(r.Context(), id, requester)
	if err != nil {
		s.fail(w, err)
		return
	}
	view := CooperationView{
		ID:                     sum.ID,
		Name:                   sum.Name,
		Definition:             sum.Definition,
		Coordinator:            sum.Coordinator,
		CoordinatorName:        sum.CoordinatorName,
		RequesterIsCoordinator: sum.RequesterIsCoordinator,
		CooperationPrice:       sum.CooperationPrice,
		Plans:                  []CooperationPlan{},
	}
	for _, p := range sum.Plans {
		view.Plans = append(view.Plans, CooperationPlan(p))
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCompanyStatement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	infos, err := s.deps.Statements.ForCompany(r.Context(), id)
	writeList(s, w, infos, err)
}

func (s *Server) handleMemberStatement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	infos, err := s.deps.Statements.ForMember(r.Context(), id)
	writeList(s, w, infos, err)
}

func (s *Server) handlePurchases(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	purchases, err := s.deps.Prices.Purchases(r.Context(), id)
	writeList(s, w, purchases, err)
}

// WorkerView is one worker in /companies/{id}/workers.
type WorkerView struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func (s *Server) handleWorkers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	members, err := s.deps.Workers.Workers(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	out := make([]WorkerView, 0, len(members))
	for _, m := range members {
		out = append(out, WorkerView{ID: m.ID, Name: m.Name, Email: m.Email})
	}
	writeJSON(w, http.StatusOK, out)
}

// writeList writes items as a JSON array, never null.
func writeList[T any](s *Server, w http.ResponseWriter, items []T, err error) {
	if err != nil {
		s.fail(w, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, items)
}
