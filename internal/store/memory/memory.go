// Package memory is an in-process store used by tests and by short-lived
// command runs that do not need persistence.
package memory

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/labourtime/labourtime/internal/model"
	"github.com/labourtime/labourtime/internal/store"
)

// Store keeps every record in maps guarded by one mutex, so each method is
// atomic.
type Store struct {
	mu sync.Mutex

	accounts     map[uuid.UUID]model.Account
	companies    map[uuid.UUID]model.Company
	companyOrder []uuid.UUID
	members      map[uuid.UUID]model.Member
	memberOrder  []uuid.UUID
	social       *model.SocialAccounting

	plans     map[uuid.UUID]model.Plan
	planOrder []uuid.UUID

	cooperations map[uuid.UUID]model.Cooperation
	coopOrder    []uuid.UUID

	transactions []model.Transaction

	invites     map[uuid.UUID]model.WorkerInvite
	inviteOrder []uuid.UUID
	workers     map[uuid.UUID][]uuid.UUID // company -> members
	purchases   []model.Purchase
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		accounts:     make(map[uuid.UUID]model.Account),
		companies:    make(map[uuid.UUID]model.Company),
		members:      make(map[uuid.UUID]model.Member),
		plans:        make(map[uuid.UUID]model.Plan),
		cooperations: make(map[uuid.UUID]model.Cooperation),
		invites:      make(map[uuid.UUID]model.WorkerInvite),
		workers:      make(map[uuid.UUID][]uuid.UUID),
	}
}

// ─── Accounts ───────────────────────────────────────────────────────────────

// AccountExists reports whether an account id is known.
func (s *Store) AccountExists(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accounts[id]
	return ok, nil
}

// GetAccount returns an account by id.
func (s *Store) GetAccount(_ context.Context, id uuid.UUID) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return model.Account{}, store.ErrNotFound
	}
	return a, nil
}

// Accounts returns every account, companies' first, then members', then
// the social accounting's.
func (s *Store) Accounts(_ context.Context) ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Account
	for _, id := range s.companyOrder {
		for _, a := range s.companies[id].Accounts() {
			out = append(out, s.accounts[a])
		}
	}
	for _, id := range s.memberOrder {
		out = append(out, s.accounts[s.members[id].Account])
	}
	if s.social != nil {
		out = append(out, s.accounts[s.social.Account])
	}
	return out, nil
}

// AddCompany stores a company together with its accounts.
func (s *Store) AddCompany(_ context.Context, c model.Company, accts []model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range accts {
		s.accounts[a.ID] = a
	}
	s.companies[c.ID] = c
	s.companyOrder = append(s.companyOrder, c.ID)
	return nil
}

// GetCompany returns a company by id.
func (s *Store) GetCompany(_ context.Context, id uuid.UUID) (model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[id]
	if !ok {
		return model.Company{}, store.ErrNotFound
	}
	return c, nil
}

// Companies returns every company in registration order.
func (s *Store) Companies(_ context.Context) ([]model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Company, 0, len(s.companyOrder))
	for _, id := range s.companyOrder {
		out = append(out, s.companies[id])
	}
	return out, nil
}

// AddMember stores a member together with its account.
func (s *Store) AddMember(_ context.Context, m model.Member, acct model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[acct.ID] = acct
	s.members[m.ID] = m
	s.memberOrder = append(s.memberOrder, m.ID)
	return nil
}

// GetMember returns a member by id.
func (s *Store) GetMember(_ context.Context, id uuid.UUID) (model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return model.Member{}, store.ErrNotFound
	}
	return m, nil
}

// Members returns every member in registration order.
func (s *Store) Members(_ context.Context) ([]model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Member, 0, len(s.memberOrder))
	for _, id := range s.memberOrder {
		out = append(out, s.members[id])
	}
	return out, nil
}

// SocialAccounting returns the social accounting, or store.ErrNotFound.
func (s *Store) SocialAccounting(_ context.Context) (model.SocialAccounting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.social == nil {
		return model.SocialAccounting{}, store.ErrNotFound
	}
	return *s.social, nil
}

// EnsureSocialAccounting stores sa and its account unless a social
// accounting exists already, and returns whichever is stored.
func (s *Store) EnsureSocialAccounting(_ context.Context, sa model.SocialAccounting, acct model.Account) (model.SocialAccounting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.social != nil {
		return *s.social, nil
	}
	s.accounts[acct.ID] = acct
	s.social = &sa
	return sa, nil
}

// ─── Transactions ───────────────────────────────────────────────────────────

// AddTransaction appends a transaction.
func (s *Store) AddTransaction(_ context.Context, t model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, t)
	return nil
}

// TransactionsSent returns the transactions sent by an account.
func (s *Store) TransactionsSent(_ context.Context, account uuid.UUID) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Transaction
	for _, t := range s.transactions {
		if t.SendingAccount == account {
			out = append(out, t)
		}
	}
	return out, nil
}

// TransactionsReceived returns the transactions received by an account.
func (s *Store) TransactionsReceived(_ context.Context, account uuid.UUID) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Transaction
	for _, t := range s.transactions {
		if t.ReceivingAccount == account {
			out = append(out, t)
		}
	}
	return out, nil
}

// Transactions returns the whole ledger in booking order.
func (s *Store) Transactions(_ context.Context) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out, nil
}

// ─── Plans ──────────────────────────────────────────────────────────────────

// CreatePlan stores a new plan and its credit transactions together.
func (s *Store) CreatePlan(_ context.Context, p model.Plan, credit []model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[p.ID] = clonePlan(p)
	s.planOrder = append(s.planOrder, p.ID)
	s.transactions = append(s.transactions, credit...)
	return nil
}

// GetPlan returns a plan by id.
func (s *Store) GetPlan(_ context.Context, id uuid.UUID) (model.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[id]
	if !ok {
		return model.Plan{}, store.ErrNotFound
	}
	return clonePlan(p), nil
}

// Plans returns every plan in creation order.
func (s *Store) Plans(_ context.Context) ([]model.Plan, error) {
	return s.filterPlans(func(model.Plan) bool { return true }), nil
}

// PlansOfCompany returns the plans of one planner.
func (s *Store) PlansOfCompany(_ context.Context, company uuid.UUID) ([]model.Plan, error) {
	return s.filterPlans(func(p model.Plan) bool { return p.Planner == company }), nil
}

// ActivePlans returns every plan flagged active.
func (s *Store) ActivePlans(_ context.Context) ([]model.Plan, error) {
	return s.filterPlans(func(p model.Plan) bool { return p.IsActive }), nil
}

// PayablePlans returns plans that are approved, active and not expired.
func (s *Store) PayablePlans(_ context.Context) ([]model.Plan, error) {
	return s.filterPlans(model.Plan.IsPayable), nil
}

// ActivatePlan marks a plan active from date on. It fails with
// store.ErrConflict unless the plan is approved, inactive and not expired.
func (s *Store) ActivatePlan(_ context.Context, id uuid.UUID, date time.Time) (model.Plan, error) {
	return s.updatePlan(id, func(p *model.Plan) error {
		if !p.Approved || p.IsActive || p.Expired {
			return store.ErrConflict
		}
		d := date.UTC()
		p.IsActive = true
		p.ActivationDate = &d
		return nil
	})
}

// UpdateSchedule stores the recomputed active days and expiration of a plan.
func (s *Store) UpdateSchedule(_ context.Context, id uuid.UUID, sched model.PlanSchedule) (model.Plan, error) {
	return s.updatePlan(id, func(p *model.Plan) error {
		rel := sched.ExpirationRelative
		exp := sched.ExpirationDate.UTC()
		p.ActiveDays = sched.ActiveDays
		p.ExpirationRelative = &rel
		p.ExpirationDate = &exp
		return nil
	})
}

// RecordPayout appends a wage transaction and increments the plan's payout
// count in one step. The count must still be paidBefore; otherwise nothing
// is written and store.ErrConflict is returned.
func (s *Store) RecordPayout(_ context.Context, id uuid.UUID, paidBefore int, t model.Transaction) (model.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[id]
	if !ok {
		return model.Plan{}, store.ErrNotFound
	}
	if p.PayoutCount != paidBefore {
		return model.Plan{}, store.ErrConflict
	}
	s.transactions = append(s.transactions, t)
	p.PayoutCount++
	s.plans[id] = p
	return clonePlan(p), nil
}

// ExpirePlan marks a plan expired and inactive and drops its cooperation
// and pending cooperation request.
func (s *Store) ExpirePlan(_ context.Context, id uuid.UUID) (model.Plan, error) {
	return s.updatePlan(id, func(p *model.Plan) error {
		p.Expired = true
		p.IsActive = false
		p.Cooperation = nil
		p.RequestedCooperation = nil
		return nil
	})
}

// SetHidden hides a plan from listings.
func (s *Store) SetHidden(_ context.Context, id uuid.UUID) (model.Plan, error) {
	return s.updatePlan(id, func(p *model.Plan) error {
		p.Hidden = true
		return nil
	})
}

// ToggleAvailability flips whether a plan's product is available.
func (s *Store) ToggleAvailability(_ context.Context, id uuid.UUID) (model.Plan, error) {
	return s.updatePlan(id, func(p *model.Plan) error {
		p.IsAvailable = !p.IsAvailable
		return nil
	})
}

// ─── Cooperations ───────────────────────────────────────────────────────────

// AddCooperation stores a cooperation.
func (s *Store) AddCooperation(_ context.Context, c model.Cooperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooperations[c.ID] = c
	s.coopOrder = append(s.coopOrder, c.ID)
	return nil
}

// GetCooperation returns a cooperation by id.
func (s *Store) GetCooperation(_ context.Context, id uuid.UUID) (model.Cooperation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cooperations[id]
	if !ok {
		return model.Cooperation{}, store.ErrNotFound
	}
	return c, nil
}

// Cooperations returns every cooperation in creation order.
func (s *Store) Cooperations(_ context.Context) ([]model.Cooperation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Cooperation, 0, len(s.coopOrder))
	for _, id := range s.coopOrder {
		out = append(out, s.cooperations[id])
	}
	return out, nil
}

// CooperationsCoordinatedBy returns the cooperations a company coordinates.
func (s *Store) CooperationsCoordinatedBy(ctx context.Context, company uuid.UUID) ([]model.Cooperation, error) {
	all, _ := s.Cooperations(ctx)
	var out []model.Cooperation
	for _, c := range all {
		if c.Coordinator == company {
			out = append(out, c)
		}
	}
	return out, nil
}

// PlansInCooperation returns the member plans of a cooperation.
func (s *Store) PlansInCooperation(_ context.Context, coop uuid.UUID) ([]model.Plan, error) {
	return s.filterPlans(func(p model.Plan) bool {
		return p.Cooperation != nil && *p.Cooperation == coop
	}), nil
}

// PlansRequestingCooperation returns plans with a pending request to coop.
func (s *Store) PlansRequestingCooperation(_ context.Context, coop uuid.UUID) ([]model.Plan, error) {
	return s.filterPlans(func(p model.Plan) bool {
		return p.RequestedCooperation != nil && *p.RequestedCooperation == coop
	}), nil
}

// CooperatingPlans returns all plans in the plan's cooperation, or just the
// plan when it does not cooperate. An unknown plan yields no plans.
func (s *Store) CooperatingPlans(ctx context.Context, planID uuid.UUID) ([]model.Plan, error) {
	p, err := s.GetPlan(ctx, planID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if p.Cooperation == nil {
		return []model.Plan{p}, nil
	}
	return s.PlansInCooperation(ctx, *p.Cooperation)
}

// SetRequestedCooperation records a pending request of a plan to join
// coop. It fails with store.ErrConflict unless the plan is payable,
// cooperates with nobody and has no pending request.
func (s *Store) SetRequestedCooperation(_ context.Context, planID, coop uuid.UUID) (model.Plan, error) {
	return s.updatePlan(planID, func(p *model.Plan) error {
		if !p.IsPayable() || p.Cooperation != nil || p.RequestedCooperation != nil {
			return store.ErrConflict
		}
		c := coop
		p.RequestedCooperation = &c
		return nil
	})
}

// ClearRequestedCooperation drops a pending request.
func (s *Store) ClearRequestedCooperation(_ context.Context, planID uuid.UUID) (model.Plan, error) {
	return s.updatePlan(planID, func(p *model.Plan) error {
		p.RequestedCooperation = nil
		return nil
	})
}

// AcceptCooperationRequest turns a pending request into membership. It
// fails with store.ErrConflict unless the plan is payable and its pending
// request targets coop.
func (s *Store) AcceptCooperationRequest(_ context.Context, planID, coop uuid.UUID) (model.Plan, error) {
	return s.updatePlan(planID, func(p *model.Plan) error {
		if !p.IsPayable() || p.Cooperation != nil || p.RequestedCooperation == nil || *p.RequestedCooperation != coop {
			return store.ErrConflict
		}
		c := coop
		p.Cooperation = &c
		p.RequestedCooperation = nil
		return nil
	})
}

// RemoveFromCooperation ends a plan's cooperation membership.
func (s *Store) RemoveFromCooperation(_ context.Context, planID uuid.UUID) (model.Plan, error) {
	return s.updatePlan(planID, func(p *model.Plan) error {
		p.Cooperation = nil
		return nil
	})
}

// ─── Workers ────────────────────────────────────────────────────────────────

// AddWorkerInvite stores an invite. A second open invite for the same
// company and member fails with store.ErrConflict.
func (s *Store) AddWorkerInvite(_ context.Context, inv model.WorkerInvite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.invites {
		if existing.Company == inv.Company && existing.Member == inv.Member {
			return store.ErrConflict
		}
	}
	s.invites[inv.ID] = inv
	s.inviteOrder = append(s.inviteOrder, inv.ID)
	return nil
}

// GetWorkerInvite returns an open invite by id.
func (s *Store) GetWorkerInvite(_ context.Context, id uuid.UUID) (model.WorkerInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[id]
	if !ok {
		return model.WorkerInvite{}, store.ErrNotFound
	}
	return inv, nil
}

// WorkerInvitesOf returns the open invites addressed to a member.
func (s *Store) WorkerInvitesOf(_ context.Context, member uuid.UUID) ([]model.WorkerInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.WorkerInvite
	for _, id := range s.inviteOrder {
		if inv, ok := s.invites[id]; ok && inv.Member == member {
			out = append(out, inv)
		}
	}
	return out, nil
}

// AnswerWorkerInvite deletes an invite and, when accepted, adds the member
// to the company's workers.
func (s *Store) AnswerWorkerInvite(_ context.Context, id uuid.UUID, accept bool) (model.WorkerInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[id]
	if !ok {
		return model.WorkerInvite{}, store.ErrNotFound
	}
	delete(s.invites, id)
	if accept && !slices.Contains(s.workers[inv.Company], inv.Member) {
		s.workers[inv.Company] = append(s.workers[inv.Company], inv.Member)
	}
	return inv, nil
}

// CompanyWorkers returns the members working at a company.
func (s *Store) CompanyWorkers(_ context.Context, company uuid.UUID) ([]model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Member
	for _, id := range s.workers[company] {
		out = append(out, s.members[id])
	}
	return out, nil
}

// IsWorker reports whether member works at company.
func (s *Store) IsWorker(_ context.Context, company, member uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.workers[company], member), nil
}

// ─── Purchases ──────────────────────────────────────────────────────────────

// AddPurchase stores a purchase together with its payment.
func (s *Store) AddPurchase(_ context.Context, p model.Purchase, t model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, t)
	s.purchases = append(s.purchases, p)
	return nil
}

// PurchasesOf returns a buyer's purchases, newest first.
func (s *Store) PurchasesOf(_ context.Context, buyer uuid.UUID) ([]model.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Purchase
	for i := len(s.purchases) - 1; i >= 0; i-- {
		if s.purchases[i].Buyer == buyer {
			out = append(out, s.purchases[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// ─── helpers ────────────────────────────────────────────────────────────────

func (s *Store) filterPlans(keep func(model.Plan) bool) []model.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Plan
	for _, id := range s.planOrder {
		p := s.plans[id]
		if keep(p) {
			out = append(out, clonePlan(p))
		}
	}
	return out
}

func (s *Store) updatePlan(id uuid.UUID, mutate func(*model.Plan) error) (model.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[id]
	if !ok {
		return model.Plan{}, store.ErrNotFound
	}
	p = clonePlan(p)
	if err := mutate(&p); err != nil {
		return model.Plan{}, err
	}
	s.plans[id] = p
	return clonePlan(p), nil
}

// clonePlan copies the pointer fields so callers never share state with
// the store.
func clonePlan(p model.Plan) model.Plan {
	if p.ApprovalDate != nil {
		v := *p.ApprovalDate
		p.ApprovalDate = &v
	}
	if p.ActivationDate != nil {
		v := *p.ActivationDate
		p.ActivationDate = &v
	}
	if p.ExpirationRelative != nil {
		v := *p.ExpirationRelative
		p.ExpirationRelative = &v
	}
	if p.ExpirationDate != nil {
		v := *p.ExpirationDate
		p.ExpirationDate = &v
	}
	if p.Cooperation != nil {
		v := *p.Cooperation
		p.Cooperation = &v
	}
	if p.RequestedCooperation != nil {
		v := *p.RequestedCooperation
		p.RequestedCooperation = &v
	}
	return p
}
