// Package workers links members to the companies they work at: companies
// invite members, members answer, and companies pay their workers out of
// the labour account.
//
// As in package cooperation, refusals are values on the response and
// errors are storage failures.
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/labourtime/labourtime/internal/clock"
	"github.com/labourtime/labourtime/internal/ledger"
	"github.com/labourtime/labourtime/internal/model"
	"github.com/labourtime/labourtime/internal/store"
)

// WagePurpose is the purpose of a wage transfer to a worker.
const WagePurpose = "wages"

// Store is the persistence the worker relation needs. AddWorkerInvite
// fails with store.ErrConflict when the member already holds an invite
// from the company.
type Store interface {
	GetCompany(ctx context.Context, id uuid.UUID) (model.Company, error)
	GetMember(ctx context.Context, id uuid.UUID) (model.Member, error)
	AddWorkerInvite(ctx context.Context, inv model.WorkerInvite) error
	GetWorkerInvite(ctx context.Context, id uuid.UUID) (model.WorkerInvite, error)
	WorkerInvitesOf(ctx context.Context, member uuid.UUID) ([]model.WorkerInvite, error)
	AnswerWorkerInvite(ctx context.Context, id uuid.UUID, accept bool) (model.WorkerInvite, error)
	CompanyWorkers(ctx context.Context, company uuid.UUID) ([]model.Member, error)
	IsWorker(ctx context.Context, company, member uuid.UUID) (bool, error)
}

// Transferer appends a transaction.
type Transferer interface {
	Transfer(ctx context.Context, p ledger.TransferParams) (model.Transaction, error)
}

// Service runs invites and wage transfers.
type Service struct {
	store  Store
	ledger Transferer
	clock  clock.Clock
	logger *slog.Logger
}

// NewService creates a workers Service. A nil logger uses slog.Default.
func NewService(store Store, ledger Transferer, clk clock.Clock, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, ledger: ledger, clock: clk, logger: logger.With("component", "workers")}
}

// InviteResponse reports the outcome of Invite.
type InviteResponse struct {
	Rejection InviteRejection
	Invite    model.WorkerInvite
}

// IsRejected reports whether the invite was refused.
func (r InviteResponse) IsRejected() bool {
	return r.Rejection != InviteOK
}

// Invite offers a member work at a company.
func (s *Service) Invite(ctx context.Context, company, member uuid.UUID) (InviteResponse, error) {
	if _, err := s.store.GetCompany(ctx, company); errors.Is(err, store.ErrNotFound) {
		return InviteResponse{Rejection: InviteCompanyNotFound}, nil
	} else if err != nil {
		return InviteResponse{}, fmt.Errorf("reading company %s: %w", company, err)
	}
	if _, err := s.store.GetMember(ctx, member); errors.Is(err, store.ErrNotFound) {
		return InviteResponse{Rejection: InviteMemberNotFound}, nil
	} else if err != nil {
		return InviteResponse{}, fmt.Errorf("reading member %s: %w", member, err)
	}
	working, err := s.store.IsWorker(ctx, company, member)
	if err != nil {
		return InviteResponse{}, err
	}
	if working {
		return InviteResponse{Rejection: InviteAlreadyWorking}, nil
	}

	inv := model.WorkerInvite{
		ID:           uuid.New(),
		CreationDate: s.clock.Now(),
		Company:      company,
		Member:       member,
	}
	err = s.store.AddWorkerInvite(ctx, inv)
	if errors.Is(err, store.ErrConflict) {
		return InviteResponse{Rejection: InviteAlreadyInvited}, nil
	}
	if err != nil {
		return InviteResponse{}, fmt.Errorf("storing invite: %w", err)
	}
	s.logger.Info("worker invited", "invite", inv.ID, "company", company, "member", member)
	return InviteResponse{Invite: inv}, nil
}

// AnswerRequest is a member's answer to an invite.
type AnswerRequest struct {
	Invite uuid.UUID
	Member uuid.UUID
	Accept bool
}

// AnswerResponse reports the outcome of Answer.
type AnswerResponse struct {
	Failure     AnswerFailure
	Accepted    bool
	CompanyName string
}

// IsSuccess reports whether the answer was recorded.
func (r AnswerResponse) IsSuccess() bool {
	return r.Failure == AnswerOK
}

// Answer accepts or declines an invite. The invite is consumed either way;
// accepting makes the member a worker of the inviting company.
func (s *Service) Answer(ctx context.Context, req AnswerRequest) (AnswerResponse, error) {
	inv, err := s.store.GetWorkerInvite(ctx, req.Invite)
	if errors.Is(err, store.ErrNotFound) {
		return AnswerResponse{Failure: AnswerInviteNotFound}, nil
	}
	if err != nil {
		return AnswerResponse{}, fmt.Errorf("reading invite %s: %w", req.Invite, err)
	}
	if inv.Member != req.Member {
		return AnswerResponse{Failure: AnswerMemberWasNotInvited}, nil
	}
	company, err := s.store.GetCompany(ctx, inv.Company)
	if err != nil {
		return AnswerResponse{}, fmt.Errorf("reading company %s: %w", inv.Company, err)
	}

	_, err = s.store.AnswerWorkerInvite(ctx, inv.ID, req.Accept)
	if errors.Is(err, store.ErrNotFound) {
		// answered concurrently
		return AnswerResponse{Failure: AnswerInviteNotFound}, nil
	}
	if err != nil {
		return AnswerResponse{}, fmt.Errorf("answering invite %s: %w", inv.ID, err)
	}
	s.logger.Info("invite answered", "invite", inv.ID, "company", inv.Company, "member", inv.Member, "accepted", req.Accept)
	return AnswerResponse{Accepted: req.Accept, CompanyName: company.Name}, nil
}

// Invites returns the open invites of a member.
func (s *Service) Invites(ctx context.Context, member uuid.UUID) ([]model.WorkerInvite, error) {
	return s.store.WorkerInvitesOf(ctx, member)
}

// Workers returns the members working at a company.
func (s *Service) Workers(ctx context.Context, company uuid.UUID) ([]model.Member, error) {
	return s.store.CompanyWorkers(ctx, company)
}

// PayRequest transfers work certificates from a company to a worker.
type PayRequest struct {
	Company uuid.UUID
	Worker  uuid.UUID
	Amount  decimal.Decimal
}

// PayResponse reports the outcome of PayWorker.
type PayResponse struct {
	Rejection   PayRejection
	Transaction model.Transaction
}

// IsRejected reports whether the transfer was refused.
func (r PayResponse) IsRejected() bool {
	return r.Rejection != PayOK
}

// PayWorker moves Amount from the company's labour account to the
// worker's member account. Only workers of the company can be paid.
func (s *Service) PayWorker(ctx context.Context, req PayRequest) (PayResponse, error) {
	if !req.Amount.IsPositive() {
		return PayResponse{Rejection: PayInvalidAmount}, nil
	}
	company, err := s.store.GetCompany(ctx, req.Company)
	if errors.Is(err, store.ErrNotFound) {
		return PayResponse{Rejection: PayCompanyNotFound}, nil
	}
	if err != nil {
		return PayResponse{}, fmt.Errorf("reading company %s: %w", req.Company, err)
	}
	worker, err := s.store.GetMember(ctx, req.Worker)
	if errors.Is(err, store.ErrNotFound) {
		return PayResponse{Rejection: PayWorkerNotFound}, nil
	}
	if err != nil {
		return PayResponse{}, fmt.Errorf("reading member %s: %w", req.Worker, err)
	}
	working, err := s.store.IsWorker(ctx, company.ID, worker.ID)
	if err != nil {
		return PayResponse{}, err
	}
	if !working {
		return PayResponse{Rejection: PayWorkerNotAtCompany}, nil
	}

	tx, err := s.ledger.Transfer(ctx, ledger.TransferParams{
		Date:           s.clock.Now(),
		Sender:         company.LabourAccount,
		Receiver:       worker.Account,
		AmountSent:     req.Amount,
		AmountReceived: req.Amount,
		Purpose:        WagePurpose,
	})
	if err != nil {
		return PayResponse{}, fmt.Errorf("transferring wages: %w", err)
	}
	s.logger.Info("worker paid", "company", company.ID, "worker", worker.ID, "amount", req.Amount.String())
	return PayResponse{Transaction: tx}, nil
}
