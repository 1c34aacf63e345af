// Package statement builds the account statements companies and members
// see: every transaction touching their accounts, classified and signed
// from their side.
package statement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/labourtime/labourtime/internal/ledger"
	"github.com/labourtime/labourtime/internal/model"
)

// Self is the name shown for the party the statement belongs to.
const Self = "me"

// Directory resolves accounts and their holders.
type Directory interface {
	Account(ctx context.Context, id uuid.UUID) (model.Account, error)
	OwnerName(ctx context.Context, accountID uuid.UUID) (string, error)
	Company(ctx context.Context, id uuid.UUID) (model.Company, error)
	Member(ctx context.Context, id uuid.UUID) (model.Member, error)
}

// Transactions lists the transactions touching a set of accounts, newest
// first.
type Transactions interface {
	AccountTransactions(ctx context.Context, accounts ...uuid.UUID) ([]model.Transaction, error)
}

// Info is one line of a statement.
type Info struct {
	Date          time.Time              `json:"date"`
	TransactionID uuid.UUID              `json:"transaction_id"`
	Type          ledger.TransactionType `json:"type"`
	SenderName    string                 `json:"sender_name"`
	ReceiverName  string                 `json:"receiver_name"`
	UserIsSender  bool                   `json:"user_is_sender"`
	Purpose       string                 `json:"purpose"`

	// Volume is the signed change to the holder's accounts in total.
	Volume decimal.Decimal `json:"volume"`
	// Volumes splits Volume by the kind of the holder's account; set for
	// companies only.
	Volumes map[model.AccountKind]decimal.Decimal `json:"volumes,omitempty"`
}

// Service builds statements.
type Service struct {
	dir    Directory
	ledger Transactions
	logger *slog.Logger
}

// NewService creates a statement Service. A nil logger uses slog.Default.
func NewService(dir Directory, ledger Transactions, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{dir: dir, ledger: ledger, logger: logger.With("component", "statement")}
}

// ForCompany returns the statement over all four accounts of a company.
func (s *Service) ForCompany(ctx context.Context, companyID uuid.UUID) ([]Info, error) {
	c, err := s.dir.Company(ctx, companyID)
	if err != nil {
		return nil, err
	}
	self := model.Owner{Kind: model.OwnerCompany, ID: c.ID}
	txs, err := s.ledger.AccountTransactions(ctx, c.Accounts()...)
	if err != nil {
		return nil, fmt.Errorf("reading transactions of company %s: %w", c.ID, err)
	}

	r := s.newResolver(self)
	out := make([]Info, 0, len(txs))
	for _, t := range txs {
		info, sender, receiver, err := r.base(ctx, t)
		if err != nil {
			return nil, err
		}
		info.Volumes = make(map[model.AccountKind]decimal.Decimal)
		info.Volume = decimal.Zero
		if sender.Owner == self {
			info.Volumes[sender.Kind] = info.Volumes[sender.Kind].Sub(t.AmountSent)
			info.Volume = info.Volume.Sub(t.AmountSent)
		}
		if receiver.Owner == self {
			info.Volumes[receiver.Kind] = info.Volumes[receiver.Kind].Add(t.AmountReceived)
			info.Volume = info.Volume.Add(t.AmountReceived)
		}
		out = append(out, info)
	}
	s.logger.Debug("company statement built", "company", c.ID, "transactions", len(out))
	return out, nil
}

// ForMember returns the statement of a member's account.
func (s *Service) ForMember(ctx context.Context, memberID uuid.UUID) ([]Info, error) {
	m, err := s.dir.Member(ctx, memberID)
	if err != nil {
		return nil, err
	}
	txs, err := s.ledger.AccountTransactions(ctx, m.Account)
	if err != nil {
		return nil, fmt.Errorf("reading transactions of member %s: %w", m.ID, err)
	}

	r := s.newResolver(model.Owner{Kind: model.OwnerMember, ID: m.ID})
	out := make([]Info, 0, len(txs))
	for _, t := range txs {
		info, _, _, err := r.base(ctx, t)
		if err != nil {
			return nil, err
		}
		info.Volume = ledger.Volume(t, info.UserIsSender)
		out = append(out, info)
	}
	s.logger.Debug("member statement built", "member", m.ID, "transactions", len(out))
	return out, nil
}

// resolver caches account and name lookups for one statement.
type resolver struct {
	dir      Directory
	self     model.Owner
	accounts map[uuid.UUID]model.Account
	names    map[uuid.UUID]string
}

func (s *Service) newResolver(self model.Owner) *resolver {
	return &resolver{
		dir:      s.dir,
		self:     self,
		accounts: make(map[uuid.UUID]model.Account),
		names:    make(map[uuid.UUID]string),
	}
}

func (r *resolver) account(ctx context.Context, id uuid.UUID) (model.Account, error) {
	if a, ok := r.accounts[id]; ok {
		return a, nil
	}
	a, err := r.dir.Account(ctx, id)
	if err != nil {
		return model.Account{}, err
	}
	r.accounts[id] = a
	return a, nil
}

func (r *resolver) name(ctx context.Context, a model.Account) (string, error) {
	if a.Owner == r.self {
		return Self, nil
	}
	if n, ok := r.names[a.ID]; ok {
		return n, nil
	}
	n, err := r.dir.OwnerName(ctx, a.ID)
	if err != nil {
		return "", err
	}
	r.names[a.ID] = n
	return n, nil
}

func (r *resolver) base(ctx context.Context, t model.Transaction) (Info, model.Account, model.Account, error) {
	sender, err := r.account(ctx, t.SendingAccount)
	if err != nil {
		return Info{}, model.Account{}, model.Account{}, err
	}
	receiver, err := r.account(ctx, t.ReceivingAccount)
	if err != nil {
		return Info{}, model.Account{}, model.Account{}, err
	}
	senderName, err := r.name(ctx, sender)
	if err != nil {
		return Info{}, model.Account{}, model.Account{}, err
	}
	receiverName, err := r.name(ctx, receiver)
	if err != nil {
		return Info{}, model.Account{}, model.Account{}, err
	}
	userIsSender := sender.Owner == r.self
	return Info{
		Date:          t.Date,
		TransactionID: t.ID,
		Type:          ledger.Classify(sender.Kind, receiver.Kind, userIsSender),
		SenderName:    senderName,
		ReceiverName:  receiverName,
		UserIsSender:  userIsSender,
		Purpose:       t.Purpose,
	}, sender, receiver, nil
}
