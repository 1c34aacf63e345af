package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/labourtime/labourtime/internal/model"
)

// Store persists the append-only transaction log. There is deliberately no
// update or delete.
type Store interface {
	AccountChecker
	AddTransaction(ctx context.Context, t model.Transaction) error
	TransactionsSent(ctx context.Context, account uuid.UUID) ([]model.Transaction, error)
	TransactionsReceived(ctx context.Context, account uuid.UUID) ([]model.Transaction, error)
	Transactions(ctx context.Context) ([]model.Transaction, error)
}

// Service appends transactions and derives balances.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a ledger Service. A nil logger uses slog.Default.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger.With("component", "ledger")}
}

// TransferParams describes a transfer between two accounts.
type TransferParams struct {
	Date           time.Time
	Sender         uuid.UUID
	Receiver       uuid.UUID
	AmountSent     decimal.Decimal
	AmountReceived decimal.Decimal
	Purpose        string
}

// CreateTransaction appends a transaction where the sender loses and the
// receiver gains the same amount.
func (s *Service) CreateTransaction(ctx context.Context, date time.Time, sender, receiver uuid.UUID, amount decimal.Decimal, purpose string) (model.Transaction, error) {
	return s.Transfer(ctx, TransferParams{
		Date:           date,
		Sender:         sender,
		Receiver:       receiver,
		AmountSent:     amount,
		AmountReceived: amount,
		Purpose:        purpose,
	})
}

// Transfer validates and appends a transaction. The sent and received
// amounts may differ.
func (s *Service) Transfer(ctx context.Context, p TransferParams) (model.Transaction, error) {
	verrs, err := ValidateTransfer(ctx, p, s.store)
	if err != nil {
		return model.Transaction{}, err
	}
	if len(verrs) > 0 {
		return model.Transaction{}, verrs
	}

	t := NewTransaction(p)
	if err := s.store.AddTransaction(ctx, t); err != nil {
		return model.Transaction{}, fmt.Errorf("appending transaction: %w", err)
	}
	s.logger.Debug("transaction appended",
		"id", t.ID, "from", t.SendingAccount, "to", t.ReceivingAccount,
		"amount_sent", t.AmountSent.String(), "purpose", t.Purpose)
	return t, nil
}

// NewTransaction builds an immutable transaction record with a fresh id.
// Stores that append transactions inside their own atomic operations use
// it directly.
func NewTransaction(p TransferParams) model.Transaction {
	return model.Transaction{
		ID:               uuid.New(),
		Date:             p.Date.UTC(),
		SendingAccount:   p.Sender,
		ReceivingAccount: p.Receiver,
		AmountSent:       p.AmountSent,
		AmountReceived:   p.AmountReceived,
		Purpose:          p.Purpose,
	}
}

// Balance returns the balance of an account.
func (s *Service) Balance(ctx context.Context, account uuid.UUID) (decimal.Decimal, error) {
	sent, err := s.store.TransactionsSent(ctx, account)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading sent transactions: %w", err)
	}
	received, err := s.store.TransactionsReceived(ctx, account)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading received transactions: %w", err)
	}
	return Balance(sent, received), nil
}

// AccountTransactions returns every transaction touching any of the given
// accounts once, newest first.
func (s *Service) AccountTransactions(ctx context.Context, accounts ...uuid.UUID) ([]model.Transaction, error) {
	seen := make(map[uuid.UUID]bool)
	var all []model.Transaction
	add := func(txs []model.Transaction) {
		for _, t := range txs {
			if !seen[t.ID] {
				seen[t.ID] = true
				all = append(all, t)
			}
		}
	}
	for _, a := range accounts {
		sent, err := s.store.TransactionsSent(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("reading sent transactions: %w", err)
		}
		add(sent)
		received, err := s.store.TransactionsReceived(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("reading received transactions: %w", err)
		}
		add(received)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date.After(all[j].Date)
	})
	return all, nil
}

// All returns the whole ledger in booking order.
func (s *Service) All(ctx context.Context) ([]model.Transaction, error) {
	return s.store.Transactions(ctx)
}
