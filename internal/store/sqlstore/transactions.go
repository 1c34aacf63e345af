package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/labourtime/labourtime/internal/model"
)

const transactionColumns = `id, date, sending_account, receiving_account, amount_sent, amount_received, purpose`

func (s *Store) insertTransaction(ctx context.Context, q querier, t model.Transaction) error {
	_, err := s.exec(ctx, q,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), formatTime(t.Date), t.SendingAccount.String(), t.ReceivingAccount.String(),
		t.AmountSent.String(), t.AmountReceived.String(), t.Purpose)
	if err != nil {
		return fmt.Errorf("inserting transaction %s: %w", t.ID, err)
	}
	return nil
}

// AddTransaction appends a transaction.
func (s *Store) AddTransaction(ctx context.Context, t model.Transaction) error {
	return s.insertTransaction(ctx, s.db, t)
}

// TransactionsSent returns the transactions sent by an account.
func (s *Store) TransactionsSent(ctx context.Context, account uuid.UUID) ([]model.Transaction, error) {
	return s.transactions(ctx, `WHERE sending_account = ?`, account.String())
}

// TransactionsReceived returns the transactions received by an account.
func (s *Store) TransactionsReceived(ctx context.Context, account uuid.UUID) ([]model.Transaction, error) {
	return s.transactions(ctx, `WHERE receiving_account = ?`, account.String())
}

// Transactions returns the whole ledger in booking order.
func (s *Store) Transactions(ctx context.Context) ([]model.Transaction, error) {
	return s.transactions(ctx, ``)
}

func (s *Store) transactions(ctx context.Context, where string, args ...any) ([]model.Transaction, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT `+transactionColumns+` FROM transactions `+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var date string
		if err := rows.Scan(&t.ID, &date, &t.SendingAccount, &t.ReceivingAccount,
			&t.AmountSent, &t.AmountReceived, &t.Purpose); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if t.Date, err = parseTime(date); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
