package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/labourtime/labourtime/internal/model"
)

const purchaseColumns = `id, purchase_date, plan, buyer, price_per_unit, amount, purpose, transaction_id`

// AddPurchase stores a purchase together with its payment.
func (s *Store) AddPurchase(ctx context.Context, p model.Purchase, t model.Transaction) error {
	return s.withTx(ctx, func(q querier) error {
		if err := s.insertTransaction(ctx, q, t); err != nil {
			return err
		}
		_, err := s.exec(ctx, q,
			`INSERT INTO purchases (`+purchaseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID.String(), formatTime(p.Date), p.Plan.String(), p.Buyer.String(),
			p.PricePerUnit.String(), p.Amount, string(p.Purpose), p.Transaction.String())
		if err != nil {
			return fmt.Errorf("inserting purchase %s: %w", p.ID, err)
		}
		return nil
	})
}

// PurchasesOf returns a buyer's purchases, newest first.
func (s *Store) PurchasesOf(ctx context.Context, buyer uuid.UUID) ([]model.Purchase, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT `+purchaseColumns+` FROM purchases WHERE buyer = ? ORDER BY purchase_date DESC, seq DESC`,
		buyer.String())
	if err != nil {
		return nil, fmt.Errorf("listing purchases of %s: %w", buyer, err)
	}
	defer func() { _ = rows.Close() }()
	var out []model.Purchase
	for rows.Next() {
		var p model.Purchase
		var date, purpose string
		if err := rows.Scan(&p.ID, &date, &p.Plan, &p.Buyer, &p.PricePerUnit, &p.Amount, &purpose, &p.Transaction); err != nil {
			return nil, fmt.Errorf("scanning purchase: %w", err)
		}
		if p.Date, err = parseTime(date); err != nil {
			return nil, err
		}
		p.Purpose = model.PurchasePurpose(purpose)
		out = append(out, p)
	}
	return out, rows.Err()
}
