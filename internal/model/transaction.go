package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is an immutable ledger record. The sender is debited
// AmountSent and the receiver is credited AmountReceived; both are equal
// except for purchases of cooperating products.
type Transaction struct {
	ID               uuid.UUID
	Date             time.Time
	SendingAccount   uuid.UUID
	ReceivingAccount uuid.UUID
	AmountSent       decimal.Decimal
	AmountReceived   decimal.Decimal
	Purpose          string
}

// Amount returns the sent amount. For symmetric transactions it equals the
// received amount.
func (t Transaction) Amount() decimal.Decimal {
	return t.AmountSent
}

// IsSelfTransfer reports whether the same account sent and received t.
func (t Transaction) IsSelfTransfer() bool {
	return t.SendingAccount == t.ReceivingAccount
}
