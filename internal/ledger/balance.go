package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/labourtime/labourtime/internal/model"
)

// Balance returns received minus sent for an account, given the
// transactions it sent and received. A transaction appearing in both sets
// (a self-transfer) cancels out and is not counted on either side.
func Balance(sent, received []model.Transaction) decimal.Decimal {
	sentIDs := make(map[uuid.UUID]bool, len(sent))
	for _, t := range sent {
		sentIDs[t.ID] = true
	}
	receivedIDs := make(map[uuid.UUID]bool, len(received))
	for _, t := range received {
		receivedIDs[t.ID] = true
	}

	total := decimal.Zero
	seen := make(map[uuid.UUID]bool, len(received))
	for _, t := range received {
		if sentIDs[t.ID] || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		total = total.Add(t.AmountReceived)
	}
	seen = make(map[uuid.UUID]bool, len(sent))
	for _, t := range sent {
		if receivedIDs[t.ID] || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		total = total.Sub(t.AmountSent)
	}
	return total
}
