package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/labourtime/labourtime/internal/model"
)

func TestCompare(t *testing.T) {
	day := time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)
	tx := func(amount string) model.Transaction {
		return model.Transaction{ID: uuid.New(), Date: day, SendingAccount: uuid.New(), ReceivingAccount: uuid.New(),
			AmountSent: decimal.RequireFromString(amount), AmountReceived: decimal.RequireFromString(amount), Purpose: "p"}
	}
	kept, edited, dropped, added := tx("1"), tx("2"), tx("3"), tx("4")

	same := Compare([]model.Transaction{kept}, []model.Transaction{kept})
	assert.True(t, same.Empty())

	// the same amount written differently is not a change
	rescaled := kept
	rescaled.AmountSent = decimal.RequireFromString("1.00")
	assert.True(t, Compare([]model.Transaction{rescaled}, []model.Transaction{kept}).Empty())

	tampered := edited
	tampered.AmountReceived = decimal.RequireFromString("20")
	d := Compare(
		[]model.Transaction{kept, edited, dropped},
		[]model.Transaction{kept, tampered, added},
	)
	assert.False(t, d.Empty())
	assert.Equal(t, []uuid.UUID{dropped.ID}, d.Missing)
	assert.Equal(t, []uuid.UUID{edited.ID}, d.Changed)
	assert.Equal(t, []uuid.UUID{added.ID}, d.Unexported)
}
