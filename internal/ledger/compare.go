package ledger

import (
	"github.com/google/uuid"

	"github.com/labourtime/labourtime/internal/model"
)

// Discrepancies lists how an exported ledger differs from the stored one.
type Discrepancies struct {
	// Missing transactions are exported but no longer stored.
	Missing []uuid.UUID
	// Unexported transactions are stored but absent from the export.
	Unexported []uuid.UUID
	// Changed transactions are in both with different contents.
	Changed []uuid.UUID
}

// Empty reports whether the export matches the store.
func (d Discrepancies) Empty() bool {
	return len(d.Missing) == 0 && len(d.Unexported) == 0 && len(d.Changed) == 0
}

// Compare checks an exported ledger against the stored transactions. The
// ledger is append-only, so any discrepancy other than Unexported points
// at tampering with one side.
func Compare(exported, stored []model.Transaction) Discrepancies {
	byID := make(map[uuid.UUID]model.Transaction, len(stored))
	for _, t := range stored {
		byID[t.ID] = t
	}
	var d Discrepancies
	seen := make(map[uuid.UUID]bool, len(exported))
	for _, e := range exported {
		seen[e.ID] = true
		s, ok := byID[e.ID]
		switch {
		case !ok:
			d.Missing = append(d.Missing, e.ID)
		case !sameTransaction(e, s):
			d.Changed = append(d.Changed, e.ID)
		}
	}
	for _, t := range stored {
		if !seen[t.ID] {
			d.Unexported = append(d.Unexported, t.ID)
		}
	}
	return d
}

func sameTransaction(a, b model.Transaction) bool {
	return a.Date.Equal(b.Date) &&
		a.SendingAccount == b.SendingAccount &&
		a.ReceivingAccount == b.ReceivingAccount &&
		a.AmountSent.Equal(b.AmountSent) &&
		a.AmountReceived.Equal(b.AmountReceived) &&
		a.Purpose == b.Purpose
}
