package model

import (
	"time"

	"github.com/google/uuid"
)

// WorkerInvite is a company's offer of work to a member. It disappears
// once the member answers it.
type WorkerInvite struct {
	ID           uuid.UUID
	CreationDate time.Time
	Company      uuid.UUID
	Member       uuid.UUID
}
