package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ValidationError describes one reason a transfer was refused.
type ValidationError struct {
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}

// ValidationErrors is returned when a transfer breaks one or more rules.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// AccountChecker tests whether an account exists.
type AccountChecker interface {
	AccountExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ValidateTransfer checks a transfer before it is appended. A storage error
// while checking accounts is returned as the second value.
func ValidateTransfer(ctx context.Context, p TransferParams, accounts AccountChecker) (ValidationErrors, error) {
	var errs ValidationErrors

	if p.Date.IsZero() {
		errs = append(errs, ValidationError{Field: "date", Description: "must be set"})
	}

	for _, acct := range []struct {
		field string
		id    uuid.UUID
	}{
		{"sending_account", p.Sender},
		{"receiving_account", p.Receiver},
	} {
		if acct.id == uuid.Nil {
			errs = append(errs, ValidationError{Field: acct.field, Description: "must be set"})
			continue
		}
		ok, err := accounts.AccountExists(ctx, acct.id)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", acct.field, err)
		}
		if !ok {
			errs = append(errs, ValidationError{
				Field:       acct.field,
				Description: fmt.Sprintf("unknown account %s", acct.id),
			})
		}
	}

	return errs, nil
}
