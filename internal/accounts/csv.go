package accounts

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/labourtime/labourtime/internal/model"
)

const (
	numFields    = 4
	colID        = 0
	colKind      = 1
	colOwnerKind = 2
	colOwnerID   = 3
)

// ReadAccounts reads an account directory written by WriteAccounts.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes the account directory as CSV.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"account_id", "kind", "owner_kind", "owner_id"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID.String()
	row[colKind] = string(acct.Kind)
	row[colOwnerKind] = string(acct.Owner.Kind)
	row[colOwnerID] = acct.Owner.ID.String()
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id, err := uuid.Parse(record[colID])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing account_id %q: %w", record[colID], err)
	}

	kind := model.AccountKind(record[colKind])
	if !kind.Valid() {
		return model.Account{}, fmt.Errorf("unknown account kind %q", record[colKind])
	}

	ownerKind := model.OwnerKind(record[colOwnerKind])
	switch ownerKind {
	case model.OwnerMember, model.OwnerCompany, model.OwnerSocialAccounting:
	default:
		return model.Account{}, fmt.Errorf("unknown owner kind %q", record[colOwnerKind])
	}

	ownerID, err := uuid.Parse(record[colOwnerID])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing owner_id %q: %w", record[colOwnerID], err)
	}

	return model.Account{
		ID:    id,
		Kind:  kind,
		Owner: model.Owner{Kind: ownerKind, ID: ownerID},
	}, nil
}

// Diff returns the ids of exported accounts that are unknown to the
// directory or differ from it in kind or owner.
func Diff(exported, stored []model.Account) []uuid.UUID {
	byID := make(map[uuid.UUID]model.Account, len(stored))
	for _, a := range stored {
		byID[a.ID] = a
	}
	var out []uuid.UUID
	for _, e := range exported {
		if s, ok := byID[e.ID]; !ok || s != e {
			out = append(out, e.ID)
		}
	}
	return out
}
