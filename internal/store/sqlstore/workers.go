package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/labourtime/labourtime/internal/model"
	"github.com/labourtime/labourtime/internal/store"
)

const inviteColumns = `id, creation_date, company, member`

func scanInvite(row interface{ Scan(...any) error }) (model.WorkerInvite, error) {
	var inv model.WorkerInvite
	var created string
	if err := row.Scan(&inv.ID, &created, &inv.Company, &inv.Member); err != nil {
		return model.WorkerInvite{}, err
	}
	var err error
	inv.CreationDate, err = parseTime(created)
	return inv, err
}

// AddWorkerInvite stores an invite. A second open invite for the same
// company and member fails with store.ErrConflict.
func (s *Store) AddWorkerInvite(ctx context.Context, inv model.WorkerInvite) error {
	return s.withTx(ctx, func(q querier) error {
		var n int
		err := s.queryRow(ctx, q, `SELECT COUNT(*) FROM worker_invites WHERE company = ? AND member = ?`,
			inv.Company.String(), inv.Member.String()).Scan(&n)
		if err != nil {
			return fmt.Errorf("checking invites of member %s: %w", inv.Member, err)
		}
		if n > 0 {
			return store.ErrConflict
		}
		_, err = s.exec(ctx, q, `INSERT INTO worker_invites (`+inviteColumns+`) VALUES (?, ?, ?, ?)`,
			inv.ID.String(), formatTime(inv.CreationDate), inv.Company.String(), inv.Member.String())
		if err != nil {
			return fmt.Errorf("inserting invite %s: %w", inv.ID, err)
		}
		return nil
	})
}

// GetWorkerInvite returns an open invite by id.
func (s *Store) GetWorkerInvite(ctx context.Context, id uuid.UUID) (model.WorkerInvite, error) {
	return s.getInvite(ctx, s.db, id)
}

func (s *Store) getInvite(ctx context.Context, q querier, id uuid.UUID) (model.WorkerInvite, error) {
	inv, err := scanInvite(s.queryRow(ctx, q,
		`SELECT `+inviteColumns+` FROM worker_invites WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return model.WorkerInvite{}, store.ErrNotFound
	}
	if err != nil {
		return model.WorkerInvite{}, fmt.Errorf("reading invite %s: %w", id, err)
	}
	return inv, nil
}

// WorkerInvitesOf returns the open invites addressed to a member.
func (s *Store) WorkerInvitesOf(ctx context.Context, member uuid.UUID) ([]model.WorkerInvite, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT `+inviteColumns+` FROM worker_invites WHERE member = ? ORDER BY seq`, member.String())
	if err != nil {
		return nil, fmt.Errorf("listing invites of member %s: %w", member, err)
	}
	defer func() { _ = rows.Close() }()
	var out []model.WorkerInvite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invite: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// AnswerWorkerInvite deletes an invite and, when accepted, adds the member
// to the company's workers.
func (s *Store) AnswerWorkerInvite(ctx context.Context, id uuid.UUID, accept bool) (model.WorkerInvite, error) {
	var inv model.WorkerInvite
	err := s.withTx(ctx, func(q querier) error {
		var err error
		if inv, err = s.getInvite(ctx, q, id); err != nil {
			return err
		}
		if _, err := s.exec(ctx, q, `DELETE FROM worker_invites WHERE id = ?`, id.String()); err != nil {
			return fmt.Errorf("deleting invite %s: %w", id, err)
		}
		if !accept {
			return nil
		}
		var n int
		err = s.queryRow(ctx, q, `SELECT COUNT(*) FROM company_workers WHERE company = ? AND member = ?`,
			inv.Company.String(), inv.Member.String()).Scan(&n)
		if err != nil {
			return fmt.Errorf("checking workers of company %s: %w", inv.Company, err)
		}
		if n > 0 {
			return nil
		}
		_, err = s.exec(ctx, q, `INSERT INTO company_workers (company, member) VALUES (?, ?)`,
			inv.Company.String(), inv.Member.String())
		if err != nil {
			return fmt.Errorf("adding worker %s: %w", inv.Member, err)
		}
		return nil
	})
	return inv, err
}

// CompanyWorkers returns the members working at a company.
func (s *Store) CompanyWorkers(ctx context.Context, company uuid.UUID) ([]model.Member, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT m.id, m.name, m.email, m.account FROM company_workers w
		JOIN members m ON m.id = w.member WHERE w.company = ? ORDER BY w.seq`, company.String())
	if err != nil {
		return nil, fmt.Errorf("listing workers of company %s: %w", company, err)
	}
	defer func() { _ = rows.Close() }()
	var out []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning worker: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// IsWorker reports whether member works at company.
func (s *Store) IsWorker(ctx context.Context, company, member uuid.UUID) (bool, error) {
	var n int
	err := s.queryRow(ctx, s.db, `SELECT COUNT(*) FROM company_workers WHERE company = ? AND member = ?`,
		company.String(), member.String()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking workers of company %s: %w", company, err)
	}
	return n > 0, nil
}
