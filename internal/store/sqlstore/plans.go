package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/labourtime/labourtime/internal/model"
	"github.com/labourtime/labourtime/internal/store"
)

const planColumns = `id, creation_date, planner, costs_labour, costs_resources, costs_means,
	product_name, product_unit, product_amount, description, timeframe, is_public_service,
	approved, approval_date, approval_reason, is_active, activation_date,
	expired, expiration_relative, expiration_date, active_days, payout_count,
	is_available, cooperation, requested_cooperation, hidden`

// payable mirrors model.Plan.IsPayable.
const payable = `approved = 1 AND is_active = 1 AND expired = 0`

func nullUUIDText(id *uuid.UUID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

func scanPlan(row interface{ Scan(...any) error }) (model.Plan, error) {
	var (
		p                                     model.Plan
		creation                              string
		approvalDate, activationDate, expDate sql.NullString
		expRelative                           sql.NullInt64
		coop, requested                       uuid.NullUUID
		public, approved, active, expired     int64
		avail, hidden                         int64
	)
	err := row.Scan(&p.ID, &creation, &p.Planner, &p.Costs.Labour, &p.Costs.Resources, &p.Costs.Means,
		&p.ProductName, &p.ProductUnit, &p.ProductAmount, &p.Description, &p.Timeframe, &public,
		&approved, &approvalDate, &p.ApprovalReason, &active, &activationDate,
		&expired, &expRelative, &expDate, &p.ActiveDays, &p.PayoutCount,
		&avail, &coop, &requested, &hidden)
	if err != nil {
		return model.Plan{}, err
	}
	if p.CreationDate, err = parseTime(creation); err != nil {
		return model.Plan{}, err
	}
	if p.ApprovalDate, err = parseNullTime(approvalDate); err != nil {
		return model.Plan{}, err
	}
	if p.ActivationDate, err = parseNullTime(activationDate); err != nil {
		return model.Plan{}, err
	}
	if p.ExpirationDate, err = parseNullTime(expDate); err != nil {
		return model.Plan{}, err
	}
	if expRelative.Valid {
		v := int(expRelative.Int64)
		p.ExpirationRelative = &v
	}
	if coop.Valid {
		p.Cooperation = &coop.UUID
	}
	if requested.Valid {
		p.RequestedCooperation = &requested.UUID
	}
	p.IsPublicService = public != 0
	p.Approved = approved != 0
	p.IsActive = active != 0
	p.Expired = expired != 0
	p.IsAvailable = avail != 0
	p.Hidden = hidden != 0
	return p, nil
}

// CreatePlan stores a new plan and its credit transactions together.
func (s *Store) CreatePlan(ctx context.Context, p model.Plan, credit []model.Transaction) error {
	var rel sql.NullInt64
	if p.ExpirationRelative != nil {
		rel = sql.NullInt64{Int64: int64(*p.ExpirationRelative), Valid: true}
	}
	return s.withTx(ctx, func(q querier) error {
		_, err := s.exec(ctx, q, `INSERT INTO plans (`+planColumns+`) VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID.String(), formatTime(p.CreationDate), p.Planner.String(),
			p.Costs.Labour.String(), p.Costs.Resources.String(), p.Costs.Means.String(),
			p.ProductName, p.ProductUnit, p.ProductAmount, p.Description, p.Timeframe, boolInt(p.IsPublicService),
			boolInt(p.Approved), nullTime(p.ApprovalDate), p.ApprovalReason, boolInt(p.IsActive), nullTime(p.ActivationDate),
			boolInt(p.Expired), rel, nullTime(p.ExpirationDate), p.ActiveDays, p.PayoutCount,
			boolInt(p.IsAvailable), nullUUIDText(p.Cooperation), nullUUIDText(p.RequestedCooperation), boolInt(p.Hidden))
		if err != nil {
			return fmt.Errorf("inserting plan %s: %w", p.ID, err)
		}
		for _, t := range credit {
			if err := s.insertTransaction(ctx, q, t); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetPlan returns a plan by id.
func (s *Store) GetPlan(ctx context.Context, id uuid.UUID) (model.Plan, error) {
	return s.getPlan(ctx, s.db, id)
}

func (s *Store) getPlan(ctx context.Context, q querier, id uuid.UUID) (model.Plan, error) {
	p, err := scanPlan(s.queryRow(ctx, q, `SELECT `+planColumns+` FROM plans WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Plan{}, store.ErrNotFound
	}
	if err != nil {
		return model.Plan{}, fmt.Errorf("reading plan %s: %w", id, err)
	}
	return p, nil
}

func (s *Store) plans(ctx context.Context, where string, args ...any) ([]model.Plan, error) {
	rows, err := s.query(ctx, s.db, `SELECT `+planColumns+` FROM plans `+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []model.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Plans returns every plan in creation order.
func (s *Store) Plans(ctx context.Context) ([]model.Plan, error) {
	return s.plans(ctx, ``)
}

// PlansOfCompany returns the plans of one planner.
func (s *Store) PlansOfCompany(ctx context.Context, company uuid.UUID) ([]model.Plan, error) {
	return s.plans(ctx, `WHERE planner = ?`, company.String())
}

// ActivePlans returns every plan flagged active.
func (s *Store) ActivePlans(ctx context.Context) ([]model.Plan, error) {
	return s.plans(ctx, `WHERE is_active = 1`)
}

// PayablePlans returns plans that are approved, active and not expired.
func (s *Store) PayablePlans(ctx context.Context) ([]model.Plan, error) {
	return s.plans(ctx, `WHERE `+payable)
}

// updatePlan runs a guarded UPDATE and returns the plan afterwards. When no
// row changes it reports store.ErrNotFound for an unknown plan and
// store.ErrConflict otherwise.
func (s *Store) updatePlan(ctx context.Context, id uuid.UUID, set, guard string, args ...any) (model.Plan, error) {
	var out model.Plan
	err := s.withTx(ctx, func(q querier) error {
		// args bind SET placeholders, then guard placeholders, then the id
		where := `id = ?`
		if guard != "" {
			where = guard + ` AND id = ?`
		}
		res, err := s.exec(ctx, q, `UPDATE plans SET `+set+` WHERE `+where, append(args, id.String())...)
		if err != nil {
			return fmt.Errorf("updating plan %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			if _, err := s.getPlan(ctx, q, id); err != nil {
				return err
			}
			return store.ErrConflict
		}
		out, err = s.getPlan(ctx, q, id)
		return err
	})
	return out, err
}

// ActivatePlan marks a plan active from date on. It fails with
// store.ErrConflict unless the plan is approved, inactive and not expired.
func (s *Store) ActivatePlan(ctx context.Context, id uuid.UUID, date time.Time) (model.Plan, error) {
	return s.updatePlan(ctx, id, `is_active = 1, activation_date = ?`,
		`approved = 1 AND is_active = 0 AND expired = 0`, formatTime(date))
}

// UpdateSchedule stores the recomputed active days and expiration of a plan.
func (s *Store) UpdateSchedule(ctx context.Context, id uuid.UUID, sched model.PlanSchedule) (model.Plan, error) {
	return s.updatePlan(ctx, id, `active_days = ?, expiration_relative = ?, expiration_date = ?`, ``,
		sched.ActiveDays, sched.ExpirationRelative, formatTime(sched.ExpirationDate))
}

// RecordPayout appends a wage transaction and increments the plan's payout
// count in one database transaction. The count must still be paidBefore;
// otherwise nothing is written and store.ErrConflict is returned.
func (s *Store) RecordPayout(ctx context.Context, id uuid.UUID, paidBefore int, t model.Transaction) (model.Plan, error) {
	var out model.Plan
	err := s.withTx(ctx, func(q querier) error {
		res, err := s.exec(ctx, q, `UPDATE plans SET payout_count = payout_count + 1 WHERE id = ? AND payout_count = ?`,
			id.String(), paidBefore)
		if err != nil {
			return fmt.Errorf("counting payout of plan %s: %w", id, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			if _, err := s.getPlan(ctx, q, id); err != nil {
				return err
			}
			return store.ErrConflict
		}
		if err := s.insertTransaction(ctx, q, t); err != nil {
			return err
		}
		out, err = s.getPlan(ctx, q, id)
		return err
	})
	return out, err
}

// ExpirePlan marks a plan expired and inactive and drops its cooperation
// and pending cooperation request.
func (s *Store) ExpirePlan(ctx context.Context, id uuid.UUID) (model.Plan, error) {
	return s.updatePlan(ctx, id,
		`expired = 1, is_active = 0, cooperation = NULL, requested_cooperation = NULL`, ``)
}

// SetHidden hides a plan from listings.
func (s *Store) SetHidden(ctx context.Context, id uuid.UUID) (model.Plan, error) {
	return s.updatePlan(ctx, id, `hidden = 1`, ``)
}

// ToggleAvailability flips whether a plan's product is available.
func (s *Store) ToggleAvailability(ctx context.Context, id uuid.UUID) (model.Plan, error) {
	return s.updatePlan(ctx, id, `is_available = 1 - is_available`, ``)
}
