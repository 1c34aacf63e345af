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

const cooperationColumns = `id, creation_date, name, definition, coordinator`

func scanCooperation(row interface{ Scan(...any) error }) (model.Cooperation, error) {
	var c model.Cooperation
	var created string
	if err := row.Scan(&c.ID, &created, &c.Name, &c.Definition, &c.Coordinator); err != nil {
		return model.Cooperation{}, err
	}
	var err error
	c.CreationDate, err = parseTime(created)
	return c, err
}

// AddCooperation stores a cooperation.
func (s *Store) AddCooperation(ctx context.Context, c model.Cooperation) error {
	_, err := s.exec(ctx, s.db,
		`INSERT INTO cooperations (`+cooperationColumns+`) VALUES (?, ?, ?, ?, ?)`,
		c.ID.String(), formatTime(c.CreationDate), c.Name, c.Definition, c.Coordinator.String())
	if err != nil {
		return fmt.Errorf("inserting cooperation %s: %w", c.ID, err)
	}
	return nil
}

// GetCooperation returns a cooperation by id.
func (s *Store) GetCooperation(ctx context.Context, id uuid.UUID) (model.Cooperation, error) {
	c, err := scanCooperation(s.queryRow(ctx, s.db,
		`SELECT `+cooperationColumns+` FROM cooperations WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Cooperation{}, store.ErrNotFound
	}
	if err != nil {
		return model.Cooperation{}, fmt.Errorf("reading cooperation %s: %w", id, err)
	}
	return c, nil
}

func (s *Store) cooperations(ctx context.Context, where string, args ...any) ([]model.Cooperation, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT `+cooperationColumns+` FROM cooperations `+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing cooperations: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []model.Cooperation
	for rows.Next() {
		c, err := scanCooperation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning cooperation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Cooperations returns every cooperation in creation order.
func (s *Store) Cooperations(ctx context.Context) ([]model.Cooperation, error) {
	return s.cooperations(ctx, ``)
}

// CooperationsCoordinatedBy returns the cooperations a company coordinates.
func (s *Store) CooperationsCoordinatedBy(ctx context.Context, company uuid.UUID) ([]model.Cooperation, error) {
	return s.cooperations(ctx, `WHERE coordinator = ?`, company.String())
}

// PlansInCooperation returns the member plans of a cooperation.
func (s *Store) PlansInCooperation(ctx context.Context, coop uuid.UUID) ([]model.Plan, error) {
	return s.plans(ctx, `WHERE cooperation = ?`, coop.String())
}

// PlansRequestingCooperation returns plans with a pending request to coop.
func (s *Store) PlansRequestingCooperation(ctx context.Context, coop uuid.UUID) ([]model.Plan, error) {
	return s.plans(ctx, `WHERE requested_cooperation = ?`, coop.String())
}

// CooperatingPlans returns all plans in the plan's cooperation, or just the
// plan when it does not cooperate. An unknown plan yields no plans.
func (s *Store) CooperatingPlans(ctx context.Context, planID uuid.UUID) ([]model.Plan, error) {
	p, err := s.GetPlan(ctx, planID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if p.Cooperation == nil {
		return []model.Plan{p}, nil
	}
	return s.PlansInCooperation(ctx, *p.Cooperation)
}

// SetRequestedCooperation records a pending request of a plan to join
// coop. It fails with store.ErrConflict unless the plan is payable,
// cooperates with nobody and has no pending request.
func (s *Store) SetRequestedCooperation(ctx context.Context, planID, coop uuid.UUID) (model.Plan, error) {
	return s.updatePlan(ctx, planID, `requested_cooperation = ?`,
		payable+` AND cooperation IS NULL AND requested_cooperation IS NULL`, coop.String())
}

// ClearRequestedCooperation drops a pending request.
func (s *Store) ClearRequestedCooperation(ctx context.Context, planID uuid.UUID) (model.Plan, error) {
	return s.updatePlan(ctx, planID, `requested_cooperation = NULL`, ``)
}

// AcceptCooperationRequest turns a pending request into membership. It
// fails with store.ErrConflict unless the plan is payable and its pending
// request targets coop.
func (s *Store) AcceptCooperationRequest(ctx context.Context, planID, coop uuid.UUID) (model.Plan, error) {
	c := coop.String()
	return s.updatePlan(ctx, planID, `cooperation = ?, requested_cooperation = NULL`,
		payable+` AND cooperation IS NULL AND requested_cooperation = ?`, c, c)
}

// RemoveFromCooperation ends a plan's cooperation membership.
func (s *Store) RemoveFromCooperation(ctx context.Context, planID uuid.UUID) (model.Plan, error) {
	return s.updatePlan(ctx, planID, `cooperation = NULL`, ``)
}
