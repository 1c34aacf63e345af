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

const accountColumns = `id, kind, owner_kind, owner_id`

func scanAccount(row interface{ Scan(...any) error }) (model.Account, error) {
	var a model.Account
	var kind, ownerKind string
	if err := row.Scan(&a.ID, &kind, &ownerKind, &a.Owner.ID); err != nil {
		return model.Account{}, err
	}
	a.Kind = model.AccountKind(kind)
	a.Owner.Kind = model.OwnerKind(ownerKind)
	return a, nil
}

func (s *Store) insertAccount(ctx context.Context, q querier, a model.Account) error {
	_, err := s.exec(ctx, q,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?)`,
		a.ID.String(), string(a.Kind), string(a.Owner.Kind), a.Owner.ID.String())
	if err != nil {
		return fmt.Errorf("inserting account %s: %w", a.ID, err)
	}
	return nil
}

// AccountExists reports whether an account id is known.
func (s *Store) AccountExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int
	err := s.queryRow(ctx, s.db, `SELECT COUNT(*) FROM accounts WHERE id = ?`, id.String()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking account %s: %w", id, err)
	}
	return n > 0, nil
}

// GetAccount returns an account by id.
func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (model.Account, error) {
	a, err := scanAccount(s.queryRow(ctx, s.db,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, store.ErrNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("reading account %s: %w", id, err)
	}
	return a, nil
}

// Accounts returns every account, companies' first, then members', then
// the social accounting's.
func (s *Store) Accounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.query(ctx, s.db, `SELECT `+accountColumns+` FROM accounts
		ORDER BY CASE owner_kind WHEN 'company' THEN 0 WHEN 'member' THEN 1 ELSE 2 END, seq`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const companyColumns = `id, name, email, means_account, resources_account, labour_account, product_account`

func scanCompany(row interface{ Scan(...any) error }) (model.Company, error) {
	var c model.Company
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.MeansAccount, &c.ResourcesAccount, &c.LabourAccount, &c.ProductAccount)
	return c, err
}

// AddCompany stores a company together with its accounts.
func (s *Store) AddCompany(ctx context.Context, c model.Company, accts []model.Account) error {
	return s.withTx(ctx, func(q querier) error {
		for _, a := range accts {
			if err := s.insertAccount(ctx, q, a); err != nil {
				return err
			}
		}
		_, err := s.exec(ctx, q,
			`INSERT INTO companies (`+companyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID.String(), c.Name, c.Email, c.MeansAccount.String(), c.ResourcesAccount.String(),
			c.LabourAccount.String(), c.ProductAccount.String())
		if err != nil {
			return fmt.Errorf("inserting company %s: %w", c.ID, err)
		}
		return nil
	})
}

// GetCompany returns a company by id.
func (s *Store) GetCompany(ctx context.Context, id uuid.UUID) (model.Company, error) {
	c, err := scanCompany(s.queryRow(ctx, s.db,
		`SELECT `+companyColumns+` FROM companies WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Company{}, store.ErrNotFound
	}
	if err != nil {
		return model.Company{}, fmt.Errorf("reading company %s: %w", id, err)
	}
	return c, nil
}

// Companies returns every company in registration order.
func (s *Store) Companies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.query(ctx, s.db, `SELECT `+companyColumns+` FROM companies ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []model.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const memberColumns = `id, name, email, account`

func scanMember(row interface{ Scan(...any) error }) (model.Member, error) {
	var m model.Member
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Account)
	return m, err
}

// AddMember stores a member together with its account.
func (s *Store) AddMember(ctx context.Context, m model.Member, acct model.Account) error {
	return s.withTx(ctx, func(q querier) error {
		if err := s.insertAccount(ctx, q, acct); err != nil {
			return err
		}
		_, err := s.exec(ctx, q,
			`INSERT INTO members (`+memberColumns+`) VALUES (?, ?, ?, ?)`,
			m.ID.String(), m.Name, m.Email, m.Account.String())
		if err != nil {
			return fmt.Errorf("inserting member %s: %w", m.ID, err)
		}
		return nil
	})
}

// GetMember returns a member by id.
func (s *Store) GetMember(ctx context.Context, id uuid.UUID) (model.Member, error) {
	m, err := scanMember(s.queryRow(ctx, s.db,
		`SELECT `+memberColumns+` FROM members WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Member{}, store.ErrNotFound
	}
	if err != nil {
		return model.Member{}, fmt.Errorf("reading member %s: %w", id, err)
	}
	return m, nil
}

// Members returns every member in registration order.
func (s *Store) Members(ctx context.Context) ([]model.Member, error) {
	rows, err := s.query(ctx, s.db, `SELECT `+memberColumns+` FROM members ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SocialAccounting returns the social accounting, or store.ErrNotFound.
func (s *Store) SocialAccounting(ctx context.Context) (model.SocialAccounting, error) {
	return s.socialAccounting(ctx, s.db)
}

func (s *Store) socialAccounting(ctx context.Context, q querier) (model.SocialAccounting, error) {
	var sa model.SocialAccounting
	err := s.queryRow(ctx, q, `SELECT id, account FROM social_accounting WHERE singleton = 1`).
		Scan(&sa.ID, &sa.Account)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SocialAccounting{}, store.ErrNotFound
	}
	if err != nil {
		return model.SocialAccounting{}, fmt.Errorf("reading social accounting: %w", err)
	}
	return sa, nil
}

// EnsureSocialAccounting stores sa and its account unless a social
// accounting exists already, and returns whichever is stored.
func (s *Store) EnsureSocialAccounting(ctx context.Context, sa model.SocialAccounting, acct model.Account) (model.SocialAccounting, error) {
	var out model.SocialAccounting
	err := s.withTx(ctx, func(q querier) error {
		res, err := s.exec(ctx, q,
			`INSERT INTO social_accounting (singleton, id, account) VALUES (1, ?, ?)
			ON CONFLICT (singleton) DO NOTHING`,
			sa.ID.String(), sa.Account.String())
		if err != nil {
			return fmt.Errorf("inserting social accounting: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 1 {
			if err := s.insertAccount(ctx, q, acct); err != nil {
				return err
			}
		}
		out, err = s.socialAccounting(ctx, q)
		return err
	})
	return out, err
}
