// Package accounts is the account directory: it opens accounts for
// companies, members and the social accounting and resolves who owns an
// account.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/labourtime/labourtime/internal/model"
	"github.com/labourtime/labourtime/internal/store"
)

// Store is the persistence the directory needs.
type Store interface {
	GetAccount(ctx context.Context, id uuid.UUID) (model.Account, error)
	Accounts(ctx context.Context) ([]model.Account, error)
	AddCompany(ctx context.Context, c model.Company, accts []model.Account) error
	GetCompany(ctx context.Context, id uuid.UUID) (model.Company, error)
	Companies(ctx context.Context) ([]model.Company, error)
	AddMember(ctx context.Context, m model.Member, acct model.Account) error
	GetMember(ctx context.Context, id uuid.UUID) (model.Member, error)
	Members(ctx context.Context) ([]model.Member, error)
	SocialAccounting(ctx context.Context) (model.SocialAccounting, error)
	EnsureSocialAccounting(ctx context.Context, sa model.SocialAccounting, acct model.Account) (model.SocialAccounting, error)
}

// Service opens accounts and resolves owners.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a Service. A nil logger uses slog.Default.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger.With("component", "accounts")}
}

// CreateCompany registers a company with fresh means, resources, labour and
// product accounts.
func (s *Service) CreateCompany(ctx context.Context, name, email string) (model.Company, error) {
	if strings.TrimSpace(name) == "" {
		return model.Company{}, errors.New("company name must not be empty")
	}
	c := model.Company{
		ID:               uuid.New(),
		Name:             name,
		Email:            email,
		MeansAccount:     uuid.New(),
		ResourcesAccount: uuid.New(),
		LabourAccount:    uuid.New(),
		ProductAccount:   uuid.New(),
	}
	owner := model.Owner{Kind: model.OwnerCompany, ID: c.ID}
	accts := []model.Account{
		{ID: c.MeansAccount, Kind: model.AccountKindMeans, Owner: owner},
		{ID: c.ResourcesAccount, Kind: model.AccountKindResources, Owner: owner},
		{ID: c.LabourAccount, Kind: model.AccountKindLabour, Owner: owner},
		{ID: c.ProductAccount, Kind: model.AccountKindProduct, Owner: owner},
	}
	if err := s.store.AddCompany(ctx, c, accts); err != nil {
		return model.Company{}, fmt.Errorf("storing company: %w", err)
	}
	s.logger.Info("company registered", "company", c.ID, "name", c.Name)
	return c, nil
}

// CreateMember registers a member with one personal account.
func (s *Service) CreateMember(ctx context.Context, name, email string) (model.Member, error) {
	if strings.TrimSpace(name) == "" {
		return model.Member{}, errors.New("member name must not be empty")
	}
	m := model.Member{ID: uuid.New(), Name: name, Email: email, Account: uuid.New()}
	acct := model.Account{
		ID:    m.Account,
		Kind:  model.AccountKindMember,
		Owner: model.Owner{Kind: model.OwnerMember, ID: m.ID},
	}
	if err := s.store.AddMember(ctx, m, acct); err != nil {
		return model.Member{}, fmt.Errorf("storing member: %w", err)
	}
	s.logger.Info("member registered", "member", m.ID, "name", m.Name)
	return m, nil
}

// SocialAccounting returns the social accounting, creating it on first use.
func (s *Service) SocialAccounting(ctx context.Context) (model.SocialAccounting, error) {
	sa, err := s.store.SocialAccounting(ctx)
	if err == nil {
		return sa, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return model.SocialAccounting{}, fmt.Errorf("reading social accounting: %w", err)
	}

	candidate := model.SocialAccounting{ID: uuid.New(), Account: uuid.New()}
	acct := model.Account{
		ID:    candidate.Account,
		Kind:  model.AccountKindAccounting,
		Owner: model.Owner{Kind: model.OwnerSocialAccounting, ID: candidate.ID},
	}
	sa, err = s.store.EnsureSocialAccounting(ctx, candidate, acct)
	if err != nil {
		return model.SocialAccounting{}, fmt.Errorf("creating social accounting: %w", err)
	}
	return sa, nil
}

// Account returns an account by id.
func (s *Service) Account(ctx context.Context, id uuid.UUID) (model.Account, error) {
	a, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return model.Account{}, fmt.Errorf("account %s: %w", id, err)
	}
	return a, nil
}

// Owner returns the holder of an account.
func (s *Service) Owner(ctx context.Context, accountID uuid.UUID) (model.Owner, error) {
	a, err := s.Account(ctx, accountID)
	if err != nil {
		return model.Owner{}, err
	}
	return a.Owner, nil
}

// OwnerName returns a display name for an account's holder.
func (s *Service) OwnerName(ctx context.Context, accountID uuid.UUID) (string, error) {
	owner, err := s.Owner(ctx, accountID)
	if err != nil {
		return "", err
	}
	switch owner.Kind {
	case model.OwnerCompany:
		c, err := s.store.GetCompany(ctx, owner.ID)
		if err != nil {
			return "", fmt.Errorf("company %s: %w", owner.ID, err)
		}
		return c.Name, nil
	case model.OwnerMember:
		m, err := s.store.GetMember(ctx, owner.ID)
		if err != nil {
			return "", fmt.Errorf("member %s: %w", owner.ID, err)
		}
		return m.Name, nil
	case model.OwnerSocialAccounting:
		return "Social Accounting", nil
	}
	return "", fmt.Errorf("account %s has unknown owner kind %q", accountID, owner.Kind)
}

// Company returns a company by id.
func (s *Service) Company(ctx context.Context, id uuid.UUID) (model.Company, error) {
	c, err := s.store.GetCompany(ctx, id)
	if err != nil {
		return model.Company{}, fmt.Errorf("company %s: %w", id, err)
	}
	return c, nil
}

// Member returns a member by id.
func (s *Service) Member(ctx context.Context, id uuid.UUID) (model.Member, error) {
	m, err := s.store.GetMember(ctx, id)
	if err != nil {
		return model.Member{}, fmt.Errorf("member %s: %w", id, err)
	}
	return m, nil
}

// All returns every account in the directory.
func (s *Service) All(ctx context.Context) ([]model.Account, error) {
	return s.store.Accounts(ctx)
}

// ByKind returns all accounts of the given kind.
func (s *Service) ByKind(ctx context.Context, kind model.AccountKind) ([]model.Account, error) {
	all, err := s.store.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	var result []model.Account
	for _, a := range all {
		if a.Kind == kind {
			result = append(result, a)
		}
	}
	return result, nil
}

// Companies returns every registered company.
func (s *Service) Companies(ctx context.Context) ([]model.Company, error) {
	return s.store.Companies(ctx)
}

// Members returns every registered member.
func (s *Service) Members(ctx context.Context) ([]model.Member, error) {
	return s.store.Members(ctx)
}
