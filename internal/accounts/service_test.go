package accounts

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labourtime/labourtime/internal/model"
	"github.com/labourtime/labourtime/internal/store"
	"github.com/labourtime/labourtime/internal/store/memory"
)

func TestCreateCompany(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New(), nil)

	c, err := svc.CreateCompany(ctx, "Bakery", "bake@example.org")
	require.NoError(t, err)

	kinds := []model.AccountKind{
		model.AccountKindMeans, model.AccountKindResources,
		model.AccountKindLabour, model.AccountKindProduct,
	}
	for i, id := range c.Accounts() {
		acct, err := svc.Account(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, kinds[i], acct.Kind)
		assert.Equal(t, model.Owner{Kind: model.OwnerCompany, ID: c.ID}, acct.Owner)
	}

	got, err := svc.Company(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestCreate_EmptyName(t *testing.T) {
	svc := NewService(memory.New(), nil)
	_, err := svc.CreateCompany(context.Background(), "  ", "")
	assert.Error(t, err)
	_, err = svc.CreateMember(context.Background(), "", "")
	assert.Error(t, err)
}

func TestOwnerName(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New(), nil)

	c, err := svc.CreateCompany(ctx, "Bakery", "")
	require.NoError(t, err)
	m, err := svc.CreateMember(ctx, "Rosa", "")
	require.NoError(t, err)
	sa, err := svc.SocialAccounting(ctx)
	require.NoError(t, err)

	tests := []struct {
		account uuid.UUID
		want    string
	}{
		{c.ProductAccount, "Bakery"},
		{m.Account, "Rosa"},
		{sa.Account, "Social Accounting"},
	}
	for _, tt := range tests {
		got, err := svc.OwnerName(ctx, tt.account)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	owner, err := svc.Owner(ctx, m.Account)
	require.NoError(t, err)
	assert.Equal(t, model.OwnerMember, owner.Kind)
	assert.Equal(t, m.ID, owner.ID)

	_, err = svc.Owner(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSocialAccounting_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New(), nil)

	first, err := svc.SocialAccounting(ctx)
	require.NoError(t, err)
	second, err := svc.SocialAccounting(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	acct, err := svc.Account(ctx, first.Account)
	require.NoError(t, err)
	assert.Equal(t, model.AccountKindAccounting, acct.Kind)
}

func TestByKindAndExport(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New(), nil)

	_, err := svc.CreateCompany(ctx, "Mill", "")
	require.NoError(t, err)
	_, err = svc.CreateMember(ctx, "Ada", "")
	require.NoError(t, err)
	_, err = svc.CreateMember(ctx, "Ben", "")
	require.NoError(t, err)

	members, err := svc.ByKind(ctx, model.AccountKindMember)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, all))
	back, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, all, back)

	companies, err := svc.Companies(ctx)
	require.NoError(t, err)
	assert.Len(t, companies, 1)
	ms, err := svc.Members(ctx)
	require.NoError(t, err)
	assert.Len(t, ms, 2)
}
