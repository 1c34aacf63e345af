package statement_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labourtime/labourtime/internal/accounts"
	"github.com/labourtime/labourtime/internal/ledger"
	"github.com/labourtime/labourtime/internal/model"
	"github.com/labourtime/labourtime/internal/statement"
	"github.com/labourtime/labourtime/internal/store/memory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	ctx     context.Context
	svc     *statement.Service
	company model.Company
	member  model.Member
}

// newFixture books, one day apart: a labour credit from the social
// accounting, a wage payment to the member and the member buying from the
// company at a cooperation price below the individual one.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	dir := accounts.NewService(st, nil)
	led := ledger.NewService(st, nil)
	social, err := dir.SocialAccounting(ctx)
	require.NoError(t, err)
	company, err := dir.CreateCompany(ctx, "Bakery", "")
	require.NoError(t, err)
	member, err := dir.CreateMember(ctx, "Alice", "")
	require.NoError(t, err)

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err = led.CreateTransaction(ctx, day, social.Account, company.LabourAccount, dec("20"), "credit")
	require.NoError(t, err)
	_, err = led.CreateTransaction(ctx, day.AddDate(0, 0, 1), company.LabourAccount, member.Account, dec("8"), "wages")
	require.NoError(t, err)
	_, err = led.Transfer(ctx, ledger.TransferParams{
		Date:           day.AddDate(0, 0, 2),
		Sender:         member.Account,
		Receiver:       company.ProductAccount,
		AmountSent:     dec("3"),
		AmountReceived: dec("4"),
		Purpose:        "bread",
	})
	require.NoError(t, err)

	return &fixture{
		ctx:     ctx,
		svc:     statement.NewService(dir, led, nil),
		company: company,
		member:  member,
	}
}

func TestForCompany(t *testing.T) {
	f := newFixture(t)

	infos, err := f.svc.ForCompany(f.ctx, f.company.ID)
	require.NoError(t, err)
	require.Len(t, infos, 3)

	sale, wages, credit := infos[0], infos[1], infos[2]

	assert.Equal(t, ledger.TypeSaleOfConsumerProduct, sale.Type)
	assert.Equal(t, "Alice", sale.SenderName)
	assert.Equal(t, statement.Self, sale.ReceiverName)
	assert.False(t, sale.UserIsSender)
	assert.True(t, dec("4").Equal(sale.Volumes[model.AccountKindProduct]))
	assert.True(t, dec("4").Equal(sale.Volume))

	assert.Equal(t, ledger.TypePaymentOfWages, wages.Type)
	assert.Equal(t, statement.Self, wages.SenderName)
	assert.Equal(t, "Alice", wages.ReceiverName)
	assert.True(t, wages.UserIsSender)
	assert.True(t, dec("-8").Equal(wages.Volumes[model.AccountKindLabour]))
	assert.Len(t, wages.Volumes, 1)

	assert.Equal(t, ledger.TypeCreditForWages, credit.Type)
	assert.Equal(t, "Social Accounting", credit.SenderName)
	assert.True(t, dec("20").Equal(credit.Volumes[model.AccountKindLabour]))
}

func TestForMember(t *testing.T) {
	f := newFixture(t)

	infos, err := f.svc.ForMember(f.ctx, f.member.ID)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	purchase, wages := infos[0], infos[1]

	assert.Equal(t, ledger.TypePaymentOfConsumerProduct, purchase.Type)
	assert.Equal(t, statement.Self, purchase.SenderName)
	assert.Equal(t, "Bakery", purchase.ReceiverName)
	assert.True(t, dec("-3").Equal(purchase.Volume), "member pays the cooperation price")
	assert.Nil(t, purchase.Volumes)

	assert.Equal(t, ledger.TypeIncomingWages, wages.Type)
	assert.Equal(t, "Bakery", wages.SenderName)
	assert.True(t, dec("8").Equal(wages.Volume))
}

func TestUnknownHolder(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ForCompany(f.ctx, f.member.ID)
	assert.Error(t, err)
	_, err = f.svc.ForMember(f.ctx, f.company.ID)
	assert.Error(t, err)
}
