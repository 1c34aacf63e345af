package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labourtime/labourtime/internal/model"
	"github.com/labourtime/labourtime/internal/store/memory"
)

func newLedger(t *testing.T, kinds ...model.AccountKind) (*Service, []uuid.UUID) {
	t.Helper()
	st := memory.New()
	var ids []uuid.UUID
	for _, k := range kinds {
		m := model.Member{ID: uuid.New(), Account: uuid.New()}
		acct := model.Account{ID: m.Account, Kind: k, Owner: model.Owner{Kind: model.OwnerMember, ID: m.ID}}
		require.NoError(t, st.AddMember(context.Background(), m, acct))
		ids = append(ids, acct.ID)
	}
	return NewService(st, nil), ids
}

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()
	svc, ids := newLedger(t, model.AccountKindMember, model.AccountKindMember)

	tr, err := svc.CreateTransaction(ctx, date(2024, 5, 1), ids[0], ids[1], dec("2.5"), "lunch")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, tr.ID)
	assert.True(t, tr.AmountSent.Equal(tr.AmountReceived))

	from, err := svc.Balance(ctx, ids[0])
	require.NoError(t, err)
	to, err := svc.Balance(ctx, ids[1])
	require.NoError(t, err)
	assert.True(t, dec("-2.5").Equal(from), "sender balance %s", from)
	assert.True(t, dec("2.5").Equal(to), "receiver balance %s", to)
}

func TestTransfer_Asymmetric(t *testing.T) {
	ctx := context.Background()
	svc, ids := newLedger(t, model.AccountKindMember, model.AccountKindProduct)

	_, err := svc.Transfer(ctx, TransferParams{
		Date:           date(2024, 5, 1),
		Sender:         ids[0],
		Receiver:       ids[1],
		AmountSent:     dec("0.8333"),
		AmountReceived: dec("1"),
	})
	require.NoError(t, err)

	from, _ := svc.Balance(ctx, ids[0])
	to, _ := svc.Balance(ctx, ids[1])
	assert.True(t, dec("-0.8333").Equal(from))
	assert.True(t, dec("1").Equal(to))
}

func TestTransfer_ValidationFailure(t *testing.T) {
	ctx := context.Background()
	svc, ids := newLedger(t, model.AccountKindMember)

	_, err := svc.Transfer(ctx, TransferParams{
		Sender:     ids[0],
		Receiver:   uuid.New(),
		AmountSent: dec("1"),
	})
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 2)
	assert.Equal(t, "date", verrs[0].Field)
	assert.Equal(t, "receiving_account", verrs[1].Field)
	assert.Contains(t, err.Error(), "validation failed")

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "nothing appended on validation failure")
}

func TestValidateTransfer_MissingAccounts(t *testing.T) {
	svc, _ := newLedger(t)
	verrs, err := ValidateTransfer(context.Background(), TransferParams{Date: date(2024, 1, 1)}, svc.store)
	require.NoError(t, err)
	require.Len(t, verrs, 2)
	assert.Equal(t, "must be set", verrs[0].Description)
}

func TestAccountTransactions_NewestFirstAndDeduped(t *testing.T) {
	ctx := context.Background()
	svc, ids := newLedger(t, model.AccountKindMember, model.AccountKindMember, model.AccountKindMember)

	first, err := svc.CreateTransaction(ctx, date(2024, 1, 1), ids[0], ids[1], dec("1"), "first")
	require.NoError(t, err)
	second, err := svc.CreateTransaction(ctx, date(2024, 1, 2), ids[1], ids[2], dec("1"), "second")
	require.NoError(t, err)
	_, err = svc.CreateTransaction(ctx, date(2024, 1, 3), ids[2], ids[2], dec("1"), "unrelated")
	require.NoError(t, err)

	txs, err := svc.AccountTransactions(ctx, ids[0], ids[1])
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, second.ID, txs[0].ID)
	assert.Equal(t, first.ID, txs[1].ID)
}

func TestAccountTransactions_SentAndReceived(t *testing.T) {
	ctx := context.Background()
	svc, ids := newLedger(t, model.AccountKindMember, model.AccountKindMember, model.AccountKindMember)

	_, err := svc.CreateTransaction(ctx, date(2024, 1, 1), ids[0], ids[1], dec("1"), "")
	require.NoError(t, err)

	txs, err := svc.AccountTransactions(ctx, ids[0])
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	txs, err = svc.AccountTransactions(ctx, ids[1])
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	txs, err = svc.AccountTransactions(ctx, ids[2])
	require.NoError(t, err)
	assert.Empty(t, txs)
}
