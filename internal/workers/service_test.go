package workers_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labourtime/labourtime/internal/accounts"
	"github.com/labourtime/labourtime/internal/clock"
	"github.com/labourtime/labourtime/internal/ledger"
	"github.com/labourtime/labourtime/internal/model"
	"github.com/labourtime/labourtime/internal/store/memory"
	"github.com/labourtime/labourtime/internal/workers"
)

type fixture struct {
	ctx     context.Context
	ledger  *ledger.Service
	svc     *workers.Service
	company model.Company
	member  model.Member
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	dir := accounts.NewService(st, nil)
	led := ledger.NewService(st, nil)
	company, err := dir.CreateCompany(ctx, "Bakery", "")
	require.NoError(t, err)
	member, err := dir.CreateMember(ctx, "Alice", "alice@example.org")
	require.NoError(t, err)
	clk := clock.NewFake(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	return &fixture{
		ctx:     ctx,
		ledger:  led,
		svc:     workers.NewService(st, led, clk, nil),
		company: company,
		member:  member,
	}
}

func (f *fixture) hire(t *testing.T) {
	t.Helper()
	inv, err := f.svc.Invite(f.ctx, f.company.ID, f.member.ID)
	require.NoError(t, err)
	require.False(t, inv.IsRejected(), inv.Rejection.String())
	ans, err := f.svc.Answer(f.ctx, workers.AnswerRequest{Invite: inv.Invite.ID, Member: f.member.ID, Accept: true})
	require.NoError(t, err)
	require.True(t, ans.IsSuccess(), ans.Failure.String())
}

func TestInviteAndAccept(t *testing.T) {
	f := newFixture(t)

	inv, err := f.svc.Invite(f.ctx, f.company.ID, f.member.ID)
	require.NoError(t, err)
	require.False(t, inv.IsRejected())

	open, err := f.svc.Invites(f.ctx, f.member.ID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, f.company.ID, open[0].Company)

	again, err := f.svc.Invite(f.ctx, f.company.ID, f.member.ID)
	require.NoError(t, err)
	assert.Equal(t, workers.InviteAlreadyInvited, again.Rejection)

	ans, err := f.svc.Answer(f.ctx, workers.AnswerRequest{Invite: inv.Invite.ID, Member: f.member.ID, Accept: true})
	require.NoError(t, err)
	assert.True(t, ans.IsSuccess())
	assert.True(t, ans.Accepted)
	assert.Equal(t, "Bakery", ans.CompanyName)

	staff, err := f.svc.Workers(f.ctx, f.company.ID)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, f.member.ID, staff[0].ID)

	open, err = f.svc.Invites(f.ctx, f.member.ID)
	require.NoError(t, err)
	assert.Empty(t, open)

	hired, err := f.svc.Invite(f.ctx, f.company.ID, f.member.ID)
	require.NoError(t, err)
	assert.Equal(t, workers.InviteAlreadyWorking, hired.Rejection)
}

func TestDeclineConsumesInvite(t *testing.T) {
	f := newFixture(t)
	inv, err := f.svc.Invite(f.ctx, f.company.ID, f.member.ID)
	require.NoError(t, err)

	ans, err := f.svc.Answer(f.ctx, workers.AnswerRequest{Invite: inv.Invite.ID, Member: f.member.ID})
	require.NoError(t, err)
	assert.True(t, ans.IsSuccess())
	assert.False(t, ans.Accepted)

	staff, err := f.svc.Workers(f.ctx, f.company.ID)
	require.NoError(t, err)
	assert.Empty(t, staff)

	twice, err := f.svc.Answer(f.ctx, workers.AnswerRequest{Invite: inv.Invite.ID, Member: f.member.ID})
	require.NoError(t, err)
	assert.Equal(t, workers.AnswerInviteNotFound, twice.Failure)
}

func TestInviteRejections(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Invite(f.ctx, uuid.New(), f.member.ID)
	require.NoError(t, err)
	assert.Equal(t, workers.InviteCompanyNotFound, resp.Rejection)

	resp, err = f.svc.Invite(f.ctx, f.company.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, workers.InviteMemberNotFound, resp.Rejection)
	assert.Equal(t, "member_not_found", resp.Rejection.String())
}

func TestAnswerByAnotherMember(t *testing.T) {
	f := newFixture(t)
	inv, err := f.svc.Invite(f.ctx, f.company.ID, f.member.ID)
	require.NoError(t, err)

	ans, err := f.svc.Answer(f.ctx, workers.AnswerRequest{Invite: inv.Invite.ID, Member: uuid.New(), Accept: true})
	require.NoError(t, err)
	assert.False(t, ans.IsSuccess())
	assert.Equal(t, "member_was_not_invited", ans.Failure.String())

	open, err := f.svc.Invites(f.ctx, f.member.ID)
	require.NoError(t, err)
	assert.Len(t, open, 1, "a foreign answer leaves the invite open")
}

func TestPayWorker(t *testing.T) {
	f := newFixture(t)
	f.hire(t)

	resp, err := f.svc.PayWorker(f.ctx, workers.PayRequest{
		Company: f.company.ID,
		Worker:  f.member.ID,
		Amount:  decimal.RequireFromString("7.5"),
	})
	require.NoError(t, err)
	require.False(t, resp.IsRejected())
	assert.Equal(t, workers.WagePurpose, resp.Transaction.Purpose)

	labour, err := f.ledger.Balance(f.ctx, f.company.LabourAccount)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("-7.5").Equal(labour), "labour %s", labour)
	wallet, err := f.ledger.Balance(f.ctx, f.member.Account)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("7.5").Equal(wallet), "member %s", wallet)
}

func TestPayWorkerRejections(t *testing.T) {
	f := newFixture(t)
	ten := decimal.NewFromInt(10)

	tests := []struct {
		name string
		req  workers.PayRequest
		want workers.PayRejection
	}{
		{"not a worker", workers.PayRequest{Company: f.company.ID, Worker: f.member.ID, Amount: ten}, workers.PayWorkerNotAtCompany},
		{"unknown company", workers.PayRequest{Company: uuid.New(), Worker: f.member.ID, Amount: ten}, workers.PayCompanyNotFound},
		{"unknown worker", workers.PayRequest{Company: f.company.ID, Worker: uuid.New(), Amount: ten}, workers.PayWorkerNotFound},
		{"zero amount", workers.PayRequest{Company: f.company.ID, Worker: f.member.ID}, workers.PayInvalidAmount},
		{"negative amount", workers.PayRequest{Company: f.company.ID, Worker: f.member.ID, Amount: ten.Neg()}, workers.PayInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.svc.PayWorker(f.ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Rejection, resp.Rejection.String())
		})
	}

	txs, err := f.ledger.All(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
}
