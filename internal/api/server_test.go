package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labourtime/labourtime/internal/accounts"
	"github.com/labourtime/labourtime/internal/api"
	"github.com/labourtime/labourtime/internal/clock"
	"github.com/labourtime/labourtime/internal/cooperation"
	"github.com/labourtime/labourtime/internal/ledger"
	"github.com/labourtime/labourtime/internal/lock"
	"github.com/labourtime/labourtime/internal/metrics"
	"github.com/labourtime/labourtime/internal/model"
	"github.com/labourtime/labourtime/internal/payout"
	"github.com/labourtime/labourtime/internal/plan"
	"github.com/labourtime/labourtime/internal/pricing"
	"github.com/labourtime/labourtime/internal/statement"
	"github.com/labourtime/labourtime/internal/stats"
	"github.com/labourtime/labourtime/internal/store/memory"
	"github.com/labourtime/labourtime/internal/workers"
)

type fixture struct {
	deps    api.Deps
	handler http.Handler
	plan    model.Plan
	planner model.Company
	member  model.Member
	coop    model.Cooperation
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	clk := clock.NewFake(time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC))
	dir := accounts.NewService(st, nil)
	led := ledger.NewService(st, nil)
	plans := plan.NewService(st, dir, clk, nil)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	planner, err := dir.CreateCompany(ctx, "Mill", "")
	require.NoError(t, err)
	p, err := plans.Approve(ctx, plan.Draft{Planner: planner.ID, Labour: decimal.NewFromInt(10),
		Resources: decimal.Zero, Means: decimal.Zero, ProductName: "flour", ProductAmount: 20, Timeframe: 2})
	require.NoError(t, err)
	p, err = plans.Activate(ctx, p.ID)
	require.NoError(t, err)

	coops := cooperation.NewService(st, clk, nil)
	coop, err := coops.Create(ctx, cooperation.CreateRequest{Coordinator: planner.ID, Name: "Flour"})
	require.NoError(t, err)

	staff := workers.NewService(st, led, clk, nil)
	member, err := dir.CreateMember(ctx, "Miller", "miller@example.org")
	require.NoError(t, err)
	inv, err := staff.Invite(ctx, planner.ID, member.ID)
	require.NoError(t, err)
	_, err = staff.Answer(ctx, workers.AnswerRequest{Invite: inv.Invite.ID, Member: member.ID, Accept: true})
	require.NoError(t, err)

	deps := api.Deps{
		Plans:        plans,
		Prices:       pricing.NewService(st, clk, nil),
		Accounts:     dir,
		Balances:     led,
		Statistics:   stats.NewService(st, led, nil),
		Cooperations: coops,
		Statements:   statement.NewService(dir, led, nil),
		Workers:      staff,
		Cycles:       payout.NewEngine(st, dir, clk, payout.WithRecorder(m)),
		Gatherer:     reg,
	}
	return &fixture{deps: deps, handler: api.NewServer(deps).Handler(), plan: p, planner: planner, member: member, coop: coop}
}

func (f *fixture) doList(t *testing.T, path string) (*httptest.ResponseRecorder, []map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	var body []map[string]any
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func (f *fixture) do(t *testing.T, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	var body map[string]any
	if w.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	w, body := f.do(t, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthz_StoreDown(t *testing.T) {
	f := newFixture(t)
	f.deps.Pinger = downPinger{}
	f.handler = api.NewServer(f.deps).Handler()

	w, _ := f.do(t, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetPlan(t *testing.T) {
	f := newFixture(t)
	w, body := f.do(t, http.MethodGet, "/plans/"+f.plan.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, f.plan.ID.String(), body["id"])
	assert.Equal(t, "flour", body["product_name"])
	assert.Equal(t, true, body["is_active"])
	assert.Equal(t, "10", body["costs_labour"])

	w, _ = f.do(t, http.MethodGet, "/plans/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = f.do(t, http.MethodGet, "/plans/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPrice(t *testing.T) {
	f := newFixture(t)
	w, body := f.do(t, http.MethodGet, "/plans/"+f.plan.ID.String()+"/price")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0.5", body["price"])
	assert.Equal(t, "0.5", body["individual_price"])
	assert.Equal(t, []any{f.plan.ID.String()}, body["cooperating_plans"])
}

func TestGetBalance(t *testing.T) {
	f := newFixture(t)
	w, body := f.do(t, http.MethodGet, "/accounts/"+f.planner.LabourAccount.String()+"/balance")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "10", body["balance"])
	assert.Equal(t, "labour", body["kind"])

	w, _ = f.do(t, http.MethodGet, "/accounts/"+uuid.NewString()+"/balance")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatistics(t *testing.T) {
	f := newFixture(t)
	w, body := f.do(t, http.MethodGet, "/statistics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["active_plans"])
	assert.Equal(t, float64(1), body["registered_companies"])
}

func TestRunCycleAndMetrics(t *testing.T) {
	f := newFixture(t)
	w, body := f.do(t, http.MethodPost, "/payout-cycles")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["payouts"])
	assert.Equal(t, "5", body["total_paid"])

	w, _ = f.do(t, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `labourtime_payout_cycles_total{result="ok"} 1`)
	assert.Contains(t, w.Body.String(), "labourtime_payouts_total 1")
}

type heldRunner struct{}

func (heldRunner) RunCycle(context.Context) (payout.CycleReport, error) {
	return payout.CycleReport{}, lock.ErrHeld
}

func TestRunCycle_LockHeld(t *testing.T) {
	f := newFixture(t)
	f.deps.Cycles = heldRunner{}
	f.handler = api.NewServer(f.deps).Handler()

	w, _ := f.do(t, http.MethodPost, "/payout-cycles")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMetricsDisabledWithoutGatherer(t *testing.T) {
	f := newFixture(t)
	f.deps.Gatherer = nil
	f.handler = api.NewServer(f.deps).Handler()

	w, _ := f.do(t, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCooperation(t *testing.T) {
	f := newFixture(t)
	w, body := f.do(t, http.MethodGet, "/cooperations/"+f.coop.ID.String()+"?requester="+f.planner.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Flour", body["name"])
	assert.Equal(t, "Mill", body["coordinator_name"])
	assert.Equal(t, true, body["requester_is_coordinator"])
	assert.Equal(t, "0", body["cooperation_price"])
	assert.Equal(t, []any{}, body["plans"])

	w, body = f.do(t, http.MethodGet, "/cooperations/"+f.coop.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["requester_is_coordinator"])

	w, _ = f.do(t, http.MethodGet, "/cooperations/"+f.coop.ID.String()+"?requester=nope")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = f.do(t, http.MethodGet, "/cooperations/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatementsAndPurchases(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.deps.Prices.(*pricing.Service).PayConsumerProduct(ctx, f.member.ID, f.plan.ID, 2)
	require.NoError(t, err)

	w, purchases := f.doList(t, "/members/"+f.member.ID.String()+"/purchases")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, purchases, 1)
	assert.Equal(t, "flour", purchases[0]["product_name"])
	assert.Equal(t, "1", purchases[0]["price_total"])

	w, member := f.doList(t, "/members/"+f.member.ID.String()+"/statement")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, member, 1)
	assert.Equal(t, "payment_of_consumer_product", member[0]["type"])
	assert.Equal(t, "-1", member[0]["volume"])

	// four plan credits plus the sale
	w, company := f.doList(t, "/companies/"+f.planner.ID.String()+"/statement")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, company, 5)
	var sale map[string]any
	for _, info := range company {
		if info["type"] == "sale_of_consumer_product" {
			sale = info
		}
	}
	require.NotNil(t, sale)
	assert.Equal(t, "Miller", sale["sender_name"])
	assert.Equal(t, "me", sale["receiver_name"])
	assert.Equal(t, map[string]any{"product": "1"}, sale["volumes"])

	w, _ = f.doList(t, "/companies/"+uuid.NewString()+"/statement")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkers(t *testing.T) {
	f := newFixture(t)
	w, body := f.doList(t, "/companies/"+f.planner.ID.String()+"/workers")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, body, 1)
	assert.Equal(t, "Miller", body[0]["name"])

	w, body = f.doList(t, "/companies/"+uuid.NewString()+"/workers")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body)
}
