package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()

	unlock, err := l.TryLock(ctx)
	require.NoError(t, err)

	_, err = l.TryLock(ctx)
	assert.ErrorIs(t, err, ErrHeld)

	require.NoError(t, unlock(ctx))
	require.NoError(t, unlock(ctx), "second unlock is a no-op")

	unlock, err = l.TryLock(ctx)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func newRedisLock(t *testing.T) (*Redis, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	r := NewRedis(client, "labourtime:payout", 5*time.Minute)
	r.newToken = func() string { return "token-1" }
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return r, mock
}

func TestRedis_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	r, mock := newRedisLock(t)

	mock.ExpectSetNX("labourtime:payout", "token-1", 5*time.Minute).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"labourtime:payout"}, "token-1").SetVal(int64(1))

	unlock, err := r.TryLock(ctx)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func TestRedis_Held(t *testing.T) {
	r, mock := newRedisLock(t)
	mock.ExpectSetNX("labourtime:payout", "token-1", 5*time.Minute).SetVal(false)

	_, err := r.TryLock(context.Background())
	assert.ErrorIs(t, err, ErrHeld)
}

func TestRedis_LeaseLost(t *testing.T) {
	ctx := context.Background()
	r, mock := newRedisLock(t)

	mock.ExpectSetNX("labourtime:payout", "token-1", 5*time.Minute).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"labourtime:payout"}, "token-1").SetVal(int64(0))

	unlock, err := r.TryLock(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, unlock(ctx), ErrLost)
}

func TestRedis_ConnectionError(t *testing.T) {
	r, mock := newRedisLock(t)
	mock.ExpectSetNX("labourtime:payout", "token-1", 5*time.Minute).SetErr(errors.New("connection refused"))

	_, err := r.TryLock(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrHeld)
	assert.Contains(t, err.Error(), "connection refused")
}
