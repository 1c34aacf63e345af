// Package app wires configuration, storage and services into one runtime
// shared by the CLI commands and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/labourtime/labourtime/internal/accounts"
	"github.com/labourtime/labourtime/internal/api"
	"github.com/labourtime/labourtime/internal/clock"
	"github.com/labourtime/labourtime/internal/config"
	"github.com/labourtime/labourtime/internal/cooperation"
	"github.com/labourtime/labourtime/internal/cyclelog"
	"github.com/labourtime/labourtime/internal/ledger"
	"github.com/labourtime/labourtime/internal/lock"
	"github.com/labourtime/labourtime/internal/metrics"
	"github.com/labourtime/labourtime/internal/payout"
	"github.com/labourtime/labourtime/internal/plan"
	"github.com/labourtime/labourtime/internal/pricing"
	"github.com/labourtime/labourtime/internal/statement"
	"github.com/labourtime/labourtime/internal/stats"
	"github.com/labourtime/labourtime/internal/store/sqlstore"
	"github.com/labourtime/labourtime/internal/workers"
)

// Runtime holds references to all services built from one Config.
type Runtime struct {
	Config   *config.Config
	Logger   *slog.Logger
	Clock    clock.Clock
	Store    *sqlstore.Store
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Accounts     *accounts.Service
	Ledger       *ledger.Service
	Plans        *plan.Service
	Pricing      *pricing.Service
	Cooperations *cooperation.Service
	Stats        *stats.Service
	Workers      *workers.Service
	Statements   *statement.Service
	Engine       *payout.Engine
	CycleLog     *cyclelog.Log

	closers []func() error
}

// Option adjusts a Runtime before its services are built.
type Option func(*options)

type options struct {
	clock  clock.Clock
	locker lock.Locker
}

// WithClock replaces the system clock.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLocker replaces the locker selected by the config.
func WithLocker(l lock.Locker) Option {
	return func(o *options) { o.locker = l }
}

// NewLogger builds the slog handler selected by the log config.
func NewLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// New validates cfg, opens the store and builds every service. Logs go to
// logOut.
func New(ctx context.Context, cfg *config.Config, logOut io.Writer, opts ...Option) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	o := options{clock: clock.System{}}
	for _, opt := range opts {
		opt(&o)
	}

	logger, err := NewLogger(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}

	st, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	rt := &Runtime{
		Config:   cfg,
		Logger:   logger,
		Clock:    o.clock,
		Store:    st,
		Registry: prometheus.NewRegistry(),
		closers:  []func() error{st.Close},
	}
	rt.Registry.MustRegister(collectors.NewGoCollector())
	rt.Metrics = metrics.New(rt.Registry)

	locker := o.locker
	if locker == nil {
		locker = rt.newLocker()
	}

	rt.Accounts = accounts.NewService(st, logger)
	rt.Ledger = ledger.NewService(st, logger)
	rt.Plans = plan.NewService(st, rt.Accounts, o.clock, logger)
	rt.Pricing = pricing.NewService(st, o.clock, logger)
	rt.Cooperations = cooperation.NewService(st, o.clock, logger)
	rt.Stats = stats.NewService(st, rt.Ledger, logger)
	rt.Workers = workers.NewService(st, rt.Ledger, o.clock, logger)
	rt.Statements = statement.NewService(rt.Accounts, rt.Ledger, logger)
	rt.Engine = payout.NewEngine(st, rt.Accounts, o.clock,
		payout.WithLocker(locker),
		payout.WithRecorder(rt.Metrics),
		payout.WithLogger(logger))
	rt.CycleLog = cyclelog.New(cfg.CycleLog.Path)
	return rt, nil
}

func (rt *Runtime) newLocker() lock.Locker {
	if rt.Config.Lock.Backend != "redis" {
		return lock.NewLocal()
	}
	client := redis.NewClient(&redis.Options{Addr: rt.Config.Lock.RedisAddr})
	rt.closers = append(rt.closers, client.Close)
	return lock.NewRedis(client, rt.Config.Lock.Key, rt.Config.Lock.TTL.Std())
}

// Close releases the store and any lock client.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	return errors.Join(errs...)
}

// RunCycle runs one payout cycle and appends its outcome to the cycle log.
func (rt *Runtime) RunCycle(ctx context.Context) (payout.CycleReport, error) {
	report, err := rt.Engine.RunCycle(ctx)
	if lerr := rt.CycleLog.Record(report, err); lerr != nil {
		rt.Logger.Warn("writing cycle log", "err", lerr)
	}
	return report, err
}

// Handler returns the HTTP API backed by this runtime.
func (rt *Runtime) Handler() http.Handler {
	return api.NewServer(api.Deps{
		Plans:        rt.Plans,
		Prices:       rt.Pricing,
		Accounts:     rt.Accounts,
		Balances:     rt.Ledger,
		Statistics:   rt.Stats,
		Cooperations: rt.Cooperations,
		Statements:   rt.Statements,
		Workers:      rt.Workers,
		Cycles:       rt,
		Pinger:       rt.Store,
		Gatherer:     rt.Registry,
		Logger:       rt.Logger,
	}).Handler()
}

// Serve runs the HTTP API on l and a payout cycle every interval until ctx
// is cancelled. A cycle also runs at start.
func (rt *Runtime) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{Handler: rt.Handler(), ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(l) }()
	rt.Logger.Info("serving", "addr", l.Addr().String(), "payout_interval", rt.Config.Payout.Interval.Std().String())

	ticker := time.NewTicker(rt.Config.Payout.Interval.Std())
	defer ticker.Stop()
	rt.scheduledCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutting down http server: %w", err)
			}
			return nil
		case err := <-serveErr:
			return fmt.Errorf("http server: %w", err)
		case <-ticker.C:
			rt.scheduledCycle(ctx)
		}
	}
}

// scheduledCycle runs a cycle for the serve loop. Failures are logged by
// the engine and retried on the next tick.
func (rt *Runtime) scheduledCycle(ctx context.Context) {
	if _, err := rt.RunCycle(ctx); err != nil && !errors.Is(err, lock.ErrHeld) && ctx.Err() == nil {
		rt.Logger.Debug("scheduled payout cycle will be retried", "err", err)
	}
}
