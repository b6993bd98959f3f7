package app

import (
	"context"

	"coindash/internal/binance"
	"coindash/internal/chart"
	"coindash/internal/config"
	"coindash/internal/dashboard"
	"coindash/internal/market"
	"coindash/internal/metrics"
	"coindash/internal/server"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// App owns the long-lived pieces: the candle cache behind the dashboard,
// the HTTP server, and the refresh scheduler. Built once at startup,
// torn down when Run's context cancels.
type App struct {
	cfg    *config.Config
	log    *zap.Logger
	dash   *dashboard.Dashboard
	server *server.Server
	cron   *cron.Cron
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	counts := metrics.NewNoop()
	var prom *metrics.Prometheus
	if cfg.Metrics.Enabled {
		prom = metrics.NewPrometheus()
		counts = prom.Metrics
	}

	client := binance.New(cfg.Binance.BaseURL, cfg.Binance.Timeout, log)
	cache := market.NewCache(client, cfg.Cache.TTL, counts)

	symbols := make([]dashboard.Symbol, 0, len(cfg.Dashboard.Symbols))
	for _, s := range cfg.Dashboard.Symbols {
		style, err := chart.NewStyle(s.Name, s.Color)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, dashboard.Symbol{Pair: s.Symbol, Slot: s.Slot, Style: style})
	}
	dash, err := dashboard.New(cache, cfg.Dashboard.Interval, cfg.Dashboard.Windows, symbols, counts, log)
	if err != nil {
		return nil, err
	}

	srv := server.New(cfg.Server.Addr, cfg.Server.ShutdownTimeout, dash, cfg.Dashboard.DefaultDays, log)
	if prom != nil {
		srv.EnableMetrics(cfg.Metrics.Path, prom.Handler())
	}

	return &App{
		cfg:    cfg,
		log:    log,
		dash:   dash,
		server: srv,
		cron:   cron.New(),
	}, nil
}

// Run schedules the periodic snapshot broadcast and serves HTTP until ctx
// cancels. The scheduler never invalidates the cache; TTL expiry and the
// manual refresh endpoint stay independent.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.cron.AddFunc(a.cfg.Refresh.Spec, func() { a.refreshTick(ctx) }); err != nil {
		return err
	}
	a.cron.Start()
	defer a.cron.Stop()

	// Warm the cache before the first request lands.
	a.refreshTick(ctx)

	return a.server.Start(ctx)
}

func (a *App) refreshTick(ctx context.Context) {
	snap, err := a.dash.Snapshot(ctx, a.cfg.Dashboard.DefaultDays)
	if err != nil {
		a.log.Warn("scheduled snapshot failed", zap.Error(err))
		return
	}
	if len(snap.Warnings) > 0 {
		a.log.Warn("snapshot has warnings", zap.Strings("warnings", snap.Warnings))
	}
	a.server.Broadcast(snap)
}
