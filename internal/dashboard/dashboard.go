package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"coindash/internal/chart"
	"coindash/internal/market"
	"coindash/internal/metrics"

	"go.uber.org/zap"
)

// Symbol is one configured trading pair with its validated display style
// and metric column slot.
type Symbol struct {
	Pair  string
	Slot  int
	Style chart.Style
}

// Tile is the metric block rendered for one symbol: formatted price
// strings plus the raw change percent for styling.
type Tile struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Slot          int     `json:"slot"`
	Price         string  `json:"price"`
	ChangePercent float64 `json:"change_percent"`
	Change        string  `json:"change"`
	DailyHigh     string  `json:"daily_high"`
	DailyLow      string  `json:"daily_low"`
}

// Snapshot is one full page render: a chart series per symbol, a tile per
// symbol with enough data, and a warning per symbol that failed.
type Snapshot struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Days        int            `json:"days"`
	Series      []chart.Series `json:"series"`
	Tiles       []Tile         `json:"tiles"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// Dashboard is the long-lived context behind the presentation surface. It
// owns the candle cache and the symbol table; one instance is built at
// startup and shared by every request.
type Dashboard struct {
	cache    *market.Cache
	interval string
	windows  map[int]bool
	symbols  []Symbol // slot order
	bySymbol map[string]Symbol
	counts   *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

func New(cache *market.Cache, interval string, windows []int, symbols []Symbol, counts *metrics.Metrics, log *zap.Logger) (*Dashboard, error) {
	if cache == nil {
		return nil, errors.New("cache is required")
	}
	if len(symbols) == 0 {
		return nil, errors.New("at least one symbol is required")
	}
	if len(windows) == 0 {
		return nil, errors.New("at least one day window is required")
	}
	if counts == nil {
		counts = metrics.NewNoop()
	}
	ordered := append([]Symbol(nil), symbols...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Slot < ordered[j].Slot })
	bySymbol := make(map[string]Symbol, len(ordered))
	for _, s := range ordered {
		if _, ok := bySymbol[s.Pair]; ok {
			return nil, fmt.Errorf("symbol %s is configured twice", s.Pair)
		}
		bySymbol[s.Pair] = s
	}
	wins := make(map[int]bool, len(windows))
	for _, w := range windows {
		wins[w] = true
	}
	return &Dashboard{
		cache:    cache,
		interval: interval,
		windows:  wins,
		symbols:  ordered,
		bySymbol: bySymbol,
		counts:   counts,
		log:      log,
		now:      time.Now,
	}, nil
}

// Candles returns the cached-or-fetched series for one configured symbol
// over one supported day window.
func (d *Dashboard) Candles(ctx context.Context, symbol string, days int) ([]market.Candle, error) {
	if _, ok := d.bySymbol[symbol]; !ok {
		return nil, fmt.Errorf("symbol %s is not configured", symbol)
	}
	if err := d.checkWindow(days); err != nil {
		return nil, err
	}
	return d.cache.Get(ctx, market.Key{Symbol: symbol, Interval: d.interval, Limit: days})
}

// Metrics derives the summary metrics for a series.
func (d *Dashboard) Metrics(candles []market.Candle) (market.Summary, error) {
	return market.Summarize(candles)
}

// ChartSeries builds the renderable series for a configured symbol.
func (d *Dashboard) ChartSeries(symbol string, candles []market.Candle) (chart.Series, error) {
	sym, ok := d.bySymbol[symbol]
	if !ok {
		return chart.Series{}, fmt.Errorf("symbol %s is not configured", symbol)
	}
	return chart.Build(candles, sym.Style), nil
}

// Refresh drops every cached series so the next lookup re-fetches. It is
// independent of TTL expiry; the two compose.
func (d *Dashboard) Refresh() {
	d.counts.RefreshesTriggered.Inc()
	d.cache.Clear()
}

// Snapshot assembles the whole page for one day window. A symbol whose
// fetch fails is reported as a warning and skipped; a symbol with too
// little data keeps its chart but gets no tile. One symbol never blocks
// the others.
func (d *Dashboard) Snapshot(ctx context.Context, days int) (Snapshot, error) {
	if err := d.checkWindow(days); err != nil {
		return Snapshot{}, err
	}
	d.counts.SnapshotsServed.Inc()
	snap := Snapshot{GeneratedAt: d.now().UTC(), Days: days}
	for _, sym := range d.symbols {
		candles, err := d.cache.Get(ctx, market.Key{Symbol: sym.Pair, Interval: d.interval, Limit: days})
		if err != nil {
			d.log.Warn("symbol fetch failed", zap.String("symbol", sym.Pair), zap.Error(err))
			snap.Warnings = append(snap.Warnings, fmt.Sprintf("%s: data unavailable", sym.Pair))
			continue
		}
		snap.Series = append(snap.Series, chart.Build(candles, sym.Style))
		summary, err := market.Summarize(candles)
		if err != nil {
			d.log.Warn("metrics unavailable", zap.String("symbol", sym.Pair), zap.Error(err))
			snap.Warnings = append(snap.Warnings, fmt.Sprintf("%s: metrics unavailable", sym.Pair))
			continue
		}
		snap.Tiles = append(snap.Tiles, Tile{
			Symbol:        sym.Pair,
			Name:          sym.Style.Name,
			Slot:          sym.Slot,
			Price:         market.FormatPrice(summary.CurrentPrice),
			ChangePercent: summary.ChangePercent,
			Change:        fmt.Sprintf("%+.2f%%", summary.ChangePercent),
			DailyHigh:     market.FormatPrice(summary.DailyHigh),
			DailyLow:      market.FormatPrice(summary.DailyLow),
		})
	}
	return snap, nil
}

func (d *Dashboard) checkWindow(days int) error {
	if !d.windows[days] {
		return fmt.Errorf("unsupported day window %d", days)
	}
	return nil
}
