package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"coindash/internal/chart"
	"coindash/internal/market"

	"go.uber.org/zap"
)

type stubFetcher struct {
	closes map[string][]float64
	fail   map[string]bool
	calls  map[string]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		closes: make(map[string][]float64),
		fail:   make(map[string]bool),
		calls:  make(map[string]int),
	}
}

func (f *stubFetcher) FetchOHLCV(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	f.calls[symbol]++
	if f.fail[symbol] {
		return nil, errors.New("exchange unavailable")
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	closes := f.closes[symbol]
	candles := make([]market.Candle, 0, len(closes))
	for i, c := range closes {
		candles = append(candles, market.Candle{
			Symbol:   symbol,
			Interval: interval,
			Start:    start.Add(time.Duration(i) * 24 * time.Hour),
			Open:     c,
			High:     c + 1,
			Low:      c - 1,
			Close:    c,
		})
	}
	return candles, nil
}

func mustStyle(t *testing.T, name, color string) chart.Style {
	t.Helper()
	style, err := chart.NewStyle(name, color)
	if err != nil {
		t.Fatalf("new style: %v", err)
	}
	return style
}

func newTestDashboard(t *testing.T, fetcher market.Fetcher) *Dashboard {
	t.Helper()
	cache := market.NewCache(fetcher, market.DefaultTTL, nil)
	symbols := []Symbol{
		{Pair: "BTC/USDT", Slot: 0, Style: mustStyle(t, "Bitcoin", "#f7931a")},
		{Pair: "ETH/USDT", Slot: 1, Style: mustStyle(t, "Ethereum", "#62688f")},
	}
	dash, err := New(cache, "1d", []int{7, 30, 90}, symbols, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("new dashboard: %v", err)
	}
	return dash
}

func TestSnapshotMetrics(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.closes["BTC/USDT"] = []float64{100, 105, 95}
	fetcher.closes["ETH/USDT"] = []float64{2000, 2100}
	dash := newTestDashboard(t, fetcher)

	snap, err := dash.Snapshot(context.Background(), 7)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Series) != 2 || len(snap.Tiles) != 2 {
		t.Fatalf("expected 2 series and 2 tiles, got %d/%d", len(snap.Series), len(snap.Tiles))
	}
	if len(snap.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", snap.Warnings)
	}

	btc := snap.Tiles[0]
	if btc.Symbol != "BTC/USDT" || btc.Slot != 0 {
		t.Fatalf("expected BTC in slot 0, got %+v", btc)
	}
	if btc.Price != "$95.0000" {
		t.Fatalf("expected price $95.0000, got %q", btc.Price)
	}
	if btc.Change != "-9.52%" {
		t.Fatalf("expected change -9.52%%, got %q", btc.Change)
	}
	// High/low reflect the last candle only.
	if btc.DailyHigh != "$96.0000" || btc.DailyLow != "$94.0000" {
		t.Fatalf("expected last candle range, got %q / %q", btc.DailyHigh, btc.DailyLow)
	}

	eth := snap.Tiles[1]
	if eth.Price != "$2,100.00" {
		t.Fatalf("expected grouped price $2,100.00, got %q", eth.Price)
	}
	if eth.Change != "+5.00%" {
		t.Fatalf("expected change +5.00%%, got %q", eth.Change)
	}
}

func TestSnapshotSkipsFailingSymbol(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.closes["BTC/USDT"] = []float64{100, 110}
	fetcher.fail["ETH/USDT"] = true
	dash := newTestDashboard(t, fetcher)

	snap, err := dash.Snapshot(context.Background(), 30)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Series) != 1 || snap.Series[0].Name != "Bitcoin" {
		t.Fatalf("expected only the healthy symbol rendered, got %+v", snap.Series)
	}
	if len(snap.Tiles) != 1 {
		t.Fatalf("expected 1 tile, got %d", len(snap.Tiles))
	}
	if len(snap.Warnings) != 1 || !strings.Contains(snap.Warnings[0], "ETH/USDT") {
		t.Fatalf("expected a warning naming the failed symbol, got %v", snap.Warnings)
	}
}

func TestSnapshotOmitsTileOnShortSeries(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.closes["BTC/USDT"] = []float64{100}
	fetcher.closes["ETH/USDT"] = []float64{2000, 2100}
	dash := newTestDashboard(t, fetcher)

	snap, err := dash.Snapshot(context.Background(), 7)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Series) != 2 {
		t.Fatalf("expected charts for both symbols, got %d", len(snap.Series))
	}
	if len(snap.Tiles) != 1 || snap.Tiles[0].Symbol != "ETH/USDT" {
		t.Fatalf("expected a tile for ETH only, got %+v", snap.Tiles)
	}
	if len(snap.Warnings) != 1 || !strings.Contains(snap.Warnings[0], "BTC/USDT") {
		t.Fatalf("expected a metrics warning for BTC, got %v", snap.Warnings)
	}
}

func TestSnapshotRejectsUnsupportedWindow(t *testing.T) {
	dash := newTestDashboard(t, newStubFetcher())
	if _, err := dash.Snapshot(context.Background(), 13); err == nil {
		t.Fatalf("expected error for unsupported window")
	}
}

func TestCandlesValidation(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.closes["BTC/USDT"] = []float64{100, 110}
	dash := newTestDashboard(t, fetcher)

	if _, err := dash.Candles(context.Background(), "DOGE/USDT", 7); err == nil {
		t.Fatalf("expected error for unconfigured symbol")
	}
	if _, err := dash.Candles(context.Background(), "BTC/USDT", 13); err == nil {
		t.Fatalf("expected error for unsupported window")
	}
	candles, err := dash.Candles(context.Background(), "BTC/USDT", 7)
	if err != nil {
		t.Fatalf("candles: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
}

func TestRefreshForcesRefetch(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.closes["BTC/USDT"] = []float64{100, 110}
	fetcher.closes["ETH/USDT"] = []float64{2000, 2100}
	dash := newTestDashboard(t, fetcher)

	for i := 0; i < 2; i++ {
		if _, err := dash.Snapshot(context.Background(), 7); err != nil {
			t.Fatalf("snapshot %d: %v", i, err)
		}
	}
	if fetcher.calls["BTC/USDT"] != 1 {
		t.Fatalf("expected the second snapshot to hit the cache, got %d fetches", fetcher.calls["BTC/USDT"])
	}
	dash.Refresh()
	if _, err := dash.Snapshot(context.Background(), 7); err != nil {
		t.Fatalf("snapshot after refresh: %v", err)
	}
	if fetcher.calls["BTC/USDT"] != 2 {
		t.Fatalf("expected refresh to force a refetch, got %d fetches", fetcher.calls["BTC/USDT"])
	}
}

func TestChartSeriesUsesSymbolStyle(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.closes["BTC/USDT"] = []float64{100, 110}
	dash := newTestDashboard(t, fetcher)

	candles, err := dash.Candles(context.Background(), "BTC/USDT", 7)
	if err != nil {
		t.Fatalf("candles: %v", err)
	}
	series, err := dash.ChartSeries("BTC/USDT", candles)
	if err != nil {
		t.Fatalf("chart series: %v", err)
	}
	if series.Color != "#f7931a" || series.Fill != "rgba(247,147,26,0.2)" {
		t.Fatalf("unexpected style on series %+v", series)
	}
	if _, err := dash.ChartSeries("DOGE/USDT", candles); err == nil {
		t.Fatalf("expected error for unconfigured symbol")
	}
}

func TestNewOrdersSymbolsBySlot(t *testing.T) {
	cache := market.NewCache(newStubFetcher(), market.DefaultTTL, nil)
	symbols := []Symbol{
		{Pair: "SOL/USDT", Slot: 2, Style: mustStyle(t, "Solana", "#00ff9d")},
		{Pair: "BTC/USDT", Slot: 0, Style: mustStyle(t, "Bitcoin", "#f7931a")},
		{Pair: "ETH/USDT", Slot: 1, Style: mustStyle(t, "Ethereum", "#62688f")},
	}
	dash, err := New(cache, "1d", []int{7}, symbols, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("new dashboard: %v", err)
	}
	if dash.symbols[0].Pair != "BTC/USDT" || dash.symbols[2].Pair != "SOL/USDT" {
		t.Fatalf("expected slot order, got %+v", dash.symbols)
	}
}

func TestNewRejectsDuplicatePair(t *testing.T) {
	cache := market.NewCache(newStubFetcher(), market.DefaultTTL, nil)
	symbols := []Symbol{
		{Pair: "BTC/USDT", Slot: 0, Style: mustStyle(t, "Bitcoin", "#f7931a")},
		{Pair: "BTC/USDT", Slot: 1, Style: mustStyle(t, "Bitcoin again", "#f7931a")},
	}
	if _, err := New(cache, "1d", []int{7}, symbols, nil, zap.NewNop()); err == nil {
		t.Fatalf("expected error for duplicate pair")
	}
}
