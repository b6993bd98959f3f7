package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"coindash/internal/market"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.binance.com"

// Client fetches OHLCV history from the Binance spot REST API. Rate
// limiting and retries are the caller's concern; a single failed request
// surfaces immediately.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// FetchOHLCV returns up to limit candles for one trading pair, oldest
// first, exactly as the exchange reports them. The pair is given in
// BASE/QUOTE form and flattened for the API (BTC/USDT -> BTCUSDT).
func (c *Client) FetchOHLCV(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	q := url.Values{}
	q.Set("symbol", strings.ReplaceAll(symbol, "/", ""))
	q.Set("interval", interval)
	q.Set("limit", strconv.Itoa(limit))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v3/klines?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}
	var rows [][]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, err
	}
	candles := make([]market.Candle, 0, len(rows))
	for _, row := range rows {
		candle, err := parseKline(symbol, interval, row)
		if err != nil {
			return nil, fmt.Errorf("kline for %s: %w", symbol, err)
		}
		candles = append(candles, candle)
	}
	c.log.Debug("fetched klines", zap.String("symbol", symbol), zap.Int("count", len(candles)))
	return candles, nil
}
