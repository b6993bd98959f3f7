package binance

import (
	"errors"
	"strconv"
	"time"

	"coindash/internal/market"
)

// A kline row is a heterogeneous JSON array:
// [openTime, open, high, low, close, volume, closeTime, ...].
// Prices arrive as strings, times as numbers; both are accepted either way.
func parseKline(symbol, interval string, row []any) (market.Candle, error) {
	if len(row) < 6 {
		return market.Candle{}, errors.New("row has fewer than 6 fields")
	}
	openMS, ok := floatFromAny(row[0])
	if !ok {
		return market.Candle{}, errors.New("open time is not numeric")
	}
	var vals [5]float64
	for i := range vals {
		v, ok := floatFromAny(row[i+1])
		if !ok {
			return market.Candle{}, errors.New("price field is not numeric")
		}
		vals[i] = v
	}
	return market.Candle{
		Symbol:   symbol,
		Interval: interval,
		Start:    time.UnixMilli(int64(openMS)).UTC(),
		Open:     vals[0],
		High:     vals[1],
		Low:      vals[2],
		Close:    vals[3],
		Volume:   vals[4],
	}, nil
}

func floatFromAny(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
