package market

import "time"

// Candle is one OHLCV record for a fixed interval. Immutable once fetched;
// series are ordered ascending by Start as the exchange reports them.
type Candle struct {
	Symbol   string
	Interval string
	Start    time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}
