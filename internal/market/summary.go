package market

// Summary holds the metrics derived from the latest series for one symbol.
// It is recomputed on every render, never cached.
type Summary struct {
	CurrentPrice  float64
	ChangePercent float64
	DailyHigh     float64
	DailyLow      float64
}

// Summarize derives the display metrics from a candle series. The high and
// low come from the last candle alone, which matches the 24h readout only
// when the interval is daily.
func Summarize(candles []Candle) (Summary, error) {
	if len(candles) < 2 {
		return Summary{}, ErrInsufficientData
	}
	last := candles[len(candles)-1]
	prev := candles[len(candles)-2]
	if prev.Close == 0 {
		return Summary{}, ErrInvalidPrice
	}
	return Summary{
		CurrentPrice:  last.Close,
		ChangePercent: (last.Close - prev.Close) / prev.Close * 100,
		DailyHigh:     last.High,
		DailyLow:      last.Low,
	}, nil
}
