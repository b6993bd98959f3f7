package market

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData means the series is too short to derive metrics.
	ErrInsufficientData = errors.New("series has fewer than 2 candles")
	// ErrInvalidPrice means the reference close is zero, so a percentage
	// change cannot be computed.
	ErrInvalidPrice = errors.New("reference close price is zero")
)

// FetchError wraps an upstream client failure for one symbol. It is never
// cached; the next request for the same key retries the fetch.
type FetchError struct {
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
