package market

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var grouped = message.NewPrinter(language.English)

// FormatPrice renders a price for display: grouped with two decimals from
// 1000 up, plain with four decimals below.
func FormatPrice(v float64) string {
	if v >= 1000 {
		return grouped.Sprintf("$%.2f", v)
	}
	return fmt.Sprintf("$%.4f", v)
}
