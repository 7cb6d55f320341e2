package dashboard

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatNumber renders a count for a stat tile: 950, 1.50k, 2.30m.
func FormatNumber(n int64) string {
	switch {
	case n < 1_000:
		return printer.Sprintf("%d", n)
	case n < 1_000_000:
		return printer.Sprintf("%.2fk", float64(n)/1_000)
	}
	return printer.Sprintf("%.2fm", float64(n)/1_000_000)
}
