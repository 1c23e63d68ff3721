package utils

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatAmount renders a ledger amount for logs and display fields,
// e.g. 1234.5 -> "$1,234.50". USD only.
func FormatAmount(amount decimal.Decimal) string {
	return moneyPrinter.Sprintf("$%.2f", amount.InexactFloat64())
}
