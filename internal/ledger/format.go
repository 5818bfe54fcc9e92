package ledger

import (
	"strings"

	"backoffice/internal/models"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[models.Currency]string{
	models.CurrencyARS: "$",
	models.CurrencyUSD: "US$",
}

// FormatAmount renders amount the way es-AR locales do: "$ 1.234,56", "US$ -1.234,56".
func FormatAmount(currency models.Currency, amount decimal.Decimal) string {
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = string(currency)
	}

	fixed := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	sign := ""
	if amount.IsNegative() && !amount.Round(2).IsZero() {
		sign = "-"
	}
	return symbol + " " + sign + b.String() + "," + frac
}
