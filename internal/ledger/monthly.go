package ledger

import (
	"sort"

	"backoffice/internal/models"

	"github.com/shopspring/decimal"
)

// MonthlyPoint is one bar pair of the dashboard chart.
type MonthlyPoint struct {
	Month    string          `json:"month"`
	Currency models.Currency `json:"currency"`
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
}

// Monthly groups the rows visible under view by calendar month (in each row's own
// location) and currency, ordered by month then currency.
func Monthly(txs []*models.Transaction, view View) []MonthlyPoint {
	type key struct {
		month    string
		currency models.Currency
	}
	points := make(map[key]*MonthlyPoint)
	for _, tx := range txs {
		if !view.Includes(tx) || !tx.Currency.Valid() {
			continue
		}
		k := key{month: tx.OccurredAt.Format("2006-01"), currency: tx.Currency}
		p, ok := points[k]
		if !ok {
			p = &MonthlyPoint{Month: k.month, Currency: k.currency}
			points[k] = p
		}
		if tx.Type == models.TransactionExpense {
			p.Expense = p.Expense.Add(tx.Amount)
		} else {
			p.Income = p.Income.Add(tx.Amount)
		}
	}

	out := make([]MonthlyPoint, 0, len(points))
	for _, p := range points {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Currency < out[j].Currency
	})
	return out
}
