// Package ledger computes fiscal and real balances over an organization's transactions.
package ledger

import (
	"backoffice/internal/models"

	"github.com/shopspring/decimal"
)

// CurrencyTotals holds the four running totals for one currency.
// Income and Expense only count fiscal rows.
type CurrencyTotals struct {
	FiscalBalance decimal.Decimal `json:"fiscal_balance"`
	RealBalance   decimal.Decimal `json:"real_balance"`
	Income        decimal.Decimal `json:"income"`
	Expense       decimal.Decimal `json:"expense"`
}

// Totals keeps ARS and USD strictly apart. No conversion happens anywhere in the ledger.
type Totals struct {
	ARS CurrencyTotals `json:"ARS"`
	USD CurrencyTotals `json:"USD"`
}

// For returns the totals for currency, or nil for an unsupported one.
func (t *Totals) For(currency models.Currency) *CurrencyTotals {
	switch currency {
	case models.CurrencyARS:
		return &t.ARS
	case models.CurrencyUSD:
		return &t.USD
	default:
		return nil
	}
}

// Aggregate recomputes the totals from scratch. Rows in an unknown currency are skipped.
func Aggregate(txs []*models.Transaction) Totals {
	var totals Totals
	for _, tx := range txs {
		if tx == nil {
			continue
		}
		acc := totals.For(tx.Currency)
		if acc == nil {
			continue
		}

		signed := tx.SignedAmount()
		if tx.IsFiscal {
			acc.FiscalBalance = acc.FiscalBalance.Add(signed)
			if tx.Type == models.TransactionExpense {
				acc.Expense = acc.Expense.Add(tx.Amount)
			} else {
				acc.Income = acc.Income.Add(tx.Amount)
			}
		}
		acc.RealBalance = acc.RealBalance.Add(signed)
	}
	return totals
}

// CurrencyTotalsView is what a caller is allowed to see for one currency.
type CurrencyTotalsView struct {
	FiscalBalance decimal.Decimal  `json:"fiscal_balance"`
	RealBalance   *decimal.Decimal `json:"real_balance,omitempty"`
	Income        decimal.Decimal  `json:"income"`
	Expense       decimal.Decimal  `json:"expense"`
}

type TotalsView struct {
	Mode Mode               `json:"mode"`
	ARS  CurrencyTotalsView `json:"ARS"`
	USD  CurrencyTotalsView `json:"USD"`
}

// Project hides the real balance unless view is the real view.
func (t Totals) Project(view View) TotalsView {
	project := func(ct CurrencyTotals) CurrencyTotalsView {
		out := CurrencyTotalsView{
			FiscalBalance: ct.FiscalBalance,
			Income:        ct.Income,
			Expense:       ct.Expense,
		}
		if view.Mode == ModeReal {
			balance := ct.RealBalance
			out.RealBalance = &balance
		}
		return out
	}
	return TotalsView{Mode: view.Mode, ARS: project(t.ARS), USD: project(t.USD)}
}
