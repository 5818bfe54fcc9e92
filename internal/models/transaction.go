package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyARS Currency = "ARS"
	CurrencyUSD Currency = "USD"
)

// Currencies lists the supported currencies in display order.
var Currencies = []Currency{CurrencyARS, CurrencyUSD}

func (c Currency) Valid() bool {
	return c == CurrencyARS || c == CurrencyUSD
}

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

type Transaction struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	OrganizationID uuid.UUID       `json:"organization_id" db:"organization_id"`
	AuthorID       uuid.UUID       `json:"author_id" db:"author_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Currency       Currency        `json:"currency" db:"currency"`
	Type           TransactionType `json:"type" db:"type"`
	IsFiscal       bool            `json:"is_fiscal" db:"is_fiscal"`
	Description    string          `json:"description" db:"description"`
	OccurredAt     time.Time       `json:"occurred_at" db:"occurred_at"`
	CategoryID     *uuid.UUID      `json:"category_id,omitempty" db:"category_id"`
	PayeeID        *uuid.UUID      `json:"payee_id,omitempty" db:"payee_id"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// SignedAmount is positive for income and negative for expense.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionFilter narrows ledger listings. Nil fields are not applied.
type TransactionFilter struct {
	From       *time.Time
	To         *time.Time
	Currency   *Currency
	Type       *TransactionType
	CategoryID *uuid.UUID
	FiscalOnly bool
	Limit      int
	Offset     int
}
