// Package models provides the data structures shared by the statement processor,
// the comparison engine and their consumers.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType carries the sign of a transaction.
type TransactionType string

const (
	TypeDebit  TransactionType = "debit"
	TypeCredit TransactionType = "credit"
)

// Transaction is one converted statement line. Amount is always non-negative;
// the sign lives in Type.
type Transaction struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Type        TransactionType `json:"type"`
}

// IsDebit reports whether money left the account.
func (t Transaction) IsDebit() bool {
	return t.Type == TypeDebit
}

// IsCredit reports whether money entered the account.
func (t Transaction) IsCredit() bool {
	return t.Type == TypeCredit
}

// SignedAmount returns the amount with debits negated.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.IsDebit() {
		return t.Amount.Neg()
	}
	return t.Amount
}
