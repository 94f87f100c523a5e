package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementSummary aggregates one statement.
type StatementSummary struct {
	TotalDeposits    decimal.Decimal `json:"totalDeposits"`
	TotalWithdrawals decimal.Decimal `json:"totalWithdrawals"`
	StartDate        time.Time       `json:"startDate"`
	EndDate          time.Time       `json:"endDate"`
	BankName         string          `json:"bankName,omitempty"`
	AccountNumber    string          `json:"accountNumber,omitempty"`
}

// NetChange is deposits minus withdrawals.
func (s StatementSummary) NetChange() decimal.Decimal {
	return s.TotalDeposits.Sub(s.TotalWithdrawals)
}

// CategoryBreakdown groups the transactions of one category, newest first.
type CategoryBreakdown struct {
	Category         string          `json:"category"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	TransactionCount int             `json:"transactionCount"`
	Transactions     []Transaction   `json:"transactions"`
}

// ParsedStatement is a converted statement: summary, transactions and the
// per-category breakdown.
type ParsedStatement struct {
	Summary      StatementSummary    `json:"summary"`
	Transactions []Transaction       `json:"transactions"`
	Categories   []CategoryBreakdown `json:"categories"`
}

// Category returns the breakdown for name, if present.
func (p *ParsedStatement) Category(name string) (CategoryBreakdown, bool) {
	for _, c := range p.Categories {
		if c.Category == name {
			return c, true
		}
	}
	return CategoryBreakdown{}, false
}

// CategoryNames lists the breakdown categories in order.
func (p *ParsedStatement) CategoryNames() []string {
	names := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		names = append(names, c.Category)
	}
	return names
}
