package comparison

import (
	"time"

	"fjacquet/statement-compare/internal/models"
	"fjacquet/statement-compare/internal/statement"

	"github.com/shopspring/decimal"
)

// DateRange bounds transaction dates, both ends inclusive. A zero bound is open.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// Options restricts which transactions take part in a comparison.
type Options struct {
	ExcludeCategories     []string         `json:"excludeCategories,omitempty"`
	IncludeOnlyCategories []string         `json:"includeOnlyCategories,omitempty"`
	MinimumAmount         *decimal.Decimal `json:"minimumAmount,omitempty"`
	DateRange             *DateRange       `json:"dateRange,omitempty"`
}

func (o *Options) keep(tx models.Transaction) bool {
	if contains(o.ExcludeCategories, tx.Category) {
		return false
	}
	if len(o.IncludeOnlyCategories) > 0 && !contains(o.IncludeOnlyCategories, tx.Category) {
		return false
	}
	if o.MinimumAmount != nil && tx.Amount.LessThan(*o.MinimumAmount) {
		return false
	}
	if o.DateRange != nil && !o.DateRange.Contains(tx.Date) {
		return false
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// FilterStatement returns a new statement holding the transactions opts keeps,
// with categories and summary recomputed. Bank name and account number are
// carried over; stmt is not modified. With nil opts stmt itself is returned.
func FilterStatement(stmt *models.ParsedStatement, opts *Options) *models.ParsedStatement {
	if stmt == nil || opts == nil {
		return stmt
	}

	kept := make([]models.Transaction, 0, len(stmt.Transactions))
	for _, tx := range stmt.Transactions {
		if opts.keep(tx) {
			kept = append(kept, tx)
		}
	}

	summary := statement.Summarize(kept, stmt.Summary.StartDate)
	if len(kept) == 0 {
		summary.EndDate = stmt.Summary.EndDate
	}
	summary.BankName = stmt.Summary.BankName
	summary.AccountNumber = stmt.Summary.AccountNumber

	return &models.ParsedStatement{
		Summary:      summary,
		Transactions: kept,
		Categories:   statement.BuildCategoryBreakdown(kept),
	}
}
