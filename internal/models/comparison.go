package models

import "github.com/shopspring/decimal"

// CategoryComparison is the delta of one category between two statements.
type CategoryComparison struct {
	Category        string          `json:"category"`
	Statement1Total decimal.Decimal `json:"statement1Total"`
	Statement2Total decimal.Decimal `json:"statement2Total"`
	Difference      decimal.Decimal `json:"difference"`
	PercentChange   PercentChange   `json:"percentChange"`
	Transactions1   []Transaction   `json:"transactions1"`
	Transactions2   []Transaction   `json:"transactions2"`
}

// IsNew reports whether the category only has spending in the second statement.
func (c CategoryComparison) IsNew() bool {
	return c.Statement1Total.IsZero() && c.Statement2Total.IsPositive()
}

// IsDiscontinued reports whether the category has no spending in the second statement.
func (c CategoryComparison) IsDiscontinued() bool {
	return c.Statement1Total.IsPositive() && c.Statement2Total.IsZero()
}

// ComparisonResult holds both (possibly filtered) statements and the
// per-category comparison, sorted by absolute difference, largest first.
type ComparisonResult struct {
	Statement1 *ParsedStatement     `json:"statement1"`
	Statement2 *ParsedStatement     `json:"statement2"`
	Comparison []CategoryComparison `json:"comparison"`
}

// ComparisonInsights is the derived narrative data of a comparison.
type ComparisonInsights struct {
	Statement1Spending     decimal.Decimal     `json:"statement1Spending"`
	Statement2Spending     decimal.Decimal     `json:"statement2Spending"`
	TotalSpendingChange    decimal.Decimal     `json:"totalSpendingChange"`
	Statement1Income       decimal.Decimal     `json:"statement1Income"`
	Statement2Income       decimal.Decimal     `json:"statement2Income"`
	TotalIncomeChange      decimal.Decimal     `json:"totalIncomeChange"`
	BiggestIncrease        *CategoryComparison `json:"biggestIncrease,omitempty"`
	BiggestDecrease        *CategoryComparison `json:"biggestDecrease,omitempty"`
	NewCategories          []string            `json:"newCategories"`
	DiscontinuedCategories []string            `json:"discontinuedCategories"`
	Recommendations        []string            `json:"recommendations"`
}
