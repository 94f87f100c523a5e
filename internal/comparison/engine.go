// Package comparison diffs two ParsedStatements category by category and
// derives spending insights from the result.
package comparison

import (
	"fmt"
	"sort"

	"fjacquet/statement-compare/internal/models"
	"fjacquet/statement-compare/internal/parsererror"
)

// CompareStatements aligns the categories of both statements and computes the
// per-category totals, difference and percent change. The result is sorted by
// absolute difference, largest first. Both statements must be non-nil with at
// least one transaction and one category; opts filtering is applied afterwards.
func CompareStatements(statement1, statement2 *models.ParsedStatement, opts *Options) (*models.ComparisonResult, error) {
	if err := checkStatement("statement1", statement1); err != nil {
		return nil, err
	}
	if err := checkStatement("statement2", statement2); err != nil {
		return nil, err
	}

	s1 := FilterStatement(statement1, opts)
	s2 := FilterStatement(statement2, opts)

	names := unionCategories(s1, s2)
	comparisons := make([]models.CategoryComparison, 0, len(names))
	for _, name := range names {
		comparisons = append(comparisons, compareCategory(name, s1, s2))
	}

	sort.SliceStable(comparisons, func(i, j int) bool {
		return comparisons[i].Difference.Abs().GreaterThan(comparisons[j].Difference.Abs())
	})

	return &models.ComparisonResult{
		Statement1: s1,
		Statement2: s2,
		Comparison: comparisons,
	}, nil
}

func checkStatement(name string, stmt *models.ParsedStatement) error {
	if stmt == nil {
		return &parsererror.ComparisonError{
			Reason: fmt.Sprintf("%s is required", name),
			Err:    parsererror.ErrStatementRequired,
		}
	}
	if len(stmt.Transactions) == 0 {
		return &parsererror.ComparisonError{
			Reason: fmt.Sprintf("%s has no transactions", name),
			Err:    parsererror.ErrEmptyStatement,
		}
	}
	if len(stmt.Categories) == 0 {
		return &parsererror.ComparisonError{
			Reason: fmt.Sprintf("%s has no categories", name),
			Err:    parsererror.ErrEmptyStatement,
		}
	}
	return nil
}

// unionCategories lists statement1's categories followed by those only
// present in statement2.
func unionCategories(s1, s2 *models.ParsedStatement) []string {
	seen := make(map[string]bool)
	var names []string
	for _, stmt := range []*models.ParsedStatement{s1, s2} {
		for _, c := range stmt.Categories {
			if !seen[c.Category] {
				seen[c.Category] = true
				names = append(names, c.Category)
			}
		}
	}
	return names
}

func compareCategory(name string, s1, s2 *models.ParsedStatement) models.CategoryComparison {
	c1, _ := s1.Category(name)
	c2, _ := s2.Category(name)

	total1 := models.Round2(c1.TotalAmount)
	total2 := models.Round2(c2.TotalAmount)
	difference := models.Round2(total2.Sub(total1))

	return models.CategoryComparison{
		Category:        name,
		Statement1Total: total1,
		Statement2Total: total2,
		Difference:      difference,
		PercentChange:   models.NewPercentChange(total1, total2, difference),
		Transactions1:   nonNil(c1.Transactions),
		Transactions2:   nonNil(c2.Transactions),
	}
}

func nonNil(txs []models.Transaction) []models.Transaction {
	if txs == nil {
		return []models.Transaction{}
	}
	return txs
}
