package comparison

import (
	"strings"
	"testing"
	"time"

	"fjacquet/statement-compare/internal/logging"
	"fjacquet/statement-compare/internal/models"
	"fjacquet/statement-compare/internal/parsererror"
	"fjacquet/statement-compare/internal/statement"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// build converts "date|description|amount" records into a statement.
func build(t *testing.T, filename string, records ...string) *models.ParsedStatement {
	t.Helper()
	resp := &statement.APIResponse{Normalised: []statement.APITransaction{}}
	for _, rec := range records {
		parts := strings.Split(rec, "|")
		require.Len(t, parts, 3, rec)
		resp.Normalised = append(resp.Normalised, statement.APITransaction{
			Date: parts[0], Description: parts[1], Amount: statement.Amount(parts[2]),
		})
	}
	stmt, err := statement.NewProcessor(nil, logging.NewMockLogger()).ConvertToInternalFormat(resp, filename)
	require.NoError(t, err)
	return stmt
}

func findCategory(t *testing.T, result *models.ComparisonResult, name string) models.CategoryComparison {
	t.Helper()
	for _, c := range result.Comparison {
		if c.Category == name {
			return c
		}
	}
	t.Fatalf("category %s not in comparison", name)
	return models.CategoryComparison{}
}

func TestCompareStatements_DiscontinuedCategory(t *testing.T) {
	s1 := build(t, "jan.json", "2024-01-01|Walmart|-50.00")
	s2 := build(t, "feb.json", "2024-02-01|NETFLIX.COM|-15.00")

	result, err := CompareStatements(s1, s2, nil)
	require.NoError(t, err)
	require.Len(t, result.Comparison, 2)

	groceries := result.Comparison[0]
	assert.Equal(t, models.CategoryGroceries, groceries.Category)
	assert.True(t, d("50").Equal(groceries.Statement1Total))
	assert.True(t, groceries.Statement2Total.IsZero())
	assert.True(t, d("-50").Equal(groceries.Difference))
	assert.Equal(t, models.PercentDiscontinued, groceries.PercentChange.Kind)
	assert.Equal(t, float64(-100), groceries.PercentChange.Float64())
	assert.Len(t, groceries.Transactions1, 1)
	assert.NotNil(t, groceries.Transactions2)
	assert.Empty(t, groceries.Transactions2)

	subs := result.Comparison[1]
	assert.Equal(t, models.CategorySubscriptions, subs.Category)
	assert.Equal(t, models.PercentNewCategory, subs.PercentChange.Kind)
	assert.True(t, subs.IsNew())
}

func TestCompareStatements_PercentChange(t *testing.T) {
	s1 := build(t, "a.json",
		"2024-01-01|KROGER|-30.00",
		"2024-01-02|STARBUCKS|-10.00",
	)
	s2 := build(t, "b.json",
		"2024-02-01|KROGER|-20.00",
		"2024-02-02|STARBUCKS|-10.00",
	)

	result, err := CompareStatements(s1, s2, nil)
	require.NoError(t, err)

	groceries := findCategory(t, result, models.CategoryGroceries)
	assert.Equal(t, "-33.33", groceries.PercentChange.Value.StringFixed(2))
	assert.Equal(t, models.PercentFinite, groceries.PercentChange.Kind)

	food := findCategory(t, result, models.CategoryFoodDining)
	assert.True(t, food.Difference.IsZero())
	assert.True(t, food.PercentChange.Value.IsZero())
}

func TestCompareStatements_SortedAndComplete(t *testing.T) {
	s1 := build(t, "a.json",
		"2024-01-01|KROGER|-30.00",
		"2024-01-02|STARBUCKS|-10.00",
		"2024-01-03|PAYROLL|1000.00",
		"2024-01-04|SHELL|-40.00",
	)
	s2 := build(t, "b.json",
		"2024-02-01|KROGER|-130.00",
		"2024-02-02|NETFLIX|-12.00",
		"2024-02-03|PAYROLL|1000.00",
		"2024-02-04|CVS PHARMACY|-75.00",
	)

	result, err := CompareStatements(s1, s2, nil)
	require.NoError(t, err)

	seen := map[string]int{}
	for _, c := range result.Comparison {
		seen[c.Category]++
	}
	for _, stmt := range []*models.ParsedStatement{s1, s2} {
		for _, name := range stmt.CategoryNames() {
			assert.Equal(t, 1, seen[name], name)
		}
	}
	assert.Len(t, result.Comparison, 6)

	for i := 0; i+1 < len(result.Comparison); i++ {
		a := result.Comparison[i].Difference.Abs()
		b := result.Comparison[i+1].Difference.Abs()
		assert.True(t, a.GreaterThanOrEqual(b), "position %d", i)
	}
	assert.Equal(t, models.CategoryGroceries, result.Comparison[0].Category)
	assert.Equal(t, models.CategoryIncome, result.Comparison[len(result.Comparison)-1].Category)
}

func TestCompareStatements_Idempotent(t *testing.T) {
	s1 := build(t, "a.json", "2024-01-01|KROGER|-30.00", "2024-01-02|AMAZON|-30.00")
	s2 := build(t, "b.json", "2024-02-01|KROGER|-60.00", "2024-02-02|SHELL|-30.00")

	first, err := CompareStatements(s1, s2, nil)
	require.NoError(t, err)
	second, err := CompareStatements(s1, s2, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCompareStatements_Preconditions(t *testing.T) {
	valid := build(t, "a.json", "2024-01-01|KROGER|-30.00")

	_, err := CompareStatements(nil, valid, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
	assert.ErrorIs(t, err, parsererror.ErrStatementRequired)

	_, err = CompareStatements(valid, nil, nil)
	assert.ErrorIs(t, err, parsererror.ErrStatementRequired)

	noTransactions := &models.ParsedStatement{Categories: valid.Categories}
	_, err = CompareStatements(valid, noTransactions, nil)
	assert.ErrorIs(t, err, parsererror.ErrEmptyStatement)

	noCategories := &models.ParsedStatement{Transactions: valid.Transactions}
	_, err = CompareStatements(noCategories, valid, nil)
	assert.ErrorIs(t, err, parsererror.ErrEmptyStatement)
	assert.True(t, parsererror.IsUserError(err))
}

func TestFilterStatement(t *testing.T) {
	stmt := build(t, "chase_jan.json",
		"2024-01-01|KROGER|-30.00",
		"2024-01-10|STARBUCKS|-5.00",
		"2024-01-15|PAYROLL|1000.00",
		"2024-01-20|SHELL|-40.00",
	)
	original := len(stmt.Transactions)

	minimum := d("10")
	tests := []struct {
		name  string
		opts  *Options
		count int
	}{
		{"exclude", &Options{ExcludeCategories: []string{models.CategoryIncome}}, 3},
		{"include only", &Options{IncludeOnlyCategories: []string{models.CategoryGroceries, models.CategoryGasTransport}}, 2},
		{"minimum amount", &Options{MinimumAmount: &minimum}, 3},
		{"date range", &Options{DateRange: &DateRange{Start: day("2024-01-05"), End: day("2024-01-15")}}, 2},
		{"open ended range", &Options{DateRange: &DateRange{Start: day("2024-01-12")}}, 2},
		{"empty options keep everything", &Options{}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered := FilterStatement(stmt, tt.opts)
			assert.Len(t, filtered.Transactions, tt.count)
			assert.NotSame(t, stmt, filtered)
			assert.Equal(t, "Chase", filtered.Summary.BankName)
			assert.Equal(t, stmt.Summary.AccountNumber, filtered.Summary.AccountNumber)

			result := statement.ValidateParsedStatement(filtered)
			assert.True(t, result.IsValid || len(filtered.Transactions) == 0, result.Errors)
		})
	}

	assert.Len(t, stmt.Transactions, original, "filtering never mutates the input")
	assert.Same(t, stmt, FilterStatement(stmt, nil))
}

func TestFilterStatement_RecomputesSummary(t *testing.T) {
	stmt := build(t, "a.json",
		"2024-01-01|KROGER|-30.00",
		"2024-01-15|PAYROLL|1000.00",
		"2024-01-20|SHELL|-40.00",
	)

	filtered := FilterStatement(stmt, &Options{ExcludeCategories: []string{models.CategoryIncome}})
	assert.True(t, filtered.Summary.TotalDeposits.IsZero())
	assert.True(t, d("70").Equal(filtered.Summary.TotalWithdrawals))
	assert.Len(t, filtered.Categories, 2)

	none := FilterStatement(stmt, &Options{IncludeOnlyCategories: []string{"pets"}})
	assert.Empty(t, none.Transactions)
	assert.Equal(t, stmt.Summary.StartDate, none.Summary.StartDate)
	assert.Equal(t, stmt.Summary.EndDate, none.Summary.EndDate)
}

func TestCompareStatements_WithOptions(t *testing.T) {
	s1 := build(t, "a.json", "2024-01-01|KROGER|-30.00", "2024-01-02|PAYROLL|1000.00")
	s2 := build(t, "b.json", "2024-02-01|KROGER|-60.00", "2024-02-02|PAYROLL|1200.00")

	result, err := CompareStatements(s1, s2, &Options{ExcludeCategories: []string{models.CategoryIncome}})
	require.NoError(t, err)
	require.Len(t, result.Comparison, 1)
	assert.Equal(t, models.CategoryGroceries, result.Comparison[0].Category)
	assert.True(t, result.Statement1.Summary.TotalDeposits.IsZero())
	assert.True(t, d("1000").Equal(s1.Summary.TotalDeposits))
}
