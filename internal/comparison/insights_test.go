package comparison

import (
	"strings"
	"testing"

	"fjacquet/statement-compare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInsights(t *testing.T) {
	s1 := build(t, "a.json",
		"2024-01-01|ACME PAYROLL|3000.00",
		"2024-01-02|KROGER|-200.00",
		"2024-01-03|STARBUCKS|-100.00",
		"2024-01-04|CVS PHARMACY|-100.00",
		"2024-01-05|SHELL|-50.00",
	)
	s2 := build(t, "b.json",
		"2024-02-01|ACME PAYROLL|4500.00",
		"2024-02-02|KROGER|-400.00",
		"2024-02-03|STARBUCKS|-50.00",
		"2024-02-04|NETFLIX|-300.00",
		"2024-02-05|SHELL|-50.00",
	)

	result, err := CompareStatements(s1, s2, nil)
	require.NoError(t, err)
	insights := GenerateInsights(result)

	assert.Equal(t, "450.00", insights.Statement1Spending.StringFixed(2))
	assert.Equal(t, "800.00", insights.Statement2Spending.StringFixed(2))
	assert.Equal(t, "350.00", insights.TotalSpendingChange.StringFixed(2))
	assert.Equal(t, "3000.00", insights.Statement1Income.StringFixed(2))
	assert.Equal(t, "4500.00", insights.Statement2Income.StringFixed(2))
	assert.Equal(t, "1500.00", insights.TotalIncomeChange.StringFixed(2))

	require.NotNil(t, insights.BiggestIncrease)
	assert.Equal(t, models.CategoryGroceries, insights.BiggestIncrease.Category)
	require.NotNil(t, insights.BiggestDecrease)
	assert.Equal(t, models.CategoryHealth, insights.BiggestDecrease.Category)

	assert.Equal(t, []string{models.CategorySubscriptions}, insights.NewCategories)
	assert.Equal(t, []string{models.CategoryHealth}, insights.DiscontinuedCategories)

	assert.Equal(t, []string{
		"Your Groceries spending increased by 100.0%. Consider reviewing these expenses.",
		"Great job reducing Health spending by 100.0%!",
		"New spending category detected: Subscriptions ($300.00). Make sure this aligns with your budget.",
		"Your income increased by $1500.00. Consider saving or investing the extra funds.",
	}, insights.Recommendations)
}

func manualComparison(category, total1, total2 string) models.CategoryComparison {
	t1, t2 := d(total1), d(total2)
	diff := models.Round2(t2.Sub(t1))
	return models.CategoryComparison{
		Category:        category,
		Statement1Total: t1,
		Statement2Total: t2,
		Difference:      diff,
		PercentChange:   models.NewPercentChange(t1, t2, diff),
	}
}

func TestGenerateInsights_LabelRules(t *testing.T) {
	result := &models.ComparisonResult{Comparison: []models.CategoryComparison{
		manualComparison(models.LabelOther, "10", "100"),
		manualComparison(models.CategoryGroceries, "100", "140"),
		manualComparison(models.LabelTransfers, "1000", "1100"),
		manualComparison(models.CategoryIncome, "2000", "900"),
		manualComparison("Pets", "0", "50"),
	}}

	insights := GenerateInsights(result)

	require.NotNil(t, insights.BiggestIncrease)
	assert.Equal(t, models.CategoryGroceries, insights.BiggestIncrease.Category, "Other never wins")
	require.NotNil(t, insights.BiggestDecrease)
	assert.Equal(t, models.CategoryIncome, insights.BiggestDecrease.Category)

	assert.Equal(t, "110.00", insights.Statement1Spending.StringFixed(2), "transfers and income excluded")
	assert.Equal(t, "290.00", insights.Statement2Spending.StringFixed(2))
	assert.Equal(t, "-1100.00", insights.TotalIncomeChange.StringFixed(2))
	assert.Equal(t, []string{"Pets"}, insights.NewCategories)

	assert.Equal(t, []string{
		"Great job reducing Income spending by 55.0%!",
		"Your income decreased by $1100.00. You may need to adjust your spending.",
	}, insights.Recommendations)
}

func TestGenerateInsights_SpendingSwing(t *testing.T) {
	down := &models.ComparisonResult{Comparison: []models.CategoryComparison{
		manualComparison(models.CategoryShopping, "900", "300"),
	}}
	recs := GenerateInsights(down).Recommendations
	require.Len(t, recs, 2)
	assert.Equal(t, "Great job reducing Shopping spending by 66.7%!", recs[0])
	assert.Equal(t, "You reduced your total spending by $600.00. Keep up the good work!", recs[1])

	up := &models.ComparisonResult{Comparison: []models.CategoryComparison{
		manualComparison(models.CategoryShopping, "1000", "1450"),
		manualComparison(models.CategoryGroceries, "100", "160"),
	}}
	recs = GenerateInsights(up).Recommendations
	assert.Equal(t, []string{
		"Your Groceries spending increased by 60.0%. Consider reviewing these expenses.",
		"Your total spending increased by $510.00. Review your budget to identify areas to cut back.",
	}, recs)
}

func TestGenerateInsights_AtMostFive(t *testing.T) {
	s1 := build(t, "a.json", "2024-01-01|AMAZON|-10.00")
	s2 := build(t, "b.json",
		"2024-02-01|AMAZON|-10.00",
		"2024-02-02|KROGER|-250.00",
		"2024-02-03|STARBUCKS|-250.00",
		"2024-02-04|SHELL|-250.00",
		"2024-02-05|NETFLIX|-250.00",
		"2024-02-06|CVS PHARMACY|-250.00",
		"2024-02-07|COMCAST|-250.00",
	)

	result, err := CompareStatements(s1, s2, nil)
	require.NoError(t, err)
	insights := GenerateInsights(result)

	assert.Len(t, insights.NewCategories, 6)
	require.Len(t, insights.Recommendations, 5)
	for _, rec := range insights.Recommendations {
		assert.True(t, strings.HasPrefix(rec, "New spending category detected"), rec)
	}
	assert.Nil(t, insights.BiggestIncrease)
}

func TestGenerateInsights_Nil(t *testing.T) {
	insights := GenerateInsights(nil)
	assert.Empty(t, insights.Recommendations)
	assert.NotNil(t, insights.NewCategories)
}
