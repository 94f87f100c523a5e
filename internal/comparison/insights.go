package comparison

import (
	"fmt"

	"fjacquet/statement-compare/internal/models"

	"github.com/shopspring/decimal"
)

// Recommendation thresholds.
var (
	increaseAlertPercent  = decimal.NewFromInt(50)
	decreasePraisePercent = decimal.NewFromInt(-30)
	newCategoryAlert      = decimal.NewFromInt(200)
	spendingSwingAlert    = decimal.NewFromInt(500)
	incomeSwingAlert      = decimal.NewFromInt(1000)
)

const maxRecommendations = 5

// GenerateInsights derives aggregate spending and income changes, the biggest
// movers, new and discontinued categories and up to five recommendations.
// Category names are matched on their display label.
func GenerateInsights(result *models.ComparisonResult) models.ComparisonInsights {
	insights := models.ComparisonInsights{
		NewCategories:          []string{},
		DiscontinuedCategories: []string{},
		Recommendations:        []string{},
	}
	if result == nil {
		return insights
	}

	spending1, spending2 := decimal.Zero, decimal.Zero
	income1, income2 := decimal.Zero, decimal.Zero

	for i := range result.Comparison {
		c := &result.Comparison[i]
		label := models.CategoryLabel(c.Category)

		if label == models.LabelIncome {
			income1 = income1.Add(c.Statement1Total)
			income2 = income2.Add(c.Statement2Total)
		} else if label != models.LabelTransfers {
			spending1 = spending1.Add(c.Statement1Total)
			spending2 = spending2.Add(c.Statement2Total)
		}

		if c.IsNew() {
			insights.NewCategories = append(insights.NewCategories, c.Category)
		}
		if c.IsDiscontinued() {
			insights.DiscontinuedCategories = append(insights.DiscontinuedCategories, c.Category)
		}

		if !c.PercentChange.IsFinite() || label == models.LabelOther {
			continue
		}
		pct := c.PercentChange.Value
		if pct.IsPositive() && (insights.BiggestIncrease == nil || pct.GreaterThan(insights.BiggestIncrease.PercentChange.Value)) {
			insights.BiggestIncrease = c
		}
		if pct.IsNegative() && (insights.BiggestDecrease == nil || pct.LessThan(insights.BiggestDecrease.PercentChange.Value)) {
			insights.BiggestDecrease = c
		}
	}

	insights.Statement1Spending = models.Round2(spending1)
	insights.Statement2Spending = models.Round2(spending2)
	insights.TotalSpendingChange = models.Round2(spending2.Sub(spending1))
	insights.Statement1Income = models.Round2(income1)
	insights.Statement2Income = models.Round2(income2)
	insights.TotalIncomeChange = models.Round2(income2.Sub(income1))

	insights.Recommendations = recommendations(result, insights)
	return insights
}

func recommendations(result *models.ComparisonResult, in models.ComparisonInsights) []string {
	recs := []string{}

	if in.BiggestIncrease != nil && in.BiggestIncrease.PercentChange.Value.GreaterThan(increaseAlertPercent) {
		recs = append(recs, fmt.Sprintf(
			"Your %s spending increased by %s%%. Consider reviewing these expenses.",
			models.CategoryLabel(in.BiggestIncrease.Category),
			in.BiggestIncrease.PercentChange.Value.StringFixed(1)))
	}

	if in.BiggestDecrease != nil && in.BiggestDecrease.PercentChange.Value.LessThan(decreasePraisePercent) {
		recs = append(recs, fmt.Sprintf(
			"Great job reducing %s spending by %s%%!",
			models.CategoryLabel(in.BiggestDecrease.Category),
			in.BiggestDecrease.PercentChange.Value.Abs().StringFixed(1)))
	}

	for _, c := range result.Comparison {
		if c.IsNew() && c.Statement2Total.GreaterThan(newCategoryAlert) {
			recs = append(recs, fmt.Sprintf(
				"New spending category detected: %s (%s). Make sure this aligns with your budget.",
				models.CategoryLabel(c.Category), models.FormatCurrency(c.Statement2Total)))
		}
	}

	switch {
	case in.TotalSpendingChange.GreaterThan(spendingSwingAlert):
		recs = append(recs, fmt.Sprintf(
			"Your total spending increased by %s. Review your budget to identify areas to cut back.",
			models.FormatCurrency(in.TotalSpendingChange)))
	case in.TotalSpendingChange.LessThan(spendingSwingAlert.Neg()):
		recs = append(recs, fmt.Sprintf(
			"You reduced your total spending by %s. Keep up the good work!",
			models.FormatCurrency(in.TotalSpendingChange.Abs())))
	}

	switch {
	case in.TotalIncomeChange.GreaterThan(incomeSwingAlert):
		recs = append(recs, fmt.Sprintf(
			"Your income increased by %s. Consider saving or investing the extra funds.",
			models.FormatCurrency(in.TotalIncomeChange)))
	case in.TotalIncomeChange.LessThan(incomeSwingAlert.Neg()):
		recs = append(recs, fmt.Sprintf(
			"Your income decreased by %s. You may need to adjust your spending.",
			models.FormatCurrency(in.TotalIncomeChange.Abs())))
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}
