package models

// Category slugs assigned by the categorizer.
const (
	CategoryFoodDining    = "food-dining"
	CategoryGroceries     = "groceries"
	CategoryGasTransport  = "gas-transport"
	CategoryShopping      = "shopping"
	CategorySubscriptions = "subscriptions"
	CategoryUtilities     = "utilities"
	CategoryHealth        = "health"
	CategoryIncome        = "income"
)

// Display labels that carry special meaning in insights.
const (
	LabelIncome    = "Income"
	LabelTransfers = "Transfers & Investments"
	LabelOther     = "Other"
)

// DefaultCategory is assigned to debits no rule matches.
const DefaultCategory = CategoryShopping

var categoryLabels = map[string]string{
	CategoryFoodDining:    "Food & Dining",
	CategoryGroceries:     "Groceries",
	CategoryGasTransport:  "Gas & Transport",
	CategoryShopping:      "Shopping",
	CategorySubscriptions: "Subscriptions",
	CategoryUtilities:     "Utilities",
	CategoryHealth:        "Health",
	CategoryIncome:        LabelIncome,
}

// CategoryLabel returns the display label of a category slug. Unknown categories,
// including custom ones, are their own label.
func CategoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return category
}

// BuiltinCategories lists the built-in slugs in classification order.
func BuiltinCategories() []string {
	return []string{
		CategoryFoodDining,
		CategoryGroceries,
		CategoryGasTransport,
		CategoryShopping,
		CategorySubscriptions,
		CategoryUtilities,
		CategoryHealth,
		CategoryIncome,
	}
}

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
