package categorizer

import "fjacquet/statement-compare/internal/models"

// specialCases are checked before the rule table.
var specialCases = []models.CategoryRule{
	{Name: models.CategoryGroceries, Keywords: []string{"frys"}},
}

// DefaultRules returns the built-in rule table. Order is priority: the first rule
// with a matching keyword wins.
func DefaultRules() []models.CategoryRule {
	return []models.CategoryRule{
		{Name: models.CategoryFoodDining, Keywords: []string{
			"restaurant", "cafe", "coffee", "starbucks", "mcdonald", "burger", "pizza",
			"taco bell", "chipotle", "subway", "wendy", "kfc", "domino", "dunkin",
			"doordash", "grubhub", "uber eats", "ubereats", "chick-fil-a", "panera",
			"diner", "bakery", "sushi", "grill",
		}},
		{Name: models.CategoryGroceries, Keywords: []string{
			"grocery", "safeway", "kroger", "walmart", "whole foods", "trader joe",
			"costco", "aldi", "publix", "albertsons", "wegmans", "sprouts",
			"food lion", "supermarket", "h-e-b",
		}},
		{Name: models.CategoryGasTransport, Keywords: []string{
			"shell", "chevron", "exxon", "mobil", "valero", "citgo", "circle k",
			"gas station", "gasoline", "fuel", "uber", "lyft", "taxi", "parking",
			"transit", "metro", "toll", "amtrak", "airline",
		}},
		{Name: models.CategoryShopping, Keywords: []string{
			"amazon", "target", "best buy", "ebay", "etsy", "home depot", "lowe's",
			"lowes", "macy's", "nordstrom", "ikea", "kohl", "tj maxx", "marshalls",
		}},
		{Name: models.CategorySubscriptions, Keywords: []string{
			"netflix", "spotify", "hulu", "disney+", "disney plus", "apple.com/bill",
			"youtube premium", "hbo", "prime video", "subscription", "membership",
			"patreon", "adobe", "microsoft 365", "dropbox", "icloud",
		}},
		{Name: models.CategoryUtilities, Keywords: []string{
			"electric", "water", "utility", "utilities", "comcast", "xfinity",
			"verizon", "at&t", "t-mobile", "spectrum", "internet", "pg&e",
			"duke energy", "con edison", "sewer", "waste management", "energy",
		}},
		{Name: models.CategoryHealth, Keywords: []string{
			"pharmacy", "cvs", "walgreens", "rite aid", "doctor", "medical",
			"dental", "dentist", "hospital", "clinic", "health", "fitness", "gym",
			"optometr", "urgent care",
		}},
		{Name: models.CategoryIncome, Keywords: []string{
			"payroll", "salary", "direct deposit", "deposit", "refund", "interest",
			"dividend", "transfer from", "zelle from", "cashout",
		}},
	}
}
