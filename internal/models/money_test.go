package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		expectError bool
	}{
		{name: "negative", input: "-50.00", expected: "-50"},
		{name: "positive", input: "1200.5", expected: "1200.5"},
		{name: "padded", input: "  12.30 ", expected: "12.3"},
		{name: "dollar sign", input: "$19.99", expected: "19.99"},
		{name: "thousands with decimals", input: "-1,234.56", expected: "-1234.56"},
		{name: "thousands without decimals", input: "2,500", expected: "2500"},
		{name: "accounting negative", input: "(45.10)", expected: "-45.1"},
		{name: "accounting negative with thousands", input: "(1,234.50)", expected: "-1234.5"},
		{name: "decimal comma", input: "12,50", expectError: true},
		{name: "misplaced thousands comma", input: "12,34.5", expectError: true},
		{name: "exponent", input: "1e2", expected: "100"},
		{name: "not a number", input: "not-a-number", expectError: true},
		{name: "empty", input: "", expectError: true},
		{name: "only symbol", input: "$", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, "10.13", Round2(decimal.RequireFromString("10.125")).String())
	assert.Equal(t, "-10.13", Round2(decimal.RequireFromString("-10.125")).String())
	assert.Equal(t, "0.1", Round2(decimal.RequireFromString("0.1000001")).String())
}

func TestSumAmounts(t *testing.T) {
	txs := []Transaction{
		{Amount: decimal.RequireFromString("10.10"), Type: TypeDebit},
		{Amount: decimal.RequireFromString("0.20"), Type: TypeDebit},
		{Amount: decimal.RequireFromString("100"), Type: TypeCredit},
	}

	debits := SumAmounts(txs, Transaction.IsDebit)
	assert.True(t, decimal.RequireFromString("10.30").Equal(debits))
	assert.True(t, decimal.RequireFromString("110.30").Equal(SumAmounts(txs, nil)))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$1234.50", FormatCurrency(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "-$20.00", FormatCurrency(decimal.NewFromInt(-20)))
}

func TestTransactionSign(t *testing.T) {
	debit := Transaction{Amount: decimal.NewFromInt(5), Type: TypeDebit}
	credit := Transaction{Amount: decimal.NewFromInt(5), Type: TypeCredit}

	assert.True(t, debit.IsDebit())
	assert.False(t, debit.IsCredit())
	assert.Equal(t, "-5", debit.SignedAmount().String())
	assert.Equal(t, "5", credit.SignedAmount().String())
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Food & Dining", CategoryLabel(CategoryFoodDining))
	assert.Equal(t, LabelIncome, CategoryLabel(CategoryIncome))
	assert.Equal(t, "Pets", CategoryLabel("Pets"))
	assert.Len(t, BuiltinCategories(), 8)
}
