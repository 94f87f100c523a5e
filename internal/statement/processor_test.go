package statement

import (
	"errors"
	"strings"
	"testing"
	"time"

	"fjacquet/statement-compare/internal/logging"
	"fjacquet/statement-compare/internal/models"
	"fjacquet/statement-compare/internal/parsererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestProcessor(c Categorizer) (*Processor, *logging.MockLogger) {
	logger := logging.NewMockLogger()
	p := NewProcessor(c, logger)
	p.now = func() time.Time { return fixedNow }
	return p, logger
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type stubCategorizer string

func (s stubCategorizer) Categorize(string) string { return string(s) }

func TestConvertToInternalFormat_Fixture(t *testing.T) {
	resp, err := LoadAPIResponseFile("testdata/chase_january.json")
	require.NoError(t, err)

	p, logger := newTestProcessor(nil)
	stmt, err := p.ConvertToInternalFormat(resp, "chase_january.json")
	require.NoError(t, err)

	require.Len(t, stmt.Transactions, 6)
	assert.Len(t, logger.EntriesByLevel("WARN"), 1)

	s := stmt.Summary
	assert.True(t, d("2500").Equal(s.TotalDeposits), s.TotalDeposits.String())
	assert.True(t, d("277.65").Equal(s.TotalWithdrawals), s.TotalWithdrawals.String())
	assert.Equal(t, date("2024-01-03"), s.StartDate)
	assert.Equal(t, date("2024-01-28"), s.EndDate)
	assert.Equal(t, "Chase", s.BankName)
	assert.Equal(t, "****4821", s.AccountNumber)

	assert.Equal(t, []string{
		models.CategoryIncome,
		models.CategoryShopping,
		models.CategoryGroceries,
		models.CategoryGasTransport,
		models.CategorySubscriptions,
		models.CategoryFoodDining,
	}, stmt.CategoryNames())
}

func TestConvertToInternalFormat_SignAndCategoryRules(t *testing.T) {
	resp := &APIResponse{Normalised: []APITransaction{
		{Date: "2024-01-01", Description: "Walmart", Amount: "-50.00"},
		{Date: "2024-01-02", Description: "Walmart refund", Amount: "50.00"},
		{Date: "2024-01-03", Description: "Zero adjustment", Amount: "0"},
		{Date: "2024-01-04", Description: "Interest charge", Amount: "-3.10"},
	}}

	p, _ := newTestProcessor(nil)
	stmt, err := p.ConvertToInternalFormat(resp, "statement.json")
	require.NoError(t, err)
	require.Len(t, stmt.Transactions, 4)

	walmart := stmt.Transactions[0]
	assert.Equal(t, models.TypeDebit, walmart.Type)
	assert.True(t, d("50").Equal(walmart.Amount))
	assert.Equal(t, models.CategoryGroceries, walmart.Category)

	refund := stmt.Transactions[1]
	assert.Equal(t, models.TypeCredit, refund.Type)
	assert.Equal(t, models.CategoryIncome, refund.Category)

	assert.Equal(t, models.TypeCredit, stmt.Transactions[2].Type)

	interest := stmt.Transactions[3]
	assert.Equal(t, models.TypeDebit, interest.Type)
	assert.Equal(t, models.CategoryShopping, interest.Category, "debits never land in income")

	for _, tx := range stmt.Transactions {
		assert.False(t, tx.Amount.IsNegative())
		assert.Equal(t, tx.IsCredit(), tx.Category == models.CategoryIncome)
	}
}

func TestConvertToInternalFormat_CreditsSkipCategorizer(t *testing.T) {
	resp := &APIResponse{Normalised: []APITransaction{
		{Date: "2024-01-01", Description: "Netflix", Amount: "15.00"},
		{Date: "2024-01-02", Description: "Netflix", Amount: "-15.00"},
	}}

	p, _ := newTestProcessor(stubCategorizer(models.CategoryIncome))
	stmt, err := p.ConvertToInternalFormat(resp, "x.json")
	require.NoError(t, err)

	assert.Equal(t, models.CategoryIncome, stmt.Transactions[0].Category)
	assert.Equal(t, models.CategoryShopping, stmt.Transactions[1].Category)
}

func TestConvertToInternalFormat_SkipsMalformedRecords(t *testing.T) {
	resp := &APIResponse{Normalised: []APITransaction{
		{Date: "2024-01-01", Description: "", Amount: "-1.00"},
		{Date: "2024-01-01", Description: "no amount"},
		{Date: "2024-01-01", Description: "bad amount", Amount: "abc"},
		{Date: "someday", Description: "bad date", Amount: "-2.00"},
		{Date: "2024-01-05", Description: "SAFEWAY", Amount: "-10.00"},
	}}

	p, logger := newTestProcessor(nil)
	stmt, err := p.ConvertToInternalFormat(resp, "x.json")
	require.NoError(t, err)

	assert.Len(t, stmt.Transactions, 1)
	warns := logger.EntriesByLevel("WARN")
	require.Len(t, warns, 4)
	assert.Equal(t, "Skipping invalid transaction record", warns[0].Message)
}

func TestConvertToInternalFormat_SkipsMistypedRecords(t *testing.T) {
	resp, err := DecodeAPIResponse(strings.NewReader(`{"normalised":[
		{"date":"2024-01-01","description":"Walmart","amount":"-50.00"},
		{"date":"2024-01-02","description":12345,"amount":"-10.00"},
		{"date":20240103,"description":"Kroger","amount":"-5.00"},
		"garbage",
		null
	]}`))
	require.NoError(t, err)

	p, logger := newTestProcessor(nil)
	stmt, err := p.ConvertToInternalFormat(resp, "x.json")
	require.NoError(t, err)

	require.Len(t, stmt.Transactions, 1)
	assert.Equal(t, "Walmart", stmt.Transactions[0].Description)
	assert.Equal(t, models.CategoryGroceries, stmt.Transactions[0].Category)
	assert.Equal(t, "50", stmt.Summary.TotalWithdrawals.String())
	assert.Len(t, logger.EntriesByLevel("WARN"), 4)
}

func TestConvertToInternalFormat_NoValidTransactions(t *testing.T) {
	resp := &APIResponse{Normalised: []APITransaction{
		{Date: "2024-01-01", Description: "Walmart", Amount: "not-a-number"},
	}}

	p, _ := newTestProcessor(nil)
	_, err := p.ConvertToInternalFormat(resp, "x.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No valid transactions found")
	assert.ErrorIs(t, err, parsererror.ErrNoValidTransactions)

	var validationErr *parsererror.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "x.json", validationErr.FilePath)
}

func TestConvertToInternalFormat_MissingList(t *testing.T) {
	p, _ := newTestProcessor(nil)

	_, err := p.ConvertToInternalFormat(nil, "x.json")
	assert.ErrorIs(t, err, parsererror.ErrMissingTransactions)

	_, err = p.ConvertToInternalFormat(&APIResponse{}, "x.json")
	assert.ErrorIs(t, err, parsererror.ErrMissingTransactions)

	_, err = p.ConvertToInternalFormat(&APIResponse{Normalised: []APITransaction{}}, "x.json")
	assert.ErrorIs(t, err, parsererror.ErrNoValidTransactions)
}

func TestSummarize(t *testing.T) {
	txs := []models.Transaction{
		{Date: date("2024-02-10"), Amount: d("10.005"), Type: models.TypeCredit},
		{Date: date("2024-02-01"), Amount: d("3.333"), Type: models.TypeDebit},
		{Date: date("2024-02-20"), Amount: d("1.111"), Type: models.TypeDebit},
	}
	s := Summarize(txs, fixedNow)
	assert.Equal(t, "10.01", s.TotalDeposits.StringFixed(2))
	assert.Equal(t, "4.44", s.TotalWithdrawals.StringFixed(2))
	assert.Equal(t, date("2024-02-01"), s.StartDate)
	assert.Equal(t, date("2024-02-20"), s.EndDate)

	empty := Summarize(nil, fixedNow)
	assert.True(t, empty.TotalDeposits.IsZero())
	assert.Equal(t, fixedNow, empty.StartDate)
	assert.Equal(t, fixedNow, empty.EndDate)
}

func TestBuildCategoryBreakdown(t *testing.T) {
	txs := []models.Transaction{
		{Date: date("2024-01-01"), Amount: d("10"), Category: "a"},
		{Date: date("2024-01-03"), Amount: d("30"), Category: "b"},
		{Date: date("2024-01-02"), Amount: d("5"), Category: "a"},
		{Date: date("2024-01-04"), Amount: d("20"), Category: "c"},
		{Date: date("2024-01-05"), Amount: d("5.004"), Category: "a"},
	}

	groups := BuildCategoryBreakdown(txs)
	require.Len(t, groups, 3)

	assert.Equal(t, "b", groups[0].Category)
	assert.Equal(t, "a", groups[1].Category, "ties keep first-seen order")
	assert.Equal(t, "c", groups[2].Category)

	a := groups[1]
	assert.Equal(t, 3, a.TransactionCount)
	assert.Equal(t, "20.00", a.TotalAmount.StringFixed(2))
	assert.Equal(t, date("2024-01-05"), a.Transactions[0].Date)
	assert.Equal(t, date("2024-01-01"), a.Transactions[2].Date)

	assert.Empty(t, BuildCategoryBreakdown(nil))
	assert.NotNil(t, BuildCategoryBreakdown(nil))
}

func TestDetectBankName(t *testing.T) {
	tests := map[string]string{
		"Chase_Statement_Jan.pdf":     "Chase",
		"bank-of-america-2024.pdf":    "Bank of America",
		"WELLSFARGO.json":             "Wells Fargo",
		"capital_one_feb.json":        "Capital One",
		"my statement.pdf":            UnknownBank,
		"":                            UnknownBank,
		"citibank_checking_march.pdf": "Citibank",
		"citi-card-2024.pdf":          "Citibank",
		"kansas_city_2024.pdf":        UnknownBank,
		"CityNational.json":           UnknownBank,
	}
	for in, want := range tests {
		assert.Equal(t, want, DetectBankName(in), in)
	}
}

func TestDetectAccountNumber(t *testing.T) {
	mk := func(descs ...string) []models.Transaction {
		out := make([]models.Transaction, len(descs))
		for i, desc := range descs {
			out[i] = models.Transaction{Description: desc}
		}
		return out
	}

	assert.Equal(t, "****1234", DetectAccountNumber(mk("a", "Card ENDING IN 1234")))
	assert.Equal(t, UnknownAccount, DetectAccountNumber(mk("a", "b", "c", "d", "e", "ending in 9999")))
	assert.Equal(t, UnknownAccount, DetectAccountNumber(mk("ending in 12")))
	assert.Equal(t, UnknownAccount, DetectAccountNumber(nil))
}

func TestValidateParsedStatement(t *testing.T) {
	resp, err := LoadAPIResponseFile("testdata/chase_february.json")
	require.NoError(t, err)
	p, _ := newTestProcessor(nil)
	stmt, err := p.ConvertToInternalFormat(resp, "chase_february.json")
	require.NoError(t, err)

	result := ValidateParsedStatement(stmt)
	assert.True(t, result.IsValid, result.Errors)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "484.00", stmt.Summary.TotalWithdrawals.StringFixed(2))

	tampered := *stmt
	tampered.Summary.TotalDeposits = stmt.Summary.TotalDeposits.Add(d("0.01"))
	assert.True(t, ValidateParsedStatement(&tampered).IsValid, "within tolerance")

	tampered.Summary.TotalDeposits = stmt.Summary.TotalDeposits.Add(d("1"))
	tampered.Summary.TotalWithdrawals = d("1")
	tampered.Summary.StartDate = tampered.Summary.EndDate.AddDate(0, 0, 1)
	result = ValidateParsedStatement(&tampered)
	assert.False(t, result.IsValid)
	assert.Len(t, result.Errors, 3)

	empty := ValidateParsedStatement(&models.ParsedStatement{})
	assert.False(t, empty.IsValid)
	assert.Contains(t, empty.Errors, "Statement has no transactions")
	assert.Contains(t, empty.Errors, "Statement has no categories")

	assert.False(t, ValidateParsedStatement(nil).IsValid)
}
