package export

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/statement-compare/internal/logging"
	"fjacquet/statement-compare/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleReport() *Report {
	groceries := models.CategoryComparison{
		Category:        models.CategoryGroceries,
		Statement1Total: d("50"),
		Statement2Total: d("0"),
		Difference:      d("-50"),
		PercentChange:   models.NewPercentChange(d("50"), d("0"), d("-50")),
	}
	subs := models.CategoryComparison{
		Category:        models.CategorySubscriptions,
		Statement1Total: d("0"),
		Statement2Total: d("15.5"),
		Difference:      d("15.5"),
		PercentChange:   models.NewPercentChange(d("0"), d("15.5"), d("15.5")),
	}
	return &Report{
		ID: "abc",
		Result: &models.ComparisonResult{
			Statement1: &models.ParsedStatement{},
			Statement2: &models.ParsedStatement{},
			Comparison: []models.CategoryComparison{groceries, subs},
		},
		Insights: &models.ComparisonInsights{Recommendations: []string{"tip"}},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestComparison_CSV(t *testing.T) {
	var buf bytes.Buffer
	g := NewGenerator(';', logging.NewMockLogger())
	require.NoError(t, g.Comparison(&buf, sampleReport(), FormatCSV))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Category;Label;Statement1Total;Statement2Total;Difference;PercentChange", lines[0])
	assert.Equal(t, "groceries;Groceries;50.00;0.00;-50.00;-100.00", lines[1])
	assert.Equal(t, "subscriptions;Subscriptions;0.00;15.50;15.50;new", lines[2])
}

func TestComparison_JSON(t *testing.T) {
	var buf bytes.Buffer
	g := NewGenerator(0, nil)
	require.NoError(t, g.Comparison(&buf, sampleReport(), FormatJSON))

	var decoded struct {
		ID     string `json:"id"`
		Result struct {
			Comparison []struct {
				Category      string               `json:"category"`
				PercentChange models.PercentChange `json:"percentChange"`
			} `json:"comparison"`
		} `json:"result"`
		Insights models.ComparisonInsights `json:"insights"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "abc", decoded.ID)
	require.Len(t, decoded.Result.Comparison, 2)
	assert.Equal(t, models.PercentDiscontinued, decoded.Result.Comparison[0].PercentChange.Kind)
	assert.Equal(t, models.PercentNewCategory, decoded.Result.Comparison[1].PercentChange.Kind)
	assert.Equal(t, []string{"tip"}, decoded.Insights.Recommendations)
}

func TestComparison_Errors(t *testing.T) {
	g := NewGenerator(',', nil)
	var buf bytes.Buffer
	assert.Error(t, g.Comparison(&buf, nil, FormatJSON))
	assert.Error(t, g.Comparison(&buf, &Report{}, FormatJSON))
	assert.Error(t, g.Comparison(&buf, sampleReport(), Format("xml")))
}

func TestTransactions_CSV(t *testing.T) {
	stmt := &models.ParsedStatement{Transactions: []models.Transaction{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Description: "KROGER, #12", Amount: d("12.5"), Type: models.TypeDebit, Category: models.CategoryGroceries},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Description: "PAYROLL", Amount: d("1000"), Type: models.TypeCredit, Category: models.CategoryIncome},
	}}

	var buf bytes.Buffer
	require.NoError(t, NewGenerator(',', nil).Transactions(&buf, stmt, FormatCSV))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Description,Amount,Type,Category,Label", lines[0])
	assert.Equal(t, `2024-01-02,"KROGER, #12",12.50,debit,groceries,Groceries`, lines[1])
	assert.Equal(t, "2024-01-03,PAYROLL,1000.00,credit,income,Income", lines[2])

	assert.Error(t, NewGenerator(',', nil).Transactions(&buf, nil, FormatCSV))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	g := NewGenerator(',', nil)

	err := WriteFile(path, func(w io.Writer) error {
		return g.Comparison(w, sampleReport(), FormatJSON)
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}
