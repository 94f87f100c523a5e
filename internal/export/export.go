// Package export renders comparisons and statements as JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/statement-compare/internal/logging"
	"fjacquet/statement-compare/internal/models"

	"github.com/gocarina/gocsv"
)

// Format is an output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s (must be json or csv)", s)
	}
}

// Report is a finished comparison as exported to users.
type Report struct {
	ID        string                     `json:"id,omitempty"`
	Result    *models.ComparisonResult   `json:"result"`
	Insights  *models.ComparisonInsights `json:"insights,omitempty"`
	Narrative string                     `json:"narrative,omitempty"`
}

// ComparisonRow is one CSV line of a comparison export.
type ComparisonRow struct {
	Category        string `csv:"Category"`
	Label           string `csv:"Label"`
	Statement1Total string `csv:"Statement1Total"`
	Statement2Total string `csv:"Statement2Total"`
	Difference      string `csv:"Difference"`
	PercentChange   string `csv:"PercentChange"`
}

// TransactionRow is one CSV line of a statement export.
type TransactionRow struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Type        string `csv:"Type"`
	Category    string `csv:"Category"`
	Label       string `csv:"Label"`
}

// Generator writes exports with a fixed CSV delimiter.
type Generator struct {
	delimiter rune
	logger    logging.Logger
}

// NewGenerator returns a Generator. A zero delimiter means ','.
func NewGenerator(delimiter rune, logger logging.Logger) *Generator {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Generator{
		delimiter: delimiter,
		logger:    logging.OrDefault(logger).WithField(logging.FieldComponent, "export"),
	}
}

// Comparison writes report in format. CSV output holds the per-category rows
// only; JSON holds the whole report.
func (g *Generator) Comparison(w io.Writer, report *Report, format Format) error {
	if report == nil || report.Result == nil {
		return fmt.Errorf("cannot export an empty comparison")
	}
	switch format {
	case FormatJSON:
		return g.writeJSON(w, report)
	case FormatCSV:
		return g.writeCSV(w, ComparisonRows(report.Result))
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// Transactions writes the transactions of stmt in format.
func (g *Generator) Transactions(w io.Writer, stmt *models.ParsedStatement, format Format) error {
	if stmt == nil {
		return fmt.Errorf("cannot export an empty statement")
	}
	switch format {
	case FormatJSON:
		return g.writeJSON(w, stmt)
	case FormatCSV:
		return g.writeCSV(w, TransactionRows(stmt.Transactions))
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// ComparisonRows flattens a comparison for CSV output. New categories show
// "new" as their percent change.
func ComparisonRows(result *models.ComparisonResult) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(result.Comparison))
	for _, c := range result.Comparison {
		pct := "new"
		if c.PercentChange.IsFinite() {
			pct = c.PercentChange.Value.StringFixed(2)
		}
		rows = append(rows, ComparisonRow{
			Category:        c.Category,
			Label:           models.CategoryLabel(c.Category),
			Statement1Total: c.Statement1Total.StringFixed(2),
			Statement2Total: c.Statement2Total.StringFixed(2),
			Difference:      c.Difference.StringFixed(2),
			PercentChange:   pct,
		})
	}
	return rows
}

// TransactionRows flattens transactions for CSV output.
func TransactionRows(transactions []models.Transaction) []TransactionRow {
	rows := make([]TransactionRow, 0, len(transactions))
	for _, tx := range transactions {
		rows = append(rows, TransactionRow{
			Date:        tx.Date.Format("2006-01-02"),
			Description: tx.Description,
			Amount:      tx.Amount.StringFixed(2),
			Type:        string(tx.Type),
			Category:    tx.Category,
			Label:       models.CategoryLabel(tx.Category),
		})
	}
	return rows
}

func (g *Generator) writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

func (g *Generator) writeCSV(w io.Writer, rows interface{}) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = g.delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		g.logger.WithError(err).Error("Failed to marshal CSV")
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteFile creates path (and its directory) and fills it with write.
func WriteFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, models.PermissionReportFile) // #nosec G304 -- user-selected output path
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
