// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"fjacquet/statement-compare/internal/converterapi"
	"fjacquet/statement-compare/internal/export"
	"fjacquet/statement-compare/internal/models"
	"fjacquet/statement-compare/internal/pipeline"
	"fjacquet/statement-compare/internal/statement"
	"fjacquet/statement-compare/internal/validation"
)

// FormatText is the human-readable output format of the CLI.
const FormatText = "text"

// StatementInput validates path and opens it as a pipeline input. The caller
// closes the returned file.
func StatementInput(path string) (pipeline.Input, io.Closer, error) {
	if err := validation.IsValidStatementFile(path); err != nil {
		return pipeline.Input{}, nil, err
	}
	f, err := os.Open(path) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return pipeline.Input{}, nil, fmt.Errorf("error opening input file: %w", err)
	}
	return pipeline.Input{Filename: filepath.Base(path), Reader: f}, f, nil
}

// ConvertFile converts one statement file into a ParsedStatement.
func ConvertFile(ctx context.Context, conv converterapi.Converter, proc *statement.Processor, path string) (*models.ParsedStatement, error) {
	if err := validation.IsValidStatementFile(path); err != nil {
		return nil, err
	}
	resp, err := converterapi.ConvertPath(ctx, conv, path)
	if err != nil {
		return nil, err
	}
	return proc.ConvertToInternalFormat(resp, filepath.Base(path))
}

// WriteOutput runs write against output, or against stdout when output is empty.
func WriteOutput(stdout io.Writer, output string, write func(io.Writer) error) error {
	if output == "" {
		return write(stdout)
	}
	return export.WriteFile(output, write)
}

// PrintComparison renders a comparison report as text.
func PrintComparison(w io.Writer, report *export.Report) error {
	r := report.Result
	in := report.Insights

	fmt.Fprintf(w, "Comparison %s\n", report.ID)
	printStatementLine(w, "Statement 1", r.Statement1)
	printStatementLine(w, "Statement 2", r.Statement2)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Category\tStatement 1\tStatement 2\tDifference\tChange\t")
	for _, c := range r.Comparison {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			models.CategoryLabel(c.Category),
			models.FormatCurrency(c.Statement1Total),
			models.FormatCurrency(c.Statement2Total),
			models.FormatCurrency(c.Difference),
			c.PercentChange.String())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if in != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Spending: %s -> %s (%s)\n", models.FormatCurrency(in.Statement1Spending), models.FormatCurrency(in.Statement2Spending), models.FormatCurrency(in.TotalSpendingChange))
		fmt.Fprintf(w, "Income:   %s -> %s (%s)\n", models.FormatCurrency(in.Statement1Income), models.FormatCurrency(in.Statement2Income), models.FormatCurrency(in.TotalIncomeChange))
		if in.BiggestIncrease != nil {
			fmt.Fprintf(w, "Biggest increase: %s (%s)\n", models.CategoryLabel(in.BiggestIncrease.Category), in.BiggestIncrease.PercentChange.String())
		}
		if in.BiggestDecrease != nil {
			fmt.Fprintf(w, "Biggest decrease: %s (%s)\n", models.CategoryLabel(in.BiggestDecrease.Category), in.BiggestDecrease.PercentChange.String())
		}
		printList(w, "New categories", in.NewCategories)
		printList(w, "Discontinued categories", in.DiscontinuedCategories)
		if len(in.Recommendations) > 0 {
			fmt.Fprintln(w, "\nRecommendations:")
			for _, rec := range in.Recommendations {
				fmt.Fprintf(w, "  - %s\n", rec)
			}
		}
	}

	if report.Narrative != "" {
		fmt.Fprintf(w, "\nSummary:\n%s\n", report.Narrative)
	}
	return nil
}

// PrintStatement renders a converted statement and its validation result as text.
func PrintStatement(w io.Writer, stmt *models.ParsedStatement, v statement.ValidationResult) error {
	printStatementLine(w, "Statement", stmt)
	fmt.Fprintf(w, "Deposits: %s  Withdrawals: %s  Transactions: %d\n\n",
		models.FormatCurrency(stmt.Summary.TotalDeposits),
		models.FormatCurrency(stmt.Summary.TotalWithdrawals),
		len(stmt.Transactions))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Category\tCount\tTotal")
	for _, c := range stmt.Categories {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", models.CategoryLabel(c.Category), c.TransactionCount, models.FormatCurrency(c.TotalAmount))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if v.IsValid {
		fmt.Fprintln(w, "\nValidation: OK")
		return nil
	}
	fmt.Fprintln(w, "\nValidation: FAILED")
	for _, e := range v.Errors {
		fmt.Fprintf(w, "  - %s\n", e)
	}
	return nil
}

func printStatementLine(w io.Writer, title string, stmt *models.ParsedStatement) {
	if stmt == nil {
		return
	}
	s := stmt.Summary
	fmt.Fprintf(w, "%s: %s %s (%s to %s)\n", title, s.BankName, s.AccountNumber,
		s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"))
}

func printList(w io.Writer, title string, categories []string) {
	if len(categories) == 0 {
		return
	}
	labels := make([]string, len(categories))
	for i, c := range categories {
		labels[i] = models.CategoryLabel(c)
	}
	fmt.Fprintf(w, "%s: %s\n", title, strings.Join(labels, ", "))
}
