// Package compare implements the compare command
package compare

import (
	"fmt"
	"io"

	"fjacquet/statement-compare/cmd/common"
	"fjacquet/statement-compare/cmd/root"
	"fjacquet/statement-compare/internal/comparison"
	"fjacquet/statement-compare/internal/export"
	"fjacquet/statement-compare/internal/logging"
	"fjacquet/statement-compare/internal/pipeline"
	"fjacquet/statement-compare/internal/statement"
	"fjacquet/statement-compare/internal/validation"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	excludeCategories []string
	includeOnly       []string
	minAmount         string
	fromDate          string
	toDate            string
	format            string
	output            string
	narrate           bool
	noHistory         bool
)

// Cmd represents the compare command
var Cmd = &cobra.Command{
	Use:   "compare <statement1> <statement2>",
	Short: "Compare two bank statements by category",
	Long: `Compare two bank statements category by category.

Each statement is either a PDF (sent to the converter service) or a saved
converter response in JSON. The report lists per-category totals, differences
and percentage changes, followed by insights and recommendations.`,
	Args: cobra.ExactArgs(2),
	RunE: compareFunc,
}

func init() {
	Cmd.Flags().StringSliceVar(&excludeCategories, "exclude", nil, "Categories to leave out of the comparison")
	Cmd.Flags().StringSliceVar(&includeOnly, "include-only", nil, "Only compare these categories")
	Cmd.Flags().StringVar(&minAmount, "min-amount", "", "Ignore transactions below this absolute amount")
	Cmd.Flags().StringVar(&fromDate, "from", "", "Ignore transactions before this date (YYYY-MM-DD)")
	Cmd.Flags().StringVar(&toDate, "to", "", "Ignore transactions after this date (YYYY-MM-DD)")
	Cmd.Flags().StringVarP(&format, "format", "f", common.FormatText, "Output format: text, json or csv")
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	Cmd.Flags().BoolVar(&narrate, "narrate", false, "Add an AI-written summary (requires GEMINI_API_KEY)")
	Cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the comparison in the history database")
}

func compareFunc(cmd *cobra.Command, args []string) error {
	if err := validation.IsValidOutputFormat(format, common.FormatText, string(export.FormatJSON), string(export.FormatCSV)); err != nil {
		return err
	}
	opts, err := BuildOptions(excludeCategories, includeOnly, minAmount, fromDate, toDate)
	if err != nil {
		return err
	}

	in1, closer1, err := common.StatementInput(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = closer1.Close() }()
	in2, closer2, err := common.StatementInput(args[1])
	if err != nil {
		return err
	}
	defer func() { _ = closer2.Close() }()

	c, err := root.GetContainer(cmd.Context())
	if err != nil {
		return err
	}
	p := c.GetPipeline()
	if narrate && !p.CanNarrate() {
		root.Log.Warn("Narrative requested but no AI model is configured")
	}

	root.Log.Info("Comparing statements",
		logging.F(logging.FieldFile, args[0]),
		logging.F("file2", args[1]))

	out, err := p.Run(cmd.Context(), pipeline.Request{
		Statement1:  in1,
		Statement2:  in2,
		Options:     opts,
		Narrate:     narrate,
		SkipHistory: noHistory,
	})
	if err != nil {
		return err
	}

	report := &export.Report{ID: out.ID, Result: out.Result, Insights: out.Insights, Narrative: out.Narrative}
	return common.WriteOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
		if format == common.FormatText {
			return common.PrintComparison(w, report)
		}
		return c.GetExporter().Comparison(w, report, export.Format(format))
	})
}

// BuildOptions turns the filter flags into comparison options. It returns nil
// when no filter is set so that the statements are compared unfiltered.
func BuildOptions(exclude, only []string, minimum, from, to string) (*comparison.Options, error) {
	if len(exclude) == 0 && len(only) == 0 && minimum == "" && from == "" && to == "" {
		return nil, nil
	}
	opts := &comparison.Options{ExcludeCategories: exclude, IncludeOnlyCategories: only}
	if minimum != "" {
		d, err := decimal.NewFromString(minimum)
		if err != nil {
			return nil, fmt.Errorf("invalid minimum amount %q: %w", minimum, err)
		}
		opts.MinimumAmount = &d
	}
	if from != "" || to != "" {
		dr := &comparison.DateRange{}
		var err error
		if from != "" {
			if dr.Start, err = statement.ParseDate(from); err != nil {
				return nil, fmt.Errorf("invalid --from date: %w", err)
			}
		}
		if to != "" {
			if dr.End, err = statement.ParseDate(to); err != nil {
				return nil, fmt.Errorf("invalid --to date: %w", err)
			}
		}
		opts.DateRange = dr
	}
	return opts, nil
}
