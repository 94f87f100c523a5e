// Package convert implements the convert command
package convert

import (
	"io"

	"fjacquet/statement-compare/cmd/common"
	"fjacquet/statement-compare/cmd/root"
	"fjacquet/statement-compare/internal/export"
	"fjacquet/statement-compare/internal/logging"
	"fjacquet/statement-compare/internal/statement"
	"fjacquet/statement-compare/internal/validation"

	"github.com/spf13/cobra"
)

var (
	format string
	output string
)

// Cmd represents the convert command
var Cmd = &cobra.Command{
	Use:   "convert <statement>",
	Short: "Convert a statement into categorized transactions",
	Long: `Convert a single bank statement (PDF or saved converter JSON) into
categorized transactions, with statement totals and a validation report.`,
	Args: cobra.ExactArgs(1),
	RunE: convertFunc,
}

func init() {
	Cmd.Flags().StringVarP(&format, "format", "f", common.FormatText, "Output format: text, json or csv")
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
}

func convertFunc(cmd *cobra.Command, args []string) error {
	if err := validation.IsValidOutputFormat(format, common.FormatText, string(export.FormatJSON), string(export.FormatCSV)); err != nil {
		return err
	}

	c, err := root.GetContainer(cmd.Context())
	if err != nil {
		return err
	}

	stmt, err := common.ConvertFile(cmd.Context(), c.GetConverter(), c.GetProcessor(), args[0])
	if err != nil {
		return err
	}
	result := statement.ValidateParsedStatement(stmt)
	if !result.IsValid {
		root.Log.Warn("Converted statement failed validation",
			logging.F(logging.FieldFile, args[0]),
			logging.F(logging.FieldCount, len(result.Errors)))
	}

	return common.WriteOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
		if format == common.FormatText {
			return common.PrintStatement(w, stmt, result)
		}
		return c.GetExporter().Transactions(w, stmt, export.Format(format))
	})
}
