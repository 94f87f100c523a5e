// Package categorize handles transaction categorization commands
package categorize

import (
	"fmt"

	"fjacquet/statement-compare/cmd/root"
	"fjacquet/statement-compare/internal/logging"
	"fjacquet/statement-compare/internal/models"

	"github.com/spf13/cobra"
)

var description string

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize a transaction description",
	Long: `Categorize a transaction description with the keyword rules. The first
rule whose keyword appears in the description wins; descriptions matching no
rule fall back to the default category.`,
	RunE: categorizeFunc,
}

func init() {
	Cmd.Flags().StringVarP(&description, "description", "d", "", "Transaction description to categorize")
	_ = Cmd.MarkFlagRequired("description")
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer(cmd.Context())
	if err != nil {
		return err
	}

	m := c.GetCategorizer().Match(description)
	root.Log.Debug("Transaction categorized",
		logging.F(logging.FieldDescription, description),
		logging.F(logging.FieldCategory, m.Category))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Category: %s (%s)\n", m.Category, models.CategoryLabel(m.Category))
	if m.Keyword != "" {
		fmt.Fprintf(out, "Matched keyword: %s\n", m.Keyword)
	} else {
		fmt.Fprintln(out, "No keyword matched, default category used")
	}
	return nil
}
