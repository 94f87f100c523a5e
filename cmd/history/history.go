// Package history implements the history command
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"fjacquet/statement-compare/cmd/common"
	"fjacquet/statement-compare/cmd/root"
	"fjacquet/statement-compare/internal/categorizer"
	"fjacquet/statement-compare/internal/export"
	hist "fjacquet/statement-compare/internal/history"
	"fjacquet/statement-compare/internal/models"
	"fjacquet/statement-compare/internal/validation"

	"github.com/spf13/cobra"
)

// ErrHistoryDisabled is returned when the history database is not configured.
var ErrHistoryDisabled = errors.New("comparison history is disabled (set history.enabled in the config)")

var (
	limit      int
	showFormat string
	editDesc   string
	editOld    string
	editNewCat string
)

// Cmd represents the history command
var Cmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved comparisons",
	Long: `Browse comparisons recorded in the history database and log category
corrections against them.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent comparisons",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := repository(cmd.Context())
		if err != nil {
			return err
		}
		return List(cmd.Context(), cmd.OutOrStdout(), repo, limit)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one saved comparison and its category edits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validation.IsValidOutputFormat(showFormat, common.FormatText, string(export.FormatJSON)); err != nil {
			return err
		}
		repo, err := repository(cmd.Context())
		if err != nil {
			return err
		}
		return Show(cmd.Context(), cmd.OutOrStdout(), repo, args[0], showFormat)
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Record a category correction for a transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		repo := c.GetHistory()
		if repo == nil {
			return ErrHistoryDisabled
		}
		return Edit(cmd.Context(), cmd.OutOrStdout(), repo, c.GetCustomCategories(), hist.CategoryEdit{
			ComparisonID: args[0],
			Description:  editDesc,
			OldCategory:  editOld,
			NewCategory:  editNewCat,
		})
	},
}

func init() {
	listCmd.Flags().IntVarP(&limit, "limit", "n", hist.DefaultListLimit, "Maximum number of comparisons to list")
	showCmd.Flags().StringVarP(&showFormat, "format", "f", common.FormatText, "Output format: text or json")
	editCmd.Flags().StringVarP(&editDesc, "description", "d", "", "Description of the transaction to re-label")
	editCmd.Flags().StringVar(&editOld, "old", "", "Category the transaction had")
	editCmd.Flags().StringVar(&editNewCat, "category", "", "Category to assign")
	_ = editCmd.MarkFlagRequired("description")
	_ = editCmd.MarkFlagRequired("category")

	Cmd.AddCommand(listCmd, showCmd, editCmd)
}

func repository(ctx context.Context) (hist.Repository, error) {
	c, err := root.GetContainer(ctx)
	if err != nil {
		return nil, err
	}
	if c.GetHistory() == nil {
		return nil, ErrHistoryDisabled
	}
	return c.GetHistory(), nil
}

// List prints the most recent comparisons, newest first.
func List(ctx context.Context, w io.Writer, repo hist.Repository, limit int) error {
	items, err := repo.ListComparisons(ctx, limit)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(w, "No saved comparisons")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCreated\tStatement 1\tStatement 2\tSpending change\tIncome change\tCategories")
	for _, c := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			c.ID,
			c.CreatedAt.Local().Format("2006-01-02 15:04"),
			c.Statement1Name,
			c.Statement2Name,
			models.FormatCurrency(c.SpendingChange),
			models.FormatCurrency(c.IncomeChange),
			c.CategoryCount)
	}
	return tw.Flush()
}

// Show prints one stored comparison followed by its category edits.
func Show(ctx context.Context, w io.Writer, repo hist.Repository, id, format string) error {
	c, err := repo.GetComparison(ctx, id)
	if err != nil {
		return err
	}
	edits, err := repo.ListCategoryEdits(ctx, id)
	if err != nil {
		return err
	}

	if format == string(export.FormatJSON) {
		data, err := json.MarshalIndent(struct {
			*hist.Comparison
			Edits []hist.CategoryEdit `json:"edits"`
		}{c, edits}, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshalling comparison: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	fmt.Fprintf(w, "Saved %s: %s vs %s\n", c.CreatedAt.Local().Format("2006-01-02 15:04"), c.Statement1Name, c.Statement2Name)
	if err := common.PrintComparison(w, &export.Report{ID: c.ID, Result: c.Result, Insights: c.Insights, Narrative: c.Narrative}); err != nil {
		return err
	}
	if len(edits) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\nCategory edits:")
	for _, e := range edits {
		from := e.OldCategory
		if from == "" {
			from = "?"
		}
		fmt.Fprintf(w, "  - %s: %s -> %s\n", e.Description, from, e.NewCategory)
	}
	return nil
}

// Edit validates the new category and logs the correction.
func Edit(ctx context.Context, w io.Writer, repo hist.Repository, custom *categorizer.CustomCategories, edit hist.CategoryEdit) error {
	if !categorizer.IsKnownCategory(edit.NewCategory, custom) {
		return fmt.Errorf("unknown category: %s", edit.NewCategory)
	}
	saved, err := repo.LogCategoryEdit(ctx, edit)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Logged edit %d on comparison %s: %q -> %s\n", saved.ID, saved.ComparisonID, saved.Description, saved.NewCategory)
	return nil
}
