// Package categories manages the category list
package categories

import (
	"fmt"
	"text/tabwriter"

	"fjacquet/statement-compare/cmd/root"
	"fjacquet/statement-compare/internal/logging"
	"fjacquet/statement-compare/internal/models"

	"github.com/spf13/cobra"
)

// Cmd represents the categories command
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "List and manage categories",
	Long: `List the built-in categories and manage custom categories. Custom
categories can be assigned when editing a comparison but are never produced by
the keyword rules.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in and custom categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Category\tLabel\tKind")
		for _, name := range models.BuiltinCategories() {
			fmt.Fprintf(tw, "%s\t%s\tbuilt-in\n", name, models.CategoryLabel(name))
		}
		for _, name := range c.GetCustomCategories().List() {
			fmt.Fprintf(tw, "%s\t%s\tcustom\n", name, name)
		}
		return tw.Flush()
	},
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a custom category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.GetCustomCategories().Add(args[0]); err != nil {
			return err
		}
		if err := c.SaveCustomCategories(); err != nil {
			return fmt.Errorf("failed to save custom categories: %w", err)
		}
		root.Log.Info("Custom category added", logging.F(logging.FieldCategory, args[0]))
		fmt.Fprintf(cmd.OutOrStdout(), "Added custom category %q\n", args[0])
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a custom category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		if !c.GetCustomCategories().Remove(args[0]) {
			return fmt.Errorf("custom category %q not found", args[0])
		}
		if err := c.SaveCustomCategories(); err != nil {
			return fmt.Errorf("failed to save custom categories: %w", err)
		}
		root.Log.Info("Custom category removed", logging.F(logging.FieldCategory, args[0]))
		fmt.Fprintf(cmd.OutOrStdout(), "Removed custom category %q\n", args[0])
		return nil
	},
}

func init() {
	Cmd.AddCommand(listCmd, addCmd, removeCmd)
}
