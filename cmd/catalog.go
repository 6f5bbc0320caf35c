package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/speechpath/speechpath/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the goal catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories, or the goals of one category",
	RunE: func(cmd *cobra.Command, args []string) error {
		catID, _ := cmd.Flags().GetString("category")

		cat, err := catalog.Default()
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		out := cmd.OutOrStdout()

		if catID == "" {
			fmt.Fprintf(out, "%-8s  %-40s  %s\n", "ID", "Title", "Goals")
			fmt.Fprintln(out, strings.Repeat("─", 60))
			for _, c := range cat.ListCategories() {
				fmt.Fprintf(out, "%-8s  %-40s  %5d\n", c.ID, c.Title, len(c.Goals))
			}
			return nil
		}

		c, err := cat.Category(catID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s  %s\n\n", c.ID, c.Title)
		for i, g := range c.Goals {
			fmt.Fprintf(out, "%3d  %-8s  %s\n", i+1, g.ID, g.Title)
		}
		fmt.Fprintf(out, "\n%d goals\n", len(c.Goals))
		return nil
	},
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Find goals by ID or title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Default()
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		out := cmd.OutOrStdout()

		results := cat.Search(args[0])
		if len(results) == 0 {
			fmt.Fprintf(out, "No goals match %q.\n", args[0])
			return nil
		}
		for _, r := range results {
			fmt.Fprintf(out, "%-8s  %-8s  %s\n", r.CategoryID, r.Goal.ID, r.Goal.Title)
		}
		fmt.Fprintf(out, "\n%d goals\n", len(results))
		return nil
	},
}

func init() {
	catalogListCmd.Flags().String("category", "", "Category ID (e.g. F80.2)")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
}
