package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/speechpath/speechpath/internal/errs"
	"github.com/speechpath/speechpath/internal/progress"
)

var childCmd = &cobra.Command{
	Use:   "child",
	Short: "Register and list children",
}

var childAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a child",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := progress.ChildFields{}
		f.Name, _ = cmd.Flags().GetString("name")
		f.MRNumber, _ = cmd.Flags().GetString("mr")
		f.DOB, _ = cmd.Flags().GetString("dob")
		f.Gender, _ = cmd.Flags().GetString("gender")
		f.ParentName, _ = cmd.Flags().GetString("parent")

		b, err := openBackend(cmd, false)
		if err != nil {
			return err
		}
		defer b.Close()

		c, err := b.tracker.AddChild(contextOf(cmd), f)
		if err != nil && c.ID == "" {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s) as %s\n", c.Name, c.MRNumber, c.ID)
		return err
	},
}

var childListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered children (optionally filtered by name or MR number)",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")

		b, err := openBackend(cmd, false)
		if err != nil {
			return err
		}
		defer b.Close()

		kids := b.tracker.Store().FindChildren(search)
		if len(kids) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No children found.")
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-36s  %-24s  %-10s  %-10s  %-6s  %s\n",
			"ID", "Name", "MR", "DOB", "Gender", "Parent")
		fmt.Fprintln(out, strings.Repeat("─", 110))
		for _, c := range kids {
			fmt.Fprintf(out, "%-36s  %-24s  %-10s  %-10s  %-6s  %s\n",
				c.ID, truncate(c.Name, 24), c.MRNumber, c.DOB, c.Gender, c.ParentName)
		}
		fmt.Fprintf(out, "\n%d children\n", len(kids))
		return nil
	},
}

func init() {
	childAddCmd.Flags().String("name", "", "Child's name (required)")
	childAddCmd.Flags().String("mr", "", "Medical record number (required)")
	childAddCmd.Flags().String("dob", "", "Date of birth, YYYY-MM-DD (required)")
	childAddCmd.Flags().String("gender", "", "Gender (required)")
	childAddCmd.Flags().String("parent", "", "Parent or guardian name (required)")

	childListCmd.Flags().String("search", "", "Filter by name or MR number")

	childCmd.AddCommand(childAddCmd)
	childCmd.AddCommand(childListCmd)
}

// resolveChild accepts a child ID or an exact MR number.
func resolveChild(st *progress.Store, ref string) (progress.Child, error) {
	if c, err := st.Child(ref); err == nil {
		return c, nil
	}
	for _, c := range st.FindChildren(ref) {
		if c.MRNumber == ref {
			return c, nil
		}
	}
	return progress.Child{}, errs.NotFound("child", ref)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
