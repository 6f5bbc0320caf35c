package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/speechpath/speechpath/internal/catalog"
	"github.com/speechpath/speechpath/internal/progress"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show a child's current goals, unlocked goals and levels",
	RunE: func(cmd *cobra.Command, args []string) error {
		childRef, _ := cmd.Flags().GetString("child")
		catID, _ := cmd.Flags().GetString("category")

		b, err := openBackend(cmd, false)
		if err != nil {
			return err
		}
		defer b.Close()

		child, err := resolveChild(b.tracker.Store(), childRef)
		if err != nil {
			return err
		}

		cats := b.tracker.Catalog().ListCategories()
		if catID != "" {
			c, err := b.tracker.Catalog().Category(catID)
			if err != nil {
				return err
			}
			cats = []catalog.Category{c}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", child.Name, child.MRNumber)
		q := b.tracker.Query()
		for _, c := range cats {
			if err := printCategoryProgress(cmd, q, child.ID, c); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	progressCmd.Flags().String("child", "", "Child ID or MR number (required)")
	progressCmd.Flags().String("category", "", "Limit to one category ID")
	_ = progressCmd.MarkFlagRequired("child")
}

func printCategoryProgress(cmd *cobra.Command, q *progress.Query, childID string, c catalog.Category) error {
	out := cmd.OutOrStdout()

	st, err := q.CategoryStatus(childID, c.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s  %s  %d/%d goals passed (%d%%)\n", c.ID, c.Title, st.Passed, st.Total, st.Percent)
	fmt.Fprintln(out, strings.Repeat("─", 70))

	cur, ok, err := q.CurrentGoal(childID, c.ID)
	if err != nil {
		return err
	}
	switch {
	case !ok:
		fmt.Fprintln(out, "Current: none")
	case st.Exhausted:
		fmt.Fprintf(out, "Current: %s (category complete)\n", cur.GoalID)
	default:
		s := progress.Status(cur.Progress)
		fmt.Fprintf(out, "Current: %s  streak %d/%d  %d sessions\n",
			cur.GoalID, s.ConsecutivePasses, progress.PassStreak, s.TotalSessions)
	}

	unlocked, err := q.UnlockedGoals(childID, c.ID)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(unlocked))
	for _, e := range unlocked {
		id := e.GoalID
		if e.Progress.Passed {
			id += "✓"
		}
		ids = append(ids, id)
	}
	fmt.Fprintf(out, "Unlocked: %s\n", strings.Join(ids, " "))

	levels, err := q.Levels(childID, c.ID)
	if err != nil {
		return err
	}
	for _, l := range levels {
		state := "open"
		if !l.Unlocked {
			state = "locked"
		}
		fmt.Fprintf(out, "  Level %-2d  %-6s  %d/%d (%3d%%)  %s\n",
			l.Index+1, state, l.Passed, l.Total, l.CompletionPercent, strings.Join(l.GoalIDs, " "))
	}
	return nil
}
