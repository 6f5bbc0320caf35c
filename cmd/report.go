package cmd

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/speechpath/speechpath/internal/progress"
	"github.com/speechpath/speechpath/internal/ui/components"
	"github.com/speechpath/speechpath/internal/ui/theme"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a child's progress report",
	RunE: func(cmd *cobra.Command, args []string) error {
		childRef, _ := cmd.Flags().GetString("child")

		b, err := openBackend(cmd, false)
		if err != nil {
			return err
		}
		defer b.Close()

		child, err := resolveChild(b.tracker.Store(), childRef)
		if err != nil {
			return err
		}
		r, err := b.tracker.Query().ChildReport(child.ID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderReport(r, 60))
		return nil
	},
}

func init() {
	reportCmd.Flags().String("child", "", "Child ID or MR number (required)")
	_ = reportCmd.MarkFlagRequired("child")
}

func renderReport(r progress.ChildReport, width int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(r.Child.Name))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("%s · DOB %s · registered %s",
		r.Child.MRNumber, r.Child.DOB, r.CreatedAt.Format("2006-01-02"))))
	b.WriteString("\n\n")

	b.WriteString(theme.Label.Render("Sessions") + fmt.Sprintf("%d", r.TotalSessions) + "\n")
	b.WriteString(theme.Label.Render("Passed") + fmt.Sprintf("%d", r.PassedSessions) + "\n")
	b.WriteString(theme.Label.Render("Success rate") +
		theme.RateColor(r.SuccessRatePercent).Render(fmt.Sprintf("%d%%", r.SuccessRatePercent)) + "\n")

	cats := make([]string, 0, len(r.CategoryProgress))
	for id := range r.CategoryProgress {
		cats = append(cats, id)
	}
	slices.Sort(cats)
	if len(cats) > 0 {
		b.WriteString("\n")
	}
	for _, id := range cats {
		st := r.CategoryProgress[id]
		bar := components.NewProgressBar(fmt.Sprintf("%-6s %2d/%-2d", id, st.Passed, st.Total),
			st.SuccessRatePercent, true, width)
		bar.RateColors = true
		b.WriteString(bar.View())
		b.WriteString("\n")
	}

	if last := r.LastSession; last != nil {
		verdict := theme.Pass.Render("passed")
		if !last.IsPassed {
			verdict = theme.Fail.Render("not passed")
		}
		b.WriteString("\n")
		b.WriteString(theme.Label.Render("Last session") + fmt.Sprintf("%s %s %s %s %d/%d by %s",
			last.Date.Format("2006-01-02"), last.CategoryID, last.GoalID, verdict,
			last.ActivitiesPassed, last.ActivitiesTotal, last.TherapistName))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1).
		Render(b.String())
}
