package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/speechpath/speechpath/internal/progress"
	"github.com/speechpath/speechpath/internal/session"
	"github.com/speechpath/speechpath/internal/store"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Record therapy sessions and list past ones",
}

var sessionRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record one session against a goal",
	Long: `Record one therapy session. --marks grades each activity in order:
p = passed, f = failed. The session passes when more than half pass.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		childRef, _ := cmd.Flags().GetString("child")
		catID, _ := cmd.Flags().GetString("category")
		goalID, _ := cmd.Flags().GetString("goal")
		marks, _ := cmd.Flags().GetString("marks")
		therapist, _ := cmd.Flags().GetString("therapist")
		dateStr, _ := cmd.Flags().GetString("date")

		grades, err := parseMarks(marks)
		if err != nil {
			return err
		}
		now := time.Now()
		date, err := parseSessionDate(dateStr, now)
		if err != nil {
			return err
		}

		b, err := openBackend(cmd, false)
		if err != nil {
			return err
		}
		defer b.Close()

		child, err := resolveChild(b.tracker.Store(), childRef)
		if err != nil {
			return err
		}

		rec := session.New(session.Target{
			ChildID:    child.ID,
			CategoryID: catID,
			GoalID:     goalID,
		}, len(grades))
		for i, g := range grades {
			if err := rec.Mark(i, g); err != nil {
				return err
			}
		}
		if err := rec.SetTherapist(therapist); err != nil {
			return err
		}
		if err := rec.SetDate(date); err != nil {
			return err
		}

		res, err := b.tracker.Submit(contextOf(cmd), rec)
		if err != nil && !rec.Submitted() {
			return err
		}
		printResult(cmd, child, res)
		return err
	},
}

var sessionHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List a child's recorded sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		childRef, _ := cmd.Flags().GetString("child")
		limit, _ := cmd.Flags().GetInt("limit")
		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")

		opts, err := historyOpts(limit, fromStr, toStr, time.Local)
		if err != nil {
			return err
		}

		b, err := openBackend(cmd, false)
		if err != nil {
			return err
		}
		defer b.Close()

		child, err := resolveChild(b.tracker.Store(), childRef)
		if err != nil {
			return err
		}
		events, err := b.tracker.History(contextOf(cmd), child.ID, opts)
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}
		slices.Reverse(events)
		reg, err := b.tracker.Registration(contextOf(cmd), child.ID)
		if err != nil {
			return fmt.Errorf("query registration: %w", err)
		}

		out := cmd.OutOrStdout()
		if reg != nil {
			fmt.Fprintf(out, "Registered %s as %s (%s), seq %d\n\n",
				reg.Timestamp.Local().Format("2006-01-02"), reg.Name, reg.MRNumber, reg.Sequence)
		}
		if len(events) == 0 {
			fmt.Fprintf(out, "No sessions recorded for %s.\n", child.Name)
			return nil
		}

		fmt.Fprintf(out, "%-5s  %-10s  %-6s  %-6s  %-5s  %-4s  %-20s  %s\n",
			"Seq", "Date", "Cat", "Goal", "Score", "OK", "Therapist", "Change")
		fmt.Fprintln(out, strings.Repeat("─", 90))
		for _, e := range events {
			ok := "✓"
			if !e.IsPassed {
				ok = "✗"
			}
			var change []string
			if e.GoalPassed {
				change = append(change, "goal passed")
			}
			if e.UnlockedGoalID != "" {
				change = append(change, "unlocked "+e.UnlockedGoalID)
			}
			fmt.Fprintf(out, "%-5d  %-10s  %-6s  %-6s  %2d/%-2d  %-4s  %-20s  %s\n",
				e.Sequence, e.SessionDate.Format("2006-01-02"), e.CategoryID, e.GoalID,
				e.ActivitiesPassed, e.ActivitiesTotal, ok, truncate(e.TherapistName, 20),
				strings.Join(change, ", "))
		}
		fmt.Fprintf(out, "\n%d sessions\n", len(events))
		return nil
	},
}

func init() {
	sessionRecordCmd.Flags().String("child", "", "Child ID or MR number (required)")
	sessionRecordCmd.Flags().String("category", "", "Category ID, e.g. F80.2 (required)")
	sessionRecordCmd.Flags().String("goal", "", "Goal ID, e.g. RL.01 (required)")
	sessionRecordCmd.Flags().String("marks", "", "Activity grades in order, e.g. ppfpf (required)")
	sessionRecordCmd.Flags().String("therapist", "", "Therapist name (required)")
	sessionRecordCmd.Flags().String("date", "", "Session date, YYYY-MM-DD (default today)")
	for _, f := range []string{"child", "category", "goal", "marks", "therapist"} {
		_ = sessionRecordCmd.MarkFlagRequired(f)
	}

	sessionHistoryCmd.Flags().String("child", "", "Child ID or MR number (required)")
	sessionHistoryCmd.Flags().Int("limit", 0, "Show only the most recent N sessions")
	sessionHistoryCmd.Flags().String("from", "", "First session date to include, YYYY-MM-DD")
	sessionHistoryCmd.Flags().String("to", "", "Last session date to include, YYYY-MM-DD")
	_ = sessionHistoryCmd.MarkFlagRequired("child")

	sessionCmd.AddCommand(sessionRecordCmd)
	sessionCmd.AddCommand(sessionHistoryCmd)
}

// parseMarks turns "ppf" into activity grades. Anything other than p or f
// is rejected so a typo never records an unmarked activity.
func parseMarks(s string) ([]session.ActivityStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, errors.New("--marks needs at least one activity")
	}
	out := make([]session.ActivityStatus, 0, len(s))
	for i, r := range s {
		switch r {
		case 'p':
			out = append(out, session.Pass)
		case 'f':
			out = append(out, session.Fail)
		default:
			return nil, fmt.Errorf("--marks: activity %d is %q, want p or f", i+1, r)
		}
	}
	return out, nil
}

// parseSessionDate reads YYYY-MM-DD in local time. Today maps to now so the
// session is never in the future.
func parseSessionDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
	}
	if y, m, day := now.Date(); d.Year() == y && d.Month() == m && d.Day() == day {
		return now, nil
	}
	return d, nil
}

// historyOpts builds the event query for session history. --to names the
// last day included, so the bound is the start of the following day.
func historyOpts(limit int, from, to string, loc *time.Location) (store.QueryOpts, error) {
	if limit < 0 {
		return store.QueryOpts{}, errors.New("--limit must not be negative")
	}
	opts := store.QueryOpts{Limit: limit, Newest: true}
	if from != "" {
		d, err := time.ParseInLocation("2006-01-02", from, loc)
		if err != nil {
			return store.QueryOpts{}, fmt.Errorf("--from must be YYYY-MM-DD: %w", err)
		}
		opts.From = d
	}
	if to != "" {
		d, err := time.ParseInLocation("2006-01-02", to, loc)
		if err != nil {
			return store.QueryOpts{}, fmt.Errorf("--to must be YYYY-MM-DD: %w", err)
		}
		opts.To = d.AddDate(0, 0, 1)
	}
	if !opts.From.IsZero() && !opts.To.IsZero() && !opts.From.Before(opts.To) {
		return store.QueryOpts{}, errors.New("--from must not be after --to")
	}
	return opts, nil
}

func printResult(cmd *cobra.Command, child progress.Child, res progress.Result) {
	out := cmd.OutOrStdout()
	s := res.Session
	verdict := "passed"
	if !s.IsPassed {
		verdict = "not passed"
	}
	fmt.Fprintf(out, "%s · %s %s: session %s (%d/%d), streak %d\n",
		child.Name, s.CategoryID, s.GoalID, verdict, s.ActivitiesPassed, s.ActivitiesTotal, res.Streak)
	if res.NewlyPassed {
		fmt.Fprintf(out, "Goal %s passed\n", s.GoalID)
	}
	if res.UnlockedID != "" {
		fmt.Fprintf(out, "Unlocked %s\n", res.UnlockedID)
	}
}
