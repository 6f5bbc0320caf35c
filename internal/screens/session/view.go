package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/speechpath/speechpath/internal/progress"
	sess "github.com/speechpath/speechpath/internal/session"
	"github.com/speechpath/speechpath/internal/ui/components"
	"github.com/speechpath/speechpath/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Render(s.goal.ID))
	b.WriteString("  ")
	b.WriteString(theme.Body.Render(s.goal.Title))
	b.WriteString("\n")
	if s.childName != "" {
		b.WriteString(theme.Hint.Render(s.childName + " · " + s.category))
		b.WriteString("\n")
	}
	b.WriteString(theme.Hint.Render(streakLine(s.streak)))
	b.WriteString("\n\n")

	b.WriteString(components.Card(s.checklist.View(), cw))
	b.WriteString("\n")

	passed, marked := s.checklist.Counts()
	total := len(s.checklist.Labels)
	b.WriteString(theme.Hint.Render(fmt.Sprintf("%d/%d marked · %d passed", marked, total, passed)))
	b.WriteString("\n\n")

	b.WriteString(s.therapist.View())
	b.WriteString("\n")
	b.WriteString(s.date.View())
	b.WriteString("\n\n")

	switch s.phase {
	case phaseConfirm:
		verdict := theme.Fail.Render("not passed")
		if sess.IsMajority(passed, total) {
			verdict = theme.Pass.Render("passed")
		}
		btns := s.confirmButtons()
		b.WriteString(components.Card(
			"Finish session? "+verdict+" with "+fmt.Sprintf("%d/%d", passed, total)+"\n\n"+
				btns[0].View()+"  "+btns[1].View(), cw))
	case phaseSaving:
		b.WriteString(theme.Pending.Render("Saving..."))
	case phaseDone:
		b.WriteString(components.Card(resultView(s.result), cw))
		if s.warnMsg != "" {
			b.WriteString("\n")
			b.WriteString(theme.Pending.Render(s.warnMsg))
		}
	default:
		b.WriteString(components.ErrorLine(s.errMsg))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Render("\n"+b.String()))
}

func streakLine(st progress.StreakStatus) string {
	switch {
	case st.Passed:
		return fmt.Sprintf("Goal passed · %d sessions", st.TotalSessions)
	case st.TotalSessions == 0:
		return "No sessions yet"
	case st.StreakBroken:
		return fmt.Sprintf("Streak broken · %d sessions", st.TotalSessions)
	}
	return fmt.Sprintf("Streak %d/%d · %d sessions", st.ConsecutivePasses, progress.PassStreak, st.TotalSessions)
}

func resultView(r progress.Result) string {
	var lines []string
	if r.Session.IsPassed {
		lines = append(lines, theme.Pass.Render("✓ Session passed"))
	} else {
		lines = append(lines, theme.Fail.Render("✗ Session not passed"))
	}
	lines = append(lines, theme.Body.Render(fmt.Sprintf("%d of %d activities · streak %d",
		r.Session.ActivitiesPassed, r.Session.ActivitiesTotal, r.Streak)))
	if r.NewlyPassed {
		lines = append(lines, theme.Pass.Render("Goal "+r.Session.GoalID+" passed"))
	}
	if r.UnlockedID != "" {
		lines = append(lines, theme.Subtitle.Render("Unlocked "+r.UnlockedID))
	}
	lines = append(lines, theme.Hint.Render("Enter to return"))
	return strings.Join(lines, "\n")
}
