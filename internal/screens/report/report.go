package report

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/speechpath/speechpath/internal/progress"
	"github.com/speechpath/speechpath/internal/router"
	"github.com/speechpath/speechpath/internal/screen"
	"github.com/speechpath/speechpath/internal/screens"
	"github.com/speechpath/speechpath/internal/ui/components"
	"github.com/speechpath/speechpath/internal/ui/layout"
	"github.com/speechpath/speechpath/internal/ui/theme"
)

// ReportScreen displays a child's progress report.
type ReportScreen struct {
	env     *screens.Env
	childID string
	report  progress.ChildReport
	errMsg  string
}

var _ screen.Screen = (*ReportScreen)(nil)
var _ screen.KeyHintProvider = (*ReportScreen)(nil)

// New creates a new ReportScreen.
func New(env *screens.Env, childID string) *ReportScreen {
	return &ReportScreen{env: env, childID: childID}
}

func (s *ReportScreen) Init() tea.Cmd {
	r, err := s.env.Tracker.Query().ChildReport(s.childID)
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.report = r
	s.errMsg = ""
	return nil
}

func (s *ReportScreen) Title() string {
	return "Progress Report"
}

func (s *ReportScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Back"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ReportScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, router.PopCmd
		}
	}
	return s, nil
}

func (s *ReportScreen) View(width, height int) string {
	if s.errMsg != "" {
		return components.Center(components.ErrorLine(s.errMsg), width, height)
	}
	r := s.report
	cw := components.ContentWidth(width)
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(theme.Title.Render(r.Child.Name)))
	b.WriteString("\n")
	b.WriteString(center(theme.Hint.Render(fmt.Sprintf("%s · registered %s",
		r.Child.MRNumber, r.CreatedAt.Format("Jan 02, 2006")))))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Sessions: %d        Passed: %d        Success rate: %s",
		r.TotalSessions, r.PassedSessions,
		theme.RateColor(r.SuccessRatePercent).Render(fmt.Sprintf("%d%%", r.SuccessRatePercent)))
	b.WriteString(center(theme.Body.Render(stats)))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw))
	b.WriteString(center(theme.Hint.Render("Categories")))
	b.WriteString("\n")
	b.WriteString(center(divider))
	b.WriteString("\n\n")

	q := s.env.Tracker.Query()
	for _, cat := range s.env.Tracker.Catalog().ListCategories() {
		line := theme.Subtitle.Render(cat.ID + " " + cat.Title)
		st, ok := r.CategoryProgress[cat.ID]
		if !ok {
			b.WriteString(center(lipgloss.NewStyle().Width(cw).Render(
				line + "\n" + theme.Hint.Render("No sessions yet"))))
			b.WriteString("\n\n")
			continue
		}

		goalsLine := ""
		if cs, err := q.CategoryStatus(s.childID, cat.ID); err == nil {
			goalsLine = fmt.Sprintf(" · %d/%d goals passed", cs.Passed, cs.Total)
		}
		bar := components.NewProgressBar("", st.SuccessRatePercent, true, cw)
		bar.RateColors = true
		block := line + "\n" +
			theme.Hint.Render(fmt.Sprintf("%d/%d sessions passed%s", st.Passed, st.Total, goalsLine)) + "\n" +
			bar.View()
		b.WriteString(center(lipgloss.NewStyle().Width(cw).Render(block)))
		b.WriteString("\n\n")
	}

	if last := r.LastSession; last != nil {
		verdict := theme.Pass.Render("passed")
		if !last.IsPassed {
			verdict = theme.Fail.Render("not passed")
		}
		b.WriteString(center(theme.Hint.Render("Last session")))
		b.WriteString("\n")
		b.WriteString(center(divider))
		b.WriteString("\n")
		b.WriteString(center(lipgloss.NewStyle().Width(cw).Render(fmt.Sprintf("%s  %s  %d/%d  %s  %s",
			last.Date.Format("Jan 02, 2006"), last.GoalID,
			last.ActivitiesPassed, last.ActivitiesTotal, verdict, last.TherapistName))))
		b.WriteString("\n")
	}

	return b.String()
}
