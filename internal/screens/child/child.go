package child

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/speechpath/speechpath/internal/progress"
	"github.com/speechpath/speechpath/internal/router"
	"github.com/speechpath/speechpath/internal/screen"
	"github.com/speechpath/speechpath/internal/screens"
	"github.com/speechpath/speechpath/internal/screens/goals"
	"github.com/speechpath/speechpath/internal/screens/history"
	"github.com/speechpath/speechpath/internal/screens/report"
	"github.com/speechpath/speechpath/internal/ui/components"
	"github.com/speechpath/speechpath/internal/ui/layout"
	"github.com/speechpath/speechpath/internal/ui/theme"
)

// ChildScreen shows one child's details and the goal categories.
type ChildScreen struct {
	env     *screens.Env
	childID string
	child   progress.Child
	menu    components.Menu
	status  map[string]progress.CategoryStatus
	errMsg  string
}

var _ screen.Screen = (*ChildScreen)(nil)
var _ screen.KeyHintProvider = (*ChildScreen)(nil)

// New creates a ChildScreen for childID.
func New(env *screens.Env, childID string) *ChildScreen {
	return &ChildScreen{env: env, childID: childID}
}

func (s *ChildScreen) Init() tea.Cmd {
	s.load()
	name := s.child.Name
	return func() tea.Msg { return screens.ChildSelectedMsg{Name: name} }
}

func (s *ChildScreen) Title() string {
	return "Goal categories"
}

func (s *ChildScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Goals"},
		{Key: "r", Description: "Report"},
		{Key: "h", Description: "History"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ChildScreen) load() {
	tr := s.env.Tracker
	c, err := tr.Store().Child(s.childID)
	if err != nil {
		s.errMsg = err.Error()
		return
	}
	s.child = c
	s.status = make(map[string]progress.CategoryStatus)

	var items []components.MenuItem
	for _, cat := range tr.Catalog().ListCategories() {
		st, err := tr.Query().CategoryStatus(s.childID, cat.ID)
		if err != nil {
			s.errMsg = err.Error()
			return
		}
		s.status[cat.ID] = st

		detail := fmt.Sprintf("%d/%d goals passed", st.Passed, st.Total)
		if st.Exhausted {
			detail += " · complete"
		} else if cur, ok, _ := tr.Query().CurrentGoal(s.childID, cat.ID); ok {
			detail += " · current " + cur.GoalID
		}

		catID := cat.ID
		items = append(items, components.MenuItem{
			Label:  fmt.Sprintf("%-6s %s", cat.ID, cat.Title),
			Detail: detail,
			Action: func() tea.Cmd {
				return router.PushCmd(goals.New(s.env, s.childID, catID))
			},
		})
	}
	s.menu.SetItems(items)
}

func (s *ChildScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "r":
			return s, router.PushCmd(report.New(s.env, s.childID))
		case "h":
			return s, router.PushCmd(history.New(s.env, s.childID))
		}
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *ChildScreen) View(width, height int) string {
	if s.errMsg != "" {
		return components.Center(components.ErrorLine(s.errMsg), width, height)
	}
	cw := components.ContentWidth(width)
	c := s.child

	info := strings.Join([]string{
		theme.Label.Render("MR number") + c.MRNumber,
		theme.Label.Render("Date of birth") + c.DOB,
		theme.Label.Render("Gender") + c.Gender,
		theme.Label.Render("Parent") + c.ParentName,
		theme.Label.Render("Registered") + c.CreatedAt.Format("Jan 02, 2006"),
	}, "\n")

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Render(c.Name))
	b.WriteString("\n\n")
	b.WriteString(components.Card(info, cw))
	b.WriteString("\n\n")
	b.WriteString(s.menu.View(0))
	b.WriteString("\n")

	if len(s.menu.Items) > 0 {
		cat := s.env.Tracker.Catalog().ListCategories()[s.menu.Selected]
		st := s.status[cat.ID]
		b.WriteString(components.NewProgressBar(cat.ID, st.Percent, true, cw).View())
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Render("\n"+b.String()))
}
