package children

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/speechpath/speechpath/internal/progress"
	"github.com/speechpath/speechpath/internal/router"
	"github.com/speechpath/speechpath/internal/screen"
	"github.com/speechpath/speechpath/internal/screens"
	"github.com/speechpath/speechpath/internal/screens/addchild"
	"github.com/speechpath/speechpath/internal/screens/child"
	"github.com/speechpath/speechpath/internal/ui/components"
	"github.com/speechpath/speechpath/internal/ui/layout"
	"github.com/speechpath/speechpath/internal/ui/theme"
)

// ChildrenScreen is the home screen: the list of registered children with
// search.
type ChildrenScreen struct {
	env       *screens.Env
	search    components.TextInput
	searching bool
	menu      components.Menu
	shown     []progress.Child
}

var _ screen.Screen = (*ChildrenScreen)(nil)
var _ screen.KeyHintProvider = (*ChildrenScreen)(nil)

// New creates a ChildrenScreen.
func New(env *screens.Env) *ChildrenScreen {
	s := &ChildrenScreen{
		env:    env,
		search: components.NewTextInput("Search", "name or MR number", false, 64),
	}
	s.refresh()
	return s
}

// Init reloads the list; it runs again whenever the screen is revealed by a
// pop, so new children show up.
func (s *ChildrenScreen) Init() tea.Cmd {
	s.refresh()
	return func() tea.Msg { return screens.ChildSelectedMsg{} }
}

func (s *ChildrenScreen) Title() string {
	return "Children"
}

func (s *ChildrenScreen) KeyHints() []layout.KeyHint {
	if s.searching {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Done"},
			{Key: "Esc", Description: "Clear"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "/", Description: "Search"},
		{Key: "a", Description: "Add child"},
		{Key: "l", Description: "Log out"},
	}
}

func (s *ChildrenScreen) refresh() {
	s.shown = s.env.Tracker.Store().FindChildren(s.search.Value())
	items := make([]components.MenuItem, 0, len(s.shown))
	for _, c := range s.shown {
		id := c.ID
		items = append(items, components.MenuItem{
			Label:  c.Name,
			Detail: fmt.Sprintf("%s · DOB %s · %s", c.MRNumber, c.DOB, c.Gender),
			Action: func() tea.Cmd {
				return router.PushCmd(child.New(s.env, id))
			},
		})
	}
	s.menu.SetItems(items)
}

func (s *ChildrenScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, isKey := msg.(tea.KeyMsg)

	if s.searching {
		if isKey {
			switch kmsg.String() {
			case "enter":
				s.searching = false
				s.search.Blur()
				return s, nil
			case "esc":
				s.searching = false
				s.search.SetValue("")
				s.search.Blur()
				s.refresh()
				return s, nil
			}
		}
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(msg)
		s.refresh()
		return s, cmd
	}

	if isKey {
		switch kmsg.String() {
		case "/":
			s.searching = true
			return s, s.search.Focus()
		case "a":
			return s, router.PushCmd(addchild.New(s.env))
		case "l":
			return s, func() tea.Msg { return screens.LogoutMsg{} }
		}
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *ChildrenScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.search.View())
	b.WriteString("\n\n")

	total := len(s.env.Tracker.Store().ListChildren())
	switch {
	case total == 0:
		b.WriteString(theme.Hint.Render("No children registered yet. Press a to add one."))
	case len(s.shown) == 0:
		b.WriteString(theme.Hint.Render("No children match the search."))
	default:
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(fmt.Sprintf("%d of %d children", len(s.shown), total)))
		b.WriteString("\n\n")
		b.WriteString(s.menu.View(max(height-8, 3)))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(cw).Render(b.String()))
}
