package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/speechpath/speechpath/internal/router"
	"github.com/speechpath/speechpath/internal/screen"
	"github.com/speechpath/speechpath/internal/screens"
	"github.com/speechpath/speechpath/internal/store"
	"github.com/speechpath/speechpath/internal/ui/layout"
	"github.com/speechpath/speechpath/internal/ui/theme"
)

// maxHistoryRows caps how many sessions the screen loads.
const maxHistoryRows = 500

type historyLoadedMsg struct {
	Registered *store.ChildEventRecord
	Events     []store.SessionEventRecord
	Err        error
}

// HistoryScreen lists a child's recorded sessions, newest first.
type HistoryScreen struct {
	env        *screens.Env
	childID    string
	registered *store.ChildEventRecord
	events     []store.SessionEventRecord
	selected   int
	expanded   map[int]bool
	loaded     bool
	errMsg     string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(env *screens.Env, childID string) *HistoryScreen {
	return &HistoryScreen{
		env:      env,
		childID:  childID,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	tr := s.env.Tracker
	childID := s.childID
	return func() tea.Msg {
		events, err := tr.History(context.Background(), childID, store.QueryOpts{
			Limit:  maxHistoryRows,
			Newest: true,
		})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		reg, err := tr.Registration(context.Background(), childID)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		return historyLoadedMsg{Registered: reg, Events: events}
	}
}

func (s *HistoryScreen) Title() string {
	return "Session History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.registered = msg.Registered
			s.events = msg.Events
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, router.PopCmd
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.events)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	var b strings.Builder
	b.WriteString("\n")
	if s.registered != nil {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(registrationLine(s.registered))))
		b.WriteString("\n\n")
	}
	if len(s.events) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n  No sessions recorded yet."))
		return b.String()
	}

	for i, ev := range s.events {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		mark := theme.Pass.Render("✓")
		if !ev.IsPassed {
			mark = theme.Fail.Render("✗")
		}
		line := fmt.Sprintf("%s%s  %-6s %-6s %d/%d  %s",
			prefix, ev.SessionDate.Format("Jan 02, 2006"), ev.CategoryID, ev.GoalID,
			ev.ActivitiesPassed, ev.ActivitiesTotal, ev.TherapistName)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)+" "+mark))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, d := range details(ev) {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("    "+d)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func registrationLine(reg *store.ChildEventRecord) string {
	return fmt.Sprintf("Registered %s as %s (%s)",
		reg.Timestamp.Local().Format("Jan 02, 2006"), reg.Name, reg.MRNumber)
}

func details(ev store.SessionEventRecord) []string {
	out := []string{
		fmt.Sprintf("Recorded %s", ev.Timestamp.Local().Format("Jan 02, 2006 15:04")),
	}
	if ev.GoalPassed {
		out = append(out, "Goal "+ev.GoalID+" passed")
	}
	if ev.UnlockedGoalID != "" {
		out = append(out, "Unlocked "+ev.UnlockedGoalID)
	}
	if !ev.GoalPassed && ev.UnlockedGoalID == "" {
		out = append(out, "No goal change")
	}
	return out
}
