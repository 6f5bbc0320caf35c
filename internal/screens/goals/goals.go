package goals

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/speechpath/speechpath/internal/catalog"
	"github.com/speechpath/speechpath/internal/progress"
	"github.com/speechpath/speechpath/internal/router"
	"github.com/speechpath/speechpath/internal/screen"
	"github.com/speechpath/speechpath/internal/screens"
	sessionscreen "github.com/speechpath/speechpath/internal/screens/session"
	"github.com/speechpath/speechpath/internal/ui/layout"
	"github.com/speechpath/speechpath/internal/ui/theme"
)

type goalState int

const (
	stateLocked goalState = iota
	stateUnlocked
	stateCurrent
	statePassed
)

func (g goalState) icon() string {
	switch g {
	case statePassed:
		return "✓"
	case stateCurrent:
		return "●"
	case stateUnlocked:
		return "○"
	default:
		return "·"
	}
}

func (g goalState) label() string {
	switch g {
	case statePassed:
		return "passed"
	case stateCurrent:
		return "current"
	case stateUnlocked:
		return "open"
	default:
		return "locked"
	}
}

type rowKind int

const (
	rowLevelHeader rowKind = iota
	rowGoal
)

type row struct {
	kind  rowKind
	level progress.LevelStatus
	goal  catalog.Goal
	state goalState
}

// GoalsScreen lists a category's goals grouped by level, with each goal's
// state for the selected child.
type GoalsScreen struct {
	env          *screens.Env
	childID      string
	category     catalog.Category
	rows         []row
	progress     map[string]progress.GoalProgress
	cursor       int
	scrollOffset int
	errMsg       string
}

var _ screen.Screen = (*GoalsScreen)(nil)
var _ screen.KeyHintProvider = (*GoalsScreen)(nil)

// New creates a GoalsScreen.
func New(env *screens.Env, childID, categoryID string) *GoalsScreen {
	s := &GoalsScreen{env: env, childID: childID}
	cat, err := env.Tracker.Catalog().Category(categoryID)
	if err != nil {
		s.errMsg = err.Error()
		return s
	}
	s.category = cat
	return s
}

// Init rebuilds the rows so results of a finished session show up.
func (s *GoalsScreen) Init() tea.Cmd {
	s.load()
	return nil
}

func (s *GoalsScreen) Title() string {
	if s.category.ID == "" {
		return "Goals"
	}
	return s.category.ID + " " + s.category.Title
}

func (s *GoalsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start session"},
		{Key: "c", Description: "Current goal"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *GoalsScreen) load() {
	if s.category.ID == "" {
		return
	}
	q := s.env.Tracker.Query()
	gp, err := q.Progress(s.childID, s.category.ID)
	if err != nil {
		s.errMsg = err.Error()
		return
	}
	levels, err := q.Levels(s.childID, s.category.ID)
	if err != nil {
		s.errMsg = err.Error()
		return
	}
	cur, hasCur, err := q.CurrentGoal(s.childID, s.category.ID)
	if err != nil {
		s.errMsg = err.Error()
		return
	}
	s.progress = gp

	byID := make(map[string]catalog.Goal, len(s.category.Goals))
	for _, g := range s.category.Goals {
		byID[g.ID] = g
	}

	prevCursorGoal := ""
	if s.cursor < len(s.rows) && s.rows[s.cursor].kind == rowGoal {
		prevCursorGoal = s.rows[s.cursor].goal.ID
	}

	s.rows = s.rows[:0]
	for _, lvl := range levels {
		s.rows = append(s.rows, row{kind: rowLevelHeader, level: lvl})
		for _, id := range lvl.GoalIDs {
			st := stateLocked
			if p, ok := gp[id]; ok && p.Unlocked {
				st = stateUnlocked
				if p.Passed {
					st = statePassed
				} else if hasCur && cur.GoalID == id {
					st = stateCurrent
				}
			}
			s.rows = append(s.rows, row{kind: rowGoal, goal: byID[id], state: st})
		}
	}

	target := prevCursorGoal
	if target == "" && hasCur {
		target = cur.GoalID
	}
	s.jumpTo(target)
}

// jumpTo moves the cursor to the goal with id, or to the first goal.
func (s *GoalsScreen) jumpTo(id string) {
	first := -1
	for i, r := range s.rows {
		if r.kind != rowGoal {
			continue
		}
		if first < 0 {
			first = i
		}
		if r.goal.ID == id {
			s.cursor = i
			return
		}
	}
	if first >= 0 {
		s.cursor = first
	}
}

func (s *GoalsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "up", "k":
			s.moveCursor(-1)
		case "down", "j":
			s.moveCursor(1)
		case "c":
			if cur, ok, _ := s.env.Tracker.Query().CurrentGoal(s.childID, s.category.ID); ok {
				s.jumpTo(cur.GoalID)
			}
		case "enter":
			return s, s.startSession()
		}
	}
	return s, nil
}

// moveCursor moves the cursor by delta, skipping level headers.
func (s *GoalsScreen) moveCursor(delta int) {
	next := s.cursor + delta
	for next >= 0 && next < len(s.rows) {
		if s.rows[next].kind == rowGoal {
			s.cursor = next
			return
		}
		next += delta
	}
}

func (s *GoalsScreen) startSession() tea.Cmd {
	if s.cursor >= len(s.rows) {
		return nil
	}
	r := s.rows[s.cursor]
	if r.kind != rowGoal || r.state == stateLocked {
		return nil
	}
	return router.PushCmd(sessionscreen.New(s.env, s.childID, s.category.ID, r.goal))
}

// adjustScroll keeps the cursor and its level header visible.
func (s *GoalsScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	headerRow := s.cursor
	for headerRow > 0 && s.rows[headerRow-1].kind == rowLevelHeader {
		headerRow--
	}
	if headerRow < s.scrollOffset {
		s.scrollOffset = headerRow
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

func (s *GoalsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Fail.Render(s.errMsg))
	}
	if len(s.rows) == 0 {
		return ""
	}

	detail := s.renderDetail(width)
	listHeight := height - lipgloss.Height(detail) - 1
	s.adjustScroll(listHeight)

	var lines []string
	for i := s.scrollOffset; i < len(s.rows) && len(lines) < listHeight; i++ {
		r := s.rows[i]
		switch r.kind {
		case rowLevelHeader:
			lines = append(lines, s.renderLevelHeader(r.level, width))
		case rowGoal:
			lines = append(lines, s.renderGoalRow(r, i == s.cursor, width))
		}
	}
	return strings.Join(lines, "\n") + "\n\n" + detail
}

func (s *GoalsScreen) renderLevelHeader(lvl progress.LevelStatus, width int) string {
	text := fmt.Sprintf("LEVEL %d  %d/%d passed (%d%%)", lvl.Index+1, lvl.Passed, lvl.Total, lvl.CompletionPercent)
	style := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	if !lvl.Unlocked {
		text += fmt.Sprintf("  · opens at %d%% of the previous level", progress.LevelUnlockPercent)
		style = style.Foreground(theme.TextDim)
	}
	return style.Width(width).PaddingLeft(2).Render(text)
}

func (s *GoalsScreen) renderGoalRow(r row, selected bool, width int) string {
	nameWidth := max(width-30, 10)
	title := r.goal.Title
	if len([]rune(title)) > nameWidth {
		title = string([]rune(title)[:nameWidth-1]) + "…"
	}

	var style lipgloss.Style
	switch {
	case selected:
		style = theme.Selected
	case r.state == statePassed:
		style = lipgloss.NewStyle().Foreground(theme.Success)
	case r.state == stateLocked:
		style = lipgloss.NewStyle().Foreground(theme.TextDim)
	default:
		style = lipgloss.NewStyle().Foreground(theme.Text)
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}
	return fmt.Sprintf("  %s%s %s %s  %s",
		cursor,
		r.state.icon(),
		style.Render(fmt.Sprintf("%-8s", r.goal.ID)),
		style.Render(fmt.Sprintf("%-*s", nameWidth, title)),
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("%8s", r.state.label())),
	)
}

func (s *GoalsScreen) renderDetail(width int) string {
	r := s.rows[s.cursor]
	if r.kind != rowGoal {
		return ""
	}
	st := progress.Status(s.progress[r.goal.ID])

	var parts []string
	switch {
	case r.state == stateLocked:
		parts = append(parts, "Locked until the previous goal is passed")
	case st.Passed:
		parts = append(parts, fmt.Sprintf("Passed · %d sessions", st.TotalSessions))
	default:
		parts = append(parts, fmt.Sprintf("Streak %d/%d · %d sessions", st.ConsecutivePasses, progress.PassStreak, st.TotalSessions))
		if st.StreakBroken {
			parts = append(parts, theme.Fail.Render("streak broken"))
		}
	}
	return lipgloss.NewStyle().Width(width).PaddingLeft(4).Foreground(theme.TextDim).
		Render(strings.Join(parts, "  ·  "))
}
