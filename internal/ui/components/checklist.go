package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/speechpath/speechpath/internal/ui/theme"
)

// Mark is the state of one checklist row.
type Mark int

const (
	Unmarked Mark = iota
	Passed
	Failed
)

// Checklist is a list of rows each marked pass or fail. Keys: up/down to
// move, p or right to pass, f or left to fail, space to clear.
type Checklist struct {
	Labels   []string
	Marks    []Mark
	Selected int
	Locked   bool
}

// NewChecklist creates a checklist with every row unmarked.
func NewChecklist(labels []string) Checklist {
	return Checklist{
		Labels: labels,
		Marks:  make([]Mark, len(labels)),
	}
}

// ChecklistMarkedMsg is emitted when a row changes.
type ChecklistMarkedMsg struct {
	Index int
	Mark  Mark
}

// Update handles navigation and marking.
func (c Checklist) Update(msg tea.Msg) (Checklist, tea.Cmd) {
	if c.Locked {
		return c, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(c.Labels) == 0 {
		return c, nil
	}

	mark := func(m Mark) (Checklist, tea.Cmd) {
		c.Marks[c.Selected] = m
		idx := c.Selected
		if m != Unmarked && c.Selected < len(c.Labels)-1 {
			c.Selected++
		}
		return c, func() tea.Msg { return ChecklistMarkedMsg{Index: idx, Mark: m} }
	}

	switch kmsg.String() {
	case "up", "k":
		if c.Selected > 0 {
			c.Selected--
		}
	case "down", "j":
		if c.Selected < len(c.Labels)-1 {
			c.Selected++
		}
	case "p", "right":
		return mark(Passed)
	case "f", "left":
		return mark(Failed)
	case "space", " ":
		return mark(Unmarked)
	}
	return c, nil
}

// Counts returns passed and marked rows.
func (c Checklist) Counts() (passed, marked int) {
	for _, m := range c.Marks {
		switch m {
		case Passed:
			passed++
			marked++
		case Failed:
			marked++
		}
	}
	return passed, marked
}

// View renders one row per label.
func (c Checklist) View() string {
	var b strings.Builder
	for i, label := range c.Labels {
		prefix := "  "
		if i == c.Selected && !c.Locked {
			prefix = "▸ "
		}

		var status string
		switch c.Marks[i] {
		case Passed:
			status = theme.Pass.Render("[✓ pass]")
		case Failed:
			status = theme.Fail.Render("[✗ fail]")
		default:
			status = theme.Pending.Render("[ .... ]")
		}

		line := fmt.Sprintf("%s%-22s %s", prefix, label, status)
		if i == c.Selected && !c.Locked {
			line = theme.Selected.Render(fmt.Sprintf("%s%-22s ", prefix, label)) + status
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
