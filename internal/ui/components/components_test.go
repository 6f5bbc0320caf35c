package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r, Text: string(r)} }

func TestChecklist_MarkAdvances(t *testing.T) {
	c := NewChecklist([]string{"Activity 1", "Activity 2", "Activity 3"})

	c, _ = c.Update(key('p'))
	c, _ = c.Update(key('f'))
	c, cmd := c.Update(key('p'))

	if cmd == nil {
		t.Fatal("expected a marked message")
	}
	if msg, ok := cmd().(ChecklistMarkedMsg); !ok || msg.Index != 2 || msg.Mark != Passed {
		t.Errorf("msg = %#v", cmd())
	}
	want := []Mark{Passed, Failed, Passed}
	for i := range want {
		if c.Marks[i] != want[i] {
			t.Errorf("Marks[%d] = %v, want %v", i, c.Marks[i], want[i])
		}
	}
	if c.Selected != 2 {
		t.Errorf("Selected = %d, want 2 (stays on last row)", c.Selected)
	}
	if p, m := c.Counts(); p != 2 || m != 3 {
		t.Errorf("Counts = %d, %d, want 2, 3", p, m)
	}
}

func TestChecklist_LockedIgnoresKeys(t *testing.T) {
	c := NewChecklist([]string{"a"})
	c.Locked = true
	c, _ = c.Update(key('p'))
	if c.Marks[0] != Unmarked {
		t.Error("locked checklist should not change")
	}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "one", Disabled: true},
		{Label: "two"},
		{Label: "three", Disabled: true},
		{Label: "four"},
	})
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want 1", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 3 {
		t.Errorf("Selected = %d, want 3", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 1 {
		t.Errorf("Selected = %d, want 1", m.Selected)
	}
}

func TestMenu_ScrollWindow(t *testing.T) {
	items := make([]MenuItem, 10)
	for i := range items {
		items[i] = MenuItem{Label: string(rune('a' + i))}
	}
	m := NewMenu(items)
	for range 6 {
		m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	view := m.View(3)
	if got := strings.Count(view, "\n"); got != 3 {
		t.Errorf("rendered %d rows, want 3", got)
	}
	if !strings.Contains(view, "g") || strings.Contains(view, "  a") {
		t.Errorf("window should follow the selection:\n%s", view)
	}
}

func TestProgressBar_Clamps(t *testing.T) {
	for _, pct := range []int{-20, 0, 55, 100, 140} {
		bar := NewProgressBar("", pct, true, 30).View()
		if bar == "" {
			t.Errorf("empty bar for %d", pct)
		}
	}
	if !strings.Contains(NewProgressBar("", 140, true, 30).View(), "100%") {
		t.Error("percent above 100 should render as 100%")
	}
}

func TestButton_ShortcutAndEnter(t *testing.T) {
	pressed := 0
	onPress := func() tea.Cmd {
		pressed++
		return func() tea.Msg { return nil }
	}
	save := NewButton("Save session", false, onPress).WithShortcut("y").WithTone(TonePass)

	if _, cmd := save.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("enter should not fire an unfocused button")
	}
	if _, cmd := save.Update(key('y')); cmd == nil {
		t.Error("shortcut should fire an unfocused button")
	}
	if _, cmd := save.Update(key('n')); cmd != nil {
		t.Error("other keys should be ignored")
	}

	save.Active = true
	if _, cmd := save.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd == nil {
		t.Error("enter should fire the focused button")
	}
	if pressed != 2 {
		t.Errorf("pressed = %d, want 2", pressed)
	}
	if v := save.View(); !strings.Contains(v, "[y] Save session") || !strings.Contains(v, "▸") {
		t.Errorf("View() = %q", v)
	}
}
