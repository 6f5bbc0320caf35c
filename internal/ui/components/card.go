package components

import (
	"charm.land/lipgloss/v2"

	"github.com/speechpath/speechpath/internal/ui/theme"
)

// ContentWidth returns the inner width used for cards so sections line up.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Card wraps content in a rounded-border box of the given content width.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(0, 1).
		Render(content)
}

// Center places content in the middle of a width x height area.
func Center(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// ErrorLine renders a validation or failure message.
func ErrorLine(msg string) string {
	if msg == "" {
		return ""
	}
	return theme.Fail.Render("! " + msg)
}
