package components

import (
	tea "charm.land/bubbletea/v2"

	"github.com/speechpath/speechpath/internal/ui/theme"
)

// Tone colors a focused button by the outcome it commits.
type Tone int

const (
	ToneNeutral Tone = iota
	TonePass
	ToneFail
)

// Button is a focusable action with an optional single-key shortcut.
type Button struct {
	Label    string
	Shortcut string // fires OnPress whether or not the button is focused
	Tone     Tone
	Active   bool
	OnPress  func() tea.Cmd
}

// NewButton creates a new button.
func NewButton(label string, active bool, onPress func() tea.Cmd) Button {
	return Button{
		Label:   label,
		Active:  active,
		OnPress: onPress,
	}
}

// WithShortcut returns b bound to key, e.g. "y".
func (b Button) WithShortcut(key string) Button {
	b.Shortcut = key
	return b
}

// WithTone returns b rendered in t while focused.
func (b Button) WithTone(t Tone) Button {
	b.Tone = t
	return b
}

// Update fires OnPress on enter while focused, or on the shortcut key.
func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || b.OnPress == nil {
		return b, nil
	}
	switch key := kmsg.String(); {
	case b.Shortcut != "" && key == b.Shortcut:
		return b, b.OnPress()
	case b.Active && key == "enter":
		return b, b.OnPress()
	}
	return b, nil
}

// View renders the button, with its shortcut in brackets.
func (b Button) View() string {
	label := " " + b.Label + " "
	if b.Shortcut != "" {
		label = " [" + b.Shortcut + "] " + b.Label + " "
	}
	if !b.Active {
		return theme.ButtonInactive.Render(label)
	}
	style := theme.ButtonActive
	switch b.Tone {
	case TonePass:
		style = style.Background(theme.Success)
	case ToneFail:
		style = style.Background(theme.Error)
	}
	return style.Render("▸" + label)
}
