package login

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/speechpath/speechpath/internal/screen"
	"github.com/speechpath/speechpath/internal/screens"
	"github.com/speechpath/speechpath/internal/screens/welcome"
	"github.com/speechpath/speechpath/internal/ui/components"
	"github.com/speechpath/speechpath/internal/ui/layout"
	"github.com/speechpath/speechpath/internal/ui/theme"
)

// LoginScreen asks for the clinic username and password.
type LoginScreen struct {
	env      *screens.Env
	inputs   []components.TextInput
	focus    int
	errMsg   string
	attempts int
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen.
func New(env *screens.Env) *LoginScreen {
	s := &LoginScreen{
		env: env,
		inputs: []components.TextInput{
			components.NewTextInput("Username", "Doctor", false, 64),
			components.NewTextInput("Password", "", true, 128),
		},
	}
	return s
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.setFocus(0)
}

func (s *LoginScreen) Title() string {
	return "Sign in"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Sign in"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *LoginScreen) setFocus(i int) tea.Cmd {
	s.focus = i
	var cmd tea.Cmd
	for j := range s.inputs {
		if j == i {
			cmd = s.inputs[j].Focus()
		} else {
			s.inputs[j].Blur()
		}
	}
	return cmd
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "tab", "down":
			return s, s.setFocus((s.focus + 1) % len(s.inputs))
		case "shift+tab", "up":
			return s, s.setFocus((s.focus + len(s.inputs) - 1) % len(s.inputs))
		case "enter":
			if s.focus < len(s.inputs)-1 {
				return s, s.setFocus(s.focus + 1)
			}
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return s, cmd
}

func (s *LoginScreen) submit() tea.Cmd {
	user := strings.TrimSpace(s.inputs[0].Value())
	pass := s.inputs[1].Value()
	if user == "" || pass == "" {
		s.errMsg = "Enter both username and password"
		return nil
	}
	if err := s.env.Gate.Check(user, pass); err != nil {
		s.attempts++
		s.errMsg = "Invalid username or password"
		s.env.Log.Warn("login failed", zap.String("user", user), zap.Int("attempts", s.attempts))
		s.inputs[1].SetValue("")
		return s.setFocus(1)
	}

	s.errMsg = ""
	s.env.Log.Info("login", zap.String("user", user))
	return func() tea.Msg { return screens.LoggedInMsg{User: user} }
}

func (s *LoginScreen) View(width, height int) string {
	cw := min(components.ContentWidth(width), 48)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render("Therapist sign in"))
	b.WriteString("\n\n")
	for _, in := range s.inputs {
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	if s.errMsg != "" {
		b.WriteString(components.ErrorLine(s.errMsg))
	}

	body := components.Card(b.String(), cw)
	content := lipgloss.JoinVertical(lipgloss.Center, welcome.RenderBanner(width), "", body)
	return components.Center(content, width, height)
}
