package addchild

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/speechpath/speechpath/internal/errs"
	"github.com/speechpath/speechpath/internal/progress"
	"github.com/speechpath/speechpath/internal/router"
	"github.com/speechpath/speechpath/internal/screen"
	"github.com/speechpath/speechpath/internal/screens"
	"github.com/speechpath/speechpath/internal/ui/components"
	"github.com/speechpath/speechpath/internal/ui/layout"
	"github.com/speechpath/speechpath/internal/ui/theme"
)

// DateLayout is the format the DOB field accepts.
const DateLayout = "2006-01-02"

const (
	fieldName = iota
	fieldMR
	fieldDOB
	fieldGender
	fieldParent
)

type childAddedMsg struct {
	child progress.Child
	err   error
}

// AddChildScreen is the registration form for a new child.
type AddChildScreen struct {
	env    *screens.Env
	inputs []components.TextInput
	focus  int
	errMsg string
	saving bool
	now    func() time.Time
}

var _ screen.Screen = (*AddChildScreen)(nil)
var _ screen.KeyHintProvider = (*AddChildScreen)(nil)

// New creates an AddChildScreen.
func New(env *screens.Env) *AddChildScreen {
	return &AddChildScreen{
		env: env,
		inputs: []components.TextInput{
			fieldName:   components.NewTextInput("Child name", "", false, 80),
			fieldMR:     components.NewTextInput("MR number", "", false, 32),
			fieldDOB:    components.NewTextInput("Date of birth", "YYYY-MM-DD", false, 10),
			fieldGender: components.NewTextInput("Gender", "F / M / Other", false, 16),
			fieldParent: components.NewTextInput("Parent name", "", false, 80),
		},
		now: time.Now,
	}
}

func (s *AddChildScreen) Init() tea.Cmd {
	return s.setFocus(s.focus)
}

func (s *AddChildScreen) Title() string {
	return "Add child"
}

func (s *AddChildScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Next / Save"},
		{Key: "Esc", Description: "Cancel"},
	}
}

func (s *AddChildScreen) setFocus(i int) tea.Cmd {
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

func (s *AddChildScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case childAddedMsg:
		s.saving = false
		if msg.err != nil && msg.child.ID == "" {
			s.errMsg = describe(msg.err)
			return s, nil
		}
		// Registered in memory; a persistence failure is already logged.
		return s, router.PopCmd

	case tea.KeyMsg:
		if s.saving {
			return s, nil
		}
		switch msg.String() {
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

func (s *AddChildScreen) fields() progress.ChildFields {
	return progress.ChildFields{
		Name:       s.inputs[fieldName].Value(),
		MRNumber:   s.inputs[fieldMR].Value(),
		DOB:        strings.TrimSpace(s.inputs[fieldDOB].Value()),
		Gender:     s.inputs[fieldGender].Value(),
		ParentName: s.inputs[fieldParent].Value(),
	}
}

func (s *AddChildScreen) submit() tea.Cmd {
	f := s.fields()
	if f.DOB != "" {
		dob, err := time.Parse(DateLayout, f.DOB)
		if err != nil {
			s.errMsg = "Date of birth must be YYYY-MM-DD"
			return s.setFocus(fieldDOB)
		}
		if dob.After(s.now()) {
			s.errMsg = "Date of birth cannot be in the future"
			return s.setFocus(fieldDOB)
		}
	}

	s.saving = true
	s.errMsg = ""
	tr := s.env.Tracker
	return func() tea.Msg {
		c, err := tr.AddChild(context.Background(), f)
		return childAddedMsg{child: c, err: err}
	}
}

func describe(err error) string {
	var ve *errs.ValidationError
	if errors.As(err, &ve) {
		return fmt.Sprintf("Please fill in %s", ve.Field)
	}
	return err.Error()
}

func (s *AddChildScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw - 4).Render("Register a new child"))
	b.WriteString("\n\n")
	for _, in := range s.inputs {
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	switch {
	case s.saving:
		b.WriteString(theme.Hint.Render("Saving..."))
	case s.errMsg != "":
		b.WriteString(components.ErrorLine(s.errMsg))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		"\n"+components.Card(b.String(), cw))
}
