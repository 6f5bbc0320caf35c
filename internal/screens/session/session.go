package session

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/speechpath/speechpath/internal/catalog"
	"github.com/speechpath/speechpath/internal/errs"
	"github.com/speechpath/speechpath/internal/progress"
	"github.com/speechpath/speechpath/internal/router"
	"github.com/speechpath/speechpath/internal/screen"
	"github.com/speechpath/speechpath/internal/screens"
	sess "github.com/speechpath/speechpath/internal/session"
	"github.com/speechpath/speechpath/internal/ui/components"
	"github.com/speechpath/speechpath/internal/ui/layout"
)

// DateLayout is the format of the session date field.
const DateLayout = "2006-01-02"

type phase int

const (
	phaseEditing phase = iota
	phaseConfirm
	phaseSaving
	phaseDone
)

const (
	focusChecklist = iota
	focusTherapist
	focusDate
	focusCount
)

// SessionScreen runs one therapy session for a goal: grade the activities,
// enter the therapist and date, confirm, submit.
type SessionScreen struct {
	env      *screens.Env
	childID  string
	category string
	goal     catalog.Goal
	recorder *sess.Recorder
	opened   time.Time

	checklist components.Checklist
	therapist components.TextInput
	date      components.TextInput
	focus     int

	phase       phase
	keepEditing bool // confirm step: the "keep editing" button is focused
	errMsg      string
	warnMsg     string
	result      progress.Result
	streak      progress.StreakStatus
	childName   string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.EscCapturer = (*SessionScreen)(nil)

// New creates a SessionScreen for one goal.
func New(env *screens.Env, childID, categoryID string, goal catalog.Goal) *SessionScreen {
	rec := env.Tracker.NewSession(childID, categoryID, goal.ID)

	labels := make([]string, 0)
	for _, a := range rec.Activities() {
		labels = append(labels, a.Name)
	}

	s := &SessionScreen{
		env:       env,
		childID:   childID,
		category:  categoryID,
		goal:      goal,
		recorder:  rec,
		opened:    rec.Date(),
		checklist: components.NewChecklist(labels),
		therapist: components.NewTextInput("Therapist", "your name", false, 80),
		date:      components.NewTextInput("Session date", DateLayout, false, 10),
	}
	s.date.SetValue(s.opened.Format(DateLayout))

	if c, err := env.Tracker.Store().Child(childID); err == nil {
		s.childName = c.Name
	}
	if st, err := env.Tracker.Query().StreakStatus(childID, categoryID, goal.ID); err == nil {
		s.streak = st
	}
	return s
}

func (s *SessionScreen) Init() tea.Cmd {
	return nil
}

func (s *SessionScreen) Title() string {
	return "Session · " + s.goal.ID
}

// CapturesEsc keeps Esc inside the screen while a submission is pending, so
// it cancels the confirmation instead of discarding the session.
func (s *SessionScreen) CapturesEsc() bool {
	return s.phase == phaseConfirm || s.phase == phaseSaving
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseConfirm:
		return []layout.KeyHint{
			{Key: "←→", Description: "Choose"},
			{Key: "Enter", Description: "Confirm"},
			{Key: "y/n", Description: "Save/Keep editing"},
		}
	case phaseDone:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Back to goals"},
		}
	}
	return []layout.KeyHint{
		{Key: "p/f", Description: "Pass/Fail"},
		{Key: "Tab", Description: "Next field"},
		{Key: "Ctrl+S", Description: "Finish"},
		{Key: "Esc", Description: "Discard"},
	}
}

func (s *SessionScreen) setFocus(i int) tea.Cmd {
	s.focus = i
	s.therapist.Blur()
	s.date.Blur()
	s.checklist.Locked = i != focusChecklist
	switch i {
	case focusTherapist:
		return s.therapist.Focus()
	case focusDate:
		return s.date.Focus()
	}
	return nil
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case submittedMsg:
		return s, s.handleSubmitted(msg)

	case tea.KeyMsg:
		switch s.phase {
		case phaseSaving:
			return s, nil
		case phaseDone:
			if msg.String() == "enter" {
				return s, router.PopCmd
			}
			return s, nil
		case phaseConfirm:
			switch msg.String() {
			case "esc":
				s.phase = phaseEditing
				return s, nil
			case "left", "right", "tab", "shift+tab":
				s.keepEditing = !s.keepEditing
				return s, nil
			}
			var cmd tea.Cmd
			for _, b := range s.confirmButtons() {
				if _, cmd = b.Update(msg); cmd != nil {
					break
				}
			}
			return s, cmd
		}

		switch msg.String() {
		case "tab":
			return s, s.setFocus((s.focus + 1) % focusCount)
		case "shift+tab":
			return s, s.setFocus((s.focus + focusCount - 1) % focusCount)
		case "ctrl+s":
			return s, s.confirm()
		case "enter":
			if s.focus == focusDate {
				return s, s.confirm()
			}
			return s, s.setFocus(s.focus + 1)
		}
	}

	var cmd tea.Cmd
	switch s.focus {
	case focusChecklist:
		s.checklist, cmd = s.checklist.Update(msg)
	case focusTherapist:
		s.therapist, cmd = s.therapist.Update(msg)
	case focusDate:
		s.date, cmd = s.date.Update(msg)
	}
	return s, cmd
}

// sync copies the form into the recorder.
func (s *SessionScreen) sync() error {
	for i, m := range s.checklist.Marks {
		status := sess.Unmarked
		switch m {
		case components.Passed:
			status = sess.Pass
		case components.Failed:
			status = sess.Fail
		}
		if err := s.recorder.Mark(i, status); err != nil {
			return err
		}
	}
	if err := s.recorder.SetTherapist(s.therapist.Value()); err != nil {
		return err
	}

	raw := strings.TrimSpace(s.date.Value())
	d, err := time.ParseInLocation(DateLayout, raw, s.opened.Location())
	if err != nil {
		return &errs.IncompleteSessionError{Reason: "session date must be YYYY-MM-DD"}
	}
	// Today's date keeps the time the screen opened so it never reads as
	// in the future.
	if y, m, day := s.opened.Date(); d.Year() == y && d.Month() == m && d.Day() == day {
		d = s.opened
	}
	return s.recorder.SetDate(d)
}

// confirm validates the form and asks for confirmation.
func (s *SessionScreen) confirm() tea.Cmd {
	if err := s.sync(); err != nil {
		s.errMsg = describe(err)
		return nil
	}
	if _, err := s.recorder.Outcome(); err != nil {
		s.errMsg = describe(err)
		return nil
	}
	s.errMsg = ""
	s.phase = phaseConfirm
	s.keepEditing = false
	return nil
}

// confirmButtons builds the confirm step's actions. The save button takes
// the color of the verdict it will record.
func (s *SessionScreen) confirmButtons() []components.Button {
	tone := components.ToneFail
	if passed, _, total := s.recorder.Counts(); sess.IsMajority(passed, total) {
		tone = components.TonePass
	}
	return []components.Button{
		components.NewButton("Save session", !s.keepEditing, s.submit).
			WithShortcut("y").
			WithTone(tone),
		components.NewButton("Keep editing", s.keepEditing, func() tea.Cmd {
			s.phase = phaseEditing
			return nil
		}).WithShortcut("n"),
	}
}

func (s *SessionScreen) submit() tea.Cmd {
	s.phase = phaseSaving
	tr := s.env.Tracker
	rec := s.recorder
	return func() tea.Msg {
		res, err := tr.Submit(context.Background(), rec)
		return submittedMsg{result: res, err: err}
	}
}

func (s *SessionScreen) handleSubmitted(msg submittedMsg) tea.Cmd {
	if msg.err != nil && !s.recorder.Submitted() {
		s.phase = phaseEditing
		s.errMsg = describe(msg.err)
		return nil
	}
	if msg.err != nil {
		s.warnMsg = "Recorded, but saving to disk failed. Check the log."
		s.env.Log.Error("session persisted partially", zap.Error(msg.err))
	}
	s.result = msg.result
	s.phase = phaseDone
	s.checklist.Locked = true
	s.therapist.Blur()
	s.date.Blur()
	if st, err := s.env.Tracker.Query().StreakStatus(s.childID, s.category, s.goal.ID); err == nil {
		s.streak = st
	}
	return nil
}

func describe(err error) string {
	var ie *errs.IncompleteSessionError
	if errors.As(err, &ie) {
		r := ie.Reason
		if r == "" {
			return "Session is incomplete"
		}
		return strings.ToUpper(r[:1]) + r[1:]
	}
	return err.Error()
}
