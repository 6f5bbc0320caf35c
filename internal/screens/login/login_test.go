package login

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/speechpath/speechpath/internal/auth"
	"github.com/speechpath/speechpath/internal/screens"
)

func newTestLogin(t *testing.T) *LoginScreen {
	t.Helper()
	gate, err := auth.NewGate("", "")
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	s := New(&screens.Env{Gate: gate, Log: zap.NewNop()})
	s.Init()
	return s
}

func typeText(s *LoginScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func enter(s *LoginScreen) tea.Cmd {
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	return cmd
}

func TestLogin_Success(t *testing.T) {
	s := newTestLogin(t)
	typeText(s, "Doctor")
	enter(s)
	if s.focus != 1 {
		t.Fatalf("focus = %d, want 1 after enter on username", s.focus)
	}
	typeText(s, "slp123")

	cmd := enter(s)
	if cmd == nil {
		t.Fatal("expected a command after valid credentials")
	}
	msg, ok := cmd().(screens.LoggedInMsg)
	if !ok {
		t.Fatalf("expected LoggedInMsg, got %T", cmd())
	}
	if msg.User != "Doctor" {
		t.Errorf("User = %q, want Doctor", msg.User)
	}
	if s.errMsg != "" {
		t.Errorf("errMsg = %q, want empty", s.errMsg)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newTestLogin(t)
	typeText(s, "Doctor")
	enter(s)
	typeText(s, "nope")

	if cmd := enter(s); cmd != nil {
		if _, ok := cmd().(screens.LoggedInMsg); ok {
			t.Fatal("wrong password must not log in")
		}
	}
	if s.errMsg == "" {
		t.Error("expected an error message")
	}
	if s.inputs[1].Value() != "" {
		t.Error("password field should be cleared after a failed attempt")
	}
	if s.attempts != 1 {
		t.Errorf("attempts = %d, want 1", s.attempts)
	}
}

func TestLogin_EmptyFields(t *testing.T) {
	s := newTestLogin(t)
	s.setFocus(1)
	if cmd := enter(s); cmd != nil {
		t.Error("empty credentials should not produce a command")
	}
	if s.errMsg == "" {
		t.Error("expected an error message")
	}
}

func TestLogin_TabCyclesFocus(t *testing.T) {
	s := newTestLogin(t)
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.focus != 1 {
		t.Errorf("focus = %d, want 1", s.focus)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.focus != 0 {
		t.Errorf("focus = %d, want 0", s.focus)
	}
}
