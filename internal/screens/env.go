// Package screens holds what every screen shares: the tracker, the login
// gate and the app-level messages screens send upward.
package screens

import (
	"go.uber.org/zap"

	"github.com/speechpath/speechpath/internal/auth"
	"github.com/speechpath/speechpath/internal/tracker"
)

// Env is passed to every screen constructor.
type Env struct {
	Tracker *tracker.Tracker
	Gate    *auth.Gate
	Log     *zap.Logger
}

// LoggedInMsg is sent by the login screen after a successful check.
type LoggedInMsg struct {
	User string
}

// LogoutMsg asks the app to drop the navigation stack and return to login.
type LogoutMsg struct{}

// ChildSelectedMsg tells the app which child the header should show. An
// empty Name clears it.
type ChildSelectedMsg struct {
	Name string
}
