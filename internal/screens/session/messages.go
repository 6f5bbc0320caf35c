package session

import "github.com/speechpath/speechpath/internal/progress"

// submittedMsg carries the result of a submission back to the screen.
// When only persistence failed, err is set and result is still valid.
type submittedMsg struct {
	result progress.Result
	err    error
}
