// Package session turns a graded activity checklist into one session outcome
// and submits it to progress tracking.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/speechpath/speechpath/internal/errs"
	"github.com/speechpath/speechpath/internal/progress"
)

// DefaultActivities is the checklist size used when none is given.
const DefaultActivities = 5

// ErrSubmitted is returned by every mutating call after a successful Submit.
var ErrSubmitted = errors.New("session already submitted")

// ActivityStatus is the grade of one activity.
type ActivityStatus int

const (
	Unmarked ActivityStatus = iota
	Pass
	Fail
)

func (s ActivityStatus) String() string {
	switch s {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	default:
		return "unmarked"
	}
}

// Activity is one item of the session checklist.
type Activity struct {
	Name   string
	Status ActivityStatus
}

// Target identifies the goal a session is recorded against.
type Target struct {
	ChildID    string
	CategoryID string
	GoalID     string
}

// Sink receives the finished outcome. progress.Store satisfies it.
type Sink interface {
	Record(childID, categoryID, goalID string, outcome progress.SessionOutcome) (progress.Result, error)
}

// Recorder collects activity grades, the therapist and the session date for
// one goal. After a successful Submit it rejects every change.
type Recorder struct {
	target     Target
	activities []Activity
	therapist  string
	date       time.Time
	now        func() time.Time

	submitted bool
	result    progress.Result
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock overrides the time source used for the default date and the
// future-date check.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithActivityNames replaces the default "Activity N" checklist.
func WithActivityNames(names ...string) Option {
	return func(r *Recorder) {
		if len(names) == 0 {
			return
		}
		r.activities = make([]Activity, len(names))
		for i, n := range names {
			r.activities[i] = Activity{Name: n}
		}
	}
}

// New creates a recorder with n unmarked activities. n below 1 uses
// DefaultActivities. The date defaults to now.
func New(target Target, n int, opts ...Option) *Recorder {
	if n < 1 {
		n = DefaultActivities
	}
	r := &Recorder{
		target:     target,
		activities: make([]Activity, n),
		now:        time.Now,
	}
	for i := range r.activities {
		r.activities[i].Name = fmt.Sprintf("Activity %d", i+1)
	}
	for _, opt := range opts {
		opt(r)
	}
	r.date = r.now()
	return r
}

// Target returns the goal this recorder is bound to.
func (r *Recorder) Target() Target { return r.target }

// Activities returns a copy of the checklist.
func (r *Recorder) Activities() []Activity {
	out := make([]Activity, len(r.activities))
	copy(out, r.activities)
	return out
}

// Mark grades activity i.
func (r *Recorder) Mark(i int, status ActivityStatus) error {
	if r.submitted {
		return ErrSubmitted
	}
	if i < 0 || i >= len(r.activities) {
		return fmt.Errorf("activity %d out of range [0,%d)", i, len(r.activities))
	}
	if status < Unmarked || status > Fail {
		return fmt.Errorf("invalid activity status %d", status)
	}
	r.activities[i].Status = status
	return nil
}

// SetTherapist sets the therapist's name. Surrounding space is dropped.
func (r *Recorder) SetTherapist(name string) error {
	if r.submitted {
		return ErrSubmitted
	}
	r.therapist = strings.TrimSpace(name)
	return nil
}

// Therapist returns the therapist's name as set.
func (r *Recorder) Therapist() string { return r.therapist }

// SetDate sets the session date. Future dates are accepted here and
// rejected at submission.
func (r *Recorder) SetDate(d time.Time) error {
	if r.submitted {
		return ErrSubmitted
	}
	r.date = d
	return nil
}

// Date returns the session date.
func (r *Recorder) Date() time.Time { return r.date }

// Counts returns how many activities passed, how many are marked and the
// checklist size.
func (r *Recorder) Counts() (passed, marked, total int) {
	for _, a := range r.activities {
		switch a.Status {
		case Pass:
			passed++
			marked++
		case Fail:
			marked++
		}
	}
	return passed, marked, len(r.activities)
}

// IsMajority reports whether passed is strictly more than half of total.
func IsMajority(passed, total int) bool {
	return total > 0 && passed*2 > total
}

// Outcome validates the recorder and derives the session outcome without
// submitting it.
func (r *Recorder) Outcome() (progress.SessionOutcome, error) {
	passed, marked, total := r.Counts()
	if marked < total {
		return progress.SessionOutcome{}, &errs.IncompleteSessionError{
			Reason: fmt.Sprintf("%d of %d activities unmarked", total-marked, total),
		}
	}
	if r.therapist == "" {
		return progress.SessionOutcome{}, &errs.IncompleteSessionError{Reason: "therapist name is required"}
	}
	if r.date.IsZero() {
		return progress.SessionOutcome{}, &errs.IncompleteSessionError{Reason: "session date is required"}
	}
	if r.date.After(r.now()) {
		return progress.SessionOutcome{}, &errs.IncompleteSessionError{Reason: "session date is in the future"}
	}

	return progress.SessionOutcome{
		IsPassed:         IsMajority(passed, total),
		Date:             r.date,
		ActivitiesPassed: passed,
		ActivitiesTotal:  total,
		TherapistName:    r.therapist,
	}, nil
}

// Submit records the outcome with sink exactly once. A failed validation or
// a sink error leaves the recorder editable; success freezes it.
func (r *Recorder) Submit(sink Sink) (progress.Result, error) {
	if r.submitted {
		return progress.Result{}, ErrSubmitted
	}
	outcome, err := r.Outcome()
	if err != nil {
		return progress.Result{}, err
	}
	res, err := sink.Record(r.target.ChildID, r.target.CategoryID, r.target.GoalID, outcome)
	if err != nil {
		return progress.Result{}, err
	}
	r.submitted = true
	r.result = res
	return res, nil
}

// Submitted reports whether Submit succeeded.
func (r *Recorder) Submitted() bool { return r.submitted }

// Result returns what the successful submission changed.
func (r *Recorder) Result() (progress.Result, bool) {
	return r.result, r.submitted
}
