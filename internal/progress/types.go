package progress

import (
	"slices"
	"time"
)

// ChildFields holds the demographic fields entered when registering a child.
// The core treats them as opaque non-empty strings.
type ChildFields struct {
	Name       string
	MRNumber   string
	DOB        string
	Gender     string
	ParentName string
}

// Child is a registered patient.
type Child struct {
	ID string
	ChildFields
	CreatedAt time.Time
}

// SessionOutcome is the goal-scoped result of one therapy session.
type SessionOutcome struct {
	IsPassed         bool
	Date             time.Time
	ActivitiesPassed int
	ActivitiesTotal  int
	TherapistName    string
}

// SessionRecord is an entry in a child's global session log.
type SessionRecord struct {
	ID         string
	ChildID    string
	CategoryID string
	GoalID     string
	SessionOutcome
}

// GoalProgress is a child's state for one goal.
type GoalProgress struct {
	Sessions []SessionOutcome
	Passed   bool
	Unlocked bool
}

func (gp GoalProgress) clone() GoalProgress {
	gp.Sessions = slices.Clone(gp.Sessions)
	return gp
}

// GoalEntry pairs a goal ID with its progress, as returned by ordered views.
type GoalEntry struct {
	GoalID   string
	Progress GoalProgress
}

// StreakStatus summarizes a goal's streak for display.
type StreakStatus struct {
	ConsecutivePasses int
	TotalSessions     int
	Passed            bool
	StreakBroken      bool // last session failed and the goal is not passed
}

// Result describes everything a RecordSession call changed.
type Result struct {
	Progress    GoalProgress
	Session     SessionRecord
	Streak      int
	NewlyPassed bool
	UnlockedID  string // goal unlocked by this session; empty if none
}
