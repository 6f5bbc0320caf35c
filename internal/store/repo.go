package store

import (
	"context"
	"time"
)

// QueryOpts filters session event queries.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	Newest bool      // newest first, so Limit keeps the most recent
	From   time.Time // session date >= From
	To     time.Time // session date < To
}

// SnapshotVersion is the current SnapshotData layout version.
const SnapshotVersion = 1

// SnapshotData is the plain structural form of the whole progress store.
type SnapshotData struct {
	Version  int         `json:"version"`
	Children []ChildData `json:"children"`
}

// ChildData is one child with its progress record and session log.
type ChildData struct {
	ID         string                                  `json:"id"`
	Name       string                                  `json:"name"`
	MRNumber   string                                  `json:"mr_number"`
	DOB        string                                  `json:"dob"`
	Gender     string                                  `json:"gender"`
	ParentName string                                  `json:"parent_name"`
	CreatedAt  time.Time                               `json:"created_at"`
	Progress   map[string]map[string]*GoalProgressData `json:"progress"`
	Sessions   []SessionRecordData                     `json:"sessions"`
}

// GoalProgressData mirrors progress.GoalProgress.
type GoalProgressData struct {
	Sessions []SessionOutcomeData `json:"sessions"`
	Passed   bool                 `json:"passed"`
	Unlocked bool                 `json:"unlocked"`
}

// SessionOutcomeData mirrors progress.SessionOutcome.
type SessionOutcomeData struct {
	IsPassed         bool      `json:"is_passed"`
	Date             time.Time `json:"date"`
	ActivitiesPassed int       `json:"activities_passed"`
	ActivitiesTotal  int       `json:"activities_total"`
	TherapistName    string    `json:"therapist_name"`
}

// SessionRecordData mirrors progress.SessionRecord.
type SessionRecordData struct {
	ID         string `json:"id"`
	ChildID    string `json:"child_id"`
	CategoryID string `json:"category_id"`
	GoalID     string `json:"goal_id"`
	SessionOutcomeData
}

// Snapshot represents a point-in-time capture of the progress store.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages progress store snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// ChildEventData captures a child registration.
type ChildEventData struct {
	ChildID  string
	Name     string
	MRNumber string
}

// ChildEventRecord is a stored child registration.
type ChildEventRecord struct {
	Sequence  int64
	Timestamp time.Time
	ChildEventData
}

// SessionEventData captures one recorded session and what it changed.
type SessionEventData struct {
	SessionID        string
	ChildID          string
	CategoryID       string
	GoalID           string
	IsPassed         bool
	ActivitiesPassed int
	ActivitiesTotal  int
	TherapistName    string
	SessionDate      time.Time
	GoalPassed       bool
	UnlockedGoalID   string // empty when nothing was unlocked
}

// SessionEventRecord is a stored session event.
type SessionEventRecord struct {
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// EventRepo provides append access to the audit trail.
type EventRepo interface {
	// AppendChildEvent records a child registration.
	AppendChildEvent(ctx context.Context, data ChildEventData) error

	// ChildRegistration returns when childID was registered, or nil for a
	// child that predates the audit trail.
	ChildRegistration(ctx context.Context, childID string) (*ChildEventRecord, error)

	// AppendSessionEvent records a submitted session.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// QuerySessionEvents returns a child's session events in sequence order,
	// or reversed when opts.Newest is set.
	QuerySessionEvents(ctx context.Context, childID string, opts QueryOpts) ([]SessionEventRecord, error)

	// LastSequence returns the highest sequence assigned so far (0 if none).
	LastSequence(ctx context.Context) (int64, error)
}
