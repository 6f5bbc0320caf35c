// Package tracker wires the progress store to session recording, the audit
// trail and snapshot persistence. The CLI and the TUI both go through it.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/speechpath/speechpath/internal/catalog"
	"github.com/speechpath/speechpath/internal/errs"
	"github.com/speechpath/speechpath/internal/progress"
	"github.com/speechpath/speechpath/internal/session"
	"github.com/speechpath/speechpath/internal/store"
)

// DefaultKeepSnapshots is how many snapshots Save leaves behind.
const DefaultKeepSnapshots = 10

// Options configures a Tracker. Snapshots and Events may be nil, in which
// case the tracker keeps everything in memory.
type Options struct {
	Catalog       *catalog.Catalog
	Snapshots     store.SnapshotRepo
	Events        store.EventRepo
	Log           *zap.Logger
	Clock         func() time.Time
	LevelSize     int
	Activities    int
	KeepSnapshots int
}

// Tracker is the application facade over progress tracking.
type Tracker struct {
	store *progress.Store
	query *progress.Query

	snaps      store.SnapshotRepo
	events     store.EventRepo
	log        *zap.Logger
	now        func() time.Time
	activities int
	keep       int

	saveMu sync.Mutex
}

// Open builds a tracker, restoring the latest snapshot when a snapshot repo
// is configured.
func Open(ctx context.Context, opts Options) (*Tracker, error) {
	if opts.Catalog == nil {
		cat, err := catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		opts.Catalog = cat
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.KeepSnapshots < 1 {
		opts.KeepSnapshots = DefaultKeepSnapshots
	}

	var data *store.SnapshotData
	if opts.Snapshots != nil {
		snap, err := opts.Snapshots.Latest(ctx)
		if err != nil {
			return nil, fmt.Errorf("load latest snapshot: %w", err)
		}
		if snap != nil {
			data = &snap.Data
			opts.Log.Info("snapshot restored",
				zap.Int("snapshot_id", snap.ID),
				zap.Int64("sequence", snap.Sequence),
				zap.Int("children", len(snap.Data.Children)),
			)
		}
	}

	st, err := progress.NewStore(opts.Catalog, data,
		progress.WithLogger(opts.Log),
		progress.WithClock(opts.Clock),
	)
	if err != nil {
		return nil, fmt.Errorf("restore progress: %w", err)
	}

	return &Tracker{
		store:      st,
		query:      progress.NewQuery(st, opts.LevelSize),
		snaps:      opts.Snapshots,
		events:     opts.Events,
		log:        opts.Log,
		now:        opts.Clock,
		activities: opts.Activities,
		keep:       opts.KeepSnapshots,
	}, nil
}

// Store returns the underlying progress store.
func (t *Tracker) Store() *progress.Store { return t.store }

// Query returns the read-side views.
func (t *Tracker) Query() *progress.Query { return t.query }

// Catalog returns the goal catalog.
func (t *Tracker) Catalog() *catalog.Catalog { return t.store.Catalog() }

// AddChild registers a child and persists the change.
func (t *Tracker) AddChild(ctx context.Context, fields progress.ChildFields) (progress.Child, error) {
	child, err := t.store.CreateChild(fields)
	if err != nil {
		return progress.Child{}, err
	}
	if t.events != nil {
		if err := t.events.AppendChildEvent(ctx, store.ChildEventData{
			ChildID:  child.ID,
			Name:     child.Name,
			MRNumber: child.MRNumber,
		}); err != nil {
			return child, t.persistFailed("append child event", err)
		}
	}
	if err := t.Save(ctx); err != nil {
		return child, err
	}
	return child, nil
}

// NewSession starts a recorder for one goal using the configured checklist
// size.
func (t *Tracker) NewSession(childID, categoryID, goalID string) *session.Recorder {
	return session.New(session.Target{
		ChildID:    childID,
		CategoryID: categoryID,
		GoalID:     goalID,
	}, t.activities, session.WithClock(t.now))
}

// Submit submits rec to the progress store, then appends the audit event and
// saves a snapshot. A goal the child has not unlocked is refused before
// anything is recorded. When only persistence fails, the returned Result is
// valid and the session stays recorded in memory.
func (t *Tracker) Submit(ctx context.Context, rec *session.Recorder) (progress.Result, error) {
	if !rec.Submitted() {
		if err := t.checkUnlocked(rec.Target()); err != nil {
			return progress.Result{}, err
		}
	}
	res, err := rec.Submit(t.store)
	if err != nil {
		return progress.Result{}, err
	}

	if t.events != nil {
		s := res.Session
		if err := t.events.AppendSessionEvent(ctx, store.SessionEventData{
			SessionID:        s.ID,
			ChildID:          s.ChildID,
			CategoryID:       s.CategoryID,
			GoalID:           s.GoalID,
			IsPassed:         s.IsPassed,
			ActivitiesPassed: s.ActivitiesPassed,
			ActivitiesTotal:  s.ActivitiesTotal,
			TherapistName:    s.TherapistName,
			SessionDate:      s.Date,
			GoalPassed:       res.NewlyPassed,
			UnlockedGoalID:   res.UnlockedID,
		}); err != nil {
			return res, t.persistFailed("append session event", err)
		}
	}
	if err := t.Save(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// Save writes a snapshot of the whole store and prunes old ones. It is a
// no-op without a snapshot repo.
func (t *Tracker) Save(ctx context.Context) error {
	if t.snaps == nil {
		return nil
	}
	t.saveMu.Lock()
	defer t.saveMu.Unlock()

	var seq int64
	if t.events != nil {
		var err error
		if seq, err = t.events.LastSequence(ctx); err != nil {
			return t.persistFailed("read last sequence", err)
		}
	}

	snap := &store.Snapshot{
		Sequence:  seq,
		Timestamp: t.now(),
		Data:      *t.store.SnapshotData(),
	}
	if err := t.snaps.Save(ctx, snap); err != nil {
		return t.persistFailed("save snapshot", err)
	}
	if err := t.snaps.Prune(ctx, t.keep); err != nil {
		return t.persistFailed("prune snapshots", err)
	}
	t.log.Debug("snapshot saved", zap.Int("snapshot_id", snap.ID), zap.Int64("sequence", seq))
	return nil
}

// History returns a child's session audit events, oldest first.
func (t *Tracker) History(ctx context.Context, childID string, opts store.QueryOpts) ([]store.SessionEventRecord, error) {
	if _, err := t.store.Child(childID); err != nil {
		return nil, err
	}
	if t.events == nil {
		return nil, nil
	}
	return t.events.QuerySessionEvents(ctx, childID, opts)
}

// checkUnlocked refuses a target goal that is not unlocked for the child.
// Unknown categories and foreign goals are left for the store to report.
func (t *Tracker) checkUnlocked(tg session.Target) error {
	if !t.Catalog().Contains(tg.CategoryID, tg.GoalID) {
		return nil
	}
	goals, err := t.query.Progress(tg.ChildID, tg.CategoryID)
	if err != nil {
		return err
	}
	if gp, ok := goals[tg.GoalID]; ok && gp.Unlocked {
		return nil
	}
	t.log.Warn("session refused for locked goal",
		zap.String("child_id", tg.ChildID),
		zap.String("category_id", tg.CategoryID),
		zap.String("goal_id", tg.GoalID),
	)
	return &errs.GoalLockedError{ChildID: tg.ChildID, CategoryID: tg.CategoryID, GoalID: tg.GoalID}
}

// Registration returns the audit row written when childID was added. It is
// nil without an event repo or for children restored from older snapshots.
func (t *Tracker) Registration(ctx context.Context, childID string) (*store.ChildEventRecord, error) {
	if _, err := t.store.Child(childID); err != nil {
		return nil, err
	}
	if t.events == nil {
		return nil, nil
	}
	return t.events.ChildRegistration(ctx, childID)
}

func (t *Tracker) persistFailed(op string, err error) error {
	t.log.Error("persistence failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}
