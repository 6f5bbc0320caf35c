package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/speechpath/speechpath/internal/errs"
	"github.com/speechpath/speechpath/internal/progress"
	"github.com/speechpath/speechpath/internal/session"
	"github.com/speechpath/speechpath/internal/store"
)

var clock = func() time.Time { return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC) }

func openDB(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "speechpath.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func openTracker(t *testing.T, db *store.Store) *Tracker {
	t.Helper()
	tr, err := Open(context.Background(), Options{
		Snapshots:  db.SnapshotRepo(),
		Events:     db.EventRepo(),
		Log:        zap.NewNop(),
		Clock:      clock,
		Activities: 5,
	})
	require.NoError(t, err)
	return tr
}

var maya = progress.ChildFields{
	Name: "Maya Rao", MRNumber: "MR-1042", DOB: "2019-06-02", Gender: "F", ParentName: "Anita Rao",
}

func runSession(t *testing.T, tr *Tracker, childID, goalID string, grades ...session.ActivityStatus) progress.Result {
	t.Helper()
	rec := tr.NewSession(childID, "F80.2", goalID)
	for i, g := range grades {
		require.NoError(t, rec.Mark(i, g))
	}
	require.NoError(t, rec.SetTherapist("Dr. Iyer"))
	res, err := tr.Submit(context.Background(), rec)
	require.NoError(t, err)
	return res
}

var allPass = []session.ActivityStatus{session.Pass, session.Pass, session.Pass, session.Pass, session.Pass}

func TestTracker_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	tr := openTracker(t, db)

	child, err := tr.AddChild(ctx, maya)
	require.NoError(t, err)

	runSession(t, tr, child.ID, "RL.01", allPass...)
	runSession(t, tr, child.ID, "RL.01", allPass...)
	res := runSession(t, tr, child.ID, "RL.01", allPass...)
	assert.True(t, res.NewlyPassed)
	assert.Equal(t, "RL.02", res.UnlockedID)

	reopened := openTracker(t, db)
	got, err := reopened.Store().Child(child.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maya Rao", got.Name)

	cur, ok, err := reopened.Query().CurrentGoal(child.ID, "F80.2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "RL.02", cur.GoalID)

	report, err := reopened.Query().ChildReport(child.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalSessions)
	assert.Equal(t, 100, report.SuccessRatePercent)
}

func TestTracker_History(t *testing.T) {
	ctx := context.Background()
	tr := openTracker(t, openDB(t))

	child, err := tr.AddChild(ctx, maya)
	require.NoError(t, err)
	runSession(t, tr, child.ID, "RL.01", session.Pass, session.Fail, session.Fail, session.Fail, session.Pass)
	for range 3 {
		runSession(t, tr, child.ID, "RL.01", allPass...)
	}

	events, err := tr.History(ctx, child.ID, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.False(t, events[0].IsPassed)
	assert.Equal(t, 2, events[0].ActivitiesPassed)
	assert.True(t, events[3].GoalPassed)
	assert.Equal(t, "RL.02", events[3].UnlockedGoalID)
	for i := 1; i < len(events); i++ {
		assert.Greater(t, events[i].Sequence, events[i-1].Sequence)
	}

	_, err = tr.History(ctx, "ghost", store.QueryOpts{})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	reg, err := tr.Registration(ctx, child.ID)
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Equal(t, "MR-1042", reg.MRNumber)
	assert.Less(t, reg.Sequence, events[0].Sequence)
}

func TestTracker_SubmitIncompleteWritesNothing(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	tr := openTracker(t, db)

	child, err := tr.AddChild(ctx, maya)
	require.NoError(t, err)
	before, err := db.EventRepo().LastSequence(ctx)
	require.NoError(t, err)

	rec := tr.NewSession(child.ID, "F80.2", "RL.01")
	_, err = tr.Submit(ctx, rec)
	require.ErrorIs(t, err, errs.ErrIncompleteSession)

	after, err := db.EventRepo().LastSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	report, err := tr.Query().ChildReport(child.ID)
	require.NoError(t, err)
	assert.Zero(t, report.TotalSessions)
}

func TestTracker_SubmitLockedGoalRefused(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	tr := openTracker(t, db)

	child, err := tr.AddChild(ctx, maya)
	require.NoError(t, err)
	before, err := db.EventRepo().LastSequence(ctx)
	require.NoError(t, err)

	rec := tr.NewSession(child.ID, "F80.2", "RL.05")
	for i, g := range allPass {
		require.NoError(t, rec.Mark(i, g))
	}
	require.NoError(t, rec.SetTherapist("Dr. Iyer"))
	_, err = tr.Submit(ctx, rec)
	require.ErrorIs(t, err, errs.ErrGoalLocked)
	assert.False(t, rec.Submitted())

	after, err := db.EventRepo().LastSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	goals, err := tr.Query().Progress(child.ID, "F80.2")
	require.NoError(t, err)
	_, ok := goals["RL.05"]
	assert.False(t, ok, "RL.05 must stay untouched")

	// A goal from another category is still reported as a bad reference.
	rec = tr.NewSession(child.ID, "F80.2", "EL.01")
	for i, g := range allPass {
		require.NoError(t, rec.Mark(i, g))
	}
	require.NoError(t, rec.SetTherapist("Dr. Iyer"))
	_, err = tr.Submit(ctx, rec)
	assert.ErrorIs(t, err, errs.ErrInvalidReference)
}

func TestTracker_InMemory(t *testing.T) {
	ctx := context.Background()
	tr, err := Open(ctx, Options{Clock: clock})
	require.NoError(t, err)

	child, err := tr.AddChild(ctx, maya)
	require.NoError(t, err)
	res := runSession(t, tr, child.ID, "RL.01", allPass...)
	assert.True(t, res.Session.IsPassed)
	assert.NoError(t, tr.Save(ctx))

	events, err := tr.History(ctx, child.ID, store.QueryOpts{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

type failingSnapshots struct{ store.SnapshotRepo }

func (failingSnapshots) Latest(context.Context) (*store.Snapshot, error) { return nil, nil }
func (failingSnapshots) Save(context.Context, *store.Snapshot) error {
	return errors.New("disk full")
}

func TestTracker_SaveFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	tr, err := Open(ctx, Options{Snapshots: failingSnapshots{}, Clock: clock})
	require.NoError(t, err)

	child, err := tr.AddChild(ctx, maya)
	require.Error(t, err)
	require.NotEmpty(t, child.ID)

	_, err = tr.Store().Child(child.ID)
	assert.NoError(t, err)
}
