package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func testSnapshotData() SnapshotData {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	outcome := SessionOutcomeData{
		IsPassed:         true,
		Date:             created.Add(24 * time.Hour),
		ActivitiesPassed: 4,
		ActivitiesTotal:  5,
		TherapistName:    "Dr. Amna",
	}
	return SnapshotData{
		Version: SnapshotVersion,
		Children: []ChildData{{
			ID:         "child-1",
			Name:       "Ali",
			MRNumber:   "01-123",
			DOB:        "2021-05-04",
			Gender:     "M",
			ParentName: "Sara",
			CreatedAt:  created,
			Progress: map[string]map[string]*GoalProgressData{
				"F80.2": {"RL.01": {Sessions: []SessionOutcomeData{outcome}, Unlocked: true}},
			},
			Sessions: []SessionRecordData{{
				ID: "s-1", ChildID: "child-1", CategoryID: "F80.2", GoalID: "RL.01",
				SessionOutcomeData: outcome,
			}},
		}},
	}
}

func TestSnapshotSaveAndLatest(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	// No snapshot yet.
	snap, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)

	now := time.Now().UTC()
	in := &Snapshot{Sequence: 42, Timestamp: now, Data: testSnapshotData()}
	require.NoError(t, repo.Save(ctx, in))
	assert.NotZero(t, in.ID)

	snap, err = repo.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, int64(42), snap.Sequence)
	assert.True(t, snap.Timestamp.Equal(now), "timestamp = %v, want %v", snap.Timestamp, now)
	assert.Equal(t, in.Data, snap.Data)
}

func TestSnapshotLatestReturnsNewest(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		err := repo.Save(ctx, &Snapshot{
			Sequence:  int64(i + 1),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Data:      SnapshotData{Version: i + 1},
		})
		require.NoError(t, err)
	}

	snap, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), snap.Sequence)
	assert.Equal(t, 3, snap.Data.Version)
}

func TestSnapshotPrune(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		err := repo.Save(ctx, &Snapshot{
			Sequence:  int64(i + 1),
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Data:      SnapshotData{Version: 1},
		})
		require.NoError(t, err)
	}

	require.NoError(t, repo.Prune(ctx, 2))

	var count int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&count))
	assert.Equal(t, 2, count)

	snap, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), snap.Sequence)

	// Pruning with fewer snapshots than keep is a no-op.
	require.NoError(t, repo.Prune(ctx, 10))
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestSessionEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendChildEvent(ctx, ChildEventData{ChildID: "c1", Name: "Ali", MRNumber: "01-1"}))

	date := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	for i, passed := range []bool{true, false, true} {
		err := repo.AppendSessionEvent(ctx, SessionEventData{
			SessionID:        "s" + string(rune('1'+i)),
			ChildID:          "c1",
			CategoryID:       "F80.2",
			GoalID:           "RL.01",
			IsPassed:         passed,
			ActivitiesPassed: 3,
			ActivitiesTotal:  5,
			TherapistName:    "Dr. Amna",
			SessionDate:      date.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}
	require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{
		SessionID: "other", ChildID: "c2", CategoryID: "F80.2", GoalID: "RL.01", SessionDate: date,
	}))

	events, err := repo.QuerySessionEvents(ctx, "c1", QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Child event took sequence 1.
	assert.Equal(t, int64(2), events[0].Sequence)
	assert.Equal(t, "s1", events[0].SessionID)
	assert.True(t, events[0].IsPassed)
	assert.False(t, events[1].IsPassed)
	assert.True(t, events[2].SessionDate.Equal(date.AddDate(0, 0, 2)))

	latest, err := repo.QuerySessionEvents(ctx, "c1", QueryOpts{Limit: 2, Newest: true})
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "s3", latest[0].SessionID)
	assert.Equal(t, "s2", latest[1].SessionID)

	// From is inclusive, To exclusive.
	ranged, err := repo.QuerySessionEvents(ctx, "c1", QueryOpts{
		From: date.AddDate(0, 0, 1),
		To:   date.AddDate(0, 0, 2),
	})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "s2", ranged[0].SessionID)

	reg, err := repo.ChildRegistration(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Equal(t, int64(1), reg.Sequence)
	assert.Equal(t, "Ali", reg.Name)
	assert.Equal(t, "01-1", reg.MRNumber)

	reg, err = repo.ChildRegistration(ctx, "c2")
	require.NoError(t, err)
	assert.Nil(t, reg, "c2 has sessions but no registration row")

	last, err := repo.LastSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), last)
}
