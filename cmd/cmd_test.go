package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speechpath/speechpath/internal/catalog"
	"github.com/speechpath/speechpath/internal/errs"
	"github.com/speechpath/speechpath/internal/progress"
	"github.com/speechpath/speechpath/internal/session"
	"github.com/speechpath/speechpath/internal/store"
)

func TestParseMarks(t *testing.T) {
	got, err := parseMarks(" PpF ")
	require.NoError(t, err)
	assert.Equal(t, []session.ActivityStatus{session.Pass, session.Pass, session.Fail}, got)

	_, err = parseMarks("ppx")
	assert.Error(t, err)
	_, err = parseMarks("")
	assert.Error(t, err)
}

func TestParseSessionDate(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

	d, err := parseSessionDate("", now)
	require.NoError(t, err)
	assert.True(t, d.Equal(now))

	d, err = parseSessionDate("2025-03-14", now)
	require.NoError(t, err)
	assert.True(t, d.Equal(now), "today keeps the current time")

	d, err = parseSessionDate("2025-03-10", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), d)

	_, err = parseSessionDate("10/03/2025", now)
	assert.Error(t, err)
}

func TestHistoryOpts(t *testing.T) {
	opts, err := historyOpts(5, "", "", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, store.QueryOpts{Limit: 5, Newest: true}, opts)

	opts, err = historyOpts(0, "2025-03-01", "2025-03-14", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), opts.From)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), opts.To, "--to day is included")

	_, err = historyOpts(0, "2025-03-14", "2025-03-14", time.UTC)
	assert.NoError(t, err, "a single day is a valid range")
	_, err = historyOpts(0, "2025-03-15", "2025-03-14", time.UTC)
	assert.Error(t, err)
	_, err = historyOpts(-1, "", "", time.UTC)
	assert.Error(t, err)
	_, err = historyOpts(0, "14/03/2025", "", time.UTC)
	assert.Error(t, err)
}

func TestResolveChild(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	st, err := progress.NewStore(cat, nil)
	require.NoError(t, err)
	c, err := st.CreateChild(progress.ChildFields{
		Name: "Maya Rao", MRNumber: "MR-1042", DOB: "2019-06-02", Gender: "F", ParentName: "Anita Rao",
	})
	require.NoError(t, err)

	got, err := resolveChild(st, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	got, err = resolveChild(st, "MR-1042")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = resolveChild(st, "MR-10")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), "speechpath %s", strings.Join(args, " "))
	return out.String()
}

func TestCLI_EndToEnd(t *testing.T) {
	db := filepath.Join(t.TempDir(), "speechpath.db")
	t.Setenv("SPEECHPATH_LOG_LEVEL", "error")

	out := run(t, "--db", db, "child", "add",
		"--name", "Maya Rao", "--mr", "MR-1042", "--dob", "2019-06-02", "--gender", "F", "--parent", "Anita Rao")
	assert.Contains(t, out, "Registered Maya Rao (MR-1042)")

	out = run(t, "--db", db, "child", "list", "--search", "maya")
	assert.Contains(t, out, "MR-1042")

	for range 2 {
		run(t, "--db", db, "session", "record", "--child", "MR-1042",
			"--category", "F80.2", "--goal", "RL.01", "--marks", "ppppf", "--therapist", "Dr. Iyer")
	}
	out = run(t, "--db", db, "session", "record", "--child", "MR-1042",
		"--category", "F80.2", "--goal", "RL.01", "--marks", "ppfpf", "--therapist", "Dr. Iyer")
	assert.Contains(t, out, "Goal RL.01 passed")
	assert.Contains(t, out, "Unlocked RL.02")

	out = run(t, "--db", db, "progress", "--child", "MR-1042", "--category", "F80.2")
	assert.Contains(t, out, "Current: RL.02")
	assert.Contains(t, out, "1/26 goals passed")

	out = run(t, "--db", db, "session", "history", "--child", "MR-1042")
	assert.Contains(t, out, "as Maya Rao (MR-1042)")
	assert.Contains(t, out, "unlocked RL.02")
	assert.Contains(t, out, "3 sessions")

	out = run(t, "--db", db, "session", "history", "--child", "MR-1042", "--limit", "1")
	assert.Contains(t, out, "unlocked RL.02")
	assert.Contains(t, out, "1 sessions")

	out = run(t, "--db", db, "report", "--child", "MR-1042")
	assert.Contains(t, out, "Maya Rao")
	assert.Contains(t, out, "100%")
}

func TestCLI_RecordLockedGoal(t *testing.T) {
	db := filepath.Join(t.TempDir(), "speechpath.db")
	t.Setenv("SPEECHPATH_LOG_LEVEL", "error")

	run(t, "--db", db, "child", "add",
		"--name", "Maya Rao", "--mr", "MR-1042", "--dob", "2019-06-02", "--gender", "F", "--parent", "Anita Rao")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--db", db, "session", "record", "--child", "MR-1042",
		"--category", "F80.2", "--goal", "RL.05", "--marks", "ppppp", "--therapist", "Dr. Iyer"})
	err := rootCmd.Execute()
	require.ErrorIs(t, err, errs.ErrGoalLocked)
	assert.Contains(t, err.Error(), "RL.05")

	got := run(t, "--db", db, "progress", "--child", "MR-1042", "--category", "F80.2")
	assert.Contains(t, got, "Current: RL.01")
	assert.Contains(t, got, "Unlocked: RL.01\n")

	got = run(t, "--db", db, "session", "history", "--child", "MR-1042")
	assert.Contains(t, got, "No sessions recorded")
}

func TestCLI_Catalog(t *testing.T) {
	out := run(t, "catalog", "list")
	assert.Contains(t, out, "F80.2")
	assert.Contains(t, out, "H90")

	out = run(t, "catalog", "list", "--category", "F80.1")
	assert.Contains(t, out, "30 goals")
}
