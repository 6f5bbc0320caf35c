package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const (
	childEventTable   = "child_events"
	sessionEventTable = "session_events"
)

// eventRepo implements EventRepo using the ent SQL builder.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *eventRepo) AppendChildEvent(ctx context.Context, data ChildEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(childEventTable).
		Columns("sequence", "timestamp", "child_id", "name", "mr_number").
		Values(seqNum, time.Now().UnixNano(), data.ChildID, data.Name, data.MRNumber).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save child event: %w", err)
	}
	return nil
}

func (r *eventRepo) ChildRegistration(ctx context.Context, childID string) (*ChildEventRecord, error) {
	b := entsql.Dialect(dialect.SQLite)
	t := b.Table(childEventTable)
	query, args := b.Select(
		t.C("sequence"), t.C("timestamp"), t.C("child_id"), t.C("name"), t.C("mr_number"),
	).
		From(t).
		Where(entsql.EQ(t.C("child_id"), childID)).
		OrderBy(t.C("sequence")).
		Limit(1).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query child event: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate child events: %w", err)
		}
		return nil, nil
	}
	var (
		rec ChildEventRecord
		ts  int64
	)
	if err := rows.Scan(&rec.Sequence, &ts, &rec.ChildID, &rec.Name, &rec.MRNumber); err != nil {
		return nil, fmt.Errorf("scan child event: %w", err)
	}
	rec.Timestamp = time.Unix(0, ts).UTC()
	return &rec, nil
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(sessionEventTable).
		Columns(
			"sequence", "timestamp", "session_id", "child_id", "category_id", "goal_id",
			"is_passed", "activities_passed", "activities_total", "therapist_name",
			"session_date", "goal_passed", "unlocked_goal_id",
		).
		Values(
			seqNum, time.Now().UnixNano(), data.SessionID, data.ChildID, data.CategoryID, data.GoalID,
			data.IsPassed, data.ActivitiesPassed, data.ActivitiesTotal, data.TherapistName,
			data.SessionDate.UnixNano(), data.GoalPassed, data.UnlockedGoalID,
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, childID string, opts QueryOpts) ([]SessionEventRecord, error) {
	b := entsql.Dialect(dialect.SQLite)
	t := b.Table(sessionEventTable)

	preds := []*entsql.Predicate{entsql.EQ(t.C("child_id"), childID)}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE(t.C("session_date"), opts.From.UnixNano()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LT(t.C("session_date"), opts.To.UnixNano()))
	}
	order := t.C("sequence")
	if opts.Newest {
		order = entsql.Desc(order)
	}

	sel := b.Select(
		t.C("sequence"), t.C("timestamp"), t.C("session_id"), t.C("child_id"),
		t.C("category_id"), t.C("goal_id"), t.C("is_passed"), t.C("activities_passed"),
		t.C("activities_total"), t.C("therapist_name"), t.C("session_date"),
		t.C("goal_passed"), t.C("unlocked_goal_id"),
	).
		From(t).
		Where(entsql.And(preds...)).
		OrderBy(order)
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var records []SessionEventRecord
	for rows.Next() {
		var (
			rec               SessionEventRecord
			ts, sessionDate   int64
			isPassed, goalHit bool
		)
		if err := rows.Scan(
			&rec.Sequence, &ts, &rec.SessionID, &rec.ChildID,
			&rec.CategoryID, &rec.GoalID, &isPassed, &rec.ActivitiesPassed,
			&rec.ActivitiesTotal, &rec.TherapistName, &sessionDate,
			&goalHit, &rec.UnlockedGoalID,
		); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		rec.Timestamp = time.Unix(0, ts).UTC()
		rec.SessionDate = time.Unix(0, sessionDate).UTC()
		rec.IsPassed = isPassed
		rec.GoalPassed = goalHit
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session events: %w", err)
	}
	return records, nil
}

func (r *eventRepo) LastSequence(ctx context.Context) (int64, error) {
	return r.seq.Last(ctx)
}
