// Package progress owns every child's goal progress and session history.
// Store is the single writer and enforces the pass and unlock rules; Query
// derives read-only views from it.
package progress

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/speechpath/speechpath/internal/catalog"
	"github.com/speechpath/speechpath/internal/errs"
)

// childRecord is exclusively owned by the Store. Callers only ever see copies.
type childRecord struct {
	mu       sync.RWMutex
	child    Child
	progress map[string]map[string]*GoalProgress
	sessions []SessionRecord
}

// Store holds all children, their per-goal progress and their session logs.
// Updates to one child run under that child's lock; the store-level lock only
// guards the child index.
type Store struct {
	mu       sync.RWMutex
	catalog  *catalog.Catalog
	children map[string]*childRecord
	order    []string

	now   func() time.Time
	newID func() string
	log   *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the generator for child and session IDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// newUUID returns a time-ordered UUIDv7, unique even within one clock tick.
func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func newStore(cat *catalog.Catalog, opts []Option) *Store {
	s := &Store{
		catalog:  cat,
		children: make(map[string]*childRecord),
		now:      time.Now,
		newID:    newUUID,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalog the store validates against.
func (s *Store) Catalog() *catalog.Catalog {
	return s.catalog
}

// CreateChild registers a child and seeds the first goal of every category
// as unlocked.
func (s *Store) CreateChild(fields ChildFields) (Child, error) {
	fields = trimFields(fields)
	if err := validateFields(fields); err != nil {
		return Child{}, err
	}

	child := Child{
		ID:          s.newID(),
		ChildFields: fields,
		CreatedAt:   s.now(),
	}
	rec := &childRecord{
		child:    child,
		progress: make(map[string]map[string]*GoalProgress),
	}
	for _, cat := range s.catalog.ListCategories() {
		rec.progress[cat.ID] = map[string]*GoalProgress{
			cat.FirstGoal().ID: {Unlocked: true},
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.children[child.ID]; exists {
		s.log.Error("duplicate child id from generator", zap.String("child_id", child.ID))
		return Child{}, &errs.InvariantViolationError{Detail: "duplicate child id " + child.ID}
	}
	s.children[child.ID] = rec
	s.order = append(s.order, child.ID)

	s.log.Info("child created", zap.String("child_id", child.ID))
	return child, nil
}

// RecordSession appends a session outcome to a goal and applies the pass and
// unlock rules. It returns the goal's updated progress.
func (s *Store) RecordSession(childID, categoryID, goalID string, outcome SessionOutcome) (GoalProgress, error) {
	res, err := s.Record(childID, categoryID, goalID, outcome)
	if err != nil {
		return GoalProgress{}, err
	}
	return res.Progress, nil
}

// Record is RecordSession with the full description of what changed.
// Either every step applies or none does.
func (s *Store) Record(childID, categoryID, goalID string, outcome SessionOutcome) (Result, error) {
	if err := s.checkReference(categoryID, goalID); err != nil {
		return Result{}, err
	}
	if outcome.ActivitiesTotal < 0 || outcome.ActivitiesPassed < 0 || outcome.ActivitiesPassed > outcome.ActivitiesTotal {
		return Result{}, &errs.ValidationError{Field: "activities"}
	}
	if outcome.Date.IsZero() {
		outcome.Date = s.now()
	}

	rec, err := s.record(childID)
	if err != nil {
		return Result{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	goals := rec.progress[categoryID]
	var current GoalProgress
	if gp, ok := goals[goalID]; ok {
		current = gp.clone()
	} else {
		current = GoalProgress{Unlocked: true}
	}

	// Build the new state aside and commit only after every check passes.
	next := current.clone()
	next.Sessions = append(next.Sessions, outcome)

	streak := ConsecutivePasses(next.Sessions)
	newlyPassed := false
	if streak >= PassStreak && !current.Passed {
		next.Passed = true
		newlyPassed = true
	}
	if current.Passed && !next.Passed {
		return Result{}, s.refuse(childID, categoryID, goalID, "passed goal would become unpassed")
	}
	if streak < 0 || streak > len(next.Sessions) {
		return Result{}, s.refuse(childID, categoryID, goalID, "streak out of range")
	}

	var unlockedID string
	if newlyPassed {
		nextGoal, ok, err := s.catalog.NextGoal(categoryID, goalID)
		if err != nil {
			return Result{}, err
		}
		if ok {
			unlockedID = nextGoal.ID
		}
	}

	session := SessionRecord{
		ID:             s.newID(),
		ChildID:        childID,
		CategoryID:     categoryID,
		GoalID:         goalID,
		SessionOutcome: outcome,
	}

	// Commit.
	if goals == nil {
		goals = make(map[string]*GoalProgress)
		rec.progress[categoryID] = goals
	}
	stored := next.clone()
	goals[goalID] = &stored
	if unlockedID != "" {
		if gp, ok := goals[unlockedID]; ok {
			gp.Unlocked = true
		} else {
			goals[unlockedID] = &GoalProgress{Unlocked: true}
		}
	}
	rec.sessions = append(rec.sessions, session)

	s.log.Debug("session recorded",
		zap.String("child_id", childID),
		zap.String("category_id", categoryID),
		zap.String("goal_id", goalID),
		zap.Bool("passed", outcome.IsPassed),
		zap.Int("streak", streak),
	)
	if newlyPassed {
		s.log.Info("goal passed",
			zap.String("child_id", childID),
			zap.String("goal_id", goalID),
			zap.String("unlocked_goal_id", unlockedID),
		)
	}

	return Result{
		Progress:    next,
		Session:     session,
		Streak:      streak,
		NewlyPassed: newlyPassed,
		UnlockedID:  unlockedID,
	}, nil
}

// refuse logs an invariant violation and returns it. No state is changed.
func (s *Store) refuse(childID, categoryID, goalID, detail string) error {
	s.log.Error("invariant violation, mutation refused",
		zap.String("child_id", childID),
		zap.String("category_id", categoryID),
		zap.String("goal_id", goalID),
		zap.String("detail", detail),
	)
	return &errs.InvariantViolationError{Detail: detail}
}

// checkReference distinguishes an unknown category from a goal that is not
// part of a known category.
func (s *Store) checkReference(categoryID, goalID string) error {
	if _, err := s.catalog.Category(categoryID); err != nil {
		return err
	}
	if !s.catalog.Contains(categoryID, goalID) {
		return &errs.InvalidReferenceError{CategoryID: categoryID, GoalID: goalID}
	}
	return nil
}

func (s *Store) record(childID string) (*childRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.children[childID]
	if !ok {
		return nil, errs.NotFound("child", childID)
	}
	return rec, nil
}

// Child returns a registered child.
func (s *Store) Child(childID string) (Child, error) {
	rec, err := s.record(childID)
	if err != nil {
		return Child{}, err
	}
	rec.mu.RLock()
	defer rec.mu.RUnlock()
	return rec.child, nil
}

// ListChildren returns all children in registration order.
func (s *Store) ListChildren() []Child {
	s.mu.RLock()
	recs := make([]*childRecord, 0, len(s.order))
	for _, id := range s.order {
		recs = append(recs, s.children[id])
	}
	s.mu.RUnlock()

	out := make([]Child, 0, len(recs))
	for _, rec := range recs {
		rec.mu.RLock()
		out = append(out, rec.child)
		rec.mu.RUnlock()
	}
	return out
}

// FindChildren returns children whose name contains q (case-insensitive) or
// whose MR number contains q. A blank query returns every child.
func (s *Store) FindChildren(q string) []Child {
	all := s.ListChildren()
	q = strings.TrimSpace(q)
	if q == "" {
		return all
	}
	lower := strings.ToLower(q)
	var out []Child
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Name), lower) || strings.Contains(c.MRNumber, q) {
			out = append(out, c)
		}
	}
	return out
}

func trimFields(f ChildFields) ChildFields {
	return ChildFields{
		Name:       strings.TrimSpace(f.Name),
		MRNumber:   strings.TrimSpace(f.MRNumber),
		DOB:        strings.TrimSpace(f.DOB),
		Gender:     strings.TrimSpace(f.Gender),
		ParentName: strings.TrimSpace(f.ParentName),
	}
}

func validateFields(f ChildFields) error {
	required := []struct {
		name  string
		value string
	}{
		{"name", f.Name},
		{"mr number", f.MRNumber},
		{"date of birth", f.DOB},
		{"gender", f.Gender},
		{"parent name", f.ParentName},
	}
	for _, r := range required {
		if r.value == "" {
			return &errs.ValidationError{Field: r.name}
		}
	}
	return nil
}
