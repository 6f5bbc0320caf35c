package progress

import (
	"math"

	"github.com/speechpath/speechpath/internal/catalog"
)

// LevelUnlockPercent is the completion a level needs before the next level opens.
const LevelUnlockPercent = 60

// Query derives read-only views from a Store. It never mutates it.
type Query struct {
	store     *Store
	levelSize int
}

// NewQuery creates a Query over st. levelSize sets how many goals form one
// level in Levels; values below 1 use catalog.DefaultLevelSize.
func NewQuery(st *Store, levelSize int) *Query {
	if levelSize < 1 {
		levelSize = catalog.DefaultLevelSize
	}
	return &Query{store: st, levelSize: levelSize}
}

// categoryView copies one category's progress for a child under the child's
// read lock.
func (q *Query) categoryView(childID, categoryID string) (catalog.Category, map[string]GoalProgress, error) {
	rec, err := q.store.record(childID)
	if err != nil {
		return catalog.Category{}, nil, err
	}
	cat, err := q.store.catalog.Category(categoryID)
	if err != nil {
		return catalog.Category{}, nil, err
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()
	goals := rec.progress[categoryID]
	out := make(map[string]GoalProgress, len(goals))
	for id, gp := range goals {
		out[id] = gp.clone()
	}
	return cat, out, nil
}

// Progress returns goalID -> progress for one category. The map is empty if
// nothing was recorded yet.
func (q *Query) Progress(childID, categoryID string) (map[string]GoalProgress, error) {
	_, goals, err := q.categoryView(childID, categoryID)
	return goals, err
}

// UnlockedGoals returns the unlocked goals of a category in catalog order.
func (q *Query) UnlockedGoals(childID, categoryID string) ([]GoalEntry, error) {
	cat, goals, err := q.categoryView(childID, categoryID)
	if err != nil {
		return nil, err
	}
	return unlockedInOrder(cat, goals), nil
}

func unlockedInOrder(cat catalog.Category, goals map[string]GoalProgress) []GoalEntry {
	var out []GoalEntry
	for _, g := range cat.Goals {
		if gp, ok := goals[g.ID]; ok && gp.Unlocked {
			out = append(out, GoalEntry{GoalID: g.ID, Progress: gp})
		}
	}
	return out
}

// CurrentGoal returns the first unlocked goal that is not passed. When every
// unlocked goal is passed it returns the last unlocked one. The bool is false
// when nothing is unlocked.
func (q *Query) CurrentGoal(childID, categoryID string) (GoalEntry, bool, error) {
	unlocked, err := q.UnlockedGoals(childID, categoryID)
	if err != nil {
		return GoalEntry{}, false, err
	}
	if len(unlocked) == 0 {
		return GoalEntry{}, false, nil
	}
	for _, e := range unlocked {
		if !e.Progress.Passed {
			return e, true, nil
		}
	}
	return unlocked[len(unlocked)-1], true, nil
}

// StreakStatus returns the streak view for one goal. A goal with no progress
// entry reports zeros.
func (q *Query) StreakStatus(childID, categoryID, goalID string) (StreakStatus, error) {
	if err := q.store.checkReference(categoryID, goalID); err != nil {
		return StreakStatus{}, err
	}
	_, goals, err := q.categoryView(childID, categoryID)
	if err != nil {
		return StreakStatus{}, err
	}
	return Status(goals[goalID]), nil
}

// CategoryStatus summarizes goal completion within one category.
type CategoryStatus struct {
	Passed    int
	Total     int
	Percent   int
	Exhausted bool // the category's last goal is passed
}

// CategoryStatus reports how many goals of a category are passed.
func (q *Query) CategoryStatus(childID, categoryID string) (CategoryStatus, error) {
	cat, goals, err := q.categoryView(childID, categoryID)
	if err != nil {
		return CategoryStatus{}, err
	}
	st := CategoryStatus{Total: len(cat.Goals)}
	for _, g := range cat.Goals {
		if goals[g.ID].Passed {
			st.Passed++
		}
	}
	st.Percent = percent(st.Passed, st.Total)
	st.Exhausted = goals[cat.Goals[len(cat.Goals)-1].ID].Passed
	return st, nil
}

// LevelStatus is one level of a category with its completion.
type LevelStatus struct {
	Index             int
	GoalIDs           []string
	Passed            int
	Total             int
	CompletionPercent int
	Unlocked          bool
}

// Levels groups a category's goals into levels and evaluates the level gate:
// the first level is open, and each later level opens once the previous one
// has at least LevelUnlockPercent of its goals passed. The gate is reported
// alongside goal-level unlocks and never changes them.
func (q *Query) Levels(childID, categoryID string) ([]LevelStatus, error) {
	_, goals, err := q.categoryView(childID, categoryID)
	if err != nil {
		return nil, err
	}
	levels, err := q.store.catalog.Levels(categoryID, q.levelSize)
	if err != nil {
		return nil, err
	}

	out := make([]LevelStatus, 0, len(levels))
	for i, lvl := range levels {
		ls := LevelStatus{Index: lvl.Index, Total: len(lvl.Goals)}
		for _, g := range lvl.Goals {
			ls.GoalIDs = append(ls.GoalIDs, g.ID)
			if goals[g.ID].Passed {
				ls.Passed++
			}
		}
		ls.CompletionPercent = percent(ls.Passed, ls.Total)
		if i == 0 {
			ls.Unlocked = true
		} else {
			prev := out[i-1]
			ls.Unlocked = prev.Unlocked && prev.Passed*100 >= LevelUnlockPercent*prev.Total
		}
		out = append(out, ls)
	}
	return out, nil
}

// percent returns round(100*part/total), or 0 when total is 0.
func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}
