package progress

import (
	"slices"
	"time"
)

// CategoryStats are session totals for one category.
type CategoryStats struct {
	Passed             int
	Total              int
	SuccessRatePercent int
}

// ChildReport aggregates a child's session log.
type ChildReport struct {
	Child              Child
	TotalSessions      int
	PassedSessions     int
	SuccessRatePercent int
	SessionsByCategory map[string][]SessionRecord // log order within each category
	CategoryProgress   map[string]CategoryStats   // only categories with sessions
	LastSession        *SessionRecord
	CreatedAt          time.Time
}

// ChildReport builds a report from the child's session log. The log is read
// under the child's read lock, so totals always agree with each other.
func (q *Query) ChildReport(childID string) (ChildReport, error) {
	rec, err := q.store.record(childID)
	if err != nil {
		return ChildReport{}, err
	}

	rec.mu.RLock()
	child := rec.child
	sessions := slices.Clone(rec.sessions)
	rec.mu.RUnlock()

	return buildReport(child, sessions), nil
}

func buildReport(child Child, sessions []SessionRecord) ChildReport {
	r := ChildReport{
		Child:              child,
		TotalSessions:      len(sessions),
		SessionsByCategory: make(map[string][]SessionRecord),
		CategoryProgress:   make(map[string]CategoryStats),
		CreatedAt:          child.CreatedAt,
	}

	for _, s := range sessions {
		r.SessionsByCategory[s.CategoryID] = append(r.SessionsByCategory[s.CategoryID], s)
		st := r.CategoryProgress[s.CategoryID]
		st.Total++
		if s.IsPassed {
			st.Passed++
			r.PassedSessions++
		}
		r.CategoryProgress[s.CategoryID] = st
	}
	for id, st := range r.CategoryProgress {
		st.SuccessRatePercent = percent(st.Passed, st.Total)
		r.CategoryProgress[id] = st
	}
	r.SuccessRatePercent = percent(r.PassedSessions, r.TotalSessions)

	if n := len(sessions); n > 0 {
		last := sessions[n-1]
		r.LastSession = &last
	}
	return r
}
