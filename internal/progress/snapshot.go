package progress

import (
	"fmt"

	"github.com/speechpath/speechpath/internal/catalog"
	"github.com/speechpath/speechpath/internal/store"
)

// NewStore creates a progress store, loading state from the snapshot if one
// is given.
func NewStore(cat *catalog.Catalog, snap *store.SnapshotData, opts ...Option) (*Store, error) {
	s := newStore(cat, opts)
	if snap == nil {
		return s, nil
	}
	if snap.Version > store.SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported version %d", snap.Version, store.SnapshotVersion)
	}

	for _, cd := range snap.Children {
		if cd.ID == "" {
			return nil, fmt.Errorf("snapshot child without id")
		}
		if _, dup := s.children[cd.ID]; dup {
			return nil, fmt.Errorf("snapshot has duplicate child %q", cd.ID)
		}
		s.children[cd.ID] = childFromData(cd)
		s.order = append(s.order, cd.ID)
	}
	return s, nil
}

func childFromData(cd store.ChildData) *childRecord {
	rec := &childRecord{
		child: Child{
			ID: cd.ID,
			ChildFields: ChildFields{
				Name:       cd.Name,
				MRNumber:   cd.MRNumber,
				DOB:        cd.DOB,
				Gender:     cd.Gender,
				ParentName: cd.ParentName,
			},
			CreatedAt: cd.CreatedAt,
		},
		progress: make(map[string]map[string]*GoalProgress, len(cd.Progress)),
		sessions: make([]SessionRecord, 0, len(cd.Sessions)),
	}

	for catID, goals := range cd.Progress {
		m := make(map[string]*GoalProgress, len(goals))
		for goalID, gd := range goals {
			if gd == nil {
				continue
			}
			gp := &GoalProgress{
				Passed:   gd.Passed,
				Unlocked: gd.Unlocked,
				Sessions: make([]SessionOutcome, 0, len(gd.Sessions)),
			}
			for _, od := range gd.Sessions {
				gp.Sessions = append(gp.Sessions, outcomeFromData(od))
			}
			m[goalID] = gp
		}
		rec.progress[catID] = m
	}

	for _, sd := range cd.Sessions {
		rec.sessions = append(rec.sessions, SessionRecord{
			ID:             sd.ID,
			ChildID:        sd.ChildID,
			CategoryID:     sd.CategoryID,
			GoalID:         sd.GoalID,
			SessionOutcome: outcomeFromData(sd.SessionOutcomeData),
		})
	}
	return rec
}

func outcomeFromData(od store.SessionOutcomeData) SessionOutcome {
	return SessionOutcome{
		IsPassed:         od.IsPassed,
		Date:             od.Date,
		ActivitiesPassed: od.ActivitiesPassed,
		ActivitiesTotal:  od.ActivitiesTotal,
		TherapistName:    od.TherapistName,
	}
}

func outcomeToData(o SessionOutcome) store.SessionOutcomeData {
	return store.SessionOutcomeData{
		IsPassed:         o.IsPassed,
		Date:             o.Date,
		ActivitiesPassed: o.ActivitiesPassed,
		ActivitiesTotal:  o.ActivitiesTotal,
		TherapistName:    o.TherapistName,
	}
}

// SnapshotData exports the whole store for persistence. Each child is copied
// under its own read lock, so every child in the snapshot is consistent.
func (s *Store) SnapshotData() *store.SnapshotData {
	s.mu.RLock()
	recs := make([]*childRecord, 0, len(s.order))
	for _, id := range s.order {
		recs = append(recs, s.children[id])
	}
	s.mu.RUnlock()

	data := &store.SnapshotData{
		Version:  store.SnapshotVersion,
		Children: make([]store.ChildData, 0, len(recs)),
	}
	for _, rec := range recs {
		rec.mu.RLock()
		data.Children = append(data.Children, childToData(rec))
		rec.mu.RUnlock()
	}
	return data
}

func childToData(rec *childRecord) store.ChildData {
	cd := store.ChildData{
		ID:         rec.child.ID,
		Name:       rec.child.Name,
		MRNumber:   rec.child.MRNumber,
		DOB:        rec.child.DOB,
		Gender:     rec.child.Gender,
		ParentName: rec.child.ParentName,
		CreatedAt:  rec.child.CreatedAt,
		Progress:   make(map[string]map[string]*store.GoalProgressData, len(rec.progress)),
		Sessions:   make([]store.SessionRecordData, 0, len(rec.sessions)),
	}

	for catID, goals := range rec.progress {
		m := make(map[string]*store.GoalProgressData, len(goals))
		for goalID, gp := range goals {
			gd := &store.GoalProgressData{
				Passed:   gp.Passed,
				Unlocked: gp.Unlocked,
				Sessions: make([]store.SessionOutcomeData, 0, len(gp.Sessions)),
			}
			for _, o := range gp.Sessions {
				gd.Sessions = append(gd.Sessions, outcomeToData(o))
			}
			m[goalID] = gd
		}
		cd.Progress[catID] = m
	}

	for _, sr := range rec.sessions {
		cd.Sessions = append(cd.Sessions, store.SessionRecordData{
			ID:                 sr.ID,
			ChildID:            sr.ChildID,
			CategoryID:         sr.CategoryID,
			GoalID:             sr.GoalID,
			SessionOutcomeData: outcomeToData(sr.SessionOutcome),
		})
	}
	return cd
}
