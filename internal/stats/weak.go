package stats

import (
	"sort"

	"github.com/verte-zerg/edgeplay/internal/model"
)

// LevelRate is the clear rate of a level over its recorded sessions.
type LevelRate struct {
	LevelRef
	Sessions int
	Cleared  int
}

// Rate is the share of cleared sessions, 0 to 1.
func (r LevelRate) Rate() float64 {
	if r.Sessions == 0 {
		return 1.0
	}
	return float64(r.Cleared) / float64(r.Sessions)
}

// WeakLevels selects the levels with the lowest clear rate that were
// played at least minSessions times.
func WeakLevels(records []model.SessionRecord, top, minSessions int) []LevelRate {
	byLevel := map[LevelRef]*LevelRate{}
	for _, rec := range records {
		ref := LevelRef{GameType: rec.GameType, Level: rec.Level}
		lr, ok := byLevel[ref]
		if !ok {
			lr = &LevelRate{LevelRef: ref}
			byLevel[ref] = lr
		}
		lr.Sessions++
		if rec.Completed {
			lr.Cleared++
		}
	}
	candidates := make([]LevelRate, 0, len(byLevel))
	for _, lr := range byLevel {
		if lr.Sessions >= max(1, minSessions) && lr.Cleared < lr.Sessions {
			candidates = append(candidates, *lr)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ri, rj := candidates[i].Rate(), candidates[j].Rate()
		if ri != rj {
			return ri < rj
		}
		if candidates[i].Sessions != candidates[j].Sessions {
			return candidates[i].Sessions > candidates[j].Sessions
		}
		return lessRef(candidates[i].LevelRef, candidates[j].LevelRef)
	})
	if top > 0 && top < len(candidates) {
		candidates = candidates[:top]
	}
	return candidates
}
