package stats

import (
	"sort"

	"github.com/verte-zerg/edgeplay/internal/model"
)

// LevelRef names one level of one game.
type LevelRef struct {
	GameType model.GameType
	Level    int
}

func (r LevelRef) String() string {
	return model.LevelKey(r.GameType, r.Level)
}

// LevelCount is a level together with how often it was played.
type LevelCount struct {
	LevelRef
	Sessions int
}

// MostPlayed returns the top n levels by session count.
func MostPlayed(records []model.SessionRecord, n int) []LevelCount {
	if n <= 0 || len(records) == 0 {
		return nil
	}
	counts := map[LevelRef]int{}
	for _, rec := range records {
		counts[LevelRef{GameType: rec.GameType, Level: rec.Level}]++
	}
	items := make([]LevelCount, 0, len(counts))
	for ref, c := range counts {
		items = append(items, LevelCount{LevelRef: ref, Sessions: c})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Sessions != items[j].Sessions {
			return items[i].Sessions > items[j].Sessions
		}
		return lessRef(items[i].LevelRef, items[j].LevelRef)
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

func lessRef(a, b LevelRef) bool {
	if a.GameType != b.GameType {
		return a.GameType < b.GameType
	}
	return a.Level < b.Level
}
