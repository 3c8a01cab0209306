package progress

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/edgeplay/internal/model"
	"github.com/verte-zerg/edgeplay/internal/store"
)

func newLoaded(t *testing.T, kv store.KV, opts ...Option) *Manager {
	t.Helper()
	m := New(kv, opts...)
	m.Load(context.Background())
	return m
}

func TestFreshProgressDefaults(t *testing.T) {
	m := newLoaded(t, store.NewMemory())
	for _, gt := range model.GameTypes {
		levels := m.Progress(gt)
		if len(levels) != model.LevelCount {
			t.Fatalf("%s: expected %d levels, got %d", gt, model.LevelCount, len(levels))
		}
		for i, lp := range levels {
			if lp.LevelNumber != i+1 {
				t.Fatalf("%s: levels out of order at %d", gt, i)
			}
			if lp.IsUnlocked != (i == 0) {
				t.Fatalf("%s level %d: unexpected unlocked=%v", gt, lp.LevelNumber, lp.IsUnlocked)
			}
			if lp.IsCompleted || lp.BestScore != 0 || lp.Attempts != 0 {
				t.Fatalf("%s level %d: expected zero progress, got %+v", gt, lp.LevelNumber, lp)
			}
		}
	}
	if m.HasCompletedOnboarding() {
		t.Fatalf("expected onboarding not completed on first run")
	}
	if m.TotalUnlockedLevels() != 3 || m.TotalCompletedLevels() != 0 {
		t.Fatalf("unexpected totals: unlocked=%d completed=%d", m.TotalUnlockedLevels(), m.TotalCompletedLevels())
	}
}

func TestRecordOutcomeCompletedUnlocksNext(t *testing.T) {
	ctx := context.Background()
	m := newLoaded(t, store.NewMemory())

	earned := m.RecordOutcome(ctx, model.Precision, 1, 50, true)
	lp, _ := m.Level(model.Precision, 1)
	if !lp.IsCompleted || lp.BestScore != 50 || lp.Attempts != 1 {
		t.Fatalf("unexpected level 1 progress: %+v", lp)
	}
	next, _ := m.Level(model.Precision, 2)
	if !next.IsUnlocked {
		t.Fatalf("expected level 2 unlocked")
	}
	if other, _ := m.Level(model.Sequence, 2); other.IsUnlocked {
		t.Fatalf("expected other game tracks untouched")
	}
	if len(earned) != 1 || earned[0] != model.FirstStep {
		t.Fatalf("expected FirstStep earned, got %v", earned)
	}

	m.RecordOutcome(ctx, model.Precision, 1, 30, true)
	lp, _ = m.Level(model.Precision, 1)
	if lp.BestScore != 50 {
		t.Fatalf("expected best score to stay 50, got %d", lp.BestScore)
	}
	if lp.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", lp.Attempts)
	}

	stats := m.Stats()
	if stats.TotalLevelsCompleted != 2 || stats.HighestLevelReached[model.Precision] != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRecordOutcomeLastLevelHasNoNext(t *testing.T) {
	m := newLoaded(t, store.NewMemory())
	m.RecordOutcome(context.Background(), model.Sequence, model.LevelCount, 10, true)
	lp, _ := m.Level(model.Sequence, model.LevelCount)
	if !lp.IsCompleted || !lp.IsUnlocked {
		t.Fatalf("expected last level completed and unlocked: %+v", lp)
	}
	if _, ok := m.Level(model.Sequence, model.LevelCount+1); ok {
		t.Fatalf("expected no level beyond the track")
	}
}

func TestRecordOutcomeUnknownLevelIsNoop(t *testing.T) {
	m := newLoaded(t, store.NewMemory())
	if earned := m.RecordOutcome(context.Background(), model.Pathfinder, 99, 10, true); earned != nil {
		t.Fatalf("expected no badges for unknown level")
	}
	if m.Stats().TotalLevelsCompleted != 0 {
		t.Fatalf("expected stats untouched")
	}
}

func TestStreaksAndFocusedBadge(t *testing.T) {
	ctx := context.Background()
	m := newLoaded(t, store.NewMemory())
	for level := 1; level <= 5; level++ {
		m.RecordOutcome(ctx, model.Pathfinder, level, 10, true)
	}
	if s := m.Stats(); s.CurrentStreak != 5 || s.BestStreak != 5 {
		t.Fatalf("expected streak 5, got %+v", s)
	}
	if !m.HasBadge(model.FocusedBadge) {
		t.Fatalf("expected Focused badge after 5 streak")
	}

	m.RecordOutcome(ctx, model.Pathfinder, 6, 0, false)
	s := m.Stats()
	if s.CurrentStreak != 0 {
		t.Fatalf("expected streak reset, got %d", s.CurrentStreak)
	}
	if s.BestStreak < 5 {
		t.Fatalf("expected best streak kept, got %d", s.BestStreak)
	}
	if !m.HasBadge(model.FocusedBadge) {
		t.Fatalf("badges must never be revoked")
	}
	lp, _ := m.Level(model.Pathfinder, 6)
	if lp.IsCompleted || lp.Attempts != 1 {
		t.Fatalf("unexpected failed level progress: %+v", lp)
	}
}

func TestCommittedAndRelentless(t *testing.T) {
	ctx := context.Background()
	m := newLoaded(t, store.NewMemory())
	for level := 1; level <= 10; level++ {
		m.RecordOutcome(ctx, model.Sequence, level, 10, true)
	}
	if !m.HasBadge(model.Committed) {
		t.Fatalf("expected Committed after 10 completions")
	}
	if m.HasBadge(model.Relentless) {
		t.Fatalf("Relentless awarded too early")
	}
	m.RecordOutcome(ctx, model.Sequence, 11, 10, true)
	m.RecordOutcome(ctx, model.Sequence, 12, 10, true)
	if !m.HasBadge(model.Relentless) {
		t.Fatalf("expected Relentless after a full track")
	}
	if got := m.CompletionPercentage(model.Sequence); got != 100 {
		t.Fatalf("expected 100%% completion, got %f", got)
	}
	if got := m.CompletionPercentage(model.Precision); got != 0 {
		t.Fatalf("expected 0%% completion, got %f", got)
	}
	if m.HasBadge(model.Master) || m.HasBadge(model.Perfectionist) {
		t.Fatalf("unexpected badges: %v", m.Badges())
	}
}

func completeEverything(ctx context.Context, m *Manager, skipLast bool) {
	for _, gt := range model.GameTypes {
		for level := 1; level <= model.LevelCount; level++ {
			if skipLast && gt == model.Sequence && level == model.LevelCount {
				continue
			}
			m.RecordOutcome(ctx, gt, level, 100, true)
		}
	}
}

func TestMasterUsesSelectedDifficulty(t *testing.T) {
	ctx := context.Background()
	m := newLoaded(t, store.NewMemory())
	completeEverything(ctx, m, true)

	m.SetSelectedDifficulty(model.Intense)
	m.RecordOutcome(ctx, model.Sequence, model.LevelCount, 100, true)
	if !m.HasBadge(model.Master) {
		t.Fatalf("expected Master when last level is completed on Intense")
	}
}

func TestMasterCompletedDifficultyRule(t *testing.T) {
	ctx := context.Background()
	m := newLoaded(t, store.NewMemory(), WithMasterRule(MasterCompletedDifficulty))
	completeEverything(ctx, m, true)
	m.SetSelectedDifficulty(model.Intense)
	m.RecordOutcome(ctx, model.Sequence, model.LevelCount, 100, true)
	if m.HasBadge(model.Master) {
		t.Fatalf("expected Master withheld while earlier levels were not completed on Intense")
	}

	completeEverything(ctx, m, false)
	if !m.HasBadge(model.Master) {
		t.Fatalf("expected Master once every level was completed on Intense")
	}
	lp, _ := m.Level(model.Pathfinder, 1)
	if lp.BestDifficulty == nil || *lp.BestDifficulty != model.Intense {
		t.Fatalf("expected best difficulty Intense, got %v", lp.BestDifficulty)
	}
}

func TestResetAllProgress(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	m := newLoaded(t, kv)
	m.CompleteOnboarding(ctx)
	m.StartSession(ctx)
	m.RecordGamePlayed(ctx, model.Pathfinder)
	m.RecordOutcome(ctx, model.Pathfinder, 1, 100, true)
	m.RecordSession(ctx, model.SessionRecord{ID: "x", GameType: model.Pathfinder, Level: 1, EndedAt: time.Now()})

	m.ResetAllProgress(ctx)
	if m.HasCompletedOnboarding() {
		t.Fatalf("expected onboarding flag cleared")
	}
	if len(m.Badges()) != 0 {
		t.Fatalf("expected no badges, got %v", m.Badges())
	}
	s := m.Stats()
	if s.TotalSessions != 0 || s.TotalLevelsCompleted != 0 || s.BestStreak != 0 || len(s.GamesPlayed) != 0 {
		t.Fatalf("expected zero stats, got %+v", s)
	}
	for _, gt := range model.GameTypes {
		for _, lp := range m.Progress(gt) {
			if lp.IsUnlocked != (lp.LevelNumber == 1) || lp.IsCompleted || lp.Attempts != 0 {
				t.Fatalf("expected default level after reset: %+v", lp)
			}
		}
	}
	if _, ok, _ := kv.Get(ctx, KeyOnboarding); ok {
		t.Fatalf("expected onboarding key removed")
	}
	history, err := m.History(ctx, model.HistoryFilter{})
	if err != nil || len(history) != 0 {
		t.Fatalf("expected empty history after reset, got %v err=%v", history, err)
	}

	reloaded := newLoaded(t, kv)
	if reloaded.TotalCompletedLevels() != 0 || reloaded.HasCompletedOnboarding() {
		t.Fatalf("expected reset state to persist")
	}
}

func TestPersistenceAcrossReload(t *testing.T) {
	ctx := context.Background()
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "edgeplay.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	m := newLoaded(t, st, WithDifficulty(model.Focused))
	m.CompleteOnboarding(ctx)
	m.RecordGamePlayed(ctx, model.Sequence)
	m.RecordGamePlayed(ctx, model.Sequence)
	m.RecordOutcome(ctx, model.Sequence, 1, 75, true)
	m.RecordOutcome(ctx, model.Sequence, 2, 20, false)

	again := newLoaded(t, st)
	if !again.HasCompletedOnboarding() {
		t.Fatalf("expected onboarding persisted")
	}
	lp, _ := again.Level(model.Sequence, 1)
	if !lp.IsCompleted || lp.BestScore != 75 {
		t.Fatalf("unexpected reloaded level: %+v", lp)
	}
	if lp.BestDifficulty == nil || *lp.BestDifficulty != model.Focused {
		t.Fatalf("expected best difficulty persisted, got %v", lp.BestDifficulty)
	}
	if l2, _ := again.Level(model.Sequence, 2); !l2.IsUnlocked || l2.Attempts != 1 {
		t.Fatalf("unexpected reloaded level 2: %+v", l2)
	}
	s := again.Stats()
	if s.GamesPlayed[model.Sequence] != 2 || s.TotalLevelsCompleted != 1 || s.CurrentStreak != 0 {
		t.Fatalf("unexpected reloaded stats: %+v", s)
	}
	if !again.HasBadge(model.FirstStep) {
		t.Fatalf("expected FirstStep persisted")
	}
}

func TestCorruptBlobsFallBackToDefaults(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	_ = kv.Set(ctx, KeyOnboarding, []byte("maybe"))
	_ = kv.Set(ctx, KeyStats, []byte("{not json"))
	_ = kv.Set(ctx, KeyLevels, []byte(`{"Pathfinder_1": 12}`))
	_ = kv.Set(ctx, KeyBadges, []byte(`["Unknown Badge"]`))

	m := newLoaded(t, kv)
	if m.HasCompletedOnboarding() {
		t.Fatalf("expected onboarding default")
	}
	if m.Stats().TotalSessions != 0 {
		t.Fatalf("expected default stats")
	}
	if len(m.Badges()) != 0 {
		t.Fatalf("expected empty badges")
	}
	if lp, _ := m.Level(model.Pathfinder, 1); !lp.IsUnlocked {
		t.Fatalf("expected default levels")
	}
	m.RecordOutcome(ctx, model.Pathfinder, 1, 10, true)
	if lp, _ := m.Level(model.Pathfinder, 1); !lp.IsCompleted {
		t.Fatalf("expected store usable after corrupt load")
	}
}

func TestPartialLevelMapIsFilled(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	_ = kv.Set(ctx, KeyLevels, []byte(`{"Precision_1":{"gameType":"Precision","levelNumber":1,"isUnlocked":true,"isCompleted":true,"bestScore":90,"attempts":3},"Precision_2":{"gameType":"Precision","levelNumber":2,"isUnlocked":false,"isCompleted":true,"bestScore":10,"attempts":1}}`))

	m := newLoaded(t, kv)
	if len(m.Progress(model.Pathfinder)) != model.LevelCount {
		t.Fatalf("expected missing games filled with defaults")
	}
	lp, _ := m.Level(model.Precision, 1)
	if lp.BestScore != 90 || lp.Attempts != 3 {
		t.Fatalf("expected stored level kept: %+v", lp)
	}
	if l2, _ := m.Level(model.Precision, 2); !l2.IsUnlocked {
		t.Fatalf("expected completed level repaired to unlocked")
	}
}

func TestSessionPlayTime(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := newLoaded(t, store.NewMemory(), WithClock(clock))

	m.EndSession(ctx)
	if m.Stats().TotalPlayTime != 0 {
		t.Fatalf("expected unmatched EndSession to be a no-op")
	}

	m.StartSession(ctx)
	now = now.Add(95 * time.Minute)
	m.EndSession(ctx)
	s := m.Stats()
	if s.TotalSessions != 1 || s.TotalPlayTime != 95*time.Minute {
		t.Fatalf("unexpected session stats: %+v", s)
	}
	if s.FormattedPlayTime() != "1h 35m" {
		t.Fatalf("unexpected formatted play time %q", s.FormattedPlayTime())
	}
	m.EndSession(ctx)
	if m.Stats().TotalPlayTime != 95*time.Minute {
		t.Fatalf("expected second EndSession to be a no-op")
	}
}

func TestParseMasterRule(t *testing.T) {
	if r, err := ParseMasterRule("completed"); err != nil || r != MasterCompletedDifficulty {
		t.Fatalf("unexpected parse result %v %v", r, err)
	}
	if _, err := ParseMasterRule("bogus"); err == nil {
		t.Fatalf("expected error for unknown rule")
	}
}
