package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestFormatPlayTime(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m"},
		{59 * time.Second, "0m"},
		{12 * time.Minute, "12m"},
		{time.Hour + 5*time.Minute + 30*time.Second, "1h 5m"},
		{26*time.Hour + 59*time.Minute, "26h 59m"},
	}
	for _, tc := range cases {
		if got := FormatPlayTime(tc.d); got != tc.want {
			t.Fatalf("FormatPlayTime(%s) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestDifficultyNextWraps(t *testing.T) {
	if Calm.Next() != Focused || Focused.Next() != Intense || Intense.Next() != Calm {
		t.Fatalf("unexpected difficulty cycle")
	}
	if Intense.ScoreMultiplier() != 2.0 || Calm.TimeMultiplier() != 1.5 {
		t.Fatalf("unexpected multipliers")
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	if _, err := ParseDifficulty("Brutal"); err == nil {
		t.Fatalf("expected difficulty error")
	}
	if _, err := ParseGameType("Chess"); err == nil {
		t.Fatalf("expected game error")
	}
	if _, err := ParseBadge("Nope"); err == nil {
		t.Fatalf("expected badge error")
	}
	if gt, err := ParseGameType("Sequence"); err != nil || gt != Sequence {
		t.Fatalf("expected Sequence, got %v err=%v", gt, err)
	}
}

func TestPlayerStatsJSONUsesNames(t *testing.T) {
	s := NewPlayerStats()
	s.GamesPlayed[Precision] = 2
	blob, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(blob), `"gamesPlayed":{"Precision":2}`) {
		t.Fatalf("expected named map keys, got %s", blob)
	}
	var back PlayerStats
	if err := json.Unmarshal(blob, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.GamesPlayed[Precision] != 2 {
		t.Fatalf("expected games played restored, got %+v", back.GamesPlayed)
	}
}

func TestDefaultLevelsUnlockFirstOnly(t *testing.T) {
	levels := DefaultLevels(Pathfinder)
	if len(levels) != LevelCount {
		t.Fatalf("expected %d levels, got %d", LevelCount, len(levels))
	}
	if !levels[0].IsUnlocked || levels[1].IsUnlocked {
		t.Fatalf("expected only level 1 unlocked")
	}
	if levels[4].Key() != "Pathfinder_5" {
		t.Fatalf("unexpected key %q", levels[4].Key())
	}
}

func TestStatsConfigFilterLeavesLast(t *testing.T) {
	gt := Precision
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := StatsConfig{GameType: &gt, Since: &since, Last: 3, CurveWindow: 5}.Filter()
	if f.GameType != &gt || f.Since != &since || f.Last != 0 {
		t.Fatalf("unexpected filter %+v", f)
	}
}

func TestNewGameState(t *testing.T) {
	s := NewGameState(4)
	if s.CurrentLevel != 4 || s.Lives != StartingLives || s.Score != 0 || s.IsGameOver || s.IsCompleted {
		t.Fatalf("unexpected state %+v", s)
	}
}
