package statsui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/edgeplay/internal/model"
	"github.com/verte-zerg/edgeplay/internal/progress"
	"github.com/verte-zerg/edgeplay/internal/store"
)

func seededModel(t *testing.T) (*Model, *progress.Manager) {
	t.Helper()
	ctx := context.Background()
	pm := progress.New(store.NewMemory())
	pm.Load(ctx)
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	pm.RecordOutcome(ctx, model.Precision, 1, 160, true)
	pm.RecordSession(ctx, model.SessionRecord{
		ID:         "p1",
		GameType:   model.Precision,
		Level:      1,
		Difficulty: model.Calm,
		Score:      160,
		Completed:  true,
		LivesLeft:  3,
		StartedAt:  start,
		EndedAt:    start.Add(45 * time.Second),
	})

	m := NewModel(ctx, pm, model.StatsConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, pm
}

func TestOverviewShowsSummary(t *testing.T) {
	m, _ := seededModel(t)
	view := m.View()
	for _, want := range []string{"Overview", "History", "Best Score", "160", "BY GAME"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestHistoryTabListsSessions(t *testing.T) {
	m, _ := seededModel(t)
	for i := 0; i < tabHistory; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyRight})
	}
	if m.activeTab != tabHistory {
		t.Fatalf("expected history tab, got %d", m.activeTab)
	}
	view := m.View()
	if !strings.Contains(view, "Precision") || !strings.Contains(view, "Cleared") {
		t.Fatalf("expected session row in history:\n%s", view)
	}
}

func TestLevelRowsFollowGameFilter(t *testing.T) {
	m, _ := seededModel(t)
	if got := len(m.levelRows()); got != len(model.GameTypes)*model.LevelCount {
		t.Fatalf("expected all levels, got %d", got)
	}
	gt := model.Sequence
	m.cfg.GameType = &gt
	rows := m.levelRows()
	if len(rows) != model.LevelCount || rows[0][0] != "Sequence" {
		t.Fatalf("expected sequence levels only, got %d", len(rows))
	}
}

func TestApplyFilterRejectsUnknownGame(t *testing.T) {
	m, _ := seededModel(t)
	m.filterInputs[0].SetValue("chess")
	if err := m.applyFilter(); err == nil {
		t.Fatalf("expected invalid game error")
	}
	m.filterInputs[0].SetValue("precision")
	m.filterInputs[2].SetValue("5")
	if err := m.applyFilter(); err != nil {
		t.Fatalf("apply filter: %v", err)
	}
	if m.cfg.GameType == nil || *m.cfg.GameType != model.Precision || m.cfg.Last != 5 {
		t.Fatalf("unexpected filter config %+v", m.cfg)
	}
}

func TestResetRequiresConfirmation(t *testing.T) {
	m, pm := seededModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("R")})
	if !strings.Contains(m.View(), "Reset All Progress?") {
		t.Fatalf("expected confirmation modal")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if pm.TotalCompletedLevels() != 1 {
		t.Fatalf("expected progress kept after cancel")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("R")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if pm.TotalCompletedLevels() != 0 || len(m.report.Sessions) != 0 {
		t.Fatalf("expected progress and history cleared")
	}
	if m.notice == "" {
		t.Fatalf("expected reset notice")
	}
}

func TestCurveWindowSteps(t *testing.T) {
	if nextCurveWindow(1) != 5 || nextCurveWindow(7) != 10 || prevCurveWindow(5) != 1 || prevCurveWindow(12) != 10 {
		t.Fatalf("unexpected curve window steps")
	}
}
