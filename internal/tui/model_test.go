package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/edgeplay/internal/games"
	"github.com/verte-zerg/edgeplay/internal/generator"
	"github.com/verte-zerg/edgeplay/internal/model"
	"github.com/verte-zerg/edgeplay/internal/progress"
	"github.com/verte-zerg/edgeplay/internal/store"
)

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
	spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, onboarded bool) (*Model, *progress.Manager) {
	t.Helper()
	ctx := context.Background()
	pm := progress.New(store.NewMemory())
	pm.Load(ctx)
	if onboarded {
		pm.CompleteOnboarding(ctx)
	}
	m := NewModel(ctx, pm, generator.NewSeeded(11), nil)
	return m, pm
}

func press(m *Model, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func TestOnboardingCompletesToHub(t *testing.T) {
	m, pm := newTestModel(t, false)
	if m.screen != screenOnboarding {
		t.Fatalf("expected onboarding first")
	}
	if !strings.Contains(m.View(), "Step Forward") {
		t.Fatalf("expected first onboarding page")
	}
	for i := 0; i < len(onboardingPages); i++ {
		press(m, enterKey)
	}
	if m.screen != screenHub || !pm.HasCompletedOnboarding() {
		t.Fatalf("expected hub after onboarding, got screen %d", m.screen)
	}
	if !strings.Contains(m.View(), "Ready to progress?") {
		t.Fatalf("expected hub title")
	}
}

func TestHubCyclesDifficulty(t *testing.T) {
	m, pm := newTestModel(t, true)
	press(m, runeKey("d"))
	if pm.SelectedDifficulty() != model.Focused {
		t.Fatalf("expected Focused, got %s", pm.SelectedDifficulty())
	}
	press(m, runeKey("d"))
	press(m, runeKey("d"))
	if pm.SelectedDifficulty() != model.Calm {
		t.Fatalf("expected wrap to Calm, got %s", pm.SelectedDifficulty())
	}
}

func TestLockedLevelDoesNotStart(t *testing.T) {
	m, _ := newTestModel(t, true)
	press(m, enterKey)
	if m.screen != screenLevels || m.levelIdx != 0 {
		t.Fatalf("expected level picker on level 1, got screen %d idx %d", m.screen, m.levelIdx)
	}
	press(m, tea.KeyMsg{Type: tea.KeyRight})
	if cmd := press(m, enterKey); cmd != nil {
		t.Fatalf("expected no session for locked level")
	}
	if m.screen != screenLevels || !strings.Contains(m.notice, "Level 2 is locked") {
		t.Fatalf("expected locked notice, got %q", m.notice)
	}
}

func TestPathfinderClearThenContinue(t *testing.T) {
	m, pm := newTestModel(t, true)
	press(m, enterKey)
	if cmd := press(m, enterKey); cmd == nil {
		t.Fatalf("expected tick command on start")
	}
	pf, ok := m.coord.Game().(*games.Pathfinder)
	if !ok {
		t.Fatalf("expected pathfinder session")
	}
	for _, safe := range pf.Solution() {
		press(m, runeKey(string(rune('1'+safe[0]))))
	}
	if m.screen != screenResult || m.result == nil || !m.result.Record.Completed {
		t.Fatalf("expected completed result screen")
	}
	view := m.View()
	if !strings.Contains(view, "Level Complete!") || !strings.Contains(view, "New badge") {
		t.Fatalf("unexpected result view:\n%s", view)
	}
	press(m, runeKey("s"))
	if !m.showSolution || !strings.Contains(m.View(), "Safe path") {
		t.Fatalf("expected solution reveal")
	}

	press(m, enterKey)
	if m.screen != screenPlay || m.coord.Game().Level() != 2 {
		t.Fatalf("expected level 2 session, got screen %d", m.screen)
	}
	if lp, _ := pm.Level(model.Pathfinder, 1); !lp.IsCompleted {
		t.Fatalf("expected level 1 completed")
	}
}

func TestStaleTickIgnored(t *testing.T) {
	m, _ := newTestModel(t, true)
	m.gameIdx = 1
	press(m, enterKey)
	press(m, enterKey)
	first := m.coord.ID()

	press(m, escKey)
	press(m, runeKey("q"))
	if m.screen != screenLevels {
		t.Fatalf("expected level picker after quit")
	}
	press(m, enterKey)
	if m.coord.ID() == first {
		t.Fatalf("expected a new session id")
	}

	if cmd := press(m, tickMsg{id: first, at: m.lastTick.Add(time.Second)}); cmd != nil {
		t.Fatalf("expected stale tick to be dropped")
	}
	if pos := m.coord.Snapshot().Game.Precision.Position; pos != 0 {
		t.Fatalf("expected marker untouched by stale tick, got %f", pos)
	}
	if cmd := press(m, tickMsg{id: m.coord.ID(), at: m.lastTick.Add(frameInterval)}); cmd == nil {
		t.Fatalf("expected next tick scheduled")
	}
	if pos := m.coord.Snapshot().Game.Precision.Position; pos <= 0 {
		t.Fatalf("expected marker to move, got %f", pos)
	}
}

func TestPauseBlocksTaps(t *testing.T) {
	m, _ := newTestModel(t, true)
	m.gameIdx = 1
	press(m, enterKey)
	press(m, enterKey)

	press(m, escKey)
	if !m.coord.Paused() || !strings.Contains(m.View(), "Paused") {
		t.Fatalf("expected paused session")
	}
	press(m, spaceKey)
	if m.coord.Snapshot().Game.Precision.LastHit != nil {
		t.Fatalf("expected tap ignored while paused")
	}
	press(m, escKey)
	if m.coord.Paused() {
		t.Fatalf("expected resume")
	}
	press(m, spaceKey)
	if m.coord.Snapshot().Game.Precision.LastHit == nil {
		t.Fatalf("expected tap judged after resume")
	}
}

func TestRenderFooterFormats(t *testing.T) {
	m, _ := newTestModel(t, true)
	m.width = 120
	m.gameIdx = 2
	press(m, enterKey)
	press(m, enterKey)

	out := m.renderFooter()
	if !containsAll(out, []string{"Level 1", "Score 0", "Lives 3", "1-5 answer"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
