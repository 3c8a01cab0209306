// Package tui provides the Bubble Tea game interface.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/edgeplay/internal/games"
	"github.com/verte-zerg/edgeplay/internal/generator"
	"github.com/verte-zerg/edgeplay/internal/logging"
	"github.com/verte-zerg/edgeplay/internal/model"
	"github.com/verte-zerg/edgeplay/internal/progress"
	"github.com/verte-zerg/edgeplay/internal/session"
)

type screen int

const (
	screenOnboarding screen = iota
	screenHub
	screenLevels
	screenPlay
	screenResult
)

const (
	frameInterval = 16 * time.Millisecond
	// maxFrame caps the step after a stalled terminal so timers do not jump.
	maxFrame   = 250 * time.Millisecond
	gridColumn = 4
)

// tickMsg drives the session clock. id is the session that scheduled it.
type tickMsg struct {
	id string
	at time.Time
}

func tickCmd(id string) tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg{id: id, at: t}
	})
}

// Model implements the Bubble Tea game UI.
type Model struct {
	ctx      context.Context
	progress *progress.Manager
	gen      *generator.Generator
	log      logrus.FieldLogger
	now      func() time.Time

	width  int
	height int

	screen   screen
	page     int
	gameIdx  int
	levelIdx int
	notice   string

	coord    *session.Coordinator
	lastTick time.Time
	column   int
	option   int

	result       *session.Result
	showSolution bool
}

// NewModel constructs the game UI. Progress must already be loaded.
func NewModel(ctx context.Context, pm *progress.Manager, gen *generator.Generator, log logrus.FieldLogger) *Model {
	if gen == nil {
		gen = generator.New()
	}
	if log == nil {
		log = logging.Discard()
	}
	m := &Model{
		ctx:      ctx,
		progress: pm,
		gen:      gen,
		log:      log,
		now:      time.Now,
		screen:   screenHub,
	}
	if !pm.HasCompletedOnboarding() {
		m.screen = screenOnboarding
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m, m.handleTick(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.leaveSession()
			return m, tea.Quit
		}
		m.notice = ""
		switch m.screen {
		case screenOnboarding:
			m.updateOnboarding(msg)
			return m, nil
		case screenHub:
			return m, m.updateHub(msg)
		case screenLevels:
			return m, m.updateLevels(msg)
		case screenPlay:
			m.updatePlay(msg)
			return m, nil
		case screenResult:
			return m, m.updateResult(msg)
		}
	}
	return m, nil
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if m.screen != screenPlay || m.coord == nil || msg.id != m.coord.ID() {
		return nil
	}
	dt := msg.at.Sub(m.lastTick)
	m.lastTick = msg.at
	if dt > maxFrame {
		dt = maxFrame
	}
	m.coord.Advance(dt)
	return tickCmd(msg.id)
}

func (m *Model) gameType() model.GameType {
	return model.GameTypes[m.gameIdx]
}

func (m *Model) updateOnboarding(msg tea.KeyMsg) {
	switch {
	case isConfirm(msg), msg.String() == "right", msg.String() == "l":
		if m.page < len(onboardingPages)-1 {
			m.page++
			return
		}
		m.finishOnboarding()
	case msg.String() == "left", msg.String() == "h":
		if m.page > 0 {
			m.page--
		}
	case msg.String() == "s", msg.Type == tea.KeyEsc:
		m.finishOnboarding()
	}
}

func (m *Model) finishOnboarding() {
	m.progress.CompleteOnboarding(m.ctx)
	m.page = 0
	m.screen = screenHub
}

func (m *Model) updateHub(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		m.gameIdx = (m.gameIdx + len(model.GameTypes) - 1) % len(model.GameTypes)
	case "down", "j", "tab":
		m.gameIdx = (m.gameIdx + 1) % len(model.GameTypes)
	case "d":
		m.cycleDifficulty()
	case "?":
		m.screen = screenOnboarding
	case "q", "esc":
		return tea.Quit
	default:
		if isConfirm(msg) {
			m.openLevels()
		}
	}
	return nil
}

func (m *Model) cycleDifficulty() {
	next := m.progress.SelectedDifficulty().Next()
	m.progress.SetSelectedDifficulty(next)
	m.log.WithField("difficulty", next.String()).Debug("difficulty changed")
}

// openLevels focuses the furthest unlocked level.
func (m *Model) openLevels() {
	m.levelIdx = 0
	for i, lp := range m.progress.Progress(m.gameType()) {
		if lp.IsUnlocked {
			m.levelIdx = i
		}
	}
	m.screen = screenLevels
}

func (m *Model) updateLevels(msg tea.KeyMsg) tea.Cmd {
	count := m.gameType().LevelCount()
	switch msg.String() {
	case "left", "h":
		if m.levelIdx > 0 {
			m.levelIdx--
		}
	case "right", "l":
		if m.levelIdx < count-1 {
			m.levelIdx++
		}
	case "up", "k":
		if m.levelIdx-gridColumn >= 0 {
			m.levelIdx -= gridColumn
		}
	case "down", "j":
		if m.levelIdx+gridColumn < count {
			m.levelIdx += gridColumn
		}
	case "d":
		m.cycleDifficulty()
	case "esc", "q":
		m.screen = screenHub
	default:
		if isConfirm(msg) {
			return m.startLevel(m.levelIdx + 1)
		}
	}
	return nil
}

// startLevel begins a session unless the level is locked.
func (m *Model) startLevel(level int) tea.Cmd {
	gt := m.gameType()
	lp, ok := m.progress.Level(gt, level)
	if !ok || !lp.IsUnlocked {
		m.notice = fmt.Sprintf("Level %d is locked", level)
		return nil
	}
	game, err := games.New(gt, level, m.progress.SelectedDifficulty(), m.gen)
	if err != nil {
		m.log.WithError(err).Warn("failed to create game")
		m.notice = err.Error()
		return nil
	}
	m.leaveSession()
	m.coord = session.New(game, m.progress, session.WithLogger(m.log))
	m.coord.Start(m.ctx)
	m.levelIdx = level - 1
	m.column = 0
	m.option = 0
	m.result = nil
	m.showSolution = false
	m.lastTick = m.now()
	m.screen = screenPlay
	return tickCmd(m.coord.ID())
}

// leaveSession abandons a running session so its pending ticks go stale.
func (m *Model) leaveSession() {
	if m.coord != nil && m.coord.Phase() == session.InProgress {
		m.coord.Exit()
	}
}

func (m *Model) updatePlay(msg tea.KeyMsg) {
	if m.coord.Paused() {
		switch {
		case msg.String() == "q":
			m.coord.Exit()
			m.screen = screenLevels
		case msg.Type == tea.KeyEsc, msg.String() == "p", isConfirm(msg):
			m.coord.Resume()
		}
		return
	}
	if msg.Type == tea.KeyEsc || msg.String() == "p" {
		m.coord.Pause()
		return
	}

	snap := m.coord.Snapshot().Game
	switch {
	case snap.Pathfinder != nil:
		m.keyPathfinder(msg, snap.Pathfinder)
	case snap.Precision != nil:
		if isConfirm(msg) {
			m.act(games.Tap{})
		}
	case snap.Sequence != nil:
		m.keySequence(msg, snap.Sequence)
	}
}

func (m *Model) keyPathfinder(msg tea.KeyMsg, view *games.PathfinderView) {
	switch msg.String() {
	case "left", "a":
		if m.column > 0 {
			m.column--
		}
		return
	case "right", "d":
		if m.column < view.Columns-1 {
			m.column++
		}
		return
	case "h":
		m.act(games.Hint{})
		return
	}
	if col, ok := digit(msg, view.Columns); ok {
		m.column = col
		m.act(games.Select{Row: view.CurrentRow, Column: col})
		return
	}
	if isConfirm(msg) {
		m.act(games.Select{Row: view.CurrentRow, Column: m.column})
	}
}

func (m *Model) keySequence(msg tea.KeyMsg, view *games.SequenceView) {
	switch msg.String() {
	case "left", "up", "a", "k":
		if m.option > 0 {
			m.option--
		}
		return
	case "right", "down", "d", "j":
		if m.option < len(view.Options)-1 {
			m.option++
		}
		return
	}
	if idx, ok := digit(msg, len(view.Options)); ok {
		m.option = idx
		m.act(games.Choose{Option: view.Options[idx].ID})
		return
	}
	if isConfirm(msg) && m.option < len(view.Options) {
		m.act(games.Choose{Option: view.Options[m.option].ID})
	}
}

func (m *Model) act(a games.Action) {
	v := m.coord.Act(m.ctx, a)
	if v.Accepted && m.coord.Snapshot().Game.Sequence != nil && v.Delay > 0 {
		m.option = 0
	}
	if !m.coord.Phase().Terminal() {
		return
	}
	if res, ok := m.coord.Result(); ok {
		m.result = &res
		for _, b := range res.NewBadges {
			m.log.WithField("badge", b.String()).Info("badge earned")
		}
	}
	m.screen = screenResult
}

func (m *Model) updateResult(msg tea.KeyMsg) tea.Cmd {
	level := m.levelIdx + 1
	switch msg.String() {
	case "r":
		return m.startLevel(level)
	case "s":
		if _, ok := m.coord.Game().(*games.Pathfinder); ok {
			m.showSolution = !m.showSolution
		}
		return nil
	case "esc", "q":
		m.screen = screenLevels
		return nil
	}
	if !isConfirm(msg) {
		return nil
	}
	if m.result != nil && m.result.Record.Completed && level < m.gameType().LevelCount() {
		return m.startLevel(level + 1)
	}
	return m.startLevel(level)
}

func isConfirm(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyEnter || msg.Type == tea.KeySpace
}

// digit maps keys 1..n to a zero-based index.
func digit(msg tea.KeyMsg, n int) (int, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return 0, false
	}
	r := msg.Runes[0]
	if r < '1' || r > '9' {
		return 0, false
	}
	idx := int(r - '1')
	return idx, idx < n
}
