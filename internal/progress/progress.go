// Package progress owns persistent player progression: level tracks,
// aggregate stats, streaks and mastery badges.
package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/edgeplay/internal/logging"
	"github.com/verte-zerg/edgeplay/internal/model"
	"github.com/verte-zerg/edgeplay/internal/store"
)

// Storage keys.
const (
	KeyOnboarding = "hasCompletedOnboarding"
	KeyStats      = "playerStats"
	KeyLevels     = "levelProgress"
	KeyBadges     = "earnedBadges"
)

// Badge thresholds.
const (
	committedLevels = 10
	focusedStreak   = 5
)

// MasterRule decides which difficulty the Master badge is checked against.
type MasterRule int

const (
	// MasterSelectedDifficulty requires Intense to be the selected difficulty
	// when the last level is completed.
	MasterSelectedDifficulty MasterRule = iota
	// MasterCompletedDifficulty requires every level to have been completed on Intense.
	MasterCompletedDifficulty
)

// ParseMasterRule maps "selected" or "completed" to a MasterRule.
func ParseMasterRule(s string) (MasterRule, error) {
	switch s {
	case "", "selected":
		return MasterSelectedDifficulty, nil
	case "completed":
		return MasterCompletedDifficulty, nil
	default:
		return MasterSelectedDifficulty, fmt.Errorf("unknown master rule %q", s)
	}
}

func (r MasterRule) String() string {
	if r == MasterCompletedDifficulty {
		return "completed"
	}
	return "selected"
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides time.Now, used for session timing.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithMasterRule selects the Master badge rule.
func WithMasterRule(rule MasterRule) Option {
	return func(m *Manager) {
		m.masterRule = rule
	}
}

// WithDifficulty sets the initially selected difficulty.
func WithDifficulty(d model.Difficulty) Option {
	return func(m *Manager) {
		if d.Valid() {
			m.selected = d
		}
	}
}

// Manager is the single source of truth for player progress. Every
// mutation is written through to the KV store immediately. It is not safe
// for concurrent use; callers drive it from one event loop.
type Manager struct {
	kv         store.KV
	history    store.History
	log        logrus.FieldLogger
	now        func() time.Time
	masterRule MasterRule

	onboarded    bool
	stats        model.PlayerStats
	levels       map[string]model.LevelProgress
	badges       map[model.Badge]bool
	selected     model.Difficulty
	sessionStart *time.Time
}

// New returns a Manager with default state. Call Load before use.
// If kv also implements store.History, finished sessions are logged there.
func New(kv store.KV, opts ...Option) *Manager {
	m := &Manager{
		kv:       kv,
		log:      logging.Discard(),
		now:      time.Now,
		stats:    model.NewPlayerStats(),
		levels:   defaultLevels(),
		badges:   map[model.Badge]bool{},
		selected: model.Calm,
	}
	if h, ok := kv.(store.History); ok {
		m.history = h
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func defaultLevels() map[string]model.LevelProgress {
	levels := map[string]model.LevelProgress{}
	for _, gt := range model.GameTypes {
		for _, lp := range model.DefaultLevels(gt) {
			levels[lp.Key()] = lp
		}
	}
	return levels
}

// Load reads all progress blobs. Missing or corrupt blobs fall back to
// first-run defaults; Load never fails.
func (m *Manager) Load(ctx context.Context) {
	m.onboarded = false
	if blob, ok := m.read(ctx, KeyOnboarding); ok {
		if err := json.Unmarshal(blob, &m.onboarded); err != nil {
			m.log.WithError(err).WithField("key", KeyOnboarding).Warn("corrupt onboarding flag, using default")
			m.onboarded = false
		}
	}

	m.stats = model.NewPlayerStats()
	if blob, ok := m.read(ctx, KeyStats); ok {
		var stats model.PlayerStats
		if err := json.Unmarshal(blob, &stats); err != nil {
			m.log.WithError(err).WithField("key", KeyStats).Warn("corrupt player stats, using defaults")
		} else {
			m.stats = normalizeStats(stats)
		}
	}

	m.levels = defaultLevels()
	if blob, ok := m.read(ctx, KeyLevels); ok {
		var levels map[string]model.LevelProgress
		if err := json.Unmarshal(blob, &levels); err != nil {
			m.log.WithError(err).WithField("key", KeyLevels).Warn("corrupt level progress, using defaults")
		} else {
			m.mergeLevels(levels)
		}
	}

	m.badges = map[model.Badge]bool{}
	if blob, ok := m.read(ctx, KeyBadges); ok {
		var badges []model.Badge
		if err := json.Unmarshal(blob, &badges); err != nil {
			m.log.WithError(err).WithField("key", KeyBadges).Warn("corrupt badge set, using empty set")
		} else {
			for _, b := range badges {
				m.badges[b] = true
			}
		}
	}
	m.log.WithFields(logrus.Fields{
		"onboarded": m.onboarded,
		"completed": m.TotalCompletedLevels(),
		"badges":    len(m.badges),
	}).Debug("progress loaded")
}

func (m *Manager) read(ctx context.Context, key string) ([]byte, bool) {
	blob, ok, err := m.kv.Get(ctx, key)
	if err != nil {
		m.log.WithError(err).WithField("key", key).Warn("failed to read progress blob")
		return nil, false
	}
	return blob, ok
}

// mergeLevels overlays stored levels on the defaults so a partial or older
// map still yields a full track per game.
func (m *Manager) mergeLevels(stored map[string]model.LevelProgress) {
	for key, def := range m.levels {
		lp, ok := stored[key]
		if !ok {
			m.log.WithField("level", key).Warn("level missing from stored progress, using default")
			continue
		}
		lp.GameType = def.GameType
		lp.LevelNumber = def.LevelNumber
		if lp.IsCompleted {
			lp.IsUnlocked = true
		}
		if def.LevelNumber == 1 {
			lp.IsUnlocked = true
		}
		lp.BestScore = max(0, lp.BestScore)
		lp.Attempts = max(0, lp.Attempts)
		m.levels[key] = lp
	}
}

func normalizeStats(s model.PlayerStats) model.PlayerStats {
	if s.GamesPlayed == nil {
		s.GamesPlayed = map[model.GameType]int{}
	}
	if s.HighestLevelReached == nil {
		s.HighestLevelReached = map[model.GameType]int{}
	}
	s.BestStreak = max(s.BestStreak, s.CurrentStreak)
	return s
}

// HasCompletedOnboarding gates the first-run onboarding screen.
func (m *Manager) HasCompletedOnboarding() bool {
	return m.onboarded
}

// CompleteOnboarding marks onboarding as done.
func (m *Manager) CompleteOnboarding(ctx context.Context) {
	m.onboarded = true
	m.save(ctx)
}

// SelectedDifficulty returns the difficulty new sessions are played on.
func (m *Manager) SelectedDifficulty() model.Difficulty {
	return m.selected
}

// SetSelectedDifficulty changes the difficulty for new sessions.
func (m *Manager) SetSelectedDifficulty(d model.Difficulty) {
	if d.Valid() {
		m.selected = d
	}
}

// MasterRule returns the configured Master badge rule.
func (m *Manager) MasterRule() MasterRule {
	return m.masterRule
}

// Progress returns the levels of gt in level order.
func (m *Manager) Progress(gt model.GameType) []model.LevelProgress {
	out := make([]model.LevelProgress, 0, gt.LevelCount())
	for n := 1; n <= gt.LevelCount(); n++ {
		if lp, ok := m.levels[model.LevelKey(gt, n)]; ok {
			out = append(out, lp)
		}
	}
	return out
}

// Level returns the progress of one level.
func (m *Manager) Level(gt model.GameType, n int) (model.LevelProgress, bool) {
	lp, ok := m.levels[model.LevelKey(gt, n)]
	return lp, ok
}

// Stats returns a copy of the aggregate stats.
func (m *Manager) Stats() model.PlayerStats {
	out := m.stats
	out.GamesPlayed = make(map[model.GameType]int, len(m.stats.GamesPlayed))
	for k, v := range m.stats.GamesPlayed {
		out.GamesPlayed[k] = v
	}
	out.HighestLevelReached = make(map[model.GameType]int, len(m.stats.HighestLevelReached))
	for k, v := range m.stats.HighestLevelReached {
		out.HighestLevelReached[k] = v
	}
	return out
}

// Badges returns earned badges in display order.
func (m *Manager) Badges() []model.Badge {
	out := make([]model.Badge, 0, len(m.badges))
	for _, b := range model.Badges {
		if m.badges[b] {
			out = append(out, b)
		}
	}
	return out
}

// HasBadge reports whether b has been earned.
func (m *Manager) HasBadge(b model.Badge) bool {
	return m.badges[b]
}

// RecordOutcome applies the result of one session of (gt, level) and
// returns the badges earned by it. Unknown levels are ignored.
func (m *Manager) RecordOutcome(ctx context.Context, gt model.GameType, level, score int, completed bool) []model.Badge {
	key := model.LevelKey(gt, level)
	lp, ok := m.levels[key]
	if !ok {
		m.log.WithFields(logrus.Fields{"game": gt.String(), "level": level}).Warn("outcome for unknown level ignored")
		return nil
	}

	lp.Attempts++
	var earned []model.Badge
	if completed {
		lp.IsCompleted = true
		lp.IsUnlocked = true
		lp.BestScore = max(lp.BestScore, score)
		if lp.BestDifficulty == nil || *lp.BestDifficulty < m.selected {
			d := m.selected
			lp.BestDifficulty = &d
		}
		m.levels[key] = lp

		if next, ok := m.levels[model.LevelKey(gt, level+1)]; ok {
			next.IsUnlocked = true
			m.levels[next.Key()] = next
		}

		m.stats.TotalLevelsCompleted++
		m.stats.CurrentStreak++
		m.stats.BestStreak = max(m.stats.BestStreak, m.stats.CurrentStreak)
		m.stats.HighestLevelReached[gt] = max(m.stats.HighestLevelReached[gt], level)

		earned = m.evaluateBadges()
	} else {
		m.levels[key] = lp
		m.stats.CurrentStreak = 0
	}

	m.log.WithFields(logrus.Fields{
		"game":      gt.String(),
		"level":     level,
		"score":     score,
		"completed": completed,
		"streak":    m.stats.CurrentStreak,
	}).Info("outcome recorded")
	m.save(ctx)
	return earned
}

// evaluateBadges awards every badge whose rule currently holds and returns
// the newly earned ones. Safe to call repeatedly.
func (m *Manager) evaluateBadges() []model.Badge {
	var earned []model.Badge
	award := func(b model.Badge) {
		if m.badges[b] {
			return
		}
		m.badges[b] = true
		earned = append(earned, b)
	}

	if m.stats.TotalLevelsCompleted >= 1 {
		award(model.FirstStep)
	}
	if m.stats.TotalLevelsCompleted >= committedLevels {
		award(model.Committed)
	}
	if m.stats.BestStreak >= focusedStreak {
		award(model.FocusedBadge)
	}

	allCompleted := true
	for _, gt := range model.GameTypes {
		if m.gameCompleted(gt) {
			award(model.Relentless)
		} else {
			allCompleted = false
		}
	}
	if allCompleted && m.masterSatisfied() {
		award(model.Master)
	}

	for _, b := range earned {
		m.log.WithField("badge", b.String()).Info("badge earned")
	}
	return earned
}

func (m *Manager) gameCompleted(gt model.GameType) bool {
	levels := m.Progress(gt)
	if len(levels) != gt.LevelCount() {
		return false
	}
	for _, lp := range levels {
		if !lp.IsCompleted {
			return false
		}
	}
	return true
}

func (m *Manager) masterSatisfied() bool {
	if m.masterRule == MasterSelectedDifficulty {
		return m.selected == model.Intense
	}
	for _, lp := range m.levels {
		if lp.BestDifficulty == nil || *lp.BestDifficulty != model.Intense {
			return false
		}
	}
	return true
}

// RecordGamePlayed counts one launch of gt.
func (m *Manager) RecordGamePlayed(ctx context.Context, gt model.GameType) {
	m.stats.GamesPlayed[gt]++
	m.save(ctx)
}

// StartSession counts a new app session and starts its play-time clock.
func (m *Manager) StartSession(ctx context.Context) {
	start := m.now()
	m.sessionStart = &start
	m.stats.TotalSessions++
	m.save(ctx)
}

// EndSession adds the elapsed session time to the total play time. It is a
// no-op without a matching StartSession.
func (m *Manager) EndSession(ctx context.Context) {
	if m.sessionStart == nil {
		return
	}
	elapsed := m.now().Sub(*m.sessionStart)
	if elapsed > 0 {
		m.stats.TotalPlayTime += elapsed
	}
	m.sessionStart = nil
	m.save(ctx)
}

// ResetAllProgress returns every piece of progress to first-run state and
// clears the session history.
func (m *Manager) ResetAllProgress(ctx context.Context) {
	m.onboarded = false
	m.stats = model.NewPlayerStats()
	m.badges = map[model.Badge]bool{}
	m.levels = defaultLevels()
	if err := m.kv.Remove(ctx, KeyOnboarding); err != nil {
		m.log.WithError(err).WithField("key", KeyOnboarding).Warn("failed to clear onboarding flag")
	}
	if m.history != nil {
		if err := m.history.ClearSessions(ctx); err != nil {
			m.log.WithError(err).Warn("failed to clear session history")
		}
	}
	m.log.Info("progress reset")
	m.save(ctx)
}

// RecordSession appends a finished session to the history log, if the
// backend keeps one.
func (m *Manager) RecordSession(ctx context.Context, rec model.SessionRecord) {
	if m.history == nil {
		return
	}
	if err := m.history.AppendSession(ctx, rec); err != nil {
		m.log.WithError(err).WithField("session", rec.ID).Warn("failed to record session")
	}
}

// History lists recorded sessions. Backends without history return nothing.
func (m *Manager) History(ctx context.Context, filter model.HistoryFilter) ([]model.SessionRecord, error) {
	if m.history == nil {
		return nil, nil
	}
	records, err := m.history.ListSessions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return records, nil
}

// TotalCompletedLevels counts completed levels across all games.
func (m *Manager) TotalCompletedLevels() int {
	n := 0
	for _, lp := range m.levels {
		if lp.IsCompleted {
			n++
		}
	}
	return n
}

// TotalUnlockedLevels counts unlocked levels across all games.
func (m *Manager) TotalUnlockedLevels() int {
	n := 0
	for _, lp := range m.levels {
		if lp.IsUnlocked {
			n++
		}
	}
	return n
}

// CompletionPercentage is the share of completed levels of gt, 0 to 100.
func (m *Manager) CompletionPercentage(gt model.GameType) float64 {
	completed := 0
	for _, lp := range m.Progress(gt) {
		if lp.IsCompleted {
			completed++
		}
	}
	return float64(completed) / float64(gt.LevelCount()) * 100
}

// save writes the whole progress snapshot. Failures are logged only.
func (m *Manager) save(ctx context.Context) {
	if m.onboarded {
		m.write(ctx, KeyOnboarding, m.onboarded)
	}
	m.write(ctx, KeyStats, m.stats)
	m.write(ctx, KeyLevels, m.levels)
	m.write(ctx, KeyBadges, m.Badges())
}

func (m *Manager) write(ctx context.Context, key string, value any) {
	blob, err := json.Marshal(value)
	if err != nil {
		m.log.WithError(err).WithField("key", key).Error("failed to encode progress blob")
		return
	}
	if err := m.kv.Set(ctx, key, blob); err != nil {
		m.log.WithError(err).WithField("key", key).Error("failed to persist progress blob")
	}
}
