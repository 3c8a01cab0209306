// Package model defines shared data structures.
package model

import (
	"fmt"
	"strconv"
	"time"
)

// LevelCount is the number of levels every game offers.
const LevelCount = 12

// StartingLives is the number of lives a session begins with.
const StartingLives = 3

// Difficulty selects pacing and score scaling for a session.
type Difficulty int

// Difficulty values.
const (
	Calm Difficulty = iota
	Focused
	Intense
)

type difficultyInfo struct {
	name            string
	scoreMultiplier float64
	timeMultiplier  float64
	description     string
}

var difficultyTable = [...]difficultyInfo{
	Calm:    {name: "Calm", scoreMultiplier: 1.0, timeMultiplier: 1.5, description: "Relaxed pace, forgiving margins"},
	Focused: {name: "Focused", scoreMultiplier: 1.5, timeMultiplier: 1.0, description: "Standard challenge, balanced risk"},
	Intense: {name: "Intense", scoreMultiplier: 2.0, timeMultiplier: 0.6, description: "Maximum precision required"},
}

// Difficulties lists all difficulties in ascending order.
var Difficulties = []Difficulty{Calm, Focused, Intense}

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	return d >= Calm && d <= Intense
}

func (d Difficulty) String() string {
	if !d.Valid() {
		return "Difficulty(" + strconv.Itoa(int(d)) + ")"
	}
	return difficultyTable[d].name
}

// ScoreMultiplier scales every score award.
func (d Difficulty) ScoreMultiplier() float64 {
	if !d.Valid() {
		return 1.0
	}
	return difficultyTable[d].scoreMultiplier
}

// TimeMultiplier scales time windows; larger values mean a slower pace.
func (d Difficulty) TimeMultiplier() float64 {
	if !d.Valid() {
		return 1.0
	}
	return difficultyTable[d].timeMultiplier
}

// Description returns a short player-facing summary.
func (d Difficulty) Description() string {
	if !d.Valid() {
		return ""
	}
	return difficultyTable[d].description
}

// Next cycles to the following difficulty, wrapping around.
func (d Difficulty) Next() Difficulty {
	return Difficulty((int(d) + 1) % len(difficultyTable))
}

// ParseDifficulty maps a stable identifier to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	for i, info := range difficultyTable {
		if info.name == s {
			return Difficulty(i), nil
		}
	}
	return Calm, fmt.Errorf("unknown difficulty %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid difficulty %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(b []byte) error {
	parsed, err := ParseDifficulty(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GameType identifies one of the minigames.
type GameType int

// GameType values.
const (
	Pathfinder GameType = iota
	Precision
	Sequence
)

type gameInfo struct {
	name        string
	subtitle    string
	description string
}

var gameTable = [...]gameInfo{
	Pathfinder: {name: "Pathfinder", subtitle: "Navigate the Edge", description: "Choose your path wisely. Each step forward carries risk and reward."},
	Precision:  {name: "Precision", subtitle: "Perfect Timing", description: "Strike at the perfect moment. Timing is everything."},
	Sequence:   {name: "Sequence", subtitle: "Pattern Flow", description: "Anticipate the pattern. Flow with the rhythm."},
}

// GameTypes lists all games in display order.
var GameTypes = []GameType{Pathfinder, Precision, Sequence}

// Valid reports whether g is a known game.
func (g GameType) Valid() bool {
	return g >= Pathfinder && g <= Sequence
}

func (g GameType) String() string {
	if !g.Valid() {
		return "GameType(" + strconv.Itoa(int(g)) + ")"
	}
	return gameTable[g].name
}

// Subtitle returns the tagline shown in the hub.
func (g GameType) Subtitle() string {
	if !g.Valid() {
		return ""
	}
	return gameTable[g].subtitle
}

// Description returns the longer hub text.
func (g GameType) Description() string {
	if !g.Valid() {
		return ""
	}
	return gameTable[g].description
}

// LevelCount returns the number of levels of the game.
func (g GameType) LevelCount() int {
	return LevelCount
}

// ParseGameType maps a stable identifier to a GameType.
func ParseGameType(s string) (GameType, error) {
	for i, info := range gameTable {
		if info.name == s {
			return GameType(i), nil
		}
	}
	return Pathfinder, fmt.Errorf("unknown game %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (g GameType) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid game type %d", int(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GameType) UnmarshalText(b []byte) error {
	parsed, err := ParseGameType(string(b))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// LevelKey builds the storage key of a level.
func LevelKey(g GameType, level int) string {
	return g.String() + "_" + strconv.Itoa(level)
}

// LevelProgress tracks one level of one game.
type LevelProgress struct {
	GameType    GameType `json:"gameType"`
	LevelNumber int      `json:"levelNumber"`
	IsUnlocked  bool     `json:"isUnlocked"`
	IsCompleted bool     `json:"isCompleted"`
	BestScore   int      `json:"bestScore"`
	Attempts    int      `json:"attempts"`
	// BestDifficulty is the hardest difficulty the level was completed on.
	BestDifficulty *Difficulty `json:"bestDifficulty,omitempty"`
}

// Key returns the storage key of the level.
func (p LevelProgress) Key() string {
	return LevelKey(p.GameType, p.LevelNumber)
}

// DefaultLevels returns a fresh track for g with only level 1 unlocked.
func DefaultLevels(g GameType) []LevelProgress {
	levels := make([]LevelProgress, 0, g.LevelCount())
	for n := 1; n <= g.LevelCount(); n++ {
		levels = append(levels, LevelProgress{
			GameType:    g,
			LevelNumber: n,
			IsUnlocked:  n == 1,
		})
	}
	return levels
}

// PlayerStats aggregates progress across all games.
type PlayerStats struct {
	TotalSessions        int              `json:"totalSessions"`
	TotalLevelsCompleted int              `json:"totalLevelsCompleted"`
	BestStreak           int              `json:"bestStreak"`
	CurrentStreak        int              `json:"currentStreak"`
	TotalPlayTime        time.Duration    `json:"totalPlayTime"`
	GamesPlayed          map[GameType]int `json:"gamesPlayed"`
	HighestLevelReached  map[GameType]int `json:"highestLevelReached"`
}

// NewPlayerStats returns zeroed stats with initialized maps.
func NewPlayerStats() PlayerStats {
	return PlayerStats{
		GamesPlayed:         map[GameType]int{},
		HighestLevelReached: map[GameType]int{},
	}
}

// FormattedPlayTime renders total play time as "1h 5m" or "12m".
func (s PlayerStats) FormattedPlayTime() string {
	return FormatPlayTime(s.TotalPlayTime)
}

// FormatPlayTime renders d as hours and minutes.
func FormatPlayTime(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// Badge is a permanent mastery achievement.
type Badge int

// Badge values.
const (
	FirstStep Badge = iota
	Committed
	FocusedBadge
	Relentless
	Master
	Perfectionist
)

type badgeInfo struct {
	name        string
	description string
	icon        string
	required    int
}

var badgeTable = [...]badgeInfo{
	FirstStep:     {name: "First Step", description: "Complete your first level", icon: "★", required: 1},
	Committed:     {name: "Committed", description: "Complete 10 levels", icon: "♨", required: 10},
	FocusedBadge:  {name: "Focused", description: "Achieve a 5 level streak", icon: "◉", required: 5},
	Relentless:    {name: "Relentless", description: "Complete all levels in one game", icon: "♛", required: 12},
	Master:        {name: "Master", description: "Complete all games on Intense", icon: "♚", required: 36},
	Perfectionist: {name: "Perfectionist", description: "Achieve maximum score on any level", icon: "✦", required: 100},
}

// Badges lists every badge in display order.
var Badges = []Badge{FirstStep, Committed, FocusedBadge, Relentless, Master, Perfectionist}

// Valid reports whether b is a known badge.
func (b Badge) Valid() bool {
	return b >= FirstStep && b <= Perfectionist
}

func (b Badge) String() string {
	if !b.Valid() {
		return "Badge(" + strconv.Itoa(int(b)) + ")"
	}
	return badgeTable[b].name
}

// Description explains how the badge is earned.
func (b Badge) Description() string {
	if !b.Valid() {
		return ""
	}
	return badgeTable[b].description
}

// Icon returns a single glyph for the badge.
func (b Badge) Icon() string {
	if !b.Valid() {
		return "?"
	}
	return badgeTable[b].icon
}

// RequiredProgress is the target value shown next to the badge.
func (b Badge) RequiredProgress() int {
	if !b.Valid() {
		return 0
	}
	return badgeTable[b].required
}

// ParseBadge maps a stable identifier to a Badge.
func ParseBadge(s string) (Badge, error) {
	for i, info := range badgeTable {
		if info.name == s {
			return Badge(i), nil
		}
	}
	return FirstStep, fmt.Errorf("unknown badge %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (b Badge) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid badge %d", int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Badge) UnmarshalText(data []byte) error {
	parsed, err := ParseBadge(string(data))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// GameState is the ephemeral state of one play session.
type GameState struct {
	CurrentLevel int
	Score        int
	Lives        int
	IsGameOver   bool
	IsCompleted  bool
}

// NewGameState returns the state a session starts with.
func NewGameState(level int) GameState {
	return GameState{CurrentLevel: level, Lives: StartingLives}
}

// SessionRecord captures a finished play session.
type SessionRecord struct {
	ID         string     `json:"id"`
	GameType   GameType   `json:"gameType"`
	Level      int        `json:"level"`
	Difficulty Difficulty `json:"difficulty"`
	Score      int        `json:"score"`
	Completed  bool       `json:"completed"`
	LivesLeft  int        `json:"livesLeft"`
	StartedAt  time.Time  `json:"startedAt"`
	EndedAt    time.Time  `json:"endedAt"`
}

// Duration returns how long the session lasted.
func (r SessionRecord) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// HistoryFilter narrows session history queries.
type HistoryFilter struct {
	GameType *GameType
	Since    *time.Time
	Last     int
}

// StatsConfig configures the stats views.
type StatsConfig struct {
	GameType    *GameType
	Since       *time.Time
	Last        int
	CurveWindow int
}

// Filter returns the history query for the config. Last is applied by the
// report so moving averages see the whole window.
func (c StatsConfig) Filter() HistoryFilter {
	return HistoryFilter{GameType: c.GameType, Since: c.Since}
}
