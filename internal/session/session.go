// Package session drives one play session of a minigame: it applies
// judged actions to the session state, runs feedback windows on a virtual
// clock and reports the outcome once the session ends.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/edgeplay/internal/games"
	"github.com/verte-zerg/edgeplay/internal/logging"
	"github.com/verte-zerg/edgeplay/internal/model"
)

// Phase is the lifecycle stage of a session.
type Phase int

// Phases.
const (
	NotStarted Phase = iota
	InProgress
	Completed
	GameOver
	Exited
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not started"
	case InProgress:
		return "in progress"
	case Completed:
		return "completed"
	case GameOver:
		return "game over"
	case Exited:
		return "exited"
	default:
		return "unknown"
	}
}

// Terminal reports whether the session reached an outcome.
func (p Phase) Terminal() bool {
	return p == Completed || p == GameOver
}

// Recorder receives session outcomes. *progress.Manager implements it.
type Recorder interface {
	RecordGamePlayed(ctx context.Context, gt model.GameType)
	RecordOutcome(ctx context.Context, gt model.GameType, level, score int, completed bool) []model.Badge
	RecordSession(ctx context.Context, rec model.SessionRecord)
}

// Result is the reported outcome of a finished session.
type Result struct {
	Record    model.SessionRecord
	NewBadges []model.Badge
	// MaxScore is the score of a flawless clear at the same level and difficulty.
	MaxScore int
}

// View is the read-only state handed to the rendering layer.
type View struct {
	Phase  Phase
	State  model.GameState
	Busy   bool
	Paused bool
	Game   games.Snapshot
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock overrides time.Now for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Coordinator) {
		if log != nil {
			c.log = log
		}
	}
}

// OnEnd registers a callback invoked once when the session ends with an outcome.
func OnEnd(fn func(Result)) Option {
	return func(c *Coordinator) {
		c.onEnd = fn
	}
}

type transition struct {
	token uuid.UUID
	due   time.Duration
}

// Coordinator owns the GameState of one session. It is driven from a
// single event loop: Act for player input, Advance for elapsed time.
type Coordinator struct {
	game  games.Game
	rec   Recorder
	log   logrus.FieldLogger
	now   func() time.Time
	onEnd func(Result)

	id      uuid.UUID
	token   uuid.UUID
	phase   Phase
	state   model.GameState
	busy    bool
	paused  bool
	clock   time.Duration
	pending []transition

	startedAt time.Time
	result    *Result
}

// New returns a coordinator for game. rec may be nil for unrecorded play.
func New(game games.Game, rec Recorder, opts ...Option) *Coordinator {
	c := &Coordinator{
		game:  game,
		rec:   rec,
		log:   logging.Discard(),
		now:   time.Now,
		state: model.NewGameState(game.Level()),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithFields(logrus.Fields{
		"game":       game.Type().String(),
		"level":      game.Level(),
		"difficulty": game.Difficulty().String(),
	})
	return c
}

// Start generates the first round and enters InProgress. It is a no-op
// unless the session has not started yet.
func (c *Coordinator) Start(ctx context.Context) {
	if c.phase != NotStarted {
		return
	}
	c.id = uuid.New()
	c.token = c.id
	c.startedAt = c.now()
	c.state = model.NewGameState(c.game.Level())
	c.game.Start()
	c.phase = InProgress
	if c.rec != nil {
		c.rec.RecordGamePlayed(ctx, c.game.Type())
	}
	c.log.WithField("session", c.id.String()).Debug("session started")
}

// Act forwards one player action to the game. Actions are ignored outside
// InProgress and while a feedback window is pending.
func (c *Coordinator) Act(ctx context.Context, a games.Action) games.Verdict {
	if c.phase != InProgress || c.busy || c.paused {
		return games.Verdict{}
	}
	v := c.game.Act(a)
	if !v.Accepted {
		return v
	}

	c.state.Score += v.Points
	if v.LifeLost {
		c.state.Lives = max(0, c.state.Lives-1)
		if c.state.Lives == 0 {
			c.state.IsGameOver = true
			c.finish(ctx, GameOver)
			return v
		}
	}
	if v.Cleared {
		c.state.IsCompleted = true
		c.finish(ctx, Completed)
		return v
	}
	if v.Delay > 0 {
		c.busy = true
		c.pending = append(c.pending, transition{token: c.token, due: c.clock + v.Delay})
	}
	return v
}

// Advance moves the session clock by dt, running game timers and any
// feedback window that has elapsed.
func (c *Coordinator) Advance(dt time.Duration) {
	if c.phase != InProgress || c.paused || dt <= 0 {
		return
	}
	c.game.Advance(dt)
	c.clock += dt

	remaining := c.pending[:0]
	for _, tr := range c.pending {
		switch {
		case tr.token != c.token:
			// Scheduled by an earlier session; dropped.
		case tr.due <= c.clock:
			c.busy = false
			c.game.Settle()
		default:
			remaining = append(remaining, tr)
		}
	}
	c.pending = remaining
}

// Pause freezes the session clock and input until Resume.
func (c *Coordinator) Pause() {
	if c.phase == InProgress {
		c.paused = true
	}
}

// Resume continues a paused session.
func (c *Coordinator) Resume() {
	c.paused = false
}

// Paused reports whether the session is paused.
func (c *Coordinator) Paused() bool {
	return c.paused
}

// Exit abandons the session from any state. Pending feedback windows are
// invalidated and an unfinished session records nothing.
func (c *Coordinator) Exit() {
	if c.phase == Exited {
		return
	}
	if c.phase == InProgress {
		c.log.WithField("score", c.state.Score).Debug("session exited")
	}
	c.phase = Exited
	c.token = uuid.Nil
	c.busy = false
	c.paused = false
	c.pending = nil
}

func (c *Coordinator) finish(ctx context.Context, phase Phase) {
	c.phase = phase
	c.busy = false
	c.token = uuid.Nil
	c.pending = nil
	if c.result != nil {
		return
	}

	rec := model.SessionRecord{
		ID:         c.id.String(),
		GameType:   c.game.Type(),
		Level:      c.game.Level(),
		Difficulty: c.game.Difficulty(),
		Score:      c.state.Score,
		Completed:  c.state.IsCompleted,
		LivesLeft:  c.state.Lives,
		StartedAt:  c.startedAt,
		EndedAt:    c.now(),
	}
	res := Result{
		Record:   rec,
		MaxScore: games.MaxScore(rec.GameType, rec.Level, rec.Difficulty),
	}
	if c.rec != nil {
		res.NewBadges = c.rec.RecordOutcome(ctx, rec.GameType, rec.Level, rec.Score, rec.Completed)
		c.rec.RecordSession(ctx, rec)
	}
	c.result = &res
	c.log.WithFields(logrus.Fields{
		"session":   rec.ID,
		"outcome":   phase.String(),
		"score":     rec.Score,
		"livesLeft": rec.LivesLeft,
	}).Info("session ended")
	if c.onEnd != nil {
		c.onEnd(res)
	}
}

// ID identifies the session once started. Timer messages tagged with an
// older ID belong to a session that is gone.
func (c *Coordinator) ID() string {
	if c.id == uuid.Nil {
		return ""
	}
	return c.id.String()
}

// Phase returns the lifecycle stage.
func (c *Coordinator) Phase() Phase {
	return c.phase
}

// State returns a copy of the session state.
func (c *Coordinator) State() model.GameState {
	return c.state
}

// Busy reports whether a feedback window is pending.
func (c *Coordinator) Busy() bool {
	return c.busy
}

// Game returns the underlying minigame.
func (c *Coordinator) Game() games.Game {
	return c.game
}

// Result returns the outcome once the session has ended with one.
func (c *Coordinator) Result() (Result, bool) {
	if c.result == nil {
		return Result{}, false
	}
	return *c.result, true
}

// Snapshot returns the render state of the session.
func (c *Coordinator) Snapshot() View {
	return View{
		Phase:  c.phase,
		State:  c.state,
		Busy:   c.busy,
		Paused: c.paused,
		Game:   c.game.Snapshot(),
	}
}
