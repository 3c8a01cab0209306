// Package games implements round generation and judging for the three minigames.
package games

import (
	"fmt"
	"time"

	"github.com/verte-zerg/edgeplay/internal/generator"
	"github.com/verte-zerg/edgeplay/internal/model"
)

// Action is one player input forwarded to a game.
type Action interface {
	isAction()
}

// Select picks a Pathfinder cell.
type Select struct {
	Row    int
	Column int
}

// Hint asks Pathfinder to reveal the safe cells of the current row.
type Hint struct{}

// Tap stops the Precision marker.
type Tap struct{}

// Choose submits a Sequence option by id.
type Choose struct {
	Option int
}

func (Select) isAction() {}
func (Hint) isAction()   {}
func (Tap) isAction()    {}
func (Choose) isAction() {}

// Verdict is the judged result of one action.
type Verdict struct {
	// Accepted is false when the action was ignored.
	Accepted bool
	Points   int
	LifeLost bool
	// Cleared is set when the action satisfied the game's final round.
	Cleared bool
	// Delay is the feedback window after which the game expects Settle.
	Delay time.Duration
}

// Game is a single playable minigame instance for one level.
type Game interface {
	Type() model.GameType
	Level() int
	Difficulty() model.Difficulty
	// Start generates the first round.
	Start()
	Act(a Action) Verdict
	// Advance moves game-internal clocks forward by dt.
	Advance(dt time.Duration)
	// Settle ends a feedback window announced by a Verdict delay.
	Settle()
	Snapshot() Snapshot
}

// Snapshot is the read-only render state of a game. Exactly one of the
// per-game views is set.
type Snapshot struct {
	Game       model.GameType
	Pathfinder *PathfinderView
	Precision  *PrecisionView
	Sequence   *SequenceView
}

// New builds the game for gt at level and difficulty.
func New(gt model.GameType, level int, d model.Difficulty, gen *generator.Generator) (Game, error) {
	if level < 1 || level > gt.LevelCount() {
		return nil, fmt.Errorf("level %d out of range 1..%d", level, gt.LevelCount())
	}
	if !d.Valid() {
		return nil, fmt.Errorf("invalid difficulty %d", int(d))
	}
	if gen == nil {
		gen = generator.New()
	}
	switch gt {
	case model.Pathfinder:
		return NewPathfinder(level, d, gen), nil
	case model.Precision:
		return NewPrecision(level, d, gen), nil
	case model.Sequence:
		return NewSequence(level, d, gen), nil
	default:
		return nil, fmt.Errorf("unknown game type %d", int(gt))
	}
}

// scaled applies the difficulty score multiplier to base, truncating.
func scaled(base int, d model.Difficulty) int {
	return int(float64(base) * d.ScoreMultiplier())
}

// MaxScore is the score of a run that clears every round of the level.
func MaxScore(gt model.GameType, level int, d model.Difficulty) int {
	switch gt {
	case model.Pathfinder:
		return PathfinderRows(level)*scaled(pathStepPoints, d) + scaled(pathClearBonus, d)
	case model.Precision:
		return RequiredHits(level)*scaled(hitPoints, d) + scaled(precisionClearBonus, d)
	case model.Sequence:
		return SequenceRounds(level)*scaled(answerPoints, d) + scaled(sequenceClearBonus, d)
	default:
		return 0
	}
}
