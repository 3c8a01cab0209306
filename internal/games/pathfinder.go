package games

import (
	"time"

	"github.com/verte-zerg/edgeplay/internal/generator"
	"github.com/verte-zerg/edgeplay/internal/model"
)

const (
	pathStepPoints = 10
	pathClearBonus = 50

	pathWrongReveal = 1200 * time.Millisecond
	pathHintShow    = time.Second
	pathHintCool    = 8 * time.Second
)

// CellState describes how a Pathfinder cell is drawn.
type CellState int

// Cell states.
const (
	CellHidden CellState = iota
	// CellStepped is the safe cell the player chose in a cleared row.
	CellStepped
	// CellSafe is a safe cell shown by a hint, a reveal or the solution.
	CellSafe
	// CellDanger is an unsafe cell shown by a reveal.
	CellDanger
	// CellWrong is the unsafe cell the player just picked.
	CellWrong
)

// PathfinderView is the render state of a Pathfinder board.
type PathfinderView struct {
	Columns    int
	Rows       int
	CurrentRow int
	Cells      [][]CellState
	Revealing  bool
	HintActive bool
	// HintCooldown is the time left before another hint is allowed.
	HintCooldown time.Duration
	Done         bool
}

// PathfinderColumns is the board width for level.
func PathfinderColumns(level int) int {
	return min(3+level/4, 5)
}

// PathfinderRows is the board height for level.
func PathfinderRows(level int) int {
	return min(4+level, 10)
}

// SafeCellsPerRow is the number of safe cells in each row.
func SafeCellsPerRow(columns int, d model.Difficulty) int {
	switch d {
	case model.Calm:
		return max(2, columns-1)
	case model.Focused:
		return max(1, columns/2)
	default:
		return 1
	}
}

// Pathfinder is the lane-choice game: cross the board one row at a time
// by picking a safe cell in each row.
type Pathfinder struct {
	level      int
	difficulty model.Difficulty
	gen        *generator.Generator

	columns int
	rows    int
	safe    [][]bool

	currentRow  int
	stepped     []int
	revealing   bool
	wrongColumn int
	done        bool

	hintLeft     time.Duration
	hintCooldown time.Duration
}

// NewPathfinder returns an unstarted Pathfinder game.
func NewPathfinder(level int, d model.Difficulty, gen *generator.Generator) *Pathfinder {
	return &Pathfinder{
		level:       level,
		difficulty:  d,
		gen:         gen,
		columns:     PathfinderColumns(level),
		rows:        PathfinderRows(level),
		wrongColumn: -1,
	}
}

// Type implements Game.
func (p *Pathfinder) Type() model.GameType { return model.Pathfinder }

// Level implements Game.
func (p *Pathfinder) Level() int { return p.level }

// Difficulty implements Game.
func (p *Pathfinder) Difficulty() model.Difficulty { return p.difficulty }

// Start lays out a fresh board.
func (p *Pathfinder) Start() {
	safeCount := SafeCellsPerRow(p.columns, p.difficulty)
	p.safe = make([][]bool, p.rows)
	for r := range p.safe {
		row := make([]bool, p.columns)
		for _, c := range p.gen.Sample(p.columns, safeCount) {
			row[c] = true
		}
		p.safe[r] = row
	}
	p.currentRow = 0
	p.stepped = p.stepped[:0]
	p.revealing = false
	p.wrongColumn = -1
	p.done = false
	p.hintLeft = 0
	p.hintCooldown = 0
}

// Act implements Game.
func (p *Pathfinder) Act(a Action) Verdict {
	if p.done || p.safe == nil {
		return Verdict{}
	}
	switch act := a.(type) {
	case Select:
		return p.selectCell(act.Row, act.Column)
	case Hint:
		return p.hint()
	default:
		return Verdict{}
	}
}

func (p *Pathfinder) selectCell(row, column int) Verdict {
	if p.revealing || row != p.currentRow || column < 0 || column >= p.columns {
		return Verdict{}
	}
	if !p.safe[row][column] {
		p.revealing = true
		p.wrongColumn = column
		return Verdict{Accepted: true, LifeLost: true, Delay: pathWrongReveal}
	}

	p.stepped = append(p.stepped, column)
	p.hintLeft = 0
	points := scaled(pathStepPoints, p.difficulty)
	if p.currentRow == p.rows-1 {
		p.done = true
		return Verdict{Accepted: true, Points: points + scaled(pathClearBonus, p.difficulty), Cleared: true}
	}
	p.currentRow++
	return Verdict{Accepted: true, Points: points}
}

func (p *Pathfinder) hint() Verdict {
	if p.revealing || p.hintCooldown > 0 {
		return Verdict{}
	}
	p.hintLeft = time.Duration(float64(pathHintShow) * p.difficulty.TimeMultiplier())
	p.hintCooldown = pathHintCool
	return Verdict{Accepted: true}
}

// Advance runs the hint timers down.
func (p *Pathfinder) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}
	p.hintLeft = max(0, p.hintLeft-dt)
	p.hintCooldown = max(0, p.hintCooldown-dt)
}

// Settle hides the revealed row so the player can retry it.
func (p *Pathfinder) Settle() {
	p.revealing = false
	p.wrongColumn = -1
}

// Solution returns the safe columns of every row, for the end-of-game reveal.
func (p *Pathfinder) Solution() [][]int {
	out := make([][]int, len(p.safe))
	for r, row := range p.safe {
		for c, ok := range row {
			if ok {
				out[r] = append(out[r], c)
			}
		}
	}
	return out
}

// Snapshot implements Game.
func (p *Pathfinder) Snapshot() Snapshot {
	view := &PathfinderView{
		Columns:      p.columns,
		Rows:         p.rows,
		CurrentRow:   p.currentRow,
		Revealing:    p.revealing,
		HintActive:   p.hintLeft > 0,
		HintCooldown: p.hintCooldown,
		Done:         p.done,
		Cells:        make([][]CellState, p.rows),
	}
	for r := 0; r < p.rows; r++ {
		cells := make([]CellState, p.columns)
		for c := range cells {
			cells[c] = p.cellState(r, c, view.HintActive)
		}
		view.Cells[r] = cells
	}
	return Snapshot{Game: model.Pathfinder, Pathfinder: view}
}

func (p *Pathfinder) cellState(r, c int, hintActive bool) CellState {
	if p.safe == nil {
		return CellHidden
	}
	if r < len(p.stepped) {
		if p.stepped[r] == c {
			return CellStepped
		}
		return CellHidden
	}
	if r != p.currentRow {
		return CellHidden
	}
	switch {
	case p.revealing && c == p.wrongColumn:
		return CellWrong
	case p.revealing && p.safe[r][c]:
		return CellSafe
	case p.revealing:
		return CellDanger
	case hintActive && p.safe[r][c]:
		return CellSafe
	default:
		return CellHidden
	}
}
