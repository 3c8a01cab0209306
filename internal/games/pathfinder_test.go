package games

import (
	"testing"
	"time"

	"github.com/verte-zerg/edgeplay/internal/generator"
	"github.com/verte-zerg/edgeplay/internal/model"
)

func TestPathfinderDimensions(t *testing.T) {
	cases := []struct {
		level   int
		columns int
		rows    int
	}{
		{1, 3, 5},
		{4, 4, 8},
		{8, 5, 10},
		{12, 5, 10},
	}
	for _, tc := range cases {
		if got := PathfinderColumns(tc.level); got != tc.columns {
			t.Fatalf("level %d: expected %d columns, got %d", tc.level, tc.columns, got)
		}
		if got := PathfinderRows(tc.level); got != tc.rows {
			t.Fatalf("level %d: expected %d rows, got %d", tc.level, tc.rows, got)
		}
	}
}

func TestPathfinderSafeCellsPerRow(t *testing.T) {
	for level := 1; level <= model.LevelCount; level++ {
		p := NewPathfinder(level, model.Intense, generator.NewSeeded(int64(level)))
		p.Start()
		for r, row := range p.Solution() {
			if len(row) != 1 {
				t.Fatalf("intense level %d row %d: expected 1 safe cell, got %v", level, r, row)
			}
		}
	}

	p := NewPathfinder(8, model.Calm, generator.NewSeeded(3))
	p.Start()
	if p.columns != 5 {
		t.Fatalf("expected 5 columns at level 8, got %d", p.columns)
	}
	for r, row := range p.Solution() {
		if len(row) != 4 {
			t.Fatalf("calm row %d: expected 4 safe cells, got %v", r, row)
		}
	}

	if got := SafeCellsPerRow(4, model.Focused); got != 2 {
		t.Fatalf("expected 2 safe cells for focused/4 columns, got %d", got)
	}
	if got := SafeCellsPerRow(3, model.Calm); got != 2 {
		t.Fatalf("expected 2 safe cells for calm/3 columns, got %d", got)
	}
}

func unsafeColumn(p *Pathfinder, row int) int {
	for c, ok := range p.safe[row] {
		if !ok {
			return c
		}
	}
	return -1
}

func TestPathfinderClearScoring(t *testing.T) {
	p := NewPathfinder(1, model.Focused, generator.NewSeeded(11))
	p.Start()
	total := 0
	for r, safe := range p.Solution() {
		v := p.Act(Select{Row: r, Column: safe[0]})
		if !v.Accepted || v.LifeLost {
			t.Fatalf("row %d: expected accepted safe step, got %+v", r, v)
		}
		total += v.Points
		if r < p.rows-1 && v.Cleared {
			t.Fatalf("row %d: cleared too early", r)
		}
	}
	// 5 rows * int(10*1.5) + int(50*1.5)
	if total != 5*15+75 {
		t.Fatalf("expected total 150, got %d", total)
	}
	if !p.Snapshot().Pathfinder.Done {
		t.Fatalf("expected board done")
	}
	if total != MaxScore(model.Pathfinder, 1, model.Focused) {
		t.Fatalf("expected clear to reach max score")
	}
}

func TestPathfinderWrongCellRevealsAndUnwinds(t *testing.T) {
	p := NewPathfinder(1, model.Intense, generator.NewSeeded(5))
	p.Start()
	wrong := unsafeColumn(p, 0)

	v := p.Act(Select{Row: 0, Column: wrong})
	if !v.Accepted || !v.LifeLost || v.Delay != pathWrongReveal {
		t.Fatalf("unexpected verdict for wrong cell: %+v", v)
	}
	view := p.Snapshot().Pathfinder
	if !view.Revealing || view.Cells[0][wrong] != CellWrong {
		t.Fatalf("expected wrong cell revealed: %+v", view.Cells[0])
	}
	safeCol := p.Solution()[0][0]
	if view.Cells[0][safeCol] != CellSafe {
		t.Fatalf("expected safe cell revealed in row")
	}
	if v := p.Act(Select{Row: 0, Column: safeCol}); v.Accepted {
		t.Fatalf("expected selection ignored during reveal")
	}

	p.Settle()
	view = p.Snapshot().Pathfinder
	if view.Revealing || view.CurrentRow != 0 {
		t.Fatalf("expected unwound state on row 0, got %+v", view)
	}
	for _, cell := range view.Cells[0] {
		if cell != CellHidden {
			t.Fatalf("expected row hidden after settle: %+v", view.Cells[0])
		}
	}
}

func TestPathfinderIgnoresOtherRows(t *testing.T) {
	p := NewPathfinder(1, model.Calm, generator.NewSeeded(9))
	p.Start()
	if v := p.Act(Select{Row: 2, Column: 0}); v.Accepted {
		t.Fatalf("expected selection in another row to be ignored")
	}
	if v := p.Act(Select{Row: 0, Column: 7}); v.Accepted {
		t.Fatalf("expected out of range column to be ignored")
	}
	if v := p.Act(Tap{}); v.Accepted {
		t.Fatalf("expected foreign action to be ignored")
	}
}

func TestPathfinderHintCooldown(t *testing.T) {
	p := NewPathfinder(1, model.Focused, generator.NewSeeded(2))
	p.Start()

	if v := p.Act(Hint{}); !v.Accepted || v.Points != 0 || v.LifeLost {
		t.Fatalf("expected hint accepted without scoring, got %+v", v)
	}
	view := p.Snapshot().Pathfinder
	if !view.HintActive {
		t.Fatalf("expected hint active")
	}
	for _, c := range p.Solution()[0] {
		if view.Cells[0][c] != CellSafe {
			t.Fatalf("expected hinted safe cell at column %d", c)
		}
	}
	if v := p.Act(Hint{}); v.Accepted {
		t.Fatalf("expected hint rejected during cooldown")
	}

	p.Advance(2 * time.Second)
	if p.Snapshot().Pathfinder.HintActive {
		t.Fatalf("expected hint to expire")
	}
	p.Advance(pathHintCool)
	if v := p.Act(Hint{}); !v.Accepted {
		t.Fatalf("expected hint available after cooldown")
	}
}
