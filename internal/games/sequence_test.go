package games

import (
	"reflect"
	"testing"

	"github.com/verte-zerg/edgeplay/internal/generator"
	"github.com/verte-zerg/edgeplay/internal/model"
)

func TestArithmeticPuzzle(t *testing.T) {
	p := ArithmeticPuzzle(3, 2, 4)
	if !reflect.DeepEqual(p.Terms, []int{3, 5, 7, 9}) {
		t.Fatalf("unexpected terms %v", p.Terms)
	}
	if p.Next != 11 {
		t.Fatalf("expected next 11, got %d", p.Next)
	}
}

func TestGrowingPuzzlesCapTerms(t *testing.T) {
	g := GeometricPuzzle(3, 8)
	if !reflect.DeepEqual(g.Terms, []int{3, 6, 12, 24, 48}) || g.Next != 96 {
		t.Fatalf("unexpected geometric puzzle %+v", g)
	}
	f := FibonacciPuzzle(6)
	if !reflect.DeepEqual(f.Terms, []int{1, 1, 2, 3, 5, 8}) || f.Next != 13 || f.Step != 8 {
		t.Fatalf("unexpected fibonacci puzzle %+v", f)
	}
	a := AlternatingPuzzle(4, 7, 5)
	if !reflect.DeepEqual(a.Terms, []int{4, 7, 4, 7, 4}) || a.Next != 7 {
		t.Fatalf("unexpected alternating puzzle %+v", a)
	}
}

func TestDistractors(t *testing.T) {
	gen := generator.NewSeeded(21)
	for trial := 0; trial < 100; trial++ {
		got := Distractors(11, 2, 5, gen)
		if len(got) != 4 {
			t.Fatalf("expected 4 distractors, got %v", got)
		}
		seen := map[int]bool{}
		for _, v := range got {
			if v <= 0 || v == 11 || seen[v] {
				t.Fatalf("invalid distractor set %v", got)
			}
			seen[v] = true
		}
	}
	// correct=1, step=1 leaves only {2, 3} after filtering.
	if got := Distractors(1, 1, 5, gen); len(got) != 2 {
		t.Fatalf("expected 2 distractors, got %v", got)
	}
	if got := Distractors(11, 2, 3, gen); len(got) != 2 {
		t.Fatalf("expected truncation to 2, got %v", got)
	}
}

func TestSequenceLevelParameters(t *testing.T) {
	if SequenceLength(1) != 4 || SequenceLength(12) != 8 {
		t.Fatalf("unexpected sequence lengths")
	}
	if SequenceRounds(1) != 3 || SequenceRounds(12) != 6 {
		t.Fatalf("unexpected round counts")
	}
	if OptionCount(model.Calm) != 3 || OptionCount(model.Focused) != 4 || OptionCount(model.Intense) != 5 {
		t.Fatalf("unexpected option counts")
	}
}

func answerID(s *Sequence) (correct, wrong int) {
	correct, wrong = -1, -1
	for _, opt := range s.options {
		if opt.Value == s.puzzle.Next {
			correct = opt.ID
		} else if wrong == -1 {
			wrong = opt.ID
		}
	}
	return correct, wrong
}

func TestSequenceRoundFlow(t *testing.T) {
	s := NewSequence(1, model.Intense, generator.NewSeeded(13))
	s.Start()

	correct, wrong := answerID(s)
	if correct == -1 || wrong == -1 {
		t.Fatalf("expected both correct and wrong options: %+v", s.options)
	}
	v := s.Act(Choose{Option: wrong})
	if !v.Accepted || !v.LifeLost || v.Delay != wrongFeedback {
		t.Fatalf("unexpected verdict for wrong answer: %+v", v)
	}
	if view := s.Snapshot().Sequence; view.Answer == nil || *view.Answer != s.puzzle.Next {
		t.Fatalf("expected answer revealed during feedback")
	}
	if v := s.Act(Choose{Option: correct}); v.Accepted {
		t.Fatalf("expected choice ignored during feedback")
	}
	s.Settle()
	if s.round != 1 {
		t.Fatalf("expected round to stay at 1 after a miss, got %d", s.round)
	}

	total := 0
	for r := 1; r <= s.rounds; r++ {
		correct, _ = answerID(s)
		v := s.Act(Choose{Option: correct})
		if !v.Accepted || v.LifeLost {
			t.Fatalf("round %d: expected correct answer, got %+v", r, v)
		}
		total += v.Points
		if r < s.rounds {
			s.Settle()
			if s.round != r+1 {
				t.Fatalf("expected round %d, got %d", r+1, s.round)
			}
		} else if !v.Cleared {
			t.Fatalf("expected final round to clear")
		}
	}
	if total != 3*60+200 {
		t.Fatalf("expected 380 points, got %d", total)
	}
}

func TestSequenceOptionsContainAnswer(t *testing.T) {
	gen := generator.NewSeeded(77)
	for level := 1; level <= model.LevelCount; level++ {
		s := NewSequence(level, model.Focused, gen)
		s.Start()
		if len(s.options) > OptionCount(model.Focused) || len(s.options) < 2 {
			t.Fatalf("level %d: unexpected option count %d", level, len(s.options))
		}
		found := false
		for i, opt := range s.options {
			if opt.ID != i {
				t.Fatalf("expected option ids to be positional")
			}
			if opt.Value == s.puzzle.Next {
				found = true
			}
		}
		if !found {
			t.Fatalf("level %d: answer missing from options", level)
		}
	}
}
