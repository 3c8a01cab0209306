package games

import (
	"time"

	"github.com/verte-zerg/edgeplay/internal/generator"
	"github.com/verte-zerg/edgeplay/internal/model"
)

const (
	answerPoints       = 30
	sequenceClearBonus = 100

	correctFeedback = time.Second
	wrongFeedback   = 1500 * time.Millisecond

	geometricRatio    = 2
	maxGrowingTerms   = 5
	maxSequenceLength = 8
)

// Pattern is a family of number sequences.
type Pattern int

// Pattern families.
const (
	Arithmetic Pattern = iota
	Geometric
	Alternating
	Fibonacci
)

var patternNames = [...]string{
	Arithmetic:  "arithmetic",
	Geometric:   "geometric",
	Alternating: "alternating",
	Fibonacci:   "fibonacci",
}

var patterns = []Pattern{Arithmetic, Geometric, Alternating, Fibonacci}

func (p Pattern) String() string {
	if p < Arithmetic || p > Fibonacci {
		return "unknown"
	}
	return patternNames[p]
}

// Puzzle is one generated sequence and its hidden next term.
type Puzzle struct {
	Pattern Pattern
	Terms   []int
	Next    int
	// Step is the spread used to derive distractors.
	Step int
}

// ArithmeticPuzzle builds start, start+step, ... with length terms.
func ArithmeticPuzzle(start, step, length int) Puzzle {
	terms := make([]int, length)
	for i := range terms {
		terms[i] = start + i*step
	}
	return Puzzle{Pattern: Arithmetic, Terms: terms, Next: start + length*step, Step: step}
}

// GeometricPuzzle doubles from start, showing at most five terms.
func GeometricPuzzle(start, length int) Puzzle {
	shown := min(length, maxGrowingTerms)
	terms := make([]int, shown)
	value := start
	for i := range terms {
		terms[i] = value
		value *= geometricRatio
	}
	return Puzzle{Pattern: Geometric, Terms: terms, Next: value, Step: value / 2}
}

// AlternatingPuzzle repeats a, b, a, b, ... for length terms.
func AlternatingPuzzle(a, b, length int) Puzzle {
	values := [2]int{a, b}
	terms := make([]int, length)
	for i := range terms {
		terms[i] = values[i%2]
	}
	return Puzzle{Pattern: Alternating, Terms: terms, Next: values[length%2], Step: 1}
}

// FibonacciPuzzle builds 1, 1, 2, 3, ... with length terms.
func FibonacciPuzzle(length int) Puzzle {
	fib := []int{1, 1}
	for len(fib) < length+1 {
		fib = append(fib, fib[len(fib)-1]+fib[len(fib)-2])
	}
	terms := append([]int(nil), fib[:length]...)
	return Puzzle{Pattern: Fibonacci, Terms: terms, Next: fib[length], Step: fib[length-1]}
}

// SequenceLength is the number of terms shown for level.
func SequenceLength(level int) int {
	return min(4+level/2, maxSequenceLength)
}

// SequenceRounds is the number of puzzles that clears level.
func SequenceRounds(level int) int {
	return min(3+level/3, 6)
}

// OptionCount is the number of answer choices shown per puzzle.
func OptionCount(d model.Difficulty) int {
	switch d {
	case model.Calm:
		return 3
	case model.Focused:
		return 4
	default:
		return 5
	}
}

// Distractors returns up to count-1 wrong answers derived from correct and step.
func Distractors(correct, step, count int, gen *generator.Generator) []int {
	candidates := []int{
		correct + step,
		correct - step,
		correct + 1,
		correct - 1,
		correct * 2,
		correct + step*2,
	}
	seen := map[int]bool{correct: true}
	out := make([]int, 0, len(candidates))
	for _, v := range candidates {
		if v <= 0 || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	gen.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if limit := count - 1; len(out) > limit {
		out = out[:max(0, limit)]
	}
	return out
}

// Option is one answer choice.
type Option struct {
	ID    int
	Value int
}

// Feedback is the state of the latest answer.
type Feedback int

// Feedback values.
const (
	FeedbackNone Feedback = iota
	FeedbackCorrect
	FeedbackWrong
)

// SequenceView is the render state of the current puzzle.
type SequenceView struct {
	Round    int
	Rounds   int
	Pattern  Pattern
	Terms    []int
	Options  []Option
	Chosen   int
	Feedback Feedback
	// Answer is only set while feedback is shown.
	Answer *int
	Done   bool
}

// Sequence is the pattern game: pick the next term of a number sequence.
type Sequence struct {
	level      int
	difficulty model.Difficulty
	gen        *generator.Generator

	length      int
	rounds      int
	optionCount int

	round    int
	puzzle   Puzzle
	options  []Option
	chosen   int
	feedback Feedback
	advance  bool
	done     bool
}

// NewSequence returns an unstarted Sequence game.
func NewSequence(level int, d model.Difficulty, gen *generator.Generator) *Sequence {
	return &Sequence{
		level:       level,
		difficulty:  d,
		gen:         gen,
		length:      SequenceLength(level),
		rounds:      SequenceRounds(level),
		optionCount: OptionCount(d),
		chosen:      -1,
	}
}

// Type implements Game.
func (s *Sequence) Type() model.GameType { return model.Sequence }

// Level implements Game.
func (s *Sequence) Level() int { return s.level }

// Difficulty implements Game.
func (s *Sequence) Difficulty() model.Difficulty { return s.difficulty }

// Start generates the first puzzle.
func (s *Sequence) Start() {
	s.round = 1
	s.done = false
	s.advance = false
	s.newPuzzle()
}

func (s *Sequence) newPuzzle() {
	s.puzzle = s.randomPuzzle()
	values := append([]int{s.puzzle.Next}, Distractors(s.puzzle.Next, s.puzzle.Step, s.optionCount, s.gen)...)
	s.gen.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
	s.options = make([]Option, len(values))
	for i, v := range values {
		s.options[i] = Option{ID: i, Value: v}
	}
	s.chosen = -1
	s.feedback = FeedbackNone
}

func (s *Sequence) randomPuzzle() Puzzle {
	switch patterns[s.gen.Pick(len(patterns))] {
	case Geometric:
		return GeometricPuzzle(s.gen.IntRange(2, 4), s.length)
	case Alternating:
		return AlternatingPuzzle(s.gen.IntRange(1, 9), s.gen.IntRange(1, 9), s.length)
	case Fibonacci:
		return FibonacciPuzzle(s.length)
	default:
		return ArithmeticPuzzle(s.gen.IntRange(1, 10), s.gen.IntRange(2, 5), s.length)
	}
}

// Puzzle returns the current puzzle including its answer.
func (s *Sequence) Puzzle() Puzzle {
	return s.puzzle
}

// Act implements Game.
func (s *Sequence) Act(a Action) Verdict {
	act, ok := a.(Choose)
	if !ok || s.done || s.feedback != FeedbackNone || s.options == nil {
		return Verdict{}
	}
	var picked *Option
	for i := range s.options {
		if s.options[i].ID == act.Option {
			picked = &s.options[i]
			break
		}
	}
	if picked == nil {
		return Verdict{}
	}
	s.chosen = picked.ID

	if picked.Value != s.puzzle.Next {
		s.feedback = FeedbackWrong
		return Verdict{Accepted: true, LifeLost: true, Delay: wrongFeedback}
	}
	s.feedback = FeedbackCorrect
	points := scaled(answerPoints, s.difficulty)
	if s.round >= s.rounds {
		s.done = true
		return Verdict{Accepted: true, Points: points + scaled(sequenceClearBonus, s.difficulty), Cleared: true}
	}
	s.advance = true
	return Verdict{Accepted: true, Points: points, Delay: correctFeedback}
}

// Advance implements Game; Sequence has no running clock.
func (s *Sequence) Advance(time.Duration) {}

// Settle moves to the next puzzle, or regenerates the same round after a miss.
func (s *Sequence) Settle() {
	if s.feedback == FeedbackNone || s.done {
		return
	}
	if s.advance {
		s.round++
		s.advance = false
	}
	s.newPuzzle()
}

// Snapshot implements Game.
func (s *Sequence) Snapshot() Snapshot {
	view := &SequenceView{
		Round:    s.round,
		Rounds:   s.rounds,
		Pattern:  s.puzzle.Pattern,
		Terms:    append([]int(nil), s.puzzle.Terms...),
		Options:  append([]Option(nil), s.options...),
		Chosen:   s.chosen,
		Feedback: s.feedback,
		Done:     s.done,
	}
	if s.feedback != FeedbackNone {
		answer := s.puzzle.Next
		view.Answer = &answer
	}
	return Snapshot{Game: model.Sequence, Sequence: view}
}
