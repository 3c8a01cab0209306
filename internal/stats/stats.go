// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/edgeplay/internal/games"
	"github.com/verte-zerg/edgeplay/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Efficiency is the share of the level's maximum score a session reached, 0 to 1.
func Efficiency(rec model.SessionRecord) float64 {
	maxScore := games.MaxScore(rec.GameType, rec.Level, rec.Difficulty)
	if maxScore <= 0 {
		return 0
	}
	return math.Min(1, float64(rec.Score)/float64(maxScore))
}

// Summary aggregates a list of session records.
type Summary struct {
	Sessions      int
	Completed     int
	WinRate       float64
	AvgScore      float64
	BestScore     int
	AvgEfficiency float64
	PlayTime      string
}

// Summarize computes a Summary over records.
func Summarize(records []model.SessionRecord) Summary {
	if len(records) == 0 {
		return Summary{PlayTime: model.FormatPlayTime(0)}
	}
	var s Summary
	var totalScore, totalEff float64
	var played time.Duration
	for _, rec := range records {
		s.Sessions++
		if rec.Completed {
			s.Completed++
		}
		totalScore += float64(rec.Score)
		totalEff += Efficiency(rec)
		if rec.Score > s.BestScore {
			s.BestScore = rec.Score
		}
		if d := rec.Duration(); d > 0 {
			played += d
		}
	}
	count := float64(s.Sessions)
	s.WinRate = float64(s.Completed) / count
	s.AvgScore = totalScore / count
	s.AvgEfficiency = totalEff / count
	s.PlayTime = model.FormatPlayTime(played)
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := seriesMinMaxSingle(values)
	if math.Abs(hi-lo) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	last := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		b.WriteByte(sparkChars[min(max(idx, 0), last)])
	}
	return b.String()
}

// ScoreSeries returns the scores of records in order.
func ScoreSeries(records []model.SessionRecord) []float64 {
	out := make([]float64, len(records))
	for i, rec := range records {
		out[i] = float64(rec.Score)
	}
	return out
}

// EfficiencySeries returns the efficiency of records as percentages.
func EfficiencySeries(records []model.SessionRecord) []float64 {
	out := make([]float64, len(records))
	for i, rec := range records {
		out[i] = Efficiency(rec) * 100
	}
	return out
}

// RenderSummary prints a summary for sessions.
func RenderSummary(w io.Writer, records []model.SessionRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	s := Summarize(records)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", s.Sessions),
		fmt.Sprintf("Completed: %d (%.0f%%)", s.Completed, s.WinRate*100),
		fmt.Sprintf("Avg Score: %.1f", s.AvgScore),
		fmt.Sprintf("Best Score: %d", s.BestScore),
		fmt.Sprintf("Avg Efficiency: %.1f%%", s.AvgEfficiency*100),
		fmt.Sprintf("Time in sessions: %s", s.PlayTime),
		"",
	}
	return writeLines(w, lines)
}

// RenderCurves prints score and efficiency curves for sessions.
func RenderCurves(w io.Writer, records []model.SessionRecord, window int) error {
	return RenderCurvesWithSize(w, records, window, 0, defaultPlotHeight)
}

// RenderCurvesWithSize prints the curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, records []model.SessionRecord, window, totalWidth, height int) error {
	if len(records) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeries(w, "Score Curves", []Series{
		{Name: "Score", Values: MovingAverage(ScoreSeries(records), window)},
		{Name: "Efficiency", Values: MovingAverage(EfficiencySeries(records), window)},
	}, width, height)
}

// RenderLevelTable prints the level track of one game.
func RenderLevelTable(w io.Writer, gt model.GameType, levels []model.LevelProgress) error {
	if len(levels) == 0 {
		_, err := fmt.Fprintf(w, "No levels for %s.\n", gt)
		return err
	}
	if _, err := fmt.Fprintf(w, "%s: %s\n", gt, gt.Subtitle()); err != nil {
		return err
	}
	lines := formatTable(levelHeaders, LevelRows(levels), levelRightAlign)
	lines = append(lines, "")
	return writeLines(w, lines)
}

var (
	levelHeaders    = []string{"Level", "Status", "Best", "Attempts", "Hardest"}
	levelRightAlign = map[int]bool{0: true, 2: true, 3: true}
)

// LevelRows formats levels as table rows.
func LevelRows(levels []model.LevelProgress) [][]string {
	rows := make([][]string, 0, len(levels))
	for _, lp := range levels {
		hardest := "-"
		if lp.BestDifficulty != nil {
			hardest = lp.BestDifficulty.String()
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", lp.LevelNumber),
			LevelStatus(lp),
			fmt.Sprintf("%d", lp.BestScore),
			fmt.Sprintf("%d", lp.Attempts),
			hardest,
		})
	}
	return rows
}

// LevelStatus is the short status label of a level.
func LevelStatus(lp model.LevelProgress) string {
	switch {
	case lp.IsCompleted:
		return "✓ done"
	case lp.IsUnlocked:
		return "○ open"
	default:
		return "· locked"
	}
}

// ProgressBar renders pct (0 to 100) as a bar of width cells.
func ProgressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	pct = math.Max(0, math.Min(100, pct))
	filled := int(math.Round(pct / 100 * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
