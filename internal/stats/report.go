package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/edgeplay/internal/model"
)

const (
	weakTop        = 5
	weakMinSession = 2
	mostPlayedTop  = 5
)

// HistorySource lists recorded sessions.
type HistorySource interface {
	History(ctx context.Context, filter model.HistoryFilter) ([]model.SessionRecord, error)
}

// ProgressSource exposes persistent progress for reporting.
type ProgressSource interface {
	Progress(gt model.GameType) []model.LevelProgress
	Stats() model.PlayerStats
	HasBadge(b model.Badge) bool
	CompletionPercentage(gt model.GameType) float64
	TotalCompletedLevels() int
	TotalUnlockedLevels() int
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions   []model.SessionRecord
	Window     []model.SessionRecord
	Summary    Summary
	Weak       []LevelRate
	MostPlayed []LevelCount
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src HistorySource, cfg model.StatsConfig) (Report, error) {
	sessions, err := src.History(ctx, cfg.Filter())
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	return Report{
		Sessions:   sessions,
		Window:     lastSessions(sessions, cfg.CurveWindow),
		Summary:    Summarize(sessions),
		Weak:       WeakLevels(sessions, weakTop, weakMinSession),
		MostPlayed: MostPlayed(sessions, mostPlayedTop),
	}, nil
}

func lastSessions(sessions []model.SessionRecord, window int) []model.SessionRecord {
	if window <= 0 || len(sessions) <= window {
		return sessions
	}
	return sessions[len(sessions)-window:]
}

// BadgeProgress is the current value measured against b.RequiredProgress.
func BadgeProgress(b model.Badge, p ProgressSource) int {
	stats := p.Stats()
	switch b {
	case model.FirstStep, model.Committed:
		return stats.TotalLevelsCompleted
	case model.FocusedBadge:
		return stats.BestStreak
	case model.Relentless:
		best := 0
		for _, gt := range model.GameTypes {
			done := 0
			for _, lp := range p.Progress(gt) {
				if lp.IsCompleted {
					done++
				}
			}
			best = max(best, done)
		}
		return best
	case model.Master:
		return p.TotalCompletedLevels()
	default:
		return 0
	}
}

// WriteBadges prints every badge with its earned state and progress.
func WriteBadges(w io.Writer, p ProgressSource) error {
	rows := make([][]string, 0, len(model.Badges))
	for _, b := range model.Badges {
		state := "locked"
		if p.HasBadge(b) {
			state = "earned"
		}
		current := min(BadgeProgress(b, p), b.RequiredProgress())
		rows = append(rows, []string{
			b.Icon(),
			b.String(),
			state,
			fmt.Sprintf("%d/%d", current, b.RequiredProgress()),
			b.Description(),
		})
	}
	lines := formatTable([]string{"", "Badge", "State", "Progress", "Goal"}, rows, map[int]bool{3: true})
	return writeLines(w, lines)
}

// WriteProgressReport prints the plain text progress report.
func WriteProgressReport(w io.Writer, p ProgressSource, r Report, width int) error {
	stats := p.Stats()
	header := []string{
		"Progress",
		fmt.Sprintf("Levels completed: %d (unlocked %d)", p.TotalCompletedLevels(), p.TotalUnlockedLevels()),
		fmt.Sprintf("Streak: %d (best %d)", stats.CurrentStreak, stats.BestStreak),
		fmt.Sprintf("App sessions: %d, play time %s", stats.TotalSessions, stats.FormattedPlayTime()),
		"",
	}
	if err := writeLines(w, header); err != nil {
		return err
	}

	barWidth := max(10, min(40, width-30))
	for _, gt := range model.GameTypes {
		pct := p.CompletionPercentage(gt)
		line := fmt.Sprintf("%-10s %s %5.1f%%  played %d, highest %d",
			gt, ProgressBar(pct, barWidth), pct, stats.GamesPlayed[gt], stats.HighestLevelReached[gt])
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	for _, gt := range model.GameTypes {
		if err := RenderLevelTable(w, gt, p.Progress(gt)); err != nil {
			return err
		}
	}
	if err := WriteBadges(w, p); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	if err := RenderSummary(w, r.Sessions); err != nil {
		return err
	}
	if len(r.Window) > 1 {
		if _, err := fmt.Fprintf(w, "Recent scores: %s\n\n", Sparkline(ScoreSeries(r.Window))); err != nil {
			return err
		}
	}
	if len(r.Weak) > 0 {
		rows := make([][]string, 0, len(r.Weak))
		for _, lr := range r.Weak {
			rows = append(rows, []string{
				lr.GameType.String(),
				fmt.Sprintf("%d", lr.Level),
				fmt.Sprintf("%d/%d", lr.Cleared, lr.Sessions),
			})
		}
		lines := append([]string{"Hardest levels"}, formatTable([]string{"Game", "Level", "Cleared"}, rows, map[int]bool{1: true, 2: true})...)
		lines = append(lines, "")
		if err := writeLines(w, lines); err != nil {
			return err
		}
	}
	return nil
}
