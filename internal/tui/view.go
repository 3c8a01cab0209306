package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/edgeplay/internal/games"
	"github.com/verte-zerg/edgeplay/internal/model"
	statsPkg "github.com/verte-zerg/edgeplay/internal/stats"
)

var (
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	titleStyle   = textStyle.Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	selectStyle  = accentStyle.Bold(true)
	dangerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

var onboardingPages = []struct {
	title string
	body  string
}{
	{"Step Forward", "Every action is a choice. Progress through carefully designed challenges that test your timing and precision."},
	{"Build Momentum", "Each level completed adds to your streak. Consistent progress unlocks new challenges and mastery badges."},
	{"Calculated Risk", "Choose your difficulty. Balance risk and reward to find your edge. The greater the challenge, the greater the progress."},
	{"Earn Mastery", "Complete levels, build streaks, and unlock badges that showcase your skill. Your progress tells your story."},
}

// onboardingEmphasis highlights the words each page is about.
var onboardingEmphasis = map[string]bool{
	"choice": true, "streak": true, "difficulty": true, "badges": true,
}

// View implements tea.Model.
func (m *Model) View() string {
	content := m.renderBody()
	if m.notice != "" {
		content += "\n\n" + dangerStyle.Render(m.notice)
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 60
	}
	return max(20, min(72, int(float64(m.width)*0.70)))
}

func (m *Model) renderBody() string {
	switch m.screen {
	case screenOnboarding:
		return m.renderOnboarding()
	case screenHub:
		return m.renderHub()
	case screenLevels:
		return m.renderLevels()
	case screenPlay:
		return m.renderPlay()
	case screenResult:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) renderOnboarding() string {
	page := onboardingPages[m.page]
	width := m.contentWidth()
	dots := make([]string, len(onboardingPages))
	for i := range dots {
		if i == m.page {
			dots[i] = accentStyle.Render("●")
		} else {
			dots[i] = mutedStyle.Render("○")
		}
	}
	body := wrapText(page.body, width, textStyle, func(word string) (lipgloss.Style, bool) {
		return accentStyle, onboardingEmphasis[strings.ToLower(word)]
	})
	return strings.Join([]string{
		titleStyle.Render(page.title),
		"",
		body,
		"",
		strings.Join(dots, " "),
	}, "\n")
}

func (m *Model) renderHub() string {
	stats := m.progress.Stats()
	d := m.progress.SelectedDifficulty()
	width := m.contentWidth()

	lines := []string{
		titleStyle.Render("Ready to progress?"),
		mutedStyle.Render(fmt.Sprintf("Streak %d · Best %d · %s", stats.CurrentStreak, stats.BestStreak, d.Description())),
		"Difficulty: " + accentStyle.Render(d.String()),
		"",
		mutedStyle.Render("CHALLENGES"),
	}
	nameWidth := 0
	for _, gt := range model.GameTypes {
		nameWidth = max(nameWidth, lipgloss.Width(gt.String()))
	}
	for i, gt := range model.GameTypes {
		done := 0
		for _, lp := range m.progress.Progress(gt) {
			if lp.IsCompleted {
				done++
			}
		}
		bar := statsPkg.ProgressBar(m.progress.CompletionPercentage(gt), 12)
		line := fmt.Sprintf("%s  %s  %s %2d/%d", padRight(gt.String(), nameWidth), padRight(gt.Subtitle(), 18), bar, done, gt.LevelCount())
		if i == m.gameIdx {
			lines = append(lines, selectStyle.Render("› "+line))
		} else {
			lines = append(lines, textStyle.Render("  "+line))
		}
	}
	lines = append(lines, "", wrapText(m.gameType().Description(), width, mutedStyle, nil), "")

	lines = append(lines, mutedStyle.Render("EARNED BADGES"))
	earned := m.progress.Badges()
	if len(earned) == 0 {
		lines = append(lines, mutedStyle.Render("None yet"))
	} else {
		parts := make([]string, 0, len(earned))
		for _, b := range earned {
			parts = append(parts, b.Icon()+" "+b.String())
		}
		lines = append(lines, wrapText(strings.Join(parts, "  "), width, accentStyle, nil))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderLevels() string {
	gt := m.gameType()
	levels := m.progress.Progress(gt)
	lines := []string{
		titleStyle.Render(gt.String()) + mutedStyle.Render(" · "+gt.Subtitle()),
		"Difficulty: " + accentStyle.Render(m.progress.SelectedDifficulty().String()),
		"",
	}
	var row []string
	for i, lp := range levels {
		row = append(row, levelCell(lp, i == m.levelIdx))
		if len(row) == gridColumn || i == len(levels)-1 {
			lines = append(lines, strings.Join(row, " "))
			row = nil
		}
	}
	lines = append(lines, "")
	if m.levelIdx < len(levels) {
		lp := levels[m.levelIdx]
		detail := fmt.Sprintf("Level %d · %s", lp.LevelNumber, statsPkg.LevelStatus(lp))
		if lp.IsUnlocked {
			detail += fmt.Sprintf(" · Best %d · Attempts %d", lp.BestScore, lp.Attempts)
		}
		lines = append(lines, mutedStyle.Render(detail))
	}
	return strings.Join(lines, "\n")
}

func levelCell(lp model.LevelProgress, selected bool) string {
	mark := " "
	style := textStyle
	switch {
	case lp.IsCompleted:
		mark = "✓"
		style = successStyle
	case !lp.IsUnlocked:
		mark = "·"
		style = mutedStyle
	}
	label := fmt.Sprintf("%2d %s", lp.LevelNumber, mark)
	if selected {
		return selectStyle.Render("[" + label + "]")
	}
	return style.Render(" " + label + " ")
}

func livesString(lives int) string {
	lives = max(0, min(lives, model.StartingLives))
	return dangerStyle.Render(strings.Repeat("♥", lives)) + mutedStyle.Render(strings.Repeat("♡", model.StartingLives-lives))
}

func (m *Model) renderPlay() string {
	view := m.coord.Snapshot()
	game := m.coord.Game()
	header := titleStyle.Render(fmt.Sprintf("Level %d", game.Level())) +
		mutedStyle.Render(fmt.Sprintf(" · %s · %s", game.Type(), game.Difficulty()))
	status := fmt.Sprintf("Score %s   %s", accentStyle.Render(strconv.Itoa(view.State.Score)), livesString(view.State.Lives))

	var body string
	switch {
	case view.Game.Pathfinder != nil:
		body = m.renderPathfinder(view.Game.Pathfinder)
	case view.Game.Precision != nil:
		body = m.renderPrecision(view.Game.Precision)
	case view.Game.Sequence != nil:
		body = m.renderSequence(view.Game.Sequence)
	}
	if view.Paused {
		body = strings.Join([]string{
			titleStyle.Render("Paused"),
			"",
			accentStyle.Render("esc") + mutedStyle.Render(" Resume   ") + accentStyle.Render("q") + mutedStyle.Render(" Quit"),
		}, "\n")
	}
	return strings.Join([]string{header, status, "", body}, "\n")
}

func (m *Model) renderPathfinder(view *games.PathfinderView) string {
	lines := []string{textStyle.Render("Choose a safe step"), ""}
	for r := view.Rows - 1; r >= 0; r-- {
		cells := make([]string, view.Columns)
		for c := range cells {
			cursor := r == view.CurrentRow && c == m.column && !view.Done
			cells[c] = pathCell(view.Cells[r][c], cursor)
		}
		label := mutedStyle.Render(fmt.Sprintf("%2d ", r+1))
		if r == view.CurrentRow && !view.Done {
			label = accentStyle.Render(fmt.Sprintf("%2d›", r+1))
		}
		lines = append(lines, label+" "+strings.Join(cells, " "))
	}
	hint := accentStyle.Render("h") + mutedStyle.Render(" hint ready")
	switch {
	case view.HintActive:
		hint = successStyle.Render("hint showing")
	case view.HintCooldown > 0:
		hint = mutedStyle.Render(fmt.Sprintf("hint in %ds", int((view.HintCooldown+time.Second-1)/time.Second)))
	}
	lines = append(lines, "", hint)
	return strings.Join(lines, "\n")
}

func pathCell(state games.CellState, cursor bool) string {
	var cell string
	switch state {
	case games.CellStepped:
		cell = successStyle.Render("[ ● ]")
	case games.CellSafe:
		cell = successStyle.Render("[ ◆ ]")
	case games.CellDanger:
		cell = dangerStyle.Render("[ ✕ ]")
	case games.CellWrong:
		cell = dangerStyle.Bold(true).Render("[ ✖ ]")
	default:
		if cursor {
			return selectStyle.Render("[ ▴ ]")
		}
		cell = mutedStyle.Render("[   ]")
	}
	return cell
}

func (m *Model) renderPrecision(view *games.PrecisionView) string {
	barWidth := max(20, min(50, m.contentWidth()-4))
	zoneFrom := int(view.ZoneStart * float64(barWidth))
	zoneTo := int((view.ZoneStart + view.ZoneWidth) * float64(barWidth))
	marker := min(barWidth-1, max(0, int(view.Position*float64(barWidth-1)+0.5)))

	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		inZone := i >= zoneFrom && i < max(zoneTo, zoneFrom+1)
		switch {
		case i == marker:
			bar.WriteString(titleStyle.Render("█"))
		case inZone:
			bar.WriteString(accentStyle.Render("━"))
		default:
			bar.WriteString(mutedStyle.Render("─"))
		}
	}

	feedback := mutedStyle.Render("Tap when the indicator is in the gold zone")
	if view.LastHit != nil {
		if *view.LastHit {
			feedback = successStyle.Render("Hit!")
		} else {
			feedback = dangerStyle.Render("Miss")
		}
	}
	return strings.Join([]string{
		textStyle.Render("Stop in the zone!"),
		"",
		bar.String(),
		"",
		fmt.Sprintf("Hits %d/%d", view.Hits, view.RequiredHits),
		feedback,
	}, "\n")
}

func (m *Model) renderSequence(view *games.SequenceView) string {
	terms := make([]string, 0, len(view.Terms)+1)
	for _, t := range view.Terms {
		terms = append(terms, textStyle.Render(strconv.Itoa(t)))
	}
	next := accentStyle.Render("?")
	if view.Answer != nil {
		next = successStyle.Render(strconv.Itoa(*view.Answer))
	}
	terms = append(terms, next)

	options := make([]string, 0, len(view.Options))
	for i, opt := range view.Options {
		label := fmt.Sprintf("%d) %d", i+1, opt.Value)
		style := textStyle
		switch {
		case view.Feedback != games.FeedbackNone && view.Answer != nil && opt.Value == *view.Answer:
			style = successStyle
		case view.Feedback == games.FeedbackWrong && opt.ID == view.Chosen:
			style = dangerStyle
		case view.Feedback == games.FeedbackNone && i == m.option:
			style = selectStyle
			label = "[" + label + "]"
		}
		if !strings.HasPrefix(label, "[") {
			label = " " + label + " "
		}
		options = append(options, style.Render(label))
	}

	return strings.Join([]string{
		mutedStyle.Render(fmt.Sprintf("Round %d of %d", view.Round, view.Rounds)),
		textStyle.Render("What comes next?"),
		"",
		strings.Join(terms, mutedStyle.Render(", ")),
		"",
		mutedStyle.Render("Select your answer"),
		strings.Join(options, " "),
	}, "\n")
}

func (m *Model) renderResult() string {
	if m.result == nil {
		return ""
	}
	rec := m.result.Record
	title := dangerStyle.Bold(true).Render("Game Over")
	if rec.Completed {
		title = successStyle.Bold(true).Render("Level Complete!")
	}
	lines := []string{
		title,
		mutedStyle.Render(fmt.Sprintf("%s · Level %d · %s", rec.GameType, rec.Level, rec.Difficulty)),
		"",
		fmt.Sprintf("Score       %s / %d", accentStyle.Render(strconv.Itoa(rec.Score)), m.result.MaxScore),
		fmt.Sprintf("Efficiency  %.0f%%", statsPkg.Efficiency(rec)*100),
		fmt.Sprintf("Lives Left  %s", livesString(rec.LivesLeft)),
	}
	for _, b := range m.result.NewBadges {
		lines = append(lines, accentStyle.Render(fmt.Sprintf("New badge: %s %s", b.Icon(), b)))
	}
	if m.showSolution {
		if pf, ok := m.coord.Game().(*games.Pathfinder); ok {
			lines = append(lines, "", mutedStyle.Render("Safe path"))
			lines = append(lines, renderSolution(pf.Solution(), games.PathfinderColumns(rec.Level))...)
		}
	}
	return strings.Join(lines, "\n")
}

func renderSolution(solution [][]int, columns int) []string {
	lines := make([]string, 0, len(solution))
	for r := len(solution) - 1; r >= 0; r-- {
		safe := map[int]bool{}
		for _, c := range solution[r] {
			safe[c] = true
		}
		cells := make([]string, columns)
		for c := range cells {
			if safe[c] {
				cells[c] = successStyle.Render("[ ◆ ]")
			} else {
				cells[c] = mutedStyle.Render("[   ]")
			}
		}
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("%2d  ", r+1))+strings.Join(cells, " "))
	}
	return lines
}

func (m *Model) renderFooter() string {
	var segments []string
	switch m.screen {
	case screenOnboarding:
		segments = []string{fmt.Sprintf("%d/%d", m.page+1, len(onboardingPages)), "enter next", "s skip"}
	case screenHub:
		stats := m.progress.Stats()
		segments = []string{
			fmt.Sprintf("Levels %d/%d", m.progress.TotalCompletedLevels(), len(model.GameTypes)*model.LevelCount),
			fmt.Sprintf("Badges %d/%d", len(m.progress.Badges()), len(model.Badges)),
			fmt.Sprintf("Play time %s", stats.FormattedPlayTime()),
			"enter play", "d difficulty", "q quit",
		}
	case screenLevels:
		segments = []string{"enter start", "d difficulty", "esc back"}
	case screenPlay:
		state := m.coord.State()
		segments = []string{
			fmt.Sprintf("Level %d", m.coord.Game().Level()),
			fmt.Sprintf("Score %d", state.Score),
			fmt.Sprintf("Lives %d", state.Lives),
		}
		segments = append(segments, playKeys(m.coord.Game().Type())...)
	case screenResult:
		next := "enter Try Again"
		if m.result != nil && m.result.Record.Completed && m.levelIdx+1 < m.gameType().LevelCount() {
			next = "enter Continue"
		}
		segments = []string{next, "r retry", "esc Back to Levels"}
		if _, ok := m.coord.Game().(*games.Pathfinder); ok {
			segments = append(segments, "s path")
		}
	}
	if len(segments) == 0 {
		return ""
	}
	return footerStyle.Render(truncate(strings.Join(segments, "  "), max(m.width, 20)))
}

func playKeys(gt model.GameType) []string {
	switch gt {
	case model.Pathfinder:
		return []string{"←/→ 1-5 enter", "h hint", "esc pause"}
	case model.Precision:
		return []string{"space tap", "esc pause"}
	case model.Sequence:
		return []string{"1-5 answer", "esc pause"}
	default:
		return nil
	}
}
