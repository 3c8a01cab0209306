// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/edgeplay/internal/model"
	"github.com/verte-zerg/edgeplay/internal/stats"
)

const (
	tabOverview = iota
	tabLevels
	tabBadges
	tabHistory
	tabCount
)

const (
	plotHeight = 10
)

const resetWarning = "This will permanently delete all your progress, statistics, and earned badges. This action cannot be undone."

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Source is the progress and history the stats UI reads, plus the reset
// action offered from the UI.
type Source interface {
	stats.HistorySource
	stats.ProgressSource
	ResetAllProgress(ctx context.Context)
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	ctx context.Context
	src Source
	cfg model.StatsConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	tables    [tabCount]*tableTab

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string

	confirmReset bool
	notice       string
}

type tableTab struct {
	table  table.Model
	layout tableLayout
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
	colCount int
}

// NewModel constructs a stats UI model.
func NewModel(ctx context.Context, src Source, cfg model.StatsConfig) *Model {
	m := &Model{
		ctx:  ctx,
		src:  src,
		cfg:  cfg,
		tabs: []string{"Overview", "Levels", "Badges", "History"},
	}
	m.initInputs()
	m.tables[tabLevels] = &tableTab{table: newTable(levelColumns(), nil)}
	m.tables[tabHistory] = &tableTab{table: newTable(historyColumns(), nil)}
	m.initViewports()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.confirmReset {
			return m.updateConfirm(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		m.focusTable()
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "/":
			return m.startFilter()
		case "R":
			m.confirmReset = true
			m.notice = ""
			return m, nil
		case "g", "home":
			if tt := m.tables[m.activeTab]; tt != nil {
				tt.table.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if tt := m.tables[m.activeTab]; tt != nil {
				tt.table.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if tt := m.tables[m.activeTab]; tt != nil {
				var cmd tea.Cmd
				tt.table, cmd = tt.table.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.confirmReset {
		return fitLines(m.renderConfirmModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Game: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Curve window: "),
	}
	m.filterInputs[0].Placeholder = "pathfinder, precision or sequence"
	m.setInputsFromConfig()
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && (m.errMsg != "" || m.notice != "") {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	if len(m.filterInputs) == 0 {
		return
	}
	if m.cfg.GameType != nil {
		m.filterInputs[0].SetValue(m.cfg.GameType.String())
	} else {
		m.filterInputs[0].SetValue("")
	}
	if m.cfg.Since != nil {
		m.filterInputs[1].SetValue(m.cfg.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[1].SetValue("")
	}
	if m.cfg.Last > 0 {
		m.filterInputs[2].SetValue(strconv.Itoa(m.cfg.Last))
	} else {
		m.filterInputs[2].SetValue("")
	}
	m.filterInputs[3].SetValue(strconv.Itoa(m.cfg.CurveWindow))
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	for _, tt := range m.tables {
		if tt != nil {
			tt.setSize(m.width, vpHeight)
		}
	}
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = max(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	m.focusTable()
}

func (m *Model) focusTable() {
	for i, tt := range m.tables {
		if tt == nil {
			continue
		}
		if i == m.activeTab {
			tt.table.Focus()
		} else {
			tt.table.Blur()
		}
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	game := "any"
	if m.cfg.GameType != nil {
		game = m.cfg.GameType.String()
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: game=%s  since=%s  last=%s  window=%d", game, since, last, m.cfg.CurveWindow)
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Reset: R  Quit: q"
	return headerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel  quit: ctrl+c")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	switch {
	case m.errMsg != "":
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	case m.notice != "":
		return m.renderHelp() + "\n" + cardTitleStyle.Render(m.notice)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	switch m.activeTab {
	case tabHistory:
		if len(m.report.Sessions) == 0 {
			return fitLines("No sessions found.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.tables[tabHistory].table.View()), m.width, height)
	case tabLevels:
		return fitLines(tableMutedStyle.Render(m.tables[tabLevels].table.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(m.ctx, m.src, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.tables[tabLevels].apply(levelColumns(), m.levelRows(), width, bodyHeight)
	m.tables[tabHistory].apply(historyColumns(), historyRows(m.report.Sessions), width, bodyHeight)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.src, m.report, m.cfg.CurveWindow, width))
	m.viewports[tabBadges].SetContent(renderBadges(m.src))
}

func renderOverview(src stats.ProgressSource, r stats.Report, window, width int) string {
	parts := []string{renderSummaryCards(r.Sessions, width), renderGameProgress(src, width)}
	if len(r.Sessions) > 0 {
		parts = append(parts, renderCurves(r.Sessions, window, width))
	}
	return strings.TrimRight(strings.Join(parts, "\n\n"), "\n")
}

func renderSummaryCards(sessions []model.SessionRecord, width int) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	s := stats.Summarize(sessions)
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", s.Sessions)),
		metricCard("Completed", fmt.Sprintf("%d (%.0f%%)", s.Completed, s.WinRate*100)),
		metricCard("Avg Score", fmt.Sprintf("%.1f", s.AvgScore)),
		metricCard("Best Score", fmt.Sprintf("%d", s.BestScore)),
		metricCard("Avg Efficiency", fmt.Sprintf("%.1f%%", s.AvgEfficiency*100)),
		metricCard("Play Time", s.PlayTime),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

// renderGameProgress lists completion per game with the streak line.
func renderGameProgress(src stats.ProgressSource, width int) string {
	ps := src.Stats()
	lines := []string{
		cardTitleStyle.Render("BY GAME"),
	}
	barWidth := max(10, min(30, width-40))
	for _, gt := range model.GameTypes {
		pct := src.CompletionPercentage(gt)
		lines = append(lines, fmt.Sprintf("%-10s %s %5.1f%%  played %d",
			gt, stats.ProgressBar(pct, barWidth), pct, ps.GamesPlayed[gt]))
	}
	lines = append(lines,
		"",
		fmt.Sprintf("Levels completed %d · unlocked %d · streak %d (best %d)",
			src.TotalCompletedLevels(), src.TotalUnlockedLevels(), ps.CurrentStreak, ps.BestStreak),
	)
	return strings.Join(lines, "\n")
}

func renderCurves(sessions []model.SessionRecord, window, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderCurvesWithSize(&buf, sessions, window, width, plotHeight); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderBadges(src stats.ProgressSource) string {
	var buf bytes.Buffer
	if err := stats.WriteBadges(&buf, src); err != nil {
		return fmt.Sprintf("Failed to render badges: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func levelColumns() []table.Column {
	return []table.Column{
		{Title: "Game", Width: 10},
		{Title: "Level", Width: 5},
		{Title: "Status", Width: 8},
		{Title: "Best", Width: 6},
		{Title: "Attempts", Width: 8},
		{Title: "Hardest", Width: 8},
	}
}

func (m *Model) levelRows() []table.Row {
	gts := model.GameTypes
	if m.cfg.GameType != nil {
		gts = []model.GameType{*m.cfg.GameType}
	}
	var rows []table.Row
	for _, gt := range gts {
		for _, cells := range stats.LevelRows(m.src.Progress(gt)) {
			rows = append(rows, append(table.Row{gt.String()}, cells...))
		}
	}
	return rows
}

func historyColumns() []table.Column {
	return []table.Column{
		{Title: "When", Width: 16},
		{Title: "Game", Width: 10},
		{Title: "Level", Width: 5},
		{Title: "Difficulty", Width: 10},
		{Title: "Score", Width: 6},
		{Title: "Result", Width: 9},
		{Title: "Lives", Width: 5},
		{Title: "Time", Width: 7},
	}
}

// historyRows lists sessions newest first.
func historyRows(sessions []model.SessionRecord) []table.Row {
	rows := make([]table.Row, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		result := "Game Over"
		if s.Completed {
			result = "Cleared"
		}
		rows = append(rows, table.Row{
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.GameType.String(),
			strconv.Itoa(s.Level),
			s.Difficulty.String(),
			strconv.Itoa(s.Score),
			result,
			strconv.Itoa(s.LivesLeft),
			s.Duration().Round(time.Second).String(),
		})
	}
	return rows
}

func newTable(cols []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(1),
	)
	t.SetStyles(tableStyles())
	return t
}

func (tt *tableTab) apply(cols []table.Column, rows []table.Row, width, height int) {
	tt.table.SetColumns(cols)
	tt.table.SetRows(rows)
	tt.layout.rowCount = len(rows)
	tt.layout.colCount = len(cols)
	tt.layout.width = 0
	tt.setSize(width, height)
}

func (tt *tableTab) setSize(width, height int) {
	viewportHeight := max(1, height-1)
	if tt.layout.width == width && tt.layout.height == viewportHeight {
		return
	}
	tt.layout.width = width
	tt.layout.height = viewportHeight
	tt.table.SetWidth(width)
	tt.table.SetHeight(viewportHeight)
	viewportHeight = tt.adjustHeight(height)
	if tt.layout.height != viewportHeight {
		tt.layout.height = viewportHeight
		tt.table.SetHeight(viewportHeight)
	}
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (tt *tableTab) adjustHeight(bodyHeight int) int {
	target := max(1, bodyHeight)
	height := tt.table.Height()
	viewHeight := lipgloss.Height(tt.table.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	tt.table.SetHeight(height)
	viewHeight = lipgloss.Height(tt.table.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.src.ResetAllProgress(m.ctx)
		m.confirmReset = false
		m.notice = "All progress reset."
		m.refreshReport()
		m.updateLayout()
	case "n", "N", "esc", "q":
		m.confirmReset = false
	}
	return m, nil
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	var gameType *model.GameType
	if gameInput := strings.TrimSpace(m.filterInputs[0].Value()); gameInput != "" {
		gt, ok := matchGame(gameInput)
		if !ok {
			return fmt.Errorf("invalid game (use pathfinder, precision or sequence)")
		}
		gameType = &gt
	}

	sinceInput := strings.TrimSpace(m.filterInputs[1].Value())
	var since *time.Time
	if sinceInput != "" {
		parsed, err := time.ParseInLocation("2006-01-02", sinceInput, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}

	lastInput := strings.TrimSpace(m.filterInputs[2].Value())
	last := 0
	if lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}

	windowInput := strings.TrimSpace(m.filterInputs[3].Value())
	window := 0
	if windowInput != "" {
		parsed, err := strconv.Atoi(windowInput)
		if err != nil {
			return fmt.Errorf("invalid curve window (use integer)")
		}
		if parsed < 1 {
			return fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		window = parsed
	}

	m.cfg = model.StatsConfig{
		GameType:    gameType,
		Since:       since,
		Last:        last,
		CurveWindow: window,
	}
	return nil
}

func matchGame(input string) (model.GameType, bool) {
	for _, gt := range model.GameTypes {
		if strings.EqualFold(gt.String(), input) {
			return gt, true
		}
	}
	return 0, false
}

func (m *Model) renderConfirmModal() string {
	body := []string{
		cardValueStyle.Render("Reset All Progress?"),
		"",
		headerStyle.Render(resetWarning),
		"",
		errorStyle.Render("y") + headerStyle.Render(" reset  ") + cardValueStyle.Render("n") + headerStyle.Render(" cancel"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	if n%5 == 0 {
		return n + 5
	}
	return ((n / 5) + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func modalWidth(width int) int {
	return max(40, min(width-4, 80))
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
