package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes styles text rune by rune. Words for which emphasis
// returns a style are drawn with it instead of base.
func buildStyledRunes(text []rune, base lipgloss.Style, emphasis func(word string) (lipgloss.Style, bool)) []styledRune {
	styles := make([]lipgloss.Style, len(text))
	for i := range styles {
		styles[i] = base
	}
	if emphasis != nil {
		for _, w := range findWords(text) {
			if st, ok := emphasis(strings.Trim(string(text[w.start:w.end]), ".,!?:;")); ok {
				for i := w.start; i < w.end; i++ {
					styles[i] = st
				}
			}
		}
	}

	out := make([]styledRune, 0, len(text))
	for i, r := range text {
		s := string(r)
		if r != ' ' {
			s = styles[i].Render(s)
		}
		out = append(out, styledRune{
			s:       s,
			width:   runewidth.RuneWidth(r),
			isSpace: r == ' ',
		})
	}
	return out
}

type wordRange struct {
	start int
	end   int
}

func findWords(text []rune) []wordRange {
	words := []wordRange{}
	start := -1
	for i, r := range text {
		if r == ' ' {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(text)})
	}
	return words
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks lines at the last space that fits width, or
// mid-word when a single word is wider than the line.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
				if item.isSpace {
					i++
				}
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

// wrapText styles and wraps a paragraph.
func wrapText(text string, width int, base lipgloss.Style, emphasis func(string) (lipgloss.Style, bool)) string {
	return wrapStyledRunes(buildStyledRunes([]rune(text), base, emphasis), width)
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}

// padRight pads s with spaces to width display cells.
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// truncate shortens plain text to width display cells.
func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}
