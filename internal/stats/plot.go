package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

type lineStyle struct {
	name   string
	period int
	on     int
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelTop        = "max"
	axisLabelBottom     = "min"
	axisSeparator       = " │ "
	scaleNote           = "Scaled per series; see min/max below."
	terminalWidthBackup = 80
)

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
}

var seriesColors = []lipgloss.Color{"6", "5", "3", "2"}

// canvas is a grid of braille cells, each holding a 2x4 dot mask.
type canvas struct {
	width  int
	height int
	cells  [][]uint8
}

func newCanvas(width, height int) *canvas {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return &canvas{width: width, height: height, cells: cells}
}

func (c *canvas) set(x, y int) {
	cx, cy := x/2, y/4
	if x < 0 || y < 0 || cy >= c.height || cx >= c.width {
		return
	}
	c.cells[cy][cx] |= brailleDotMask(x%2, y%4)
}

// PlotSeries renders a multi-line braille plot. Series colors are dropped
// when w is not a color terminal.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	plotted := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			plotted = append(plotted, s)
		}
	}
	if len(plotted) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)

	renderer := lipgloss.NewRenderer(w)
	canvases := make([]*canvas, len(plotted))
	lines := []string{}
	if title != "" {
		lines = append(lines, title)
	}
	lines = append(lines, scaleNote)
	for i, s := range plotted {
		values := resampleSeries(s.Values, width)
		lo, hi := seriesMinMaxSingle(values)
		lines = append(lines, fmt.Sprintf("%s: min=%.2f max=%.2f", s.Name, lo, hi))
		if math.Abs(hi-lo) < 1e-9 {
			lo--
			hi++
		}
		canvases[i] = drawSeries(values, lo, hi, width, height, lineStyles[i%len(lineStyles)])
	}

	labelWidth := utf8.RuneCountInString(axisLabelTop)
	for y := 0; y < height; y++ {
		label := ""
		switch y {
		case 0:
			label = axisLabelTop
		case height - 1:
			label = axisLabelBottom
		}
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%*s%s", labelWidth, label, axisSeparator))
		for x := 0; x < width; x++ {
			var mask uint8
			owner := -1
			for i, cv := range canvases {
				if m := cv.cells[y][x]; m != 0 {
					mask |= m
					if owner < 0 {
						owner = i
					}
				}
			}
			ch := string(brailleFromMask(mask))
			if owner >= 0 {
				ch = renderer.NewStyle().Foreground(seriesColors[owner%len(seriesColors)]).Render(ch)
			}
			row.WriteString(ch)
		}
		lines = append(lines, row.String())
	}

	legend := make([]string, 0, len(plotted))
	for i, s := range plotted {
		label := fmt.Sprintf("%c %s (%s)", brailleFromMask(0x01), s.Name, lineStyles[i%len(lineStyles)].name)
		legend = append(legend, renderer.NewStyle().Foreground(seriesColors[i%len(seriesColors)]).Render(label))
	}
	lines = append(lines, "Legend: "+strings.Join(legend, "  "), "")
	return writeLines(w, lines)
}

func drawSeries(values []float64, lo, hi float64, width, height int, style lineStyle) *canvas {
	cv := newCanvas(width, height)
	dots := height * 4
	prevX, prevY := -1, -1
	for i, v := range values {
		x, y := i*2, valueToRow(v, lo, hi, dots)
		if prevX < 0 {
			if style.shouldPlot(x) {
				cv.set(x, y)
			}
		} else {
			drawLine(prevX, prevY, x, y, func(dx, dy int) {
				if style.shouldPlot(dx) {
					cv.set(dx, dy)
				}
			})
		}
		prevX, prevY = x, y
	}
	return cv
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axisWidth := utf8.RuneCountInString(axisLabelTop) + utf8.RuneCountInString(axisSeparator)
	return max(totalWidth-axisWidth, minPlotWidth)
}

// TerminalWidth returns the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	return terminalWidth()
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

// resampleSeries averages down or linearly interpolates up to width points.
func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	switch {
	case len(values) == width:
		copy(out, values)
	case len(values) > width:
		for i := range out {
			start := i * len(values) / width
			end := max((i+1)*len(values)/width, start+1)
			end = min(end, len(values))
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case len(values) == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(len(values)-1) / float64(width-1)
			idx := int(math.Floor(pos))
			if idx >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func seriesMinMaxSingle(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func valueToRow(v, lo, hi float64, height int) int {
	if height <= 1 {
		return 0
	}
	pos := (v - lo) / (hi - lo)
	row := int(math.Round((1 - pos) * float64(height-1)))
	return min(max(row, 0), height-1)
}

// drawLine walks a Bresenham line from (x0, y0) to (x1, y1).
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func brailleDotMask(x, y int) uint8 {
	left := [4]uint8{0x01, 0x02, 0x04, 0x40}
	right := [4]uint8{0x08, 0x10, 0x20, 0x80}
	if y < 0 || y > 3 {
		return 0
	}
	if x == 0 {
		return left[y]
	}
	if x == 1 {
		return right[y]
	}
	return 0
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
