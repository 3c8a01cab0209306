package stats

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{1, 2, 3, 2, 1}},
		{Name: "B", Values: []float64{1, 1, 2, 3, 4}},
		{Name: "Empty"},
	}, 12, 4)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Test Plot", "Scaled per series", "Legend:", "A: min=1.00", "B: min=1.00 max=4.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Empty") {
		t.Fatalf("expected empty series skipped")
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes for a non-terminal writer")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// title, note, 2 min/max lines, 4 plot rows, legend
	if len(lines) != 9 {
		t.Fatalf("expected 9 lines of output, got %d", len(lines))
	}
}

func TestPlotWidthFor(t *testing.T) {
	axisWidth := utf8.RuneCountInString(axisLabelTop) + utf8.RuneCountInString(axisSeparator)
	if got := PlotWidthFor(80); got != 80-axisWidth {
		t.Fatalf("expected width %d, got %d", 80-axisWidth, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
	if got := PlotWidthFor(5); got != minPlotWidth {
		t.Fatalf("expected min width for narrow terminals, got %d", got)
	}
}

func TestResampleSeries(t *testing.T) {
	down := resampleSeries([]float64{1, 3, 5, 7}, 2)
	if len(down) != 2 || down[0] != 2 || down[1] != 6 {
		t.Fatalf("unexpected downsample %v", down)
	}
	up := resampleSeries([]float64{0, 10}, 3)
	if len(up) != 3 || up[1] != 5 || up[2] != 10 {
		t.Fatalf("unexpected upsample %v", up)
	}
}
