package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Game", "Level", "Cleared"}
	rows := [][]string{
		{"Pathfinder", "3", "1/4"},
		{"Sequence", "12", "0/2"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Game       Level Cleared" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Pathfinder     3     1/4" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Sequence      12     0/2" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableMeasuresCells(t *testing.T) {
	lines := formatTable([]string{"Name", "X"}, [][]string{{"漢字", "1"}}, nil)
	if lines[1] != "漢字 1" {
		t.Fatalf("expected wide runes to count two cells: %q", lines[1])
	}
}
