package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/keycast/internal/model"
)

func TestLayoutTableAlignsColumns(t *testing.T) {
	cols := []column{{title: "Key"}, {title: "Presses", right: true}, {title: "Share", right: true}}
	rows := [][]string{
		{"a", "12", "97.50%"},
		{"ctrl", "3", "8.00%"},
	}

	lines := layoutTable(cols, rows, 0)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Key  Presses  Share" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "a         12 97.50%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "ctrl       3  8.00%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestLayoutTableClipsWideCells(t *testing.T) {
	cols := []column{{title: "Key"}, {title: "N", right: true}}
	lines := layoutTable(cols, [][]string{{"special_123456789", "1"}}, 8)
	if lines[1] != "special… 1" {
		t.Fatalf("unexpected clipped row: %q", lines[1])
	}
	if got := layoutTable(nil, nil, 0); got != nil {
		t.Fatalf("expected nil for no columns, got %v", got)
	}
}

func TestKeyTableRows(t *testing.T) {
	headers, rows := KeyTableRows(nil)
	if len(headers) != 4 || len(rows) != 0 {
		t.Fatalf("expected empty rows, got %v", rows)
	}

	_, rows = KeyTableRows([]model.KeyAggregate{{Key: "a", Count: 3}, {Key: "f5", Count: 1}})
	if rows[0][0] != "a" || rows[0][3] != "75.00%" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[1][1] != "function" {
		t.Fatalf("unexpected category: %v", rows[1])
	}
}

func TestRenderKeyTableLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderKeyTable(&buf, []model.KeyAggregate{{Key: "space", Count: 2}}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Key   Category Presses   Share") {
		t.Fatalf("missing header in %q", out)
	}
	if !strings.Contains(out, "100.00%") {
		t.Fatalf("missing share in %q", out)
	}
}
