package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/keycast/internal/model"
	"github.com/verte-zerg/keycast/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	for i, day := range []string{"2026-03-01", "2026-03-02", "2026-03-03"} {
		counts := model.KeyCounts{"a": 5 + i, "ctrl": 1}
		if err := st.AddCounts(ctx, "alice", day, counts); err != nil {
			t.Fatalf("add counts: %v", err)
		}
	}
	if err := st.AddCounts(ctx, "bob", "2026-03-03", model.KeyCounts{"z": 99}); err != nil {
		t.Fatalf("add counts: %v", err)
	}

	cfg := model.StatsConfig{
		User:        "alice",
		Last:        2,
		CurveWindow: 1,
		Keys:        "a",
	}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(report.Days))
	}
	if report.Days[0].Day != "2026-03-02" || report.Days[1].Day != "2026-03-03" {
		t.Fatalf("unexpected days: %+v", report.Days)
	}
	if len(report.WindowDays) != 1 || report.WindowDays[0] != "2026-03-03" {
		t.Fatalf("unexpected window days: %v", report.WindowDays)
	}
	if len(report.KeyAggsAll) != 2 || report.KeyAggsAll[0].Key != "a" || report.KeyAggsAll[0].Count != 13 {
		t.Fatalf("unexpected key aggregates: %+v", report.KeyAggsAll)
	}
	if len(report.KeyAggsWindow) != 2 || report.KeyAggsWindow[0].Count != 7 {
		t.Fatalf("unexpected window aggregates: %+v", report.KeyAggsWindow)
	}

	var buf bytes.Buffer
	if err := RenderSummary(&buf, report.Days, report.KeyAggsAll); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if !strings.Contains(buf.String(), "Presses: 15") {
		t.Fatalf("unexpected summary: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "Busiest day: 2026-03-03 (8)") {
		t.Fatalf("unexpected busiest day: %q", buf.String())
	}
}

func TestRenderKeyTable(t *testing.T) {
	var buf bytes.Buffer
	err := RenderKeyTable(&buf, []model.KeyAggregate{{Key: "f5", Count: 1}, {Key: "a", Count: 3}})
	if err != nil {
		t.Fatalf("render table: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 4 {
		t.Fatalf("expected title, header and 2 rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[2], "a ") || !strings.Contains(lines[2], "75.00%") {
		t.Fatalf("unexpected first row: %q", lines[2])
	}
	if !strings.Contains(lines[3], "function") {
		t.Fatalf("expected function category: %q", lines[3])
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil, nil); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if err := RenderKeyTable(&buf, nil); err != nil {
		t.Fatalf("render table: %v", err)
	}
	if buf.String() != "No key history found.\nNo key stats found.\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
