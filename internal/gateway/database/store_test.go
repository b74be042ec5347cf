package database

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"taengine/internal/analysis/pattern"
	"taengine/internal/engine"
	"taengine/internal/pkg/mathx"
)

func openTemp(t *testing.T) *AnalysisStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "taengine.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func result(runID string, at time.Time, types ...string) engine.Result {
	ts := at.Add(-time.Hour)
	ps := make([]pattern.Pattern, len(types))
	for i, kind := range types {
		ps[i] = pattern.Pattern{
			Type:        kind,
			Description: kind + " detected",
			Timestamp:   &ts,
			Index:       10 + i,
			Details:     pattern.CrossoverDetails{Direction: pattern.Bullish, PeriodsAgo: i, Value: 1.5},
		}
	}
	return engine.Result{
		RunID:       runID,
		Symbol:      "btcusdt",
		Interval:    "1h",
		GeneratedAt: at,
		Candles:     100,
		LastClose:   mathx.Float(42),
		Patterns:    pattern.Categorized{pattern.CategoryMACD: ps},
	}
}

func TestSaveRunAndRecentPatterns(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)
	if err := s.SaveRun(ctx, result("run-1", base, "bullish_crossover")); err != nil {
		t.Fatalf("save run-1: %v", err)
	}
	if err := s.SaveRun(ctx, result("run-2", base.Add(time.Hour), "bullish_crossover", "zero_line_bullish")); err != nil {
		t.Fatalf("save run-2: %v", err)
	}

	got, err := s.RecentPatterns(ctx, "BTCUSDT", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("patterns = %d, want 3", len(got))
	}
	if got[0].RunID != "run-2" || got[0].Type != "bullish_crossover" || got[1].Type != "zero_line_bullish" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Category != string(pattern.CategoryMACD) || got[0].Timestamp == nil {
		t.Fatalf("row lost fields: %+v", got[0])
	}
	var details map[string]any
	if err := json.Unmarshal(got[0].Details, &details); err != nil {
		t.Fatalf("details: %v", err)
	}
	if details["direction"] != "bullish" || details["type"] != "bullish_crossover" {
		t.Fatalf("details = %v", details)
	}

	limited, err := s.RecentPatterns(ctx, "btcusdt", 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limit ignored: %v %v", limited, err)
	}
}

func TestLatestRun(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	if r, err := s.LatestRun(ctx, "BTCUSDT", "1h"); err != nil || r != nil {
		t.Fatalf("empty store: %+v %v", r, err)
	}
	base := time.UnixMilli(1_700_000_000_000)
	s.SaveRun(ctx, result("run-1", base, "oversold"))
	s.SaveRun(ctx, result("run-2", base.Add(time.Hour)))

	r, err := s.LatestRun(ctx, "BTCUSDT", "1h")
	if err != nil || r == nil {
		t.Fatalf("latest: %+v %v", r, err)
	}
	if r.RunID != "run-2" || r.PatternCount != 0 || r.LastClose == nil || *r.LastClose != 42 {
		t.Fatalf("latest = %+v", r)
	}
}

func TestSaveRunRejectsDuplicatesAndBlank(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	res := result("run-1", time.Now(), "oversold")
	if err := s.SaveRun(ctx, res); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRun(ctx, res); err == nil {
		t.Fatalf("duplicate run id must fail")
	}
	if got, _ := s.RecentPatterns(ctx, "BTCUSDT", 10); len(got) != 1 {
		t.Fatalf("failed transaction leaked rows: %d", len(got))
	}
	res.RunID = ""
	if err := s.SaveRun(ctx, res); err == nil {
		t.Fatalf("blank run id must fail")
	}
}

func TestClosedStore(t *testing.T) {
	s := openTemp(t)
	s.Close()
	if err := s.SaveRun(context.Background(), result("x", time.Now())); err == nil {
		t.Fatalf("closed store must fail")
	}
}
