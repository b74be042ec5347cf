package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	rollup "taengine/internal/analysis/metrics"
	"taengine/internal/analysis/pattern"
	"taengine/internal/engine"
	"taengine/internal/pkg/mathx"
)

func sample() engine.Result {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return engine.Result{
		RunID:     "run-1",
		Symbol:    "BTCUSDT",
		Interval:  "1h",
		Candles:   200,
		LastClose: mathx.Float(101.5),
		Patterns: pattern.Categorized{
			pattern.CategoryMACD: {{Type: "bullish_crossover", Description: "Bullish MACD crossover 1 periods ago", Timestamp: &ts, Index: 198,
				Details: pattern.CrossoverDetails{Direction: pattern.Bullish, PeriodsAgo: 1}}},
		},
		Periods: rollup.Report{
			"1D": {Metrics: rollup.Basic{Period: "1D", HighestPrice: 110, LowestPrice: 90, Volatility: 22.22},
				Divergences: rollup.Divergences{Bullish: true}},
		},
	}
}

func TestTablesRender(t *testing.T) {
	var buf bytes.Buffer
	Tables(&buf, []engine.Result{sample()}, rollup.DefaultPeriods())
	out := buf.String()
	for _, want := range []string{"BTCUSDT", "bullish_crossover", "2024-03-01 12:00", "macd_signals", "110.0000", "bullish"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPatternsEmpty(t *testing.T) {
	var buf bytes.Buffer
	Patterns(&buf, pattern.Categorized{})
	if !strings.Contains(buf.String(), "no patterns") {
		t.Fatalf("empty table: %s", buf.String())
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, []engine.Result{sample()}); err != nil {
		t.Fatal(err)
	}
	var out []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if out[0]["run_id"] != "run-1" {
		t.Fatalf("run_id = %v", out[0]["run_id"])
	}
}

func TestTrimTo(t *testing.T) {
	if got := TrimTo("abcdef", 3); got != "abc..." {
		t.Fatalf("got %q", got)
	}
	if got := TrimTo("a\nb", 10); got != "a b" {
		t.Fatalf("got %q", got)
	}
}
