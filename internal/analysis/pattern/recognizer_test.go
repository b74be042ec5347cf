package pattern

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"taengine/internal/metrics"
)

// uptrendView: 40 candles, RSI NaN for 10 candles then rising 25 -> 75.
func uptrendView(t *testing.T) View {
	t.Helper()
	closes := make([]float64, 40)
	rsi := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
		if i < 10 {
			rsi[i] = nan()
			continue
		}
		rsi[i] = 25 + 50*float64(i-10)/29
	}
	return view(t, closes, map[string][]float64{"rsi": rsi})
}

type panicDetector struct{}

func (panicDetector) Name() string          { return "explosive" }
func (panicDetector) Detect(View) []Pattern { panic("malformed view") }

type countingDetector struct {
	calls int
}

func (c *countingDetector) Name() string { return "counting" }
func (c *countingDetector) Detect(View) []Pattern {
	c.calls++
	return nil
}

func TestRecognizerUptrendScenario(t *testing.T) {
	r := NewRecognizer()
	got := r.DetectPatterns(uptrendView(t))
	for _, c := range Categories {
		if _, ok := got[c]; !ok {
			t.Fatalf("category %s missing", c)
		}
	}

	rsi := got[CategoryRSI]
	oversold, overbought := ofType(rsi, "oversold"), ofType(rsi, "overbought")
	if len(oversold) != 1 || len(overbought) != 1 {
		t.Fatalf("expected oversold and overbought, got %+v", rsi)
	}
	low := oversold[0].Details.(ThresholdDetails).Runs
	if len(low) != 1 || low[0].Start != 10 || low[0].End != 12 || low[0].Active {
		t.Fatalf("oversold run should sit at the start: %+v", low)
	}
	ob := overbought[0].Details.(ThresholdDetails).Runs
	if len(ob) != 1 || ob[0].End != 39 || !ob[0].Active {
		t.Fatalf("overbought run should sit at the end and be active: %+v", ob)
	}
	if n := len(ofType(rsi, "w_bottom")) + len(ofType(rsi, "m_top")); n != 0 {
		t.Fatalf("monotonic RSI must not produce double extremes, got %d", n)
	}
}

func TestRecognizerIsolatesDetectorFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	v := uptrendView(t)

	baseline := NewRecognizer().DetectPatterns(v)
	r := NewRecognizer(WithDetector(CategoryMACD, panicDetector{}), WithMetrics(m))
	got := r.DetectPatterns(v)

	if len(got[CategoryMACD]) != 0 {
		t.Fatalf("failed detector category should be empty: %+v", got[CategoryMACD])
	}
	for _, c := range Categories {
		if c == CategoryMACD {
			continue
		}
		if len(got[c]) != len(baseline[c]) {
			t.Fatalf("category %s changed: %d vs %d", c, len(got[c]), len(baseline[c]))
		}
	}
	if n := testutil.ToFloat64(m.DetectorFailures.WithLabelValues("explosive")); n != 1 {
		t.Fatalf("failure counter = %v", n)
	}
}

func TestRecognizerMemoizesByFingerprint(t *testing.T) {
	counter := &countingDetector{}
	r := NewRecognizer(WithDetector(CategoryCrossover, counter))
	v := uptrendView(t)

	first := r.DetectPatterns(v)
	second := r.DetectPatterns(v)
	if counter.calls != 1 {
		t.Fatalf("detect calls = %d, want 1", counter.calls)
	}
	if first.Count() != second.Count() {
		t.Fatalf("memoized result differs")
	}

	// mutating a returned result must not leak into the cache
	first[CategoryRSI] = nil
	if third := r.DetectPatterns(v); len(third[CategoryRSI]) == 0 {
		t.Fatalf("cached result was mutated")
	}

	r.Reset()
	r.DetectPatterns(v)
	if counter.calls != 2 {
		t.Fatalf("reset should force recompute, calls = %d", counter.calls)
	}
}

func TestRecognizerEmptyView(t *testing.T) {
	got := NewRecognizer().DetectPatterns(View{})
	if len(got) != len(Categories) || got.Count() != 0 {
		t.Fatalf("empty view should give empty categories: %+v", got)
	}
}

func TestAllPatternsCategoryOrder(t *testing.T) {
	all := NewRecognizer().AllPatterns(uptrendView(t))
	if len(all) == 0 {
		t.Fatalf("expected patterns")
	}
	if all[0].Type != "oversold" {
		t.Fatalf("rsi patterns come first, got %s", all[0].Type)
	}
	if got := NewRecognizer().ActiveDetectors(); strings.Join(got, ",") != "rsi,macd,volatility,divergence,crossover" {
		t.Fatalf("detector order = %v", got)
	}
}

func TestPatternJSONIsFlat(t *testing.T) {
	v := view(t, []float64{10, 11, 12, 13}, map[string][]float64{
		"macd_line":   {-2, -1, 0.5, 1},
		"macd_signal": {-1, -1, -1, -1},
	})
	ps := NewMACDDetector(MACDSettings{}).Detect(v)
	b, err := json.Marshal(ps[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"type", "description", "timestamp", "periods_ago", "value", "macd_value", "signal_value"} {
		if _, ok := out[k]; !ok {
			t.Fatalf("missing key %s in %s", k, b)
		}
	}
	if out["timestamp"] != "2023-11-15T00:13:20Z" {
		t.Fatalf("timestamp = %v", out["timestamp"])
	}
	if _, ok := out["adx_value"]; ok {
		t.Fatalf("absent optional fields must be omitted: %s", b)
	}
}
