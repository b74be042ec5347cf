package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CacheLookup("indicators", true)
	m.CacheLookup("indicators", false)
	m.CacheLookup("indicators", false)
	m.DetectorFailed("rsi")
	m.PatternsFound("macd_signals", 3)
	m.PatternsFound("macd_signals", 0)
	m.ObserveCompute(time.Millisecond)

	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("indicators", "miss")); got != 2 {
		t.Fatalf("miss count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("indicators", "hit")); got != 1 {
		t.Fatalf("hit count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DetectorFailures.WithLabelValues("rsi")); got != 1 {
		t.Fatalf("failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PatternsDetected.WithLabelValues("macd_signals")); got != 3 {
		t.Fatalf("patterns = %v, want 3", got)
	}
	if n := testutil.CollectAndCount(m.IndicatorComputeDur); n != 1 {
		t.Fatalf("histogram collectors = %d", n)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.CacheLookup("x", true)
	m.DetectorFailed("x")
	m.PatternsFound("x", 1)
	m.ObserveCompute(time.Second)
	m.ObserveAnalysis(time.Second)
	if m.Handler() == nil {
		t.Fatalf("handler should never be nil")
	}
}
