package pattern

import "testing"

func atrWithWarmup(values ...float64) []float64 {
	out := make([]float64, 14, 14+len(values))
	for i := range out {
		out[i] = nan()
	}
	return append(out, values...)
}

func TestVolatilityTrendAndSpikes(t *testing.T) {
	vals := append(flat(18, 1), 1.5, 2)
	atr := atrWithWarmup(vals...)
	v := view(t, flat(len(atr), 100), map[string][]float64{"atr": atr})
	ps := NewVolatilityDetector(VolatilitySettings{}).Detect(v)

	tr := ofType(ps, "volatility_trend")
	if len(tr) != 1 {
		t.Fatalf("expected volatility_trend, got %+v", ps)
	}
	det := tr[0].Details.(VolatilityTrendDetails)
	if det.Trend != "increasing" || float64(det.PercentChange) != 100 || det.AnalyzedPeriods != 20 {
		t.Fatalf("unexpected trend %+v", det)
	}
	if len(ofType(ps, "above_average_volatility")) != 1 {
		t.Fatalf("expected above_average_volatility")
	}
	spikes := ofType(ps, "volatility_spike")
	if len(spikes) != 2 {
		t.Fatalf("expected two spikes, got %+v", spikes)
	}
	if spikes[1].Index != len(atr)-1 || spikes[1].Details.(VolatilitySpikeDetails).PeriodsAgo != 1 {
		t.Fatalf("last spike should be the final candle: %+v", spikes[1])
	}
	if len(ofType(ps, "high_volatility"))+len(ofType(ps, "low_volatility")) != 0 {
		t.Fatalf("regime needs 50 valid values")
	}
}

func TestVolatilityRegimes(t *testing.T) {
	high := atrWithWarmup(append(flat(59, 1), 2)...)
	ps := NewVolatilityDetector(VolatilitySettings{}).Detect(view(t, flat(len(high), 100), map[string][]float64{"atr": high}))
	if len(ofType(ps, "high_volatility")) != 1 {
		t.Fatalf("expected high_volatility, got %+v", ps)
	}

	low := atrWithWarmup(append(flat(59, 1), 0.5)...)
	ps = NewVolatilityDetector(VolatilitySettings{}).Detect(view(t, flat(len(low), 100), map[string][]float64{"atr": low}))
	if len(ofType(ps, "low_volatility")) != 1 {
		t.Fatalf("expected low_volatility, got %+v", ps)
	}
}

func TestVolatilityQuietSeries(t *testing.T) {
	atr := atrWithWarmup(flat(40, 1)...)
	if ps := NewVolatilityDetector(VolatilitySettings{}).Detect(view(t, flat(len(atr), 100), map[string][]float64{"atr": atr})); len(ps) != 0 {
		t.Fatalf("constant ATR should be quiet: %+v", ps)
	}
	short := atrWithWarmup(flat(10, 1)...)
	if ps := NewVolatilityDetector(VolatilitySettings{}).Detect(view(t, flat(len(short), 100), map[string][]float64{"atr": short})); len(ps) != 0 {
		t.Fatalf("too few valid ATR values: %+v", ps)
	}
}
