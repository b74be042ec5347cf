package pattern

import (
	"math"

	"taengine/internal/logger"
	"taengine/internal/pkg/mathx"
)

// VolatilityDetector 基于 ATR 序列识别波动率趋势、突增与高低波动区间。
type VolatilityDetector struct {
	s VolatilitySettings
}

func NewVolatilityDetector(s VolatilitySettings) *VolatilityDetector {
	return &VolatilityDetector{s: s.Normalize()}
}

func (d *VolatilityDetector) Name() string { return "volatility" }

func (d *VolatilityDetector) Detect(v View) []Pattern {
	atr := v.Indicator("atr")
	if !v.HasData() || len(atr) == 0 {
		return nil
	}
	// 去掉预热期的 NaN
	first := mathx.FirstValidIndex(atr)
	if first < 0 {
		return nil
	}
	valid := atr[first:]
	if len(valid) < d.s.MinHistory {
		return nil
	}
	n := min(d.s.Window, len(valid))
	recent := valid[len(valid)-n:]
	offset := v.candleIndex(len(atr), len(atr)-n)

	var out []Pattern
	out = append(out, d.trend(v, recent)...)
	out = append(out, d.spikes(v, recent, offset)...)
	if len(valid) >= d.s.RegimeWindow {
		out = append(out, d.regime(v, valid[len(valid)-d.s.RegimeWindow:])...)
	}
	for _, p := range out {
		logger.Debugf("Detected %s: %s", p.Type, p.Description)
	}
	return out
}

func (d *VolatilityDetector) trend(v View, recent []float64) []Pattern {
	start, end := recent[0], recent[len(recent)-1]
	last := v.LastIndex()
	var out []Pattern
	pct := 0.0
	if start > 0 {
		pct = (end/start - 1) * 100
	}
	if mathx.IsFinite(pct) && math.Abs(pct) >= d.s.SignificantChangeThreshold {
		state := "increasing"
		if pct < 0 {
			state = "decreasing"
		}
		out = append(out, newPattern(v, "volatility_trend", last, VolatilityTrendDetails{
			StartValue:      mathx.Float(start),
			EndValue:        mathx.Float(end),
			PercentChange:   mathx.Float(pct),
			Trend:           state,
			AnalyzedPeriods: len(recent),
		}, "Volatility has been %s by %.1f%% over the last %d periods.", state, math.Abs(pct), len(recent)))
	}
	avg := mathx.Mean(recent)
	if avg > 0 && end > avg*d.s.AboveAverageRatio {
		ratio := end / avg
		out = append(out, newPattern(v, "above_average_volatility", last, VolatilityLevelDetails{
			Current: mathx.Float(end),
			Average: mathx.Float(avg),
			Ratio:   mathx.Float(ratio),
			Window:  len(recent),
		}, "Current volatility is %.1fx higher than the period average.", ratio))
	}
	return out
}

// spikes: ATR[i] > ATR[i-2]*(1+spike/100).
func (d *VolatilityDetector) spikes(v View, recent []float64, offset int) []Pattern {
	factor := 1 + d.s.SpikeThreshold/100
	var out []Pattern
	for i := 2; i < len(recent); i++ {
		before, after := recent[i-2], recent[i]
		if !(before > 0) || !(after > before*factor) {
			continue
		}
		idx := offset + i
		ago := v.Len() - idx
		pct := (after/before - 1) * 100
		out = append(out, newPattern(v, "volatility_spike", idx, VolatilitySpikeDetails{
			PeriodsAgo:    ago,
			Before:        mathx.Float(before),
			After:         mathx.Float(after),
			PercentChange: mathx.Float(pct),
		}, "Volatility spike detected %d periods ago, ATR increased by %.1f%%.", ago, pct))
	}
	return out
}

func (d *VolatilityDetector) regime(v View, window []float64) []Pattern {
	end := window[len(window)-1]
	avg := mathx.Mean(window)
	if !(avg > 0) || !mathx.IsFinite(end) {
		return nil
	}
	ratio := end / avg
	details := VolatilityLevelDetails{
		Current: mathx.Float(end),
		Average: mathx.Float(avg),
		Ratio:   mathx.Float(ratio),
		Window:  len(window),
	}
	switch {
	case end > avg*d.s.HighVolatilityRatio:
		return []Pattern{newPattern(v, "high_volatility", v.LastIndex(), details,
			"Current volatility is %.1fx higher than the %d-period average.", ratio, len(window))}
	case end < avg*d.s.LowVolatilityRatio:
		return []Pattern{newPattern(v, "low_volatility", v.LastIndex(), details,
			"Current volatility is unusually low, %.1fx below the %d-period average.", ratio, len(window))}
	}
	return nil
}
