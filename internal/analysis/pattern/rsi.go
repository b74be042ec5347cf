package pattern

import (
	"math"

	"taengine/internal/logger"
	"taengine/internal/pkg/mathx"
)

// RSIDetector 识别 RSI 超买/超卖区间以及 W 底、M 顶。
type RSIDetector struct {
	s RSISettings
}

func NewRSIDetector(s RSISettings) *RSIDetector {
	return &RSIDetector{s: s.Normalize()}
}

func (d *RSIDetector) Name() string { return "rsi" }

func (d *RSIDetector) Detect(v View) []Pattern {
	rsi := v.Indicator("rsi")
	if !v.HasData() || len(rsi) < d.s.MinHistory {
		return nil
	}
	n := min(d.s.Window, len(rsi))
	recent := rsi[len(rsi)-n:]
	offset := v.candleIndex(len(rsi), len(rsi)-n)

	var out []Pattern
	out = append(out, d.threshold(v, recent, offset, "oversold", d.s.Oversold, func(x float64) bool { return x < d.s.Oversold })...)
	out = append(out, d.threshold(v, recent, offset, "overbought", d.s.Overbought, func(x float64) bool { return x > d.s.Overbought })...)
	out = append(out, d.doubles(v, recent, offset, shape{
		kind:       "w_bottom",
		bottom:     true,
		threshold:  d.s.WBottomThreshold,
		similarity: d.s.BottomSimilarity,
		ratio:      d.s.IntermediatePeakRatio,
	})...)
	out = append(out, d.doubles(v, recent, offset, shape{
		kind:       "m_top",
		threshold:  d.s.MTopThreshold,
		similarity: d.s.PeakSimilarity,
		ratio:      d.s.IntermediateTroughRatio,
	})...)
	return out
}

// ThresholdRuns returns the contiguous runs where in(x) holds.
// Indices are relative to series; the final run is Active when it reaches the end.
func ThresholdRuns(series []float64, in func(float64) bool, maximum bool) []Run {
	var runs []Run
	start := -1
	closeRun := func(end int) {
		seg := series[start : end+1]
		lo, _, hi, _, _ := mathx.MinMax(seg)
		ext := lo
		if maximum {
			ext = hi
		}
		runs = append(runs, Run{
			Start:    start,
			End:      end,
			Duration: end - start + 1,
			Extreme:  mathx.Float(ext),
			Active:   end == len(series)-1,
		})
		start = -1
	}
	for i, x := range series {
		hit := in(x)
		switch {
		case hit && start < 0:
			start = i
		case !hit && start >= 0:
			closeRun(i - 1)
		}
	}
	if start >= 0 {
		closeRun(len(series) - 1)
	}
	return runs
}

func (d *RSIDetector) threshold(v View, recent []float64, offset int, cond string, level float64, in func(float64) bool) []Pattern {
	runs := ThresholdRuns(recent, in, cond == "overbought")
	if len(runs) == 0 {
		return nil
	}
	for i := range runs {
		runs[i].Start += offset
		runs[i].End += offset
	}
	last := runs[len(runs)-1]
	symbol := "<"
	if cond == "overbought" {
		symbol = ">"
	}
	p := newPattern(v, cond, last.End, ThresholdDetails{
		Condition: cond,
		Threshold: mathx.Float(level),
		Runs:      runs,
	}, "RSI entered %s territory (%s%.0f) %d times in the recent period.", cond, symbol, level, len(runs))
	logger.Debugf("Detected %s: %s", p.Type, p.Description)
	return []Pattern{p}
}

type shape struct {
	kind       string
	bottom     bool
	threshold  float64
	similarity float64
	ratio      float64
}

// extreme reports whether r[i] is a local extremum against i±2 past the threshold.
func (sh shape) extreme(r []float64, i int) bool {
	x := r[i]
	if sh.bottom {
		return x < r[i-2] && x < r[i+2] && x < sh.threshold
	}
	return x > r[i-2] && x > r[i+2] && x > sh.threshold
}

func (sh shape) avg(a, b float64) float64 { return (a + b) / 2 }

// stronger: lower average for bottoms, higher for tops.
func (sh shape) stronger(a, b DoubleExtremeDetails) bool {
	na := sh.avg(float64(a.Value1), float64(a.Value2))
	nb := sh.avg(float64(b.Value1), float64(b.Value2))
	if sh.bottom {
		return na < nb
	}
	return na > nb
}

func (d *RSIDetector) doubles(v View, r []float64, offset int, sh shape) []Pattern {
	n := len(r)
	if n < d.s.MinHistory {
		return nil
	}
	var found []DoubleExtremeDetails
	for i := 3; i < n-3; i++ {
		if !sh.extreme(r, i) {
			continue
		}
		cand, ok := d.matchSecond(r, i, sh)
		if !ok {
			continue
		}
		if len(found) > 0 {
			prev := found[len(found)-1]
			if cand.SecondIndex < prev.SecondIndex+d.s.MinSeparation/2 {
				if !sh.stronger(cand, prev) {
					continue
				}
				found = found[:len(found)-1]
			}
		}
		found = append(found, cand)
	}

	out := make([]Pattern, 0, len(found))
	for _, f := range found {
		f.FirstIndex += offset
		f.SecondIndex += offset
		var p Pattern
		if sh.bottom {
			p = newPattern(v, sh.kind, f.SecondIndex, f,
				"W-bottom pattern detected in RSI with bottoms at %.1f and %.1f, intermediate peak at %.1f. Potentially bullish.",
				float64(f.Value1), float64(f.Value2), float64(f.Intermediate))
		} else {
			p = newPattern(v, sh.kind, f.SecondIndex, f,
				"M-top pattern detected in RSI with peaks at %.1f and %.1f, intermediate trough at %.1f. Potentially bearish.",
				float64(f.Value1), float64(f.Value2), float64(f.Intermediate))
		}
		logger.Debugf("Detected %s: %s", p.Type, p.Description)
		out = append(out, p)
	}
	return out
}

// matchSecond 在 [i+min_sep, min(i+max_horizon, n-3)) 中寻找第二个极值。
func (d *RSIDetector) matchSecond(r []float64, i int, sh shape) (DoubleExtremeDetails, bool) {
	end := min(i+d.s.MaxHorizon, len(r)-3)
	for j := i + d.s.MinSeparation; j < end; j++ {
		if !sh.extreme(r, j) || !(math.Abs(r[i]-r[j]) < sh.similarity) {
			continue
		}
		lo, _, hi, _, ok := mathx.MinMax(r[i+1 : j])
		if !ok {
			continue
		}
		inter, limit := hi, sh.avg(r[i], r[j])*sh.ratio
		valid := inter > limit
		if !sh.bottom {
			inter = lo
			valid = inter < limit
		}
		if !valid {
			continue
		}
		return DoubleExtremeDetails{
			Shape:        sh.kind,
			FirstIndex:   i,
			SecondIndex:  j,
			Value1:       mathx.Float(r[i]),
			Value2:       mathx.Float(r[j]),
			Intermediate: mathx.Float(inter),
		}, true
	}
	return DoubleExtremeDetails{}, false
}
