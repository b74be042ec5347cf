package pattern

import (
	"taengine/internal/logger"
	"taengine/internal/pkg/mathx"
)

// CrossoverDetector reports the most recent +DI/-DI crossover and the most
// recent Supertrend direction flip within lookback_periods.
type CrossoverDetector struct {
	s CrossoverSettings
}

func NewCrossoverDetector(s CrossoverSettings) *CrossoverDetector {
	return &CrossoverDetector{s: s.Normalize()}
}

func (d *CrossoverDetector) Name() string { return "crossover" }

func (d *CrossoverDetector) Detect(v View) []Pattern {
	if !v.HasData() {
		return nil
	}
	var out []Pattern
	if p, ok := d.di(v); ok {
		out = append(out, p)
	}
	if p, ok := d.supertrend(v); ok {
		out = append(out, p)
	}
	for _, p := range out {
		logger.Debugf("Detected %s: %s", p.Type, p.Description)
	}
	return out
}

func (d *CrossoverDetector) di(v View) (Pattern, bool) {
	adx, plus, minus := v.Indicator("adx"), v.Indicator("plus_di"), v.Indicator("minus_di")
	if adx == nil || plus == nil || minus == nil {
		return Pattern{}, false
	}
	n := min(len(adx), len(plus), len(minus))
	if n < d.s.MinHistory {
		return Pattern{}, false
	}
	adx, plus, minus = adx[len(adx)-n:], plus[len(plus)-n:], minus[len(minus)-n:]
	c, ok := FindCrossover(plus, minus, min(d.s.LookbackPeriods, n), Any)
	if !ok {
		return Pattern{}, false
	}
	adxAt := adx[c.Index]
	details := CrossoverDetails{
		Direction:  c.Direction,
		PeriodsAgo: c.PeriodsAgo,
		Value:      mathx.Float(c.Value),
		ADXValue:   mathx.Opt(adxAt),
	}
	idx := v.candleIndex(n, c.Index)
	if c.Direction == Bullish {
		return newPattern(v, "di_bullish_cross", idx, details,
			"Bullish DMI crossover %d periods ago (DI+ crossed above DI-) with ADX at %.1f.", c.PeriodsAgo, adxAt), true
	}
	return newPattern(v, "di_bearish_cross", idx, details,
		"Bearish DMI crossover %d periods ago (DI- crossed above DI+) with ADX at %.1f.", c.PeriodsAgo, adxAt), true
}

func (d *CrossoverDetector) supertrend(v View) (Pattern, bool) {
	dir := v.Indicator("supertrend_direction")
	n := len(dir)
	if n < d.s.MinHistory {
		return Pattern{}, false
	}
	lookback := min(d.s.LookbackPeriods, n)
	last := n - 1
	for i := last; i >= max(1, n-lookback+1); i-- {
		cur, prev := dir[i], dir[i-1]
		if !mathx.IsFinite(cur) || !mathx.IsFinite(prev) || cur == prev || cur == 0 {
			continue
		}
		trend := Bullish
		if cur < 0 {
			trend = Bearish
		}
		ago := n - i
		return newPattern(v, "supertrend_"+string(trend), v.candleIndex(n, i), CrossoverDetails{
			Direction:  trend,
			PeriodsAgo: ago,
			Value:      mathx.Float(cur),
		}, "Supertrend turned %s %d periods ago.", trend, ago), true
	}
	return Pattern{}, false
}
