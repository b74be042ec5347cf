package pattern

import (
	"taengine/internal/logger"
	"taengine/internal/pkg/mathx"
)

// DivergenceDetector compares price against RSI (classic extremum method)
// and against Stochastic %K and the MACD line (short-term direction method).
type DivergenceDetector struct {
	s DivergenceSettings
}

func NewDivergenceDetector(s DivergenceSettings) *DivergenceDetector {
	return &DivergenceDetector{s: s.Normalize()}
}

func (d *DivergenceDetector) Name() string { return "divergence" }

func (d *DivergenceDetector) Detect(v View) []Pattern {
	if !v.HasData() {
		return nil
	}
	prices := v.Closes()
	rsi := v.Indicator("rsi")
	stoch := v.Indicator("stoch_k")
	macd := v.Indicator("macd_line")
	n := min(len(prices), len(rsi), len(stoch), len(macd))
	if n < d.s.MinHistory {
		return nil
	}
	n = min(n, d.s.Window)
	recentPrices := prices[len(prices)-n:]
	offset := v.LastIndex() - (n - 1)

	var out []Pattern
	out = append(out, d.classic(v, recentPrices, rsi[len(rsi)-n:], offset, "RSI")...)
	out = append(out, d.shortTerm(v, recentPrices, stoch[len(stoch)-n:], offset, "Stochastic")...)
	out = append(out, d.shortTerm(v, recentPrices, macd[len(macd)-n:], offset, "MACD")...)
	return out
}

// classic: price makes a new extreme inside the lookback while the
// oscillator at that candle does not confirm it against its own prior extreme.
func (d *DivergenceDetector) classic(v View, prices, osc []float64, offset int, name string) []Pattern {
	n := len(prices)
	look := min(d.s.PriceLookback, n)
	start := n - look
	win := prices[start:]
	minP, minIdx, maxP, maxIdx, ok := mathx.MinMax(win)
	if !ok {
		return nil
	}
	var out []Pattern
	if p := start + minIdx; p > start {
		if q, ok := oscExtreme(osc, start, p, true); ok && osc[p] > osc[q] {
			out = append(out, d.classicPattern(v, Bullish, name, offset, p, q, minP, prices[q], osc[p], osc[q],
				"Bullish divergence detected: price making lower lows while %s is not. This suggests potential upward reversal."))
		}
	}
	if p := start + maxIdx; p > start {
		if q, ok := oscExtreme(osc, start, p, false); ok && osc[p] < osc[q] {
			out = append(out, d.classicPattern(v, Bearish, name, offset, p, q, maxP, prices[q], osc[p], osc[q],
				"Bearish divergence detected: price making higher highs while %s is not. This suggests potential downward reversal."))
		}
	}
	return out
}

// oscExtreme 返回 osc[from:to) 中的最小（或最大）值下标；osc[to] 需为有限值。
func oscExtreme(osc []float64, from, to int, lowest bool) (int, bool) {
	if !mathx.IsFinite(osc[to]) {
		return 0, false
	}
	_, lo, _, hi, ok := mathx.MinMax(osc[from:to])
	if !ok {
		return 0, false
	}
	if lowest {
		return from + lo, true
	}
	return from + hi, true
}

func (d *DivergenceDetector) classicPattern(v View, dir Direction, name string, offset, p, q int, price, priorPrice, ind, priorInd float64, format string) Pattern {
	idx := offset + p
	pat := newPattern(v, string(dir)+"_divergence", idx, DivergenceDetails{
		Indicator:           name,
		Method:              "classic",
		Direction:           dir,
		PriceIndex:          idx,
		IndicatorIndex:      offset + q,
		PeriodsAgo:          v.LastIndex() - idx,
		PriceValue:          mathx.Float(price),
		IndicatorValue:      mathx.Float(ind),
		PriorPriceValue:     mathx.Float(priorPrice),
		PriorIndicatorValue: mathx.Float(priorInd),
	}, format, name)
	logger.Debugf("Detected %s: %s", pat.Type, pat.Description)
	return pat
}

// shortTerm: direction of price vs oscillator between the last candle and
// short_term_lookback-1 candles earlier. Direction only.
func (d *DivergenceDetector) shortTerm(v View, prices, osc []float64, offset int, name string) []Pattern {
	last := len(prices) - 1
	first := last - (d.s.ShortTermLookback - 1)
	if first < 0 || first == last {
		return nil
	}
	pLower, pHigher := prices[last] < prices[first], prices[last] > prices[first]
	oLower, oHigher := osc[last] < osc[first], osc[last] > osc[first]

	details := func(dir Direction) DivergenceDetails {
		return DivergenceDetails{
			Indicator:           name,
			Method:              "short_term",
			Direction:           dir,
			PriceIndex:          offset + last,
			IndicatorIndex:      offset + last,
			PeriodsAgo:          v.LastIndex() - (offset + last),
			PriceValue:          mathx.Float(prices[last]),
			IndicatorValue:      mathx.Float(osc[last]),
			PriorPriceValue:     mathx.Float(prices[first]),
			PriorIndicatorValue: mathx.Float(osc[first]),
		}
	}
	var out []Pattern
	switch {
	case pLower && oHigher:
		out = append(out, newPattern(v, "bullish_divergence", offset+last, details(Bullish),
			"Bullish %s divergence: price moving down while %s trending up.", name, name))
	case pHigher && oLower:
		out = append(out, newPattern(v, "bearish_divergence", offset+last, details(Bearish),
			"Bearish %s divergence: price moving up while %s trending down.", name, name))
	}
	for _, p := range out {
		logger.Debugf("Detected %s: %s", p.Type, p.Description)
	}
	return out
}
