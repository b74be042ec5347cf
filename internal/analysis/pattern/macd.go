package pattern

import (
	"taengine/internal/logger"
	"taengine/internal/pkg/mathx"
)

// MACDDetector reports line/signal crossovers and zero-line crossings.
// The most recent crossing of each direction is reported independently.
type MACDDetector struct {
	s MACDSettings
}

func NewMACDDetector(s MACDSettings) *MACDDetector {
	return &MACDDetector{s: s.Normalize()}
}

func (d *MACDDetector) Name() string { return "macd" }

func (d *MACDDetector) Detect(v View) []Pattern {
	line := v.Indicator("macd_line")
	signal := v.Indicator("macd_signal")
	if !v.HasData() || len(line) < d.s.MinHistory || len(signal) < d.s.MinHistory {
		return nil
	}
	n := min(len(line), len(signal), d.s.Window)
	line, signal = line[len(line)-n:], signal[len(signal)-n:]
	lookback := min(d.s.SignalLookback, n)

	var out []Pattern
	for _, dir := range []Direction{Bullish, Bearish} {
		c, ok := FindCrossover(line, signal, lookback, dir)
		if !ok {
			continue
		}
		idx := v.candleIndex(n, c.Index)
		title := "Bullish"
		if dir == Bearish {
			title = "Bearish"
		}
		p := newPattern(v, string(dir)+"_crossover", idx, CrossoverDetails{
			Direction:   dir,
			PeriodsAgo:  c.PeriodsAgo,
			Value:       mathx.Float(c.Value),
			MACDValue:   mathx.Opt(line[c.Index]),
			SignalValue: mathx.Opt(signal[c.Index]),
		}, "%s MACD crossover %d periods ago with MACD at %.4f.", title, c.PeriodsAgo, c.Value)
		logger.Debugf("Detected %s: %s", p.Type, p.Description)
		out = append(out, p)
	}
	for _, dir := range []Direction{Bullish, Bearish} {
		c, ok := FindZeroCross(line, lookback, dir)
		if !ok {
			continue
		}
		side := "above"
		if dir == Bearish {
			side = "below"
		}
		p := newPattern(v, "zero_line_"+string(dir), v.candleIndex(n, c.Index), CrossoverDetails{
			Direction:  dir,
			PeriodsAgo: c.PeriodsAgo,
			Value:      mathx.Float(c.Value),
		}, "MACD crossed %s zero line %d periods ago.", side, c.PeriodsAgo)
		logger.Debugf("Detected %s: %s", p.Type, p.Description)
		out = append(out, p)
	}
	return out
}
