package indicator

import (
	"github.com/markcheno/go-talib"

	"taengine/internal/pkg/mathx"
)

func volatility(h History, in ohlcv, s Settings) {
	n := in.n
	h.set("atr", guard(n, s.ATR.Period, func() []float64 {
		return talib.Atr(in.high, in.low, in.close, s.ATR.Period)
	}))

	upper, middle, lower, width := bollinger(in.close, s.Bollinger)
	h.set("bb_upper", upper)
	h.set("bb_middle", middle)
	h.set("bb_lower", lower)
	h.set("bb_width", width)

	long, short := chandelier(in)
	h.set("chandelier_long", long)
	h.set("chandelier_short", short)
}

// bollinger 的 width 为 (upper-lower)/middle*100。
func bollinger(closes []float64, s BollingerSettings) (upper, middle, lower, width []float64) {
	n := len(closes)
	lookback := s.Period - 1
	if n <= lookback {
		return mathx.NaNs(n), mathx.NaNs(n), mathx.NaNs(n), mathx.NaNs(n)
	}
	var rawMid, rawLow []float64
	upper = guard(n, lookback, func() []float64 {
		var up []float64
		up, rawMid, rawLow = talib.BBands(closes, s.Period, s.StdDev, s.StdDev, talib.SMA)
		return up
	})
	middle = sanitize(rawMid, n)
	lower = sanitize(rawLow, n)
	warmup(middle, lookback)
	warmup(lower, lookback)
	width = mathx.NaNs(n)
	for i := range width {
		if mathx.IsFinite(upper[i]) && mathx.IsFinite(lower[i]) {
			width[i] = mathx.SafeDiv(upper[i]-lower[i], middle[i]) * 100
		}
	}
	return upper, middle, lower, width
}

// chandelier: highest high minus k*ATR for longs, lowest low plus k*ATR for shorts.
func chandelier(in ohlcv) (long, short []float64) {
	atr := guard(in.n, chandelierPeriod, func() []float64 {
		return talib.Atr(in.high, in.low, in.close, chandelierPeriod)
	})
	long = zip(rollingMax(in.high, chandelierPeriod), atr, func(hi, a float64) float64 { return hi - chandelierMult*a })
	short = zip(rollingMin(in.low, chandelierPeriod), atr, func(lo, a float64) float64 { return lo + chandelierMult*a })
	return long, short
}
