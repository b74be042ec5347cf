package indicator

import (
	"math"

	"github.com/markcheno/go-talib"

	"taengine/internal/pkg/mathx"
)

// ohlcv 是按列展开的蜡烛数据。
type ohlcv struct {
	n                                int
	open, high, low, close, volume []float64
}

func momentum(h History, in ohlcv, s Settings) {
	n := in.n
	h.set("rsi", guard(n, s.RSI.Period, func() []float64 {
		return talib.Rsi(in.close, s.RSI.Period)
	}))

	k, d := stochastic(in, s.Stoch)
	h.set("stoch_k", k)
	h.set("stoch_d", d)

	h.set("williams_r", guard(n, williamsPeriod-1, func() []float64 {
		return talib.WillR(in.high, in.low, in.close, williamsPeriod)
	}))

	line, signal, hist := macd(in.close, s.MACD)
	h.set("macd_line", line)
	h.set("macd_signal", signal)
	h.set("macd_hist", hist)

	h.set("tsi", tsi(in.close))
	h.set("rmi", rmi(in.close))
	h.set("ppo", guard(n, ppoSlow-1, func() []float64 {
		return talib.Ppo(in.close, ppoFast, ppoSlow, talib.EMA)
	}))
	h.set("coppock", coppock(in.close))
	h.set("uo", guard(n, uoLong, func() []float64 {
		return talib.UltOsc(in.high, in.low, in.close, uoShort, uoMid, uoLong)
	}))
	h.set("kst", kst(in.close))
	h.set("roc", guard(n, rocPeriod, func() []float64 {
		return talib.Roc(in.close, rocPeriod)
	}))
}

func stochastic(in ohlcv, s StochSettings) (k, d []float64) {
	lookback := (s.K - 1) + (s.SmoothK - 1) + (s.D - 1)
	if in.n <= lookback {
		return mathx.NaNs(in.n), mathx.NaNs(in.n)
	}
	var rawK, rawD []float64
	d = guard(in.n, lookback, func() []float64 {
		rawK, rawD = talib.Stoch(in.high, in.low, in.close, s.K, s.SmoothK, talib.SMA, s.D, talib.SMA)
		return rawD
	})
	k = sanitize(rawK, in.n)
	warmup(k, lookback)
	return k, d
}

// macd 一次性返回 line/signal/hist，三者共享同一预热长度。
func macd(closes []float64, s MACDSettings) (line, signal, hist []float64) {
	n := len(closes)
	lookback := (maxInt(s.Fast, s.Slow) - 1) + (s.Signal - 1)
	if n <= lookback {
		return mathx.NaNs(n), mathx.NaNs(n), mathx.NaNs(n)
	}
	var rawLine, rawSignal, rawHist []float64
	line = guard(n, lookback, func() []float64 {
		rawLine, rawSignal, rawHist = talib.Macd(closes, s.Fast, s.Slow, s.Signal)
		return rawLine
	})
	signal = sanitize(rawSignal, n)
	hist = sanitize(rawHist, n)
	warmup(signal, lookback)
	warmup(hist, lookback)
	return line, signal, hist
}

// tsi: double-smoothed momentum over double-smoothed absolute momentum.
func tsi(closes []float64) []float64 {
	m := diff(closes, 1)
	abs := make([]float64, len(m))
	for i, v := range m {
		abs[i] = math.Abs(v)
	}
	num := emaSeries(emaSeries(m, tsiLong), tsiShort)
	den := emaSeries(emaSeries(abs, tsiLong), tsiShort)
	return zip(num, den, func(a, b float64) float64 { return mathx.SafeDiv(a, b) * 100 })
}

// rmi 是以 momentum 差分代替单根变化的 RSI。
func rmi(closes []float64) []float64 {
	m := diff(closes, rmiMomentum)
	up := make([]float64, len(m))
	down := make([]float64, len(m))
	for i, v := range m {
		switch {
		case !mathx.IsFinite(v):
			up[i], down[i] = math.NaN(), math.NaN()
		case v > 0:
			up[i] = v
		default:
			down[i] = -v
		}
	}
	avgUp := rmaSeries(up, rmiPeriod)
	avgDown := rmaSeries(down, rmiPeriod)
	return zip(avgUp, avgDown, func(u, d float64) float64 {
		return mathx.SafeDiv(u, u+d) * 100
	})
}

// coppock = WMA10(ROC14 + ROC11).
func coppock(closes []float64) []float64 {
	sumROC := zip(rocSeries(closes, 14), rocSeries(closes, 11), func(a, b float64) float64 { return a + b })
	return wmaSeries(sumROC, 10)
}

// kst uses the standard 10/15/20/30 ROC legs smoothed by 10/10/10/15.
func kst(closes []float64) []float64 {
	legs := []struct{ roc, sma int }{{10, 10}, {15, 10}, {20, 10}, {30, 15}}
	out := mathx.NaNs(len(closes))
	smoothed := make([][]float64, len(legs))
	for i, leg := range legs {
		smoothed[i] = smaSeries(rocSeries(closes, leg.roc), leg.sma)
	}
	for i := range out {
		acc := 0.0
		ok := true
		for w, s := range smoothed {
			if !mathx.IsFinite(s[i]) {
				ok = false
				break
			}
			acc += float64(w+1) * s[i]
		}
		if ok {
			out[i] = acc
		}
	}
	return out
}
