package indicator

import (
	"math"
	"strconv"

	"github.com/markcheno/go-talib"

	"taengine/internal/pkg/mathx"
)

func trend(h History, in ohlcv, s Settings) {
	n := in.n
	p := s.ADX.Period
	h.set("adx", guard(n, 2*p-1, func() []float64 { return talib.Adx(in.high, in.low, in.close, p) }))
	h.set("plus_di", guard(n, p, func() []float64 { return talib.PlusDI(in.high, in.low, in.close, p) }))
	h.set("minus_di", guard(n, p, func() []float64 { return talib.MinusDI(in.high, in.low, in.close, p) }))

	st, dir := supertrend(in, s.Supertrend)
	h.set("supertrend", st)
	h.set("supertrend_direction", dir)

	conv, base, spanA, spanB := ichimoku(in, s.Ichimoku)
	h.set("ichimoku_conversion", conv)
	h.set("ichimoku_base", base)
	h.set("ichimoku_span_a", spanA)
	h.set("ichimoku_span_b", spanB)

	h.set("sar", guard(n, 1, func() []float64 {
		return talib.Sar(in.high, in.low, sarAcceleration, sarMaximum)
	}))

	vp, vm := vortex(in)
	h.set("vortex_plus", vp)
	h.set("vortex_minus", vm)

	h.set("trix", guard(n, 3*(trixPeriod-1)+1, func() []float64 { return talib.Trix(in.close, trixPeriod) }))
	h.set("pfe", pfe(in.close))

	for _, period := range []int{20, 50, 200} {
		h.set("sma_"+strconv.Itoa(period), guard(n, period-1, func() []float64 { return talib.Sma(in.close, period) }))
	}
	for _, period := range []int{9, 21} {
		h.set("ema_"+strconv.Itoa(period), guard(n, period-1, func() []float64 { return talib.Ema(in.close, period) }))
	}
}

// supertrend 返回轨道值与方向（+1 多头，-1 空头）。
func supertrend(in ohlcv, s SupertrendSettings) (value, direction []float64) {
	n := in.n
	value, direction = mathx.NaNs(n), mathx.NaNs(n)
	atr := guard(n, s.Period, func() []float64 { return talib.Atr(in.high, in.low, in.close, s.Period) })
	start := mathx.FirstValidIndex(atr)
	if start < 0 {
		return value, direction
	}
	var finalUp, finalDn, dir float64
	for i := start; i < n; i++ {
		if !mathx.IsFinite(atr[i]) {
			continue
		}
		hl2 := (in.high[i] + in.low[i]) / 2
		basicUp := hl2 + s.Multiplier*atr[i]
		basicDn := hl2 - s.Multiplier*atr[i]
		if i == start {
			finalUp, finalDn = basicUp, basicDn
			dir = 1
			if in.close[i] < hl2 {
				dir = -1
			}
		} else {
			prevClose := in.close[i-1]
			if basicUp < finalUp || prevClose > finalUp {
				finalUp = basicUp
			}
			if basicDn > finalDn || prevClose < finalDn {
				finalDn = basicDn
			}
			switch {
			case dir < 0 && in.close[i] > finalUp:
				dir = 1
			case dir > 0 && in.close[i] < finalDn:
				dir = -1
			}
		}
		direction[i] = dir
		if dir > 0 {
			value[i] = finalDn
		} else {
			value[i] = finalUp
		}
	}
	return value, direction
}

// ichimoku 的 span A/B 按 displacement 向前平移，超出输入长度的部分丢弃。
func ichimoku(in ohlcv, s IchimokuSettings) (conv, base, spanA, spanB []float64) {
	mid := func(period int) []float64 {
		return zip(rollingMax(in.high, period), rollingMin(in.low, period), func(hi, lo float64) float64 {
			return (hi + lo) / 2
		})
	}
	conv = mid(s.Conversion)
	base = mid(s.Base)
	rawA := zip(conv, base, func(a, b float64) float64 { return (a + b) / 2 })
	spanA = shift(rawA, s.Displacement)
	spanB = shift(mid(s.SpanB), s.Displacement)
	return conv, base, spanA, spanB
}

func vortex(in ohlcv) (plus, minus []float64) {
	n := in.n
	vmPlus, vmMinus, tr := mathx.NaNs(n), mathx.NaNs(n), mathx.NaNs(n)
	for i := 1; i < n; i++ {
		vmPlus[i] = math.Abs(in.high[i] - in.low[i-1])
		vmMinus[i] = math.Abs(in.low[i] - in.high[i-1])
		tr[i] = math.Max(in.high[i], in.close[i-1]) - math.Min(in.low[i], in.close[i-1])
	}
	trSum := window(tr, vortexPeriod, sum)
	plus = zip(window(vmPlus, vortexPeriod, sum), trSum, mathx.SafeDiv)
	minus = zip(window(vmMinus, vortexPeriod, sum), trSum, mathx.SafeDiv)
	return plus, minus
}

// pfe: polarized fractal efficiency, EMA smoothed.
func pfe(closes []float64) []float64 {
	n := len(closes)
	raw := mathx.NaNs(n)
	for i := pfePeriod; i < n; i++ {
		change := closes[i] - closes[i-pfePeriod]
		straight := math.Sqrt(change*change + float64(pfePeriod*pfePeriod))
		path := 0.0
		for k := i - pfePeriod + 1; k <= i; k++ {
			step := closes[k] - closes[k-1]
			path += math.Sqrt(step*step + 1)
		}
		v := mathx.SafeDiv(straight, path) * 100
		if change < 0 {
			v = -v
		}
		raw[i] = v
	}
	return emaSeries(raw, pfeSmooth)
}
