package indicator

import (
	"github.com/markcheno/go-talib"

	"taengine/internal/pkg/mathx"
)

func volume(h History, in ohlcv) {
	n := in.n
	h.set("vwap", vwap(in))
	h.set("twap", twap(in))
	h.set("mfi", guard(n, mfiPeriod, func() []float64 {
		return talib.Mfi(in.high, in.low, in.close, in.volume, mfiPeriod)
	}))
	h.set("obv", guard(n, 0, func() []float64 { return talib.Obv(in.close, in.volume) }))
	h.set("cmf", cmf(in))
	h.set("force_index", forceIndex(in))
}

// vwap 为滚动窗口内典型价格的成交量加权均值。
func vwap(in ohlcv) []float64 {
	pv := make([]float64, in.n)
	for i := range pv {
		pv[i] = (in.high[i] + in.low[i] + in.close[i]) / 3 * in.volume[i]
	}
	return zip(window(pv, vwapPeriod, sum), window(in.volume, vwapPeriod, sum), mathx.SafeDiv)
}

func twap(in ohlcv) []float64 {
	avg := make([]float64, in.n)
	for i := range avg {
		avg[i] = (in.open[i] + in.high[i] + in.low[i] + in.close[i]) / 4
	}
	return smaSeries(avg, twapPeriod)
}

func cmf(in ohlcv) []float64 {
	mfv := make([]float64, in.n)
	for i := range mfv {
		hl := in.high[i] - in.low[i]
		if hl == 0 {
			continue
		}
		mult := ((in.close[i] - in.low[i]) - (in.high[i] - in.close[i])) / hl
		mfv[i] = mult * in.volume[i]
	}
	return zip(window(mfv, cmfPeriod, sum), window(in.volume, cmfPeriod, sum), mathx.SafeDiv)
}

func forceIndex(in ohlcv) []float64 {
	raw := mathx.NaNs(in.n)
	for i := 1; i < in.n; i++ {
		raw[i] = (in.close[i] - in.close[i-1]) * in.volume[i]
	}
	return emaSeries(raw, forcePeriod)
}
