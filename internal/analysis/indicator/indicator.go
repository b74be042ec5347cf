// Package indicator 把 OHLCV 序列计算成一组与输入对齐的指标时间序列。
package indicator

import (
	"fmt"
	"math"

	"taengine/internal/market"
	"taengine/internal/pkg/mathx"
)

// ComputeAll computes every indicator family for the series. Each numeric
// series has the same length as the input; warm-up positions are NaN.
func ComputeAll(series market.Series, settings Settings) (History, error) {
	if series.Empty() {
		return History{}, fmt.Errorf("compute indicators: %w", ErrInsufficientData)
	}
	settings = settings.Normalize()
	in := columns(series)
	h := newHistory(in.n)

	momentum(h, in, settings)
	trend(h, in, settings)
	volatility(h, in, settings)
	volume(h, in)
	statistical(h, in)
	levels(h, in)

	signals(h, in.close[in.n-1])
	return h, nil
}

func columns(series market.Series) ohlcv {
	return ohlcv{
		n:      series.Len(),
		open:   series.Opens(),
		high:   series.Highs(),
		low:    series.Lows(),
		close:  series.Closes(),
		volume: series.Volumes(),
	}
}

// signals 只看各序列的最后一个值。
func signals(h History, price float64) {
	h.Signals["ichimoku_signal"] = ichimokuSignal(price, mathx.Last(h.Get("ichimoku_span_a")), mathx.Last(h.Get("ichimoku_span_b")))
	h.Signals["bb_signal"] = bandSignal(price, mathx.Last(h.Get("bb_upper")), mathx.Last(h.Get("bb_lower")))
}

func ichimokuSignal(price, spanA, spanB float64) float64 {
	if !mathx.IsFinite(spanA) || !mathx.IsFinite(spanB) {
		return 0
	}
	top, bottom := spanA, spanB
	if bottom > top {
		top, bottom = bottom, top
	}
	switch {
	case price > top:
		return 1
	case price < bottom:
		return -1
	default:
		return 0
	}
}

func bandSignal(price, upper, lower float64) float64 {
	if !mathx.IsFinite(upper) || !mathx.IsFinite(lower) || upper == 0 || lower == 0 {
		return 0
	}
	switch {
	case math.Abs(price-upper)/upper < bandProximity:
		return 1
	case math.Abs(price-lower)/lower < bandProximity:
		return -1
	default:
		return 0
	}
}

// SeriesKeys 是 ComputeAll 产出的全部序列名。
var SeriesKeys = []string{
	"rsi", "stoch_k", "stoch_d", "williams_r", "macd_line", "macd_signal", "macd_hist",
	"tsi", "rmi", "ppo", "coppock", "uo", "kst", "roc",
	"adx", "plus_di", "minus_di", "supertrend", "supertrend_direction",
	"ichimoku_conversion", "ichimoku_base", "ichimoku_span_a", "ichimoku_span_b",
	"sar", "vortex_plus", "vortex_minus", "trix", "pfe",
	"sma_20", "sma_50", "sma_200", "ema_9", "ema_21",
	"atr", "bb_upper", "bb_middle", "bb_lower", "bb_width", "chandelier_long", "chandelier_short",
	"vwap", "twap", "mfi", "obv", "cmf", "force_index",
	"kurtosis", "zscore", "hurst",
	"basic_support", "basic_resistance", "advanced_support", "advanced_resistance",
	"fib_236", "fib_382", "fib_500", "fib_618",
	"pivot_point", "pivot_r1", "pivot_r2", "pivot_s1", "pivot_s2",
}

// SignalKeys are the scalar signals.
var SignalKeys = []string{"ichimoku_signal", "bb_signal"}
