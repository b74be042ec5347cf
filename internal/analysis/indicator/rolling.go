package indicator

import (
	"math"

	"taengine/internal/pkg/mathx"
)

// guard 在数据长度不超过 lookback 时直接返回全 NaN，否则调用 fn 并把
// 前 lookback 个预热位置标记为 NaN。talib 在预热区输出 0，不能直接使用。
func guard(n, lookback int, fn func() []float64) (out []float64) {
	if n <= lookback {
		return mathx.NaNs(n)
	}
	defer func() {
		if r := recover(); r != nil {
			out = mathx.NaNs(n)
		}
	}()
	out = sanitize(fn(), n)
	warmup(out, lookback)
	return out
}

// sanitize copies src into a slice of length n, mapping ±Inf to NaN.
func sanitize(src []float64, n int) []float64 {
	out := mathx.NaNs(n)
	for i := 0; i < n && i < len(src); i++ {
		if mathx.IsFinite(src[i]) {
			out[i] = src[i]
		}
	}
	return out
}

func warmup(series []float64, lookback int) {
	for i := 0; i < lookback && i < len(series); i++ {
		series[i] = math.NaN()
	}
}

// window 对每个满窗位置调用 fn；窗口内含 NaN 时结果为 NaN。
func window(src []float64, period int, fn func(w []float64) float64) []float64 {
	out := mathx.NaNs(len(src))
	if period <= 0 {
		return out
	}
	bad := 0
	for i := range src {
		if !mathx.IsFinite(src[i]) {
			bad++
		}
		if i >= period && !mathx.IsFinite(src[i-period]) {
			bad--
		}
		if i < period-1 || bad > 0 {
			continue
		}
		out[i] = fn(src[i-period+1 : i+1])
	}
	return out
}

func sum(w []float64) float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

func smaSeries(src []float64, period int) []float64 {
	return window(src, period, func(w []float64) float64 { return sum(w) / float64(len(w)) })
}

func rollingMax(src []float64, period int) []float64 {
	return window(src, period, func(w []float64) float64 {
		_, _, hi, _, _ := mathx.MinMax(w)
		return hi
	})
}

func rollingMin(src []float64, period int) []float64 {
	return window(src, period, func(w []float64) float64 {
		lo, _, _, _, _ := mathx.MinMax(w)
		return lo
	})
}

// wmaSeries is a linearly weighted moving average (newest weight = period).
func wmaSeries(src []float64, period int) []float64 {
	denom := float64(period*(period+1)) / 2
	return window(src, period, func(w []float64) float64 {
		acc := 0.0
		for i, v := range w {
			acc += float64(i+1) * v
		}
		return acc / denom
	})
}

// emaSeries starts at the first finite value, seeds with the SMA of the
// first period values and skips NaN gaps without resetting.
func emaSeries(src []float64, period int) []float64 {
	return smoothSeries(src, period, 2/float64(period+1))
}

// rmaSeries is Wilder's smoothing.
func rmaSeries(src []float64, period int) []float64 {
	return smoothSeries(src, period, 1/float64(period))
}

func smoothSeries(src []float64, period int, alpha float64) []float64 {
	out := mathx.NaNs(len(src))
	if period <= 0 {
		return out
	}
	start := mathx.FirstValidIndex(src)
	if start < 0 || len(src)-start < period {
		return out
	}
	seed := 0.0
	for i := start; i < start+period; i++ {
		if !mathx.IsFinite(src[i]) {
			return out
		}
		seed += src[i]
	}
	prev := seed / float64(period)
	out[start+period-1] = prev
	for i := start + period; i < len(src); i++ {
		if !mathx.IsFinite(src[i]) {
			continue
		}
		prev += alpha * (src[i] - prev)
		out[i] = prev
	}
	return out
}

// rocSeries is the percentage change over period bars.
func rocSeries(src []float64, period int) []float64 {
	out := mathx.NaNs(len(src))
	for i := period; i < len(src); i++ {
		out[i] = mathx.SafeDiv(src[i]-src[i-period], src[i-period]) * 100
	}
	return out
}

func diff(src []float64, lag int) []float64 {
	out := mathx.NaNs(len(src))
	for i := lag; i < len(src); i++ {
		if mathx.IsFinite(src[i]) && mathx.IsFinite(src[i-lag]) {
			out[i] = src[i] - src[i-lag]
		}
	}
	return out
}

func zip(a, b []float64, fn func(x, y float64) float64) []float64 {
	out := mathx.NaNs(len(a))
	for i := range a {
		if i >= len(b) || !mathx.IsFinite(a[i]) || !mathx.IsFinite(b[i]) {
			continue
		}
		v := fn(a[i], b[i])
		if mathx.IsFinite(v) {
			out[i] = v
		}
	}
	return out
}

func shift(src []float64, by int) []float64 {
	out := mathx.NaNs(len(src))
	for i := by; i < len(src); i++ {
		out[i] = src[i-by]
	}
	return out
}

func stdDev(w []float64) float64 {
	mean := sum(w) / float64(len(w))
	acc := 0.0
	for _, v := range w {
		acc += (v - mean) * (v - mean)
	}
	return math.Sqrt(acc / float64(len(w)))
}

func maxInt(values ...int) int {
	if len(values) == 0 {
		return 0
	}
	maxVal := values[0]
	for _, v := range values[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	return maxVal
}
