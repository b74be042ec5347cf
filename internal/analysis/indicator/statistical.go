package indicator

import (
	"math"

	"taengine/internal/pkg/mathx"
)

func statistical(h History, in ohlcv) {
	h.set("kurtosis", window(in.close, kurtosisPeriod, excessKurtosis))
	h.set("zscore", zscore(in.close))
	h.set("hurst", window(in.close, hurstWindow, hurstExponent))
}

// excessKurtosis 使用总体矩：m4/m2² - 3。
func excessKurtosis(w []float64) float64 {
	mean := sum(w) / float64(len(w))
	var m2, m4 float64
	for _, v := range w {
		d := v - mean
		m2 += d * d
		m4 += d * d * d * d
	}
	m2 /= float64(len(w))
	m4 /= float64(len(w))
	return mathx.SafeDiv(m4, m2*m2) - 3
}

func zscore(closes []float64) []float64 {
	out := mathx.NaNs(len(closes))
	for i := zscorePeriod - 1; i < len(closes); i++ {
		w := closes[i-zscorePeriod+1 : i+1]
		mean := sum(w) / float64(len(w))
		out[i] = mathx.SafeDiv(closes[i]-mean, stdDev(w))
	}
	return out
}

// hurstExponent estimates H as the log-log slope of lag vs the standard
// deviation of lagged differences, for lags 2..hurstMaxLag-1.
func hurstExponent(w []float64) float64 {
	var xs, ys []float64
	for lag := 2; lag < hurstMaxLag && lag < len(w); lag++ {
		d := make([]float64, len(w)-lag)
		for i := range d {
			d[i] = w[i+lag] - w[i]
		}
		tau := stdDev(d)
		if tau <= 0 || !mathx.IsFinite(tau) {
			continue
		}
		xs = append(xs, math.Log(float64(lag)))
		ys = append(ys, math.Log(tau))
	}
	return slope(xs, ys)
}

// slope of the least-squares line through (xs, ys); NaN with fewer than 2 points.
func slope(xs, ys []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	mx := sum(xs) / float64(len(xs))
	my := sum(ys) / float64(len(ys))
	var num, den float64
	for i := range xs {
		num += (xs[i] - mx) * (ys[i] - my)
		den += (xs[i] - mx) * (xs[i] - mx)
	}
	return mathx.SafeDiv(num, den)
}
