package indicator

import (
	"math"

	"taengine/internal/pkg/mathx"
)

var fibRatios = []struct {
	key   string
	ratio float64
}{
	{"fib_236", 0.236},
	{"fib_382", 0.382},
	{"fib_500", 0.5},
	{"fib_618", 0.618},
}

func levels(h History, in ohlcv) {
	h.set("basic_support", rollingMin(in.low, basicSRPeriod))
	h.set("basic_resistance", rollingMax(in.high, basicSRPeriod))

	support, resistance := advancedLevels(in)
	h.set("advanced_support", support)
	h.set("advanced_resistance", resistance)

	hi := rollingMax(in.high, fibPeriod)
	lo := rollingMin(in.low, fibPeriod)
	for _, f := range fibRatios {
		ratio := f.ratio
		h.set(f.key, zip(hi, lo, func(a, b float64) float64 { return a - (a-b)*ratio }))
	}

	pp, r1, r2, s1, s2 := pivots(in)
	h.set("pivot_point", pp)
	h.set("pivot_r1", r1)
	h.set("pivot_r2", r2)
	h.set("pivot_s1", s1)
	h.set("pivot_s2", s2)
}

// advancedLevels 在窗口内取接近极值（price factor 以内）的触及点，
// 按成交量加权得到支撑/阻力；放量触及额外计入强度，强度不足时为 NaN。
func advancedLevels(in ohlcv) (support, resistance []float64) {
	n := in.n
	support, resistance = mathx.NaNs(n), mathx.NaNs(n)
	p := advancedSRPeriod
	for i := p - 1; i < n; i++ {
		lows := in.low[i-p+1 : i+1]
		highs := in.high[i-p+1 : i+1]
		vols := in.volume[i-p+1 : i+1]
		avgVol := sum(vols) / float64(p)
		minLow, _, _, _, okLow := mathx.MinMax(lows)
		_, _, maxHigh, _, okHigh := mathx.MinMax(highs)
		if okLow {
			support[i] = touchLevel(lows, vols, avgVol, func(v float64) bool {
				return v <= minLow*(1+srPriceFactor)
			})
		}
		if okHigh {
			resistance[i] = touchLevel(highs, vols, avgVol, func(v float64) bool {
				return v >= maxHigh*(1-srPriceFactor)
			})
		}
	}
	return support, resistance
}

func touchLevel(prices, vols []float64, avgVol float64, touches func(float64) bool) float64 {
	var weighted, weight float64
	strength := 0
	for k, v := range prices {
		if !mathx.IsFinite(v) || !touches(v) {
			continue
		}
		strength++
		if avgVol > 0 && vols[k] > avgVol*srVolumeFactor {
			strength++
		}
		w := vols[k]
		if w <= 0 {
			w = 1
		}
		weighted += v * w
		weight += w
	}
	if strength < srStrength {
		return math.NaN()
	}
	return mathx.SafeDiv(weighted, weight)
}

// pivots 使用前一根 K 线的经典枢轴点。
func pivots(in ohlcv) (pp, r1, r2, s1, s2 []float64) {
	n := in.n
	pp, r1, r2, s1, s2 = mathx.NaNs(n), mathx.NaNs(n), mathx.NaNs(n), mathx.NaNs(n), mathx.NaNs(n)
	for i := 1; i < n; i++ {
		hi, lo, cl := in.high[i-1], in.low[i-1], in.close[i-1]
		p := (hi + lo + cl) / 3
		pp[i] = p
		r1[i] = 2*p - lo
		s1[i] = 2*p - hi
		r2[i] = p + (hi - lo)
		s2[i] = p - (hi - lo)
	}
	return pp, r1, r2, s1, s2
}
