// Package mathx 提供指标与形态检测共用的 NaN 感知数值工具。
package mathx

import (
	"encoding/json"
	"math"
)

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NaNs 返回长度为 n 且全部为 NaN 的序列。
func NaNs(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// LastValid 返回序列中最后一个有限值。
func LastValid(series []float64) (float64, bool) {
	for i := len(series) - 1; i >= 0; i-- {
		if IsFinite(series[i]) {
			return series[i], true
		}
	}
	return math.NaN(), false
}

// FirstValidIndex returns the index of the first finite value, or -1.
func FirstValidIndex(series []float64) int {
	for i, v := range series {
		if IsFinite(v) {
			return i
		}
	}
	return -1
}

// Last returns the final element or NaN for an empty slice.
func Last(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}

// MinMax 返回区间内有限值的最小/最大值及其下标；全部无效时 ok=false。
func MinMax(series []float64) (minVal float64, minIdx int, maxVal float64, maxIdx int, ok bool) {
	minIdx, maxIdx = -1, -1
	for i, v := range series {
		if !IsFinite(v) {
			continue
		}
		if minIdx < 0 || v < minVal {
			minVal, minIdx = v, i
		}
		if maxIdx < 0 || v > maxVal {
			maxVal, maxIdx = v, i
		}
	}
	return minVal, minIdx, maxVal, maxIdx, minIdx >= 0
}

// Mean of the finite values; NaN when none.
func Mean(series []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range series {
		if IsFinite(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// SafeDiv returns NaN instead of ±Inf when the denominator is zero.
func SafeDiv(num, den float64) float64 {
	if den == 0 || !IsFinite(num) || !IsFinite(den) {
		return math.NaN()
	}
	return num / den
}

// Round rounds v to the given number of decimals, keeping NaN.
func Round(v float64, decimals int) float64 {
	if !IsFinite(v) {
		return v
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// Float 在 JSON 边界把 NaN/Inf 转成 null。
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if !IsFinite(v) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (f *Float) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Floats converts a raw series into its JSON-safe form.
func Floats(series []float64) []Float {
	out := make([]Float, len(series))
	for i, v := range series {
		out[i] = Float(v)
	}
	return out
}

// Opt returns a pointer to v, or nil when v is not finite.
func Opt(v float64) *float64 {
	if !IsFinite(v) {
		return nil
	}
	return &v
}
