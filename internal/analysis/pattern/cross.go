package pattern

import "taengine/internal/pkg/mathx"

type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
	// Any matches either direction.
	Any Direction = ""
)

// Cross describes one sign change of a-b at Index.
// PeriodsAgo counts from 1: a cross on the final value is 1 period ago.
type Cross struct {
	Index      int
	PeriodsAgo int
	Direction  Direction
	Value      float64
}

// FindCrossover scans backwards from the last value over the final lookback
// values and returns the most recent crossing of a over b in direction want.
// Transitions touching NaN are skipped.
func FindCrossover(a, b []float64, lookback int, want Direction) (Cross, bool) {
	n := min(len(a), len(b))
	// 右对齐
	a, b = a[len(a)-n:], b[len(b)-n:]
	lookback = min(lookback, n)
	last := n - 1
	for i := last; i >= max(1, n-lookback+1); i-- {
		prev, cur := a[i-1]-b[i-1], a[i]-b[i]
		if !mathx.IsFinite(prev) || !mathx.IsFinite(cur) {
			continue
		}
		dir, ok := crossDirection(prev, cur)
		if !ok || (want != Any && dir != want) {
			continue
		}
		return Cross{Index: i, PeriodsAgo: n - i, Direction: dir, Value: a[i]}, true
	}
	return Cross{}, false
}

// FindZeroCross is FindCrossover against the zero line.
func FindZeroCross(a []float64, lookback int, want Direction) (Cross, bool) {
	return FindCrossover(a, make([]float64, len(a)), lookback, want)
}

func crossDirection(prev, cur float64) (Direction, bool) {
	switch {
	case prev <= 0 && cur > 0:
		return Bullish, true
	case prev >= 0 && cur < 0:
		return Bearish, true
	default:
		return Any, false
	}
}
