package pattern

import (
	"math"
	"testing"

	"taengine/internal/analysis/indicator"
	"taengine/internal/market"
)

const baseTS = 1_700_000_000_000

// series builds hourly candles from closes.
func series(t *testing.T, closes []float64) market.Series {
	t.Helper()
	rows := make([][]float64, len(closes))
	for i, c := range closes {
		rows[i] = []float64{float64(baseTS + int64(i)*3_600_000), c, c + 1, c - 1, c, 1000}
	}
	s, err := market.FromRows(rows)
	if err != nil {
		t.Fatalf("build series: %v", err)
	}
	return s
}

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func history(n int, series map[string][]float64) indicator.History {
	return indicator.History{Len: n, Series: series, Signals: map[string]float64{}}
}

func view(t *testing.T, closes []float64, ind map[string][]float64) View {
	t.Helper()
	return NewView(series(t, closes), history(len(closes), ind))
}

func nan() float64 { return math.NaN() }

func ofType(ps []Pattern, kind string) []Pattern {
	var out []Pattern
	for _, p := range ps {
		if p.Type == kind {
			out = append(out, p)
		}
	}
	return out
}
