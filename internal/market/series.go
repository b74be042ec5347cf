package market

import (
	"fmt"
	"time"
)

// Series 是 K 线序列的只读视图，下标 0 为最旧的一根。
// 构造时拷贝输入，之后不再修改。
type Series struct {
	candles []Candle
}

// NewSeries validates ordering and values, then copies candles into a Series.
func NewSeries(candles []Candle) (Series, error) {
	out := make([]Candle, len(candles))
	for i, c := range candles {
		if err := c.validate(); err != nil {
			return Series{}, err
		}
		if i > 0 && c.OpenTime < candles[i-1].OpenTime {
			return Series{}, fmt.Errorf("%w: timestamp decreases at index %d", ErrMalformed, i)
		}
		out[i] = c
	}
	return Series{candles: out}, nil
}

// FromRows 从 [ts, o, h, l, c, v] 行构造序列。
func FromRows(rows [][]float64) (Series, error) {
	candles := make([]Candle, 0, len(rows))
	for i, row := range rows {
		c, err := CandleFromRow(row)
		if err != nil {
			return Series{}, fmt.Errorf("row %d: %w", i, err)
		}
		candles = append(candles, c)
	}
	return NewSeries(candles)
}

func (s Series) Len() int { return len(s.candles) }

func (s Series) Empty() bool { return len(s.candles) == 0 }

// At returns the candle at index i. It panics on out-of-range access like a slice.
func (s Series) At(i int) Candle { return s.candles[i] }

// Last returns the most recent candle.
func (s Series) Last() (Candle, bool) {
	if len(s.candles) == 0 {
		return Candle{}, false
	}
	return s.candles[len(s.candles)-1], true
}

// Candles 返回底层 K 线的拷贝。
func (s Series) Candles() []Candle {
	out := make([]Candle, len(s.candles))
	copy(out, s.candles)
	return out
}

// Timestamp resolves index i to its open time.
func (s Series) Timestamp(i int) (time.Time, bool) {
	if i < 0 || i >= len(s.candles) {
		return time.Time{}, false
	}
	return s.candles[i].Time(), true
}

// Slice 返回 [from, to) 区间的子序列，越界时自动裁剪。
func (s Series) Slice(from, to int) Series {
	if from < 0 {
		from = 0
	}
	if to > len(s.candles) {
		to = len(s.candles)
	}
	if from >= to {
		return Series{}
	}
	out := make([]Candle, to-from)
	copy(out, s.candles[from:to])
	return Series{candles: out}
}

// Tail returns the most recent n candles.
func (s Series) Tail(n int) Series {
	return s.Slice(len(s.candles)-n, len(s.candles))
}

func (s Series) Opens() []float64   { return s.column(func(c Candle) float64 { return c.Open }) }
func (s Series) Highs() []float64   { return s.column(func(c Candle) float64 { return c.High }) }
func (s Series) Lows() []float64    { return s.column(func(c Candle) float64 { return c.Low }) }
func (s Series) Closes() []float64  { return s.column(func(c Candle) float64 { return c.Close }) }
func (s Series) Volumes() []float64 { return s.column(func(c Candle) float64 { return c.Volume }) }

func (s Series) column(pick func(Candle) float64) []float64 {
	out := make([]float64, len(s.candles))
	for i, c := range s.candles {
		out[i] = pick(c)
	}
	return out
}
