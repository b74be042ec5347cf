// Package pattern 在 K 线与指标历史上识别具名形态（阈值区间、交叉、背离、
// 双底双顶、波动率变化），并按类别汇总。
package pattern

import (
	"time"

	"taengine/internal/analysis/indicator"
	"taengine/internal/market"
)

// View is the read-only input handed to every detector.
type View struct {
	series     market.Series
	history    indicator.History
	timestamps []time.Time
}

type ViewOption func(*View)

// WithTimestamps overrides the candle open times used for pattern timestamps.
func WithTimestamps(ts []time.Time) ViewOption {
	return func(v *View) {
		v.timestamps = append([]time.Time(nil), ts...)
	}
}

func NewView(series market.Series, history indicator.History, opts ...ViewOption) View {
	v := View{series: series, history: history}
	for _, opt := range opts {
		opt(&v)
	}
	return v
}

func (v View) HasData() bool { return !v.series.Empty() }

func (v View) Len() int { return v.series.Len() }

func (v View) LastIndex() int { return v.series.Len() - 1 }

func (v View) Series() market.Series { return v.series }

func (v View) History() indicator.History { return v.history }

func (v View) Closes() []float64 { return v.series.Closes() }

func (v View) Fingerprint() market.Fingerprint { return v.series.Fingerprint() }

// Indicator returns the named history series, or nil when absent.
func (v View) Indicator(name string) []float64 {
	if v.history.Series == nil {
		return nil
	}
	return v.history.Series[name]
}

// TimestampAt resolves a candle index to its time; false when out of range.
func (v View) TimestampAt(i int) (time.Time, bool) {
	if v.timestamps != nil {
		if i < 0 || i >= len(v.timestamps) || i >= v.series.Len() {
			return time.Time{}, false
		}
		return v.timestamps[i], true
	}
	return v.series.Timestamp(i)
}

// candleIndex maps index i of a series with length n onto the candle axis.
// Aligned series map 1:1; shorter series are right-aligned to the last candle.
func (v View) candleIndex(n, i int) int {
	return v.series.Len() - n + i
}

// Slice narrows the view to candles [from, to), keeping indicators aligned.
func (v View) Slice(from, to int) View {
	if from < 0 {
		from = 0
	}
	s := v.series.Slice(from, to)
	out := View{series: s}
	if v.history.Series != nil {
		out.history = v.history.Window(from, from+s.Len())
	}
	if v.timestamps != nil && from < len(v.timestamps) {
		end := from + s.Len()
		if end > len(v.timestamps) {
			end = len(v.timestamps)
		}
		out.timestamps = append([]time.Time(nil), v.timestamps[from:end]...)
	}
	return out
}
