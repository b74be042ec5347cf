// Package metrics 把指标历史按 1D/2D/3D/7D/30D 等周期汇总成摘要。
package metrics

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"taengine/internal/analysis/indicator"
	"taengine/internal/analysis/pattern"
	"taengine/internal/logger"
	"taengine/internal/pkg/mathx"
)

// Period 以基础周期（小时线）的 K 线根数定义一个汇总窗口。
type Period struct {
	Name    string `json:"name" toml:"name" yaml:"name"`
	Candles int    `json:"candles" toml:"candles" yaml:"candles"`
}

func DefaultPeriods() []Period {
	return []Period{
		{Name: "1D", Candles: 24},
		{Name: "2D", Candles: 48},
		{Name: "3D", Candles: 72},
		{Name: "7D", Candles: 168},
		{Name: "30D", Candles: 720},
	}
}

type Basic struct {
	HighestPrice       mathx.Float `json:"highest_price"`
	LowestPrice        mathx.Float `json:"lowest_price"`
	AvgPrice           mathx.Float `json:"avg_price"`
	TotalVolume        mathx.Float `json:"total_volume"`
	AvgVolume          mathx.Float `json:"avg_volume"`
	PriceChange        mathx.Float `json:"price_change"`
	PriceChangePercent mathx.Float `json:"price_change_percent"`
	Volatility         mathx.Float `json:"volatility"`
	Period             string      `json:"period"`
	DataPoints         int         `json:"data_points"`
}

type Levels struct {
	Support    mathx.Float `json:"support"`
	Resistance mathx.Float `json:"resistance"`
}

type Divergences struct {
	Bullish bool `json:"bullish"`
	Bearish bool `json:"bearish"`
}

// PeriodMetrics 单个周期的汇总结果。
type PeriodMetrics struct {
	Metrics          Basic                  `json:"metrics"`
	IndicatorChanges map[string]mathx.Float `json:"indicator_changes"`
	KeyLevels        Levels                 `json:"key_levels"`
	Divergences      Divergences            `json:"divergences"`
}

// Report is keyed by period name ("1D", "30D", ...).
type Report map[string]PeriodMetrics

// PatternSource 提供周期内的形态，用于背离标记。
type PatternSource interface {
	AllPatterns(v pattern.View) []pattern.Pattern
}

type Rollup struct {
	periods  []Period
	patterns PatternSource
}

// NewRollup builds a rollup over periods; empty periods fall back to DefaultPeriods.
// patterns may be nil, in which case divergence flags stay false.
func NewRollup(periods []Period, patterns PatternSource) *Rollup {
	if len(periods) == 0 {
		periods = DefaultPeriods()
	}
	kept := make([]Period, 0, len(periods))
	for _, p := range periods {
		if p.Candles <= 0 || p.Name == "" {
			logger.Warnf("rollup: skipping invalid period %+v", p)
			continue
		}
		kept = append(kept, p)
	}
	return &Rollup{periods: kept, patterns: patterns}
}

func (r *Rollup) Periods() []Period {
	return append([]Period(nil), r.periods...)
}

// Compute 为每个周期生成摘要；数据不足时退化为覆盖全部 K 线的 "(Partial)" 版本。
func (r *Rollup) Compute(v pattern.View) Report {
	out := Report{}
	n := v.Len()
	if n == 0 {
		logger.Warnf("rollup: no candles, skipping period metrics")
		return out
	}
	for _, p := range r.periods {
		label, size := p.Name, p.Candles
		if n < size {
			logger.Warnf("Insufficient data for %s metrics. Only %d candles available, need %d", p.Name, n, size)
			label, size = p.Name+" (Partial)", n
		}
		out[p.Name] = r.period(v.Slice(n-size, n), label)
	}
	return out
}

func (r *Rollup) period(w pattern.View, label string) PeriodMetrics {
	return PeriodMetrics{
		Metrics:          basic(w, label),
		IndicatorChanges: changes(w.History()),
		KeyLevels:        levels(w),
		Divergences:      r.divergences(w),
	}
}

func basic(w pattern.View, label string) Basic {
	s := w.Series()
	closes, highs, lows := s.Closes(), s.Highs(), s.Lows()
	_, _, hi, _, _ := mathx.MinMax(highs)
	lo, _, _, _, _ := mathx.MinMax(lows)

	total := decimal.Zero
	sum := decimal.Zero
	for i, vol := range s.Volumes() {
		total = total.Add(decimal.NewFromFloat(vol))
		sum = sum.Add(decimal.NewFromFloat(closes[i]))
	}
	count := decimal.NewFromInt(int64(len(closes)))
	first, last := closes[0], closes[len(closes)-1]
	return Basic{
		HighestPrice:       mathx.Float(hi),
		LowestPrice:        mathx.Float(lo),
		AvgPrice:           mathx.Float(sum.Div(count).InexactFloat64()),
		TotalVolume:        mathx.Float(total.InexactFloat64()),
		AvgVolume:          mathx.Float(total.Div(count).InexactFloat64()),
		PriceChange:        mathx.Float(last - first),
		PriceChangePercent: mathx.Float((mathx.SafeDiv(last, first) - 1) * 100),
		Volatility:         mathx.Float(mathx.SafeDiv(hi-lo, lo) * 100),
		Period:             label,
		DataPoints:         len(closes),
	}
}

// changes 对每个指标序列给出窗口首尾值与变化；任一端为 NaN 时跳过。
func changes(h indicator.History) map[string]mathx.Float {
	out := map[string]mathx.Float{}
	for _, key := range h.Keys() {
		values := h.Get(key)
		if len(values) == 0 {
			continue
		}
		start, end := values[0], values[len(values)-1]
		if !mathx.IsFinite(start) || !mathx.IsFinite(end) {
			continue
		}
		change := end - start
		pct := 0.0
		if start != 0 {
			pct = change / math.Abs(start) * 100
		}
		out[key+"_start"] = mathx.Float(start)
		out[key+"_end"] = mathx.Float(end)
		out[key+"_change"] = mathx.Float(change)
		out[key+"_change_pct"] = mathx.Float(pct)
	}
	return out
}

// levels 取当前价下方最近的 advanced_support、上方最近的 advanced_resistance，
// 没有时退回窗口最低价/最高价。
func levels(w pattern.View) Levels {
	s := w.Series()
	price := mathx.Last(s.Closes())
	lo, _, _, _, _ := mathx.MinMax(s.Lows())
	_, _, hi, _, _ := mathx.MinMax(s.Highs())
	out := Levels{Support: mathx.Float(lo), Resistance: mathx.Float(hi)}

	best := math.Inf(-1)
	for _, v := range w.Indicator("advanced_support") {
		if mathx.IsFinite(v) && v < price && v > best {
			best = v
		}
	}
	if !math.IsInf(best, -1) {
		out.Support = mathx.Float(best)
	}
	best = math.Inf(1)
	for _, v := range w.Indicator("advanced_resistance") {
		if mathx.IsFinite(v) && v > price && v < best {
			best = v
		}
	}
	if !math.IsInf(best, 1) {
		out.Resistance = mathx.Float(best)
	}
	return out
}

func (r *Rollup) divergences(w pattern.View) Divergences {
	var out Divergences
	if r.patterns == nil || w.Indicator("rsi") == nil {
		return out
	}
	for _, p := range r.patterns.AllPatterns(w) {
		kind := strings.ToLower(p.Type)
		if !strings.Contains(kind, "divergence") {
			continue
		}
		switch {
		case strings.Contains(kind, "bullish"):
			out.Bullish = true
		case strings.Contains(kind, "bearish"):
			out.Bearish = true
		}
	}
	return out
}
