package indicator

import (
	"math"

	"taengine/internal/market"
	"taengine/internal/pkg/mathx"
)

// LongTermSnapshot summarizes a daily series. Optional fields are nil when
// there is not enough history.
type LongTermSnapshot struct {
	AvailableDays int             `json:"available_days"`
	SMA           map[int]float64 `json:"sma_values"`
	VolumeSMA     map[int]float64 `json:"volume_sma_values"`
	PriceChange   *float64        `json:"price_change"`
	VolumeChange  *float64        `json:"volume_change"`
	Volatility    *float64        `json:"volatility"`

	RSI      *float64 `json:"daily_rsi"`
	ATR      *float64 `json:"daily_atr"`
	ADX      *float64 `json:"daily_adx"`
	PlusDI   *float64 `json:"daily_plus_di"`
	MinusDI  *float64 `json:"daily_minus_di"`
	OBV      *float64 `json:"daily_obv"`
	MACDLine *float64 `json:"daily_macd_line"`
	MACDSig  *float64 `json:"daily_macd_signal"`
	MACDHist *float64 `json:"daily_macd_hist"`

	IchimokuConversion *float64 `json:"daily_ichimoku_conversion"`
	IchimokuBase       *float64 `json:"daily_ichimoku_base"`
	IchimokuSpanA      *float64 `json:"daily_ichimoku_span_a"`
	IchimokuSpanB      *float64 `json:"daily_ichimoku_span_b"`
}

var longTermSMAPeriods = []int{20, 50, 100, 200}

// LongTerm 计算日线级别的长期指标快照。
func LongTerm(series market.Series, settings Settings) LongTermSnapshot {
	n := series.Len()
	snap := LongTermSnapshot{
		AvailableDays: n,
		SMA:           map[int]float64{},
		VolumeSMA:     map[int]float64{},
	}
	if n == 0 {
		return snap
	}
	closes := series.Closes()
	vols := series.Volumes()
	for _, p := range longTermSMAPeriods {
		if n < p {
			continue
		}
		if v, ok := mathx.LastValid(smaSeries(closes, p)); ok {
			snap.SMA[p] = v
		}
		if v, ok := mathx.LastValid(smaSeries(vols, p)); ok {
			snap.VolumeSMA[p] = v
		}
	}
	if n >= 2 {
		snap.PriceChange = mathx.Opt((mathx.SafeDiv(closes[n-1], closes[0]) - 1) * 100)
		snap.VolumeChange = mathx.Opt((vols[n-1]/math.Max(vols[0], 1) - 1) * 100)
	}
	if n >= 7 {
		returns := make([]float64, 0, n-1)
		for i := 1; i < n; i++ {
			if r := mathx.SafeDiv(closes[i]-closes[i-1], closes[i-1]); mathx.IsFinite(r) {
				returns = append(returns, r)
			}
		}
		if len(returns) > 0 {
			snap.Volatility = mathx.Opt(stdDev(returns) * 100)
		}
	}
	if n < 14 {
		return snap
	}
	h, err := ComputeAll(series, settings)
	if err != nil {
		return snap
	}
	last := func(key string) *float64 {
		v := mathx.Last(h.Get(key))
		return mathx.Opt(v)
	}
	snap.RSI = last("rsi")
	snap.ATR = last("atr")
	snap.ADX = last("adx")
	snap.PlusDI = last("plus_di")
	snap.MinusDI = last("minus_di")
	snap.OBV = last("obv")
	if n >= 26 {
		snap.MACDLine = last("macd_line")
		snap.MACDSig = last("macd_signal")
		snap.MACDHist = last("macd_hist")
	}
	if n >= 52 {
		snap.IchimokuConversion = last("ichimoku_conversion")
		snap.IchimokuBase = last("ichimoku_base")
		if v, ok := h.Latest("ichimoku_span_a"); ok {
			snap.IchimokuSpanA = mathx.Opt(v)
		}
		if v, ok := h.Latest("ichimoku_span_b"); ok {
			snap.IchimokuSpanB = mathx.Opt(v)
		}
	}
	return snap
}
