package indicator

// Threshold 是指标的参考阈值（名称 -> 数值）。
type Threshold map[string]float64

// Thresholds returns the reference levels used when interpreting indicators.
func Thresholds() map[string]Threshold {
	return map[string]Threshold{
		"rsi":        {"oversold": 30, "overbought": 70},
		"stoch_k":    {"oversold": 20, "overbought": 80},
		"stoch_d":    {"oversold": 20, "overbought": 80},
		"williams_r": {"oversold": -80, "overbought": -20},
		"adx":        {"weak": 25, "strong": 50, "very_strong": 75},
		"mfi":        {"oversold": 20, "overbought": 80},
		"bb_width":   {"tight": 2, "wide": 10},
	}
}
