package pattern

import (
	"errors"
	"fmt"
)

// Settings groups every detector's thresholds.
// A zero field means "use the default"; a threshold of exactly 0 cannot be
// configured. Negative values are rejected by Validate.
type Settings struct {
	RSI        RSISettings        `json:"rsi" toml:"rsi" yaml:"rsi"`
	MACD       MACDSettings       `json:"macd" toml:"macd" yaml:"macd"`
	Divergence DivergenceSettings `json:"divergence" toml:"divergence" yaml:"divergence"`
	Volatility VolatilitySettings `json:"volatility" toml:"volatility" yaml:"volatility"`
	Crossover  CrossoverSettings  `json:"crossover" toml:"crossover" yaml:"crossover"`
}

type RSISettings struct {
	Overbought              float64 `json:"overbought" toml:"overbought" yaml:"overbought"`
	Oversold                float64 `json:"oversold" toml:"oversold" yaml:"oversold"`
	WBottomThreshold        float64 `json:"w_bottom_threshold" toml:"w_bottom_threshold" yaml:"w_bottom_threshold"`
	MTopThreshold           float64 `json:"m_top_threshold" toml:"m_top_threshold" yaml:"m_top_threshold"`
	BottomSimilarity        float64 `json:"bottom_similarity" toml:"bottom_similarity" yaml:"bottom_similarity"`
	PeakSimilarity          float64 `json:"peak_similarity" toml:"peak_similarity" yaml:"peak_similarity"`
	IntermediatePeakRatio   float64 `json:"intermediate_peak_ratio" toml:"intermediate_peak_ratio" yaml:"intermediate_peak_ratio"`
	IntermediateTroughRatio float64 `json:"intermediate_trough_ratio" toml:"intermediate_trough_ratio" yaml:"intermediate_trough_ratio"`
	Window                  int     `json:"window" toml:"window" yaml:"window"`
	MinHistory              int     `json:"min_history" toml:"min_history" yaml:"min_history"`
	MinSeparation           int     `json:"min_separation" toml:"min_separation" yaml:"min_separation"`
	MaxHorizon              int     `json:"max_horizon" toml:"max_horizon" yaml:"max_horizon"`
}

type MACDSettings struct {
	SignalLookback int `json:"signal_lookback" toml:"signal_lookback" yaml:"signal_lookback"`
	Window         int `json:"window" toml:"window" yaml:"window"`
	MinHistory     int `json:"min_history" toml:"min_history" yaml:"min_history"`
}

type DivergenceSettings struct {
	Window            int `json:"window" toml:"window" yaml:"window"`
	PriceLookback     int `json:"price_lookback" toml:"price_lookback" yaml:"price_lookback"`
	ShortTermLookback int `json:"short_term_lookback" toml:"short_term_lookback" yaml:"short_term_lookback"`
	MinHistory        int `json:"min_history" toml:"min_history" yaml:"min_history"`
}

type VolatilitySettings struct {
	SignificantChangeThreshold float64 `json:"significant_change_threshold" toml:"significant_change_threshold" yaml:"significant_change_threshold"`
	SpikeThreshold             float64 `json:"spike_threshold" toml:"spike_threshold" yaml:"spike_threshold"`
	HighVolatilityRatio        float64 `json:"high_volatility_ratio" toml:"high_volatility_ratio" yaml:"high_volatility_ratio"`
	LowVolatilityRatio         float64 `json:"low_volatility_ratio" toml:"low_volatility_ratio" yaml:"low_volatility_ratio"`
	AboveAverageRatio          float64 `json:"above_average_ratio" toml:"above_average_ratio" yaml:"above_average_ratio"`
	Window                     int     `json:"window" toml:"window" yaml:"window"`
	MinHistory                 int     `json:"min_history" toml:"min_history" yaml:"min_history"`
	RegimeWindow               int     `json:"regime_window" toml:"regime_window" yaml:"regime_window"`
}

type CrossoverSettings struct {
	LookbackPeriods int `json:"lookback_periods" toml:"lookback_periods" yaml:"lookback_periods"`
	MinHistory      int `json:"min_history" toml:"min_history" yaml:"min_history"`
}

// DefaultSettings 为各检测器的通用默认值。
func DefaultSettings() Settings { return Settings{}.Normalize() }

// RecognizerSettings are the defaults the recognizer wires: the RSI
// W-bottom threshold is 30 and trough similarity 2.0.
func RecognizerSettings() Settings {
	s := DefaultSettings()
	s.RSI.WBottomThreshold = 30
	s.RSI.BottomSimilarity = 2
	return s
}

func (s Settings) Normalize() Settings {
	return Settings{
		RSI:        s.RSI.Normalize(),
		MACD:       s.MACD.Normalize(),
		Divergence: s.Divergence.Normalize(),
		Volatility: s.Volatility.Normalize(),
		Crossover:  s.Crossover.Normalize(),
	}
}

// Validate rejects inconsistent thresholds.
func (s Settings) Validate() error {
	n := s.Normalize()
	errs := negativeFields(s)
	if n.RSI.Oversold >= n.RSI.Overbought {
		errs = append(errs, fmt.Errorf("rsi: oversold %.1f must be below overbought %.1f", n.RSI.Oversold, n.RSI.Overbought))
	}
	if n.RSI.MinSeparation >= n.RSI.MaxHorizon {
		errs = append(errs, fmt.Errorf("rsi: min_separation %d must be below max_horizon %d", n.RSI.MinSeparation, n.RSI.MaxHorizon))
	}
	if n.Volatility.LowVolatilityRatio >= n.Volatility.HighVolatilityRatio {
		errs = append(errs, fmt.Errorf("volatility: low ratio %.2f must be below high ratio %.2f", n.Volatility.LowVolatilityRatio, n.Volatility.HighVolatilityRatio))
	}
	if n.Divergence.ShortTermLookback < 2 {
		errs = append(errs, fmt.Errorf("divergence: short_term_lookback must be at least 2"))
	}
	return errors.Join(errs...)
}

func (s RSISettings) Normalize() RSISettings {
	out := s
	setFloat(&out.Overbought, 70)
	setFloat(&out.Oversold, 30)
	setFloat(&out.WBottomThreshold, 35)
	setFloat(&out.MTopThreshold, 65)
	setFloat(&out.BottomSimilarity, 5)
	setFloat(&out.PeakSimilarity, 5)
	setFloat(&out.IntermediatePeakRatio, 1.15)
	setFloat(&out.IntermediateTroughRatio, 0.85)
	setInt(&out.Window, 30)
	setInt(&out.MinHistory, 14)
	setInt(&out.MinSeparation, 5)
	setInt(&out.MaxHorizon, 15)
	return out
}

func (s MACDSettings) Normalize() MACDSettings {
	out := s
	setInt(&out.SignalLookback, 10)
	setInt(&out.Window, 30)
	setInt(&out.MinHistory, 2)
	return out
}

func (s DivergenceSettings) Normalize() DivergenceSettings {
	out := s
	setInt(&out.Window, 30)
	setInt(&out.PriceLookback, 14)
	setInt(&out.ShortTermLookback, 5)
	setInt(&out.MinHistory, 14)
	return out
}

func (s VolatilitySettings) Normalize() VolatilitySettings {
	out := s
	setFloat(&out.SignificantChangeThreshold, 20)
	setFloat(&out.SpikeThreshold, 30)
	setFloat(&out.HighVolatilityRatio, 1.3)
	setFloat(&out.LowVolatilityRatio, 0.7)
	setFloat(&out.AboveAverageRatio, 1.2)
	setInt(&out.Window, 30)
	setInt(&out.MinHistory, 14)
	setInt(&out.RegimeWindow, 50)
	return out
}

func (s CrossoverSettings) Normalize() CrossoverSettings {
	out := s
	setInt(&out.LookbackPeriods, 5)
	setInt(&out.MinHistory, 5)
	return out
}

func setFloat(v *float64, def float64) {
	if *v <= 0 {
		*v = def
	}
}

func setInt(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

// negativeFields 列出所有被配置为负数的字段。
func negativeFields(s Settings) []error {
	floats := []struct {
		name string
		v    float64
	}{
		{"rsi.overbought", s.RSI.Overbought},
		{"rsi.oversold", s.RSI.Oversold},
		{"rsi.w_bottom_threshold", s.RSI.WBottomThreshold},
		{"rsi.m_top_threshold", s.RSI.MTopThreshold},
		{"rsi.bottom_similarity", s.RSI.BottomSimilarity},
		{"rsi.peak_similarity", s.RSI.PeakSimilarity},
		{"rsi.intermediate_peak_ratio", s.RSI.IntermediatePeakRatio},
		{"rsi.intermediate_trough_ratio", s.RSI.IntermediateTroughRatio},
		{"volatility.significant_change_threshold", s.Volatility.SignificantChangeThreshold},
		{"volatility.spike_threshold", s.Volatility.SpikeThreshold},
		{"volatility.high_volatility_ratio", s.Volatility.HighVolatilityRatio},
		{"volatility.low_volatility_ratio", s.Volatility.LowVolatilityRatio},
		{"volatility.above_average_ratio", s.Volatility.AboveAverageRatio},
	}
	ints := []struct {
		name string
		v    int
	}{
		{"rsi.window", s.RSI.Window},
		{"rsi.min_history", s.RSI.MinHistory},
		{"rsi.min_separation", s.RSI.MinSeparation},
		{"rsi.max_horizon", s.RSI.MaxHorizon},
		{"macd.signal_lookback", s.MACD.SignalLookback},
		{"macd.window", s.MACD.Window},
		{"macd.min_history", s.MACD.MinHistory},
		{"divergence.window", s.Divergence.Window},
		{"divergence.price_lookback", s.Divergence.PriceLookback},
		{"divergence.short_term_lookback", s.Divergence.ShortTermLookback},
		{"divergence.min_history", s.Divergence.MinHistory},
		{"volatility.window", s.Volatility.Window},
		{"volatility.min_history", s.Volatility.MinHistory},
		{"volatility.regime_window", s.Volatility.RegimeWindow},
		{"crossover.lookback_periods", s.Crossover.LookbackPeriods},
		{"crossover.min_history", s.Crossover.MinHistory},
	}
	var errs []error
	for _, f := range floats {
		if f.v < 0 {
			errs = append(errs, fmt.Errorf("%s: must not be negative, got %g", f.name, f.v))
		}
	}
	for _, f := range ints {
		if f.v < 0 {
			errs = append(errs, fmt.Errorf("%s: must not be negative, got %d", f.name, f.v))
		}
	}
	return errs
}
