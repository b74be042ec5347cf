package indicator

// Settings 控制可调指标参数；零值经 Normalize 后得到默认值。
type Settings struct {
	RSI        RSISettings        `json:"rsi" toml:"rsi" yaml:"rsi"`
	MACD       MACDSettings       `json:"macd" toml:"macd" yaml:"macd"`
	Bollinger  BollingerSettings  `json:"bollinger" toml:"bollinger" yaml:"bollinger"`
	ATR        PeriodSettings     `json:"atr" toml:"atr" yaml:"atr"`
	ADX        PeriodSettings     `json:"adx" toml:"adx" yaml:"adx"`
	Stoch      StochSettings      `json:"stoch" toml:"stoch" yaml:"stoch"`
	Supertrend SupertrendSettings `json:"supertrend" toml:"supertrend" yaml:"supertrend"`
	Ichimoku   IchimokuSettings   `json:"ichimoku" toml:"ichimoku" yaml:"ichimoku"`
}

type RSISettings struct {
	Period int `json:"period,omitempty" toml:"period" yaml:"period"`
}

type PeriodSettings struct {
	Period int `json:"period,omitempty" toml:"period" yaml:"period"`
}

type MACDSettings struct {
	Fast   int `json:"fast,omitempty" toml:"fast" yaml:"fast"`
	Slow   int `json:"slow,omitempty" toml:"slow" yaml:"slow"`
	Signal int `json:"signal,omitempty" toml:"signal" yaml:"signal"`
}

type BollingerSettings struct {
	Period int     `json:"period,omitempty" toml:"period" yaml:"period"`
	StdDev float64 `json:"std_dev,omitempty" toml:"std_dev" yaml:"std_dev"`
}

type StochSettings struct {
	K       int `json:"k,omitempty" toml:"k" yaml:"k"`
	SmoothK int `json:"smooth_k,omitempty" toml:"smooth_k" yaml:"smooth_k"`
	D       int `json:"d,omitempty" toml:"d" yaml:"d"`
}

type SupertrendSettings struct {
	Period     int     `json:"period,omitempty" toml:"period" yaml:"period"`
	Multiplier float64 `json:"multiplier,omitempty" toml:"multiplier" yaml:"multiplier"`
}

type IchimokuSettings struct {
	Conversion   int `json:"conversion,omitempty" toml:"conversion" yaml:"conversion"`
	Base         int `json:"base,omitempty" toml:"base" yaml:"base"`
	SpanB        int `json:"span_b,omitempty" toml:"span_b" yaml:"span_b"`
	Displacement int `json:"displacement,omitempty" toml:"displacement" yaml:"displacement"`
}

// DefaultSettings returns the normalized zero value.
func DefaultSettings() Settings {
	return Settings{}.Normalize()
}

// Normalize fills every non-positive field with its default.
func (s Settings) Normalize() Settings {
	out := s
	if out.RSI.Period <= 0 {
		out.RSI.Period = 14
	}
	if out.MACD.Fast <= 0 {
		out.MACD.Fast = 12
	}
	if out.MACD.Slow <= 0 {
		out.MACD.Slow = 26
	}
	if out.MACD.Signal <= 0 {
		out.MACD.Signal = 9
	}
	if out.Bollinger.Period <= 0 {
		out.Bollinger.Period = 20
	}
	if out.Bollinger.StdDev <= 0 {
		out.Bollinger.StdDev = 2
	}
	if out.ATR.Period <= 0 {
		out.ATR.Period = 14
	}
	if out.ADX.Period <= 0 {
		out.ADX.Period = 14
	}
	if out.Stoch.K <= 0 {
		out.Stoch.K = 14
	}
	if out.Stoch.SmoothK <= 0 {
		out.Stoch.SmoothK = 3
	}
	if out.Stoch.D <= 0 {
		out.Stoch.D = 3
	}
	if out.Supertrend.Period <= 0 {
		out.Supertrend.Period = 10
	}
	if out.Supertrend.Multiplier <= 0 {
		out.Supertrend.Multiplier = 3
	}
	if out.Ichimoku.Conversion <= 0 {
		out.Ichimoku.Conversion = 9
	}
	if out.Ichimoku.Base <= 0 {
		out.Ichimoku.Base = 26
	}
	if out.Ichimoku.SpanB <= 0 {
		out.Ichimoku.SpanB = 52
	}
	if out.Ichimoku.Displacement <= 0 {
		out.Ichimoku.Displacement = 26
	}
	return out
}

// 以下周期固定，不对外暴露配置。
const (
	williamsPeriod   = 14
	rocPeriod        = 10
	tsiLong          = 25
	tsiShort         = 13
	rmiPeriod        = 14
	rmiMomentum      = 5
	ppoFast          = 12
	ppoSlow          = 26
	uoShort          = 7
	uoMid            = 14
	uoLong           = 28
	trixPeriod       = 18
	pfePeriod        = 10
	pfeSmooth        = 10
	vortexPeriod     = 14
	sarAcceleration  = 0.02
	sarMaximum       = 0.2
	chandelierPeriod = 22
	chandelierMult   = 3.0
	vwapPeriod       = 14
	twapPeriod       = 14
	mfiPeriod        = 14
	cmfPeriod        = 20
	forcePeriod      = 13
	kurtosisPeriod   = 30
	zscorePeriod     = 20
	hurstMaxLag      = 20
	hurstWindow      = 100
	basicSRPeriod    = 30
	advancedSRPeriod = 25
	srStrength       = 1
	srVolumeFactor   = 1.5
	srPriceFactor    = 0.004
	fibPeriod        = 20
	bandProximity    = 0.02
)
