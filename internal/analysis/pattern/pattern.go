package pattern

import (
	"encoding/json"
	"fmt"
	"time"

	"taengine/internal/pkg/mathx"
)

// Pattern 是检测结果：公共头部加上按家族区分的 Details。
type Pattern struct {
	Type        string
	Description string
	Timestamp   *time.Time
	// Index is the candle index the pattern refers to; -1 when none.
	Index   int
	Details Details
}

// Details is implemented only by the family types in this package.
type Details interface {
	Family() Family
}

type Family string

const (
	FamilyThreshold       Family = "threshold"
	FamilyCrossover       Family = "crossover"
	FamilyDivergence      Family = "divergence"
	FamilyDoubleExtreme   Family = "double_extreme"
	FamilyVolatilityTrend Family = "volatility_trend"
	FamilyVolatilityLevel Family = "volatility_level"
	FamilyVolatilitySpike Family = "volatility_spike"
)

// Run is one contiguous threshold excursion; indices are candle indices.
type Run struct {
	Start    int         `json:"start"`
	End      int         `json:"end"`
	Duration int         `json:"duration"`
	Extreme  mathx.Float `json:"extreme"`
	Active   bool        `json:"active"`
}

type ThresholdDetails struct {
	Condition string      `json:"condition"`
	Threshold mathx.Float `json:"threshold"`
	Runs      []Run       `json:"periods"`
}

type CrossoverDetails struct {
	Direction   Direction   `json:"direction"`
	PeriodsAgo  int         `json:"periods_ago"`
	Value       mathx.Float `json:"value"`
	MACDValue   *float64    `json:"macd_value,omitempty"`
	SignalValue *float64    `json:"signal_value,omitempty"`
	ADXValue    *float64    `json:"adx_value,omitempty"`
}

type DivergenceDetails struct {
	Indicator           string      `json:"indicator"`
	Method              string      `json:"method"` // classic | short_term
	Direction           Direction   `json:"direction"`
	PriceIndex          int         `json:"price_extreme_idx"`
	IndicatorIndex      int         `json:"indicator_extreme_idx"`
	PeriodsAgo          int         `json:"periods_ago"`
	PriceValue          mathx.Float `json:"price_value"`
	IndicatorValue      mathx.Float `json:"indicator_value"`
	PriorPriceValue     mathx.Float `json:"prior_price_value"`
	PriorIndicatorValue mathx.Float `json:"prior_indicator_value"`
}

type DoubleExtremeDetails struct {
	Shape        string      `json:"shape"` // w_bottom | m_top
	FirstIndex   int         `json:"first_idx"`
	SecondIndex  int         `json:"second_idx"`
	Value1       mathx.Float `json:"value1"`
	Value2       mathx.Float `json:"value2"`
	Intermediate mathx.Float `json:"intermediate"`
}

type VolatilityTrendDetails struct {
	StartValue      mathx.Float `json:"start_value"`
	EndValue        mathx.Float `json:"end_value"`
	PercentChange   mathx.Float `json:"percent_change"`
	Trend           string      `json:"trend"`
	AnalyzedPeriods int         `json:"analyzed_periods"`
}

type VolatilityLevelDetails struct {
	Current mathx.Float `json:"current"`
	Average mathx.Float `json:"average"`
	Ratio   mathx.Float `json:"ratio"`
	Window  int         `json:"window"`
}

type VolatilitySpikeDetails struct {
	PeriodsAgo    int         `json:"periods_ago"`
	Before        mathx.Float `json:"before"`
	After         mathx.Float `json:"after"`
	PercentChange mathx.Float `json:"percent_change"`
}

func (ThresholdDetails) Family() Family       { return FamilyThreshold }
func (CrossoverDetails) Family() Family       { return FamilyCrossover }
func (DivergenceDetails) Family() Family      { return FamilyDivergence }
func (DoubleExtremeDetails) Family() Family   { return FamilyDoubleExtreme }
func (VolatilityTrendDetails) Family() Family { return FamilyVolatilityTrend }
func (VolatilityLevelDetails) Family() Family { return FamilyVolatilityLevel }
func (VolatilitySpikeDetails) Family() Family { return FamilyVolatilitySpike }

// newPattern 按 index 填充时间戳并格式化描述；日志由调用方记录。
func newPattern(v View, kind string, index int, details Details, format string, args ...any) Pattern {
	p := Pattern{
		Type:        kind,
		Description: fmt.Sprintf(format, args...),
		Index:       index,
		Details:     details,
	}
	if ts, ok := v.TimestampAt(index); ok {
		p.Timestamp = &ts
	}
	return p
}

// MarshalJSON flattens the header and the family fields into one object.
func (p Pattern) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if p.Details != nil {
		raw, err := json.Marshal(p.Details)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		out["family"] = p.Details.Family()
	}
	out["type"] = p.Type
	out["description"] = p.Description
	out["index"] = p.Index
	if p.Timestamp != nil {
		out["timestamp"] = p.Timestamp.UTC().Format(time.RFC3339)
	} else {
		out["timestamp"] = nil
	}
	return json.Marshal(out)
}
