package pattern

// Detector 是无状态的形态检测器。数据缺失或长度不足时返回空结果，不返回错误。
type Detector interface {
	Name() string
	Detect(View) []Pattern
}

type Category string

const (
	CategoryRSI        Category = "rsi_patterns"
	CategoryMACD       Category = "macd_signals"
	CategoryVolatility Category = "volatility_changes"
	CategoryDivergence Category = "price_divergences"
	CategoryCrossover  Category = "significant_crossovers"
)

// Categories is the fixed detector order.
var Categories = []Category{
	CategoryRSI,
	CategoryMACD,
	CategoryVolatility,
	CategoryDivergence,
	CategoryCrossover,
}

// Categorized always holds every category key, possibly with an empty list.
type Categorized map[Category][]Pattern

func emptyCategorized() Categorized {
	out := make(Categorized, len(Categories))
	for _, c := range Categories {
		out[c] = []Pattern{}
	}
	return out
}

// Flatten returns all patterns in category order.
func (c Categorized) Flatten() []Pattern {
	var out []Pattern
	for _, cat := range Categories {
		out = append(out, c[cat]...)
	}
	return out
}

// Count is the total number of patterns.
func (c Categorized) Count() int {
	n := 0
	for _, ps := range c {
		n += len(ps)
	}
	return n
}

func (c Categorized) clone() Categorized {
	out := make(Categorized, len(c))
	for k, v := range c {
		out[k] = append([]Pattern{}, v...)
	}
	return out
}
