// Package engine 把指标计算、形态识别与周期汇总串成一次分析。
package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taengine/internal/analysis/indicator"
	rollup "taengine/internal/analysis/metrics"
	"taengine/internal/analysis/pattern"
	"taengine/internal/logger"
	"taengine/internal/market"
	"taengine/internal/metrics"
	"taengine/internal/pkg/mathx"
)

type Options struct {
	Indicators indicator.Settings
	Patterns   pattern.Settings
	Periods    []rollup.Period
	Metrics    *metrics.Metrics
}

// Result 一次分析的完整输出，交给展示层使用。
type Result struct {
	RunID       string                      `json:"run_id"`
	Symbol      string                      `json:"symbol"`
	Interval    string                      `json:"interval"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Candles     int                         `json:"candles"`
	LastClose   mathx.Float                 `json:"last_close"`
	Patterns    pattern.Categorized         `json:"patterns"`
	Periods     rollup.Report               `json:"periods"`
	Latest      map[string]mathx.Float      `json:"latest"`
	Signals     map[string]float64          `json:"signals"`
	LongTerm    *indicator.LongTermSnapshot `json:"long_term,omitempty"`
}

// Engine serves exactly one symbol/interval. Each cache holds a single
// fingerprint, so an Engine is used by one analysis at a time.
type Engine struct {
	symbol   string
	interval string

	mu         sync.Mutex
	settings   indicator.Settings
	calc       *indicator.Calculator
	recognizer *pattern.Recognizer
	rollup     *rollup.Rollup
	metrics    *metrics.Metrics
}

func New(symbol, interval string, opts Options) *Engine {
	settings := opts.Indicators.Normalize()
	patterns := opts.Patterns
	if patterns == (pattern.Settings{}) {
		patterns = pattern.RecognizerSettings()
	}
	// 周期汇总使用独立的 recognizer，避免切片视图挤掉全量结果的缓存。
	periodPatterns := pattern.NewRecognizer(pattern.WithSettings(patterns))
	return &Engine{
		symbol:     symbol,
		interval:   interval,
		settings:   settings,
		calc:       indicator.NewCalculator(settings, indicator.WithMetrics(opts.Metrics)),
		recognizer: pattern.NewRecognizer(pattern.WithSettings(patterns), pattern.WithMetrics(opts.Metrics)),
		rollup:     rollup.NewRollup(opts.Periods, periodPatterns),
		metrics:    opts.Metrics,
	}
}

func (e *Engine) Symbol() string   { return e.symbol }
func (e *Engine) Interval() string { return e.interval }

// Analyze runs the full pipeline over series. Insufficient data yields
// empty patterns and periods rather than an error.
func (e *Engine) Analyze(series market.Series) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	defer func() { e.metrics.ObserveAnalysis(time.Since(start)) }()

	res := Result{
		RunID:       uuid.NewString(),
		Symbol:      e.symbol,
		Interval:    e.interval,
		GeneratedAt: time.Now().UTC(),
		Candles:     series.Len(),
		LastClose:   mathx.Float(mathx.Last(series.Closes())),
		Latest:      map[string]mathx.Float{},
		Signals:     map[string]float64{},
	}

	hist, err := e.calc.GetOrCompute(series)
	switch {
	case errors.Is(err, indicator.ErrInsufficientData):
		logger.Warnf("engine %s@%s: %v", e.symbol, e.interval, err)
		hist = indicator.History{}
	case err != nil:
		return Result{}, fmt.Errorf("analyze %s@%s: %w", e.symbol, e.interval, err)
	}

	view := pattern.NewView(series, hist)
	res.Patterns = e.recognizer.DetectPatterns(view)
	res.Periods = e.rollup.Compute(view)
	for _, k := range hist.Keys() {
		if v, ok := hist.Latest(k); ok {
			res.Latest[k] = mathx.Float(v)
		}
	}
	for k, v := range hist.Signals {
		res.Signals[k] = v
	}
	if isDaily(e.interval) && !series.Empty() {
		lt := indicator.LongTerm(series, e.settings)
		res.LongTerm = &lt
	}
	logger.With("run_id", res.RunID, "symbol", e.symbol, "interval", e.interval).
		Info("analysis finished", "candles", res.Candles, "patterns", res.Patterns.Count(), "took", time.Since(start))
	return res, nil
}

// Reset drops every memoized result.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calc.Reset()
	e.recognizer.Reset()
}

func isDaily(interval string) bool {
	switch strings.ToLower(interval) {
	case "1d", "d", "daily":
		return true
	}
	return false
}
