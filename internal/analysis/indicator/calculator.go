package indicator

import (
	"time"

	"taengine/internal/cache"
	"taengine/internal/logger"
	"taengine/internal/market"
	"taengine/internal/metrics"
)

// DefaultRequiredKeys 缓存命中时必须存在的键。
var DefaultRequiredKeys = []string{
	"ichimoku_conversion",
	"ichimoku_base",
	"ichimoku_span_a",
	"ichimoku_span_b",
}

// ComputeFunc computes a full history.
type ComputeFunc func(market.Series, Settings) (History, error)

// Calculator memoizes the most recent ComputeAll result keyed by series fingerprint.
// A Calculator belongs to one symbol/interval; it is safe for concurrent use
// but switching series between calls evicts the previous result.
type Calculator struct {
	settings Settings
	required []string
	compute  ComputeFunc
	metrics  *metrics.Metrics
	slot     cache.Slot[market.Fingerprint, History]
}

type CalculatorOption func(*Calculator)

func WithRequiredKeys(keys ...string) CalculatorOption {
	return func(c *Calculator) { c.required = keys }
}

func WithComputeFunc(fn ComputeFunc) CalculatorOption {
	return func(c *Calculator) {
		if fn != nil {
			c.compute = fn
		}
	}
}

func WithMetrics(m *metrics.Metrics) CalculatorOption {
	return func(c *Calculator) { c.metrics = m }
}

func NewCalculator(settings Settings, opts ...CalculatorOption) *Calculator {
	c := &Calculator{
		settings: settings.Normalize(),
		required: DefaultRequiredKeys,
		compute:  ComputeAll,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calculator) Settings() Settings { return c.settings }

// GetOrCompute returns the cached history when the fingerprint matches and
// every required key is present; otherwise recomputes and replaces the slot.
// Errors are never cached.
func (c *Calculator) GetOrCompute(series market.Series) (History, error) {
	fp := series.Fingerprint()
	if h, ok := c.slot.Get(fp); ok {
		if h.ContainsAll(c.required) {
			c.metrics.CacheLookup("indicators", true)
			logger.Debugf("indicator cache hit %s", fp)
			return h, nil
		}
		logger.Debugf("indicator cache missing required keys, recalculating %s", fp)
	}
	c.metrics.CacheLookup("indicators", false)
	start := time.Now()
	h, err := c.compute(series, c.settings)
	if err != nil {
		return History{}, err
	}
	c.metrics.ObserveCompute(time.Since(start))
	c.slot.Put(fp, h)
	return h, nil
}

// Reset drops the cached history.
func (c *Calculator) Reset() { c.slot.Reset() }
