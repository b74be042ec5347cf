package pattern

import (
	"slices"

	"taengine/internal/cache"
	"taengine/internal/logger"
	"taengine/internal/market"
	"taengine/internal/metrics"
)

type entry struct {
	category Category
	detector Detector
}

// Recognizer runs the fixed detector table and memoizes the merged result
// by series fingerprint. A detector panic only empties its own category.
type Recognizer struct {
	entries []entry
	metrics *metrics.Metrics
	slot    cache.Slot[market.Fingerprint, Categorized]
}

type Option func(*recognizerConfig)

type recognizerConfig struct {
	settings  Settings
	overrides map[Category]Detector
	metrics   *metrics.Metrics
}

// WithSettings replaces the detector thresholds.
func WithSettings(s Settings) Option {
	return func(c *recognizerConfig) { c.settings = s }
}

// WithDetector replaces the detector of one category.
func WithDetector(category Category, d Detector) Option {
	return func(c *recognizerConfig) { c.overrides[category] = d }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *recognizerConfig) { c.metrics = m }
}

func NewRecognizer(opts ...Option) *Recognizer {
	cfg := recognizerConfig{
		settings:  RecognizerSettings(),
		overrides: map[Category]Detector{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	s := cfg.settings.Normalize()
	defaults := map[Category]Detector{
		CategoryRSI:        NewRSIDetector(s.RSI),
		CategoryMACD:       NewMACDDetector(s.MACD),
		CategoryVolatility: NewVolatilityDetector(s.Volatility),
		CategoryDivergence: NewDivergenceDetector(s.Divergence),
		CategoryCrossover:  NewCrossoverDetector(s.Crossover),
	}
	r := &Recognizer{metrics: cfg.metrics}
	for cat, d := range cfg.overrides {
		if d == nil {
			logger.Warnf("pattern: nil detector for category %s, keeping default", cat)
			continue
		}
		if !slices.Contains(Categories, cat) {
			logger.Warnf("pattern: ignoring detector %q for unknown category %s", d.Name(), cat)
			continue
		}
		defaults[cat] = d
	}
	for _, cat := range Categories {
		r.entries = append(r.entries, entry{category: cat, detector: defaults[cat]})
	}
	return r
}

// ActiveDetectors lists detector names in category order.
func (r *Recognizer) ActiveDetectors() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.detector.Name()
	}
	return out
}

// DetectPatterns runs every detector over v.
func (r *Recognizer) DetectPatterns(v View) Categorized {
	if !v.HasData() {
		logger.Warnf("No market data available for pattern detection")
		return emptyCategorized()
	}
	fp := v.Fingerprint()
	if cached, ok := r.slot.Get(fp); ok {
		r.metrics.CacheLookup("patterns", true)
		logger.Debugf("pattern cache hit %s", fp)
		return cached.clone()
	}
	r.metrics.CacheLookup("patterns", false)

	out := emptyCategorized()
	for _, e := range r.entries {
		found := r.run(e, v)
		if len(found) > 0 {
			out[e.category] = found
		}
		r.metrics.PatternsFound(string(e.category), len(found))
	}
	r.slot.Put(fp, out)
	return out.clone()
}

// AllPatterns flattens DetectPatterns in category order.
func (r *Recognizer) AllPatterns(v View) []Pattern {
	return r.DetectPatterns(v).Flatten()
}

// Reset drops the memoized result.
func (r *Recognizer) Reset() { r.slot.Reset() }

func (r *Recognizer) run(e entry, v View) (out []Pattern) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Errorf("Error running detector '%s': %v", e.detector.Name(), rec)
			r.metrics.DetectorFailed(e.detector.Name())
			out = nil
		}
	}()
	return e.detector.Detect(v)
}
