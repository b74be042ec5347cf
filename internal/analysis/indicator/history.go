package indicator

import (
	"encoding/json"
	"errors"
	"math"
	"sort"

	"taengine/internal/pkg/mathx"
)

// ErrInsufficientData is returned for an empty series.
var ErrInsufficientData = errors.New("insufficient data")

// History maps each indicator name to a series aligned with the input
// candles. Scalar signals live separately in Signals.
// Series slices are shared; callers must not modify them.
type History struct {
	Len     int
	Series  map[string][]float64
	Signals map[string]float64
}

func newHistory(n int) History {
	return History{
		Len:     n,
		Series:  make(map[string][]float64, 80),
		Signals: make(map[string]float64, 2),
	}
}

func (h History) set(name string, series []float64) {
	h.Series[name] = series
}

// Get returns the named series or nil when absent.
func (h History) Get(name string) []float64 {
	return h.Series[name]
}

// Has reports whether the named series or signal exists.
func (h History) Has(name string) bool {
	if _, ok := h.Series[name]; ok {
		return true
	}
	_, ok := h.Signals[name]
	return ok
}

// Signal returns the scalar signal; 0 when absent.
func (h History) Signal(name string) float64 {
	return h.Signals[name]
}

// Latest 返回指定序列的最后一个有限值。
func (h History) Latest(name string) (float64, bool) {
	return mathx.LastValid(h.Series[name])
}

// Keys returns the sorted series names.
func (h History) Keys() []string {
	keys := make([]string, 0, len(h.Series))
	for k := range h.Series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Window copies the [from, to) slice of every series. Signals are kept as-is.
func (h History) Window(from, to int) History {
	if from < 0 {
		from = 0
	}
	if to > h.Len {
		to = h.Len
	}
	if from > to {
		from = to
	}
	out := newHistory(to - from)
	for k, s := range h.Series {
		w := make([]float64, to-from)
		for i := range w {
			w[i] = math.NaN()
		}
		if from < len(s) {
			copy(w, s[from:min(to, len(s))])
		}
		out.Series[k] = w
	}
	for k, v := range h.Signals {
		out.Signals[k] = v
	}
	return out
}

// ContainsAll reports whether every key is present.
func (h History) ContainsAll(keys []string) bool {
	for _, k := range keys {
		if !h.Has(k) {
			return false
		}
	}
	return true
}

type historyJSON struct {
	Len     int                      `json:"len"`
	Series  map[string][]mathx.Float `json:"series"`
	Signals map[string]float64       `json:"signals"`
}

// MarshalJSON encodes NaN values as null.
func (h History) MarshalJSON() ([]byte, error) {
	out := historyJSON{
		Len:     h.Len,
		Series:  make(map[string][]mathx.Float, len(h.Series)),
		Signals: h.Signals,
	}
	for k, s := range h.Series {
		out.Series[k] = mathx.Floats(s)
	}
	return json.Marshal(out)
}

func (h *History) UnmarshalJSON(b []byte) error {
	var in historyJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*h = newHistory(in.Len)
	for k, s := range in.Series {
		series := make([]float64, len(s))
		for i, v := range s {
			series[i] = float64(v)
		}
		h.Series[k] = series
	}
	for k, v := range in.Signals {
		if !math.IsNaN(v) {
			h.Signals[k] = v
		}
	}
	return nil
}
