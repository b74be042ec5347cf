package indicator

import (
	"errors"
	"testing"

	"taengine/internal/market"
)

func countingCompute(calls *int) ComputeFunc {
	return func(s market.Series, st Settings) (History, error) {
		*calls++
		return ComputeAll(s, st)
	}
}

func TestCalculatorCachesSameSeries(t *testing.T) {
	calls := 0
	c := NewCalculator(Settings{}, WithComputeFunc(countingCompute(&calls)))
	s := synthetic(t, 60)

	first, err := c.GetOrCompute(s)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.GetOrCompute(s)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("compute calls = %d, want 1", calls)
	}
	if !sameSeries(first.Get("rsi"), second.Get("rsi")) {
		t.Fatalf("cached history differs")
	}

	if _, err := c.GetOrCompute(synthetic(t, 61)); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("new series should recompute, calls = %d", calls)
	}
}

func TestCalculatorRecomputesWhenLastCandleChanges(t *testing.T) {
	calls := 0
	c := NewCalculator(Settings{}, WithComputeFunc(countingCompute(&calls)))
	base := synthetic(t, 60)
	before, err := c.GetOrCompute(base)
	if err != nil {
		t.Fatal(err)
	}

	candles := base.Candles()
	candles[len(candles)-1].Close += 5
	candles[len(candles)-1].High += 5
	updated, err := market.NewSeries(candles)
	if err != nil {
		t.Fatal(err)
	}
	after, err := c.GetOrCompute(updated)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("changed last candle should recompute, calls = %d", calls)
	}
	if after.Len != before.Len {
		t.Fatalf("length changed: %d vs %d", after.Len, before.Len)
	}
	last := len(candles) - 1
	if after.Get("sma_20")[last] == before.Get("sma_20")[last] {
		t.Fatalf("sma_20 should reflect the updated close")
	}

	if _, err := c.GetOrCompute(updated); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("same updated series should hit the cache, calls = %d", calls)
	}
}

func TestCalculatorRecomputesWhenRequiredKeysMissing(t *testing.T) {
	calls := 0
	partial := func(s market.Series, st Settings) (History, error) {
		calls++
		h := newHistory(s.Len())
		h.set("rsi", make([]float64, s.Len()))
		return h, nil
	}
	c := NewCalculator(Settings{}, WithComputeFunc(partial))
	s := synthetic(t, 20)
	for i := 0; i < 3; i++ {
		if _, err := c.GetOrCompute(s); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}

	calls = 0
	c = NewCalculator(Settings{}, WithComputeFunc(partial), WithRequiredKeys("rsi"))
	for i := 0; i < 3; i++ {
		if _, err := c.GetOrCompute(s); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Fatalf("calls with satisfied keys = %d, want 1", calls)
	}
}

func TestCalculatorDoesNotCacheErrors(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	c := NewCalculator(Settings{}, WithComputeFunc(func(market.Series, Settings) (History, error) {
		calls++
		return History{}, boom
	}))
	s := synthetic(t, 10)
	for i := 0; i < 2; i++ {
		if _, err := c.GetOrCompute(s); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("errors must not be cached, calls = %d", calls)
	}
}

func TestCalculatorEmptySeries(t *testing.T) {
	c := NewCalculator(Settings{})
	if _, err := c.GetOrCompute(market.Series{}); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}
