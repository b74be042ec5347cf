package market

import (
	"errors"
	"strings"
	"testing"
)

func rows(n int) [][]float64 {
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		p := 100 + float64(i)
		out[i] = []float64{float64(1_700_000_000_000 + int64(i)*3_600_000), p, p + 1, p - 1, p + 0.5, 10}
	}
	return out
}

func TestFromRows_Valid(t *testing.T) {
	s, err := FromRows(rows(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 5 {
		t.Fatalf("expected 5 candles, got %d", s.Len())
	}
	if got := s.Closes()[4]; got != 104.5 {
		t.Errorf("close[4]: got %v, want 104.5", got)
	}
	ts, ok := s.Timestamp(1)
	if !ok || ts.UnixMilli() != 1_700_003_600_000 {
		t.Errorf("timestamp[1]: got %v ok=%v", ts, ok)
	}
	if _, ok := s.Timestamp(5); ok {
		t.Error("expected out-of-range timestamp lookup to fail")
	}
}

func TestFromRows_Malformed(t *testing.T) {
	cases := map[string][][]float64{
		"short row":       {{1, 2, 3}},
		"fractional ts":   {{1.5, 1, 1, 1, 1, 1}},
		"decreasing time": {{2000, 1, 1, 1, 1, 1}, {1000, 1, 1, 1, 1, 1}},
	}
	for name, rs := range cases {
		if _, err := FromRows(rs); !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: expected ErrMalformed, got %v", name, err)
		}
	}
}

func TestSeries_IsImmutable(t *testing.T) {
	candles := []Candle{{OpenTime: 1, Close: 1}, {OpenTime: 2, Close: 2}}
	s, err := NewSeries(candles)
	if err != nil {
		t.Fatal(err)
	}
	candles[1].Close = 99
	if s.At(1).Close != 2 {
		t.Fatal("series must not alias the caller's slice")
	}
	out := s.Candles()
	out[0].Close = 42
	if s.At(0).Close != 1 {
		t.Fatal("Candles() must return a copy")
	}
}

func TestFingerprint(t *testing.T) {
	base, _ := FromRows(rows(10))
	same, _ := FromRows(rows(10))
	if base.Fingerprint() != same.Fingerprint() {
		t.Fatal("identical content must share a fingerprint")
	}

	changedLast := rows(10)
	changedLast[9][4] += 0.01
	s2, _ := FromRows(changedLast)
	if base.Fingerprint() == s2.Fingerprint() {
		t.Error("last-candle change must alter the fingerprint")
	}

	longer, _ := FromRows(rows(11))
	if base.Fingerprint() == longer.Fingerprint() {
		t.Error("length change must alter the fingerprint")
	}

	// 中间 K 线变化不会被识别，这是已知限制。
	interior := rows(10)
	interior[3][4] += 5
	s3, _ := FromRows(interior)
	if base.Fingerprint() != s3.Fingerprint() {
		t.Error("interior changes are expected to keep the fingerprint")
	}

	if (Series{}).Fingerprint() != (Fingerprint{}) {
		t.Error("empty series should have the zero fingerprint")
	}
}

func TestSliceAndTail(t *testing.T) {
	s, _ := FromRows(rows(10))
	tail := s.Tail(3)
	if tail.Len() != 3 || tail.At(0).OpenTime != s.At(7).OpenTime {
		t.Fatalf("unexpected tail: %+v", tail.Candles())
	}
	if s.Slice(8, 100).Len() != 2 {
		t.Error("slice should clip to bounds")
	}
	if !s.Slice(5, 5).Empty() {
		t.Error("empty range should give empty series")
	}
}

func TestReadCSV(t *testing.T) {
	data := "timestamp,open,high,low,close,volume\n" +
		"1000,1,2,0.5,1.5,10\n" +
		"2000,1.5,2.5,1,2,12\n"
	s, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if s.Len() != 2 || s.At(1).Close != 2 {
		t.Fatalf("unexpected series: %+v", s.Candles())
	}

	if _, err := ReadCSV(strings.NewReader("1000,1,2,x,1,1\n")); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed for bad number, got %v", err)
	}
}
