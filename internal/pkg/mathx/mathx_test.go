package mathx

import (
	"encoding/json"
	"math"
	"testing"
)

func TestMinMaxSkipsNaN(t *testing.T) {
	lo, loIdx, hi, hiIdx, ok := MinMax([]float64{math.NaN(), 3, 1, math.Inf(1), 5})
	if !ok || lo != 1 || loIdx != 2 || hi != 5 || hiIdx != 4 {
		t.Fatalf("got %v@%d %v@%d ok=%v", lo, loIdx, hi, hiIdx, ok)
	}
	if _, _, _, _, ok := MinMax([]float64{math.NaN()}); ok {
		t.Fatalf("all-NaN input must report !ok")
	}
}

func TestSafeDivAndMean(t *testing.T) {
	if !math.IsNaN(SafeDiv(1, 0)) || SafeDiv(6, 3) != 2 {
		t.Fatalf("SafeDiv misbehaves")
	}
	if Mean([]float64{1, math.NaN(), 3}) != 2 || !math.IsNaN(Mean(nil)) {
		t.Fatalf("Mean misbehaves")
	}
}

func TestFloatJSON(t *testing.T) {
	b, err := json.Marshal([]Float{1.5, Float(math.NaN()), Float(math.Inf(-1))})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "[1.5,null,null]" {
		t.Fatalf("got %s", b)
	}
	var back []Float
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back[0] != 1.5 || !math.IsNaN(float64(back[1])) {
		t.Fatalf("decoded %v", back)
	}
}

func TestOptAndLastValid(t *testing.T) {
	if Opt(math.NaN()) != nil || *Opt(2) != 2 {
		t.Fatalf("Opt misbehaves")
	}
	if v, ok := LastValid([]float64{1, 2, math.NaN()}); !ok || v != 2 {
		t.Fatalf("LastValid = %v %v", v, ok)
	}
	if FirstValidIndex([]float64{math.NaN(), math.NaN(), 4}) != 2 {
		t.Fatalf("FirstValidIndex")
	}
}
