package pattern

import (
	"strings"
	"testing"
)

func TestSettingsZeroMeansDefault(t *testing.T) {
	n := Settings{}.Normalize()
	if n.RSI.Oversold != 30 || n.RSI.Overbought != 70 || n.Crossover.LookbackPeriods != 5 {
		t.Fatalf("zero settings should normalize to defaults: %+v", n)
	}
	if err := (Settings{}).Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestSettingsValidateRejectsNegatives(t *testing.T) {
	s := RecognizerSettings()
	s.RSI.Oversold = -5
	s.Volatility.RegimeWindow = -1
	err := s.Validate()
	if err == nil {
		t.Fatalf("negative thresholds must be rejected")
	}
	for _, want := range []string{"rsi.oversold", "volatility.regime_window"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q should name %s", err, want)
		}
	}
}
