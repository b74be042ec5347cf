package market

import (
	"testing"
	"time"
)

func TestParseInterval(t *testing.T) {
	cases := map[string]time.Duration{
		"1m":  time.Minute,
		"15m": 15 * time.Minute,
		"1h":  time.Hour,
		"4H":  4 * time.Hour,
		"1d":  24 * time.Hour,
		"1w":  7 * 24 * time.Hour,
	}
	for in, want := range cases {
		got, err := ParseInterval(in)
		if err != nil || got != want {
			t.Errorf("%s: got %v, %v", in, got, err)
		}
	}
	for _, bad := range []string{"", "h", "0h", "3x", "-1d"} {
		if _, err := ParseInterval(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestCheckIntegrity(t *testing.T) {
	rs := rows(6)
	// 去掉下标 2、3 两根
	rs = append(rs[:2], rs[4:]...)
	s, err := FromRows(rs)
	if err != nil {
		t.Fatal(err)
	}
	report := s.CheckIntegrity(time.Hour)
	if report.Expected != 6 || report.Present != 4 || report.Complete() {
		t.Fatalf("report = %+v", report)
	}
	if len(report.Gaps) != 1 || report.Gaps[0].Count != 2 {
		t.Fatalf("gaps = %+v", report.Gaps)
	}
	if report.Gaps[0].From != 1_700_000_000_000+2*3_600_000 || report.Gaps[0].To != 1_700_000_000_000+3*3_600_000 {
		t.Fatalf("gap bounds = %+v", report.Gaps[0])
	}

	full, _ := FromRows(rows(5))
	if !full.CheckIntegrity(time.Hour).Complete() {
		t.Fatalf("contiguous series should be complete")
	}
}
