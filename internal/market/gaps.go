package market

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseInterval 解析 1m/15m/1h/4h/1d/1w 形式的周期。
func ParseInterval(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid interval %q", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid interval %q", s)
	}
	var unit time.Duration
	switch s[len(s)-1] {
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	case 'w':
		unit = 7 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("invalid interval %q", s)
	}
	return time.Duration(n) * unit, nil
}

// Gap 表示缺失的连续 K 线区间（毫秒时间戳，含两端）。
type Gap struct {
	From  int64 `json:"from"`
	To    int64 `json:"to"`
	Count int64 `json:"count"`
}

// IntegrityReport 描述序列相对固定步长的覆盖情况。
type IntegrityReport struct {
	Start    int64 `json:"start"`
	End      int64 `json:"end"`
	Expected int64 `json:"expected"`
	Present  int64 `json:"present"`
	Gaps     []Gap `json:"gaps"`
}

func (r IntegrityReport) Complete() bool { return len(r.Gaps) == 0 }

// CheckIntegrity 按步长检查序列中缺失的 K 线；时间戳不在网格上的部分按相邻差值计算。
func (s Series) CheckIntegrity(step time.Duration) IntegrityReport {
	if s.Empty() || step <= 0 {
		return IntegrityReport{}
	}
	ms := step.Milliseconds()
	first, last := s.candles[0].OpenTime, s.candles[len(s.candles)-1].OpenTime
	report := IntegrityReport{
		Start:    first,
		End:      last,
		Expected: (last-first)/ms + 1,
		Present:  int64(len(s.candles)),
	}
	for i := 1; i < len(s.candles); i++ {
		prev, cur := s.candles[i-1].OpenTime, s.candles[i].OpenTime
		missing := (cur-prev)/ms - 1
		if missing <= 0 {
			continue
		}
		report.Gaps = append(report.Gaps, Gap{From: prev + ms, To: prev + missing*ms, Count: missing})
	}
	return report
}
