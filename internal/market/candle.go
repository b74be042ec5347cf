package market

import (
	"errors"
	"fmt"
	"math"
	"time"

	"taengine/internal/pkg/mathx"
)

// ErrMalformed 表示上游提供的 K 线数据形状或取值非法，属于调用方契约违规。
var ErrMalformed = errors.New("malformed candle data")

// Candle 单根 OHLCV K 线，OpenTime 为毫秒时间戳。
type Candle struct {
	OpenTime int64   `json:"open_time"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
}

// Time returns the candle open time in UTC.
func (c Candle) Time() time.Time {
	return time.UnixMilli(c.OpenTime).UTC()
}

func (c Candle) validate() error {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
		if !mathx.IsFinite(v) {
			return fmt.Errorf("%w: non-finite value at %d", ErrMalformed, c.OpenTime)
		}
	}
	return nil
}

// CandleFromRow 解析 [timestamp_ms, open, high, low, close, volume] 形式的行。
func CandleFromRow(row []float64) (Candle, error) {
	if len(row) != 6 {
		return Candle{}, fmt.Errorf("%w: row has %d columns, want 6", ErrMalformed, len(row))
	}
	if !mathx.IsFinite(row[0]) || row[0] < 0 || row[0] != math.Trunc(row[0]) {
		return Candle{}, fmt.Errorf("%w: invalid timestamp %v", ErrMalformed, row[0])
	}
	c := Candle{
		OpenTime: int64(row[0]),
		Open:     row[1],
		High:     row[2],
		Low:      row[3],
		Close:    row[4],
		Volume:   row[5],
	}
	if err := c.validate(); err != nil {
		return Candle{}, err
	}
	return c, nil
}
