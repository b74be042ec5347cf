package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"taengine/internal/market"
)

// DefaultMaxCandles 每个 symbol+interval 保留的默认 K 线上限。
const DefaultMaxCandles = 1000

// CandleStore 抽象：按 symbol+interval 追加与读取 K 线序列。
type CandleStore interface {
	Append(ctx context.Context, symbol, interval string, cs []market.Candle) (int, error)
	Series(ctx context.Context, symbol, interval string) (market.Series, error)
}

// MemoryCandleStore 内存实现，只允许按时间追加。
type MemoryCandleStore struct {
	max  int
	mu   sync.RWMutex
	data map[string][]market.Candle
}

func NewMemoryCandleStore(max int) *MemoryCandleStore {
	if max <= 0 {
		max = DefaultMaxCandles
	}
	return &MemoryCandleStore{max: max, data: make(map[string][]market.Candle)}
}

func key(symbol, interval string) string { return symbol + "@" + interval }

// Append 追加并裁剪，返回当前长度。与末尾同一 open_time 的 K 线覆盖末尾；
// 早于末尾的 K 线视为非法输入。
func (s *MemoryCandleStore) Append(ctx context.Context, symbol, interval string, cs []market.Candle) (int, error) {
	if symbol == "" || interval == "" {
		return 0, errors.New("symbol/interval 不能为空")
	}
	// 先校验取值与顺序
	if _, err := market.NewSeries(cs); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(symbol, interval)
	cur := s.data[k]
	if n := len(cur); n > 0 && len(cs) > 0 && cs[0].OpenTime < cur[n-1].OpenTime {
		return n, fmt.Errorf("%w: candle %d older than stored tail %d", market.ErrMalformed, cs[0].OpenTime, cur[n-1].OpenTime)
	}
	for _, c := range cs {
		if n := len(cur); n > 0 && cur[n-1].OpenTime == c.OpenTime {
			cur[n-1] = c
			continue
		}
		cur = append(cur, c)
	}
	if len(cur) > s.max {
		cur = append([]market.Candle(nil), cur[len(cur)-s.max:]...)
	}
	s.data[k] = cur
	return len(cur), nil
}

// Series 返回当前序列的拷贝。
func (s *MemoryCandleStore) Series(ctx context.Context, symbol, interval string) (market.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return market.NewSeries(s.data[key(symbol, interval)])
}

// Reset drops the stored candles of symbol+interval.
func (s *MemoryCandleStore) Reset(symbol, interval string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key(symbol, interval))
}
