package market

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Source 统一对接外部 K 线供应方；引擎本身不做网络拉取。
type Source interface {
	// FetchHistory 返回最近 limit 根已收盘 K 线并按时间升序排列；limit<=0 表示全部。
	FetchHistory(ctx context.Context, symbol, interval string, limit int) (Series, error)
}

// FileSource 从本地 CSV 文件读取 K 线，键为 SYMBOL@interval。
type FileSource struct {
	mu    sync.RWMutex
	paths map[string]string
}

func NewFileSource() *FileSource {
	return &FileSource{paths: make(map[string]string)}
}

func sourceKey(symbol, interval string) string {
	return strings.ToUpper(strings.TrimSpace(symbol)) + "@" + strings.ToLower(strings.TrimSpace(interval))
}

// Register 绑定 symbol+interval 对应的 CSV 路径。
func (s *FileSource) Register(symbol, interval, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths[sourceKey(symbol, interval)] = path
}

func (s *FileSource) FetchHistory(ctx context.Context, symbol, interval string, limit int) (Series, error) {
	if err := ctx.Err(); err != nil {
		return Series{}, err
	}
	s.mu.RLock()
	path, ok := s.paths[sourceKey(symbol, interval)]
	s.mu.RUnlock()
	if !ok {
		return Series{}, fmt.Errorf("no csv registered for %s", sourceKey(symbol, interval))
	}
	f, err := os.Open(path)
	if err != nil {
		return Series{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	series, err := ReadCSV(f)
	if err != nil {
		return Series{}, fmt.Errorf("read %s: %w", path, err)
	}
	if limit > 0 && series.Len() > limit {
		series = series.Tail(limit)
	}
	return series, nil
}
