package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"taengine/internal/market"
)

// DefaultConcurrency 并发分析的默认上限。
const DefaultConcurrency = 4

// Request 一次批量分析中的单个 symbol/interval 输入。
type Request struct {
	Symbol   string
	Interval string
	Series   market.Series
}

// Pool hands out one Engine per symbol/interval and runs batches concurrently.
type Pool struct {
	opts  Options
	limit int

	mu      sync.RWMutex
	engines map[string]*Engine
}

func NewPool(opts Options, limit int) *Pool {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	return &Pool{opts: opts, limit: limit, engines: make(map[string]*Engine)}
}

func key(symbol, interval string) string { return symbol + "@" + interval }

// For returns the engine bound to symbol/interval, creating it on first use.
func (p *Pool) For(symbol, interval string) *Engine {
	k := key(symbol, interval)
	p.mu.RLock()
	e, ok := p.engines[k]
	p.mu.RUnlock()
	if ok {
		return e
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.engines[k]; ok {
		return e
	}
	e = New(symbol, interval, p.opts)
	p.engines[k] = e
	return e
}

// Len reports how many engines exist.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.engines)
}

// AnalyzeAll 并发分析多个 symbol；结果顺序与 reqs 一致。
// 同一 symbol/interval 的请求在对应 engine 上串行执行。ctx 只在任务之间检查。
func (p *Pool) AnalyzeAll(ctx context.Context, reqs []Request) ([]Result, error) {
	out := make([]Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)
	for i, req := range reqs {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.For(req.Symbol, req.Interval).Analyze(req.Series)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
