package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"taengine/internal/engine"
	"taengine/internal/logger"
	"taengine/internal/pkg/mathx"
)

// AnalysisStore 把每次分析的运行头与形态明细写入 SQLite，供展示层回看。
type AnalysisStore struct {
	mu sync.Mutex
	db *sql.DB
}

// StoredPattern 一条持久化的形态记录。
type StoredPattern struct {
	ID          int64           `json:"id"`
	RunID       string          `json:"run_id"`
	Symbol      string          `json:"symbol"`
	Interval    string          `json:"interval"`
	Category    string          `json:"category"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	CandleIndex int             `json:"index"`
	Timestamp   *int64          `json:"timestamp,omitempty"`
	Details     json.RawMessage `json:"details"`
	CreatedAt   int64           `json:"created_at"`
}

// RunSummary is the header row of a recorded analysis.
type RunSummary struct {
	RunID        string   `json:"run_id"`
	Symbol       string   `json:"symbol"`
	Interval     string   `json:"interval"`
	GeneratedAt  int64    `json:"generated_at"`
	Candles      int      `json:"candles"`
	LastClose    *float64 `json:"last_close,omitempty"`
	PatternCount int      `json:"pattern_count"`
}

// Open 打开（或创建）数据库，启用 WAL 并执行迁移。
func Open(path string) (*AnalysisStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path 不能为空")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	s := &AnalysisStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Infof("analysis store opened: %s", path)
	return s, nil
}

func (s *AnalysisStore) conn() (*sql.DB, error) {
	if s == nil {
		return nil, fmt.Errorf("analysis store 未初始化")
	}
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return nil, fmt.Errorf("analysis store 已关闭")
	}
	return db, nil
}

// SaveRun 在一个事务中写入运行头和全部形态。
func (s *AnalysisStore) SaveRun(ctx context.Context, res engine.Result) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if res.RunID == "" {
		return fmt.Errorf("run_id 不能为空")
	}
	sym := normalizeSymbol(res.Symbol)
	if sym == "" {
		return fmt.Errorf("symbol 不能为空")
	}
	created := res.GeneratedAt.UnixMilli()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO analysis_runs (run_id, symbol, interval, generated_at, candles, last_close, pattern_count)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, sym, res.Interval, created, res.Candles,
		nullIfNaN(float64(res.LastClose)), res.Patterns.Count()); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO analysis_patterns
            (run_id, symbol, interval, category, type, description, candle_index, ts, details, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, cat := range categoriesOf(res) {
		for _, p := range res.Patterns[cat] {
			details, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("encode pattern %s: %w", p.Type, err)
			}
			var ts any
			if p.Timestamp != nil {
				ts = p.Timestamp.UnixMilli()
			}
			if _, err := stmt.ExecContext(ctx, res.RunID, sym, res.Interval, string(cat), p.Type,
				p.Description, p.Index, ts, string(details), created); err != nil {
				return fmt.Errorf("insert pattern: %w", err)
			}
		}
	}
	return tx.Commit()
}

// RecentPatterns 返回 symbol 最近的形态记录，最新的运行排在前面。
func (s *AnalysisStore) RecentPatterns(ctx context.Context, symbol string, limit int) ([]StoredPattern, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx, `
        SELECT id, run_id, symbol, interval, category, type, description, candle_index, ts, details, created_at
        FROM analysis_patterns
        WHERE symbol=?
        ORDER BY created_at DESC, id ASC
        LIMIT ?`, normalizeSymbol(symbol), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StoredPattern
	for rows.Next() {
		var (
			p       StoredPattern
			ts      sql.NullInt64
			details string
		)
		if err := rows.Scan(&p.ID, &p.RunID, &p.Symbol, &p.Interval, &p.Category, &p.Type,
			&p.Description, &p.CandleIndex, &ts, &details, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Timestamp = ptrInt(ts)
		p.Details = json.RawMessage(details)
		out = append(out, p)
	}
	return out, rows.Err()
}

// LatestRun returns the most recent run header for symbol/interval.
func (s *AnalysisStore) LatestRun(ctx context.Context, symbol, interval string) (*RunSummary, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	row := db.QueryRowContext(ctx, `
        SELECT run_id, symbol, interval, generated_at, candles, last_close, pattern_count
        FROM analysis_runs
        WHERE symbol=? AND interval=?
        ORDER BY generated_at DESC, rowid DESC
        LIMIT 1`, normalizeSymbol(symbol), interval)
	var (
		r         RunSummary
		lastClose sql.NullFloat64
	)
	if err := row.Scan(&r.RunID, &r.Symbol, &r.Interval, &r.GeneratedAt, &r.Candles, &lastClose, &r.PatternCount); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	r.LastClose = ptrFloat(lastClose)
	return &r, nil
}

func (s *AnalysisStore) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func nullIfNaN(v float64) any {
	if !mathx.IsFinite(v) {
		return nil
	}
	return v
}
