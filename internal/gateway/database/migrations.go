package database

import (
	"context"
	"fmt"
	"slices"

	"taengine/internal/analysis/pattern"
	"taengine/internal/engine"
)

func (s *AnalysisStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			run_id        TEXT PRIMARY KEY,
			symbol        TEXT NOT NULL,
			interval      TEXT NOT NULL,
			generated_at  INTEGER NOT NULL,
			candles       INTEGER NOT NULL,
			last_close    REAL,
			pattern_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol ON analysis_runs(symbol, interval, generated_at)`,
		`CREATE TABLE IF NOT EXISTS analysis_patterns (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL REFERENCES analysis_runs(run_id),
			symbol       TEXT NOT NULL,
			interval     TEXT NOT NULL,
			category     TEXT NOT NULL,
			type         TEXT NOT NULL,
			description  TEXT,
			candle_index INTEGER,
			ts           INTEGER,
			details      TEXT,
			created_at   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_patterns_symbol ON analysis_patterns(symbol, created_at)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("exec %q: %w", q[:40], err)
		}
	}
	return nil
}

// categoriesOf 按固定类别顺序返回结果中的类别，未知类别排在最后。
func categoriesOf(res engine.Result) []pattern.Category {
	out := append([]pattern.Category(nil), pattern.Categories...)
	var extra []pattern.Category
	for c := range res.Patterns {
		if !slices.Contains(pattern.Categories, c) {
			extra = append(extra, c)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}
