// Package logger 提供包级别的分级日志函数，底层使用 log/slog。
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var (
	level   = new(slog.LevelVar)
	current atomic.Pointer[slog.Logger]
)

func init() {
	level.Set(slog.LevelInfo)
	current.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// Options 控制日志输出格式与级别。
type Options struct {
	Level  string    `json:"level" toml:"level" yaml:"level"`
	Format string    `json:"format" toml:"format" yaml:"format"` // text | json
	Output io.Writer `json:"-" toml:"-" yaml:"-"`
}

// Init 按配置替换全局 logger。
func Init(opts Options) *slog.Logger {
	SetLevel(opts.Level)
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	var h slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		h = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	} else {
		h = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	}
	l := slog.New(h).With(slog.String("service", "taengine"))
	current.Store(l)
	return l
}

// SetLevel accepts debug|info|warn|error; unknown values keep info.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}

// L returns the current structured logger.
func L() *slog.Logger { return current.Load() }

// With 返回带固定字段的子 logger。
func With(args ...any) *slog.Logger { return L().With(args...) }

func Debugf(format string, args ...any) { logf(slog.LevelDebug, format, args...) }
func Infof(format string, args ...any)  { logf(slog.LevelInfo, format, args...) }
func Warnf(format string, args ...any)  { logf(slog.LevelWarn, format, args...) }
func Errorf(format string, args ...any) { logf(slog.LevelError, format, args...) }

func logf(lvl slog.Level, format string, args ...any) {
	l := L()
	if !l.Enabled(context.Background(), lvl) {
		return
	}
	l.Log(context.Background(), lvl, fmt.Sprintf(format, args...))
}
