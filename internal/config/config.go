// Package config 加载引擎配置：TOML/YAML 文件 + 环境变量覆盖 + 默认值。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"taengine/internal/analysis/indicator"
	rollup "taengine/internal/analysis/metrics"
	"taengine/internal/analysis/pattern"
	"taengine/internal/logger"
)

type Config struct {
	Log        logger.Options     `json:"log" toml:"log" yaml:"log"`
	Indicators indicator.Settings `json:"indicators" toml:"indicators" yaml:"indicators"`
	Patterns   pattern.Settings   `json:"patterns" toml:"patterns" yaml:"patterns"`
	Periods    []rollup.Period    `json:"periods" toml:"periods" yaml:"periods"`
	HTTP       HTTPConfig         `json:"http" toml:"http" yaml:"http"`
	Store      StoreConfig        `json:"store" toml:"store" yaml:"store"`
}

type HTTPConfig struct {
	Addr string `json:"addr" toml:"addr" yaml:"addr"`
}

type StoreConfig struct {
	SQLitePath string `json:"sqlite_path" toml:"sqlite_path" yaml:"sqlite_path"`
}

// Default 返回全部字段填充默认值的配置。
func Default() Config {
	return Config{
		Log:        logger.Options{Level: "info", Format: "text"},
		Indicators: indicator.DefaultSettings(),
		Patterns:   pattern.RecognizerSettings(),
		Periods:    rollup.DefaultPeriods(),
		HTTP:       HTTPConfig{Addr: ":8080"},
		Store:      StoreConfig{SQLitePath: "data/taengine.db"},
	}
}

// Load 读取 path（.toml/.yaml/.yml）；文件不存在时使用默认值，随后应用环境变量覆盖。
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Warnf("config %s not found, using defaults", path)
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := Decode(path, data, &cfg); err != nil {
				return Config{}, err
			}
		}
	}
	cfg.applyEnv()
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode unmarshals data into cfg using the format implied by the file extension.
// Periods from the file replace the defaults instead of being merged into them.
func Decode(path string, data []byte, cfg *Config) error {
	defaults := cfg.Periods
	cfg.Periods = nil
	defer func() {
		if len(cfg.Periods) == 0 {
			cfg.Periods = defaults
		}
	}()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse toml config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse yaml config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TAENGINE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("TAENGINE_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("TAENGINE_SQLITE_PATH"); v != "" {
		c.Store.SQLitePath = v
	}
}

// Normalize 补全缺省字段。
func (c Config) Normalize() Config {
	out := c
	out.Indicators = c.Indicators.Normalize()
	out.Patterns = c.Patterns.Normalize()
	if len(out.Periods) == 0 {
		out.Periods = rollup.DefaultPeriods()
	}
	if out.Log.Level == "" {
		out.Log.Level = "info"
	}
	if out.HTTP.Addr == "" {
		out.HTTP.Addr = ":8080"
	}
	return out
}

func (c Config) Validate() error {
	var errs []error
	if err := c.Patterns.Validate(); err != nil {
		errs = append(errs, err)
	}
	seen := map[string]bool{}
	for _, p := range c.Periods {
		if p.Name == "" || p.Candles <= 0 {
			errs = append(errs, fmt.Errorf("periods: %q needs a name and a positive candle count", p.Name))
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("periods: duplicate period %q", p.Name))
		}
		seen[p.Name] = true
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log: unknown format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
