package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"taengine/internal/config"
	"taengine/internal/config/writer"
	"taengine/internal/engine"
	"taengine/internal/gateway/database"
	"taengine/internal/logger"
	"taengine/internal/market"
	"taengine/internal/metrics"
	"taengine/internal/report"
	"taengine/internal/store"
	"taengine/internal/transport/http/analysis"
	"taengine/internal/transport/http/server"
)

type options struct {
	configPath  string
	csvPaths    string
	symbol      string
	interval    string
	jsonOut     bool
	serve       bool
	record      bool
	dbPath      string
	limit       int
	writeConfig string
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "taengine.toml", "配置文件路径 (.toml/.yaml)")
	flag.StringVar(&o.csvPaths, "csv", "", "逗号分隔的 CSV 路径，文件名作为 symbol")
	flag.StringVar(&o.symbol, "symbol", "", "单个 CSV 时使用的 symbol")
	flag.StringVar(&o.interval, "interval", "1h", "K 线周期")
	flag.BoolVar(&o.jsonOut, "json", false, "以 JSON 输出结果")
	flag.BoolVar(&o.serve, "serve", false, "启动 HTTP 服务")
	flag.BoolVar(&o.record, "record", false, "把分析结果写入 SQLite")
	flag.StringVar(&o.dbPath, "db", "", "SQLite 路径，覆盖配置")
	flag.IntVar(&o.limit, "limit", 0, "只使用最近 N 根 K 线，0 表示全部")
	flag.StringVar(&o.writeConfig, "write-config", "", "把生效配置写入指定路径后退出")
	flag.Parse()
	return o
}

func main() {
	if err := run(parseFlags()); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(o options) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnf("load .env: %v", err)
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.Log)
	if o.dbPath != "" {
		cfg.Store.SQLitePath = o.dbPath
		o.record = true
	}
	if o.writeConfig != "" {
		if err := writer.New(o.writeConfig).Write(cfg); err != nil {
			return err
		}
		logger.Infof("config written to %s", o.writeConfig)
		return nil
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	pool := engine.NewPool(engine.Options{
		Indicators: cfg.Indicators,
		Patterns:   cfg.Patterns,
		Periods:    cfg.Periods,
		Metrics:    m,
	}, engine.DefaultConcurrency)

	var db *database.AnalysisStore
	if o.record || o.serve {
		db, err = database.Open(cfg.Store.SQLitePath)
		if err != nil {
			if o.record {
				return err
			}
			logger.Warnf("analysis store disabled: %v", err)
			db = nil
		}
		defer db.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if o.serve {
		return serve(ctx, cfg, o, pool, db, m)
	}
	if o.csvPaths == "" {
		flag.Usage()
		return errors.New("需要 -csv 或 -serve")
	}
	return analyzeFiles(ctx, cfg, o, pool, db)
}

func analyzeFiles(ctx context.Context, cfg config.Config, o options, pool *engine.Pool, db *database.AnalysisStore) error {
	paths := splitPaths(o.csvPaths)
	if o.symbol != "" && len(paths) > 1 {
		return errors.New("-symbol 只能与单个 CSV 一起使用")
	}
	src := market.NewFileSource()
	reqs := make([]engine.Request, 0, len(paths))
	for _, p := range paths {
		symbol := o.symbol
		if symbol == "" {
			symbol = strings.ToUpper(strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)))
		}
		src.Register(symbol, o.interval, p)
		series, err := src.FetchHistory(ctx, symbol, o.interval, o.limit)
		if err != nil {
			return err
		}
		if step, err := market.ParseInterval(o.interval); err == nil {
			if r := series.CheckIntegrity(step); !r.Complete() {
				logger.Warnf("%s: %d of %d candles missing in %d gaps", symbol, r.Expected-r.Present, r.Expected, len(r.Gaps))
			}
		}
		reqs = append(reqs, engine.Request{Symbol: symbol, Interval: o.interval, Series: series})
	}

	results, err := pool.AnalyzeAll(ctx, reqs)
	if err != nil {
		return err
	}
	if db != nil {
		for _, res := range results {
			if err := db.SaveRun(ctx, res); err != nil {
				return fmt.Errorf("record %s: %w", res.Symbol, err)
			}
		}
	}
	if o.jsonOut {
		return report.JSON(os.Stdout, results)
	}
	report.Tables(os.Stdout, results, cfg.Periods)
	return nil
}

func serve(ctx context.Context, cfg config.Config, o options, pool *engine.Pool, db *database.AnalysisStore, m *metrics.Metrics) error {
	opts := analysis.Options{Pool: pool, Candles: store.NewMemoryCandleStore(store.DefaultMaxCandles)}
	if db != nil {
		opts.Recorder = db
	}
	srv, err := server.New(server.Config{
		Addr:       cfg.HTTP.Addr,
		Analysis:   analysis.NewRouter(opts),
		ConfigPath: o.configPath,
		Metrics:    m,
	})
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}

func splitPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
