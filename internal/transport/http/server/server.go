package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taengine/internal/logger"
	"taengine/internal/metrics"
	"taengine/internal/transport/http/analysis"
	"taengine/internal/transport/http/configapi"
)

// Server 挂载分析、配置与 /metrics 接口。
type Server struct {
	addr   string
	router *gin.Engine
}

type Config struct {
	Addr       string
	Analysis   *analysis.Router
	ConfigPath string
	Metrics    *metrics.Metrics
}

func New(cfg Config) (*Server, error) {
	if cfg.Analysis == nil {
		return nil, errors.New("analysis router 不能为空")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	cfg.Analysis.Register(api)
	if cfg.ConfigPath != "" {
		configapi.NewRouter(cfg.ConfigPath).Register(api.Group("/config"))
	}
	router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	return &Server{addr: cfg.Addr, router: router}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start 启动 HTTP 服务，阻塞直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("http server listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
