package analysis

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"taengine/internal/analysis/indicator"
	"taengine/internal/engine"
	"taengine/internal/gateway/database"
	"taengine/internal/logger"
	"taengine/internal/market"
	"taengine/internal/store"
)

// Recorder 持久化分析结果；可为空。
type Recorder interface {
	SaveRun(ctx context.Context, res engine.Result) error
	RecentPatterns(ctx context.Context, symbol string, limit int) ([]database.StoredPattern, error)
}

// Router exposes analysis over HTTP.
type Router struct {
	pool     *engine.Pool
	candles  store.CandleStore
	recorder Recorder
}

type Options struct {
	Pool     *engine.Pool
	Candles  store.CandleStore
	Recorder Recorder
}

func NewRouter(opts Options) *Router {
	return &Router{pool: opts.Pool, candles: opts.Candles, recorder: opts.Recorder}
}

func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.POST("/analysis", r.handleAnalyze)
	group.GET("/analysis/keys", r.handleKeys)
	group.GET("/analysis/patterns", r.handleRecent)
	group.PUT("/candles/:symbol/:interval", r.handleAppend)
}

type analyzeRequest struct {
	Symbol   string      `json:"symbol" binding:"required"`
	Interval string      `json:"interval" binding:"required"`
	Candles  [][]float64 `json:"candles"`
	Record   bool        `json:"record"`
}

type analyzeResponse struct {
	engine.Result
	Integrity *market.IntegrityReport `json:"integrity,omitempty"`
}

func (r *Router) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	symbol, interval := normalizeSymbol(req.Symbol), strings.ToLower(strings.TrimSpace(req.Interval))

	var (
		series market.Series
		err    error
	)
	if len(req.Candles) > 0 {
		series, err = market.FromRows(req.Candles)
	} else if r.candles != nil {
		series, err = r.candles.Series(c.Request.Context(), symbol, interval)
	}
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	res, err := r.pool.For(symbol, interval).Analyze(series)
	if err != nil {
		logger.Errorf("analysis %s@%s failed: %v", symbol, interval, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if req.Record && r.recorder != nil {
		if err := r.recorder.SaveRun(c.Request.Context(), res); err != nil {
			logger.Warnf("record run %s failed: %v", res.RunID, err)
		}
	}
	resp := analyzeResponse{Result: res}
	if step, err := market.ParseInterval(interval); err == nil && !series.Empty() {
		report := series.CheckIntegrity(step)
		resp.Integrity = &report
	}
	c.JSON(http.StatusOK, resp)
}

func (r *Router) handleKeys(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"series":     indicator.SeriesKeys,
		"signals":    indicator.SignalKeys,
		"thresholds": indicator.Thresholds(),
	})
}

func (r *Router) handleRecent(c *gin.Context) {
	if r.recorder == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis store 未启用"})
		return
	}
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol 必填"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit 非法"})
		return
	}
	list, err := r.recorder.RecentPatterns(c.Request.Context(), symbol, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"patterns": list})
}

func (r *Router) handleAppend(c *gin.Context) {
	if r.candles == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "candle store 未启用"})
		return
	}
	var body struct {
		Candles [][]float64 `json:"candles" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	series, err := market.FromRows(body.Candles)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	symbol, interval := normalizeSymbol(c.Param("symbol")), strings.ToLower(c.Param("interval"))
	n, err := r.candles.Append(c.Request.Context(), symbol, interval, series.Candles())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "interval": interval, "candles": n})
}

func statusFor(err error) int {
	if errors.Is(err, market.ErrMalformed) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func normalizeSymbol(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
