package configapi

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"taengine/internal/config"
	"taengine/internal/config/writer"
	"taengine/internal/logger"
)

// Router 提供配置文件的读取与更新接口。写入前校验，非法配置不会落盘。
type Router struct {
	writer *writer.Writer
}

func NewRouter(path string) *Router {
	return &Router{writer: writer.New(path)}
}

func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("", r.handleGet)
	group.PUT("", r.handleUpdate)
	group.POST("/validate", r.handleValidate)
}

func (r *Router) handleGet(c *gin.Context) {
	cfg, err := r.writer.Read()
	if errors.Is(err, os.ErrNotExist) {
		c.JSON(http.StatusOK, gin.H{"path": r.writer.Path(), "config": config.Default(), "default": true})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": r.writer.Path(), "config": cfg, "default": false})
}

func (r *Router) handleUpdate(c *gin.Context) {
	cfg, ok := bind(c)
	if !ok {
		return
	}
	if err := r.writer.Write(cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logger.Infof("config %s updated; restart to apply", r.writer.Path())
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "配置已更新，重启后生效"})
}

func (r *Router) handleValidate(c *gin.Context) {
	cfg, ok := bind(c)
	if !ok {
		return
	}
	if err := cfg.Validate(); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// bind 以默认配置为底解析请求体，缺省字段保持默认值。
func bind(c *gin.Context) (config.Config, bool) {
	cfg := config.Default()
	cfg.Periods = nil
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return config.Config{}, false
	}
	return cfg.Normalize(), true
}
