package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"taengine/internal/config"
)

// keepBackups 为保留的历史备份数量。
const keepBackups = 10

// Writer persists a config file atomically, backing up the previous version.
type Writer struct {
	path string
	mu   sync.RWMutex
}

func New(path string) *Writer {
	return &Writer{path: path}
}

// Read 读取当前配置文件，不应用环境变量。
func (w *Writer) Read() (config.Config, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	data, err := os.ReadFile(w.path)
	if err != nil {
		return config.Config{}, fmt.Errorf("读取配置失败: %w", err)
	}
	cfg := config.Default()
	if err := config.Decode(w.path, data, &cfg); err != nil {
		return config.Config{}, err
	}
	return cfg.Normalize(), nil
}

// Write 先备份再以临时文件 + rename 的方式原子写入。
func (w *Writer) Write(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("拒绝写入非法配置: %w", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := encode(w.path, cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建配置目录失败: %w", err)
		}
	}
	if err := w.backup(); err != nil {
		return fmt.Errorf("备份失败: %w", err)
	}

	tmpPath := w.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("替换配置文件失败: %w", err)
	}
	return nil
}

func (w *Writer) Path() string { return w.path }

func encode(path string, cfg config.Config) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("序列化 toml 失败: %w", err)
		}
		return data, nil
	case ".yaml", ".yml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("序列化 yaml 失败: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

func (w *Writer) backup() error {
	src, err := os.Open(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer src.Close()

	backupDir := filepath.Join(filepath.Dir(w.path), "backups")
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(w.path), filepath.Ext(w.path))
	stamp := time.Now().Format("20060102_150405.000000")
	dst, err := os.Create(filepath.Join(backupDir, fmt.Sprintf("%s_%s%s", base, stamp, filepath.Ext(w.path))))
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	w.cleanOldBackups(backupDir, base, keepBackups)
	return nil
}

func (w *Writer) cleanOldBackups(dir, base string, keep int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	var backups []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), base+"_") {
			backups = append(backups, filepath.Join(dir, e.Name()))
		}
	}
	if len(backups) <= keep {
		return
	}
	sort.Strings(backups)
	for _, p := range backups[:len(backups)-keep] {
		os.Remove(p)
	}
}
