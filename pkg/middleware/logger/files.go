package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogDir is where log files are written; LOG_DIR overrides it.
func LogDir() string {
	if d := strings.TrimSpace(os.Getenv("LOG_DIR")); d != "" {
		return d
	}
	return "log"
}

func ensureLogDir() string {
	dir := LogDir()
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

// NewLog returns a JSON logger writing to a rotated file named n under LogDir
// and to stdout.
func NewLog(n string) *zap.Logger {
	dir := ensureLogDir()

	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"

	console := zapcore.Lock(os.Stdout)

	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(dir, n),
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	})

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, zap.InfoLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(cfg), console, zap.InfoLevel),
	)
	return zap.New(core)
}

var (
	accessOnce       sync.Once
	accessMu         sync.RWMutex
	httpAccessLogger *zap.Logger
)

// accessLogger returns the access logger, creating http-access.log on first
// use.
func accessLogger() *zap.Logger {
	accessOnce.Do(func() {
		accessMu.Lock()
		if httpAccessLogger == nil {
			httpAccessLogger = NewLog("http-access.log")
		}
		accessMu.Unlock()
	})
	accessMu.RLock()
	defer accessMu.RUnlock()
	return httpAccessLogger
}

// SetAccessLogger lets tests/CLIs override the access logger.
func SetAccessLogger(l *zap.Logger) {
	if l == nil {
		return
	}
	accessMu.Lock()
	httpAccessLogger = l
	accessMu.Unlock()
}
