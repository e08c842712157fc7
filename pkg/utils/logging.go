package utils

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the process logger. JSON goes to stdout and, when LOG_FILE is set, is teed
// into that file as well. LOG_LEVEL picks the minimum level (default info).
func Logger() *zap.Logger {
	loggerOnce.Do(func() { logger = newLogger(os.Getenv("LOG_FILE"), os.Getenv("LOG_LEVEL")) })
	return logger
}

func newLogger(logFile, level string) *zap.Logger {
	lvl := zapcore.InfoLevel
	if level != "" {
		if parsed, err := zapcore.ParseLevel(level); err == nil {
			lvl = parsed
		}
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	consoleCore := zapcore.NewCore(enc, zapcore.Lock(os.Stdout), lvl)
	if logFile == "" {
		return zap.New(consoleCore, zap.AddCaller())
	}
	_ = os.MkdirAll(filepath.Dir(logFile), 0o755)
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		l := zap.New(consoleCore, zap.AddCaller())
		l.Warn("log file unavailable, logging to stdout only", zap.String("path", logFile), zap.Error(err))
		return l
	}
	fileCore := zapcore.NewCore(enc, zapcore.AddSync(f), lvl)
	return zap.New(zapcore.NewTee(fileCore, consoleCore), zap.AddCaller())
}
