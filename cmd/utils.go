package cmd

import (
	"log/slog"
	"os"
)

// parseLevel 把配置中的日志级别转换为 slog.Level，未知值按 info 处理
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// initLogger 初始化日志系统。诊断日志写到 stderr，报告输出留给 stdout。
func initLogger(level string) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
	slog.SetDefault(logger)
	return logger
}
