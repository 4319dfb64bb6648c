package zlog

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *zap.Logger
	once   sync.Once
)

// Init 初始化全局日志。logPath 为空时仅输出到控制台
func Init(logPath string) {
	once.Do(func() {
		logger = build(logPath)
	})
}

func build(logPath string) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(os.Stdout),
			zapcore.InfoLevel,
		),
	}

	if logPath != "" {
		// 文件日志，按大小滚动
		w := &lumberjack.Logger{
			Filename:   filepath.Join(logPath, "notiflow.log"),
			MaxSize:    64, // MB
			MaxBackups: 7,
			MaxAge:     30, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.AddSync(w),
			zapcore.InfoLevel,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
}

func l() *zap.Logger {
	if logger == nil {
		Init("")
	}
	return logger
}

func Debug(msg string, fields ...zap.Field) {
	l().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	l().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	l().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	l().Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	l().Fatal(msg, fields...)
}

// Sync 刷新缓冲日志，进程退出前调用
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
