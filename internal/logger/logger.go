package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var l *zap.Logger

// Init builds the process-wide logger. Call once from main before any
// other package logs.
func Init() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	l = logger
}

func get() *zap.Logger {
	if l == nil {
		Init()
	}
	return l
}

func Debug(msg string, fields ...zap.Field) {
	get().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	get().Info(msg, fields...)
}

func Infof(format string, args ...interface{}) {
	get().Sugar().Infof(format, args...)
}

func Warn(msg string, fields ...zap.Field) {
	get().Warn(msg, fields...)
}

func Warnf(format string, args ...interface{}) {
	get().Sugar().Warnf(format, args...)
}

func Error(msg string, fields ...zap.Field) {
	get().Error(msg, fields...)
}

func Errorf(format string, args ...interface{}) {
	get().Sugar().Errorf(format, args...)
}

func Fatal(msg string, fields ...zap.Field) {
	get().Fatal(msg, fields...)
}
