// Package log is the process-wide structured logger. It wraps a zap sugared
// logger so that every package can log without carrying a logger around.
package log

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log      *zap.SugaredLogger
	logMu    sync.RWMutex
	errorLog *os.File
)

func init() {
	// $LOG_LEVEL overrides the default so that it can be set globally even
	// when running tests. Always initializing avoids nil loggers.
	level := "error"
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		level = s
	}
	Init(level, "stderr")
}

// Logger returns the underlying sugared logger.
func Logger() *zap.SugaredLogger {
	logMu.RLock()
	defer logMu.RUnlock()
	return log
}

// Init initializes the logger. Output can be either "stdout", "stderr" or a
// file path. Setting $LOG_FORMAT=json switches to the JSON encoder.
func Init(logLevel, output string) {
	cfg := newConfig(logLevel, output, os.Getenv("LOG_FORMAT") == "json")
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logMu.Lock()
	log = logger.WithOptions(zap.AddCallerSkip(1)).Sugar()
	logMu.Unlock()
	Debugf("logger construction succeeded at level %s with output %s", logLevel, output)
}

// SetFileErrorLog if set writes the Warning and Error messages to a file.
func SetFileErrorLog(path string) error {
	Infof("using file %s for logging warnings and errors", path)
	var err error
	errorLog, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	return err
}

// LevelFromString parses a level name, defaulting to info.
func LevelFromString(logLevel string) zapcore.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	case "fatal":
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}

func newConfig(logLevel, output string, json bool) zap.Config {
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalColorLevelEncoder,
		EncodeTime: func(ts time.Time, encoder zapcore.PrimitiveArrayEncoder) {
			encoder.AppendString(ts.Local().Format(time.RFC3339))
		},
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	encoding := "console"
	if json {
		encoding = "json"
		encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	}
	return zap.Config{
		Level:    zap.NewAtomicLevelAt(LevelFromString(logLevel)),
		Encoding: encoding,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{output},
	}
}

func writeErrorToFile(msg string) {
	if errorLog == nil {
		return
	}
	// Don't block the caller on disk writes.
	go errorLog.WriteString(fmt.Sprintf("[%s] %s\n", time.Now().Format("2006/0102/150405"), msg))
}

// Debug sends a debug level log message
func Debug(args ...any) { Logger().Debug(args...) }

// Info sends an info level log message
func Info(args ...any) { Logger().Info(args...) }

// Warn sends a warn level log message
func Warn(args ...any) {
	Logger().Warn(args...)
	writeErrorToFile(fmt.Sprint(args...))
}

// Error sends an error level log message
func Error(args ...any) {
	Logger().Error(args...)
	writeErrorToFile(fmt.Sprint(args...))
}

// Fatal sends a fatal level log message and exits.
func Fatal(args ...any) {
	Logger().Fatal(args...)
	panic("unreachable")
}

// Debugf sends a formatted debug level log message
func Debugf(template string, args ...any) { Logger().Debugf(template, args...) }

// Infof sends a formatted info level log message
func Infof(template string, args ...any) { Logger().Infof(template, args...) }

// Warnf sends a formatted warn level log message
func Warnf(template string, args ...any) {
	Logger().Warnf(template, args...)
	writeErrorToFile(fmt.Sprintf(template, args...))
}

// Errorf sends a formatted error level log message
func Errorf(template string, args ...any) {
	Logger().Errorf(template, args...)
	writeErrorToFile(fmt.Sprintf(template, args...))
}

// Fatalf sends a formatted fatal level log message
func Fatalf(template string, args ...any) {
	Logger().Fatalf(template, args...)
	panic("unreachable")
}

// Debugw sends a key-value formatted debug level log message
func Debugw(msg string, keysAndValues ...any) { Logger().Debugw(msg, keysAndValues...) }

// Infow sends a key-value formatted info level log message
func Infow(msg string, keysAndValues ...any) { Logger().Infow(msg, keysAndValues...) }

// Warnw sends a key-value formatted warn level log message
func Warnw(msg string, keysAndValues ...any) { Logger().Warnw(msg, keysAndValues...) }

// Errorw sends a key-value formatted error level log message
func Errorw(err error, msg string, keysAndValues ...any) {
	Logger().Errorw(msg, append(keysAndValues, "error", err)...)
	writeErrorToFile(fmt.Sprintf("%s: %v", msg, err))
}
