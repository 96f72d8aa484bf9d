// Package logging builds the zap logger shared by every jukebox component.
package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tessro/jukebox/internal/config"
)

// Options controls where log output goes.
type Options struct {
	// Verbose lowers the console threshold to the configured level.
	// Otherwise the console only shows warnings and errors.
	Verbose bool
	// Console receives human-readable output. Defaults to stderr.
	Console io.Writer
}

// ParseLevel maps a config level name to a zap level.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a logger from the log section of the config. When a file is
// configured, JSON records are written to a rotating file at the configured
// level and teed with the console.
func New(cfg config.LogConfig, opts Options) *zap.Logger {
	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	consoleLevel := zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if opts.Verbose {
		consoleLevel = level
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	consoleEncoder := zap.NewDevelopmentEncoderConfig()
	consoleEncoder.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleEncoder.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEncoder),
			zapcore.AddSync(console),
			consoleLevel,
		),
	}

	if cfg.File != "" {
		fileEncoder := zap.NewProductionEncoderConfig()
		fileEncoder.TimeKey = "timestamp"
		fileEncoder.EncodeTime = zapcore.ISO8601TimeEncoder
		fileEncoder.EncodeLevel = zapcore.CapitalLevelEncoder

		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileEncoder),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    100, // MB
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}
