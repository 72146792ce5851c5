// Package logging provides the colored, component-tagged zap logger used
// throughout the broker.
package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ANSI color codes.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	Gray    = "\033[90m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightBlue   = "\033[94m"
	BrightCyan   = "\033[96m"
	BrightWhite  = "\033[97m"
)

// Component tags a log line with the broker subsystem that emitted it.
type Component string

const (
	ComponentBroker    Component = "BROKER"
	ComponentDispatch  Component = "DISPATCH"
	ComponentSubscribe Component = "SUBSCRIBE"
	ComponentPublish   Component = "PUBLISH"
	ComponentTransport Component = "TRANSPORT"
	ComponentStorage   Component = "STORAGE"
)

func componentColor(c Component) string {
	switch c {
	case ComponentBroker:
		return BrightBlue
	case ComponentDispatch:
		return Green
	case ComponentSubscribe:
		return BrightCyan
	case ComponentPublish:
		return Magenta
	case ComponentTransport:
		return BrightYellow
	case ComponentStorage:
		return Yellow
	default:
		return White
	}
}

func levelColor(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return Gray
	case zapcore.InfoLevel:
		return BrightWhite
	case zapcore.WarnLevel:
		return BrightYellow
	case zapcore.ErrorLevel:
		return BrightRed
	default:
		return White
	}
}

func coloredConsoleEncoder(enableColors bool) zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()

	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		s := t.Format("15:04:05")
		if enableColors {
			enc.AppendString(Dim + s + Reset)
		} else {
			enc.AppendString(s)
		}
	}

	cfg.EncodeLevel = func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		letters := map[zapcore.Level]string{
			zapcore.DebugLevel: "D",
			zapcore.InfoLevel:  "I",
			zapcore.WarnLevel:  "W",
			zapcore.ErrorLevel: "E",
		}
		l := letters[level]
		if l == "" {
			l = "?"
		}
		if enableColors {
			enc.AppendString(levelColor(level) + Bold + l + Reset)
		} else {
			enc.AppendString(l)
		}
	}

	cfg.EncodeCaller = func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		file := caller.File
		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			file = file[idx+1:]
		}
		file = strings.TrimSuffix(file, ".go")
		if enableColors {
			enc.AppendString(Dim + file + Reset)
		} else {
			enc.AppendString(file)
		}
	}

	return zapcore.NewConsoleEncoder(cfg)
}

// Logger wraps zap.Logger with component-tagged convenience methods.
type Logger struct {
	*zap.Logger
	enableColors bool
}

// New builds a Logger that writes colored console output to stdout at
// debug level. Pass enableColors=false for plain (e.g. piped) output.
func New(enableColors bool) (*Logger, error) {
	core := zapcore.NewCore(
		coloredConsoleEncoder(enableColors),
		zapcore.AddSync(os.Stdout),
		zapcore.DebugLevel,
	)
	return &Logger{
		Logger:       zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)),
		enableColors: enableColors,
	}, nil
}

// NewFile builds a Logger that appends to a file instead of stdout.
func NewFile(path string, enableColors bool) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	core := zapcore.NewCore(
		coloredConsoleEncoder(enableColors),
		zapcore.AddSync(f),
		zapcore.DebugLevel,
	)
	return &Logger{
		Logger:       zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)),
		enableColors: enableColors,
	}, nil
}

func (l *Logger) tag(component Component, msg string) string {
	if l.enableColors {
		return fmt.Sprintf("%s[%s]%s %s", componentColor(component), component, Reset, msg)
	}
	return fmt.Sprintf("[%s] %s", component, msg)
}

// Info logs an info-level line tagged with component.
func (l *Logger) Info(component Component, msg string, fields ...zap.Field) {
	l.Logger.Info(l.tag(component, msg), fields...)
}

// Warn logs a warn-level line tagged with component.
func (l *Logger) Warn(component Component, msg string, fields ...zap.Field) {
	l.Logger.Warn(l.tag(component, msg), fields...)
}

// Error logs an error-level line tagged with component.
func (l *Logger) Error(component Component, msg string, fields ...zap.Field) {
	l.Logger.Error(l.tag(component, msg), fields...)
}

// Debug logs a debug-level line tagged with component.
func (l *Logger) Debug(component Component, msg string, fields ...zap.Field) {
	l.Logger.Debug(l.tag(component, msg), fields...)
}

// Redacted returns a zap field that records the length of sensitive data
// (a publish payload or a subscriber response body) without ever writing
// the bytes themselves to the log stream.
func Redacted(key string, data []byte) zap.Field {
	return zap.Int(key+"_bytes", len(data))
}
