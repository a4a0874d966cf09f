package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatPretty  = "pretty"
)

// Logger is a zerolog logger bound to one service. Derived loggers
// (WithComponent, WithStep, ...) share the output and level.
type Logger struct {
	zl      zerolog.Logger
	service string
}

// Init builds the global logger from cfg. Console formats also redirect
// zerolog's package logger.
func Init(cfg Config) {
	cfg.ApplyDefaults()
	l := New(&cfg, "default")
	SetGlobalLogger(l)
	if isConsole(cfg.Format) {
		log.Logger = l.zl
	}
}

// New creates a logger for service. An unknown level falls back to info.
func New(cfg *Config, service string) *Logger {
	zc := zerolog.New(writerFor(cfg, service)).Level(parseLevel(cfg.Level)).With()
	if !isConsole(cfg.Format) {
		zc = zc.Str(FieldService, service)
	}
	if cfg.Timestamp || isConsole(cfg.Format) {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.Caller()
	}
	return &Logger{zl: zc.Logger(), service: service}
}

// NewDefault creates an info-level console logger on stdout.
func NewDefault(service string) *Logger {
	var cfg Config
	cfg.ApplyDefaults()
	return New(&cfg, service)
}

// NewFromEnv creates a logger configured by LOG_LEVEL, LOG_FORMAT,
// LOG_OUTPUT, LOG_NO_COLOR and LOG_TIMESTAMP.
func NewFromEnv(service string) *Logger {
	cfg := Config{
		Level:     os.Getenv("LOG_LEVEL"),
		Format:    os.Getenv("LOG_FORMAT"),
		Output:    os.Getenv("LOG_OUTPUT"),
		NoColor:   os.Getenv("LOG_NO_COLOR") == "true",
		Timestamp: os.Getenv("LOG_TIMESTAMP") != "false",
		Caller:    os.Getenv("LOG_CALLER") == "true",
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = FormatConsole
	}
	return New(&cfg, service)
}

// NewWriter creates a JSON logger writing to w, for tests that decode the
// emitted records.
func NewWriter(w io.Writer, level, service string) *Logger {
	zl := zerolog.New(w).Level(parseLevel(level)).With().Str(FieldService, service).Logger()
	return &Logger{zl: zl, service: service}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) derive(fn func(zerolog.Context) zerolog.Context) *Logger {
	return &Logger{zl: fn(l.zl.With()).Logger(), service: l.service}
}

// WithComponent tags records with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.derive(func(c zerolog.Context) zerolog.Context { return c.Str(FieldComponent, name) })
}

// WithStep tags records with a step and the traversal that owns it.
func (l *Logger) WithStep(stepID, traversalID string) *Logger {
	return l.derive(func(c zerolog.Context) zerolog.Context {
		return c.Str(FieldStepID, stepID).Str(FieldTraversalID, traversalID)
	})
}

func (l *Logger) WithFields(fields map[string]any) *Logger {
	return l.derive(func(c zerolog.Context) zerolog.Context { return c.Fields(fields) })
}

func (l *Logger) WithError(err error) *Logger {
	return l.derive(func(c zerolog.Context) zerolog.Context { return c.Err(err) })
}

type ctxKey int

const (
	runIDKey ctxKey = iota
	traceIDKey
)

// ContextWithRunID stores a map/reduce run id for WithContext.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// ContextWithTraceID stores a trace id for WithContext.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// WithContext tags records with the run and trace ids carried by ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return l.derive(func(c zerolog.Context) zerolog.Context {
		if id, ok := ctx.Value(runIDKey).(string); ok {
			c = c.Str(FieldRunID, id)
		}
		if id, ok := ctx.Value(traceIDKey).(string); ok {
			c = c.Str(FieldTraceID, id)
		}
		return c
	})
}

// Zerolog exposes the underlying logger.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }

// Enabled reports whether records at level are written.
func (l *Logger) Enabled(level zerolog.Level) bool {
	return level >= l.zl.GetLevel() && level >= zerolog.GlobalLevel()
}

func (l *Logger) Debug(msg string, fields ...map[string]any) { emit(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...map[string]any)  { emit(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...map[string]any)  { emit(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...map[string]any) { emit(l.zl.Error(), msg, fields) }

// emit tolerates a nil event, which zerolog returns for disabled levels.
func emit(e *zerolog.Event, msg string, fields []map[string]any) {
	if e == nil {
		return
	}
	for _, f := range fields {
		e.Fields(f)
	}
	e.Msg(msg)
}

var global atomic.Pointer[Logger]

// SetGlobalLogger replaces the global logger. Nil restores the default.
func SetGlobalLogger(l *Logger) { global.Store(l) }

// GetGlobalLogger returns the global logger, creating a default one on first
// use.
func GetGlobalLogger() *Logger {
	if l := global.Load(); l != nil {
		return l
	}
	global.CompareAndSwap(nil, NewDefault("default"))
	return global.Load()
}

func Debug(msg string, fields ...map[string]any) { GetGlobalLogger().Debug(msg, fields...) }
func Info(msg string, fields ...map[string]any)  { GetGlobalLogger().Info(msg, fields...) }
func Warn(msg string, fields ...map[string]any)  { GetGlobalLogger().Warn(msg, fields...) }
func Error(msg string, fields ...map[string]any) { GetGlobalLogger().Error(msg, fields...) }

// WithComponent derives a component logger from the global logger.
func WithComponent(name string) *Logger {
	return GetGlobalLogger().WithComponent(name)
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func isConsole(format string) bool {
	switch strings.ToLower(format) {
	case FormatConsole, FormatPretty:
		return true
	}
	return false
}

func output(name string) io.Writer {
	if strings.EqualFold(name, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

const (
	ansiReset = "\033[0m"
	ansiBlue  = "\033[34m"
)

var levelStyles = map[zerolog.Level]struct{ tag, color string }{
	zerolog.TraceLevel: {"TRC", ""},
	zerolog.DebugLevel: {"DBG", "\033[36m"},
	zerolog.InfoLevel:  {"INF", "\033[32m"},
	zerolog.WarnLevel:  {"WRN", "\033[33m"},
	zerolog.ErrorLevel: {"ERR", "\033[31m"},
	zerolog.FatalLevel: {"FTL", "\033[35m"},
}

// writerFor returns the raw output for JSON and a ConsoleWriter for console
// formats. Console lines carry a short service tag in place of the service
// field.
func writerFor(cfg *Config, service string) io.Writer {
	out := output(cfg.Output)
	if !isConsole(cfg.Format) {
		return out
	}
	paint := func(s, color string) string {
		if cfg.NoColor || color == "" {
			return s
		}
		return color + s + ansiReset
	}
	var svcTag string
	if service != "default" && len(service) >= 3 {
		svcTag = paint("["+strings.ToUpper(service[:3])+"]", ansiBlue)
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
		FormatLevel: func(i any) string {
			name, _ := i.(string)
			lvl, err := zerolog.ParseLevel(name)
			style, ok := levelStyles[lvl]
			if err != nil || !ok {
				return svcTag + "[" + strings.ToUpper(name) + "]"
			}
			return svcTag + paint("["+style.tag+"]", style.color)
		},
		FormatFieldName: func(i any) string { return fmt.Sprintf("%s:", i) },
	}
}
