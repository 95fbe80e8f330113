package log

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger on top of zerolog.
type ZerologLogger struct {
	logger zerolog.Logger
	// level is shared with the provider that created the logger, so a later
	// SetLevel applies to it. Nil for standalone loggers.
	level  *atomic.Int32
	fields []any
}

// NewZerologLogger creates a JSON logger writing to w at the given minimum level.
func NewZerologLogger(w io.Writer, level Level) *ZerologLogger {
	return &ZerologLogger{
		logger: newZerolog(w, level),
	}
}

func newZerolog(w io.Writer, level Level) zerolog.Logger {
	return zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
}

// Debug implements Logger.Debug.
func (z *ZerologLogger) Debug(msg string, fields ...any) {
	z.log(zerolog.DebugLevel, msg, fields)
}

// Info implements Logger.Info.
func (z *ZerologLogger) Info(msg string, fields ...any) {
	z.log(zerolog.InfoLevel, msg, fields)
}

// Warn implements Logger.Warn.
func (z *ZerologLogger) Warn(msg string, fields ...any) {
	z.log(zerolog.WarnLevel, msg, fields)
}

// Error implements Logger.Error.
func (z *ZerologLogger) Error(msg string, fields ...any) {
	z.log(zerolog.ErrorLevel, msg, fields)
}

// With implements Logger.With.
func (z *ZerologLogger) With(fields ...any) Logger {
	merged := make([]any, 0, len(z.fields)+len(fields))
	merged = append(merged, z.fields...)
	merged = append(merged, fields...)
	return &ZerologLogger{logger: z.logger, level: z.level, fields: merged}
}

// Enabled implements Logger.Enabled.
func (z *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return z.minLevel() <= toZerologLevel(level)
}

func (z *ZerologLogger) minLevel() zerolog.Level {
	if z.level != nil {
		return zerolog.Level(z.level.Load())
	}
	return z.logger.GetLevel()
}

func (z *ZerologLogger) log(level zerolog.Level, msg string, fields []any) {
	if level < z.minLevel() {
		return
	}
	z.emit(z.logger.WithLevel(level), msg, fields)
}

func (z *ZerologLogger) emit(e *zerolog.Event, msg string, fields []any) {
	// zerolog returns a nil event for disabled levels
	if e == nil {
		return
	}
	e = appendFields(e, z.fields)
	e = appendFields(e, fields)
	e.Msg(msg)
}

// appendFields writes alternating key-value pairs onto e. A bare error in key
// position is recorded under ErrorKey together with its stack trace.
func appendFields(e *zerolog.Event, fields []any) *zerolog.Event {
	for i := 0; i < len(fields); i++ {
		if err, ok := fields[i].(error); ok {
			e = appendError(e, ErrorKey, err)
			continue
		}
		key := fmt.Sprint(fields[i])
		if i+1 >= len(fields) {
			e = e.Str("!BADKEY", key)
			break
		}
		i++
		switch v := fields[i].(type) {
		case error:
			e = appendError(e, key, v)
		case string:
			e = e.Str(key, v)
		case int:
			e = e.Int(key, v)
		case int64:
			e = e.Int64(key, v)
		case float64:
			e = e.Float64(key, v)
		case bool:
			e = e.Bool(key, v)
		case []float64:
			e = e.Floats64(key, v)
		case []string:
			e = e.Strs(key, v)
		case time.Duration:
			e = e.Dur(key, v)
		case zerolog.LogObjectMarshaler:
			e = e.Object(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	return e
}

func appendError(e *zerolog.Event, key string, err error) *zerolog.Event {
	e = e.AnErr(key, err).Str(ErrorTypeKey, fmt.Sprintf("%T", errors.UnwrapAll(err)))
	if stack := extractStacktrace(err); stack != "" {
		e = e.Str(StacktraceKey, stack)
	}
	return e
}

// extractStacktrace returns the stack recorded by cockroachdb/errors.WithStack, if any.
func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ZerologProvider implements LoggerProvider with zerolog loggers sharing one
// writer and one minimum level.
type ZerologProvider struct {
	w     io.Writer
	level atomic.Int32
}

// NewZerologProvider creates a provider writing JSON records to w.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	p := &ZerologProvider{w: w}
	p.SetLevel(level)
	return p
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	// filtering happens against the shared level, not the zerolog one
	return &ZerologLogger{
		logger: newZerolog(p.w, LevelDebug),
		level:  &p.level,
	}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel. It also applies to loggers
// already handed out by this provider.
func (p *ZerologProvider) SetLevel(level Level) {
	p.level.Store(int32(toZerologLevel(level)))
}
