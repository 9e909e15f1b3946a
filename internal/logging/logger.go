// Package logging provides structured logging for the go-kaio project
package logging

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with kaio-specific structured fields
type Logger struct {
	zlog zerolog.Logger
}

// LogLevel represents the available log levels
type LogLevel int

const (
	LevelDebug LogLevel = LogLevel(zerolog.DebugLevel)
	LevelInfo  LogLevel = LogLevel(zerolog.InfoLevel)
	LevelWarn  LogLevel = LogLevel(zerolog.WarnLevel)
	LevelError LogLevel = LogLevel(zerolog.ErrorLevel)
)

// Config holds logging configuration
type Config struct {
	Level   LogLevel
	Format  string // "json" or "text"
	Output  io.Writer
	Sync    bool // If true, writes are synchronous (useful for testing)
	NoColor bool // If true, disables ANSI color codes (useful for testing)
}

// DefaultConfig returns a sensible default configuration. The library sits
// under other people's I/O loops, so it stays quiet below warn.
func DefaultConfig() *Config {
	return &Config{
		Level:  LevelWarn,
		Format: "text",
		Output: os.Stderr,
	}
}

// dropWriter decouples log emission from the submit/harvest hot path. When
// the channel is full the message is counted and discarded rather than
// blocking an I/O loop.
type dropWriter struct {
	out     io.Writer
	ch      chan []byte
	done    chan struct{}
	dropped atomic.Uint64

	mu     sync.Mutex
	closed bool
}

func newDropWriter(w io.Writer, depth int) *dropWriter {
	dw := &dropWriter{
		out:  w,
		ch:   make(chan []byte, depth),
		done: make(chan struct{}),
	}
	go func() {
		defer close(dw.done)
		for msg := range dw.ch {
			dw.out.Write(msg)
		}
	}()
	return dw
}

func (dw *dropWriter) Write(p []byte) (int, error) {
	dw.mu.Lock()
	closed := dw.closed
	dw.mu.Unlock()
	if closed {
		return 0, io.ErrClosedPipe
	}

	// zerolog reuses p after Write returns
	msg := make([]byte, len(p))
	copy(msg, p)

	select {
	case dw.ch <- msg:
	default:
		dw.dropped.Add(1)
	}
	return len(p), nil
}

// Dropped reports how many messages were discarded under backpressure.
func (dw *dropWriter) Dropped() uint64 { return dw.dropped.Load() }

func (dw *dropWriter) Close() error {
	dw.mu.Lock()
	if !dw.closed {
		dw.closed = true
		close(dw.ch)
	}
	dw.mu.Unlock()
	<-dw.done
	return nil
}

// NewLogger creates a new structured logger
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}

	output := config.Output
	if !config.Sync {
		output = newDropWriter(config.Output, 1000)
	}

	var zlog zerolog.Logger
	if config.Format == "json" {
		zlog = zerolog.New(output).With().Timestamp().Logger()
	} else {
		cw := zerolog.ConsoleWriter{Out: output, NoColor: config.NoColor}
		zlog = zerolog.New(cw).With().Timestamp().Logger()
	}

	return &Logger{zlog: zlog.Level(zerolog.Level(config.Level))}
}

var defaultLogger atomic.Pointer[Logger]

// Default returns the default logger, creating it if necessary
func Default() *Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	// losing the race just builds one extra logger
	defaultLogger.CompareAndSwap(nil, NewLogger(nil))
	return defaultLogger.Load()
}

// SetDefault sets the default logger
func SetDefault(logger *Logger) {
	defaultLogger.Store(logger)
}

// WithOp returns a logger with kernel-operation context
func (l *Logger) WithOp(op string) *Logger {
	return &Logger{zlog: l.zlog.With().Str("op", op).Logger()}
}

// WithFD returns a logger with file-descriptor context
func (l *Logger) WithFD(fd int32) *Logger {
	return &Logger{zlog: l.zlog.With().Int32("fd", fd).Logger()}
}

// WithError returns a logger with error context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zlog: l.zlog.With().Err(err).Logger()}
}

// Standard logging methods take alternating key/value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	emit(l.zlog.Debug(), msg, args)
}

func (l *Logger) Info(msg string, args ...any) {
	emit(l.zlog.Info(), msg, args)
}

func (l *Logger) Warn(msg string, args ...any) {
	emit(l.zlog.Warn(), msg, args)
}

func (l *Logger) Error(msg string, args ...any) {
	emit(l.zlog.Error(), msg, args)
}

func emit(event *zerolog.Event, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		event = event.Interface(key, args[i+1])
	}
	event.Msg(msg)
}

// Convenience functions for the global logger
func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}
