// Package logger provides structured logging with per-module level
// control and automatic redaction of sensitive values (parameter store
// values may carry tokens or credentials mirrored from the remote KV).
//
// Components obtain a scoped logger via For, named hierarchically
// ("savant.pipeline", "savant.paramstore", ...) so ModuleConfig can
// apply per-component verbosity.
//
// All exported package-level functions use the global DefaultLogger,
// which can be reconfigured for different output formats and levels.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

var (
	// DefaultLogger is the global structured logger instance.
	// It is safe for concurrent use and initialized with slog.LevelInfo by default.
	DefaultLogger *slog.Logger

	// logOutput is the writer the package-managed logger writes to.
	// SetOutput changes it; nil means os.Stderr.
	logOutput io.Writer = os.Stderr

	// customHandler holds the handler installed via SetLogger, if any.
	// While set, Configure and initLogger leave the logger alone.
	customHandler slog.Handler

	// currentFormat is the log encoding used by initLogger: FormatText or FormatJSON.
	currentFormat = FormatText

	// currentLevel is the level last passed to initLogger or SetLevel.
	currentLevel = slog.LevelInfo
)

func init() {
	// Check LOG_LEVEL environment variable
	level := slog.LevelInfo
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		level = ParseLevel(envLevel)
	}
	initLogger(level, nil)
}

// ParseLevel parses a level name (case-insensitive) into a slog.Level.
// It recognizes "trace" (below slog.LevelDebug, for very verbose
// per-frame tracing), "debug", "info", "warn"/"warning", and "error".
// Unknown or empty input defaults to slog.LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return slog.LevelDebug - 4
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// initLogger rebuilds DefaultLogger from the package's current state
// (logOutput, currentFormat, globalModuleConfig) at the given level. It is a
// no-op with respect to customHandler: callers check customHandler first.
func initLogger(level slog.Level, commonFields []slog.Attr) {
	currentLevel = level

	var baseHandler slog.Handler
	opts := &slog.HandlerOptions{Level: level}
	if currentFormat == FormatJSON {
		baseHandler = slog.NewJSONHandler(logOutput, opts)
	} else {
		baseHandler = slog.NewTextHandler(logOutput, opts)
	}

	var handler slog.Handler
	if globalModuleConfig != nil && len(globalModuleConfig.modules) > 0 {
		handler = NewModuleHandler(baseHandler, globalModuleConfig, commonFields...)
	} else {
		handler = NewContextHandler(baseHandler, commonFields...)
	}

	DefaultLogger = slog.New(handler)
	slog.SetDefault(DefaultLogger)
}

// For returns a logger scoped to component, a hierarchical dot-separated
// name such as "savant.pipeline" or "savant.paramstore.etcdkv". Every
// record logged through it carries a "component" attribute, and
// ModuleConfig's level resolution walks the same dot hierarchy.
func For(component string) *slog.Logger {
	return DefaultLogger.With(slog.String("component", component))
}

// SetLevel changes the logging level for all subsequent log operations.
// This is safe for concurrent use as it replaces the entire logger instance.
// It has no effect while a custom logger installed via SetLogger is active.
func SetLevel(level slog.Level) {
	if customHandler != nil {
		currentLevel = level
		return
	}
	initLogger(level, nil)
}

// SetLogger installs l as DefaultLogger, bypassing the package's own
// format/output/module-level machinery entirely. Passing nil removes the
// custom logger and rebuilds DefaultLogger from the current level/output/format.
func SetLogger(l *slog.Logger) {
	if l == nil {
		customHandler = nil
		initLogger(currentLevel, nil)
		return
	}
	customHandler = l.Handler()
	DefaultLogger = l
	slog.SetDefault(l)
}

// SetOutput changes where the package-managed logger writes. Passing nil
// resets output to os.Stderr. Has no effect while a custom logger installed
// via SetLogger is active, other than being remembered for when it is cleared.
func SetOutput(w io.Writer) {
	if w == nil {
		logOutput = os.Stderr
	} else {
		logOutput = w
	}
	if customHandler == nil {
		initLogger(currentLevel, nil)
	}
}

// SetVerbose enables debug-level logging when verbose is true, otherwise sets info-level.
// This is a convenience wrapper around SetLevel for command-line verbose flags.
func SetVerbose(verbose bool) {
	if verbose {
		SetLevel(slog.LevelDebug)
	} else {
		SetLevel(slog.LevelInfo)
	}
}

// Info logs an informational message with structured key-value attributes.
// Args should be provided in key-value pairs: key1, value1, key2, value2, ...
func Info(msg string, args ...any) {
	DefaultLogger.Info(msg, args...)
}

// InfoContext logs an informational message with context and structured attributes.
// The context can be used for request tracing and cancellation.
func InfoContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.InfoContext(ctx, msg, args...)
}

// Debug logs a debug-level message with structured attributes.
// Debug messages are only output when the log level is set to LevelDebug or lower.
func Debug(msg string, args ...any) {
	DefaultLogger.Debug(msg, args...)
}

// DebugContext logs a debug message with context and structured attributes.
func DebugContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.DebugContext(ctx, msg, args...)
}

// Warn logs a warning message with structured attributes.
// Use for recoverable errors or unexpected but non-critical situations.
func Warn(msg string, args ...any) {
	DefaultLogger.Warn(msg, args...)
}

// WarnContext logs a warning message with context and structured attributes.
func WarnContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.WarnContext(ctx, msg, args...)
}

// Error logs an error message with structured attributes.
// Use for errors that affect operation but don't cause complete failure.
func Error(msg string, args ...any) {
	DefaultLogger.Error(msg, args...)
}

// ErrorContext logs an error message with context and structured attributes.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.ErrorContext(ctx, msg, args...)
}

// StageOp logs a pipeline stage operation outcome.
func StageOp(log *slog.Logger, stage, operation string, elements int, err error) {
	if err != nil {
		log.Error("stage operation failed", "stage", stage, "operation", operation, "elements", elements, "error", err)
		return
	}
	log.Debug("stage operation", "stage", stage, "operation", operation, "elements", elements)
}

// QueryEval logs a match query evaluation outcome at debug level.
func QueryEval(log *slog.Logger, kind string, matched bool, err error) {
	if err != nil {
		log.Error("query evaluation failed", "kind", kind, "error", err)
		return
	}
	log.Debug("query evaluation", "kind", kind, "matched", matched)
}

// ParamStoreOp logs a parameter store operation outcome.
func ParamStoreOp(log *slog.Logger, op, key string, err error) {
	if err != nil {
		log.Error("parameter store operation failed", "op", op, "key", key, "error", err)
		return
	}
	log.Debug("parameter store operation", "op", op, "key", key)
}

// FIFOOp logs a persistent FIFO push/pop outcome.
func FIFOOp(log *slog.Logger, op string, depth uint64, err error) {
	if err != nil {
		log.Warn("fifo operation failed", "op", op, "depth", depth, "error", err)
		return
	}
	log.Debug("fifo operation", "op", op, "depth", depth)
}

// UDFCall logs a UDF invocation outcome.
func UDFCall(log *slog.Logger, kind, name string, err error) {
	if err != nil {
		log.Error("udf call failed", "kind", kind, "name", name, "error", err)
		return
	}
	log.Debug("udf call", "kind", kind, "name", name)
}

var (
	// secretPatterns matches common credential/token shapes that may
	// appear in parameter values mirrored from the remote store.
	secretPatterns = []*regexp.Regexp{
		regexp.MustCompile(`sk-[a-zA-Z0-9]{32,}`),     // API-key-shaped secrets
		regexp.MustCompile(`AIza[a-zA-Z0-9_-]{35}`),   // cloud-provider API keys
		regexp.MustCompile(`Bearer\s+[a-zA-Z0-9_-]+`), // bearer tokens
	}
)

// RedactSensitiveData replaces credential-shaped substrings of input with a
// redacted form that preserves a short prefix for debugging while hiding
// the rest. Intended for logging parameter store values, which may mirror
// secrets from the remote backend.
func RedactSensitiveData(input string) string {
	result := input

	for _, pattern := range secretPatterns {
		result = pattern.ReplaceAllStringFunc(result, func(match string) string {
			if strings.HasPrefix(match, "Bearer ") {
				return "Bearer [REDACTED]"
			}
			if len(match) > 8 {
				return match[:4] + "...[REDACTED]"
			}
			return "[REDACTED]"
		})
	}

	return result
}
