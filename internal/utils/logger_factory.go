package utils

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

// LogFormat enumerates supported log encodings.
type LogFormat string

const (
	// LogLevelDebug enables debug logging.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo enables informational logging.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn enables warning logging.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError enables error logging.
	LogLevelError LogLevel = "error"
)

const (
	// LogFormatStructured emits JSON log lines.
	LogFormatStructured LogFormat = "structured"
	// LogFormatConsole emits human-readable log lines.
	LogFormatConsole LogFormat = "console"
)

const (
	unsupportedLogLevelTemplateConstant  = "unsupported log level %q"
	unsupportedLogFormatTemplateConstant = "unsupported log format %q"
	timeEncoderKeyConstant               = "ts"
	messageEncoderKeyConstant            = "msg"
)

// LoggerOutputs groups the loggers used by a run. DiagnosticLogger carries
// every event at the configured level; ConsoleLogger carries human-readable
// progress messages and is a no-op in structured mode.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	ConsoleLogger    *zap.Logger
}

// LoggerFactory creates zap loggers writing to standard error.
type LoggerFactory struct{}

// NewLoggerFactory constructs a LoggerFactory.
func NewLoggerFactory() LoggerFactory {
	return LoggerFactory{}
}

// CreateLoggerOutputs builds the diagnostic and console loggers.
func (factory LoggerFactory) CreateLoggerOutputs(logLevel LogLevel, logFormat LogFormat) (LoggerOutputs, error) {
	zapLevel, levelError := parseZapLevel(logLevel)
	if levelError != nil {
		return LoggerOutputs{}, levelError
	}

	standardError := zapcore.Lock(os.Stderr)
	switch LogFormat(strings.ToLower(strings.TrimSpace(string(logFormat)))) {
	case LogFormatStructured:
		encoderConfiguration := zap.NewProductionEncoderConfig()
		encoderConfiguration.TimeKey = timeEncoderKeyConstant
		encoderConfiguration.EncodeTime = zapcore.ISO8601TimeEncoder
		diagnosticCore := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfiguration), standardError, zapLevel)
		return LoggerOutputs{
			DiagnosticLogger: zap.New(diagnosticCore, zap.AddCaller()),
			ConsoleLogger:    zap.NewNop(),
		}, nil
	case LogFormatConsole:
		diagnosticConfiguration := zap.NewDevelopmentEncoderConfig()
		diagnosticConfiguration.EncodeLevel = zapcore.CapitalLevelEncoder
		diagnosticCore := zapcore.NewCore(zapcore.NewConsoleEncoder(diagnosticConfiguration), standardError, zapLevel)

		consoleConfiguration := zapcore.EncoderConfig{
			MessageKey: messageEncoderKeyConstant,
			LineEnding: zapcore.DefaultLineEnding,
		}
		consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfiguration), standardError, consoleLevel(zapLevel))
		return LoggerOutputs{
			DiagnosticLogger: zap.New(diagnosticCore),
			ConsoleLogger:    zap.New(consoleCore),
		}, nil
	default:
		return LoggerOutputs{}, fmt.Errorf(unsupportedLogFormatTemplateConstant, logFormat)
	}
}

// ParseLogFormat validates a textual log format.
func ParseLogFormat(value string) (LogFormat, error) {
	normalized := LogFormat(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case LogFormatStructured, LogFormatConsole:
		return normalized, nil
	default:
		return "", fmt.Errorf(unsupportedLogFormatTemplateConstant, value)
	}
}

func parseZapLevel(logLevel LogLevel) (zapcore.Level, error) {
	switch LogLevel(strings.ToLower(strings.TrimSpace(string(logLevel)))) {
	case LogLevelDebug:
		return zapcore.DebugLevel, nil
	case LogLevelInfo:
		return zapcore.InfoLevel, nil
	case LogLevelWarn:
		return zapcore.WarnLevel, nil
	case LogLevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf(unsupportedLogLevelTemplateConstant, logLevel)
	}
}

func consoleLevel(diagnosticLevel zapcore.Level) zapcore.Level {
	if diagnosticLevel > zapcore.InfoLevel {
		return diagnosticLevel
	}
	return zapcore.InfoLevel
}
