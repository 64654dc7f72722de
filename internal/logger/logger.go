// Package logger provides structured logging utilities
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus.Logger with additional functionality
type Logger struct {
	*logrus.Logger
}

// ContextKey represents keys for context values
type ContextKey string

const (
	RequestIDKey  ContextKey = "request_id"
	MerchantIDKey ContextKey = "merchant_id"
)

// New creates a new logger instance writing to stdout
func New(level, format string) *Logger {
	return NewWithOutput(level, format, os.Stdout)
}

// NewWithOutput creates a logger writing to out
func NewWithOutput(level, format string, out io.Writer) *Logger {
	log := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	log.SetOutput(out)

	return &Logger{Logger: log}
}

// WithContext adds context values to log fields
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithFields(logrus.Fields{})

	if requestID := ctx.Value(RequestIDKey); requestID != nil {
		entry = entry.WithField("request_id", requestID)
	}

	if merchantID := ctx.Value(MerchantIDKey); merchantID != nil {
		entry = entry.WithField("merchant_id", merchantID)
	}

	return entry
}

// WithRequest adds request-specific fields
func (l *Logger) WithRequest(requestID, method, path string) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"path":       path,
	})
}

// WithError adds error information to log fields
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.Logger.WithError(err)
}

// WithComponent adds component name to log fields
func (l *Logger) WithComponent(component string) *logrus.Entry {
	return l.Logger.WithField("component", component)
}

// WithOperation tags an analytics computation and the fingerprint it ran under
func (l *Logger) WithOperation(operation, fingerprint string) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{
		"component":   "analytics",
		"operation":   operation,
		"fingerprint": fingerprint,
	})
}

// Global logger instance
var globalLogger *Logger

// Init initializes the global logger
func Init(level, format string) {
	globalLogger = New(level, format)
}

// SetLogger replaces the global logger
func SetLogger(l *Logger) {
	globalLogger = l
}

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	if globalLogger == nil {
		globalLogger = New("info", "json")
	}
	return globalLogger
}

// Convenience functions for global logger
func WithContext(ctx context.Context) *logrus.Entry {
	return GetLogger().WithContext(ctx)
}

func WithRequest(requestID, method, path string) *logrus.Entry {
	return GetLogger().WithRequest(requestID, method, path)
}

func WithError(err error) *logrus.Entry {
	return GetLogger().WithError(err)
}

func WithComponent(component string) *logrus.Entry {
	return GetLogger().WithComponent(component)
}

func WithOperation(operation, fingerprint string) *logrus.Entry {
	return GetLogger().WithOperation(operation, fingerprint)
}

func Info(args ...interface{}) {
	GetLogger().Logger.Info(args...)
}

func Infof(format string, args ...interface{}) {
	GetLogger().Logger.Infof(format, args...)
}

func Warn(args ...interface{}) {
	GetLogger().Logger.Warn(args...)
}

func Error(args ...interface{}) {
	GetLogger().Logger.Error(args...)
}

func Fatal(args ...interface{}) {
	GetLogger().Logger.Fatal(args...)
}

func Fatalf(format string, args ...interface{}) {
	GetLogger().Logger.Fatalf(format, args...)
}

func Debug(args ...interface{}) {
	GetLogger().Logger.Debug(args...)
}
