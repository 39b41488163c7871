/*
 * MIT License
 *
 * Copyright (c) 2022-2026 Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package log

import (
	"io"
	golog "log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// DefaultLogger is a global logger configured to output messages at InfoLevel
	// and above to os.Stdout.
	DefaultLogger = New(InfoLevel, os.Stdout)

	// DebugLogger is a global logger configured to output messages at DebugLevel
	// and above to os.Stdout.
	DebugLogger = New(DebugLevel, os.Stdout)

	// DiscardLogger is a no-op logger that discards all log messages.
	DiscardLogger Logger = discardLogger{}
)

// Log implements Logger interface with zap as the underlying logging library.
type Log struct {
	logger  *zap.Logger
	sugar   *zap.SugaredLogger
	outputs []io.Writer
}

// enforce compilation and linter error
var _ Logger = (*Log)(nil)

// New creates an instance of Log writing to the given writers. All writers
// receive every record at or above the given level.
func New(level Level, writers ...io.Writer) *Log {
	syncers := make([]zapcore.WriteSyncer, len(writers))
	for i, writer := range writers {
		syncers[i] = zapcore.AddSync(writer)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	switch level {
	case DebugLevel:
		zapLevel = zapcore.DebugLevel
	case WarningLevel:
		zapLevel = zapcore.WarnLevel
	case ErrorLevel:
		zapLevel = zapcore.ErrorLevel
	case FatalLevel:
		zapLevel = zapcore.FatalLevel
	case PanicLevel:
		zapLevel = zapcore.PanicLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.NewMultiWriteSyncer(syncers...),
		zapLevel,
	)

	logger := zap.New(core)
	return &Log{
		logger:  logger,
		sugar:   logger.Sugar(),
		outputs: writers,
	}
}

// Debug starts a message with debug level
func (l *Log) Debug(v ...any) {
	l.sugar.Debug(v...)
}

// Debugf starts a message with debug level
func (l *Log) Debugf(format string, v ...any) {
	l.sugar.Debugf(format, v...)
}

// Info starts a message with info level
func (l *Log) Info(v ...any) {
	l.sugar.Info(v...)
}

// Infof starts a message with info level
func (l *Log) Infof(format string, v ...any) {
	l.sugar.Infof(format, v...)
}

// Warn starts a message with warn level
func (l *Log) Warn(v ...any) {
	l.sugar.Warn(v...)
}

// Warnf starts a message with warn level
func (l *Log) Warnf(format string, v ...any) {
	l.sugar.Warnf(format, v...)
}

// Error starts a message with error level
func (l *Log) Error(v ...any) {
	l.sugar.Error(v...)
}

// Errorf starts a message with error level
func (l *Log) Errorf(format string, v ...any) {
	l.sugar.Errorf(format, v...)
}

// Fatal starts a message with fatal level followed by a call to os.Exit(1)
func (l *Log) Fatal(v ...any) {
	l.sugar.Fatal(v...)
}

// Fatalf starts a message with fatal level followed by a call to os.Exit(1)
func (l *Log) Fatalf(format string, v ...any) {
	l.sugar.Fatalf(format, v...)
}

// Panic starts a message with panic level followed by a call to panic()
func (l *Log) Panic(v ...any) {
	l.sugar.Panic(v...)
}

// Panicf starts a message with panic level followed by a call to panic()
func (l *Log) Panicf(format string, v ...any) {
	l.sugar.Panicf(format, v...)
}

// LogLevel returns the log level that is set
func (l *Log) LogLevel() Level {
	switch l.logger.Level() {
	case zapcore.DebugLevel:
		return DebugLevel
	case zapcore.InfoLevel:
		return InfoLevel
	case zapcore.WarnLevel:
		return WarningLevel
	case zapcore.ErrorLevel:
		return ErrorLevel
	case zapcore.FatalLevel:
		return FatalLevel
	case zapcore.PanicLevel:
		return PanicLevel
	default:
		return InvalidLevel
	}
}

// LogOutput returns the log output that is set
func (l *Log) LogOutput() []io.Writer {
	return l.outputs
}

// StdLogger returns the standard logger associated to the logger
func (l *Log) StdLogger() *golog.Logger {
	return zap.NewStdLog(l.logger)
}
