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
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record is the JSON shape of one emitted log line.
type record struct {
	Level   string `json:"level"`
	Message string `json:"msg"`
}

func extractRecord(t *testing.T, data []byte) record {
	t.Helper()
	var rec record
	require.NoError(t, json.Unmarshal(data, &rec))
	return rec
}

func TestLog(t *testing.T) {
	t.Run("testDebug", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := New(DebugLevel, buffer)
		require.Equal(t, DebugLevel, logger.LogLevel())

		logger.Debug("test debug")
		rec := extractRecord(t, buffer.Bytes())
		assert.Equal(t, "test debug", rec.Message)
		assert.Equal(t, "debug", rec.Level)
	})
	t.Run("testInfo", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := New(InfoLevel, buffer)
		require.Equal(t, InfoLevel, logger.LogLevel())

		logger.Infof("test %s", "info")
		rec := extractRecord(t, buffer.Bytes())
		assert.Equal(t, "test info", rec.Message)
		assert.Equal(t, "info", rec.Level)
	})
	t.Run("testWarn", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := New(WarningLevel, buffer)
		require.Equal(t, WarningLevel, logger.LogLevel())

		logger.Warn("test warn")
		rec := extractRecord(t, buffer.Bytes())
		assert.Equal(t, "test warn", rec.Message)
		assert.Equal(t, "warn", rec.Level)
	})
	t.Run("testError", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := New(ErrorLevel, buffer)
		require.Equal(t, ErrorLevel, logger.LogLevel())

		logger.Errorf("test %s", "error")
		rec := extractRecord(t, buffer.Bytes())
		assert.Equal(t, "test error", rec.Message)
		assert.Equal(t, "error", rec.Level)
	})
	t.Run("testLevelFiltering", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := New(WarningLevel, buffer)

		logger.Info("dropped")
		logger.Debug("dropped")
		assert.Zero(t, buffer.Len())
	})
	t.Run("testMultipleWriters", func(t *testing.T) {
		first := new(bytes.Buffer)
		second := new(bytes.Buffer)
		logger := New(InfoLevel, first, second)
		require.Len(t, logger.LogOutput(), 2)

		logger.Info("fan out")
		assert.Equal(t, first.String(), second.String())
		rec := extractRecord(t, first.Bytes())
		assert.Equal(t, "fan out", rec.Message)
	})
	t.Run("testStdLogger", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := New(InfoLevel, buffer)

		std := logger.StdLogger()
		require.NotNil(t, std)
		std.Print("through the standard logger")
		rec := extractRecord(t, buffer.Bytes())
		assert.Equal(t, "through the standard logger", rec.Message)
	})
	t.Run("testDiscardLogger", func(t *testing.T) {
		assert.Equal(t, InvalidLevel, DiscardLogger.LogLevel())
		assert.Equal(t, []io.Writer{io.Discard}, DiscardLogger.LogOutput())
		// must not panic
		DiscardLogger.Info("dropped")
		DiscardLogger.Errorf("dropped %d", 1)
	})
	t.Run("testLevelString", func(t *testing.T) {
		assert.Equal(t, "INFO", InfoLevel.String())
		assert.Equal(t, "WARNING", WarningLevel.String())
		assert.Equal(t, "ERROR", ErrorLevel.String())
		assert.Equal(t, "FATAL", FatalLevel.String())
		assert.Equal(t, "PANIC", PanicLevel.String())
		assert.Equal(t, "DEBUG", DebugLevel.String())
		assert.Empty(t, InvalidLevel.String())
	})
}
