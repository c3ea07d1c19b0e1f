/*
 * Copyright 2026 brunodmn.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"log/slog"
	"os"
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "DEBUG"
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger is the structured logging contract used across the package.
// Fields are alternating key/value pairs.
type Logger interface {
	SetLevel(LogLevel)
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
}

// DefaultLogger adapts log/slog to the Logger interface.
type DefaultLogger struct {
	logger *slog.Logger
	level  *slog.LevelVar
}

// NewDefaultLogger returns a slog-backed logger writing text to stderr.
func NewDefaultLogger(level LogLevel) *DefaultLogger {
	lv := new(slog.LevelVar)
	lv.Set(level.slogLevel())
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv})
	return &DefaultLogger{
		logger: slog.New(handler).With("component", "egret"),
		level:  lv,
	}
}

// NewSlogLogger wraps an existing slog logger.
func NewSlogLogger(logger *slog.Logger) *DefaultLogger {
	return &DefaultLogger{logger: logger, level: new(slog.LevelVar)}
}

func (l *DefaultLogger) SetLevel(level LogLevel) { l.level.Set(level.slogLevel()) }

func (l *DefaultLogger) Debug(msg string, fields ...any) { l.logger.Debug(msg, fields...) }
func (l *DefaultLogger) Info(msg string, fields ...any)  { l.logger.Info(msg, fields...) }
func (l *DefaultLogger) Warn(msg string, fields ...any)  { l.logger.Warn(msg, fields...) }
func (l *DefaultLogger) Error(msg string, fields ...any) { l.logger.Error(msg, fields...) }

// NopLogger discards everything. Useful in tests.
type NopLogger struct{}

func (NopLogger) SetLevel(LogLevel)    {}
func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}
