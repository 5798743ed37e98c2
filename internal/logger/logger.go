// Copyright 2023 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger wraps log/slog with the severity scheme and on-disk
// rotation the rest of this module expects: a TRACE level below
// slog's own Debug, a choice of "text" or "json" rendering, and
// output routed through a rotating gopkg.in/natefinch/lumberjack.v2
// file when one is configured.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

type loggerFactory struct {
	format string
	level  *slog.LevelVar
}

var (
	defaultLoggerFactory = &loggerFactory{format: "text", level: new(slog.LevelVar)}
	defaultLogger        = slog.New(defaultLoggerFactory.createJsonOrTextHandler(os.Stderr, defaultLoggerFactory.level, ""))
)

type jsonTimestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int   `json:"nanos"`
}

// replaceAttr reshapes slog's default {time, level, msg} attrs into
// this package's {timestamp:{seconds,nanos}, severity, message} shape
// for JSON, or a quoted "severity=X message=..." line for text.
func replaceAttr(prefix string, jsonFormat bool) func(groups []string, a slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		switch a.Key {
		case slog.TimeKey:
			t := a.Value.Time()
			if jsonFormat {
				return slog.Any("timestamp", jsonTimestamp{Seconds: t.Unix(), Nanos: t.Nanosecond()})
			}
			return slog.String(slog.TimeKey, t.Format("2006/01/02 15:04:05.000000"))
		case slog.LevelKey:
			lvl := a.Value.Any().(slog.Level)
			return slog.String("severity", severityName(lvl))
		case slog.MessageKey:
			return slog.String("message", prefix+a.Value.String())
		}
		return a
	}
}

func (f *loggerFactory) createJsonOrTextHandler(w io.Writer, level *slog.LevelVar, prefix string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr(prefix, f.format == "json"),
	}
	if f.format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// LogRotateConfig mirrors cfg's logging.log-rotate block: the rotation
// policy handed straight to lumberjack.Logger.
type LogRotateConfig struct {
	MaxFileSizeMB int
	BackupFileCnt int
	Compress      bool
}

// InitLogFile redirects the default logger at a rotating file on disk,
// wrapped in an AsyncLogger so writers never block on rotation or
// fsync.
func InitLogFile(path string, rotate LogRotateConfig, severity, format string) (*AsyncLogger, error) {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rotate.MaxFileSizeMB,
		MaxBackups: rotate.BackupFileCnt,
		Compress:   rotate.Compress,
	}
	async := NewAsyncLogger(lj, 4096)

	defaultLoggerFactory.format = format
	setLoggingLevel(severity, defaultLoggerFactory.level)
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(async, defaultLoggerFactory.level, ""))
	return async, nil
}

// SetLevel adjusts the default logger's minimum severity without
// touching its output sink.
func SetLevel(severity string) {
	setLoggingLevel(severity, defaultLoggerFactory.level)
}

func log(ctx context.Context, level slog.Level, format string, v ...any) {
	if !defaultLogger.Enabled(ctx, level) {
		return
	}
	msg := format
	if len(v) > 0 {
		msg = fmt.Sprintf(format, v...)
	}
	defaultLogger.Log(ctx, level, msg)
}

func Tracef(format string, v ...any) { log(context.Background(), levelTrace, format, v...) }
func Debugf(format string, v ...any) { log(context.Background(), slog.LevelDebug, format, v...) }
func Infof(format string, v ...any)  { log(context.Background(), slog.LevelInfo, format, v...) }
func Warnf(format string, v ...any)  { log(context.Background(), slog.LevelWarn, format, v...) }
func Errorf(format string, v ...any) { log(context.Background(), slog.LevelError, format, v...) }

// Fatalf logs at ERROR then exits the process, mirroring the
// teacher's convention for unrecoverable bring-up failures.
func Fatalf(format string, v ...any) {
	Errorf(format, v...)
	os.Exit(1)
}
