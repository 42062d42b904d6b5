// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log provides the ambient logging façade threaded through every
// pipeline component's Options. The API shape (Logger, Helper, NewFilter,
// FilterLevel) is the one the teacher's own internal log subpackage exposes
// to its callers; the backend here is zerolog instead of a hand-rolled
// writer.
package log

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Level is a filterable log severity.
type Level int

// Severities, ordered from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger is the minimal structured logging interface every component
// depends on. Callers may supply their own implementation via Options.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// zerologLogger adapts zerolog.Logger to the Logger interface.
type zerologLogger struct {
	zl zerolog.Logger
}

// NewStdLogger builds a Logger that writes zerolog's JSON event lines
// (with a timestamp) to w, mirroring the teacher's log.NewStdLogger(os.Stdout) call site.
func NewStdLogger(w io.Writer) Logger {
	zl := zerolog.New(w).With().Timestamp().Logger()
	return &zerologLogger{zl: zl}
}

func (l *zerologLogger) Log(level Level, keyvals ...interface{}) error {
	var ev *zerolog.Event
	switch level {
	case LevelDebug:
		ev = l.zl.Debug()
	case LevelInfo:
		ev = l.zl.Info()
	case LevelWarn:
		ev = l.zl.Warn()
	default:
		ev = l.zl.Error()
	}
	ev.Msg(fmt.Sprint(keyvals...))
	return nil
}

// filter wraps a Logger, dropping events below a minimum level.
type filter struct {
	next Logger
	min  Level
}

// FilterOption configures NewFilter.
type FilterOption func(*filter)

// FilterLevel sets the minimum level a filtered logger passes through.
func FilterLevel(level Level) FilterOption {
	return func(f *filter) { f.min = level }
}

// NewFilter returns a Logger that only forwards events at or above the
// configured minimum severity, matching the teacher's
// log.NewFilter(logger, log.FilterLevel(log.LevelError)) call site.
func NewFilter(next Logger, opts ...FilterOption) Logger {
	f := &filter{next: next, min: LevelDebug}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, keyvals ...interface{}) error {
	if level < f.min {
		return nil
	}
	return f.next.Log(level, keyvals...)
}

// Helper is the call-site façade every component takes: Debugf/Infof/
// Warnf/Errorf, matching the teacher's *log.Helper usage in file.go.
type Helper struct {
	logger Logger
}

// NewHelper wraps a Logger in the Debugf/Infof/Warnf/Errorf call-site API.
func NewHelper(logger Logger) *Helper {
	if logger == nil {
		logger = NewFilter(NewStdLogger(os.Stderr), FilterLevel(LevelError))
	}
	return &Helper{logger: logger}
}

func (h *Helper) Debugf(format string, args ...interface{}) {
	h.logger.Log(LevelDebug, fmt.Sprintf(format, args...))
}

func (h *Helper) Infof(format string, args ...interface{}) {
	h.logger.Log(LevelInfo, fmt.Sprintf(format, args...))
}

func (h *Helper) Warnf(format string, args ...interface{}) {
	h.logger.Log(LevelWarn, fmt.Sprintf(format, args...))
}

func (h *Helper) Errorf(format string, args ...interface{}) {
	h.logger.Log(LevelError, fmt.Sprintf(format, args...))
}
