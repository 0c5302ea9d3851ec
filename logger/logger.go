// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package logger

import (
	"sync"

	"github.com/sassoftware/pdf-tools/tracer"
)

// LogLevel represents log severity
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	ErrorLevel LogLevel = "error"
)

// LogFunc is a single logger function that handles all levels
type LogFunc func(level LogLevel, msg string, keyvals ...interface{})

func discard(LogLevel, string, ...interface{}) {}

var (
	mu      sync.RWMutex
	logFunc LogFunc = discard
)

// SetLogger sets the global logger function. A nil f restores the no-op logger.
func SetLogger(f LogFunc) {
	mu.Lock()
	defer mu.Unlock()
	if f == nil {
		f = discard
	}
	logFunc = f
}

func emit(level LogLevel, msg string, keyvals []interface{}) {
	mu.RLock()
	f := logFunc
	mu.RUnlock()
	f(level, msg, keyvals...)
}

// Debug logs a message at debug level
// If the last keyvals element is a bool and true, it is treated as trace flag
func Debug(msg string, keyvals ...interface{}) {
	trace := false
	if len(keyvals) > 0 {
		if b, ok := keyvals[len(keyvals)-1].(bool); ok {
			trace = b
			keyvals = keyvals[:len(keyvals)-1]
		}
	}
	emit(DebugLevel, msg, keyvals)

	if trace {
		tracer.Log(msg)
	}
}

// Info logs a message at info level
func Info(msg string, keyvals ...interface{}) {
	emit(InfoLevel, msg, keyvals)
}

// Error logs a message at error level
func Error(msg string, keyvals ...interface{}) {
	emit(ErrorLevel, msg, keyvals)
}
