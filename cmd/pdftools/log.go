// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"io"

	"github.com/sassoftware/pdf-tools/logger"
	"github.com/sirupsen/logrus"
)

// newLogrus builds the command's log backend on w.
func newLogrus(w io.Writer, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// logrusFunc adapts l to the library's level-tagged log function.
// Keyvals are paired into fields; an odd trailing value is kept as "extra".
func logrusFunc(l *logrus.Logger) logger.LogFunc {
	return func(level logger.LogLevel, msg string, keyvals ...interface{}) {
		fields := logrus.Fields{}
		for i := 0; i+1 < len(keyvals); i += 2 {
			fields[fmt.Sprint(keyvals[i])] = keyvals[i+1]
		}
		if len(keyvals)%2 == 1 {
			fields["extra"] = keyvals[len(keyvals)-1]
		}
		entry := l.WithFields(fields)
		switch level {
		case logger.DebugLevel:
			entry.Debug(msg)
		case logger.ErrorLevel:
			entry.Error(msg)
		default:
			entry.Info(msg)
		}
	}
}
