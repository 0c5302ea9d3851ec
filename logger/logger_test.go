// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package logger

import (
	"bytes"
	"testing"

	"github.com/sassoftware/pdf-tools/tracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	level   LogLevel
	msg     string
	keyvals []interface{}
}

func capture(t *testing.T) *[]entry {
	t.Helper()
	var got []entry
	SetLogger(func(level LogLevel, msg string, keyvals ...interface{}) {
		got = append(got, entry{level, msg, keyvals})
	})
	t.Cleanup(func() { SetLogger(nil) })
	return &got
}

func TestLevels(t *testing.T) {
	got := capture(t)

	Debug("scan", "page", 1)
	Info("done", "pages", 3)
	Error("failed")

	require.Len(t, *got, 3)
	assert.Equal(t, entry{DebugLevel, "scan", []interface{}{"page", 1}}, (*got)[0])
	assert.Equal(t, entry{InfoLevel, "done", []interface{}{"pages", 3}}, (*got)[1])
	assert.Equal(t, ErrorLevel, (*got)[2].level)
	assert.Empty(t, (*got)[2].keyvals)
}

func TestDebug_TraceFlag(t *testing.T) {
	got := capture(t)
	_ = tracer.FlushTo(&bytes.Buffer{})

	Debug("Checking Header", true)
	Debug("not traced", "ok", false)
	Debug("plain", "k", "v")

	require.Len(t, *got, 3)
	assert.Empty(t, (*got)[0].keyvals)
	assert.Equal(t, []interface{}{"ok"}, (*got)[1].keyvals)
	assert.Equal(t, []interface{}{"k", "v"}, (*got)[2].keyvals)

	var buf bytes.Buffer
	require.NoError(t, tracer.FlushTo(&buf))
	assert.Equal(t, "Checking Header\n", buf.String())
}

func TestSetLogger_Nil(t *testing.T) {
	got := capture(t)
	SetLogger(nil)
	assert.NotPanics(t, func() { Info("dropped") })
	assert.Empty(t, *got)
}
