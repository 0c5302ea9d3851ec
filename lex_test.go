// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdftools

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexer(s string) *buffer {
	b := newBuffer(strings.NewReader(s), 0)
	b.allowEOF = true
	return b
}

func TestBuffer_readToken(t *testing.T) {
	b := lexer("true false 42 -3.5 .5 /Na#6De (a\\(b\\)c\\n) <48656C6C6F> [ ] << >> % comment\nobj")
	want := []token{
		true, false, int64(42), -3.5, 0.5, name("Name"), "a(b)c\n", "Hello",
		keyword("["), keyword("]"), keyword("<<"), keyword(">>"), keyword("obj"),
	}
	for i, w := range want {
		assert.Equal(t, w, b.readToken(), "token %d", i)
	}
	assert.Equal(t, io.EOF, b.readToken())
}

func TestBuffer_readLiteralString(t *testing.T) {
	tests := map[string]string{
		"(plain)":              "plain",
		"(nested (parens) ok)": "nested (parens) ok",
		"(\\101\\102\\7)":      "AB\a",
		"(tab\\there)":         "tab\there",
		"(line\\\ncontinued)":  "linecontinued",
		"(back\\\\slash)":      "back\\slash",
	}
	for in, want := range tests {
		assert.Equal(t, want, lexer(in).readToken(), in)
	}
}

func TestBuffer_readHexString(t *testing.T) {
	assert.Equal(t, "Hi", lexer("<48 69>").readToken())
	assert.Equal(t, "@", lexer("<4>").readToken(), "odd digit count pads with zero")
	assert.Panics(t, func() { lexer("<zz>").readToken() })
}

func TestBuffer_unexpectedDelimiter(t *testing.T) {
	assert.Panics(t, func() { lexer(")").readToken() })
}

func TestBuffer_unreadToken(t *testing.T) {
	b := lexer("1 2")
	first := b.readToken()
	b.unreadToken(first)
	assert.Equal(t, int64(1), b.readToken())
	assert.Equal(t, int64(2), b.readToken())
}

func TestBuffer_readObject(t *testing.T) {
	obj := lexer("[1 2 0 R /X << /K (v) >> null]").readObject()
	assert.Equal(t, array{int64(1), objptr{2, 0}, name("X"), dict{"K": "v"}, nil}, obj)
}

func TestBuffer_readObject_Definition(t *testing.T) {
	obj := lexer("7 0 obj\n<< /Type /Catalog >>\nendobj\n").readObject()
	assert.Equal(t, objdef{objptr{7, 0}, dict{"Type": name("Catalog")}}, obj)
}

func TestBuffer_readObject_Stream(t *testing.T) {
	in := "3 0 obj\n<< /Length 5 >>\nstream\nhello\nendstream\nendobj\n"
	obj := lexer(in).readObject()
	def, ok := obj.(objdef)
	require.True(t, ok)
	strm, ok := def.obj.(stream)
	require.True(t, ok)
	assert.Equal(t, objptr{3, 0}, strm.ptr)
	assert.Equal(t, int64(strings.Index(in, "hello")), strm.offset)
	assert.Equal(t, int64(5), strm.hdr["Length"])
}

func TestBuffer_seekForward(t *testing.T) {
	b := lexer("hello world")
	b.seekForward(6)
	assert.Equal(t, int64(6), b.readOffset())
	assert.Equal(t, keyword("world"), b.readToken())
}

func TestIsIntegerAndReal(t *testing.T) {
	for _, s := range []string{"0", "+12", "-7"} {
		assert.True(t, isInteger(s), s)
	}
	for _, s := range []string{"", "-", "1.0", "1e3"} {
		assert.False(t, isInteger(s), s)
	}
	for _, s := range []string{"1.0", "-.5", "4."} {
		assert.True(t, isReal(s), s)
	}
	for _, s := range []string{"", ".", "1.2.3", "1", "abc"} {
		assert.False(t, isReal(s), s)
	}
}
