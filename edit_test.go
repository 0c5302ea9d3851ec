// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdftools

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeptRange(t *testing.T) {
	tests := []struct {
		total         int
		first, last   bool
		start, end    int
		wouldEmptyDoc bool
	}{
		{total: 3, first: true, last: true, start: 1, end: 2},
		{total: 3, first: true, start: 1, end: 3},
		{total: 3, last: true, start: 0, end: 2},
		{total: 3, start: 0, end: 3},
		{total: 1, first: true, wouldEmptyDoc: true},
		{total: 1, last: true, wouldEmptyDoc: true},
		{total: 2, first: true, last: true, wouldEmptyDoc: true},
		{total: 0, wouldEmptyDoc: true},
	}
	for _, tc := range tests {
		start, end, err := keptRange(tc.total, tc.first, tc.last)
		if tc.wouldEmptyDoc {
			assert.ErrorIs(t, err, ErrWouldRemoveAllPages, "%+v", tc)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.start, start, "%+v", tc)
		assert.Equal(t, tc.end, end, "%+v", tc)
	}
}

func TestTrimPages(t *testing.T) {
	tests := []struct {
		name        string
		first, last bool
		want        int
		removed     string
	}{
		{"first and last", true, true, 1, "Removed first and last page(s)\n"},
		{"first only", true, false, 2, "Removed first page(s)\n"},
		{"last only", false, true, 2, "Removed last page(s)\n"},
		{"neither", false, false, 3, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			in := writePDF(t, dir, "in.pdf", plainDoc(3))
			out := filepath.Join(dir, "out.pdf")

			var buf bytes.Buffer
			n, err := TrimPages(in, out, tc.first, tc.last, &buf)
			require.NoError(t, err)
			assert.Equal(t, tc.want, n)

			count, err := api.PageCountFile(out)
			require.NoError(t, err)
			assert.Equal(t, tc.want, count)

			assert.Contains(t, buf.String(), "Original PDF has 3 pages\n")
			assert.Contains(t, buf.String(), "New page count: ")
			if tc.removed != "" {
				assert.Contains(t, buf.String(), tc.removed)
			} else {
				assert.NotContains(t, buf.String(), "Removed")
			}
		})
	}
}

func TestTrimPages_WouldRemoveAllPages(t *testing.T) {
	dir := t.TempDir()
	in := writePDF(t, dir, "single.pdf", plainDoc(1))
	out := filepath.Join(dir, "out.pdf")

	_, err := TrimPages(in, out, true, false, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrWouldRemoveAllPages)
	assert.NoFileExists(t, out)
}

func TestTrimPages_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := TrimPages(filepath.Join(dir, "nope.pdf"), filepath.Join(dir, "out.pdf"), true, true, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestCombine(t *testing.T) {
	dir := t.TempDir()
	a := writePDF(t, dir, "a.pdf", plainDoc(2))
	b := writePDF(t, dir, "b.pdf", plainDoc(3))
	out := filepath.Join(dir, "combined.pdf")

	var buf bytes.Buffer
	require.NoError(t, Combine([]string{a, b}, out, &buf))
	assert.Equal(t, "✓ Successfully combined 2 PDFs into "+out+"\n", buf.String())

	n, err := api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestCombine_Errors(t *testing.T) {
	dir := t.TempDir()
	a := writePDF(t, dir, "a.pdf", plainDoc(1))
	out := filepath.Join(dir, "combined.pdf")

	assert.ErrorIs(t, Combine(nil, out, &bytes.Buffer{}), ErrNoInputs)

	err := Combine([]string{a, filepath.Join(dir, "missing.pdf")}, out, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input file not found")
	assert.NoFileExists(t, out)
}

func TestTempPath(t *testing.T) {
	assert.Equal(t, filepath.Join("docs", "letter_temp.pdf"), tempPath(filepath.Join("docs", "letter.pdf")))
	assert.Equal(t, "scan_temp.pdf", tempPath("scan"))
}
