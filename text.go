// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdftools

import (
	"unicode"

	xunicode "golang.org/x/text/encoding/unicode"
)

// pdfDocEncoding maps PDFDocEncoding bytes to runes.
// Bytes with no defined character map to unicode.ReplacementChar.
var pdfDocEncoding [256]rune

func init() {
	for i := range pdfDocEncoding {
		pdfDocEncoding[i] = rune(i)
	}
	for i, r := range []rune{0x02d8, 0x02c7, 0x02c6, 0x02d9, 0x02dd, 0x02db, 0x02da, 0x02dc} {
		pdfDocEncoding[0x18+i] = r
	}
	high := []rune{
		0x2022, 0x2020, 0x2021, 0x2026, 0x2014, 0x2013, 0x0192, 0x2044,
		0x2039, 0x203a, 0x2212, 0x2030, 0x201e, 0x201c, 0x201d, 0x2018,
		0x2019, 0x201a, 0x2122, 0xfb01, 0xfb02, 0x0141, 0x0152, 0x0160,
		0x0178, 0x017d, 0x0131, 0x0142, 0x0153, 0x0161, 0x017e,
	}
	for i, r := range high {
		pdfDocEncoding[0x80+i] = r
	}
	pdfDocEncoding[0x7f] = unicode.ReplacementChar
	pdfDocEncoding[0x9f] = unicode.ReplacementChar
	pdfDocEncoding[0xa0] = 0x20ac
	pdfDocEncoding[0xad] = unicode.ReplacementChar
}

func isPDFDocEncoded(s string) bool {
	if isUTF16(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if pdfDocEncoding[s[i]] == unicode.ReplacementChar {
			return false
		}
	}
	return true
}

func pdfDocDecode(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 || pdfDocEncoding[s[i]] != rune(s[i]) {
			goto Decode
		}
	}
	return s

Decode:
	r := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		r[i] = pdfDocEncoding[s[i]]
	}
	return string(r)
}

func isUTF16(s string) bool {
	return len(s) >= 2 && s[0] == 0xfe && s[1] == 0xff && len(s)%2 == 0
}

// utf16Decode decodes big-endian UTF-16 without a byte order mark.
func utf16Decode(s string) string {
	dec := xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM).NewDecoder()
	out, err := dec.String(s)
	if err != nil {
		return s
	}
	return out
}
