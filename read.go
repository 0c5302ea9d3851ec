// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package pdftools inspects and rewrites PDF files.
//
// # Overview
//
// The package carries a small PDF reader that exposes the object graph of a
// file as Values, each of which has one of the following Kinds:
//
//	Null, for the null object.
//	Integer, for an integer.
//	Real, for a floating-point number.
//	Bool, for a boolean value.
//	Name, for a name constant (as in /DCTDecode).
//	String, for a string constant.
//	Dict, for a dictionary of name-value pairs.
//	Array, for an array of values.
//	Stream, for an opaque data stream and associated header dictionary.
//
// The accessors on Value (Int64, Float64, Name, Key, Index and so on) return
// a zero result when the value has a different kind, which makes it possible
// to walk page trees and resource dictionaries without error checking at
// every step.
//
// On top of the reader sit the image auditor (Auditor), which reports where
// Form XObjects are placed on each page and how much of the file the
// embedded raster images account for, and a handful of document editing
// helpers (TrimPages, Combine, Rebuild, FixForPrint).
package pdftools

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hhrutter/lzw"
	"github.com/sassoftware/pdf-tools/logger"
)

var (
	// ErrNotPDF is returned when the input does not look like a PDF file.
	ErrNotPDF = errors.New("not a PDF file")
	// ErrEncrypted is returned for files carrying an /Encrypt dictionary.
	ErrEncrypted = errors.New("encrypted PDF files are not supported")
)

// A Reader is a single PDF file open for reading.
type Reader struct {
	f          io.ReaderAt
	end        int64
	xref       []xref
	trailer    dict
	trailerptr objptr
}

type xref struct {
	ptr      objptr
	inStream bool
	stream   objptr
	offset   int64
}

// Open opens the named file and prepares it for reading.
// The caller owns the returned file and must close it.
func Open(file string) (*os.File, *Reader, error) {
	logger.Debug("Open file", "path", file, true)
	f, err := os.Open(file)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open %s: %w", file, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	logger.Debug(fmt.Sprintf("document: file:%s -- opened (size=%d)", file, fi.Size()), true)
	reader, err := NewReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("%s: %w", file, err)
	}
	return f, reader, nil
}

// NewReader opens a file for reading, using the data in f with the given total size.
func NewReader(f io.ReaderAt, size int64) (r *Reader, err error) {
	defer func() {
		if x := recover(); x != nil {
			r = nil
			err = fmt.Errorf("malformed PDF: %v", x)
		}
	}()

	logger.Debug("Checking Header", true)
	if err := CheckHeader(f); err != nil {
		return nil, err
	}

	logger.Debug("Checking End of file Marker", true)
	if err := ValidateEOFMarker(f, size); err != nil {
		return nil, err
	}

	logger.Debug("Checking Startxref", true)
	startxref, err := FindStartXref(f, size)
	if err != nil {
		return nil, err
	}

	logger.Debug("Checking xref table + trailer", true)
	r = &Reader{f: f, end: size}
	b := newBuffer(io.NewSectionReader(r.f, startxref, r.end-startxref), startxref)
	xref, trailerptr, trailer, err := readXref(r, b)
	if err != nil {
		return nil, err
	}
	r.xref = xref
	r.trailer = trailer
	r.trailerptr = trailerptr

	if trailer[name("Encrypt")] != nil {
		return nil, ErrEncrypted
	}
	return r, nil
}

// CheckHeader validates the PDF header at the beginning of the file.
// It ensures the file starts with "%PDF-x.y" and the version is within 1.0–1.7 or 2.0.
func CheckHeader(f io.ReaderAt) error {
	buf := make([]byte, 1024)
	n, err := f.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		logger.Error("Failed to read initial bytes for header check", "err", err)
		return fmt.Errorf("header read error: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: empty", ErrNotPDF)
	}
	buf = buf[:n]

	// %PDF- may follow a BOM or other leading garbage
	p := bytes.Index(buf, []byte("%PDF-"))
	if p < 0 {
		return fmt.Errorf("%w: missing %%PDF- header", ErrNotPDF)
	}
	line := buf[p:]
	if end := bytes.IndexAny(line, "\r\n"); end >= 0 {
		line = line[:end]
	}
	line = bytes.TrimRight(line, " \t\x00")

	var major, minor int
	if _, err := fmt.Sscanf(string(line), "%%PDF-%d.%d", &major, &minor); err != nil {
		return fmt.Errorf("%w: malformed version %q", ErrNotPDF, line)
	}
	if !((major == 1 && minor >= 0 && minor <= 7) || (major == 2 && minor == 0)) {
		return fmt.Errorf("unsupported PDF version %d.%d", major, minor)
	}
	logger.Debug(fmt.Sprintf("header: PDF-%d.%d", major, minor), true)
	return nil
}

// tail reads up to n bytes from the end of f.
func tail(f io.ReaderAt, size int64, n int64) ([]byte, int64, error) {
	start := size - n
	if start < 0 {
		start = 0
	}
	buf := make([]byte, size-start)
	m, err := f.ReadAt(buf, start)
	if err != nil && err != io.EOF {
		return nil, 0, fmt.Errorf("read error: %w", err)
	}
	return buf[:m], start, nil
}

// ValidateEOFMarker checks the last chunk of the file for the "%%EOF" marker.
func ValidateEOFMarker(f io.ReaderAt, size int64) error {
	buf, _, err := tail(f, size, 1024)
	if err != nil {
		return err
	}
	// some producers append junk after the marker; accept it anywhere in the tail
	if !bytes.Contains(buf, []byte("%%EOF")) {
		return fmt.Errorf("%w: missing %%%%EOF", ErrNotPDF)
	}
	return nil
}

// FindStartXref locates and parses the "startxref" pointer near the end of the file.
// Returns the byte offset where the cross-reference table/stream begins.
func FindStartXref(f io.ReaderAt, size int64) (startxref int64, err error) {
	defer func() {
		if x := recover(); x != nil {
			err = fmt.Errorf("malformed PDF file: %v", x)
		}
	}()

	buf, base, err := tail(f, size, 1024)
	if err != nil {
		return 0, err
	}
	i := findLastLine(buf, "startxref")
	if i < 0 {
		return 0, errors.New("malformed PDF file: missing final startxref")
	}
	pos := base + int64(i)
	b := newBuffer(io.NewSectionReader(f, pos, size-pos), pos)
	b.allowEOF = true

	if tok := b.readToken(); tok != keyword("startxref") {
		return 0, fmt.Errorf("malformed PDF file: missing startxref: %v", tok)
	}
	startxref, ok := b.readToken().(int64)
	if !ok {
		return 0, errors.New("malformed PDF file: startxref not followed by integer")
	}
	if startxref < 0 || startxref >= size {
		return 0, fmt.Errorf("malformed PDF file: startxref %d outside file", startxref)
	}
	logger.Debug(fmt.Sprintf("xref: FindStartXref -- startxref=%d", startxref), true)
	return startxref, nil
}

// Trailer returns the file's Trailer value.
func (r *Reader) Trailer() Value {
	return Value{r, r.trailerptr, r.trailer}
}

func readXref(r *Reader, b *buffer) ([]xref, objptr, dict, error) {
	tok := b.readToken()
	if tok == keyword("xref") {
		logger.Debug("Found Xref Table", true)
		return readXrefTable(r, b)
	}
	if _, ok := tok.(int64); ok {
		b.unreadToken(tok)
		logger.Debug("Found Xref Stream", true)
		return readXrefStream(r, b)
	}
	return nil, objptr{}, nil, fmt.Errorf("malformed PDF: cross-reference table nor stream found: %v", tok)
}

func readXrefStream(r *Reader, b *buffer) ([]xref, objptr, dict, error) {
	strmptr, strm, err := parseXrefStreamObject(b)
	if err != nil {
		return nil, objptr{}, nil, err
	}
	size, err := xrefSize(strm)
	if err != nil {
		return nil, objptr{}, nil, err
	}
	table := make([]xref, size)
	table, err = readXrefStreamData(r, strm, table, size)
	if err != nil {
		return nil, objptr{}, nil, fmt.Errorf("malformed PDF: %w", err)
	}
	table, err = mergePrevXrefStreams(r, strm, table, size)
	if err != nil {
		return nil, objptr{}, nil, err
	}
	return table, strmptr, strm.hdr, nil
}

// parseXrefStreamObject reads one object from b and checks that it is an /XRef stream.
func parseXrefStreamObject(b *buffer) (objptr, stream, error) {
	obj1 := b.readObject()
	od, ok := obj1.(objdef)
	if !ok {
		return objptr{}, stream{}, fmt.Errorf("malformed PDF: objdef not found: %v", objfmt(obj1))
	}
	strm, ok := od.obj.(stream)
	if !ok {
		return objptr{}, stream{}, fmt.Errorf("malformed PDF: cross-reference stream not found: %v", objfmt(od))
	}
	if strm.hdr["Type"] != name("XRef") {
		return objptr{}, stream{}, errors.New("malformed PDF: xref stream does not have type XRef")
	}
	return od.ptr, strm, nil
}

// xrefSize returns the /Size from an xref stream header.
func xrefSize(strm stream) (int64, error) {
	if size, ok := strm.hdr["Size"].(int64); ok {
		return size, nil
	}
	return 0, errors.New("malformed PDF: xref stream missing Size")
}

// mergePrevXrefStreams follows the /Prev chain, merging each older stream into table.
func mergePrevXrefStreams(r *Reader, cur stream, table []xref, maxSize int64) ([]xref, error) {
	for prevoff := cur.hdr["Prev"]; prevoff != nil; {
		off, ok := prevoff.(int64)
		if !ok {
			return nil, fmt.Errorf("malformed PDF: xref Prev is not integer: %v", prevoff)
		}
		logger.Debug(fmt.Sprintf("found Prev stream with offset %d", off), true)
		b := newBuffer(io.NewSectionReader(r.f, off, r.end-off), off)
		_, prevStrm, err := parseXrefStreamObject(b)
		if err != nil {
			return nil, err
		}
		prevoff = prevStrm.hdr["Prev"]
		prevVal := Value{r, objptr{}, prevStrm}
		psize := prevVal.Key("Size").Int64()
		if psize > maxSize {
			return nil, errors.New("malformed PDF: xref prev stream larger than last stream")
		}
		table, err = readXrefStreamData(r, prevStrm, table, psize)
		if err != nil {
			return nil, fmt.Errorf("malformed PDF: reading xref prev stream: %w", err)
		}
	}
	return table, nil
}

func readXrefStreamData(r *Reader, strm stream, table []xref, size int64) ([]xref, error) {
	index, _ := strm.hdr["Index"].(array)
	if index == nil {
		index = array{int64(0), size}
	}
	if len(index)%2 != 0 {
		return nil, fmt.Errorf("invalid Index array %v", objfmt(index))
	}

	ww, ok := strm.hdr["W"].(array)
	if !ok {
		return nil, errors.New("xref stream missing W array")
	}
	var w []int
	for _, x := range ww {
		i, ok := x.(int64)
		if !ok || int64(int(i)) != i {
			return nil, fmt.Errorf("invalid W array %v", objfmt(ww))
		}
		w = append(w, int(i))
	}
	if len(w) < 3 {
		return nil, fmt.Errorf("invalid W array %v", objfmt(ww))
	}

	v := Value{r, objptr{}, strm}
	wtotal := 0
	for _, wid := range w {
		wtotal += wid
	}
	buf := make([]byte, wtotal)
	data := v.Reader()
	for len(index) > 0 {
		start, ok1 := index[0].(int64)
		n, ok2 := index[1].(int64)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("malformed Index pair %v %v", objfmt(index[0]), objfmt(index[1]))
		}
		index = index[2:]
		for i := 0; i < int(n); i++ {
			if _, err := io.ReadFull(data, buf); err != nil {
				return nil, fmt.Errorf("error reading xref stream: %w", err)
			}
			v1 := decodeInt(buf[0:w[0]])
			if w[0] == 0 {
				v1 = 1
			}
			v2 := decodeInt(buf[w[0] : w[0]+w[1]])
			v3 := decodeInt(buf[w[0]+w[1] : w[0]+w[1]+w[2]])
			x := int(start) + i
			for cap(table) <= x {
				table = append(table[:cap(table)], xref{})
			}
			if len(table) <= x {
				table = table[:x+1]
			}
			if table[x].ptr != (objptr{}) {
				continue
			}
			switch v1 {
			case 0:
				table[x] = xref{ptr: objptr{0, 65535}}
			case 1:
				table[x] = xref{ptr: objptr{uint32(x), uint16(v3)}, offset: int64(v2)}
			case 2:
				table[x] = xref{ptr: objptr{uint32(x), 0}, inStream: true, stream: objptr{uint32(v2), 0}, offset: int64(v3)}
			default:
				logger.Debug(fmt.Sprintf("invalid xref stream type %d: %x", v1, buf))
			}
		}
	}
	return table, nil
}

func decodeInt(b []byte) int {
	x := 0
	for _, c := range b {
		x = x<<8 | int(c)
	}
	return x
}

func readXrefTable(r *Reader, b *buffer) ([]xref, objptr, dict, error) {
	table, trailer, err := parseXrefTableAndTrailer(b, nil)
	if err != nil {
		return nil, objptr{}, nil, err
	}

	// hybrid files point at an xref stream from the classic trailer
	table, trailer, err = r.handleTrailerXRefStm(table, trailer)
	if err != nil {
		logger.Debug(fmt.Sprintf("readXrefTable: XRefStm handling error: %v; falling back to Prev chain", err))
	}

	table, trailer, err = resolvePrevXrefTables(r, trailer, table)
	if err != nil {
		return nil, objptr{}, nil, err
	}

	if err := validateTrailerSize(&table, trailer); err != nil {
		return nil, objptr{}, nil, err
	}
	return table, objptr{}, trailer, nil
}

// parseXrefTableAndTrailer parses a single xref table section
// and the trailer dictionary that follows it.
func parseXrefTableAndTrailer(b *buffer, table []xref) ([]xref, dict, error) {
	table, err := readXrefTableData(b, table)
	if err != nil {
		return nil, nil, fmt.Errorf("malformed PDF: %w", err)
	}
	trailer, ok := b.readObject().(dict)
	if !ok {
		return nil, nil, errors.New("malformed PDF: xref table not followed by trailer dictionary")
	}
	return table, trailer, nil
}

func resolvePrevXrefTables(r *Reader, trailer dict, table []xref) ([]xref, dict, error) {
	// the newest trailer wins; older trailers only contribute xref entries
	newest := trailer
	for prevoff := trailer[name("Prev")]; prevoff != nil; {
		off, ok := prevoff.(int64)
		if !ok {
			return nil, nil, fmt.Errorf("malformed PDF: xref Prev is not integer: %v", prevoff)
		}
		b := newBuffer(io.NewSectionReader(r.f, off, r.end-off), off)
		if tok := b.readToken(); tok != keyword("xref") {
			return nil, nil, errors.New("malformed PDF: xref Prev does not point to xref")
		}
		var err error
		table, trailer, err = parseXrefTableAndTrailer(b, table)
		if err != nil {
			return nil, nil, err
		}
		table, trailer, err = r.handleTrailerXRefStm(table, trailer)
		if err != nil {
			logger.Debug(fmt.Sprintf("XRefStm handling error in Prev chain: %v; continuing", err))
		}
		prevoff = trailer[name("Prev")]
	}
	return table, newest, nil
}

// validateTrailerSize trims the xref table to the declared /Size in trailer.
func validateTrailerSize(table *[]xref, trailer dict) error {
	size, ok := trailer[name("Size")].(int64)
	if !ok {
		return errors.New("malformed PDF: trailer missing /Size entry")
	}
	if size < int64(len(*table)) {
		*table = (*table)[:size]
	}
	return nil
}

// ensureLen makes sure s has length at least n (growing capacity if needed)
// and returns the possibly-reallocated slice.
func ensureLen[T any](s []T, n int) []T {
	if n <= len(s) {
		return s
	}
	if cap(s) < n {
		ns := make([]T, n)
		copy(ns, s)
		return ns
	}
	return s[:n]
}

// setIfEmpty sets table[x] to val only if the slot is currently empty.
func setIfEmpty(table *[]xref, x int, val xref) {
	if x < 0 {
		return
	}
	*table = ensureLen(*table, x+1)
	if (*table)[x].ptr == (objptr{}) {
		(*table)[x] = val
	}
}

func readXrefTableData(b *buffer, table []xref) ([]xref, error) {
	for {
		tok := b.readToken()
		if tok == keyword("trailer") {
			break
		}
		start, ok1 := tok.(int64)
		count, ok2 := b.readToken().(int64)
		if !ok1 || !ok2 || start < 0 || count < 0 {
			return nil, errors.New("malformed xref table subsection header")
		}
		for i := 0; i < int(count); i++ {
			off, okOff := b.readToken().(int64)
			gen, okGen := b.readToken().(int64)
			alloc, okAlloc := b.readToken().(keyword)
			if !okOff || !okGen || !okAlloc {
				return nil, fmt.Errorf("malformed xref entry at subsection starting %d", start)
			}
			idx := int(start) + i
			switch alloc {
			case keyword("n"):
				setIfEmpty(&table, idx, xref{ptr: objptr{uint32(idx), uint16(gen)}, offset: off})
			case keyword("f"):
				table = ensureLen(table, idx+1)
			default:
				return nil, fmt.Errorf("malformed xref table: unexpected alloc token %v", alloc)
			}
		}
	}
	return table, nil
}

// mergeXrefTables merges src into dest:
// dest grows to fit src, empty dest slots take src, and when both slots are
// in use the src (stream) entry wins.
func mergeXrefTables(dest []xref, src []xref) []xref {
	if len(src) > len(dest) {
		nd := make([]xref, len(src))
		copy(nd, dest)
		dest = nd
	}
	for i := 0; i < len(src); i++ {
		s := src[i]
		if s.ptr == (objptr{}) {
			continue
		}
		d := dest[i]
		if d.ptr == (objptr{}) {
			dest[i] = s
			continue
		}
		if d.ptr.gen != 65535 && s.ptr.gen != 65535 {
			dest[i] = s
		}
	}
	return dest
}

var objHeaderRE = regexp.MustCompile(`^\d+\s+\d+\s+obj\b`)

// isLikelyObjectAt performs a lightweight check whether an object header or dict begins at off.
func (r *Reader) isLikelyObjectAt(off int64) bool {
	if off < 0 || off >= r.end {
		return false
	}
	buf := make([]byte, 64)
	n, err := r.f.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return false
	}
	s := strings.TrimLeft(string(buf[:n]), " \t\r\n")
	return objHeaderRE.MatchString(s) || strings.HasPrefix(s, "<<")
}

// scanForObjectAt searches a +-window around approx for "<id> <gen> obj" and returns found offset or -1.
func (r *Reader) scanForObjectAt(id uint32, gen uint16, approx int64, window int64) int64 {
	start := approx - window
	if start < 0 {
		start = 0
	}
	end := approx + window
	if end > r.end {
		end = r.end
	}
	if end <= start {
		return -1
	}
	buf := make([]byte, end-start)
	n, err := r.f.ReadAt(buf, start)
	if err != nil && err != io.EOF {
		return -1
	}
	re := regexp.MustCompile(fmt.Sprintf(`\b%d\s+%d\s+obj\b`, id, gen))
	loc := re.FindIndex(buf[:n])
	if loc == nil {
		return -1
	}
	return start + int64(loc[0])
}

// validateAndRepairXrefEntries checks offsets in table and tries to repair with a small-window scan.
func (r *Reader) validateAndRepairXrefEntries(table []xref) (repaired int, invalid int) {
	for i := 0; i < len(table); i++ {
		ent := table[i]
		if ent.ptr == (objptr{}) || ent.inStream || ent.offset == 0 {
			continue
		}
		if r.isLikelyObjectAt(ent.offset) {
			continue
		}
		if found := r.scanForObjectAt(ent.ptr.id, ent.ptr.gen, ent.offset, 1024); found >= 0 {
			table[i].offset = found
			repaired++
			continue
		}
		invalid++
	}
	return
}

// handleTrailerXRefStm parses the stream named by a trailer's /XRefStm and
// merges it into table. Too many unusable offsets reject the stream.
func (r *Reader) handleTrailerXRefStm(table []xref, trailer dict) ([]xref, dict, error) {
	xrefstm := trailer[name("XRefStm")]
	if xrefstm == nil {
		return table, trailer, nil
	}
	off, ok := xrefstm.(int64)
	if !ok {
		return table, trailer, fmt.Errorf("malformed PDF: XRefStm not integer: %v", xrefstm)
	}
	b := newBuffer(io.NewSectionReader(r.f, off, r.end-off), off)
	srcTable, _, _, err := readXrefStream(r, b)
	if err != nil {
		return table, trailer, fmt.Errorf("parse XRefStm at %d: %w", off, err)
	}
	_, invalid := r.validateAndRepairXrefEntries(srcTable)

	total := 0
	for _, e := range srcTable {
		if e.ptr != (objptr{}) {
			total++
		}
	}
	if total > 0 && float64(invalid)/float64(total) > 0.30 {
		return table, trailer, fmt.Errorf("xref stream at %d appears invalid: %d/%d invalid entries", off, invalid, total)
	}
	return mergeXrefTables(table, srcTable), trailer, nil
}

// findLastLine searches backwards in buf for the last occurrence of the
// keyword s that is followed by PDF whitespace ending in an EOL.
// Producers often put spaces, tabs or NULs between "startxref" and the
// newline, so any run of whitespace is accepted as long as it ends the line.
func findLastLine(buf []byte, s string) int {
	bs := []byte(s)
	for max := len(buf); ; {
		i := bytes.LastIndex(buf[:max], bs)
		if i < 0 {
			return -1
		}
		j := SkipWhitespace(buf, i+len(bs))
		if EndsWithEOL(buf, i+len(bs), j) {
			return i
		}
		max = i
	}
}

var wsBits [4]uint64 // 256 bits = 4 * 64

func init() {
	for _, b := range []byte{0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20} {
		wsBits[b>>6] |= 1 << (b & 63)
	}
}

// isWhitespace reports whether b is one of the six whitespace characters
// defined by ISO 32000-1 §7.2.2 for PDF syntax: 00, 09, 0A, 0C, 0D, 20.
func isWhitespace(b byte) bool {
	return (wsBits[b>>6] & (1 << (b & 63))) != 0
}

// SkipWhitespace advances j past all whitespace.
func SkipWhitespace(buf []byte, j int) int {
	for j < len(buf) && isWhitespace(buf[j]) {
		j++
	}
	return j
}

// EndsWithEOL checks if the last skipped char is CR or LF.
func EndsWithEOL(buf []byte, start, end int) bool {
	if end > start {
		last := buf[end-1]
		return last == '\n' || last == '\r'
	}
	return false
}

// A Value is a single PDF value, such as an integer, dictionary, or array.
// The zero Value is a PDF null (Kind() == Null, IsNull() = true).
type Value struct {
	r    *Reader
	ptr  objptr
	data interface{}
}

// IsNull reports whether the value is a null. It is equivalent to Kind() == Null.
func (v Value) IsNull() bool {
	return v.data == nil
}

// A ValueKind specifies the kind of data underlying a Value.
type ValueKind int

// The PDF value kinds.
const (
	Null ValueKind = iota
	Bool
	Integer
	Real
	String
	Name
	Dict
	Array
	Stream
)

// Kind reports the kind of value underlying v.
func (v Value) Kind() ValueKind {
	switch v.data.(type) {
	default:
		return Null
	case bool:
		return Bool
	case int64:
		return Integer
	case float64:
		return Real
	case string:
		return String
	case name:
		return Name
	case dict:
		return Dict
	case array:
		return Array
	case stream:
		return Stream
	}
}

// String returns a textual representation of the value v.
// Note that String is not the accessor for values with Kind() == String.
// To access such values, see RawString and Text.
func (v Value) String() string {
	return objfmt(v.data)
}

func objfmt(x interface{}) string {
	switch x := x.(type) {
	default:
		return fmt.Sprint(x)
	case string:
		if isPDFDocEncoded(x) {
			return strconv.Quote(pdfDocDecode(x))
		}
		if isUTF16(x) {
			return strconv.Quote(utf16Decode(x[2:]))
		}
		return strconv.Quote(x)
	case name:
		return "/" + string(x)
	case dict:
		var keys []string
		for k := range x {
			keys = append(keys, string(k))
		}
		sort.Strings(keys)
		var buf bytes.Buffer
		buf.WriteString("<<")
		for i, k := range keys {
			if i > 0 {
				buf.WriteString(" ")
			}
			buf.WriteString("/")
			buf.WriteString(k)
			buf.WriteString(" ")
			buf.WriteString(objfmt(x[name(k)]))
		}
		buf.WriteString(">>")
		return buf.String()
	case array:
		var buf bytes.Buffer
		buf.WriteString("[")
		for i, elem := range x {
			if i > 0 {
				buf.WriteString(" ")
			}
			buf.WriteString(objfmt(elem))
		}
		buf.WriteString("]")
		return buf.String()
	case stream:
		return fmt.Sprintf("%v@%d", objfmt(x.hdr), x.offset)
	case objptr:
		return fmt.Sprintf("%d %d R", x.id, x.gen)
	case objdef:
		return fmt.Sprintf("{%d %d obj}%v", x.ptr.id, x.ptr.gen, objfmt(x.obj))
	}
}

// Bool returns v's boolean value.
// If v.Kind() != Bool, Bool returns false.
func (v Value) Bool() bool {
	x, _ := v.data.(bool)
	return x
}

// Int64 returns v's int64 value.
// If v.Kind() != Int64, Int64 returns 0.
func (v Value) Int64() int64 {
	x, _ := v.data.(int64)
	return x
}

// Float64 returns v's float64 value, converting from integer if necessary.
// If v.Kind() != Float64 and v.Kind() != Int64, Float64 returns 0.
func (v Value) Float64() float64 {
	switch x := v.data.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	}
	return 0
}

// RawString returns v's string value.
// If v.Kind() != String, RawString returns the empty string.
func (v Value) RawString() string {
	x, _ := v.data.(string)
	return x
}

// Text returns v's string value interpreted as a “text string” (defined in the PDF reference)
// and converted to UTF-8.
// If v.Kind() != String, Text returns the empty string.
func (v Value) Text() string {
	x, ok := v.data.(string)
	if !ok {
		return ""
	}
	if isPDFDocEncoded(x) {
		return pdfDocDecode(x)
	}
	if isUTF16(x) {
		return utf16Decode(x[2:])
	}
	return x
}

// Name returns v's name value.
// If v.Kind() != Name, Name returns the empty string.
// The returned name does not include the leading slash.
func (v Value) Name() string {
	x, _ := v.data.(name)
	return string(x)
}

// Key returns the value associated with the given name key in the dictionary v.
// Like the result of the Name method, the key should not include a leading slash.
// If v is a stream, Key applies to the stream's header dictionary.
// If v.Kind() != Dict and v.Kind() != Stream, Key returns a null Value.
func (v Value) Key(key string) Value {
	x, ok := v.data.(dict)
	if !ok {
		strm, ok := v.data.(stream)
		if !ok {
			return Value{}
		}
		x = strm.hdr
	}
	return v.r.resolve(v.ptr, x[name(key)])
}

// Keys returns a sorted list of the keys in the dictionary v.
// If v is a stream, Keys applies to the stream's header dictionary.
// If v.Kind() != Dict and v.Kind() != Stream, Keys returns nil.
func (v Value) Keys() []string {
	x, ok := v.data.(dict)
	if !ok {
		strm, ok := v.data.(stream)
		if !ok {
			return nil
		}
		x = strm.hdr
	}
	keys := []string{} // not nil
	for k := range x {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

// Index returns the i'th element in the array v.
// If v.Kind() != Array or if i is outside the array bounds,
// Index returns a null Value.
func (v Value) Index(i int) Value {
	x, ok := v.data.(array)
	if !ok || i < 0 || i >= len(x) {
		return Value{}
	}
	return v.r.resolve(v.ptr, x[i])
}

// Len returns the length of the array v.
// If v.Kind() != Array, Len returns 0.
func (v Value) Len() int {
	x, _ := v.data.(array)
	return len(x)
}

func (r *Reader) resolve(parent objptr, x interface{}) Value {
	if ptr, ok := x.(objptr); ok {
		if ptr.id >= uint32(len(r.xref)) {
			return Value{}
		}
		xref := r.xref[ptr.id]
		if xref.ptr != ptr || !xref.inStream && xref.offset == 0 {
			return Value{}
		}
		if xref.inStream {
			x = r.resolveInStream(parent, ptr, xref)
		} else {
			b := newBuffer(io.NewSectionReader(r.f, xref.offset, r.end-xref.offset), xref.offset)
			obj := b.readObject()
			def, ok := obj.(objdef)
			if !ok {
				panic(fmt.Errorf("loading %v: found %T instead of objdef", ptr, obj))
			}
			if def.ptr != ptr {
				panic(fmt.Errorf("loading %v: found %v", ptr, def.ptr))
			}
			x = def.obj
		}
		parent = ptr
	}

	switch x := x.(type) {
	case nil, bool, int64, float64, name, dict, array, stream, string:
		return Value{r, parent, x}
	default:
		panic(fmt.Errorf("unexpected value type %T in resolve", x))
	}
}

// resolveInStream loads object ptr from the object stream named by xref.
func (r *Reader) resolveInStream(parent objptr, ptr objptr, xref xref) object {
	strm := r.resolve(parent, xref.stream)
	for {
		if strm.Kind() != Stream {
			panic("not a stream")
		}
		if strm.Key("Type").Name() != "ObjStm" {
			panic("not an object stream")
		}
		n := int(strm.Key("N").Int64())
		first := strm.Key("First").Int64()
		if first == 0 {
			panic("missing First")
		}
		b := newBuffer(strm.Reader(), 0)
		b.allowEOF = true
		for i := 0; i < n; i++ {
			id, _ := b.readToken().(int64)
			off, _ := b.readToken().(int64)
			if uint32(id) == ptr.id {
				b.seekForward(first + off)
				return b.readObject()
			}
		}
		ext := strm.Key("Extends")
		if ext.Kind() != Stream {
			panic("cannot find object in stream")
		}
		strm = ext
	}
}

type errorReadCloser struct {
	err error
}

func (e *errorReadCloser) Read([]byte) (int, error) {
	return 0, e.err
}

func (e *errorReadCloser) Close() error {
	return e.err
}

// RawReader returns the bytes stored in the stream v exactly as they appear
// in the file, with no filters applied.
func (v Value) RawReader() io.Reader {
	x, ok := v.data.(stream)
	if !ok {
		return &errorReadCloser{errors.New("stream not present")}
	}
	return io.NewSectionReader(v.r.f, x.offset, v.Key("Length").Int64())
}

// RawBytes returns the undecoded payload of the stream v.
func (v Value) RawBytes() ([]byte, error) {
	if v.Kind() != Stream {
		return nil, errors.New("stream not present")
	}
	return io.ReadAll(v.RawReader())
}

// Reader returns the data contained in the stream v with its filters applied.
// If v.Kind() != Stream, Reader returns a ReadCloser that
// responds to all reads with a “stream not present” error.
func (v Value) Reader() io.ReadCloser {
	if v.Kind() != Stream {
		return &errorReadCloser{errors.New("stream not present")}
	}
	rd := v.RawReader()
	filter := v.Key("Filter")
	param := v.Key("DecodeParms")
	switch filter.Kind() {
	default:
		panic(fmt.Errorf("unsupported filter %v", filter))
	case Null:
		// ok
	case Name:
		rd = applyFilter(rd, filter.Name(), param)
	case Array:
		for i := 0; i < filter.Len(); i++ {
			rd = applyFilter(rd, filter.Index(i).Name(), param.Index(i))
		}
	}
	return io.NopCloser(rd)
}

// Data returns the decoded content of the stream v.
func (v Value) Data() (data []byte, err error) {
	defer func() {
		if x := recover(); x != nil {
			data = nil
			err = fmt.Errorf("decode stream: %v", x)
		}
	}()
	return io.ReadAll(v.Reader())
}

func applyFilter(rd io.Reader, name string, param Value) io.Reader {
	switch name {
	default:
		panic("unknown filter " + name)
	case "FlateDecode":
		zr, err := zlib.NewReader(rd)
		if err != nil {
			panic(err)
		}
		return applyPredictor(zr, param)
	case "LZWDecode":
		// EarlyChange defaults to 1
		early := param.Key("EarlyChange")
		lr := lzw.NewReader(rd, early.IsNull() || early.Int64() == 1)
		return applyPredictor(lr, param)
	case "ASCII85Decode":
		if len(param.Keys()) != 0 {
			panic("not expected DecodeParms for ascii85")
		}
		return ascii85.NewDecoder(newAlphaReader(rd))
	}
}

func applyPredictor(rd io.Reader, param Value) io.Reader {
	pred := param.Key("Predictor")
	if pred.Kind() == Null || pred.Int64() == 1 {
		return rd
	}
	columns := param.Key("Columns").Int64()
	switch pred.Int64() {
	default:
		panic(fmt.Errorf("unknown predictor %d", pred.Int64()))
	case 12:
		return &pngUpReader{r: rd, hist: make([]byte, 1+columns), tmp: make([]byte, 1+columns)}
	}
}

type pngUpReader struct {
	r    io.Reader
	hist []byte
	tmp  []byte
	pend []byte
}

func (r *pngUpReader) Read(b []byte) (int, error) {
	n := 0
	for len(b) > 0 {
		if len(r.pend) > 0 {
			m := copy(b, r.pend)
			n += m
			b = b[m:]
			r.pend = r.pend[m:]
			continue
		}
		_, err := io.ReadFull(r.r, r.tmp)
		if err != nil {
			return n, err
		}
		if r.tmp[0] != 2 {
			return n, fmt.Errorf("malformed PNG-Up encoding")
		}
		for i, b := range r.tmp {
			r.hist[i] += b
		}
		r.pend = r.hist[1:]
	}
	return n, nil
}

// alphaReader zeroes bytes that cannot appear in ASCII85 data and stops
// passing data through once the ~> terminator has been seen.
type alphaReader struct {
	reader io.Reader
	done   bool
}

func newAlphaReader(reader io.Reader) *alphaReader {
	return &alphaReader{reader: reader}
}

func checkASCII85(r byte) byte {
	if r >= '!' && r <= 'u' {
		return r
	}
	return 0
}

func (a *alphaReader) Read(p []byte) (int, error) {
	n, err := a.reader.Read(p)
	if err != nil {
		return n, err
	}
	for i := 0; i < n; i++ {
		if a.done {
			p[i] = 0
			continue
		}
		if p[i] == '~' {
			a.done = true
			p[i] = 0
			continue
		}
		p[i] = checkASCII85(p[i])
	}
	return n, nil
}
