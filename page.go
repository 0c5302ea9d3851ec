// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdftools

import (
	"bytes"
	"fmt"

	"github.com/sassoftware/pdf-tools/logger"
)

// A Page represent a single page in a PDF file.
// The methods interpret a Page dictionary stored in V.
type Page struct {
	V Value
}

// Page returns the page for the given page number.
// Page numbers are indexed starting at 1, not 0.
// If the page is not found, Page returns a Page with p.V.IsNull().
func (r *Reader) Page(num int) Page {
	num-- // now 0-indexed
	page := r.Trailer().Key("Root").Key("Pages")
Search:
	for page.Key("Type").Name() == "Pages" {
		count := int(page.Key("Count").Int64())
		if count <= num {
			return Page{}
		}
		kids := page.Key("Kids")
		for i := 0; i < kids.Len(); i++ {
			kid := kids.Index(i)
			if kid.Key("Type").Name() == "Pages" {
				c := int(kid.Key("Count").Int64())
				if num < c {
					page = kid
					continue Search
				}
				num -= c
				continue
			}
			if kid.Key("Type").Name() == "Page" {
				if num == 0 {
					return Page{kid}
				}
				num--
			}
		}
		break
	}
	return Page{}
}

// NumPage returns the number of pages in the PDF file.
func (r *Reader) NumPage() int {
	return int(r.Trailer().Key("Root").Key("Pages").Key("Count").Int64())
}

func (p Page) findInherited(key string) Value {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
	}
	return Value{}
}

// A Rect represents a rectangle.
type Rect struct {
	Min, Max Point
}

// A Point represents an X, Y pair.
type Point struct {
	X float64
	Y float64
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// rectFrom interprets a four-element array as a rectangle.
func rectFrom(v Value) (Rect, bool) {
	if v.Kind() != Array || v.Len() != 4 {
		return Rect{}, false
	}
	return Rect{
		Min: Point{v.Index(0).Float64(), v.Index(1).Float64()},
		Max: Point{v.Index(2).Float64(), v.Index(3).Float64()},
	}, true
}

// MediaBox returns the page's media box, which may be inherited from an
// ancestor in the page tree. ok is false when no usable box is present.
func (p Page) MediaBox() (box Rect, ok bool) {
	return rectFrom(p.findInherited("MediaBox"))
}

// Resources returns the resources dictionary associated with the page.
func (p Page) Resources() Value {
	return p.findInherited("Resources")
}

// XObjects returns the sorted resource names of the page's external objects.
func (p Page) XObjects() []string {
	return p.Resources().Key("XObject").Keys()
}

// XObject returns the external object with the given resource name.
func (p Page) XObject(name string) Value {
	return p.Resources().Key("XObject").Key(name)
}

// ContentData returns the page's decoded content stream. A /Contents array
// is concatenated in order with a newline between parts.
func (p Page) ContentData() ([]byte, error) {
	contents := p.V.Key("Contents")
	switch contents.Kind() {
	case Null:
		return nil, nil
	case Stream:
		return contents.Data()
	case Array:
		var buf bytes.Buffer
		for i := 0; i < contents.Len(); i++ {
			data, err := contents.Index(i).Data()
			if err != nil {
				return nil, fmt.Errorf("contents part %d: %w", i, err)
			}
			buf.Write(data)
			buf.WriteByte('\n')
		}
		logger.Debug(fmt.Sprintf("contents: %d streams, %d bytes", contents.Len(), buf.Len()))
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unexpected /Contents %v", contents)
	}
}
