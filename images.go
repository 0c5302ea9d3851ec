// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdftools

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"

	"github.com/sassoftware/pdf-tools/logger"
)

// UnknownFilter labels an image stream without a /Filter entry.
const UnknownFilter = "Unknown"

// FormatLabel translates an image filter tag into the format shown in reports.
func FormatLabel(filter string) string {
	switch filter {
	case "/DCTDecode":
		return "JPG"
	case "/FlateDecode":
		return "PNG"
	}
	return trimSlash(filter)
}

// filterTag returns the /Filter of an image stream as written in the file.
// A one-element filter array collapses to its single name.
func filterTag(v Value) string {
	f := v.Key("Filter")
	switch f.Kind() {
	case Name:
		return "/" + f.Name()
	case Array:
		if f.Len() == 1 && f.Index(0).Kind() == Name {
			return "/" + f.Index(0).Name()
		}
		return f.String()
	case Null:
		return UnknownFilter
	}
	return f.String()
}

// A UniqueImage aggregates every occurrence of one raw image payload.
type UniqueImage struct {
	Hash   string
	Width  int64
	Height int64
	Size   int // bytes of the raw, still-encoded payload
	Filter string
	Count  int
	Pages  []int // page numbers of each occurrence, in scan order

	positions []string
}

// SizeKB returns the payload size in KiB.
func (u *UniqueImage) SizeKB() float64 { return float64(u.Size) / 1024 }

// Format returns the report label for the image's filter.
func (u *UniqueImage) Format() string { return FormatLabel(u.Filter) }

// Positions returns the distinct quadrant labels of the image's occurrences
// in first-seen order.
func (u *UniqueImage) Positions() []string { return u.positions }

// An ImageOccurrence is one image drawn through one Form on one page.
type ImageOccurrence struct {
	Page     int
	Form     string // page resource name of the enclosing Form, with slash
	Name     string // Form resource name of the image, with slash
	Hash     string
	Width    int64
	Height   int64
	Size     int
	Filter   string
	Position string
	File     string // empty when extraction is disabled
}

// SizeKB returns the occurrence payload size in KiB.
func (o ImageOccurrence) SizeKB() float64 { return float64(o.Size) / 1024 }

// An Inventory is the state built while scanning one document: unique images
// by content hash and extracted files by path.
type Inventory struct {
	Images      map[string]*UniqueImage
	Extracted   map[string]int // file path -> occurrence number
	Occurrences []ImageOccurrence

	order []string
	sink  *imageSink
}

func newInventory(sink *imageSink) *Inventory {
	return &Inventory{
		Images:    make(map[string]*UniqueImage),
		Extracted: make(map[string]int),
		sink:      sink,
	}
}

// Unique returns the unique images in first-seen order.
func (inv *Inventory) Unique() []*UniqueImage {
	out := make([]*UniqueImage, 0, len(inv.order))
	for _, h := range inv.order {
		out = append(out, inv.Images[h])
	}
	return out
}

// UniqueBytes returns the storage of all unique payloads in bytes.
func (inv *Inventory) UniqueBytes() int {
	n := 0
	for _, u := range inv.Images {
		n += u.Size
	}
	return n
}

// OccurrenceBytes returns the summed size of every occurrence in bytes.
func (inv *Inventory) OccurrenceBytes() int {
	n := 0
	for _, o := range inv.Occurrences {
		n += o.Size
	}
	return n
}

// Largest returns the biggest unique image, the earliest one on ties.
func (inv *Inventory) Largest() *UniqueImage {
	var best *UniqueImage
	for _, u := range inv.Unique() {
		if best == nil || u.Size > best.Size {
			best = u
		}
	}
	return best
}

func contentHash(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// add records one occurrence of the image stream img and writes its payload
// when extraction is enabled.
func (inv *Inventory) add(page int, form, name string, img Value, pos string) (ImageOccurrence, error) {
	data, err := img.RawBytes()
	if err != nil {
		return ImageOccurrence{}, fmt.Errorf("page %d: image %s: %w", page, name, err)
	}
	occ := ImageOccurrence{
		Page:     page,
		Form:     form,
		Name:     name,
		Hash:     contentHash(data),
		Width:    img.Key("Width").Int64(),
		Height:   img.Key("Height").Int64(),
		Size:     len(data),
		Filter:   filterTag(img),
		Position: pos,
	}

	// The record is only touched once the payload is on disk.
	n := len(inv.Occurrences) + 1
	if inv.sink != nil {
		path, err := inv.sink.write(n, data)
		if err != nil {
			return ImageOccurrence{}, err
		}
		occ.File = path
		inv.Extracted[path] = n
	}

	u, seen := inv.Images[occ.Hash]
	if !seen {
		u = &UniqueImage{
			Hash:   occ.Hash,
			Width:  occ.Width,
			Height: occ.Height,
			Size:   occ.Size,
			Filter: occ.Filter,
		}
		inv.Images[occ.Hash] = u
		inv.order = append(inv.order, occ.Hash)
	}
	u.Count++
	u.Pages = append(u.Pages, page)
	if !contains(u.positions, pos) {
		u.positions = append(u.positions, pos)
	}

	inv.Occurrences = append(inv.Occurrences, occ)
	logger.Debug("image occurrence", "page", page, "form", form, "image", name, "new", !seen, "hash", occ.Hash[:12])
	return occ, nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// imageSink writes raw image payloads to numbered files, one per occurrence.
type imageSink struct {
	dir    string
	prefix string
	ext    string
	ready  bool
}

func (s *imageSink) write(n int, data []byte) (string, error) {
	if !s.ready {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		s.ready = true
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s%d%s", s.prefix, n, s.ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("extract image %d: %w", n, err)
	}
	return path, nil
}
