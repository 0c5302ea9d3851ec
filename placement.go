// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdftools

import (
	"regexp"
	"strconv"
)

// UnknownPosition is reported for an image whose enclosing object was never
// seen in a transform-and-draw sequence.
const UnknownPosition = "unknown position"

// A Placement is the transform in effect when a named external object is
// drawn: [A B C D E F] as given to the cm operator.
// E and F are the object origin in page space; A and D are the x and y scale.
type Placement struct {
	Name             string
	A, B, C, D, E, F float64
}

const numberPattern = `([-+]?(?:\d+\.?\d*|\.\d+))`

// placementRE matches "a b c d e f cm ... /Name Do". Everything between cm
// and the first slash is skipped, so q/Q scoping and nested transforms are
// not interpreted: each matched transform is taken as page-absolute.
var placementRE = regexp.MustCompile(
	numberPattern + `\s+` + numberPattern + `\s+` + numberPattern + `\s+` +
		numberPattern + `\s+` + numberPattern + `\s+` + numberPattern +
		`\s+cm[^/]*/(\w+)\s+Do`)

// ScanPlacements returns every transform-then-draw sequence in a decoded
// content stream, in stream order. Regions that do not match are ignored.
func ScanPlacements(content []byte) []Placement {
	var out []Placement
	for _, m := range placementRE.FindAllSubmatch(content, -1) {
		var v [6]float64
		ok := true
		for i := range v {
			f, err := strconv.ParseFloat(string(m[i+1]), 64)
			if err != nil {
				ok = false
				break
			}
			v[i] = f
		}
		if !ok {
			continue
		}
		out = append(out, Placement{
			Name: string(m[7]),
			A:    v[0], B: v[1], C: v[2], D: v[3], E: v[4], F: v[5],
		})
	}
	return out
}

// IndexPlacements keys placements by object name; the last one wins.
func IndexPlacements(ps []Placement) map[string]Placement {
	idx := make(map[string]Placement, len(ps))
	for _, p := range ps {
		idx[p.Name] = p
	}
	return idx
}

// Quadrant classifies the placement origin against the page centre as
// "top-left", "top-right", "bottom-left" or "bottom-right".
// A point exactly on a centre line counts as left or bottom.
func (p Placement) Quadrant(width, height float64) string {
	h, v := "left", "bottom"
	if p.E > width/2 {
		h = "right"
	}
	if p.F > height/2 {
		v = "top"
	}
	return v + "-" + h
}

// position looks up the placement recorded for an object name, stripped of
// any leading slash, and classifies it.
func position(idx map[string]Placement, objName string, width, height float64, haveBox bool) string {
	if !haveBox {
		return UnknownPosition
	}
	p, ok := idx[trimSlash(objName)]
	if !ok {
		return UnknownPosition
	}
	return p.Quadrant(width, height)
}

func trimSlash(s string) string {
	for len(s) > 0 && s[0] == '/' {
		s = s[1:]
	}
	return s
}

const pointsPerInch = 72.0

// ptToMM converts PDF points to millimetres.
func ptToMM(pt float64) float64 {
	return pt / pointsPerInch * 25.4
}
