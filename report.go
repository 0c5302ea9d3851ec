// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdftools

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// A Report is the result of auditing one document.
type Report struct {
	Path      string
	FileSize  int64 // bytes, as found on disk
	Meta      Meta
	NumPages  int
	Pages     []PageReport
	Inventory *Inventory

	LargeImageThresholdKB float64
}

// A PageReport describes the drawing of external objects on one page.
type PageReport struct {
	Number     int
	Width      float64
	Height     float64
	HasBox     bool
	Placements []Placement
	XObjects   []XObjectDetail
}

// An XObjectDetail describes one entry of a page's XObject resources.
type XObjectDetail struct {
	Name    string // resource name with slash
	Subtype string
	BBox    Rect
	HasBBox bool
	Images  []ImageOccurrence
}

// FileSizeKB returns the on-disk document size in KiB.
func (r *Report) FileSizeKB() float64 { return float64(r.FileSize) / 1024 }

// Percent returns kb as a percentage of the document size.
func (r *Report) Percent(kb float64) float64 {
	total := r.FileSizeKB()
	if total == 0 {
		return 0
	}
	return kb / total * 100
}

// Recommendations returns the size-reduction tips for the document.
func (r *Report) Recommendations() []string {
	tips := []string{
		"Optimize JPG images (reduce dimensions or increase compression)",
		"Consider simplifying vector graphics if possible",
		"Ensure fonts are subset (only include used characters)",
	}
	if big := r.Inventory.Largest(); big != nil && big.SizeKB() > r.LargeImageThresholdKB {
		tips = append(tips, fmt.Sprintf("Largest image is %dx%dpx %s at %.2f KB: downsample or recompress it first",
			big.Width, big.Height, big.Format(), big.SizeKB()))
	}
	return tips
}

// WriteTo prints the human-readable report to w.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	p := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	p("Total pages: %d", r.NumPages)
	if r.Meta.Title != "" {
		p("Title: %s", r.Meta.Title)
	}
	if r.Meta.Producer != "" {
		p("Producer: %s", r.Meta.Producer)
	}

	for _, pg := range r.Pages {
		p("\n=== Page %d ===", pg.Number)
		if pg.HasBox {
			p("Page size: %.2f x %.2f points (A4 = ~210x297mm)", pg.Width, pg.Height)
		} else {
			p("Page size: unknown (no MediaBox)")
		}

		if len(pg.Placements) > 0 {
			p("\n=== XObject Placements ===")
		}
		for _, pl := range pg.Placements {
			p("\nXObject: /%s", pl.Name)
			p("  Position (from bottom-left): X=%.2fpt, Y=%.2fpt", pl.E, pl.F)
			if pg.HasBox {
				p("  Position (from top-left): X=%.2fpt, Y=%.2fpt", pl.E, pg.Height-pl.F)
			}
			p("  Position (mm from bottom-left): X=%.1fmm, Y=%.1fmm", ptToMM(pl.E), ptToMM(pl.F))
			if pg.HasBox {
				p("  Position (mm from top-left): X=%.1fmm, Y=%.1fmm", ptToMM(pl.E), ptToMM(pg.Height-pl.F))
			}
			p("  Scale: X=%s, Y=%s", formatScale(pl.A), formatScale(pl.D))
		}

		if len(pg.XObjects) > 0 {
			p("\n=== XObject Details ===")
		}
		for _, xo := range pg.XObjects {
			p("\nXObject: %s", xo.Name)
			if xo.HasBBox {
				bw, bh := xo.BBox.Width(), xo.BBox.Height()
				p("  Size: %.2f x %.2f points", bw, bh)
				p("  Size: %.1f x %.1f mm", ptToMM(bw), ptToMM(bh))
			}
			for _, img := range xo.Images {
				p("  Contains Image: %s", img.Name)
				p("    Pixel Dimensions: %dx%d px", img.Width, img.Height)
				p("    File Size: %.2f KB", img.SizeKB())
				if img.File != "" {
					p("    Extracted to: %s", img.File)
				}
			}
		}
	}

	inv := r.Inventory
	unique := inv.Unique()
	p("\n=== SUMMARY ===")
	p("Total PDF size: %.2f KB", r.FileSizeKB())
	p("Total raster images: %d", len(inv.Occurrences))
	p("Unique images: %d", len(unique))

	for i, u := range unique {
		p("\nImage %d: %dx%dpx %s, %.2f KB", i+1, u.Width, u.Height, u.Format(), u.SizeKB())
		p("  Occurrences: %d (pages %s)", u.Count, joinInts(u.Pages))
		p("  Position: %s", strings.Join(u.Positions(), ", "))
		p("  Percentage of PDF: %.1f%%", r.Percent(u.SizeKB()))
	}

	imageKB := float64(inv.UniqueBytes()) / 1024
	otherKB := r.FileSizeKB() - imageKB
	p("\nTotal image size: %.2f KB (%.1f%%)", imageKB, r.Percent(imageKB))
	p("Other content (text, fonts, vectors): %.2f KB (%.1f%%)", otherKB, r.Percent(otherKB))

	p("\nTo reduce file size:")
	for i, tip := range r.Recommendations() {
		p("  %d. %s", i+1, tip)
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// formatScale prints a scale factor in its shortest form.
func formatScale(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
