// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdftools

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// pdfBuilder assembles a classic-xref PDF with correct byte offsets.
type pdfBuilder struct {
	objs []string
}

func (b *pdfBuilder) add(body string) int {
	b.objs = append(b.objs, body)
	return len(b.objs)
}

func (b *pdfBuilder) reserve() int { return b.add("null") }

func (b *pdfBuilder) set(id int, body string) { b.objs[id-1] = body }

func streamObj(dict string, data []byte) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

// bytes renders the document; infoID 0 omits /Info.
func (b *pdfBuilder) bytes(rootID, infoID int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	offsets := make([]int, len(b.objs))
	for i, body := range b.objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xrefAt := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(b.objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	info := ""
	if infoID > 0 {
		info = fmt.Sprintf(" /Info %d 0 R", infoID)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R%s >>\nstartxref\n%d\n%%%%EOF\n",
		len(b.objs)+1, rootID, info, xrefAt)
	return buf.Bytes()
}

type imageDef struct {
	Name   string
	W, H   int
	Filter string // raw /Filter value, e.g. "/DCTDecode"; empty omits it
	Data   []byte
}

type formDef struct {
	Name   string
	BBox   string // e.g. "0 0 200 100"; empty omits it
	Images []imageDef
}

type pageDef struct {
	Content  string
	Compress bool
	Corrupt  bool // declare /FlateDecode over plain bytes
	MediaBox string // empty means "0 0 600 800"; "-" omits it
	Forms    []formDef
}

type docDef struct {
	Title    string
	Producer string
	Pages    []pageDef
}

func deflate(t testing.TB, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func buildPDF(t testing.TB, doc docDef) []byte {
	t.Helper()
	b := &pdfBuilder{}
	catalog := b.reserve()
	pagesID := b.reserve()

	var kids []string
	for _, p := range doc.Pages {
		var xobjs []string
		for _, f := range p.Forms {
			var imgs []string
			for _, im := range f.Images {
				dict := fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceRGB /BitsPerComponent 8", im.W, im.H)
				if im.Filter != "" {
					dict += " /Filter " + im.Filter
				}
				id := b.add(streamObj(dict, im.Data))
				imgs = append(imgs, fmt.Sprintf("/%s %d 0 R", im.Name, id))
			}
			fdict := "/Type /XObject /Subtype /Form"
			if f.BBox != "" {
				fdict += " /BBox [" + f.BBox + "]"
			}
			fdict += " /Resources << /XObject << " + strings.Join(imgs, " ") + " >> >>"
			id := b.add(streamObj(fdict, []byte("q 1 0 0 1 0 0 cm Q")))
			xobjs = append(xobjs, fmt.Sprintf("/%s %d 0 R", f.Name, id))
		}

		content := []byte(p.Content)
		cdict := ""
		if p.Compress {
			content = deflate(t, content)
		}
		if p.Compress || p.Corrupt {
			cdict = "/Filter /FlateDecode"
		}
		contentID := b.add(streamObj(cdict, content))

		box := " /MediaBox [0 0 600 800]"
		switch p.MediaBox {
		case "":
		case "-":
			box = ""
		default:
			box = " /MediaBox [" + p.MediaBox + "]"
		}
		pageID := b.add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R%s /Resources << /XObject << %s >> >> /Contents %d 0 R >>",
			pagesID, box, strings.Join(xobjs, " "), contentID))
		kids = append(kids, fmt.Sprintf("%d 0 R", pageID))
	}
	b.set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesID))
	b.set(pagesID, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids)))

	infoID := 0
	if doc.Title != "" || doc.Producer != "" {
		infoID = b.add(fmt.Sprintf("<< /Title (%s) /Producer (%s) >>", doc.Title, doc.Producer))
	}
	return b.bytes(catalog, infoID)
}

// writePDF builds doc into a file under dir and returns its path.
func writePDF(t testing.TB, dir, name string, doc docDef) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buildPDF(t, doc), 0o644))
	return path
}

// plainDoc has n pages that only stroke a line.
func plainDoc(n int) docDef {
	var doc docDef
	for i := 0; i < n; i++ {
		doc.Pages = append(doc.Pages, pageDef{Content: fmt.Sprintf("0 0 m %d %d l S", 10+i, 20+i)})
	}
	return doc
}

var (
	jpegData  = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00fake-jpeg-payload-one\xff\xd9")
	otherJPEG = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00a-different-payload\xff\xd9")
)

// letterDoc is a two-page letter: a logo drawn top-right on both pages from
// byte-identical payloads, and a signature bottom-left on page 2.
func letterDoc() docDef {
	logo := imageDef{Name: "Im1", W: 320, H: 200, Filter: "/DCTDecode", Data: jpegData}
	return docDef{
		Title:    "Test letter",
		Producer: "pdftools tests",
		Pages: []pageDef{
			{
				Content: "q 160 0 0 100 420 680 cm /Fm1 Do Q\nBT /F1 12 Tf (Hello) Tj ET",
				Forms:   []formDef{{Name: "Fm1", BBox: "0 0 160 100", Images: []imageDef{logo}}},
			},
			{
				Content:  "q 160 0 0 100 420 680 cm /Fm1 Do Q\nq 1 0 0 1 72 90 cm /Fm2 Do Q",
				Compress: true,
				Forms: []formDef{
					{Name: "Fm1", BBox: "0 0 160 100", Images: []imageDef{logo}},
					{Name: "Fm2", BBox: "0 0 144 36", Images: []imageDef{{Name: "Sig", W: 400, H: 100, Filter: "/FlateDecode", Data: otherJPEG}}},
				},
			},
		},
	}
}
