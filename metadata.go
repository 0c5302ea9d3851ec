// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdftools

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/sassoftware/pdf-tools/logger"
)

// Meta is the document description shown at the top of an audit report.
type Meta struct {
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Creator  string `json:"creator,omitempty"`
	Producer string `json:"producer,omitempty"`
}

// Minimal XML models to pull common XMP fields in a namespace
type xmpPacket struct {
	XMLName xml.Name `xml:"xmpmeta"`
	RDF     rdfRDF   `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# RDF"`
}

type rdfRDF struct {
	Descriptions []rdfDescription `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# Description"`
}

type rdfDescription struct {
	Title          altString `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creator        seqString `xml:"http://purl.org/dc/elements/1.1/ creator"`
	PDFProducer    string    `xml:"http://ns.adobe.com/pdf/1.3/ Producer"`
	XMPCreatorTool string    `xml:"http://ns.adobe.com/xap/1.0/ CreatorTool"`
}

type altString struct {
	Alt struct {
		LI []string `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# li"`
	} `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# Alt"`
}

func (a altString) First() string {
	if len(a.Alt.LI) > 0 {
		return strings.TrimSpace(a.Alt.LI[0])
	}
	return ""
}

type seqString struct {
	Seq struct {
		LI []string `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# li"`
	} `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# Seq"`
}

func (s seqString) First() string {
	if len(s.Seq.LI) > 0 {
		return strings.TrimSpace(s.Seq.LI[0])
	}
	return ""
}

// prefer returns a if non-empty after trimming, otherwise b.
func prefer(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

// InfoDict returns the raw /Info dictionary as a Value (may be Null).
func (r *Reader) InfoDict() Value {
	return r.Trailer().Key("Info")
}

func (r *Reader) readInfo() Meta {
	info := r.InfoDict()
	return Meta{
		Title:    info.Key("Title").Text(),
		Author:   info.Key("Author").Text(),
		Creator:  info.Key("Creator").Text(),
		Producer: info.Key("Producer").Text(),
	}
}

// readXMP returns the raw XMP XML from /Root/Metadata (empty string if absent).
func (r *Reader) readXMP() (string, error) {
	md := r.Trailer().Key("Root").Key("Metadata")
	if md.Kind() != Stream {
		return "", nil
	}
	logger.Debug("found XMP Stream", true)
	b, err := md.Data()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func parseXMP(x string) (Meta, bool) {
	var pkt xmpPacket
	dec := xml.NewDecoder(strings.NewReader(x))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(&pkt); err != nil && err != io.EOF {
		return Meta{}, false
	}

	var m Meta
	for _, d := range pkt.RDF.Descriptions {
		m.Title = prefer(d.Title.First(), m.Title)
		m.Author = prefer(d.Creator.First(), m.Author)
		m.Producer = prefer(strings.TrimSpace(d.PDFProducer), m.Producer)
		m.Creator = prefer(strings.TrimSpace(d.XMPCreatorTool), m.Creator)
	}
	return m, true
}

// Metadata returns the document description, XMP taking precedence over /Info.
// An unreadable XMP stream is ignored.
func (r *Reader) Metadata() Meta {
	info := r.readInfo()
	x, err := r.readXMP()
	if err != nil || x == "" {
		if err != nil {
			logger.Debug("ignoring unreadable XMP stream", "err", err)
		}
		return info
	}
	xf, ok := parseXMP(x)
	if !ok {
		return info
	}
	return Meta{
		Title:    prefer(xf.Title, info.Title),
		Author:   prefer(xf.Author, info.Author),
		Creator:  prefer(xf.Creator, info.Creator),
		Producer: prefer(xf.Producer, info.Producer),
	}
}
