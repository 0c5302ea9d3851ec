// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdftools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sassoftware/pdf-tools/logger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

var (
	ErrMissingMediaBox = errors.New("page has no MediaBox")
	ErrNoInputs        = errors.New("no input files")
)

// Processor defines the contract for auditing a PDF file.
type Processor interface {
	Audit(ctx context.Context, path string) (*Report, error)
}

// PageStrategy decides what a structural problem on a page means for the
// audit. Different strategies handle errors differently (strict vs. best-effort).
type PageStrategy interface {
	Structural(page int, err error) error
}

// StrictStrategy fails the audit on the first structural problem.
type StrictStrategy struct{}

func (StrictStrategy) Structural(page int, err error) error {
	return fmt.Errorf("strict mode failed on page %d: %w", page, err)
}

// BestEffortStrategy tolerates structural problems: the affected part of the
// page is left out of the report.
type BestEffortStrategy struct{}

func (BestEffortStrategy) Structural(page int, err error) error {
	logger.Debug("BestEffortStrategy: ignoring structural problem", "page", page, "err", err, true)
	return nil
}

// Auditor reports on the placement and storage cost of images in PDF files.
type Auditor struct {
	cfg   *Config
	sem   *semaphore.Weighted
	pages PageStrategy
}

var _ Processor = (*Auditor)(nil)

// NewAuditor validates the config and creates a new Auditor.
func NewAuditor(cfg *Config) (*Auditor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Logger != nil {
		logger.SetLogger(cfg.Logger)
	}

	var pages PageStrategy = BestEffortStrategy{}
	if cfg.ParsingMode == Strict {
		pages = StrictStrategy{}
	}

	logger.Debug(fmt.Sprintf("Auditor initialized: parsing_mode=%v, max_concurrent_pdfs=%d, extract=%v",
		cfg.ParsingMode, cfg.MaxConcurrentPDFs, cfg.ExtractImages), true)

	return &Auditor{
		cfg:   cfg,
		sem:   semaphore.NewWeighted(int64(cfg.MaxConcurrentPDFs)),
		pages: pages,
	}, nil
}

// Audit scans one document, extracting images into Config.OutputDir.
func (a *Auditor) Audit(ctx context.Context, path string) (*Report, error) {
	return a.audit(ctx, path, a.cfg.OutputDir)
}

// AuditAll audits every path and prints the reports to w in argument order.
// With more than one path each document extracts into its own directory
// under Config.OutputDir. Reports are printed up to the first failed document.
func (a *Auditor) AuditAll(ctx context.Context, paths []string, w io.Writer) error {
	if len(paths) == 0 {
		return ErrNoInputs
	}
	dirs := outputDirs(a.cfg.OutputDir, paths)
	reports := make([]*Report, len(paths))
	errs := make([]error, len(paths))

	// Documents share ctx but not each other's failures.
	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			rep, err := a.audit(ctx, path, dirs[i])
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", path, err)
				return errs[i]
			}
			reports[i] = rep
			return nil
		})
	}
	_ = g.Wait()

	for i, rep := range reports {
		if errs[i] != nil {
			return errs[i]
		}
		if len(paths) > 1 {
			fmt.Fprintf(w, "##### %s #####\n", paths[i])
		}
		if _, err := rep.WriteTo(w); err != nil {
			return err
		}
		if len(paths) > 1 {
			fmt.Fprintln(w)
		}
	}
	return nil
}

// outputDirs assigns each document its extraction directory.
func outputDirs(root string, paths []string) []string {
	dirs := make([]string, len(paths))
	if len(paths) == 1 {
		dirs[0] = root
		return dirs
	}
	used := make(map[string]int)
	for i, p := range paths {
		base := filepath.Base(p)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		used[stem]++
		if n := used[stem]; n > 1 {
			stem = fmt.Sprintf("%s-%d", stem, n)
		}
		dirs[i] = filepath.Join(root, stem)
	}
	return dirs
}

func (a *Auditor) acquireSlot(ctx context.Context) error {
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire slot: %w", err)
	}
	logger.Debug("Slot acquired successfully", true)
	return nil
}

func (a *Auditor) audit(ctx context.Context, path, outDir string) (rep *Report, err error) {
	logger.Debug(fmt.Sprintf("Starting audit: path=%s", path), true)

	if err := a.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer a.sem.Release(1)

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("file not found: %w", err)
	}
	f, r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	defer func() {
		if x := recover(); x != nil {
			rep = nil
			err = fmt.Errorf("%s: malformed PDF: %v", path, x)
		}
	}()

	var sink *imageSink
	if a.cfg.ExtractImages {
		sink = &imageSink{dir: outDir, prefix: a.cfg.ImagePrefix, ext: a.cfg.ImageExt}
	}
	rep = &Report{
		Path:                  path,
		FileSize:              fi.Size(),
		Meta:                  r.Metadata(),
		NumPages:              r.NumPage(),
		Inventory:             newInventory(sink),
		LargeImageThresholdKB: a.cfg.LargeImageThresholdKB,
	}
	logger.Debug(fmt.Sprintf("Total pages detected: path=%s pages=%d", path, rep.NumPages), true)

	for n := 1; n <= rep.NumPages; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pr, err := a.scanPage(r, n, rep.Inventory)
		if err != nil {
			return nil, err
		}
		rep.Pages = append(rep.Pages, pr)
	}

	logger.Debug(fmt.Sprintf("Audit completed: path=%s images=%d unique=%d",
		path, len(rep.Inventory.Occurrences), len(rep.Inventory.Images)), true)
	return rep, nil
}

// scanPage records the placements and image occurrences of page n.
func (a *Auditor) scanPage(r *Reader, n int, inv *Inventory) (pr PageReport, err error) {
	pr.Number = n
	defer func() {
		if x := recover(); x != nil {
			err = a.pages.Structural(n, fmt.Errorf("malformed page object: %v", x))
		}
	}()

	page := r.Page(n)
	if page.V.IsNull() {
		return pr, a.pages.Structural(n, errors.New("page missing from page tree"))
	}

	if box, ok := page.MediaBox(); ok {
		pr.Width, pr.Height, pr.HasBox = box.Width(), box.Height(), true
	} else if err := a.pages.Structural(n, ErrMissingMediaBox); err != nil {
		return pr, err
	}

	content, cerr := page.ContentData()
	if cerr != nil {
		if err := a.pages.Structural(n, fmt.Errorf("content stream: %w", cerr)); err != nil {
			return pr, err
		}
	}
	pr.Placements = ScanPlacements(content)
	idx := IndexPlacements(pr.Placements)

	for _, name := range page.XObjects() {
		xo := page.XObject(name)
		d := XObjectDetail{Name: "/" + name, Subtype: xo.Key("Subtype").Name()}
		d.BBox, d.HasBBox = rectFrom(xo.Key("BBox"))
		if d.Subtype == "Form" {
			pos := position(idx, d.Name, pr.Width, pr.Height, pr.HasBox)
			nested := xo.Key("Resources").Key("XObject")
			for _, in := range nested.Keys() {
				img := nested.Key(in)
				if img.Key("Subtype").Name() != "Image" {
					continue
				}
				occ, err := inv.add(n, d.Name, "/"+in, img, pos)
				if err != nil {
					return pr, err
				}
				d.Images = append(d.Images, occ)
			}
		}
		pr.XObjects = append(pr.XObjects, d)
	}
	return pr, nil
}
