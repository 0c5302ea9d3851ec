// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdftools

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sassoftware/pdf-tools/logger"
)

var ErrWouldRemoveAllPages = errors.New("would remove all pages")

var configDirOnce sync.Once

// pdfcpuConfig returns a relaxed pdfcpu configuration that never touches the
// user's config directory.
func pdfcpuConfig() *model.Configuration {
	configDirOnce.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// keptRange returns the zero-based half-open range of pages left after
// dropping the first and/or last page of a document with total pages.
func keptRange(total int, removeFirst, removeLast bool) (start, end int, err error) {
	end = total
	if removeFirst {
		start = 1
	}
	if removeLast {
		end = total - 1
	}
	if start >= end {
		return 0, 0, ErrWouldRemoveAllPages
	}
	return start, end, nil
}

// TrimPages writes in to out without its first and/or last page and returns
// the page count of out. Progress lines are printed to w.
func TrimPages(in, out string, removeFirst, removeLast bool, w io.Writer) (int, error) {
	f, r, err := Open(in)
	if err != nil {
		return 0, err
	}
	total := r.NumPage()
	f.Close()
	fmt.Fprintf(w, "Original PDF has %d pages\n", total)

	start, end, err := keptRange(total, removeFirst, removeLast)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", in, err)
	}

	conf := pdfcpuConfig()
	var removed, drop []string
	if removeFirst {
		removed = append(removed, "first")
		drop = append(drop, "1")
	}
	if removeLast {
		removed = append(removed, "last")
		drop = append(drop, strconv.Itoa(total))
	}
	logger.Debug("trim pages", "in", in, "out", out, "drop", strings.Join(drop, ","), true)

	if len(drop) == 0 {
		err = api.OptimizeFile(in, out, conf)
	} else {
		err = api.RemovePagesFile(in, out, drop, conf)
	}
	if err != nil {
		return 0, fmt.Errorf("remove pages: %w", err)
	}

	n, err := api.PageCountFile(out)
	if err != nil {
		return 0, fmt.Errorf("count pages of %s: %w", out, err)
	}
	if n != end-start {
		return n, fmt.Errorf("%s: expected %d pages, found %d", out, end-start, n)
	}
	if len(removed) > 0 {
		fmt.Fprintf(w, "Removed %s page(s)\n", strings.Join(removed, " and "))
	}
	fmt.Fprintf(w, "New page count: %d\n", n)
	return n, nil
}

// Combine appends every page of each input, in order, into out.
func Combine(inputs []string, out string, w io.Writer) error {
	if len(inputs) == 0 {
		return ErrNoInputs
	}
	for _, in := range inputs {
		if _, err := os.Stat(in); err != nil {
			return fmt.Errorf("input file not found: %w", err)
		}
	}
	logger.Debug("combine", "inputs", len(inputs), "out", out, true)
	if err := api.MergeCreateFile(inputs, out, false, pdfcpuConfig()); err != nil {
		return fmt.Errorf("combine into %s: %w", out, err)
	}
	fmt.Fprintf(w, "✓ Successfully combined %d PDFs into %s\n", len(inputs), out)
	return nil
}

// tempPath names the intermediate file used between trimming and rebuilding.
func tempPath(in string) string {
	return strings.TrimSuffix(in, ".pdf") + "_temp.pdf"
}
