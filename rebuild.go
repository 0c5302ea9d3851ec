// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdftools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sassoftware/pdf-tools/logger"
)

var ErrGhostscriptNotFound = errors.New("ghostscript executable not found")

// GhostscriptArgs returns the pdfwrite arguments that rebuild in into out
// without downsampling images or converting colours.
func GhostscriptArgs(in, out string) []string {
	return []string{
		"-dNOPAUSE",
		"-dBATCH",
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=/prepress",
		"-dEmbedAllFonts=true",
		"-dSubsetFonts=true",
		"-dCompressFonts=true",
		"-dColorConversionStrategy=/LeaveColorUnchanged",
		"-dDownsampleMonoImages=false",
		"-dDownsampleGrayImages=false",
		"-dDownsampleColorImages=false",
		"-sOutputFile=" + out,
		in,
	}
}

// Rebuild re-encodes in into out through Ghostscript, bounded by
// cfg.CommandTimeout.
func Rebuild(ctx context.Context, cfg *Config, in, out string, w io.Writer) error {
	fmt.Fprintln(w, "Rebuilding PDF with Ghostscript...")
	fmt.Fprintf(w, "Input: %s\n", in)
	fmt.Fprintf(w, "Output: %s\n", out)

	ctx, cancel := context.WithTimeout(ctx, cfg.CommandTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, cfg.GhostscriptPath, GhostscriptArgs(in, out)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("running ghostscript", "exe", cfg.GhostscriptPath, "timeout", cfg.CommandTimeout, true)
	err := cmd.Run()
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s (make sure Ghostscript is in your PATH)", ErrGhostscriptNotFound, cfg.GhostscriptPath)
	case ctx.Err() == context.DeadlineExceeded:
		return fmt.Errorf("ghostscript timed out after %v", cfg.CommandTimeout)
	case err != nil:
		msg := strings.TrimSpace(stderr.String())
		if s := strings.TrimSpace(stdout.String()); s != "" {
			msg += "\n" + s
		}
		return fmt.Errorf("ghostscript error: %w\n%s", err, msg)
	}

	outInfo, err := os.Stat(out)
	if err != nil {
		return fmt.Errorf("output file was not created: %w", err)
	}
	inInfo, err := os.Stat(in)
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	fmt.Fprintln(w, "\n✓ PDF rebuilt successfully!")
	p.Fprintf(w, "  Original size: %d bytes\n", inInfo.Size())
	p.Fprintf(w, "  New size: %d bytes\n", outInfo.Size())
	return nil
}

// FixForPrint optionally drops the first and/or last page of in, then
// rebuilds the result into out. The intermediate file is always removed.
func FixForPrint(ctx context.Context, cfg *Config, in, out string, removeFirst, removeLast bool, w io.Writer) error {
	if _, err := os.Stat(in); err != nil {
		return fmt.Errorf("input file not found: %w", err)
	}
	if !removeFirst && !removeLast {
		return Rebuild(ctx, cfg, in, out, w)
	}

	tmp := tempPath(in)
	defer func() {
		if err := os.Remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Error("failed to remove temp file", "path", tmp, "err", err)
		}
	}()

	fmt.Fprintln(w, "\nStep 1: Removing pages...")
	if _, err := TrimPages(in, tmp, removeFirst, removeLast, w); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Step 2: Rebuilding with Ghostscript...")
	return Rebuild(ctx, cfg, tmp, out, w)
}
