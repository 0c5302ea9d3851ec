// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Command pdftools audits image usage in PDF files and performs small
// print-preparation edits: trimming pages, rebuilding through Ghostscript
// and concatenating documents.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	pdftools "github.com/sassoftware/pdf-tools"
	"github.com/sassoftware/pdf-tools/logger"
	"github.com/sassoftware/pdf-tools/tracer"
)

const usage = `usage: pdftools [-v] [-trace] <command> [flags] args

commands:
  audit   [-out DIR] [-strict] [-no-extract] [-large-kb N] [-jobs N] file.pdf...
  trim    [-first] [-last] in.pdf out.pdf
  rebuild [-gs PATH] [-timeout D] in.pdf out.pdf
  fix     [-first] [-last] [-gs PATH] [-timeout D] in.pdf out.pdf
  combine -o out.pdf in.pdf...
`

var errUsage = errors.New("bad usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("pdftools", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	verbose := global.Bool("v", false, "debug logging")
	trace := global.Bool("trace", false, "print the trace buffer on exit")
	if err := global.Parse(args); err != nil {
		return 1
	}
	if global.NArg() == 0 {
		global.Usage()
		return 1
	}

	log := newLogrus(stderr, *verbose)
	logger.SetLogger(logrusFunc(log))
	defer logger.SetLogger(nil)
	if *trace {
		defer func() { _ = tracer.FlushTo(stderr) }()
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	var err error
	switch cmd {
	case "audit":
		err = runAudit(ctx, rest, stdout, stderr)
	case "trim":
		err = runTrim(rest, stdout, stderr)
	case "rebuild":
		err = runRebuild(ctx, rest, stdout, stderr)
	case "fix":
		err = runFix(ctx, rest, stdout, stderr)
	case "combine":
		err = runCombine(rest, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		global.Usage()
		return 1
	}
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "✗ Error: %v\n", err)
		}
		logger.Debug("command failed", "command", cmd, "err", err)
		return 1
	}
	return 0
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// parse parses args and checks the positional argument count; hi < 0
// means unbounded.
func parse(fs *flag.FlagSet, args []string, lo, hi int) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() < lo || (hi >= 0 && fs.NArg() > hi) {
		fmt.Fprintf(fs.Output(), "%s: wrong number of arguments\n", fs.Name())
		fs.Usage()
		return errUsage
	}
	return nil
}

func runAudit(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg := pdftools.NewDefaultConfig()
	fs := newFlagSet("audit", stderr)
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "directory for extracted images")
	strict := fs.Bool("strict", false, "fail on structural problems instead of skipping them")
	noExtract := fs.Bool("no-extract", false, "do not write extracted image files")
	fs.Float64Var(&cfg.LargeImageThresholdKB, "large-kb", cfg.LargeImageThresholdKB, "size in KB above which the largest image is called out")
	fs.IntVar(&cfg.MaxConcurrentPDFs, "jobs", cfg.MaxConcurrentPDFs, "documents audited at once")
	if err := parse(fs, args, 1, -1); err != nil {
		return err
	}
	if *strict {
		cfg.ParsingMode = pdftools.Strict
	}
	cfg.ExtractImages = !*noExtract

	a, err := pdftools.NewAuditor(cfg)
	if err != nil {
		return err
	}
	return a.AuditAll(ctx, fs.Args(), stdout)
}

func runTrim(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("trim", stderr)
	first := fs.Bool("first", false, "remove the first page")
	last := fs.Bool("last", false, "remove the last page")
	if err := parse(fs, args, 2, 2); err != nil {
		return err
	}
	_, err := pdftools.TrimPages(fs.Arg(0), fs.Arg(1), *first, *last, stdout)
	return err
}

// rebuildFlags registers the Ghostscript flags shared by rebuild and fix.
func rebuildFlags(fs *flag.FlagSet, cfg *pdftools.Config) {
	fs.StringVar(&cfg.GhostscriptPath, "gs", cfg.GhostscriptPath, "Ghostscript executable")
	fs.DurationVar(&cfg.CommandTimeout, "timeout", cfg.CommandTimeout, "Ghostscript time limit")
}

func runRebuild(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg := pdftools.NewDefaultConfig()
	fs := newFlagSet("rebuild", stderr)
	rebuildFlags(fs, cfg)
	if err := parse(fs, args, 2, 2); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return pdftools.Rebuild(ctx, cfg, fs.Arg(0), fs.Arg(1), stdout)
}

func runFix(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg := pdftools.NewDefaultConfig()
	fs := newFlagSet("fix", stderr)
	first := fs.Bool("first", false, "remove the first page")
	last := fs.Bool("last", false, "remove the last page")
	rebuildFlags(fs, cfg)
	if err := parse(fs, args, 2, 2); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	start := time.Now()
	err := pdftools.FixForPrint(ctx, cfg, fs.Arg(0), fs.Arg(1), *first, *last, stdout)
	logger.Info("fix finished", "elapsed", time.Since(start).Round(time.Millisecond), "ok", err == nil)
	return err
}

func runCombine(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("combine", stderr)
	out := fs.String("o", "", "output file")
	if err := parse(fs, args, 1, -1); err != nil {
		return err
	}
	if *out == "" {
		fmt.Fprintln(stderr, "combine: -o is required")
		return errUsage
	}
	return pdftools.Combine(fs.Args(), *out, stdout)
}
