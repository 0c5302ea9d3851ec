// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdftools

import (
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sassoftware/pdf-tools/logger"
)

type ParsingMode string

const (
	Strict     ParsingMode = "strict"
	BestEffort ParsingMode = "best-effort"
)

type Config struct {
	OutputDir             string        `validate:"required"`
	ImagePrefix           string        `validate:"required,excludesall=/\\"`
	ImageExt              string        `validate:"required,startswith=."`
	ExtractImages         bool
	ParsingMode           ParsingMode   `validate:"oneof=strict best-effort"`
	MaxConcurrentPDFs     int           `validate:"min=1,max=10"`
	LargeImageThresholdKB float64       `validate:"gte=0"`
	GhostscriptPath       string        `validate:"required"`
	CommandTimeout        time.Duration `validate:"required"`
	Logger                logger.LogFunc
}

// DefaultGhostscript is the Ghostscript command name for the running platform.
func DefaultGhostscript() string {
	if runtime.GOOS == "windows" {
		return "gswin64c.exe"
	}
	return "gs"
}

func NewDefaultConfig() *Config {
	return &Config{
		OutputDir:             ".",
		ImagePrefix:           "extracted_image_",
		ImageExt:              ".jpg",
		ExtractImages:         true,
		ParsingMode:           BestEffort,
		MaxConcurrentPDFs:     1,
		LargeImageThresholdKB: 50,
		GhostscriptPath:       DefaultGhostscript(),
		CommandTimeout:        5 * time.Minute,
	}
}

func (cfg *Config) Validate() error {
	logger.Debug("Validating Config Object")
	validate := validator.New()
	return validate.Struct(cfg)
}
