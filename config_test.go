// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdftools

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		shouldErr bool
	}{
		{
			name:      "default config is valid",
			mutate:    func(*Config) {},
			shouldErr: false,
		},
		{
			name:      "strict mode",
			mutate:    func(c *Config) { c.ParsingMode = Strict },
			shouldErr: false,
		},
		{
			name:      "extraction disabled",
			mutate:    func(c *Config) { c.ExtractImages = false },
			shouldErr: false,
		},
		{
			name:      "missing OutputDir",
			mutate:    func(c *Config) { c.OutputDir = "" },
			shouldErr: true,
		},
		{
			name:      "ImagePrefix with path separator",
			mutate:    func(c *Config) { c.ImagePrefix = "../img" },
			shouldErr: true,
		},
		{
			name:      "ImageExt without dot",
			mutate:    func(c *Config) { c.ImageExt = "jpg" },
			shouldErr: true,
		},
		{
			name:      "invalid ParsingMode",
			mutate:    func(c *Config) { c.ParsingMode = "invalid-mode" },
			shouldErr: true,
		},
		{
			name:      "invalid MaxConcurrentPDFs (too low)",
			mutate:    func(c *Config) { c.MaxConcurrentPDFs = 0 },
			shouldErr: true,
		},
		{
			name:      "invalid MaxConcurrentPDFs (too high)",
			mutate:    func(c *Config) { c.MaxConcurrentPDFs = 11 },
			shouldErr: true,
		},
		{
			name:      "negative LargeImageThresholdKB",
			mutate:    func(c *Config) { c.LargeImageThresholdKB = -1 },
			shouldErr: true,
		},
		{
			name:      "missing GhostscriptPath",
			mutate:    func(c *Config) { c.GhostscriptPath = "" },
			shouldErr: true,
		},
		{
			name:      "missing CommandTimeout",
			mutate:    func(c *Config) { c.CommandTimeout = 0 },
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.shouldErr {
				assert.Error(t, err, "expected validation error")
			} else {
				assert.NoError(t, err, "expected validation to pass")
			}
		})
	}
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, "extracted_image_", cfg.ImagePrefix)
	assert.Equal(t, ".jpg", cfg.ImageExt)
	assert.True(t, cfg.ExtractImages)
	assert.Equal(t, BestEffort, cfg.ParsingMode)
	assert.Equal(t, 5*time.Minute, cfg.CommandTimeout)
	assert.Equal(t, DefaultGhostscript(), cfg.GhostscriptPath)
}

func TestDefaultGhostscript(t *testing.T) {
	if runtime.GOOS == "windows" {
		assert.Equal(t, "gswin64c.exe", DefaultGhostscript())
	} else {
		assert.Equal(t, "gs", DefaultGhostscript())
	}
}
