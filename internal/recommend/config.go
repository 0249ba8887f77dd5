// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package recommend

import (
	"fmt"
	"math"
	"strings"

	"github.com/tomtom215/forumrec/internal/errdefs"
)

// Centering selects the means Pearson similarity subtracts from ratings.
type Centering int

const (
	// CenterCorated uses each row's mean over the co-rated columns only.
	CenterCorated Centering = iota
	// CenterAverage uses each row's stored non-zero average.
	CenterAverage
)

// String returns the configuration name of the centering.
func (c Centering) String() string {
	switch c {
	case CenterCorated:
		return "corated"
	case CenterAverage:
		return "average"
	default:
		return "unknown"
	}
}

// ParseCentering parses "corated" or "average".
func ParseCentering(s string) (Centering, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "corated":
		return CenterCorated, nil
	case "average":
		return CenterAverage, nil
	default:
		return 0, fmt.Errorf("centering %q: %w", s, errdefs.ErrInvalidArgument)
	}
}

// Config contains the tunables of a strategy.
type Config struct {
	// BinaryThreshold is the smallest inferred membership treated as 1 by the
	// binary strategy. Zero selects DefaultBinaryThreshold; a literal zero
	// cut-off would flag every cell.
	BinaryThreshold float64 `json:"binary_threshold"`

	// Centering selects the means used by range similarity.
	Centering Centering `json:"centering"`

	// Workers bounds the goroutines computing similarity rows.
	Workers int `json:"workers"`
}

// Defaults.
const (
	DefaultBinaryThreshold = 1e-5
	DefaultWorkers         = 4
)

// DefaultConfig returns the default strategy configuration.
func DefaultConfig() Config {
	return Config{
		BinaryThreshold: DefaultBinaryThreshold,
		Centering:       CenterCorated,
		Workers:         DefaultWorkers,
	}
}

// Validate checks the configuration. Zero values are accepted and replaced by
// defaults when a strategy is constructed.
func (c Config) Validate() error {
	if c.BinaryThreshold < 0 || math.IsNaN(c.BinaryThreshold) || math.IsInf(c.BinaryThreshold, 0) {
		return fmt.Errorf("binary_threshold must be a finite non-negative number, got %v: %w", c.BinaryThreshold, errdefs.ErrInvalidArgument)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d: %w", c.Workers, errdefs.ErrInvalidArgument)
	}
	if c.Centering != CenterCorated && c.Centering != CenterAverage {
		return fmt.Errorf("centering %d: %w", int(c.Centering), errdefs.ErrInvalidArgument)
	}
	return nil
}

// withDefaults fills zero fields.
func (c Config) withDefaults() Config {
	if c.BinaryThreshold == 0 {
		c.BinaryThreshold = DefaultBinaryThreshold
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	return c
}
