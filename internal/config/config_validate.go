// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/forumrec/internal/errdefs"
	"github.com/tomtom215/forumrec/internal/validation"
)

// Validate checks field constraints, then the rules that span fields.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateStrategy(); err != nil {
		return err
	}

	return c.validateExperiment()
}

// validateStrategy checks that normalization and formula suit the strategy.
// Binary memberships are 0/1, so they are never normalized and are predicted
// with the bin_* formulas; range memberships use the typical formula.
func (c *Config) validateStrategy() error {
	r := c.Recommend
	binaryFormula := strings.HasPrefix(r.Formula, "bin_")

	switch r.Strategy {
	case "binary":
		if r.Normalization != "none" {
			return fmt.Errorf("recommend.normalization must be none for the binary strategy, got %s: %w",
				r.Normalization, errdefs.ErrInvalidArgument)
		}
		if !binaryFormula {
			return fmt.Errorf("recommend.formula must be one of bin_i..bin_iv for the binary strategy, got %s: %w",
				r.Formula, errdefs.ErrInvalidArgument)
		}
	case "range":
		if binaryFormula {
			return fmt.Errorf("recommend.formula must be typical for the range strategy, got %s: %w",
				r.Formula, errdefs.ErrInvalidArgument)
		}
	}
	return nil
}

// validateExperiment validates the experiment section (only if enabled).
// Binary memberships are evaluated on SxF with the bin_* formulas and are
// never normalized.
func (c *Config) validateExperiment() error {
	e := c.Experiment
	if !e.Enabled || c.Recommend.Strategy != "binary" {
		return nil
	}
	for _, a := range e.Architectures {
		if a != "SxF" {
			return fmt.Errorf("experiment.architectures must be SxF for the binary strategy, got %s: %w",
				a, errdefs.ErrInvalidArgument)
		}
	}
	if len(e.Formulas) == 0 {
		return fmt.Errorf("experiment.formulas is required for the binary strategy: %w", errdefs.ErrInvalidArgument)
	}
	if len(e.Normalizations) > 0 {
		return fmt.Errorf("experiment.normalizations requires recommend.strategy range: %w", errdefs.ErrInvalidArgument)
	}
	return nil
}
