// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance with custom validators and readable error
// messages for configuration structs.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Field names taken from koanf tags, so errors name config keys
//   - Error translation to human-readable messages
//   - Errors that match errdefs.ErrInvalidArgument
//
// # Quick Start
//
//	type RecommendConfig struct {
//	    Strategy  string `koanf:"strategy" validate:"oneof=range binary"`
//	    Neighbors int    `koanf:"neighbors" validate:"gte=1"`
//	}
//
//	if verr := validation.ValidateStruct(&cfg); verr != nil {
//	    return fmt.Errorf("invalid config: %w", verr)
//	}
//
// # Error Messages
//
// Failing fields are reported by their dotted config key:
//
//	recommend.neighbors must be greater than or equal to 1
//	logging.level must be one of: trace debug info warn error
//
// # Custom Validators
//
//   - unit_interval: float in (0, 1], used for variance shares
//
// # Thread Safety
//
// GetValidator and ValidateStruct are safe for concurrent use.
package validation
