// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package recommend

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/forumrec/internal/errdefs"
	"github.com/tomtom215/forumrec/internal/matrixcache"
)

// Ensure both strategies implement the interface.
var (
	_ Strategy = (*RangeMembership)(nil)
	_ Strategy = (*BinaryMembership)(nil)
)

// New creates the strategy of the given kind over the matrices of cache.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(kind Kind, cache *matrixcache.Cache, cfg Config, logger zerolog.Logger) (Strategy, error) {
	if cache == nil {
		return nil, fmt.Errorf("matrix cache is required: %w", errdefs.ErrInvalidArgument)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend config: %w", err)
	}

	switch kind {
	case KindRange:
		return NewRangeMembership(cache, cfg, logger), nil
	case KindBinary:
		return NewBinaryMembership(cache, cfg, logger), nil
	default:
		return nil, fmt.Errorf("strategy kind %d: %w", int(kind), errdefs.ErrInvalidArgument)
	}
}
