// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

// Package errdefs defines the error taxonomy shared by every forumrec package.
//
// All failures are fatal to the calling operation and never retried. Call sites
// add context with fmt.Errorf("...: %w", errdefs.ErrX); callers match with errors.Is.
package errdefs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an unknown entity id, dense index, matrix name, or
	// state that has not been computed yet (for example neighbors).
	ErrNotFound = errors.New("not found")

	// ErrDimensionMismatch reports incompatible shapes: matrix products, label
	// arrays whose length differs from the array dimension, ragged rows.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidArgument reports a parameter the active component rejects,
	// such as the Typical formula on the binary strategy.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicate reports a second entity with an existing string id.
	ErrDuplicate = fmt.Errorf("%w: duplicate id", ErrInvalidArgument)
)

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDimensionMismatch reports whether err is or wraps ErrDimensionMismatch.
func IsDimensionMismatch(err error) bool {
	return errors.Is(err, ErrDimensionMismatch)
}

// IsInvalidArgument reports whether err is or wraps ErrInvalidArgument.
// ErrDuplicate matches as well.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
