// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

// Package matrixcache builds the canonical matrix projections of the entity
// catalog and memoizes them in the keyed store.
//
// A projection is rebuilt only when it is missing or the caller forces a
// refresh. Adding entities to the catalog does not invalidate anything;
// callers refresh explicitly after mutating it.
package matrixcache

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/forumrec/internal/catalog"
	"github.com/tomtom215/forumrec/internal/errdefs"
	"github.com/tomtom215/forumrec/internal/matrix"
	"github.com/tomtom215/forumrec/internal/metrics"
	"github.com/tomtom215/forumrec/internal/store"
)

// Projection identifies one canonical catalog projection.
type Projection int

// Canonical projections.
const (
	ActorContent Projection = iota // SxN: rating value
	ActorGroup                     // SxF: membership score
	ActorTerm                      // SxT: term frequency over authored content
	ContentTerm                    // NxT: term frequency
	ContentGroup                   // NxF: content score in group
)

var projectionSuffixes = [...]string{"SxN", "SxF", "SxT", "NxT", "NxF"}

// Projections lists every projection in declaration order.
var Projections = []Projection{ActorContent, ActorGroup, ActorTerm, ContentTerm, ContentGroup}

// Suffix returns the short name appended to the cache id.
func (p Projection) Suffix() string {
	if p < 0 || int(p) >= len(projectionSuffixes) {
		return fmt.Sprintf("Projection(%d)", int(p))
	}
	return projectionSuffixes[p]
}

// String implements fmt.Stringer.
func (p Projection) String() string { return p.Suffix() }

// ParseProjection parses a suffix such as "SxT".
func ParseProjection(s string) (Projection, error) {
	for i, suffix := range projectionSuffixes {
		if s == suffix {
			return Projection(i), nil
		}
	}
	return 0, fmt.Errorf("projection %q: %w", s, errdefs.ErrInvalidArgument)
}

// Cache derives matrices from a catalog and keeps them in a store.
type Cache struct {
	id      string
	store   *store.Store
	catalog *catalog.Catalog
	logger  zerolog.Logger
}

// New creates a cache whose matrices are stored under names prefixed with id.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(id string, st *store.Store, cat *catalog.Catalog, logger zerolog.Logger) *Cache {
	return &Cache{
		id:      id,
		store:   st,
		catalog: cat,
		logger:  logger,
	}
}

// ID returns the cache id.
func (c *Cache) ID() string { return c.id }

// Store returns the backing store.
func (c *Cache) Store() *store.Store { return c.store }

// Catalog returns the catalog projections are built from.
func (c *Cache) Catalog() *catalog.Catalog { return c.catalog }

// Name returns the store name of projection p, e.g. "run1_SxF".
func (c *Cache) Name(p Projection) string {
	return c.id + "_" + p.Suffix()
}

// Projection returns projection p, rebuilding it when absent or force is set.
func (c *Cache) Projection(p Projection, force bool) (*matrix.Matrix, error) {
	var build func() (*matrix.Matrix, error)
	switch p {
	case ActorContent:
		build = c.buildActorContent
	case ActorGroup:
		build = c.buildActorGroup
	case ActorTerm:
		build = c.buildActorTerm
	case ContentTerm:
		build = c.buildContentTerm
	case ContentGroup:
		build = c.buildContentGroup
	default:
		return nil, fmt.Errorf("projection %d: %w", int(p), errdefs.ErrInvalidArgument)
	}

	name := c.Name(p)
	return store.GetOrBuild(c.store, name, force, func() (*matrix.Matrix, error) {
		start := time.Now()
		m, err := build()
		if err != nil {
			return nil, err
		}
		elapsed := time.Since(start)
		metrics.RecordProjectionBuild(p.Suffix(), elapsed)
		c.logger.Debug().
			Str("matrix", name).
			Int("rows", m.Rows()).
			Int("cols", m.Cols()).
			Dur("duration", elapsed).
			Msg("projection built")
		return m, nil
	})
}

// ActorContent returns the actor×content rating matrix.
func (c *Cache) ActorContent(force bool) (*matrix.Matrix, error) {
	return c.Projection(ActorContent, force)
}

// ActorGroup returns the actor×group membership matrix.
func (c *Cache) ActorGroup(force bool) (*matrix.Matrix, error) {
	return c.Projection(ActorGroup, force)
}

// ActorTerm returns the actor×term frequency matrix.
func (c *Cache) ActorTerm(force bool) (*matrix.Matrix, error) {
	return c.Projection(ActorTerm, force)
}

// ContentTerm returns the content×term frequency matrix.
func (c *Cache) ContentTerm(force bool) (*matrix.Matrix, error) {
	return c.Projection(ContentTerm, force)
}

// ContentGroup returns the content×group score matrix.
func (c *Cache) ContentGroup(force bool) (*matrix.Matrix, error) {
	return c.Projection(ContentGroup, force)
}

// Put stores m under its own name, replacing any matrix of the same name.
func (c *Cache) Put(m *matrix.Matrix) {
	c.store.Put(m.Name(), m)
}

// Matrix returns the matrix stored under name.
func (c *Cache) Matrix(name string) (*matrix.Matrix, error) {
	return store.Lookup[*matrix.Matrix](c.store, name)
}

// Contains reports whether a value is stored under name.
func (c *Cache) Contains(name string) bool {
	return c.store.Contains(name)
}

// Remove deletes the matrix stored under name.
func (c *Cache) Remove(name string) error {
	return c.store.Remove(name)
}
