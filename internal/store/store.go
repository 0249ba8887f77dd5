// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

// Package store provides the keyed store that memoizes derived artifacts
// (matrices, averages, neighbor sets) for one experiment run.
//
// There is no process-wide instance: callers create one Store per run and pass
// it to every component constructor. The store is read-mostly with a single
// writer per entry; concurrent builders of the same name share one build.
package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/forumrec/internal/errdefs"
	"github.com/tomtom215/forumrec/internal/metrics"
)

// Store maps names to arbitrary values.
type Store struct {
	mu      sync.RWMutex
	entries map[string]any
	group   singleflight.Group
	stats   Stats
	logger  zerolog.Logger
}

// Stats tracks store usage.
type Stats struct {
	mu       sync.RWMutex
	Hits     int64
	Misses   int64
	Puts     int64
	Removals int64
	Builds   int64
}

// New creates an empty store.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(logger zerolog.Logger) *Store {
	return &Store{
		entries: make(map[string]any),
		logger:  logger,
	}
}

// Put stores value under name, replacing any previous entry.
func (s *Store) Put(name string, value any) {
	s.mu.Lock()
	s.entries[name] = value
	s.mu.Unlock()

	s.stats.mu.Lock()
	s.stats.Puts++
	s.stats.mu.Unlock()

	s.logger.Trace().Str("name", name).Msg("store put")
}

// Get returns the value stored under name or ErrNotFound.
func (s *Store) Get(name string) (any, error) {
	s.mu.RLock()
	v, ok := s.entries[name]
	s.mu.RUnlock()

	if !ok {
		s.recordMiss()
		return nil, fmt.Errorf("store entry %q: %w", name, errdefs.ErrNotFound)
	}
	s.recordHit()
	return v, nil
}

// Contains reports whether name is present. It does not touch the hit counters.
func (s *Store) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[name]
	return ok
}

// Remove deletes name. Removing an absent name returns ErrNotFound.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	_, ok := s.entries[name]
	delete(s.entries, name)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("store entry %q: %w", name, errdefs.ErrNotFound)
	}

	s.stats.mu.Lock()
	s.stats.Removals++
	s.stats.mu.Unlock()
	return nil
}

// Names returns every stored name in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	s.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats returns a snapshot of the usage counters.
func (s *Store) Stats() Stats {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()

	return Stats{
		Hits:     s.stats.Hits,
		Misses:   s.stats.Misses,
		Puts:     s.stats.Puts,
		Removals: s.stats.Removals,
		Builds:   s.stats.Builds,
	}
}

// HitRate returns the lookup hit rate as a percentage.
func (s *Store) HitRate() float64 {
	stats := s.Stats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

func (s *Store) recordHit() {
	s.stats.mu.Lock()
	s.stats.Hits++
	s.stats.mu.Unlock()
	metrics.RecordStoreLookup(true)
}

func (s *Store) recordMiss() {
	s.stats.mu.Lock()
	s.stats.Misses++
	s.stats.mu.Unlock()
	metrics.RecordStoreLookup(false)
}

func (s *Store) recordBuild() {
	s.stats.mu.Lock()
	s.stats.Builds++
	s.stats.mu.Unlock()
}

// Lookup returns the value under name as a T. A missing name yields
// ErrNotFound; a value of another type yields ErrInvalidArgument.
func Lookup[T any](s *Store, name string) (T, error) {
	var zero T
	v, err := s.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("store entry %q holds %T, want %T: %w", name, v, zero, errdefs.ErrInvalidArgument)
	}
	return typed, nil
}

// GetOrBuild returns the T stored under name, running build and storing its
// result when the name is absent or force is set. Concurrent calls for the
// same name share a single build.
func GetOrBuild[T any](s *Store, name string, force bool, build func() (T, error)) (T, error) {
	if !force {
		if v, err := Lookup[T](s, name); err == nil {
			return v, nil
		} else if !errdefs.IsNotFound(err) {
			return v, err
		}
	}

	v, err, shared := s.group.Do(name, func() (any, error) {
		built, err := build()
		if err != nil {
			return nil, err
		}
		s.Put(name, built)
		s.recordBuild()
		return built, nil
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("build %q: %w", name, err)
	}

	s.logger.Debug().Str("name", name).Bool("forced", force).Bool("shared", shared).Msg("store entry built")
	return v.(T), nil
}
