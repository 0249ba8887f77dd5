// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package recommend

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/forumrec/internal/catalog"
	"github.com/tomtom215/forumrec/internal/errdefs"
	"github.com/tomtom215/forumrec/internal/matrix"
	"github.com/tomtom215/forumrec/internal/matrixcache"
	"github.com/tomtom215/forumrec/internal/store"
)

const eps = 1e-9

type wordsExtractor struct{}

func (wordsExtractor) Extract(text string) map[string]int {
	out := make(map[string]int)
	for _, w := range strings.Fields(text) {
		out[w]++
	}
	return out
}

func nopLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// newTestCache returns a cache over an empty catalog.
func newTestCache(t *testing.T) *matrixcache.Cache {
	t.Helper()
	cat := catalog.New(catalog.WithExtractor(wordsExtractor{}))
	return matrixcache.New("run", store.New(nopLogger()), cat, nopLogger())
}

// putMatrix stores data under name with rows a0.. and columns g0...
func putMatrix(t *testing.T, c *matrixcache.Cache, name string, data [][]float64) *matrix.Matrix {
	t.Helper()
	rows := make([]string, len(data))
	for i := range rows {
		rows[i] = fmt.Sprintf("a%d", i)
	}
	cols := make([]string, 0)
	if len(data) > 0 {
		for j := range data[0] {
			cols = append(cols, fmt.Sprintf("g%d", j))
		}
	}
	m, err := matrix.New(name, data, rows, cols)
	if err != nil {
		t.Fatalf("matrix.New(%s) error = %v", name, err)
	}
	c.Put(m)
	return m
}

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestNeighbors(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	putMatrix(t, c, "sim", [][]float64{
		{1, 0.5, 0.9, -0.2},
		{0.5, 1, 0.5, 0.3},
		{0.9, 0.5, 1, 0},
		{-0.2, 0.3, 0, 1},
	})
	s := NewRangeMembership(c, DefaultConfig(), nopLogger())

	got, err := s.Neighbors("sim", 2)
	if err != nil {
		t.Fatalf("Neighbors() error = %v", err)
	}

	want := Neighbors{
		0: {{Index: 2, Score: 0.9}, {Index: 1, Score: 0.5}},
		1: {{Index: 0, Score: 0.5}, {Index: 2, Score: 0.5}},
		2: {{Index: 0, Score: 0.9}, {Index: 1, Score: 0.5}},
		3: {{Index: 1, Score: 0.3}},
	}
	if len(got) != len(want) {
		t.Fatalf("Neighbors() has %d actors, want %d", len(got), len(want))
	}
	for actor, list := range want {
		if len(got[actor]) != len(list) {
			t.Errorf("Neighbors()[%d] = %v, want %v", actor, got[actor], list)
			continue
		}
		for i := range list {
			if got[actor][i] != list[i] {
				t.Errorf("Neighbors()[%d][%d] = %v, want %v", actor, i, got[actor][i], list[i])
			}
		}
	}
	if s.State() != StateNeighborsReady {
		t.Errorf("State() = %v, want %v", s.State(), StateNeighborsReady)
	}

	// The returned map is a copy.
	got[0][0].Score = 42
	again, _ := s.neighborsOf(0)
	if again[0].Score != 0.9 {
		t.Error("mutating the returned neighbors changed the strategy's set")
	}
}

func TestNeighbors_Properties(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)

	const n = 7
	data := make([][]float64, n)
	for i := range data {
		data[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		data[i][i] = 1
		for j := i + 1; j < n; j++ {
			v := math.Sin(float64(i*n + j)) // deterministic mix of signs
			data[i][j], data[j][i] = v, v
		}
	}
	putMatrix(t, c, "sim", data)
	s := NewBinaryMembership(c, DefaultConfig(), nopLogger())

	for _, k := range []int{1, 2, 3, 10} {
		got, err := s.Neighbors("sim", k)
		if err != nil {
			t.Fatalf("Neighbors(k=%d) error = %v", k, err)
		}
		for actor, list := range got {
			if len(list) > k {
				t.Errorf("k=%d: actor %d has %d neighbors", k, actor, len(list))
			}
			for i, nb := range list {
				if nb.Score <= 0 {
					t.Errorf("k=%d: actor %d neighbor %d score = %v, want > 0", k, actor, nb.Index, nb.Score)
				}
				if nb.Index == actor {
					t.Errorf("k=%d: actor %d is its own neighbor", k, actor)
				}
				if i > 0 && list[i-1].Score < nb.Score {
					t.Errorf("k=%d: actor %d scores increase at %d", k, actor, i)
				}
			}
		}
	}
}

func TestNeighbors_Errors(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	putMatrix(t, c, "sim", [][]float64{{1, 0}, {0, 1}})
	putMatrix(t, c, "wide", [][]float64{{1, 0, 0}, {0, 1, 0}})
	s := NewRangeMembership(c, DefaultConfig(), nopLogger())

	tests := []struct {
		name   string
		matrix string
		k      int
		want   error
	}{
		{"zero k", "sim", 0, errdefs.ErrInvalidArgument},
		{"negative k", "sim", -3, errdefs.ErrInvalidArgument},
		{"missing matrix", "nope", 2, errdefs.ErrNotFound},
		{"not square", "wide", 2, errdefs.ErrDimensionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Neighbors(tt.matrix, tt.k); !errors.Is(err, tt.want) {
				t.Errorf("Neighbors(%q, %d) error = %v, want %v", tt.matrix, tt.k, err, tt.want)
			}
		})
	}
	if s.State() != StateUninitialized {
		t.Errorf("State() after failures = %v, want %v", s.State(), StateUninitialized)
	}
}

func TestAverageAndTotalRatings(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	putMatrix(t, c, "ratings", [][]float64{{4, 0, 2}, {0, 0, 0}})
	s := NewRangeMembership(c, DefaultConfig(), nopLogger())

	if err := s.AverageRating("ratings", "avg"); err != nil {
		t.Fatalf("AverageRating() error = %v", err)
	}
	if err := s.TotalRatings("ratings", "tot"); err != nil {
		t.Fatalf("TotalRatings() error = %v", err)
	}

	avg, _ := c.Matrix("avg")
	tot, _ := c.Matrix("tot")
	if avg.At(0, 0) != 3 || avg.At(1, 0) != 0 {
		t.Errorf("averages = %v, %v; want 3, 0", avg.At(0, 0), avg.At(1, 0))
	}
	if tot.At(0, 0) != 6 || tot.At(1, 0) != 0 {
		t.Errorf("totals = %v, %v; want 6, 0", tot.At(0, 0), tot.At(1, 0))
	}

	if err := s.AverageRating("missing", "x"); !errors.Is(err, errdefs.ErrNotFound) {
		t.Errorf("AverageRating(missing) error = %v, want ErrNotFound", err)
	}
	if err := s.TotalRatings("missing", "x"); !errors.Is(err, errdefs.ErrNotFound) {
		t.Errorf("TotalRatings(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRecordRecommendations(t *testing.T) {
	t.Parallel()
	c := newForumCache(t)
	s := NewRangeMembership(c, DefaultConfig(), nopLogger())

	if _, err := s.RecordRecommendations(0, nil, 0); !errors.Is(err, errdefs.ErrInvalidArgument) {
		t.Errorf("RecordRecommendations(topN=0) error = %v, want ErrInvalidArgument", err)
	}

	preds := []Prediction{{Group: 1, Score: 0.7}, {Group: 0, Score: 0}}
	recs, err := s.RecordRecommendations(1, preds, 5)
	if err != nil {
		t.Fatalf("RecordRecommendations() error = %v", err)
	}
	if len(recs) != 1 || recs[0].Group != 1 || recs[0].Value != 0.7 {
		t.Errorf("RecordRecommendations() = %+v, want only the positive prediction", recs)
	}

	recs, err = s.RecordRecommendations(0, []Prediction{{Group: 1, Score: 2}, {Group: 0, Score: 1}}, 1)
	if err != nil || len(recs) != 1 || recs[0].Group != 1 {
		t.Errorf("RecordRecommendations(topN=1) = %+v, %v", recs, err)
	}

	stored, _ := c.Catalog().RecommendationsForActor(1)
	if len(stored) != 1 {
		t.Errorf("RecommendationsForActor(s2) = %+v, want 1", stored)
	}
}
