// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/forumrec/internal/catalog"
	"github.com/tomtom215/forumrec/internal/errdefs"
	"github.com/tomtom215/forumrec/internal/matrix"
	"github.com/tomtom215/forumrec/internal/matrixcache"
	"github.com/tomtom215/forumrec/internal/metrics"
)

// InferredSuffix is appended to the cache id to name the inferred
// actor×group matrix stored by PopulateGroupMembership.
const InferredSuffix = "_SxF_Inferred"

// base holds what both strategies share.
type base struct {
	kind   Kind
	cache  *matrixcache.Cache
	cfg    Config
	logger zerolog.Logger

	mu        sync.RWMutex
	state     State
	neighbors Neighbors
	loaded    *matrix.Matrix
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newBase(kind Kind, cache *matrixcache.Cache, cfg Config, logger zerolog.Logger) base {
	return base{
		kind:   kind,
		cache:  cache,
		cfg:    cfg.withDefaults(),
		logger: logger.With().Str("strategy", kind.String()).Logger(),
	}
}

// Kind returns the membership interpretation of the strategy.
func (b *base) Kind() Kind {
	return b.kind
}

// State returns the most recently completed pipeline step.
func (b *base) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *base) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

// InferredName returns the store name of the inferred actor×group matrix.
func (b *base) InferredName() string {
	return b.cache.ID() + InferredSuffix
}

// matrix looks up a stored matrix.
func (b *base) matrix(name string) (*matrix.Matrix, error) {
	m, err := b.cache.Matrix(name)
	if err != nil {
		return nil, fmt.Errorf("matrix %q: %w", name, err)
	}
	return m, nil
}

// AverageRating stores the non-zero row averages of matrixName under resultName.
func (b *base) AverageRating(matrixName, resultName string) error {
	m, err := b.matrix(matrixName)
	if err != nil {
		return err
	}
	b.cache.Put(m.AveragesByRow(resultName))
	return nil
}

// TotalRatings stores the row totals of matrixName under resultName.
func (b *base) TotalRatings(matrixName, resultName string) error {
	m, err := b.matrix(matrixName)
	if err != nil {
		return err
	}
	b.cache.Put(m.TotalsByRow(resultName))
	return nil
}

// populate rebuilds the actor×group memberships. The inferred product
// actor×content × content×group overrides the loaded membership of every
// cell where it is non-zero. transform is then applied to the whole merged
// matrix, so loaded and inferred scores share one scale. Every cell is
// written back to the catalog and the actor×group projection is refreshed.
//
// The loaded memberships are captured on the first call, so repeated calls
// with different transforms start from the same scores.
func (b *base) populate(transform func(*matrix.Matrix) (*matrix.Matrix, error)) error {
	sxn, err := b.cache.ActorContent(true)
	if err != nil {
		return err
	}
	nxf, err := b.cache.ContentGroup(true)
	if err != nil {
		return err
	}
	inferred, err := sxn.Mul(nxf, b.InferredName())
	if err != nil {
		return err
	}

	loaded, err := b.loadedMemberships()
	if err != nil {
		return err
	}
	if loaded.Rows() != inferred.Rows() || loaded.Cols() != inferred.Cols() {
		return fmt.Errorf("memberships are %dx%d, inferred %dx%d: %w",
			loaded.Rows(), loaded.Cols(), inferred.Rows(), inferred.Cols(), errdefs.ErrDimensionMismatch)
	}

	merged := loaded.Clone(inferred.Name())
	cells := merged.Raw()
	for i := range cells {
		for j := range cells[i] {
			if v := inferred.At(i, j); v != 0 {
				cells[i][j] = v
			}
		}
	}

	result, err := transform(merged)
	if err != nil {
		return err
	}
	return b.registerMembership(result, loaded)
}

// loadedMemberships returns the actor×group scores present in the catalog
// before the first population.
func (b *base) loadedMemberships() (*matrix.Matrix, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loaded != nil {
		return b.loaded, nil
	}
	sxf, err := b.cache.ActorGroup(true)
	if err != nil {
		return nil, err
	}
	b.loaded = sxf.Clone(b.cache.ID() + "_SxF_Loaded")
	return b.loaded, nil
}

// registerMembership stores memberships and writes every cell that is
// non-zero, or that was a loaded membership, to the catalog. The
// actor×group projection is then rebuilt from the catalog.
func (b *base) registerMembership(memberships, loaded *matrix.Matrix) error {
	b.cache.Put(memberships)

	cat := b.cache.Catalog()
	links := 0
	for i := 0; i < memberships.Rows(); i++ {
		for j := 0; j < memberships.Cols(); j++ {
			v := memberships.At(i, j)
			if v == 0 && loaded.At(i, j) == 0 {
				continue
			}
			if err := cat.AddActorToGroup(memberships.ColLabel(j), memberships.RowLabel(i), v); err != nil {
				return err
			}
			if v != 0 {
				links++
			}
		}
	}

	if _, err := b.cache.ActorGroup(true); err != nil {
		return err
	}
	b.setState(StatePopulated)

	b.logger.Info().
		Str("matrix", memberships.Name()).
		Int("memberships", links).
		Msg("group memberships populated")
	return nil
}

// pairwise builds a symmetric actor×actor matrix named resultName from the
// rows of m. pair is called once for every i < j, rows are spread over the
// configured number of workers, and the diagonal is 1.
func (b *base) pairwise(ctx context.Context, m *matrix.Matrix, resultName string, pair func(i, j int) float64) (*matrix.Matrix, error) {
	start := time.Now()
	n := m.Rows()
	labels := m.RowLabels()
	result := matrix.Zeros(resultName, labels, labels)
	sims := result.Raw()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for j := i + 1; j < n; j++ {
				sims[i][j] = pair(i, j)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		sims[i][i] = 1
		for j := i + 1; j < n; j++ {
			sims[j][i] = sims[i][j]
		}
	}

	elapsed := time.Since(start)
	metrics.RecordSimilarity(b.kind.String(), n, elapsed)
	b.logger.Debug().
		Str("matrix", m.Name()).
		Str("result", resultName).
		Int("actors", n).
		Dur("duration", elapsed).
		Msg("similarity computed")

	b.cache.Put(result)
	b.setState(StateSimilaritiesReady)
	return result, nil
}

// Neighbors selects, for every actor, the other actors with strictly positive
// similarity in similarityName, most similar first and at most k of them.
// Ties keep ascending actor order. The result becomes the neighbor set used
// by predictions.
func (b *base) Neighbors(similarityName string, k int) (Neighbors, error) {
	if k < 1 {
		return nil, fmt.Errorf("neighbor count must be >= 1, got %d: %w", k, errdefs.ErrInvalidArgument)
	}
	sim, err := b.matrix(similarityName)
	if err != nil {
		return nil, err
	}
	if sim.Rows() != sim.Cols() {
		return nil, fmt.Errorf("similarity matrix %q is %dx%d: %w",
			similarityName, sim.Rows(), sim.Cols(), errdefs.ErrDimensionMismatch)
	}

	neighbors := make(Neighbors, sim.Rows())
	for i := 0; i < sim.Rows(); i++ {
		list := make([]Neighbor, 0)
		for j := 0; j < sim.Cols(); j++ {
			if i != j && sim.At(i, j) > 0 {
				list = append(list, Neighbor{Index: j, Score: sim.At(i, j)})
			}
		}
		sort.SliceStable(list, func(a, c int) bool {
			return list[a].Score > list[c].Score
		})
		if len(list) > k {
			list = list[:k]
		}
		neighbors[i] = list
	}

	b.mu.Lock()
	b.neighbors = neighbors
	b.state = StateNeighborsReady
	b.mu.Unlock()

	return neighbors.clone(), nil
}

// neighborsOf returns the current neighbors of actor.
func (b *base) neighborsOf(actor int) ([]Neighbor, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.neighbors == nil {
		return nil, fmt.Errorf("neighbors have not been selected: %w", errdefs.ErrNotFound)
	}
	list, ok := b.neighbors[actor]
	if !ok {
		return nil, fmt.Errorf("neighbors of actor %d: %w", actor, errdefs.ErrNotFound)
	}
	return list, nil
}

// ratingsFor loads the ratings matrix and checks that actor and group (when
// group >= 0) address one of its cells and that every neighbor is a row.
func (b *base) ratingsFor(ratingsName string, actor, group int, neighbors []Neighbor) (*matrix.Matrix, error) {
	ratings, err := b.matrix(ratingsName)
	if err != nil {
		return nil, err
	}
	if actor < 0 || actor >= ratings.Rows() {
		return nil, fmt.Errorf("actor %d outside %q: %w", actor, ratingsName, errdefs.ErrNotFound)
	}
	if group >= ratings.Cols() {
		return nil, fmt.Errorf("group %d outside %q: %w", group, ratingsName, errdefs.ErrNotFound)
	}
	for _, n := range neighbors {
		if n.Index >= ratings.Rows() {
			return nil, fmt.Errorf("neighbor %d outside %q: %w", n.Index, ratingsName, errdefs.ErrDimensionMismatch)
		}
	}
	return ratings, nil
}

// predictUnrated scores every group with a zero rating for actor and sorts
// the result descending. Equal scores keep ascending group order.
func predictUnrated(ratings *matrix.Matrix, actor int, score func(group int) float64) []Prediction {
	preds := make([]Prediction, 0)
	for g := 0; g < ratings.Cols(); g++ {
		if ratings.At(actor, g) != 0 {
			continue
		}
		preds = append(preds, Prediction{Group: g, Score: score(g)})
	}
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Score > preds[j].Score
	})
	return preds
}

// RecordRecommendations adds the first topN positive predictions to the
// catalog as collaborative recommendations for actor. preds must be sorted
// best first.
func (b *base) RecordRecommendations(actor int, preds []Prediction, topN int) ([]catalog.Recommendation, error) {
	if err := checkTopN(topN); err != nil {
		return nil, err
	}
	cat := b.cache.Catalog()
	a, err := cat.ActorAt(actor)
	if err != nil {
		return nil, err
	}

	reason := b.kind.String() + "-membership neighbors"
	recs := make([]catalog.Recommendation, 0, topN)
	for _, p := range preds {
		if len(recs) == topN {
			break
		}
		if p.Score <= 0 {
			continue
		}
		g, err := cat.GroupAt(p.Group)
		if err != nil {
			return recs, err
		}
		rec, err := cat.AddRecommendation(uuid.NewString(), a.ID, g.ID, catalog.RecommenderCollaborative, reason, p.Score)
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}

	metrics.RecordRecommendations(len(recs))
	b.logger.Debug().
		Str("actor", a.ID).
		Int("recommendations", len(recs)).
		Msg("recommendations recorded")
	return recs, nil
}

func checkTopN(topN int) error {
	if topN < 1 {
		return fmt.Errorf("top_n must be >= 1, got %d: %w", topN, errdefs.ErrInvalidArgument)
	}
	return nil
}
