// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package recommend

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/forumrec/internal/catalog"
	"github.com/tomtom215/forumrec/internal/errdefs"
	"github.com/tomtom215/forumrec/internal/matrix"
	"github.com/tomtom215/forumrec/internal/matrixcache"
	"github.com/tomtom215/forumrec/internal/metrics"
)

// varianceEpsilon is the variance below which a row is treated as constant.
const varianceEpsilon = 1e-12

// RangeMembership is the strategy for real-valued membership scores.
//
// For a target actor u and group g:
//
//	predict(u, g) = avg(u) + Σ sim(u, v)·(r(v, g) − avg(v)) / Σ sim(u, v)
//
// where both sums run over the neighbors v of u with r(v, g) ≠ 0.
type RangeMembership struct {
	base
}

// NewRangeMembership creates a range strategy over the matrices of cache.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRangeMembership(cache *matrixcache.Cache, cfg Config, logger zerolog.Logger) *RangeMembership {
	return &RangeMembership{base: newBase(KindRange, cache, cfg, logger)}
}

// PopulateGroupMembership infers actor×group scores as actor×content ×
// content×group, merges them over the loaded memberships, normalizes the
// merged matrix with method and registers every non-zero score as a
// membership.
func (r *RangeMembership) PopulateGroupMembership(method NormalizationMethod) error {
	if method < NormNone || method > NormMaxNum {
		return fmt.Errorf("normalization %d: %w", int(method), errdefs.ErrInvalidArgument)
	}
	return r.populate(func(m *matrix.Matrix) (*matrix.Matrix, error) {
		return normalize(m, method)
	})
}

// normalize scales m with method under its own name.
func normalize(m *matrix.Matrix, method NormalizationMethod) (*matrix.Matrix, error) {
	name := m.Name()
	switch method {
	case NormRow:
		return m.NormalizeByRows(m.TotalsByRow(name+"_RowTotals"), name)
	case NormCol:
		return m.NormalizeByColumns(m.TotalsByColumn(name+"_ColumnTotals"), name)
	case NormMaxNum:
		return m.NormalizeByNumber(m.MaxNumber(), name), nil
	default:
		return m, nil
	}
}

// Similarity stores the Pearson correlation of every pair of rows of
// matrixName, computed over the columns both rows rate. Pairs whose co-rated
// values are constant in either row score 0. Correlations are multiplied by
// min(n, penalize)/penalize where n is the co-rated column count.
//
// supportingName names the row-averages matrix. It is read only when the
// strategy centers on stored averages.
func (r *RangeMembership) Similarity(ctx context.Context, matrixName, resultName, supportingName string, penalize int) error {
	if penalize < 1 {
		return fmt.Errorf("penalize must be >= 1, got %d: %w", penalize, errdefs.ErrInvalidArgument)
	}
	m, err := r.matrix(matrixName)
	if err != nil {
		return err
	}

	var averages *matrix.Matrix
	if r.cfg.Centering == CenterAverage {
		if averages, err = r.matrix(supportingName); err != nil {
			return err
		}
		if averages.Rows() != m.Rows() || averages.Cols() < 1 {
			return fmt.Errorf("averages %q are %dx%d for %d actors: %w",
				supportingName, averages.Rows(), averages.Cols(), m.Rows(), errdefs.ErrDimensionMismatch)
		}
	}

	rows := m.Raw()
	_, err = r.pairwise(ctx, m, resultName, func(i, j int) float64 {
		xs, ys := coRated(rows[i], rows[j])
		if len(xs) == 0 {
			return 0
		}
		var mx, my float64
		if averages != nil {
			mx, my = averages.At(i, 0), averages.At(j, 0)
		} else {
			mx, my = stat.Mean(xs, nil), stat.Mean(ys, nil)
		}
		corr := pearson(xs, ys, mx, my)
		return corr * math.Min(float64(len(xs)), float64(penalize)) / float64(penalize)
	})
	return err
}

// coRated returns the values of x and y at the columns where both are non-zero.
func coRated(x, y []float64) (xs, ys []float64) {
	for n := range x {
		if x[n] != 0 && y[n] != 0 {
			xs = append(xs, x[n])
			ys = append(ys, y[n])
		}
	}
	return xs, ys
}

// pearson returns the correlation of xs and ys centered on mx and my, or 0
// when either side has no variance.
func pearson(xs, ys []float64, mx, my float64) float64 {
	var cov, vx, vy float64
	for n := range xs {
		dx, dy := xs[n]-mx, ys[n]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx < varianceEpsilon || vy < varianceEpsilon {
		return 0
	}
	return cov / (math.Sqrt(vx) * math.Sqrt(vy))
}

// Predict scores group for actor with the Typical formula. supportingName
// names the row-averages matrix of ratingsName.
func (r *RangeMembership) Predict(actor, group int, formula Formula, ratingsName, supportingName string) (float64, error) {
	if err := checkRangeFormula(formula); err != nil {
		return 0, err
	}
	if group < 0 {
		return 0, fmt.Errorf("group %d: %w", group, errdefs.ErrNotFound)
	}
	score, _, err := r.scorer(actor, group, ratingsName, supportingName)
	if err != nil {
		return 0, err
	}
	metrics.RecordPredictions(formula.String(), 1)
	return score(group), nil
}

// PredictAll scores every group actor has not rated, best first.
func (r *RangeMembership) PredictAll(actor int, formula Formula, ratingsName, supportingName string) ([]Prediction, error) {
	if err := checkRangeFormula(formula); err != nil {
		return nil, err
	}
	score, ratings, err := r.scorer(actor, -1, ratingsName, supportingName)
	if err != nil {
		return nil, err
	}
	preds := predictUnrated(ratings, actor, score)
	metrics.RecordPredictions(formula.String(), len(preds))
	return preds, nil
}

// Recommend records the topN best positive predictions for actor.
func (r *RangeMembership) Recommend(actor int, formula Formula, ratingsName, supportingName string, topN int) ([]catalog.Recommendation, error) {
	if err := checkTopN(topN); err != nil {
		return nil, err
	}
	preds, err := r.PredictAll(actor, formula, ratingsName, supportingName)
	if err != nil {
		return nil, err
	}
	return r.RecordRecommendations(actor, preds, topN)
}

// scorer validates the inputs of a prediction and returns the Typical
// formula bound to them, with the ratings matrix it reads.
func (r *RangeMembership) scorer(actor, group int, ratingsName, averagesName string) (func(group int) float64, *matrix.Matrix, error) {
	neighbors, err := r.neighborsOf(actor)
	if err != nil {
		return nil, nil, err
	}
	ratings, err := r.ratingsFor(ratingsName, actor, group, neighbors)
	if err != nil {
		return nil, nil, err
	}
	averages, err := r.matrix(averagesName)
	if err != nil {
		return nil, nil, err
	}
	if averages.Rows() != ratings.Rows() || averages.Cols() < 1 {
		return nil, nil, fmt.Errorf("averages %q are %dx%d for %d actors: %w",
			averagesName, averages.Rows(), averages.Cols(), ratings.Rows(), errdefs.ErrDimensionMismatch)
	}

	return func(g int) float64 {
		var weighted, simSum float64
		for _, n := range neighbors {
			rating := ratings.At(n.Index, g)
			if rating == 0 {
				continue
			}
			weighted += n.Score * (rating - averages.At(n.Index, 0))
			simSum += n.Score
		}
		input := 0.0
		if simSum != 0 {
			input = weighted / simSum
		}
		return averages.At(actor, 0) + input
	}, ratings, nil
}

func checkRangeFormula(f Formula) error {
	if f != Typical {
		return fmt.Errorf("formula %s is not supported by range memberships: %w", f, errdefs.ErrInvalidArgument)
	}
	return nil
}
