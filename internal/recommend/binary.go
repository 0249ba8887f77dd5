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

	"github.com/tomtom215/forumrec/internal/catalog"
	"github.com/tomtom215/forumrec/internal/errdefs"
	"github.com/tomtom215/forumrec/internal/matrix"
	"github.com/tomtom215/forumrec/internal/matrixcache"
	"github.com/tomtom215/forumrec/internal/metrics"
)

// BinaryMembership is the strategy for 0/1 membership flags.
//
// Over the neighbors v of actor u with flags f(v, g) and similarities s(v):
//
//	BinI   = Σ f / |N|
//	BinII  = Σ f·s / Σ s
//	BinIII = Σ f·s / |N|
//	BinIV  = Σ f·s / |{v : f(v, g) ≠ 0}|
//
// Each formula is 0 when its denominator is 0.
type BinaryMembership struct {
	base
}

// NewBinaryMembership creates a binary strategy over the matrices of cache.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBinaryMembership(cache *matrixcache.Cache, cfg Config, logger zerolog.Logger) *BinaryMembership {
	return &BinaryMembership{base: newBase(KindBinary, cache, cfg, logger)}
}

// PopulateGroupMembership infers actor×group scores as actor×content ×
// content×group, merges them over the loaded memberships and converts the
// merged matrix to flags with the configured threshold, so every registered
// membership is 0 or 1. Only NormNone is accepted.
func (b *BinaryMembership) PopulateGroupMembership(method NormalizationMethod) error {
	if method != NormNone {
		return fmt.Errorf("normalization %s is not supported by binary memberships: %w", method, errdefs.ErrInvalidArgument)
	}
	return b.populate(func(m *matrix.Matrix) (*matrix.Matrix, error) {
		return m.ConvertToBinary(b.cfg.BinaryThreshold, m.Name()), nil
	})
}

// Similarity stores the overlap |I∩J| / sqrt(|I|·|J|) of every pair of rows of
// matrixName, where I and J are the non-zero columns. supportingName names
// the row-totals matrix; a zero total yields similarity 0. penalize is
// ignored.
func (b *BinaryMembership) Similarity(ctx context.Context, matrixName, resultName, supportingName string, _ int) error {
	m, err := b.matrix(matrixName)
	if err != nil {
		return err
	}
	totals, err := b.matrix(supportingName)
	if err != nil {
		return err
	}
	if totals.Rows() != m.Rows() || totals.Cols() < 1 {
		return fmt.Errorf("totals %q are %dx%d for %d actors: %w",
			supportingName, totals.Rows(), totals.Cols(), m.Rows(), errdefs.ErrDimensionMismatch)
	}

	rows := m.Raw()
	_, err = b.pairwise(ctx, m, resultName, func(i, j int) float64 {
		ti, tj := totals.At(i, 0), totals.At(j, 0)
		if ti == 0 || tj == 0 {
			return 0
		}
		shared := 0
		for n := range rows[i] {
			if rows[i][n] != 0 && rows[j][n] != 0 {
				shared++
			}
		}
		return float64(shared) / math.Sqrt(ti*tj)
	})
	return err
}

// Predict scores group for actor with one of the binary formulas.
// supportingName is not used.
func (b *BinaryMembership) Predict(actor, group int, formula Formula, ratingsName, _ string) (float64, error) {
	if err := checkBinaryFormula(formula); err != nil {
		return 0, err
	}
	if group < 0 {
		return 0, fmt.Errorf("group %d: %w", group, errdefs.ErrNotFound)
	}
	score, _, err := b.scorer(actor, group, formula, ratingsName)
	if err != nil {
		return 0, err
	}
	metrics.RecordPredictions(formula.String(), 1)
	return score(group), nil
}

// PredictAll scores every group actor is not a member of, best first.
func (b *BinaryMembership) PredictAll(actor int, formula Formula, ratingsName, _ string) ([]Prediction, error) {
	if err := checkBinaryFormula(formula); err != nil {
		return nil, err
	}
	score, ratings, err := b.scorer(actor, -1, formula, ratingsName)
	if err != nil {
		return nil, err
	}
	preds := predictUnrated(ratings, actor, score)
	metrics.RecordPredictions(formula.String(), len(preds))
	return preds, nil
}

// Recommend records the topN best positive predictions for actor.
func (b *BinaryMembership) Recommend(actor int, formula Formula, ratingsName, supportingName string, topN int) ([]catalog.Recommendation, error) {
	if err := checkTopN(topN); err != nil {
		return nil, err
	}
	preds, err := b.PredictAll(actor, formula, ratingsName, supportingName)
	if err != nil {
		return nil, err
	}
	return b.RecordRecommendations(actor, preds, topN)
}

func (b *BinaryMembership) scorer(actor, group int, formula Formula, ratingsName string) (func(group int) float64, *matrix.Matrix, error) {
	neighbors, err := b.neighborsOf(actor)
	if err != nil {
		return nil, nil, err
	}
	ratings, err := b.ratingsFor(ratingsName, actor, group, neighbors)
	if err != nil {
		return nil, nil, err
	}

	return func(g int) float64 {
		var flags, weighted, simSum float64
		members := 0
		for _, n := range neighbors {
			flag := ratings.At(n.Index, g)
			flags += flag
			weighted += flag * n.Score
			simSum += n.Score
			if flag != 0 {
				members++
			}
		}

		var num, den float64
		switch formula {
		case BinI:
			num, den = flags, float64(len(neighbors))
		case BinII:
			num, den = weighted, simSum
		case BinIII:
			num, den = weighted, float64(len(neighbors))
		case BinIV:
			num, den = weighted, float64(members)
		}
		if den == 0 {
			return 0
		}
		return num / den
	}, ratings, nil
}

func checkBinaryFormula(f Formula) error {
	if !f.IsBinary() {
		return fmt.Errorf("formula %s is not supported by binary memberships: %w", f, errdefs.ErrInvalidArgument)
	}
	return nil
}
