// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/forumrec/internal/catalog"
	"github.com/tomtom215/forumrec/internal/errdefs"
)

// Kind selects how group membership scores are interpreted.
type Kind int

const (
	// KindRange treats memberships as real-valued scores.
	KindRange Kind = iota
	// KindBinary treats memberships as 0/1 flags.
	KindBinary
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRange:
		return "range"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// ParseKind parses "range" or "binary".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "range":
		return KindRange, nil
	case "binary":
		return KindBinary, nil
	default:
		return 0, fmt.Errorf("strategy %q: %w", s, errdefs.ErrInvalidArgument)
	}
}

// NormalizationMethod controls how the inferred actor×group matrix is scaled
// before memberships are registered.
type NormalizationMethod int

const (
	// NormNone keeps the raw product.
	NormNone NormalizationMethod = iota
	// NormRow divides each cell by its row total: the share of the actor's
	// interest that falls in the group.
	NormRow
	// NormCol divides each cell by its column total: the share of the group
	// owned by the actor.
	NormCol
	// NormMaxNum divides every cell by the largest cell.
	NormMaxNum
)

var normalizationNames = [...]string{"none", "row", "column", "max_number"}

// String returns the configuration name of the method.
func (n NormalizationMethod) String() string {
	if n < 0 || int(n) >= len(normalizationNames) {
		return "unknown"
	}
	return normalizationNames[n]
}

// ParseNormalization parses one of "none", "row", "column" or "max_number".
func ParseNormalization(s string) (NormalizationMethod, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range normalizationNames {
		if s == name {
			return NormalizationMethod(i), nil
		}
	}
	return 0, fmt.Errorf("normalization %q: %w", s, errdefs.ErrInvalidArgument)
}

// Formula selects the prediction formula.
type Formula int

const (
	// Typical is the mean-centered weighted average used by range strategies.
	Typical Formula = iota
	// BinI is the mean membership flag over the neighbors.
	BinI
	// BinII is the similarity-weighted flag sum over the similarity sum.
	BinII
	// BinIII is the similarity-weighted flag sum over the neighbor count.
	BinIII
	// BinIV is the similarity-weighted flag sum over the neighbors in the group.
	BinIV
)

var formulaNames = [...]string{"typical", "bin_i", "bin_ii", "bin_iii", "bin_iv"}

// String returns the configuration name of the formula.
func (f Formula) String() string {
	if f < 0 || int(f) >= len(formulaNames) {
		return "unknown"
	}
	return formulaNames[f]
}

// IsBinary reports whether f is one of the binary formulas.
func (f Formula) IsBinary() bool {
	return f >= BinI && f <= BinIV
}

// ParseFormula parses one of "typical" or "bin_i" through "bin_iv".
func ParseFormula(s string) (Formula, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range formulaNames {
		if s == name {
			return Formula(i), nil
		}
	}
	return 0, fmt.Errorf("formula %q: %w", s, errdefs.ErrInvalidArgument)
}

// State is the progress of a strategy through its pipeline.
type State int

const (
	StateUninitialized State = iota
	StatePopulated
	StateSimilaritiesReady
	StateNeighborsReady
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StatePopulated:
		return "populated"
	case StateSimilaritiesReady:
		return "similarities_ready"
	case StateNeighborsReady:
		return "neighbors_ready"
	default:
		return "unknown"
	}
}

// Neighbor is a similar actor and its similarity score.
type Neighbor struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Neighbors maps an actor index to its neighbors, most similar first.
type Neighbors map[int][]Neighbor

// clone returns a deep copy of n.
func (n Neighbors) clone() Neighbors {
	out := make(Neighbors, len(n))
	for actor, list := range n {
		out[actor] = append([]Neighbor(nil), list...)
	}
	return out
}

// Prediction is a predicted score of a group for one actor.
type Prediction struct {
	Group int     `json:"group"`
	Score float64 `json:"score"`
}

// Strategy is a collaborative-filtering pipeline over the matrices of one run.
//
// Matrix arguments are names in the run's store. Actor and group arguments
// are dense catalog indices, which are also the row and column positions of
// the actor×group ratings matrix.
type Strategy interface {
	// Kind returns the membership interpretation of the strategy.
	Kind() Kind

	// State returns the most recently completed pipeline step.
	State() State

	// PopulateGroupMembership infers actor×group memberships from the
	// actor×content and content×group projections and registers them in the
	// catalog.
	PopulateGroupMembership(method NormalizationMethod) error

	// AverageRating stores the non-zero row averages of matrixName.
	AverageRating(matrixName, resultName string) error

	// TotalRatings stores the row totals of matrixName.
	TotalRatings(matrixName, resultName string) error

	// Similarity stores the actor×actor similarity of the rows of matrixName.
	Similarity(ctx context.Context, matrixName, resultName, supportingName string, penalize int) error

	// Neighbors selects up to k positively similar actors for every actor.
	Neighbors(similarityName string, k int) (Neighbors, error)

	// Predict scores one group for one actor.
	Predict(actor, group int, formula Formula, ratingsName, supportingName string) (float64, error)

	// PredictAll scores every group the actor has not rated, best first.
	PredictAll(actor int, formula Formula, ratingsName, supportingName string) ([]Prediction, error)

	// Recommend records the topN positive predictions as collaborative
	// recommendations in the catalog.
	Recommend(actor int, formula Formula, ratingsName, supportingName string, topN int) ([]catalog.Recommendation, error)

	// RecordRecommendations records the topN positive entries of preds, as
	// returned by PredictAll for actor, without predicting again.
	RecordRecommendations(actor int, preds []Prediction, topN int) ([]catalog.Recommendation, error)
}
