// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package experiment

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/forumrec/internal/errdefs"
)

// Architecture selects the matrix neighbors are computed from.
type Architecture int

const (
	// ArchSxF computes similarity over actor×group memberships.
	ArchSxF Architecture = iota

	// ArchSxT computes similarity over actor×term frequencies.
	ArchSxT

	// ArchSxFSimMod is ArchSxF with similarity penalized below Config.Penalize
	// co-rated columns.
	ArchSxFSimMod

	// ArchSxTSimMod is ArchSxT with penalized similarity.
	ArchSxTSimMod

	// ArchSxFPCA computes similarity over the PCA-compressed memberships.
	ArchSxFPCA

	// ArchSxTPCA computes similarity over the PCA-compressed term frequencies.
	ArchSxTPCA
)

var architectureNames = [...]string{"SxF", "SxT", "SxF_Sim_Mod", "SxT_Sim_Mod", "SxF_PCA", "SxT_PCA"}

// Architectures lists every architecture in declaration order.
var Architectures = []Architecture{ArchSxF, ArchSxT, ArchSxFSimMod, ArchSxTSimMod, ArchSxFPCA, ArchSxTPCA}

// String implements fmt.Stringer.
func (a Architecture) String() string {
	if a < 0 || int(a) >= len(architectureNames) {
		return fmt.Sprintf("Architecture(%d)", int(a))
	}
	return architectureNames[a]
}

// ParseArchitecture parses a name such as "SxT_PCA".
func ParseArchitecture(s string) (Architecture, error) {
	for i, name := range architectureNames {
		if s == name {
			return Architecture(i), nil
		}
	}
	return 0, fmt.Errorf("architecture %q: %w", s, errdefs.ErrInvalidArgument)
}

// usesTerms reports whether similarity is computed from the actor×term matrix.
// Those similarities do not depend on the held-out membership.
func (a Architecture) usesTerms() bool {
	return a == ArchSxT || a == ArchSxTSimMod || a == ArchSxTPCA
}

func (a Architecture) usesPCA() bool {
	return a == ArchSxFPCA || a == ArchSxTPCA
}

func (a Architecture) penalized() bool {
	return a == ArchSxFSimMod || a == ArchSxTSimMod
}

// Outcome is the result of holding out one membership.
type Outcome struct {
	Actor string `json:"actor"`
	Group string `json:"group"`

	// Actual is the membership score that was held out.
	Actual float64 `json:"actual"`

	// Predicted is the predicted score, or 0 when the group was not predicted.
	Predicted float64 `json:"predicted"`

	// Rank is the 1-based position of the group among the actor's
	// predictions, or -1 when it was not predicted.
	Rank int `json:"rank"`

	Error    float64 `json:"error"`
	AbsError float64 `json:"abs_error"`
}

// Recommended reports whether the held-out group was predicted.
func (o Outcome) Recommended() bool {
	return o.Rank > 0
}

// Result summarizes one architecture, neighbor count and formula.
type Result struct {
	Architecture string `json:"architecture"`
	Neighbors    int    `json:"neighbors"`
	Formula      string `json:"formula"`

	// Normalization names the method memberships were populated with during
	// a normalization sweep. It is empty when the current memberships were
	// evaluated.
	Normalization string `json:"normalization,omitempty"`

	// RankMatrix names the stored actor×group matrix holding the rank of
	// every held-out membership, -1 where the group was not predicted and 0
	// for cells that were not held out.
	RankMatrix string `json:"rank_matrix"`

	Outcomes []Outcome `json:"outcomes"`

	// Count is the number of held-out memberships.
	Count       int     `json:"count"`
	SumAbsError float64 `json:"sum_abs_error"`
	MAE         float64 `json:"mae"`

	// AdjustedCount and AdjustedMAE cover only actors with at least
	// Config.MinGroups memberships.
	AdjustedCount int     `json:"adjusted_count"`
	AdjustedMAE   float64 `json:"adjusted_mae"`

	Duration time.Duration `json:"duration"`
}

// Recommended returns how many held-out groups were predicted.
func (r *Result) Recommended() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Recommended() {
			n++
		}
	}
	return n
}

// Report holds the results of one experiment run.
type Report struct {
	RunID     string    `json:"run_id"`
	Results   []Result  `json:"results"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Duration returns the duration of the run.
func (r *Report) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

// Best returns the result with the lowest MAE, or false when there is none.
func (r *Report) Best() (Result, bool) {
	best := -1
	lowest := math.Inf(1)
	for i := range r.Results {
		if r.Results[i].Count > 0 && r.Results[i].MAE < lowest {
			best, lowest = i, r.Results[i].MAE
		}
	}
	if best < 0 {
		return Result{}, false
	}
	return r.Results[best], true
}
