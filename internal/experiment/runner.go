// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

// Package experiment evaluates neighbor architectures with a leave-one-out
// test over actor-group memberships.
//
// For every membership (actor u, group g) with a non-zero score the runner
// zeroes the score, recomputes the supporting vector, computes similarities on
// the architecture's matrix, selects neighbors and predicts every group u is
// not a member of. The prediction for g is compared with the held-out score
// and the score is restored. Results are summarized as the mean absolute
// error, and as an adjusted MAE restricted to actors with at least MinGroups
// memberships. The rank of every held-out group is kept in a rank matrix.
//
// Range strategies predict with the Typical formula centered on row averages.
// With Normalizations set they re-populate the memberships with each method
// and repeat the evaluation. Binary strategies compare the configured bin_*
// formulas on the SxF architecture, with row totals as the supporting vector.
package experiment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/forumrec/internal/errdefs"
	"github.com/tomtom215/forumrec/internal/matrix"
	"github.com/tomtom215/forumrec/internal/matrixcache"
	"github.com/tomtom215/forumrec/internal/metrics"
	"github.com/tomtom215/forumrec/internal/recommend"
)

// Default experiment settings.
const (
	DefaultPenalize    = 5
	DefaultPCAVariance = 0.9
	DefaultMinGroups   = 3
)

// DefaultNeighbors are the neighbor counts tried when none are configured.
var DefaultNeighbors = []int{5, 10, 15, 20, 25, 30, 35}

// DefaultFormulas are the formulas compared by binary strategies.
var DefaultFormulas = []recommend.Formula{recommend.BinI, recommend.BinII, recommend.BinIII, recommend.BinIV}

// Config controls an experiment run.
type Config struct {
	Architectures []Architecture
	Neighbors     []int

	// Formulas are compared by binary strategies. Range strategies always
	// predict with Typical.
	Formulas []recommend.Formula

	// Normalizations, when set, re-populate the memberships of a range
	// strategy with each method in turn and evaluate every pass. The
	// memberships are left populated with the last method.
	Normalizations []recommend.NormalizationMethod

	// Penalize is the co-rated column count below which the *_Sim_Mod
	// architectures damp similarities.
	Penalize int

	// PCAVariance is the share of variance kept by the *_PCA architectures.
	PCAVariance float64

	// MinGroups is the membership count an actor needs to be counted in
	// the adjusted MAE.
	MinGroups int
}

// DefaultConfig returns a config running every architecture.
func DefaultConfig() Config {
	return Config{
		Architectures: append([]Architecture(nil), Architectures...),
		Neighbors:     append([]int(nil), DefaultNeighbors...),
		Formulas:      append([]recommend.Formula(nil), DefaultFormulas...),
		Penalize:      DefaultPenalize,
		PCAVariance:   DefaultPCAVariance,
		MinGroups:     DefaultMinGroups,
	}
}

// Validate checks the config.
func (c *Config) Validate() error {
	if len(c.Architectures) == 0 {
		return fmt.Errorf("no architectures: %w", errdefs.ErrInvalidArgument)
	}
	for _, a := range c.Architectures {
		if a < 0 || int(a) >= len(architectureNames) {
			return fmt.Errorf("architecture %d: %w", int(a), errdefs.ErrInvalidArgument)
		}
	}
	if len(c.Neighbors) == 0 {
		return fmt.Errorf("no neighbor counts: %w", errdefs.ErrInvalidArgument)
	}
	for _, k := range c.Neighbors {
		if k < 1 {
			return fmt.Errorf("neighbor count %d: %w", k, errdefs.ErrInvalidArgument)
		}
	}
	for _, f := range c.Formulas {
		if !f.IsBinary() {
			return fmt.Errorf("formula %s is not a binary formula: %w", f, errdefs.ErrInvalidArgument)
		}
	}
	for _, m := range c.Normalizations {
		if m < recommend.NormNone || m > recommend.NormMaxNum {
			return fmt.Errorf("normalization %d: %w", int(m), errdefs.ErrInvalidArgument)
		}
	}
	if c.Penalize < 1 {
		return fmt.Errorf("penalize %d: %w", c.Penalize, errdefs.ErrInvalidArgument)
	}
	if !(c.PCAVariance > 0 && c.PCAVariance <= 1) {
		return fmt.Errorf("pca variance %v: %w", c.PCAVariance, errdefs.ErrInvalidArgument)
	}
	if c.MinGroups < 0 {
		return fmt.Errorf("min groups %d: %w", c.MinGroups, errdefs.ErrInvalidArgument)
	}
	return nil
}

// validateFor checks the settings that depend on the strategy kind.
func (c *Config) validateFor(kind recommend.Kind) error {
	switch kind {
	case recommend.KindRange:
		return nil
	case recommend.KindBinary:
		for _, a := range c.Architectures {
			if a != ArchSxF {
				return fmt.Errorf("binary memberships are evaluated on SxF only, got %s: %w", a, errdefs.ErrInvalidArgument)
			}
		}
		if len(c.Formulas) == 0 {
			return fmt.Errorf("no formulas for binary memberships: %w", errdefs.ErrInvalidArgument)
		}
		if len(c.Normalizations) > 0 {
			return fmt.Errorf("binary memberships cannot be normalized: %w", errdefs.ErrInvalidArgument)
		}
		return nil
	default:
		return fmt.Errorf("strategy kind %s: %w", kind, errdefs.ErrInvalidArgument)
	}
}

// Runner runs leave-one-out experiments.
type Runner struct {
	cache    *matrixcache.Cache
	strategy recommend.Strategy
	cfg      Config
	logger   zerolog.Logger
}

// NewRunner creates a runner over the memberships strategy populated in
// cache. The runner replaces the strategy's neighbor set.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRunner(cache *matrixcache.Cache, strategy recommend.Strategy, cfg Config, logger zerolog.Logger) (*Runner, error) {
	if cache == nil || strategy == nil {
		return nil, fmt.Errorf("cache and strategy are required: %w", errdefs.ErrInvalidArgument)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.validateFor(strategy.Kind()); err != nil {
		return nil, err
	}
	return &Runner{
		cache:    cache,
		strategy: strategy,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

func (r *Runner) binary() bool {
	return r.strategy.Kind() == recommend.KindBinary
}

// formulas returns the formulas every held-out membership is predicted with.
func (r *Runner) formulas() []recommend.Formula {
	if r.binary() {
		return r.cfg.Formulas
	}
	return []recommend.Formula{recommend.Typical}
}

// pass is one population of the memberships to evaluate.
type pass struct {
	populate bool
	method   recommend.NormalizationMethod
}

func (p pass) label() string {
	if !p.populate {
		return ""
	}
	return p.method.String()
}

func (r *Runner) passes() []pass {
	if len(r.cfg.Normalizations) == 0 {
		return []pass{{}}
	}
	out := make([]pass, len(r.cfg.Normalizations))
	for i, m := range r.cfg.Normalizations {
		out[i] = pass{populate: true, method: m}
	}
	return out
}

// names holds the store names used by one run.
type names struct {
	ratings, ratingsAvg string
	ratingsTot          string
	terms, termsAvg     string
	compressed, compAvg string
	similarities        string
}

func (r *Runner) names() names {
	prefix := r.cache.ID() + "_loo"
	return names{
		ratings:      prefix + "_SxF",
		ratingsAvg:   prefix + "_SxF_Averages",
		ratingsTot:   prefix + "_SxF_Totals",
		terms:        r.cache.Name(matrixcache.ActorTerm),
		termsAvg:     prefix + "_SxT_Averages",
		compressed:   prefix + "_PCA",
		compAvg:      prefix + "_PCA_Averages",
		similarities: prefix + "_SxS_Similarities",
	}
}

// rankMatrixName names the rank matrix of one result.
func (r *Runner) rankMatrixName(arch Architecture, normalization string, formula recommend.Formula, k int) string {
	name := r.cache.ID() + "_loo_" + arch.String()
	if normalization != "" {
		name += "_" + normalization
	}
	return fmt.Sprintf("%s_%s_K%d_Ranks", name, formula, k)
}

// Run evaluates every configured pass, architecture, neighbor count and
// formula.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), StartTime: time.Now()}
	defer func() { report.EndTime = time.Now() }()

	logger := r.logger.With().Str("run_id", report.RunID).Logger()
	logger.Info().
		Str("strategy", r.strategy.Kind().String()).
		Int("architectures", len(r.cfg.Architectures)).
		Ints("neighbors", r.cfg.Neighbors).
		Int("passes", len(r.passes())).
		Msg("leave-one-out experiment started")

	if _, err := r.cache.ActorTerm(false); err != nil {
		return report, err
	}
	n := r.names()

	for _, p := range r.passes() {
		if p.populate {
			if err := r.strategy.PopulateGroupMembership(p.method); err != nil {
				return report, fmt.Errorf("populate %s: %w", p.method, err)
			}
		}
		sxf, err := r.cache.ActorGroup(false)
		if err != nil {
			return report, err
		}
		ratings := sxf.Clone(n.ratings)
		r.cache.Put(ratings)

		for _, arch := range r.cfg.Architectures {
			for _, k := range r.cfg.Neighbors {
				results, err := r.runOne(ctx, arch, k, p.label(), ratings, n)
				if err != nil {
					return report, fmt.Errorf("%s k=%d: %w", arch, k, err)
				}
				for i := range results {
					res := &results[i]
					metrics.RecordExperiment(res.Architecture, res.Formula, res.Normalization, res.MAE, res.AdjustedMAE, res.Duration)
					logger.Info().
						Str("architecture", res.Architecture).
						Str("formula", res.Formula).
						Str("normalization", res.Normalization).
						Int("neighbors", k).
						Int("held_out", res.Count).
						Int("recommended", res.Recommended()).
						Float64("mae", res.MAE).
						Float64("adjusted_mae", res.AdjustedMAE).
						Dur("duration", res.Duration).
						Msg("leave-one-out result")
				}
				report.Results = append(report.Results, results...)
			}
		}
	}

	logger.Info().Dur("duration", time.Since(report.StartTime)).Msg("leave-one-out experiment finished")
	return report, nil
}

// runOne holds out every membership once for arch and k and returns one
// result per formula.
func (r *Runner) runOne(ctx context.Context, arch Architecture, k int, normalization string, ratings *matrix.Matrix, n names) ([]Result, error) {
	start := time.Now()
	formulas := r.formulas()
	data := ratings.Raw()

	results := make([]Result, len(formulas))
	ranks := make([]*matrix.Matrix, len(formulas))
	for i, f := range formulas {
		name := r.rankMatrixName(arch, normalization, f, k)
		results[i] = Result{
			Architecture:  arch.String(),
			Neighbors:     k,
			Formula:       f.String(),
			Normalization: normalization,
			RankMatrix:    name,
		}
		ranks[i] = matrix.Zeros(name, ratings.RowLabels(), ratings.ColLabels())
	}

	// Term-based similarities ignore the held-out cell, so they are
	// computed once for the whole pass.
	if arch.usesTerms() {
		if err := r.similarities(ctx, arch, n); err != nil {
			return nil, err
		}
	}

	cat := r.cache.Catalog()
	sumAdjusted := make([]float64, len(formulas))
	for u := 0; u < ratings.Rows(); u++ {
		members := countNonZero(data[u])
		actor, err := cat.ActorAt(u)
		if err != nil {
			return nil, err
		}
		for g := 0; g < ratings.Cols(); g++ {
			if data[u][g] == 0 {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			outcomes, err := r.holdOut(ctx, arch, k, formulas, ratings, n, u, g)
			if err != nil {
				return nil, err
			}
			for i, outcome := range outcomes {
				outcome.Actor = actor.ID
				outcome.Group = ratings.ColLabel(g)
				ranks[i].Raw()[u][g] = float64(outcome.Rank)

				res := &results[i]
				res.Outcomes = append(res.Outcomes, outcome)
				res.Count++
				res.SumAbsError += outcome.AbsError
				if members >= r.cfg.MinGroups {
					res.AdjustedCount++
					sumAdjusted[i] += outcome.AbsError
				}
			}
		}
	}

	elapsed := time.Since(start)
	for i := range results {
		res := &results[i]
		if res.Count > 0 {
			res.MAE = res.SumAbsError / float64(res.Count)
		}
		if res.AdjustedCount > 0 {
			res.AdjustedMAE = sumAdjusted[i] / float64(res.AdjustedCount)
		}
		res.Duration = elapsed
		r.cache.Put(ranks[i])
	}
	return results, nil
}

// holdOut zeroes ratings[u][g], predicts it back with every formula and
// restores it.
func (r *Runner) holdOut(ctx context.Context, arch Architecture, k int, formulas []recommend.Formula, ratings *matrix.Matrix, n names, u, g int) ([]Outcome, error) {
	data := ratings.Raw()
	actual := data[u][g]
	data[u][g] = 0
	defer func() { data[u][g] = actual }()

	supporting := n.ratingsAvg
	if r.binary() {
		supporting = n.ratingsTot
		if err := r.strategy.TotalRatings(n.ratings, supporting); err != nil {
			return nil, err
		}
	} else if err := r.strategy.AverageRating(n.ratings, supporting); err != nil {
		return nil, err
	}

	if !arch.usesTerms() {
		if err := r.similarities(ctx, arch, n); err != nil {
			return nil, err
		}
	}
	if _, err := r.strategy.Neighbors(n.similarities, k); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(formulas))
	for _, f := range formulas {
		preds, err := r.strategy.PredictAll(u, f, n.ratings, supporting)
		if err != nil {
			return nil, err
		}

		outcome := Outcome{Actual: actual, Rank: -1}
		for i, p := range preds {
			if p.Group == g {
				outcome.Rank = i + 1
				outcome.Predicted = p.Score
				break
			}
		}
		outcome.Error = actual - outcome.Predicted
		outcome.AbsError = math.Abs(outcome.Error)
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// similarities stores the actor×actor similarities of arch under
// n.similarities. Binary strategies read the totals holdOut stored.
func (r *Runner) similarities(ctx context.Context, arch Architecture, n names) error {
	if r.binary() {
		return r.strategy.Similarity(ctx, n.ratings, n.similarities, n.ratingsTot, 1)
	}

	source, sourceAvg := n.ratings, n.ratingsAvg
	if arch.usesTerms() {
		source, sourceAvg = n.terms, n.termsAvg
	}

	if arch.usesPCA() {
		m, err := r.cache.Matrix(source)
		if err != nil {
			return err
		}
		compressed, err := m.CompressByPCA(r.cfg.PCAVariance, n.compressed)
		if err != nil {
			return err
		}
		r.cache.Put(compressed)
		source, sourceAvg = n.compressed, n.compAvg
	}

	if err := r.strategy.AverageRating(source, sourceAvg); err != nil {
		return err
	}
	penalize := 1
	if arch.penalized() {
		penalize = r.cfg.Penalize
	}
	return r.strategy.Similarity(ctx, source, n.similarities, sourceAvg, penalize)
}

func countNonZero(row []float64) int {
	n := 0
	for _, v := range row {
		if v != 0 {
			n++
		}
	}
	return n
}
