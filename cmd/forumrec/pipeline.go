// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tomtom215/forumrec/internal/catalog"
	"github.com/tomtom215/forumrec/internal/config"
	"github.com/tomtom215/forumrec/internal/experiment"
	"github.com/tomtom215/forumrec/internal/loader"
	"github.com/tomtom215/forumrec/internal/logging"
	"github.com/tomtom215/forumrec/internal/matrixcache"
	"github.com/tomtom215/forumrec/internal/metrics"
	"github.com/tomtom215/forumrec/internal/output"
	"github.com/tomtom215/forumrec/internal/recommend"
	"github.com/tomtom215/forumrec/internal/store"
)

// Output file names.
const (
	predictionsFile     = "predictions.csv"
	recommendationsFile = "recommendations.json"
	reportFile          = "report.json"
	experimentJSONFile  = "experiment.json"
	experimentCSVFile   = "experiment.csv"
)

// Report summarizes one run. It is written to report.json.
type Report struct {
	RunID            string             `json:"run_id"`
	Strategy         string             `json:"strategy"`
	Normalization    string             `json:"normalization"`
	Formula          string             `json:"formula"`
	SimilaritySource string             `json:"similarity_source"`
	Neighbors        int                `json:"neighbors"`
	Load             *loader.Summary    `json:"load"`
	Counts           catalog.Counts     `json:"counts"`
	Predictions      int                `json:"predictions"`
	Recommendations  int                `json:"recommendations"`
	Matrices         []string           `json:"matrices,omitempty"`
	Experiment       *experiment.Report `json:"experiment,omitempty"`
	StartTime        time.Time          `json:"start_time"`
	EndTime          time.Time          `json:"end_time"`
}

// Duration returns the duration of the run.
func (r *Report) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

// pipeline holds the components of one run.
type pipeline struct {
	cfg      *config.Config
	settings config.EngineSettings
	stages   *logging.StageLogger

	cat      *catalog.Catalog
	cache    *matrixcache.Cache
	strategy recommend.Strategy
	out      *output.Dir

	predictions []output.PredictionRow
	report      *Report
}

// run executes every stage and writes the run report.
func run(ctx context.Context, cfg *config.Config) (*Report, error) {
	p, err := newPipeline(cfg)
	if err != nil {
		return nil, err
	}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"load", p.load},
		{"populate", p.populate},
		{"similarity", p.similarity},
		{"predict", p.predict},
		{"write", p.write},
	}
	if cfg.Experiment.Enabled {
		steps = append(steps, struct {
			name string
			fn   func(context.Context) error
		}{"experiment", p.experiment})
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.stages.Run(ctx, step.name, step.fn); err != nil {
			return nil, fmt.Errorf("%s: %w", step.name, err)
		}
	}

	p.report.Counts = p.cat.Counts()
	p.report.EndTime = time.Now()
	if err := p.out.WriteFile(reportFile, func(w io.Writer) error {
		return output.WriteJSON(w, p.report)
	}); err != nil {
		return nil, err
	}

	if path := cfg.Metrics.OutputPath; path != "" {
		if err := writeMetrics(path); err != nil {
			return nil, err
		}
	}
	return p.report, nil
}

// newPipeline wires the store, catalog, cache and strategy of a run.
func newPipeline(cfg *config.Config) (*pipeline, error) {
	settings, err := cfg.EngineConfig()
	if err != nil {
		return nil, err
	}
	out, err := output.NewDir(cfg.Data.OutputDir)
	if err != nil {
		return nil, err
	}

	st := store.New(logging.WithComponent("store"))
	cat := catalog.New(catalog.WithLogger(logging.WithComponent("catalog")))
	cache := matrixcache.New(cfg.Data.RunID, st, cat, logging.WithComponent("matrixcache"))
	strategy, err := recommend.New(settings.Kind, cache, settings.Options, logging.WithComponent("recommend"))
	if err != nil {
		return nil, err
	}

	return &pipeline{
		cfg:      cfg,
		settings: settings,
		stages:   logging.NewStageLogger(),
		cat:      cat,
		cache:    cache,
		strategy: strategy,
		out:      out,
		report: &Report{
			RunID:            cfg.Data.RunID,
			Strategy:         settings.Kind.String(),
			Normalization:    settings.Normalization.String(),
			Formula:          settings.Formula.String(),
			SimilaritySource: settings.SimilaritySource,
			Neighbors:        settings.Neighbors,
			StartTime:        time.Now(),
		},
	}, nil
}

func (p *pipeline) load(ctx context.Context) error {
	l := loader.New(p.cat, logging.WithComponent("loader"))
	summary, err := l.LoadDir(ctx, p.cfg.Data.InputDir)
	if err != nil {
		return err
	}
	p.report.Load = summary
	p.stages.Info(ctx, "input loaded",
		"records", summary.Total(),
		"actors", len(p.cat.Actors()),
		"groups", len(p.cat.Groups()),
	)
	return nil
}

func (p *pipeline) populate(_ context.Context) error {
	return p.strategy.PopulateGroupMembership(p.settings.Normalization)
}

// ratingsName is the actor×group matrix predictions read from.
func (p *pipeline) ratingsName() string {
	return p.cache.Name(matrixcache.ActorGroup)
}

// supportingName is the per-actor vector a strategy reads alongside name:
// row averages for range memberships, row totals for binary ones.
func (p *pipeline) supportingName(name string) string {
	if p.settings.Kind == recommend.KindBinary {
		return name + "_Totals"
	}
	return name + "_Averages"
}

func (p *pipeline) similarityName() string {
	return p.cfg.Data.RunID + "_SxS_Similarities"
}

// prepareSupporting stores the supporting vector of name.
func (p *pipeline) prepareSupporting(name string) error {
	if p.settings.Kind == recommend.KindBinary {
		return p.strategy.TotalRatings(name, p.supportingName(name))
	}
	return p.strategy.AverageRating(name, p.supportingName(name))
}

func (p *pipeline) similarity(ctx context.Context) error {
	ratings := p.ratingsName()
	if err := p.prepareSupporting(ratings); err != nil {
		return err
	}

	source := ratings
	if p.settings.SimilaritySource == matrixcache.ActorTerm.Suffix() {
		sxt, err := p.cache.ActorTerm(false)
		if err != nil {
			return err
		}
		source = sxt.Name()
		if err := p.prepareSupporting(source); err != nil {
			return err
		}
	}

	if err := p.strategy.Similarity(ctx, source, p.similarityName(), p.supportingName(source), p.settings.Penalize); err != nil {
		return err
	}
	_, err := p.strategy.Neighbors(p.similarityName(), p.settings.Neighbors)
	return err
}

// predict scores every unjoined group of every actor and records the top-N
// positive predictions as recommendations.
func (p *pipeline) predict(ctx context.Context) error {
	ratings := p.ratingsName()
	supporting := p.supportingName(ratings)

	for _, a := range p.cat.Actors() {
		if err := ctx.Err(); err != nil {
			return err
		}

		preds, err := p.strategy.PredictAll(a.Index, p.settings.Formula, ratings, supporting)
		if err != nil {
			return fmt.Errorf("predict %s: %w", a.ID, err)
		}
		for rank, pr := range preds {
			g, err := p.cat.GroupAt(pr.Group)
			if err != nil {
				return err
			}
			p.predictions = append(p.predictions, output.PredictionRow{
				Actor: a.ID,
				Group: g.ID,
				Rank:  rank + 1,
				Score: pr.Score,
			})
		}

		recs, err := p.strategy.RecordRecommendations(a.Index, preds, p.settings.TopN)
		if err != nil {
			return fmt.Errorf("recommend %s: %w", a.ID, err)
		}
		p.report.Recommendations += len(recs)
		p.stages.LogRecommendations(ctx, a.ID, len(recs))
	}

	p.report.Predictions = len(p.predictions)
	return nil
}

// matrixNames lists the stored matrices written when WriteMatrices is set.
func (p *pipeline) matrixNames() []string {
	names := make([]string, 0, len(matrixcache.Projections)+4)
	for _, proj := range matrixcache.Projections {
		names = append(names, p.cache.Name(proj))
	}
	names = append(names, p.cfg.Data.RunID+recommend.InferredSuffix)

	ratings := p.ratingsName()
	names = append(names, p.supportingName(ratings))
	if p.settings.SimilaritySource == matrixcache.ActorTerm.Suffix() {
		names = append(names, p.supportingName(p.cache.Name(matrixcache.ActorTerm)))
	}
	return append(names, p.similarityName())
}

func (p *pipeline) write(ctx context.Context) error {
	if p.cfg.Data.WriteMatrices {
		for _, name := range p.matrixNames() {
			if !p.cache.Contains(name) {
				continue
			}
			m, err := p.cache.Matrix(name)
			if err != nil {
				return err
			}
			if err := p.out.WriteMatrix(m); err != nil {
				return err
			}
			p.report.Matrices = append(p.report.Matrices, name)
			p.stages.LogMatrixWritten(ctx, name, m.Rows(), m.Cols())
		}
	}

	if err := p.out.WriteFile(predictionsFile, func(w io.Writer) error {
		return output.WritePredictionsCSV(w, p.predictions)
	}); err != nil {
		return err
	}
	return p.out.WriteFile(recommendationsFile, func(w io.Writer) error {
		return output.WriteJSON(w, p.cat.Recommendations())
	})
}

func (p *pipeline) experiment(ctx context.Context) error {
	ecfg, err := p.cfg.ExperimentConfig()
	if err != nil {
		return err
	}
	runner, err := experiment.NewRunner(p.cache, p.strategy, ecfg, logging.WithComponent("experiment"))
	if err != nil {
		return err
	}
	rep, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	p.report.Experiment = rep

	// A sweep leaves the memberships of its last normalization behind.
	if len(ecfg.Normalizations) > 0 {
		if err := p.strategy.PopulateGroupMembership(p.settings.Normalization); err != nil {
			return err
		}
	}

	rows := make([]output.ExperimentRow, 0, len(rep.Results))
	for i := range rep.Results {
		res := &rep.Results[i]
		p.stages.LogExperimentResult(ctx, res.Architecture, res.Neighbors, res.MAE, res.AdjustedMAE)
		if err := p.writeRankMatrix(ctx, res.RankMatrix); err != nil {
			return err
		}
		rows = append(rows, output.ExperimentRow{
			Architecture:  res.Architecture,
			Normalization: res.Normalization,
			Formula:       res.Formula,
			Neighbors:     res.Neighbors,
			Count:         res.Count,
			Recommended:   res.Recommended(),
			MAE:           res.MAE,
			AdjustedCount: res.AdjustedCount,
			AdjustedMAE:   res.AdjustedMAE,
		})
	}
	if best, ok := rep.Best(); ok {
		p.stages.Info(ctx, "best architecture",
			"architecture", best.Architecture,
			"normalization", best.Normalization,
			"formula", best.Formula,
			"neighbors", best.Neighbors,
			"mae", best.MAE,
		)
	}

	if err := p.out.WriteFile(experimentCSVFile, func(w io.Writer) error {
		return output.WriteExperimentCSV(w, rows)
	}); err != nil {
		return err
	}
	return p.out.WriteFile(experimentJSONFile, func(w io.Writer) error {
		return output.WriteJSON(w, rep)
	})
}

// writeRankMatrix writes the leave-one-out rank matrix of one result.
func (p *pipeline) writeRankMatrix(ctx context.Context, name string) error {
	if name == "" || !p.cache.Contains(name) {
		return nil
	}
	m, err := p.cache.Matrix(name)
	if err != nil {
		return err
	}
	if err := p.out.WriteMatrix(m); err != nil {
		return err
	}
	p.report.Matrices = append(p.report.Matrices, name)
	p.stages.LogMatrixWritten(ctx, name, m.Rows(), m.Cols())
	return nil
}

// writeMetrics dumps the default Prometheus registry in text format.
func writeMetrics(path string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	f, err := os.Create(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return metrics.WriteText(f, prometheus.DefaultGatherer)
}
