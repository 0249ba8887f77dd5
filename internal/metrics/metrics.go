// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

var (
	// Matrix Cache Metrics
	ProjectionBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forumrec_projection_builds_total",
			Help: "Total number of catalog projections rebuilt",
		},
		[]string{"projection"}, // "SxN", "SxF", "SxT", "NxT", "NxF"
	)

	ProjectionBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forumrec_projection_build_duration_seconds",
			Help:    "Duration of catalog projection builds in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"projection"},
	)

	// Store Metrics
	StoreLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forumrec_store_lookups_total",
			Help: "Total number of keyed store lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// Recommender Metrics
	SimilarityDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forumrec_similarity_duration_seconds",
			Help:    "Duration of pairwise similarity computations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	SimilarityPairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forumrec_similarity_pairs_total",
			Help: "Total number of actor pairs compared",
		},
		[]string{"strategy"},
	)

	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forumrec_predictions_total",
			Help: "Total number of predicted actor-group scores",
		},
		[]string{"formula"},
	)

	RecommendationsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forumrec_recommendations_recorded_total",
			Help: "Total number of recommendations written back to the catalog",
		},
	)

	// Experiment Metrics
	ExperimentMAE = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "forumrec_experiment_mae",
			Help: "Mean absolute error of the last leave-one-out run",
		},
		[]string{"architecture", "formula", "normalization", "scope"}, // scope: "all", "adjusted"
	)

	ExperimentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forumrec_experiment_duration_seconds",
			Help:    "Duration of leave-one-out runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"architecture"},
	)

	// Loader Metrics
	RecordsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forumrec_records_loaded_total",
			Help: "Total number of input records loaded into the catalog",
		},
		[]string{"file"},
	)
)

// RecordProjectionBuild records a catalog projection rebuild.
func RecordProjectionBuild(projection string, duration time.Duration) {
	ProjectionBuilds.WithLabelValues(projection).Inc()
	ProjectionBuildDuration.WithLabelValues(projection).Observe(duration.Seconds())
}

// RecordStoreLookup records a keyed store hit or miss.
func RecordStoreLookup(hit bool) {
	if hit {
		StoreLookups.WithLabelValues("hit").Inc()
		return
	}
	StoreLookups.WithLabelValues("miss").Inc()
}

// RecordSimilarity records one similarity computation over n actors.
func RecordSimilarity(strategy string, actors int, duration time.Duration) {
	SimilarityDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	if actors > 1 {
		SimilarityPairs.WithLabelValues(strategy).Add(float64(actors * (actors - 1) / 2))
	}
}

// RecordPredictions records n predicted scores computed with formula.
func RecordPredictions(formula string, n int) {
	PredictionsTotal.WithLabelValues(formula).Add(float64(n))
}

// RecordRecommendations records n recommendations stored in the catalog.
func RecordRecommendations(n int) {
	RecommendationsRecorded.Add(float64(n))
}

// RecordExperiment records the outcome of a leave-one-out run.
func RecordExperiment(architecture, formula, normalization string, mae, adjustedMAE float64, duration time.Duration) {
	ExperimentMAE.WithLabelValues(architecture, formula, normalization, "all").Set(mae)
	ExperimentMAE.WithLabelValues(architecture, formula, normalization, "adjusted").Set(adjustedMAE)
	ExperimentDuration.WithLabelValues(architecture).Observe(duration.Seconds())
}

// RecordLoaded records n records read from file.
func RecordLoaded(file string, n int) {
	RecordsLoaded.WithLabelValues(file).Add(float64(n))
}

// WriteText writes every metric family gathered from g in the Prometheus text
// exposition format. Batch runs use it instead of a /metrics endpoint.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	return writeFamilies(w, families)
}

func writeFamilies(w io.Writer, families []*dto.MetricFamily) error {
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
