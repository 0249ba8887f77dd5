// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

/*
Package metrics provides Prometheus instrumentation for forumrec batch runs.

# Overview

The package provides metrics for:
  - Catalog projection rebuilds in the matrix cache
  - Keyed store hit/miss rates
  - Similarity computation latency and pair counts per strategy
  - Prediction and recommendation volumes
  - Leave-one-out experiment error

# Export

forumrec has no network surface. At the end of a run the collected families are
written in the Prometheus text exposition format with WriteText, so the file can
be scraped by node_exporter's textfile collector or inspected by hand:

	f, _ := os.Create("metrics.prom")
	metrics.WriteText(f, prometheus.DefaultGatherer)

# Available Metrics

Matrix Cache Metrics:
  - forumrec_projection_builds_total: Projection rebuilds (counter)
    Labels: projection (SxN, SxF, SxT, NxT, NxF)
  - forumrec_projection_build_duration_seconds: Build latency (histogram)

Store Metrics:
  - forumrec_store_lookups_total: Lookups (counter)
    Labels: result (hit, miss)

Recommender Metrics:
  - forumrec_similarity_duration_seconds: Similarity latency (histogram)
    Labels: strategy (range, binary)
  - forumrec_similarity_pairs_total: Actor pairs compared (counter)
  - forumrec_predictions_total: Predicted scores (counter)
    Labels: formula
  - forumrec_recommendations_recorded_total: Recommendations stored (counter)

Experiment Metrics:
  - forumrec_experiment_mae: Mean absolute error (gauge)
    Labels: architecture, scope (all, adjusted)
  - forumrec_experiment_duration_seconds: Run latency (histogram)

Loader Metrics:
  - forumrec_records_loaded_total: Records read (counter)
    Labels: file
*/
package metrics
