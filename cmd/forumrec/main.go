// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

// Package main is the entry point for the forumrec batch runner.
//
// Forumrec recommends discussion forums to stakeholders from their needs and
// ratings. One run executes these stages in order:
//
//  1. Configuration: Load settings from defaults, config.yaml and environment (Koanf v2)
//  2. Load: Read the tab-separated input files into the entity catalog
//  3. Populate: Infer stakeholder-forum memberships from needs and ratings
//  4. Similarity: Correlate stakeholders on SxF or SxT and select neighbors
//  5. Predict: Score every unjoined forum and record the top-N recommendations
//  6. Write: Persist matrices, predictions, recommendations and a run report
//  7. Experiment (optional): Leave-one-out MAE over neighbor architectures
//
// # Configuration
//
// See internal/config for every setting. The most common ones:
//   - FORUMREC_INPUT_DIR, FORUMREC_OUTPUT_DIR, FORUMREC_RUN_ID
//   - FORUMREC_STRATEGY (range or binary), FORUMREC_NEIGHBORS, FORUMREC_TOP_N
//   - FORUMREC_EXPERIMENT_ENABLED
//   - FORUMREC_METRICS_OUTPUT: write Prometheus metrics in text format when set
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the run. Similarity workers and the experiment
// stop at the next actor; files already written are kept.
//
// # Example Usage
//
//	export FORUMREC_INPUT_DIR=./data/student
//	export FORUMREC_OUTPUT_DIR=./out
//	export LOG_FORMAT=console
//	./forumrec
//
// The process exits with status 1 when any stage fails.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/forumrec/internal/config"
	"github.com/tomtom215/forumrec/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config not yet available, log with the default logger
		logging.Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	ctx = logging.ContextWithRunID(ctx, cfg.Data.RunID)
	logging.Ctx(ctx).Info().
		Str("input_dir", cfg.Data.InputDir).
		Str("output_dir", cfg.Data.OutputDir).
		Str("strategy", cfg.Recommend.Strategy).
		Bool("experiment", cfg.Experiment.Enabled).
		Msg("Starting forumrec")

	report, err := run(ctx, cfg)
	stop()
	if err != nil {
		logging.CtxErr(ctx, err).Msg("Run failed")
		os.Exit(1)
	}

	logging.Ctx(ctx).Info().
		Int("recommendations", report.Recommendations).
		Dur("duration", report.Duration()).
		Msg("Run completed")
}
