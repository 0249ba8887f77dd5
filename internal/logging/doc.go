// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

// Package logging provides centralized zerolog-based structured logging for forumrec.
//
// The package provides:
//   - JSON output for batch runs and console output for development
//   - A global logger configured once from main
//   - Context-aware logging that carries the run ID and pipeline stage
//   - StageLogger, which times pipeline stages and logs their outcome
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	ctx = logging.ContextWithRunID(ctx, cfg.Data.RunID)
//	stages := logging.NewStageLogger()
//	err := stages.Run(ctx, "similarity", func(ctx context.Context) error {
//	    return strategy.Similarity(ctx, source, "similarity", "averages", penalize)
//	})
//	if err != nil {
//	    logging.CtxErr(ctx, err).Msg("Run failed")
//	}
//
// Library packages do not use the global logger. They accept a
// zerolog.Logger in their constructors; main passes WithComponent loggers.
//
// # Configuration
//
// Levels: trace, debug, info, warn, error, disabled. Unknown levels fall
// back to info. The LOG_LEVEL, LOG_FORMAT and LOG_CALLER environment
// variables are read by the config package and passed to Init.
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Ctx(ctx).Info().Str("key", "value").Msg("message")  // Correct
//	logging.Ctx(ctx).Info().Str("key", "value")                 // WRONG - log not emitted
package logging
