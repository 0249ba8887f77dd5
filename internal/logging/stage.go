// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// StageLogger logs the stages of a pipeline run: loading, projection,
// similarity, prediction, output and the experiment.
type StageLogger struct {
	logger zerolog.Logger
}

// NewStageLogger creates a StageLogger backed by the global logger.
func NewStageLogger() *StageLogger {
	return &StageLogger{
		logger: WithComponent("pipeline"),
	}
}

// NewStageLoggerWithLogger creates a StageLogger with a custom logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewStageLoggerWithLogger(logger zerolog.Logger) *StageLogger {
	return &StageLogger{
		logger: logger.With().Str("component", "pipeline").Logger(),
	}
}

// Info logs an info message with alternating key/value fields.
func (s *StageLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	logger := s.loggerWithContext(ctx)
	addFieldPairs(logger.Info(), fields).Msg(msg)
}

// Debug logs a debug message with alternating key/value fields.
func (s *StageLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	logger := s.loggerWithContext(ctx)
	addFieldPairs(logger.Debug(), fields).Msg(msg)
}

// Run executes fn as the named stage. The stage name is attached to the
// context passed to fn. Completion is logged with its duration; a failure
// is logged and returned unchanged.
func (s *StageLogger) Run(ctx context.Context, stage string, fn func(context.Context) error) error {
	ctx = ContextWithStage(ctx, stage)
	logger := s.loggerWithContext(ctx)

	logger.Debug().Msg("stage started")
	start := time.Now()

	if err := fn(ctx); err != nil {
		logger.Error().
			Err(err).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("stage failed")
		return err
	}

	logger.Info().
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("stage completed")
	return nil
}

// LogMatrixWritten logs a matrix persisted to the output directory.
func (s *StageLogger) LogMatrixWritten(ctx context.Context, name string, rows, cols int) {
	s.Debug(ctx, "matrix written",
		"matrix", name,
		"rows", rows,
		"cols", cols,
	)
}

// LogRecommendations logs the recommendations recorded for one actor.
func (s *StageLogger) LogRecommendations(ctx context.Context, actor string, count int) {
	s.Debug(ctx, "recommendations recorded",
		"actor", actor,
		"count", count,
	)
}

// LogExperimentResult logs the error of one architecture and neighbor count.
func (s *StageLogger) LogExperimentResult(ctx context.Context, architecture string, neighbors int, mae, adjustedMAE float64) {
	s.Info(ctx, "experiment result",
		"architecture", architecture,
		"neighbors", neighbors,
		"mae", mae,
		"adjusted_mae", adjustedMAE,
	)
}

// loggerWithContext returns the stage logger with the run fields of ctx.
func (s *StageLogger) loggerWithContext(ctx context.Context) zerolog.Logger {
	return withRunFields(ctx, s.logger.With()).Logger()
}

// addFieldPairs adds key-value pairs to a zerolog event. Non-string keys
// and a trailing key without a value are skipped.
func addFieldPairs(e *zerolog.Event, fields []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, fields[i+1])
	}
	return e
}
