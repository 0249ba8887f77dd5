// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey int

const (
	runIDKey contextKey = iota
	stageKey
)

// ContextWithRunID returns a context whose log entries carry run_id.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext returns the run id of ctx, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// ContextWithStage returns a context whose log entries carry stage.
func ContextWithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the pipeline stage of ctx, or "".
func StageFromContext(ctx context.Context) string {
	s, _ := ctx.Value(stageKey).(string)
	return s
}

// withRunFields adds the run_id and stage of ctx to c.
func withRunFields(ctx context.Context, c zerolog.Context) zerolog.Context {
	if id := RunIDFromContext(ctx); id != "" {
		c = c.Str("run_id", id)
	}
	if stage := StageFromContext(ctx); stage != "" {
		c = c.Str("stage", stage)
	}
	return c
}

// Ctx returns the process logger with the run fields of ctx.
//
//	logging.Ctx(ctx).Info().Msg("Run completed")
func Ctx(ctx context.Context) *zerolog.Logger {
	l := withRunFields(ctx, current().With()).Logger()
	return &l
}

// CtxErr starts an error entry with the run fields of ctx.
func CtxErr(ctx context.Context, err error) *zerolog.Event {
	return Ctx(ctx).Err(err)
}
