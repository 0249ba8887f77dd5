// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

// Package loader populates an entity catalog from a directory of
// tab-separated text files.
//
// Every file starts with a header row, which is skipped. Files are read in
// dependency order so that every reference names an entity loaded earlier:
//
//	stakeholders.txt          id, name, description
//	forums.txt                id, title
//	needs.txt                 id, text, stakeholderId
//	ratings.txt               id, stakeholderId, needId, type, value
//	needsofforums.txt         forumId, needId, score
//	stakeholdersofforums.txt  forumId, stakeholderId, score       (optional)
//	recommendations.txt       id, stakeholderId, forumId, type, reason, value (optional)
//
// Errors carry the file path and line of the offending row.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/forumrec/internal/catalog"
	"github.com/tomtom215/forumrec/internal/errdefs"
	"github.com/tomtom215/forumrec/internal/metrics"
)

// Loader reads input files into a catalog.
type Loader struct {
	cat    *catalog.Catalog
	logger zerolog.Logger
}

// New creates a loader that adds entities to cat.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(cat *catalog.Catalog, logger zerolog.Logger) *Loader {
	return &Loader{cat: cat, logger: logger}
}

// fileSpec describes one input file.
type fileSpec struct {
	name     string
	minCols  int
	optional bool
	row      func(l *Loader, cols []string, stats *FileStats, path string, line int) error
}

var files = []fileSpec{
	{StakeholdersFile, 1, false, (*Loader).stakeholder},
	{ForumsFile, 1, false, (*Loader).forum},
	{NeedsFile, 3, false, (*Loader).need},
	{RatingsFile, 5, false, (*Loader).rating},
	{NeedsOfForumsFile, 3, false, (*Loader).needOfForum},
	{StakeholdersOfForumsFile, 3, true, (*Loader).stakeholderOfForum},
	{RecommendationsFile, 6, true, (*Loader).recommendation},
}

// LoadDir loads every input file from dir. Required files that are missing
// fail the load; missing optional files are recorded in the summary.
func (l *Loader) LoadDir(ctx context.Context, dir string) (*Summary, error) {
	summary := &Summary{Dir: dir, StartTime: time.Now()}
	defer func() { summary.EndTime = time.Now() }()

	l.logger.Info().Str("dir", dir).Msg("loading input files")

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		stats, err := l.loadFile(ctx, filepath.Join(dir, file.name), file)
		summary.Files = append(summary.Files, stats)
		if err != nil {
			return summary, err
		}
		metrics.RecordLoaded(file.name, stats.Rows)
	}

	counts := l.cat.Counts()
	l.logger.Info().
		Int("actors", counts.Actors).
		Int("content_units", counts.ContentUnits).
		Int("terms", counts.Terms).
		Int("groups", counts.Groups).
		Int("ratings", counts.Ratings).
		Int("recommendations", counts.Recommendations).
		Dur("duration", time.Since(summary.StartTime)).
		Msg("input files loaded")
	return summary, nil
}

func (l *Loader) loadFile(ctx context.Context, path string, file fileSpec) (FileStats, error) {
	stats := FileStats{Name: file.name}

	f, err := os.Open(path)
	if err != nil {
		if file.optional && errors.Is(err, fs.ErrNotExist) {
			stats.Missing = true
			l.logger.Debug().Str("file", file.name).Msg("optional input file absent")
			return stats, nil
		}
		return stats, fmt.Errorf("open %s: %w", file.name, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			l.logger.Warn().Err(closeErr).Str("file", file.name).Msg("error closing input file")
		}
	}()

	r := newReader(f)
	header := true
	for {
		cols, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				return stats, &ParseError{Path: path, Line: csvErr.Line, Err: csvErr.Err}
			}
			return stats, fmt.Errorf("read %s: %w", path, err)
		}
		line, _ := r.FieldPos(0)
		if header {
			header = false
			continue
		}
		if len(cols) == 1 && strings.TrimSpace(cols[0]) == "" {
			continue
		}
		if len(cols) < file.minCols {
			return stats, &ParseError{Path: path, Line: line,
				Err: fmt.Errorf("want at least %d columns, got %d: %w", file.minCols, len(cols), errdefs.ErrInvalidArgument)}
		}
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
		if err := file.row(l, cols, &stats, path, line); err != nil {
			return stats, &ParseError{Path: path, Line: line, Err: err}
		}
		stats.Rows++

		if stats.Rows%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}
	}

	l.logger.Debug().Str("file", file.name).Int("rows", stats.Rows).Msg("input file loaded")
	return stats, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return cr
}

// col returns cols[i] or "" when the row is short.
func col(cols []string, i int) string {
	if i < len(cols) {
		return cols[i]
	}
	return ""
}

func parseValue(s, what string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", what, s, errdefs.ErrInvalidArgument)
	}
	return v, nil
}

func (l *Loader) stakeholder(cols []string, _ *FileStats, _ string, _ int) error {
	_, err := l.cat.AddActor(cols[0], col(cols, 1), col(cols, 2))
	return err
}

func (l *Loader) forum(cols []string, _ *FileStats, _ string, _ int) error {
	_, err := l.cat.AddGroup(cols[0], col(cols, 1))
	return err
}

func (l *Loader) need(cols []string, _ *FileStats, _ string, _ int) error {
	_, err := l.cat.AddContentUnit(cols[0], cols[2], cols[1])
	return err
}

func (l *Loader) rating(cols []string, stats *FileStats, path string, line int) error {
	kind, err := catalog.ParseRatingKind(cols[3])
	if err != nil {
		kind = catalog.RatingCreator
		stats.Defaulted++
		l.logger.Warn().Str("file", path).Int("line", line).Str("type", cols[3]).
			Msg("unknown rating type, using creator")
	}
	value, err := parseValue(cols[4], "rating value")
	if err != nil {
		return err
	}
	_, err = l.cat.AddRating(cols[0], cols[1], cols[2], kind, value)
	return err
}

func (l *Loader) needOfForum(cols []string, _ *FileStats, _ string, _ int) error {
	score, err := parseValue(cols[2], "score")
	if err != nil {
		return err
	}
	return l.cat.AddContentToGroup(cols[0], cols[1], score)
}

func (l *Loader) stakeholderOfForum(cols []string, _ *FileStats, _ string, _ int) error {
	score, err := parseValue(cols[2], "score")
	if err != nil {
		return err
	}
	return l.cat.AddActorToGroup(cols[0], cols[1], score)
}

func (l *Loader) recommendation(cols []string, stats *FileStats, path string, line int) error {
	kind, err := catalog.ParseRecommenderKind(cols[3])
	if err != nil {
		kind = catalog.RecommenderContent
		stats.Defaulted++
		l.logger.Warn().Str("file", path).Int("line", line).Str("type", cols[3]).
			Msg("unknown recommendation type, using content")
	}
	value, err := parseValue(cols[5], "recommendation value")
	if err != nil {
		return err
	}
	_, err = l.cat.AddRecommendation(cols[0], cols[1], cols[2], kind, cols[4], value)
	return err
}
