// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package loader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/forumrec/internal/catalog"
	"github.com/tomtom215/forumrec/internal/errdefs"
)

type wordsExtractor struct{}

func (wordsExtractor) Extract(text string) map[string]int {
	out := make(map[string]int)
	for _, w := range strings.Fields(text) {
		out[w]++
	}
	return out
}

var fixture = map[string]string{
	StakeholdersFile: "id\tname\tdesc\n" +
		"s1\tAna\tresident\n" +
		"s2\tBen\tplanner\n",
	ForumsFile: "id\ttitle\n" +
		"f1\tTransport\n" +
		"f2\tFinance\n",
	NeedsFile: "id\ttext\tstakeholderId\n" +
		"n1\tmore buses\ts1\n" +
		"\n" +
		"n2\tlower taxes\ts2\n",
	RatingsFile: "id\tstakeholderId\tneedId\ttype\tvalue\n" +
		"r1\ts1\tn1\tCreator\t1\n" +
		"r2\ts2\tn1\tVoter\t0.5\n" +
		"r3\ts2\tn2\tlurker\t1\n",
	NeedsOfForumsFile: "forumId\tneedId\tscore\n" +
		"f1\tn1\t0.9\n" +
		"f2\tn2\t1\n",
	StakeholdersOfForumsFile: "forumId\tstakeholderId\tscore\n" +
		"f1\ts2\t0.4\n",
	RecommendationsFile: "id\tstakeholderId\tforumId\ttype\treason\tvalue\n" +
		"x1\ts1\tf2\tRandom\tseeded\t0.1\n",
}

func writeFixture(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func without(name string) map[string]string {
	out := make(map[string]string, len(fixture))
	for k, v := range fixture {
		if k != name {
			out[k] = v
		}
	}
	return out
}

func with(name, content string) map[string]string {
	out := without(name)
	out[name] = content
	return out
}

func newLoader() (*Loader, *catalog.Catalog) {
	cat := catalog.New(catalog.WithExtractor(wordsExtractor{}))
	return New(cat, zerolog.New(io.Discard)), cat
}

func TestLoadDir(t *testing.T) {
	t.Parallel()
	l, cat := newLoader()

	summary, err := l.LoadDir(context.Background(), writeFixture(t, fixture))
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}

	counts := cat.Counts()
	want := catalog.Counts{Actors: 2, ContentUnits: 2, Terms: 4, Groups: 2, Ratings: 3, Recommendations: 1}
	if counts != want {
		t.Errorf("Counts() = %+v, want %+v", counts, want)
	}
	if summary.Total() != 13 {
		t.Errorf("Total() = %d, want 13", summary.Total())
	}
	if got := summary.Rows(NeedsFile); got != 2 {
		t.Errorf("Rows(needs) = %d, want 2", got)
	}
	if len(summary.Files) != 7 {
		t.Errorf("Files = %d entries, want 7", len(summary.Files))
	}
	if summary.EndTime.IsZero() || summary.Duration() < 0 {
		t.Errorf("summary times = %v..%v", summary.StartTime, summary.EndTime)
	}

	// Unknown rating types fall back to creator.
	r3, err := cat.Rating("r3")
	if err != nil || r3.Kind != catalog.RatingCreator {
		t.Errorf("Rating(r3) = %+v, %v; want creator", r3, err)
	}
	for _, f := range summary.Files {
		if f.Name == RatingsFile && f.Defaulted != 1 {
			t.Errorf("ratings Defaulted = %d, want 1", f.Defaulted)
		}
	}

	n1, _ := cat.ContentUnit("n1")
	if n1.Text != "more buses" || n1.Author != 0 {
		t.Errorf("ContentUnit(n1) = %+v", n1)
	}
	score, _ := cat.ScoreOfActorInGroup(0, 1)
	if score != 0.4 {
		t.Errorf("ScoreOfActorInGroup(f1, s2) = %v, want 0.4", score)
	}
	rec, _ := cat.Recommendation("x1")
	if rec.Kind != catalog.RecommenderRandom || rec.Reason != "seeded" {
		t.Errorf("Recommendation(x1) = %+v", rec)
	}
}

func TestLoadDir_OptionalFiles(t *testing.T) {
	t.Parallel()
	files := without(StakeholdersOfForumsFile)
	delete(files, RecommendationsFile)
	l, cat := newLoader()

	summary, err := l.LoadDir(context.Background(), writeFixture(t, files))
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	missing := 0
	for _, f := range summary.Files {
		if f.Missing {
			missing++
		}
	}
	if missing != 2 {
		t.Errorf("missing files = %d, want 2", missing)
	}
	if cat.Counts().Recommendations != 0 {
		t.Error("recommendations loaded from a missing file")
	}
}

func TestLoadDir_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		files    map[string]string
		wantFile string
		wantLine int
		wantErr  error
	}{
		{
			name:     "need by unknown stakeholder",
			files:    with(NeedsFile, "id\ttext\tstakeholderId\nn1\thello\ts9\n"),
			wantFile: NeedsFile,
			wantLine: 2,
			wantErr:  errdefs.ErrNotFound,
		},
		{
			name:     "bad rating value",
			files:    with(RatingsFile, "h\th\th\th\th\nr1\ts1\tn1\tVoter\tlots\n"),
			wantFile: RatingsFile,
			wantLine: 2,
			wantErr:  errdefs.ErrInvalidArgument,
		},
		{
			name:     "short row",
			files:    with(NeedsOfForumsFile, "forumId\tneedId\tscore\nf1\tn1\n"),
			wantFile: NeedsOfForumsFile,
			wantLine: 2,
			wantErr:  errdefs.ErrInvalidArgument,
		},
		{
			name:     "duplicate forum",
			files:    with(ForumsFile, "id\ttitle\nf1\tA\nf2\tB\nf1\tC\n"),
			wantFile: ForumsFile,
			wantLine: 4,
			wantErr:  errdefs.ErrDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l, _ := newLoader()
			_, err := l.LoadDir(context.Background(), writeFixture(t, tt.files))

			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("LoadDir() error = %v, want *ParseError", err)
			}
			if filepath.Base(perr.Path) != tt.wantFile || perr.Line != tt.wantLine {
				t.Errorf("error at %s:%d, want %s:%d", perr.Path, perr.Line, tt.wantFile, tt.wantLine)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadDir() error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantFile) {
				t.Errorf("error %q does not name the file", err)
			}
		})
	}
}

func TestLoadDir_MissingRequiredFile(t *testing.T) {
	t.Parallel()
	l, _ := newLoader()
	_, err := l.LoadDir(context.Background(), writeFixture(t, without(RatingsFile)))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadDir() error = %v, want not-exist", err)
	}
}

func TestLoadDir_Canceled(t *testing.T) {
	t.Parallel()
	l, cat := newLoader()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := l.LoadDir(ctx, writeFixture(t, fixture)); !errors.Is(err, context.Canceled) {
		t.Errorf("LoadDir() error = %v, want context.Canceled", err)
	}
	if cat.Counts().Actors != 0 {
		t.Error("canceled load added entities")
	}
}
