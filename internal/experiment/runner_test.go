// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package experiment

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/forumrec/internal/catalog"
	"github.com/tomtom215/forumrec/internal/errdefs"
	"github.com/tomtom215/forumrec/internal/matrixcache"
	"github.com/tomtom215/forumrec/internal/recommend"
	"github.com/tomtom215/forumrec/internal/store"
)

type wordsExtractor struct{}

func (wordsExtractor) Extract(text string) map[string]int {
	out := make(map[string]int)
	for _, w := range strings.Fields(text) {
		out[w]++
	}
	return out
}

func nopLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// memberships of actors a0..a2 in groups g0..g3.
var memberships = [][]float64{
	{3, 1, 2, 0},
	{4, 1, 3, 2},
	{1, 3, 0, 2},
}

var texts = []string{"bus lane bus", "bus lane tax", "tax park"}

func newFixture(t *testing.T) (*matrixcache.Cache, recommend.Strategy) {
	t.Helper()
	cat := catalog.New(catalog.WithExtractor(wordsExtractor{}))
	actors := []string{"a0", "a1", "a2"}
	groups := []string{"g0", "g1", "g2", "g3"}

	for i, id := range actors {
		if _, err := cat.AddActor(id, id, ""); err != nil {
			t.Fatal(err)
		}
		if _, err := cat.AddContentUnit("n"+id, id, texts[i]); err != nil {
			t.Fatal(err)
		}
	}
	for _, id := range groups {
		if _, err := cat.AddGroup(id, id); err != nil {
			t.Fatal(err)
		}
	}
	for i, row := range memberships {
		for j, v := range row {
			if v == 0 {
				continue
			}
			if err := cat.AddActorToGroup(groups[j], actors[i], v); err != nil {
				t.Fatal(err)
			}
		}
	}

	cache := matrixcache.New("run", store.New(nopLogger()), cat, nopLogger())
	strategy, err := recommend.New(recommend.KindRange, cache, recommend.DefaultConfig(), nopLogger())
	if err != nil {
		t.Fatal(err)
	}
	return cache, strategy
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func findOutcome(t *testing.T, res Result, actor, group string) Outcome {
	t.Helper()
	for _, o := range res.Outcomes {
		if o.Actor == actor && o.Group == group {
			return o
		}
	}
	t.Fatalf("no outcome for %s/%s", actor, group)
	return Outcome{}
}

func TestRunner_SxF(t *testing.T) {
	t.Parallel()
	cache, strategy := newFixture(t)
	cfg := DefaultConfig()
	cfg.Architectures = []Architecture{ArchSxF}
	cfg.Neighbors = []int{5}
	cfg.MinGroups = 4

	runner, err := NewRunner(cache, strategy, cfg, nopLogger())
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.RunID == "" || report.EndTime.IsZero() || report.Duration() < 0 {
		t.Errorf("report header = %q %v..%v", report.RunID, report.StartTime, report.EndTime)
	}
	if len(report.Results) != 1 {
		t.Fatalf("Results = %d, want 1", len(report.Results))
	}
	res := report.Results[0]
	if res.Architecture != "SxF" || res.Neighbors != 5 {
		t.Errorf("result key = %s/%d", res.Architecture, res.Neighbors)
	}
	if res.Count != 11 || len(res.Outcomes) != 11 {
		t.Errorf("Count = %d (%d outcomes), want 11", res.Count, len(res.Outcomes))
	}
	if res.AdjustedCount != 4 {
		t.Errorf("AdjustedCount = %d, want 4", res.AdjustedCount)
	}

	// a0 without g0 is [0 1 2 0]: its only positive neighbor is a1 with
	// correlation 1 over g1 and g2, so g0 is predicted as
	// 1.5 + (4 - 2.5) = 3.
	o := findOutcome(t, res, "a0", "g0")
	if !near(o.Predicted, 3) || o.Rank != 1 || !near(o.AbsError, 0) || o.Actual != 3 {
		t.Errorf("a0/g0 outcome = %+v, want predicted 3 at rank 1", o)
	}

	// a2 without g1 has no positive neighbor; both unrated groups get its
	// average 1.5 and g1 comes first.
	o = findOutcome(t, res, "a2", "g1")
	if !near(o.Predicted, 1.5) || o.Rank != 1 || !near(o.Error, 1.5) || !o.Recommended() {
		t.Errorf("a2/g1 outcome = %+v, want predicted 1.5 at rank 1", o)
	}

	var sum, sumAdjusted float64
	for _, o := range res.Outcomes {
		sum += o.AbsError
		if o.Actor == "a1" {
			sumAdjusted += o.AbsError
		}
	}
	if !near(res.MAE, sum/11) || !near(res.SumAbsError, sum) {
		t.Errorf("MAE = %v, want %v", res.MAE, sum/11)
	}
	if !near(res.AdjustedMAE, sumAdjusted/4) {
		t.Errorf("AdjustedMAE = %v, want %v", res.AdjustedMAE, sumAdjusted/4)
	}

	// Every held-out score is restored and the projection is untouched.
	sxf, err := cache.ActorGroup(false)
	if err != nil {
		t.Fatal(err)
	}
	work, err := cache.Matrix("run_loo_SxF")
	if err != nil {
		t.Fatal(err)
	}
	if !work.Equal(sxf, 0) {
		t.Error("working copy differs from the membership projection after the run")
	}
	for i, row := range memberships {
		for j, v := range row {
			if sxf.At(i, j) != v {
				t.Errorf("SxF[%d][%d] = %v, want %v", i, j, sxf.At(i, j), v)
			}
		}
	}

	best, ok := report.Best()
	if !ok || best.Architecture != "SxF" {
		t.Errorf("Best() = %+v, %v", best, ok)
	}

	if res.Formula != "typical" || res.Normalization != "" || res.RankMatrix != "run_loo_SxF_typical_K5_Ranks" {
		t.Errorf("result labels = %q %q %q", res.Formula, res.Normalization, res.RankMatrix)
	}
	ranks, err := cache.Matrix(res.RankMatrix)
	if err != nil {
		t.Fatalf("rank matrix: %v", err)
	}
	if ranks.At(0, 0) != 1 || ranks.At(0, 3) != 0 {
		t.Errorf("ranks a0 = %v, want 1 for held-out g0 and 0 for g3", ranks.Row(0))
	}
}

// newBinaryFixture returns the fixture with a binary strategy whose
// memberships have been converted to flags.
func newBinaryFixture(t *testing.T) (*matrixcache.Cache, recommend.Strategy) {
	t.Helper()
	cache, _ := newFixture(t)
	strategy, err := recommend.New(recommend.KindBinary, cache, recommend.DefaultConfig(), nopLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := strategy.PopulateGroupMembership(recommend.NormNone); err != nil {
		t.Fatal(err)
	}
	return cache, strategy
}

func TestRunner_BinaryFormulas(t *testing.T) {
	t.Parallel()
	cache, strategy := newBinaryFixture(t)
	cfg := DefaultConfig()
	cfg.Architectures = []Architecture{ArchSxF}
	cfg.Neighbors = []int{5}
	cfg.MinGroups = 4

	runner, err := NewRunner(cache, strategy, cfg, nopLogger())
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Results) != len(DefaultFormulas) {
		t.Fatalf("Results = %d, want one per formula", len(report.Results))
	}
	for i, res := range report.Results {
		if res.Formula != DefaultFormulas[i].String() || res.Architecture != "SxF" {
			t.Errorf("Results[%d] = %s/%s", i, res.Architecture, res.Formula)
		}
		if res.Count != 11 || res.AdjustedCount != 4 {
			t.Errorf("%s Count = %d, AdjustedCount = %d; want 11, 4", res.Formula, res.Count, res.AdjustedCount)
		}
		for _, o := range res.Outcomes {
			if o.Actual != 1 || o.Rank < 1 {
				t.Errorf("%s outcome %+v: want flag 1 ranked", res.Formula, o)
			}
		}
		if !cache.Contains(res.RankMatrix) {
			t.Errorf("rank matrix %s not stored", res.RankMatrix)
		}
	}

	// a0 without g0 is {g1, g2}; its neighbors are a1 (2/sqrt(8)) and
	// a2 (1/sqrt(6)), both members of g0.
	s1, s2 := 2/math.Sqrt(8), 1/math.Sqrt(6)
	want := map[string]float64{
		"bin_i":   1,
		"bin_ii":  1,
		"bin_iii": (s1 + s2) / 2,
		"bin_iv":  (s1 + s2) / 2,
	}
	for _, res := range report.Results {
		o := findOutcome(t, res, "a0", "g0")
		if !near(o.Predicted, want[res.Formula]) || !near(o.AbsError, 1-want[res.Formula]) {
			t.Errorf("%s a0/g0 predicted = %v, want %v", res.Formula, o.Predicted, want[res.Formula])
		}
	}

	sxf, _ := cache.ActorGroup(false)
	for i := 0; i < sxf.Rows(); i++ {
		for j := 0; j < sxf.Cols(); j++ {
			if v := sxf.At(i, j); v != 0 && v != 1 {
				t.Errorf("SxF[%d][%d] = %v after the run, want a flag", i, j, v)
			}
		}
	}
}

func TestRunner_NormalizationSweep(t *testing.T) {
	t.Parallel()
	cache, strategy := newFixture(t)
	cfg := DefaultConfig()
	cfg.Architectures = []Architecture{ArchSxF}
	cfg.Neighbors = []int{5}
	cfg.Normalizations = []recommend.NormalizationMethod{recommend.NormRow, recommend.NormCol, recommend.NormMaxNum}

	runner, err := NewRunner(cache, strategy, cfg, nopLogger())
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// a0 is [3 1 2 0]; g0 totals 8 and the largest membership is 4.
	tests := []struct {
		normalization string
		actual        float64
	}{
		{"row", 0.5},
		{"column", 3.0 / 8},
		{"max_number", 0.75},
	}
	if len(report.Results) != len(tests) {
		t.Fatalf("Results = %d, want one per normalization", len(report.Results))
	}
	for i, tt := range tests {
		res := report.Results[i]
		if res.Normalization != tt.normalization || res.Formula != "typical" || res.Count != 11 {
			t.Errorf("Results[%d] = %s/%s count %d", i, res.Normalization, res.Formula, res.Count)
		}
		if o := findOutcome(t, res, "a0", "g0"); !near(o.Actual, tt.actual) {
			t.Errorf("%s a0/g0 actual = %v, want %v", tt.normalization, o.Actual, tt.actual)
		}
		if want := "run_loo_SxF_" + tt.normalization + "_typical_K5_Ranks"; res.RankMatrix != want || !cache.Contains(want) {
			t.Errorf("RankMatrix = %q, want stored %q", res.RankMatrix, want)
		}
	}

	// The memberships stay populated with the last method.
	sxf, _ := cache.ActorGroup(false)
	if !near(sxf.At(0, 0), 0.75) || !near(sxf.At(1, 0), 1) {
		t.Errorf("SxF column g0 = [%v %v], want max-number scores", sxf.At(0, 0), sxf.At(1, 0))
	}
}

func TestRunner_AllArchitectures(t *testing.T) {
	t.Parallel()
	cache, strategy := newFixture(t)
	cfg := DefaultConfig()
	cfg.Neighbors = []int{1, 2}

	runner, err := NewRunner(cache, strategy, cfg, nopLogger())
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Results) != len(Architectures)*2 {
		t.Fatalf("Results = %d, want %d", len(report.Results), len(Architectures)*2)
	}
	for i, res := range report.Results {
		wantArch := Architectures[i/2].String()
		if res.Architecture != wantArch {
			t.Errorf("Results[%d].Architecture = %s, want %s", i, res.Architecture, wantArch)
		}
		if res.Count != 11 {
			t.Errorf("%s k=%d Count = %d, want 11", res.Architecture, res.Neighbors, res.Count)
		}
		if math.IsNaN(res.MAE) || res.MAE < 0 {
			t.Errorf("%s k=%d MAE = %v", res.Architecture, res.Neighbors, res.MAE)
		}
	}
}

func TestRunner_Canceled(t *testing.T) {
	t.Parallel()
	cache, strategy := newFixture(t)
	runner, err := NewRunner(cache, strategy, DefaultConfig(), nopLogger())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runner.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestNewRunner_Errors(t *testing.T) {
	t.Parallel()
	cache, strategy := newFixture(t)
	binary, err := recommend.New(recommend.KindBinary, cache, recommend.DefaultConfig(), nopLogger())
	if err != nil {
		t.Fatal(err)
	}
	binaryCfg := func(mutate func(*Config)) Config {
		cfg := DefaultConfig()
		cfg.Architectures = []Architecture{ArchSxF}
		mutate(&cfg)
		return cfg
	}

	bad := func(mutate func(*Config)) Config {
		cfg := DefaultConfig()
		mutate(&cfg)
		return cfg
	}

	tests := []struct {
		name     string
		cache    *matrixcache.Cache
		strategy recommend.Strategy
		cfg      Config
	}{
		{"nil cache", nil, strategy, DefaultConfig()},
		{"nil strategy", cache, nil, DefaultConfig()},
		{"binary with term architectures", cache, binary, DefaultConfig()},
		{"binary without formulas", cache, binary, binaryCfg(func(c *Config) { c.Formulas = nil })},
		{"binary with normalizations", cache, binary, binaryCfg(func(c *Config) {
			c.Normalizations = []recommend.NormalizationMethod{recommend.NormRow}
		})},
		{"typical in formulas", cache, binary, binaryCfg(func(c *Config) {
			c.Formulas = []recommend.Formula{recommend.Typical}
		})},
		{"unknown normalization", cache, strategy, bad(func(c *Config) {
			c.Normalizations = []recommend.NormalizationMethod{7}
		})},
		{"no architectures", cache, strategy, bad(func(c *Config) { c.Architectures = nil })},
		{"unknown architecture", cache, strategy, bad(func(c *Config) { c.Architectures = []Architecture{9} })},
		{"no neighbors", cache, strategy, bad(func(c *Config) { c.Neighbors = nil })},
		{"zero neighbors", cache, strategy, bad(func(c *Config) { c.Neighbors = []int{0} })},
		{"zero penalize", cache, strategy, bad(func(c *Config) { c.Penalize = 0 })},
		{"variance above one", cache, strategy, bad(func(c *Config) { c.PCAVariance = 1.5 })},
		{"negative min groups", cache, strategy, bad(func(c *Config) { c.MinGroups = -1 })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewRunner(tt.cache, tt.strategy, tt.cfg, nopLogger()); !errors.Is(err, errdefs.ErrInvalidArgument) {
				t.Errorf("NewRunner() error = %v, want invalid argument", err)
			}
		})
	}
}

func TestParseArchitecture(t *testing.T) {
	t.Parallel()
	for _, a := range Architectures {
		got, err := ParseArchitecture(a.String())
		if err != nil || got != a {
			t.Errorf("ParseArchitecture(%q) = %v, %v", a.String(), got, err)
		}
	}
	if _, err := ParseArchitecture("SxN"); !errors.Is(err, errdefs.ErrInvalidArgument) {
		t.Errorf("ParseArchitecture(SxN) error = %v", err)
	}
	if got := Architecture(42).String(); got != "Architecture(42)" {
		t.Errorf("String() = %q", got)
	}
}
