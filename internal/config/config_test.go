// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package config

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/tomtom215/forumrec/internal/errdefs"
	"github.com/tomtom215/forumrec/internal/experiment"
	"github.com/tomtom215/forumrec/internal/recommend"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"binary with bin formula", func(c *Config) {
			c.Recommend.Strategy = "binary"
			c.Recommend.Normalization = "none"
			c.Recommend.Formula = "bin_iii"
		}, ""},
		{"range with every normalization", func(c *Config) { c.Recommend.Normalization = "max_number" }, ""},
		{"experiment with range", func(c *Config) { c.Experiment.Enabled = true }, ""},
		{"experiment normalization sweep", func(c *Config) {
			c.Experiment.Enabled = true
			c.Experiment.Normalizations = []string{"row", "column", "max_number"}
		}, ""},
		{"experiment with binary on SxF", func(c *Config) {
			c.Recommend.Strategy = "binary"
			c.Recommend.Normalization = "none"
			c.Recommend.Formula = "bin_iv"
			c.Experiment.Enabled = true
			c.Experiment.Architectures = []string{"SxF"}
			c.Experiment.Formulas = []string{"bin_ii", "bin_iv"}
		}, ""},

		{"binary normalized", func(c *Config) {
			c.Recommend.Strategy = "binary"
			c.Recommend.Formula = "bin_i"
		}, "recommend.normalization must be none"},
		{"binary typical", func(c *Config) {
			c.Recommend.Strategy = "binary"
			c.Recommend.Normalization = "none"
		}, "recommend.formula must be one of bin_i..bin_iv"},
		{"range bin formula", func(c *Config) { c.Recommend.Formula = "bin_ii" }, "recommend.formula must be typical"},
		{"experiment with binary default architectures", func(c *Config) {
			c.Recommend.Strategy = "binary"
			c.Recommend.Normalization = "none"
			c.Recommend.Formula = "bin_iv"
			c.Experiment.Enabled = true
		}, "experiment.architectures must be SxF for the binary strategy"},
		{"experiment with binary and no formulas", func(c *Config) {
			c.Recommend.Strategy = "binary"
			c.Recommend.Normalization = "none"
			c.Recommend.Formula = "bin_iv"
			c.Experiment.Enabled = true
			c.Experiment.Architectures = []string{"SxF"}
			c.Experiment.Formulas = nil
		}, "experiment.formulas is required"},
		{"experiment with binary normalizations", func(c *Config) {
			c.Recommend.Strategy = "binary"
			c.Recommend.Normalization = "none"
			c.Recommend.Formula = "bin_iv"
			c.Experiment.Enabled = true
			c.Experiment.Architectures = []string{"SxF"}
			c.Experiment.Normalizations = []string{"row"}
		}, "experiment.normalizations requires recommend.strategy range"},
		{"unknown experiment formula", func(c *Config) { c.Experiment.Formulas = []string{"typical"} }, "experiment.formulas[0]"},
		{"unknown experiment normalization", func(c *Config) {
			c.Experiment.Normalizations = []string{"row", "zscore"}
		}, "experiment.normalizations[1]"},
		{"zero threshold", func(c *Config) { c.Recommend.BinaryThreshold = 0 }, "recommend.binary_threshold"},

		{"unknown strategy", func(c *Config) { c.Recommend.Strategy = "hybrid" }, "recommend.strategy must be one of"},
		{"unknown normalization", func(c *Config) { c.Recommend.Normalization = "zscore" }, "recommend.normalization must be one of"},
		{"zero neighbors", func(c *Config) { c.Recommend.Neighbors = 0 }, "recommend.neighbors"},
		{"zero penalize", func(c *Config) { c.Recommend.Penalize = 0 }, "recommend.penalize"},
		{"negative threshold", func(c *Config) { c.Recommend.BinaryThreshold = -1 }, "recommend.binary_threshold"},
		{"unknown centering", func(c *Config) { c.Recommend.Centering = "median" }, "recommend.centering"},
		{"too many workers", func(c *Config) { c.Recommend.Workers = 1000 }, "recommend.workers"},
		{"zero top n", func(c *Config) { c.Recommend.TopN = 0 }, "recommend.top_n"},
		{"unknown source", func(c *Config) { c.Recommend.SimilaritySource = "SxN" }, "recommend.similarity_source"},
		{"missing input dir", func(c *Config) { c.Data.InputDir = "" }, "data.input_dir is required"},
		{"missing run id", func(c *Config) { c.Data.RunID = "" }, "data.run_id is required"},
		{"unknown architecture", func(c *Config) { c.Experiment.Architectures = []string{"SxF", "SxN"} }, "experiment.architectures[1]"},
		{"no architectures", func(c *Config) { c.Experiment.Architectures = nil }, "experiment.architectures"},
		{"zero experiment neighbors", func(c *Config) { c.Experiment.Neighbors = []int{0} }, "experiment.neighbors[0]"},
		{"pca variance zero", func(c *Config) { c.Experiment.PCAVariance = 0 }, "experiment.pca_variance"},
		{"negative min groups", func(c *Config) { c.Experiment.MinGroups = -1 }, "experiment.min_groups"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level must be one of"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
			if !errors.Is(err, errdefs.ErrInvalidArgument) {
				t.Errorf("Validate() error %v does not match ErrInvalidArgument", err)
			}
		})
	}
}

func TestEngineConfig(t *testing.T) {
	t.Parallel()
	cfg := defaultConfig()
	cfg.Recommend.Strategy = "binary"
	cfg.Recommend.Normalization = "none"
	cfg.Recommend.Formula = "bin_ii"
	cfg.Recommend.Centering = "average"
	cfg.Recommend.Workers = 8
	cfg.Recommend.BinaryThreshold = 0.5
	cfg.Recommend.SimilaritySource = "SxT"

	s, err := cfg.EngineConfig()
	if err != nil {
		t.Fatalf("EngineConfig() error = %v", err)
	}
	if s.Kind != recommend.KindBinary || s.Normalization != recommend.NormNone || s.Formula != recommend.BinII {
		t.Errorf("EngineConfig() enums = %v/%v/%v", s.Kind, s.Normalization, s.Formula)
	}
	want := recommend.Config{BinaryThreshold: 0.5, Centering: recommend.CenterAverage, Workers: 8}
	if s.Options != want {
		t.Errorf("Options = %+v, want %+v", s.Options, want)
	}
	if s.Neighbors != 20 || s.Penalize != 1 || s.TopN != 5 || s.SimilaritySource != "SxT" {
		t.Errorf("EngineConfig() = %+v", s)
	}

	cfg.Recommend.Formula = "nonsense"
	if _, err := cfg.EngineConfig(); !errors.Is(err, errdefs.ErrInvalidArgument) {
		t.Errorf("EngineConfig() error = %v, want invalid argument", err)
	}
}

func TestExperimentConfig(t *testing.T) {
	t.Parallel()
	cfg := defaultConfig()
	cfg.Experiment.Architectures = []string{"SxT_Sim_Mod", "SxF_PCA"}
	cfg.Experiment.Neighbors = []int{3}
	cfg.Experiment.MinGroups = 2

	got, err := cfg.ExperimentConfig()
	if err != nil {
		t.Fatalf("ExperimentConfig() error = %v", err)
	}
	if len(got.Architectures) != 2 || got.Architectures[0] != experiment.ArchSxTSimMod || got.Architectures[1] != experiment.ArchSxFPCA {
		t.Errorf("Architectures = %v", got.Architectures)
	}
	if len(got.Neighbors) != 1 || got.Neighbors[0] != 3 || got.MinGroups != 2 || got.Penalize != 5 || got.PCAVariance != 0.9 {
		t.Errorf("ExperimentConfig() = %+v", got)
	}
	wantFormulas := []recommend.Formula{recommend.BinI, recommend.BinII, recommend.BinIII, recommend.BinIV}
	if !reflect.DeepEqual(got.Formulas, wantFormulas) || len(got.Normalizations) != 0 {
		t.Errorf("Formulas = %v, Normalizations = %v", got.Formulas, got.Normalizations)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("converted config does not validate: %v", err)
	}

	cfg.Experiment.Normalizations = []string{"column", "max_number"}
	got, err = cfg.ExperimentConfig()
	if err != nil {
		t.Fatalf("ExperimentConfig() error = %v", err)
	}
	if !reflect.DeepEqual(got.Normalizations, []recommend.NormalizationMethod{recommend.NormCol, recommend.NormMaxNum}) {
		t.Errorf("Normalizations = %v", got.Normalizations)
	}

	cfg.Experiment.Formulas = []string{"bin_v"}
	if _, err := cfg.ExperimentConfig(); !errors.Is(err, errdefs.ErrInvalidArgument) {
		t.Errorf("ExperimentConfig() error = %v, want invalid argument", err)
	}
	cfg.Experiment.Formulas = nil

	cfg.Experiment.Architectures = []string{"SxN"}
	if _, err := cfg.ExperimentConfig(); !errors.Is(err, errdefs.ErrInvalidArgument) {
		t.Errorf("ExperimentConfig() error = %v, want invalid argument", err)
	}
}
