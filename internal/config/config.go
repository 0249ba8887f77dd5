// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package config

import (
	"fmt"

	"github.com/tomtom215/forumrec/internal/experiment"
	"github.com/tomtom215/forumrec/internal/recommend"
)

// Config holds all settings of a recommendation run, loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
//
// Configuration Categories:
//
//  1. Data: input and output directories, run id
//  2. Recommend: strategy, normalization, formula and neighborhood settings
//  3. Experiment: optional leave-one-out evaluation
//  4. Observability: logging and the metrics dump
//
// Example - Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	settings, err := cfg.EngineConfig()
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Data       DataConfig       `koanf:"data"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Experiment ExperimentConfig `koanf:"experiment"`
	Logging    LoggingConfig    `koanf:"logging"`
	Metrics    MetricsConfig    `koanf:"metrics"`
}

// DataConfig locates the input files and the output directory.
type DataConfig struct {
	// InputDir holds the tab-separated input files.
	// Default: ./input
	InputDir string `koanf:"input_dir" validate:"required"`

	// OutputDir receives matrices, predictions and reports. It is created
	// when missing.
	// Default: ./output
	OutputDir string `koanf:"output_dir" validate:"required"`

	// RunID prefixes every stored matrix name.
	// Default: run
	RunID string `koanf:"run_id" validate:"required,max=64"`

	// WriteMatrices writes every projection and derived matrix to OutputDir.
	// Default: true
	WriteMatrices bool `koanf:"write_matrices"`
}

// RecommendConfig selects the membership strategy and its parameters.
type RecommendConfig struct {
	// Strategy is the membership interpretation: range or binary.
	// Default: range
	Strategy string `koanf:"strategy" validate:"oneof=range binary"`

	// Normalization is applied to inferred memberships: none, row, column
	// or max_number. Binary strategies accept only none.
	// Default: row
	Normalization string `koanf:"normalization" validate:"oneof=none row column max_number"`

	// Formula is the prediction formula: typical for range strategies,
	// bin_i through bin_iv for binary ones.
	// Default: typical
	Formula string `koanf:"formula" validate:"oneof=typical bin_i bin_ii bin_iii bin_iv"`

	// Neighbors is the number of neighbors kept per actor.
	// Default: 20
	Neighbors int `koanf:"neighbors" validate:"gte=1"`

	// Penalize damps correlations over fewer co-rated columns.
	// 1 disables damping.
	// Default: 1
	Penalize int `koanf:"penalize" validate:"gte=1"`

	// SimilaritySource is the projection similarities are computed on:
	// SxF (memberships) or SxT (term frequencies).
	// Default: SxF
	SimilaritySource string `koanf:"similarity_source" validate:"oneof=SxF SxT"`

	// BinaryThreshold is the smallest inferred score counted as a binary
	// membership. It must be positive: at 0 every cell, including the
	// empty ones, would become a membership.
	// Default: 1e-5
	BinaryThreshold float64 `koanf:"binary_threshold" validate:"gt=0"`

	// Centering selects the means Pearson correlation is centered on:
	// corated or average.
	// Default: corated
	Centering string `koanf:"centering" validate:"oneof=corated average"`

	// Workers bounds the goroutines computing similarity rows.
	// Default: 4
	Workers int `koanf:"workers" validate:"gte=1,lte=256"`

	// TopN is the number of recommendations recorded per actor.
	// Default: 5
	TopN int `koanf:"top_n" validate:"gte=1"`
}

// ExperimentConfig controls the leave-one-out evaluation.
type ExperimentConfig struct {
	// Enabled runs the experiment after the recommendation pipeline.
	// Default: false
	Enabled bool `koanf:"enabled"`

	// Architectures lists the neighbor architectures to evaluate.
	// Default: SxF, SxT, SxF_Sim_Mod, SxT_Sim_Mod, SxF_PCA, SxT_PCA
	Architectures []string `koanf:"architectures" validate:"min=1,dive,oneof=SxF SxT SxF_Sim_Mod SxT_Sim_Mod SxF_PCA SxT_PCA"`

	// Neighbors lists the neighbor counts evaluated per architecture.
	// Default: 5, 10, 15, 20, 25, 30, 35
	Neighbors []int `koanf:"neighbors" validate:"min=1,dive,gte=1"`

	// Formulas are compared when the strategy is binary. The range strategy
	// always uses typical.
	// Default: bin_i, bin_ii, bin_iii, bin_iv
	Formulas []string `koanf:"formulas" validate:"dive,oneof=bin_i bin_ii bin_iii bin_iv"`

	// Normalizations re-populates memberships with each method and repeats
	// the evaluation. Range strategy only. Empty evaluates the memberships
	// populated with recommend.normalization.
	// Default: none
	Normalizations []string `koanf:"normalizations" validate:"dive,oneof=none row column max_number"`

	// Penalize is used by the *_Sim_Mod architectures.
	// Default: 5
	Penalize int `koanf:"penalize" validate:"gte=1"`

	// PCAVariance is the share of variance kept by the *_PCA architectures.
	// Default: 0.9
	PCAVariance float64 `koanf:"pca_variance" validate:"unit_interval"`

	// MinGroups is the membership count an actor needs to be counted in
	// the adjusted MAE.
	// Default: 3
	MinGroups int `koanf:"min_groups" validate:"gte=0"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn error"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// MetricsConfig controls the Prometheus text dump written after a run.
type MetricsConfig struct {
	// OutputPath receives the metrics in text exposition format.
	// Empty disables the dump.
	// Default: ""
	OutputPath string `koanf:"output_path"`
}

// EngineConfig converts the recommend section into the engine's options and
// parsed enumerations.
func (c *Config) EngineConfig() (EngineSettings, error) {
	r := c.Recommend
	var s EngineSettings
	var err error

	if s.Kind, err = recommend.ParseKind(r.Strategy); err != nil {
		return s, err
	}
	if s.Normalization, err = recommend.ParseNormalization(r.Normalization); err != nil {
		return s, err
	}
	if s.Formula, err = recommend.ParseFormula(r.Formula); err != nil {
		return s, err
	}
	centering, err := recommend.ParseCentering(r.Centering)
	if err != nil {
		return s, err
	}

	s.Options = recommend.Config{
		BinaryThreshold: r.BinaryThreshold,
		Centering:       centering,
		Workers:         r.Workers,
	}
	s.Neighbors = r.Neighbors
	s.Penalize = r.Penalize
	s.SimilaritySource = r.SimilaritySource
	s.TopN = r.TopN
	return s, nil
}

// EngineSettings is the recommend section in engine types.
type EngineSettings struct {
	Kind             recommend.Kind
	Normalization    recommend.NormalizationMethod
	Formula          recommend.Formula
	Options          recommend.Config
	Neighbors        int
	Penalize         int
	SimilaritySource string
	TopN             int
}

// ExperimentConfig converts the experiment section into runner options.
func (c *Config) ExperimentConfig() (experiment.Config, error) {
	e := c.Experiment
	archs := make([]experiment.Architecture, 0, len(e.Architectures))
	for _, name := range e.Architectures {
		a, err := experiment.ParseArchitecture(name)
		if err != nil {
			return experiment.Config{}, fmt.Errorf("experiment.architectures: %w", err)
		}
		archs = append(archs, a)
	}
	formulas := make([]recommend.Formula, 0, len(e.Formulas))
	for _, name := range e.Formulas {
		f, err := recommend.ParseFormula(name)
		if err != nil {
			return experiment.Config{}, fmt.Errorf("experiment.formulas: %w", err)
		}
		formulas = append(formulas, f)
	}
	methods := make([]recommend.NormalizationMethod, 0, len(e.Normalizations))
	for _, name := range e.Normalizations {
		m, err := recommend.ParseNormalization(name)
		if err != nil {
			return experiment.Config{}, fmt.Errorf("experiment.normalizations: %w", err)
		}
		methods = append(methods, m)
	}
	return experiment.Config{
		Architectures:  archs,
		Neighbors:      append([]int(nil), e.Neighbors...),
		Formulas:       formulas,
		Normalizations: methods,
		Penalize:       e.Penalize,
		PCAVariance:    e.PCAVariance,
		MinGroups:      e.MinGroups,
	}, nil
}

// Load loads configuration with LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
