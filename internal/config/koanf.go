// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/forumrec/internal/experiment"
	"github.com/tomtom215/forumrec/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/forumrec/config.yaml",
	"/etc/forumrec/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	architectures := make([]string, len(experiment.Architectures))
	for i, a := range experiment.Architectures {
		architectures[i] = a.String()
	}
	formulas := make([]string, len(experiment.DefaultFormulas))
	for i, f := range experiment.DefaultFormulas {
		formulas[i] = f.String()
	}

	return &Config{
		Data: DataConfig{
			InputDir:      "input",
			OutputDir:     "output",
			RunID:         "run",
			WriteMatrices: true,
		},
		Recommend: RecommendConfig{
			Strategy:         recommend.KindRange.String(),
			Normalization:    recommend.NormRow.String(),
			Formula:          recommend.Typical.String(),
			Neighbors:        20,
			Penalize:         1,
			SimilaritySource: "SxF",
			BinaryThreshold:  recommend.DefaultBinaryThreshold,
			Centering:        recommend.CenterCorated.String(),
			Workers:          recommend.DefaultWorkers,
			TopN:             5,
		},
		// The experiment repeats the whole similarity pass per membership,
		// so it is opt-in.
		Experiment: ExperimentConfig{
			Enabled:       false,
			Architectures: architectures,
			Neighbors:     append([]int(nil), experiment.DefaultNeighbors...),
			Formulas:      formulas,
			Penalize:      experiment.DefaultPenalize,
			PCAVariance:   experiment.DefaultPCAVariance,
			MinGroups:     experiment.DefaultMinGroups,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Metrics: MetricsConfig{
			OutputPath: "",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
//
// The result is validated before it is returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// LOG_LEVEL -> logging.level
	// FORUMREC_NEIGHBORS -> recommend.neighbors
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process list fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths hold comma-separated lists
// when they come from the environment.
var sliceConfigPaths = []string{
	"experiment.architectures",
	"experiment.formulas",
	"experiment.normalizations",
}

// intSliceConfigPaths are comma-separated lists of integers.
var intSliceConfigPaths = []string{
	"experiment.neighbors",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		parts, ok := splitString(k.Get(path))
		if !ok {
			continue
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}

	for _, path := range intSliceConfigPaths {
		parts, ok := splitString(k.Get(path))
		if !ok {
			continue
		}
		ints := make([]int, len(parts))
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return fmt.Errorf("%s: %q is not an integer", path, p)
			}
			ints[i] = n
		}
		if err := k.Set(path, ints); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// splitString splits a non-empty comma-separated string value. Values that
// are already lists (from YAML) are left alone.
func splitString(val interface{}) ([]string, bool) {
	strVal, ok := val.(string)
	if !ok || strVal == "" {
		return nil, false
	}
	parts := strings.Split(strVal, ",")
	trimmed := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			trimmed = append(trimmed, p)
		}
	}
	return trimmed, len(trimmed) > 0
}

// envMappings maps lower-cased environment variable names to config paths.
var envMappings = map[string]string{
	// Data mappings
	"forumrec_input_dir":      "data.input_dir",
	"forumrec_output_dir":     "data.output_dir",
	"forumrec_run_id":         "data.run_id",
	"forumrec_write_matrices": "data.write_matrices",

	// Recommendation engine mappings
	"forumrec_strategy":          "recommend.strategy",
	"forumrec_normalization":     "recommend.normalization",
	"forumrec_formula":           "recommend.formula",
	"forumrec_neighbors":         "recommend.neighbors",
	"forumrec_penalize":          "recommend.penalize",
	"forumrec_similarity_source": "recommend.similarity_source",
	"forumrec_binary_threshold":  "recommend.binary_threshold",
	"forumrec_centering":         "recommend.centering",
	"forumrec_workers":           "recommend.workers",
	"forumrec_top_n":             "recommend.top_n",

	// Experiment mappings
	"forumrec_experiment_enabled":        "experiment.enabled",
	"forumrec_experiment_architectures":  "experiment.architectures",
	"forumrec_experiment_neighbors":      "experiment.neighbors",
	"forumrec_experiment_formulas":       "experiment.formulas",
	"forumrec_experiment_normalizations": "experiment.normalizations",
	"forumrec_experiment_penalize":       "experiment.penalize",
	"forumrec_experiment_pca_variance":   "experiment.pca_variance",
	"forumrec_experiment_min_groups":     "experiment.min_groups",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Metrics mappings
	"forumrec_metrics_output": "metrics.output_path",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - LOG_LEVEL -> logging.level
//   - FORUMREC_INPUT_DIR -> data.input_dir
//   - FORUMREC_EXPERIMENT_NEIGHBORS -> experiment.neighbors
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
