// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

/*
Package config provides centralized configuration management for forumrec.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. The merged result is unmarshaled into
Config and validated with go-playground/validator tags plus rules that span
fields.

# Configuration File

The first existing file among CONFIG_PATH, config.yaml, config.yml,
/etc/forumrec/config.yaml and /etc/forumrec/config.yml is loaded:

	data:
	  input_dir: ./input/student
	  output_dir: ./output/student
	  run_id: student
	recommend:
	  strategy: range
	  normalization: row
	  formula: typical
	  neighbors: 20
	  top_n: 5
	experiment:
	  enabled: true
	  architectures: [SxF, SxT_PCA]
	  neighbors: [5, 10, 15]
	logging:
	  level: debug
	  format: console

# Environment Variables

Only mapped variables are read:

Data (DataConfig):
  - FORUMREC_INPUT_DIR: directory of the tab-separated input files (default: input)
  - FORUMREC_OUTPUT_DIR: output directory (default: output)
  - FORUMREC_RUN_ID: prefix of stored matrix names (default: run)
  - FORUMREC_WRITE_MATRICES: write matrices to the output directory (default: true)

Recommendation engine (RecommendConfig):
  - FORUMREC_STRATEGY: range or binary (default: range)
  - FORUMREC_NORMALIZATION: none, row, column or max_number (default: row)
  - FORUMREC_FORMULA: typical or bin_i..bin_iv (default: typical)
  - FORUMREC_NEIGHBORS: neighbors per actor (default: 20)
  - FORUMREC_PENALIZE: similarity damping threshold (default: 1)
  - FORUMREC_SIMILARITY_SOURCE: SxF or SxT (default: SxF)
  - FORUMREC_BINARY_THRESHOLD: binarization cut-off, must be positive (default: 1e-5)
  - FORUMREC_CENTERING: corated or average (default: corated)
  - FORUMREC_WORKERS: similarity goroutines (default: 4)
  - FORUMREC_TOP_N: recommendations recorded per actor (default: 5)

Experiment (ExperimentConfig):
  - FORUMREC_EXPERIMENT_ENABLED: run the leave-one-out evaluation (default: false)
  - FORUMREC_EXPERIMENT_ARCHITECTURES: comma-separated architectures (default: all six)
  - FORUMREC_EXPERIMENT_NEIGHBORS: comma-separated neighbor counts (default: 5,10,...,35)
  - FORUMREC_EXPERIMENT_FORMULAS: binary formulas compared (default: bin_i,...,bin_iv)
  - FORUMREC_EXPERIMENT_NORMALIZATIONS: range normalizations swept (default: none)
  - FORUMREC_EXPERIMENT_PENALIZE: damping threshold of *_Sim_Mod (default: 5)
  - FORUMREC_EXPERIMENT_PCA_VARIANCE: variance kept by *_PCA (default: 0.9)
  - FORUMREC_EXPERIMENT_MIN_GROUPS: memberships needed for the adjusted MAE (default: 3)

Observability:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: include caller file and line (default: false)
  - FORUMREC_METRICS_OUTPUT: file receiving the metrics dump (default: none)

# Validation

Besides per-field constraints:
  - The binary strategy requires normalization none and a bin_* formula.
  - The range strategy requires the typical formula.
  - With the binary strategy the experiment evaluates SxF only and takes
    no normalizations.

Validation errors match errdefs.ErrInvalidArgument.
*/
package config
