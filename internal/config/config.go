package config

// Package config provides configuration management for turbinewatch.
//
// Responsibilities:
//   - Load configuration from a YAML file and environment variables
//   - Validate configuration on startup
//   - Establish reasonable defaults for every detector constant
//
// Configuration Sources (priority order, high to low):
//   1. Environment variables (TURBINEWATCH_* prefix)
//   2. YAML config file (default: turbinewatch.yaml in the working dir)
//   3. Built-in defaults
//
// Main Configuration Sections:
//
//   1. Input
//      - path: CSV file with the sensor readings
//      - drop_duplicates: remove exact duplicate rows (keep first)
//      - forward_fill: fill missing values from the previous row
//      - rename: extra header-to-sensor-name mappings
//
//   2. Detectors
//      - zscore.threshold: |z| beyond which a value is an outlier
//      - isolation_forest.contamination: expected anomalous fraction
//      - isolation_forest.trees: ensemble size
//      - isolation_forest.subsample: rows per tree
//      - isolation_forest.seed: determinism control
//      - residual.sigma: residual-deviation multiple that flags a row
//
//   3. Report
//      - output_dir: directory for the CSV report and charts
//      - charts: render the two diagnostic PNGs
//
//   4. History
//      - enabled: persist a per-run summary record
//      - path: SQLite database file
//
//   5. Logging
//      - level: "debug" | "info" | "warn" | "error"
//      - format: "json" | "console"
//      - path: optional log file (rotated); empty logs to stderr only

// Config contains all configuration fields.
type Config struct {
	Input struct {
		Path           string
		DropDuplicates bool
		ForwardFill    bool
		Rename         map[string]string
	}

	Detectors struct {
		ZScore struct {
			Threshold float64
		}
		IsolationForest struct {
			Contamination float64
			Trees         int
			Subsample     int
			Seed          int64
		}
		Residual struct {
			Sigma float64
		}
	}

	Report struct {
		OutputDir string
		Charts    bool
	}

	History struct {
		Enabled bool
		Path    string
	}

	Logging struct {
		Level  string
		Format string
		Path   string
	}
}
