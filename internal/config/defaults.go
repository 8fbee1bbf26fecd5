package config

// DefaultConfig returns a configuration with all default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	// Input defaults
	cfg.Input.Path = "data/gas_turbine.csv"
	cfg.Input.DropDuplicates = true
	cfg.Input.ForwardFill = true
	cfg.Input.Rename = map[string]string{}

	// Detector defaults: the constants the detectors were validated with.
	cfg.Detectors.ZScore.Threshold = 3.0
	cfg.Detectors.IsolationForest.Contamination = 0.02
	cfg.Detectors.IsolationForest.Trees = 200
	cfg.Detectors.IsolationForest.Subsample = 256
	cfg.Detectors.IsolationForest.Seed = 42
	cfg.Detectors.Residual.Sigma = 3.0

	// Report defaults
	cfg.Report.OutputDir = "output"
	cfg.Report.Charts = true

	// History defaults
	cfg.History.Enabled = true
	cfg.History.Path = "turbinewatch.db"

	// Logging defaults
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"
	cfg.Logging.Path = ""

	return cfg
}
