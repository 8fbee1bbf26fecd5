package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Manager loads, validates and watches the configuration.
type Manager interface {
	Load(ctx context.Context) error
	Get(ctx context.Context) *Config
	Validate(ctx context.Context) error
	Watch(ctx context.Context) <-chan Config
	Reload(ctx context.Context) error
}

// NewManager creates a viper-backed configuration manager reading the given
// file. An empty path uses defaults and environment variables only.
func NewManager(configPath string) Manager {
	return &viperConfigManager{
		configPath: configPath,
		watchChan:  make(chan Config, 1),
	}
}

// viperConfigManager implements Manager using Viper.
type viperConfigManager struct {
	configPath string
	config     *Config
	viper      *viper.Viper
	watchChan  chan Config
}

// Load loads configuration from all sources.
func (m *viperConfigManager) Load(ctx context.Context) error {
	m.viper = viper.New()

	if m.configPath != "" {
		m.viper.SetConfigFile(m.configPath)
	} else {
		m.viper.SetConfigName("turbinewatch")
		m.viper.AddConfigPath(".")
	}
	m.viper.SetConfigType("yaml")

	m.viper.SetEnvPrefix("TURBINEWATCH")
	m.viper.AutomaticEnv()
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	m.setDefaults()

	// The config file is optional; defaults plus env vars suffice.
	if err := m.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No file found via viper search paths.
		} else if os.IsNotExist(err) {
			// Explicit path does not exist.
		} else {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := m.unmarshalConfig(); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}
	return nil
}

// Get returns the current configuration.
func (m *viperConfigManager) Get(ctx context.Context) *Config {
	return m.config
}

// Validate validates configuration is correct and complete.
func (m *viperConfigManager) Validate(ctx context.Context) error {
	errs := m.config.Validate()
	if len(errs) > 0 {
		var errMsgs []string
		for _, err := range errs {
			errMsgs = append(errMsgs, err.Error())
		}
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errMsgs, "\n  - "))
	}
	return nil
}

// Watch watches for configuration changes and reloads.
func (m *viperConfigManager) Watch(ctx context.Context) <-chan Config {
	m.viper.WatchConfig()
	m.viper.OnConfigChange(func(e fsnotify.Event) {
		if err := m.unmarshalConfig(); err != nil {
			return
		}
		select {
		case m.watchChan <- *m.config:
		default:
			// Channel full, skip this update.
		}
	})
	return m.watchChan
}

// Reload reloads configuration from sources.
func (m *viperConfigManager) Reload(ctx context.Context) error {
	if err := m.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	if err := m.unmarshalConfig(); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}
	return nil
}

// setDefaults sets default values in viper.
func (m *viperConfigManager) setDefaults() {
	defaults := DefaultConfig()

	// Input defaults
	m.viper.SetDefault("input.path", defaults.Input.Path)
	m.viper.SetDefault("input.drop_duplicates", defaults.Input.DropDuplicates)
	m.viper.SetDefault("input.forward_fill", defaults.Input.ForwardFill)
	m.viper.SetDefault("input.rename", defaults.Input.Rename)

	// Detector defaults
	m.viper.SetDefault("detectors.zscore.threshold", defaults.Detectors.ZScore.Threshold)
	m.viper.SetDefault("detectors.isolation_forest.contamination", defaults.Detectors.IsolationForest.Contamination)
	m.viper.SetDefault("detectors.isolation_forest.trees", defaults.Detectors.IsolationForest.Trees)
	m.viper.SetDefault("detectors.isolation_forest.subsample", defaults.Detectors.IsolationForest.Subsample)
	m.viper.SetDefault("detectors.isolation_forest.seed", defaults.Detectors.IsolationForest.Seed)
	m.viper.SetDefault("detectors.residual.sigma", defaults.Detectors.Residual.Sigma)

	// Report defaults
	m.viper.SetDefault("report.output_dir", defaults.Report.OutputDir)
	m.viper.SetDefault("report.charts", defaults.Report.Charts)

	// History defaults
	m.viper.SetDefault("history.enabled", defaults.History.Enabled)
	m.viper.SetDefault("history.path", defaults.History.Path)

	// Logging defaults
	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
	m.viper.SetDefault("logging.path", defaults.Logging.Path)
}

// unmarshalConfig unmarshals viper config into Config struct.
func (m *viperConfigManager) unmarshalConfig() error {
	cfg := &Config{}

	// Input
	cfg.Input.Path = m.viper.GetString("input.path")
	cfg.Input.DropDuplicates = m.viper.GetBool("input.drop_duplicates")
	cfg.Input.ForwardFill = m.viper.GetBool("input.forward_fill")
	cfg.Input.Rename = m.viper.GetStringMapString("input.rename")

	// Detectors
	cfg.Detectors.ZScore.Threshold = m.viper.GetFloat64("detectors.zscore.threshold")
	cfg.Detectors.IsolationForest.Contamination = m.viper.GetFloat64("detectors.isolation_forest.contamination")
	cfg.Detectors.IsolationForest.Trees = m.viper.GetInt("detectors.isolation_forest.trees")
	cfg.Detectors.IsolationForest.Subsample = m.viper.GetInt("detectors.isolation_forest.subsample")
	cfg.Detectors.IsolationForest.Seed = m.viper.GetInt64("detectors.isolation_forest.seed")
	cfg.Detectors.Residual.Sigma = m.viper.GetFloat64("detectors.residual.sigma")

	// Report
	cfg.Report.OutputDir = m.viper.GetString("report.output_dir")
	cfg.Report.Charts = m.viper.GetBool("report.charts")

	// History
	cfg.History.Enabled = m.viper.GetBool("history.enabled")
	cfg.History.Path = m.viper.GetString("history.path")

	// Logging
	cfg.Logging.Level = m.viper.GetString("logging.level")
	cfg.Logging.Format = m.viper.GetString("logging.format")
	cfg.Logging.Path = m.viper.GetString("logging.path")

	m.config = cfg
	return nil
}
