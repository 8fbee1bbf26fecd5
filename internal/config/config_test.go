package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test input defaults
	assert.Equal(t, "data/gas_turbine.csv", cfg.Input.Path)
	assert.True(t, cfg.Input.DropDuplicates)
	assert.True(t, cfg.Input.ForwardFill)

	// Test detector defaults
	assert.Equal(t, 3.0, cfg.Detectors.ZScore.Threshold)
	assert.Equal(t, 0.02, cfg.Detectors.IsolationForest.Contamination)
	assert.Equal(t, 200, cfg.Detectors.IsolationForest.Trees)
	assert.Equal(t, 256, cfg.Detectors.IsolationForest.Subsample)
	assert.Equal(t, int64(42), cfg.Detectors.IsolationForest.Seed)
	assert.Equal(t, 3.0, cfg.Detectors.Residual.Sigma)

	// Test report defaults
	assert.Equal(t, "output", cfg.Report.OutputDir)
	assert.True(t, cfg.Report.Charts)

	// Test history defaults
	assert.True(t, cfg.History.Enabled)
	assert.NotEmpty(t, cfg.History.Path)

	// Test logging defaults
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.Empty(t, DefaultConfig().Validate())
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Input.Path = ""
	cfg.Detectors.ZScore.Threshold = -1
	cfg.Detectors.IsolationForest.Contamination = 0.9
	cfg.Detectors.IsolationForest.Trees = 0
	cfg.Logging.Level = "verbose"

	errs := cfg.Validate()
	require.Len(t, errs, 5)

	fields := make([]string, 0, len(errs))
	for _, err := range errs {
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		fields = append(fields, verr.Field)
	}
	assert.Contains(t, fields, "input.path")
	assert.Contains(t, fields, "detectors.zscore.threshold")
	assert.Contains(t, fields, "detectors.isolation_forest.contamination")
	assert.Contains(t, fields, "detectors.isolation_forest.trees")
	assert.Contains(t, fields, "logging.level")
}

func TestManager_LoadWithoutFile(t *testing.T) {
	ctx := context.Background()

	mgr := NewManager(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, mgr.Load(ctx))
	require.NoError(t, mgr.Validate(ctx))

	cfg := mgr.Get(ctx)
	assert.Equal(t, 3.0, cfg.Detectors.ZScore.Threshold)
}

func TestManager_LoadFromFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "turbinewatch.yaml")
	content := `
input:
  path: /data/readings.csv
detectors:
  zscore:
    threshold: 2.5
  isolation_forest:
    seed: 7
report:
  charts: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	mgr := NewManager(path)
	require.NoError(t, mgr.Load(ctx))
	cfg := mgr.Get(ctx)

	assert.Equal(t, "/data/readings.csv", cfg.Input.Path)
	assert.Equal(t, 2.5, cfg.Detectors.ZScore.Threshold)
	assert.Equal(t, int64(7), cfg.Detectors.IsolationForest.Seed)
	assert.False(t, cfg.Report.Charts)

	// Unset keys keep their defaults.
	assert.Equal(t, 0.02, cfg.Detectors.IsolationForest.Contamination)
	assert.Equal(t, "output", cfg.Report.OutputDir)
}

func TestManager_ReloadPicksUpFileChanges(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "turbinewatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("detectors:\n  zscore:\n    threshold: 2.5\n"), 0o644))

	mgr := NewManager(path)
	require.NoError(t, mgr.Load(ctx))
	require.Equal(t, 2.5, mgr.Get(ctx).Detectors.ZScore.Threshold)

	require.NoError(t, os.WriteFile(path, []byte("detectors:\n  zscore:\n    threshold: 4.5\n"), 0o644))
	require.NoError(t, mgr.Reload(ctx))
	assert.Equal(t, 4.5, mgr.Get(ctx).Detectors.ZScore.Threshold)
}

func TestManager_WatchDeliversUpdates(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "turbinewatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("detectors:\n  zscore:\n    threshold: 2.5\n"), 0o644))

	mgr := NewManager(path)
	require.NoError(t, mgr.Load(ctx))
	updates := mgr.Watch(ctx)

	require.NoError(t, os.WriteFile(path, []byte("detectors:\n  zscore:\n    threshold: 4.5\n"), 0o644))

	// The watcher may fire more than once per rewrite; wait for the value.
	deadline := time.After(10 * time.Second)
	for {
		select {
		case cfg := <-updates:
			if cfg.Detectors.ZScore.Threshold == 4.5 {
				return
			}
		case <-deadline:
			t.Fatal("no config update delivered after rewrite")
		}
	}
}

func TestManager_EnvOverride(t *testing.T) {
	ctx := context.Background()
	t.Setenv("TURBINEWATCH_DETECTORS_RESIDUAL_SIGMA", "4")

	mgr := NewManager("")
	require.NoError(t, mgr.Load(ctx))
	assert.Equal(t, 4.0, mgr.Get(ctx).Detectors.Residual.Sigma)
}
