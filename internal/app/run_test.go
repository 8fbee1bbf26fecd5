package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turbinewatch/turbinewatch/internal/analytics/anomaly"
	"github.com/turbinewatch/turbinewatch/internal/config"
	"github.com/turbinewatch/turbinewatch/internal/history"
)

// writeFixtureCSV produces a readings file with a clear TIT spike on the
// last row and a TEY column tracking AT.
func writeFixtureCSV(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("TIT,AT,TEY\n")
	for i := 0; i < 24; i++ {
		fmt.Fprintf(&b, "%d,%d,%d\n", 500+i%3, i, 2*i+10+i%5)
	}
	b.WriteString("950,24,58\n")

	path := filepath.Join(dir, "readings.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func fixtureConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Input.Path = writeFixtureCSV(t, dir)
	cfg.Report.OutputDir = filepath.Join(dir, "out")
	cfg.Report.Charts = false
	cfg.History.Path = filepath.Join(dir, "history.db")
	return cfg
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := fixtureConfig(t)

	summary, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 25, summary.Rows)
	assert.GreaterOrEqual(t, summary.Anomalies, 1)
	assert.Empty(t, summary.Degraded)
	assert.FileExists(t, filepath.Join(cfg.Report.OutputDir, "anomaly_report.csv"))

	store, err := history.NewSQLiteStore(cfg.History.Path)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, summary.RunID, runs[0].RunID)
}

func TestRun_HistoryDisabled(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.History.Enabled = false

	_, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.NoFileExists(t, cfg.History.Path)
}

func TestRun_NoUsableFeaturesProducesNoOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "readings.csv")
	require.NoError(t, os.WriteFile(path, []byte("pressure,volume\n1,2\n3,4\n"), 0o644))

	cfg := config.DefaultConfig()
	cfg.Input.Path = path
	cfg.Report.OutputDir = filepath.Join(dir, "out")
	cfg.History.Path = filepath.Join(dir, "history.db")

	_, err := Run(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, anomaly.ErrNoUsableFeatures)
	assert.NoFileExists(t, filepath.Join(cfg.Report.OutputDir, "anomaly_report.csv"))
}

func TestRun_MissingInputIsFatal(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Input.Path = filepath.Join(t.TempDir(), "absent.csv")

	_, err := Run(context.Background(), cfg, nil)
	require.Error(t, err)
}
