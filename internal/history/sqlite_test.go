package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_SaveAndList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	started := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	rec := &Record{
		RunID:        "run-1",
		InputPath:    "data/gas_turbine.csv",
		StartedAt:    started,
		FinishedAt:   started.Add(30 * time.Second),
		Rows:         7158,
		Anomalies:    212,
		ZCount:       96,
		IsoCount:     144,
		ResCount:     31,
		MissingSkips: 12,
		Degraded:     []string{"residual: target feature TEY not present"},
	}
	require.NoError(t, store.SaveRun(ctx, rec))

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, rec.RunID, got.RunID)
	assert.Equal(t, rec.InputPath, got.InputPath)
	assert.Equal(t, rec.Rows, got.Rows)
	assert.Equal(t, rec.Anomalies, got.Anomalies)
	assert.Equal(t, rec.ZCount, got.ZCount)
	assert.Equal(t, rec.IsoCount, got.IsoCount)
	assert.Equal(t, rec.ResCount, got.ResCount)
	assert.Equal(t, rec.MissingSkips, got.MissingSkips)
	assert.Equal(t, rec.Degraded, got.Degraded)
	assert.True(t, rec.StartedAt.Equal(got.StartedAt))
}

func TestSQLiteStore_ListOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.SaveRun(ctx, &Record{
			RunID:      string(rune('a' + i)),
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + time.Second),
		}))
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].RunID)
	assert.Equal(t, "b", runs[1].RunID)
}

func TestSQLiteStore_NoDegradedRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	now := time.Now().UTC()
	require.NoError(t, store.SaveRun(ctx, &Record{
		RunID:      "clean",
		StartedAt:  now,
		FinishedAt: now,
	}))

	runs, err := store.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].Degraded)
}

func TestSQLiteStore_Ping(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
