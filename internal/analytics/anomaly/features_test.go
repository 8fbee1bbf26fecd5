package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_CandidateOrderPreserved(t *testing.T) {
	// Table order deliberately differs from candidate order.
	tbl := newTable(t, []string{"CO", "TIT", "AT", "TEY"},
		[]float64{1}, []float64{2}, []float64{3}, []float64{4})

	feats, err := Resolve(tbl)
	require.NoError(t, err)

	assert.Equal(t, []string{"TIT", "TEY", "CO"}, feats.Detection)
	assert.Equal(t, []string{"AT"}, feats.Predictors)
	assert.True(t, feats.HasTarget)
}

func TestResolve_ExtraColumnsIgnored(t *testing.T) {
	tbl := newTable(t, []string{"TIT", "ambient_noise"}, []float64{1}, []float64{2})

	feats, err := Resolve(tbl)
	require.NoError(t, err)
	assert.Equal(t, []string{"TIT"}, feats.Detection)
	assert.Empty(t, feats.Predictors)
	assert.False(t, feats.HasTarget)
}

func TestResolve_NoUsableFeatures(t *testing.T) {
	tbl := newTable(t, []string{"foo", "bar"}, []float64{1}, []float64{2})

	_, err := Resolve(tbl)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoUsableFeatures)
}
