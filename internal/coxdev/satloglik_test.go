package coxdev

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestComputeSatLoglik_AllDistinctEventsIsZero: with no tied events,
// every tie block has size one, so its weighted-status sum s is either
// 0 or the subject's own weight. With unit weights every s is 0 or 1,
// each -s*log(s) term vanishes, and the saturated log-likelihood is
// zero.
func TestComputeSatLoglik_AllDistinctEventsIsZero(t *testing.T) {
	bundle, err := Preprocess(nil, []float64{1, 2, 3, 4}, []float64{1, 1, 0, 1})
	require.NoError(t, err)
	weight := []float64{1, 1, 1, 1}
	buf := make([]float64, len(bundle.EventOrder)+1)

	loglikSat, err := ComputeSatLoglik(bundle.First, bundle.Last, weight, bundle.EventOrder, bundle.Status, buf)
	require.NoError(t, err)
	assert.InDelta(t, 0, loglikSat, 1e-12)
}

// TestComputeSatLoglik_TiedEventBlock hand-computes the saturated
// log-likelihood contribution from a single tie block of two
// simultaneous unit-weight failures: s = 2, contribution -s*log(s).
func TestComputeSatLoglik_TiedEventBlock(t *testing.T) {
	bundle, err := Preprocess(nil, []float64{1, 1}, []float64{1, 1})
	require.NoError(t, err)
	weight := []float64{1, 1}
	buf := make([]float64, len(bundle.EventOrder)+1)

	loglikSat, err := ComputeSatLoglik(bundle.First, bundle.Last, weight, bundle.EventOrder, bundle.Status, buf)
	require.NoError(t, err)
	assert.InDelta(t, -2*math.Log(2), loglikSat, 1e-9)
}

func TestComputeSatLoglik_ShapeMismatch(t *testing.T) {
	bundle, err := Preprocess(nil, []float64{1, 2}, []float64{1, 1})
	require.NoError(t, err)
	_, err = ComputeSatLoglik(bundle.First, bundle.Last, []float64{1, 1}, bundle.EventOrder, bundle.Status, make([]float64, 1))
	require.Error(t, err)
	var shapeErr *ErrShapeMismatch
	assert.ErrorAs(t, err, &shapeErr)
}
