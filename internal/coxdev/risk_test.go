package coxdev

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSumOverRiskSet_BreslowIgnoresTieScaling checks that the Breslow
// convention (efron=false) sums the full risk set regardless of tie
// structure, even when two subjects share a failure time.
func TestSumOverRiskSet_BreslowIgnoresTieScaling(t *testing.T) {
	bundle, err := Preprocess(nil, []float64{1, 1, 2}, []float64{1, 1, 1})
	require.NoError(t, err)

	v := []float64{1, 1, 1}
	riskSum := make([]float64, 3)
	require.NoError(t, SumOverRiskSet(v, bundle, false, make([]float64, 4), make([]float64, 4), riskSum))

	// THEN both members of the tied block see the full risk set of 3,
	// and the later singleton sees only itself.
	assert.InDeltaSlice(t, []float64{3, 3, 1}, riskSum, 1e-12)
}

// TestSumOverRiskSet_EfronAppliesFractionalScaling checks the Efron
// correction subtracts a scaling-weighted share of the tie block from
// each of its own members, leaving the singleton risk set untouched.
func TestSumOverRiskSet_EfronAppliesFractionalScaling(t *testing.T) {
	bundle, err := Preprocess(nil, []float64{1, 1, 2}, []float64{1, 1, 1})
	require.NoError(t, err)

	v := []float64{1, 1, 1}
	riskSum := make([]float64, 3)
	require.NoError(t, SumOverRiskSet(v, bundle, true, make([]float64, 4), make([]float64, 4), riskSum))

	// Tie block members have scaling 0 and 0.5 (from TestPreprocess_TiedEvents);
	// riskSum[k] = 3 - scaling[k]*(3-1).
	assert.InDeltaSlice(t, []float64{3, 2, 1}, riskSum, 1e-12)
}

func TestSumOverRiskSet_ShapeMismatch(t *testing.T) {
	bundle, err := Preprocess(nil, []float64{1, 2}, []float64{1, 1})
	require.NoError(t, err)

	err = SumOverRiskSet([]float64{1, 1}, bundle, false, make([]float64, 3), make([]float64, 3), make([]float64, 1))
	require.Error(t, err)
	var shapeErr *ErrShapeMismatch
	assert.ErrorAs(t, err, &shapeErr)
}
