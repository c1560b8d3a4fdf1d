package coxdev

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardPrework_BasicExponents(t *testing.T) {
	status := []float64{1, 0, 1, 1}
	wAvg := []float64{2, 2, 3, 3}
	scaling := []float64{0.5, 0.5, 1, 1}
	riskSums := []float64{4, 4, 2, 2}
	arg := []float64{1, 1, 1, 1}
	out := make([]float64, 4)

	require.NoError(t, ForwardPrework(status, wAvg, scaling, riskSums, 1, 1, out, arg, true))

	// GIVEN status*wAvg*scaling^1/riskSums^1*arg
	// WHEN i=1, j=1, useWAvg=true
	// THEN each entry matches the closed-form expression directly
	expected := []float64{
		1 * 2 * 0.5 / 4,
		0,
		1 * 3 * 1 / 2,
		1 * 3 * 1 / 2,
	}
	for i := range expected {
		assert.InDelta(t, expected[i], out[i], 1e-12)
	}
}

func TestForwardPrework_ZeroExponentIsIdentity(t *testing.T) {
	status := []float64{1, 1}
	wAvg := []float64{1, 1}
	scaling := []float64{0.7, 0.3}
	riskSums := []float64{5, 5}
	out := make([]float64, 2)

	require.NoError(t, ForwardPrework(status, wAvg, scaling, riskSums, 0, 0, out, nil, false))
	assert.Equal(t, []float64{1, 1}, out)
}

func TestForwardPrework_AbsentArgOmittedFromProduct(t *testing.T) {
	status := []float64{1}
	wAvg := []float64{1}
	scaling := []float64{1}
	riskSums := []float64{2}
	out := make([]float64, 1)

	require.NoError(t, ForwardPrework(status, wAvg, scaling, riskSums, 0, 1, out, nil, false))
	assert.InDelta(t, 0.5, out[0], 1e-12)
}

func TestForwardPrework_ShapeMismatch(t *testing.T) {
	status := []float64{1, 1}
	wAvg := []float64{1, 1}
	scaling := []float64{1, 1}
	riskSums := []float64{1, 1}
	out := make([]float64, 2)
	badArg := []float64{1}

	err := ForwardPrework(status, wAvg, scaling, riskSums, 0, 1, out, badArg, false)
	require.Error(t, err)
	var shapeErr *ErrShapeMismatch
	assert.ErrorAs(t, err, &shapeErr)
}
