package coxdev

import "math"

// ComputeSatLoglik computes the saturated Cox partial log-likelihood
// used to normalise the deviance. weight is in natural order; first,
// last, eventOrder and status are in event order. wStatusBuf is a
// length n+1 scratch buffer for the forward cumsum of status*weight.
func ComputeSatLoglik(first, last []int, weight []float64, eventOrder []int, status []float64, wStatusBuf []float64) (float64, error) {
	n := len(eventOrder)
	if len(first) != n || len(last) != n || len(status) != n {
		return 0, &ErrShapeMismatch{Op: "ComputeSatLoglik", Field: "first/last/status", Got: len(first), Expected: n}
	}
	if len(wStatusBuf) != n+1 {
		return 0, &ErrShapeMismatch{Op: "ComputeSatLoglik", Field: "wStatusBuf", Got: len(wStatusBuf), Expected: n + 1}
	}

	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = weight[eventOrder[i]] * status[i]
	}
	if err := ForwardCumsum(x, wStatusBuf); err != nil {
		return 0, err
	}

	loglikSat := 0.0
	prevFirst := -1
	for k := 0; k < n; k++ {
		f := first[k]
		s := wStatusBuf[last[k]+1] - wStatusBuf[f]
		if s > 0 && f != prevFirst {
			loglikSat -= s * math.Log(s)
		}
		prevFirst = f
	}
	return loglikSat, nil
}
