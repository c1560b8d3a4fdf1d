package coxdev

// SumOverRiskSet computes, for each event k in event order, the sum of
// v (given in natural order) over the risk set R(k):
//
//	riskSum[k] = sum_{i in R(k)} v[i]
//
// eventCumsum and startCumsum are length n+1 reverse-cumsum scratch
// buffers (startCumsum unused when the dataset has no start times).
// When efron is true, the tied-event Efron correction is applied using
// scaling.
func SumOverRiskSet(v []float64, b *IndexBundle, efron bool, eventCumsum, startCumsum, riskSum []float64) error {
	n := len(v)
	haveStart := len(b.EventMap) > 0

	if err := ReverseCumsums(v, eventCumsum, startCumsum, b.EventOrder, b.StartOrder, true, haveStart); err != nil {
		return err
	}
	if len(riskSum) != n {
		return &ErrShapeMismatch{Op: "SumOverRiskSet", Field: "riskSum", Got: len(riskSum), Expected: n}
	}

	if haveStart {
		for k := 0; k < n; k++ {
			riskSum[k] = eventCumsum[b.First[k]] - startCumsum[b.EventMap[k]]
		}
	} else {
		for k := 0; k < n; k++ {
			riskSum[k] = eventCumsum[b.First[k]]
		}
	}

	if efron {
		for k := 0; k < n; k++ {
			riskSum[k] -= (eventCumsum[b.First[k]] - eventCumsum[b.Last[k]+1]) * b.Scaling[k]
		}
	}
	return nil
}
