package coxdev

// SumOverEvents computes, for each subject k in event order, the sum
// of w over every event whose risk set contains k:
//
//	y[k] = sum_{j : k in R(j)} w[j]
//
// This is the transpose of SumOverRiskSet and is the kernel behind
// the gradient and Hessian-vector-product accumulations: a forward
// cumsum running total, truncated below at a subject's own entry
// point via StartMap rather than by risk-set membership directly.
//
// forwardCumsum and scaledCumsum are length n+1 scratch buffers; tmp
// is a length n scratch buffer used only when efron is true.
func SumOverEvents(w []float64, b *IndexBundle, efron bool, forwardCumsum, scaledCumsum, tmp, out []float64) error {
	n := len(w)
	if len(out) != n {
		return &ErrShapeMismatch{Op: "SumOverEvents", Field: "out", Got: len(out), Expected: n}
	}
	if err := ForwardCumsum(w, forwardCumsum); err != nil {
		return err
	}

	haveStart := len(b.StartMap) > 0
	for k := 0; k < n; k++ {
		y := forwardCumsum[b.Last[k]+1]
		if haveStart {
			y -= forwardCumsum[b.StartMap[k]]
		}
		out[k] = y
	}

	if efron {
		if len(tmp) != n {
			return &ErrShapeMismatch{Op: "SumOverEvents", Field: "tmp", Got: len(tmp), Expected: n}
		}
		for i := 0; i < n; i++ {
			tmp[i] = w[i] * b.Scaling[i]
		}
		if err := ForwardCumsum(tmp, scaledCumsum); err != nil {
			return err
		}
		for k := 0; k < n; k++ {
			out[k] -= scaledCumsum[b.Last[k]+1] - scaledCumsum[b.First[k]]
		}
	}
	return nil
}
