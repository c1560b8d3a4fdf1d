package coxdev

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// HessianMatvec returns H*v in natural order, where H is the Hessian
// of the deviance with respect to eta at the linear predictor passed
// to the last Deviance call. Within each risk set the partial
// likelihood behaves like a softmax log-likelihood, so the action of
// H on v decomposes into a diagonal term and a risk-set-weighted
// correction:
//
//	(Hv)_i = 2 * expW_i * [ S1_i * v_i - S2_i ]
//
// where S1 sums status*wAvg/riskSums over every risk set containing
// i, and S2 sums status*wAvg/riskSums^2 * (sum_over_risk_set of
// expW.*v) over the same risk sets — the second term is the
// transpose, via SumOverEvents, of a SumOverRiskSet applied to expW.*v
// instead of expW alone.
func (c *CoxDev) HessianMatvec(v []float64) ([]float64, error) {
	if !c.updated {
		return nil, ErrNotUpdated
	}
	n := len(c.bundle.First)
	if len(v) != n {
		return nil, &ErrShapeMismatch{Op: "CoxDev.HessianMatvec", Field: "v", Got: len(v), Expected: n}
	}
	ws := c.ws

	// Buffer plan: everything below is drawn from the free scratch
	// pool (ForwardCumsum, ReverseCumsum, RiskSum[1], HessMatvec,
	// GradEvent); EventReorder[0..2], RiskSum[0] and ForwardScratch
	// hold the etaEvent/weightEvent/expW/riskSums/wAvg state cached by
	// Update and must survive repeated Gradient/HessianMatvec calls
	// against the same eta.
	vEvent := ws.HessMatvec
	if err := ToEventFromNative(v, c.bundle.EventOrder, vEvent); err != nil {
		return nil, err
	}

	expWv := ws.ForwardCumsum[0][:n]
	for k := range expWv {
		expWv[k] = c.expW[k] * vEvent[k]
	}
	rsv := ws.RiskSum[1]
	if err := SumOverRiskSet(expWv, c.bundle, c.efron, ws.ReverseCumsum[2], ws.ReverseCumsum[3], rsv); err != nil {
		return nil, err
	}

	s1term := ws.ForwardCumsum[1][:n]
	if err := ForwardPrework(c.bundle.Status, c.wAvg, c.bundle.Scaling, c.riskSums, 0, 1, s1term, nil, true); err != nil {
		return nil, err
	}
	s2term := ws.ForwardCumsum[2][:n]
	if err := ForwardPrework(c.bundle.Status, c.wAvg, c.bundle.Scaling, c.riskSums, 0, 2, s2term, rsv, true); err != nil {
		return nil, err
	}

	s1sum := ws.GradEvent
	if err := SumOverEvents(s1term, c.bundle, c.efron, ws.ForwardCumsum[3], ws.ForwardCumsum[4], ws.ReverseCumsum[0][:n], s1sum); err != nil {
		return nil, err
	}
	s2sum := ws.RiskSum[1] // rsv's last read was building s2term above; safe to reuse
	if err := SumOverEvents(s2term, c.bundle, c.efron, ws.ForwardCumsum[3], ws.ForwardCumsum[4], ws.ReverseCumsum[0][:n], s2sum); err != nil {
		return nil, err
	}

	// Deviance is 2*(loglik_sat - loglik), so its Hessian is 2 times
	// the partial likelihood's (positive-semidefinite) observed
	// information matrix.
	hvEvent := vEvent // vEvent's last read is this loop; safe to reuse as output
	for k := range hvEvent {
		hvEvent[k] = 2 * c.expW[k] * (s1sum[k]*vEvent[k] - s2sum[k])
	}
	hvNative := make([]float64, n)
	copy(hvNative, hvEvent)
	if err := ToNativeFromEvent(hvNative, c.bundle.EventOrder, ws.ForwardCumsum[1][:n]); err != nil {
		return nil, err
	}
	return hvNative, nil
}

// DiagHessian returns, in natural order, the diagonal of the Hessian
// of the deviance at the linear predictor passed to the last Deviance
// call, in O(n) time. Unlike HessianMatvec/DenseHessian it needs no
// caller-supplied vector: the diagonal depends only on the cached
// per-event moments T1, T2, built from forward_prework/forward_cumsum
// the same way cox_dev builds them (A_01/A_02, and for Efron
// A_11/A_21/A_22), not on an arbitrary probe vector.
func (c *CoxDev) DiagHessian() ([]float64, error) {
	if !c.updated {
		return nil, ErrNotUpdated
	}
	n := len(c.bundle.First)
	ws := c.ws
	haveStart := c.bundle.HaveStartTimes()

	// Buffer plan: stage is the free length-n scratch HessianMatvec
	// also uses; C01..C22 are the free ForwardCumsum slots (exactly
	// five, one per A_ij the Efron branch needs); t1/t2 borrow the
	// free RiskSum[1]/GradEvent buffers. None of these overlap the
	// cached etaEvent/weightEvent/expW/riskSums/wAvg state.
	stage := ws.HessMatvec
	moment := func(i, j int, cumOut []float64) error {
		if err := ForwardPrework(c.bundle.Status, c.wAvg, c.bundle.Scaling, c.riskSums, i, j, stage, nil, true); err != nil {
			return err
		}
		return ForwardCumsum(stage, cumOut)
	}

	c01, c02 := ws.ForwardCumsum[0], ws.ForwardCumsum[1]
	if err := moment(0, 1, c01); err != nil {
		return nil, err
	}
	if err := moment(0, 2, c02); err != nil {
		return nil, err
	}

	t1, t2 := ws.RiskSum[1], ws.GradEvent
	if !c.efron {
		for k := 0; k < n; k++ {
			l := c.bundle.Last[k]
			t1[k] = c01[l+1]
			t2[k] = c02[l+1]
			if haveStart {
				t1[k] -= c01[c.bundle.StartMap[k]]
				t2[k] -= c02[c.bundle.StartMap[k]]
			}
		}
	} else {
		c11, c21, c22 := ws.ForwardCumsum[2], ws.ForwardCumsum[3], ws.ForwardCumsum[4]
		if err := moment(1, 1, c11); err != nil {
			return nil, err
		}
		// c21 accumulates scaling/riskSums^2, the cross term of
		// (1-scaling)^2/riskSums^2.
		if err := moment(1, 2, c21); err != nil {
			return nil, err
		}
		if err := moment(2, 2, c22); err != nil {
			return nil, err
		}
		for k := 0; k < n; k++ {
			f, l := c.bundle.First[k], c.bundle.Last[k]
			t1[k] = c01[l+1] - (c11[l+1] - c11[f])
			t2[k] = (c22[l+1] - c22[f]) - 2*(c21[l+1]-c21[f]) + c02[l+1]
		}
		if haveStart {
			for k := 0; k < n; k++ {
				t1[k] -= c01[c.bundle.StartMap[k]]
				t2[k] -= c02[c.bundle.StartMap[k]]
			}
		}
	}

	// Deviance is 2*(loglik_sat - loglik); diag_hessian follows the
	// same -2 convention as Gradient's score.
	diagHessEvent := t2
	for k := 0; k < n; k++ {
		diagPart := c.expW[k] * t1[k]
		diagHessEvent[k] = -2 * (c.expW[k]*c.expW[k]*t2[k] - diagPart)
	}
	diagHessNative := make([]float64, n)
	copy(diagHessNative, diagHessEvent)
	if err := ToNativeFromEvent(diagHessNative, c.bundle.EventOrder, stage); err != nil {
		return nil, err
	}
	c.tracer.TraceVector("CoxDev.DiagHessian", "diag_hessian", diagHessNative)
	return diagHessNative, nil
}

// DenseHessian materialises the full n x n Hessian at the linear
// predictor passed to the last Deviance call by applying
// HessianMatvec to each standard basis vector. It exists for small
// diagnostic fits and tests, not for use inside an optimiser's inner
// loop.
func (c *CoxDev) DenseHessian() (*mat.SymDense, error) {
	if !c.updated {
		return nil, ErrNotUpdated
	}
	n := len(c.bundle.First)
	h := mat.NewSymDense(n, nil)
	e := make([]float64, n)
	for j := 0; j < n; j++ {
		e[j] = 1
		col, err := c.HessianMatvec(e)
		if err != nil {
			return nil, err
		}
		e[j] = 0
		for i := j; i < n; i++ {
			h.SetSym(i, j, col[i])
		}
	}
	return h, nil
}

// IsPositiveSemidefinite reports whether the dense Hessian is PSD, as
// it must be at any finite eta since the Cox partial likelihood is
// concave. The Cox Hessian is singular (adding a constant to eta leaves
// the deviance unchanged), so the Cholesky factorisation is applied to
// h shifted by a ridge of 1e-10*(1+max|h_ii|) on the diagonal;
// eigenvalues down to minus that ridge are accepted as zero.
func IsPositiveSemidefinite(h *mat.SymDense) bool {
	n := h.SymmetricDim()
	maxDiag := 0.0
	for i := 0; i < n; i++ {
		maxDiag = math.Max(maxDiag, math.Abs(h.At(i, i)))
	}
	ridge := 1e-10 * (1 + maxDiag)
	shifted := mat.NewSymDense(n, nil)
	shifted.CopySym(h)
	for i := 0; i < n; i++ {
		shifted.SetSym(i, i, shifted.At(i, i)+ridge)
	}
	var chol mat.Cholesky
	return chol.Factorize(shifted)
}
