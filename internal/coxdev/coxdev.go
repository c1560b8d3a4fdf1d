package coxdev

import (
	"errors"
	"math"
)

// ErrNotUpdated is returned by Gradient and HessianMatvec when called
// before a successful Deviance (or Update) call has populated the
// cached sufficient statistics they read.
var ErrNotUpdated = errors.New("coxdev: CoxDev has no cached linear predictor; call Deviance first")

// CoxDev evaluates the Cox partial-likelihood deviance, its gradient
// and its Hessian-vector product at a caller-supplied linear
// predictor, against a dataset whose permutation and tie structure
// has already been computed once by Preprocess. A CoxDev is not safe
// for concurrent use: it owns a single Workspace and mutates it on
// every call.
type CoxDev struct {
	bundle    *IndexBundle
	ws        *Workspace
	loglikSat float64
	efron     bool
	tracer    Tracer

	updated    bool
	etaEvent   []float64
	weightEvent []float64
	expW       []float64
	riskSums   []float64
	wAvg       []float64
}

// NewCoxDev builds a CoxDev from a preprocessed index bundle. weight
// is the natural-order sample weight vector used to compute the
// saturated log-likelihood once, up front; efron selects the tied-
// event correction used by every subsequent Deviance/Gradient/
// HessianMatvec call.
func NewCoxDev(bundle *IndexBundle, weight []float64, efron bool, tracer Tracer) (*CoxDev, error) {
	n := len(bundle.First)
	if len(weight) != n {
		return nil, &ErrShapeMismatch{Op: "NewCoxDev", Field: "weight", Got: len(weight), Expected: n}
	}
	if tracer == nil {
		tracer = noopTracer{}
	}
	ws := NewWorkspace(n)
	loglikSat, err := ComputeSatLoglik(bundle.First, bundle.Last, weight, bundle.EventOrder, bundle.Status, ws.ForwardCumsum[0])
	if err != nil {
		return nil, err
	}
	tracer.TraceScalar("NewCoxDev", "loglik_sat", loglikSat)
	return &CoxDev{
		bundle:    bundle,
		ws:        ws,
		loglikSat: loglikSat,
		efron:     efron,
		tracer:    tracer,
	}, nil
}

// Update reorders eta and sampleWeight into event order and recomputes
// the risk sums and tie-block average weight that Deviance, Gradient
// and HessianMatvec all read. It is split out from Deviance so that a
// caller that needs more than the deviance value at a given eta (a
// gradient, say, for an optimizer step) pays the setup cost once.
func (c *CoxDev) Update(eta, sampleWeight []float64) error {
	n := len(c.bundle.First)
	if len(eta) != n {
		return &ErrShapeMismatch{Op: "CoxDev.Update", Field: "eta", Got: len(eta), Expected: n}
	}
	if len(sampleWeight) != n {
		return &ErrShapeMismatch{Op: "CoxDev.Update", Field: "sampleWeight", Got: len(sampleWeight), Expected: n}
	}
	for i, e := range eta {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return &DomainError{Op: "CoxDev.Update", Index: i, Msg: "eta is not finite"}
		}
	}

	ws := c.ws
	etaEvent := ws.EventReorder[0]
	weightEvent := ws.EventReorder[1]
	expW := ws.EventReorder[2]
	if err := ToEventFromNative(eta, c.bundle.EventOrder, etaEvent); err != nil {
		return err
	}
	if err := ToEventFromNative(sampleWeight, c.bundle.EventOrder, weightEvent); err != nil {
		return err
	}
	for k := range expW {
		expW[k] = weightEvent[k] * math.Exp(etaEvent[k])
	}

	riskSums := ws.RiskSum[0]
	if err := SumOverRiskSet(expW, c.bundle, c.efron, ws.ReverseCumsum[0], ws.ReverseCumsum[1], riskSums); err != nil {
		return err
	}
	for k, s := range c.bundle.Status {
		if s != 0 && riskSums[k] <= 0 {
			return &DomainError{Op: "CoxDev.Update", Index: k, Msg: "non-positive risk sum at an event"}
		}
	}

	wAvg := ws.ForwardScratch
	if err := ForwardCumsum(weightEvent, ws.ForwardCumsum[0]); err != nil {
		return err
	}
	for k := range wAvg {
		blockSize := float64(c.bundle.Last[k] + 1 - c.bundle.First[k])
		wAvg[k] = (ws.ForwardCumsum[0][c.bundle.Last[k]+1] - ws.ForwardCumsum[0][c.bundle.First[k]]) / blockSize
	}

	c.etaEvent, c.weightEvent, c.expW, c.riskSums, c.wAvg = etaEvent, weightEvent, expW, riskSums, wAvg
	c.updated = true
	c.tracer.TraceVector("CoxDev.Update", "risk_sums", riskSums)
	return nil
}

// Deviance computes 2*(loglik_sat - loglik) at eta, caching the
// sufficient statistics needed by a following Gradient or
// HessianMatvec call at the same eta.
func (c *CoxDev) Deviance(eta, sampleWeight []float64) (float64, error) {
	if err := c.Update(eta, sampleWeight); err != nil {
		return 0, err
	}
	loglik := 0.0
	for k, s := range c.bundle.Status {
		if s == 0 {
			continue
		}
		loglik += c.weightEvent[k]*c.etaEvent[k] - c.wAvg[k]*math.Log(c.riskSums[k])
	}
	d := 2 * (c.loglikSat - loglik)
	c.tracer.TraceScalar("CoxDev.Deviance", "deviance", d)
	return d, nil
}

// Gradient returns, in natural order, the gradient of the deviance
// with respect to eta at the linear predictor passed to the last
// Deviance call.
func (c *CoxDev) Gradient() ([]float64, error) {
	if !c.updated {
		return nil, ErrNotUpdated
	}
	n := len(c.bundle.First)
	ws := c.ws

	term := ws.ForwardCumsum[1][:n] // status[k]*wAvg[k]/riskSums[k], event order
	if err := ForwardPrework(c.bundle.Status, c.wAvg, c.bundle.Scaling, c.riskSums, 0, 1, term, nil, true); err != nil {
		return nil, err
	}

	summed := ws.RiskSum[1]
	if err := SumOverEvents(term, c.bundle, c.efron, ws.ForwardCumsum[2], ws.ForwardCumsum[3], ws.ForwardCumsum[4][:n], summed); err != nil {
		return nil, err
	}

	// Deviance is 2*(loglik_sat - loglik), so its gradient is -2 times
	// the partial-likelihood score status*weight - expW*summed.
	gradEvent := ws.GradEvent
	for k := range gradEvent {
		gradEvent[k] = -2 * (c.bundle.Status[k]*c.weightEvent[k] - c.expW[k]*summed[k])
	}
	// ToEventFromNative's inverse clobbers its scratch buffer; HessMatvec
	// is free here since HessianMatvec always rebuilds it before reading.
	if err := ToNativeFromEvent(gradEvent, c.bundle.EventOrder, ws.HessMatvec); err != nil {
		return nil, err
	}
	gradNative := make([]float64, n)
	copy(gradNative, gradEvent)
	c.tracer.TraceVector("CoxDev.Gradient", "gradient", gradNative)
	return gradNative, nil
}
