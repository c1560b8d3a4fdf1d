package coxdev

// Workspace holds every scratch buffer CoxDev needs to compute a
// deviance, gradient or Hessian-vector product without allocating.
// It is sized once from the dataset length at construction and then
// reused, synchronously and single-threaded, across calls. The only
// buffers whose contents outlive a call are the ones CoxDev.Update
// fills with its cached state (EventReorder, RiskSum[0] and
// ForwardScratch); no buffer is shared across goroutines.
//
// The field names describe role, not array index, deliberately:
// offset-indexed buffer lists are how the reference implementation
// this package is modelled on threads scratch space through its
// kernels, and naming each slot turns an easy off-by-one into a
// compile-time field typo instead.
type Workspace struct {
	n int

	// EventReorder holds the event-order copies cached by
	// CoxDev.Update: eta, sample weight and exp(eta)*weight, in that
	// slot order.
	EventReorder [3][]float64

	// RiskSum holds length n per-event sums: slot 0 the risk sums
	// cached by CoxDev.Update, slot 1 per-call scratch for the risk-set
	// and event sums formed by Gradient, HessianMatvec and DiagHessian.
	RiskSum [2][]float64

	// ForwardCumsum holds length n+1 forward-cumsum accumulators.
	ForwardCumsum [5][]float64

	// ReverseCumsum holds length n+1 reverse-cumsum accumulators, used
	// in pairs (event-order, start-order) by sum_over_risk_set.
	ReverseCumsum [4][]float64

	// ForwardScratch holds the tie-block average weight (wAvg) cached
	// by CoxDev.Update.
	ForwardScratch []float64

	// HessMatvec is a length n per-call scratch buffer: HessianMatvec's
	// event-order copy of its argument and result, DiagHessian's
	// forward_prework staging vector, and the scatter scratch for
	// Gradient.
	HessMatvec []float64

	// GradEvent holds the event-order gradient before Gradient
	// scatters it back to natural order; HessianMatvec and DiagHessian
	// reuse it as per-call scratch.
	GradEvent []float64
}

// NewWorkspace allocates a Workspace sized for a dataset of n
// subjects. Buffers are allocated once here and never grown; callers
// that need a larger dataset must build a new Workspace.
func NewWorkspace(n int) *Workspace {
	w := &Workspace{n: n}
	for i := range w.EventReorder {
		w.EventReorder[i] = make([]float64, n)
	}
	for i := range w.RiskSum {
		w.RiskSum[i] = make([]float64, n)
	}
	for i := range w.ForwardCumsum {
		w.ForwardCumsum[i] = make([]float64, n+1)
	}
	for i := range w.ReverseCumsum {
		w.ReverseCumsum[i] = make([]float64, n+1)
	}
	w.ForwardScratch = make([]float64, n)
	w.HessMatvec = make([]float64, n)
	w.GradEvent = make([]float64, n)
	return w
}

// N returns the subject count this workspace was sized for.
func (w *Workspace) N() int { return w.n }
