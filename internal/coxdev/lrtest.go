package coxdev

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// LikelihoodRatioResult is the outcome of comparing two nested Cox
// fits by their deviance.
type LikelihoodRatioResult struct {
	Statistic float64
	DF        float64
	PValue    float64
}

// LikelihoodRatioTest compares a reduced model's deviance against a
// full model's deviance with df extra parameters, returning the
// chi-squared likelihood-ratio statistic and its p-value. Deviance is
// already -2*loglik plus a constant (the saturated log-likelihood)
// that cancels between the two fits, so the statistic is simply their
// difference.
func LikelihoodRatioTest(reducedDeviance, fullDeviance, df float64) LikelihoodRatioResult {
	stat := reducedDeviance - fullDeviance
	if stat < 0 {
		stat = 0
	}
	dist := distuv.ChiSquared{K: df}
	return LikelihoodRatioResult{
		Statistic: stat,
		DF:        df,
		PValue:    1 - dist.CDF(stat),
	}
}
