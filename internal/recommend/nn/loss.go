// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package nn

import "math"

// Sigmoid is the numerically stable logistic function.
func Sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// BCEWithLogits returns the binary cross-entropy of a raw logit against a
// {0,1} target and the gradient of that loss with respect to the logit.
func BCEWithLogits(logit, target float64) (loss, grad float64) {
	loss = math.Max(logit, 0) - logit*target + math.Log1p(math.Exp(-math.Abs(logit)))
	grad = Sigmoid(logit) - target
	return loss, grad
}
