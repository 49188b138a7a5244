// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package nn

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// Activation is an element-wise nonlinearity.
type Activation int

const (
	// ReLU is max(0, x).
	ReLU Activation = iota
	// GELU is x * Phi(x), the exact (erf) form.
	GELU
)

// ParseActivation maps "relu" or "gelu" to an Activation.
func ParseActivation(name string) (Activation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "relu", "":
		return ReLU, nil
	case "gelu":
		return GELU, nil
	default:
		return ReLU, fmt.Errorf("unknown activation %q", name)
	}
}

// String returns the configuration name of the activation.
func (a Activation) String() string {
	if a == GELU {
		return "gelu"
	}
	return "relu"
}

// Apply returns f(x).
func (a Activation) Apply(x float64) float64 {
	if a == GELU {
		return 0.5 * x * (1 + math.Erf(x/math.Sqrt2))
	}
	if x > 0 {
		return x
	}
	return 0
}

// Derivative returns f'(x).
func (a Activation) Derivative(x float64) float64 {
	if a == GELU {
		cdf := 0.5 * (1 + math.Erf(x/math.Sqrt2))
		pdf := math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
		return cdf + x*pdf
	}
	if x > 0 {
		return 1
	}
	return 0
}

// ApplyMatrix returns a new matrix with f applied to every element of z.
func (a Activation) ApplyMatrix(z *Matrix) *Matrix {
	out := NewMatrix(z.Rows, z.Cols)
	for i, v := range z.Data {
		out.Data[i] = a.Apply(v)
	}
	return out
}

// DropoutMask samples an inverted-dropout mask: each entry is 0 with
// probability p and 1/(1-p) otherwise. A nil mask means identity.
func DropoutMask(rng *rand.Rand, n int, p float64) []float64 {
	if p <= 0 || rng == nil {
		return nil
	}
	scale := 1 / (1 - p)
	mask := make([]float64, n)
	for i := range mask {
		if rng.Float64() >= p {
			mask[i] = scale
		}
	}
	return mask
}

// ApplyMask multiplies m element-wise by mask in place. A nil mask is a no-op.
func ApplyMask(m *Matrix, mask []float64) {
	if mask == nil {
		return
	}
	for i := range m.Data {
		m.Data[i] *= mask[i]
	}
}
