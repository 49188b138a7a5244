// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package nn

import (
	"math"
	"math/rand"
)

// Linear is an affine layer y = x W^T + b with W of shape out x in.
type Linear struct {
	In   int
	Out  int
	W    *Param
	B    *Param
	bias bool
}

// NewLinear creates a layer with Kaiming-uniform weights, matching the usual
// default initialization of fully connected layers. Biases start at zero.
func NewLinear(name string, in, out int, bias bool, rng *rand.Rand) *Linear {
	l := &Linear{
		In:   in,
		Out:  out,
		W:    NewParam(name+".weight", out, in),
		bias: bias,
	}
	bound := 1 / math.Sqrt(float64(in))
	l.W.Value.FillUniform(rng, bound)
	if bias {
		l.B = NewParam(name+".bias", 1, out)
	}
	return l
}

// Params returns the trainable parameters of the layer.
func (l *Linear) Params() []*Param {
	if l.bias {
		return []*Param{l.W, l.B}
	}
	return []*Param{l.W}
}

// Forward computes x W^T + b for every row of x.
func (l *Linear) Forward(x *Matrix) *Matrix {
	y := NewMatrix(x.Rows, l.Out)
	l.ForwardInto(y, x)
	return y
}

// ForwardInto accumulates x W^T + b into y.
func (l *Linear) ForwardInto(y, x *Matrix) {
	MulABt(y, x, l.W.Value)
	if l.bias {
		b := l.B.Value.Data
		for i := 0; i < y.Rows; i++ {
			Axpy(1, b, y.Row(i))
		}
	}
}

// Backward accumulates parameter gradients for the forward call that consumed x
// and produced an output whose gradient is dy. It returns dL/dx.
func (l *Linear) Backward(x, dy *Matrix) *Matrix {
	MulAtB(l.W.Grad, dy, x)
	if l.bias {
		g := l.B.Grad.Data
		for i := 0; i < dy.Rows; i++ {
			Axpy(1, dy.Row(i), g)
		}
	}
	dx := NewMatrix(dy.Rows, l.In)
	MulAB(dx, dy, l.W.Value)
	return dx
}
