// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package nn

import "math"

// AdamWConfig holds optimizer hyperparameters.
type AdamWConfig struct {
	// LearningRate is the step size.
	// Default: 0.001
	LearningRate float64

	// WeightDecay is the decoupled L2 decay coefficient.
	// Default: 1e-4
	WeightDecay float64

	// Beta1 is the first-moment decay.
	// Default: 0.9
	Beta1 float64

	// Beta2 is the second-moment decay.
	// Default: 0.999
	Beta2 float64

	// Epsilon guards the denominator.
	// Default: 1e-8
	Epsilon float64
}

// DefaultAdamWConfig returns the standard AdamW settings.
func DefaultAdamWConfig() AdamWConfig {
	return AdamWConfig{
		LearningRate: 0.001,
		WeightDecay:  1e-4,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
	}
}

// AdamW implements Adam with decoupled weight decay (Loshchilov & Hutter).
type AdamW struct {
	config AdamWConfig
	params []*Param
	m      [][]float64
	v      [][]float64
	step   int
}

// NewAdamW creates an optimizer over params.
func NewAdamW(params []*Param, cfg AdamWConfig) *AdamW {
	def := DefaultAdamWConfig()
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	if cfg.Beta1 <= 0 {
		cfg.Beta1 = def.Beta1
	}
	if cfg.Beta2 <= 0 {
		cfg.Beta2 = def.Beta2
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = def.Epsilon
	}

	opt := &AdamW{
		config: cfg,
		params: params,
		m:      make([][]float64, len(params)),
		v:      make([][]float64, len(params)),
	}
	for i, p := range params {
		opt.m[i] = make([]float64, len(p.Value.Data))
		opt.v[i] = make([]float64, len(p.Value.Data))
	}
	return opt
}

// Step applies one update using the accumulated gradients.
func (o *AdamW) Step() {
	o.step++
	c := o.config
	bc1 := 1 - math.Pow(c.Beta1, float64(o.step))
	bc2 := 1 - math.Pow(c.Beta2, float64(o.step))
	decay := 1 - c.LearningRate*c.WeightDecay

	for pi, p := range o.params {
		m, v := o.m[pi], o.v[pi]
		val, grad := p.Value.Data, p.Grad.Data
		for i, g := range grad {
			val[i] *= decay
			m[i] = c.Beta1*m[i] + (1-c.Beta1)*g
			v[i] = c.Beta2*v[i] + (1-c.Beta2)*g*g
			mHat := m[i] / bc1
			vHat := v[i] / bc2
			val[i] -= c.LearningRate * mHat / (math.Sqrt(vHat) + c.Epsilon)
		}
	}
}

// ZeroGrad clears the gradients of the optimized parameters.
func (o *AdamW) ZeroGrad() {
	ZeroGrad(o.params)
}

// Steps returns the number of updates applied so far.
func (o *AdamW) Steps() int {
	return o.step
}

// LearningRate returns the current step size.
func (o *AdamW) LearningRate() float64 {
	return o.config.LearningRate
}

// SetLearningRate changes the step size for subsequent updates.
func (o *AdamW) SetLearningRate(lr float64) {
	o.config.LearningRate = lr
}
