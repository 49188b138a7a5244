// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package reranking

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/nn"
)

// ErrNonFinite is returned when the network produces NaN or Inf.
var ErrNonFinite = errors.New("reranking: non-finite score")

// Reranker is a feed-forward scorer over a base score and a context vector.
type Reranker struct {
	cfg    recommend.RerankerConfig
	hidden []*nn.Linear
	out    *nn.Linear
}

// New creates a re-ranker with weights drawn from seed.
func New(cfg recommend.RerankerConfig, seed int64) *Reranker {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic initialization, not security-sensitive
	r := &Reranker{cfg: cfg}
	in := 1 + cfg.ContextDim
	for i, h := range cfg.HiddenDims {
		r.hidden = append(r.hidden, nn.NewLinear(fmt.Sprintf("mlp.%d", i), in, h, true, rng))
		in = h
	}
	r.out = nn.NewLinear("mlp.out", in, 1, true, rng)
	return r
}

// Config returns the re-ranker configuration.
func (r *Reranker) Config() recommend.RerankerConfig {
	return r.cfg
}

// ContextDim returns the expected context vector length.
func (r *Reranker) ContextDim() int {
	return r.cfg.ContextDim
}

// Params returns the trainable parameters in a stable order.
func (r *Reranker) Params() []*nn.Param {
	var params []*nn.Param
	for _, l := range r.hidden {
		params = append(params, l.Params()...)
	}
	return append(params, r.out.Params()...)
}

// StateDict returns a copy of all parameters keyed by name.
func (r *Reranker) StateDict() map[string]nn.Tensor {
	return nn.StateDict(r.Params())
}

// LoadStateDict replaces all parameters from state.
func (r *Reranker) LoadStateDict(state map[string]nn.Tensor) error {
	return nn.LoadStateDict(r.Params(), state)
}

// input assembles the [base, context...] matrix.
func (r *Reranker) input(base []float64, contexts [][]float64) (*nn.Matrix, error) {
	if len(base) != len(contexts) {
		return nil, fmt.Errorf("reranking: %d scores for %d contexts", len(base), len(contexts))
	}
	x := nn.NewMatrix(len(base), 1+r.cfg.ContextDim)
	for i := range base {
		if len(contexts[i]) != r.cfg.ContextDim {
			return nil, fmt.Errorf("reranking: context %d has length %d, want %d", i, len(contexts[i]), r.cfg.ContextDim)
		}
		row := x.Row(i)
		row[0] = base[i]
		copy(row[1:], contexts[i])
	}
	return x, nil
}

// forwardCache keeps the activations of a training forward pass.
type forwardCache struct {
	inputs []*nn.Matrix // input of each hidden layer, then of the output layer
	pre    []*nn.Matrix
	masks  [][]float64
}

// forward runs the network. A non-nil rng enables dropout.
func (r *Reranker) forward(x *nn.Matrix, rng *rand.Rand) (*nn.Matrix, *forwardCache) {
	c := &forwardCache{}
	h := x
	for _, l := range r.hidden {
		c.inputs = append(c.inputs, h)
		z := l.Forward(h)
		c.pre = append(c.pre, z)
		a := nn.ReLU.ApplyMatrix(z)
		var mask []float64
		if rng != nil {
			mask = nn.DropoutMask(rng, len(a.Data), r.cfg.Dropout)
			nn.ApplyMask(a, mask)
		}
		c.masks = append(c.masks, mask)
		h = a
	}
	c.inputs = append(c.inputs, h)
	return r.out.Forward(h), c
}

// backward accumulates parameter gradients for dOut, an n x 1 matrix.
func (r *Reranker) backward(c *forwardCache, dOut *nn.Matrix) {
	d := r.out.Backward(c.inputs[len(r.hidden)], dOut)
	for i := len(r.hidden) - 1; i >= 0; i-- {
		nn.ApplyMask(d, c.masks[i])
		for k, z := range c.pre[i].Data {
			d.Data[k] *= nn.ReLU.Derivative(z)
		}
		d = r.hidden[i].Backward(c.inputs[i], d)
	}
}

// Score returns the adjusted scores for a batch in evaluation mode.
func (r *Reranker) Score(base []float64, contexts [][]float64) ([]float64, error) {
	x, err := r.input(base, contexts)
	if err != nil {
		return nil, err
	}
	out, _ := r.forward(x, nil)
	scores := make([]float64, len(base))
	for i := range scores {
		v := out.Data[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("candidate %d: %w", i, ErrNonFinite)
		}
		scores[i] = v
	}
	return scores, nil
}
