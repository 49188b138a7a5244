// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package nn

import "fmt"

// Param is a named trainable tensor with its gradient accumulator.
type Param struct {
	Name  string
	Value *Matrix
	Grad  *Matrix
}

// NewParam allocates a zeroed rows x cols parameter.
func NewParam(name string, rows, cols int) *Param {
	return &Param{
		Name:  name,
		Value: NewMatrix(rows, cols),
		Grad:  NewMatrix(rows, cols),
	}
}

// ZeroGrad clears the gradient of every parameter.
func ZeroGrad(params []*Param) {
	for _, p := range params {
		p.Grad.Zero()
	}
}

// Tensor is the serializable form of a parameter.
type Tensor struct {
	Rows int
	Cols int
	Data []float64
}

// StateDict snapshots parameter values keyed by name.
func StateDict(params []*Param) map[string]Tensor {
	state := make(map[string]Tensor, len(params))
	for _, p := range params {
		data := make([]float64, len(p.Value.Data))
		copy(data, p.Value.Data)
		state[p.Name] = Tensor{Rows: p.Value.Rows, Cols: p.Value.Cols, Data: data}
	}
	return state
}

// LoadStateDict copies values from state into params. Every parameter must be
// present with a matching shape.
func LoadStateDict(params []*Param, state map[string]Tensor) error {
	for _, p := range params {
		t, ok := state[p.Name]
		if !ok {
			return fmt.Errorf("missing tensor %q", p.Name)
		}
		if t.Rows != p.Value.Rows || t.Cols != p.Value.Cols || len(t.Data) != len(p.Value.Data) {
			return fmt.Errorf("tensor %q: shape %dx%d, want %dx%d", p.Name, t.Rows, t.Cols, p.Value.Rows, p.Value.Cols)
		}
		copy(p.Value.Data, t.Data)
	}
	return nil
}
