// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package graph

import (
	"fmt"
	"slices"
)

// Mapping is an immutable bijection between external IDs and dense indices.
type Mapping struct {
	ids   []int64
	index map[int64]int
}

// NewMapping builds a mapping over the sorted unique set of ids.
func NewMapping(ids []int64) *Mapping {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return newMappingSorted(sorted)
}

// mappingFromOrdered rebuilds a mapping whose index order is already fixed,
// rejecting duplicates.
func mappingFromOrdered(ids []int64) (*Mapping, error) {
	m := newMappingSorted(slices.Clone(ids))
	if len(m.index) != len(m.ids) {
		return nil, fmt.Errorf("mapping contains duplicate ids")
	}
	return m, nil
}

func newMappingSorted(ids []int64) *Mapping {
	index := make(map[int64]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	return &Mapping{ids: ids, index: index}
}

// Len returns the number of mapped ids.
func (m *Mapping) Len() int {
	return len(m.ids)
}

// Index returns the dense index of id.
func (m *Mapping) Index(id int64) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

// ID returns the external id at idx. It panics when idx is out of range.
func (m *Mapping) ID(idx int) int64 {
	return m.ids[idx]
}

// IDs returns a copy of the ids in index order.
func (m *Mapping) IDs() []int64 {
	return slices.Clone(m.ids)
}

// Vocabulary is the immutable ingredient token index.
type Vocabulary struct {
	tokens []string
	index  map[string]int
}

// NewVocabulary builds a vocabulary over already-normalized tokens,
// deduplicated and sorted.
func NewVocabulary(tokens []string) *Vocabulary {
	sorted := slices.Clone(tokens)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	index := make(map[string]int, len(sorted))
	for i, tok := range sorted {
		index[tok] = i
	}
	return &Vocabulary{tokens: sorted, index: index}
}

// Len returns the vocabulary size.
func (v *Vocabulary) Len() int {
	return len(v.tokens)
}

// Index returns the index of a normalized token.
func (v *Vocabulary) Index(token string) (int, bool) {
	i, ok := v.index[token]
	return i, ok
}

// Tokens returns a copy of the tokens in index order.
func (v *Vocabulary) Tokens() []string {
	return slices.Clone(v.tokens)
}
