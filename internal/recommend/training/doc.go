// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

// Package training prepares interaction data and trains the embedding
// propagation model.
//
// Preparation drops inactive users and rarely rated recipes, then splits the
// remaining interactions chronologically into train, validation and test
// sets.
//
// Each epoch runs one forward propagation over the whole graph, then walks
// shuffled minibatches of (user, recipe, label) triples. Every training
// interaction contributes one positive and NegativeSamples negatives drawn
// from recipes the user never interacted with. The objective is binary
// cross-entropy on the dot-product affinity; parameters are updated with
// AdamW.
//
// After each epoch the validation loss is the mean, over a bounded set of
// validation users, of each user's mean BCE against label 1. The best
// parameters are kept and restored at the end; training stops after
// Patience epochs without improvement. When there is no validation data,
// early stopping is disabled and the final parameters are kept.
package training
