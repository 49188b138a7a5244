// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

// Package model implements the heterogeneous embedding propagation model.
//
// Every user, recipe and ingredient owns a learnable base embedding of
// dimension d, initialized from N(0, init_std). A stack of message-passing
// layers updates the three node types over four relations:
//
//	recipe -> user        (interacts_with, reversed)
//	user -> recipe        (interacts_with)
//	ingredient -> recipe  (contains, reversed)
//	recipe -> ingredient  (contains)
//
// Each relation computes W_nbr * mean(neighbors) + b + W_self * x_dst, and
// the relation outputs arriving at a node type are summed. Every layer but
// the last applies the configured nonlinearity and dropout. A per-type
// linear projection maps the final hidden state back to dimension d.
//
// The affinity between a user and a recipe is the unnormalized dot product
// of their final embeddings.
//
// Gradients are computed by hand. Forward returns a Pass holding the cached
// activations; Pass.Backward propagates gradients of the final embeddings
// back to every parameter.
package model
