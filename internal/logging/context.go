// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey int

const (
	scopeKey ctxKey = iota
	loggerKey
)

// Scope identifies the request a log line belongs to. CorrelationID groups
// lines across the WAL write, event publish and consumer insert of a single
// interaction.
type Scope struct {
	RequestID     string
	CorrelationID string
}

// NewCorrelationID returns an 8-character random ID.
func NewCorrelationID() string {
	return uuid.NewString()[:8]
}

// WithScope returns a copy of ctx carrying s. Empty fields of s keep the
// value already present in ctx.
func WithScope(ctx context.Context, s Scope) context.Context {
	prev := ScopeFrom(ctx)
	if s.RequestID == "" {
		s.RequestID = prev.RequestID
	}
	if s.CorrelationID == "" {
		s.CorrelationID = prev.CorrelationID
	}
	return context.WithValue(ctx, scopeKey, s)
}

// ScopeFrom returns the scope stored in ctx, zero when absent.
func ScopeFrom(ctx context.Context) Scope {
	s, _ := ctx.Value(scopeKey).(Scope) //nolint:errcheck // zero Scope when absent
	return s
}

// RequestIDFromContext returns the request ID or "".
func RequestIDFromContext(ctx context.Context) string {
	return ScopeFrom(ctx).RequestID
}

// CorrelationIDFromContext returns the correlation ID or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return ScopeFrom(ctx).CorrelationID
}

// ContextWithLogger stores a base logger in ctx for Ctx to extend.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// Ctx returns the logger for ctx with its scope attached. Without a stored
// logger the global one is used.
//
//	logging.Ctx(ctx).Info().Int64("user_id", id).Msg("recommendation served")
func Ctx(ctx context.Context) *zerolog.Logger {
	base, ok := ctx.Value(loggerKey).(zerolog.Logger)
	if !ok {
		base = Logger()
	}
	s := ScopeFrom(ctx)
	if s.RequestID == "" && s.CorrelationID == "" {
		return &base
	}
	l := base.With().
		Str("request_id", s.RequestID).
		Str("correlation_id", s.CorrelationID).
		Logger()
	return &l
}
