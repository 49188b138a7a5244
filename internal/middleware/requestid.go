// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tomtom215/saveeat/internal/logging"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds IDs accepted from upstream proxies.
const maxRequestIDLength = 128

// RequestID middleware assigns each request an ID, taken from the
// X-Request-ID header when present and generated otherwise. The ID is echoed
// in the response header and stored in the logging context together with a
// fresh correlation ID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, requestID)

		ctx := logging.WithScope(r.Context(), logging.Scope{
			RequestID:     requestID,
			CorrelationID: logging.NewCorrelationID(),
		})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from r's context.
func GetRequestID(r *http.Request) string {
	return logging.RequestIDFromContext(r.Context())
}
