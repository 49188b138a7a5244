// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package middleware

import (
	"compress/gzip"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// compressedTypes are the response types worth compressing. Recipe lists and
// ingredient catalogues are JSON; the swagger UI serves the rest.
var compressedTypes = []string{
	"application/json",
	"text/html",
	"text/css",
	"text/plain",
	"application/javascript",
}

var compress = chimiddleware.Compress(gzip.DefaultCompression, compressedTypes...)

// Compression gzips compressible responses for clients that accept it.
// HEAD requests and /metrics, which negotiates its own encoding, pass through.
func Compression(next http.Handler) http.Handler {
	compressed := compress(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		compressed.ServeHTTP(w, r)
	})
}
