// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

/*
Package cache provides a thread-safe, size-bounded LRU cache with TTL support.

The recommendation engine caches complete responses keyed by the serving
bundle version, the normalized request and a fingerprint of the user's
profile. A bundle swap clears the cache, and each reload poll that finds
nothing to swap prunes expired entries with CleanupExpired.

# Usage Example

	c := cache.NewLRU[*Response](1000, 5*time.Minute)
	key := cache.GenerateKey("recommend", params)
	if resp, ok := c.Get(key); ok {
	    return resp
	}
	c.Add(key, compute())

# Thread Safety

All operations take a single mutex, Get included, since a hit updates
recency.
*/
package cache
