// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

/*
Package services provides suture.Service wrappers for SaveEat components
whose lifecycle is not already a Serve(ctx) loop.

HTTPServerService adapts the ListenAndServe/Shutdown pair of *http.Server.
Cancellation drains connections for the configured timeout.

BundleReloadService polls engine.Loader on an interval. It reloads once at
startup so the first request after boot sees the newest checkpoint. Reload
failures are logged and the current bundle keeps serving.

TrainingService runs training.Pipeline on a schedule, each run bounded by
a timeout, and asks the reloader to pick up the new checkpoint afterwards.
It is disabled unless recommend.training.enabled is set.

The WAL retry loop, WAL compactor and events consumer implement
suture.Service themselves and are added to the tree directly.

Return values follow suture's conventions:

	ctx.Err()  shutdown requested
	error      crashed, restart with backoff
	nil        finished, not restarted
*/
package services
