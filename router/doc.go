// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the ops HTTP routes.

	mux := router.NewRouter(coordinator, archive, metrics)

# Endpoints

	GET /health        - liveness, not logged
	GET /session       - active session status
	GET /history       - archived sessions
	GET /history/{id}  - archived rankings
	GET /metrics       - Prometheus scrape

Pass a nil history to run without the archive.
*/
package router
