// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the ops HTTP handlers.

The bot itself talks to Slack over socket mode. These endpoints exist so an
operator can check on it:

	GET /health        - liveness
	GET /session       - the active session, 404 when idle
	GET /history       - archived sessions, newest first (?limit=N)
	GET /history/{id}  - ranked answers of one archived session

History endpoints answer 503 when the archive is disabled. Domain errors are
mapped to status codes with middleware.AppError.
*/
package handlers
