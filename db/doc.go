// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db archives summarized retro sessions.

Only finished sessions are stored. The active session lives in memory and is
lost on restart.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same schema runs on PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite).

# Tables

  - retro_session: one row per summarized session
  - retro_result: ranked answers, keyed by (session_id, question_index, rank)

	retro_session 1──* retro_result

# Archive

	archive := db.NewArchive(conn, salt)
	err := archive.SaveSummary(ctx, snapshot)
	sessions, err := archive.ListSessions(ctx, 20)
	results, err := archive.Results(ctx, sessionID)

SaveSummary writes everything in one transaction. For anonymous sessions the
participant ids are replaced by auth.Pseudonym before they reach the
database.
*/
package db
