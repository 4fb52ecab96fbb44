// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the archive.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Timestamps are fixed-width UTC text so both drivers sort them the same way.
const schema = `
-- Summarized sessions
CREATE TABLE IF NOT EXISTS retro_session (
    id TEXT PRIMARY KEY,
    channel_id TEXT NOT NULL,
    moderator_id TEXT NOT NULL,
    question_set TEXT NOT NULL,
    anonymous INTEGER NOT NULL DEFAULT 0,
    total_participants INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    summarized_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_retro_session_summarized_at ON retro_session(summarized_at);
CREATE INDEX IF NOT EXISTS idx_retro_session_channel_id ON retro_session(channel_id);

-- Ranked answers per session
CREATE TABLE IF NOT EXISTS retro_result (
    session_id TEXT NOT NULL REFERENCES retro_session(id) ON DELETE CASCADE,
    question_index INTEGER NOT NULL,
    question TEXT NOT NULL,
    rank INTEGER NOT NULL,
    answer TEXT NOT NULL,
    participant_id TEXT NOT NULL,
    vote_count INTEGER NOT NULL DEFAULT 0,
    breakdown TEXT NOT NULL DEFAULT '{}',
    PRIMARY KEY (session_id, question_index, rank)
);

CREATE INDEX IF NOT EXISTS idx_retro_result_session_id ON retro_result(session_id);
`
