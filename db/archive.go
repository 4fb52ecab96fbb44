// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/retrobot/apperr"
	"github.com/danielhkuo/retrobot/auth"
	"github.com/danielhkuo/retrobot/models"
)

// DefaultListLimit caps ListSessions when no limit is given
const DefaultListLimit = 20

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Archive stores summarized sessions.
type Archive struct {
	db   *sql.DB
	salt string
}

// NewArchive uses salt to pseudonymize participants of anonymous sessions.
func NewArchive(db *sql.DB, salt string) *Archive {
	return &Archive{db: db, salt: salt}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad stored time %q: %w", s, err)
	}
	return t, nil
}

// SaveSummary writes the session and every ranked answer in one transaction.
func (a *Archive) SaveSummary(ctx context.Context, snap models.SummarySnapshot) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback()

	anonymous := 0
	if snap.Anonymous {
		anonymous = 1
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO retro_session (id, channel_id, moderator_id, question_set, anonymous,
		                           total_participants, created_at, summarized_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, snap.SessionID, snap.ChannelID, snap.ModeratorID, snap.QuestionSet, anonymous,
		snap.TotalParticipants, formatTime(snap.CreatedAt), formatTime(snap.SummarizedAt))
	if err != nil {
		return fmt.Errorf("insert session %s: %w", snap.SessionID, err)
	}

	for _, group := range snap.Rankings {
		for _, r := range group.Responses {
			participant := r.ParticipantID
			if snap.Anonymous {
				participant = auth.Pseudonym(participant, a.salt)
			}

			breakdown := r.ReactionBreakdown
			if breakdown == nil {
				breakdown = map[string]int{}
			}
			payload, err := json.Marshal(breakdown)
			if err != nil {
				return fmt.Errorf("encode breakdown: %w", err)
			}

			_, err = tx.ExecContext(ctx, `
				INSERT INTO retro_result (session_id, question_index, question, rank, answer,
				                          participant_id, vote_count, breakdown)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, snap.SessionID, r.QuestionIndex, r.Question, r.Rank, r.Answer,
				participant, r.VoteCount, string(payload))
			if err != nil {
				return fmt.Errorf("insert result for session %s: %w", snap.SessionID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}

// ListSessions returns archived sessions, most recently summarized first.
func (a *Archive) ListSessions(ctx context.Context, limit int) ([]models.ArchivedSession, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT s.id, s.channel_id, s.moderator_id, s.question_set, s.anonymous,
		       s.total_participants, s.created_at, s.summarized_at,
		       (SELECT COUNT(*) FROM retro_result r WHERE r.session_id = s.id)
		FROM retro_session s
		ORDER BY s.summarized_at DESC, s.id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.ArchivedSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Session returns one archived session, NotFound when it was never saved.
func (a *Archive) Session(ctx context.Context, id string) (models.ArchivedSession, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT s.id, s.channel_id, s.moderator_id, s.question_set, s.anonymous,
		       s.total_participants, s.created_at, s.summarized_at,
		       (SELECT COUNT(*) FROM retro_result r WHERE r.session_id = s.id)
		FROM retro_session s
		WHERE s.id = $1
	`, id)

	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ArchivedSession{}, apperr.Newf(apperr.CodeNotFound, "Archived session %s not found", id)
	}
	return s, err
}

// Results returns the ranked answers of a session ordered by question then
// rank.
func (a *Archive) Results(ctx context.Context, sessionID string) ([]models.RankedResponse, error) {
	if _, err := a.Session(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT question_index, question, rank, answer, participant_id, vote_count, breakdown
		FROM retro_result
		WHERE session_id = $1
		ORDER BY question_index, rank
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := []models.RankedResponse{}
	for rows.Next() {
		var r models.RankedResponse
		var payload string
		if err := rows.Scan(&r.QuestionIndex, &r.Question, &r.Rank, &r.Answer,
			&r.ParticipantID, &r.VoteCount, &payload); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &r.ReactionBreakdown); err != nil {
			return nil, fmt.Errorf("decode breakdown: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (models.ArchivedSession, error) {
	var s models.ArchivedSession
	var anonymous int
	var created, summarized string
	err := row.Scan(&s.ID, &s.ChannelID, &s.ModeratorID, &s.QuestionSet, &anonymous,
		&s.TotalParticipants, &created, &summarized, &s.ResultCount)
	if errors.Is(err, sql.ErrNoRows) {
		return s, err
	}
	if err != nil {
		return s, fmt.Errorf("scan session: %w", err)
	}
	s.Anonymous = anonymous != 0

	if s.CreatedAt, err = parseTime(created); err != nil {
		return s, err
	}
	if s.SummarizedAt, err = parseTime(summarized); err != nil {
		return s, err
	}
	return s, nil
}
