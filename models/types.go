// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Session status constants
const (
	StatusCollecting = "collecting"
	StatusVoting     = "voting"
)

// Question set names with special meaning
const (
	QuestionSetDefault = "retrospective"
	QuestionSetCustom  = "custom"
)

// MessageRef is an opaque handle the transport returns for a published
// message and accepts back when reading reactions.
type MessageRef string

// Domain types

// Answer is one flattened free-text answer of a participant.
type Answer struct {
	QuestionIndex int    `json:"question_index"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
}

type VotingMessage struct {
	Ref           MessageRef `json:"ref"`
	QuestionIndex int        `json:"question_index"`
	Question      string     `json:"question"`
	Answer        string     `json:"answer"`
	ParticipantID string     `json:"participant_id"`
}

type Session struct {
	ID                string              `json:"id"`
	ChannelID         string              `json:"channel_id"`
	ModeratorID       string              `json:"moderator_id"`
	QuestionSet       string              `json:"question_set"`
	Questions         []string            `json:"questions"`
	Anonymous         bool                `json:"anonymous"`
	Status            string              `json:"status"`
	Responses         map[string][]Answer `json:"responses"`
	TotalParticipants int                 `json:"total_participants"`
	VotingMessages    []VotingMessage     `json:"voting_messages"`
	CreatedAt         time.Time           `json:"created_at"`
}

// ResponseCount is the number of individual answers across participants.
func (s Session) ResponseCount() int {
	total := 0
	for _, answers := range s.Responses {
		total += len(answers)
	}
	return total
}

// Ranking types

// RankedResponse is derived during summarization and never kept on the session.
type RankedResponse struct {
	QuestionIndex     int            `json:"question_index"`
	Question          string         `json:"question"`
	Answer            string         `json:"answer"`
	ParticipantID     string         `json:"participant_id"`
	VoteCount         int            `json:"vote_count"`
	ReactionBreakdown map[string]int `json:"reaction_breakdown,omitempty"`
	Rank              int            `json:"rank"` // 1-indexed within the question
}

type QuestionRanking struct {
	QuestionIndex int              `json:"question_index"`
	Question      string           `json:"question"`
	Responses     []RankedResponse `json:"responses"`
}

// SummarySnapshot is what gets archived when a session is summarized.
type SummarySnapshot struct {
	SessionID         string            `json:"session_id"`
	ChannelID         string            `json:"channel_id"`
	ModeratorID       string            `json:"moderator_id"`
	QuestionSet       string            `json:"question_set"`
	Anonymous         bool              `json:"anonymous"`
	TotalParticipants int               `json:"total_participants"`
	CreatedAt         time.Time         `json:"created_at"`
	SummarizedAt      time.Time         `json:"summarized_at"`
	Rankings          []QuestionRanking `json:"rankings"`
}

type ArchivedSession struct {
	ID                string    `json:"id"`
	ChannelID         string    `json:"channel_id"`
	ModeratorID       string    `json:"moderator_id"`
	QuestionSet       string    `json:"question_set"`
	Anonymous         bool      `json:"anonymous"`
	TotalParticipants int       `json:"total_participants"`
	ResultCount       int       `json:"result_count"`
	CreatedAt         time.Time `json:"created_at"`
	SummarizedAt      time.Time `json:"summarized_at"`
}

// Response types

// StatusResponse is the ops view of the active session.
type StatusResponse struct {
	SessionID         string    `json:"session_id"`
	ChannelID         string    `json:"channel_id"`
	ModeratorID       string    `json:"moderator_id"`
	QuestionSet       string    `json:"question_set"`
	Questions         []string  `json:"questions"`
	Anonymous         bool      `json:"anonymous"`
	Status            string    `json:"status"`
	TotalParticipants int       `json:"total_participants"`
	Completed         []string  `json:"completed"`
	InProgress        []string  `json:"in_progress"`
	ResponseCount     int       `json:"response_count"`
	VotingMessages    int       `json:"voting_messages"`
	CreatedAt         time.Time `json:"created_at"`
}

type HistoryResponse struct {
	Sessions []ArchivedSession `json:"sessions"`
}

type HistoryDetailResponse struct {
	Session ArchivedSession  `json:"session"`
	Results []RankedResponse `json:"results"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
