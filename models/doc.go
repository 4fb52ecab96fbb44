// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain, ranking, and response types shared by the
bot packages.

# Domain Types

  - Session: the single active retrospective (questions, phase, responses)
  - Answer: one flattened answer {question_index, question, answer}
  - VotingMessage: one published answer eligible for reaction votes
  - MessageRef: opaque transport handle for a published message

# Ranking Types

Derived during summarization, never stored on the session:

  - RankedResponse: answer with vote count, breakdown, and rank
  - QuestionRanking: ranked responses for one question
  - SummarySnapshot: archived record of a summarized session
  - ArchivedSession: archive listing entry

# Response Types

JSON bodies for the ops endpoints:

  - StatusResponse: active session view
  - HistoryResponse, HistoryDetailResponse: archive listings
  - ErrorResponse: error, message

# Constants

Status values:

	StatusCollecting = "collecting"
	StatusVoting     = "voting"

There is no terminal status; ending a session removes it.
*/
package models
