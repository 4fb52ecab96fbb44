// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session owns the single active retrospective and its phase
transitions.

# Lifecycle

A session is created in the collecting phase, receives one flattened answer
set per participant, moves to voting exactly once, and is summarized before
the caller ends it:

	store := session.NewStore(cfg.ReactionKinds, m)
	sess, err := store.Create(channel, moderator, "retrospective", false, questions)
	// ... DM every participant ...
	store.SetTotalParticipants(reached)

	fire, err := store.RecordParticipantResponses(user, answers)
	if fire {
		store.BeginVoting(ctx, publisher, voting.AutoPresentHeader)
	}

	summary, err := store.Summarize(ctx, reader, 3)
	store.End()

Only one session exists at a time; Create fails with a conflict while one
is active. Ending is idempotent.

# Completion

The completion predicate is len(Responses) >= TotalParticipants and is
false until the participant count has been set. RecordParticipantResponses
evaluates it under the store lock and reports true for exactly one call per
session, which is the caller's signal to begin voting automatically.

# Publishing

BeginVoting flips the status before it touches the network, so a second
caller fails with InvalidState even while the first is still publishing.
Answers are grouped by question, then by the order participants were
recorded, then by submission order. Failed publishes are logged and
skipped; the session keeps whatever was published.

# Errors

All errors are *apperr.Error values: Conflict, InvalidState,
InvalidArgument, NoResponses and NotFound.
*/
package session
