// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting ranks published answers by their reactions and renders the
channel text of the voting phase.

Every voting message is seeded with one reaction per configured kind by
the bot itself, so a kind's vote weight is its raw count minus one,
clamped at zero:

	votes, breakdown := voting.VoteWeight(map[string]int{"thumbsup": 3, "fire": 1})
	// votes == 2, breakdown == map[string]int{"thumbsup": 2}

Rank groups responses by question, sorts each group by descending votes
with a stable sort so ties keep publish order, and keeps the top N:

	rankings := voting.Rank(messages, counts, 3)
	text := voting.RenderSummary(rankings, session.Anonymous)

Rank and the render helpers are pure; reading reactions from the chat
platform is done by the caller.
*/
package voting
