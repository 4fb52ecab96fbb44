// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package retro runs a retrospective from chat events.

# Coordinator

A Coordinator owns the session store and the per-participant conversation
store and drives both from three entry points:

	coord.HandleMention(ctx, channelID, userID, text)  // moderator commands
	coord.HandleDirectMessage(ctx, userID, text)       // participant answers
	coord.StartOver(ctx, userID)                       // DM button

Every entry point takes the coordinator mutex for its whole run. A
participant finishing their last question and a moderator typing `present`
at the same moment are therefore applied one after the other, and voting
begins once.

# Lifecycle

	start ──► collecting ──(everyone done | present)──► voting ──summarize──► archived
	                 └──────────────reset──────────────────┘

Starting DMs each human member of the channel. Members who cannot be DMed
are dropped and the expected participant count is the number reached. When
nobody was reached the session is cancelled unless Config.AllowEmpty is set.

Summarize posts the ranking, hands a snapshot to the Archiver when one is
configured and ends the session. Archive failures are logged and do not
block the summary.

# Errors

Command failures are apperr errors. Their message is posted to the channel
prefixed with ❌; anything else is posted as a generic failure and logged.
*/
package retro
