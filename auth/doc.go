// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth derives privacy-preserving identifiers.

# Pseudonyms

Anonymous sessions are archived without Slack user ids:

	id := auth.Pseudonym(participantID, salt)

The result is "anon-" followed by the first 8 bytes (16 hex chars) of
HMAC-SHA256 over the id. The same participant and salt always give the same
pseudonym, so answers from one person stay grouped within and across
archived sessions while the salt stays secret.
*/
package auth
