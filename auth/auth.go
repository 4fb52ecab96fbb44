// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// pseudonymPrefix marks archived ids that are not real Slack users
const pseudonymPrefix = "anon-"

// Pseudonym replaces a participant id with a stable keyed hash so anonymous
// archives can still group answers by author without naming them.
func Pseudonym(participantID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(participantID))
	sum := h.Sum(nil)
	// 8 bytes is plenty to tell a team apart
	return pseudonymPrefix + hex.EncodeToString(sum[:8])
}

// IsPseudonym reports whether id came from Pseudonym.
func IsPseudonym(id string) bool {
	return strings.HasPrefix(id, pseudonymPrefix)
}
