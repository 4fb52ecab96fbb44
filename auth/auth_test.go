// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"
)

func TestPseudonym(t *testing.T) {
	tests := []struct {
		name string
		id   string
		salt string
	}{
		{"standard", "U012ABCDEF", "archive-salt"},
		{"empty id", "", "archive-salt"},
		{"empty salt", "U012ABCDEF", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Pseudonym(tt.id, tt.salt)

			if !IsPseudonym(p) {
				t.Errorf("Pseudonym() = %q, missing prefix", p)
			}

			// prefix + 16 hex chars
			hexPart := strings.TrimPrefix(p, pseudonymPrefix)
			if len(hexPart) != 16 {
				t.Errorf("Pseudonym() hash length = %d, want 16", len(hexPart))
			}
			for _, c := range hexPart {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("Pseudonym() contains invalid hex char: %c", c)
				}
			}

			if p != Pseudonym(tt.id, tt.salt) {
				t.Error("Pseudonym() is not deterministic")
			}
			if tt.id != "" && strings.Contains(p, tt.id) {
				t.Error("Pseudonym() leaks the participant id")
			}
		})
	}

	if Pseudonym("U1", "salt") == Pseudonym("U2", "salt") {
		t.Error("Pseudonym() produced same value for different participants")
	}
	if Pseudonym("U1", "salt1") == Pseudonym("U1", "salt2") {
		t.Error("Pseudonym() produced same value for different salts")
	}
}

func TestIsPseudonym(t *testing.T) {
	if IsPseudonym("U012ABCDEF") {
		t.Error("IsPseudonym() true for a Slack user id")
	}
}

func BenchmarkPseudonym(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Pseudonym("U012ABCDEF", "archive-salt")
	}
}
