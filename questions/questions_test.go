// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package questions

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/danielhkuo/retrobot/apperr"
)

func TestDefault(t *testing.T) {
	c := Default()
	if got := c.Sets(); !reflect.DeepEqual(got, []string{"planning", "retrospective", "standup"}) {
		t.Errorf("unexpected sets %v", got)
	}
	for _, name := range c.Sets() {
		qs, err := c.Questions(name)
		if err != nil || len(qs) == 0 {
			t.Errorf("%s: expected questions, got %v %v", name, qs, err)
		}
	}
}

func TestQuestions_Unknown(t *testing.T) {
	_, err := Default().Questions("nope")
	if !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if !strings.Contains(err.Error(), "planning, retrospective, standup") {
		t.Errorf("expected available sets in error, got %q", err.Error())
	}
}

func TestQuestions_ReturnsCopy(t *testing.T) {
	c := Default()
	qs, _ := c.Questions("standup")
	qs[0] = "mutated"

	again, _ := c.Questions("standup")
	if again[0] == "mutated" {
		t.Error("expected an independent copy")
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		doc     string
		wantErr bool
		want    map[string][]string
	}{
		{
			name: "yaml",
			doc: `
question_sets:
  retrospective:
    - What went well?
    - "  What could improve?  "
  quick:
    - One thing?
`,
			want: map[string][]string{
				"retrospective": {"What went well?", "What could improve?"},
				"quick":         {"One thing?"},
			},
		},
		{
			name: "json is accepted",
			doc:  `{"question_sets": {"solo": ["Only question"]}}`,
			want: map[string][]string{"solo": {"Only question"}},
		},
		{name: "empty document", doc: ``, wantErr: true},
		{name: "empty set", doc: "question_sets:\n  empty: []\n", wantErr: true},
		{name: "blank questions", doc: "question_sets:\n  blank: ['  ']\n", wantErr: true},
		{name: "reserved name", doc: "question_sets:\n  custom: [q]\n", wantErr: true},
		{name: "malformed", doc: "question_sets: [", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Parse([]byte(tc.doc))
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(c.sets, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, c.sets)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	if err := os.WriteFile(path, []byte("question_sets:\n  demo: [a, b]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if qs, _ := c.Questions("demo"); !reflect.DeepEqual(qs, []string{"a", "b"}) {
		t.Errorf("unexpected questions %v", qs)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseCustom(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want []string
	}{
		{"single words", []string{`"one"`, `"two"`}, []string{"one", "two"}},
		{"multi word", []string{`"what`, `went`, `well?"`, `"next?"`}, []string{"what went well?", "next?"}},
		{"two tokens", []string{`"a`, `b"`}, []string{"a b"}},
		{"unquoted ignored", []string{"foo", `"bar"`, "baz"}, []string{"bar"}},
		{"unterminated dropped", []string{`"dangling`, "words"}, []string{}},
		{"lone quote opens", []string{`"`, `x"`}, []string{" x"}},
		{"nothing quoted", []string{"a", "b"}, []string{}},
		{"empty", nil, []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseCustom(tc.args); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
