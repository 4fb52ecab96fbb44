// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package command

import (
	"errors"
	"reflect"
	"testing"

	"github.com/danielhkuo/retrobot/apperr"
)

func TestClassifyReply(t *testing.T) {
	testCases := []struct {
		text string
		want Reply
	}{
		{"done", ReplyAdvance{}},
		{"  DONE \n", ReplyAdvance{}},
		{"Next", ReplyAdvance{}},
		{"finished", ReplyAdvance{}},
		{"start over", ReplyRestart{}},
		{"Start Over", ReplyRestart{}},
		{" restart ", ReplyRestart{}},
		{"done with the migration", ReplyAnswer{Text: "done with the migration"}},
		{"  Shipped v2  ", ReplyAnswer{Text: "  Shipped v2  "}},
		{"start  over", ReplyAnswer{Text: "start  over"}},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			if got := ClassifyReply(tc.text); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("expected %#v, got %#v", tc.want, got)
			}
		})
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		text     string
		wantKind Kind
		wantName string
		wantArgs []string
	}{
		{"<@UBOT> hello", KindHello, "hello", []string{}},
		{"<@UBOT>   start  standup --anonymous", KindStart, "start", []string{"standup", "--anonymous"}},
		{"<@UBOT> summarize --top 2", KindSummarize, "summarize", []string{"--top", "2"}},
		{"<@UBOT> STATUS", KindStatus, "STATUS", []string{}},
		{"present <@UBOT>", KindPresent, "present", []string{}},
		{"<@UBOT> reset", KindReset, "reset", []string{}},
		{"<@UBOT> dance", KindUnknown, "dance", []string{}},
		{"<@UBOT>", KindHelp, "", nil},
		{"<@UBOT> help <@U2>", KindHelp, "help", []string{"<@U2>"}},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			cmd := Parse(tc.text)
			if cmd.Kind != tc.wantKind {
				t.Errorf("expected kind %v, got %v", tc.wantKind, cmd.Kind)
			}
			if cmd.Name != tc.wantName {
				t.Errorf("expected name %q, got %q", tc.wantName, cmd.Name)
			}
			if !reflect.DeepEqual(cmd.Args, tc.wantArgs) {
				t.Errorf("expected args %#v, got %#v", tc.wantArgs, cmd.Args)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if KindSummarize.String() != "summarize" || KindUnknown.String() != "unknown" {
		t.Errorf("unexpected names %q %q", KindSummarize, KindUnknown)
	}
}

func TestParseStart(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want StartOptions
	}{
		{"defaults", nil, StartOptions{QuestionSet: "retrospective"}},
		{"named set", []string{"standup"}, StartOptions{QuestionSet: "standup"}},
		{"anonymous first", []string{"--anonymous", "planning"}, StartOptions{QuestionSet: "planning", Anonymous: true}},
		{"anonymous only", []string{"--anonymous"}, StartOptions{QuestionSet: "retrospective", Anonymous: true}},
		{
			"custom",
			[]string{"custom", `"What`, `worked?"`, `"Blockers?"`, "--anonymous"},
			StartOptions{QuestionSet: "custom", Anonymous: true, Custom: []string{"What worked?", "Blockers?"}},
		},
		{
			"curly quotes",
			[]string{"custom", "“Wins?”"},
			StartOptions{QuestionSet: "custom", Custom: []string{"Wins?"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseStart(tc.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestParseStart_EmptyCustom(t *testing.T) {
	for _, args := range [][]string{
		{"custom"},
		{"custom", "no", "quotes"},
		{"custom", `"unterminated`},
	} {
		if _, err := ParseStart(args); !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("%v: expected invalid argument, got %v", args, err)
		}
	}
}

func TestParseTop(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		want    int
		wantErr bool
	}{
		{"no flag", nil, 3, false},
		{"value", []string{"--top", "5"}, 5, false},
		{"missing value", []string{"--top"}, 3, false},
		{"zero", []string{"--top", "0"}, 0, true},
		{"negative", []string{"--top", "-2"}, 0, true},
		{"not a number", []string{"--top", "lots"}, 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTop(tc.args, 3)
			if tc.wantErr {
				if !errors.Is(err, apperr.ErrInvalidArgument) {
					t.Fatalf("expected invalid argument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
		})
	}
}
