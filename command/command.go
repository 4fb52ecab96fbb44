// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package command parses moderator mentions and participant DM replies.
package command

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/danielhkuo/retrobot/apperr"
	"github.com/danielhkuo/retrobot/models"
	"github.com/danielhkuo/retrobot/questions"
)

// Reply is the intent of a participant's direct message.
type Reply interface {
	isReply()
}

// ReplyAnswer is free text for the current question.
type ReplyAnswer struct {
	Text string
}

// ReplyAdvance moves on to the next question.
type ReplyAdvance struct{}

// ReplyRestart rewinds to the first question.
type ReplyRestart struct{}

func (ReplyAnswer) isReply()  {}
func (ReplyAdvance) isReply() {}
func (ReplyRestart) isReply() {}

// ClassifyReply maps a direct message onto an intent. Control tokens are
// matched case-insensitively after trimming; anything else is an answer
// carried through unchanged.
func ClassifyReply(text string) Reply {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "done", "next", "finished":
		return ReplyAdvance{}
	case "start over", "restart":
		return ReplyRestart{}
	default:
		return ReplyAnswer{Text: text}
	}
}

// Kind identifies a moderator command.
type Kind int

const (
	KindUnknown Kind = iota
	KindHello
	KindHelp
	KindStart
	KindStatus
	KindPresent
	KindSummarize
	KindReset
)

var kindNames = map[string]Kind{
	"hello":     KindHello,
	"help":      KindHelp,
	"start":     KindStart,
	"status":    KindStatus,
	"present":   KindPresent,
	"summarize": KindSummarize,
	"reset":     KindReset,
}

func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// Command is a parsed channel mention.
type Command struct {
	Kind Kind
	Name string // the subcommand word as typed
	Args []string
}

var mention = regexp.MustCompile(`<@[^>]+>`)

// Parse strips the first user mention from text and splits the rest into a
// subcommand and its arguments. An empty mention asks for help.
func Parse(text string) Command {
	loc := mention.FindStringIndex(text)
	if loc != nil {
		text = text[:loc[0]] + text[loc[1]:]
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{Kind: KindHelp}
	}

	cmd := Command{Name: fields[0], Args: fields[1:]}
	cmd.Kind = kindNames[strings.ToLower(fields[0])]
	return cmd
}

// StartOptions are the arguments of the start command.
type StartOptions struct {
	QuestionSet string
	Anonymous   bool
	Custom      []string // set when QuestionSet is custom
}

// Slack's editor turns straight quotes into curly ones
var quoteReplacer = strings.NewReplacer("“", `"`, "”", `"`)

// ParseStart reads `[set] [--anonymous]` or `custom "q1" "q2" [--anonymous]`.
// A custom set without any quoted question fails with InvalidArgument.
func ParseStart(args []string) (StartOptions, error) {
	opts := StartOptions{QuestionSet: models.QuestionSetDefault}

	var rest []string
	for _, arg := range args {
		if arg == "--anonymous" {
			opts.Anonymous = true
			continue
		}
		rest = append(rest, quoteReplacer.Replace(arg))
	}
	if len(rest) == 0 {
		return opts, nil
	}

	opts.QuestionSet = rest[0]
	if rest[0] != models.QuestionSetCustom {
		return opts, nil
	}

	opts.Custom = questions.ParseCustom(rest[1:])
	if len(opts.Custom) == 0 {
		return StartOptions{}, apperr.New(apperr.CodeInvalidArgument,
			"Custom question set requires at least one question in quotes")
	}
	return opts, nil
}

// ParseTop reads `--top N`. Without the flag, or without a value after it,
// def is returned.
func ParseTop(args []string, def int) (int, error) {
	for i, arg := range args {
		if arg != "--top" {
			continue
		}
		if i+1 >= len(args) {
			return def, nil
		}
		n, err := strconv.Atoi(args[i+1])
		if err != nil || n < 1 {
			return 0, apperr.Newf(apperr.CodeInvalidArgument,
				"--top must be a positive number, got '%s'", args[i+1])
		}
		return n, nil
	}
	return def, nil
}
