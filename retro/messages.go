// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package retro

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/retrobot/conversation"
	"github.com/danielhkuo/retrobot/models"
)

const helloText = "👋 retrobot is running!\nReady to help coordinate your team discussions.\nMention me with `@retrobot help` for available commands."

const strangerText = "👋 Hi! I'm retrobot, a Slack bot for team retrospectives.\n\n" +
	"To start using me:\n" +
	"1. Invite me to a channel: `/invite @retrobot`\n" +
	"2. Mention me: `@retrobot start retrospective` in that channel\n" +
	"3. I'll DM everyone to collect their responses privately\n" +
	"4. Responses get posted for team voting automatically\n\n" +
	"Mention me with `@retrobot help` in any channel for more commands and options.\n\n" +
	"*I only respond to DMs during active retrospective sessions.*"

const (
	alreadyCompletedText = "✅ You've already completed all questions. Your responses have been submitted!"
	lateCompletionText   = "⚠️ Voting has already started, so these answers were not included in this session."
	presentedText        = "✅ Responses posted as individual messages! Team members can now vote on each item."
	noSessionText        = "📊 No active retro session\nMention me with `@retrobot start` to begin a new session."
	nothingToResetText   = "📊 No active retro session to reset"
	resetText            = "🔄 Retro session reset! All responses have been cleared.\nUse `@retrobot start` to begin a new session."
	emptyAutoPresentText = "📋 Everyone finished, but nobody shared an answer. Use `@retrobot reset` to start over."
)

func helpText(sets []string) string {
	return "🗓️ retrobot Commands:\n\n" +
		"`@retrobot start <question-set> [--anonymous]`\n" +
		"  Start a new retrospective session\n" +
		"  Example: `@retrobot start retrospective --anonymous`\n\n" +
		"`@retrobot start custom \"Question one?\" \"Question two?\"`\n" +
		"  Start a session with your own questions\n\n" +
		"`@retrobot status`\n" +
		"  Show who has finished answering\n\n" +
		"`@retrobot present`\n" +
		"  Manually post responses for voting (auto-presents when all done)\n\n" +
		"`@retrobot summarize [--top N]`\n" +
		"  Show top-voted topics (default: top 3 per question)\n" +
		"  Example: `@retrobot summarize --top 2`\n\n" +
		"`@retrobot reset`\n" +
		"  Cancel current session and clear all responses\n\n" +
		"Available question sets: " + strings.Join(sets, ", ") + "\n" +
		"Use `--anonymous` flag to hide participant names"
}

func unknownCommandText(name string) string {
	return fmt.Sprintf("❌ Unknown command: `%s`\nMention me with `@retrobot help` for available commands.", name)
}

func errorText(msg string) string {
	return "❌ " + msg
}

func questionText(index int, questions []string) string {
	return fmt.Sprintf("Question %d/%d: %s\nSend me your thoughts and reply 'done' when finished.",
		index+1, len(questions), questions[index])
}

func introText(sess models.Session) string {
	return fmt.Sprintf("👋 Hi! I'm retrobot.\n\n"+
		"<@%s> just started a %s agenda session in <#%s> and I'm here to collect your input privately.\n\n"+
		"Here's how this works:\n"+
		"• I'll ask you %d questions, one at a time\n"+
		"• Send me your thoughts (one per message)\n"+
		"• Reply 'done' when finished with each question\n"+
		"• You can skip any question by just saying 'done'\n"+
		"• Type 'start over' anytime to restart from the beginning\n\n"+
		"Ready? Let's begin!\n\n---\n\n%s",
		sess.ModeratorID, sess.QuestionSet, sess.ChannelID, len(sess.Questions), questionText(0, sess.Questions))
}

func gotItText(count int) string {
	return fmt.Sprintf("✅ Got it! (%d answers so far); keep answering or type 'done' to move on", count)
}

func recordedText(count int, question string) string {
	return fmt.Sprintf("✅ Recorded %d answers for \"%s\"", count, question)
}

func completionText(st conversation.State, channelID string) string {
	var b strings.Builder
	b.WriteString("🎉 All done! Here's what I recorded:\n\n")
	for i, q := range st.Questions {
		answers := st.Responses[i]
		if len(answers) == 0 {
			fmt.Fprintf(&b, "⏭️ %s: 0 answers (skipped)\n\n", q)
			continue
		}
		plural := ""
		if len(answers) > 1 {
			plural = "s"
		}
		fmt.Fprintf(&b, "✅ %s: %d answer%s\n", q, len(answers), plural)
		for _, a := range answers {
			fmt.Fprintf(&b, "• \"%s\"\n", a)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Your responses have been submitted! Head back to <#%s> for the next steps.", channelID)
	return b.String()
}

func startedText(sess models.Session, listed, sent, failed int) string {
	mode := "Named 👤"
	if sess.Anonymous {
		mode = "Anonymous 🔒"
	}
	text := fmt.Sprintf("🗓️ Starting agenda session: %s\nMode: %s | Questions: %d\nDMing %d participants... ✅ %d sent successfully",
		sess.QuestionSet, mode, len(sess.Questions), listed, sent)
	if failed > 0 {
		text += fmt.Sprintf("\n⚠️ %d DMs failed (users may have DMs disabled)", failed)
	}
	return text + "\n\nResponses will be automatically presented for voting when everyone finishes."
}

func mentions(ids []string, limit int) string {
	shown := ids
	if len(shown) > limit {
		shown = shown[:limit]
	}
	parts := make([]string, len(shown))
	for i, id := range shown {
		parts[i] = "<@" + id + ">"
	}
	text := strings.Join(parts, ", ")
	if len(ids) > limit {
		text += fmt.Sprintf(" (+%d more)", len(ids)-limit)
	}
	return text
}

func statusText(st models.StatusResponse, notStarted, listed int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Session Status: <#%s> (started by <@%s> %s)\n\n",
		st.ChannelID, st.ModeratorID, humanize.Time(st.CreatedAt))

	switch st.Status {
	case models.StatusCollecting:
		fmt.Fprintf(&b, "🔄 Collecting responses...\n✅ Completed: %d/%d participants", len(st.Completed), listed)
		if len(st.Completed) > 0 {
			fmt.Fprintf(&b, " (%s)", mentions(st.Completed, 5))
		}
		fmt.Fprintf(&b, "\n⏳ In progress: %d participants", len(st.InProgress))
		fmt.Fprintf(&b, "\n❌ Not started: %d participants\n\n", notStarted)
		fmt.Fprintf(&b, "Questions: %s\n\n", strings.Join(st.Questions, " | "))
		b.WriteString("➡️ Next: Responses will auto-present when all participants finish")
	case models.StatusVoting:
		fmt.Fprintf(&b, "🗳️ Voting in progress...\n📝 Total responses posted: %d topics\n", st.VotingMessages)
		b.WriteString("👍 Vote by reacting to responses with emojis\n\n")
		b.WriteString("➡️ Next: Use `@retrobot summarize` to show top-voted items")
	}
	return b.String()
}
