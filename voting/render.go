// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danielhkuo/retrobot/models"
)

// Default reaction kinds seeded on every voting message
var DefaultReactionKinds = []string{"thumbsup", "fire", "chart_with_upwards_trend"}

// Header texts posted before the voting messages
const (
	ManualPresentHeader = "📋 Responses ready for voting! React with 👍 🔥 📈 to vote on individual items:"
	AutoPresentHeader   = "📋 All responses collected! Automatically presenting for voting. React with 👍 🔥 📈 to vote on individual items:"
)

// emoji glyphs for well-known kinds, with the aliases Slack reports
var knownKinds = []struct {
	names []string
	glyph string
}{
	{[]string{"thumbsup", "+1"}, "👍"},
	{[]string{"fire"}, "🔥"},
	{[]string{"chart_with_upwards_trend", "chart_increasing"}, "📈"},
}

func attribution(participantID string, anonymous bool) string {
	if anonymous || participantID == "" {
		return ""
	}
	return " - <@" + participantID + ">"
}

// FormatQuestionHeader renders the header posted before a question's answers.
func FormatQuestionHeader(question string) string {
	return "*" + question + "*"
}

// FormatAnswer renders one voting message.
func FormatAnswer(answer, participantID string, anonymous bool) string {
	return `"` + answer + `"` + attribution(participantID, anonymous)
}

// FormatBreakdown renders "(N votes: 👍2 🔥1)".
func FormatBreakdown(votes int, breakdown map[string]int) string {
	text := fmt.Sprintf("(%d votes", votes)

	var parts []string
	seen := map[string]bool{}
	for _, known := range knownKinds {
		count := 0
		for _, name := range known.names {
			seen[name] = true
			if count == 0 {
				count = breakdown[name]
			}
		}
		if count > 0 {
			parts = append(parts, fmt.Sprintf("%s%d", known.glyph, count))
		}
	}

	var others []string
	for name := range breakdown {
		if !seen[name] {
			others = append(others, name)
		}
	}
	sort.Strings(others)
	for _, name := range others {
		if breakdown[name] > 0 {
			parts = append(parts, fmt.Sprintf(":%s:%d", name, breakdown[name]))
		}
	}

	if len(parts) > 0 {
		text += ": " + strings.Join(parts, " ")
	}
	return text + ")"
}

// RenderSummary renders the channel message listing the top responses.
func RenderSummary(rankings []models.QuestionRanking, anonymous bool) string {
	var b strings.Builder
	b.WriteString("🏆 Top Voted Topics for Discussion:\n\n")

	for _, group := range rankings {
		if len(group.Responses) == 0 {
			continue
		}
		b.WriteString(FormatQuestionHeader(group.Question))
		b.WriteString("\n")
		for _, r := range group.Responses {
			fmt.Fprintf(&b, "%d. \"%s\"%s %s\n",
				r.Rank, r.Answer, attribution(r.ParticipantID, anonymous),
				FormatBreakdown(r.VoteCount, r.ReactionBreakdown))
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n🎯 Session complete! Ready for discussion.")
	return b.String()
}
