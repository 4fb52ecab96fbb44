// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"sort"

	"github.com/danielhkuo/retrobot/models"
)

// DefaultTopN is the number of responses kept per question.
const DefaultTopN = 3

// VoteWeight sums raw reaction counts per kind after removing the bot's own
// seeded reaction. Kinds left with zero votes are omitted from the breakdown.
func VoteWeight(raw map[string]int) (int, map[string]int) {
	total := 0
	breakdown := map[string]int{}
	for kind, count := range raw {
		votes := count - 1
		if votes <= 0 {
			continue
		}
		total += votes
		breakdown[kind] = votes
	}
	return total, breakdown
}

// Rank computes the per-question top responses from published voting
// messages and the reaction counts observed for them. Messages with no entry
// in counts score zero. Groups come out in question order; within a group
// responses are sorted by votes descending and ties keep publish order.
func Rank(messages []models.VotingMessage, counts map[models.MessageRef]map[string]int, topN int) []models.QuestionRanking {
	if topN < 1 {
		topN = DefaultTopN
	}

	groups := map[int]*models.QuestionRanking{}
	var order []int
	for _, msg := range messages {
		votes, breakdown := VoteWeight(counts[msg.Ref])

		group, ok := groups[msg.QuestionIndex]
		if !ok {
			group = &models.QuestionRanking{
				QuestionIndex: msg.QuestionIndex,
				Question:      msg.Question,
			}
			groups[msg.QuestionIndex] = group
			order = append(order, msg.QuestionIndex)
		}
		group.Responses = append(group.Responses, models.RankedResponse{
			QuestionIndex:     msg.QuestionIndex,
			Question:          msg.Question,
			Answer:            msg.Answer,
			ParticipantID:     msg.ParticipantID,
			VoteCount:         votes,
			ReactionBreakdown: breakdown,
		})
	}
	sort.Ints(order)

	rankings := make([]models.QuestionRanking, 0, len(order))
	for _, idx := range order {
		group := groups[idx]

		// Stable so equal votes never reorder against publish order
		sort.SliceStable(group.Responses, func(i, j int) bool {
			return group.Responses[i].VoteCount > group.Responses[j].VoteCount
		})

		if len(group.Responses) > topN {
			group.Responses = group.Responses[:topN]
		}
		for i := range group.Responses {
			group.Responses[i].Rank = i + 1
		}
		rankings = append(rankings, *group)
	}
	return rankings
}
