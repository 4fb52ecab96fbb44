// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package slackbot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"
	"golang.org/x/time/rate"

	"github.com/danielhkuo/retrobot/models"
)

// StartOverAction is the action id of the "Start over" DM button
const StartOverAction = "dm_start_over"

// API is the part of *slack.Client the bot uses.
type API interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	AddReactionContext(ctx context.Context, name string, item slack.ItemRef) error
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
	GetUsersInConversationContext(ctx context.Context, params *slack.GetUsersInConversationParameters) ([]string, string, error)
	GetUserInfoContext(ctx context.Context, user string) (*slack.User, error)
}

// NewMessageRef encodes a message location as "channel/ts".
func NewMessageRef(channelID, ts string) models.MessageRef {
	return models.MessageRef(channelID + "/" + ts)
}

// ParseMessageRef splits a ref made by NewMessageRef.
func ParseMessageRef(ref models.MessageRef) (channelID, ts string, err error) {
	channelID, ts, ok := strings.Cut(string(ref), "/")
	if !ok || channelID == "" || ts == "" {
		return "", "", fmt.Errorf("malformed message ref %q", ref)
	}
	return channelID, ts, nil
}

// Client adapts the Slack Web API to the bot's ports. Every call waits on a
// shared rate limiter first.
type Client struct {
	api     API
	limiter *rate.Limiter
}

// NewClient wraps api with a limiter allowing perSec calls per second.
// perSec <= 0 disables limiting.
func NewClient(api API, perSec float64) *Client {
	limit := rate.Inf
	if perSec > 0 {
		limit = rate.Limit(perSec)
	}
	return &Client{api: api, limiter: rate.NewLimiter(limit, 1)}
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

func (c *Client) PostMessage(ctx context.Context, channelID, text string) (models.MessageRef, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	channel, ts, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return "", fmt.Errorf("post to %s: %w", channelID, err)
	}
	return NewMessageRef(channel, ts), nil
}

func (c *Client) AddReaction(ctx context.Context, ref models.MessageRef, kind string) error {
	channelID, ts, err := ParseMessageRef(ref)
	if err != nil {
		return err
	}
	if err := c.wait(ctx); err != nil {
		return err
	}
	if err := c.api.AddReactionContext(ctx, kind, slack.NewRefToMessage(channelID, ts)); err != nil {
		return fmt.Errorf("add %s to %s: %w", kind, ref, err)
	}
	return nil
}

// ReactionCounts reads the message's reactions from channel history bounded
// to its own timestamp.
func (c *Client) ReactionCounts(ctx context.Context, ref models.MessageRef) (map[string]int, error) {
	channelID, ts, err := ParseMessageRef(ref)
	if err != nil {
		return nil, err
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Latest:    ts,
		Oldest:    ts,
		Inclusive: true,
		Limit:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("history for %s: %w", ref, err)
	}

	counts := map[string]int{}
	for _, msg := range resp.Messages {
		if msg.Timestamp != ts {
			continue
		}
		for _, r := range msg.Reactions {
			counts[r.Name] += r.Count
		}
	}
	return counts, nil
}

// ChannelMembers lists the channel's human members. Users whose profile
// cannot be loaded are skipped.
func (c *Client) ChannelMembers(ctx context.Context, channelID string) ([]string, error) {
	var ids []string
	cursor := ""
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		page, next, err := c.api.GetUsersInConversationContext(ctx, &slack.GetUsersInConversationParameters{
			ChannelID: channelID,
			Cursor:    cursor,
			Limit:     200,
		})
		if err != nil {
			return nil, fmt.Errorf("members of %s: %w", channelID, err)
		}
		ids = append(ids, page...)
		if next == "" {
			break
		}
		cursor = next
	}

	members := []string{}
	for _, id := range ids {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		user, err := c.api.GetUserInfoContext(ctx, id)
		if err != nil {
			slog.Warn("skipping member without user info", "channel", channelID, "user", id, "error", err)
			continue
		}
		if user.IsBot || user.Deleted {
			continue
		}
		members = append(members, id)
	}
	return members, nil
}

// SendDirectMessage posts to the user's app DM.
func (c *Client) SendDirectMessage(ctx context.Context, userID, text string, startOver bool) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if startOver {
		opts = append(opts, slack.MsgOptionBlocks(
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
			slack.NewActionBlock("dm_controls",
				slack.NewButtonBlockElement(StartOverAction, "start_over",
					slack.NewTextBlockObject(slack.PlainTextType, "Start over", false, false)),
			),
		))
	}

	if _, _, err := c.api.PostMessageContext(ctx, userID, opts...); err != nil {
		return fmt.Errorf("dm %s: %w", userID, err)
	}
	return nil
}
