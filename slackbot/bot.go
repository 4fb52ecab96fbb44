// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package slackbot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

// Handler receives the events the bot cares about.
type Handler interface {
	HandleMention(ctx context.Context, channelID, userID, text string)
	HandleDirectMessage(ctx context.Context, userID, text string)
	StartOver(ctx context.Context, userID string)
}

// Socket is the part of *socketmode.Client the bot uses.
type Socket interface {
	RunContext(ctx context.Context) error
	Ack(req socketmode.Request, payload ...interface{})
}

// Bot runs the socket mode event loop.
type Bot struct {
	socket    Socket
	events    <-chan socketmode.Event
	handler   Handler
	botUserID string

	// Slack sends both app_mention and message for the same mention
	mu   sync.Mutex
	seen map[string]time.Time
}

// NewBot routes events from client to handler. botUserID is used to spot
// mentions in plain channel messages.
func NewBot(client *socketmode.Client, handler Handler, botUserID string) *Bot {
	return newBot(client, client.Events, handler, botUserID)
}

func newBot(socket Socket, events <-chan socketmode.Event, handler Handler, botUserID string) *Bot {
	return &Bot{
		socket:    socket,
		events:    events,
		handler:   handler,
		botUserID: botUserID,
		seen:      make(map[string]time.Time),
	}
}

// Run connects and dispatches events until ctx is cancelled. Events are
// handled one at a time so a participant's messages keep their order.
func (b *Bot) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		errc <- b.socket.RunContext(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		case evt, ok := <-b.events:
			if !ok {
				return nil
			}
			if evt.Request != nil {
				b.socket.Ack(*evt.Request)
			}
			b.dispatch(ctx, evt)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		slog.Info("connecting to Slack")
	case socketmode.EventTypeConnected:
		slog.Info("connected to Slack")
	case socketmode.EventTypeConnectionError:
		slog.Warn("Slack connection error, retrying")
	case socketmode.EventTypeEventsAPI:
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok || apiEvent.Type != slackevents.CallbackEvent {
			return
		}
		b.dispatchCallback(ctx, apiEvent.InnerEvent.Data)
	case socketmode.EventTypeInteractive:
		callback, ok := evt.Data.(slack.InteractionCallback)
		if !ok || callback.Type != slack.InteractionTypeBlockActions {
			return
		}
		for _, action := range callback.ActionCallback.BlockActions {
			if action.ActionID == StartOverAction {
				b.handler.StartOver(ctx, callback.User.ID)
			}
		}
	}
}

func (b *Bot) dispatchCallback(ctx context.Context, data interface{}) {
	switch ev := data.(type) {
	case *slackevents.AppMentionEvent:
		if ev.BotID != "" || !b.firstSighting(ev.Channel, ev.TimeStamp) {
			return
		}
		b.handler.HandleMention(ctx, ev.Channel, ev.User, ev.Text)
	case *slackevents.MessageEvent:
		if ev.BotID != "" || ev.SubType != "" || ev.User == "" || ev.User == b.botUserID {
			return
		}
		switch ev.ChannelType {
		case "im":
			b.handler.HandleDirectMessage(ctx, ev.User, ev.Text)
		case "channel", "group":
			if b.botUserID == "" || !strings.Contains(ev.Text, "<@"+b.botUserID+">") {
				return
			}
			if b.firstSighting(ev.Channel, ev.TimeStamp) {
				b.handler.HandleMention(ctx, ev.Channel, ev.User, ev.Text)
			}
		}
	}
}

// firstSighting reports whether a message has not been handled in the last
// minute.
func (b *Bot) firstSighting(channelID, ts string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	for key, at := range b.seen {
		if now.Sub(at) > time.Minute {
			delete(b.seen, key)
		}
	}

	key := channelID + "/" + ts
	if _, ok := b.seen[key]; ok {
		return false
	}
	b.seen[key] = now
	return true
}
