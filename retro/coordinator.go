// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package retro

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/danielhkuo/retrobot/apperr"
	"github.com/danielhkuo/retrobot/command"
	"github.com/danielhkuo/retrobot/conversation"
	"github.com/danielhkuo/retrobot/metrics"
	"github.com/danielhkuo/retrobot/models"
	"github.com/danielhkuo/retrobot/questions"
	"github.com/danielhkuo/retrobot/session"
	"github.com/danielhkuo/retrobot/voting"
)

// MembershipResolver lists the human members of a channel.
type MembershipResolver interface {
	ChannelMembers(ctx context.Context, channelID string) ([]string, error)
}

// DirectMessenger sends a private message. startOver attaches the
// "Start over" button.
type DirectMessenger interface {
	SendDirectMessage(ctx context.Context, userID, text string, startOver bool) error
}

// Chat is everything the coordinator needs from the chat platform.
type Chat interface {
	session.Publisher
	session.ReactionReader
	MembershipResolver
	DirectMessenger
}

// Archiver stores summarized sessions.
type Archiver interface {
	SaveSummary(ctx context.Context, snap models.SummarySnapshot) error
}

// Config wires a Coordinator. Archive and Metrics may be nil.
type Config struct {
	Sessions      *session.Store
	Conversations *conversation.Store
	Questions     questions.Provider
	Chat          Chat
	Archive       Archiver
	Metrics       *metrics.Metrics

	DefaultTopN int
	// AllowEmpty keeps a session open when no participant could be reached.
	AllowEmpty bool
}

// Coordinator turns chat events into store transitions. Each event is
// handled under one mutex, so transitions never interleave.
type Coordinator struct {
	mu sync.Mutex

	sessions      *session.Store
	conversations *conversation.Store
	questions     questions.Provider
	chat          Chat
	archive       Archiver
	metrics       *metrics.Metrics

	defaultTopN int
	allowEmpty  bool

	// channel members listed when the active session started
	participants []string
}

func New(cfg Config) *Coordinator {
	topN := cfg.DefaultTopN
	if topN < 1 {
		topN = voting.DefaultTopN
	}
	return &Coordinator{
		sessions:      cfg.Sessions,
		conversations: cfg.Conversations,
		questions:     cfg.Questions,
		chat:          cfg.Chat,
		archive:       cfg.Archive,
		metrics:       cfg.Metrics,
		defaultTopN:   topN,
		allowEmpty:    cfg.AllowEmpty,
	}
}

func (c *Coordinator) post(ctx context.Context, channelID, text string) {
	if _, err := c.chat.PostMessage(ctx, channelID, text); err != nil {
		slog.Error("failed to post message", "channel", channelID, "error", err)
	}
}

func (c *Coordinator) dm(ctx context.Context, userID, text string, startOver bool) {
	if err := c.chat.SendDirectMessage(ctx, userID, text, startOver); err != nil {
		slog.Error("failed to send DM", "participant", userID, "error", err)
	}
}

// HandleMention runs a moderator command mentioned in a channel. Failures
// are reported back to the channel.
func (c *Coordinator) HandleMention(ctx context.Context, channelID, userID, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cmd := command.Parse(text)
	slog.Info("command received", "command", cmd.Kind.String(), "channel", channelID, "user", userID)

	var err error
	switch cmd.Kind {
	case command.KindHello:
		c.post(ctx, channelID, helloText)
	case command.KindHelp:
		c.post(ctx, channelID, helpText(c.questions.Sets()))
	case command.KindStart:
		err = c.start(ctx, channelID, userID, cmd.Args)
	case command.KindStatus:
		c.status(ctx, channelID)
	case command.KindPresent:
		err = c.present(ctx, channelID)
	case command.KindSummarize:
		err = c.summarize(ctx, channelID, cmd.Args)
	case command.KindReset:
		c.reset(ctx, channelID)
	default:
		c.post(ctx, channelID, unknownCommandText(cmd.Name))
	}

	if err != nil {
		slog.Warn("command failed", "command", cmd.Kind.String(), "channel", channelID,
			"code", apperr.CodeOf(err), "error", err)
		c.post(ctx, channelID, errorText(apperr.UserMessage(err)))
	}
}

func (c *Coordinator) start(ctx context.Context, channelID, moderatorID string, args []string) error {
	if active, ok := c.sessions.Get(); ok {
		return apperr.Newf(apperr.CodeConflict,
			"Active retro session already running in <#%s>\nUse commands from <#%s> or wait for it to complete.",
			active.ChannelID, active.ChannelID)
	}

	opts, err := command.ParseStart(args)
	if err != nil {
		return err
	}
	qs := opts.Custom
	if opts.QuestionSet != models.QuestionSetCustom {
		if qs, err = c.questions.Questions(opts.QuestionSet); err != nil {
			return err
		}
	}

	members, err := c.chat.ChannelMembers(ctx, channelID)
	if err != nil {
		return apperr.Wrap(apperr.CodeUnknown, "Failed to get channel members", err)
	}
	if len(members) == 0 {
		return apperr.New(apperr.CodeNotFound, "No active human members found in channel")
	}

	sess, err := c.sessions.Create(channelID, moderatorID, opts.QuestionSet, opts.Anonymous, qs)
	if err != nil {
		return err
	}

	c.conversations.Clear()
	c.participants = members
	for _, id := range members {
		c.conversations.Initialize(id, sess.Questions)
	}

	intro := introText(sess)
	sent, failed := 0, 0
	for _, id := range members {
		if err := c.chat.SendDirectMessage(ctx, id, intro, true); err != nil {
			slog.Warn("participant unreachable", "session_id", sess.ID, "participant", id, "error", err)
			failed++
			c.conversations.Remove(id)
			if err := c.sessions.RemoveParticipant(id); err != nil {
				slog.Error("failed to drop participant", "session_id", sess.ID, "participant", id, "error", err)
			}
			continue
		}
		sent++
	}

	if err := c.sessions.SetTotalParticipants(sent); err != nil {
		return err
	}

	if sent == 0 && !c.allowEmpty {
		c.endLocked()
		return apperr.Newf(apperr.CodeNotFound,
			"Couldn't DM any of the %d channel members (they may have DMs disabled). Session cancelled.", len(members))
	}

	slog.Info("session started", "session_id", sess.ID, "listed", len(members), "sent", sent, "failed", failed)
	c.post(ctx, channelID, startedText(sess, len(members), sent, failed))
	return nil
}

// activeIn returns the session if it belongs to channelID.
func (c *Coordinator) activeIn(channelID string) (models.Session, error) {
	sess, ok := c.sessions.Get()
	if !ok {
		return models.Session{}, apperr.New(apperr.CodeNotFound, "No active retro session. Use `@retrobot start` first.")
	}
	if sess.ChannelID != channelID {
		return models.Session{}, apperr.Newf(apperr.CodeInvalidState,
			"Active session is in <#%s>. Use commands from there.", sess.ChannelID)
	}
	return sess, nil
}

func (c *Coordinator) status(ctx context.Context, channelID string) {
	st, ok := c.snapshotLocked()
	if !ok {
		c.post(ctx, channelID, noSessionText)
		return
	}
	notStarted := len(c.conversations.NotStarted(c.participants))
	c.post(ctx, channelID, statusText(st, notStarted, len(c.participants)))
}

func (c *Coordinator) present(ctx context.Context, channelID string) error {
	if _, err := c.activeIn(channelID); err != nil {
		return err
	}
	if _, err := c.sessions.BeginVoting(ctx, c.chat, voting.ManualPresentHeader); err != nil {
		return err
	}
	c.post(ctx, channelID, presentedText)
	return nil
}

func (c *Coordinator) summarize(ctx context.Context, channelID string, args []string) error {
	if _, err := c.activeIn(channelID); err != nil {
		return err
	}
	topN, err := command.ParseTop(args, c.defaultTopN)
	if err != nil {
		return err
	}

	summary, err := c.sessions.Summarize(ctx, c.chat, topN)
	if err != nil {
		return err
	}
	c.post(ctx, channelID, summary.Text)

	if c.archive != nil {
		if err := c.archive.SaveSummary(ctx, summary.Snapshot()); err != nil {
			slog.Error("failed to archive summary", "session_id", summary.Session.ID, "error", err)
		}
	}

	c.endLocked()
	return nil
}

func (c *Coordinator) reset(ctx context.Context, channelID string) {
	if _, ok := c.sessions.Get(); !ok {
		c.post(ctx, channelID, nothingToResetText)
		return
	}
	c.endLocked()
	c.post(ctx, channelID, resetText)
}

func (c *Coordinator) endLocked() {
	c.sessions.End()
	c.conversations.Clear()
	c.participants = nil
}

// HandleDirectMessage advances one participant's private interview.
func (c *Coordinator) HandleDirectMessage(ctx context.Context, userID, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.conversations.State(userID)
	if !ok {
		c.dm(ctx, userID, strangerText, false)
		return
	}

	switch reply := command.ClassifyReply(text).(type) {
	case command.ReplyRestart:
		c.restartLocked(ctx, userID)

	case command.ReplyAdvance:
		if st.Completed {
			c.dm(ctx, userID, alreadyCompletedText, false)
			return
		}

		late := false
		c.conversations.Advance(userID, c.onComplete(ctx, &late))
		updated, _ := c.conversations.State(userID)

		if updated.Completed {
			channelID := ""
			if sess, ok := c.sessions.Get(); ok {
				channelID = sess.ChannelID
			}
			c.dm(ctx, userID, completionText(updated, channelID), false)
			if late {
				c.dm(ctx, userID, lateCompletionText, false)
			}
			return
		}

		prev := updated.CurrentQuestion - 1
		c.dm(ctx, userID, recordedText(len(updated.Responses[prev]), updated.Questions[prev]), false)
		c.dm(ctx, userID, questionText(updated.CurrentQuestion, updated.Questions), true)

	case command.ReplyAnswer:
		if st.Completed || !c.conversations.AppendAnswer(userID, reply.Text) {
			c.dm(ctx, userID, alreadyCompletedText, false)
			return
		}
		c.metrics.AnswerRecorded()
		c.dm(ctx, userID, gotItText(len(st.Responses[st.CurrentQuestion])+1), false)
	}
}

// onComplete merges a finished participant into the session and begins
// voting once the last participant is in. late is set when the session no
// longer accepts responses.
func (c *Coordinator) onComplete(ctx context.Context, late *bool) conversation.CompletionFunc {
	return func(participantID string, answers []models.Answer) {
		c.metrics.ParticipantCompleted()

		fire, err := c.sessions.RecordParticipantResponses(participantID, answers)
		if err != nil {
			slog.Warn("responses not recorded", "participant", participantID, "error", err)
			*late = true
			return
		}
		if fire {
			c.autoPresent(ctx)
		}
	}
}

func (c *Coordinator) autoPresent(ctx context.Context) {
	sess, ok := c.sessions.Get()
	if !ok {
		return
	}
	slog.Info("all responses collected", "session_id", sess.ID)

	_, err := c.sessions.BeginVoting(ctx, c.chat, voting.AutoPresentHeader)
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrNoResponses):
		c.post(ctx, sess.ChannelID, emptyAutoPresentText)
	default:
		slog.Error("auto present failed", "session_id", sess.ID, "error", err)
	}
}

// StartOver handles the "Start over" button.
func (c *Coordinator) StartOver(ctx context.Context, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.conversations.State(userID); !ok {
		return
	}
	c.restartLocked(ctx, userID)
}

func (c *Coordinator) restartLocked(ctx context.Context, userID string) {
	c.conversations.Restart(userID)
	st, _ := c.conversations.State(userID)
	slog.Info("participant restarted", "participant", userID)
	c.dm(ctx, userID, questionText(0, st.Questions), true)
}

// Snapshot returns a read-only view of the active session.
func (c *Coordinator) Snapshot() (models.StatusResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() (models.StatusResponse, bool) {
	sess, ok := c.sessions.Get()
	if !ok {
		return models.StatusResponse{}, false
	}
	return models.StatusResponse{
		SessionID:         sess.ID,
		ChannelID:         sess.ChannelID,
		ModeratorID:       sess.ModeratorID,
		QuestionSet:       sess.QuestionSet,
		Questions:         sess.Questions,
		Anonymous:         sess.Anonymous,
		Status:            sess.Status,
		TotalParticipants: sess.TotalParticipants,
		Completed:         c.conversations.Completed(),
		InProgress:        c.conversations.InProgress(),
		ResponseCount:     sess.ResponseCount(),
		VotingMessages:    len(sess.VotingMessages),
		CreatedAt:         sess.CreatedAt,
	}, true
}
