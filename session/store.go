// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/retrobot/apperr"
	"github.com/danielhkuo/retrobot/metrics"
	"github.com/danielhkuo/retrobot/models"
	"github.com/danielhkuo/retrobot/voting"
)

// Publisher posts channel messages and seeds vote reactions on them.
type Publisher interface {
	PostMessage(ctx context.Context, channelID, text string) (models.MessageRef, error)
	AddReaction(ctx context.Context, ref models.MessageRef, kind string) error
}

// ReactionReader returns raw reaction counts per kind for a published message.
type ReactionReader interface {
	ReactionCounts(ctx context.Context, ref models.MessageRef) (map[string]int, error)
}

// Summary is the ranked outcome of a voting phase.
type Summary struct {
	Session      models.Session
	Rankings     []models.QuestionRanking
	Text         string
	SummarizedAt time.Time
}

// Snapshot converts the summary into its archived form.
func (s Summary) Snapshot() models.SummarySnapshot {
	return models.SummarySnapshot{
		SessionID:         s.Session.ID,
		ChannelID:         s.Session.ChannelID,
		ModeratorID:       s.Session.ModeratorID,
		QuestionSet:       s.Session.QuestionSet,
		Anonymous:         s.Session.Anonymous,
		TotalParticipants: s.Session.TotalParticipants,
		CreatedAt:         s.Session.CreatedAt,
		SummarizedAt:      s.SummarizedAt,
		Rankings:          s.Rankings,
	}
}

// Store holds the single active session. All methods are safe for
// concurrent use; network calls made by BeginVoting and Summarize happen
// outside the lock.
type Store struct {
	mu      sync.Mutex
	current *models.Session

	// participant ids in the order their responses were first recorded
	order []string
	// set once the completion predicate has fired for the current session
	triggered bool
	totalSet  bool

	reactionKinds []string
	metrics       *metrics.Metrics
	now           func() time.Time
}

// NewStore creates an empty store. reactionKinds are the vote affordances
// seeded on each voting message; nil selects voting.DefaultReactionKinds.
func NewStore(reactionKinds []string, m *metrics.Metrics) *Store {
	if len(reactionKinds) == 0 {
		reactionKinds = voting.DefaultReactionKinds
	}
	return &Store{
		reactionKinds: append([]string(nil), reactionKinds...),
		metrics:       m,
		now:           time.Now,
	}
}

// Create starts a new session in the collecting phase.
func (s *Store) Create(channelID, moderatorID, questionSet string, anonymous bool, questions []string) (models.Session, error) {
	if len(questions) == 0 {
		return models.Session{}, apperr.New(apperr.CodeInvalidArgument, "a session needs at least one question")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return models.Session{}, apperr.Newf(apperr.CodeConflict,
			"a session is already active in <#%s>. Use `reset` to end it first", s.current.ChannelID)
	}

	s.current = &models.Session{
		ID:          uuid.NewString(),
		ChannelID:   channelID,
		ModeratorID: moderatorID,
		QuestionSet: questionSet,
		Questions:   append([]string(nil), questions...),
		Anonymous:   anonymous,
		Status:      models.StatusCollecting,
		Responses:   make(map[string][]models.Answer),
		CreatedAt:   s.now(),
	}
	s.order = nil
	s.triggered = false
	s.totalSet = false
	s.metrics.SessionStarted()

	slog.Info("session created", "session_id", s.current.ID, "channel", channelID,
		"question_set", questionSet, "anonymous", anonymous)
	return clone(s.current), nil
}

// Get returns a copy of the active session.
func (s *Store) Get() (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return models.Session{}, false
	}
	return clone(s.current), true
}

// End drops the active session. Calling it without a session is fine.
func (s *Store) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	slog.Info("session ended", "session_id", s.current.ID)
	s.current = nil
	s.order = nil
	s.triggered = false
	s.totalSet = false
	s.metrics.SessionEnded()
}

// SetTotalParticipants fixes the completion denominator. It may be called
// once per session.
func (s *Store) SetTotalParticipants(n int) error {
	if n < 0 {
		return apperr.New(apperr.CodeInvalidArgument, "participant count cannot be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return apperr.ErrNotFound
	}
	if s.totalSet {
		return apperr.New(apperr.CodeInvalidState, "participant count is already set")
	}
	s.current.TotalParticipants = n
	s.totalSet = true
	return nil
}

// RemoveParticipant forgets a participant that turned out to be
// unreachable. It is only allowed before the participant count is set.
func (s *Store) RemoveParticipant(participantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return apperr.ErrNotFound
	}
	if s.totalSet {
		return apperr.New(apperr.CodeInvalidState, "participants can only be removed before the session is fully started")
	}
	delete(s.current.Responses, participantID)
	for i, id := range s.order {
		if id == participantID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// RecordParticipantResponses stores a participant's flattened answers,
// replacing any earlier set. The completion predicate is evaluated under
// the same lock; the returned bool is true for exactly the call that first
// makes it hold.
func (s *Store) RecordParticipantResponses(participantID string, answers []models.Answer) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return false, apperr.ErrNotFound
	}
	if s.current.Status != models.StatusCollecting {
		return false, apperr.New(apperr.CodeInvalidState, "responses are no longer being collected")
	}

	if _, seen := s.current.Responses[participantID]; !seen {
		s.order = append(s.order, participantID)
	}
	s.current.Responses[participantID] = append([]models.Answer{}, answers...)

	slog.Info("responses recorded", "session_id", s.current.ID, "participant", participantID,
		"answers", len(answers), "recorded", len(s.current.Responses), "total", s.current.TotalParticipants)

	if s.triggered || !s.collectedLocked() {
		return false, nil
	}
	s.triggered = true
	return true, nil
}

// AllResponsesCollected reports whether every reached participant has
// submitted. It is false until the participant count has been set.
func (s *Store) AllResponsesCollected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collectedLocked()
}

func (s *Store) collectedLocked() bool {
	if s.current == nil || !s.totalSet {
		return false
	}
	return len(s.current.Responses) >= s.current.TotalParticipants
}

// pending is one answer queued for publishing
type pending struct {
	questionIndex int
	question      string
	answer        string
	participantID string
}

// BeginVoting moves the session to the voting phase and publishes every
// answer as its own message in the session channel, preceded by header and
// one header per question that has answers. Individual publish and reaction
// failures are logged and skipped.
func (s *Store) BeginVoting(ctx context.Context, pub Publisher, header string) ([]models.VotingMessage, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, apperr.ErrNotFound
	}
	if s.current.Status != models.StatusCollecting {
		s.mu.Unlock()
		return nil, apperr.New(apperr.CodeInvalidState, "Session is not in collecting phase.")
	}

	queue := s.groupLocked()
	if len(queue) == 0 {
		s.mu.Unlock()
		return nil, apperr.New(apperr.CodeNoResponses, "No responses collected yet. Wait for participants to reply via DM.")
	}

	// Flip before publishing so a concurrent caller sees voting
	s.current.Status = models.StatusVoting
	sessionID := s.current.ID
	channelID := s.current.ChannelID
	anonymous := s.current.Anonymous
	s.mu.Unlock()

	slog.Info("voting started", "session_id", sessionID, "answers", len(queue))

	if header != "" {
		if _, err := pub.PostMessage(ctx, channelID, header); err != nil {
			slog.Error("failed to post voting header", "session_id", sessionID, "error", err)
		}
	}

	var published []models.VotingMessage
	lastQuestion := -1
	for _, p := range queue {
		if p.questionIndex != lastQuestion {
			lastQuestion = p.questionIndex
			if _, err := pub.PostMessage(ctx, channelID, voting.FormatQuestionHeader(p.question)); err != nil {
				slog.Error("failed to post question header", "session_id", sessionID,
					"question_index", p.questionIndex, "error", err)
			}
		}

		ref, err := pub.PostMessage(ctx, channelID, voting.FormatAnswer(p.answer, p.participantID, anonymous))
		if err != nil {
			slog.Error("failed to publish answer", "session_id", sessionID,
				"question_index", p.questionIndex, "participant", p.participantID, "error", err)
			s.metrics.PublishFailed()
			continue
		}
		s.metrics.MessagePublished()

		for _, kind := range s.reactionKinds {
			if err := pub.AddReaction(ctx, ref, kind); err != nil {
				slog.Warn("failed to seed reaction", "session_id", sessionID, "ref", ref,
					"kind", kind, "error", err)
			}
		}

		published = append(published, models.VotingMessage{
			Ref:           ref,
			QuestionIndex: p.questionIndex,
			Question:      p.question,
			Answer:        p.answer,
			ParticipantID: p.participantID,
		})
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == sessionID {
		s.current.VotingMessages = append(s.current.VotingMessages, published...)
	}
	s.mu.Unlock()

	slog.Info("voting messages published", "session_id", sessionID,
		"published", len(published), "failed", len(queue)-len(published))
	return append([]models.VotingMessage(nil), published...), nil
}

// groupLocked orders answers by question, then by participant record order,
// then by submission order.
func (s *Store) groupLocked() []pending {
	var queue []pending
	for qi, question := range s.current.Questions {
		for _, participantID := range s.order {
			for _, a := range s.current.Responses[participantID] {
				if a.QuestionIndex != qi {
					continue
				}
				queue = append(queue, pending{
					questionIndex: qi,
					question:      question,
					answer:        a.Answer,
					participantID: participantID,
				})
			}
		}
	}
	return queue
}

// Summarize reads the reactions on every voting message and ranks the top
// topN answers per question. Reaction lookups that fail count as zero votes.
func (s *Store) Summarize(ctx context.Context, reader ReactionReader, topN int) (Summary, error) {
	if topN < 1 {
		return Summary{}, apperr.Newf(apperr.CodeInvalidArgument, "top must be a positive number, got %d", topN)
	}

	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return Summary{}, apperr.ErrNotFound
	}
	if s.current.Status != models.StatusVoting {
		s.mu.Unlock()
		return Summary{}, apperr.New(apperr.CodeInvalidState, "Session is not in voting phase. Use `@retrobot present` first.")
	}
	snapshot := clone(s.current)
	s.mu.Unlock()

	counts := make(map[models.MessageRef]map[string]int, len(snapshot.VotingMessages))
	for _, msg := range snapshot.VotingMessages {
		raw, err := reader.ReactionCounts(ctx, msg.Ref)
		if err != nil {
			slog.Warn("failed to read reactions", "session_id", snapshot.ID, "ref", msg.Ref, "error", err)
			continue
		}
		counts[msg.Ref] = raw
	}

	rankings := voting.Rank(snapshot.VotingMessages, counts, topN)
	s.metrics.Summarized()

	return Summary{
		Session:      snapshot,
		Rankings:     rankings,
		Text:         voting.RenderSummary(rankings, snapshot.Anonymous),
		SummarizedAt: s.now(),
	}, nil
}

func clone(in *models.Session) models.Session {
	out := *in
	out.Questions = append([]string(nil), in.Questions...)
	out.Responses = make(map[string][]models.Answer, len(in.Responses))
	for id, answers := range in.Responses {
		out.Responses[id] = append([]models.Answer{}, answers...)
	}
	out.VotingMessages = append([]models.VotingMessage(nil), in.VotingMessages...)
	return out
}
