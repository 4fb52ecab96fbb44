// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package retro

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/danielhkuo/retrobot/conversation"
	"github.com/danielhkuo/retrobot/models"
	"github.com/danielhkuo/retrobot/questions"
	"github.com/danielhkuo/retrobot/session"
	"github.com/danielhkuo/retrobot/testutil"
)

type fakeArchive struct {
	mu    sync.Mutex
	saved []models.SummarySnapshot
	err   error
}

func (a *fakeArchive) SaveSummary(_ context.Context, snap models.SummarySnapshot) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved = append(a.saved, snap)
	return a.err
}

type harness struct {
	t       *testing.T
	ctx     context.Context
	slack   *testutil.FakeSlack
	archive *fakeArchive
	coord   *Coordinator
	sess    *session.Store
	convs   *conversation.Store
}

func newHarness(t *testing.T, allowEmpty bool) *harness {
	t.Helper()

	catalog, err := questions.Parse([]byte(`
question_sets:
  retrospective: ["Went well?", "Improve?"]
  solo: ["Only?"]
`))
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	h := &harness{
		t:       t,
		ctx:     context.Background(),
		slack:   testutil.NewFakeSlack(),
		archive: &fakeArchive{},
		sess:    session.NewStore([]string{"thumbsup"}, nil),
		convs:   conversation.NewStore(),
	}
	h.slack.Members["C1"] = []string{"UA", "UB"}
	h.coord = New(Config{
		Sessions:      h.sess,
		Conversations: h.convs,
		Questions:     catalog,
		Chat:          h.slack,
		Archive:       h.archive,
		DefaultTopN:   3,
		AllowEmpty:    allowEmpty,
	})
	return h
}

func (h *harness) mention(channel, text string) {
	h.coord.HandleMention(h.ctx, channel, "UMOD", "<@UBOT> "+text)
}

func (h *harness) dm(user string, texts ...string) {
	for _, text := range texts {
		h.coord.HandleDirectMessage(h.ctx, user, text)
	}
}

func (h *harness) lastPost() string {
	return h.slack.LastPost().Text
}

func (h *harness) expectLastPost(substr string) {
	h.t.Helper()
	if got := h.lastPost(); !strings.Contains(got, substr) {
		h.t.Errorf("expected last post to contain %q, got:\n%s", substr, got)
	}
}

func (h *harness) expectLastDM(user, substr string) {
	h.t.Helper()
	if got := h.slack.LastDM(user).Text; !strings.Contains(got, substr) {
		h.t.Errorf("expected last DM to %s to contain %q, got:\n%s", user, substr, got)
	}
}

// TestEndToEnd walks two participants through a two-question retro: one
// answers twice on the first question, the other skips everything.
func TestEndToEnd(t *testing.T) {
	h := newHarness(t, false)

	h.mention("C1", "start")
	h.expectLastPost("✅ 2 sent successfully")
	for _, user := range []string{"UA", "UB"} {
		dm := h.slack.LastDM(user)
		if !strings.Contains(dm.Text, "Question 1/2: Went well?") || !dm.StartOver {
			t.Fatalf("expected intro DM with start over button for %s, got %+v", user, dm)
		}
	}

	h.dm("UA", "x", "y")
	h.expectLastDM("UA", "(2 answers so far)")
	h.dm("UA", "done")
	h.expectLastDM("UA", "Question 2/2: Improve?")
	h.dm("UA", "done")
	h.expectLastDM("UA", "🎉 All done!")

	if h.sess.AllResponsesCollected() {
		t.Fatal("expected collection to be incomplete with one participant left")
	}

	h.dm("UB", "done", "DONE")

	sess, ok := h.sess.Get()
	if !ok {
		t.Fatal("expected an active session")
	}
	if len(sess.Responses) != 2 || len(sess.Responses["UB"]) != 0 {
		t.Fatalf("unexpected responses %v", sess.Responses)
	}
	if sess.Status != models.StatusVoting {
		t.Fatalf("expected auto voting, got %s", sess.Status)
	}
	if len(sess.VotingMessages) != 2 {
		t.Fatalf("expected 2 voting messages, got %d", len(sess.VotingMessages))
	}

	h.slack.SetReactions(sess.VotingMessages[0].Ref, map[string]int{"thumbsup": 2})
	h.slack.SetReactions(sess.VotingMessages[1].Ref, map[string]int{"thumbsup": 3})

	h.mention("C1", "summarize --top 3")
	summary := h.lastPost()
	for _, want := range []string{
		"*Went well?*",
		`1. "y" - <@UA> (2 votes: 👍2)`,
		`2. "x" - <@UA> (1 votes: 👍1)`,
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("expected summary to contain %q, got:\n%s", want, summary)
		}
	}
	if strings.Contains(summary, "*Improve?*") {
		t.Error("expected the empty question to be left out of the summary")
	}

	if _, ok := h.sess.Get(); ok {
		t.Error("expected session ended after summarize")
	}
	if h.convs.Len() != 0 {
		t.Error("expected conversations cleared")
	}
	if len(h.archive.saved) != 1 || len(h.archive.saved[0].Rankings) != 1 {
		t.Errorf("expected one archived snapshot, got %+v", h.archive.saved)
	}
}

func TestStart_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(h *harness)
		args  string
		want  string
	}{
		{"unknown set", nil, "start nope", "Unknown question set: 'nope'"},
		{"empty custom", nil, "start custom nothing quoted", "requires at least one question in quotes"},
		{"membership failure", func(h *harness) { h.slack.MembersErr = errors.New("boom") }, "start", "Failed to get channel members"},
		{"no members", func(h *harness) { h.slack.Members["C1"] = nil }, "start", "No active human members"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, false)
			if tc.setup != nil {
				tc.setup(h)
			}
			h.mention("C1", tc.args)
			h.expectLastPost("❌ " + tc.want)
			if _, ok := h.sess.Get(); ok {
				t.Error("expected no session to be created")
			}
		})
	}
}

func TestStart_Conflict(t *testing.T) {
	h := newHarness(t, false)
	h.slack.Members["C2"] = []string{"UC"}
	h.mention("C1", "start")
	h.mention("C2", "start")
	h.expectLastPost("Active retro session already running in <#C1>")

	sess, _ := h.sess.Get()
	if sess.ChannelID != "C1" {
		t.Errorf("expected original session kept, got %s", sess.ChannelID)
	}
}

func TestStart_Custom(t *testing.T) {
	h := newHarness(t, false)
	h.mention("C1", `start custom "What shipped?" "What broke?" --anonymous`)

	sess, _ := h.sess.Get()
	if sess.QuestionSet != "custom" || !sess.Anonymous {
		t.Fatalf("unexpected session %+v", sess)
	}
	if strings.Join(sess.Questions, "|") != "What shipped?|What broke?" {
		t.Errorf("unexpected questions %v", sess.Questions)
	}
	h.expectLastPost("Mode: Anonymous 🔒 | Questions: 2")
}

func TestStart_UnreachableParticipants(t *testing.T) {
	h := newHarness(t, false)
	h.slack.FailDMsTo["UB"] = true
	h.mention("C1", "start")

	h.expectLastPost("⚠️ 1 DMs failed")
	sess, _ := h.sess.Get()
	if sess.TotalParticipants != 1 {
		t.Fatalf("expected 1 reachable participant, got %d", sess.TotalParticipants)
	}
	if _, ok := h.convs.State("UB"); ok {
		t.Error("expected unreachable participant removed")
	}

	// The one reachable participant finishing triggers voting
	h.dm("UA", "solo answer", "done", "done")
	sess, _ = h.sess.Get()
	if sess.Status != models.StatusVoting {
		t.Errorf("expected voting, got %s", sess.Status)
	}
}

func TestZeroParticipantPolicy(t *testing.T) {
	t.Run("reject", func(t *testing.T) {
		h := newHarness(t, false)
		h.slack.FailDMsTo["UA"] = true
		h.slack.FailDMsTo["UB"] = true
		h.mention("C1", "start")

		h.expectLastPost("Couldn't DM any of the 2 channel members")
		if _, ok := h.sess.Get(); ok {
			t.Error("expected session cancelled")
		}
	})

	t.Run("allow", func(t *testing.T) {
		h := newHarness(t, true)
		h.slack.FailDMsTo["UA"] = true
		h.slack.FailDMsTo["UB"] = true
		h.mention("C1", "start")

		sess, ok := h.sess.Get()
		if !ok || sess.Status != models.StatusCollecting {
			t.Fatalf("expected collecting session, got %+v %v", sess, ok)
		}
		h.mention("C1", "present")
		h.expectLastPost("❌ No responses collected yet")
	})
}

func TestDirectMessage_Stranger(t *testing.T) {
	h := newHarness(t, false)
	h.dm("UX", "hello?")
	h.expectLastDM("UX", "I only respond to DMs during active retrospective sessions")
}

func TestDirectMessage_Restart(t *testing.T) {
	h := newHarness(t, false)
	h.mention("C1", "start")

	h.dm("UA", "first", "done", "second", "Start Over")
	h.expectLastDM("UA", "Question 1/2: Went well?")

	st, _ := h.convs.State("UA")
	if st.CurrentQuestion != 0 || len(st.Responses[0]) != 0 || len(st.Responses[1]) != 0 {
		t.Errorf("expected fresh state, got %+v", st)
	}
}

func TestDirectMessage_AfterCompletion(t *testing.T) {
	h := newHarness(t, false)
	h.mention("C1", "start")
	h.dm("UA", "a", "done", "done")

	h.dm("UA", "one more thing")
	h.expectLastDM("UA", "already completed all questions")
	h.dm("UA", "done")
	h.expectLastDM("UA", "already completed all questions")
}

func TestDirectMessage_CompletionAfterManualPresent(t *testing.T) {
	h := newHarness(t, false)
	h.mention("C1", "start")
	h.dm("UA", "a", "done", "done")
	h.mention("C1", "present")
	h.expectLastPost("Responses posted as individual messages")

	h.dm("UB", "late", "done", "done")
	h.expectLastDM("UB", "Voting has already started")
}

func TestDirectMessage_RecordedCount(t *testing.T) {
	h := newHarness(t, false)
	h.mention("C1", "start")
	h.dm("UA", "a", "b", "c", "next")

	dms := h.slack.DMsTo("UA")
	recorded := dms[len(dms)-2]
	if recorded.Text != `✅ Recorded 3 answers for "Went well?"` {
		t.Errorf("unexpected recorded text %q", recorded.Text)
	}
	if !dms[len(dms)-1].StartOver {
		t.Error("expected question DM to carry the start over button")
	}
}

func TestStartOverButton(t *testing.T) {
	h := newHarness(t, false)
	h.coord.StartOver(h.ctx, "UA")
	if len(h.slack.DMsTo("UA")) != 0 {
		t.Error("expected no DM without a session")
	}

	h.mention("C1", "start")
	h.dm("UA", "x", "done")
	h.coord.StartOver(h.ctx, "UA")
	h.expectLastDM("UA", "Question 1/2")
}

func TestPresent_Errors(t *testing.T) {
	h := newHarness(t, false)
	h.mention("C1", "present")
	h.expectLastPost("❌ No active retro session")

	h.mention("C1", "start")
	h.mention("C2", "present")
	h.expectLastPost("❌ Active session is in <#C1>")

	h.mention("C1", "present")
	h.expectLastPost("❌ No responses collected yet")

	h.dm("UA", "x", "done", "done")
	h.mention("C1", "present")
	h.expectLastPost("Responses posted")
	h.mention("C1", "present")
	h.expectLastPost("❌ Session is not in collecting phase.")
}

func TestSummarize_Errors(t *testing.T) {
	h := newHarness(t, false)
	h.mention("C1", "start")

	h.mention("C1", "summarize")
	h.expectLastPost("❌ Session is not in voting phase")

	h.dm("UA", "x", "done", "done")
	h.mention("C1", "present")
	h.mention("C1", "summarize --top zero")
	h.expectLastPost("❌ --top must be a positive number")

	if _, ok := h.sess.Get(); !ok {
		t.Error("expected session kept after a failed summarize")
	}
}

func TestSummarize_ArchiveFailureStillEnds(t *testing.T) {
	h := newHarness(t, false)
	h.archive.err = errors.New("disk full")
	h.slack.Members["C1"] = []string{"UA"}
	h.mention("C1", "start")
	h.dm("UA", "x", "done", "done")
	h.mention("C1", "summarize")

	h.expectLastPost("🏆 Top Voted Topics")
	if _, ok := h.sess.Get(); ok {
		t.Error("expected session ended")
	}
}

func TestStatus(t *testing.T) {
	h := newHarness(t, false)
	h.mention("C1", "status")
	h.expectLastPost("No active retro session")

	h.slack.Members["C1"] = []string{"U1", "U2", "U3", "U4", "U5", "U6", "U7", "U8"}
	h.slack.FailDMsTo["U8"] = true
	h.mention("C1", "start")
	for _, u := range []string{"U1", "U2", "U3", "U4", "U5", "U6"} {
		h.dm(u, "done", "done")
	}

	h.mention("C1", "status")
	status := h.lastPost()
	for _, want := range []string{
		"🔄 Collecting responses...",
		"✅ Completed: 6/8 participants (<@U1>, <@U2>, <@U3>, <@U4>, <@U5> (+1 more))",
		"⏳ In progress: 1 participants",
		"❌ Not started: 1 participants",
		"Questions: Went well? | Improve?",
		"(started by <@UMOD> ",
	} {
		if !strings.Contains(status, want) {
			t.Errorf("expected status to contain %q, got:\n%s", want, status)
		}
	}

	h.dm("U1", "")
	h.dm("U7", "x", "done", "done")
	h.mention("C1", "status")
	h.expectLastPost("📝 Total responses posted: 1 topics")
}

func TestReset(t *testing.T) {
	h := newHarness(t, false)
	h.mention("C1", "reset")
	h.expectLastPost("No active retro session to reset")

	h.mention("C1", "start")
	h.mention("C1", "reset")
	h.expectLastPost("Retro session reset!")
	if _, ok := h.sess.Get(); ok {
		t.Error("expected no session")
	}
	if h.convs.Len() != 0 {
		t.Error("expected conversations cleared")
	}

	h.mention("C1", "start solo")
	sess, _ := h.sess.Get()
	if sess.QuestionSet != "solo" {
		t.Errorf("expected a new session after reset, got %+v", sess)
	}
}

func TestHelloHelpUnknown(t *testing.T) {
	h := newHarness(t, false)

	h.mention("C1", "hello")
	h.expectLastPost("retrobot is running!")

	h.mention("C1", "help")
	h.expectLastPost("Available question sets: retrospective, solo")

	h.coord.HandleMention(h.ctx, "C1", "UMOD", "<@UBOT>")
	h.expectLastPost("retrobot Commands")

	h.mention("C1", "dance")
	h.expectLastPost("❌ Unknown command: `dance`")
}

func TestSnapshot(t *testing.T) {
	h := newHarness(t, false)
	if _, ok := h.coord.Snapshot(); ok {
		t.Fatal("expected no snapshot without a session")
	}

	h.mention("C1", "start")
	h.dm("UA", "x", "done", "done")
	h.dm("UB", "y")

	st, ok := h.coord.Snapshot()
	if !ok {
		t.Fatal("expected snapshot")
	}
	if st.Status != models.StatusCollecting || st.TotalParticipants != 2 || st.ResponseCount != 1 {
		t.Errorf("unexpected snapshot %+v", st)
	}
	if strings.Join(st.Completed, ",") != "UA" || strings.Join(st.InProgress, ",") != "UB" {
		t.Errorf("unexpected classification %v %v", st.Completed, st.InProgress)
	}
}

// TestConcurrentCompletion checks that many participants finishing at once
// begin voting exactly once.
func TestConcurrentCompletion(t *testing.T) {
	h := newHarness(t, false)
	var users []string
	for i := 0; i < 12; i++ {
		users = append(users, "U"+string(rune('A'+i)))
	}
	h.slack.Members["C1"] = users
	h.mention("C1", "start")

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			h.dm(u, u+"-answer", "done", "done")
		}(u)
	}
	wg.Wait()

	headers := 0
	for _, p := range h.slack.PostsTo("C1") {
		if strings.HasPrefix(p.Text, "📋 All responses collected!") {
			headers++
		}
	}
	if headers != 1 {
		t.Fatalf("expected one auto present header, got %d", headers)
	}

	sess, _ := h.sess.Get()
	if len(sess.VotingMessages) != len(users) {
		t.Errorf("expected %d voting messages, got %d", len(users), len(sess.VotingMessages))
	}
}
