// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/retrobot/cliparse"
	"github.com/danielhkuo/retrobot/db"
	"github.com/danielhkuo/retrobot/models"
)

// ErrFake is returned by FakeSlack when a call is scripted to fail
var ErrFake = errors.New("fake slack failure")

// SetupTestDB opens a private in-memory sqlite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// A named shared-cache memory db keeps every pooled connection on the same data
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		SlackBotToken:         "xoxb-test",
		SlackAppToken:         "xapp-test",
		Port:                  3318,
		DatabaseType:          "sqlite",
		ArchiveSalt:           "test-archive-salt",
		DefaultTopN:           3,
		ReactionKinds:         []string{"thumbsup", "fire", "chart_with_upwards_trend"},
		ZeroParticipantPolicy: cliparse.ZeroParticipantsReject,
		SlackRatePerSec:       1,
		LogLevel:              "info",
	}
}

// Post is a channel message recorded by FakeSlack
type Post struct {
	Channel string
	Text    string
	Ref     models.MessageRef
}

// DM is a direct message recorded by FakeSlack
type DM struct {
	User      string
	Text      string
	StartOver bool
}

// FakeSlack is an in-memory chat platform. It records everything sent to it
// and can be scripted to fail individual calls.
type FakeSlack struct {
	mu sync.Mutex

	Members    map[string][]string
	MembersErr error

	// Calls whose text contains one of these substrings fail
	FailPostsContaining []string
	FailDMsTo           map[string]bool
	FailReactions       bool
	FailReactionReads   bool

	posts     []Post
	dms       []DM
	reactions map[models.MessageRef]map[string]int
	seq       int
}

func NewFakeSlack() *FakeSlack {
	return &FakeSlack{
		Members:   map[string][]string{},
		FailDMsTo: map[string]bool{},
		reactions: map[models.MessageRef]map[string]int{},
	}
}

func (f *FakeSlack) PostMessage(_ context.Context, channelID, text string) (models.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.FailPostsContaining {
		if strings.Contains(text, s) {
			return "", ErrFake
		}
	}
	f.seq++
	ref := models.MessageRef(fmt.Sprintf("%s/%d.000100", channelID, f.seq))
	f.posts = append(f.posts, Post{Channel: channelID, Text: text, Ref: ref})
	return ref, nil
}

func (f *FakeSlack) AddReaction(_ context.Context, ref models.MessageRef, kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailReactions {
		return ErrFake
	}
	if f.reactions[ref] == nil {
		f.reactions[ref] = map[string]int{}
	}
	f.reactions[ref][kind]++
	return nil
}

func (f *FakeSlack) ReactionCounts(_ context.Context, ref models.MessageRef) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailReactionReads {
		return nil, ErrFake
	}
	out := map[string]int{}
	for kind, n := range f.reactions[ref] {
		out[kind] = n
	}
	return out, nil
}

func (f *FakeSlack) ChannelMembers(_ context.Context, channelID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.MembersErr != nil {
		return nil, f.MembersErr
	}
	return append([]string(nil), f.Members[channelID]...), nil
}

func (f *FakeSlack) SendDirectMessage(_ context.Context, userID, text string, startOver bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailDMsTo[userID] {
		return ErrFake
	}
	f.dms = append(f.dms, DM{User: userID, Text: text, StartOver: startOver})
	return nil
}

// SetReactions overwrites the raw reaction counts of a message
func (f *FakeSlack) SetReactions(ref models.MessageRef, counts map[string]int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions[ref] = counts
}

// Reactions returns the raw counts of a message
func (f *FakeSlack) Reactions(ref models.MessageRef) map[string]int {
	counts, _ := f.ReactionCounts(context.Background(), ref)
	return counts
}

// Posts returns every channel message in send order
func (f *FakeSlack) Posts() []Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Post(nil), f.posts...)
}

// PostsTo returns the messages sent to one channel
func (f *FakeSlack) PostsTo(channelID string) []Post {
	var out []Post
	for _, p := range f.Posts() {
		if p.Channel == channelID {
			out = append(out, p)
		}
	}
	return out
}

// LastPost returns the most recent channel message, or an empty Post
func (f *FakeSlack) LastPost() Post {
	posts := f.Posts()
	if len(posts) == 0 {
		return Post{}
	}
	return posts[len(posts)-1]
}

// DMsTo returns the direct messages sent to one user
func (f *FakeSlack) DMsTo(userID string) []DM {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []DM
	for _, dm := range f.dms {
		if dm.User == userID {
			out = append(out, dm)
		}
	}
	return out
}

// LastDM returns the most recent direct message to a user, or an empty DM
func (f *FakeSlack) LastDM(userID string) DM {
	dms := f.DMsTo(userID)
	if len(dms) == 0 {
		return DM{}
	}
	return dms[len(dms)-1]
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
