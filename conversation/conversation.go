// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package conversation

import (
	"sort"
	"sync"

	"github.com/danielhkuo/retrobot/models"
)

// State is one participant's private interview progress.
type State struct {
	CurrentQuestion int
	Responses       [][]string // one bucket per question
	Questions       []string
	Completed       bool
}

// CompletionFunc receives a participant's flattened answers once the last
// question is advanced past.
type CompletionFunc func(participantID string, answers []models.Answer)

// Store holds one State per participant. It does not know about sessions;
// completion is reported through the callback passed to Advance.
type Store struct {
	mu     sync.Mutex
	states map[string]*State
}

func NewStore() *Store {
	return &Store{states: make(map[string]*State)}
}

func emptyBuckets(n int) [][]string {
	buckets := make([][]string, n)
	for i := range buckets {
		buckets[i] = []string{}
	}
	return buckets
}

// Initialize creates a fresh state, replacing any existing one.
func (s *Store) Initialize(participantID string, questions []string) {
	qs := append([]string(nil), questions...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[participantID] = &State{
		Responses: emptyBuckets(len(qs)),
		Questions: qs,
	}
}

// State returns a copy of the participant's state.
func (s *Store) State(participantID string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[participantID]
	if !ok {
		return State{}, false
	}
	return st.clone(), true
}

func (st *State) clone() State {
	out := State{
		CurrentQuestion: st.CurrentQuestion,
		Responses:       make([][]string, len(st.Responses)),
		Questions:       st.Questions,
		Completed:       st.Completed,
	}
	for i, bucket := range st.Responses {
		out.Responses[i] = append([]string{}, bucket...)
	}
	return out
}

// AppendAnswer adds text to the bucket of the current question. It returns
// false for unknown participants and for participants who already finished.
func (s *Store) AppendAnswer(participantID, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[participantID]
	if !ok || st.Completed {
		return false
	}
	st.Responses[st.CurrentQuestion] = append(st.Responses[st.CurrentQuestion], text)
	return true
}

// Advance moves to the next question. Reaching the end marks the state
// completed and calls onComplete outside the store lock. Advancing a
// completed participant does nothing.
func (s *Store) Advance(participantID string, onComplete CompletionFunc) bool {
	s.mu.Lock()
	st, ok := s.states[participantID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	if st.Completed {
		s.mu.Unlock()
		return true
	}

	st.CurrentQuestion++
	if st.CurrentQuestion < len(st.Questions) {
		s.mu.Unlock()
		return true
	}

	st.Completed = true
	answers := st.flatten()
	s.mu.Unlock()

	if onComplete != nil {
		onComplete(participantID, answers)
	}
	return true
}

// flatten turns the buckets into ordered answer records, question order first
// and submission order within a question.
func (st *State) flatten() []models.Answer {
	answers := []models.Answer{}
	for i, bucket := range st.Responses {
		for _, text := range bucket {
			answers = append(answers, models.Answer{
				QuestionIndex: i,
				Question:      st.Questions[i],
				Answer:        text,
			})
		}
	}
	return answers
}

// Restart rewinds the participant to the first question with empty buckets.
func (s *Store) Restart(participantID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[participantID]
	if !ok {
		return false
	}
	st.CurrentQuestion = 0
	st.Responses = emptyBuckets(len(st.Questions))
	st.Completed = false
	return true
}

// Completed lists participants who finished every question.
func (s *Store) Completed() []string {
	return s.filter(func(st *State) bool { return st.Completed })
}

// InProgress lists participants who were reached but have not finished.
func (s *Store) InProgress() []string {
	return s.filter(func(st *State) bool { return !st.Completed })
}

func (s *Store) filter(keep func(*State) bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := []string{}
	for id, st := range s.states {
		if keep(st) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// NotStarted returns the ids from all that have no state, preserving the
// order of all.
func (s *Store) NotStarted(all []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := []string{}
	for _, id := range all {
		if _, ok := s.states[id]; !ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *Store) Remove(participantID string) {
	s.mu.Lock()
	delete(s.states, participantID)
	s.mu.Unlock()
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.states = make(map[string]*State)
	s.mu.Unlock()
}

// Len is the number of tracked participants.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
