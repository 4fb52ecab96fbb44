// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()

	m.SessionStarted()
	m.AnswerRecorded()
	m.AnswerRecorded()
	m.ParticipantCompleted()
	m.MessagePublished()
	m.PublishFailed()
	m.Summarized()

	if got := testutil.ToFloat64(m.answersRecorded); got != 2 {
		t.Errorf("expected 2 answers, got %v", got)
	}
	if got := testutil.ToFloat64(m.activeSession); got != 1 {
		t.Errorf("expected active gauge 1, got %v", got)
	}

	m.SessionEnded()
	if got := testutil.ToFloat64(m.activeSession); got != 0 {
		t.Errorf("expected active gauge 0, got %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.SessionStarted()
	m.SessionEnded()
	m.AnswerRecorded()
	m.ParticipantCompleted()
	m.MessagePublished()
	m.PublishFailed()
	m.Summarized()

	if m.Handler() == nil {
		t.Error("expected a handler even for nil metrics")
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.SessionStarted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "retrobot_sessions_started_total 1") {
		t.Errorf("expected sessions counter in output, got:\n%s", body)
	}
}

func TestNewUsesSeparateRegistries(t *testing.T) {
	// Registering twice on a shared registry would panic
	New()
	New()
}
