// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics exposes the bot's Prometheus counters. A nil *Metrics is
// valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "retrobot"

type Metrics struct {
	Registry *prometheus.Registry

	sessionsStarted       prometheus.Counter
	answersRecorded       prometheus.Counter
	participantsCompleted prometheus.Counter
	messagesPublished     prometheus.Counter
	publishFailures       prometheus.Counter
	summaries             prometheus.Counter
	activeSession         prometheus.Gauge
}

func counter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
}

// New builds a Metrics with its own registry, so tests can create as many
// as they like.
func New() *Metrics {
	m := &Metrics{
		Registry:              prometheus.NewRegistry(),
		sessionsStarted:       counter("sessions_started_total", "Sessions created."),
		answersRecorded:       counter("answers_recorded_total", "Individual answers collected over DM."),
		participantsCompleted: counter("participants_completed_total", "Participants who finished every question."),
		messagesPublished:     counter("voting_messages_published_total", "Answers published to a channel for voting."),
		publishFailures:       counter("publish_failures_total", "Voting messages that could not be published."),
		summaries:             counter("summaries_total", "Sessions summarized."),
		activeSession: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_session",
			Help:      "1 while a session is active.",
		}),
	}

	m.Registry.MustRegister(
		m.sessionsStarted,
		m.answersRecorded,
		m.participantsCompleted,
		m.messagesPublished,
		m.publishFailures,
		m.summaries,
		m.activeSession,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
	m.activeSession.Set(1)
}

func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.activeSession.Set(0)
}

func (m *Metrics) AnswerRecorded() {
	if m == nil {
		return
	}
	m.answersRecorded.Inc()
}

func (m *Metrics) ParticipantCompleted() {
	if m == nil {
		return
	}
	m.participantsCompleted.Inc()
}

func (m *Metrics) MessagePublished() {
	if m == nil {
		return
	}
	m.messagesPublished.Inc()
}

func (m *Metrics) PublishFailed() {
	if m == nil {
		return
	}
	m.publishFailures.Inc()
}

func (m *Metrics) Summarized() {
	if m == nil {
		return
	}
	m.summaries.Inc()
}
