// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/retrobot/handlers"
	"github.com/danielhkuo/retrobot/metrics"
	"github.com/danielhkuo/retrobot/middleware"
)

// NewRouter wires the ops endpoints. history may be nil when the archive is
// disabled.
func NewRouter(status handlers.StatusSource, history handlers.HistorySource, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()

	opsHandler := handlers.NewOpsHandler(status, history)

	// Health check
	mux.HandleFunc("GET /health", opsHandler.Health)

	// Active session
	mux.HandleFunc("GET /session", middleware.WithLogging(opsHandler.Status))

	// Archive
	mux.HandleFunc("GET /history", middleware.WithLogging(opsHandler.History))
	mux.HandleFunc("GET /history/{id}", middleware.WithLogging(opsHandler.HistoryDetail))

	// Prometheus scrape
	mux.Handle("GET /metrics", m.Handler())

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("retrobot ops v1"))
	})

	return mux
}
