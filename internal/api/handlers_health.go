// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package api

import (
	"net/http"
	"time"
)

// serverStart anchors the uptime reported by the health endpoint.
var serverStart = time.Now()

// healthStatus is the payload for the health endpoint.
type healthStatus struct {
	Status    string `json:"status"`
	Database  bool   `json:"database"`
	UptimeSec int64  `json:"uptime_seconds"`
	Version   string `json:"version"`
}

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Health reports overall health: degraded when the database is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil

	status := "healthy"
	code := http.StatusOK
	if !dbConnected {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	rw := NewResponseWriter(w, r)
	if code != http.StatusOK {
		rw.ErrorWithDetails(code, ErrCodeServiceUnavailable, "Service degraded", healthStatus{
			Status:    status,
			Database:  dbConnected,
			UptimeSec: int64(time.Since(serverStart).Seconds()),
			Version:   Version,
		})
		return
	}
	rw.Success(healthStatus{
		Status:    status,
		Database:  dbConnected,
		UptimeSec: int64(time.Since(serverStart).Seconds()),
		Version:   Version,
	})
}

// HealthLive is the liveness probe: the process is up and serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady is the readiness probe: dependencies are reachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.db == nil || h.db.Ping(r.Context()) != nil {
		NewResponseWriter(w, r).ServiceUnavailable("Database not ready")
		return
	}
	NewResponseWriter(w, r).Success(map[string]string{"status": "ready"})
}
