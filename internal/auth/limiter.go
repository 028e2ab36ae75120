// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per client IP. It exists separately
// from the general request rate limit so credential stuffing is slowed even
// when the overall budget is generous.
type LoginLimiter struct {
	limiters  map[string]*limiterEntry
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	stopClean chan struct{}
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLoginLimiter allows attemptsPerMinute per IP with an equal burst, and
// starts a background sweep of idle entries.
func NewLoginLimiter(attemptsPerMinute int) *LoginLimiter {
	if attemptsPerMinute <= 0 {
		attemptsPerMinute = 10
	}
	ll := &LoginLimiter{
		limiters:  make(map[string]*limiterEntry),
		rate:      rate.Every(time.Minute / time.Duration(attemptsPerMinute)),
		burst:     attemptsPerMinute,
		stopClean: make(chan struct{}),
	}
	go ll.startCleanup(5 * time.Minute)
	return ll
}

// Allow reports whether a login attempt from the IP may proceed.
func (ll *LoginLimiter) Allow(ip string) bool {
	ll.mu.Lock()
	entry, exists := ll.limiters[ip]
	if !exists {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(ll.rate, ll.burst),
		}
		ll.limiters[ip] = entry
	}
	entry.lastAccess = time.Now()
	limiter := entry.limiter
	ll.mu.Unlock()

	return limiter.Allow()
}

// startCleanup periodically removes limiters idle for over an hour.
func (ll *LoginLimiter) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ll.cleanup()
		case <-ll.stopClean:
			return
		}
	}
}

func (ll *LoginLimiter) cleanup() {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	threshold := time.Now().Add(-1 * time.Hour)
	for ip, entry := range ll.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(ll.limiters, ip)
		}
	}
}

// Stop terminates the cleanup goroutine.
func (ll *LoginLimiter) Stop() {
	close(ll.stopClean)
}
