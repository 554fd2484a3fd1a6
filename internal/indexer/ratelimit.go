// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package indexer

import (
	"sync"
	"time"
)

// escalationPeriods drive the cooldown applied after repeated rate-limit
// responses from a site. Level 0 means no cooldown; the level resets on the
// next successful request.
var escalationPeriods = []time.Duration{
	0,
	1 * time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	1 * time.Hour,
	6 * time.Hour,
}

type rateState struct {
	lastRequest     time.Duration
	cooldownUntil   time.Duration
	escalationLevel int
}

// RateLimiter tracks per-definition request timing and cooldowns. It is
// scoped per indexer, never global: one strict site cannot throttle
// queries to others. It does not block; callers ask for the wait and own
// their own timers.
type RateLimiter struct {
	mu        sync.Mutex
	states    map[string]*rateState
	startTime time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		states:    make(map[string]*rateState),
		startTime: time.Now(),
	}
}

// NextWait returns how long the caller must wait before requesting against
// the given definition, honoring both the definition's minimum inter-request
// interval and any active cooldown.
func (r *RateLimiter) NextWait(indexerID string, minInterval time.Duration) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.getStateLocked(indexerID)
	now := time.Since(r.startTime)

	var wait time.Duration
	if state.cooldownUntil > 0 && state.cooldownUntil > now {
		wait = state.cooldownUntil - now
	}
	if minInterval > 0 && state.lastRequest >= 0 {
		next := state.lastRequest + minInterval
		if next > now && next-now > wait {
			wait = next - now
		}
	}
	return wait
}

// RecordRequest marks the moment a request was issued against a definition.
func (r *RateLimiter) RecordRequest(indexerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.getStateLocked(indexerID)
	state.lastRequest = time.Since(r.startTime)
}

// RecordFailure escalates the cooldown level after a rate-limit response
// and returns the cooldown that now applies.
func (r *RateLimiter) RecordFailure(indexerID string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.getStateLocked(indexerID)
	if state.escalationLevel < len(escalationPeriods)-1 {
		state.escalationLevel++
	}

	cooldown := escalationPeriods[state.escalationLevel]
	if cooldown > 0 {
		state.cooldownUntil = time.Since(r.startTime) + cooldown
	}
	return cooldown
}

// RecordSuccess resets the escalation level.
func (r *RateLimiter) RecordSuccess(indexerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.getStateLocked(indexerID).escalationLevel = 0
}

// IsInCooldown reports whether a definition is cooling down and until when.
func (r *RateLimiter) IsInCooldown(indexerID string) (bool, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.getStateLocked(indexerID)
	now := time.Since(r.startTime)
	if state.cooldownUntil > 0 && state.cooldownUntil > now {
		return true, r.startTime.Add(state.cooldownUntil)
	}
	return false, time.Time{}
}

func (r *RateLimiter) getStateLocked(indexerID string) *rateState {
	state, ok := r.states[indexerID]
	if !ok {
		state = &rateState{lastRequest: -1}
		r.states[indexerID] = state
	}
	return state
}
