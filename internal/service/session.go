package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"securebank/internal/metrics"
	"securebank/internal/models"
	"securebank/internal/util"
)

const sessionTokenBytes = 16

type session struct {
	token        string
	user         models.User
	startedAt    time.Time
	expiresAt    time.Time
	lastActivity time.Time
	generation   uint64
}

func (s *session) idleDeadline(idle time.Duration) time.Time {
	return s.lastActivity.Add(idle)
}

func newSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// armPoll schedules the next session check, cancelling any pending one.
func (e *Engine) armPoll() {
	if e.pollTimer != nil {
		e.pollTimer.Stop()
	}
	gen := e.session.generation
	e.pollTimer = e.clock.AfterFunc(e.cfg.PollInterval, func() { e.poll(gen) })
}

func (e *Engine) poll(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.session == nil || e.session.generation != gen {
		return
	}
	e.pollTimer = nil

	if reason, expired := e.expired(e.clock.Now()); expired {
		e.logout(reason)
		return
	}
	e.armPoll()
}

// expired checks the absolute deadline before the idle one.
func (e *Engine) expired(now time.Time) (models.LogoutReason, bool) {
	if !now.Before(e.session.expiresAt) {
		return models.LogoutMaxSession, true
	}
	if now.Sub(e.session.lastActivity) >= e.cfg.IdleTimeout {
		return models.LogoutInactivityTimeout, true
	}
	return "", false
}

// Authenticate resolves a bearer token to the signed-in user. A session past
// either deadline is terminated here rather than waiting for the next poll.
func (e *Engine) Authenticate(token string) (models.User, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil || token == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(e.session.token)) != 1 {
		return models.User{}, ErrNotAuthenticated
	}
	if reason, expired := e.expired(e.clock.Now()); expired {
		e.logout(reason)
		return models.User{}, ErrNotAuthenticated
	}
	return e.session.user, nil
}

// CurrentUser returns the signed-in user.
func (e *Engine) CurrentUser() (models.User, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return models.User{}, ErrNotAuthenticated
	}
	return e.session.user, nil
}

// RecordActivity slides the inactivity deadline. Calls less than the
// throttle interval apart are ignored.
func (e *Engine) RecordActivity() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return ErrNotAuthenticated
	}
	now := e.clock.Now()
	if now.Sub(e.session.lastActivity) < e.cfg.ActivityThrottle {
		return nil
	}
	e.session.lastActivity = now
	return nil
}

// Logout ends the session or pending login flow. It is safe to call at any
// time; it reports whether anything was active.
func (e *Engine) Logout(reason models.LogoutReason) bool {
	if reason == "" {
		reason = models.LogoutUserAction
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.logout(reason)
}

func (e *Engine) logout(reason models.LogoutReason) bool {
	active := e.session != nil || e.state == models.StateMFA
	if active {
		e.record(models.EventLogout, fmt.Sprintf("User logged out: %s", reason))
	}

	if e.pollTimer != nil {
		e.pollTimer.Stop()
		e.pollTimer = nil
	}
	username := e.actor()
	e.session = nil
	e.pendingUser = nil
	e.state = models.StateCredentials
	e.lock.resetCounters()

	if !active {
		return false
	}

	metrics.SessionTerminations.WithLabelValues(string(reason)).Inc()
	e.logger.Info("User logged out",
		util.String("username", username),
		util.String("reason", string(reason)),
	)

	switch reason {
	case models.LogoutInactivityTimeout:
		e.alerts.Show(models.AlertWarning, "Session expired due to 5 minutes of inactivity")
	case models.LogoutMaxSession:
		e.alerts.Show(models.AlertWarning, "Session expired after 1 hour")
	}
	return true
}

// Snapshot reports the engine state as the dashboard displays it.
func (e *Engine) Snapshot() models.SessionSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	snap := models.SessionSnapshot{
		State:         e.state,
		LoginAttempts: e.lock.loginAttempts,
		MFAAttempts:   e.lock.mfaAttempts,
	}

	if e.lock.locked && now.Before(e.lock.until) {
		snap.Locked = true
		snap.LockedSeconds = ceilSeconds(e.lock.until.Sub(now))
	}

	if e.session != nil {
		user := e.session.user
		expiresAt := e.session.expiresAt
		idleDeadline := e.session.idleDeadline(e.cfg.IdleTimeout)
		snap.User = &user
		snap.ExpiresAt = &expiresAt
		snap.IdleDeadline = &idleDeadline
		snap.RemainingSeconds = ceilSeconds(expiresAt.Sub(now))
		snap.IdleSeconds = ceilSeconds(idleDeadline.Sub(now))
	}
	return snap
}
