package service

import (
	"time"

	"securebank/internal/clock"
	"securebank/internal/metrics"
	"securebank/internal/models"
	"securebank/internal/util"
)

// maxLockoutExponent caps the geometric growth at base*2^10.
const maxLockoutExponent = 10

// lockout holds the attempt counters and the lockout overlay. It is guarded
// by the owning Engine's mutex.
type lockout struct {
	threshold     int
	base          time.Duration
	loginAttempts int
	mfaAttempts   int

	locked     bool
	until      time.Time
	step       lockStep
	timer      clock.Timer
	generation uint64
}

// durationFor returns base*2^(attempts-threshold).
func (l *lockout) durationFor(attempts int) time.Duration {
	exp := attempts - l.threshold
	if exp < 0 {
		exp = 0
	}
	if exp > maxLockoutExponent {
		exp = maxLockoutExponent
	}
	return l.base * time.Duration(1<<uint(exp))
}

func (l *lockout) resetCounters() {
	l.loginAttempts = 0
	l.mfaAttempts = 0
}

// checkLocked returns a *LockedError while a lockout is running. A lockout
// whose deadline has passed is released here even if its timer has not fired.
func (e *Engine) checkLocked(now time.Time) error {
	if !e.lock.locked {
		return nil
	}
	if !now.Before(e.lock.until) {
		e.releaseLockout()
		return nil
	}
	return &LockedError{Remaining: e.lock.until.Sub(now), Step: e.lock.step}
}

// engageLockout is called on the failed attempt that reached the threshold.
func (e *Engine) engageLockout(now time.Time, step lockStep, attempts int) error {
	d := e.lock.durationFor(attempts)

	if e.lock.timer != nil {
		e.lock.timer.Stop()
	}
	e.lock.generation++
	gen := e.lock.generation
	e.lock.locked = true
	e.lock.until = now.Add(d)
	e.lock.step = step
	e.lock.timer = e.clock.AfterFunc(d, func() { e.onLockoutTimer(gen) })

	if step == stepMFA {
		e.state = models.StateCredentials
		e.pendingUser = nil
	}

	metrics.Lockouts.WithLabelValues(string(step)).Inc()
	e.logger.Warn("Lockout engaged",
		util.String("step", string(step)),
		util.Int("attempts", attempts),
		util.Duration("duration", d),
		util.String("username", e.actor()),
	)

	return &LockedError{Remaining: d, Engaged: true, Step: step}
}

func (e *Engine) onLockoutTimer(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || !e.lock.locked || e.lock.generation != gen {
		return
	}
	e.releaseLockout()
}

// releaseLockout clears the overlay only. The counters keep counting
// consecutive failures, so the next failure locks for the next step.
func (e *Engine) releaseLockout() {
	if e.lock.timer != nil {
		e.lock.timer.Stop()
		e.lock.timer = nil
	}
	e.lock.generation++
	e.lock.locked = false
	e.lock.until = time.Time{}

	e.logger.Info("Lockout released", util.String("step", string(e.lock.step)))
}
