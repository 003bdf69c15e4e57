package service

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"securebank/internal/audit"
	"securebank/internal/clock"
	"securebank/internal/config"
	"securebank/internal/models"
	"securebank/internal/util"
)

type EngineConfig struct {
	MaxLifetime      time.Duration
	IdleTimeout      time.Duration
	PollInterval     time.Duration
	ActivityThrottle time.Duration
	LockoutThreshold int
	LockoutBase      time.Duration
}

func EngineConfigFrom(cfg *config.Config) EngineConfig {
	return EngineConfig{
		MaxLifetime:      cfg.Session.MaxLifetime,
		IdleTimeout:      cfg.Session.IdleTimeout,
		PollInterval:     cfg.Session.PollInterval,
		ActivityThrottle: cfg.Session.ActivityThrottle,
		LockoutThreshold: cfg.Lockout.Threshold,
		LockoutBase:      cfg.Lockout.BaseDuration,
	}
}

// Engine is the authentication state machine and session tracker for the
// single dashboard session. All state is guarded by mu; timer callbacks
// re-acquire it and check a generation so stale timers do nothing.
type Engine struct {
	mu          sync.Mutex
	cfg         EngineConfig
	clock       clock.Clock
	users       *UserDirectory
	mfa         MFAVerifier
	securityLog *audit.SecurityLog
	alerts      *AlertCenter
	logger      *zap.Logger

	state        models.AuthState
	pendingUser  *models.User
	lastUsername string
	lock         lockout

	session    *session
	pollTimer  clock.Timer
	generation uint64
	closed     bool
}

func NewEngine(
	cfg EngineConfig,
	clk clock.Clock,
	users *UserDirectory,
	mfa MFAVerifier,
	securityLog *audit.SecurityLog,
	alerts *AlertCenter,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:         cfg,
		clock:       clk,
		users:       users,
		mfa:         mfa,
		securityLog: securityLog,
		alerts:      alerts,
		logger:      logger,
		state:       models.StateCredentials,
		lock: lockout{
			threshold: cfg.LockoutThreshold,
			base:      cfg.LockoutBase,
		},
	}
}

// SubmitCredentials checks username and password and, on success, moves the
// engine to the MFA step.
func (e *Engine) SubmitCredentials(username, password string) (models.Challenge, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	if err := e.checkLocked(now); err != nil {
		return models.Challenge{}, e.fail(err)
	}
	if e.state != models.StateCredentials {
		return models.Challenge{}, ErrInvalidState
	}
	if username == "" || password == "" {
		e.alerts.Show(models.AlertError, "Please enter username and password")
		return models.Challenge{}, ErrMissingCredentials
	}

	e.lastUsername = username

	user, ok, err := e.users.Authenticate(username, password)
	if err != nil {
		return models.Challenge{}, fmt.Errorf("submit credentials: %w", err)
	}

	if !ok {
		e.lock.loginAttempts++
		n := e.lock.loginAttempts
		e.record(models.EventAuthFailed, fmt.Sprintf("Failed login attempt #%d", n))
		if n >= e.lock.threshold {
			return models.Challenge{}, e.fail(e.engageLockout(now, stepCredentials, n))
		}
		return models.Challenge{}, e.fail(&AttemptError{Err: ErrInvalidCredentials, Remaining: e.lock.threshold - n})
	}

	e.lock.loginAttempts = 0
	e.pendingUser = &user
	e.state = models.StateMFA
	e.record(models.EventAuthSuccess, "User login successful")

	challenge := e.mfa.Challenge(user)
	e.alerts.Show(models.AlertInfo, challenge.Message)
	return challenge, nil
}

// SubmitMFACode completes sign-in and starts the session tracker.
func (e *Engine) SubmitMFACode(code string) (models.SessionGrant, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	if err := e.checkLocked(now); err != nil {
		return models.SessionGrant{}, e.fail(err)
	}
	if e.state != models.StateMFA || e.pendingUser == nil {
		return models.SessionGrant{}, ErrInvalidState
	}

	if !e.mfa.Verify(*e.pendingUser, code) {
		e.lock.mfaAttempts++
		n := e.lock.mfaAttempts
		e.record(models.EventMFAFailed, fmt.Sprintf("Invalid MFA code entered - attempt #%d", n))
		if n >= e.lock.threshold {
			return models.SessionGrant{}, e.fail(e.engageLockout(now, stepMFA, n))
		}
		return models.SessionGrant{}, e.fail(&AttemptError{Err: ErrInvalidMFACode, Remaining: e.lock.threshold - n})
	}

	token, err := newSessionToken()
	if err != nil {
		return models.SessionGrant{}, err
	}

	user := *e.pendingUser
	e.generation++
	e.session = &session{
		token:        token,
		user:         user,
		startedAt:    now,
		expiresAt:    now.Add(e.cfg.MaxLifetime),
		lastActivity: now,
		generation:   e.generation,
	}
	e.pendingUser = nil
	e.state = models.StateAuthenticated
	e.lock.resetCounters()
	e.armPoll()

	e.record(models.EventMFASuccess, "Multi-factor authentication successful")
	e.alerts.Show(models.AlertSuccess, "Login successful!")
	e.logger.Info("Session started",
		util.String("username", user.Username),
		util.String("role", string(user.Role)),
		util.Time("expires_at", e.session.expiresAt),
	)

	return models.SessionGrant{Token: token, User: user, ExpiresAt: e.session.expiresAt}, nil
}

// Close stops all timers. No pending callback acts on the engine afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	if e.pollTimer != nil {
		e.pollTimer.Stop()
		e.pollTimer = nil
	}
	if e.lock.timer != nil {
		e.lock.timer.Stop()
		e.lock.timer = nil
	}
}

// actor is the current user's username, else the pending or last attempted one.
func (e *Engine) actor() string {
	switch {
	case e.session != nil:
		return e.session.user.Username
	case e.pendingUser != nil:
		return e.pendingUser.Username
	default:
		return e.lastUsername
	}
}

func (e *Engine) record(eventType models.SecurityEventType, description string) {
	e.securityLog.Record(eventType, description, e.actor())
}

// fail raises an error alert for err and returns it unchanged.
func (e *Engine) fail(err error) error {
	e.alerts.Show(models.AlertError, err.Error())
	return err
}
