package models

import "time"

type AuthState string

const (
	StateCredentials   AuthState = "credentials"
	StateMFA           AuthState = "mfa"
	StateAuthenticated AuthState = "authenticated"
)

type LogoutReason string

const (
	LogoutUserAction        LogoutReason = "user_action"
	LogoutInactivityTimeout LogoutReason = "inactivity_timeout"
	LogoutMaxSession        LogoutReason = "max_session_expired"
)

// SessionSnapshot is the read model handed to the rendering layer.
type SessionSnapshot struct {
	State            AuthState  `json:"state"`
	User             *User      `json:"user,omitempty"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	IdleDeadline     *time.Time `json:"idleDeadline,omitempty"`
	RemainingSeconds int64      `json:"remainingSeconds"`
	IdleSeconds      int64      `json:"idleSeconds"`
	Locked           bool       `json:"locked"`
	LockedSeconds    int64      `json:"lockedSeconds"`
	LoginAttempts    int        `json:"loginAttempts"`
	MFAAttempts      int        `json:"mfaAttempts"`
}

// WithoutSession drops the signed-in user and the session deadlines, leaving
// the state, lock and attempt fields.
func (s SessionSnapshot) WithoutSession() SessionSnapshot {
	s.User = nil
	s.ExpiresAt = nil
	s.IdleDeadline = nil
	s.RemainingSeconds = 0
	s.IdleSeconds = 0
	return s
}

// Challenge is returned once credentials pass and a second factor is expected.
type Challenge struct {
	Method  string `json:"method"`
	Message string `json:"message"`
}

// SessionGrant is returned on successful MFA.
type SessionGrant struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AlertSeverity string

const (
	AlertSuccess AlertSeverity = "success"
	AlertError   AlertSeverity = "error"
	AlertWarning AlertSeverity = "warning"
	AlertInfo    AlertSeverity = "info"
)

type Alert struct {
	Severity  AlertSeverity `json:"type"`
	Message   string        `json:"message"`
	ShownAt   time.Time     `json:"shownAt"`
	ExpiresAt time.Time     `json:"expiresAt"`
}
