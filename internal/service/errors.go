package service

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrLocked             = errors.New("account locked")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidMFACode     = errors.New("invalid MFA code")
	ErrInvalidState       = errors.New("operation not valid in current authentication state")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrValidation         = errors.New("validation failed")
	ErrLimitExceeded      = errors.New("transaction limit exceeded")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrNotPending         = errors.New("transaction is not pending approval")
)

type lockStep string

const (
	stepCredentials lockStep = "credentials"
	stepMFA         lockStep = "mfa"
)

// LockedError matches ErrLocked. Engaged is set on the failure that started
// the lockout, as opposed to an attempt rejected while one is running.
type LockedError struct {
	Remaining time.Duration
	Engaged   bool
	Step      lockStep
}

func (e *LockedError) Error() string {
	switch {
	case e.Engaged && e.Step == stepMFA:
		return fmt.Sprintf("Account locked due to multiple failed MFA attempts. Locked for %d seconds. You will be redirected to login.", e.Seconds())
	case e.Engaged:
		return fmt.Sprintf("Account locked due to multiple failed attempts. Locked for %d seconds.", e.Seconds())
	default:
		return fmt.Sprintf("Account locked. Try again in %d seconds.", e.Seconds())
	}
}

func (e *LockedError) Is(target error) bool {
	return target == ErrLocked
}

// Seconds is the remaining lockout rounded up.
func (e *LockedError) Seconds() int64 {
	return ceilSeconds(e.Remaining)
}

// AttemptError wraps a rejected credential or MFA submission with the number
// of attempts left before lockout.
type AttemptError struct {
	Err       error
	Remaining int
}

func (e *AttemptError) Error() string {
	plural := "s"
	if e.Remaining == 1 {
		plural = ""
	}
	prefix := "Incorrect username or password"
	if errors.Is(e.Err, ErrInvalidMFACode) {
		prefix = "Invalid MFA code"
	}
	return fmt.Sprintf("%s. %d attempt%s remaining before account lockout.", prefix, e.Remaining, plural)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

// ValidationError carries one message per offending request field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "Please fix validation errors"
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DeniedError is an authorization or balance refusal. Error returns the
// user-facing reason.
type DeniedError struct {
	Reason string
	Err    error
}

func (e *DeniedError) Error() string {
	return e.Reason
}

func (e *DeniedError) Unwrap() error {
	return e.Err
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(math.Ceil(d.Seconds()))
}
