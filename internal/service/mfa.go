package service

import (
	"crypto/subtle"

	"securebank/internal/models"
)

const mfaSentMessage = "MFA code sent to your registered device"

// MFAVerifier issues and checks the second factor for a user whose
// credentials already passed.
type MFAVerifier interface {
	Challenge(user models.User) models.Challenge
	Verify(user models.User, code string) bool
}

// StaticCodeVerifier accepts a single configured code for every user. It
// stands in for a TOTP verifier in demo deployments.
type StaticCodeVerifier struct {
	code string
}

func NewStaticCodeVerifier(code string) *StaticCodeVerifier {
	return &StaticCodeVerifier{code: code}
}

func (v *StaticCodeVerifier) Challenge(models.User) models.Challenge {
	return models.Challenge{Method: "totp", Message: mfaSentMessage}
}

func (v *StaticCodeVerifier) Verify(_ models.User, code string) bool {
	if v.code == "" || code == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(v.code)) == 1
}
