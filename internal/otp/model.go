package otp

import (
	"fmt"
	"time"
)

// Purpose scopes a code to the flow it was issued for.
type Purpose string

const (
	PurposeEmailVerification Purpose = "email verification"
	PurposePasswordReset     Purpose = "password reset"
)

// ParsePurpose validates a client-supplied purpose.
func ParsePurpose(s string) (Purpose, error) {
	switch p := Purpose(s); p {
	case PurposeEmailVerification, PurposePasswordReset:
		return p, nil
	default:
		return "", fmt.Errorf("unknown otp purpose %q", s)
	}
}

// Subject is the email subject line used when dispatching a code.
func (p Purpose) Subject() string {
	if p == PurposePasswordReset {
		return "Password Reset OTP"
	}
	return "Verify Email OTP"
}

// OTP is a persisted one-time password.
type OTP struct {
	ID               int64
	Code             string
	AssignedTo       string
	AssignedFor      Purpose
	CreationTime     time.Time
	ExpirationTime   time.Time
	IsVerified       bool
	VerificationTime *time.Time
}

// ExpiredAt reports whether the code is no longer usable at t.
func (o OTP) ExpiredAt(t time.Time) bool {
	return !o.ExpirationTime.After(t)
}
