package models

import "time"

// VerificationToken is an ephemeral one-time sign-in code. At most one
// live token exists per identifier: issuing a new code purges the old
// rows first, and a successful verification deletes the row immediately.
type VerificationToken struct {
	Identifier string    `json:"identifier"` // email address
	Token      string    `json:"token"`      // 6-digit code
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the token is past its expiry at the given time
func (t *VerificationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
