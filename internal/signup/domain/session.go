package domain

import (
	"maps"
	"time"
)

const (
	OTPLength = 6 // number of OTP input boxes

	ResendCountdownSeconds = 30 // countdown reset value when entering OTP verification
)

// Session is the state of one signup flow from phone entry until completion
// or cancellation. It is never persisted once the flow exits.
type Session struct {
	ID              string
	Step            Step
	PhoneNumber     string // as entered, not normalised
	TermsAccepted   bool
	OTPDigits       [OTPLength]string
	ResendCountdown int // seconds until resend is allowed
	FullName        string
	Email           string
	FieldErrors     map[Field]string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewSession returns a session positioned at phone entry.
func NewSession(id string, now time.Time) Session {
	return Session{
		ID:              id,
		Step:            StepPhoneEntry,
		ResendCountdown: ResendCountdownSeconds,
		FieldErrors:     map[Field]string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Clone returns a deep copy so that callers can mutate it freely.
func (s Session) Clone() Session {
	out := s
	out.FieldErrors = make(map[Field]string, len(s.FieldErrors))
	maps.Copy(out.FieldErrors, s.FieldErrors)
	return out
}

// OTP returns the concatenation of all entered digits.
func (s Session) OTP() string {
	var code string
	for _, d := range s.OTPDigits {
		code += d
	}
	return code
}

// ResendEnabled reports whether the user may request a new code.
func (s Session) ResendEnabled() bool {
	return s.Step == StepOTPVerification && s.ResendCountdown == 0
}

// Done reports whether the flow has exited.
func (s Session) Done() bool {
	return s.Step.Terminal()
}
