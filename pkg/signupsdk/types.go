package signupsdk

// Step names as they appear on the wire.
const (
	StepPhoneEntry      = "phone_entry"
	StepOTPVerification = "otp_verification"
	StepProfileEntry    = "profile_entry"
	StepCompleted       = "completed"
	StepCancelled       = "cancelled"
)

// Event kinds as they appear on the wire.
const (
	EventFocusAdvance = "focus_advance"
	EventOTPSent      = "otp_sent"
	EventCompleted    = "completed"
	EventCancelled    = "cancelled"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Event is a one-shot notification produced by an operation. Focus-advance
// events carry the index of the OTP box that should receive focus.
type Event struct {
	Kind  string `json:"kind"`
	Index int    `json:"index,omitempty"`
}

// SessionResponse is the snapshot of a signup session returned by every
// session endpoint. Once Step is "completed" or "cancelled" the session no
// longer exists on the server.
type SessionResponse struct {
	ID              string            `json:"id"`
	Step            string            `json:"step"`
	PhoneNumber     string            `json:"phone_number"`
	TermsAccepted   bool              `json:"terms_accepted"`
	OTPDigits       []string          `json:"otp_digits"`
	ResendCountdown int               `json:"resend_countdown"`
	ResendEnabled   bool              `json:"resend_enabled"`
	FullName        string            `json:"full_name"`
	Email           string            `json:"email"`
	FieldErrors     map[string]string `json:"field_errors"`
	Events          []Event           `json:"events,omitempty"`
}

// HasEvent reports whether the response carries an event of the given kind.
func (r *SessionResponse) HasEvent(kind string) bool {
	for _, e := range r.Events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// SubmitPhoneRequest is the body of POST /v1/signup/sessions/{id}/phone.
type SubmitPhoneRequest struct {
	PhoneNumber   string `json:"phone_number"`
	TermsAccepted bool   `json:"terms_accepted"`
}

// UpdateOTPDigitRequest is the body of PUT /v1/signup/sessions/{id}/otp/{index}.
type UpdateOTPDigitRequest struct {
	Value string `json:"value"`
}

// SubmitProfileRequest is the body of POST /v1/signup/sessions/{id}/profile.
type SubmitProfileRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// HealthResponse represents the response structure for health check endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks holds per-dependency readiness.
type HealthChecks struct {
	Database string `json:"database"`
}
