package domain

// EventKind identifies an outward signal produced while applying an operation.
type EventKind string

const (
	EventFocusAdvance EventKind = "focus_advance" // UI should focus OTP box Index
	EventOTPSent      EventKind = "otp_sent"
	EventCompleted    EventKind = "completed"
	EventCancelled    EventKind = "cancelled"
)

type Event struct {
	Kind  EventKind
	Index int // only set for EventFocusAdvance
}
