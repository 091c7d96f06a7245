// Package flow implements the signup state machine: phone entry, OTP
// verification and profile entry, with per-step validation.
//
// The controller performs no I/O. Side effects (sending an OTP, creating the
// account, moving UI focus) are delegated to Hooks supplied by the caller.
package flow

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/firststore/internal/signup/domain"
)

var (
	ErrInvalidStep = errors.New("flow: operation not allowed in current step")
	ErrFlowClosed  = errors.New("flow: signup already completed or cancelled")
	ErrHookPanic   = errors.New("flow: hook panicked")
)

// Hooks are the outward signals of a flow. Any of them may be nil.
type Hooks struct {
	// SendOTP is invoked when the flow enters OTP verification or a resend is
	// requested.
	SendOTP func(phoneNumber string) error

	// Complete is invoked once the profile has been accepted.
	Complete func() error

	// Cancel is invoked when the user navigates back from the first step.
	Cancel func() error

	// FocusAdvance asks the UI to move focus to the OTP box at index.
	FocusAdvance func(index int)
}

// Controller drives a single Session. It is not safe for concurrent use.
type Controller struct {
	session domain.Session
	hooks   Hooks
	fault   error

	now func() time.Time
}

// New starts a fresh flow at phone entry.
func New(id string, hooks Hooks) *Controller {
	return &Controller{
		session: domain.NewSession(id, time.Now().UTC()),
		hooks:   hooks,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Resume wraps an existing session, e.g. one loaded from a store.
func Resume(s domain.Session, hooks Hooks) *Controller {
	s = s.Clone()
	if s.FieldErrors == nil {
		s.FieldErrors = map[domain.Field]string{}
	}
	return &Controller{
		session: s,
		hooks:   hooks,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Session returns a copy of the current state.
func (c *Controller) Session() domain.Session { return c.session.Clone() }

func (c *Controller) Step() domain.Step { return c.session.Step }

// Fault returns the error raised by a hook during the last operation, if any.
// The user only ever sees the generic message; this is for logging.
func (c *Controller) Fault() error { return c.fault }

// SubmitPhone validates the phone step and moves to OTP verification.
func (c *Controller) SubmitPhone(phoneNumber string, termsAccepted bool) error {
	if err := c.begin(domain.StepPhoneEntry); err != nil {
		return err
	}

	staged := c.session.Clone()
	staged.PhoneNumber = phoneNumber
	staged.TermsAccepted = termsAccepted

	if field, msg, ok := validatePhone(phoneNumber, termsAccepted); !ok {
		c.reject(staged, field, msg)
		return nil
	}

	next := staged.Clone()
	next.Step = domain.StepOTPVerification
	next.ResendCountdown = domain.ResendCountdownSeconds
	next.FieldErrors = map[domain.Field]string{}

	c.transition(staged, next, c.sendOTP(phoneNumber))
	return nil
}

// UpdateOTPDigit stores one OTP box. Out of range indexes and values that are
// not empty or a single digit are ignored.
func (c *Controller) UpdateOTPDigit(index int, value string) error {
	if err := c.begin(domain.StepOTPVerification); err != nil {
		return err
	}
	if index < 0 || index >= domain.OTPLength || !validDigit(value) {
		return nil
	}

	next := c.session.Clone()
	next.OTPDigits[index] = value
	delete(next.FieldErrors, domain.FieldOTP)

	var effect func() error
	if value != "" && index < domain.OTPLength-1 && c.hooks.FocusAdvance != nil {
		effect = func() error {
			c.hooks.FocusAdvance(index + 1)
			return nil
		}
	}

	c.transition(c.session.Clone(), next, effect)
	return nil
}

// SubmitOTP moves to profile entry once all boxes are filled. The code itself
// is not verified here.
func (c *Controller) SubmitOTP() error {
	if err := c.begin(domain.StepOTPVerification); err != nil {
		return err
	}

	staged := c.session.Clone()
	if len(staged.OTP()) != domain.OTPLength {
		c.reject(staged, domain.FieldOTP, domain.MsgOTPIncomplete)
		return nil
	}

	next := staged.Clone()
	next.Step = domain.StepProfileEntry
	next.FieldErrors = map[domain.Field]string{}

	c.transition(staged, next, nil)
	return nil
}

// DecrementCountdown is the one second timer tick of the OTP step. It floors
// at zero and never transitions.
func (c *Controller) DecrementCountdown() error {
	if err := c.begin(domain.StepOTPVerification); err != nil {
		return err
	}
	if c.session.ResendCountdown > 0 {
		c.session.ResendCountdown--
	}
	return nil
}

// ResendOTP requests a new code once the countdown has expired. It is a no-op
// while the countdown is still running.
func (c *Controller) ResendOTP() error {
	if err := c.begin(domain.StepOTPVerification); err != nil {
		return err
	}
	if !c.session.ResendEnabled() {
		return nil
	}

	staged := c.session.Clone()
	next := staged.Clone()
	next.ResendCountdown = domain.ResendCountdownSeconds
	delete(next.FieldErrors, domain.FieldOTP)

	c.transition(staged, next, c.sendOTP(staged.PhoneNumber))
	return nil
}

// SubmitProfile validates the profile step and completes the flow.
func (c *Controller) SubmitProfile(fullName, email string) error {
	if err := c.begin(domain.StepProfileEntry); err != nil {
		return err
	}

	staged := c.session.Clone()
	staged.FullName = fullName
	staged.Email = email

	if field, msg, ok := validateProfile(fullName, email); !ok {
		c.reject(staged, field, msg)
		return nil
	}

	next := staged.Clone()
	next.Step = domain.StepCompleted
	next.FieldErrors = map[domain.Field]string{}

	c.transition(staged, next, c.hooks.Complete)
	return nil
}

// GoBack follows the back edge of the current step. Entered data is kept.
func (c *Controller) GoBack() error {
	c.fault = nil
	if c.session.Done() {
		return ErrFlowClosed
	}

	staged := c.session.Clone()
	next := staged.Clone()
	next.FieldErrors = map[domain.Field]string{}

	var effect func() error
	switch staged.Step {
	case domain.StepPhoneEntry:
		next.Step = domain.StepCancelled
		effect = c.hooks.Cancel
	case domain.StepOTPVerification:
		next.Step = domain.StepPhoneEntry
	case domain.StepProfileEntry:
		next.Step = domain.StepOTPVerification
		next.ResendCountdown = domain.ResendCountdownSeconds
	default:
		return ErrInvalidStep
	}

	c.transition(staged, next, effect)
	return nil
}

func (c *Controller) begin(want domain.Step) error {
	c.fault = nil
	if c.session.Done() {
		return ErrFlowClosed
	}
	if c.session.Step != want {
		return fmt.Errorf("%w: %s", ErrInvalidStep, c.session.Step)
	}
	return nil
}

func (c *Controller) sendOTP(phoneNumber string) func() error {
	if c.hooks.SendOTP == nil {
		return nil
	}
	return func() error { return c.hooks.SendOTP(phoneNumber) }
}

// reject records a single validation failure and stays on the current step.
func (c *Controller) reject(staged domain.Session, field domain.Field, msg string) {
	staged.FieldErrors = map[domain.Field]string{field: msg}
	c.set(staged)
}

// transition commits next when effect succeeds. On failure the step is left
// as it was, keeping the submitted values, and a general error is shown.
func (c *Controller) transition(staged, next domain.Session, effect func() error) {
	if err := runHook(effect); err != nil {
		c.fault = err
		staged.FieldErrors = map[domain.Field]string{domain.FieldGeneral: domain.MsgGeneral}
		c.set(staged)
		return
	}
	c.set(next)
}

func (c *Controller) set(s domain.Session) {
	s.UpdatedAt = c.now()
	c.session = s
}

func runHook(fn func() error) (err error) {
	if fn == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHookPanic, r)
		}
	}()
	return fn()
}
