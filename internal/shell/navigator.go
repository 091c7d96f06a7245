// Package shell is the top-level screen navigator of the storefront app:
// splash, onboarding, signup and dashboard.
package shell

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/firststore/internal/signup/flow"
	"github.com/aussiebroadwan/firststore/pkg/idx"
)

type Screen int

const (
	ScreenSplash Screen = iota
	ScreenOnboarding
	ScreenSignup
	ScreenDashboard
)

var screenNames = [...]string{"splash", "onboarding", "signup", "dashboard"}

func (s Screen) String() string {
	if s < 0 || int(s) >= len(screenNames) {
		return fmt.Sprintf("screen(%d)", int(s))
	}
	return screenNames[s]
}

var ErrWrongScreen = errors.New("shell: action not available on this screen")

// Navigator moves between screens. Like the signup controller it drives, it
// is meant for a single UI goroutine.
type Navigator struct {
	screen     Screen
	onboarding Onboarding
	signup     *flow.Controller

	sendOTP func(phoneNumber string) error
	focus   func(index int)
}

// NewNavigator starts on the splash screen. sendOTP is handed to each signup
// flow; focus may be nil.
func NewNavigator(sendOTP func(phoneNumber string) error, focus func(index int)) *Navigator {
	return &Navigator{
		screen:  ScreenSplash,
		sendOTP: sendOTP,
		focus:   focus,
	}
}

func (n *Navigator) Screen() Screen { return n.screen }

// Onboarding returns the carousel state. Only meaningful on ScreenOnboarding.
func (n *Navigator) Onboarding() *Onboarding { return &n.onboarding }

// Signup returns the active signup flow, or nil when not on ScreenSignup.
func (n *Navigator) Signup() *flow.Controller { return n.signup }

// SplashDone is called once the splash screen has been shown.
func (n *Navigator) SplashDone() error {
	if n.screen != ScreenSplash {
		return ErrWrongScreen
	}
	n.screen = ScreenOnboarding
	return nil
}

// Next advances the carousel; on the last slide it enters signup.
func (n *Navigator) Next() error {
	if n.screen != ScreenOnboarding {
		return ErrWrongScreen
	}
	if n.onboarding.Next() {
		n.enterSignup()
	}
	return nil
}

// Skip leaves onboarding for signup from any slide.
func (n *Navigator) Skip() error {
	if n.screen != ScreenOnboarding {
		return ErrWrongScreen
	}
	n.enterSignup()
	return nil
}

// Restart returns from the dashboard to the splash screen.
func (n *Navigator) Restart() error {
	if n.screen != ScreenDashboard {
		return ErrWrongScreen
	}
	n.screen = ScreenSplash
	n.onboarding.Reset()
	return nil
}

func (n *Navigator) enterSignup() {
	n.screen = ScreenSignup
	n.signup = flow.New(idx.New().String(), flow.Hooks{
		SendOTP: n.sendOTP,
		Complete: func() error {
			n.screen = ScreenDashboard
			n.signup = nil
			return nil
		},
		Cancel: func() error {
			n.screen = ScreenOnboarding
			n.onboarding.Reset()
			n.signup = nil
			return nil
		},
		FocusAdvance: n.focus,
	})
}
