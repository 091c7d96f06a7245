package shell_test

import (
	"errors"
	"testing"

	"github.com/aussiebroadwan/firststore/internal/shell"
	"github.com/aussiebroadwan/firststore/internal/signup/domain"
	"github.com/stretchr/testify/require"
)

func toSignup(t *testing.T, n *shell.Navigator) {
	t.Helper()
	require.NoError(t, n.SplashDone())
	require.NoError(t, n.Skip())
	require.Equal(t, shell.ScreenSignup, n.Screen())
	require.NotNil(t, n.Signup())
}

func TestOnboardingNextWalksSlides(t *testing.T) {
	n := shell.NewNavigator(nil, nil)
	require.Equal(t, shell.ScreenSplash, n.Screen())
	require.NoError(t, n.SplashDone())

	require.Equal(t, "Groceries at Your Doorstep in 10–30 Minutes", n.Onboarding().Current().Title)
	require.NoError(t, n.Next())
	require.Equal(t, 1, n.Onboarding().Index())
	require.NoError(t, n.Next())
	require.Equal(t, "Get Started!", n.Onboarding().Current().ButtonText)
	require.Equal(t, shell.ScreenOnboarding, n.Screen())

	require.NoError(t, n.Next())
	require.Equal(t, shell.ScreenSignup, n.Screen())
	require.Equal(t, domain.StepPhoneEntry, n.Signup().Step())
}

func TestWrongScreenActions(t *testing.T) {
	n := shell.NewNavigator(nil, nil)
	require.ErrorIs(t, n.Next(), shell.ErrWrongScreen)
	require.ErrorIs(t, n.Skip(), shell.ErrWrongScreen)
	require.ErrorIs(t, n.Restart(), shell.ErrWrongScreen)

	require.NoError(t, n.SplashDone())
	require.ErrorIs(t, n.SplashDone(), shell.ErrWrongScreen)
}

func TestSignupCompletionReachesDashboard(t *testing.T) {
	var sent []string
	var focused []int
	n := shell.NewNavigator(func(phone string) error {
		sent = append(sent, phone)
		return nil
	}, func(i int) { focused = append(focused, i) })
	toSignup(t, n)

	c := n.Signup()
	require.NoError(t, c.SubmitPhone("9876543210", true))
	require.Equal(t, []string{"9876543210"}, sent)

	for i, d := range "123456" {
		require.NoError(t, c.UpdateOTPDigit(i, string(d)))
	}
	require.Equal(t, []int{1, 2, 3, 4, 5}, focused)

	require.NoError(t, c.SubmitOTP())
	require.NoError(t, c.SubmitProfile("Jane Doe", "jane@example.com"))

	require.Equal(t, shell.ScreenDashboard, n.Screen())
	require.Nil(t, n.Signup())

	require.NoError(t, n.Restart())
	require.Equal(t, shell.ScreenSplash, n.Screen())
}

func TestSignupCancelReturnsToOnboarding(t *testing.T) {
	n := shell.NewNavigator(nil, nil)
	require.NoError(t, n.SplashDone())
	require.NoError(t, n.Next())
	require.NoError(t, n.Skip())

	require.NoError(t, n.Signup().GoBack())
	require.Equal(t, shell.ScreenOnboarding, n.Screen())
	require.Zero(t, n.Onboarding().Index())
	require.Nil(t, n.Signup())
}

func TestSendFailureKeepsSignupOpen(t *testing.T) {
	n := shell.NewNavigator(func(string) error { return errors.New("offline") }, nil)
	toSignup(t, n)

	c := n.Signup()
	require.NoError(t, c.SubmitPhone("9876543210", true))
	require.Equal(t, domain.StepPhoneEntry, c.Step())
	require.Equal(t, domain.MsgGeneral, c.Session().FieldErrors[domain.FieldGeneral])
	require.Equal(t, shell.ScreenSignup, n.Screen())
}

func TestScreenString(t *testing.T) {
	require.Equal(t, "dashboard", shell.ScreenDashboard.String())
	require.Equal(t, "screen(9)", shell.Screen(9).String())
}
