package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	signuphttp "github.com/aussiebroadwan/firststore/internal/signup/http"
	"github.com/aussiebroadwan/firststore/internal/signup/service"
	"github.com/aussiebroadwan/firststore/internal/signup/store/drivers/sqlite"
	"github.com/aussiebroadwan/firststore/pkg/httpx"
	"github.com/aussiebroadwan/firststore/pkg/signupsdk"
	"github.com/aussiebroadwan/firststore/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type nopSender struct{}

func (nopSender) Send(context.Context, string, string) error { return nil }

type testEnv struct {
	client *signupsdk.Client
	svc    *service.SessionService
	store  *sqlite.Store
	url    string
}

func newTestEnv(t *testing.T, limits signuphttp.RateLimits) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.MemoryDSN)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())

	svc := &service.SessionService{
		Store: st,
		OTP:   &service.OTPDispatcher{Sender: nopSender{}},
	}

	router := signuphttp.NewRouter("test", st, slogx.Discard(), limits)
	router.SessionService = svc
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		_ = st.Close()
	})

	return &testEnv{client: signupsdk.NewClient(srv.URL), svc: svc, store: st, url: srv.URL}
}

func generousLimits() signuphttp.RateLimits {
	l := httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000}
	return signuphttp.RateLimits{Start: l, OTP: l, Session: l, Public: l}
}

func TestSignupHappyPath(t *testing.T) {
	env := newTestEnv(t, generousLimits())
	ctx := context.Background()
	c := env.client

	sess, err := c.StartSession(ctx)
	require.NoError(t, err)
	require.Equal(t, signupsdk.StepPhoneEntry, sess.Step)
	require.Len(t, sess.OTPDigits, 6)
	require.Equal(t, 30, sess.ResendCountdown)
	require.False(t, sess.ResendEnabled)

	sess, err = c.SubmitPhone(ctx, sess.ID, signupsdk.SubmitPhoneRequest{PhoneNumber: "9876543210", TermsAccepted: true})
	require.NoError(t, err)
	require.Equal(t, signupsdk.StepOTPVerification, sess.Step)
	require.True(t, sess.HasEvent(signupsdk.EventOTPSent))

	resp, err := c.UpdateOTPDigit(ctx, sess.ID, 2, "7")
	require.NoError(t, err)
	require.Equal(t, []signupsdk.Event{{Kind: signupsdk.EventFocusAdvance, Index: 3}}, resp.Events)

	sess, err = c.EnterOTP(ctx, sess.ID, "123456")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, sess.OTPDigits)

	sess, err = c.SubmitOTP(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, signupsdk.StepProfileEntry, sess.Step)

	sess, err = c.SubmitProfile(ctx, sess.ID, signupsdk.SubmitProfileRequest{FullName: "Jane Doe", Email: "jane@example.com"})
	require.NoError(t, err)
	require.Equal(t, signupsdk.StepCompleted, sess.Step)
	require.True(t, sess.HasEvent(signupsdk.EventCompleted))

	_, err = c.GetSession(ctx, sess.ID)
	require.ErrorIs(t, err, signupsdk.ErrSessionNotFound)
}

func TestValidationFailuresAreFieldErrors(t *testing.T) {
	env := newTestEnv(t, generousLimits())
	ctx := context.Background()
	c := env.client

	sess, err := c.StartSession(ctx)
	require.NoError(t, err)

	cases := []struct {
		name  string
		req   signupsdk.SubmitPhoneRequest
		field string
		msg   string
	}{
		{"blank", signupsdk.SubmitPhoneRequest{PhoneNumber: "  ", TermsAccepted: true}, "phone", "Phone number is required"},
		{"invalid", signupsdk.SubmitPhoneRequest{PhoneNumber: "5876543210", TermsAccepted: true}, "phone", "Please enter a valid 10-digit mobile number"},
		{"terms", signupsdk.SubmitPhoneRequest{PhoneNumber: "9876543210"}, "agreement", "Please agree to the terms and conditions"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.SubmitPhone(ctx, sess.ID, tc.req)
			require.NoError(t, err)
			require.Equal(t, signupsdk.StepPhoneEntry, got.Step)
			require.Equal(t, map[string]string{tc.field: tc.msg}, got.FieldErrors)
		})
	}
}

func TestWrongStepIsConflict(t *testing.T) {
	env := newTestEnv(t, generousLimits())
	ctx := context.Background()

	sess, err := env.client.StartSession(ctx)
	require.NoError(t, err)

	_, err = env.client.SubmitProfile(ctx, sess.ID, signupsdk.SubmitProfileRequest{FullName: "A", Email: "a@b.co"})
	require.ErrorIs(t, err, signupsdk.ErrInvalidStep)
}

func TestGoBackCancelsFromPhoneEntry(t *testing.T) {
	env := newTestEnv(t, generousLimits())
	ctx := context.Background()

	sess, err := env.client.StartSession(ctx)
	require.NoError(t, err)

	sess, err = env.client.GoBack(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, signupsdk.StepCancelled, sess.Step)
	require.True(t, sess.HasEvent(signupsdk.EventCancelled))

	_, err = env.client.GoBack(ctx, sess.ID)
	require.ErrorIs(t, err, signupsdk.ErrSessionNotFound)
}

func TestResendAfterCountdown(t *testing.T) {
	env := newTestEnv(t, generousLimits())
	ctx := context.Background()

	sess, err := env.client.StartSession(ctx)
	require.NoError(t, err)
	sess, err = env.client.SubmitPhone(ctx, sess.ID, signupsdk.SubmitPhoneRequest{PhoneNumber: "9876543210", TermsAccepted: true})
	require.NoError(t, err)

	got, err := env.client.ResendOTP(ctx, sess.ID)
	require.NoError(t, err)
	require.Empty(t, got.Events)

	for range 30 {
		_, err := env.svc.TickAll(ctx)
		require.NoError(t, err)
	}

	got, err = env.client.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.True(t, got.ResendEnabled)
	require.Zero(t, got.ResendCountdown)

	got, err = env.client.ResendOTP(ctx, sess.ID)
	require.NoError(t, err)
	require.True(t, got.HasEvent(signupsdk.EventOTPSent))
	require.Equal(t, 30, got.ResendCountdown)
}

func TestMalformedRequests(t *testing.T) {
	env := newTestEnv(t, generousLimits())
	ctx := context.Background()

	sess, err := env.client.StartSession(ctx)
	require.NoError(t, err)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"wrong field type", http.MethodPost, "/phone", `{"phone_number": 98}`},
		{"non-integer otp index", http.MethodPut, "/otp/abc", `{"value":"1"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, env.url+"/v1/signup/sessions/"+sess.ID+tc.path,
				strings.NewReader(tc.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, signupsdk.ErrInvalidRequest.StatusCode, resp.StatusCode)

			var body signupsdk.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.Equal(t, signupsdk.ErrInvalidRequest.Code, body.Error)
			require.NotEmpty(t, body.ErrorDescription)
		})
	}
}

func TestSubmitPhoneIsRateLimitedPerSession(t *testing.T) {
	limits := generousLimits()
	limits.OTP = httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	env := newTestEnv(t, limits)
	ctx := context.Background()

	sess, err := env.client.StartSession(ctx)
	require.NoError(t, err)

	bad := signupsdk.SubmitPhoneRequest{PhoneNumber: "123"}
	for range 2 {
		_, err := env.client.SubmitPhone(ctx, sess.ID, bad)
		require.NoError(t, err)
	}

	_, err = env.client.SubmitPhone(ctx, sess.ID, bad)
	var apiErr *signupsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.ErrorIs(t, err, signupsdk.ErrRateLimited)

	other, err := env.client.StartSession(ctx)
	require.NoError(t, err)
	_, err = env.client.SubmitPhone(ctx, other.ID, bad)
	require.NoError(t, err)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, generousLimits())
	ctx := context.Background()

	live, err := env.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := env.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)

	require.NoError(t, env.store.Close())

	_, err = env.client.GetReadiness(ctx)
	var apiErr *signupsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}
