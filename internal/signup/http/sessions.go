package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/firststore/internal/signup/flow"
	"github.com/aussiebroadwan/firststore/internal/signup/service"
	"github.com/aussiebroadwan/firststore/pkg/httpx"
	"github.com/aussiebroadwan/firststore/pkg/signupsdk"
	"github.com/aussiebroadwan/firststore/pkg/slogx"
)

// SessionsHandler exposes SessionService over JSON. Validation failures are
// part of a 200 response; only malformed requests and misuse are errors.
type SessionsHandler struct {
	Sessions *service.SessionService
}

// HandleStart handles POST /v1/signup/sessions
//
//	@Summary		Start a signup session
//	@Description	Create a session on the phone entry step with a fresh resend countdown
//	@Tags			Signup
//	@Produce		json
//	@Success		201	{object}	signupsdk.SessionResponse
//	@Failure		429	{object}	signupsdk.ErrorResponse	"Too Many Requests"
//	@Failure		500	{object}	signupsdk.ErrorResponse	"Internal Server Error"
//	@Router			/v1/signup/sessions [post]
func (h *SessionsHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	res, err := h.Sessions.Start(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toSessionResponse(res))
}

// HandleGet handles GET /v1/signup/sessions/{id}
//
//	@Summary		Get a signup session
//	@Tags			Signup
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	signupsdk.SessionResponse
//	@Failure		404	{object}	signupsdk.ErrorResponse	"Not Found"
//	@Failure		500	{object}	signupsdk.ErrorResponse	"Internal Server Error"
//	@Router			/v1/signup/sessions/{id} [get]
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSessionResponse(service.Result{Session: sess}))
}

// HandleSubmitPhone handles POST /v1/signup/sessions/{id}/phone
//
//	@Summary		Submit phone number
//	@Description	Validate the mobile number and terms agreement, then send an OTP and move to verification
//	@Description	Validation failures are reported in field_errors with a 200 response
//	@Tags			Signup
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Session ID"
//	@Param			body	body		signupsdk.SubmitPhoneRequest	true	"Phone number and terms agreement"
//	@Success		200		{object}	signupsdk.SessionResponse
//	@Failure		400		{object}	signupsdk.ErrorResponse	"Bad Request"
//	@Failure		404		{object}	signupsdk.ErrorResponse	"Not Found"
//	@Failure		409		{object}	signupsdk.ErrorResponse	"Wrong step"
//	@Failure		429		{object}	signupsdk.ErrorResponse	"Too Many Requests"
//	@Router			/v1/signup/sessions/{id}/phone [post]
func (h *SessionsHandler) HandleSubmitPhone(w http.ResponseWriter, r *http.Request) {
	var req signupsdk.SubmitPhoneRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Sessions.SubmitPhone(r.Context(), r.PathValue("id"), req.PhoneNumber, req.TermsAccepted)
	h.respond(w, r, res, err)
}

// HandleUpdateOTPDigit handles PUT /v1/signup/sessions/{id}/otp/{index}
//
//	@Summary		Update one OTP box
//	@Description	Store a single digit, or clear the box with an empty value. Non-digit values are ignored
//	@Tags			Signup
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Session ID"
//	@Param			index	path		int								true	"Box index, 0 to 5"
//	@Param			body	body		signupsdk.UpdateOTPDigitRequest	true	"Digit value"
//	@Success		200		{object}	signupsdk.SessionResponse
//	@Failure		400		{object}	signupsdk.ErrorResponse	"Bad Request"
//	@Failure		404		{object}	signupsdk.ErrorResponse	"Not Found"
//	@Failure		409		{object}	signupsdk.ErrorResponse	"Wrong step"
//	@Router			/v1/signup/sessions/{id}/otp/{index} [put]
func (h *SessionsHandler) HandleUpdateOTPDigit(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		signupsdk.ErrInvalidRequest.WithDescription("otp index must be an integer").WriteError(w)
		return
	}

	var req signupsdk.UpdateOTPDigitRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Sessions.UpdateOTPDigit(r.Context(), r.PathValue("id"), index, req.Value)
	h.respond(w, r, res, err)
}

// HandleSubmitOTP handles POST /v1/signup/sessions/{id}/otp
//
//	@Summary		Verify the entered OTP
//	@Tags			Signup
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	signupsdk.SessionResponse
//	@Failure		404	{object}	signupsdk.ErrorResponse	"Not Found"
//	@Failure		409	{object}	signupsdk.ErrorResponse	"Wrong step"
//	@Router			/v1/signup/sessions/{id}/otp [post]
func (h *SessionsHandler) HandleSubmitOTP(w http.ResponseWriter, r *http.Request) {
	res, err := h.Sessions.SubmitOTP(r.Context(), r.PathValue("id"))
	h.respond(w, r, res, err)
}

// HandleResendOTP handles POST /v1/signup/sessions/{id}/otp/resend
//
//	@Summary		Resend the OTP
//	@Description	Clears the entered digits and restarts the countdown. Ignored while the countdown is running
//	@Tags			Signup
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	signupsdk.SessionResponse
//	@Failure		404	{object}	signupsdk.ErrorResponse	"Not Found"
//	@Failure		409	{object}	signupsdk.ErrorResponse	"Wrong step"
//	@Failure		429	{object}	signupsdk.ErrorResponse	"Too Many Requests"
//	@Router			/v1/signup/sessions/{id}/otp/resend [post]
func (h *SessionsHandler) HandleResendOTP(w http.ResponseWriter, r *http.Request) {
	res, err := h.Sessions.ResendOTP(r.Context(), r.PathValue("id"))
	h.respond(w, r, res, err)
}

// HandleSubmitProfile handles POST /v1/signup/sessions/{id}/profile
//
//	@Summary		Submit profile details
//	@Description	Validate full name and email and complete the signup
//	@Tags			Signup
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Session ID"
//	@Param			body	body		signupsdk.SubmitProfileRequest	true	"Full name and email"
//	@Success		200		{object}	signupsdk.SessionResponse
//	@Failure		400		{object}	signupsdk.ErrorResponse	"Bad Request"
//	@Failure		404		{object}	signupsdk.ErrorResponse	"Not Found"
//	@Failure		409		{object}	signupsdk.ErrorResponse	"Wrong step or flow closed"
//	@Router			/v1/signup/sessions/{id}/profile [post]
func (h *SessionsHandler) HandleSubmitProfile(w http.ResponseWriter, r *http.Request) {
	var req signupsdk.SubmitProfileRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Sessions.SubmitProfile(r.Context(), r.PathValue("id"), req.FullName, req.Email)
	h.respond(w, r, res, err)
}

// HandleGoBack handles POST /v1/signup/sessions/{id}/back
//
//	@Summary		Go back one step
//	@Description	Returns to the previous step, or cancels the flow from phone entry
//	@Tags			Signup
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	signupsdk.SessionResponse
//	@Failure		404	{object}	signupsdk.ErrorResponse	"Not Found"
//	@Failure		409	{object}	signupsdk.ErrorResponse	"Flow closed"
//	@Router			/v1/signup/sessions/{id}/back [post]
func (h *SessionsHandler) HandleGoBack(w http.ResponseWriter, r *http.Request) {
	res, err := h.Sessions.GoBack(r.Context(), r.PathValue("id"))
	h.respond(w, r, res, err)
}

func (h *SessionsHandler) respond(w http.ResponseWriter, r *http.Request, res service.Result, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSessionResponse(res))
}

func (h *SessionsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		signupsdk.ErrSessionNotFound.WriteError(w)
	case errors.Is(err, flow.ErrInvalidStep):
		signupsdk.ErrInvalidStep.WriteError(w)
	case errors.Is(err, flow.ErrFlowClosed):
		signupsdk.ErrInvalidStep.WithDescription("signup already completed or cancelled").WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("signup operation failed",
			slog.String("session_id", r.PathValue("id")),
			slog.Any("error", err),
		)
		signupsdk.ErrServerError.WriteError(w)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httpx.DecodeJSON(w, r, v); err != nil {
		signupsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return false
	}
	return true
}

func toSessionResponse(res service.Result) signupsdk.SessionResponse {
	s := res.Session

	fieldErrors := make(map[string]string, len(s.FieldErrors))
	for f, msg := range s.FieldErrors {
		fieldErrors[string(f)] = msg
	}

	var events []signupsdk.Event
	for _, e := range res.Events {
		events = append(events, signupsdk.Event{Kind: string(e.Kind), Index: e.Index})
	}

	return signupsdk.SessionResponse{
		ID:              s.ID,
		Step:            s.Step.String(),
		PhoneNumber:     s.PhoneNumber,
		TermsAccepted:   s.TermsAccepted,
		OTPDigits:       s.OTPDigits[:],
		ResendCountdown: s.ResendCountdown,
		ResendEnabled:   s.ResendEnabled(),
		FullName:        s.FullName,
		Email:           s.Email,
		FieldErrors:     fieldErrors,
		Events:          events,
	}
}
