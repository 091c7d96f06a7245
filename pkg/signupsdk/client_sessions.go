package signupsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func sessionPath(id string, suffix string) string {
	return "/v1/signup/sessions/" + url.PathEscape(id) + suffix
}

func (c *Client) sessionCall(ctx context.Context, method, path string, body any, status int) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.doJSON(ctx, method, path, body, &out, status); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartSession begins a new signup flow at phone entry.
func (c *Client) StartSession(ctx context.Context) (*SessionResponse, error) {
	return c.sessionCall(ctx, http.MethodPost, "/v1/signup/sessions", nil, http.StatusCreated)
}

func (c *Client) GetSession(ctx context.Context, id string) (*SessionResponse, error) {
	return c.sessionCall(ctx, http.MethodGet, sessionPath(id, ""), nil, http.StatusOK)
}

// SubmitPhone validates the phone step. Validation failures come back as
// field errors on a 200 response, not as an error.
func (c *Client) SubmitPhone(ctx context.Context, id string, req SubmitPhoneRequest) (*SessionResponse, error) {
	return c.sessionCall(ctx, http.MethodPost, sessionPath(id, "/phone"), req, http.StatusOK)
}

func (c *Client) UpdateOTPDigit(ctx context.Context, id string, index int, value string) (*SessionResponse, error) {
	return c.sessionCall(ctx, http.MethodPut, sessionPath(id, "/otp/"+strconv.Itoa(index)),
		UpdateOTPDigitRequest{Value: value}, http.StatusOK)
}

// EnterOTP fills every box from code, one digit per call, the way a view
// adapter would as the user types.
func (c *Client) EnterOTP(ctx context.Context, id string, code string) (*SessionResponse, error) {
	var last *SessionResponse
	for i, r := range []rune(code) {
		resp, err := c.UpdateOTPDigit(ctx, id, i, string(r))
		if err != nil {
			return nil, err
		}
		last = resp
	}
	if last == nil {
		return c.GetSession(ctx, id)
	}
	return last, nil
}

func (c *Client) SubmitOTP(ctx context.Context, id string) (*SessionResponse, error) {
	return c.sessionCall(ctx, http.MethodPost, sessionPath(id, "/otp"), nil, http.StatusOK)
}

// ResendOTP requests a new code. It is a no-op until the countdown reaches zero.
func (c *Client) ResendOTP(ctx context.Context, id string) (*SessionResponse, error) {
	return c.sessionCall(ctx, http.MethodPost, sessionPath(id, "/otp/resend"), nil, http.StatusOK)
}

func (c *Client) SubmitProfile(ctx context.Context, id string, req SubmitProfileRequest) (*SessionResponse, error) {
	return c.sessionCall(ctx, http.MethodPost, sessionPath(id, "/profile"), req, http.StatusOK)
}

// GoBack returns to the previous step, or cancels the flow from phone entry.
func (c *Client) GoBack(ctx context.Context, id string) (*SessionResponse, error) {
	return c.sessionCall(ctx, http.MethodPost, sessionPath(id, "/back"), nil, http.StatusOK)
}
