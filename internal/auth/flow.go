// Package auth drives the credential/2FA login state machine and the
// token refresh protocol. Both operate on an explicit session state; the
// package keeps no hidden session of its own.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/pquerna/otp/totp"

	"github.com/vintedapi/vinted-go/internal/antibot"
	"github.com/vintedapi/vinted-go/internal/session"
	"github.com/vintedapi/vinted-go/internal/transport"
	"github.com/vintedapi/vinted-go/internal/types"
)

// Status is the terminal outcome of a credential submission.
type Status string

// Credential submission outcomes
const (
	StatusSuccess     Status = "success_no_2fa"
	StatusRequires2FA Status = "requires_2fa"
	StatusFailed      Status = "failed"
)

// LoginResult is the outcome of a credential submission.
type LoginResult struct {
	Status      Status            `json:"status"`
	Cookies     map[string]string `json:"cookies,omitempty"`
	ControlCode string            `json:"controlCode,omitempty"`
	Message     string            `json:"message,omitempty"`
	RawData     json.RawMessage   `json:"-"`
}

// PendingTwoFactor binds the server-issued control code to the partial
// cookie set from the first login step. The cookies must be sent with the
// verification call; dropping them makes the exchange fail server-side
// with an unrelated-looking error.
type PendingTwoFactor struct {
	ControlCode string            `json:"controlCode"`
	Cookies     map[string]string `json:"cookies"`
}

// Controller drives the login state machine. It is the only place in the
// module where an anti-bot cookie is acquired automatically, and only
// when InteractiveCaptcha is enabled.
type Controller struct {
	exec               *transport.Executor
	provider           antibot.Provider
	interactiveCaptcha bool
	logger             types.Logger
}

// ControllerOptions configures the controller
type ControllerOptions struct {
	Executor           *transport.Executor
	Provider           antibot.Provider
	InteractiveCaptcha bool
	Logger             types.Logger
}

// NewController creates a login flow controller
func NewController(opts *ControllerOptions) *Controller {
	return &Controller{
		exec:               opts.Executor,
		provider:           opts.Provider,
		interactiveCaptcha: opts.InteractiveCaptcha,
		logger:             opts.Logger,
	}
}

// loginResponse represents the login API response
type loginResponse struct {
	ControlCode string `json:"control_code"`
	Message     string `json:"message"`
}

// SubmitCredentials performs the first login step. On plain success the
// session state receives the full cookie set and the result status is
// success_no_2fa. When the remote side demands a second factor, the
// returned result carries a PendingTwoFactor continuation and the state
// is left untouched. Rejected credentials surface as ErrLoginFailed.
func (c *Controller) SubmitCredentials(ctx context.Context, state *session.State, username, password string) (*LoginResult, *PendingTwoFactor, error) {
	resp, err := c.submit(ctx, state, username, password)

	if err != nil && errors.Is(err, types.ErrAntiBotChallenge) && c.interactiveCaptcha && c.provider != nil {
		if c.logger != nil {
			c.logger.Info("anti-bot challenge during login, fetching clearance cookie")
		}
		cookie, ferr := c.provider.Fetch(ctx, types.BaseURL(state.Domain()))
		if ferr != nil {
			return nil, nil, errors.Wrap(ferr, "anti-bot cookie fetch failed")
		}
		state.SetTokens(session.TokenUpdate{DataDome: &cookie.Value})

		// One resubmission with the fresh cookie. A second challenge is
		// terminal.
		resp, err = c.submit(ctx, state, username, password)
	}

	if err != nil {
		return nil, nil, err
	}

	cookies := resp.CookieMap()

	var body loginResponse
	_ = json.Unmarshal(resp.Body, &body)

	if body.ControlCode != "" {
		if c.logger != nil {
			c.logger.Info("second factor required", "username", username)
		}
		pending := &PendingTwoFactor{
			ControlCode: body.ControlCode,
			Cookies:     cookies,
		}
		return &LoginResult{
			Status:      StatusRequires2FA,
			Cookies:     cookies,
			ControlCode: body.ControlCode,
			Message:     body.Message,
			RawData:     resp.Body,
		}, pending, nil
	}

	state.SetCookies(cookies)
	if c.logger != nil {
		c.logger.Info("login successful", "username", username)
	}
	return &LoginResult{
		Status:  StatusSuccess,
		Cookies: cookies,
		RawData: resp.Body,
	}, nil, nil
}

// submit issues one credential submission.
func (c *Controller) submit(ctx context.Context, state *session.State, username, password string) (*transport.Response, error) {
	req := &transport.Request{
		Method: http.MethodPost,
		Path:   types.LoginEndpoint,
		Body: map[string]string{
			"username": username,
			"password": password,
		},
	}

	resp, err := c.exec.Do(ctx, state, req, nil)
	if err != nil {
		if errors.Is(err, types.ErrNotAuthenticated) {
			return nil, c.failure(err, "credentials rejected")
		}
		return nil, err
	}
	return resp, nil
}

// VerifyCode completes a pending two-factor login. The pending cookies
// are threaded through to this call and, on success, merged into the
// state along with the final cookie set. A wrong or expired code is
// terminal: the controller never retries a stale control code, and the
// state keeps its previously stored tokens.
func (c *Controller) VerifyCode(ctx context.Context, state *session.State, pending *PendingTwoFactor, code string) error {
	if pending == nil || pending.ControlCode == "" {
		return errors.New("no pending two-factor login")
	}

	req := &transport.Request{
		Method: http.MethodPost,
		Path:   types.TwoFactorEndpoint,
		Body: map[string]string{
			"control_code": pending.ControlCode,
			"code":         code,
		},
		ExtraCookies: pending.Cookies,
	}

	resp, err := c.exec.Do(ctx, state, req, nil)
	if err != nil {
		if errors.Is(err, types.ErrNotAuthenticated) {
			return c.failure(err, "two-factor code rejected")
		}
		return err
	}

	merged := make(map[string]string, len(pending.Cookies)+4)
	for k, v := range pending.Cookies {
		merged[k] = v
	}
	for k, v := range resp.CookieMap() {
		merged[k] = v
	}
	state.SetCookies(merged)

	if c.logger != nil {
		c.logger.Info("two-factor verification successful")
	}
	return nil
}

// Login is the single-shot convenience form. It runs the state machine to
// completion and returns ErrTwoFactorRequired when the account has a
// second factor enabled, in which case the caller must use the two-call
// form.
func (c *Controller) Login(ctx context.Context, state *session.State, username, password string) error {
	result, _, err := c.SubmitCredentials(ctx, state, username, password)
	if err != nil {
		return err
	}
	if result.Status == StatusRequires2FA {
		return errors.WithMessage(types.ErrTwoFactorRequired, "use SubmitCredentials and VerifyCode")
	}
	return nil
}

// LoginWithTOTP runs the full flow, generating the second-factor code
// from a TOTP secret when one is demanded.
func (c *Controller) LoginWithTOTP(ctx context.Context, state *session.State, username, password, totpSecret string) error {
	result, pending, err := c.SubmitCredentials(ctx, state, username, password)
	if err != nil {
		return err
	}
	if result.Status != StatusRequires2FA {
		return nil
	}

	code, err := totp.GenerateCode(totpSecret, time.Now())
	if err != nil {
		return errors.Wrap(err, "failed to generate TOTP code")
	}
	return c.VerifyCode(ctx, state, pending, code)
}

// failure rewraps an auth classification from the executor as a login
// failure, preserving status and raw body for caller inspection.
func (c *Controller) failure(err error, msg string) error {
	var apiErr *types.Error
	if errors.As(err, &apiErr) {
		return &types.Error{
			Code:       "LOGIN_FAILED",
			Message:    msg,
			StatusCode: apiErr.StatusCode,
			RawBody:    apiErr.RawBody,
			Err:        types.ErrLoginFailed,
		}
	}
	return errors.WithMessage(types.ErrLoginFailed, msg)
}
