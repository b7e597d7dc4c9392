package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/vintedapi/vinted-go/internal/session"
	"github.com/vintedapi/vinted-go/internal/transport"
	"github.com/vintedapi/vinted-go/internal/types"
)

// Refresher exchanges a refresh token for a renewed cookie and token set
// and applies it to the session state under the state's refresh lock, so
// concurrent refreshes never interleave.
type Refresher struct {
	exec   *transport.Executor
	logger types.Logger
}

// NewRefresher creates a token refresher
func NewRefresher(exec *transport.Executor, logger types.Logger) *Refresher {
	return &Refresher{exec: exec, logger: logger}
}

// refreshResponse represents the refresh API response body. Token values
// may also arrive as Set-Cookie headers; both shapes are accepted.
type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges refreshToken for a fresh cookie set and applies it to
// state. An empty refreshToken falls back to the token stored in the
// state. The returned map is the full applied cookie set; it always
// carries a refresh token, the previous one when the server chose not to
// rotate. A rejected token surfaces as ErrSessionExpired, which is
// terminal for the refresh path.
func (r *Refresher) Refresh(ctx context.Context, state *session.State, refreshToken string) (map[string]string, error) {
	if refreshToken == "" {
		refreshToken = state.RefreshToken()
	}
	if refreshToken == "" {
		return nil, errors.WithMessage(types.ErrNotAuthenticated, "no refresh token available")
	}

	var applied map[string]string
	err := state.ExclusiveRefresh(func() error {
		req := &transport.Request{
			Method: http.MethodPost,
			Path:   types.RefreshEndpoint,
			Body:   map[string]string{"refresh_token": refreshToken},
		}

		resp, err := r.exec.Do(ctx, state, req, nil)
		if err != nil {
			if errors.Is(err, types.ErrNotAuthenticated) {
				return r.rejected(err)
			}
			return err
		}

		cookies := resp.CookieMap()

		var body refreshResponse
		_ = json.Unmarshal(resp.Body, &body)
		if body.AccessToken != "" {
			cookies[types.CookieAccessToken] = body.AccessToken
		}
		if body.RefreshToken != "" {
			cookies[types.CookieRefreshToken] = body.RefreshToken
		}

		if cookies[types.CookieAccessToken] == "" {
			return errors.New("refresh response carried no access token")
		}

		// The server may or may not rotate the refresh token. When it does
		// not, the token we just used remains valid.
		if cookies[types.CookieRefreshToken] == "" {
			cookies[types.CookieRefreshToken] = refreshToken
		}

		state.SetCookies(cookies)
		applied = cookies
		return nil
	})
	if err != nil {
		return nil, err
	}

	if r.logger != nil {
		r.logger.Info("session refreshed")
	}
	return applied, nil
}

// rejected rewraps an auth classification as a terminal refresh failure.
func (r *Refresher) rejected(err error) error {
	var apiErr *types.Error
	if errors.As(err, &apiErr) {
		return &types.Error{
			Code:       "REFRESH_REJECTED",
			Message:    "refresh token rejected, re-authentication required",
			StatusCode: apiErr.StatusCode,
			RawBody:    apiErr.RawBody,
			Err:        types.ErrSessionExpired,
		}
	}
	return errors.WithMessage(types.ErrSessionExpired, "refresh token rejected")
}
