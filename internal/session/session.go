// Package session holds the mutable authentication state for one logical
// marketplace user session: cookies, bearer tokens, and the advisory
// DataDome clearance cookie.
//
// A State may be read concurrently by many in-flight requests. Mutation
// happens only through SetCookies and SetTokens, which hold an exclusive
// lock so that a token refresh is never observed half-applied. Readers get
// whatever snapshot existed at call time; a 401 caused by a token that was
// superseded mid-flight is an expected, recoverable race.
package session

import (
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/vintedapi/vinted-go/internal/types"
)

// Config is the immutable per-session configuration, set once at
// construction.
type Config struct {
	// UserAgent sent with every request. Required.
	UserAgent string

	// Domain is the marketplace locale, e.g. "fr" or "co.uk".
	Domain string

	// Proxy is an optional proxy endpoint, possibly carrying basic-auth
	// credentials in its userinfo.
	Proxy *url.URL
}

// State is the cookie and token record for one session.
type State struct {
	cfg Config

	mu      sync.RWMutex
	cookies map[string]string

	// refreshMu serializes whole refresh cycles (network exchange plus
	// cookie application) without blocking readers of the cookie map for
	// the duration of the round trip.
	refreshMu sync.Mutex
}

// TokenUpdate carries the five token fields accepted by SetTokens. Nil
// means "leave unchanged"; a pointer to the empty string is a valid
// overwrite meaning "clear".
type TokenUpdate struct {
	AccessToken  *string
	RefreshToken *string
	SessionToken *string
	AnonID       *string
	DataDome     *string
}

// New creates a session state with the given configuration. A fresh
// anon_id is generated; callers restoring a stored session overwrite it
// via SetCookies or SetTokens.
func New(cfg Config) *State {
	if cfg.Domain == "" {
		cfg.Domain = types.DefaultDomain
	}
	return &State{
		cfg: cfg,
		cookies: map[string]string{
			types.CookieAnonID: uuid.New().String(),
		},
	}
}

// SetCookies merges partial into the cookie map, overwriting on conflict.
// Keys absent from partial are left untouched. Values are not validated.
func (s *State) SetCookies(partial map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range partial {
		s.cookies[k] = v
	}
}

// SetTokens applies a bulk token update. Nil fields leave the stored value
// unchanged.
func (s *State) SetTokens(u TokenUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.AccessToken != nil {
		s.cookies[types.CookieAccessToken] = *u.AccessToken
	}
	if u.RefreshToken != nil {
		s.cookies[types.CookieRefreshToken] = *u.RefreshToken
	}
	if u.SessionToken != nil {
		s.cookies[s.sessionCookieName()] = *u.SessionToken
	}
	if u.AnonID != nil {
		s.cookies[types.CookieAnonID] = *u.AnonID
	}
	if u.DataDome != nil {
		s.cookies[types.CookieDataDome] = *u.DataDome
	}
}

// Snapshot returns a copy of the full cookie map, suitable for
// persistence by the caller. The state itself never persists anything.
func (s *State) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.cookies))
	for k, v := range s.cookies {
		out[k] = v
	}
	return out
}

// Cookie returns a single cookie value, or "" when absent.
func (s *State) Cookie(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cookies[name]
}

// AccessToken returns the current bearer access token, or "".
func (s *State) AccessToken() string {
	return s.Cookie(types.CookieAccessToken)
}

// RefreshToken returns the current refresh token, or "".
func (s *State) RefreshToken() string {
	return s.Cookie(types.CookieRefreshToken)
}

// Authenticated reports whether both the access token and the
// locale-qualified session cookie are present and non-empty.
func (s *State) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cookies[types.CookieAccessToken] != "" && s.cookies[s.sessionCookieName()] != ""
}

// AntiBotCleared reports whether a DataDome clearance cookie is present.
// Clearance is advisory: its absence does not block requests, it only
// raises the chance of a block.
func (s *State) AntiBotCleared() bool {
	return s.Cookie(types.CookieDataDome) != ""
}

// ExclusiveRefresh runs fn while holding the refresh lock, so that two
// concurrent refresh attempts on the same state cannot interleave their
// network exchange and cookie application.
func (s *State) ExclusiveRefresh(fn func() error) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	return fn()
}

// UserAgent returns the configured user agent.
func (s *State) UserAgent() string { return s.cfg.UserAgent }

// Domain returns the configured marketplace locale.
func (s *State) Domain() string { return s.cfg.Domain }

// Proxy returns the configured proxy endpoint, or nil.
func (s *State) Proxy() *url.URL { return s.cfg.Proxy }

// SessionCookieName returns the locale-qualified session cookie name for
// this state, e.g. "_vinted_fr_session".
func (s *State) SessionCookieName() string {
	return s.sessionCookieName()
}

func (s *State) sessionCookieName() string {
	return types.SessionCookieName(s.cfg.Domain)
}
