package types

import "time"

const (
	// DefaultDomain is the marketplace locale used when none is configured
	DefaultDomain = "fr"

	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the default number of transport-level retries
	DefaultMaxRetries = 3

	// DefaultRateLimitDelay is the minimum wait between request attempts
	DefaultRateLimitDelay = 500 * time.Millisecond
)

// Fixed cookie vocabulary. The session cookie name is derived per locale,
// see SessionCookieName.
const (
	CookieDataDome     = "datadome"
	CookieAccessToken  = "access_token"
	CookieRefreshToken = "refresh_token"
	CookieAnonID       = "anon_id"
)

// API endpoints
const (
	LoginEndpoint     = "/web/api/auth/login"
	TwoFactorEndpoint = "/web/api/auth/two_factor"
	RefreshEndpoint   = "/web/api/auth/refresh"
)

// SupportedDomains is the closed set of marketplace locales.
var SupportedDomains = map[string]bool{
	"fr":    true,
	"de":    true,
	"at":    true,
	"be":    true,
	"cz":    true,
	"es":    true,
	"it":    true,
	"lt":    true,
	"nl":    true,
	"pl":    true,
	"pt":    true,
	"sk":    true,
	"co.uk": true,
	"com":   true,
}

// SessionCookieName returns the locale-qualified session cookie name,
// e.g. "_vinted_fr_session". The co.uk and com storefronts use their own
// short labels.
func SessionCookieName(domain string) string {
	switch domain {
	case "co.uk":
		return "_vinted_uk_session"
	case "com":
		return "_vinted_us_session"
	default:
		return "_vinted_" + domain + "_session"
	}
}

// BaseURL returns the web origin for a locale domain.
func BaseURL(domain string) string {
	return "https://www.vinted." + domain
}
