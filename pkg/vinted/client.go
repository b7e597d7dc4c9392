// Package vinted is a client for the Vinted marketplace private API. The
// heart of the package is the session and token lifecycle: keeping an
// authenticated session alive across time, concurrent calls, and the
// DataDome anti-bot layer. Domain services borrow the session per call
// and never mutate it.
package vinted

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/vintedapi/vinted-go/internal/auth"
	"github.com/vintedapi/vinted-go/internal/session"
	"github.com/vintedapi/vinted-go/internal/transport"
	internalTypes "github.com/vintedapi/vinted-go/internal/types"
)

const (
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the default number of transport-level retries
	DefaultMaxRetries = 3

	// DefaultRateLimitDelay is the minimum wait between request attempts
	DefaultRateLimitDelay = 500 * time.Millisecond

	// DefaultDomain is the marketplace locale used when none is configured
	DefaultDomain = "fr"
)

// Logger interface for logging
type Logger = internalTypes.Logger

// Hooks provides lifecycle hooks for requests
type Hooks = internalTypes.Hooks

// Client is the marketplace API client. One Client owns one session;
// create multiple Clients for multiple concurrent user sessions.
type Client struct {
	// Service interfaces
	Auth          AuthService
	Conversations ConversationService
	Notifications NotificationService
	Payments      PaymentService
	Users         UserService

	// Internal fields
	baseURL  string
	executor Executor
	state    *session.State
	options  *ClientOptions
	limiter  RateLimiter
}

// ClientOptions configures the client
type ClientOptions struct {
	// UserAgent sent with every request. Required.
	UserAgent string

	// Domain is the marketplace locale, e.g. "fr" or "co.uk". Defaults to
	// "fr".
	Domain string

	// Proxy is an optional proxy URL, with or without embedded basic-auth
	// credentials.
	Proxy string

	// Timeout is the per-call timeout. Defaults to 30s.
	Timeout time.Duration

	// MaxRetries bounds transport-level retries. Defaults to 3.
	MaxRetries int

	// RateLimitDelay is the minimum wait between attempts. Defaults to
	// 500ms.
	RateLimitDelay time.Duration

	// BaseURL overrides the API origin derived from Domain. Mostly for
	// tests.
	BaseURL string

	// HTTPClient allows using a custom HTTP client
	HTTPClient *http.Client

	// Logger for debug logging
	Logger Logger

	// RateLimiter overrides the default limiter built from RateLimitDelay
	RateLimiter RateLimiter

	// Hooks for observability
	Hooks *Hooks

	// AntiBotProvider supplies fresh DataDome clearance cookies
	AntiBotProvider AntiBotProvider

	// InteractiveCaptcha lets the login flow invoke AntiBotProvider
	// automatically when a challenge interrupts a credential submission.
	// This is the only automatic anti-bot acquisition in the module.
	InteractiveCaptcha bool

	// SentryDSN enables Sentry error tracking when set
	SentryDSN string

	// SentryOptions allows custom Sentry configuration
	SentryOptions *sentry.ClientOptions
}

// NewClient creates a new marketplace client
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = &ClientOptions{}
	}

	if opts.UserAgent == "" {
		return nil, errors.New("user agent is required")
	}

	if opts.Domain == "" {
		opts.Domain = DefaultDomain
	}
	if !internalTypes.SupportedDomains[opts.Domain] {
		return nil, errors.Errorf("unsupported domain %q", opts.Domain)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RateLimitDelay <= 0 {
		opts.RateLimitDelay = DefaultRateLimitDelay
	}

	// Initialize Sentry if DSN is provided
	if opts.SentryDSN != "" || opts.SentryOptions != nil {
		sentryOpts := sentry.ClientOptions{}
		if opts.SentryOptions != nil {
			sentryOpts = *opts.SentryOptions
		}
		if opts.SentryDSN != "" {
			sentryOpts.Dsn = opts.SentryDSN
		}
		if sentryOpts.Environment == "" {
			sentryOpts.Environment = "production"
		}
		if err := sentry.Init(sentryOpts); err != nil {
			// Log but don't fail client creation
			if opts.Logger != nil {
				opts.Logger.Error("Failed to initialize Sentry", "error", err)
			}
		}
	}

	var proxyURL *url.URL
	if opts.Proxy != "" {
		u, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, errors.Wrap(err, "invalid proxy URL")
		}
		proxyURL = u
	}

	if opts.HTTPClient == nil {
		httpTransport := http.DefaultTransport
		if proxyURL != nil {
			httpTransport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
		opts.HTTPClient = &http.Client{
			Timeout:   opts.Timeout,
			Transport: httpTransport,
		}
	}

	state := session.New(session.Config{
		UserAgent: opts.UserAgent,
		Domain:    opts.Domain,
		Proxy:     proxyURL,
	})

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = internalTypes.BaseURL(opts.Domain)
	}

	exec := transport.New(&transport.Options{
		BaseURL:    baseURL,
		HTTPClient: opts.HTTPClient,
		Timeout:    opts.Timeout,
		RetryConfig: &internalTypes.RetryConfig{
			MaxRetries: opts.MaxRetries,
			RetryWait:  opts.RateLimitDelay,
			MaxWait:    10 * time.Second,
		},
		Logger: opts.Logger,
		Hooks:  opts.Hooks,
	})

	limiter := opts.RateLimiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(opts.RateLimitDelay), 1)
	}

	c := &Client{
		baseURL:  baseURL,
		executor: exec,
		state:    state,
		options:  opts,
		limiter:  limiter,
	}

	c.initServices(exec)

	return c, nil
}

// initServices initializes all service implementations
func (c *Client) initServices(exec *transport.Executor) {
	controller := auth.NewController(&auth.ControllerOptions{
		Executor:           exec,
		Provider:           c.options.AntiBotProvider,
		InteractiveCaptcha: c.options.InteractiveCaptcha,
		Logger:             c.options.Logger,
	})
	refresher := auth.NewRefresher(exec, c.options.Logger)

	c.Auth = &authService{client: c, controller: controller, refresher: refresher}
	c.Conversations = &conversationService{client: c}
	c.Notifications = &notificationService{client: c}
	c.Payments = &paymentService{client: c}
	c.Users = &userService{client: c}
}

// SetCookies merges a cookie map into the session, overwriting on
// conflict. Use it to restore a previously stored snapshot.
func (c *Client) SetCookies(cookies map[string]string) {
	c.state.SetCookies(cookies)
}

// SetTokens applies a bulk token update to the session. Nil fields are
// left unchanged; pointer-to-empty-string clears.
func (c *Client) SetTokens(u TokenUpdate) {
	c.state.SetTokens(session.TokenUpdate{
		AccessToken:  u.AccessToken,
		RefreshToken: u.RefreshToken,
		SessionToken: u.SessionToken,
		AnonID:       u.AnonID,
		DataDome:     u.DataDome,
	})
}

// Snapshot returns a copy of the session cookie map for persistence by
// the caller. The client never persists anything on its own.
func (c *Client) Snapshot() map[string]string {
	return c.state.Snapshot()
}

// Authenticated reports whether the session carries an access token and a
// session cookie.
func (c *Client) Authenticated() bool {
	return c.state.Authenticated()
}

// AntiBotCleared reports whether the session carries a DataDome clearance
// cookie.
func (c *Client) AntiBotCleared() bool {
	return c.state.AntiBotCleared()
}

// execute runs one API call through the rate limiter and executor,
// capturing failures in Sentry when enabled.
func (c *Client) execute(ctx context.Context, req *transport.Request, result interface{}) (*transport.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	resp, err := c.executor.Do(ctx, c.state, req, result)

	if err != nil && c.sentryEnabled() {
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("api.path", req.Path)
				scope.SetTag("api.method", req.Method)
				hub.CaptureException(err)
			})
		} else {
			sentry.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("api.path", req.Path)
				scope.SetTag("api.method", req.Method)
				sentry.CaptureException(err)
			})
		}
	}

	return resp, err
}

func (c *Client) sentryEnabled() bool {
	return c.options.SentryDSN != "" || c.options.SentryOptions != nil
}

// Close flushes any pending Sentry events and performs cleanup
func (c *Client) Close() {
	if c.sentryEnabled() {
		sentry.Flush(2 * time.Second)
	}
}
