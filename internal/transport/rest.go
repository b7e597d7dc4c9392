// Package transport executes single HTTP calls against the marketplace API
// using a borrowed session state, and classifies terminal failures so
// callers can branch without string-parsing error text.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/vintedapi/vinted-go/internal/session"
	"github.com/vintedapi/vinted-go/internal/types"
)

const (
	authHeaderKey = "Authorization"
	contentType   = "application/json"

	// DataDome serves its challenge page from this host; its presence in a
	// response body is the anti-bot marker.
	challengeMarker = "captcha-delivery.com"
)

// Executor issues HTTP calls with the cookies and bearer token of the
// session state passed per call. It never mutates the state, never caches,
// and never refreshes tokens on the caller's behalf.
type Executor struct {
	baseURL     string
	httpClient  *http.Client
	retryClient *retryablehttp.Client
	timeout     time.Duration
	headers     map[string]string
	logger      types.Logger
	hooks       *types.Hooks
}

// Options for the executor
type Options struct {
	BaseURL     string
	HTTPClient  *http.Client
	Timeout     time.Duration
	Headers     map[string]string
	RetryConfig *types.RetryConfig
	Logger      types.Logger
	Hooks       *types.Hooks
}

// Request describes one HTTP call. ExtraCookies are merged over the
// session cookies for this call only; the pending-2FA flow uses them to
// thread carry-forward cookies without touching the shared state.
type Request struct {
	Method       string
	Path         string
	Body         interface{}
	ExtraCookies map[string]string
}

// Response is the terminal HTTP outcome, returned verbatim alongside any
// decoded result for pass-through.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Cookies    []*http.Cookie
}

// CookieMap flattens the response Set-Cookie headers into a name/value map.
func (r *Response) CookieMap() map[string]string {
	out := make(map[string]string, len(r.Cookies))
	for _, c := range r.Cookies {
		out[c.Name] = c.Value
	}
	return out
}

// New creates an executor
func New(opts *Options) *Executor {
	if opts == nil {
		opts = &Options{}
	}

	if opts.Timeout <= 0 {
		opts.Timeout = types.DefaultTimeout
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	retryCfg := opts.RetryConfig
	if retryCfg == nil {
		retryCfg = &types.RetryConfig{
			MaxRetries: types.DefaultMaxRetries,
			RetryWait:  types.DefaultRateLimitDelay,
			MaxWait:    10 * time.Second,
		}
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = opts.HTTPClient
	retryClient.RetryMax = retryCfg.MaxRetries
	retryClient.RetryWaitMin = retryCfg.RetryWait
	retryClient.RetryWaitMax = retryCfg.MaxWait
	retryClient.CheckRetry = checkRetry
	retryClient.Logger = nil
	if opts.Logger != nil {
		retryClient.Logger = &retryLogger{logger: opts.Logger}
	}

	headers := map[string]string{
		"Accept":       contentType,
		"Content-Type": contentType,
	}
	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &Executor{
		baseURL:     opts.BaseURL,
		httpClient:  opts.HTTPClient,
		retryClient: retryClient,
		timeout:     opts.Timeout,
		headers:     headers,
		logger:      opts.Logger,
		hooks:       opts.Hooks,
	}
}

// checkRetry retries transport-level failures and 5xx responses only.
// Application-level 4xx outcomes, including 401/403 and 429, are terminal
// on the first attempt; the caller decides the recovery action.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	if resp != nil && resp.StatusCode >= 500 {
		return true, nil
	}
	return false, nil
}

// BaseURL returns the configured API origin.
func (e *Executor) BaseURL() string { return e.baseURL }

// Do executes one call using the given session state and decodes a 2xx
// JSON body into result when result is non-nil. Failures are classified:
// 401/403 map to ErrNotAuthenticated, a DataDome challenge body maps to
// ErrAntiBotChallenge, other non-2xx map to an *Error carrying the status
// and raw body, and exhausted transport retries map to a TRANSPORT error.
func (e *Executor) Do(ctx context.Context, state *session.State, req *Request, result interface{}) (*Response, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal request body")
		}
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, e.baseURL+req.Path, bodyReader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	for k, v := range e.headers {
		httpReq.Header.Set(k, v)
	}
	if ua := state.UserAgent(); ua != "" {
		httpReq.Header.Set("User-Agent", ua)
	}
	if token := state.AccessToken(); token != "" {
		httpReq.Header.Set(authHeaderKey, "Bearer "+token)
	}
	attachCookies(httpReq, state.Snapshot(), req.ExtraCookies)

	if e.hooks != nil && e.hooks.OnRequest != nil {
		e.hooks.OnRequest(ctx, httpReq)
	}

	if e.logger != nil {
		e.logger.Debug("API request", "method", req.Method, "path", req.Path)
	}

	start := time.Now()
	resp, err := e.doRequest(httpReq)
	duration := time.Since(start)

	if err != nil {
		terr := classifyTransportError(ctx, err)
		if e.hooks != nil && e.hooks.OnError != nil {
			e.hooks.OnError(ctx, terr)
		}
		return nil, terr
	}
	defer resp.Body.Close()

	if e.hooks != nil && e.hooks.OnResponse != nil {
		e.hooks.OnResponse(ctx, resp, duration)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	if e.logger != nil {
		e.logger.Debug("API response", "status", resp.StatusCode, "duration", duration, "size", len(respBody))
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
		Cookies:    resp.Cookies(),
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return out, errors.Wrap(err, "failed to unmarshal result")
			}
		}
		return out, nil
	}

	apiErr := e.classifyHTTPError(resp.StatusCode, respBody)
	if e.hooks != nil && e.hooks.OnError != nil {
		e.hooks.OnError(ctx, apiErr)
	}
	return out, apiErr
}

// doRequest executes the HTTP request through the retry client.
func (e *Executor) doRequest(req *http.Request) (*http.Response, error) {
	retryReq, err := retryablehttp.FromRequest(req)
	if err != nil {
		return nil, err
	}
	return e.retryClient.Do(retryReq)
}

// attachCookies writes the Cookie header from the session snapshot with
// per-call extras layered on top.
func attachCookies(req *http.Request, base, extra map[string]string) {
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		if v != "" {
			merged[k] = v
		}
	}
	for k, v := range extra {
		if v != "" {
			merged[k] = v
		}
	}
	for name, value := range merged {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}

// classifyHTTPError maps a terminal non-2xx response to the error
// taxonomy. The challenge marker is checked before the status mapping: a
// DataDome block also arrives as a 403, and conflating it with an expired
// token would send callers down the wrong recovery path.
func (e *Executor) classifyHTTPError(statusCode int, body []byte) error {
	if isAntiBotChallenge(body) {
		return &types.Error{
			Code:       "ANTI_BOT_CHALLENGE",
			Message:    "remote demands anti-bot proof",
			StatusCode: statusCode,
			RawBody:    body,
			Err:        types.ErrAntiBotChallenge,
		}
	}

	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	_ = json.Unmarshal(body, &errResp)

	msg := errResp.Message
	if msg == "" {
		msg = errResp.Error
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		if msg == "" {
			msg = "access token rejected"
		}
		return &types.Error{
			Code:       "AUTHENTICATION",
			Message:    msg,
			StatusCode: statusCode,
			RawBody:    body,
			Err:        types.ErrNotAuthenticated,
		}
	case statusCode == http.StatusTooManyRequests:
		return &types.Error{
			Code:       "RATE_LIMITED",
			Message:    msg,
			StatusCode: statusCode,
			RawBody:    body,
			Err:        types.ErrRateLimited,
		}
	case statusCode >= 500:
		if msg == "" {
			msg = fmt.Sprintf("server error: %d", statusCode)
		}
		return &types.Error{
			Code:       "SERVER_ERROR",
			Message:    msg,
			StatusCode: statusCode,
			RawBody:    body,
			Err:        types.ErrServerError,
		}
	default:
		if msg == "" {
			msg = fmt.Sprintf("HTTP error: %d", statusCode)
		}
		return &types.Error{
			Code:       "API_ERROR",
			Message:    msg,
			StatusCode: statusCode,
			RawBody:    body,
		}
	}
}

// classifyTransportError maps connection and timeout failures once the
// retry budget is exhausted.
func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &types.Error{
			Code:    "TRANSPORT",
			Message: "request timed out",
			Err:     types.ErrTimeout,
		}
	}
	return &types.Error{
		Code:    "TRANSPORT",
		Message: err.Error(),
		Err:     err,
	}
}

// isAntiBotChallenge reports whether a response body carries the DataDome
// challenge payload. JSON blocks embed the challenge-page URL and HTML
// interstitials reference the same host.
func isAntiBotChallenge(body []byte) bool {
	return bytes.Contains(body, []byte(challengeMarker))
}

// retryLogger adapts our logger to retryablehttp
type retryLogger struct {
	logger types.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}
