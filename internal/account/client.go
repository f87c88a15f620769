package account

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/skovtroldenhugo/roborock/internal/logging"
)

const (
	// DefaultBaseURL is the global account endpoint used to resolve the
	// per-account regional base URL.
	DefaultBaseURL = "https://euiot.roborock.com"

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 1 * time.Second

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 30 * time.Second

	// CodeRequestInterval is the minimum local spacing between verification
	// code requests. The service throttles code emails server-side; spacing
	// requests locally avoids tripping that limit.
	CodeRequestInterval = 30 * time.Second
)

// Account service endpoints
const (
	endpointGetURLByEmail = "/api/v1/getUrlByEmail"
	endpointSendEmailCode = "/api/v1/sendEmailCode"
	endpointLoginWithCode = "/api/v1/loginWithCode"
)

// Client talks to the Roborock account service for a single account.
// It resolves the account's regional base URL, requests email verification
// codes, and exchanges a code for a session token.
type Client struct {
	// Username is the account email address
	Username string

	// GlobalBaseURL is the global endpoint used for base URL resolution.
	// Defaults to DefaultBaseURL.
	GlobalBaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	UseExponentialBackoff bool

	// baseURL is the resolved regional endpoint for this account.
	// Empty until ResolveBaseURL succeeds or SetBaseURL is called.
	baseURL string

	// clientID identifies this client instance to the service
	clientID string

	// codeLimiter spaces out verification code requests. Shared across
	// all clients for the same account, see codeLimiterFor.
	codeLimiter *rate.Limiter
}

// Verification code limiters are shared per account rather than held per
// client instance: front ends build a fresh Client for every flow attempt,
// and the server-side email throttle they guard against is keyed by the
// account, not the client.
var (
	codeLimitersMu sync.Mutex
	codeLimiters   = make(map[string]*rate.Limiter)
)

// codeLimiterFor returns the shared code-request limiter for a username.
func codeLimiterFor(username string) *rate.Limiter {
	codeLimitersMu.Lock()
	defer codeLimitersMu.Unlock()

	limiter, ok := codeLimiters[username]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(CodeRequestInterval), 1)
		codeLimiters[username] = limiter
	}
	return limiter
}

// NewClient creates a new account service client for the given username.
func NewClient(username string) *Client {
	return &Client{
		Username:              username,
		GlobalBaseURL:         DefaultBaseURL,
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true, // Enable by default
		clientID:              newClientID(username),
		codeLimiter:           codeLimiterFor(username),
	}
}

// newClientID derives a per-instance client identifier from the username
// and a random nonce, matching what the mobile app sends.
func newClientID(username string) string {
	nonce := make([]byte, 16)
	_, _ = rand.Read(nonce)
	sum := md5.Sum([]byte(username + hex.EncodeToString(nonce)))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// BaseURL returns the resolved regional base URL for this account.
// Returns an empty string until the URL has been resolved or set.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetBaseURL sets the regional base URL directly, skipping resolution.
// Used when reusing a base URL persisted from a previous login.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// ResolveBaseURL asks the global endpoint which regional endpoint serves
// this account. The result is cached on the client.
func (c *Client) ResolveBaseURL(ctx context.Context) error {
	if c.baseURL != "" {
		return nil
	}

	form := url.Values{}
	form.Set("email", c.Username)
	form.Set("needtwostepauth", "false")

	resp, err := c.post(ctx, c.GlobalBaseURL, endpointGetURLByEmail, form)
	if err != nil {
		return err
	}

	var data baseURLData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return NewParseError("failed to parse base URL payload", err)
	}
	if data.URL == "" {
		return NewParseError("service returned an empty base URL", nil)
	}

	c.baseURL = strings.TrimRight(data.URL, "/")
	logging.Debug("Resolved regional endpoint",
		zap.String("base_url", c.baseURL),
		zap.String("account", logging.MaskAccount(c.Username)),
	)
	return nil
}

// RequestCode asks the service to email a one-time verification code to
// the account. The base URL is resolved first if necessary. Requests are
// spaced locally per CodeRequestInterval.
func (c *Client) RequestCode(ctx context.Context) error {
	if !c.codeLimiter.Allow() {
		return NewRateLimitedError(
			fmt.Sprintf("verification code requested too recently (minimum interval %s)", CodeRequestInterval))
	}

	if err := c.ResolveBaseURL(ctx); err != nil {
		return fmt.Errorf("failed to resolve account endpoint: %w", err)
	}

	form := url.Values{}
	form.Set("username", c.Username)
	form.Set("type", "auth")

	if _, err := c.post(ctx, c.baseURL, endpointSendEmailCode, form); err != nil {
		return err
	}
	return nil
}

// CodeLogin exchanges an emailed verification code for a session token.
// The returned UserData is what callers persist as entry data.
func (c *Client) CodeLogin(ctx context.Context, code string) (*UserData, error) {
	if c.baseURL == "" {
		return nil, NewAuthError("no regional endpoint resolved - request a code first")
	}
	if code == "" {
		return nil, NewAuthError("verification code is empty")
	}

	form := url.Values{}
	form.Set("username", c.Username)
	form.Set("verifycode", code)
	form.Set("verifycodetype", "AUTH_EMAIL_CODE")

	resp, err := c.post(ctx, c.baseURL, endpointLoginWithCode, form)
	if err != nil {
		return nil, err
	}

	var userData UserData
	if err := json.Unmarshal(resp.Data, &userData); err != nil {
		return nil, NewParseError("failed to parse login payload", err)
	}
	if userData.Token == "" {
		return nil, NewParseError("login payload is missing a session token", nil)
	}

	return &userData, nil
}

// post sends a form POST to base+endpoint with retries and decodes the
// service envelope. Non-success envelope codes become errors.
func (c *Client) post(ctx context.Context, base, endpoint string, form url.Values) (*apiResponse, error) {
	var lastErr error
	currentDelay := c.RetryDelay

	// Retry loop with exponential backoff
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, NewNetworkError("request cancelled", ctx.Err())
			case <-time.After(currentDelay):
			}

			// Exponential backoff
			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		resp, err := c.postAttempt(ctx, base, endpoint, form)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		// Don't retry non-retryable errors
		if !IsRetryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

// postAttempt performs a single form POST and envelope decode.
func (c *Client) postAttempt(ctx context.Context, base, endpoint string, form url.Values) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, NewNetworkError("failed to create POST request", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("header_clientid", c.clientID)

	logging.LogAPIRequest(http.MethodPost, endpoint, c.Username)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewNetworkError("POST request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, NewAuthError("account service rejected the request")
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewHTTPError(resp.StatusCode,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewNetworkError("failed to read response body", err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, NewParseError("failed to parse service response", err)
	}

	logging.LogAPIResponse(endpoint, resp.StatusCode, envelope.Code)

	if envelope.Code != 200 {
		msg := envelope.Msg
		if msg == "" {
			msg = "request failed"
		}
		// 2008/2018 are the service's "bad account / bad code" responses
		if envelope.Code == 2008 || envelope.Code == 2018 {
			return nil, NewAuthError(fmt.Sprintf("%s (code %d)", msg, envelope.Code))
		}
		return nil, NewAPIError(envelope.Code, msg)
	}

	return &envelope, nil
}
