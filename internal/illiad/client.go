// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package illiad is the HTTP client for the remote loan-request service.
// It covers the two operations the pipeline needs: verifying that a
// requester account exists and is cleared, and submitting one transaction.
//
// Error surfaces are deliberately split by recovery boundary. Fatal
// conditions (bad credential, unknown or uncleared requester) are typed
// errors the caller maps to exit codes; a rejected submission is returned
// as a *ClientError so the pipeline can record it and keep the batch
// moving.
package illiad

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/libapps/bulkill/internal/httputil"
	"github.com/libapps/bulkill/pkg/types"
)

const (
	defaultUserTimeout   = 10 * time.Second
	defaultSubmitTimeout = 15 * time.Second
	defaultSubmitRate    = 1.0
)

// ErrInvalidAPIKey reports a 401 from the service. Always batch-fatal.
var ErrInvalidAPIKey = errors.New("invalid API key for the loan service")

// UserError reports a requester account the batch cannot run for.
type UserError struct {
	Email   string
	Cleared bool // account exists but is not cleared
}

func (e *UserError) Error() string {
	if e.Cleared {
		return fmt.Sprintf("user %s is not cleared to place requests", e.Email)
	}
	return fmt.Sprintf("user %s not found", e.Email)
}

// ClientError reports a submission the service rejected for payload
// reasons (HTTP 4xx). Per-entry and recoverable: the pipeline records it
// and continues.
type ClientError struct {
	Status  int
	Message string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// ServerError reports a 5xx from the service. Still handled per entry,
// but surfaced distinctly so an operator can tell a service outage from
// bad data.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("loan service error %d: %s", e.Status, e.Message)
}

// Client talks to the loan-request service. The rate limiter paces
// submissions under the service's per-account limits; 429 responses are
// additionally retried with backoff.
type Client struct {
	httpClient    *http.Client
	limiter       *rate.Limiter
	baseURL       string
	apiKey        string
	userAgent     string
	userTimeout   time.Duration
	submitTimeout time.Duration
}

// NewClient builds a client from service configuration. Zero timeouts and
// rate fall back to the defaults (10 s verify, 15 s submit, 1/s).
func NewClient(cfg types.ServiceConfig) *Client {
	userTimeout := cfg.UserTimeout
	if userTimeout <= 0 {
		userTimeout = defaultUserTimeout
	}
	submitTimeout := cfg.SubmitTimeout
	if submitTimeout <= 0 {
		submitTimeout = defaultSubmitTimeout
	}
	submitRate := cfg.SubmitRate
	if submitRate <= 0 {
		submitRate = defaultSubmitRate
	}
	return &Client{
		httpClient:    &http.Client{},
		limiter:       rate.NewLimiter(rate.Limit(submitRate), 1),
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		userAgent:     cfg.UserAgent,
		userTimeout:   userTimeout,
		submitTimeout: submitTimeout,
	}
}

// WithHTTPClient sets a custom HTTP client (for tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// userResponse mirrors the service's user lookup body.
type userResponse struct {
	Cleared string `json:"Cleared"`
	Message string `json:"Message"`
}

// submitResponse mirrors the service's transaction creation body.
type submitResponse struct {
	TransactionNumber json.Number `json:"TransactionNumber"`
	Message           string      `json:"Message"`
}

// CheckUser verifies that email belongs to an existing, cleared requester
// account. Called once per batch before any entries are processed; any
// error aborts the batch.
func (c *Client) CheckUser(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, c.userTimeout)
	defer cancel()

	reqURL := c.baseURL + "/Users/ExternalUserID/" + url.PathEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("contacting loan service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrInvalidAPIKey
	case resp.StatusCode == http.StatusNotFound:
		return &UserError{Email: email}
	case resp.StatusCode != http.StatusOK:
		msg := decodeMessage(resp)
		return &ServerError{Status: resp.StatusCode, Message: msg}
	}

	var ur userResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return fmt.Errorf("parsing user response: %w", err)
	}
	switch ur.Cleared {
	case "Yes":
		return nil
	case "No":
		return &UserError{Email: email, Cleared: true}
	default:
		// A clearance value outside the documented Yes/No pair is a
		// service-side fault, not a user or batch problem.
		return &ServerError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("unexpected clearance status %q for %s", ur.Cleared, email),
		}
	}
}

// Submit posts one transaction payload and returns the identifier the
// service assigned. A 4xx comes back as *ClientError, a 5xx as
// *ServerError, a 401 as ErrInvalidAPIKey; 429 responses are retried
// before any of that. Submit waits on the rate limiter first, so a batch
// never exceeds the configured submission rate.
func (c *Client) Submit(ctx context.Context, payload types.TransactionPayload) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding transaction: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/Transaction/", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		return "", fmt.Errorf("contacting loan service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", ErrInvalidAPIKey
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return "", &ClientError{Status: resp.StatusCode, Message: decodeMessage(resp)}
	case resp.StatusCode >= 500:
		return "", &ServerError{Status: resp.StatusCode, Message: decodeMessage(resp)}
	}

	var sr submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("parsing submit response: %w", err)
	}
	if sr.TransactionNumber.String() == "" {
		return "", &ServerError{Status: resp.StatusCode, Message: "no transaction number returned"}
	}
	return sr.TransactionNumber.String(), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("ContentType", "application/json")
	req.Header.Set("ApiKey", c.apiKey)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

// decodeMessage pulls the service's Message field out of an error
// response, falling back to the HTTP status text.
func decodeMessage(resp *http.Response) string {
	var body struct {
		Message string `json:"Message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		return body.Message
	}
	return http.StatusText(resp.StatusCode)
}
