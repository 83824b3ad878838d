// Package rest implements the JSON-over-HTTPS transport used to talk to the CIPAPI:
// bounded retries on transient server errors, one token renewal per refused call,
// typed errors and cursor pagination.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// maxRenewalsPerCall bounds token renewals triggered by a single call
const maxRenewalsPerCall = 1

var errTransientStatus = errors.New("transient server status")

// Config represents configuration for the REST client
type Config struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
	// Retries is the number of extra attempts on transient failures.
	// Zero selects the default of 5, a negative value disables retries.
	Retries        int                  `json:"retries"`
	BackoffFactor  time.Duration        `json:"backoff_factor"`
	MaxBackoff     time.Duration        `json:"max_backoff"`
	RateLimit      float64              `json:"rate_limit"` // requests per second, 0 means unlimited
	RateBurst      int                  `json:"rate_burst"`
	FixedParams    url.Values           `json:"fixed_params"`
	CircuitBreaker CircuitBreakerConfig `json:"circuit_breaker"`
	HTTPClient     *http.Client         `json:"-"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `json:"enabled"`
	MaxRequests      uint32        `json:"max_requests"`
	Interval         time.Duration `json:"interval"`
	Timeout          time.Duration `json:"timeout"`
	FailureThreshold uint32        `json:"failure_threshold"`
}

// Authenticator obtains the value of the Authorization header. The client passed in
// must be used with SkipAuth requests only.
type Authenticator interface {
	Authenticate(ctx context.Context, c *Client) (string, error)
}

// Request describes a single logical call; retries and renewals are handled by Do
type Request struct {
	Method    string
	URL       string
	Params    url.Values
	Body      interface{}
	Multipart *Multipart
	SkipAuth  bool
}

// Multipart holds form fields and files for multipart/form-data uploads
type Multipart struct {
	Fields map[string]string
	Files  []FilePart
}

// FilePart is one file of a multipart upload
type FilePart struct {
	FieldName string
	FileName  string
	Content   []byte
}

type response struct {
	status int
	body   []byte
}

// Client is a JSON REST client. A Client is safe for concurrent use; the only state
// shared between calls is the current Authorization header.
type Client struct {
	config     Config
	httpClient *http.Client
	auth       Authenticator
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger

	mu         sync.RWMutex
	authHeader string
}

// NewClient creates a new REST client. auth may be nil, in which case a refused
// call fails without renewal.
func NewClient(config Config, auth Authenticator, logger *logrus.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", config.BaseURL, err)
	}
	config = applyDefaults(config)

	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}

	c := &Client{
		config:     config,
		httpClient: httpClient,
		auth:       auth,
		limiter:    rate.NewLimiter(limit, config.RateBurst),
		logger:     logger,
	}

	if config.CircuitBreaker.Enabled {
		cb := config.CircuitBreaker
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "CIPAPI",
			MaxRequests: cb.MaxRequests,
			Interval:    cb.Interval,
			Timeout:     cb.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cb.FailureThreshold
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.WithFields(logrus.Fields{
					"circuit_breaker": name,
					"from_state":      from.String(),
					"to_state":        to.String(),
				}).Warn("Circuit breaker state changed")
			},
		})
	}

	return c, nil
}

func applyDefaults(config Config) Config {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.Retries == 0 {
		config.Retries = 5
	}
	if config.Retries < 0 {
		config.Retries = 0
	}
	if config.BackoffFactor == 0 {
		config.BackoffFactor = 800 * time.Millisecond
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = 30 * time.Second
	}
	if config.RateBurst <= 0 {
		config.RateBurst = 1
	}
	if config.CircuitBreaker.MaxRequests == 0 {
		config.CircuitBreaker.MaxRequests = 1
	}
	if config.CircuitBreaker.Timeout == 0 {
		config.CircuitBreaker.Timeout = 30 * time.Second
	}
	if config.CircuitBreaker.FailureThreshold == 0 {
		config.CircuitBreaker.FailureThreshold = 20
	}
	return config
}

// BaseURL returns the configured service root
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Logger returns the logger used by the client
func (c *Client) Logger() *logrus.Logger {
	return c.logger
}

// SetAuthorization replaces the Authorization header sent with authenticated calls
func (c *Client) SetAuthorization(header string) {
	c.mu.Lock()
	c.authHeader = header
	c.mu.Unlock()
}

// Authorization returns the current Authorization header value
func (c *Client) Authorization() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authHeader
}

// RenewToken asks the authenticator for a new credential and stores it
func (c *Client) RenewToken(ctx context.Context) error {
	if c.auth == nil {
		return fmt.Errorf("no authenticator configured")
	}
	header, err := c.auth.Authenticate(ctx, c)
	if err != nil {
		return err
	}
	c.SetAuthorization(header)
	return nil
}

// Get issues a GET request
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, URL: endpoint, Params: params})
}

// Post issues a POST request with a JSON payload
func (c *Client) Post(ctx context.Context, endpoint string, payload interface{}, params url.Values) (json.RawMessage, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, URL: endpoint, Params: params, Body: payload})
}

// PostMultipart issues a multipart/form-data POST request
func (c *Client) PostMultipart(ctx context.Context, endpoint string, form *Multipart, params url.Values) (json.RawMessage, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, URL: endpoint, Params: params, Multipart: form})
}

// Put issues a PUT request with a JSON payload
func (c *Client) Put(ctx context.Context, endpoint string, payload interface{}, params url.Values) (json.RawMessage, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, URL: endpoint, Params: params, Body: payload})
}

// Patch issues a PATCH request with a JSON payload
func (c *Client) Patch(ctx context.Context, endpoint string, payload interface{}, params url.Values) (json.RawMessage, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, URL: endpoint, Params: params, Body: payload})
}

// Delete issues a DELETE request
func (c *Client) Delete(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, URL: endpoint, Params: params})
}

// Do performs req and returns the raw JSON body, nil when the body is empty.
// Transient failures are retried within the configured budget; a 403 triggers at most
// one token renewal followed by a single replay of the call.
func (c *Client) Do(ctx context.Context, req *Request) (json.RawMessage, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("must define endpoint before %s", req.Method)
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	fullURL, err := c.resolveURL(req.URL, req.Params)
	if err != nil {
		return nil, err
	}

	if !req.SkipAuth && c.auth != nil && c.Authorization() == "" {
		if err := c.RenewToken(ctx); err != nil {
			return nil, &AuthenticationError{URL: fullURL, Err: err}
		}
	}

	requestID := uuid.NewString()
	renewals := 0
	for {
		resp, err := c.send(ctx, req.Method, fullURL, body, contentType, requestID, req.SkipAuth)
		if err != nil {
			return nil, err
		}

		c.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     req.Method,
			"status":     resp.status,
		}).Debug("Response received")

		if acceptedStatus(resp.status) {
			return decodeBody(resp.body)
		}

		httpErr := &HTTPError{Method: req.Method, URL: fullURL, StatusCode: resp.status, Body: string(resp.body)}
		c.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     req.Method,
			"url":        fullURL,
			"status":     resp.status,
		}).Error(string(resp.body))

		switch {
		case resp.status == http.StatusForbidden && !req.SkipAuth:
			if c.auth == nil {
				return nil, &AuthenticationError{URL: fullURL, Err: httpErr}
			}
			if renewals >= maxRenewalsPerCall {
				return nil, &AuthenticationError{URL: fullURL, Renewed: true, Err: httpErr}
			}
			renewals++
			c.logger.WithField("request_id", requestID).Warn("Access refused, renewing token")
			if err := c.RenewToken(ctx); err != nil {
				return nil, &AuthenticationError{URL: fullURL, Err: err}
			}
		case resp.status == http.StatusNotFound:
			return nil, &NotFoundError{HTTPError: httpErr}
		default:
			return nil, httpErr
		}
	}
}

// send runs one call through the retry policy
func (c *Client) send(ctx context.Context, method, fullURL string, body []byte, contentType, requestID string, skipAuth bool) (*response, error) {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.config.BackoffFactor
	expBackoff.MaxInterval = c.config.MaxBackoff
	expBackoff.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(c.config.Retries)), ctx)

	attempts := 0
	var last *response
	operation := func() error {
		attempts++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limit wait failed: %w", err))
		}

		c.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     method,
			"url":        fullURL,
			"attempt":    attempts,
		}).Debug("Sending request")

		resp, err := c.attempt(ctx, method, fullURL, body, contentType, requestID, skipAuth)
		if err != nil {
			if errors.Is(err, ErrCircuitOpen) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		last = resp
		if retryableStatus(resp.status) {
			return fmt.Errorf("%w %d", errTransientStatus, resp.status)
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     method,
			"url":        fullURL,
			"attempt":    attempts,
			"wait":       wait.String(),
			"error":      err.Error(),
		}).Warn("Transient failure, retrying")
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if errors.Is(err, ErrCircuitOpen) || ctx.Err() != nil {
			return nil, err
		}
		var netErr *url.Error
		if !errors.Is(err, errTransientStatus) && !errors.As(err, &netErr) && last == nil {
			return nil, err
		}
		transient := &TransientServerError{Method: method, URL: fullURL, Attempts: attempts, Err: err}
		if last != nil && retryableStatus(last.status) {
			transient.StatusCode = last.status
		}
		return nil, transient
	}
	return last, nil
}

// attempt performs exactly one HTTP exchange, through the circuit breaker when enabled
func (c *Client) attempt(ctx context.Context, method, fullURL string, body []byte, contentType, requestID string, skipAuth bool) (*response, error) {
	execute := func() (interface{}, error) {
		var reader io.Reader = http.NoBody
		if len(body) > 0 {
			reader = bytes.NewReader(body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set("X-Request-ID", requestID)
		if contentType != "" {
			httpReq.Header.Set("Content-Type", contentType)
		}
		if !skipAuth {
			if header := c.Authorization(); header != "" {
				httpReq.Header.Set("Authorization", header)
			}
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		result := &response{status: resp.StatusCode, body: data}
		if retryableStatus(resp.StatusCode) {
			return result, errTransientStatus
		}
		return result, nil
	}

	var result interface{}
	var err error
	if c.breaker != nil {
		result, err = c.breaker.Execute(execute)
	} else {
		result, err = execute()
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	if errors.Is(err, errTransientStatus) {
		return result.(*response), nil
	}
	if err != nil {
		return nil, err
	}
	return result.(*response), nil
}

// resolveURL merges fixed, existing and call parameters into the request URL
func (c *Client) resolveURL(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid request URL %q: %w", rawURL, err)
	}
	merged := u.Query()
	for key, values := range c.config.FixedParams {
		merged[key] = append([]string(nil), values...)
	}
	for key, values := range params {
		merged[key] = append([]string(nil), values...)
	}
	u.RawQuery = merged.Encode()
	return u.String(), nil
}

func encodeBody(req *Request) ([]byte, string, error) {
	if req.Multipart != nil {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		for key, value := range req.Multipart.Fields {
			if err := writer.WriteField(key, value); err != nil {
				return nil, "", fmt.Errorf("failed to write form field %s: %w", key, err)
			}
		}
		for _, file := range req.Multipart.Files {
			part, err := writer.CreateFormFile(file.FieldName, file.FileName)
			if err != nil {
				return nil, "", fmt.Errorf("failed to create form file %s: %w", file.FileName, err)
			}
			if _, err := part.Write(file.Content); err != nil {
				return nil, "", fmt.Errorf("failed to write form file %s: %w", file.FileName, err)
			}
		}
		if err := writer.Close(); err != nil {
			return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
		}
		return buf.Bytes(), writer.FormDataContentType(), nil
	}

	if req.Body == nil {
		return nil, "", nil
	}
	if raw, ok := req.Body.(json.RawMessage); ok {
		return raw, "application/json", nil
	}
	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request body: %w", err)
	}
	return data, "application/json", nil
}

func decodeBody(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("failed to decode response: invalid JSON")
	}
	return json.RawMessage(trimmed), nil
}

func acceptedStatus(status int) bool {
	switch status {
	case http.StatusOK, http.StatusCreated, http.StatusNonAuthoritativeInfo, http.StatusPartialContent:
		return true
	}
	return false
}

func retryableStatus(status int) bool {
	switch status {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
